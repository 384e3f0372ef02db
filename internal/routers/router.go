package routers

import (
	"net/http"
	"time"

	"github.com/haierkeys/personal-notes/internal/app"
	"github.com/haierkeys/personal-notes/internal/middleware"
	"github.com/haierkeys/personal-notes/internal/routers/api_router"
	"github.com/haierkeys/personal-notes/pkg/limiter"

	"github.com/gin-gonic/gin"
	ut "github.com/go-playground/universal-translator"
)

// writeLimiter 写接口令牌桶，按 "METHOD 路由" 计数
func writeLimiter(cfg *app.AppConfig) limiter.Face {
	l := limiter.NewMethodLimiter()
	if cfg.App.WriteRateCapacity <= 0 {
		return l
	}
	quantum := cfg.App.WriteRateQuantum
	if quantum <= 0 {
		quantum = cfg.App.WriteRateCapacity
	}
	for _, key := range []string{
		http.MethodPost + " /api/notes",
		http.MethodPut + " /api/notes/:id",
		http.MethodDelete + " /api/notes/:id",
	} {
		l.AddBuckets(limiter.BucketRule{
			Key:          key,
			FillInterval: time.Second,
			Capacity:     cfg.App.WriteRateCapacity,
			Quantum:      quantum,
		})
	}
	return l
}

func NewRouter(appContainer *app.App, uni *ut.UniversalTranslator) *gin.Engine {

	// 获取配置
	cfg := appContainer.Config()

	r := gin.New()

	api := r.Group("/api")
	{
		api.Use(middleware.AppInfo(app.Name, appContainer.Version().Version))
		api.Use(middleware.TraceMiddleware(cfg.Tracer.Enabled, cfg.Tracer.Header)) // Trace ID 中间件
		api.Use(middleware.RateLimiter(writeLimiter(cfg)))
		api.Use(middleware.ContextTimeout(time.Duration(cfg.App.DefaultContextTimeout) * time.Second))
		api.Use(middleware.LangWithTranslator(uni))
		api.Use(middleware.AccessLogWithLogger(appContainer.Logger()))
		api.Use(middleware.RecoveryWithLogger(appContainer.Logger()))

		// 创建 Handlers（注入 App Container）
		noteHandler := api_router.NewNoteHandler(appContainer)
		healthHandler := api_router.NewHealthHandler(appContainer)

		api.GET("/health", healthHandler.Check)
		api.GET("/status", healthHandler.Status)

		api.GET("/notes", noteHandler.List)
		api.POST("/notes", noteHandler.Create)
		api.PUT("/notes/:id", noteHandler.Update)
		api.DELETE("/notes/:id", noteHandler.Delete)
	}

	r.NoRoute(middleware.NoFound())

	return r
}
