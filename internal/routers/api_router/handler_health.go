package api_router

import (
	"time"

	"github.com/haierkeys/personal-notes/internal/app"
	pkgapp "github.com/haierkeys/personal-notes/pkg/app"
	"github.com/haierkeys/personal-notes/pkg/code"

	"github.com/gin-gonic/gin"
)

// HealthHandler 健康检查处理器
type HealthHandler struct {
	*Handler
}

// NewHealthHandler 创建健康检查处理器实例
func NewHealthHandler(a *app.App) *HealthHandler {
	return &HealthHandler{Handler: NewHandler(a)}
}

// HealthResponse 健康检查响应
type HealthResponse struct {
	Status  string  `json:"status"`  // 始终为 "healthy"，远端不可用时笔记保存在本机
	Version string  `json:"version"` // 服务版本号
	Uptime  float64 `json:"uptime"`  // 运行时间（秒）
	Local   string  `json:"local"`   // 本机存储类型
	Remote  string  `json:"remote"`  // "unconfigured" / "connected" / "disconnected"
}

// Check 健康检查接口
// @Summary 健康检查
// @Tags 系统
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /api/health [get]
func (h *HealthHandler) Check(c *gin.Context) {
	st := h.App.NoteService.Status()
	remote := "unconfigured"
	if st.Configured {
		remote = "disconnected"
		if st.Connected {
			remote = "connected"
		}
	}

	pkgapp.NewResponse(c).ToResponse(code.Success.WithData(HealthResponse{
		Status:  "healthy",
		Version: h.App.Version().Version,
		Uptime:  time.Since(h.App.StartTime).Seconds(),
		Local:   h.App.Config().Local.Type,
		Remote:  remote,
	}))
}

// Status 远端连接状态，对应界面上的 Connected / Disconnected 标识
// @Summary 远端状态
// @Tags 系统
// @Produce json
// @Success 200 {object} pkgapp.Res{data=service.Status}
// @Router /api/status [get]
func (h *HealthHandler) Status(c *gin.Context) {
	pkgapp.NewResponse(c).ToResponse(code.Success.WithData(h.App.NoteService.Status()))
}
