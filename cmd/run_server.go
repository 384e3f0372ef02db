package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	internalApp "github.com/haierkeys/personal-notes/internal/app"
	"github.com/haierkeys/personal-notes/internal/routers"
	"github.com/haierkeys/personal-notes/internal/task"
	"github.com/haierkeys/personal-notes/pkg/logger"
	"github.com/haierkeys/personal-notes/pkg/safe_close"
	"github.com/haierkeys/personal-notes/pkg/storage"
	"github.com/haierkeys/personal-notes/pkg/validator"

	"github.com/gin-gonic/gin"
	ut "github.com/go-playground/universal-translator"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

const (
	// DefaultShutdownTimeout 容器关闭的最长等待时间
	DefaultShutdownTimeout = 30 * time.Second
	httpShutdownTimeout    = 5 * time.Second
)

// Server 一次运行周期内的全部资源，配置热更新时整体替换
type Server struct {
	logger  *zap.Logger
	config  *internalApp.AppConfig
	runMode string
	ut      *ut.UniversalTranslator
	sc      *safe_close.SafeClose
	app     *internalApp.App

	httpServer        *http.Server
	privateHttpServer *http.Server
}

func NewServer(runEnv *runFlags) (*Server, error) {
	cfg, path, err := internalApp.LoadConfig(runEnv.config)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if runEnv.port != "" {
		cfg.Server.HttpPort = ":" + runEnv.port
	}

	s := &Server{
		config:  cfg,
		runMode: pickRunMode(runEnv.runMode, cfg.Server.RunMode),
		sc:      safe_close.NewSafeClose(),
	}
	gin.SetMode(s.runMode)

	if s.logger, err = logger.NewLogger(logger.Config{
		Level:      cfg.Log.Level,
		File:       cfg.Log.File,
		Production: cfg.Log.Production,
	}); err != nil {
		return nil, fmt.Errorf("initLogger: %w", err)
	}

	if err := ensureDirs(cfg); err != nil {
		return nil, fmt.Errorf("initStorage: %w", err)
	}

	if s.app, err = internalApp.NewApp(cfg, s.logger, prometheus.DefaultRegisterer); err != nil {
		return nil, fmt.Errorf("failed to create app container: %w", err)
	}
	if s.ut, err = validator.Init(); err != nil {
		return nil, fmt.Errorf("initValidator: %w", err)
	}

	s.startTasks()

	s.logger.Warn("service starting",
		zap.String("name", internalApp.Name),
		zap.String("version", internalApp.Version),
		zap.String("gitTag", internalApp.GitTag),
		zap.String("buildTime", internalApp.BuildTime),
		zap.String("config", path),
		zap.String("local", cfg.Local.Type),
		zap.String("remoteDriver", cfg.Remote.Driver),
		zap.Bool("remoteConfigured", s.app.NoteService.Configured()))

	if addr := cfg.Server.HttpPort; addr != "" {
		s.httpServer = s.newHTTPServer(addr, routers.NewRouter(s.app, s.ut))
		s.serve("api", s.httpServer)
	}
	if addr := cfg.Server.PrivateHttpListen; addr != "" {
		s.privateHttpServer = s.newHTTPServer(addr, routers.NewPrivateRouterWithLogger(s.runMode, s.logger, prometheus.DefaultGatherer))
		s.serve("private", s.privateHttpServer)
	}

	// 关闭顺序：HTTP 服务与任务先收到信号，App 容器最后释放存储
	s.sc.Attach(func(done func(), closeSignal <-chan struct{}) {
		defer done()
		<-closeSignal
		ctx, cancel := context.WithTimeout(context.Background(), DefaultShutdownTimeout)
		defer cancel()
		if err := s.app.Shutdown(ctx); err != nil {
			s.logger.Error("app container shutdown failed", zap.Error(err))
			return
		}
		s.logger.Info("app container closed")
	})

	return s, nil
}

// pickRunMode 命令行优先，其次配置文件，默认 release
func pickRunMode(flag, configured string) string {
	switch {
	case flag != "":
		return flag
	case configured != "":
		return configured
	default:
		return gin.ReleaseMode
	}
}

func (s *Server) newHTTPServer(addr string, h http.Handler) *http.Server {
	return &http.Server{
		Addr:           addr,
		Handler:        h,
		ReadTimeout:    time.Duration(s.config.Server.ReadTimeout) * time.Second,
		WriteTimeout:   time.Duration(s.config.Server.WriteTimeout) * time.Second,
		MaxHeaderBytes: 1 << 20,
	}
}

// serve runs srv until it fails or the close signal arrives.
// A listen failure closes the whole Server.
func (s *Server) serve(name string, srv *http.Server) {
	s.logger.Info("http listener", zap.String("server", name), zap.String("addr", srv.Addr))
	s.sc.Attach(func(done func(), closeSignal <-chan struct{}) {
		defer done()

		failed := make(chan error, 1)
		go func() { failed <- srv.ListenAndServe() }()

		select {
		case err := <-failed:
			s.logger.Error("http listener stopped", zap.String("server", name), zap.Error(err))
			s.sc.SendCloseSignal(err)
		case <-closeSignal:
			ctx, cancel := context.WithTimeout(context.Background(), httpShutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(ctx); err != nil {
				s.logger.Error("http shutdown", zap.String("server", name), zap.Error(err))
			}
		}
	})
}

func (s *Server) startTasks() {
	m := task.NewManager(s.logger, s.sc, s.app.NoteService, task.Options{
		ProbeInterval: s.config.GetProbeInterval(),
		SchemaCheck:   s.config.Notes.SchemaCheck,
	})
	if err := m.RegisterTasks(); err != nil {
		s.logger.Error("failed to register tasks", zap.Error(err))
		return
	}
	m.Start()
}

// ensureDirs creates the log directory and the on-device storage location.
func ensureDirs(cfg *internalApp.AppConfig) error {
	dirs := []string{filepath.Dir(cfg.Log.File)}
	switch cfg.Local.Type {
	case storage.LOCAL:
		dirs = append(dirs, cfg.Local.SavePath)
	case storage.SQLITE:
		dirs = append(dirs, filepath.Dir(cfg.Local.SavePath))
	}

	for _, dir := range dirs {
		if dir == "" || dir == "." {
			continue
		}
		if err := os.MkdirAll(dir, 0754); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

func (s *Server) GetApp() *internalApp.App {
	return s.app
}
