// Package app 提供应用容器，封装所有依赖和服务
package app

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/haierkeys/personal-notes/internal/dao"
	"github.com/haierkeys/personal-notes/internal/domain"
	"github.com/haierkeys/personal-notes/internal/service"
	pkgapp "github.com/haierkeys/personal-notes/pkg/app"
	"github.com/haierkeys/personal-notes/pkg/storage"
	"github.com/haierkeys/personal-notes/pkg/writequeue"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// App 应用容器，封装所有依赖和服务
type App struct {
	// 基础设施（注入的依赖）
	config *AppConfig
	logger *zap.Logger

	// 并发控制组件
	writeQueueMgr *writequeue.Manager

	// 存储层
	Storage     storage.Storager
	LocalStore  domain.LocalNoteStore
	RemoteStore domain.RemoteNoteStore

	// Service 层
	Metrics     *service.Metrics
	NoteService service.NoteService

	// StartTime 启动时间
	StartTime time.Time

	// 关闭控制
	shutdownCh chan struct{}
}

// NewApp 创建应用容器实例
// 初始化所有依赖并进行依赖注入
// cfg: 应用配置（必须）
// logger: zap 日志器（必须）
// reg: prometheus 注册器，为 nil 时指标不注册
func NewApp(cfg *AppConfig, logger *zap.Logger, reg prometheus.Registerer) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	a := &App{
		config:     cfg,
		logger:     logger,
		StartTime:  time.Now(),
		shutdownCh: make(chan struct{}),
	}

	// 初始化 Write Queue Manager
	wqConfig := cfg.GetWriteQueueConfig()
	a.writeQueueMgr = writequeue.New(&wqConfig, logger)

	// 初始化设备本地存储
	st, err := storage.NewClient(&cfg.Local)
	if err != nil {
		_ = a.writeQueueMgr.Shutdown(context.Background())
		return nil, fmt.Errorf("local storage: %w", err)
	}
	a.Storage = st
	a.LocalStore = dao.NewLocalNoteRepository(st, cfg.Notes.LocalKey, a.writeQueueMgr, logger)

	// 远端未配置时不创建适配器
	if service.IsConfigured(cfg.Remote.URL, cfg.Remote.Key) {
		remote, err := dao.NewRemoteNoteStore(cfg.Remote, cfg.GetRemoteTimeout(), logger)
		if err != nil {
			logger.Warn("remote store unavailable, notes stay on this device",
				zap.String("driver", cfg.Remote.Driver),
				zap.Error(err))
		} else {
			a.RemoteStore = remote
		}
	} else {
		logger.Info("remote store not configured, notes stay on this device")
	}

	a.Metrics = service.NewMetrics(reg)

	svcConfig := &service.ServiceConfig{
		RemoteTimeout: cfg.GetRemoteTimeout(),
		StrictLocal:   cfg.Notes.StrictLocal,
	}
	a.NoteService = service.NewNoteService(a.RemoteStore, a.LocalStore, a.Credentials, logger, svcConfig, a.Metrics)

	logger.Info("App container initialized successfully",
		zap.String("localType", cfg.Local.Type),
		zap.Bool("remoteConfigured", a.RemoteStore != nil),
		zap.Int("writeQueueCapacity", wqConfig.QueueCapacity))

	return a, nil
}

// Credentials 当前远端地址与密钥
func (a *App) Credentials() (string, string) {
	return a.config.Remote.URL, a.config.Remote.Key
}

// Config 获取应用配置
func (a *App) Config() *AppConfig {
	return a.config
}

// Logger 获取日志器
func (a *App) Logger() *zap.Logger {
	return a.logger
}

// Version 获取版本信息
func (a *App) Version() pkgapp.VersionInfo {
	return pkgapp.VersionInfo{
		Version:   Version,
		GitTag:    GitTag,
		BuildTime: BuildTime,
	}
}

// IsProductionMode 是否为生产模式
// 根据日志配置中的 Production 字段判断
func (a *App) IsProductionMode() bool {
	return a.config.Log.Production
}

// WriteQueueManager 获取 Write Queue Manager（用于高级操作）
func (a *App) WriteQueueManager() *writequeue.Manager {
	return a.writeQueueMgr
}

// DefaultShutdownTimeout 默认关闭超时时间
const DefaultShutdownTimeout = 30 * time.Second

// Shutdown 优雅关闭应用容器
// 按顺序关闭：Write Queue Manager -> 本地存储 -> 远端连接
// ctx 用于控制关闭超时，如果为 nil 则使用默认 30 秒超时
func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info("App container shutting down...")

	// 如果没有提供 context，使用默认超时
	if ctx == nil {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(context.Background(), DefaultShutdownTimeout)
		defer cancel()
	}

	// 标记关闭
	select {
	case <-a.shutdownCh:
		// 已经关闭
		return nil
	default:
		close(a.shutdownCh)
	}

	var errs []error

	// 1. 关闭 Write Queue Manager（排空所有队列）
	if a.writeQueueMgr != nil {
		a.logger.Info("Shutting down write queue manager...")
		if err := a.writeQueueMgr.Shutdown(ctx); err != nil {
			a.logger.Warn("write queue manager shutdown error", zap.Error(err))
			errs = append(errs, fmt.Errorf("write queue manager shutdown: %w", err))
		} else {
			a.logger.Info("write queue manager shutdown completed")
		}
	}

	// 2. 关闭本地存储与远端连接
	for name, res := range map[string]any{"local storage": a.Storage, "remote store": a.RemoteStore} {
		closer, ok := res.(io.Closer)
		if !ok {
			continue
		}
		if err := closer.Close(); err != nil {
			a.logger.Warn(name+" close error", zap.Error(err))
			errs = append(errs, fmt.Errorf("%s close: %w", name, err))
		}
	}

	if len(errs) > 0 {
		a.logger.Warn("App container shutdown completed with errors",
			zap.Int("errorCount", len(errs)))
		return fmt.Errorf("shutdown completed with %d errors: %v", len(errs), errs)
	}

	a.logger.Info("App container shutdown completed successfully")
	return nil
}
