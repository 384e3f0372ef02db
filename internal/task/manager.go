package task

import (
	"time"

	"github.com/haierkeys/personal-notes/internal/service"
	"github.com/haierkeys/personal-notes/pkg/safe_close"

	"go.uber.org/zap"
)

// Options 任务配置
type Options struct {
	// ProbeInterval 远端探测周期，<= 0 时只在启动时探测
	ProbeInterval time.Duration
	// SchemaCheck 启动时检查远端表结构
	SchemaCheck bool
}

// Manager 任务管理器,负责创建和管理所有任务
type Manager struct {
	scheduler *Scheduler
	logger    *zap.Logger
	notes     service.NoteService
	opts      Options
}

// NewManager 创建任务管理器
func NewManager(logger *zap.Logger, sc *safe_close.SafeClose, notes service.NoteService, opts Options) *Manager {
	return &Manager{
		scheduler: NewScheduler(logger, sc),
		logger:    logger,
		notes:     notes,
		opts:      opts,
	}
}

// RegisterTasks 注册所有任务
func (m *Manager) RegisterTasks() error {
	if m.opts.SchemaCheck {
		if err := m.scheduler.AddTask(NewSchemaCheckTask(m.notes)); err != nil {
			return err
		}
	} else {
		m.logger.Info("schema check task is disabled")
	}

	if err := m.scheduler.AddTask(NewRemoteProbeTask(m.notes, m.opts.ProbeInterval, m.logger)); err != nil {
		m.logger.Warn("failed to create remote probe task", zap.Error(err))
		return err
	}

	return nil
}

// Start 启动任务调度
func (m *Manager) Start() {
	m.scheduler.Start()
}
