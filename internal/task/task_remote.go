package task

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/haierkeys/personal-notes/internal/service"
	"github.com/haierkeys/personal-notes/pkg/logger"

	"go.uber.org/zap"
)

// RemoteProbeTask refreshes the remote connectivity gauge
// RemoteProbeTask 周期性探测远端连通性
type RemoteProbeTask struct {
	notes    service.NoteService
	interval time.Duration
	logger   *zap.Logger
	// last 0 未知 1 已连接 2 已断开
	last atomic.Int32
}

func NewRemoteProbeTask(notes service.NoteService, interval time.Duration, log *zap.Logger) *RemoteProbeTask {
	return &RemoteProbeTask{notes: notes, interval: interval, logger: log}
}

func (t *RemoteProbeTask) Name() string {
	return "RemoteProbe"
}

func (t *RemoteProbeTask) Spec() string {
	if t.interval <= 0 {
		return ""
	}
	return fmt.Sprintf("@every %s", t.interval)
}

func (t *RemoteProbeTask) IsStartupRun() bool {
	return true
}

func (t *RemoteProbeTask) Run(ctx context.Context) error {
	if !t.notes.Configured() {
		return nil
	}
	up := t.notes.Probe(ctx)
	state := int32(2)
	if up {
		state = 1
	}
	if t.last.Swap(state) != state {
		t.logger.Info("remote store connectivity changed",
			zap.String(logger.FieldDriver, t.notes.Status().Driver),
			zap.Bool("connected", up))
	}
	return nil
}

// SchemaCheckTask 启动时检查远端表结构
type SchemaCheckTask struct {
	notes service.NoteService
}

func NewSchemaCheckTask(notes service.NoteService) *SchemaCheckTask {
	return &SchemaCheckTask{notes: notes}
}

func (t *SchemaCheckTask) Name() string {
	return "SchemaCheck"
}

func (t *SchemaCheckTask) Spec() string {
	return ""
}

func (t *SchemaCheckTask) IsStartupRun() bool {
	return true
}

func (t *SchemaCheckTask) Run(ctx context.Context) error {
	t.notes.EnsureSchema(ctx)
	return nil
}
