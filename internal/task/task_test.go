package task

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/haierkeys/personal-notes/internal/domain"
	"github.com/haierkeys/personal-notes/internal/service"
	"github.com/haierkeys/personal-notes/pkg/safe_close"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"go.uber.org/zap/zapcore"
)

type stubNotes struct {
	service.NoteService
	configured bool
	up         atomic.Bool
	probes     atomic.Int32
	schemas    atomic.Int32
}

func (s *stubNotes) Configured() bool { return s.configured }

func (s *stubNotes) Probe(context.Context) bool {
	s.probes.Add(1)
	return s.up.Load()
}

func (s *stubNotes) EnsureSchema(context.Context) bool {
	s.schemas.Add(1)
	return true
}

func (s *stubNotes) Status() service.Status {
	return service.Status{Configured: s.configured, Driver: "rest", Connected: s.up.Load()}
}

func (s *stubNotes) ListNotes(context.Context) ([]domain.Note, error) { return nil, nil }

func TestRemoteProbeTaskSpec(t *testing.T) {
	notes := &stubNotes{}
	assert.Equal(t, "@every 1m0s", NewRemoteProbeTask(notes, time.Minute, zap.NewNop()).Spec())
	assert.Equal(t, "", NewRemoteProbeTask(notes, 0, zap.NewNop()).Spec())
}

func TestRemoteProbeTaskSkipsUnconfigured(t *testing.T) {
	notes := &stubNotes{}
	task := NewRemoteProbeTask(notes, time.Minute, zap.NewNop())

	require.NoError(t, task.Run(context.Background()))
	assert.EqualValues(t, 0, notes.probes.Load())
}

func TestRemoteProbeTaskLogsTransitions(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	notes := &stubNotes{configured: true}
	task := NewRemoteProbeTask(notes, time.Minute, zap.New(core))
	ctx := context.Background()

	notes.up.Store(true)
	require.NoError(t, task.Run(ctx))
	require.NoError(t, task.Run(ctx))
	notes.up.Store(false)
	require.NoError(t, task.Run(ctx))

	assert.EqualValues(t, 3, notes.probes.Load())
	changes := logs.FilterMessage("remote store connectivity changed").All()
	require.Len(t, changes, 2)
	assert.Equal(t, true, changes[0].ContextMap()["connected"])
	assert.Equal(t, false, changes[1].ContextMap()["connected"])
}

func TestSchedulerRejectsBadSpec(t *testing.T) {
	s := NewScheduler(zap.NewNop(), safe_close.NewSafeClose())
	err := s.AddTask(badSpecTask{})
	assert.Error(t, err)
	assert.Equal(t, 0, s.Len())
}

type badSpecTask struct{}

func (badSpecTask) Name() string              { return "bad" }
func (badSpecTask) Run(context.Context) error { return nil }
func (badSpecTask) Spec() string              { return "not a schedule" }
func (badSpecTask) IsStartupRun() bool        { return false }

func TestManagerRunsStartupTasksAndStops(t *testing.T) {
	sc := safe_close.NewSafeClose()
	notes := &stubNotes{configured: true}
	notes.up.Store(true)

	m := NewManager(zap.NewNop(), sc, notes, Options{ProbeInterval: time.Hour, SchemaCheck: true})
	require.NoError(t, m.RegisterTasks())
	m.Start()

	assert.Eventually(t, func() bool {
		return notes.schemas.Load() == 1 && notes.probes.Load() == 1
	}, time.Second, 10*time.Millisecond)

	sc.SendCloseSignal(nil)
	assert.NoError(t, sc.WaitClosed())
}

func TestManagerWithoutSchemaCheck(t *testing.T) {
	sc := safe_close.NewSafeClose()
	m := NewManager(zap.NewNop(), sc, &stubNotes{}, Options{})
	require.NoError(t, m.RegisterTasks())
	assert.Equal(t, 1, m.scheduler.Len())
}
