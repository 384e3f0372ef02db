// Package writequeue runs submitted functions one at a time per key.
// 按键串行执行提交的函数
//
// The local note store keeps every note in a single storage value, so a create is
// read, modify, write back. Routing all of them through one lane per storage key
// makes that sequence atomic for concurrent callers.
package writequeue

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

var (
	ErrWriteQueueFull   = errors.New("write queue is full")
	ErrWriteQueueClosed = errors.New("write queue is closed")
	ErrWriteTimeout     = errors.New("write operation timeout")
)

// Config 写队列配置
type Config struct {
	QueueCapacity int           // pending operations allowed per key
	WriteTimeout  time.Duration // upper bound for waiting plus running
	IdleTimeout   time.Duration // a lane with no work for this long is retired
}

func DefaultConfig() Config {
	return Config{
		QueueCapacity: 100,
		WriteTimeout:  30 * time.Second,
		IdleTimeout:   10 * time.Minute,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.QueueCapacity <= 0 {
		c.QueueCapacity = d.QueueCapacity
	}
	if c.WriteTimeout <= 0 {
		c.WriteTimeout = d.WriteTimeout
	}
	if c.IdleTimeout <= 0 {
		c.IdleTimeout = d.IdleTimeout
	}
	return c
}

type job struct {
	ctx  context.Context
	fn   func(ctx context.Context) error
	done chan error
}

// lane owns the worker goroutine of one key.
// pending is guarded by Manager.mu and counts jobs accepted but not yet finished.
type lane struct {
	key     string
	jobs    chan job
	pending int
}

// Manager 写队列管理器
type Manager struct {
	cfg    Config
	logger *zap.Logger

	mu     sync.Mutex
	lanes  map[string]*lane
	closed bool

	stop    chan struct{} // closed by Shutdown, workers drain and exit
	aborted chan struct{} // closed when Shutdown gives up waiting
	workers sync.WaitGroup
}

// New 创建写队列管理器, cfg 为 nil 时使用默认配置
func New(cfg *Config, logger *zap.Logger) *Manager {
	c := DefaultConfig()
	if cfg != nil {
		c = cfg.withDefaults()
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	logger.Debug("write queue manager started",
		zap.Int("queueCapacity", c.QueueCapacity),
		zap.Duration("writeTimeout", c.WriteTimeout),
		zap.Duration("idleTimeout", c.IdleTimeout))

	return &Manager{
		cfg:     c,
		logger:  logger,
		lanes:   make(map[string]*lane),
		stop:    make(chan struct{}),
		aborted: make(chan struct{}),
	}
}

// Execute runs fn on the lane of key after every earlier job of that key finished.
// fn gets a context bounded by the write timeout and the caller's own deadline.
// A job whose caller stopped waiting is dropped without running.
//
// Execute 在键对应的通道上按 FIFO 顺序执行 fn
func (m *Manager) Execute(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	jobCtx, cancel := context.WithTimeout(ctx, m.cfg.WriteTimeout)
	defer cancel()

	l, err := m.reserve(key)
	if err != nil {
		return err
	}

	done := make(chan error, 1)
	// capacity was reserved above, the send never blocks
	l.jobs <- job{ctx: jobCtx, fn: fn, done: done}

	select {
	case err := <-done:
		return err
	case <-jobCtx.Done():
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return ErrWriteTimeout
	case <-m.aborted:
		return ErrWriteQueueClosed
	}
}

// reserve finds or starts the lane of key and books one slot in it.
func (m *Manager) reserve(key string) (*lane, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil, ErrWriteQueueClosed
	}

	l, ok := m.lanes[key]
	if !ok {
		l = &lane{key: key, jobs: make(chan job, m.cfg.QueueCapacity)}
		m.lanes[key] = l
		m.workers.Add(1)
		go m.work(l)
		m.logger.Debug("write queue lane opened", zap.String("key", key))
	}
	if l.pending >= m.cfg.QueueCapacity {
		return nil, ErrWriteQueueFull
	}
	l.pending++
	return l, nil
}

func (m *Manager) work(l *lane) {
	defer m.workers.Done()

	idle := time.NewTimer(m.cfg.IdleTimeout)
	defer idle.Stop()

	for {
		select {
		case j := <-l.jobs:
			m.run(l, j)
			resetTimer(idle, m.cfg.IdleTimeout)

		case <-idle.C:
			if m.retire(l) {
				m.logger.Debug("write queue lane retired", zap.String("key", l.key))
				return
			}
			idle.Reset(m.cfg.IdleTimeout)

		case <-m.stop:
			// No slot can be booked once closed, so pending only shrinks here.
			for m.outstanding(l) > 0 {
				m.run(l, <-l.jobs)
			}
			return
		}
	}
}

func (m *Manager) run(l *lane, j job) {
	if err := j.ctx.Err(); err != nil {
		j.done <- err
	} else {
		j.done <- j.fn(j.ctx)
	}

	m.mu.Lock()
	l.pending--
	m.mu.Unlock()
}

// retire drops the lane from the map when it has nothing booked.
func (m *Manager) retire(l *lane) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if l.pending > 0 || m.closed {
		return false
	}
	delete(m.lanes, l.key)
	return true
}

func (m *Manager) outstanding(l *lane) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return l.pending
}

func resetTimer(t *time.Timer, d time.Duration) {
	if !t.Stop() {
		select {
		case <-t.C:
		default:
		}
	}
	t.Reset(d)
}

// Shutdown refuses new work and waits until every booked job ran.
// When ctx ends first, waiting callers get ErrWriteQueueClosed and ctx.Err() is returned.
func (m *Manager) Shutdown(ctx context.Context) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	close(m.stop)
	m.mu.Unlock()

	finished := make(chan struct{})
	go func() {
		m.workers.Wait()
		close(finished)
	}()

	select {
	case <-finished:
		m.logger.Info("write queue manager stopped")
		return nil
	case <-ctx.Done():
		close(m.aborted)
		m.logger.Warn("write queue manager shutdown timed out", zap.Error(ctx.Err()))
		return ctx.Err()
	}
}

// Lanes 当前活跃的键数量
func (m *Manager) Lanes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.lanes)
}

// Pending 指定键已接受但未完成的操作数
func (m *Manager) Pending(key string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	if l, ok := m.lanes[key]; ok {
		return l.pending
	}
	return 0
}

func (m *Manager) IsClosed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}
