// Package safe_close coordinates the graceful shutdown of long running components
// Package safe_close 协调长期运行组件的优雅关闭
package safe_close

import (
	"sync"
)

// SafeClose broadcasts one close signal to every attached component and waits for them
// SafeClose 向所有挂载的组件广播关闭信号并等待其退出
type SafeClose struct {
	closeSignal chan struct{}
	once        sync.Once
	wg          sync.WaitGroup

	mu  sync.Mutex
	err error
}

func NewSafeClose() *SafeClose {
	return &SafeClose{closeSignal: make(chan struct{})}
}

// Attach runs fn in its own goroutine; fn must call done once it has stopped
// Attach 在独立协程中运行 fn，fn 停止后必须调用 done
func (s *SafeClose) Attach(fn func(done func(), closeSignal <-chan struct{})) {
	s.wg.Add(1)
	go fn(s.wg.Done, s.closeSignal)
}

// SendCloseSignal closes the signal channel; only the first call's error is kept
// SendCloseSignal 发送关闭信号，仅保留第一次调用的错误
func (s *SafeClose) SendCloseSignal(err error) {
	s.once.Do(func() {
		s.mu.Lock()
		s.err = err
		s.mu.Unlock()
		close(s.closeSignal)
	})
}

// CloseSignal 关闭信号通道
func (s *SafeClose) CloseSignal() <-chan struct{} {
	return s.closeSignal
}

// WaitClosed blocks until every attached component called done
// WaitClosed 阻塞直到所有组件退出
func (s *SafeClose) WaitClosed() error {
	s.wg.Wait()
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}
