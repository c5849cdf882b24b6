// Package safe_close coordinates graceful shutdown of long running components.
// Package safe_close 协调各后台组件的优雅退出
package safe_close

import (
	"sync"
)

// SafeClose 关闭信号只会发送一次，WaitClosed 等待全部组件退出
type SafeClose struct {
	closeSignal chan struct{}
	once        sync.Once
	wg          sync.WaitGroup
	mu          sync.Mutex
	err         error
}

func NewSafeClose() *SafeClose {
	return &SafeClose{closeSignal: make(chan struct{})}
}

// Attach 启动一个组件，组件在收到 closeSignal 后清理资源并调用 done
func (s *SafeClose) Attach(fn func(done func(), closeSignal <-chan struct{})) {
	s.wg.Add(1)
	var once sync.Once
	done := func() { once.Do(s.wg.Done) }
	go fn(done, s.closeSignal)
}

// SendCloseSignal 广播关闭信号，只记录第一个非空错误
func (s *SafeClose) SendCloseSignal(err error) {
	s.mu.Lock()
	if s.err == nil && err != nil {
		s.err = err
	}
	s.mu.Unlock()
	s.once.Do(func() { close(s.closeSignal) })
}

// CloseSignal 关闭信号通道
func (s *SafeClose) CloseSignal() <-chan struct{} {
	return s.closeSignal
}

// IsClosed 是否已经发出关闭信号
func (s *SafeClose) IsClosed() bool {
	select {
	case <-s.closeSignal:
		return true
	default:
		return false
	}
}

// WaitClosed 等待全部组件调用 done，返回导致关闭的错误
func (s *SafeClose) WaitClosed() error {
	s.wg.Wait()
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}
