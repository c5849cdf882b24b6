// Package writequeue serializes the database writes of each user.
// Package writequeue 按用户串行化数据库写操作，避免 SQLite "database is locked"
package writequeue

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

var (
	// ErrWriteQueueFull 用户写队列已满
	ErrWriteQueueFull = errors.New("write queue is full")
	// ErrWriteQueueClosed 写队列管理器已关闭
	ErrWriteQueueClosed = errors.New("write queue is closed")
	// ErrWriteTimeout 写操作等待超时
	ErrWriteTimeout = errors.New("write operation timeout")
)

// Config 写队列配置
type Config struct {
	// QueueCapacity 每用户可排队的写操作数，默认 100
	QueueCapacity int
	// WriteTimeout 单次写操作最长等待时间，默认 30 秒
	WriteTimeout time.Duration
	// IdleTimeout 用户队列空闲多久后回收，默认 10 分钟
	IdleTimeout time.Duration
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

type op struct {
	ctx    context.Context
	fn     func() error
	result chan error
}

// lane is the FIFO of one user, drained by a single goroutine.
type lane struct {
	uid      int64
	ops      chan op
	lastUsed atomic.Int64
	stopOnce sync.Once
	stop     chan struct{}
	done     chan struct{}
}

func (l *lane) touch() {
	l.lastUsed.Store(time.Now().UnixNano())
}

func (l *lane) halt() {
	l.stopOnce.Do(func() { close(l.stop) })
}

func (l *lane) stopped() bool {
	select {
	case <-l.stop:
		return true
	default:
		return false
	}
}

// Manager 管理所有用户的写队列
type Manager struct {
	config Config
	logger *zap.Logger

	mu     sync.Mutex
	lanes  map[int64]*lane
	closed bool

	executed atomic.Int64
	rejected atomic.Int64

	janitorStop chan struct{}
	janitorDone chan struct{}
}

// New starts a manager. A nil cfg uses DefaultConfig; a nil logger is a no-op logger.
func New(cfg *Config, logger *zap.Logger) *Manager {
	c := DefaultConfig()
	if cfg != nil {
		c = cfg.withDefaults()
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	m := &Manager{
		config:      c,
		logger:      logger,
		lanes:       map[int64]*lane{},
		janitorStop: make(chan struct{}),
		janitorDone: make(chan struct{}),
	}
	go m.janitor()

	logger.Info("write queue manager started",
		zap.Int("queueCapacity", c.QueueCapacity),
		zap.Duration("writeTimeout", c.WriteTimeout),
		zap.Duration("idleTimeout", c.IdleTimeout))
	return m
}

// Execute runs fn after every earlier write of the same uid has finished.
// Writes of different users run in parallel.
// Execute 同一用户的写操作按 FIFO 顺序串行执行
func (m *Manager) Execute(ctx context.Context, uid int64, fn func() error) error {
	l, err := m.lane(uid)
	if err != nil {
		return err
	}

	o := op{ctx: ctx, fn: fn, result: make(chan error, 1)}
	select {
	case l.ops <- o:
	default:
		m.rejected.Add(1)
		return ErrWriteQueueFull
	}

	timeout := m.config.WriteTimeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = remaining
		}
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case err := <-o.result:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return ErrWriteTimeout
	}
}

func (m *Manager) lane(uid int64) (*lane, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil, ErrWriteQueueClosed
	}
	if l, ok := m.lanes[uid]; ok && !l.stopped() {
		l.touch()
		return l, nil
	}

	l := &lane{
		uid:  uid,
		ops:  make(chan op, m.config.QueueCapacity),
		stop: make(chan struct{}),
		done: make(chan struct{}),
	}
	l.touch()
	m.lanes[uid] = l
	go m.run(l)

	m.logger.Debug("created write queue for user", zap.Int64("uid", uid))
	return l, nil
}

func (m *Manager) run(l *lane) {
	defer close(l.done)
	for {
		select {
		case o := <-l.ops:
			m.exec(l, o)
		case <-l.stop:
			// 停止前执行完已排队的操作
			for {
				select {
				case o := <-l.ops:
					m.exec(l, o)
				default:
					return
				}
			}
		}
	}
}

func (m *Manager) exec(l *lane, o op) {
	l.touch()
	if err := o.ctx.Err(); err != nil {
		o.result <- err
		return
	}
	o.result <- o.fn()
	m.executed.Add(1)
}

func (m *Manager) janitor() {
	defer close(m.janitorDone)
	ticker := time.NewTicker(m.config.IdleTimeout / 2)
	defer ticker.Stop()
	for {
		select {
		case <-m.janitorStop:
			return
		case <-ticker.C:
			m.reapIdle(time.Now())
		}
	}
}

// reapIdle stops lanes that are empty and unused for longer than IdleTimeout.
func (m *Manager) reapIdle(now time.Time) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	reaped := 0
	for uid, l := range m.lanes {
		idle := now.UnixNano() - l.lastUsed.Load()
		if idle > m.config.IdleTimeout.Nanoseconds() && len(l.ops) == 0 {
			l.halt()
			delete(m.lanes, uid)
			reaped++
		}
	}
	if reaped > 0 {
		m.logger.Debug("reaped idle write queues", zap.Int("count", reaped))
	}
	return reaped
}

// Shutdown refuses new writes, lets queued writes finish and waits until ctx expires.
// Shutdown 关闭管理器并等待已排队的写操作完成
func (m *Manager) Shutdown(ctx context.Context) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	lanes := make([]*lane, 0, len(m.lanes))
	for _, l := range m.lanes {
		l.halt()
		lanes = append(lanes, l)
	}
	m.mu.Unlock()

	close(m.janitorStop)
	m.logger.Info("write queue manager shutting down", zap.Int("queues", len(lanes)))

	for _, l := range lanes {
		select {
		case <-l.done:
		case <-ctx.Done():
			m.logger.Warn("write queue manager shutdown timeout")
			return ctx.Err()
		}
	}
	<-m.janitorDone
	m.logger.Info("write queue manager shutdown completed")
	return nil
}

func (m *Manager) IsClosed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// Metrics 写队列指标
type Metrics struct {
	QueueCapacity int
	ActiveQueues  int
	Executed      int64
	Rejected      int64
	IsClosed      bool
}

func (m *Manager) GetMetrics() Metrics {
	m.mu.Lock()
	active := len(m.lanes)
	closed := m.closed
	m.mu.Unlock()
	return Metrics{
		QueueCapacity: m.config.QueueCapacity,
		ActiveQueues:  active,
		Executed:      m.executed.Load(),
		Rejected:      m.rejected.Load(),
		IsClosed:      closed,
	}
}
