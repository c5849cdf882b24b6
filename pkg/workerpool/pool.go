// Package workerpool runs background jobs (event fan-out, archive uploads)
// on a fixed set of goroutines.
// Package workerpool 固定数量的后台 worker，执行事件推送、归档上传等任务
package workerpool

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
)

var (
	// ErrWorkerPoolFull 任务队列已满
	ErrWorkerPoolFull = errors.New("worker pool queue is full")
	// ErrWorkerPoolClosed Worker Pool 已关闭
	ErrWorkerPoolClosed = errors.New("worker pool is closed")
)

// Config Worker Pool 配置
type Config struct {
	// MaxWorkers worker 数量，默认 8
	MaxWorkers int
	// QueueSize 任务队列大小，默认 1024
	QueueSize int
}

func DefaultConfig() Config {
	return Config{MaxWorkers: 8, QueueSize: 1024}
}

// Job 后台任务，name 只用于日志
type Job struct {
	Name string
	Ctx  context.Context
	Fn   func(context.Context) error
	done chan error
}

// Pool 固定大小的 worker 池
type Pool struct {
	config Config
	logger *zap.Logger

	jobs chan Job
	wg   sync.WaitGroup

	mu     sync.RWMutex
	closed bool

	active    atomic.Int64
	completed atomic.Int64
	failed    atomic.Int64
	dropped   atomic.Int64
}

// New starts the workers. A nil cfg uses DefaultConfig.
func New(cfg *Config, logger *zap.Logger) *Pool {
	c := DefaultConfig()
	if cfg != nil {
		if cfg.MaxWorkers > 0 {
			c.MaxWorkers = cfg.MaxWorkers
		}
		if cfg.QueueSize > 0 {
			c.QueueSize = cfg.QueueSize
		}
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	p := &Pool{
		config: c,
		logger: logger,
		jobs:   make(chan Job, c.QueueSize),
	}
	for i := 0; i < c.MaxWorkers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
	return p
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for job := range p.jobs {
		p.run(job)
	}
}

func (p *Pool) run(job Job) {
	p.active.Add(1)
	defer p.active.Add(-1)

	err := job.Ctx.Err()
	if err == nil {
		err = p.call(job)
	}
	if err != nil {
		p.failed.Add(1)
		p.logger.Warn("background job failed", zap.String("job", job.Name), zap.Error(err))
	} else {
		p.completed.Add(1)
	}
	if job.done != nil {
		job.done <- err
	}
}

// call 任务 panic 不能拖垮 worker
func (p *Pool) call(job Job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("background job panicked", zap.String("job", job.Name), zap.Any("panic", r))
			err = errors.New("job panicked")
		}
	}()
	return job.Fn(job.Ctx)
}

func (p *Pool) enqueue(job Job) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrWorkerPoolClosed
	}
	select {
	case p.jobs <- job:
		return nil
	default:
		p.dropped.Add(1)
		return ErrWorkerPoolFull
	}
}

// Submit 提交任务并等待结果
func (p *Pool) Submit(ctx context.Context, name string, fn func(context.Context) error) error {
	done := make(chan error, 1)
	if err := p.enqueue(Job{Name: name, Ctx: ctx, Fn: fn, done: done}); err != nil {
		return err
	}
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// SubmitAsync 提交任务，不等待结果
func (p *Pool) SubmitAsync(ctx context.Context, name string, fn func(context.Context) error) error {
	return p.enqueue(Job{Name: name, Ctx: ctx, Fn: fn})
}

// Shutdown stops accepting jobs and waits for the queue to drain.
// Shutdown 停止接收任务并等待队列清空
func (p *Pool) Shutdown(ctx context.Context) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	close(p.jobs)
	p.mu.Unlock()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		p.logger.Warn("worker pool shutdown timeout", zap.Int("queued", len(p.jobs)))
		return ctx.Err()
	}
}

// Stats Worker Pool 运行指标
type Stats struct {
	MaxWorkers int   `json:"maxWorkers"`
	Active     int64 `json:"active"`
	Queued     int   `json:"queued"`
	Completed  int64 `json:"completed"`
	Failed     int64 `json:"failed"`
	Dropped    int64 `json:"dropped"`
	Closed     bool  `json:"closed"`
}

func (p *Pool) Stats() Stats {
	p.mu.RLock()
	closed := p.closed
	p.mu.RUnlock()
	return Stats{
		MaxWorkers: p.config.MaxWorkers,
		Active:     p.active.Load(),
		Queued:     len(p.jobs),
		Completed:  p.completed.Load(),
		Failed:     p.failed.Load(),
		Dropped:    p.dropped.Load(),
		Closed:     closed,
	}
}
