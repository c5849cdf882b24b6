package task

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/haierkeys/murverse-service/pkg/safe_close"
)

type countingTask struct {
	runs     atomic.Int32
	interval time.Duration
	startup  bool
	fn       func(ctx context.Context) error
}

func (t *countingTask) Name() string                { return "counting" }
func (t *countingTask) LoopInterval() time.Duration { return t.interval }
func (t *countingTask) IsStartupRun() bool          { return t.startup }
func (t *countingTask) Run(ctx context.Context) error {
	t.runs.Add(1)
	if t.fn != nil {
		return t.fn(ctx)
	}
	return nil
}

func TestScheduler_StartupAndLoop(t *testing.T) {
	sc := safe_close.NewSafeClose()
	s := NewScheduler(zap.NewNop(), sc)
	task := &countingTask{interval: 10 * time.Millisecond, startup: true}
	s.AddTask(task)
	s.Start()

	require.Eventually(t, func() bool { return task.runs.Load() >= 3 }, 2*time.Second, 5*time.Millisecond)
	sc.SendCloseSignal(nil)
	require.NoError(t, sc.WaitClosed())

	after := task.runs.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, after, task.runs.Load())
}

func TestScheduler_StartupOnly(t *testing.T) {
	sc := safe_close.NewSafeClose()
	s := NewScheduler(zap.NewNop(), sc)
	task := &countingTask{startup: true}
	s.AddTask(task)
	s.Start()

	// 没有循环间隔的任务执行一次后立即退出
	require.NoError(t, sc.WaitClosed())
	assert.Equal(t, int32(1), task.runs.Load())
}

func TestScheduler_ErrorAndPanicAreLogged(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	sc := safe_close.NewSafeClose()
	s := NewScheduler(zap.New(core), sc)

	s.AddTask(&countingTask{startup: true, fn: func(context.Context) error { return errors.New("boom") }})
	s.AddTask(&countingTask{startup: true, fn: func(context.Context) error { panic("kaput") }})
	s.Start()

	require.NoError(t, sc.WaitClosed())
	messages := []string{}
	for _, e := range logs.All() {
		messages = append(messages, e.Message)
	}
	assert.ElementsMatch(t, []string{"task running error", "task panic"}, messages)
}

func TestScheduler_CloseCancelsRunningTask(t *testing.T) {
	sc := safe_close.NewSafeClose()
	s := NewScheduler(zap.NewNop(), sc)
	started := make(chan struct{})
	task := &countingTask{startup: true, fn: func(ctx context.Context) error {
		close(started)
		<-ctx.Done()
		return ctx.Err()
	}}
	s.AddTask(task)
	s.Start()

	<-started
	sc.SendCloseSignal(nil)
	require.NoError(t, sc.WaitClosed())
}

type cronTask struct {
	countingTask
	spec string
}

func (t *cronTask) CronSpec() string { return t.spec }

func TestScheduler_CronSpec(t *testing.T) {
	sc := safe_close.NewSafeClose()
	s := NewScheduler(zap.NewNop(), sc)
	task := &cronTask{spec: "@every 1s"}
	task.interval = time.Hour
	s.AddTask(task)
	s.Start()

	require.Eventually(t, func() bool { return task.runs.Load() >= 1 }, 3*time.Second, 20*time.Millisecond)
	sc.SendCloseSignal(nil)
	require.NoError(t, sc.WaitClosed())
}

func TestScheduler_InvalidCronSpecIsLogged(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	sc := safe_close.NewSafeClose()
	s := NewScheduler(zap.New(core), sc)
	s.AddTask(&cronTask{spec: "not a cron"})
	s.Start()

	require.NoError(t, sc.WaitClosed())
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "task cron spec invalid", logs.All()[0].Message)
}
