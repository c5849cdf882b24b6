package safe_close

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSafeClose_WaitsForAttached(t *testing.T) {
	sc := NewSafeClose()
	var stopped atomic.Int32
	for i := 0; i < 3; i++ {
		sc.Attach(func(done func(), closeSignal <-chan struct{}) {
			defer done()
			<-closeSignal
			time.Sleep(10 * time.Millisecond)
			stopped.Add(1)
		})
	}

	assert.False(t, sc.IsClosed())
	sc.SendCloseSignal(nil)
	require.NoError(t, sc.WaitClosed())
	assert.Equal(t, int32(3), stopped.Load())
	assert.True(t, sc.IsClosed())
}

func TestSafeClose_FirstErrorWins(t *testing.T) {
	sc := NewSafeClose()
	first := errors.New("listen failed")
	sc.Attach(func(done func(), closeSignal <-chan struct{}) {
		defer done()
		sc.SendCloseSignal(first)
	})
	sc.Attach(func(done func(), closeSignal <-chan struct{}) {
		defer done()
		<-closeSignal
		sc.SendCloseSignal(errors.New("second"))
	})

	assert.ErrorIs(t, sc.WaitClosed(), first)
}

func TestSafeClose_DoneTwice(t *testing.T) {
	sc := NewSafeClose()
	sc.Attach(func(done func(), closeSignal <-chan struct{}) {
		done()
		done()
	})
	sc.SendCloseSignal(nil)
	sc.SendCloseSignal(nil)
	assert.NoError(t, sc.WaitClosed())
}
