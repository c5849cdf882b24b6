package fragcache

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/haierkeys/murverse-service/pkg/fragment"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func sample() []*fragment.Fragment {
	return []*fragment.Fragment{{ID: "f1", Content: "buy milk", Tags: []string{"errand"}}}
}

func TestStore_TTLBoundary(t *testing.T) {
	tests := []struct {
		name    string
		elapsed time.Duration
		hit     bool
	}{
		{name: "fresh", elapsed: 0, hit: true},
		{name: "just before ttl", elapsed: 999 * time.Millisecond, hit: true},
		{name: "exactly ttl", elapsed: 1000 * time.Millisecond, hit: false},
		{name: "just after ttl", elapsed: 1001 * time.Millisecond, hit: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clock := &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
			s := New(NewMemoryBackend(0), WithClock(clock.Now))

			require.NoError(t, s.Set("u1", sample(), time.Second))
			clock.Advance(tt.elapsed)

			got, ok := s.Get("u1")
			assert.Equal(t, tt.hit, ok)
			if tt.hit {
				require.Len(t, got, 1)
				assert.Equal(t, "buy milk", got[0].Content)
			}
		})
	}
}

func TestStore_DefaultTTL(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	s := New(NewMemoryBackend(0), WithClock(clock.Now))

	require.NoError(t, s.Set("u1", sample(), 0))
	clock.Advance(DefaultTTL - time.Millisecond)
	_, ok := s.Get("u1")
	assert.True(t, ok)

	clock.Advance(time.Millisecond)
	_, ok = s.Get("u1")
	assert.False(t, ok)
}

func TestStore_MissAndClear(t *testing.T) {
	s := New(NewMemoryBackend(0))

	_, ok := s.Get("nobody")
	assert.False(t, ok)

	require.NoError(t, s.Set("u1", sample(), time.Minute))
	require.NoError(t, s.Clear("u1"))
	_, ok = s.Get("u1")
	assert.False(t, ok)
}

func TestStore_CorruptedEntryIsDeletedOnRead(t *testing.T) {
	backend := NewMemoryBackend(0)
	s := New(backend)
	require.NoError(t, backend.Set(DefaultPrefix+"u1", []byte("{not json")))

	_, ok := s.Get("u1")
	assert.False(t, ok)

	_, exists, _ := backend.Get(DefaultPrefix + "u1")
	assert.False(t, exists)
}

func TestStore_Cleanup(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	backend := NewMemoryBackend(0)
	s := New(backend, WithClock(clock.Now))

	require.NoError(t, s.Set("old", sample(), time.Second))
	require.NoError(t, s.Set("new", sample(), time.Hour))
	require.NoError(t, backend.Set(DefaultPrefix+"broken", []byte("??")))
	require.NoError(t, backend.Set("unrelated", []byte("??")))

	clock.Advance(2 * time.Second)
	assert.Equal(t, 2, s.Cleanup())

	keys, err := backend.Keys("")
	require.NoError(t, err)
	assert.Equal(t, []string{DefaultPrefix + "new", "unrelated"}, keys)
}

func TestStore_QuotaCleanupThenRetry(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	probe := New(NewMemoryBackend(0), WithClock(clock.Now))
	require.NoError(t, probe.Set("x", sample(), time.Second))
	raw, _, _ := probe.backend.Get(DefaultPrefix + "x")

	// room for one entry only
	backend := NewMemoryBackend(int64(len(raw)) + 8)
	s := New(backend, WithClock(clock.Now))

	require.NoError(t, s.Set("a", sample(), time.Second))
	clock.Advance(2 * time.Second)

	// "a" has expired, so the retry after cleanup succeeds
	require.NoError(t, s.Set("b", sample(), time.Second))
	_, ok := s.Get("b")
	assert.True(t, ok)
	_, exists, _ := backend.Get(DefaultPrefix + "a")
	assert.False(t, exists)
}

func TestStore_QuotaDropsWriteWithWarning(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	backend := NewMemoryBackend(16)
	s := New(backend, WithLogger(zap.New(core)))

	err := s.Set("u1", sample(), time.Minute)
	assert.ErrorIs(t, err, ErrQuotaExceeded)
	assert.Equal(t, 1, logs.FilterMessage("fragcache write dropped").Len())

	_, ok := s.Get("u1")
	assert.False(t, ok)
}

func TestStore_FileBackend(t *testing.T) {
	backend, err := NewFileBackend(t.TempDir(), 0)
	require.NoError(t, err)
	s := New(backend)

	require.NoError(t, s.Set("user/with:odd chars", sample(), time.Minute))
	got, ok := s.Get("user/with:odd chars")
	require.True(t, ok)
	assert.Equal(t, "f1", got[0].ID)

	keys, err := backend.Keys(DefaultPrefix)
	require.NoError(t, err)
	assert.Equal(t, []string{DefaultPrefix + "user/with:odd chars"}, keys)
}

func TestFileBackend_Quota(t *testing.T) {
	backend, err := NewFileBackend(t.TempDir(), 10)
	require.NoError(t, err)

	require.NoError(t, backend.Set("a", []byte("12345")))
	// replacing a key does not count its old size
	require.NoError(t, backend.Set("a", []byte("1234567890")))
	assert.ErrorIs(t, backend.Set("b", []byte("1")), ErrQuotaExceeded)

	require.NoError(t, backend.Remove("a"))
	require.NoError(t, backend.Set("b", []byte("1")))
	require.NoError(t, backend.Remove("missing"))
}

func TestStore_StartJanitor(t *testing.T) {
	s := New(NewMemoryBackend(0))

	stop, err := s.StartJanitor("")
	require.NoError(t, err)
	stop()

	_, err = s.StartJanitor("not a schedule")
	assert.Error(t, err)
}
