// Package fragcache is the per-user fragment cache on local persistent storage.
package fragcache

import (
	"time"

	"github.com/bytedance/sonic"
	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/haierkeys/murverse-service/pkg/fragment"
	"github.com/haierkeys/murverse-service/pkg/logger"
)

const (
	DefaultPrefix = "murverse_fragments_cache_"
	DefaultTTL    = 5 * time.Minute
	// DefaultCleanupSpec runs the janitor hourly.
	DefaultCleanupSpec = "@every 1h"
)

// entry is the persisted value: {data, timestamp, ttl}, both times in milliseconds.
type entry struct {
	Data      []*fragment.Fragment `json:"data"`
	Timestamp int64                `json:"timestamp"`
	TTL       int64                `json:"ttl"`
}

func (e *entry) valid(now time.Time) bool {
	return now.UnixMilli()-e.Timestamp < e.TTL
}

// Store 按用户缓存碎片列表，带 TTL
type Store struct {
	backend Backend
	prefix  string
	ttl     time.Duration
	now     func() time.Time
	logger  *zap.Logger
}

type Option func(*Store)

func WithPrefix(prefix string) Option {
	return func(s *Store) { s.prefix = prefix }
}

// WithTTL sets the TTL used when Set is called with ttl <= 0.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) { s.ttl = ttl }
}

func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func WithLogger(l *zap.Logger) Option {
	return func(s *Store) { s.logger = l }
}

func New(backend Backend, opts ...Option) *Store {
	s := &Store{
		backend: backend,
		prefix:  DefaultPrefix,
		ttl:     DefaultTTL,
		now:     time.Now,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) key(uid string) string {
	return s.prefix + uid
}

// Get returns the cached list only while it is fresh. Expired and corrupted
// entries are misses; corrupted ones are deleted on the spot.
// Get 读取缓存：过期或损坏都视为未命中，损坏的条目会被删除
func (s *Store) Get(uid string) ([]*fragment.Fragment, bool) {
	key := s.key(uid)
	raw, ok, err := s.backend.Get(key)
	if err != nil {
		s.logger.Warn("fragcache get failed", zap.String(logger.FieldKey, key), zap.Error(err))
		return nil, false
	}
	if !ok {
		return nil, false
	}

	var e entry
	if err := sonic.Unmarshal(raw, &e); err != nil {
		s.logger.Warn("fragcache entry corrupted, removing", zap.String(logger.FieldKey, key), zap.Error(err))
		_ = s.backend.Remove(key)
		return nil, false
	}
	if !e.valid(s.now()) {
		return nil, false
	}
	return e.Data, true
}

// Set stores data for uid stamped with the current time. When the backend is
// full it sweeps expired entries and retries once; if that still fails the
// write is dropped and ErrQuotaExceeded is returned.
// Set 写入缓存；配额不足时先清理再重试一次，仍失败则放弃写入
func (s *Store) Set(uid string, data []*fragment.Fragment, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = s.ttl
	}
	raw, err := sonic.Marshal(&entry{
		Data:      data,
		Timestamp: s.now().UnixMilli(),
		TTL:       ttl.Milliseconds(),
	})
	if err != nil {
		return errors.Wrap(err, "encode cache entry")
	}

	key := s.key(uid)
	err = s.backend.Set(key, raw)
	if errors.Is(err, ErrQuotaExceeded) {
		removed := s.Cleanup()
		s.logger.Info("fragcache quota exceeded, cleaned up", zap.Int(logger.FieldCount, removed))
		err = s.backend.Set(key, raw)
	}
	if err != nil {
		s.logger.Warn("fragcache write dropped", zap.String(logger.FieldKey, key), zap.Error(err))
		return err
	}
	return nil
}

// Clear removes the entry of uid.
func (s *Store) Clear(uid string) error {
	return s.backend.Remove(s.key(uid))
}

// Cleanup deletes every entry under the prefix that is expired or cannot be
// parsed, and returns how many were removed.
// Cleanup 清理过期或无法解析的条目
func (s *Store) Cleanup() int {
	keys, err := s.backend.Keys(s.prefix)
	if err != nil {
		s.logger.Warn("fragcache cleanup list failed", zap.Error(err))
		return 0
	}
	now := s.now()
	removed := 0
	for _, key := range keys {
		raw, ok, err := s.backend.Get(key)
		if err != nil || !ok {
			continue
		}
		var e entry
		if err := sonic.Unmarshal(raw, &e); err == nil && e.valid(now) {
			continue
		}
		if err := s.backend.Remove(key); err != nil {
			s.logger.Warn("fragcache cleanup remove failed", zap.String(logger.FieldKey, key), zap.Error(err))
			continue
		}
		removed++
	}
	return removed
}

// StartJanitor runs Cleanup on a cron schedule (DefaultCleanupSpec when spec
// is empty) until the returned stop function is called.
// StartJanitor 启动定时清理任务
func (s *Store) StartJanitor(spec string) (stop func(), err error) {
	if spec == "" {
		spec = DefaultCleanupSpec
	}
	c := cron.New()
	if _, err := c.AddFunc(spec, func() {
		if n := s.Cleanup(); n > 0 {
			s.logger.Debug("fragcache janitor removed entries", zap.Int(logger.FieldCount, n))
		}
	}); err != nil {
		return nil, errors.Wrapf(err, "schedule cache janitor %q", spec)
	}
	c.Start()
	return func() { <-c.Stop().Done() }, nil
}
