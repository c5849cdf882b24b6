// Package store holds one user's fragment collection in memory and mediates
// between the local cache, the network repository and the views built on top.
// Package store 碎片状态容器：缓存优先加载、逐条保存、写时复制的变更
package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/haierkeys/murverse-service/pkg/fragment"
	"github.com/haierkeys/murverse-service/pkg/logger"
	"github.com/haierkeys/murverse-service/pkg/search"
)

// Repository is the network side of the container.
type Repository interface {
	All(ctx context.Context) ([]*fragment.Fragment, error)
	// Save overwrites the fragment keyed by its id.
	Save(ctx context.Context, f *fragment.Fragment) error
}

// Cache is satisfied by *fragcache.Store.
type Cache interface {
	Get(uid string) ([]*fragment.Fragment, bool)
	Set(uid string, data []*fragment.Fragment, ttl time.Duration) error
}

type Provenance string

const (
	ProvenanceNone    Provenance = ""
	ProvenanceCache   Provenance = "cache"
	ProvenanceNetwork Provenance = "network"
)

type Status string

const (
	StatusIdle    Status = "idle"
	StatusLoading Status = "loading"
	StatusReady   Status = "ready"
	StatusError   Status = "error"
)

// DefaultSaveConcurrency bounds parallel upserts in Save.
const DefaultSaveConcurrency = 8

// Snapshot is a read-only view of the container state.
type Snapshot struct {
	Fragments  []*fragment.Fragment
	Provenance Provenance
	Status     Status
	Err        string
}

// SaveFailure is one fragment the repository rejected.
type SaveFailure struct {
	ID  string
	Err error
}

// SaveResult lists saved and failed ids in collection order.
type SaveResult struct {
	Saved  []string
	Failed []SaveFailure
}

// OK reports whether every fragment was saved.
func (r SaveResult) OK() bool { return len(r.Failed) == 0 }

type Store struct {
	uid      string
	repo     Repository
	cache    Cache
	cacheTTL time.Duration
	logger   *zap.Logger
	now      func() time.Time
	newID    func() string
	parallel int
	onChange func(Snapshot)

	// mu serializes mutations; readers copy the slice header under RLock.
	mu         sync.RWMutex
	fragments  []*fragment.Fragment
	provenance Provenance
	status     Status
	errMsg     string
	query      search.Query

	refresh singleflight.Group
	bg      sync.WaitGroup
}

type Option func(*Store)

func WithCache(c Cache, ttl time.Duration) Option {
	return func(s *Store) {
		s.cache = c
		s.cacheTTL = ttl
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(s *Store) { s.logger = l }
}

func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDGenerator replaces uuid ids for new fragments and notes.
func WithIDGenerator(fn func() string) Option {
	return func(s *Store) { s.newID = fn }
}

func WithSaveConcurrency(n int) Option {
	return func(s *Store) { s.parallel = n }
}

// WithListener is called after every state change, outside the lock.
func WithListener(fn func(Snapshot)) Option {
	return func(s *Store) { s.onChange = fn }
}

// New 创建状态容器，uid 用作缓存 key
func New(uid string, repo Repository, opts ...Option) *Store {
	s := &Store{
		uid:      uid,
		repo:     repo,
		logger:   zap.NewNop(),
		now:      time.Now,
		newID:    uuid.NewString,
		parallel: DefaultSaveConcurrency,
		status:   StatusIdle,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Snapshot returns the current state.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

func (s *Store) snapshotLocked() Snapshot {
	return Snapshot{
		Fragments:  append([]*fragment.Fragment(nil), s.fragments...),
		Provenance: s.provenance,
		Status:     s.status,
		Err:        s.errMsg,
	}
}

func (s *Store) notify(snap Snapshot) {
	if s.onChange != nil {
		s.onChange(snap)
	}
}

// Load publishes the cached collection when there is one and revalidates it
// from the network in the background. On a miss the network fetch runs
// inline with status loading.
// Load 缓存命中时先发布缓存数据，再在后台从网络刷新；未命中时同步拉取
func (s *Store) Load(ctx context.Context) error {
	if s.cache != nil {
		if data, ok := s.cache.Get(s.uid); ok {
			s.publish(data, ProvenanceCache)
			s.logger.Debug("fragments loaded", zap.String(logger.FieldSource, string(ProvenanceCache)), zap.Int(logger.FieldCount, len(data)))

			s.bg.Add(1)
			go func() {
				defer s.bg.Done()
				_ = s.revalidate(context.WithoutCancel(ctx))
			}()
			return nil
		}
	}

	s.mu.Lock()
	s.status = StatusLoading
	s.errMsg = ""
	snap := s.snapshotLocked()
	s.mu.Unlock()
	s.notify(snap)

	return s.revalidate(ctx)
}

// Wait blocks until background refreshes started by Load finish.
func (s *Store) Wait() {
	s.bg.Wait()
}

// revalidate fetches from the repository; concurrent callers share one fetch.
func (s *Store) revalidate(ctx context.Context) error {
	_, err, _ := s.refresh.Do("all", func() (any, error) {
		data, err := s.repo.All(ctx)
		if err != nil {
			s.logger.Warn("fragments fetch failed", zap.String(logger.FieldSource, string(ProvenanceNetwork)), zap.Error(err))
			s.mu.Lock()
			s.status = StatusError
			s.errMsg = err.Error()
			snap := s.snapshotLocked()
			s.mu.Unlock()
			s.notify(snap)
			return nil, err
		}

		s.publish(data, ProvenanceNetwork)
		s.writeCache(data)
		s.logger.Debug("fragments loaded", zap.String(logger.FieldSource, string(ProvenanceNetwork)), zap.Int(logger.FieldCount, len(data)))
		return nil, nil
	})
	return err
}

func (s *Store) publish(data []*fragment.Fragment, p Provenance) {
	s.mu.Lock()
	s.fragments = data
	s.provenance = p
	s.status = StatusReady
	s.errMsg = ""
	snap := s.snapshotLocked()
	s.mu.Unlock()
	s.notify(snap)
}

func (s *Store) writeCache(data []*fragment.Fragment) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(s.uid, data, s.cacheTTL); err != nil {
		s.logger.Warn("fragment cache write failed", zap.Error(err))
	}
}

// Save upserts every fragment of the collection. Writes run concurrently and
// are not transactional; failures are logged and reported, never retried.
// Save 逐条覆盖保存，部分失败时返回失败的 ID
func (s *Store) Save(ctx context.Context) SaveResult {
	return s.saveFragments(ctx, s.Snapshot().Fragments)
}

func (s *Store) saveFragments(ctx context.Context, list []*fragment.Fragment) SaveResult {
	errs := make([]error, len(list))

	var g errgroup.Group
	g.SetLimit(s.parallel)
	for i, f := range list {
		g.Go(func() error {
			errs[i] = s.repo.Save(ctx, f)
			return nil
		})
	}
	_ = g.Wait()

	var res SaveResult
	for i, f := range list {
		if errs[i] != nil {
			s.logger.Warn("fragment save failed", zap.String(logger.FieldFragmentID, f.ID), zap.Error(errs[i]))
			res.Failed = append(res.Failed, SaveFailure{ID: f.ID, Err: errs[i]})
			continue
		}
		res.Saved = append(res.Saved, f.ID)
	}

	if !res.OK() {
		s.mu.Lock()
		s.errMsg = saveErrorMessage(len(res.Failed))
		snap := s.snapshotLocked()
		s.mu.Unlock()
		s.notify(snap)
	} else {
		s.writeCache(s.Snapshot().Fragments)
	}
	return res
}

func saveErrorMessage(n int) string {
	if n == 1 {
		return "failed to save 1 fragment"
	}
	return fmt.Sprintf("failed to save %d fragments", n)
}
