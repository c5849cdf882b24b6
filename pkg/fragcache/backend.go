package fragcache

import (
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/pkg/errors"
)

// ErrQuotaExceeded is returned by a Backend when a write would exceed its quota.
var ErrQuotaExceeded = errors.New("fragcache: storage quota exceeded")

// Backend is a persistent string-keyed byte store.
// Backend 本地持久化存储接口
type Backend interface {
	Get(key string) ([]byte, bool, error)
	Set(key string, value []byte) error
	Remove(key string) error
	Keys(prefix string) ([]string, error)
}

// FileBackend keeps one file per key inside a directory.
// FileBackend 每个 key 对应目录中的一个文件
type FileBackend struct {
	dir   string
	quota int64
	mu    sync.Mutex
}

// NewFileBackend creates dir if needed. quota is the byte budget of the
// directory; zero or less means unlimited.
func NewFileBackend(dir string, quota int64) (*FileBackend, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(err, "create cache dir")
	}
	return &FileBackend{dir: dir, quota: quota}, nil
}

func (b *FileBackend) path(key string) string {
	return filepath.Join(b.dir, url.PathEscape(key)+".json")
}

func (b *FileBackend) Get(key string) ([]byte, bool, error) {
	data, err := os.ReadFile(b.path(key))
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Wrapf(err, "read cache key %s", key)
	}
	return data, true, nil
}

func (b *FileBackend) Set(key string, value []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.quota > 0 {
		used, err := b.usage(key)
		if err != nil {
			return err
		}
		if used+int64(len(value)) > b.quota {
			return ErrQuotaExceeded
		}
	}

	tmp, err := os.CreateTemp(b.dir, ".tmp-*")
	if err != nil {
		return errors.Wrap(err, "create temp cache file")
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(value); err != nil {
		tmp.Close()
		return errors.Wrap(err, "write cache file")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "close cache file")
	}
	return errors.Wrap(os.Rename(tmp.Name(), b.path(key)), "commit cache file")
}

// usage sums the size of every entry except key, which is about to be replaced.
func (b *FileBackend) usage(key string) (int64, error) {
	entries, err := os.ReadDir(b.dir)
	if err != nil {
		return 0, errors.Wrap(err, "read cache dir")
	}
	skip := filepath.Base(b.path(key))
	var total int64
	for _, e := range entries {
		if e.IsDir() || e.Name() == skip || strings.HasPrefix(e.Name(), ".tmp-") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		total += info.Size()
	}
	return total, nil
}

func (b *FileBackend) Remove(key string) error {
	err := os.Remove(b.path(key))
	if err != nil && !os.IsNotExist(err) {
		return errors.Wrapf(err, "remove cache key %s", key)
	}
	return nil
}

func (b *FileBackend) Keys(prefix string) ([]string, error) {
	entries, err := os.ReadDir(b.dir)
	if err != nil {
		return nil, errors.Wrap(err, "read cache dir")
	}
	var keys []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		key, err := url.PathUnescape(strings.TrimSuffix(name, ".json"))
		if err != nil {
			continue
		}
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

// MemoryBackend is an in-process Backend, mostly for tests and short-lived CLIs.
type MemoryBackend struct {
	mu    sync.RWMutex
	data  map[string][]byte
	quota int64
}

func NewMemoryBackend(quota int64) *MemoryBackend {
	return &MemoryBackend{data: map[string][]byte{}, quota: quota}
}

func (m *MemoryBackend) Get(key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *MemoryBackend) Set(key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.quota > 0 {
		var used int64
		for k, v := range m.data {
			if k != key {
				used += int64(len(v))
			}
		}
		if used+int64(len(value)) > m.quota {
			return ErrQuotaExceeded
		}
	}
	m.data[key] = append([]byte(nil), value...)
	return nil
}

func (m *MemoryBackend) Remove(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func (m *MemoryBackend) Keys(prefix string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var keys []string
	for k := range m.data {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}
