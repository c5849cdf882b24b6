package util

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDuration(t *testing.T) {
	tests := []struct {
		in   string
		want time.Duration
	}{
		{"30d", 30 * 24 * time.Hour},
		{" 1h ", time.Hour},
		{"90", 90 * time.Second},
		{"10m", 10 * time.Minute},
	}
	for _, tt := range tests {
		got, err := ParseDuration(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := ParseDuration("xd")
	assert.Error(t, err)
}

func TestGetRandomString(t *testing.T) {
	a := GetRandomString(32)
	assert.Len(t, a, 32)
	assert.Regexp(t, `^[a-zA-Z0-9]+$`, a)
	assert.NotEqual(t, a, GetRandomString(32))
}

func TestValidators(t *testing.T) {
	assert.True(t, IsValidEmail("alice@example.com"))
	assert.False(t, IsValidEmail("alice@"))
	assert.True(t, IsValidUsername("alice_1"))
	assert.False(t, IsValidUsername("al"))
	assert.True(t, InSlice([]int64{1, 2}, 2))
	assert.Equal(t, "5d41402abc4b2a76b9719d911017c592", EncodeMD5("hello"))
}

func TestPasswordHash(t *testing.T) {
	hash, err := GeneratePasswordHash("secret123")
	require.NoError(t, err)
	assert.True(t, CheckPasswordHash(hash, "secret123"))
	assert.False(t, CheckPasswordHash(hash, "secret124"))
}

func TestOSReleaseName(t *testing.T) {
	path := filepath.Join(t.TempDir(), "os-release")
	require.NoError(t, os.WriteFile(path, []byte("NAME=\"Debian\"\nPRETTY_NAME=\"Debian GNU/Linux 12 (bookworm)\"\n"), 0o644))
	assert.Equal(t, "Debian GNU/Linux 12 (bookworm)", osReleaseName(path))
	assert.Empty(t, osReleaseName(filepath.Join(t.TempDir(), "missing")))
}
