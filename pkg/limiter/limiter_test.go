package limiter

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ctxFor(path string) *gin.Context {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("POST", path, nil)
	return c
}

func TestMethodLimiter_LongestPrefix(t *testing.T) {
	gin.SetMode(gin.TestMode)
	l := NewMethodLimiter().AddBuckets(
		BucketRule{Key: "/api/user", FillInterval: time.Second, Capacity: 5, Quantum: 5},
		BucketRule{Key: "/api/user/login", FillInterval: time.Second, Capacity: 2, Quantum: 2},
	)

	assert.Equal(t, "/api/user/login", l.Key(ctxFor("/api/user/login")))
	assert.Equal(t, "/api/user", l.Key(ctxFor("/api/user/register")))
	assert.Equal(t, "", l.Key(ctxFor("/api/fragments")))

	_, ok := l.GetBucket("")
	assert.False(t, ok)
}

func TestMethodLimiter_BucketDrains(t *testing.T) {
	l := NewMethodLimiter().AddBuckets(BucketRule{Key: "/api/user/login", FillInterval: time.Hour, Capacity: 2, Quantum: 1})
	bucket, ok := l.GetBucket("/api/user/login")
	require.True(t, ok)

	assert.Equal(t, int64(1), bucket.TakeAvailable(1))
	assert.Equal(t, int64(1), bucket.TakeAvailable(1))
	assert.Equal(t, int64(0), bucket.TakeAvailable(1))
}
