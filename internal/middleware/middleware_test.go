package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/haierkeys/murverse-service/pkg/app"
	"github.com/haierkeys/murverse-service/pkg/limiter"
)

const secret = "middleware-secret"

func token(t *testing.T, uid int64) string {
	t.Helper()
	tok, err := app.NewTokenManager(app.TokenConfig{SecretKey: secret}).Generate(uid, "u", "")
	require.NoError(t, err)
	return tok
}

func serve(r *gin.Engine, method, path string, header map[string]string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, nil)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	r.ServeHTTP(w, req)
	return w
}

func TestUserAuthToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/p", UserAuthTokenWithConfig(secret), func(c *gin.Context) {
		c.String(http.StatusOK, "%d", app.GetUID(c))
	})

	w := serve(r, "GET", "/p", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = serve(r, "GET", "/p", map[string]string{"Authorization": "Bearer nonsense"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = serve(r, "GET", "/p", map[string]string{"Authorization": "Bearer " + token(t, 12)})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "12", w.Body.String())
}

func TestAdminOnly(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/admin", UserAuthTokenWithConfig(secret), AdminOnly(func(uid int64) bool { return uid == 1 }), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	assert.Equal(t, http.StatusForbidden, serve(r, "GET", "/admin", map[string]string{"Authorization": "Bearer " + token(t, 2)}).Code)
	assert.Equal(t, http.StatusNoContent, serve(r, "GET", "/admin", map[string]string{"Authorization": "Bearer " + token(t, 1)}).Code)
}

func TestRecoveryWithLogger(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, logs := observer.New(zap.ErrorLevel)
	r := gin.New()
	r.Use(RecoveryWithLogger(zap.New(core)))
	r.GET("/boom", func(c *gin.Context) { panic("db exploded") })

	w := serve(r, "GET", "/boom", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "db exploded")
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "Recovered from panic", logs.All()[0].Message)
}

func TestTraceMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(TraceMiddlewareWithConfig(true, ""))
	r.GET("/t", func(c *gin.Context) {
		assert.Equal(t, GetTraceIDFromGin(c), GetTraceID(c.Request.Context()))
		c.Status(http.StatusOK)
	})

	w := serve(r, "GET", "/t", nil)
	assert.NotEmpty(t, w.Header().Get(DefaultTraceIDHeader))

	w = serve(r, "GET", "/t", map[string]string{DefaultTraceIDHeader: "given-id"})
	assert.Equal(t, "given-id", w.Header().Get(DefaultTraceIDHeader))
}

func TestCorsPreflight(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Cors())
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := serve(r, "OPTIONS", "/x", map[string]string{"Origin": "http://localhost:5173"})
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRateLimiter(t *testing.T) {
	gin.SetMode(gin.TestMode)
	l := limiter.NewMethodLimiter().AddBuckets(limiter.BucketRule{Key: "/login", FillInterval: time.Hour, Capacity: 1, Quantum: 1})
	r := gin.New()
	r.Use(RateLimiter(l))
	r.GET("/login", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/other", func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusOK, serve(r, "GET", "/login", nil).Code)
	w := serve(r, "GET", "/login", nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "1", w.Header().Get("Retry-After"))
	assert.Equal(t, http.StatusOK, serve(r, "GET", "/other", nil).Code)
}

func TestNoFound(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.NoRoute(NoFound())
	assert.Equal(t, http.StatusNotFound, serve(r, "GET", "/missing", nil).Code)
}
