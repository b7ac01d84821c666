package middleware

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/clean-auth/internal/infrastructure/blacklist"
	"github.com/oksasatya/clean-auth/pkg/helpers"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func do(r http.Handler, method, path string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func bearer(tok string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + tok}
}

func TestBearerToken(t *testing.T) {
	cases := map[string]string{
		"Bearer abc":   "abc",
		"bearer  abc ": "abc",
		"Basic abc":    "",
		"Bearer":       "",
		"":             "",
		"BEARER x.y.z": "x.y.z",
	}
	for header, want := range cases {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
		c.Request.Header.Set("Authorization", header)
		assert.Equal(t, want, BearerToken(c), header)
	}
}

func TestBlacklistGateWithJWTAuth(t *testing.T) {
	jwt := helpers.NewJWTManager("gate-secret-gate-secret-gate-secret", "clean-auth", time.Hour)
	reg := blacklist.NewRegistry()

	r := gin.New()
	r.Use(Blacklist(reg))
	r.GET("/public", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	r.GET("/me", JWTAuth(jwt), func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(CtxUserIDKey)+"/"+c.GetString(CtxUsernameKey))
	})

	tok, _, err := jwt.IssueAccessToken("u-1", "alice")
	require.NoError(t, err)

	assert.Equal(t, http.StatusNoContent, do(r, http.MethodGet, "/public", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, do(r, http.MethodGet, "/me", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, do(r, http.MethodGet, "/me", bearer("not-a-jwt")).Code)

	w := do(r, http.MethodGet, "/me", bearer(tok))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "u-1/alice", w.Body.String())

	reg.Revoke(tok)
	assert.Equal(t, http.StatusUnauthorized, do(r, http.MethodGet, "/me", bearer(tok)).Code)
	// The gate runs before every route, public ones included.
	assert.Equal(t, http.StatusUnauthorized, do(r, http.MethodGet, "/public", bearer(tok)).Code)
}

func TestRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString("request_id")) })

	w := do(r, http.MethodGet, "/", nil)
	assert.Len(t, w.Body.String(), 36)
	assert.Equal(t, w.Body.String(), w.Header().Get(RequestIDHeader))

	id := "6f1c1c4e-3b8e-4f58-9a3e-0d9c6a2f7b11"
	w = do(r, http.MethodGet, "/", map[string]string{RequestIDHeader: id})
	assert.Equal(t, id, w.Body.String())

	w = do(r, http.MethodGet, "/", map[string]string{RequestIDHeader: "<script>"})
	assert.NotEqual(t, "<script>", w.Body.String())
}

func TestRealIP(t *testing.T) {
	r := gin.New()
	r.Use(RealIP())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString("real_ip")) })

	assert.Equal(t, "203.0.113.7", do(r, http.MethodGet, "/", map[string]string{"CF-Connecting-IP": "203.0.113.7"}).Body.String())
	assert.Equal(t, "198.51.100.1", do(r, http.MethodGet, "/", map[string]string{"X-Forwarded-For": "198.51.100.1, 10.0.0.1"}).Body.String())
	assert.Equal(t, "198.51.100.9", do(r, http.MethodGet, "/", map[string]string{"X-Forwarded-For": "junk", "X-Real-IP": "198.51.100.9"}).Body.String())
}

func TestRateLimit(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	r := gin.New()
	r.Use(RealIP())
	r.POST("/login", RateLimit(rdb, helpers.NewDiscardLogger(), 2, time.Minute, KeyByIPAndPath("rl"), nil), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	from := map[string]string{"X-Forwarded-For": "198.51.100.1"}
	w := do(r, http.MethodPost, "/login", from)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "2", w.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "1", w.Header().Get("X-RateLimit-Remaining"))

	assert.Equal(t, http.StatusOK, do(r, http.MethodPost, "/login", from).Code)

	w = do(r, http.MethodPost, "/login", from)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))
	retry, err := strconv.Atoi(w.Header().Get("Retry-After"))
	require.NoError(t, err)
	assert.Greater(t, retry, 0)

	// Another client has its own window.
	assert.Equal(t, http.StatusOK, do(r, http.MethodPost, "/login", map[string]string{"X-Forwarded-For": "198.51.100.2"}).Code)

	mr.FastForward(time.Minute)
	assert.Equal(t, http.StatusOK, do(r, http.MethodPost, "/login", from).Code)
}

func TestRateLimitBypass(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	r := gin.New()
	r.Use(RealIP())
	r.POST("/login", RateLimit(rdb, nil, 1, time.Minute, KeyByIPAndPath("rl"), AllowPrivateIP()), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	local := map[string]string{"X-Forwarded-For": "10.1.2.3"}
	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, do(r, http.MethodPost, "/login", local).Code)
	}

	// nil client disables limiting entirely
	h := RateLimit(nil, nil, 1, time.Minute, KeyByIPAndPath("rl"), nil)
	assert.NotNil(t, h)
}

func TestRateLimitFailsOpen(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = rdb.Close() })
	mr.Close()

	r := gin.New()
	r.POST("/login", RateLimit(rdb, helpers.NewDiscardLogger(), 1, time.Minute, KeyByIPAndPath("rl"), nil), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	assert.Equal(t, http.StatusOK, do(r, http.MethodPost, "/login", nil).Code)
	assert.Equal(t, http.StatusOK, do(r, http.MethodPost, "/login", nil).Code)
}
