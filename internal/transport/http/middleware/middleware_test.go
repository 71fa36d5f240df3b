package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"appointly/internal/core/auth"
	"appointly/internal/domain"
)

func init() { gin.SetMode(gin.TestMode) }

var testJWT = &auth.JWTer{Secret: []byte("test-secret"), Issuer: "appointly", TTL: time.Hour}

func token(t *testing.T, uid string, role domain.Role) string {
	tok, err := testJWT.Issue(uid, string(role))
	require.NoError(t, err)
	return tok
}

func serve(r *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func echoActor(c *gin.Context) {
	a := ActorFrom(c)
	c.String(http.StatusOK, a.ID+"/"+string(a.Role))
}

func TestAuthJWT(t *testing.T) {
	r := gin.New()
	r.GET("/admin", AuthJWT(testJWT, string(domain.RoleAdmin)), echoActor)

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	assert.Equal(t, http.StatusUnauthorized, serve(r, req).Code)

	req.Header.Set("Authorization", "Bearer garbage")
	assert.Equal(t, http.StatusUnauthorized, serve(r, req).Code)

	req.Header.Set("Authorization", "Bearer "+token(t, "u1", domain.RoleCustomer))
	assert.Equal(t, http.StatusForbidden, serve(r, req).Code)

	req.Header.Set("Authorization", "Bearer "+token(t, "a1", domain.RoleAdmin))
	w := serve(r, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "a1/admin", w.Body.String())
}

func TestIdentify(t *testing.T) {
	r := gin.New()
	r.GET("/who", Identify(testJWT, "session"), echoActor)

	req := httptest.NewRequest(http.MethodGet, "/who", nil)
	assert.Equal(t, "/", serve(r, req).Body.String())

	req = httptest.NewRequest(http.MethodGet, "/who", nil)
	req.AddCookie(&http.Cookie{Name: "session", Value: token(t, "u1", domain.RoleCustomer)})
	assert.Equal(t, "u1/customer", serve(r, req).Body.String())

	// Bearer 优先于 cookie
	req.Header.Set("Authorization", "Bearer "+token(t, "a1", domain.RoleAdmin))
	assert.Equal(t, "a1/admin", serve(r, req).Body.String())

	req = httptest.NewRequest(http.MethodGet, "/who", nil)
	req.Header.Set("Authorization", "Bearer expired-or-bad")
	w := serve(r, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "/", w.Body.String())
}

func TestRateLimit(t *testing.T) {
	r := gin.New()
	r.GET("/g", RateLimit(rate.Every(time.Hour), 1), echoActor)
	r.GET("/ip", RateLimitPerIP(rate.Every(time.Hour), 1), echoActor)

	for _, path := range []string{"/g", "/ip"} {
		assert.Equal(t, http.StatusOK, serve(r, httptest.NewRequest(http.MethodGet, path, nil)).Code, path)
		assert.Equal(t, http.StatusTooManyRequests, serve(r, httptest.NewRequest(http.MethodGet, path, nil)).Code, path)
	}

	other := httptest.NewRequest(http.MethodGet, "/ip", nil)
	other.RemoteAddr = "10.0.0.9:1234"
	assert.Equal(t, http.StatusOK, serve(r, other).Code)
}

func TestMaxBodyBytes(t *testing.T) {
	r := gin.New()
	r.POST("/", MaxBodyBytes(8), func(c *gin.Context) {
		if _, err := io.ReadAll(c.Request.Body); err != nil {
			_ = c.Error(err)
			return
		}
		c.Status(http.StatusNoContent)
	})

	assert.Equal(t, http.StatusNoContent, serve(r, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("small"))).Code)
	assert.Equal(t, http.StatusRequestEntityTooLarge,
		serve(r, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("far too large a body"))).Code)

	chunked := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("far too large a body"))
	chunked.ContentLength = -1
	assert.Equal(t, http.StatusRequestEntityTooLarge, serve(r, chunked).Code)
}

func TestTimeout(t *testing.T) {
	r := gin.New()
	r.GET("/slow", Timeout(10*time.Millisecond), func(c *gin.Context) {
		<-c.Request.Context().Done()
	})
	assert.Equal(t, http.StatusGatewayTimeout, serve(r, httptest.NewRequest(http.MethodGet, "/slow", nil)).Code)
}

func TestConcurrencyLimit(t *testing.T) {
	r := gin.New()
	entered, release := make(chan struct{}), make(chan struct{})
	r.GET("/", ConcurrencyLimit(1, 10*time.Millisecond), func(c *gin.Context) {
		if c.Query("hold") != "" {
			close(entered)
			<-release
		}
		c.Status(http.StatusOK)
	})

	done := make(chan int)
	go func() { done <- serve(r, httptest.NewRequest(http.MethodGet, "/?hold=1", nil)).Code }()
	<-entered
	assert.Equal(t, http.StatusServiceUnavailable, serve(r, httptest.NewRequest(http.MethodGet, "/", nil)).Code)

	close(release)
	assert.Equal(t, http.StatusOK, <-done)
	assert.Equal(t, http.StatusOK, serve(r, httptest.NewRequest(http.MethodGet, "/", nil)).Code)
}

func TestRequestIDAndAccessLog(t *testing.T) {
	r := gin.New()
	r.Use(RequestID(), Metrics("test"), AccessLog(zap.NewNop()))
	r.GET("/", echoActor)

	w := serve(r, httptest.NewRequest(http.MethodGet, "/?password=x", nil))
	assert.NotEmpty(t, w.Header().Get(KeyRequestID))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(KeyRequestID, "rid-1")
	assert.Equal(t, "rid-1", serve(r, req).Header().Get(KeyRequestID))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(KeyRequestID, "bad id\nforged=1")
	got := serve(r, req).Header().Get(KeyRequestID)
	assert.NotEqual(t, "bad id\nforged=1", got)
	assert.Len(t, got, 36)

	assert.Equal(t, http.StatusNotFound, serve(r, httptest.NewRequest(http.MethodGet, "/missing", nil)).Code)
}
