package middleware_test

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

	"go-gin-rbac/internal/core/auth"
	mdw "go-gin-rbac/internal/transport/http/middleware"
)

func init() { gin.SetMode(gin.TestMode) }

func serve(r http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthJWT(t *testing.T) {
	j := &auth.JWTer{Secret: []byte("s"), Issuer: "t", TTL: time.Minute}
	r := gin.New()
	r.GET("/me", mdw.AuthJWT(j, ""), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"uid": mdw.UID(c)})
	})
	r.GET("/admin", mdw.AuthJWT(j, auth.RoleAdmin), func(c *gin.Context) { c.Status(http.StatusNoContent) })

	userTok, err := j.Issue(auth.Subject{UID: 7})
	require.NoError(t, err)
	adminTok, err := j.Issue(auth.Subject{UID: 1, Roles: []string{auth.RoleAdmin}})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	assert.Equal(t, http.StatusUnauthorized, serve(r, req).Code)

	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	assert.Equal(t, http.StatusUnauthorized, serve(r, req).Code)

	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+userTok)
	w := serve(r, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"uid":7}`, w.Body.String())

	req = httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+userTok)
	assert.Equal(t, http.StatusForbidden, serve(r, req).Code)

	req = httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+adminTok)
	assert.Equal(t, http.StatusNoContent, serve(r, req).Code)
}

func TestRateLimitPerIP(t *testing.T) {
	r := gin.New()
	r.POST("/otp", mdw.RateLimitPerIP(0.001, 2), func(c *gin.Context) { c.Status(http.StatusOK) })

	from := func(ip string) int {
		req := httptest.NewRequest(http.MethodPost, "/otp", nil)
		req.RemoteAddr = ip + ":1234"
		return serve(r, req).Code
	}
	assert.Equal(t, http.StatusOK, from("10.0.0.1"))
	assert.Equal(t, http.StatusOK, from("10.0.0.1"))
	assert.Equal(t, http.StatusTooManyRequests, from("10.0.0.1"))
	assert.Equal(t, http.StatusOK, from("10.0.0.2"))
}

func TestAccessLogMasksSecrets(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	r := gin.New()
	r.Use(mdw.RequestID(), mdw.AccessLog(zap.New(core)))
	r.GET("/verify", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/verify?otp=123456&email=a@x.com", nil)
	req.Header.Set(mdw.KeyRequestID, "rid-1")
	w := serve(r, req)
	assert.Equal(t, "rid-1", w.Header().Get(mdw.KeyRequestID))

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "rid-1", fields["rid"])
	q := fields["query"].(map[string][]string)
	assert.Equal(t, []string{"****"}, q["otp"])
	assert.Equal(t, []string{"a@x.com"}, q["email"])
}

func TestTimeoutSetsDeadline(t *testing.T) {
	r := gin.New()
	r.GET("/slow", mdw.Timeout(10*time.Millisecond), func(c *gin.Context) {
		<-c.Request.Context().Done()
	})
	w := serve(r, httptest.NewRequest(http.MethodGet, "/slow", nil))
	assert.Equal(t, http.StatusGatewayTimeout, w.Code)
}
