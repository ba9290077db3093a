package app

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"go-gin-rbac/internal/core/auth"
	"go-gin-rbac/internal/core/config"
	"go-gin-rbac/internal/testutil"
)

// captureMailer 记录最近一次发给每个邮箱的验证码
type captureMailer struct {
	mu    sync.Mutex
	codes map[string]string
}

func (m *captureMailer) SendOTP(_ context.Context, to, code string, _ int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.codes[to] = code
	return nil
}

func (m *captureMailer) last(to string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.codes[to]
}

type noGoogle struct{}

func (noGoogle) Verify(context.Context, string) (*auth.GoogleProfile, error) {
	return nil, fmt.Errorf("google disabled in tests")
}

type env struct {
	app    *App
	api    *gin.Engine
	admin  *gin.Engine
	mailer *captureMailer
}

func newEnv(t *testing.T) *env {
	t.Helper()
	cfg := &config.Config{
		App: config.App{Name: "test", Env: "test"},
		JWT: config.JWT{Secret: "test-secret", Issuer: "test", AccessTokenTTLMin: 60},
		OTP: config.OTP{TTLSec: 300, SendPerMinute: 100},
	}
	c, _ := testutil.NewCache(t)
	m := &captureMailer{codes: map[string]string{}}
	a := New(Deps{Cfg: cfg, Log: testutil.Logger(), DB: testutil.NewDB(t), Cache: c, Mailer: m, Google: noGoogle{}})
	return &env{app: a, api: a.APIEngine(), admin: a.AdminEngine(), mailer: m}
}

type envelope struct {
	Code int             `json:"code"`
	Msg  string          `json:"msg"`
	Data json.RawMessage `json:"data"`
}

func do(t *testing.T, h http.Handler, method, path, token string, body any) (int, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	var out envelope
	if bytes.HasPrefix(w.Body.Bytes(), []byte("{")) {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	}
	return w.Code, out
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(raw, &v))
	return v
}

type loginData struct {
	Token string `json:"token"`
	User  struct {
		ID    uint64 `json:"id"`
		Email string `json:"email"`
	} `json:"user"`
}

func (e *env) register(t *testing.T, email, pw string) uint64 {
	t.Helper()
	code, r := do(t, e.api, http.MethodPost, "/api/v1/auth/register", "", map[string]any{"email": email, "password": pw})
	require.Equal(t, http.StatusOK, code, r.Msg)
	return decode[struct {
		ID uint64 `json:"id"`
	}](t, r.Data).ID
}

func (e *env) login(t *testing.T, email, pw string) string {
	t.Helper()
	code, r := do(t, e.api, http.MethodPost, "/api/v1/auth/login", "", map[string]any{"email": email, "password": pw})
	require.Equal(t, http.StatusOK, code, r.Msg)
	return decode[loginData](t, r.Data).Token
}

func TestHealthAndMetrics(t *testing.T) {
	e := newEnv(t)
	for _, h := range []http.Handler{e.api, e.admin} {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	}
	w := httptest.NewRecorder()
	e.api.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "http_requests_total")
}

func TestRegisterLoginMe(t *testing.T) {
	e := newEnv(t)
	id := e.register(t, "Alice@Example.com", "secret123")

	code, r := do(t, e.api, http.MethodPost, "/api/v1/auth/register", "", map[string]any{"email": "alice@example.com", "password": "other123"})
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, http.StatusConflict, r.Code)

	code, _ = do(t, e.api, http.MethodPost, "/api/v1/auth/login", "", map[string]any{"email": "alice@example.com", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, code)

	tok := e.login(t, "alice@example.com", "secret123")
	code, r = do(t, e.api, http.MethodGet, "/api/v1/me", tok, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 0, r.Code)
	me := decode[map[string]any](t, r.Data)
	assert.EqualValues(t, id, me["id"])
	assert.Equal(t, "alice@example.com", me["email"])
	assert.NotContains(t, me, "password")
	assert.NotContains(t, me, "passwordHash")

	code, _ = do(t, e.api, http.MethodGet, "/api/v1/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)

	code, _ = do(t, e.api, http.MethodPost, "/api/v1/auth/register", "", map[string]any{"email": "not-an-email", "password": "secret123"})
	assert.Equal(t, http.StatusBadRequest, code)

	// 字符数合法但超过 bcrypt 的 72 字节上限
	code, r = do(t, e.api, http.MethodPost, "/api/v1/auth/register", "", map[string]any{"email": "p@example.com", "password": strings.Repeat("é", 40)})
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, http.StatusBadRequest, r.Code)
}

func TestOTPResetPasswordOverHTTP(t *testing.T) {
	e := newEnv(t)
	e.register(t, "bob@example.com", "secret123")

	code, r := do(t, e.api, http.MethodPost, "/api/v1/auth/send-otp", "", map[string]any{"email": "bob@example.com"})
	require.Equal(t, http.StatusOK, code)
	assert.True(t, decode[map[string]any](t, r.Data)["success"].(bool))
	otp := e.mailer.last("bob@example.com")
	require.Len(t, otp, 6)

	_, r = do(t, e.api, http.MethodPost, "/api/v1/auth/verify-otp", "", map[string]any{"email": "bob@example.com", "otp": "000000"})
	assert.False(t, decode[map[string]any](t, r.Data)["valid"].(bool))

	code, r = do(t, e.api, http.MethodPost, "/api/v1/auth/reset-password", "", map[string]any{
		"email": "bob@example.com", "otp": otp, "newPassword": "newsecret1",
	})
	require.Equal(t, http.StatusOK, code)
	assert.True(t, decode[map[string]any](t, r.Data)["success"].(bool))

	// 验证码单次有效
	_, r = do(t, e.api, http.MethodPost, "/api/v1/auth/verify-otp", "", map[string]any{"email": "bob@example.com", "otp": otp})
	assert.False(t, decode[map[string]any](t, r.Data)["valid"].(bool))

	e.login(t, "bob@example.com", "newsecret1")
}

func TestAdminRequiresAdminRole(t *testing.T) {
	e := newEnv(t)
	e.register(t, "root@example.com", "secret123")

	code, _ := do(t, e.admin, http.MethodGet, "/admin/v1/users", "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)

	tok := e.login(t, "root@example.com", "secret123")
	code, r := do(t, e.admin, http.MethodGet, "/admin/v1/users", tok, nil)
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, http.StatusForbidden, r.Code)

	require.NoError(t, e.app.GrantRole(context.Background(), "root@example.com", auth.RoleAdmin))
	// 重复授予不报错
	require.NoError(t, e.app.GrantRole(context.Background(), "root@example.com", auth.RoleAdmin))

	tok = e.login(t, "root@example.com", "secret123")
	code, r = do(t, e.admin, http.MethodGet, "/admin/v1/users?page=1&limit=10", tok, nil)
	require.Equal(t, http.StatusOK, code)
	page := decode[map[string]any](t, r.Data)
	assert.EqualValues(t, 1, page["total"])
	assert.EqualValues(t, 1, page["totalPages"])

	// 用户端 token 对管理端路由无效
	code, _ = do(t, e.admin, http.MethodGet, "/admin/v1/users", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, code)

	assert.Error(t, e.app.GrantRole(context.Background(), "ghost@example.com", auth.RoleAdmin))
}

func TestAdminRoleAssignmentsOverHTTP(t *testing.T) {
	e := newEnv(t)
	e.register(t, "root@example.com", "secret123")
	require.NoError(t, e.app.GrantRole(context.Background(), "root@example.com", auth.RoleAdmin))
	tok := e.login(t, "root@example.com", "secret123")
	uid := e.register(t, "carol@example.com", "secret123")

	ids := make([]uint64, 0, 2)
	for _, name := range []string{"editor", "viewer"} {
		code, r := do(t, e.admin, http.MethodPost, "/admin/v1/roles", tok, map[string]any{"name": name})
		require.Equal(t, http.StatusOK, code, r.Msg)
		ids = append(ids, decode[struct {
			ID uint64 `json:"id"`
		}](t, r.Data).ID)
	}

	path := fmt.Sprintf("/admin/v1/user-roles/users/%d", uid)
	code, r := do(t, e.admin, http.MethodPut, path, tok, map[string]any{"ids": ids})
	require.Equal(t, http.StatusOK, code, r.Msg)
	res := decode[struct {
		Added   []uint64 `json:"added"`
		Removed []uint64 `json:"removed"`
	}](t, r.Data)
	assert.Equal(t, ids, res.Added)
	assert.Empty(t, res.Removed)

	code, _ = do(t, e.admin, http.MethodPut, path, tok, map[string]any{"ids": []uint64{ids[0], 9999}})
	assert.Equal(t, http.StatusBadRequest, code)

	code, r = do(t, e.admin, http.MethodGet, path, tok, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, decode[[]map[string]any](t, r.Data), 2)

	// 角色被引用时不能删除
	code, _ = do(t, e.admin, http.MethodDelete, fmt.Sprintf("/admin/v1/roles/%d", ids[0]), tok, nil)
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = do(t, e.admin, http.MethodDelete, fmt.Sprintf("/admin/v1/user-roles/%d/%d", uid, ids[0]), tok, nil)
	assert.Equal(t, http.StatusOK, code)
	code, _ = do(t, e.admin, http.MethodDelete, fmt.Sprintf("/admin/v1/user-roles/%d/%d", uid, ids[0]), tok, nil)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestFollowOverHTTP(t *testing.T) {
	e := newEnv(t)
	a := e.register(t, "a@example.com", "secret123")
	b := e.register(t, "b@example.com", "secret123")
	tok := e.login(t, "a@example.com", "secret123")

	code, r := do(t, e.api, http.MethodPost, "/api/v1/user/follow", tok, map[string]any{"followingId": b})
	require.Equal(t, http.StatusOK, code, r.Msg)
	assert.True(t, decode[map[string]any](t, r.Data)["success"].(bool))

	_, r = do(t, e.api, http.MethodPost, "/api/v1/user/follow", tok, map[string]any{"followingId": b})
	assert.False(t, decode[map[string]any](t, r.Data)["success"].(bool))

	code, _ = do(t, e.api, http.MethodPost, "/api/v1/user/follow", tok, map[string]any{"followingId": a})
	assert.Equal(t, http.StatusBadRequest, code)

	code, r = do(t, e.api, http.MethodGet, fmt.Sprintf("/api/v1/user/%d/followers", b), tok, nil)
	require.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 1, decode[map[string]any](t, r.Data)["total"])

	code, r = do(t, e.api, http.MethodGet, "/api/v1/user/discover", tok, nil)
	require.Equal(t, http.StatusOK, code)
	assert.EqualValues(t, 0, decode[map[string]any](t, r.Data)["total"])

	code, _ = do(t, e.api, http.MethodDelete, "/api/v1/user/unfollow", tok, map[string]any{"followingId": b})
	assert.Equal(t, http.StatusOK, code)
	_, r = do(t, e.api, http.MethodGet, "/api/v1/user/discover", tok, nil)
	assert.EqualValues(t, 1, decode[map[string]any](t, r.Data)["total"])
}

func TestMigrateFailureClosesDB(t *testing.T) {
	db := testutil.NewDB(t)
	err := migrateOrClose(db, func(*gorm.DB) error { return errors.New("no permission") })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "automigrate")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	assert.Error(t, sqlDB.Ping())
}

func TestMigrateSuccessKeepsDB(t *testing.T) {
	db := testutil.NewDB(t)
	require.NoError(t, migrateOrClose(db, func(*gorm.DB) error { return nil }))
	sqlDB, err := db.DB()
	require.NoError(t, err)
	assert.NoError(t, sqlDB.Ping())
}
