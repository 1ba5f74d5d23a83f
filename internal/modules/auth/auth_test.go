package auth

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/afr-space/core/internal/models"
	"github.com/afr-space/core/internal/modules/user"
	"github.com/afr-space/core/internal/modules/user/usertest"
	"github.com/afr-space/core/internal/pkg/jwt"
	"github.com/afr-space/core/internal/pkg/metrics"
	"github.com/afr-space/core/internal/pkg/session"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "unit-test-secret-unit-test-secret"

type fixture struct {
	store     *usertest.Store
	codec     *jwt.Codec
	transport *session.Transport
	gate      *Gate
	router    *gin.Engine
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	codec, err := jwt.NewCodec(testSecret)
	require.NoError(t, err)
	store := usertest.New()
	transport := session.NewTransport("token", jwt.DefaultTTL, false)
	m := metrics.New()
	gate := NewGate(codec, transport, store, m, nil)

	r := gin.New()
	NewHandler(NewService(store, codec, m, nil), gate, transport).RegisterRoutes(r.Group("/api"), nil)
	return &fixture{store: store, codec: codec, transport: transport, gate: gate, router: r}
}

func (f *fixture) do(method, path, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == "token" {
			return c
		}
	}
	t.Fatalf("no session cookie in %v", rec.Header().Values("Set-Cookie"))
	return nil
}

func TestLogin_AdminScenario(t *testing.T) {
	f := newFixture(t)
	admin := f.store.Add("admin", "admin", models.RoleAdmin)

	rec := f.do(http.MethodPost, "/api/auth/login", `{"username":"admin","password":"admin"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ok":true,"user":{"id":"`+admin.ID+`","username":"admin","role":"admin"}}`, rec.Body.String())

	c := sessionCookie(t, rec)
	assert.True(t, c.HttpOnly)
	assert.Equal(t, "/", c.Path)

	claims, err := f.codec.Verify(c.Value)
	require.NoError(t, err)
	assert.Equal(t, admin.ID, claims.UserID)

	got, err := f.store.FindByID(context.Background(), admin.ID)
	require.NoError(t, err)
	assert.NotNil(t, got.LastLoginAt)
}

func TestLogin_Opacity(t *testing.T) {
	f := newFixture(t)
	f.store.Add("admin", "admin", models.RoleAdmin)

	unknown := f.do(http.MethodPost, "/api/auth/login", `{"username":"nobody","password":"admin"}`)
	wrong := f.do(http.MethodPost, "/api/auth/login", `{"username":"admin","password":"nope"}`)

	assert.Equal(t, http.StatusUnauthorized, unknown.Code)
	assert.Equal(t, unknown.Code, wrong.Code)
	assert.Equal(t, unknown.Body.Bytes(), wrong.Body.Bytes())
	assert.JSONEq(t, `{"error":"用户名或密码错误"}`, unknown.Body.String())
	assert.Empty(t, unknown.Header().Values("Set-Cookie"))
	assert.Empty(t, wrong.Header().Values("Set-Cookie"))
}

func TestLogin_EmptyFieldsAreInvalidCredentials(t *testing.T) {
	f := newFixture(t)
	rec := f.do(http.MethodPost, "/api/auth/login", `{}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLogin_MalformedBody(t *testing.T) {
	f := newFixture(t)
	rec := f.do(http.MethodPost, "/api/auth/login", `{"username":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `"error"`)
}

func TestLogin_StoreFailureIsNotCredentialError(t *testing.T) {
	f := newFixture(t)
	f.store.Err = errors.New("db down")
	rec := f.do(http.MethodPost, "/api/auth/login", `{"username":"admin","password":"admin"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Empty(t, rec.Header().Values("Set-Cookie"))
}

func TestSession_NoCookie(t *testing.T) {
	f := newFixture(t)
	rec := f.do(http.MethodGet, "/api/auth/session", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"未登录"}`, rec.Body.String())
}

func TestSession_TamperedCookie(t *testing.T) {
	f := newFixture(t)
	f.store.Add("admin", "admin", models.RoleAdmin)
	login := f.do(http.MethodPost, "/api/auth/login", `{"username":"admin","password":"admin"}`)
	c := sessionCookie(t, login)

	tampered := []byte(c.Value)
	mid := len(tampered) / 2
	if tampered[mid] == 'x' {
		tampered[mid] = 'y'
	} else {
		tampered[mid] = 'x'
	}

	rec := f.do(http.MethodGet, "/api/auth/session", "", &http.Cookie{Name: "token", Value: string(tampered)})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), `"error"`)
}

func TestSession_RoundTrip(t *testing.T) {
	f := newFixture(t)
	admin := f.store.Add("admin", "admin", models.RoleAdmin)
	login := f.do(http.MethodPost, "/api/auth/login", `{"username":"admin","password":"admin"}`)
	c := sessionCookie(t, login)

	for _, path := range []string{"/api/auth/session", "/api/auth/me"} {
		rec := f.do(http.MethodGet, path, "", c)
		require.Equal(t, http.StatusOK, rec.Code, path)
		assert.JSONEq(t, `{"user":{"id":"`+admin.ID+`","username":"admin","role":"admin"}}`, rec.Body.String())
	}
}

func TestSession_DeletedUser(t *testing.T) {
	f := newFixture(t)
	admin := f.store.Add("admin", "admin", models.RoleAdmin)
	token, err := f.codec.Issue(jwt.Identity{ID: admin.ID, Username: "admin", Role: "admin"})
	require.NoError(t, err)

	require.NoError(t, f.store.Delete(context.Background(), admin.ID))

	req := httptest.NewRequest(http.MethodGet, "/api/auth/session", nil)
	req.AddCookie(&http.Cookie{Name: "token", Value: token})
	d := f.gate.Evaluate(context.Background(), req)
	assert.False(t, d.Authenticated())
	assert.Equal(t, ReasonUserMissing, d.Reason)

	rec := f.do(http.MethodGet, "/api/auth/session", "", &http.Cookie{Name: "token", Value: token})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSession_ExpiredToken(t *testing.T) {
	f := newFixture(t)
	admin := f.store.Add("admin", "admin", models.RoleAdmin)
	past, err := jwt.NewCodec(testSecret, jwt.WithTTL(time.Minute), jwt.WithClock(func() time.Time {
		return time.Now().Add(-time.Hour)
	}))
	require.NoError(t, err)
	token, err := past.Issue(jwt.Identity{ID: admin.ID})
	require.NoError(t, err)

	rec := f.do(http.MethodGet, "/api/auth/session", "", &http.Cookie{Name: "token", Value: token})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"登录状态无效"}`, rec.Body.String())
}

func TestSession_StoreErrorIsUnauthenticated(t *testing.T) {
	f := newFixture(t)
	admin := f.store.Add("admin", "admin", models.RoleAdmin)
	token, err := f.codec.Issue(jwt.Identity{ID: admin.ID})
	require.NoError(t, err)
	f.store.Err = errors.New("db down")

	rec := f.do(http.MethodGet, "/api/auth/session", "", &http.Cookie{Name: "token", Value: token})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSession_RoleComesFromStore(t *testing.T) {
	f := newFixture(t)
	u := f.store.Add("writer", "secret1", models.RoleAdmin)
	token, err := f.codec.Issue(jwt.Identity{ID: u.ID, Username: "writer", Role: models.RoleAdmin})
	require.NoError(t, err)
	require.NoError(t, f.store.UpdateRole(context.Background(), u.ID, models.RoleEditor))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "token", Value: token})
	id, ok := f.gate.Authenticate(req)
	require.True(t, ok)
	assert.Equal(t, models.RoleEditor, id.Role)
}

func TestGateUser(t *testing.T) {
	f := newFixture(t)
	_, err := f.gate.User(context.Background(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestLogout_ClearsCookie(t *testing.T) {
	f := newFixture(t)
	rec := f.do(http.MethodPost, "/api/auth/logout", "")
	require.Equal(t, http.StatusOK, rec.Code)

	header := rec.Header().Get("Set-Cookie")
	assert.True(t, strings.HasPrefix(header, "token=;"), header)
	c := sessionCookie(t, rec)
	assert.Empty(t, c.Value)
	assert.True(t, c.Expires.Before(time.Now()))
}

var _ UserLookup = (user.Store)(nil)
