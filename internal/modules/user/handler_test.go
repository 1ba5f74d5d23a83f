package user_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/afr-space/core/internal/middleware"
	"github.com/afr-space/core/internal/models"
	"github.com/afr-space/core/internal/modules/user"
	"github.com/afr-space/core/internal/modules/user/usertest"
	"github.com/afr-space/core/internal/pkg/jwt"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type signedIn struct{ id jwt.Identity }

func (s signedIn) Authenticate(*http.Request) (jwt.Identity, bool) { return s.id, true }

func TestChangePasswordHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		name   string
		body   string
		status int
	}{
		{"ok", `{"current":"old-secret","next":"new-secret"}`, http.StatusOK},
		{"wrong current", `{"current":"nope","next":"new-secret"}`, http.StatusBadRequest},
		{"too short", `{"current":"old-secret","next":"a"}`, http.StatusUnprocessableEntity},
		{"too long", `{"current":"old-secret","next":"` + strings.Repeat("a", 80) + `"}`, http.StatusUnprocessableEntity},
		{"malformed", `{"current":`, http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store := usertest.New()
			u := store.Add("editor", "old-secret", models.RoleEditor)
			auth := signedIn{jwt.Identity{ID: u.ID, Username: u.Username, Role: u.Role}}

			r := gin.New()
			user.NewHandler(user.NewService(store)).RegisterRoutes(r.Group("/api"), middleware.Auth(auth), func(c *gin.Context) { c.Next() })

			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/api/auth/password", strings.NewReader(tc.body))
			req.Header.Set("Content-Type", "application/json")
			r.ServeHTTP(rec, req)

			assert.Equal(t, tc.status, rec.Code, rec.Body.String())
			if tc.status == http.StatusUnprocessableEntity {
				assert.NotContains(t, rec.Body.String(), "服务器内部错误")
			}
		})
	}
}
