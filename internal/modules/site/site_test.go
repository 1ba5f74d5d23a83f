package site

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/afr-space/core/internal/models"
	"github.com/afr-space/core/internal/modules/article"
	"github.com/afr-space/core/internal/pkg/jwt"
	"github.com/afr-space/core/internal/pkg/pagination"
	"github.com/afr-space/core/internal/pkg/response"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeArticles struct {
	items []models.ArticleModel
	err   error
}

func (f *fakeArticles) List(_ context.Context, q pagination.Query) ([]models.ArticleModel, response.Pagination, error) {
	return f.items, pagination.Meta(int64(len(f.items)), q), f.err
}

func (f *fakeArticles) All(context.Context) ([]models.ArticleModel, error) { return f.items, f.err }

func (f *fakeArticles) GetByID(_ context.Context, id string) (*models.ArticleModel, error) {
	for i := range f.items {
		if f.items[i].ID == id {
			return &f.items[i], nil
		}
	}
	return nil, article.ErrNotFound
}

func (f *fakeArticles) View(ctx context.Context, id string) (*models.ArticleModel, error) {
	return f.GetByID(ctx, id)
}

func (f *fakeArticles) Latest(context.Context, string, int) ([]models.ArticleModel, error) {
	return nil, nil
}

type staticAuth struct{ user *jwt.Identity }

func (s staticAuth) Authenticate(*http.Request) (jwt.Identity, bool) {
	if s.user == nil {
		return jwt.Identity{}, false
	}
	return *s.user, true
}

func sampleArticles() []models.ArticleModel {
	a := models.ArticleModel{Title: "Rates <outlook>", Content: "**bold**", Format: models.FormatMarkdown, Excerpt: "bold", Category: "宏观"}
	a.ID = "a-1"
	a.CreatedAt = time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	return []models.ArticleModel{a}
}

func serve(h *Handler, path string) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h.RegisterRoutes(r)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestIndex_ListsArticles(t *testing.T) {
	w := serve(NewHandler(&fakeArticles{items: sampleArticles()}, staticAuth{}, nil), "/")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, w.Body.String(), `href="/articles/a-1"`)
	assert.Contains(t, w.Body.String(), "Rates &lt;outlook&gt;")
}

func TestArticle_RendersMarkdown(t *testing.T) {
	w := serve(NewHandler(&fakeArticles{items: sampleArticles()}, staticAuth{}, nil), "/articles/a-1")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "<strong>bold</strong>")
}

func TestArticle_Missing(t *testing.T) {
	w := serve(NewHandler(&fakeArticles{}, staticAuth{}, nil), "/articles/nope")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestIndex_StoreError(t *testing.T) {
	w := serve(NewHandler(&fakeArticles{err: errors.New("db down")}, staticAuth{}, nil), "/")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestAdminPages_RedirectWithoutSession(t *testing.T) {
	h := NewHandler(&fakeArticles{items: sampleArticles()}, staticAuth{}, nil)
	for _, path := range []string{"/admin/dashboard", "/admin/new"} {
		w := serve(h, path)
		assert.Equal(t, http.StatusFound, w.Code, path)
		assert.Equal(t, LoginPath, w.Header().Get("Location"), path)
	}
}

func TestAdminPages_WithSession(t *testing.T) {
	user := &jwt.Identity{ID: "u-1", Username: "admin", Role: models.RoleAdmin}
	h := NewHandler(&fakeArticles{items: sampleArticles()}, staticAuth{user: user}, nil)

	w := serve(h, "/admin/dashboard")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "admin")
	assert.Contains(t, w.Body.String(), `data-del="a-1"`)

	w = serve(h, "/admin/new?id=a-1")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `data-id="a-1"`)

	w = serve(h, "/admin")
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/admin/dashboard", w.Header().Get("Location"))
}

func TestLoginPage(t *testing.T) {
	w := serve(NewHandler(&fakeArticles{}, staticAuth{}, nil), "/admin")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "/api/auth/login")
}
