package site

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"html/template"
	"net/http"
	"strings"
	"time"

	"github.com/afr-space/core/internal/middleware"
	"github.com/afr-space/core/internal/models"
	"github.com/afr-space/core/internal/modules/article"
	"github.com/afr-space/core/internal/pkg/jwt"
	"github.com/afr-space/core/internal/pkg/pagination"
	"github.com/afr-space/core/internal/pkg/response"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// LoginPath is where PageGuard sends visitors without a session.
const LoginPath = "/admin"

const siteName = "AFR Space"

//go:embed templates/*.html
var templateFS embed.FS

var pages = template.Must(template.New("site").Funcs(template.FuncMap{
	"date": func(t time.Time) string { return t.Local().Format("2006-01-02 15:04") },
	"add":  func(a, b int) int { return a + b },
	"sub":  func(a, b int) int { return a - b },
	"join": strings.Join,
}).ParseFS(templateFS, "templates/*.html"))

// Articles is the read side of the article service used by pages.
type Articles interface {
	List(ctx context.Context, q pagination.Query) ([]models.ArticleModel, response.Pagination, error)
	All(ctx context.Context) ([]models.ArticleModel, error)
	GetByID(ctx context.Context, id string) (*models.ArticleModel, error)
	View(ctx context.Context, id string) (*models.ArticleModel, error)
	Latest(ctx context.Context, excludeID string, limit int) ([]models.ArticleModel, error)
}

type Handler struct {
	articles Articles
	auth     middleware.Authenticator
	log      *zap.Logger
}

func NewHandler(articles Articles, auth middleware.Authenticator, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{articles: articles, auth: auth, log: log}
}

// RegisterRoutes mounts the HTML pages at the engine root.
func (h *Handler) RegisterRoutes(r gin.IRoutes) {
	r.GET("/", h.index)
	r.GET("/articles/:id", h.article)
	r.GET(LoginPath, h.login)

	guard := middleware.PageGuard(h.auth, LoginPath)
	r.GET("/admin/dashboard", guard, h.dashboard)
	r.GET("/admin/new", guard, h.editor)
}

type pageData struct {
	SiteName   string
	Title      string
	User       jwt.Identity
	Articles   []models.ArticleModel
	Article    *models.ArticleModel
	Body       template.HTML
	Latest     []models.ArticleModel
	Pagination response.Pagination
}

func (h *Handler) index(c *gin.Context) {
	list, pag, err := h.articles.List(c.Request.Context(), pagination.FromContext(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	h.render(c, http.StatusOK, "index", pageData{Articles: list, Pagination: pag})
}

func (h *Handler) article(c *gin.Context) {
	ctx := c.Request.Context()
	a, err := h.articles.View(ctx, c.Param("id"))
	if errors.Is(err, article.ErrNotFound) {
		c.String(http.StatusNotFound, "文章不存在")
		return
	}
	if err != nil {
		h.fail(c, err)
		return
	}
	latest, err := h.articles.Latest(ctx, a.ID, article.LatestLimit)
	if err != nil {
		h.log.Warn("load latest articles failed", zap.Error(err))
	}
	h.render(c, http.StatusOK, "article", pageData{
		Title:   a.Title,
		Article: a,
		Body:    template.HTML(article.HTML(a)),
		Latest:  latest,
	})
}

func (h *Handler) login(c *gin.Context) {
	if h.auth != nil {
		if _, ok := h.auth.Authenticate(c.Request); ok {
			c.Redirect(http.StatusFound, "/admin/dashboard")
			return
		}
	}
	h.render(c, http.StatusOK, "login", pageData{Title: "登录"})
}

func (h *Handler) dashboard(c *gin.Context) {
	list, err := h.articles.All(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	user, _ := middleware.CurrentUser(c)
	h.render(c, http.StatusOK, "dashboard", pageData{
		Title:    "管理后台",
		User:     user,
		Articles: list,
	})
}

func (h *Handler) editor(c *gin.Context) {
	user, _ := middleware.CurrentUser(c)
	data := pageData{Title: "写文章", User: user}
	if id := c.Query("id"); id != "" {
		a, err := h.articles.GetByID(c.Request.Context(), id)
		if errors.Is(err, article.ErrNotFound) {
			c.Redirect(http.StatusFound, "/admin/new")
			return
		}
		if err != nil {
			h.fail(c, err)
			return
		}
		data.Title = "编辑文章"
		data.Article = a
	}
	h.render(c, http.StatusOK, "editor", data)
}

func (h *Handler) render(c *gin.Context, status int, name string, data pageData) {
	data.SiteName = siteName
	var buf bytes.Buffer
	if err := pages.ExecuteTemplate(&buf, name, data); err != nil {
		h.fail(c, err)
		return
	}
	c.Data(status, "text/html; charset=utf-8", buf.Bytes())
}

func (h *Handler) fail(c *gin.Context, err error) {
	h.log.Error("render page failed", zap.String("path", c.Request.URL.Path), zap.Error(err))
	_ = c.Error(err)
	c.String(http.StatusInternalServerError, response.MsgInternal)
}
