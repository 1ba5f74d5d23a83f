package article

import (
	"errors"
	"time"

	"github.com/afr-space/core/internal/models"
	"github.com/afr-space/core/internal/pkg/render"
)

var (
	ErrNotFound      = errors.New("article not found")
	ErrSlugTaken     = errors.New("slug already exists")
	ErrInvalidFormat = errors.New("format must be html or markdown")
	ErrEmptyTitle    = errors.New("title cannot be empty")
)

// LatestLimit is the number of other articles listed next to an article.
const LatestLimit = 5

// CreateArticleDTO is the request body for creating an article.
type CreateArticleDTO struct {
	Title    string   `json:"title"    binding:"required"`
	Content  string   `json:"content"`
	Excerpt  string   `json:"excerpt"`
	Category string   `json:"category"`
	CoverURL string   `json:"coverUrl"`
	Tags     []string `json:"tags"`
	Format   string   `json:"format"`
}

// UpdateArticleDTO is the request body for updating an article (all fields optional).
type UpdateArticleDTO struct {
	Title    *string  `json:"title"`
	Content  *string  `json:"content"`
	Excerpt  *string  `json:"excerpt"`
	Category *string  `json:"category"`
	CoverURL *string  `json:"coverUrl"`
	Tags     []string `json:"tags"`
	Format   *string  `json:"format"`
}

// articleResponse is the API response shape for an article.
type articleResponse struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Slug        string      `json:"slug"`
	Content     string      `json:"content,omitempty"`
	ContentHTML string      `json:"content_html,omitempty"`
	Format      string      `json:"format"`
	Excerpt     string      `json:"excerpt"`
	Category    string      `json:"category"`
	CoverURL    string      `json:"coverUrl"`
	Tags        models.Tags `json:"tags"`
	Views       int         `json:"views"`
	Created     time.Time   `json:"created"`
	Modified    time.Time   `json:"modified"`
}

type latestItem struct {
	ID      string    `json:"id"`
	Title   string    `json:"title"`
	Created time.Time `json:"created"`
}

type detailResponse struct {
	articleResponse
	Latest []latestItem `json:"latest"`
}

func toSummary(a *models.ArticleModel) articleResponse {
	tags := a.Tags
	if tags == nil {
		tags = models.Tags{}
	}
	return articleResponse{
		ID:       a.ID,
		Title:    a.Title,
		Slug:     a.Slug,
		Format:   a.Format,
		Excerpt:  a.Excerpt,
		Category: a.Category,
		CoverURL: a.CoverURL,
		Tags:     tags,
		Views:    a.Views,
		Created:  a.CreatedAt,
		Modified: a.UpdatedAt,
	}
}

func toResponse(a *models.ArticleModel) articleResponse {
	resp := toSummary(a)
	resp.Content = a.Content
	resp.ContentHTML = HTML(a)
	return resp
}

func toLatest(list []models.ArticleModel) []latestItem {
	out := make([]latestItem, 0, len(list))
	for _, a := range list {
		out = append(out, latestItem{ID: a.ID, Title: a.Title, Created: a.CreatedAt})
	}
	return out
}

// HTML returns the article body ready for display.
func HTML(a *models.ArticleModel) string {
	if a.Format == models.FormatMarkdown {
		return render.Markdown(a.Content)
	}
	return a.Content
}
