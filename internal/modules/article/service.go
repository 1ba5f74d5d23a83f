package article

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/afr-space/core/internal/models"
	"github.com/afr-space/core/internal/pkg/pagination"
	"github.com/afr-space/core/internal/pkg/render"
	"github.com/afr-space/core/internal/pkg/response"
	"github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
)

// Service handles article business logic.
type Service struct {
	db  *gorm.DB
	now func() time.Time
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db, now: time.Now}
}

// List returns one page of articles, newest first.
func (s *Service) List(ctx context.Context, q pagination.Query) ([]models.ArticleModel, response.Pagination, error) {
	tx := s.db.WithContext(ctx).Model(&models.ArticleModel{}).Order("created_at DESC")
	var list []models.ArticleModel
	pag, err := pagination.Paginate(tx, q, &list)
	return list, pag, err
}

// All returns every article, newest first.
func (s *Service) All(ctx context.Context) ([]models.ArticleModel, error) {
	var list []models.ArticleModel
	err := s.db.WithContext(ctx).Order("created_at DESC").Find(&list).Error
	return list, err
}

// GetByID fetches a single article.
func (s *Service) GetByID(ctx context.Context, id string) (*models.ArticleModel, error) {
	var a models.ArticleModel
	if err := s.db.WithContext(ctx).First(&a, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

// View fetches an article for a reader and counts the visit.
func (s *Service) View(ctx context.Context, id string) (*models.ArticleModel, error) {
	a, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Model(&models.ArticleModel{}).
		Where("id = ?", id).
		UpdateColumn("views", gorm.Expr("views + 1")).Error; err != nil {
		return nil, err
	}
	a.Views++
	return a, nil
}

// Latest returns up to limit of the most recent articles other than excludeID.
func (s *Service) Latest(ctx context.Context, excludeID string, limit int) ([]models.ArticleModel, error) {
	var list []models.ArticleModel
	tx := s.db.WithContext(ctx).Select("id", "title", "created_at").Order("created_at DESC").Limit(limit)
	if excludeID != "" {
		tx = tx.Where("id <> ?", excludeID)
	}
	err := tx.Find(&list).Error
	return list, err
}

// Create validates dto and stores a new article.
func (s *Service) Create(ctx context.Context, dto CreateArticleDTO) (*models.ArticleModel, error) {
	format, err := normalizeFormat(dto.Format)
	if err != nil {
		return nil, err
	}
	title := strings.TrimSpace(dto.Title)
	if title == "" {
		return nil, ErrEmptyTitle
	}

	a := models.ArticleModel{
		Title:    title,
		Slug:     Slugify(title, s.now()),
		Content:  dto.Content,
		Format:   format,
		Excerpt:  deriveExcerpt(dto.Excerpt, dto.Content, format),
		Category: strings.TrimSpace(dto.Category),
		CoverURL: strings.TrimSpace(dto.CoverURL),
		Tags:     models.Tags(dto.Tags).Normalize(),
	}
	if err := s.db.WithContext(ctx).Create(&a).Error; err != nil {
		return nil, mapWriteError(err)
	}
	return &a, nil
}

// Update applies the non-nil fields of dto to the article.
func (s *Service) Update(ctx context.Context, id string, dto UpdateArticleDTO) (*models.ArticleModel, error) {
	if dto.Title != nil && strings.TrimSpace(*dto.Title) == "" {
		return nil, ErrEmptyTitle
	}
	a, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	format := a.Format
	if dto.Format != nil {
		if format, err = normalizeFormat(*dto.Format); err != nil {
			return nil, err
		}
		updates["format"] = format
	}
	if dto.Title != nil {
		updates["title"] = strings.TrimSpace(*dto.Title)
	}
	content := a.Content
	if dto.Content != nil {
		content = *dto.Content
		updates["content"] = content
	}
	if dto.Excerpt != nil {
		updates["excerpt"] = deriveExcerpt(*dto.Excerpt, content, format)
	} else if dto.Content != nil && a.Excerpt == "" {
		updates["excerpt"] = deriveExcerpt("", content, format)
	}
	if dto.Category != nil {
		updates["category"] = strings.TrimSpace(*dto.Category)
	}
	if dto.CoverURL != nil {
		updates["cover_url"] = strings.TrimSpace(*dto.CoverURL)
	}
	if dto.Tags != nil {
		updates["tags"] = models.Tags(dto.Tags).Normalize()
	}

	if len(updates) > 0 {
		if err := s.db.WithContext(ctx).Model(a).Updates(updates).Error; err != nil {
			return nil, mapWriteError(err)
		}
	}
	return s.GetByID(ctx, id)
}

// Delete soft-deletes the article.
func (s *Service) Delete(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Delete(&models.ArticleModel{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func normalizeFormat(format string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", models.FormatHTML:
		return models.FormatHTML, nil
	case models.FormatMarkdown, "md":
		return models.FormatMarkdown, nil
	}
	return "", ErrInvalidFormat
}

func deriveExcerpt(excerpt, content, format string) string {
	if e := strings.TrimSpace(excerpt); e != "" {
		return e
	}
	if format == models.FormatMarkdown {
		content = render.Markdown(content)
	}
	return render.Excerpt(content, render.ExcerptLength)
}

func mapWriteError(err error) error {
	var me *mysql.MySQLError
	if errors.As(err, &me) && me.Number == 1062 {
		return ErrSlugTaken
	}
	return err
}
