package database

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/afr-space/core/internal/config"
	"github.com/afr-space/core/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// AdminEnsurer creates the bootstrap administrator when it is missing.
type AdminEnsurer interface {
	EnsureAdmin(ctx context.Context, username, password string) (*models.UserModel, bool, error)
}

// DemoArticle returns the article inserted into an empty site.
func DemoArticle(now time.Time) *models.ArticleModel {
	return &models.ArticleModel{
		Title:    "示例：基金市场要闻",
		Slug:     "demo-article-" + strconv.FormatInt(now.UnixMilli(), 10),
		Content:  "<p>这是一个示例文章内容。你可以在后台发布真实的基金研究与解读。</p>",
		Format:   models.FormatHTML,
		Excerpt:  "这是示例文章摘要。",
		Category: "公募",
		Tags:     models.Tags{},
	}
}

// Seed bootstraps the administrator account and, on an empty site, one
// demo article. Existing accounts keep their password.
func Seed(ctx context.Context, db *gorm.DB, admins AdminEnsurer, seed config.SeedConfig, log *zap.Logger) error {
	if log == nil {
		log = zap.NewNop()
	}

	user, created, err := admins.EnsureAdmin(ctx, seed.AdminUsername, seed.AdminPassword)
	if err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	if created {
		log.Info("seeded admin user", zap.String("username", user.Username))
	}

	var count int64
	if err := db.WithContext(ctx).Model(&models.ArticleModel{}).Count(&count).Error; err != nil {
		return fmt.Errorf("count articles: %w", err)
	}
	if count > 0 {
		return nil
	}

	demo := DemoArticle(time.Now())
	if err := db.WithContext(ctx).Create(demo).Error; err != nil {
		return fmt.Errorf("seed demo article: %w", err)
	}
	log.Info("seeded demo article", zap.String("id", demo.ID))
	return nil
}
