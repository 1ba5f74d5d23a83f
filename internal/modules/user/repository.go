package user

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/afr-space/core/internal/models"
	"github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
)

const mysqlDuplicateEntry = 1062

// Store is the persistence surface used by Service and the auth module.
type Store interface {
	FindByID(ctx context.Context, id string) (*models.UserModel, error)
	FindByUsername(ctx context.Context, username string) (*models.UserModel, error)
	Create(ctx context.Context, u *models.UserModel) error
	UpdatePassword(ctx context.Context, id, hash string) error
	UpdateRole(ctx context.Context, id, role string) error
	TouchLogin(ctx context.Context, id string, at time.Time) error
	List(ctx context.Context) ([]models.UserModel, error)
	Delete(ctx context.Context, id string) error
}

// Repository is the gorm-backed Store.
type Repository struct{ db *gorm.DB }

func NewRepository(db *gorm.DB) *Repository { return &Repository{db: db} }

func (r *Repository) FindByID(ctx context.Context, id string) (*models.UserModel, error) {
	if id == "" {
		return nil, ErrNotFound
	}
	return r.first(ctx, "id = ?", id)
}

func (r *Repository) FindByUsername(ctx context.Context, username string) (*models.UserModel, error) {
	if username == "" {
		return nil, ErrNotFound
	}
	return r.first(ctx, "username = ?", username)
}

func (r *Repository) first(ctx context.Context, query string, arg string) (*models.UserModel, error) {
	var u models.UserModel
	if err := r.db.WithContext(ctx).Where(query, arg).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return &u, nil
}

func (r *Repository) Create(ctx context.Context, u *models.UserModel) error {
	if err := r.db.WithContext(ctx).Create(u).Error; err != nil {
		if isDuplicate(err) {
			return ErrUsernameTaken
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (r *Repository) UpdatePassword(ctx context.Context, id, hash string) error {
	return r.update(ctx, id, "password_hash", hash)
}

func (r *Repository) UpdateRole(ctx context.Context, id, role string) error {
	return r.update(ctx, id, "role", role)
}

func (r *Repository) TouchLogin(ctx context.Context, id string, at time.Time) error {
	return r.update(ctx, id, "last_login_at", at)
}

func (r *Repository) update(ctx context.Context, id, column string, value interface{}) error {
	res := r.db.WithContext(ctx).Model(&models.UserModel{}).Where("id = ?", id).Update(column, value)
	if res.Error != nil {
		return fmt.Errorf("update user %s: %w", column, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository) List(ctx context.Context) ([]models.UserModel, error) {
	var users []models.UserModel
	if err := r.db.WithContext(ctx).Order("created_at ASC").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// Delete soft-deletes the user. Sessions of a deleted user stop resolving.
func (r *Repository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.UserModel{})
	if res.Error != nil {
		return fmt.Errorf("delete user: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func isDuplicate(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == mysqlDuplicateEntry
}
