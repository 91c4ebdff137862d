package users

import (
	"context"
	"time"

	"github.com/ogsoda/delivery-backend/internal/repo"
	"github.com/ogsoda/delivery-backend/pkg/db/models"
	"github.com/ogsoda/delivery-backend/pkg/enums"
	"github.com/ogsoda/delivery-backend/pkg/pagination"
	"gorm.io/gorm"
)

// Repository exposes user-related persistence operations.
type Repository struct {
	base repo.Base
}

// NewRepository constructs a users repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{base: repo.NewBase(db)}
}

// WithTx binds the repository to an open transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{base: r.base.WithTx(tx)}
}

// Create inserts a new user and returns the persisted model.
func (r *Repository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	if err := r.base.DB(ctx).Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// FindByID loads a user by id.
func (r *Repository) FindByID(ctx context.Context, id int64) (*models.User, error) {
	var user models.User
	if err := r.base.DB(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByEmail matches the email case-insensitively.
func (r *Repository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.base.DB(ctx).Where("LOWER(email) = LOWER(?)", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByPhone matches the phone exactly.
func (r *Repository) FindByPhone(ctx context.Context, phone string) (*models.User, error) {
	var user models.User
	if err := r.base.DB(ctx).Where("phone = ?", phone).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByName matches the display name case-insensitively.
func (r *Repository) FindByName(ctx context.Context, name string) (*models.User, error) {
	var user models.User
	if err := r.base.DB(ctx).Where("LOWER(name) = LOWER(?)", name).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// EmailTaken reports whether another user already holds the email.
func (r *Repository) EmailTaken(ctx context.Context, email string, excludeID int64) (bool, error) {
	return r.exists(ctx, "LOWER(email) = LOWER(?)", email, excludeID)
}

// PhoneTaken reports whether another user already holds the phone.
func (r *Repository) PhoneTaken(ctx context.Context, phone string, excludeID int64) (bool, error) {
	return r.exists(ctx, "phone = ?", phone, excludeID)
}

func (r *Repository) exists(ctx context.Context, where string, value any, excludeID int64) (bool, error) {
	query := r.base.DB(ctx).Model(&models.User{}).Where(where, value)
	if excludeID > 0 {
		query = query.Where("id <> ?", excludeID)
	}
	var count int64
	err := query.Count(&count).Error
	return count > 0, err
}

// List returns users ordered by id.
func (r *Repository) List(ctx context.Context, params pagination.Params) ([]models.User, error) {
	return r.find(ctx, params, "", nil)
}

// ListByRole returns users holding role.
func (r *Repository) ListByRole(ctx context.Context, role enums.UserRole, params pagination.Params) ([]models.User, error) {
	return r.find(ctx, params, "role = ?", role)
}

// ListExcludingRole returns users not holding role.
func (r *Repository) ListExcludingRole(ctx context.Context, role enums.UserRole, params pagination.Params) ([]models.User, error) {
	return r.find(ctx, params, "role <> ?", role)
}

func (r *Repository) find(ctx context.Context, params pagination.Params, where string, arg any) ([]models.User, error) {
	query := r.base.DB(ctx).Model(&models.User{})
	if where != "" {
		query = query.Where(where, arg)
	}
	var list []models.User
	if err := params.Apply(query, "id").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

// Update applies a partial column update.
func (r *Repository) Update(ctx context.Context, id int64, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}
	return r.base.DB(ctx).Model(&models.User{}).Where("id = ?", id).Updates(updates).Error
}

// UpdateLastLogin refreshes the user's last_login timestamp.
func (r *Repository) UpdateLastLogin(ctx context.Context, id int64, at time.Time) error {
	return r.base.DB(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		UpdateColumn("last_login", at).Error
}

// UpdatePassword overwrites the stored credential.
func (r *Repository) UpdatePassword(ctx context.Context, id int64, hash string) error {
	return r.base.DB(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		UpdateColumn("password", hash).Error
}

// Delete removes the user and reports whether a row existed.
func (r *Repository) Delete(ctx context.Context, id int64) (bool, error) {
	res := r.base.DB(ctx).Delete(&models.User{}, "id = ?", id)
	return res.RowsAffected > 0, res.Error
}
