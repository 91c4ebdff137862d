package customers

import (
	"context"

	"github.com/ogsoda/delivery-backend/internal/repo"
	"github.com/ogsoda/delivery-backend/pkg/db/models"
	"github.com/ogsoda/delivery-backend/pkg/pagination"
	"gorm.io/gorm"
)

// Repository exposes customer persistence operations.
type Repository struct {
	base repo.Base
}

// NewRepository constructs a customers repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{base: repo.NewBase(db)}
}

// WithTx binds the repository to an open transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{base: r.base.WithTx(tx)}
}

func (r *Repository) Create(ctx context.Context, customer *models.Customer) (*models.Customer, error) {
	if err := r.base.DB(ctx).Create(customer).Error; err != nil {
		return nil, err
	}
	return customer, nil
}

func (r *Repository) FindByID(ctx context.Context, id int64) (*models.Customer, error) {
	var customer models.Customer
	if err := r.base.DB(ctx).First(&customer, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &customer, nil
}

// ExistsByShopAndPhone reports whether a customer with the same shop name
// and phone is already registered.
func (r *Repository) ExistsByShopAndPhone(ctx context.Context, shopName, phone string) (bool, error) {
	var count int64
	err := r.base.DB(ctx).
		Model(&models.Customer{}).
		Where("shop_name = ? AND phone = ?", shopName, phone).
		Count(&count).Error
	return count > 0, err
}

func (r *Repository) List(ctx context.Context, params pagination.Params) ([]models.Customer, error) {
	var list []models.Customer
	if err := params.Apply(r.base.DB(ctx).Model(&models.Customer{}), "id").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *Repository) Update(ctx context.Context, id int64, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}
	return r.base.DB(ctx).Model(&models.Customer{}).Where("id = ?", id).Updates(updates).Error
}

// Delete removes the customer and reports whether a row existed.
func (r *Repository) Delete(ctx context.Context, id int64) (bool, error) {
	res := r.base.DB(ctx).Delete(&models.Customer{}, "id = ?", id)
	return res.RowsAffected > 0, res.Error
}

func (r *Repository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.base.DB(ctx).Model(&models.Customer{}).Count(&count).Error
	return count, err
}
