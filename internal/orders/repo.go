package orders

import (
	"context"

	"github.com/ogsoda/delivery-backend/internal/repo"
	"github.com/ogsoda/delivery-backend/pkg/db/models"
	"github.com/ogsoda/delivery-backend/pkg/pagination"
	"gorm.io/gorm"
)

const totalsSelect = `COUNT(order_id) AS order_count,
	COALESCE(SUM(trays_holding), 0) AS trays_holding,
	COALESCE(SUM(trays_returned), 0) AS trays_returned,
	COALESCE(SUM(bottles_holding), 0) AS bottles_holding,
	COALESCE(SUM(bottles_returned), 0) AS bottles_returned,
	COALESCE(SUM(bottles_damaged), 0) AS bottles_damaged`

type repository struct {
	base repo.Base
}

// NewRepository binds a repository to the orders table.
func NewRepository(db *gorm.DB) Repository {
	return NewTableRepository(db, models.TableOrders)
}

// NewTempRepository binds a repository to the order_temp draft table.
func NewTempRepository(db *gorm.DB) Repository {
	return NewTableRepository(db, models.TableOrderTemp)
}

// NewTableRepository binds a repository to an arbitrary order-shaped table.
func NewTableRepository(db *gorm.DB, table string) Repository {
	return &repository{base: repo.NewTableBase(db, table)}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	return &repository{base: r.base.WithTx(tx)}
}

func (r *repository) Table() string {
	return r.base.Table()
}

func (r *repository) Create(ctx context.Context, order *models.Order) (*models.Order, error) {
	if !order.CreatedAt.IsZero() {
		order.CreatedAt = order.CreatedAt.UTC()
	}
	if err := r.base.DB(ctx).Create(order).Error; err != nil {
		return nil, err
	}
	return order, nil
}

func (r *repository) FindByID(ctx context.Context, id int64) (*models.Order, error) {
	var order models.Order
	if err := r.base.DB(ctx).Where("order_id = ?", id).First(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) List(ctx context.Context, params pagination.Params) ([]models.Order, error) {
	return r.find(ctx, params, "", nil)
}

func (r *repository) ListByCustomer(ctx context.Context, customerID int64, params pagination.Params) ([]models.Order, error) {
	return r.find(ctx, params, "customer_id = ?", customerID)
}

func (r *repository) ListByDeliveredBy(ctx context.Context, userID int64, params pagination.Params) ([]models.Order, error) {
	return r.find(ctx, params, "delivered_by = ?", userID)
}

func (r *repository) find(ctx context.Context, params pagination.Params, where string, arg any) ([]models.Order, error) {
	query := r.base.DB(ctx)
	if where != "" {
		query = query.Where(where, arg)
	}
	var list []models.Order
	if err := params.Apply(query, "order_id").Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

func (r *repository) Update(ctx context.Context, id int64, updates map[string]any) error {
	if len(updates) == 0 {
		return nil
	}
	return r.base.DB(ctx).Where("order_id = ?", id).Updates(updates).Error
}

// Delete removes the order and reports whether a row existed.
func (r *repository) Delete(ctx context.Context, id int64) (bool, error) {
	res := r.base.DB(ctx).Where("order_id = ?", id).Delete(&models.Order{})
	return res.RowsAffected > 0, res.Error
}

func (r *repository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.base.DB(ctx).Count(&count).Error
	return count, err
}

// Totals runs the single COUNT/SUM statement behind both summaries.
func (r *repository) Totals(ctx context.Context, filter TotalsFilter) (*Totals, error) {
	query := r.base.DB(ctx).Select(totalsSelect)
	if filter.DeliveredBy != nil {
		query = query.Where("delivered_by = ?", *filter.DeliveredBy)
	}
	// sqlite compares created_at as text, so bounds are bound in UTC like the stored values.
	if !filter.From.IsZero() {
		query = query.Where("created_at >= ?", filter.From.UTC())
	}
	if !filter.To.IsZero() {
		query = query.Where("created_at < ?", filter.To.UTC())
	}
	var totals Totals
	if err := query.Scan(&totals).Error; err != nil {
		return nil, err
	}
	return &totals, nil
}

func (r *repository) PaymentStatusCounts(ctx context.Context) ([]PaymentStatusCount, error) {
	var rows []PaymentStatusCount
	err := r.base.DB(ctx).
		Select("payment_status, COUNT(order_id) AS count").
		Where("payment_status IS NOT NULL").
		Group("payment_status").
		Order("payment_status ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
