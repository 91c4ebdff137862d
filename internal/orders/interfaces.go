package orders

import (
	"context"
	"time"

	"github.com/ogsoda/delivery-backend/pkg/db/models"
	"github.com/ogsoda/delivery-backend/pkg/pagination"
	"gorm.io/gorm"
)

// Repository defines persistence operations over one order table
// (orders or order_temp).
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Table() string
	Create(ctx context.Context, order *models.Order) (*models.Order, error)
	FindByID(ctx context.Context, id int64) (*models.Order, error)
	List(ctx context.Context, params pagination.Params) ([]models.Order, error)
	ListByCustomer(ctx context.Context, customerID int64, params pagination.Params) ([]models.Order, error)
	ListByDeliveredBy(ctx context.Context, userID int64, params pagination.Params) ([]models.Order, error)
	Update(ctx context.Context, id int64, updates map[string]any) error
	Delete(ctx context.Context, id int64) (bool, error)
	Count(ctx context.Context) (int64, error)
	Totals(ctx context.Context, filter TotalsFilter) (*Totals, error)
	PaymentStatusCounts(ctx context.Context) ([]PaymentStatusCount, error)
}

// TotalsFilter narrows the aggregate query. Zero values are ignored.
type TotalsFilter struct {
	DeliveredBy *int64
	From        time.Time
	To          time.Time
}

// Totals is the raw aggregate row shared by both summaries.
type Totals struct {
	OrderCount      int64 `gorm:"column:order_count"`
	TraysHolding    int64 `gorm:"column:trays_holding"`
	TraysReturned   int64 `gorm:"column:trays_returned"`
	BottlesHolding  int64 `gorm:"column:bottles_holding"`
	BottlesReturned int64 `gorm:"column:bottles_returned"`
	BottlesDamaged  int64 `gorm:"column:bottles_damaged"`
}

// PaymentStatusCount is one bucket of the payment status breakdown.
type PaymentStatusCount struct {
	Status string `gorm:"column:payment_status" json:"payment_status"`
	Count  int64  `gorm:"column:count" json:"count"`
}
