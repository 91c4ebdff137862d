package models

import "time"

const (
	TableOrders    = "orders"
	TableOrderTemp = "order_temp"
)

// Order is one delivery visit: trays and bottles handed over or collected,
// plus free-text payment and review status. Draft rows in order_temp share
// this shape, so repositories pick the table explicitly.
type Order struct {
	OrderID         int64     `gorm:"column:order_id;primaryKey;autoIncrement"`
	CustomerID      *int64    `gorm:"column:customer_id;index"`
	TraysHolding    int64     `gorm:"column:trays_holding;not null;default:0"`
	TraysReturned   int64     `gorm:"column:trays_returned;not null;default:0"`
	BottlesHolding  int64     `gorm:"column:bottles_holding;not null;default:0"`
	BottlesReturned int64     `gorm:"column:bottles_returned;not null;default:0"`
	BottlesDamaged  int64     `gorm:"column:bottles_damaged;not null;default:0"`
	PaymentStatus   *string   `gorm:"column:payment_status;size:50"`
	DeliveredBy     *int64    `gorm:"column:delivered_by;index"`
	ReviewStatus    *string   `gorm:"column:review_status;size:50"`
	CreatedAt       time.Time `gorm:"column:created_at;not null;autoCreateTime"`
}

func (Order) TableName() string { return TableOrders }
