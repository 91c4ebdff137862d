package models

import "time"

// Customer is a shop that receives deliveries.
type Customer struct {
	ID        int64     `gorm:"primaryKey;autoIncrement"`
	ShopName  string    `gorm:"column:shop_name;not null"`
	OwnerName string    `gorm:"column:owner_name;not null"`
	Phone     string    `gorm:"column:phone;not null"`
	Phone2    *string   `gorm:"column:phone2"`
	Latitude  *float64  `gorm:"column:latitude"`
	Longitude *float64  `gorm:"column:longitude"`
	Address   string    `gorm:"column:address;not null"`
	Pincode   *string   `gorm:"column:pincode"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (Customer) TableName() string { return "customers" }
