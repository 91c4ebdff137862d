package models

import (
	"time"

	"github.com/ogsoda/delivery-backend/pkg/enums"
)

// User is an operator account: admins, delivery agents and customers.
type User struct {
	ID        int64            `gorm:"primaryKey;autoIncrement"`
	Name      string           `gorm:"column:name;size:255;not null"`
	Email     *string          `gorm:"column:email;size:255;uniqueIndex"`
	Phone     *string          `gorm:"column:phone;size:50;uniqueIndex"`
	Password  string           `gorm:"column:password;size:255;not null"`
	Role      enums.UserRole   `gorm:"column:role;type:varchar(32);not null;default:customer"`
	Status    enums.UserStatus `gorm:"column:status;size:50;not null;default:active"`
	LastLogin *time.Time       `gorm:"column:last_login"`
	CreatedAt time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}

func (User) TableName() string { return "users" }
