package models

import (
	"fmt"

	"gorm.io/gorm"
)

// AutoMigrate builds the schema from the structs. Postgres deployments use the
// goose migrations instead; this path serves sqlite dev databases and tests.
func AutoMigrate(conn *gorm.DB) error {
	if err := conn.AutoMigrate(&Customer{}, &User{}, &Order{}); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	if err := conn.Table(TableOrderTemp).AutoMigrate(&Order{}); err != nil {
		return fmt.Errorf("auto migrate %s: %w", TableOrderTemp, err)
	}
	return nil
}
