package repo

import (
	"context"

	"gorm.io/gorm"
)

// Base provides a shared foundation for domain repositories.
type Base struct {
	db    *gorm.DB
	table string
}

// NewBase constructs a Base repository backed by the provided GORM connection.
func NewBase(db *gorm.DB) Base {
	return Base{db: db}
}

// NewTableBase binds the repository to an explicit table, for models that
// back more than one table.
func NewTableBase(db *gorm.DB, table string) Base {
	return Base{db: db, table: table}
}

// WithTx returns a copy of the base bound to tx. A nil tx keeps the current connection.
func (b Base) WithTx(tx *gorm.DB) Base {
	if tx == nil {
		return b
	}
	return Base{db: tx, table: b.table}
}

// Table reports the explicit table name, empty when the model decides.
func (b Base) Table() string {
	return b.table
}

// DB returns the GORM connection bound to the supplied context (if any) and
// scoped to the explicit table when one was set.
func (b Base) DB(ctx context.Context) *gorm.DB {
	conn := b.db
	if ctx != nil {
		conn = conn.WithContext(ctx)
	}
	if b.table != "" {
		conn = conn.Table(b.table)
	}
	return conn
}
