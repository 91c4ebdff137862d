package pagination

import (
	"fmt"

	"gorm.io/gorm"
)

const (
	// MaxLimit caps how many rows a single list call can request.
	MaxLimit = 500
)

// Params holds keyset pagination inputs. A zero Limit returns every row,
// which is how the list endpoints behave when no limit is supplied.
type Params struct {
	Limit   int
	AfterID int64
}

// NormalizeLimit clamps the limit into [0, MaxLimit].
func NormalizeLimit(limit int) int {
	if limit <= 0 {
		return 0
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

// Apply orders by idColumn ascending and applies the keyset window.
func (p Params) Apply(query *gorm.DB, idColumn string) *gorm.DB {
	query = query.Order(fmt.Sprintf("%s ASC", idColumn))
	if p.AfterID > 0 {
		query = query.Where(fmt.Sprintf("%s > ?", idColumn), p.AfterID)
	}
	if limit := NormalizeLimit(p.Limit); limit > 0 {
		query = query.Limit(limit)
	}
	return query
}
