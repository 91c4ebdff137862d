package errors

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// StoreKind names the class of storage failure behind an error, if any.
type StoreKind string

const (
	StoreKindNone       StoreKind = ""
	StoreKindNotFound   StoreKind = "not_found"
	StoreKindUnique     StoreKind = "unique_violation"
	StoreKindForeignKey StoreKind = "foreign_key_violation"
	StoreKindCheck      StoreKind = "check_violation"
	StoreKindNotNull    StoreKind = "not_null_violation"
	StoreKindOther      StoreKind = "database_error"
)

var pgStateKinds = map[string]StoreKind{
	"23505": StoreKindUnique,
	"23503": StoreKindForeignKey,
	"23514": StoreKindCheck,
	"23502": StoreKindNotNull,
}

// ErrorDump is the log-friendly view of an error chain written by the
// response layer.
type ErrorDump struct {
	TopMessage string    `json:"top_message"`
	Code       Code      `json:"code,omitempty"`
	StoreKind  StoreKind `json:"store_kind,omitempty"`

	Chain []string `json:"chain,omitempty"`

	PGCode       string `json:"pg_code,omitempty"`
	PGConstraint string `json:"pg_constraint,omitempty"`
	PGTable      string `json:"pg_table,omitempty"`
	PGColumn     string `json:"pg_column,omitempty"`
	PGDetail     string `json:"pg_detail,omitempty"`
	PGMessage    string `json:"pg_message,omitempty"`
}

// LogFields flattens the dump into logger fields, skipping empty pg values.
func (d ErrorDump) LogFields() map[string]any {
	fields := map[string]any{
		"error":       d.TopMessage,
		"error_code":  d.Code,
		"error_chain": d.Chain,
	}
	if d.StoreKind != StoreKindNone {
		fields["store_kind"] = d.StoreKind
	}
	for key, val := range map[string]string{
		"pg_code":       d.PGCode,
		"pg_detail":     d.PGDetail,
		"pg_message":    d.PGMessage,
		"pg_table":      d.PGTable,
		"pg_column":     d.PGColumn,
		"pg_constraint": d.PGConstraint,
	} {
		if val != "" {
			fields[key] = val
		}
	}
	return fields
}

func Dump(err error) ErrorDump {
	if err == nil {
		return ErrorDump{}
	}

	d := ErrorDump{TopMessage: err.Error()}
	if te := As(err); te != nil {
		d.Code = te.Code()
	}
	for e := err; e != nil; e = errors.Unwrap(e) {
		d.Chain = append(d.Chain, fmt.Sprintf("%T: %v", e, e))
	}

	d.fillPostgres(err)
	d.StoreKind = classifyStore(err, d.PGCode)
	return d
}

func classifyStore(err error, pgCode string) StoreKind {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return StoreKindNotFound
	}
	if pgCode == "" {
		return StoreKindNone
	}
	if kind, ok := pgStateKinds[pgCode]; ok {
		return kind
	}
	return StoreKindOther
}

func (d *ErrorDump) fillPostgres(err error) {
	var pgxErr *pgconn.PgError
	if errors.As(err, &pgxErr) {
		d.PGCode, d.PGConstraint = pgxErr.Code, pgxErr.ConstraintName
		d.PGTable, d.PGColumn = pgxErr.TableName, pgxErr.ColumnName
		d.PGDetail, d.PGMessage = pgxErr.Detail, pgxErr.Message
		return
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		d.PGCode, d.PGConstraint = string(pqErr.Code), pqErr.Constraint
		d.PGTable, d.PGColumn = pqErr.Table, pqErr.Column
		d.PGDetail, d.PGMessage = pqErr.Detail, pqErr.Message
	}
}
