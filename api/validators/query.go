package validators

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	pkgerrors "github.com/ogsoda/delivery-backend/pkg/errors"
	"github.com/ogsoda/delivery-backend/pkg/pagination"
)

// timestampLayouts are tried in order by ParseTimestamp.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func ParseQueryInt(r *http.Request, key string, defaultVal, min, max int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return defaultVal, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "query parameter must be numeric").WithDetails(map[string]any{"field": key})
	}
	if value < min || value > max {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "query parameter out of range").WithDetails(map[string]any{"field": key, "min": min, "max": max})
	}
	return value, nil
}

// ParseOptionalQueryID reads a positive integer query parameter. A missing
// value returns nil.
func ParseOptionalQueryID(r *http.Request, key string) (*int64, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return nil, nil
	}
	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || value <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "query parameter must be a positive integer").WithDetails(map[string]any{"field": key})
	}
	return &value, nil
}

// ParsePathID reads a positive integer chi URL parameter.
func ParsePathID(r *http.Request, key string) (int64, error) {
	raw := strings.TrimSpace(chi.URLParam(r, key))
	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || value <= 0 {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "path parameter must be a positive integer").WithDetails(map[string]any{"field": key})
	}
	return value, nil
}

// ParsePagination reads the optional limit and after_id query parameters.
func ParsePagination(r *http.Request) (pagination.Params, error) {
	limit, err := ParseQueryInt(r, "limit", 0, 0, pagination.MaxLimit)
	if err != nil {
		return pagination.Params{}, err
	}
	after, err := ParseOptionalQueryID(r, "after_id")
	if err != nil {
		return pagination.Params{}, err
	}
	params := pagination.Params{Limit: limit}
	if after != nil {
		params.AfterID = *after
	}
	return params, nil
}

// ParseTimestamp reads a required timestamp query parameter. Values without
// an offset are taken as UTC.
func ParseTimestamp(r *http.Request, key string) (time.Time, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return time.Time{}, pkgerrors.New(pkgerrors.CodeValidation, "validation failed").WithDetails(map[string]string{key: "is required"})
	}
	for _, candidate := range []string{raw, restorePlusOffset(raw)} {
		if candidate == "" {
			continue
		}
		for _, layout := range timestampLayouts {
			if ts, err := time.ParseInLocation(layout, candidate, time.UTC); err == nil {
				return ts, nil
			}
		}
	}
	return time.Time{}, pkgerrors.New(pkgerrors.CodeValidation, "validation failed").
		WithDetails(map[string]string{key: "must be YYYY-MM-DD or an ISO 8601 timestamp; encode a + offset as %2B"})
}

// restorePlusOffset undoes query decoding of "+05:30" into " 05:30" on an
// ISO 8601 timestamp. It returns "" when raw has no such offset.
func restorePlusOffset(raw string) string {
	i := strings.LastIndex(raw, " ")
	if i <= 0 || !strings.Contains(raw[:i], "T") {
		return ""
	}
	offset := raw[i+1:]
	if len(offset) != 5 || offset[2] != ':' {
		return ""
	}
	return raw[:i] + "+" + offset
}
