package orders

import (
	"context"
	"fmt"
	"time"

	pkgdb "github.com/ogsoda/delivery-backend/pkg/db"
	"github.com/ogsoda/delivery-backend/pkg/db/models"
	"github.com/ogsoda/delivery-backend/pkg/enums"
	pkgerrors "github.com/ogsoda/delivery-backend/pkg/errors"
	"github.com/ogsoda/delivery-backend/pkg/metrics"
)

const (
	queryAgentSummary = "agent_summary"
	queryDateSummary  = "date_summary"
	queryDashboard    = "payment_status_summary"
)

// RoleMismatchError reports that a user exists but holds the wrong role
// for the requested report.
type RoleMismatchError struct {
	UserID   int64
	Actual   enums.UserRole
	Required enums.UserRole
}

func (e *RoleMismatchError) Error() string {
	return fmt.Sprintf("User with ID %d is not an %s. Current role: %s", e.UserID, e.Required, e.Actual)
}

// Unwrap exposes the API error so the response layer renders INVALID_ROLE.
func (e *RoleMismatchError) Unwrap() error {
	return pkgerrors.New(pkgerrors.CodeInvalidRole, e.Error()).WithDetails(map[string]any{
		"user_id": e.UserID,
		"role":    e.Actual.String(),
	})
}

type userLookup interface {
	FindByID(ctx context.Context, id int64) (*models.User, error)
}

// Aggregator computes delivery totals over the orders table.
type Aggregator interface {
	SummaryByAgent(ctx context.Context, agentUserID int64) (*AgentSummary, error)
	SummaryByDate(ctx context.Context, ts time.Time) (*DailySummary, error)
	PaymentStatusSummary(ctx context.Context) ([]PaymentStatusCount, error)
}

// AggregatorParams bundles the dependencies of an Aggregator.
type AggregatorParams struct {
	Repo    Repository
	Users   userLookup
	Metrics *metrics.QueryMetrics
}

type aggregator struct {
	repo    Repository
	users   userLookup
	metrics *metrics.QueryMetrics
}

// NewAggregator builds an order aggregator. Metrics are optional.
func NewAggregator(params AggregatorParams) (Aggregator, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if params.Users == nil {
		return nil, fmt.Errorf("user lookup required")
	}
	return &aggregator{
		repo:    params.Repo,
		users:   params.Users,
		metrics: params.Metrics,
	}, nil
}

func (a *aggregator) SummaryByAgent(ctx context.Context, agentUserID int64) (*AgentSummary, error) {
	user, err := a.users.FindByID(ctx, agentUserID)
	if err != nil {
		if pkgdb.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "User not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load user")
	}
	if user.Role != enums.UserRoleAgent {
		return nil, &RoleMismatchError{
			UserID:   user.ID,
			Actual:   user.Role,
			Required: enums.UserRoleAgent,
		}
	}

	started := time.Now()
	totals, err := a.repo.Totals(ctx, TotalsFilter{DeliveredBy: &user.ID})
	a.metrics.Observe(queryAgentSummary, started, err)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "summarize agent orders")
	}
	return totals.agentSummary(), nil
}

// SummaryByDate totals the orders created on the calendar day of ts, taken
// in ts's own location.
func (a *aggregator) SummaryByDate(ctx context.Context, ts time.Time) (*DailySummary, error) {
	from, to := DayBounds(ts)

	started := time.Now()
	totals, err := a.repo.Totals(ctx, TotalsFilter{From: from, To: to})
	a.metrics.Observe(queryDateSummary, started, err)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "summarize daily orders")
	}
	return totals.dailySummary(), nil
}

// PaymentStatusSummary counts orders per non-null payment status.
func (a *aggregator) PaymentStatusSummary(ctx context.Context) ([]PaymentStatusCount, error) {
	started := time.Now()
	rows, err := a.repo.PaymentStatusCounts(ctx)
	a.metrics.Observe(queryDashboard, started, err)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "summarize payment status")
	}
	if rows == nil {
		rows = []PaymentStatusCount{}
	}
	return rows, nil
}

// DayBounds returns the half-open range [midnight, next midnight) holding ts.
func DayBounds(ts time.Time) (time.Time, time.Time) {
	y, m, d := ts.Date()
	from := time.Date(y, m, d, 0, 0, 0, 0, ts.Location())
	return from, from.AddDate(0, 0, 1)
}
