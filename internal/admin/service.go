package admin

import (
	"context"
	"fmt"

	"github.com/ogsoda/delivery-backend/internal/orders"
	pkgerrors "github.com/ogsoda/delivery-backend/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// Dashboard is the admin overview payload.
type Dashboard struct {
	TotalCustomers       int64            `json:"total_customers"`
	TotalOrders          int64            `json:"total_orders"`
	PaymentStatusSummary map[string]int64 `json:"payment_status_summary"`
}

type counter interface {
	Count(ctx context.Context) (int64, error)
}

type paymentSummarizer interface {
	PaymentStatusSummary(ctx context.Context) ([]orders.PaymentStatusCount, error)
}

// Service computes the admin dashboard.
type Service interface {
	Dashboard(ctx context.Context) (*Dashboard, error)
}

// ServiceParams bundles the dependencies of the dashboard service.
type ServiceParams struct {
	Customers counter
	Orders    counter
	Payments  paymentSummarizer
}

type service struct {
	customers counter
	orders    counter
	payments  paymentSummarizer
}

func NewService(params ServiceParams) (Service, error) {
	if params.Customers == nil || params.Orders == nil || params.Payments == nil {
		return nil, fmt.Errorf("customers, orders and payments sources are required")
	}
	return &service{
		customers: params.Customers,
		orders:    params.Orders,
		payments:  params.Payments,
	}, nil
}

// Dashboard runs the three independent queries concurrently.
func (s *service) Dashboard(ctx context.Context) (*Dashboard, error) {
	var (
		out  Dashboard
		rows []orders.PaymentStatusCount
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := s.customers.Count(gctx)
		out.TotalCustomers = n
		return err
	})
	g.Go(func() error {
		n, err := s.orders.Count(gctx)
		out.TotalOrders = n
		return err
	})
	g.Go(func() error {
		var err error
		rows, err = s.payments.PaymentStatusSummary(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "fetch dashboard metrics")
	}

	out.PaymentStatusSummary = make(map[string]int64, len(rows))
	for _, row := range rows {
		if row.Status == "" {
			continue
		}
		out.PaymentStatusSummary[row.Status] = row.Count
	}
	return &out, nil
}
