package orders

import (
	"context"
	"fmt"

	pkgdb "github.com/ogsoda/delivery-backend/pkg/db"
	"github.com/ogsoda/delivery-backend/pkg/db/models"
	pkgerrors "github.com/ogsoda/delivery-backend/pkg/errors"
	"github.com/ogsoda/delivery-backend/pkg/pagination"
)

const (
	customerNotFoundMessage = "Customer not found"
	DeletedMessage          = "Order deleted successfully"
)

// Service defines CRUD over one order table. The same implementation
// serves orders and order drafts.
type Service interface {
	Create(ctx context.Context, req CreateOrderRequest) (*OrderDTO, error)
	List(ctx context.Context, params pagination.Params) ([]OrderDTO, error)
	Get(ctx context.Context, id int64) (*OrderDTO, error)
	ListByCustomer(ctx context.Context, customerID int64, params pagination.Params) ([]OrderDTO, error)
	ListByDeliveredBy(ctx context.Context, userID int64, params pagination.Params) ([]OrderDTO, error)
	Update(ctx context.Context, id int64, req UpdateOrderRequest) (*OrderDTO, error)
	Delete(ctx context.Context, id int64) error
}

type customerChecker interface {
	Exists(ctx context.Context, id int64) (bool, error)
}

// ServiceParams bundles the dependencies of an order service.
type ServiceParams struct {
	Repo      Repository
	Customers customerChecker
	// NotFoundMessage is returned when the order id is unknown.
	NotFoundMessage string
}

type service struct {
	repo            Repository
	customers       customerChecker
	notFoundMessage string
}

// NewService builds an order service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if params.Customers == nil {
		return nil, fmt.Errorf("customer checker required")
	}
	msg := params.NotFoundMessage
	if msg == "" {
		msg = "Order not found"
	}
	return &service{
		repo:            params.Repo,
		customers:       params.Customers,
		notFoundMessage: msg,
	}, nil
}

func (s *service) Create(ctx context.Context, req CreateOrderRequest) (*OrderDTO, error) {
	if err := s.ensureCustomer(ctx, req.CustomerID); err != nil {
		return nil, err
	}
	created, err := s.repo.Create(ctx, req.ToModel())
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create order")
	}
	return FromModel(created), nil
}

func (s *service) List(ctx context.Context, params pagination.Params) ([]OrderDTO, error) {
	list, err := s.repo.List(ctx, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list orders")
	}
	return FromModels(list), nil
}

func (s *service) Get(ctx context.Context, id int64) (*OrderDTO, error) {
	order, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return FromModel(order), nil
}

func (s *service) ListByCustomer(ctx context.Context, customerID int64, params pagination.Params) ([]OrderDTO, error) {
	list, err := s.repo.ListByCustomer(ctx, customerID, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list customer orders")
	}
	return FromModels(list), nil
}

func (s *service) ListByDeliveredBy(ctx context.Context, userID int64, params pagination.Params) ([]OrderDTO, error) {
	list, err := s.repo.ListByDeliveredBy(ctx, userID, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list delivered orders")
	}
	return FromModels(list), nil
}

func (s *service) Update(ctx context.Context, id int64, req UpdateOrderRequest) (*OrderDTO, error) {
	if _, err := s.load(ctx, id); err != nil {
		return nil, err
	}
	if req.CustomerID.Valid {
		if err := s.ensureCustomer(ctx, req.CustomerID.Value); err != nil {
			return nil, err
		}
	}
	if err := s.repo.Update(ctx, id, req.Updates()); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update order")
	}
	return s.Get(ctx, id)
}

func (s *service) Delete(ctx context.Context, id int64) error {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete order")
	}
	if !deleted {
		return pkgerrors.New(pkgerrors.CodeNotFound, s.notFoundMessage)
	}
	return nil
}

func (s *service) load(ctx context.Context, id int64) (*models.Order, error) {
	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if pkgdb.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, s.notFoundMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load order")
	}
	return order, nil
}

// ensureCustomer rejects references to customers that do not exist.
// A nil id means the order is not tied to a customer.
func (s *service) ensureCustomer(ctx context.Context, customerID *int64) error {
	if customerID == nil {
		return nil
	}
	ok, err := s.customers.Exists(ctx, *customerID)
	if err != nil {
		return err
	}
	if !ok {
		return pkgerrors.New(pkgerrors.CodeNotFound, customerNotFoundMessage)
	}
	return nil
}
