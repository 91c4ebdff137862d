package customers

import (
	"context"
	"fmt"

	pkgdb "github.com/ogsoda/delivery-backend/pkg/db"
	"github.com/ogsoda/delivery-backend/pkg/db/models"
	pkgerrors "github.com/ogsoda/delivery-backend/pkg/errors"
	"github.com/ogsoda/delivery-backend/pkg/pagination"
)

const (
	notFoundMessage  = "Customer not found"
	duplicateMessage = "Customer already exists with this phone number"
	DeletedMessage   = "Customer deleted successfully"
)

// Service defines the customer operations used by the controllers.
type Service interface {
	Create(ctx context.Context, req CreateCustomerRequest) (*CustomerDTO, error)
	List(ctx context.Context, params pagination.Params) ([]CustomerDTO, error)
	Get(ctx context.Context, id int64) (*CustomerDTO, error)
	Update(ctx context.Context, id int64, req UpdateCustomerRequest) (*CustomerDTO, error)
	Delete(ctx context.Context, id int64) error
	Exists(ctx context.Context, id int64) (bool, error)
	Count(ctx context.Context) (int64, error)
}

type repository interface {
	Create(ctx context.Context, customer *models.Customer) (*models.Customer, error)
	FindByID(ctx context.Context, id int64) (*models.Customer, error)
	ExistsByShopAndPhone(ctx context.Context, shopName, phone string) (bool, error)
	List(ctx context.Context, params pagination.Params) ([]models.Customer, error)
	Update(ctx context.Context, id int64, updates map[string]any) error
	Delete(ctx context.Context, id int64) (bool, error)
	Count(ctx context.Context) (int64, error)
}

type service struct {
	repo repository
}

// NewService wires a customer service over the given repository.
func NewService(repo repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("customers repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Create(ctx context.Context, req CreateCustomerRequest) (*CustomerDTO, error) {
	customer := req.ToModel()
	exists, err := s.repo.ExistsByShopAndPhone(ctx, customer.ShopName, customer.Phone)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check existing customer")
	}
	if exists {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, duplicateMessage)
	}
	created, err := s.repo.Create(ctx, customer)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create customer")
	}
	return FromModel(created), nil
}

func (s *service) List(ctx context.Context, params pagination.Params) ([]CustomerDTO, error) {
	list, err := s.repo.List(ctx, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list customers")
	}
	return FromModels(list), nil
}

func (s *service) Get(ctx context.Context, id int64) (*CustomerDTO, error) {
	customer, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return FromModel(customer), nil
}

func (s *service) Update(ctx context.Context, id int64, req UpdateCustomerRequest) (*CustomerDTO, error) {
	if _, err := s.load(ctx, id); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, id, req.Updates()); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update customer")
	}
	return s.Get(ctx, id)
}

func (s *service) Delete(ctx context.Context, id int64) error {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete customer")
	}
	if !deleted {
		return pkgerrors.New(pkgerrors.CodeNotFound, notFoundMessage)
	}
	return nil
}

// Exists reports whether a customer row with the id is present.
func (s *service) Exists(ctx context.Context, id int64) (bool, error) {
	_, err := s.repo.FindByID(ctx, id)
	if err == nil {
		return true, nil
	}
	if pkgdb.IsNotFound(err) {
		return false, nil
	}
	return false, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load customer")
}

func (s *service) Count(ctx context.Context) (int64, error) {
	count, err := s.repo.Count(ctx)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count customers")
	}
	return count, nil
}

func (s *service) load(ctx context.Context, id int64) (*models.Customer, error) {
	customer, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if pkgdb.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, notFoundMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load customer")
	}
	return customer, nil
}
