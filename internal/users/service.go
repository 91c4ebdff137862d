package users

import (
	"context"
	"fmt"
	"sort"
	"strings"

	pkgdb "github.com/ogsoda/delivery-backend/pkg/db"
	"github.com/ogsoda/delivery-backend/pkg/db/models"
	"github.com/ogsoda/delivery-backend/pkg/enums"
	pkgerrors "github.com/ogsoda/delivery-backend/pkg/errors"
	"github.com/ogsoda/delivery-backend/pkg/pagination"
)

const (
	notFoundMessage      = "User not found"
	emailTakenMessage    = "Email already used"
	phoneTakenMessage    = "Phone already used"
	contactMissing       = "Either email or phone must be provided"
	selectorMissing      = "At least one parameter (user_id, username, or email) must be provided"
	DeletedMessage       = "User deleted successfully"
	emailConstraintName  = "users_email_key"
	phoneConstraintName  = "users_phone_key"
	defaultMinPasswordSz = 6
)

// Service defines the user operations used by the controllers.
type Service interface {
	List(ctx context.Context, params pagination.Params) ([]UserDTO, error)
	ListExcludingPowerAdmin(ctx context.Context, params pagination.Params) ([]UserDTO, error)
	ListByRole(ctx context.Context, role string, params pagination.Params) ([]UserDTO, error)
	Get(ctx context.Context, id int64) (*UserDTO, error)
	Create(ctx context.Context, req CreateUserRequest) (*UserDTO, error)
	Update(ctx context.Context, id int64, req UpdateUserRequest) (*UserDTO, error)
	Delete(ctx context.Context, id int64) error
	PasswordHash(ctx context.Context, query PasswordHashQuery) (*PasswordHashResponse, error)
}

type userRepository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	FindByID(ctx context.Context, id int64) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByName(ctx context.Context, name string) (*models.User, error)
	EmailTaken(ctx context.Context, email string, excludeID int64) (bool, error)
	PhoneTaken(ctx context.Context, phone string, excludeID int64) (bool, error)
	List(ctx context.Context, params pagination.Params) ([]models.User, error)
	ListByRole(ctx context.Context, role enums.UserRole, params pagination.Params) ([]models.User, error)
	ListExcludingRole(ctx context.Context, role enums.UserRole, params pagination.Params) ([]models.User, error)
	Update(ctx context.Context, id int64, updates map[string]any) error
	Delete(ctx context.Context, id int64) (bool, error)
}

type passwordHasher interface {
	Hash(password string) (string, error)
}

// ServiceParams bundles the dependencies required to build a users service.
type ServiceParams struct {
	Repo              userRepository
	Hasher            passwordHasher
	MinPasswordLength int
}

type service struct {
	repo      userRepository
	hasher    passwordHasher
	minLength int
}

// NewService constructs a users service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("users repository required")
	}
	if params.Hasher == nil {
		return nil, fmt.Errorf("password hasher required")
	}
	minLength := params.MinPasswordLength
	if minLength <= 0 {
		minLength = defaultMinPasswordSz
	}
	return &service{repo: params.Repo, hasher: params.Hasher, minLength: minLength}, nil
}

func (s *service) List(ctx context.Context, params pagination.Params) ([]UserDTO, error) {
	list, err := s.repo.List(ctx, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list users")
	}
	return FromModels(list), nil
}

func (s *service) ListExcludingPowerAdmin(ctx context.Context, params pagination.Params) ([]UserDTO, error) {
	list, err := s.repo.ListExcludingRole(ctx, enums.UserRolePowerAdmin, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list users")
	}
	return FromModels(list), nil
}

func (s *service) ListByRole(ctx context.Context, role string, params pagination.Params) ([]UserDTO, error) {
	parsed, err := enums.ParseUserRole(role)
	if err != nil {
		return nil, invalidRoleError(role)
	}
	list, err := s.repo.ListByRole(ctx, parsed, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list users by role")
	}
	return FromModels(list), nil
}

func (s *service) Get(ctx context.Context, id int64) (*UserDTO, error) {
	user, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return FromModel(user), nil
}

func (s *service) Create(ctx context.Context, req CreateUserRequest) (*UserDTO, error) {
	email := normalizeEmail(req.Email)
	phone := normalizePhone(req.Phone)
	if email == nil && phone == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, contactMissing)
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}

	role := enums.UserRoleCustomer
	if strings.TrimSpace(req.Role) != "" {
		parsed, err := enums.ParseUserRole(req.Role)
		if err != nil {
			return nil, invalidRoleError(req.Role)
		}
		role = parsed
	}

	if err := s.ensureContactFree(ctx, email, phone, 0); err != nil {
		return nil, err
	}

	hash, err := s.hashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	created, err := s.repo.Create(ctx, &models.User{
		Name:     name,
		Email:    email,
		Phone:    phone,
		Password: hash,
		Role:     role,
		Status:   enums.UserStatusActive,
	})
	if err != nil {
		return nil, mapWriteError(err, "create user")
	}
	return FromModel(created), nil
}

func (s *service) Update(ctx context.Context, id int64, req UpdateUserRequest) (*UserDTO, error) {
	if _, err := s.load(ctx, id); err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
		}
		updates["name"] = name
	}

	email := normalizeEmail(req.Email)
	phone := normalizePhone(req.Phone)
	if err := s.ensureContactFree(ctx, email, phone, id); err != nil {
		return nil, err
	}
	if email != nil {
		updates["email"] = *email
	}
	if phone != nil {
		updates["phone"] = *phone
	}

	if req.Password != nil {
		hash, err := s.hashPassword(*req.Password)
		if err != nil {
			return nil, err
		}
		updates["password"] = hash
	}
	if req.Role != nil {
		role, err := enums.ParseUserRole(*req.Role)
		if err != nil {
			return nil, invalidRoleError(*req.Role)
		}
		updates["role"] = role
	}
	if req.Status != nil {
		status := enums.UserStatus(strings.ToLower(strings.TrimSpace(*req.Status)))
		if !status.IsValid() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "Invalid status. Allowed: active, inactive")
		}
		updates["status"] = status
	}

	if err := s.repo.Update(ctx, id, updates); err != nil {
		return nil, mapWriteError(err, "update user")
	}
	return s.Get(ctx, id)
}

func (s *service) Delete(ctx context.Context, id int64) error {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete user")
	}
	if !deleted {
		return pkgerrors.New(pkgerrors.CodeNotFound, notFoundMessage)
	}
	return nil
}

func (s *service) PasswordHash(ctx context.Context, query PasswordHashQuery) (*PasswordHashResponse, error) {
	var (
		user *models.User
		err  error
	)
	username := strings.TrimSpace(query.Username)
	email := strings.TrimSpace(query.Email)
	switch {
	case query.UserID != nil && *query.UserID > 0:
		user, err = s.repo.FindByID(ctx, *query.UserID)
	case username != "":
		user, err = s.repo.FindByName(ctx, username)
	case email != "":
		user, err = s.repo.FindByEmail(ctx, email)
	default:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, selectorMissing)
	}
	if err != nil {
		if pkgdb.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, notFoundMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load user")
	}
	return &PasswordHashResponse{
		ID:           user.ID,
		Name:         user.Name,
		Email:        user.Email,
		Phone:        user.Phone,
		PasswordHash: user.Password,
		Note:         PasswordHashNote,
	}, nil
}

func (s *service) load(ctx context.Context, id int64) (*models.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if pkgdb.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, notFoundMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load user")
	}
	return user, nil
}

func (s *service) ensureContactFree(ctx context.Context, email, phone *string, excludeID int64) error {
	if email != nil {
		taken, err := s.repo.EmailTaken(ctx, *email, excludeID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check email")
		}
		if taken {
			return pkgerrors.New(pkgerrors.CodeConflict, emailTakenMessage)
		}
	}
	if phone != nil {
		taken, err := s.repo.PhoneTaken(ctx, *phone, excludeID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check phone")
		}
		if taken {
			return pkgerrors.New(pkgerrors.CodeConflict, phoneTakenMessage)
		}
	}
	return nil
}

func (s *service) hashPassword(password string) (string, error) {
	if len(password) < s.minLength {
		return "", pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("password must be at least %d characters", s.minLength))
	}
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}
	return hash, nil
}

// mapWriteError turns unique violations that slipped past the pre-checks
// (concurrent writers) into conflicts.
func mapWriteError(err error, action string) error {
	switch {
	case pkgdb.IsUniqueViolation(err, emailConstraintName):
		return pkgerrors.Wrap(pkgerrors.CodeConflict, err, emailTakenMessage)
	case pkgdb.IsUniqueViolation(err, phoneConstraintName):
		return pkgerrors.Wrap(pkgerrors.CodeConflict, err, phoneTakenMessage)
	case pkgdb.IsUniqueViolation(err, ""):
		return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "user already exists")
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, action)
}

func invalidRoleError(role string) error {
	allowed := make([]string, 0, len(enums.UserRoles()))
	for _, r := range enums.UserRoles() {
		allowed = append(allowed, r.String())
	}
	sort.Strings(allowed)
	return pkgerrors.New(pkgerrors.CodeValidation, "Invalid role. Allowed: "+strings.Join(allowed, ", ")).
		WithDetails(map[string]any{"role": role})
}
