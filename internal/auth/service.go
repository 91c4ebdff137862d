package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ogsoda/delivery-backend/internal/users"
	pkgAuth "github.com/ogsoda/delivery-backend/pkg/auth"
	"github.com/ogsoda/delivery-backend/pkg/auth/session"
	"github.com/ogsoda/delivery-backend/pkg/config"
	pkgdb "github.com/ogsoda/delivery-backend/pkg/db"
	"github.com/ogsoda/delivery-backend/pkg/db/models"
	pkgerrors "github.com/ogsoda/delivery-backend/pkg/errors"
	"github.com/ogsoda/delivery-backend/pkg/logger"
	"github.com/ogsoda/delivery-backend/pkg/metrics"
	"github.com/ogsoda/delivery-backend/pkg/security"
)

const (
	invalidCredentialsMessage = "invalid credentials"
	tokenTypeBearer           = "bearer"
)

// Service defines the behavior needed by the auth controllers.
type Service interface {
	Login(ctx context.Context, req LoginRequest) (*TokenResponse, error)
	Refresh(ctx context.Context, req RefreshRequest) (*TokenResponse, error)
	Logout(ctx context.Context, accessID string) error
	Me(ctx context.Context, userID int64) (*users.UserDTO, error)
}

type userRepository interface {
	FindByID(ctx context.Context, id int64) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByPhone(ctx context.Context, phone string) (*models.User, error)
	UpdateLastLogin(ctx context.Context, id int64, at time.Time) error
	UpdatePassword(ctx context.Context, id int64, hash string) error
}

type credentialVerifier interface {
	Hash(password string) (string, error)
	Verify(candidate, stored string) bool
	NeedsRehash(stored string) bool
}

type sessionManager interface {
	Generate(ctx context.Context, userID int64) (session.Issued, error)
	Rotate(ctx context.Context, oldAccessID, provided string) (session.Issued, error)
	Revoke(ctx context.Context, accessID string) error
}

// ServiceParams bundles the dependencies required to build an auth service.
type ServiceParams struct {
	UserRepo       userRepository
	Credentials    credentialVerifier
	SessionManager sessionManager
	JWTConfig      config.JWTConfig
	Metrics        *metrics.AuthMetrics
	Logger         *logger.Logger
	Now            func() time.Time
}

type service struct {
	users       userRepository
	credentials credentialVerifier
	session     sessionManager
	jwtCfg      config.JWTConfig
	metrics     *metrics.AuthMetrics
	logg        *logger.Logger
	now         func() time.Time
}

// NewService constructs a login service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.UserRepo == nil {
		return nil, fmt.Errorf("user repository is required")
	}
	if params.Credentials == nil {
		return nil, fmt.Errorf("credential verifier is required")
	}
	if params.SessionManager == nil {
		return nil, fmt.Errorf("session manager is required")
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		users:       params.UserRepo,
		credentials: params.Credentials,
		session:     params.SessionManager,
		jwtCfg:      params.JWTConfig,
		metrics:     params.Metrics,
		logg:        logg,
		now:         now,
	}, nil
}

func (s *service) Login(ctx context.Context, req LoginRequest) (*TokenResponse, error) {
	user, err := s.authenticate(ctx, req.Identifier, req.Password)
	if err != nil {
		if pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized) {
			s.metrics.IncLogin(metrics.LoginInvalid)
		} else {
			s.metrics.IncLogin(metrics.LoginError)
		}
		return nil, err
	}

	now := s.now().UTC()
	if err := s.users.UpdateLastLogin(ctx, user.ID, now); err != nil {
		s.metrics.IncLogin(metrics.LoginError)
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update last login")
	}
	user.LastLogin = &now

	outcome := metrics.LoginSuccess
	if s.upgradeCredential(ctx, user, req.Password) {
		outcome = metrics.LoginLegacyUpgraded
	}

	resp, err := s.issue(ctx, user, now)
	if err != nil {
		s.metrics.IncLogin(metrics.LoginError)
		return nil, err
	}
	s.metrics.IncLogin(outcome)
	return resp, nil
}

func (s *service) Refresh(ctx context.Context, req RefreshRequest) (*TokenResponse, error) {
	claims, err := pkgAuth.ParseAccessTokenAllowExpired(s.jwtCfg, strings.TrimSpace(req.AccessToken))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token")
	}
	if claims.ID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing session id")
	}

	issued, err := s.session.Rotate(ctx, claims.ID, req.RefreshToken)
	if err != nil {
		if errors.Is(err, session.ErrInvalidRefreshToken) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid refresh token")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "rotate session")
	}

	user, err := s.users.FindByID(ctx, issued.UserID)
	if err != nil {
		if pkgdb.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load user")
	}
	return s.tokens(user, issued, s.now().UTC())
}

func (s *service) Logout(ctx context.Context, accessID string) error {
	if strings.TrimSpace(accessID) == "" {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "missing session id")
	}
	if err := s.session.Revoke(ctx, accessID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "revoke session")
	}
	return nil
}

func (s *service) Me(ctx context.Context, userID int64) (*users.UserDTO, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if pkgdb.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "User not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load user")
	}
	return users.FromModel(user), nil
}

// authenticate resolves the identifier to a user and checks the password.
// Identifiers containing "@" are emails (case-insensitive); anything else is
// matched against the phone column exactly.
func (s *service) authenticate(ctx context.Context, identifier, password string) (*models.User, error) {
	input := strings.TrimSpace(identifier)
	if input == "" || password == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}

	var (
		user *models.User
		err  error
	)
	if strings.Contains(input, "@") {
		user, err = s.users.FindByEmail(ctx, input)
	} else {
		user, err = s.users.FindByPhone(ctx, input)
	}
	if err != nil {
		if pkgdb.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup user")
	}

	if strings.TrimSpace(user.Password) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "User password not set in database")
	}
	if !s.credentials.Verify(password, user.Password) {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}
	return user, nil
}

// upgradeCredential re-hashes a stored credential that is plaintext or below
// the configured cost. Failures are logged and never block the login. It
// reports whether a plaintext credential was replaced.
func (s *service) upgradeCredential(ctx context.Context, user *models.User, password string) bool {
	if !s.credentials.NeedsRehash(user.Password) {
		return false
	}
	wasPlaintext := !security.IsBcryptHash(strings.TrimSpace(user.Password))

	hash, err := s.credentials.Hash(password)
	if err == nil {
		err = s.users.UpdatePassword(ctx, user.ID, hash)
	}
	if err != nil {
		ctx = s.logg.WithUserID(ctx, user.ID)
		s.logg.Error(ctx, "auth.rehash_failed", err)
		return false
	}
	user.Password = hash
	return wasPlaintext
}

func (s *service) issue(ctx context.Context, user *models.User, now time.Time) (*TokenResponse, error) {
	issued, err := s.session.Generate(ctx, user.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "store refresh token")
	}
	return s.tokens(user, issued, now)
}

func (s *service) tokens(user *models.User, issued session.Issued, now time.Time) (*TokenResponse, error) {
	accessToken, err := pkgAuth.MintAccessToken(s.jwtCfg, now, pkgAuth.AccessTokenPayload{
		UserID: user.ID,
		Role:   user.Role,
		JTI:    issued.AccessID,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint jwt")
	}
	return &TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: issued.RefreshToken,
		TokenType:    tokenTypeBearer,
		ExpiresIn:    int64(s.jwtCfg.AccessTokenTTL().Seconds()),
		User:         users.FromModel(user),
	}, nil
}
