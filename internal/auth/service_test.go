package auth

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	pkgAuth "github.com/ogsoda/delivery-backend/pkg/auth"
	"github.com/ogsoda/delivery-backend/pkg/auth/session"
	"github.com/ogsoda/delivery-backend/pkg/config"
	"github.com/ogsoda/delivery-backend/pkg/db/models"
	"github.com/ogsoda/delivery-backend/pkg/enums"
	pkgerrors "github.com/ogsoda/delivery-backend/pkg/errors"
	"github.com/ogsoda/delivery-backend/pkg/security"
	"gorm.io/gorm"
)

var testJWT = config.JWTConfig{
	Secret:                 "secret",
	Issuer:                 "og-soda",
	ExpirationMinutes:      30,
	RefreshTokenTTLMinutes: 600,
}

type stubUserRepo struct {
	users       []*models.User
	lastLogin   map[int64]time.Time
	passwords   map[int64]string
	lookupError error
}

func newStubUserRepo(users ...*models.User) *stubUserRepo {
	return &stubUserRepo{
		users:     users,
		lastLogin: map[int64]time.Time{},
		passwords: map[int64]string{},
	}
}

func (s *stubUserRepo) find(match func(*models.User) bool) (*models.User, error) {
	if s.lookupError != nil {
		return nil, s.lookupError
	}
	for _, u := range s.users {
		if match(u) {
			clone := *u
			return &clone, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubUserRepo) FindByID(_ context.Context, id int64) (*models.User, error) {
	return s.find(func(u *models.User) bool { return u.ID == id })
}

func (s *stubUserRepo) FindByEmail(_ context.Context, email string) (*models.User, error) {
	return s.find(func(u *models.User) bool {
		return u.Email != nil && strings.EqualFold(*u.Email, email)
	})
}

func (s *stubUserRepo) FindByPhone(_ context.Context, phone string) (*models.User, error) {
	return s.find(func(u *models.User) bool { return u.Phone != nil && *u.Phone == phone })
}

func (s *stubUserRepo) UpdateLastLogin(_ context.Context, id int64, at time.Time) error {
	s.lastLogin[id] = at
	return nil
}

func (s *stubUserRepo) UpdatePassword(_ context.Context, id int64, hash string) error {
	s.passwords[id] = hash
	return nil
}

type stubSessions struct {
	generated []int64
	revoked   []string
	rotateErr error
	rotateFor int64
}

func (s *stubSessions) Generate(_ context.Context, userID int64) (session.Issued, error) {
	s.generated = append(s.generated, userID)
	return session.Issued{AccessID: "access-1", RefreshToken: "refresh-1", UserID: userID}, nil
}

func (s *stubSessions) Rotate(_ context.Context, oldAccessID, provided string) (session.Issued, error) {
	if s.rotateErr != nil {
		return session.Issued{}, s.rotateErr
	}
	return session.Issued{AccessID: oldAccessID + "-next", RefreshToken: provided + "-next", UserID: s.rotateFor}, nil
}

func (s *stubSessions) Revoke(_ context.Context, accessID string) error {
	s.revoked = append(s.revoked, accessID)
	return nil
}

func strPtr(v string) *string { return &v }

func newHasher() *security.Hasher {
	return security.NewHasher(config.PasswordConfig{BcryptCost: 4, AllowLegacyPlaintext: true})
}

func buildTestService(t *testing.T, repo *stubUserRepo, sessions *stubSessions) Service {
	t.Helper()
	// ParseAccessToken checks exp against the wall clock.
	now := time.Now().UTC().Truncate(time.Second)
	svc, err := NewService(ServiceParams{
		UserRepo:       repo,
		Credentials:    newHasher(),
		SessionManager: sessions,
		JWTConfig:      testJWT,
		Now:            func() time.Time { return now },
	})
	if err != nil {
		t.Fatalf("build service: %v", err)
	}
	return svc
}

func mustHash(t *testing.T, password string) string {
	t.Helper()
	hash, err := newHasher().Hash(password)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	return hash
}

func TestLoginByEmailIssuesTokens(t *testing.T) {
	user := &models.User{ID: 7, Name: "Agent", Email: strPtr("agent@example.com"), Password: mustHash(t, "secret1"), Role: enums.UserRoleAgent}
	repo := newStubUserRepo(user)
	sessions := &stubSessions{}
	svc := buildTestService(t, repo, sessions)

	resp, err := svc.Login(context.Background(), LoginRequest{Identifier: " AGENT@example.com ", Password: "secret1"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	claims, err := pkgAuth.ParseAccessToken(testJWT, resp.AccessToken)
	if err != nil {
		t.Fatalf("parse access token: %v", err)
	}
	if claims.UserID != 7 || claims.Role != enums.UserRoleAgent {
		t.Fatalf("unexpected claims %+v", claims)
	}
	if claims.ID != "access-1" {
		t.Fatalf("expected jti to match session access id, got %q", claims.ID)
	}
	if resp.RefreshToken != "refresh-1" || resp.TokenType != "bearer" || resp.ExpiresIn != 1800 {
		t.Fatalf("unexpected token response %+v", resp)
	}
	if resp.User == nil || resp.User.LastLogin == nil {
		t.Fatalf("expected user with last_login in response")
	}
	if remaining := time.Until(claims.ExpiresAt.Time); remaining <= 0 || remaining > testJWT.AccessTokenTTL() {
		t.Fatalf("expected access token to expire within the configured ttl, got %v", remaining)
	}
	if _, ok := repo.lastLogin[7]; !ok {
		t.Fatal("expected last_login to be persisted")
	}
	if len(repo.passwords) != 0 {
		t.Fatal("did not expect a bcrypt credential at full cost to be rehashed")
	}
}

func TestLoginByPhoneIsExact(t *testing.T) {
	user := &models.User{ID: 3, Phone: strPtr("9000000001"), Password: mustHash(t, "secret1"), Role: enums.UserRoleCustomer}
	svc := buildTestService(t, newStubUserRepo(user), &stubSessions{})

	if _, err := svc.Login(context.Background(), LoginRequest{Identifier: "9000000001", Password: "secret1"}); err != nil {
		t.Fatalf("login by phone: %v", err)
	}
	_, err := svc.Login(context.Background(), LoginRequest{Identifier: "900000000", Password: "secret1"})
	if !pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized) {
		t.Fatalf("expected unauthorized for unknown phone, got %v", err)
	}
}

func TestLoginWrongPasswordIsUnauthorized(t *testing.T) {
	user := &models.User{ID: 3, Email: strPtr("a@example.com"), Password: mustHash(t, "secret1"), Role: enums.UserRoleCustomer}
	sessions := &stubSessions{}
	svc := buildTestService(t, newStubUserRepo(user), sessions)

	_, err := svc.Login(context.Background(), LoginRequest{Identifier: "a@example.com", Password: "wrong"})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeUnauthorized || typed.Message() != "invalid credentials" {
		t.Fatalf("expected invalid credentials, got %v", err)
	}
	if len(sessions.generated) != 0 {
		t.Fatal("no session should be opened on failure")
	}
}

func TestLoginEmptyStoredPasswordIsInternal(t *testing.T) {
	user := &models.User{ID: 3, Email: strPtr("a@example.com"), Password: "  ", Role: enums.UserRoleCustomer}
	svc := buildTestService(t, newStubUserRepo(user), &stubSessions{})

	_, err := svc.Login(context.Background(), LoginRequest{Identifier: "a@example.com", Password: "secret1"})
	if !pkgerrors.IsCode(err, pkgerrors.CodeInternal) {
		t.Fatalf("expected internal error, got %v", err)
	}
}

func TestLoginLookupFailureIsInternal(t *testing.T) {
	repo := newStubUserRepo()
	repo.lookupError = errors.New("connection reset")
	svc := buildTestService(t, repo, &stubSessions{})

	_, err := svc.Login(context.Background(), LoginRequest{Identifier: "a@example.com", Password: "secret1"})
	if !pkgerrors.IsCode(err, pkgerrors.CodeInternal) {
		t.Fatalf("expected internal error, got %v", err)
	}
}

func TestLoginUpgradesLegacyPlaintext(t *testing.T) {
	user := &models.User{ID: 9, Phone: strPtr("42"), Password: "plain-secret", Role: enums.UserRoleAgent}
	repo := newStubUserRepo(user)
	svc := buildTestService(t, repo, &stubSessions{})

	if _, err := svc.Login(context.Background(), LoginRequest{Identifier: "42", Password: "plain-secret"}); err != nil {
		t.Fatalf("legacy login: %v", err)
	}
	stored, ok := repo.passwords[9]
	if !ok {
		t.Fatal("expected plaintext credential to be replaced")
	}
	if !security.IsBcryptHash(stored) || !newHasher().Verify("plain-secret", stored) {
		t.Fatalf("expected bcrypt hash of the same password, got %q", stored)
	}
}

func TestRefreshRotatesSession(t *testing.T) {
	user := &models.User{ID: 7, Role: enums.UserRoleAdmin}
	sessions := &stubSessions{rotateFor: 7}
	svc := buildTestService(t, newStubUserRepo(user), sessions)

	old, err := pkgAuth.MintAccessToken(testJWT, time.Now().Add(-2*time.Hour), pkgAuth.AccessTokenPayload{UserID: 7, Role: enums.UserRoleAdmin, JTI: "old"})
	if err != nil {
		t.Fatalf("mint: %v", err)
	}

	resp, err := svc.Refresh(context.Background(), RefreshRequest{AccessToken: old, RefreshToken: "r"})
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	claims, err := pkgAuth.ParseAccessTokenAllowExpired(testJWT, resp.AccessToken)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.ID != "old-next" || resp.RefreshToken != "r-next" {
		t.Fatalf("expected rotated session, got jti=%q refresh=%q", claims.ID, resp.RefreshToken)
	}
}

func TestRefreshInvalidTokenIsUnauthorized(t *testing.T) {
	sessions := &stubSessions{rotateErr: session.ErrInvalidRefreshToken}
	svc := buildTestService(t, newStubUserRepo(), sessions)

	if _, err := svc.Refresh(context.Background(), RefreshRequest{AccessToken: "garbage", RefreshToken: "r"}); !pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized) {
		t.Fatalf("expected unauthorized for bad access token, got %v", err)
	}

	token, err := pkgAuth.MintAccessToken(testJWT, time.Now(), pkgAuth.AccessTokenPayload{UserID: 7, Role: enums.UserRoleAdmin, JTI: "old"})
	if err != nil {
		t.Fatalf("mint: %v", err)
	}
	if _, err := svc.Refresh(context.Background(), RefreshRequest{AccessToken: token, RefreshToken: "r"}); !pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized) {
		t.Fatalf("expected unauthorized for bad refresh token, got %v", err)
	}
}

func TestLogoutRevokesSession(t *testing.T) {
	sessions := &stubSessions{}
	svc := buildTestService(t, newStubUserRepo(), sessions)

	if err := svc.Logout(context.Background(), "access-1"); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if len(sessions.revoked) != 1 || sessions.revoked[0] != "access-1" {
		t.Fatalf("expected access-1 revoked, got %v", sessions.revoked)
	}
	if err := svc.Logout(context.Background(), ""); !pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized) {
		t.Fatalf("expected unauthorized for empty session, got %v", err)
	}
}

func TestMeReturnsUser(t *testing.T) {
	user := &models.User{ID: 5, Name: "Asha", Role: enums.UserRoleCustomer}
	svc := buildTestService(t, newStubUserRepo(user), &stubSessions{})

	me, err := svc.Me(context.Background(), 5)
	if err != nil {
		t.Fatalf("me: %v", err)
	}
	if me.Name != "Asha" {
		t.Fatalf("unexpected user %+v", me)
	}
	if _, err := svc.Me(context.Background(), 6); !pkgerrors.IsCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
