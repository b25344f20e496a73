package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/manpower-adp-api/internal/models"
	appErrors "github.com/noah-isme/manpower-adp-api/pkg/errors"
)

type authUserRepoFake struct {
	user          *models.User
	lastLoginSet  bool
	lastLoginErr  error
	findByEmailEr error
}

func (f *authUserRepoFake) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if f.findByEmailEr != nil {
		return nil, f.findByEmailEr
	}
	clone := *f.user
	return &clone, nil
}

func (f *authUserRepoFake) FindByID(ctx context.Context, id string) (*models.User, error) {
	clone := *f.user
	return &clone, nil
}

func (f *authUserRepoFake) UpdateLastLogin(ctx context.Context, id string, ts time.Time) error {
	f.lastLoginSet = true
	return f.lastLoginErr
}

func testAuthConfig() AuthConfig {
	return AuthConfig{AccessTokenSecret: "test-secret", AccessTokenExpiry: time.Hour, Issuer: "manpower-adp-api"}
}

func activeOperator(t *testing.T, password string) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	dept := "dept-1"
	return &models.User{
		ID:           "user-1",
		Email:        "operator@example.com",
		PasswordHash: string(hash),
		FullName:     "Test Operator",
		Role:         models.RoleOperator,
		DepartmentID: &dept,
		Active:       true,
	}
}

func TestLoginIssuesToken(t *testing.T) {
	repo := &authUserRepoFake{user: activeOperator(t, "secret123")}
	svc := NewAuthService(repo, nil, nil, testAuthConfig())

	resp, err := svc.Login(context.Background(), models.LoginRequest{Email: "operator@example.com", Password: "secret123"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.Greater(t, resp.ExpiresIn, int64(0))
	assert.Equal(t, "user-1", resp.User.ID)
	assert.True(t, repo.lastLoginSet)

	claims, err := svc.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, models.RoleOperator, claims.Role)
	assert.Equal(t, "dept-1", claims.DepartmentID)
	assert.Equal(t, "manpower-adp-api", claims.Issuer)
}

func TestLoginWrongPassword(t *testing.T) {
	repo := &authUserRepoFake{user: activeOperator(t, "secret123")}
	svc := NewAuthService(repo, nil, nil, testAuthConfig())

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "operator@example.com", Password: "wrong"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
}

func TestLoginUnknownEmail(t *testing.T) {
	repo := &authUserRepoFake{findByEmailEr: sql.ErrNoRows}
	svc := NewAuthService(repo, nil, nil, testAuthConfig())

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "nobody@example.com", Password: "whatever"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
}

func TestLoginInactiveAccount(t *testing.T) {
	user := activeOperator(t, "secret123")
	user.Active = false
	svc := NewAuthService(&authUserRepoFake{user: user}, nil, nil, testAuthConfig())

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "operator@example.com", Password: "secret123"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInactiveAccount.Code, appErrors.FromError(err).Code)
}

func TestValidateTokenWrongSecret(t *testing.T) {
	repo := &authUserRepoFake{user: activeOperator(t, "secret123")}
	issuer := NewAuthService(repo, nil, nil, testAuthConfig())
	resp, err := issuer.Login(context.Background(), models.LoginRequest{Email: "operator@example.com", Password: "secret123"})
	require.NoError(t, err)

	other := NewAuthService(repo, nil, nil, AuthConfig{AccessTokenSecret: "different", AccessTokenExpiry: time.Hour})
	_, err = other.ValidateToken(resp.AccessToken)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}

func TestValidateTokenRejectsWrongMethod(t *testing.T) {
	// An unsigned token must never pass even if the signature check would be
	// a no-op for alg "none".
	claims := &models.JWTClaims{UserID: "user-1"}
	token := jwt.NewWithClaims(jwt.SigningMethodNone, claims)
	raw, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	svc := NewAuthService(&authUserRepoFake{}, nil, nil, testAuthConfig())
	_, err = svc.ValidateToken(raw)
	require.Error(t, err)
}

func TestValidateTokenExpired(t *testing.T) {
	config := testAuthConfig()
	config.AccessTokenExpiry = -time.Minute
	repo := &authUserRepoFake{user: activeOperator(t, "secret123")}
	svc := NewAuthService(repo, nil, nil, config)

	resp, err := svc.Login(context.Background(), models.LoginRequest{Email: "operator@example.com", Password: "secret123"})
	require.NoError(t, err)

	_, err = svc.ValidateToken(resp.AccessToken)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}
