package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abuind/ASIA-Mart-1/internal/entity"
	"github.com/abuind/ASIA-Mart-1/internal/storage"
)

var testSecret = []byte("test-secret")

func newTestService(t *testing.T) (*storage.Handle, *Service) {
	t.Helper()
	db := storage.OpenMemory()
	return db, NewService(db, nil, testSecret)
}

func TestHashPassword(t *testing.T) {
	// The checksum is stable across runs; stored hashes stay valid.
	assert.Equal(t, "17862", HashPassword("abc"))
	assert.Equal(t, HashPassword("admin123"), HashPassword("admin123"))
	assert.NotEqual(t, HashPassword("admin123"), HashPassword("admin124"))
	assert.Equal(t, "0", HashPassword(""))
}

func TestRegisterNormalizesEmail(t *testing.T) {
	db, svc := newTestService(t)
	ctx := context.Background()

	customer, err := svc.Register(ctx, RegisterInput{
		Name:     "Alice",
		Email:    "  Alice@Example.COM ",
		Password: "hunter2",
	})
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", customer.Email)
	assert.NotEqual(t, "hunter2", customer.Password, "password is stored hashed")

	stored, err := db.Customers.GetSingleByIndex(ctx, "email", "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, customer.ID, stored.ID)
}

func TestRegisterRejectsBadEmail(t *testing.T) {
	_, svc := newTestService(t)

	for _, email := range []string{"", "no-at-sign", "a@b", "two words@example.com"} {
		_, err := svc.Register(context.Background(), RegisterInput{Email: email, Password: "x"})
		assert.ErrorIs(t, err, ErrInvalidEmail, "email %q", email)
	}
}

// TestRegisterDuplicateEmail verifies the same address cannot be registered
// twice, regardless of casing.
func TestRegisterDuplicateEmail(t *testing.T) {
	_, svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{Email: "alice@example.com", Password: "x"})
	require.NoError(t, err)

	_, err = svc.Register(ctx, RegisterInput{Email: "ALICE@example.com", Password: "y"})
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestLoginCustomer(t *testing.T) {
	_, svc := newTestService(t)
	ctx := context.Background()

	registered, err := svc.Register(ctx, RegisterInput{
		Name:     "Alice",
		Email:    "alice@example.com",
		Password: "hunter2",
	})
	require.NoError(t, err)

	token, customer, err := svc.LoginCustomer(ctx, "Alice@Example.com", "hunter2")
	require.NoError(t, err)
	assert.Equal(t, registered.ID, customer.ID)

	var claims CustomerClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return testSecret, nil
	})
	require.NoError(t, err)
	assert.True(t, parsed.Valid)
	assert.Equal(t, "customer", claims.Subject)
	assert.Equal(t, "alice@example.com", claims.Email)
	assert.True(t, claims.ExpiresAt.After(time.Now()))
}

func TestLoginCustomerBadCredentials(t *testing.T) {
	_, svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{Email: "alice@example.com", Password: "hunter2"})
	require.NoError(t, err)

	_, _, err = svc.LoginCustomer(ctx, "alice@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	// Unknown account reads the same as a wrong password.
	_, _, err = svc.LoginCustomer(ctx, "nobody@example.com", "hunter2")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginAdmin(t *testing.T) {
	db, svc := newTestService(t)
	ctx := context.Background()

	_, err := db.Admins.Add(ctx, &entity.Admin{
		Username: "admin",
		Password: HashPassword("admin123"),
		Role:     "admin",
	})
	require.NoError(t, err)

	token, admin, err := svc.LoginAdmin(ctx, "admin", "admin123")
	require.NoError(t, err)
	assert.Equal(t, "admin", admin.Username)

	var claims AdminClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return testSecret, nil
	})
	require.NoError(t, err)
	assert.True(t, parsed.Valid)
	assert.Equal(t, "admin", claims.Subject)
	assert.Equal(t, "admin", claims.Role)

	_, _, err = svc.LoginAdmin(ctx, "admin", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, _, err = svc.LoginAdmin(ctx, "nobody", "admin123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

// TestTokenSignatureChecked verifies that a token signed with another secret
// is rejected.
func TestTokenSignatureChecked(t *testing.T) {
	_, svc := newTestService(t)

	forged, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &CustomerClaims{
		Email: "alice@example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "customer",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString([]byte("other-secret"))
	require.NoError(t, err)

	_, err = svc.CurrentCustomer(context.Background(), forged)
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}
