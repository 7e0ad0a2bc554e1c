// Package auth handles customer registration and the credential checks for
// customers and admins. Successful logins are issued an HS256 JWT whose
// identity is also stored as a session blob; handlers treat the token as the
// session key.
package auth

import (
	"context"
	"errors"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/abuind/ASIA-Mart-1/internal/entity"
	"github.com/abuind/ASIA-Mart-1/internal/session"
	"github.com/abuind/ASIA-Mart-1/internal/storage"
	"github.com/abuind/ASIA-Mart-1/internal/store"
)

var logger = zerolog.New(os.Stdout).With().Timestamp().Logger()

var (
	// ErrInvalidCredentials is deliberately the same for a missing account
	// and a wrong password.
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidEmail       = errors.New("invalid email format")
)

var emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

const tokenLifetime = 24 * time.Hour

type CustomerClaims struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	jwt.RegisteredClaims
}

type AdminClaims struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

type RegisterInput struct {
	Name     string         `json:"name"`
	Email    string         `json:"email"`
	Password string         `json:"password"`
	Phone    string         `json:"phone"`
	Address  entity.Address `json:"address"`
}

type Service struct {
	db       *storage.Handle
	sessions *session.Manager // nil disables session blobs (tests)
	secret   []byte
}

func NewService(db *storage.Handle, sessions *session.Manager, secret []byte) *Service {
	return &Service{db: db, sessions: sessions, secret: secret}
}

// Register creates a customer account. The email is lowercased before the
// unique check so nobody registers the same address twice in different
// casing.
func (s *Service) Register(ctx context.Context, input RegisterInput) (*entity.Customer, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if !emailRe.MatchString(email) {
		return nil, ErrInvalidEmail
	}

	customer := &entity.Customer{
		Name:      strings.TrimSpace(input.Name),
		Email:     email,
		Password:  HashPassword(input.Password),
		Phone:     input.Phone,
		Address:   input.Address,
		CreatedAt: time.Now().UTC(),
	}
	if _, err := s.db.Customers.Add(ctx, customer); err != nil {
		if errors.Is(err, store.ErrConstraint) {
			return nil, ErrEmailTaken
		}
		logger.Error().Err(err).Msg("Error registering customer")
		return nil, err
	}
	return customer, nil
}

// LoginCustomer checks the credentials and returns a signed token plus the
// customer record.
func (s *Service) LoginCustomer(ctx context.Context, email, password string) (string, *entity.Customer, error) {
	customer, err := s.db.Customers.GetSingleByIndex(ctx, "email", strings.ToLower(email))
	if errors.Is(err, store.ErrNotFound) {
		return "", nil, ErrInvalidCredentials
	}
	if err != nil {
		logger.Error().Err(err).Msg("Error looking up customer")
		return "", nil, err
	}
	if customer.Password != HashPassword(password) {
		return "", nil, ErrInvalidCredentials
	}

	claims := &CustomerClaims{
		Name:  customer.Name,
		Email: customer.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "customer",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(tokenLifetime)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", nil, err
	}

	if s.sessions != nil {
		err = s.sessions.SaveCustomer(ctx, token, session.CustomerIdentity{
			ID:    customer.ID,
			Name:  customer.Name,
			Email: customer.Email,
		})
		if err != nil {
			return "", nil, err
		}
	}
	return token, customer, nil
}

// LoginAdmin checks admin credentials and returns a signed token carrying
// the role claim the admin routes gate on.
func (s *Service) LoginAdmin(ctx context.Context, username, password string) (string, *entity.Admin, error) {
	admin, err := s.db.Admins.GetSingleByIndex(ctx, "username", username)
	if errors.Is(err, store.ErrNotFound) {
		return "", nil, ErrInvalidCredentials
	}
	if err != nil {
		logger.Error().Err(err).Msg("Error looking up admin")
		return "", nil, err
	}
	if admin.Password != HashPassword(password) {
		return "", nil, ErrInvalidCredentials
	}

	claims := &AdminClaims{
		Username: admin.Username,
		Role:     admin.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "admin",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(tokenLifetime)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", nil, err
	}

	if s.sessions != nil {
		err = s.sessions.SaveAdmin(ctx, token, session.AdminIdentity{
			ID:       admin.ID,
			Username: admin.Username,
			Role:     admin.Role,
		})
		if err != nil {
			return "", nil, err
		}
	}
	return token, admin, nil
}

// CurrentCustomer resolves a bearer token to the logged-in customer
// identity, requiring both a valid signature and a live session blob.
func (s *Service) CurrentCustomer(ctx context.Context, token string) (session.CustomerIdentity, error) {
	var claims CustomerClaims
	if err := s.parse(token, &claims); err != nil {
		return session.CustomerIdentity{}, ErrInvalidCredentials
	}
	if s.sessions == nil {
		return session.CustomerIdentity{}, session.ErrNoSession
	}
	return s.sessions.Customer(ctx, token)
}

// Logout drops the session for the given scope only; a customer logging out
// does not end an admin session and vice versa.
func (s *Service) Logout(ctx context.Context, token string, admin bool) error {
	if s.sessions == nil {
		return nil
	}
	if admin {
		return s.sessions.DropAdmin(ctx, token)
	}
	return s.sessions.DropCustomer(ctx, token)
}

func (s *Service) parse(token string, claims jwt.Claims) error {
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	})
	if err != nil {
		return err
	}
	if !parsed.Valid {
		return ErrInvalidCredentials
	}
	return nil
}
