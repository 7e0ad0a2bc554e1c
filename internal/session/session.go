// Package session keeps browsing-session state in Redis: guest cart tokens
// and the current customer/admin identity blobs. Nothing here is durable
// storage; everything expires with the session TTL or on logout.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

// ErrNoSession means no identity is stored for the token.
var ErrNoSession = errors.New("session not found")

// TTL is the browsing-session lifetime. Refreshed on every write.
const TTL = 24 * time.Hour

const (
	guestPrefix    = "session:guest:"
	customerPrefix = "session:customer:"
	adminPrefix    = "session:admin:"
)

// CustomerIdentity is the blob stored for a logged-in customer. It carries
// only what the pages need, never the password hash.
type CustomerIdentity struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type AdminIdentity struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

type Manager struct {
	rdb *redis.Client
}

func NewManager(rdb *redis.Client) *Manager {
	return &Manager{rdb: rdb}
}

// NewGuestToken mints and registers an anonymous session token.
func (m *Manager) NewGuestToken(ctx context.Context) (string, error) {
	token := "guest_" + uuid.NewString()
	if err := m.rdb.Set(ctx, guestPrefix+token, "1", TTL).Err(); err != nil {
		return "", err
	}
	return token, nil
}

func (m *Manager) SaveCustomer(ctx context.Context, token string, id CustomerIdentity) error {
	return m.save(ctx, customerPrefix+token, id)
}

func (m *Manager) Customer(ctx context.Context, token string) (CustomerIdentity, error) {
	var id CustomerIdentity
	err := m.load(ctx, customerPrefix+token, &id)
	return id, err
}

func (m *Manager) SaveAdmin(ctx context.Context, token string, id AdminIdentity) error {
	return m.save(ctx, adminPrefix+token, id)
}

func (m *Manager) Admin(ctx context.Context, token string) (AdminIdentity, error) {
	var id AdminIdentity
	err := m.load(ctx, adminPrefix+token, &id)
	return id, err
}

// DropCustomer ends a customer session; the admin session under the same
// token, if any, is untouched.
func (m *Manager) DropCustomer(ctx context.Context, token string) error {
	return m.rdb.Del(ctx, customerPrefix+token).Err()
}

func (m *Manager) DropAdmin(ctx context.Context, token string) error {
	return m.rdb.Del(ctx, adminPrefix+token).Err()
}

func (m *Manager) save(ctx context.Context, key string, v any) error {
	blob, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return m.rdb.Set(ctx, key, blob, TTL).Err()
}

func (m *Manager) load(ctx context.Context, key string, v any) error {
	blob, err := m.rdb.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrNoSession
		}
		return err
	}
	return json.Unmarshal([]byte(blob), v)
}
