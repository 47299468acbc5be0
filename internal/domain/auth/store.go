package auth

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"hrforms/internal/platform/querier"
)

var ErrUserNotFound = errors.New("user not found")

type User struct {
	ID           string
	Username     string
	PasswordHash string
	Role         string
}

// UserStore is the credential lookup the login flow needs.
type UserStore interface {
	FindUserByUsername(ctx context.Context, username string) (User, error)
	UpsertUser(ctx context.Context, user User) (User, error)
}

type Store struct {
	DB querier.Querier
}

func NewStore(db querier.Querier) *Store {
	return &Store{DB: db}
}

func (s *Store) FindUserByUsername(ctx context.Context, username string) (User, error) {
	var out User
	err := s.DB.QueryRow(ctx, `
    SELECT id, username, password_hash, role
    FROM users
    WHERE lower(username) = lower($1)
  `, strings.TrimSpace(username)).Scan(&out.ID, &out.Username, &out.PasswordHash, &out.Role)
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, ErrUserNotFound
	}
	return out, err
}

// UpsertUser inserts user or, when the username exists, replaces its
// password hash and role.
func (s *Store) UpsertUser(ctx context.Context, user User) (User, error) {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	err := s.DB.QueryRow(ctx, `
    INSERT INTO users (id, username, password_hash, role)
    VALUES ($1,$2,$3,$4)
    ON CONFLICT (username) DO UPDATE
    SET password_hash = EXCLUDED.password_hash, role = EXCLUDED.role
    RETURNING id
  `, user.ID, user.Username, user.PasswordHash, user.Role).Scan(&user.ID)
	return user, err
}

// MemoryStore keeps users in process, keyed by lowercased username.
type MemoryStore struct {
	mu    sync.RWMutex
	users map[string]User
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{users: map[string]User{}}
}

func (m *MemoryStore) FindUserByUsername(ctx context.Context, username string) (User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	user, ok := m.users[strings.ToLower(strings.TrimSpace(username))]
	if !ok {
		return User{}, ErrUserNotFound
	}
	return user, nil
}

func (m *MemoryStore) UpsertUser(ctx context.Context, user User) (User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := strings.ToLower(user.Username)
	if existing, ok := m.users[key]; ok {
		user.ID = existing.ID
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	m.users[key] = user
	return user, nil
}
