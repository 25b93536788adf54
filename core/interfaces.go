package core

import (
	"context"
	"time"
)

// Ports define interfaces for external dependencies

// ============================================
// CLIENT PORTS (session store collaborators)
// ============================================

// TokenVault is durable client-side storage for exactly one value: the
// current access token. It survives process restarts and is written only by
// the session store, read back only at process start to rehydrate.
type TokenVault interface {
	Load() (string, error)
	Store(token string) error
	Clear() error
}

// Credentials is a login submission.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Registration is a registration submission as it leaves the form,
// role still raw and un-normalized.
type Registration struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"-"` // local check only, never sent
	Role            string `json:"role"`
	Country         string `json:"country"`
	BarNumber       string `json:"barNumber,omitempty"`
	IsFirm          bool   `json:"isFirm,omitempty"`
	FirmName        string `json:"firmName,omitempty"`
}

// ExchangeResult is the success shape of a credential exchange.
type ExchangeResult struct {
	User  *User  `json:"user"`
	Token string `json:"token"`
}

// Exchange is the credential-exchange collaborator. Failures carry an
// *ExchangeError when the collaborator returned an error payload.
type Exchange interface {
	Login(ctx context.Context, creds Credentials) (*ExchangeResult, error)
	Register(ctx context.Context, reg Registration) (*ExchangeResult, error)
	Logout(ctx context.Context, token string) error
	Refresh(ctx context.Context, token string) (string, error)
	Me(ctx context.Context, token string) (*User, error)
	UpdateMe(ctx context.Context, token string, update ProfileUpdate) (*User, error)
}

// ============================================
// STORAGE PORTS (exchange-side database)
// ============================================

// SessionStorage defines session-related database operations
type SessionStorage interface {
	CreateSession(session *Session) error

	// Query methods
	GetSessionByHash(tokenHash string) (*Session, error)
	GetSessionByID(id string) (*Session, error)
	GetUserSessions(userID string) ([]*Session, error)

	// Update
	UpdateSession(session *Session) error

	// Delete methods
	DeleteSessionByID(id string) error
	DeleteSessionByHash(tokenHash string) error
	DeleteUserSessions(userID string) (int, error)

	// Cleanup
	DeleteExpiredSessions() (int, error)
}

// UserStorage defines user-related database operations
type UserStorage interface {
	CreateUser(u *User) error

	GetUserByID(id string) (*User, error)
	GetUserByEmail(email string) (*User, error)

	UpdateUser(u *User) error

	DeleteUser(id string) error
}

// AccountStorage defines account-related database operations
type AccountStorage interface {
	CreateAccount(a *Account) error

	GetAccountByID(id string) (*Account, error)
	GetAccountByUserAndProvider(userID, providerID string) ([]*Account, error)

	UpdateAccount(a *Account) error

	DeleteAccount(id string) error
}

type StorageAdapter interface {
	UserStorage
	AccountStorage
	SessionStorage
}

// ============================================
// CACHE PORT
// ============================================

// Cache defines session caching operations
type Cache interface {
	Get(tokenHash string) (*Session, error)
	Set(tokenHash string, session *Session) error
	Delete(tokenHash string) error
	Clear() error
}

// CacheWithStats extends Cache with statistics tracking
type CacheWithStats interface {
	Cache
	Stats() CacheStats
}

// CacheConfig configures cache behavior
type CacheConfig struct {
	TTL     time.Duration
	MaxSize int
}

// CacheStats are simple counters for cache behavior.
// These are intended for diagnostics and monitoring.
type CacheStats struct {
	Hits      int64         `json:"hits"`
	Misses    int64         `json:"misses"`
	Sets      int64         `json:"sets"`
	Deletes   int64         `json:"deletes"`
	Evictions int64         `json:"evictions"`
	Size      int           `json:"size"`
	TTL       time.Duration `json:"ttl"`
}

// SessionConfig configures exchange-side session lifetimes.
type SessionConfig struct {
	MaxAge time.Duration
}

func DefaultSessionConfig() SessionConfig {
	return SessionConfig{
		MaxAge: 24 * time.Hour,
	}
}
