// Package lexauth is the session and access-control toolkit behind the
// LegalAI Pro platform: a client-side session store with durable token
// persistence, a role-aware route guard, and the credential-exchange
// service the two talk to.
package lexauth

import (
	"net/http"

	"github.com/legalaipro/lexauth/core"
	"github.com/legalaipro/lexauth/pkg/crypto"
	"github.com/legalaipro/lexauth/services"
)

// interfaces
type (
	StorageAdapter = core.StorageAdapter
	Cache          = core.Cache
	TokenVault     = core.TokenVault
	Exchange       = core.Exchange

	PasswordHandler = crypto.PasswordHandler
)

// structs
type (
	Store        = core.Store
	State        = core.State
	Guard        = core.Guard
	GuardWatcher = core.GuardWatcher

	SessionConfig = core.SessionConfig
	CacheConfig   = core.CacheConfig

	AccountService = services.AccountService
	SessionManager = services.SessionManager
	AuthFlow       = services.AuthFlow
)

type (
	User          = core.User
	Role          = core.Role
	ProfileUpdate = core.ProfileUpdate
	Credentials   = core.Credentials
	Registration  = core.Registration
	Account       = core.Account
	Session       = core.Session
	SessionData   = core.SessionData
	CacheStats    = core.CacheStats
	Decision      = core.Decision
)

const (
	RoleLawyer = core.RoleLawyer
	RoleClient = core.RoleClient

	DecisionChecking             = core.DecisionChecking
	DecisionAuthorized           = core.DecisionAuthorized
	DecisionRedirectLogin        = core.DecisionRedirectLogin
	DecisionRedirectUnauthorized = core.DecisionRedirectUnauthorized
)

// Constructors & helpers (convenience re-exports)
var (
	NewStore             = core.NewStore
	NewGuardWatcher      = core.NewGuardWatcher
	RequireRole          = core.RequireRole
	ParseRole            = core.ParseRole
	NewInMemoryCache     = core.NewInMemoryCache
	NewArgon2            = crypto.NewArgon2
	DefaultSessionConfig = core.DefaultSessionConfig
)

var (
	ErrUserExists         = core.ErrUserExists
	ErrUserNotFound       = core.ErrUserNotFound
	ErrInvalidCredentials = core.ErrInvalidCredentials
)

var (
	ErrMissingAuthHeader = core.ErrMissingAuthHeader
	ErrInvalidToken      = core.ErrInvalidToken
	ErrSessionNotFound   = core.ErrSessionNotFound
	ErrSessionExpired    = core.ErrSessionExpired
	ErrCacheNotFound     = core.ErrCacheNotFound
	ErrTokenNotFound     = core.ErrTokenNotFound
)

var (
	ErrInvalidAuthHeader = core.ErrInvalidAuthHeader
	ErrNameRequired      = core.ErrNameRequired
	ErrEmailRequired     = core.ErrEmailRequired
	ErrPasswordRequired  = core.ErrPasswordRequired
	ErrPasswordMismatch  = core.ErrPasswordMismatch
	ErrPasswordTooShort  = core.ErrPasswordTooShort
	ErrPasswordTooLong   = core.ErrPasswordTooLong
	ErrInvalidEmail      = core.ErrInvalidEmail
	ErrRoleRequired      = core.ErrRoleRequired
	ErrUnknownRole       = core.ErrUnknownRole
	ErrBarNumberRequired = core.ErrBarNumberRequired
	ErrLoginSuperseded   = core.ErrLoginSuperseded
	ErrMalformedExchange = core.ErrMalformedExchange
)

var (
	ErrStorageRequired  = core.ErrStorageRequired
	ErrHTTPRequired     = core.ErrHTTPRequired
	ErrExchangeRequired = core.ErrExchangeRequired
)

var (
	ErrNotImplemented = core.ErrNotImplemented
)

// Auth is the assembled server side of the credential exchange.
type Auth struct {
	Accounts *services.AccountService
	Sessions *services.SessionManager
	Registry *services.EndpointRegistry
}

// HTTPAdapter mounts the exchange endpoints onto a concrete framework.
type HTTPAdapter interface {
	RegisterRoutes(auth *Auth) error
}

// Config assembles the exchange server.
type Config struct {
	Database StorageAdapter
	HTTP     HTTPAdapter

	// Optional config
	CacheAdapter   Cache
	DisableCache   bool
	SessionConfig  *SessionConfig
	PasswordHasher PasswordHandler
}

// New wires the credential-exchange server and registers its routes.
func New(config Config) (*Auth, error) {
	if config.Database == nil {
		return nil, ErrStorageRequired
	}
	if config.HTTP == nil {
		return nil, ErrHTTPRequired
	}

	// Set Defaults

	cacheAdapter := config.CacheAdapter
	if cacheAdapter == nil && !config.DisableCache {
		cacheAdapter = NewInMemoryCache(CacheConfig{})
	}

	sessionConfig := config.SessionConfig
	if sessionConfig == nil {
		defaults := DefaultSessionConfig()
		sessionConfig = &defaults
	}

	passwordHasher := config.PasswordHasher
	if passwordHasher == nil {
		passwordHasher = NewArgon2()
	}

	sessions := services.NewSessionManager(*sessionConfig, config.Database, cacheAdapter)

	auth := &Auth{
		Accounts: services.NewAccountService(config.Database, passwordHasher, sessions),
		Sessions: sessions,
		Registry: services.NewEndpointRegistry(),
	}

	if err := config.HTTP.RegisterRoutes(auth); err != nil {
		return nil, err
	}

	return auth, nil
}

// Client is the assembled client side: the session store plus the flow that
// drives it through the exchange.
type Client struct {
	Store *Store
	Flow  *AuthFlow
}

// ClientConfig assembles a client. Either Exchange or ExchangeURL must be
// set; Vault may be nil for ephemeral sessions.
type ClientConfig struct {
	ExchangeURL string
	Exchange    Exchange
	Vault       TokenVault
	HTTPClient  *http.Client
}

// NewClient wires a session store to the credential exchange.
func NewClient(config ClientConfig) (*Client, error) {
	exchange := config.Exchange
	if exchange == nil {
		if config.ExchangeURL == "" {
			return nil, ErrExchangeRequired
		}
		exchange = services.NewHTTPExchange(config.ExchangeURL, config.HTTPClient)
	}

	store := core.NewStore(config.Vault)
	return &Client{
		Store: store,
		Flow:  services.NewAuthFlow(store, exchange),
	}, nil
}
