package core

import "errors"

// Authentication Related Errors
var (
	// User errors
	ErrUserExists         = errors.New("user already exists")       // 409 Conflict
	ErrUserNotFound       = errors.New("user not found")            // 404 Not Found
	ErrInvalidCredentials = errors.New("invalid email or password") // 401 Unauthorized
)

// Session errors
var (
	ErrMissingAuthHeader = errors.New("missing authorization header") // 401
	ErrInvalidToken      = errors.New("invalid session token")        // 401
	ErrSessionNotFound   = errors.New("session not found")            // 401
	ErrSessionExpired    = errors.New("session expired")              // 401
	ErrCacheNotFound     = errors.New("session not found in cache")
	ErrTokenNotFound     = errors.New("no persisted token")
)

// Validation errors (client input)
var (
	ErrInvalidAuthHeader = errors.New("invalid authorization format, expected 'Bearer <token>'") // 401
	ErrNameRequired      = errors.New("name is required")                                        // 400
	ErrEmailRequired     = errors.New("email is required")                                       // 400
	ErrPasswordRequired  = errors.New("password is required")                                    // 400
	ErrPasswordMismatch  = errors.New("passwords do not match")                                  // 400
	ErrPasswordTooShort  = errors.New("password is too short")                                   // 400
	ErrPasswordTooLong   = errors.New("password is too long")                                    // 400
	ErrInvalidEmail      = errors.New("invalid email format")                                    // 400
	ErrRoleRequired      = errors.New("role is required")                                        // 400
	ErrUnknownRole       = errors.New("unknown role")                                            // 400
	ErrBarNumberRequired = errors.New("bar number is required for lawyers")                      // 400
)

// Flow errors
var (
	// ErrLoginSuperseded marks an exchange response that lost the race against
	// a newer attempt. The caller discards it; the store is never touched.
	ErrLoginSuperseded = errors.New("login attempt superseded")

	// ErrMalformedExchange marks a success response whose body is missing the
	// user or token. It is treated as a failed attempt, never committed.
	ErrMalformedExchange = errors.New("malformed exchange response")
)

// Config errors (wiring mistakes, fail at construction)
var (
	ErrStorageRequired  = errors.New("storage adapter is required")  // 500
	ErrHTTPRequired     = errors.New("http adapter is required")     // 500
	ErrExchangeRequired = errors.New("exchange client is required")  // 500
	ErrVaultRequired    = errors.New("token vault is required")      // 500
)

var (
	ErrNotImplemented = errors.New("not implemented") // 501
)

// GenericExchangeMessage is surfaced when a failed credential exchange
// carries no usable message of its own.
const GenericExchangeMessage = "something went wrong"

// ExchangeError is a failure reported by the credential-exchange collaborator.
// Message is extracted from the error payload and is safe to show to users.
type ExchangeError struct {
	Status  int
	Message string
}

func (e *ExchangeError) Error() string {
	if e.Message == "" {
		return GenericExchangeMessage
	}
	return e.Message
}

// FailureMessage extracts the user-facing message from an exchange failure:
// the error payload's message when the exchange sent one, the error's own
// text for transport-level failures, and a generic string otherwise.
func FailureMessage(err error) string {
	if err == nil {
		return GenericExchangeMessage
	}
	var xerr *ExchangeError
	if errors.As(err, &xerr) {
		return xerr.Error()
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return GenericExchangeMessage
}
