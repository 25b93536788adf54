package services

import (
	"context"
	"sync"

	"github.com/legalaipro/lexauth/core"
)

const defaultCountry = "US"

// AuthFlow drives the session store through the credential exchange. It is
// the only component that dispatches store actions on behalf of the UI:
// forms hand it raw submissions, it validates locally, talks to the
// exchange, and commits exactly one outcome per attempt.
//
// At most one in-flight exchange wins: every attempt takes a sequence
// number, and a response only commits while it is still the latest attempt.
// The loser returns ErrLoginSuperseded and leaves the store untouched.
type AuthFlow struct {
	store    *core.Store
	exchange core.Exchange

	mu     sync.Mutex
	latest uint64
}

func NewAuthFlow(store *core.Store, exchange core.Exchange) *AuthFlow {
	return &AuthFlow{store: store, exchange: exchange}
}

// Login performs the credential exchange for a login form submission.
// Validation failures return before any exchange call or store mutation.
// Exchange failures become State.Err; they never propagate as panics.
func (f *AuthFlow) Login(ctx context.Context, creds core.Credentials) error {
	if creds.Email == "" {
		return core.ErrEmailRequired
	}
	if creds.Password == "" {
		return core.ErrPasswordRequired
	}

	seq := f.begin()
	result, err := f.exchange.Login(ctx, creds)
	return f.commit(seq, result, err)
}

// Register validates the registration locally and, only if it is
// well-formed, performs the registration exchange. A password/confirmation
// mismatch never produces an exchange call and never touches the store.
func (f *AuthFlow) Register(ctx context.Context, reg core.Registration) error {
	if reg.Name == "" {
		return core.ErrNameRequired
	}
	if reg.Email == "" {
		return core.ErrEmailRequired
	}
	if reg.Password == "" {
		return core.ErrPasswordRequired
	}
	if reg.Password != reg.ConfirmPassword {
		return core.ErrPasswordMismatch
	}

	role, err := core.ParseRole(reg.Role)
	if err != nil {
		return err
	}
	reg.Role = role.String()

	if role == core.RoleLawyer && reg.BarNumber == "" {
		return core.ErrBarNumberRequired
	}
	if !reg.IsFirm {
		reg.FirmName = ""
	}
	if reg.Country == "" {
		reg.Country = defaultCountry
	}

	seq := f.begin()
	result, err := f.exchange.Register(ctx, reg)
	return f.commit(seq, result, err)
}

// Logout tells the exchange to drop the session, best effort, then clears
// the store and the persisted token unconditionally.
func (f *AuthFlow) Logout(ctx context.Context) error {
	if token := f.store.Snapshot().Token; token != "" {
		// A dead session server-side must not keep the client logged in.
		_ = f.exchange.Logout(ctx, token)
	}
	return f.store.Logout()
}

// Rehydrate restores the session at process start from the persisted token.
// A stale or rejected token is cleaned up rather than surfaced as an error
// state; the visitor simply starts logged out.
func (f *AuthFlow) Rehydrate(ctx context.Context) error {
	token, err := f.store.PersistedToken()
	if err != nil || token == "" {
		return nil
	}

	user, err := f.exchange.Me(ctx, token)
	if err != nil {
		return f.store.Logout()
	}

	f.store.Hydrate(*user, token)
	return nil
}

// Refresh rotates the current token and persists the replacement.
func (f *AuthFlow) Refresh(ctx context.Context) error {
	token := f.store.Snapshot().Token
	if token == "" {
		return core.ErrInvalidToken
	}

	rotated, err := f.exchange.Refresh(ctx, token)
	if err != nil {
		return err
	}
	return f.store.TokenRefreshed(rotated)
}

// UpdateProfile pushes a partial identity change to the exchange and merges
// the confirmed result into the store.
func (f *AuthFlow) UpdateProfile(ctx context.Context, update core.ProfileUpdate) error {
	if update.Empty() {
		return nil
	}

	token := f.store.Snapshot().Token
	if token == "" {
		return core.ErrInvalidToken
	}

	if _, err := f.exchange.UpdateMe(ctx, token, update); err != nil {
		return err
	}
	f.store.UpdateProfile(update)
	return nil
}

// begin claims a new attempt number and dispatches BeginLogin. Claim and
// dispatch share the critical section so attempts reach the store in claim
// order.
func (f *AuthFlow) begin() uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.latest++
	f.store.BeginLogin()
	return f.latest
}

// commit applies an exchange outcome iff seq is still the latest attempt.
// The staleness check and the store dispatch share the critical section, so
// a superseded response can never overwrite a newer attempt's session.
func (f *AuthFlow) commit(seq uint64, result *core.ExchangeResult, err error) error {
	if err == nil && (result == nil || result.User == nil || result.Token == "") {
		// A success body missing the user or token must land the form back
		// in an error state, not crash the client.
		err = core.ErrMalformedExchange
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if seq != f.latest {
		return core.ErrLoginSuperseded
	}

	if err != nil {
		f.store.LoginFailed(core.FailureMessage(err))
		return err
	}
	return f.store.LoginSucceeded(*result.User, result.Token)
}
