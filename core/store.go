package core

import (
	"fmt"
	"sync"
)

// State is a committed session snapshot. Invariant, maintained by the store
// and never observable broken: IsAuthenticated ⟺ User != nil && Token != "".
type State struct {
	User            *User
	Token           string
	IsAuthenticated bool
	IsLoading       bool
	Err             string
}

// Listener receives fully-committed snapshots in dispatch order.
//
// Listeners run inside the dispatch and must not dispatch store actions
// themselves; navigation callbacks are fine.
type Listener func(State)

// Store is the single source of truth for "who is logged in". All mutation
// goes through the action methods below; actions are applied atomically and
// in call order. LoginSucceeded, TokenRefreshed and Logout are the only
// actions that touch the durable token vault, and they do the vault I/O
// inside the same critical section as the commit.
type Store struct {
	mu        sync.Mutex
	state     State
	user      User // backing value for state.User
	vault     TokenVault
	listeners map[int]Listener
	nextID    int
}

// NewStore creates an empty, unauthenticated store. vault may be nil when
// durable persistence is not wanted (tests, ephemeral sessions).
func NewStore(vault TokenVault) *Store {
	return &Store{
		vault:     vault,
		listeners: make(map[int]Listener),
	}
}

// Snapshot returns the current committed state.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Subscribe registers a listener for future commits and returns an
// unsubscribe function. The listener is not called with the current state;
// callers read Snapshot first if they need it.
func (s *Store) Subscribe(fn Listener) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	s.listeners[id] = fn

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
	}
}

// BeginLogin marks a credential exchange as in flight. User and Token are
// not touched; a failed re-login must not log the user out.
func (s *Store) BeginLogin() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.IsLoading = true
	s.state.Err = ""
	s.commitLocked()
}

// LoginSucceeded commits the identity and token returned by a successful
// exchange and persists the token to the vault. The vault write is
// serialized with the commit, so a racing Logout cannot leave a persisted
// token behind. A vault write failure is returned but does not roll back
// the in-memory transition.
func (s *Store) LoginSucceeded(user User, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.user = user
	s.state.User = &s.user
	s.state.Token = token
	s.state.IsAuthenticated = true
	s.state.IsLoading = false
	s.state.Err = ""
	s.commitLocked()

	if s.vault != nil {
		if err := s.vault.Store(token); err != nil {
			return fmt.Errorf("failed to persist token: %w", err)
		}
	}
	return nil
}

// LoginFailed records the failure message. A prior session, if any,
// is preserved.
func (s *Store) LoginFailed(message string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.IsLoading = false
	s.state.Err = message
	s.commitLocked()
}

// Logout clears the session and removes the persisted token.
func (s *Store) Logout() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.user = User{}
	s.state = State{}
	s.commitLocked()

	if s.vault != nil {
		if err := s.vault.Clear(); err != nil {
			return fmt.Errorf("failed to clear persisted token: %w", err)
		}
	}
	return nil
}

// UpdateProfile shallow-merges the non-nil fields into the current identity.
// No-op (not an error) when nobody is logged in.
func (s *Store) UpdateProfile(update ProfileUpdate) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state.User == nil {
		return
	}
	s.user = update.Apply(s.user)
	s.commitLocked()
}

// ClearError resets the last failure message. Idempotent.
func (s *Store) ClearError() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state.Err = ""
	s.commitLocked()
}

// Hydrate restores a session from a previously persisted token at process
// start. Unlike LoginSucceeded it does not write the vault; the token came
// out of it.
func (s *Store) Hydrate(user User, token string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.user = user
	s.state.User = &s.user
	s.state.Token = token
	s.state.IsAuthenticated = true
	s.state.IsLoading = false
	s.state.Err = ""
	s.commitLocked()
}

// TokenRefreshed swaps in a rotated token and persists it. The identity is
// unchanged. No-op when nobody is logged in.
func (s *Store) TokenRefreshed(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.state.IsAuthenticated {
		return nil
	}
	s.state.Token = token
	s.commitLocked()

	if s.vault != nil {
		if err := s.vault.Store(token); err != nil {
			return fmt.Errorf("failed to persist token: %w", err)
		}
	}
	return nil
}

// PersistedToken reads the token left behind by a previous process, if any.
func (s *Store) PersistedToken() (string, error) {
	if s.vault == nil {
		return "", ErrTokenNotFound
	}
	return s.vault.Load()
}

// snapshotLocked copies the state so callers never alias the live identity.
func (s *Store) snapshotLocked() State {
	st := s.state
	if st.User != nil {
		u := s.user
		st.User = &u
	}
	return st
}

// commitLocked notifies listeners with the freshly committed snapshot.
// Called with the store lock held, which is what serializes dispatch order.
func (s *Store) commitLocked() {
	if len(s.listeners) == 0 {
		return
	}
	snapshot := s.snapshotLocked()
	for _, fn := range s.listeners {
		fn(snapshot)
	}
}
