package services

import (
	"context"
	"sync"
	"time"

	"github.com/legalaipro/lexauth/core"
)

// Test-only fakes shared across packages. They live in a non-_test file so
// adapter tests can reuse them; nothing here is imported by production code.

// FakeStorage is an in-memory core.StorageAdapter with injectable error
// fields for behavior injection.
type FakeStorage struct {
	mu       sync.RWMutex
	users    map[string]*core.User    // key: user ID
	accounts map[string]*core.Account // key: account ID
	sessions map[string]*core.Session // key: token hash

	CreateErr error
	GetErr    error
	UpdateErr error
	DeleteErr error
}

var _ core.StorageAdapter = (*FakeStorage)(nil)

func NewFakeStorage() *FakeStorage {
	return &FakeStorage{
		users:    make(map[string]*core.User),
		accounts: make(map[string]*core.Account),
		sessions: make(map[string]*core.Session),
	}
}

func (f *FakeStorage) CreateUser(u *core.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.CreateErr != nil {
		return f.CreateErr
	}
	copied := *u
	f.users[u.ID] = &copied
	return nil
}

func (f *FakeStorage) GetUserByID(id string) (*core.User, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.GetErr != nil {
		return nil, f.GetErr
	}
	u, ok := f.users[id]
	if !ok {
		return nil, core.ErrUserNotFound
	}
	copied := *u
	return &copied, nil
}

func (f *FakeStorage) GetUserByEmail(email string) (*core.User, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.GetErr != nil {
		return nil, f.GetErr
	}
	for _, u := range f.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, core.ErrUserNotFound
}

func (f *FakeStorage) UpdateUser(u *core.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.UpdateErr != nil {
		return f.UpdateErr
	}
	if _, ok := f.users[u.ID]; !ok {
		return core.ErrUserNotFound
	}
	copied := *u
	f.users[u.ID] = &copied
	return nil
}

func (f *FakeStorage) DeleteUser(id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.DeleteErr != nil {
		return f.DeleteErr
	}
	delete(f.users, id)
	return nil
}

func (f *FakeStorage) CreateAccount(a *core.Account) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.CreateErr != nil {
		return f.CreateErr
	}
	copied := *a
	f.accounts[a.ID] = &copied
	return nil
}

func (f *FakeStorage) GetAccountByID(id string) (*core.Account, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.GetErr != nil {
		return nil, f.GetErr
	}
	a, ok := f.accounts[id]
	if !ok {
		return nil, core.ErrUserNotFound
	}
	copied := *a
	return &copied, nil
}

func (f *FakeStorage) GetAccountByUserAndProvider(userID, providerID string) ([]*core.Account, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.GetErr != nil {
		return nil, f.GetErr
	}
	var result []*core.Account
	for _, a := range f.accounts {
		if a.UserID == userID && a.ProviderID == providerID {
			copied := *a
			result = append(result, &copied)
		}
	}
	return result, nil
}

func (f *FakeStorage) UpdateAccount(a *core.Account) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.UpdateErr != nil {
		return f.UpdateErr
	}
	copied := *a
	f.accounts[a.ID] = &copied
	return nil
}

func (f *FakeStorage) DeleteAccount(id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.DeleteErr != nil {
		return f.DeleteErr
	}
	delete(f.accounts, id)
	return nil
}

func (f *FakeStorage) CreateSession(s *core.Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.CreateErr != nil {
		return f.CreateErr
	}
	copied := *s
	f.sessions[s.TokenHash] = &copied
	return nil
}

func (f *FakeStorage) GetSessionByHash(tokenHash string) (*core.Session, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.GetErr != nil {
		return nil, f.GetErr
	}
	s, ok := f.sessions[tokenHash]
	if !ok {
		return nil, core.ErrSessionNotFound
	}
	copied := *s
	return &copied, nil
}

func (f *FakeStorage) GetSessionByID(id string) (*core.Session, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.GetErr != nil {
		return nil, f.GetErr
	}
	for _, s := range f.sessions {
		if s.ID == id {
			copied := *s
			return &copied, nil
		}
	}
	return nil, core.ErrSessionNotFound
}

func (f *FakeStorage) GetUserSessions(userID string) ([]*core.Session, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.GetErr != nil {
		return nil, f.GetErr
	}
	var result []*core.Session
	for _, s := range f.sessions {
		if s.UserID == userID {
			copied := *s
			result = append(result, &copied)
		}
	}
	return result, nil
}

func (f *FakeStorage) UpdateSession(s *core.Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.UpdateErr != nil {
		return f.UpdateErr
	}
	// Sessions are keyed by hash; a rotation re-keys the entry.
	for hash, existing := range f.sessions {
		if existing.ID == s.ID {
			delete(f.sessions, hash)
			copied := *s
			f.sessions[s.TokenHash] = &copied
			return nil
		}
	}
	return core.ErrSessionNotFound
}

func (f *FakeStorage) DeleteSessionByID(id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.DeleteErr != nil {
		return f.DeleteErr
	}
	for hash, s := range f.sessions {
		if s.ID == id {
			delete(f.sessions, hash)
			return nil
		}
	}
	return core.ErrSessionNotFound
}

func (f *FakeStorage) DeleteSessionByHash(tokenHash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.DeleteErr != nil {
		return f.DeleteErr
	}
	if _, ok := f.sessions[tokenHash]; !ok {
		return core.ErrSessionNotFound
	}
	delete(f.sessions, tokenHash)
	return nil
}

func (f *FakeStorage) DeleteUserSessions(userID string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.DeleteErr != nil {
		return 0, f.DeleteErr
	}
	count := 0
	for hash, s := range f.sessions {
		if s.UserID == userID {
			delete(f.sessions, hash)
			count++
		}
	}
	return count, nil
}

func (f *FakeStorage) DeleteExpiredSessions() (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.DeleteErr != nil {
		return 0, f.DeleteErr
	}
	count := 0
	for hash, s := range f.sessions {
		if s.ExpiresAt.Before(time.Now()) {
			delete(f.sessions, hash)
			count++
		}
	}
	return count, nil
}

// SessionCount reports stored sessions, for assertions.
func (f *FakeStorage) SessionCount() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.sessions)
}

// FakeVault is an in-memory core.TokenVault.
type FakeVault struct {
	mu    sync.Mutex
	token string

	StoreErr error
	ClearErr error

	StoreCalls int
	ClearCalls int
}

var _ core.TokenVault = (*FakeVault)(nil)

func NewFakeVault() *FakeVault {
	return &FakeVault{}
}

func (v *FakeVault) Load() (string, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.token == "" {
		return "", core.ErrTokenNotFound
	}
	return v.token, nil
}

func (v *FakeVault) Store(token string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.StoreCalls++
	if v.StoreErr != nil {
		return v.StoreErr
	}
	v.token = token
	return nil
}

func (v *FakeVault) Clear() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.ClearCalls++
	if v.ClearErr != nil {
		return v.ClearErr
	}
	v.token = ""
	return nil
}

// Token reads the stored token, for assertions.
func (v *FakeVault) Token() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.token
}

// FakeExchange is a scripted core.Exchange recording every call.
type FakeExchange struct {
	mu sync.Mutex

	LoginResult    *core.ExchangeResult
	LoginErr       error
	RegisterResult *core.ExchangeResult
	RegisterErr    error
	LogoutErr      error
	RefreshToken   string
	RefreshErr     error
	MeUser         *core.User
	MeErr          error
	UpdateMeUser   *core.User
	UpdateMeErr    error

	LoginCalls    int
	RegisterCalls int
	LogoutCalls   int
	RefreshCalls  int
	MeCalls       int
	UpdateMeCalls int

	LastLogin    core.Credentials
	LastRegister core.Registration

	// Gate, when set, is waited on before a Login/Register call returns.
	// Tests use it to interleave concurrent attempts deterministically.
	Gate chan struct{}
}

var _ core.Exchange = (*FakeExchange)(nil)

func NewFakeExchange() *FakeExchange {
	return &FakeExchange{}
}

func (x *FakeExchange) Login(ctx context.Context, creds core.Credentials) (*core.ExchangeResult, error) {
	x.mu.Lock()
	x.LoginCalls++
	x.LastLogin = creds
	gate := x.Gate
	result, err := x.LoginResult, x.LoginErr
	x.mu.Unlock()

	if gate != nil {
		<-gate
	}
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (x *FakeExchange) Register(ctx context.Context, reg core.Registration) (*core.ExchangeResult, error) {
	x.mu.Lock()
	x.RegisterCalls++
	x.LastRegister = reg
	gate := x.Gate
	result, err := x.RegisterResult, x.RegisterErr
	x.mu.Unlock()

	if gate != nil {
		<-gate
	}
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (x *FakeExchange) Logout(ctx context.Context, token string) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.LogoutCalls++
	return x.LogoutErr
}

func (x *FakeExchange) Refresh(ctx context.Context, token string) (string, error) {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.RefreshCalls++
	if x.RefreshErr != nil {
		return "", x.RefreshErr
	}
	return x.RefreshToken, nil
}

func (x *FakeExchange) Me(ctx context.Context, token string) (*core.User, error) {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.MeCalls++
	if x.MeErr != nil {
		return nil, x.MeErr
	}
	return x.MeUser, nil
}

func (x *FakeExchange) UpdateMe(ctx context.Context, token string, update core.ProfileUpdate) (*core.User, error) {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.UpdateMeCalls++
	if x.UpdateMeErr != nil {
		return nil, x.UpdateMeErr
	}
	return x.UpdateMeUser, nil
}
