package services

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/legalaipro/lexauth/core"
	"github.com/legalaipro/lexauth/pkg/crypto"
)

const (
	credentialProvider = "credential"

	minPasswordLength = 8
	maxPasswordLength = 128
)

// SignUpInput contains the data needed to register a new user. Role is
// already canonical by the time it reaches the service.
type SignUpInput struct {
	Name      string
	Email     string
	Password  string
	Role      core.Role
	Country   string
	BarNumber *string
	IsFirm    bool
	FirmName  *string
}

// SignInInput contains the credentials for authentication
type SignInInput struct {
	Email    string
	Password string
}

// AuthResult is what the exchange hands back on success: the identity and a
// raw opaque token (never the hash).
type AuthResult struct {
	User    *core.User    `json:"user"`
	Token   string        `json:"token"`
	Session *core.Session `json:"-"`
}

// AccountService is the server side of the credential exchange: it owns
// user and credential records and delegates session issuance to the
// SessionManager.
type AccountService struct {
	db             core.StorageAdapter
	passwordHasher crypto.PasswordHandler
	sessions       *SessionManager
}

func NewAccountService(db core.StorageAdapter, passwordHasher crypto.PasswordHandler, sessions *SessionManager) *AccountService {
	return &AccountService{
		db:             db,
		passwordHasher: passwordHasher,
		sessions:       sessions,
	}
}

// SignUp registers a new user with email and password
func (s *AccountService) SignUp(input SignUpInput, ipAddress, userAgent string) (*AuthResult, error) {
	if err := validateSignUp(input); err != nil {
		return nil, err
	}

	// Step 1: Check if user already exists
	existingUser, err := s.db.GetUserByEmail(input.Email)
	if err != nil && err != core.ErrUserNotFound {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if existingUser != nil {
		return nil, core.ErrUserExists
	}

	// Step 2: Hash the password
	hashedPassword, err := s.passwordHasher.Hash(input.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	// Step 3: Create the user
	user := &core.User{
		ID:        uuid.NewString(),
		Email:     input.Email,
		Name:      input.Name,
		Role:      input.Role,
		Country:   input.Country,
		BarNumber: input.BarNumber,
		IsFirm:    input.IsFirm,
		FirmName:  input.FirmName,
	}

	err = s.db.CreateUser(user)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	// Step 4: Create a credential account for this user
	account := &core.Account{
		ID:         uuid.NewString(),
		UserID:     user.ID,
		ProviderID: credentialProvider, // This is email/password authentication
		AccountID:  user.ID,            // For credential provider, account ID = user ID
		Password:   &hashedPassword,
	}

	err = s.db.CreateAccount(account)
	if err != nil {
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	// Step 5: Create a session for the new user
	sessionResult, err := s.sessions.Create(user.ID, ipAddress, userAgent)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return &AuthResult{
		User:    user,
		Token:   sessionResult.Token,
		Session: sessionResult.Session,
	}, nil
}

// SignIn authenticates a user with email and password
func (s *AccountService) SignIn(input SignInInput, ipAddress, userAgent string) (*AuthResult, error) {
	if input.Email == "" {
		return nil, core.ErrEmailRequired
	}
	if input.Password == "" {
		return nil, core.ErrPasswordRequired
	}

	// Step 1: Find the user by email
	user, err := s.db.GetUserByEmail(input.Email)
	if err != nil {
		if err == core.ErrUserNotFound {
			return nil, core.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	// Step 2: Get the credential account for this user
	accounts, err := s.db.GetAccountByUserAndProvider(user.ID, credentialProvider)
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	if len(accounts) == 0 {
		return nil, core.ErrInvalidCredentials
	}

	account := accounts[0]
	if account.Password == nil {
		return nil, core.ErrInvalidCredentials
	}

	// Step 3: Verify the password
	valid, err := s.passwordHasher.Verify(input.Password, *account.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to verify password: %w", err)
	}
	if !valid {
		return nil, core.ErrInvalidCredentials
	}

	// Step 4: Create a new session
	sessionResult, err := s.sessions.Create(user.ID, ipAddress, userAgent)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return &AuthResult{
		User:    user,
		Token:   sessionResult.Token,
		Session: sessionResult.Session,
	}, nil
}

// SignOut invalidates the current session
func (s *AccountService) SignOut(token string) error {
	if err := s.sessions.Destroy(token); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// Refresh rotates the session token behind a valid one.
func (s *AccountService) Refresh(token string) (*AuthResult, error) {
	result, err := s.sessions.Refresh(token)
	if err != nil {
		return nil, err
	}

	user, err := s.db.GetUserByID(result.Session.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return &AuthResult{
		User:    user,
		Token:   result.Token,
		Session: result.Session,
	}, nil
}

// GetSession retrieves session data by token
func (s *AccountService) GetSession(token string) (*core.SessionData, error) {
	session, err := s.sessions.Verify(token)
	if err != nil {
		return nil, err
	}

	// Get the user
	user, err := s.db.GetUserByID(session.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return &core.SessionData{
		User:    user,
		Session: session,
	}, nil
}

// UpdateProfile shallow-merges the update into the stored identity.
func (s *AccountService) UpdateProfile(userID string, update core.ProfileUpdate) (*core.User, error) {
	user, err := s.db.GetUserByID(userID)
	if err != nil {
		return nil, err
	}

	merged := update.Apply(*user)
	if err := s.db.UpdateUser(&merged); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	return &merged, nil
}

func validateSignUp(input SignUpInput) error {
	if input.Name == "" {
		return core.ErrNameRequired
	}
	if input.Email == "" {
		return core.ErrEmailRequired
	}
	if !strings.Contains(input.Email, "@") {
		return core.ErrInvalidEmail
	}
	if input.Password == "" {
		return core.ErrPasswordRequired
	}
	if len(input.Password) < minPasswordLength {
		return core.ErrPasswordTooShort
	}
	if len(input.Password) > maxPasswordLength {
		return core.ErrPasswordTooLong
	}
	if !input.Role.Valid() {
		return core.ErrRoleRequired
	}
	if input.Role == core.RoleLawyer && (input.BarNumber == nil || *input.BarNumber == "") {
		return core.ErrBarNumberRequired
	}
	return nil
}
