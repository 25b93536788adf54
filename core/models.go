package core

import "time"

// User represents a platform identity
//
// This is the "identity" - who someone is
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      Role      `json:"role"`
	Country   string    `json:"country"`
	BarNumber *string   `json:"barNumber,omitempty"` // lawyers only
	IsFirm    bool      `json:"isFirm,omitempty"`
	FirmName  *string   `json:"firmName,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ProfileUpdate is a partial identity change. Nil fields are left untouched
// when merged into a User.
type ProfileUpdate struct {
	Name      *string `json:"name,omitempty"`
	Country   *string `json:"country,omitempty"`
	BarNumber *string `json:"barNumber,omitempty"`
	IsFirm    *bool   `json:"isFirm,omitempty"`
	FirmName  *string `json:"firmName,omitempty"`
}

// Apply shallow-merges the non-nil fields into a copy of u.
func (p ProfileUpdate) Apply(u User) User {
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.Country != nil {
		u.Country = *p.Country
	}
	if p.BarNumber != nil {
		u.BarNumber = p.BarNumber
	}
	if p.IsFirm != nil {
		u.IsFirm = *p.IsFirm
	}
	if p.FirmName != nil {
		u.FirmName = p.FirmName
	}
	return u
}

// Empty reports whether the update carries no fields at all.
func (p ProfileUpdate) Empty() bool {
	return p.Name == nil && p.Country == nil && p.BarNumber == nil &&
		p.IsFirm == nil && p.FirmName == nil
}

// Account represents an authentication method
//
// This is the "credential" - how someone proves who they are
type Account struct {
	ID         string    `json:"id"`
	UserID     string    `json:"userId"`
	ProviderID string    `json:"providerId"` // "credential" for email/password
	AccountID  string    `json:"accountId"`
	Password   *string   `json:"-"` // Never expose in JSON
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// Session represents an active login session on the exchange side
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	TokenHash string    `json:"-"` // Never expose in JSON (security!)
	IPAddress string    `json:"ipAddress"`
	UserAgent string    `json:"userAgent"`
	ExpiresAt time.Time `json:"expiresAt"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// SessionData combines user and session info
// The model returned to clients
type SessionData struct {
	User    *User    `json:"user"`
	Session *Session `json:"session"`
}
