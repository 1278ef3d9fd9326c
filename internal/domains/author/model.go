package author

import (
	"time"

	"github.com/google/uuid"
)

// Author is the identity record behind every account and post owner.
// PasswordHash is nil for accounts created through Google login.
type Author struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Surname      string    `json:"surname"`
	Email        string    `json:"email"`
	PasswordHash *string   `json:"-"` // never serialized
	DateOfBirth  *string   `json:"dateOfBirth,omitempty"`
	Avatar       *string   `json:"avatar,omitempty"`
	Role         Role      `json:"role"`
	GoogleID     *string   `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleUser:
		return true
	}
	return false
}

func (r Role) String() string {
	return string(r)
}

func (a *Author) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// GoogleProfile is the subset of the Google userinfo payload the
// identity-provider login path needs.
type GoogleProfile struct {
	Sub        string `json:"id"`
	Email      string `json:"email"`
	GivenName  string `json:"given_name"`
	FamilyName string `json:"family_name"`
	Picture    string `json:"picture"`
}
