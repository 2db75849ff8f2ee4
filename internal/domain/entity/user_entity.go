package entity

import (
	"time"
)

// User is the aggregate root for the user domain.
// PasswordHash holds a bcrypt hash and is never serialized outward.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Provider     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// UserChanges is a partial update. Nil fields keep their stored value.
type UserChanges struct {
	Name         *string
	Email        *string
	PasswordHash *string
}

// IsEmpty reports whether no field would be written.
func (c UserChanges) IsEmpty() bool {
	return c.Name == nil && c.Email == nil && c.PasswordHash == nil
}

// Projection is the subset of a User that is safe to return to clients.
type Projection struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Provider bool   `json:"provider"`
}

func (u *User) Projection() Projection {
	return Projection{ID: u.ID, Name: u.Name, Email: u.Email, Provider: u.Provider}
}
