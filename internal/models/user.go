package models

import "time"

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// Identity is the signed-in operator as seen by the console.
type Identity struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

func (identity Identity) IsAdmin() bool {
	return identity.Role == RoleAdmin
}

// User holds the credentials the remote store issues identities from.
type User struct {
	ID           string    `gorm:"primaryKey"`
	Email        string    `gorm:"uniqueIndex;not null"`
	PasswordHash string    `gorm:"not null"`
	CreatedAt    time.Time `gorm:"not null"`
}

// Profile carries the role of a remote identity.
type Profile struct {
	ID        string    `gorm:"primaryKey"`
	Email     string    `gorm:"not null"`
	Role      string    `gorm:"not null;default:user"`
	CreatedAt time.Time `gorm:"not null"`
}

func IsKnownRole(role string) bool {
	return role == RoleAdmin || role == RoleUser
}
