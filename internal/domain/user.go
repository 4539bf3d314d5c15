// Package domain contains entities without logic, just meta-data.
package domain

import "errors"

const MaxUsernameLen = 36

var (
	ErrUsernameTooLong = errors.New("username too long")
	ErrUsernameEmpty   = errors.New("username empty")
)

// User is a registered account. Only the bcrypt hash is ever stored.
type User struct {
	ID           uint   `gorm:"primarykey" json:"-"`
	Username     string `gorm:"uniqueIndex;size:36;not null" json:"username"`
	PasswordHash string `gorm:"not null" json:"-"`
}

func (User) TableName() string { return "users" }

// NewUser is a tiny helper to avoid ad-hoc struct literals in adapters.
func NewUser(username, passwordHash string) (*User, error) {
	if err := ValidateUsername(username); err != nil {
		return nil, err
	}
	return &User{Username: username, PasswordHash: passwordHash}, nil
}

func ValidateUsername(username string) error {
	if len(username) == 0 {
		return ErrUsernameEmpty
	}
	if len(username) > MaxUsernameLen {
		return ErrUsernameTooLong
	}
	return nil
}
