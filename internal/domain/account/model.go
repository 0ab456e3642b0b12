package account

import (
	"errors"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Role constants. The map console only distinguishes the sales admin from
// everyone else; public visitors never hold an account.
const (
	RoleAdmin = "admin"
)

// Domain errors
var (
	ErrEmptyUsername    = errors.New("username cannot be empty")
	ErrEmptyPassword    = errors.New("password cannot be empty")
	ErrPasswordTooShort = errors.New("password must be at least 12 characters")
	ErrWrongPassword    = errors.New("incorrect username or password")
)

// Account holds state for an operator login.
type Account struct {
	ID           string
	Username     string
	DisplayName  string
	PasswordHash string
	Role         string
	CreatedAt    time.Time
}

// Validate checks if the Account has valid data.
// PRE: Account struct is populated
// POST: Returns nil if valid, error otherwise
func (a *Account) Validate() error {
	if strings.TrimSpace(a.Username) == "" {
		return ErrEmptyUsername
	}
	if a.Role != RoleAdmin {
		return errors.New("role must be 'admin'")
	}
	return nil
}

// SetPassword hashes and stores the password.
// PRE: password is at least 12 characters
// POST: PasswordHash is set to the bcrypt hash
func (a *Account) SetPassword(password string) error {
	if password == "" {
		return ErrEmptyPassword
	}
	if len(password) < 12 {
		return ErrPasswordTooShort
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	a.PasswordHash = string(hash)
	return nil
}

// CheckPassword verifies a password against the stored hash.
// PRE: PasswordHash is set
// POST: Returns nil on match, ErrWrongPassword otherwise
func (a *Account) CheckPassword(password string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(password)); err != nil {
		return ErrWrongPassword
	}
	return nil
}
