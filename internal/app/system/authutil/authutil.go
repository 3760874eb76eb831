// internal/app/system/authutil/authutil.go
//
// Package authutil holds password policy and hashing shared by signup,
// login, and password-change flows. Google-issued identities never touch
// this package; their users carry no password hash at all.
package authutil

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

const (
	MinPasswordLength = 6
	MaxPasswordLength = 128
)

var (
	ErrPasswordTooShort = errors.New("password is too short")
	ErrPasswordTooLong  = errors.New("password is too long")
	ErrPasswordCommon   = errors.New("password is too common")
)

// commonPasswords are rejected regardless of length. Checked folded so
// trivial case variants do not slip past.
var commonPasswords = map[string]struct{}{
	"123456":   {},
	"password": {},
	"qwerty":   {},
	"abc123":   {},
	"iloveyou": {},
	"letmein":  {},
	"football": {},
	"welcome":  {},
	"monkey":   {},
	"dragon":   {},
}

// ValidatePassword checks the password against length and common-password
// policy. It does not trim: whitespace is part of the password.
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	if len(password) > MaxPasswordLength {
		return ErrPasswordTooLong
	}
	if _, common := commonPasswords[strings.ToLower(password)]; common {
		return ErrPasswordCommon
	}
	return nil
}

// PasswordRules returns the policy as user-facing help text.
func PasswordRules() string {
	return fmt.Sprintf("Passwords must be %d to %d characters and must not be a commonly used password.",
		MinPasswordLength, MaxPasswordLength)
}

// HashPassword bcrypt-hashes the password with a random salt.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword reports whether password matches the stored bcrypt hash.
func CheckPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
