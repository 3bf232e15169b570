package service

import (
	"golang.org/x/crypto/bcrypt"

	"github.com/homeservices/marketplace/internal/core/ports"
)

// PlainPasswords stores and compares passwords as given.
type PlainPasswords struct{}

func (PlainPasswords) Hash(password string) (string, error) { return password, nil }

func (PlainPasswords) Matches(stored, password string) bool { return stored == password }

// BcryptPasswords stores bcrypt hashes in the password field.
type BcryptPasswords struct {
	Cost int
}

func (b BcryptPasswords) Hash(password string) (string, error) {
	cost := b.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func (BcryptPasswords) Matches(stored, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(stored), []byte(password)) == nil
}

// NewPasswordHasher returns the hasher named by mode ("plain" or "bcrypt").
// Unknown modes fall back to plain.
func NewPasswordHasher(mode string) ports.PasswordHasher {
	if mode == "bcrypt" {
		return BcryptPasswords{}
	}
	return PlainPasswords{}
}
