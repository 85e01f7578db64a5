package auth

import (
	"crypto/subtle"
	"errors"

	"golang.org/x/crypto/bcrypt"
	"sitetrack/internal/platform/config"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

// RoleAdmin is the only role; it can read the delivery log.
const RoleAdmin = "admin"

type CredentialChecker struct {
	config config.AdminConfig
}

func NewCredentialChecker(cfg config.AdminConfig) *CredentialChecker {
	return &CredentialChecker{config: cfg}
}

// Check compares against the configured admin user. An unconfigured admin
// never authenticates.
func (c *CredentialChecker) Check(username, password string) error {
	if c.config.Username == "" || c.config.PasswordHash == "" {
		return ErrInvalidCredentials
	}
	if subtle.ConstantTimeCompare([]byte(username), []byte(c.config.Username)) != 1 {
		return ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(c.config.PasswordHash), []byte(password)); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}
