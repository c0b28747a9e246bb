// Package identity answers "who is signed in" for the journal.
package identity

import (
	"errors"
	"os"
	"strings"

	"github.com/julianstephens/moodlit/internal/keyring"
	"github.com/julianstephens/moodlit/internal/logger"
)

// EnvUser overrides the keyring, mainly for scripts and CI.
const EnvUser = "MOODLIT_USER"

// Provider yields the signed-in user id.
type Provider interface {
	CurrentUserID() (string, bool)
}

// Static is a fixed user id; the empty string means signed out.
type Static string

func (s Static) CurrentUserID() (string, bool) {
	return string(s), strings.TrimSpace(string(s)) != ""
}

// Keyring reads the user id stored by Login. MOODLIT_USER takes precedence.
type Keyring struct{}

func (Keyring) CurrentUserID() (string, bool) {
	if u := strings.TrimSpace(os.Getenv(EnvUser)); u != "" {
		return u, true
	}
	u, err := keyring.GetSessionUser()
	if err != nil {
		if !errors.Is(err, keyring.ErrNotFound) {
			logger.Warn("Failed to read session user", "error", err)
		}
		return "", false
	}
	return u, true
}

// Login stores userID as the signed-in user.
func Login(userID string) error {
	return keyring.SetSessionUser(strings.TrimSpace(userID))
}

// Logout forgets the signed-in user. Logging out twice is not an error.
func Logout() error {
	if err := keyring.DeleteSessionUser(); err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return err
	}
	return nil
}
