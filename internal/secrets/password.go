// Package secrets keeps "remember me" logins in the OS keychain.
package secrets

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/zalando/go-keyring"
)

const (
	// "Service" groups the app's secrets in the OS keychain.
	KeyringService = "candidate-tracker"
)

var ErrNotRemembered = errors.New("no remembered login")

// LoginKeyringAccount names the keychain entry holding username's password
// for one data directory.
func LoginKeyringAccount(dataDir, username string) string {
	return fmt.Sprintf("candidates:login:%s@%s", username, absDir(dataDir))
}

// lastUserAccount holds the username remembered for a data directory.
func lastUserAccount(dataDir string) string {
	return "candidates:last-user:" + absDir(dataDir)
}

func absDir(dir string) string {
	if abs, err := filepath.Abs(dir); err == nil {
		return abs
	}
	return dir
}

// RememberLogin stores username and password so later runs against dataDir
// can log in without prompting.
func RememberLogin(dataDir, username, password string) error {
	if strings.TrimSpace(username) == "" {
		return errors.New("username is empty")
	}
	if password == "" {
		return errors.New("password is empty")
	}
	if err := keyring.Set(KeyringService, LoginKeyringAccount(dataDir, username), password); err != nil {
		return err
	}
	return keyring.Set(KeyringService, lastUserAccount(dataDir), username)
}

// RecallLogin returns the remembered password for username. An empty
// username means the last remembered user for dataDir.
func RecallLogin(dataDir, username string) (user, password string, err error) {
	user = strings.TrimSpace(username)
	if user == "" {
		user, err = keyring.Get(KeyringService, lastUserAccount(dataDir))
		if err != nil || strings.TrimSpace(user) == "" {
			return "", "", ErrNotRemembered
		}
	}

	pw, err := keyring.Get(KeyringService, LoginKeyringAccount(dataDir, user))
	if err != nil || pw == "" {
		return "", "", ErrNotRemembered
	}
	return user, pw, nil
}

// ForgetLogin removes what RememberLogin stored. An empty username forgets
// the last remembered user. Forgetting nothing is not an error.
func ForgetLogin(dataDir, username string) error {
	user := strings.TrimSpace(username)
	last, lastErr := keyring.Get(KeyringService, lastUserAccount(dataDir))
	if user == "" {
		if lastErr != nil {
			return nil
		}
		user = last
	}

	if err := keyring.Delete(KeyringService, LoginKeyringAccount(dataDir, user)); err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return err
	}
	if lastErr == nil && last == user {
		if err := keyring.Delete(KeyringService, lastUserAccount(dataDir)); err != nil && !errors.Is(err, keyring.ErrNotFound) {
			return err
		}
	}
	return nil
}
