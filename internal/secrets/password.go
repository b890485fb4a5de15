// Package secrets looks up credentials that should not live in the config
// file, preferring the environment and falling back to the OS keychain.
package secrets

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/zalando/go-keyring"
)

const (
	// KeyringService groups jobradar's secrets in the OS keychain.
	KeyringService = "jobradar"

	// SMTPPasswordEnv overrides the keychain when set.
	SMTPPasswordEnv = "JOBRADAR_SMTP_PASSWORD"
)

// ErrNotFound is returned when no password is configured anywhere.
var ErrNotFound = errors.New("smtp password not found (set " + SMTPPasswordEnv + " or store it in the keychain)")

// SMTPKeyringAccount is the keychain account name for an SMTP login.
func SMTPKeyringAccount(username, host string) string {
	return fmt.Sprintf("jobradar:smtp:%s@%s", username, host)
}

// GetSMTPPassword returns the SMTP password from the environment or, failing
// that, the keychain entry for account.
func GetSMTPPassword(account string) (string, error) {
	if pw := os.Getenv(SMTPPasswordEnv); strings.TrimSpace(pw) != "" {
		return pw, nil
	}
	if strings.TrimSpace(account) == "" {
		return "", ErrNotFound
	}
	pw, err := keyring.Get(KeyringService, account)
	if errors.Is(err, keyring.ErrNotFound) || (err == nil && strings.TrimSpace(pw) == "") {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("reading keychain entry %s: %w", account, err)
	}
	return pw, nil
}

// SetSMTPPassword stores password in the keychain under account.
func SetSMTPPassword(account, password string) error {
	if strings.TrimSpace(account) == "" {
		return errors.New("keyring account name is empty")
	}
	if strings.TrimSpace(password) == "" {
		return errors.New("password is empty")
	}
	return keyring.Set(KeyringService, account, password)
}

// DeleteSMTPPassword removes the keychain entry for account.
func DeleteSMTPPassword(account string) error {
	if strings.TrimSpace(account) == "" {
		return errors.New("keyring account name is empty")
	}
	return keyring.Delete(KeyringService, account)
}
