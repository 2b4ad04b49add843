// Package credentials stores the analytics API token in the OS keyring.
package credentials

import (
	"errors"
	"fmt"
	"strings"

	"github.com/zalando/go-keyring"
)

const (
	serviceName  = "insights"
	APITokenName = "INSIGHTS_API_TOKEN"
)

// ErrNotFound indicates that a requested secret was not found in the keyring.
var ErrNotFound = errors.New("secret not found")

// GetSecret retrieves the named secret from the system keyring.
func GetSecret(name string) (string, error) {
	secret, err := keyring.Get(serviceName, name)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("read secret %q: %w", name, err)
	}
	return secret, nil
}

func SetSecret(name, value string) error {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return fmt.Errorf("secret %q cannot be empty", name)
	}
	if err := keyring.Set(serviceName, name, trimmed); err != nil {
		return fmt.Errorf("store secret %q: %w", name, err)
	}
	return nil
}

func DeleteSecret(name string) error {
	if err := keyring.Delete(serviceName, name); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("delete secret %q: %w", name, err)
	}
	return nil
}

func GetAPIToken() (string, error) { return GetSecret(APITokenName) }

func SetAPIToken(token string) error { return SetSecret(APITokenName, token) }

func DeleteAPIToken() error { return DeleteSecret(APITokenName) }

// ResolveToken returns the configured token when set, otherwise the keyring
// entry. A missing keyring entry is not an error: the request goes out
// unauthenticated and the server decides.
func ResolveToken(configured string) (string, error) {
	if t := strings.TrimSpace(configured); t != "" {
		return t, nil
	}
	token, err := GetAPIToken()
	if errors.Is(err, ErrNotFound) {
		return "", nil
	}
	return token, err
}
