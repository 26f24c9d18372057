package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// ErrMissingSecret is returned by LoadSecret when no value is configured.
var ErrMissingSecret = errors.New("secret is not configured")

// Source describes how to load a secret value.
type Source struct {
	// Name is used in error messages to give more context about the secret.
	Name string
	// Value is an inline secret value provided via configuration or env.
	Value string
	// File points to a file containing the secret value. When set it takes
	// precedence over Value.
	File string
}

// LoadSecret returns the trimmed secret from src. File wins over Value.
func LoadSecret(src Source) (string, error) {
	name := strings.TrimSpace(src.Name)
	if name == "" {
		name = "secret"
	}

	file := strings.TrimSpace(src.File)
	if file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("reading %s from file %q: %w", name, file, err)
		}
		src.Value = string(data)
	}

	secret := strings.TrimSpace(src.Value)
	if secret == "" {
		if file != "" {
			return "", fmt.Errorf("%s file %q is empty: %w", name, file, ErrMissingSecret)
		}
		return "", fmt.Errorf("%s: %w", name, ErrMissingSecret)
	}

	return secret, nil
}

// Key resolves the Affinity API key.
func (a Affinity) Key() (string, error) {
	return LoadSecret(Source{Name: "affinity api key", Value: a.APIKey, File: a.APIKeyFile})
}

// Secret resolves the mailbox password.
func (e Email) Secret() (string, error) {
	return LoadSecret(Source{Name: "email password", Value: e.Password, File: e.PasswordFile})
}
