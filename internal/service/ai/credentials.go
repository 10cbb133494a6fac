package ai

import (
	"context"
	"fmt"
	"os"
	"strings"
)

// CredentialProvider resolves the bearer credential for the completion service.
type CredentialProvider interface {
	Credential(ctx context.Context) (string, error)
}

// StaticCredential is a credential resolved once at startup.
type StaticCredential string

// Credential implements CredentialProvider.
func (c StaticCredential) Credential(context.Context) (string, error) {
	if c == "" {
		return "", fmt.Errorf("credential not configured")
	}
	return string(c), nil
}

// EnvCredential reads the credential from an environment variable on every
// request so it can be rotated without a restart.
type EnvCredential string

// Credential implements CredentialProvider.
func (key EnvCredential) Credential(context.Context) (string, error) {
	value := strings.TrimSpace(os.Getenv(string(key)))
	if value == "" {
		return "", fmt.Errorf("credential %s not set", string(key))
	}
	return value, nil
}

// optionalCredential resolves to an empty credential when the wrapped
// provider has none, for backends that can authenticate another way.
type optionalCredential struct {
	CredentialProvider
}

// Credential implements CredentialProvider.
func (c optionalCredential) Credential(ctx context.Context) (string, error) {
	value, err := c.CredentialProvider.Credential(ctx)
	if err != nil {
		return "", nil
	}
	return value, nil
}
