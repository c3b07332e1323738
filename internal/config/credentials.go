package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/zalando/go-keyring"
)

const (
	// Service name for OS credential store
	credentialService = "vectormcp"
	// Key under which the backend API key is stored
	apiKeyEntry = "openai_api_key"
	// Environment variable consulted before the keyring
	apiKeyEnvVar = "OPENAI_API_KEY"
)

// CredentialManager handles secure storage and retrieval of the backend API key.
type CredentialManager struct {
	service string
}

// NewCredentialManager creates a new credential manager instance
func NewCredentialManager() *CredentialManager {
	return &CredentialManager{
		service: credentialService,
	}
}

// ResolveAPIKey returns the backend API key using the configured
// precedence: environment variable first, OS keyring second. An empty
// string with a nil error is impossible; absence is an error so callers
// can defer the failure to the moment the key is actually needed.
func (cm *CredentialManager) ResolveAPIKey() (string, error) {
	if key := strings.TrimSpace(os.Getenv(apiKeyEnvVar)); key != "" {
		return key, nil
	}
	return cm.GetAPIKey()
}

// StoreAPIKey securely stores the backend API key in the OS credential store.
// The key is validated before storage to ensure it has the expected format.
func (cm *CredentialManager) StoreAPIKey(key string) error {
	if strings.TrimSpace(key) == "" {
		return fmt.Errorf("API key cannot be empty")
	}

	if err := ValidateAPIKeyFormat(key); err != nil {
		return fmt.Errorf("invalid API key format: %w", err)
	}

	if err := keyring.Set(cm.service, apiKeyEntry, key); err != nil {
		return fmt.Errorf("failed to store API key in credential store: %w", err)
	}

	return nil
}

// GetAPIKey retrieves the stored backend API key from the OS credential store.
func (cm *CredentialManager) GetAPIKey() (string, error) {
	key, err := keyring.Get(cm.service, apiKeyEntry)
	if err != nil {
		if err == keyring.ErrNotFound {
			return "", fmt.Errorf("no API key configured - set %s or run 'vectormcp auth set'", apiKeyEnvVar)
		}
		return "", fmt.Errorf("failed to retrieve API key from credential store: %w", err)
	}

	if strings.TrimSpace(key) == "" {
		return "", fmt.Errorf("stored API key is empty - run 'vectormcp auth set' again")
	}

	return key, nil
}

// DeleteAPIKey removes the stored API key from the OS credential store.
// Returns nil if no key is stored.
func (cm *CredentialManager) DeleteAPIKey() error {
	err := keyring.Delete(cm.service, apiKeyEntry)
	if err != nil && err != keyring.ErrNotFound {
		return fmt.Errorf("failed to delete API key from credential store: %w", err)
	}
	return nil
}

// HasAPIKey checks if an API key is stored without retrieving it.
func (cm *CredentialManager) HasAPIKey() bool {
	_, err := keyring.Get(cm.service, apiKeyEntry)
	return err == nil
}

// ValidateAPIKeyFormat validates that the key matches the backend's
// expected shape. OpenAI keys start with "sk-" (project-scoped keys use
// "sk-proj-", which shares the prefix).
func ValidateAPIKeyFormat(key string) error {
	key = strings.TrimSpace(key)

	if len(key) < 20 {
		return fmt.Errorf("API key too short (minimum 20 characters)")
	}

	if !strings.HasPrefix(key, "sk-") {
		return fmt.Errorf("API key does not match expected format (should start with sk-)")
	}

	return nil
}

// Redact returns a loggable form of a credential: prefix plus length,
// never the value itself.
func Redact(key string) string {
	if key == "" {
		return "(none)"
	}
	if len(key) <= 6 {
		return "***"
	}
	return key[:6] + "..." + fmt.Sprintf("(%d chars)", len(key))
}
