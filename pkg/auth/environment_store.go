package auth

import (
	"os"
	"time"
)

// Environment variables read by EnvironmentStore
const (
	EnvAPIURL = "CANVASDL_API_URL"
	EnvAPIKey = "CANVASDL_API_KEY"
)

// EnvironmentStore implements a read-only CredentialStore over
// CANVASDL_API_URL and CANVASDL_API_KEY
type EnvironmentStore struct{}

// NewEnvironmentStore creates a new environment-based credential store
func NewEnvironmentStore() *EnvironmentStore {
	return &EnvironmentStore{}
}

// Store is not supported for environment variables
func (e *EnvironmentStore) Store(account *Account) error {
	return ErrStoreUnavailable
}

// Retrieve returns the environment credentials under the requested name,
// or "env" when name is empty
func (e *EnvironmentStore) Retrieve(name string) (*Account, error) {
	apiURL := os.Getenv(EnvAPIURL)
	apiKey := os.Getenv(EnvAPIKey)
	if apiURL == "" || apiKey == "" {
		return nil, ErrCredentialsNotFound
	}

	if name == "" {
		name = "env"
	}

	return &Account{
		Name:         name,
		APIURL:       apiURL,
		APIKey:       apiKey,
		LastModified: time.Now(),
	}, nil
}

// List returns a single account if environment variables are set
func (e *EnvironmentStore) List() ([]*Account, error) {
	account, err := e.Retrieve("")
	if err != nil {
		return []*Account{}, nil
	}
	return []*Account{account}, nil
}

// Delete is not supported for environment variables
func (e *EnvironmentStore) Delete(name string) error {
	return ErrStoreUnavailable
}

// Exists checks if environment credentials exist
func (e *EnvironmentStore) Exists(name string) bool {
	return os.Getenv(EnvAPIURL) != "" && os.Getenv(EnvAPIKey) != ""
}
