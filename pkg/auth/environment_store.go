package auth

import (
	"os"
	"time"
)

// Environment variables checked for a login, in priority order
var (
	usernameVars = []string{"THREADSCRAPER_USERNAME", "THREADS_ID"}
	passwordVars = []string{"THREADSCRAPER_PASSWORD", "THREADS_PASSWORD"}
)

// EnvironmentStore exposes a single read-only account from the environment
type EnvironmentStore struct{}

func NewEnvironmentStore() *EnvironmentStore {
	return &EnvironmentStore{}
}

func (e *EnvironmentStore) Store(*Account) error {
	return ErrStoreUnavailable
}

// Retrieve matches any username when called with "", otherwise only the
// username found in the environment.
func (e *EnvironmentStore) Retrieve(username string) (*Account, error) {
	user, pass := firstEnv(usernameVars), firstEnv(passwordVars)
	if user == "" || pass == "" {
		return nil, ErrCredentialsNotFound
	}
	if username != "" && username != user {
		return nil, ErrCredentialsNotFound
	}
	return &Account{Username: user, Password: pass, LastModified: time.Now()}, nil
}

func (e *EnvironmentStore) List() ([]*Account, error) {
	acc, err := e.Retrieve("")
	if err != nil {
		return nil, nil
	}
	return []*Account{acc}, nil
}

func (e *EnvironmentStore) Delete(string) error {
	return ErrStoreUnavailable
}

func (e *EnvironmentStore) Exists(username string) bool {
	_, err := e.Retrieve(username)
	return err == nil
}

func firstEnv(names []string) string {
	for _, n := range names {
		if v := os.Getenv(n); v != "" {
			return v
		}
	}
	return ""
}
