// Package auth keeps Threads login credentials between runs.
//
// Credentials live in the system keychain when one is available, in an
// encrypted file under the user config directory otherwise, and can always
// be supplied through the environment.
package auth

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"time"
)

const appDirName = "threadscraper"

// Account is one stored site login
type Account struct {
	Username     string    `json:"username"`
	Password     string    `json:"password"`
	LastModified time.Time `json:"last_modified"`
}

// CredentialStore is a backend able to hold accounts
type CredentialStore interface {
	Store(account *Account) error
	Retrieve(username string) (*Account, error)
	List() ([]*Account, error)
	Delete(username string) error
	Exists(username string) bool
}

// Manager queries its stores in priority order
type Manager struct {
	stores []CredentialStore
}

// NewManager wires the keychain, the encrypted file and the environment
func NewManager() (*Manager, error) {
	var stores []CredentialStore

	if ks, err := NewKeyringStore(); err == nil {
		stores = append(stores, ks)
	}

	dir, err := ConfigDir()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve config directory: %w", err)
	}
	vault, err := NewEncryptedFileStore(filepath.Join(dir, "credentials.enc"))
	if err != nil {
		return nil, fmt.Errorf("failed to open encrypted store: %w", err)
	}
	stores = append(stores, vault, NewEnvironmentStore())

	return &Manager{stores: stores}, nil
}

// NewManagerWithStores builds a manager over explicit backends
func NewManagerWithStores(stores ...CredentialStore) *Manager {
	return &Manager{stores: stores}
}

// Store saves the account in the first backend that accepts it
func (m *Manager) Store(account *Account) error {
	if account == nil || account.Username == "" {
		return errors.New("username is required")
	}
	if account.Password == "" {
		return errors.New("password is required")
	}
	account.LastModified = time.Now()

	var lastErr error
	for _, s := range m.stores {
		err := s.Store(account)
		if err == nil {
			return nil
		}
		lastErr = err
	}
	if lastErr != nil {
		return fmt.Errorf("failed to store credentials: %w", lastErr)
	}
	return ErrStoreUnavailable
}

// Retrieve returns the account from the first backend that has it
func (m *Manager) Retrieve(username string) (*Account, error) {
	for _, s := range m.stores {
		if acc, err := s.Retrieve(username); err == nil && acc != nil {
			return acc, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrCredentialsNotFound, username)
}

// RetrieveDefault prefers environment credentials, then the most recently
// saved account.
func (m *Manager) RetrieveDefault() (*Account, error) {
	for _, s := range m.stores {
		if env, ok := s.(*EnvironmentStore); ok {
			if acc, err := env.Retrieve(""); err == nil {
				return acc, nil
			}
		}
	}

	accounts, _ := m.List()
	if len(accounts) == 0 {
		return nil, ErrCredentialsNotFound
	}
	return accounts[0], nil
}

// Lookup resolves the named account, or the default one when name is empty
func (m *Manager) Lookup(name string) (*Account, error) {
	if name == "" {
		return m.RetrieveDefault()
	}
	return m.Retrieve(name)
}

// List merges every backend, newest first. A username present in several
// stores is reported once with its latest copy.
func (m *Manager) List() ([]*Account, error) {
	latest := make(map[string]*Account)
	for _, s := range m.stores {
		accounts, err := s.List()
		if err != nil {
			continue
		}
		for _, acc := range accounts {
			if cur, ok := latest[acc.Username]; !ok || acc.LastModified.After(cur.LastModified) {
				latest[acc.Username] = acc
			}
		}
	}

	out := make([]*Account, 0, len(latest))
	for _, acc := range latest {
		out = append(out, acc)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].LastModified.Equal(out[j].LastModified) {
			return out[i].LastModified.After(out[j].LastModified)
		}
		return out[i].Username < out[j].Username
	})
	return out, nil
}

// Delete removes the account everywhere it is stored
func (m *Manager) Delete(username string) error {
	var deleted bool
	var lastErr error
	for _, s := range m.stores {
		if err := s.Delete(username); err == nil {
			deleted = true
		} else {
			lastErr = err
		}
	}

	if deleted {
		return nil
	}
	if lastErr != nil && !errors.Is(lastErr, ErrCredentialsNotFound) && !errors.Is(lastErr, ErrStoreUnavailable) {
		return fmt.Errorf("failed to delete credentials: %w", lastErr)
	}
	return fmt.Errorf("%w: %s", ErrCredentialsNotFound, username)
}

// ConfigDir returns (and creates) the per-user application directory
func ConfigDir() (string, error) {
	var dir string

	switch runtime.GOOS {
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		dir = filepath.Join(home, "Library", "Application Support", appDirName)
	case "windows":
		dir = filepath.Join(os.Getenv("APPDATA"), appDirName)
	default:
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			dir = filepath.Join(xdg, appDirName)
		} else {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", err
			}
			dir = filepath.Join(home, ".config", appDirName)
		}
	}

	if err := os.MkdirAll(dir, 0700); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}
	return dir, nil
}

// SanitizeAccount returns a copy safe for display
func SanitizeAccount(account *Account) *Account {
	if account == nil {
		return nil
	}
	return &Account{
		Username:     account.Username,
		Password:     maskString(account.Password),
		LastModified: account.LastModified,
	}
}

func maskString(s string) string {
	if len(s) <= 8 {
		return "********"
	}
	return s[:2] + "..." + s[len(s)-2:]
}

var (
	ErrCredentialsNotFound = errors.New("credentials not found")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrStoreUnavailable    = errors.New("credential store unavailable")
)
