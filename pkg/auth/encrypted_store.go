package auth

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/crypto/pbkdf2"
)

const (
	vaultVersion    = 2
	saltSize        = 16
	keySize         = 32
	pbkdfIterations = 210000
	passphraseEnv   = "THREADSCRAPER_PASSPHRASE"
)

// EncryptedFileStore keeps all accounts in one AES-GCM sealed file.
// The key is derived with PBKDF2 from a passphrase taken from the
// environment or from a generated file next to the vault.
type EncryptedFileStore struct {
	path       string
	passphrase string
	mu         sync.Mutex
}

type vaultFile struct {
	Version int    `json:"version"`
	Salt    string `json:"salt"`
	Nonce   string `json:"nonce"`
	Data    string `json:"data"`
}

// NewEncryptedFileStore opens (or prepares) the vault at path
func NewEncryptedFileStore(path string) (*EncryptedFileStore, error) {
	pass, err := loadPassphrase(filepath.Dir(path))
	if err != nil {
		return nil, fmt.Errorf("failed to get passphrase: %w", err)
	}
	return NewEncryptedFileStoreWithPassphrase(path, pass)
}

// NewEncryptedFileStoreWithPassphrase opens the vault with an explicit passphrase
func NewEncryptedFileStoreWithPassphrase(path, passphrase string) (*EncryptedFileStore, error) {
	if passphrase == "" {
		return nil, errors.New("empty passphrase")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}
	return &EncryptedFileStore{path: path, passphrase: passphrase}, nil
}

func (e *EncryptedFileStore) Store(account *Account) error {
	if account == nil || account.Username == "" {
		return ErrInvalidCredentials
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	accounts, err := e.open()
	if err != nil {
		return err
	}
	accounts[account.Username] = *account
	return e.seal(accounts)
}

func (e *EncryptedFileStore) Retrieve(username string) (*Account, error) {
	if username == "" {
		return nil, ErrInvalidCredentials
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	accounts, err := e.open()
	if err != nil {
		return nil, err
	}
	acc, ok := accounts[username]
	if !ok {
		return nil, ErrCredentialsNotFound
	}
	return &acc, nil
}

func (e *EncryptedFileStore) List() ([]*Account, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	accounts, err := e.open()
	if err != nil {
		return nil, err
	}
	out := make([]*Account, 0, len(accounts))
	for _, acc := range accounts {
		acc := acc
		out = append(out, &acc)
	}
	return out, nil
}

// Delete removes one account; the file goes away with the last one
func (e *EncryptedFileStore) Delete(username string) error {
	if username == "" {
		return ErrInvalidCredentials
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	accounts, err := e.open()
	if err != nil {
		return err
	}
	if _, ok := accounts[username]; !ok {
		return ErrCredentialsNotFound
	}
	delete(accounts, username)

	if len(accounts) == 0 {
		return os.Remove(e.path)
	}
	return e.seal(accounts)
}

func (e *EncryptedFileStore) Exists(username string) bool {
	_, err := e.Retrieve(username)
	return err == nil
}

// open returns the decrypted accounts, or an empty set when no vault exists yet
func (e *EncryptedFileStore) open() (map[string]Account, error) {
	raw, err := os.ReadFile(e.path)
	if errors.Is(err, os.ErrNotExist) {
		return make(map[string]Account), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read vault: %w", err)
	}

	var vf vaultFile
	if err := json.Unmarshal(raw, &vf); err != nil {
		return nil, fmt.Errorf("failed to parse vault: %w", err)
	}
	if vf.Version != vaultVersion {
		return nil, fmt.Errorf("unsupported vault version %d", vf.Version)
	}

	salt, err1 := base64.StdEncoding.DecodeString(vf.Salt)
	nonce, err2 := base64.StdEncoding.DecodeString(vf.Nonce)
	sealed, err3 := base64.StdEncoding.DecodeString(vf.Data)
	if err := errors.Join(err1, err2, err3); err != nil {
		return nil, fmt.Errorf("failed to decode vault: %w", err)
	}

	gcm, err := e.cipher(salt)
	if err != nil {
		return nil, err
	}
	plain, err := gcm.Open(nil, nonce, sealed, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt vault (wrong passphrase?): %w", err)
	}

	accounts := make(map[string]Account)
	if err := json.Unmarshal(plain, &accounts); err != nil {
		return nil, fmt.Errorf("failed to parse accounts: %w", err)
	}
	return accounts, nil
}

// seal re-encrypts everything under a fresh salt and nonce and swaps the file in
func (e *EncryptedFileStore) seal(accounts map[string]Account) error {
	plain, err := json.Marshal(accounts)
	if err != nil {
		return fmt.Errorf("failed to marshal accounts: %w", err)
	}

	salt := make([]byte, saltSize)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return fmt.Errorf("failed to generate salt: %w", err)
	}
	gcm, err := e.cipher(salt)
	if err != nil {
		return err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return fmt.Errorf("failed to generate nonce: %w", err)
	}

	content, err := json.MarshalIndent(vaultFile{
		Version: vaultVersion,
		Salt:    base64.StdEncoding.EncodeToString(salt),
		Nonce:   base64.StdEncoding.EncodeToString(nonce),
		Data:    base64.StdEncoding.EncodeToString(gcm.Seal(nil, nonce, plain, nil)),
	}, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(e.path), ".vault-*")
	if err != nil {
		return fmt.Errorf("failed to write vault: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write vault: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write vault: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0600); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), e.path)
}

func (e *EncryptedFileStore) cipher(salt []byte) (cipher.AEAD, error) {
	key := pbkdf2.Key([]byte(e.passphrase), salt, pbkdfIterations, keySize, sha256.New)
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// loadPassphrase prefers the environment, then a .passphrase file in dir,
// generating one on first use.
func loadPassphrase(dir string) (string, error) {
	if p := os.Getenv(passphraseEnv); p != "" {
		return p, nil
	}

	file := filepath.Join(dir, ".passphrase")
	if b, err := os.ReadFile(file); err == nil && len(b) > 0 {
		return string(b), nil
	}

	if err := os.MkdirAll(dir, 0700); err != nil {
		return "", err
	}
	b := make([]byte, 32)
	if _, err := io.ReadFull(rand.Reader, b); err != nil {
		return "", fmt.Errorf("failed to generate passphrase: %w", err)
	}
	p := base64.RawURLEncoding.EncodeToString(b)
	if err := os.WriteFile(file, []byte(p), 0600); err != nil {
		return "", fmt.Errorf("failed to save passphrase: %w", err)
	}
	return p, nil
}
