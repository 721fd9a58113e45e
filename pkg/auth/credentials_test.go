package auth

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearLoginEnv(t *testing.T) {
	t.Helper()
	for _, k := range append(append([]string{}, usernameVars...), passwordVars...) {
		t.Setenv(k, "")
	}
}

func TestManagerStoreValidates(t *testing.T) {
	m, ms := NewMockManager()

	assert.Error(t, m.Store(&Account{Password: "pw"}))
	assert.Error(t, m.Store(&Account{Username: "alice"}))
	assert.Equal(t, 0, ms.Count())

	acc := &Account{Username: "alice", Password: "correct horse"}
	require.NoError(t, m.Store(acc))
	assert.False(t, acc.LastModified.IsZero(), "Store stamps the modification time")

	got, err := m.Retrieve("alice")
	require.NoError(t, err)
	assert.Equal(t, "correct horse", got.Password)

	_, err = m.Retrieve("bob")
	assert.ErrorIs(t, err, ErrCredentialsNotFound)
}

func TestManagerFallsThroughStores(t *testing.T) {
	broken := NewMockStore()
	broken.StoreError = errors.New("keychain locked")
	backup := NewMockStore()

	m := NewManagerWithStores(broken, backup)
	require.NoError(t, m.Store(&Account{Username: "alice", Password: "pw"}))
	assert.Equal(t, 0, broken.Count())
	assert.Equal(t, 1, backup.Count())

	backup.StoreError = errors.New("disk full")
	err := m.Store(&Account{Username: "bob", Password: "pw"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
}

func TestManagerListPrefersNewest(t *testing.T) {
	old, fresh := NewMockStore(), NewMockStore()
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, old.Store(&Account{Username: "alice", Password: "old", LastModified: t0}))
	require.NoError(t, fresh.Store(&Account{Username: "alice", Password: "new", LastModified: t0.Add(time.Hour)}))
	require.NoError(t, old.Store(&Account{Username: "bob", Password: "pw", LastModified: t0.Add(2 * time.Hour)}))

	m := NewManagerWithStores(old, fresh)
	accounts, err := m.List()
	require.NoError(t, err)
	require.Len(t, accounts, 2)
	assert.Equal(t, "bob", accounts[0].Username)
	assert.Equal(t, "new", accounts[1].Password)
}

func TestManagerLookup(t *testing.T) {
	clearLoginEnv(t)
	ms := NewMockStore()
	m := NewManagerWithStores(ms, NewEnvironmentStore())

	_, err := m.Lookup("")
	assert.ErrorIs(t, err, ErrCredentialsNotFound)

	require.NoError(t, ms.Store(&Account{Username: "alice", Password: "stored"}))
	acc, err := m.Lookup("")
	require.NoError(t, err)
	assert.Equal(t, "alice", acc.Username)

	t.Setenv("THREADS_ID", "envuser")
	t.Setenv("THREADS_PASSWORD", "envpass")
	acc, err = m.Lookup("")
	require.NoError(t, err)
	assert.Equal(t, "envuser", acc.Username, "environment wins for the default account")

	acc, err = m.Lookup("alice")
	require.NoError(t, err)
	assert.Equal(t, "stored", acc.Password)
}

func TestManagerDelete(t *testing.T) {
	m, ms := NewMockManager()
	require.NoError(t, m.Store(&Account{Username: "alice", Password: "pw"}))

	require.NoError(t, m.Delete("alice"))
	assert.Equal(t, 0, ms.Count())

	err := m.Delete("alice")
	assert.ErrorIs(t, err, ErrCredentialsNotFound)

	ms.DeleteError = errors.New("io failure")
	assert.EqualError(t, m.Delete("alice"), "failed to delete credentials: io failure")
}

func TestEncryptedFileStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vault", "credentials.enc")

	store, err := NewEncryptedFileStoreWithPassphrase(path, "test passphrase")
	require.NoError(t, err)

	accounts, err := store.List()
	require.NoError(t, err)
	assert.Empty(t, accounts, "missing vault reads as empty")

	require.NoError(t, store.Store(&Account{Username: "alice", Password: "s3cret-value"}))
	require.NoError(t, store.Store(&Account{Username: "bob", Password: "other"}))

	got, err := store.Retrieve("alice")
	require.NoError(t, err)
	assert.Equal(t, "s3cret-value", got.Password)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	if bytes.Contains(raw, []byte("s3cret-value")) || bytes.Contains(raw, []byte("alice")) {
		t.Error("vault contains plaintext credentials")
	}

	info, err := os.Stat(path)
	require.NoError(t, err)
	if runtime.GOOS != "windows" {
		assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
	}

	wrong, err := NewEncryptedFileStoreWithPassphrase(path, "wrong")
	require.NoError(t, err)
	_, err = wrong.Retrieve("alice")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrCredentialsNotFound)

	require.NoError(t, store.Delete("alice"))
	assert.False(t, store.Exists("alice"))
	require.NoError(t, store.Delete("bob"))
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err), "vault removed with the last account")
}

func TestEncryptedFileStorePassphraseFile(t *testing.T) {
	t.Setenv(passphraseEnv, "")
	dir := t.TempDir()
	path := filepath.Join(dir, "credentials.enc")

	first, err := NewEncryptedFileStore(path)
	require.NoError(t, err)
	require.NoError(t, first.Store(&Account{Username: "alice", Password: "pw"}))

	_, err = os.Stat(filepath.Join(dir, ".passphrase"))
	require.NoError(t, err)

	second, err := NewEncryptedFileStore(path)
	require.NoError(t, err)
	assert.True(t, second.Exists("alice"), "generated passphrase is reused")
}

func TestEnvironmentStore(t *testing.T) {
	clearLoginEnv(t)
	store := NewEnvironmentStore()

	_, err := store.Retrieve("")
	assert.ErrorIs(t, err, ErrCredentialsNotFound)

	t.Setenv("THREADS_ID", "alice")
	t.Setenv("THREADS_PASSWORD", "pw")
	t.Setenv("THREADSCRAPER_PASSWORD", "override")

	acc, err := store.Retrieve("")
	require.NoError(t, err)
	assert.Equal(t, "alice", acc.Username)
	assert.Equal(t, "override", acc.Password)

	assert.True(t, store.Exists("alice"))
	assert.False(t, store.Exists("bob"))

	assert.ErrorIs(t, store.Store(acc), ErrStoreUnavailable)
	assert.ErrorIs(t, store.Delete("alice"), ErrStoreUnavailable)
}

func TestSanitizeAccount(t *testing.T) {
	acc := &Account{Username: "alice", Password: "a-very-long-password"}
	s := SanitizeAccount(acc)
	assert.Equal(t, "alice", s.Username)
	assert.Equal(t, "a-...rd", s.Password)
	assert.Equal(t, "a-very-long-password", acc.Password, "original untouched")

	if got := SanitizeAccount(&Account{Password: "short"}).Password; got != "********" {
		t.Errorf("short password masked as %q", got)
	}
	assert.Nil(t, SanitizeAccount(nil))
}

func TestShowLoginGuide(t *testing.T) {
	var buf bytes.Buffer
	ShowLoginGuide(&buf)
	assert.Contains(t, buf.String(), "THREADS_ID")
	assert.Contains(t, buf.String(), passphraseEnv)
}
