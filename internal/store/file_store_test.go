package store

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danaam/danaam-go/domain"
)

func fullSession() *domain.Session {
	return &domain.Session{
		UserID:       "user-1",
		Role:         domain.RoleUser,
		UserClass:    domain.ClassSuppliers,
		AccessToken:  "access-1",
		RefreshToken: "refresh-1",
		FirstName:    "Sara",
		LastName:     "Hassan",
		CompanyName:  "Hassan Contracting",
	}
}

func TestFileStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "credentials.json")
	s := NewFileStore(path)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, fullSession()))

	loaded, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, fullSession(), loaded)
}

func TestFileStoreWritesLegacyKeyNames(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.json")
	s := NewFileStore(path)
	require.NoError(t, s.Save(context.Background(), fullSession()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var kv map[string]string
	require.NoError(t, json.Unmarshal(data, &kv))

	assert.Equal(t, "access-1", kv["accessToken"])
	assert.Equal(t, "refresh-1", kv["refreshToken"])
	assert.Equal(t, "user-1", kv["userId"])
	assert.Equal(t, "User", kv["userRole"])
	assert.Equal(t, "Suppliers", kv["userClass"])
	assert.Equal(t, "Hassan Contracting", kv["companyName"])
}

func TestFileStoreMissingFileIsEmptySession(t *testing.T) {
	s := NewFileStore(filepath.Join(t.TempDir(), "absent.json"))

	loaded, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.False(t, loaded.Complete())
}

func TestFileStoreCorruptFileIsEmptySession(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	loaded, err := NewFileStore(path).Load(context.Background())
	require.NoError(t, err)
	assert.False(t, loaded.Complete())
}

func TestFileStoreClearIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.json")
	s := NewFileStore(path)
	ctx := context.Background()
	require.NoError(t, s.Save(ctx, fullSession()))

	require.NoError(t, s.Clear(ctx))
	require.NoError(t, s.Clear(ctx), "clearing an absent file must not fail")

	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestFileStorePermissions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credentials.json")
	s := NewFileStore(path)
	require.NoError(t, s.Save(context.Background(), fullSession()))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}
