// Package store provides durable credential storage for the session
// manager: a JSON file for interactive use and a Redis-backed variant for
// headless agents that share a session.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/danaam/danaam-go/domain"
)

// Credential keys in persisted storage. These names predate this client and
// match what every other DANAAM front-end writes.
const (
	keyAccessToken  = "accessToken"
	keyRefreshToken = "refreshToken"
	keyUserID       = "userId"
	keyUserRole     = "userRole"
	keyUserClass    = "userClass"
	keyFirstName    = "firstName"
	keyLastName     = "lastName"
	keyCompanyName  = "companyName"
)

// FileStore keeps the credential set as a JSON object of plain strings.
type FileStore struct {
	path string
}

// NewFileStore creates a FileStore at path. The parent directory is created
// on first save.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Load implements domain.TokenStore. A missing or corrupt file yields an
// empty (incomplete) session, not an error.
func (s *FileStore) Load(ctx context.Context) (*domain.Session, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &domain.Session{}, nil
		}
		return nil, fmt.Errorf("read credentials: %w", err)
	}
	var kv map[string]string
	if err := json.Unmarshal(data, &kv); err != nil {
		return &domain.Session{}, nil
	}
	return sessionFromMap(kv), nil
}

// Save implements domain.TokenStore. The file is written atomically via a
// rename so readers never see a half-written credential set.
func (s *FileStore) Save(ctx context.Context, session *domain.Session) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create credentials dir: %w", err)
	}
	data, err := json.MarshalIndent(sessionToMap(session), "", "  ")
	if err != nil {
		return fmt.Errorf("encode credentials: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write credentials: %w", err)
	}
	return os.Rename(tmp, s.path)
}

// Clear implements domain.TokenStore.
func (s *FileStore) Clear(ctx context.Context) error {
	err := os.Remove(s.path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

func sessionToMap(session *domain.Session) map[string]string {
	kv := map[string]string{
		keyAccessToken:  session.AccessToken,
		keyRefreshToken: session.RefreshToken,
		keyUserID:       session.UserID,
		keyUserRole:     string(session.Role),
	}
	if session.UserClass != "" {
		kv[keyUserClass] = string(session.UserClass)
	}
	if session.FirstName != "" {
		kv[keyFirstName] = session.FirstName
	}
	if session.LastName != "" {
		kv[keyLastName] = session.LastName
	}
	if session.CompanyName != "" {
		kv[keyCompanyName] = session.CompanyName
	}
	return kv
}

func sessionFromMap(kv map[string]string) *domain.Session {
	return &domain.Session{
		AccessToken:  kv[keyAccessToken],
		RefreshToken: kv[keyRefreshToken],
		UserID:       kv[keyUserID],
		Role:         domain.Role(kv[keyUserRole]),
		UserClass:    domain.UserClass(kv[keyUserClass]),
		FirstName:    kv[keyFirstName],
		LastName:     kv[keyLastName],
		CompanyName:  kv[keyCompanyName],
	}
}

var _ domain.TokenStore = (*FileStore)(nil)
