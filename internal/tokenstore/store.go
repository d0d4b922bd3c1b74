// Package tokenstore provides durable per-account OAuth credential
// persistence.
//
// Credentials are kept in a single JSON file keyed by account id. The
// file is rewritten atomically on every change (temp file + rename) so
// a crash mid-write never corrupts prior state. Initialization is lazy
// and idempotent: the first access loads the file, and a missing file
// is replaced by an empty store that is persisted immediately.
package tokenstore

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"golang.org/x/oauth2"

	"github.com/nativeJustin/calendar-app/internal/logging"
)

// Credential holds the OAuth tokens for one account. Field names
// follow the oauth2 wire format.
type Credential struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	TokenType    string    `json:"token_type,omitempty"`
	Expiry       time.Time `json:"expiry,omitzero"`
}

// Token converts the credential to an oauth2.Token.
func (c Credential) Token() *oauth2.Token {
	tokenType := c.TokenType
	if tokenType == "" {
		tokenType = "Bearer"
	}
	return &oauth2.Token{
		AccessToken:  c.AccessToken,
		RefreshToken: c.RefreshToken,
		TokenType:    tokenType,
		Expiry:       c.Expiry,
	}
}

// FromToken converts an oauth2.Token to a Credential.
func FromToken(t *oauth2.Token) Credential {
	return Credential{
		AccessToken:  t.AccessToken,
		RefreshToken: t.RefreshToken,
		TokenType:    t.TokenType,
		Expiry:       t.Expiry,
	}
}

// Account is one stored credential record.
type Account struct {
	ID         string     `json:"id"`
	Email      string     `json:"email"`
	Credential Credential `json:"credential"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// Summary is the redacted account view exposed to the boundary: no
// token material, only identity and validity.
type Summary struct {
	ID      string `json:"id"`
	Email   string `json:"email"`
	IsValid bool   `json:"isValid"`
}

// storeFile is the on-disk layout. Accounts live under a provider key
// so the format can grow additional providers without migration.
type storeFile struct {
	Google map[string]*Account `json:"google"`
}

// Store persists accounts to a JSON file. All methods are safe for
// concurrent use; writes are serialized per store instance.
type Store struct {
	mu       sync.Mutex
	path     string
	loaded   bool
	accounts map[string]*Account
	logger   *slog.Logger
}

// New creates a store backed by the file at path. The file is not
// touched until the first access.
func New(path string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		path:   path,
		logger: logging.WithService(logger, "tokenstore"),
	}
}

// load reads the persisted file into memory. Callers must hold s.mu.
// A missing file initializes an empty store and persists it, so a cold
// start leaves a valid file behind.
func (s *Store) load() error {
	if s.loaded {
		return nil
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to read token store: %w", err)
		}
		s.accounts = make(map[string]*Account)
		s.loaded = true
		if err := s.persist(); err != nil {
			s.loaded = false
			return err
		}
		s.logger.Info("initialized empty token store", "path", s.path)
		return nil
	}

	var file storeFile
	if err := json.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("failed to parse token store: %w", err)
	}
	if file.Google == nil {
		file.Google = make(map[string]*Account)
	}
	s.accounts = file.Google
	s.loaded = true
	s.logger.Debug("loaded token store", "path", s.path, "accounts", len(s.accounts))
	return nil
}

// persist atomically rewrites the store file. Callers must hold s.mu.
func (s *Store) persist() error {
	data, err := json.MarshalIndent(storeFile{Google: s.accounts}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal token store: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create token store directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".tokens-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp token file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write temp token file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close temp token file: %w", err)
	}
	if err := os.Chmod(tmpName, 0600); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to chmod temp token file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace token store: %w", err)
	}
	return nil
}

// Get returns the stored account for id, or nil if unknown.
func (s *Store) Get(id string) (*Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.load(); err != nil {
		return nil, err
	}

	account, ok := s.accounts[id]
	if !ok {
		return nil, nil
	}
	// Copy so callers cannot mutate stored state.
	copied := *account
	return &copied, nil
}

// List returns redacted summaries of all stored accounts.
func (s *Store) List() ([]Summary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.load(); err != nil {
		return nil, err
	}

	summaries := make([]Summary, 0, len(s.accounts))
	for id, account := range s.accounts {
		summaries = append(summaries, Summary{
			ID:      id,
			Email:   account.Email,
			IsValid: account.Credential.AccessToken != "",
		})
	}
	return summaries, nil
}

// Save upserts the credential for an account and stamps the update
// time. Two invariants hold across rotations:
//
//   - a credential that omits a refresh token retains the previously
//     stored refresh token (providers do not reissue them every time)
//   - an empty access token never overwrites a valid one
func (s *Store) Save(id string, cred Credential, email string) error {
	if id == "" {
		return fmt.Errorf("account id cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.load(); err != nil {
		return err
	}

	if prev, ok := s.accounts[id]; ok {
		if cred.RefreshToken == "" {
			cred.RefreshToken = prev.Credential.RefreshToken
		}
		if cred.AccessToken == "" {
			return fmt.Errorf("refusing to overwrite access token for account %s with an empty one", id)
		}
		if email == "" {
			email = prev.Email
		}
	} else if cred.AccessToken == "" {
		return fmt.Errorf("cannot save account %s without an access token", id)
	}

	s.accounts[id] = &Account{
		ID:         id,
		Email:      email,
		Credential: cred,
		UpdatedAt:  time.Now().UTC(),
	}

	if err := s.persist(); err != nil {
		return err
	}

	s.logger.Debug("saved credential",
		logging.Account(id),
		logging.UserHash(email),
		"access_token", logging.SanitizeToken(cred.AccessToken),
		"has_refresh_token", cred.RefreshToken != "")
	return nil
}

// Remove deletes the account. Removing an unknown id is not an error.
func (s *Store) Remove(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.load(); err != nil {
		return err
	}

	if _, ok := s.accounts[id]; !ok {
		return nil
	}
	delete(s.accounts, id)

	if err := s.persist(); err != nil {
		return err
	}

	s.logger.Info("removed account", logging.Account(id))
	return nil
}
