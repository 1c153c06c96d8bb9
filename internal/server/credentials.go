// credentials.go - The singleton shared-PIN credential record.
//
// Exactly one bcrypt-hashed credential exists; it is created lazily from
// the configured default PIN on first use (or eagerly at startup via
// EnsureBootstrap) and replaced only by a successful password change.
package server

import (
	"context"
	"database/sql"
	"errors"

	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrNotConfigured means the credential record vanished between
	// check and use. This is a server fault, not a client fault.
	ErrNotConfigured = errors.New("password not configured")

	// ErrWrongPassword means the supplied current PIN did not match.
	ErrWrongPassword = errors.New("current password is incorrect")

	errNoCredential = errors.New("credential record not found")
)

// passwordStore persists the single credential row. CreateIfAbsent must
// be idempotent: concurrent bootstrap attempts race, and the first
// writer wins by unique constraint.
type passwordStore interface {
	Get(ctx context.Context) (string, error)
	CreateIfAbsent(ctx context.Context, hash string) error
	Update(ctx context.Context, hash string) error
}

type postgresPasswordStore struct {
	db *sql.DB
}

func (s *postgresPasswordStore) Get(ctx context.Context) (string, error) {
	var hash string
	err := s.db.QueryRowContext(ctx,
		`SELECT password_hash FROM vault_credential WHERE id = 1`).Scan(&hash)
	if err == sql.ErrNoRows {
		return "", errNoCredential
	}
	if err != nil {
		return "", err
	}
	return hash, nil
}

func (s *postgresPasswordStore) CreateIfAbsent(ctx context.Context, hash string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO vault_credential (id, password_hash)
		VALUES (1, $1)
		ON CONFLICT (id) DO NOTHING
	`, hash)
	return err
}

func (s *postgresPasswordStore) Update(ctx context.Context, hash string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE vault_credential
		SET password_hash = $1, updated_at = now()
		WHERE id = 1
	`, hash)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return errNoCredential
	}
	return nil
}

// CredentialStore verifies and rotates the shared PIN.
type CredentialStore struct {
	store      passwordStore
	defaultPIN string
}

func NewCredentialStore(db *sql.DB, defaultPIN string) *CredentialStore {
	return newCredentialStore(&postgresPasswordStore{db: db}, defaultPIN)
}

func newCredentialStore(store passwordStore, defaultPIN string) *CredentialStore {
	return &CredentialStore{store: store, defaultPIN: defaultPIN}
}

// hashPIN generates a bcrypt hash of the PIN.
// bcrypt cost of 12 is a good balance of security and performance.
func hashPIN(pin string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(pin), 12)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// EnsureBootstrap creates the credential record from the default PIN if
// none exists yet. Safe to call on every startup and from concurrent
// processes; the insert is first-wins.
func (c *CredentialStore) EnsureBootstrap(ctx context.Context) error {
	hash, err := hashPIN(c.defaultPIN)
	if err != nil {
		return err
	}
	return c.store.CreateIfAbsent(ctx, hash)
}

// Verify compares the candidate PIN against the stored hash. The very
// first call on an empty store doubles as bootstrap: the record is
// created from the default PIN, then the candidate is compared against
// whatever record won the insert.
func (c *CredentialStore) Verify(ctx context.Context, candidate string) (bool, error) {
	hash, err := c.store.Get(ctx)
	if errors.Is(err, errNoCredential) {
		if err := c.EnsureBootstrap(ctx); err != nil {
			return false, err
		}
		hash, err = c.store.Get(ctx)
	}
	if err != nil {
		return false, err
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(candidate)) == nil, nil
}

// Change replaces the stored hash after verifying the current PIN.
// Format and same-value checks happen at the HTTP boundary; here the
// current value must match and a record must already exist.
func (c *CredentialStore) Change(ctx context.Context, current, newPIN string) error {
	hash, err := c.store.Get(ctx)
	if errors.Is(err, errNoCredential) {
		return ErrNotConfigured
	}
	if err != nil {
		return err
	}

	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(current)) != nil {
		return ErrWrongPassword
	}

	newHash, err := hashPIN(newPIN)
	if err != nil {
		return err
	}
	if err := c.store.Update(ctx, newHash); err != nil {
		if errors.Is(err, errNoCredential) {
			return ErrNotConfigured
		}
		return err
	}
	return nil
}
