package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/crypto/bcrypt"
)

var ErrDuplicateUser = errors.New("username already registered")

// CredentialStore persists user credentials. Secrets are stored as salted
// bcrypt digests; verification is a digest compare, never plaintext
// equality.
type CredentialStore struct {
	db *sql.DB
}

func NewCredentialStore(db *sql.DB) *CredentialStore { return &CredentialStore{db: db} }

// Register inserts a new credential. Uniqueness rides on the username
// primary key: one atomic insert, no check-then-insert window.
func (s *CredentialStore) Register(ctx context.Context, username, secret string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), 12)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO users (username, password_hash) VALUES ($1,$2)`,
		username, string(hash))
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateUser
		}
		return fmt.Errorf("register user: %w", err)
	}
	return nil
}

// Authenticate reports whether a credential exists for username and the
// submitted secret verifies against its stored digest. An unknown user is
// a plain false, not an error.
func (s *CredentialStore) Authenticate(ctx context.Context, username, secret string) (bool, error) {
	var hash string
	err := s.db.QueryRowContext(ctx,
		`SELECT password_hash FROM users WHERE username=$1`, username).Scan(&hash)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("load credential: %w", err)
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(secret)) == nil, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	// modernc sqlite reports constraint violations by message only
	return strings.Contains(err.Error(), "UNIQUE constraint")
}
