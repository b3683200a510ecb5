// Package results persists the encrypted-at-rest record of each completed
// session.
package results

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

var ErrPersistence = errors.New("result persistence failed")

// Cipher seals and opens individual answer values. Satisfied by
// keys.Manager.
type Cipher interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(ciphertext string) (string, error)
}

// StoredResult is immutable once written. Encrypted maps question index to
// the ciphertext of the normalized answer.
type StoredResult struct {
	ID             int64          `json:"id,omitempty"`
	User           string         `json:"user"`
	Score          int            `json:"score"`
	TotalQuestions int            `json:"total_questions"`
	Encrypted      map[int]string `json:"responses"`
	Timestamp      time.Time      `json:"timestamp"`
}

type Store struct {
	db     *sql.DB
	cipher Cipher
}

func NewStore(db *sql.DB, cipher Cipher) *Store {
	return &Store{db: db, cipher: cipher}
}

// Save encrypts each response value independently and persists one record
// with a server-assigned timestamp. Per-value encryption keeps single
// answers decryptable without reconstructing the whole record.
func (s *Store) Save(ctx context.Context, user string, score, totalQuestions int, responses map[int]string) (StoredResult, error) {
	encrypted := make(map[int]string, len(responses))
	for i, answer := range responses {
		ct, err := s.cipher.Encrypt(answer)
		if err != nil {
			return StoredResult{}, fmt.Errorf("encrypt answer %d: %w", i, err)
		}
		encrypted[i] = ct
	}
	buf, err := json.Marshal(encrypted)
	if err != nil {
		return StoredResult{}, err
	}

	now := time.Now()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO responses ("user", score, total_questions, responses, timestamp)
		 VALUES ($1,$2,$3,$4,$5)`,
		user, score, totalQuestions, string(buf), now.Unix())
	if err != nil {
		return StoredResult{}, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	out := StoredResult{
		User:           user,
		Score:          score,
		TotalQuestions: totalQuestions,
		Encrypted:      encrypted,
		Timestamp:      now,
	}
	// pgx does not implement LastInsertId; the id is informational only
	if id, err := res.LastInsertId(); err == nil {
		out.ID = id
	}
	return out, nil
}

// ListAll returns every persisted record, newest first (descending insert
// id). Answer bodies stay encrypted; reporting does not need them.
func (s *Store) ListAll(ctx context.Context) ([]StoredResult, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, "user", score, total_questions, responses, timestamp
		 FROM responses ORDER BY id DESC`)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	defer rows.Close()

	var out []StoredResult
	for rows.Next() {
		var r StoredResult
		var rj string
		var ts int64
		if err := rows.Scan(&r.ID, &r.User, &r.Score, &r.TotalQuestions, &rj, &ts); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
		}
		if err := json.Unmarshal([]byte(rj), &r.Encrypted); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
		}
		r.Timestamp = time.Unix(ts, 0)
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return out, nil
}

// Answers decrypts the per-answer ciphertexts of one record.
func (s *Store) Answers(r StoredResult) (map[int]string, error) {
	out := make(map[int]string, len(r.Encrypted))
	for i, ct := range r.Encrypted {
		plain, err := s.cipher.Decrypt(ct)
		if err != nil {
			return nil, fmt.Errorf("decrypt answer %d: %w", i, err)
		}
		out[i] = plain
	}
	return out, nil
}
