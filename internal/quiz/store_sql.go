package quiz

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

var ErrSessionNotFound = errors.New("session not found")

// SessionStore persists session snapshots so an in-flight quiz survives a
// process restart.
type SessionStore interface {
	Put(ctx context.Context, s *Session) error
	Get(ctx context.Context, id string) (*Session, error)
}

// SQLStore persists questions and sessions over database/sql. Each method
// is one atomic unit of work; no transaction is held across session steps.
type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore { return &SQLStore{db: db} }

// SaveQuestions appends the validated set to the questions table, one row
// per question in original order, inside a single transaction.
func (st *SQLStore) SaveQuestions(ctx context.Context, qs QuestionSet) error {
	tx, err := st.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("save questions: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for _, q := range qs {
		var options any
		if q.Kind == KindMultipleChoice {
			buf, merr := json.Marshal(q.Options)
			if merr != nil {
				err = merr
				return err
			}
			options = string(buf)
		}
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO questions (text, type, options, correct_answer) VALUES ($1,$2,$3,$4)`,
			q.Text, string(q.Kind), options, q.CorrectAnswer); err != nil {
			return fmt.Errorf("save questions: %w", err)
		}
	}
	err = tx.Commit()
	if err != nil {
		return fmt.Errorf("save questions: %w", err)
	}
	return nil
}

// Put upserts the session snapshot row.
func (st *SQLStore) Put(ctx context.Context, s *Session) error {
	qj, err := json.Marshal(s.Questions)
	if err != nil {
		return err
	}
	rj, err := json.Marshal(s.Responses)
	if err != nil {
		return err
	}
	_, err = st.db.ExecContext(ctx,
		`INSERT INTO sessions (id, "user", questions_json, current_index, responses_json, score, status, started_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		 ON CONFLICT (id) DO UPDATE SET
		   questions_json=EXCLUDED.questions_json,
		   current_index=EXCLUDED.current_index,
		   responses_json=EXCLUDED.responses_json,
		   score=EXCLUDED.score,
		   status=EXCLUDED.status`,
		s.ID, s.User, string(qj), s.CurrentIndex, string(rj), s.Score, string(s.Status), time.Now().Unix())
	if err != nil {
		return fmt.Errorf("put session: %w", err)
	}
	return nil
}

func (st *SQLStore) Get(ctx context.Context, id string) (*Session, error) {
	row := st.db.QueryRowContext(ctx,
		`SELECT id, "user", questions_json, current_index, responses_json, score, status
		 FROM sessions WHERE id=$1`, id)
	var s Session
	var qj, rj string
	if err := row.Scan(&s.ID, &s.User, &qj, &s.CurrentIndex, &rj, &s.Score, &s.Status); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("get session: %w", err)
	}
	if err := json.Unmarshal([]byte(qj), &s.Questions); err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	if err := json.Unmarshal([]byte(rj), &s.Responses); err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	if s.Responses == nil {
		s.Responses = map[int]string{}
	}
	return &s, nil
}
