package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/quizdesk/quizdesk/internal/auth"
	"github.com/quizdesk/quizdesk/internal/quiz"
	"github.com/quizdesk/quizdesk/internal/results"
)

// StartSessionHandler validates the uploaded question document, persists
// the questions, and opens a session for the caller at the first question.
func StartSessionHandler(v *quiz.Validator, store *quiz.SQLStore, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims := auth.ClaimsFromContext(r.Context())
		raw, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "read body", http.StatusBadRequest)
			return
		}
		qs, err := v.Parse(raw)
		if err != nil {
			writeQuizError(w, err)
			return
		}
		s, err := quiz.Start(claims.Sub, qs)
		if err != nil {
			writeQuizError(w, err)
			return
		}
		if err := store.SaveQuestions(r.Context(), qs); err != nil {
			log.Error("save questions", zap.Error(err))
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if err := store.Put(r.Context(), s); err != nil {
			log.Error("put session", zap.Error(err))
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(redact(s))
	}
}

func GetSessionHandler(store quiz.SessionStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := ownSession(w, r, store)
		if !ok {
			return
		}
		_ = json.NewEncoder(w).Encode(redact(s))
	}
}

// SubmitAnswerHandler applies one answer to the caller's session. Completing
// the final question persists the encrypted result record.
func SubmitAnswerHandler(store quiz.SessionStore, res *results.Store, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := ownSession(w, r, store)
		if !ok {
			return
		}
		var req struct {
			Answer string `json:"answer"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if err := quiz.Submit(s, req.Answer); err != nil {
			writeQuizError(w, err)
			return
		}
		if err := store.Put(r.Context(), s); err != nil {
			log.Error("put session", zap.Error(err))
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if s.Status == quiz.StatusCompleted {
			if _, err := res.Save(r.Context(), s.User, s.Score, len(s.Questions), s.Responses); err != nil {
				log.Error("persist result", zap.Error(err))
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
			log.Info("session completed",
				zap.String("session", s.ID),
				zap.String("user", s.User),
				zap.Int("score", s.Score))
		}
		_ = json.NewEncoder(w).Encode(redact(s))
	}
}

// ResetSessionHandler clears the session. An empty body returns it to
// NotStarted; a body carrying a new question document replaces the snapshot
// and re-enters InProgress at the first question.
func ResetSessionHandler(v *quiz.Validator, store quiz.SessionStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := ownSession(w, r, store)
		if !ok {
			return
		}
		raw, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "read body", http.StatusBadRequest)
			return
		}
		if len(raw) == 0 {
			quiz.Reset(s)
		} else {
			qs, err := v.Parse(raw)
			if err != nil {
				writeQuizError(w, err)
				return
			}
			if err := quiz.Restart(s, qs); err != nil {
				writeQuizError(w, err)
				return
			}
		}
		if err := store.Put(r.Context(), s); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(redact(s))
	}
}

func ResumeSessionHandler(store quiz.SessionStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := ownSession(w, r, store)
		if !ok {
			return
		}
		if err := quiz.Resume(s); err != nil {
			writeQuizError(w, err)
			return
		}
		if err := store.Put(r.Context(), s); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		_ = json.NewEncoder(w).Encode(redact(s))
	}
}

// exportResult is the client-facing download document for a completed
// session.
type exportResult struct {
	Score          int            `json:"score"`
	Responses      map[int]string `json:"responses"`
	TotalQuestions int            `json:"total_questions"`
}

func ResultExportHandler(store quiz.SessionStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := ownSession(w, r, store)
		if !ok {
			return
		}
		if s.Status != quiz.StatusCompleted {
			http.Error(w, "session not completed", http.StatusConflict)
			return
		}
		w.Header().Set("Content-Disposition", `attachment; filename="resultados.json"`)
		_ = json.NewEncoder(w).Encode(exportResult{
			Score:          s.Score,
			Responses:      s.Responses,
			TotalQuestions: len(s.Questions),
		})
	}
}

// ownSession loads the URL's session and enforces that it belongs to the
// caller. Foreign sessions look like missing ones.
func ownSession(w http.ResponseWriter, r *http.Request, store quiz.SessionStore) (*quiz.Session, bool) {
	id := chi.URLParam(r, "sessionID")
	s, err := store.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, quiz.ErrSessionNotFound) {
			http.Error(w, "session not found", http.StatusNotFound)
		} else {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
		return nil, false
	}
	claims := auth.ClaimsFromContext(r.Context())
	if claims == nil || claims.Sub != s.User {
		http.Error(w, "session not found", http.StatusNotFound)
		return nil, false
	}
	return s, true
}

// redact strips the answer key before a session is served to its taker.
func redact(s *quiz.Session) *quiz.Session {
	out := *s
	out.Questions = make(quiz.QuestionSet, len(s.Questions))
	for i, q := range s.Questions {
		q.CorrectAnswer = ""
		out.Questions[i] = q
	}
	return &out
}

func writeQuizError(w http.ResponseWriter, err error) {
	var verr *quiz.ValidationError
	switch {
	case errors.As(err, &verr):
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		_ = json.NewEncoder(w).Encode(map[string]any{"errors": verr.Issues})
	case errors.Is(err, quiz.ErrDecode):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, quiz.ErrEmptyQuestionSet), errors.Is(err, quiz.ErrUnknownQuestionType):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	case errors.Is(err, quiz.ErrSessionCompleted), errors.Is(err, quiz.ErrSessionNotStarted):
		http.Error(w, err.Error(), http.StatusConflict)
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
