package quiz

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	ErrEmptyQuestionSet    = errors.New("question set is empty")
	ErrUnknownQuestionType = errors.New("unknown question type")
	ErrSessionNotStarted   = errors.New("session not started")
	ErrSessionCompleted    = errors.New("session already completed")
)

// Start begins a session over a validated snapshot at the first question.
func Start(user string, questions QuestionSet) (*Session, error) {
	if len(questions) == 0 {
		return nil, ErrEmptyQuestionSet
	}
	return &Session{
		ID:        uuid.NewString(),
		User:      user,
		Questions: questions,
		Responses: map[int]string{},
		Status:    StatusInProgress,
	}, nil
}

// Submit records the normalized answer under the current index and advances.
// An index that already holds a response is overwritten: last write wins.
// Answering the final question completes the session and computes the score
// against the snapshot's answer key.
func Submit(s *Session, rawAnswer string) error {
	switch s.Status {
	case StatusNotStarted:
		return ErrSessionNotStarted
	case StatusCompleted:
		return ErrSessionCompleted
	}

	q := s.Questions[s.CurrentIndex]
	switch q.Kind {
	case KindOpen, KindTrueFalse, KindMultipleChoice:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownQuestionType, q.Kind)
	}

	if s.Responses == nil {
		s.Responses = map[int]string{}
	}
	s.Responses[s.CurrentIndex] = Normalize(rawAnswer)

	s.CurrentIndex++
	if s.CurrentIndex < len(s.Questions) {
		return nil
	}
	s.Status = StatusCompleted
	s.Score = Score(s.Responses, s.Questions.CorrectAnswers())
	return nil
}

// Reset clears responses, score and position, returning the session to
// NotStarted. User and question snapshot are preserved; use Restart to swap
// in a different snapshot.
func Reset(s *Session) {
	s.Responses = map[int]string{}
	s.Score = 0
	s.CurrentIndex = 0
	s.Status = StatusNotStarted
}

// Resume re-enters InProgress at the current position after a Reset.
func Resume(s *Session) error {
	if len(s.Questions) == 0 {
		return ErrEmptyQuestionSet
	}
	if s.Status == StatusCompleted {
		return ErrSessionCompleted
	}
	s.Status = StatusInProgress
	return nil
}

// Restart resets the session and replaces its snapshot with a new set,
// re-entering InProgress at the first question.
func Restart(s *Session, questions QuestionSet) error {
	if len(questions) == 0 {
		return ErrEmptyQuestionSet
	}
	Reset(s)
	s.Questions = questions
	s.Status = StatusInProgress
	return nil
}
