package quiz

// Kind is a question type. Values match the upload document's "tipo" field.
type Kind string

const (
	KindOpen           Kind = "aberta"
	KindTrueFalse      Kind = "verdadeiro_falso"
	KindMultipleChoice Kind = "multipla_escolha"
)

type Question struct {
	Text          string   `json:"texto"`
	Kind          Kind     `json:"tipo"`
	Options       []string `json:"opcoes,omitempty"` // multiple choice only
	CorrectAnswer string   `json:"resposta_correta,omitempty"`
}

// QuestionSet is a validated, ordered quiz. Insertion order defines the
// question index used everywhere downstream: responses, scoring and stored
// results are all keyed by it.
type QuestionSet []Question

// CorrectAnswers returns the index-keyed answer key.
func (qs QuestionSet) CorrectAnswers() map[int]string {
	out := make(map[int]string, len(qs))
	for i, q := range qs {
		out[i] = q.CorrectAnswer
	}
	return out
}

type Status string

const (
	StatusNotStarted Status = "not_started"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

// Session tracks one user's progress through a QuestionSet. The set is an
// immutable snapshot taken at start; only Submit and Reset mutate the rest.
type Session struct {
	ID           string         `json:"id"`
	User         string         `json:"user"`
	Questions    QuestionSet    `json:"questions"`
	CurrentIndex int            `json:"current_index"`
	Responses    map[int]string `json:"responses"`
	Score        int            `json:"score"`
	Status       Status         `json:"status"`
}
