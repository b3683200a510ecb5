package quiz

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrDecode marks an upload that is not even well-formed JSON. Everything
// past that point is reported through ValidationError instead.
var ErrDecode = errors.New("malformed question document")

const topLevelIssue = "O arquivo JSON deve conter uma chave 'perguntas' com uma lista de perguntas."

var requiredKeys = []string{"texto", "tipo", "resposta_correta"}

// ValidationError carries every structural problem found in an uploaded
// question document. Validation never stops at the first issue: the caller
// sees the complete list in one pass.
type ValidationError struct {
	Issues []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("question document invalid: %s", strings.Join(e.Issues, "; "))
}

// ErrorLog records validation failures durably. Satisfied by errlog.Log.
type ErrorLog interface {
	Append(issues []string) error
}

// Validator parses question documents and appends every failure to an
// append-only error log for later audit.
type Validator struct {
	log ErrorLog
}

func NewValidator(log ErrorLog) *Validator { return &Validator{log: log} }

// Parse validates raw and returns the ordered QuestionSet, logging the full
// issue list on failure. A logging failure never masks the validation
// result.
func (v *Validator) Parse(raw []byte) (QuestionSet, error) {
	qs, err := ParseQuestionSet(raw)
	var verr *ValidationError
	if errors.As(err, &verr) && v.log != nil {
		_ = v.log.Append(verr.Issues)
	}
	return qs, err
}

// ParseQuestionSet decodes and validates an uploaded question document.
// The document must be an object binding "perguntas" to an array; when that
// fails it is the single reported issue and per-question checks are
// skipped. Otherwise every question is checked and all issues are collected.
func ParseQuestionSet(raw []byte) (QuestionSet, error) {
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	rawList, issues := questionList(doc)
	if issues != nil {
		return nil, &ValidationError{Issues: issues}
	}

	for i, rq := range rawList {
		q, ok := rq.(map[string]any)
		if !ok {
			issues = append(issues, fmt.Sprintf("Pergunta %d: deve ser um objeto JSON.", i+1))
			continue
		}
		issues = append(issues, questionIssues(i+1, q)...)
	}
	if len(issues) > 0 {
		return nil, &ValidationError{Issues: issues}
	}

	qs := make(QuestionSet, 0, len(rawList))
	for _, rq := range rawList {
		qs = append(qs, buildQuestion(rq.(map[string]any)))
	}
	return qs, nil
}

func questionList(doc any) ([]any, []string) {
	obj, ok := doc.(map[string]any)
	if !ok {
		return nil, []string{topLevelIssue}
	}
	list, ok := obj["perguntas"].([]any)
	if !ok {
		return nil, []string{topLevelIssue}
	}
	return list, nil
}

// questionIssues applies every per-question rule; n is 1-based for
// messages. The rules are independent: a field can be reported both missing
// and, when present, mistyped or empty.
func questionIssues(n int, q map[string]any) []string {
	var issues []string

	var missing []string
	for _, key := range requiredKeys {
		if _, ok := q[key]; !ok {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		issues = append(issues, fmt.Sprintf("Pergunta %d: Chaves ausentes - %s", n, strings.Join(missing, ", ")))
	}

	for _, key := range requiredKeys {
		v, ok := q[key]
		if !ok {
			continue
		}
		if _, isString := v.(string); !isString {
			issues = append(issues, fmt.Sprintf("Pergunta %d: O campo '%s' deve ser uma string.", n, key))
		}
	}

	if tipo, _ := q["tipo"].(string); tipo == string(KindMultipleChoice) {
		issues = append(issues, optionIssues(n, q)...)
	}

	for _, key := range requiredKeys {
		if s, isString := q[key].(string); isString && s == "" {
			issues = append(issues, fmt.Sprintf("Pergunta %d: O valor de '%s' está vazio.", n, key))
		}
	}
	return issues
}

func optionIssues(n int, q map[string]any) []string {
	opts, ok := q["opcoes"].([]any)
	if !ok {
		return []string{fmt.Sprintf("Pergunta %d: 'multipla_escolha' requer 'opcoes' do tipo lista.", n)}
	}
	var issues []string
	if len(opts) == 0 {
		issues = append(issues, fmt.Sprintf("Pergunta %d: 'opcoes' não pode ser vazia.", n))
	}
	for _, o := range opts {
		if _, isString := o.(string); !isString {
			issues = append(issues, fmt.Sprintf("Pergunta %d: 'opcoes' deve conter apenas strings.", n))
			break
		}
	}
	return issues
}

// buildQuestion assumes the question already passed validation.
func buildQuestion(q map[string]any) Question {
	out := Question{
		Text:          q["texto"].(string),
		Kind:          Kind(q["tipo"].(string)),
		CorrectAnswer: q["resposta_correta"].(string),
	}
	if out.Kind == KindMultipleChoice {
		raw := q["opcoes"].([]any)
		out.Options = make([]string, len(raw))
		for i, o := range raw {
			out.Options[i] = o.(string)
		}
	}
	return out
}
