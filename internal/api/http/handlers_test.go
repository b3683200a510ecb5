package http_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	api "github.com/quizdesk/quizdesk/internal/api/http"
	"github.com/quizdesk/quizdesk/internal/auth"
	"github.com/quizdesk/quizdesk/internal/db"
	"github.com/quizdesk/quizdesk/internal/errlog"
	"github.com/quizdesk/quizdesk/internal/keys"
	"github.com/quizdesk/quizdesk/internal/quiz"
	"github.com/quizdesk/quizdesk/internal/results"
)

const quizDoc = `{"perguntas":[
	{"texto":"Capital da França?","tipo":"aberta","resposta_correta":"Paris"},
	{"texto":"2+2=4","tipo":"verdadeiro_falso","resposta_correta":"verdadeiro"}
]}`

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	dir := t.TempDir()

	dbh, err := db.Open(context.Background(), db.DriverSQLite, "file:"+filepath.Join(dir, "quiz.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = dbh.Close() })

	km, err := keys.LoadOrCreate(filepath.Join(dir, "encryption.key"))
	if err != nil {
		t.Fatalf("key manager: %v", err)
	}

	validator := quiz.NewValidator(errlog.New(filepath.Join(dir, "error_log.json")))
	quizStore := quiz.NewSQLStore(dbh)
	resultStore := results.NewStore(dbh, km)
	creds := auth.NewCredentialStore(dbh)
	authSvc := auth.NewService("test-secret", "admin")
	zl := zap.NewNop()

	r := chi.NewRouter()
	r.Post("/auth/register", api.RegisterHandler(creds))
	r.Post("/auth/login", api.LoginHandler(authSvc, creds))
	r.Group(func(pr chi.Router) {
		pr.Use(auth.JWTMiddleware(authSvc))
		pr.Post("/sessions", api.StartSessionHandler(validator, quizStore, zl))
		pr.Get("/sessions/{sessionID}", api.GetSessionHandler(quizStore))
		pr.Post("/sessions/{sessionID}/answers", api.SubmitAnswerHandler(quizStore, resultStore, zl))
		pr.Post("/sessions/{sessionID}/reset", api.ResetSessionHandler(validator, quizStore))
		pr.Get("/sessions/{sessionID}/result", api.ResultExportHandler(quizStore))
		pr.With(auth.RequireAdmin).Get("/stats", api.StatsHandler(resultStore))
	})

	ts := httptest.NewServer(r)
	t.Cleanup(ts.Close)
	return ts
}

func do(t *testing.T, method, url, token, body string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	return resp
}

func login(t *testing.T, ts *httptest.Server, username, password string) string {
	t.Helper()
	body := `{"username":"` + username + `","password":"` + password + `"}`
	if resp := do(t, "POST", ts.URL+"/auth/register", "", body); resp.StatusCode != http.StatusCreated {
		t.Fatalf("register %s: status %d", username, resp.StatusCode)
	}
	resp := do(t, "POST", ts.URL+"/auth/login", "", body)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login %s: status %d", username, resp.StatusCode)
	}
	var out map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode token: %v", err)
	}
	return out["access_token"]
}

func TestQuizFlowEndToEnd(t *testing.T) {
	ts := newTestServer(t)
	token := login(t, ts, "ana", "senha")

	resp := do(t, "POST", ts.URL+"/sessions", token, quizDoc)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("start session: status %d", resp.StatusCode)
	}
	var sess quiz.Session
	if err := json.NewDecoder(resp.Body).Decode(&sess); err != nil {
		t.Fatalf("decode session: %v", err)
	}
	if sess.Status != quiz.StatusInProgress || sess.CurrentIndex != 0 {
		t.Fatalf("fresh session: %+v", sess)
	}
	for _, q := range sess.Questions {
		if q.CorrectAnswer != "" {
			t.Fatalf("answer key leaked to taker")
		}
	}

	resp = do(t, "POST", ts.URL+"/sessions/"+sess.ID+"/answers", token, `{"answer":"Paris!"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("first answer: status %d", resp.StatusCode)
	}
	resp = do(t, "POST", ts.URL+"/sessions/"+sess.ID+"/answers", token, `{"answer":"falso"}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("second answer: status %d", resp.StatusCode)
	}
	var done quiz.Session
	_ = json.NewDecoder(resp.Body).Decode(&done)
	if done.Status != quiz.StatusCompleted || done.Score != 1 {
		t.Fatalf("completed session: status=%s score=%d", done.Status, done.Score)
	}

	resp = do(t, "GET", ts.URL+"/sessions/"+sess.ID+"/result", token, "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("result export: status %d", resp.StatusCode)
	}
	var export struct {
		Score          int            `json:"score"`
		Responses      map[int]string `json:"responses"`
		TotalQuestions int            `json:"total_questions"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&export); err != nil {
		t.Fatalf("decode export: %v", err)
	}
	if export.Score != 1 || export.TotalQuestions != 2 || export.Responses[0] != "paris" {
		t.Fatalf("export document: %+v", export)
	}
}

func TestStartSessionRejectsInvalidDocument(t *testing.T) {
	ts := newTestServer(t)
	token := login(t, ts, "ana", "senha")

	resp := do(t, "POST", ts.URL+"/sessions", token, `{"perguntas":[{"tipo":"aberta"}]}`)
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("invalid doc: status %d", resp.StatusCode)
	}
	var out struct {
		Errors []string `json:"errors"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode errors: %v", err)
	}
	if len(out.Errors) == 0 {
		t.Fatalf("issue list not returned")
	}
}

func TestSessionOwnership(t *testing.T) {
	ts := newTestServer(t)
	owner := login(t, ts, "ana", "senha")
	other := login(t, ts, "bruno", "senha")

	resp := do(t, "POST", ts.URL+"/sessions", owner, quizDoc)
	var sess quiz.Session
	_ = json.NewDecoder(resp.Body).Decode(&sess)

	if resp := do(t, "GET", ts.URL+"/sessions/"+sess.ID, other, ""); resp.StatusCode != http.StatusNotFound {
		t.Fatalf("foreign session visible: status %d", resp.StatusCode)
	}
	if resp := do(t, "GET", ts.URL+"/sessions/"+sess.ID, owner, ""); resp.StatusCode != http.StatusOK {
		t.Fatalf("own session: status %d", resp.StatusCode)
	}
}

func TestStatsRequiresAdmin(t *testing.T) {
	ts := newTestServer(t)
	user := login(t, ts, "ana", "senha")
	admin := login(t, ts, "admin", "senha")

	if resp := do(t, "GET", ts.URL+"/stats", user, ""); resp.StatusCode != http.StatusForbidden {
		t.Fatalf("non-admin stats: status %d", resp.StatusCode)
	}
	resp := do(t, "GET", ts.URL+"/stats", admin, "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("admin stats: status %d", resp.StatusCode)
	}
	var summary struct {
		DistinctUsers  int `json:"distinct_users"`
		TotalResponses int `json:"total_responses"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&summary); err != nil {
		t.Fatalf("decode summary: %v", err)
	}
	if summary.TotalResponses != 0 {
		t.Fatalf("expected empty summary, got %+v", summary)
	}
}
