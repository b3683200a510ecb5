package auth_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/quizdesk/quizdesk/internal/auth"
	"github.com/quizdesk/quizdesk/internal/db"
)

func openStore(t *testing.T) *auth.CredentialStore {
	t.Helper()
	dsn := "file:" + filepath.Join(t.TempDir(), "quiz.db")
	dbh, err := db.Open(context.Background(), db.DriverSQLite, dsn)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = dbh.Close() })
	return auth.NewCredentialStore(dbh)
}

func TestRegisterDuplicate(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)

	if err := store.Register(ctx, "admin", "s3cret"); err != nil {
		t.Fatalf("first register: %v", err)
	}
	if err := store.Register(ctx, "admin", "other"); !errors.Is(err, auth.ErrDuplicateUser) {
		t.Fatalf("expected ErrDuplicateUser, got %v", err)
	}
}

func TestAuthenticate(t *testing.T) {
	ctx := context.Background()
	store := openStore(t)

	if err := store.Register(ctx, "ana", "correta"); err != nil {
		t.Fatalf("register: %v", err)
	}

	ok, err := store.Authenticate(ctx, "ana", "correta")
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if !ok {
		t.Fatalf("valid credentials rejected")
	}

	ok, err = store.Authenticate(ctx, "ana", "errada")
	if err != nil {
		t.Fatalf("authenticate wrong secret: %v", err)
	}
	if ok {
		t.Fatalf("wrong secret accepted")
	}

	ok, err = store.Authenticate(ctx, "ninguem", "x")
	if err != nil {
		t.Fatalf("authenticate unknown user: %v", err)
	}
	if ok {
		t.Fatalf("unknown user accepted")
	}
}

func TestIssueAndParse(t *testing.T) {
	svc := auth.NewService("test-secret", "admin")

	tok, err := svc.Issue("ana")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	claims, err := svc.Parse(tok)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.Sub != "ana" || claims.Role != auth.RoleUser {
		t.Fatalf("unexpected claims: %+v", claims)
	}

	tok, err = svc.Issue("admin")
	if err != nil {
		t.Fatalf("issue admin: %v", err)
	}
	claims, err = svc.Parse(tok)
	if err != nil {
		t.Fatalf("parse admin: %v", err)
	}
	if claims.Role != auth.RoleAdmin {
		t.Fatalf("admin user did not get admin role: %+v", claims)
	}

	if _, err := svc.Parse(tok + "garbage"); err == nil {
		t.Fatalf("tampered token accepted")
	}
}
