package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	api "github.com/quizdesk/quizdesk/internal/api/http"
	"github.com/quizdesk/quizdesk/internal/auth"
	"github.com/quizdesk/quizdesk/internal/config"
	"github.com/quizdesk/quizdesk/internal/db"
	"github.com/quizdesk/quizdesk/internal/errlog"
	"github.com/quizdesk/quizdesk/internal/keys"
	"github.com/quizdesk/quizdesk/internal/logger"
	"github.com/quizdesk/quizdesk/internal/quiz"
	"github.com/quizdesk/quizdesk/internal/results"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	zl, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	dbh, err := db.Open(ctx, db.Driver(cfg.DBDriver), cfg.DBDSN)
	if err != nil {
		zl.Fatal("db open failed", zap.Error(err))
	}

	// Key material is loaded (or generated and persisted) exactly once and
	// shared read-only for the process lifetime.
	km, err := keys.LoadOrCreate(cfg.KeyFile)
	if err != nil {
		zl.Fatal("encryption key", zap.Error(err))
	}

	validator := quiz.NewValidator(errlog.New(cfg.ErrorLog))
	quizStore := quiz.NewSQLStore(dbh)
	resultStore := results.NewStore(dbh, km)
	creds := auth.NewCredentialStore(dbh)
	authSvc := auth.NewService(cfg.AuthSecret, cfg.AdminUser)

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Post("/auth/register", api.RegisterHandler(creds))
	r.Post("/auth/login", api.LoginHandler(authSvc, creds))

	r.Group(func(pr chi.Router) {
		pr.Use(auth.JWTMiddleware(authSvc))

		pr.Post("/sessions", api.StartSessionHandler(validator, quizStore, zl))
		pr.Get("/sessions/{sessionID}", api.GetSessionHandler(quizStore))
		pr.Post("/sessions/{sessionID}/answers", api.SubmitAnswerHandler(quizStore, resultStore, zl))
		pr.Post("/sessions/{sessionID}/reset", api.ResetSessionHandler(validator, quizStore))
		pr.Post("/sessions/{sessionID}/resume", api.ResumeSessionHandler(quizStore))
		pr.Get("/sessions/{sessionID}/result", api.ResultExportHandler(quizStore))

		// Reporting surface, administrator only
		pr.With(auth.RequireAdmin).Get("/results", api.ListResultsHandler(resultStore))
		pr.With(auth.RequireAdmin).Get("/stats", api.StatsHandler(resultStore))
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })

	zl.Info("listening", zap.String("addr", cfg.HTTPAddr), zap.String("db", cfg.DBDriver))
	if err := http.ListenAndServe(cfg.HTTPAddr, r); err != nil {
		zl.Fatal("server", zap.Error(err))
	}
}
