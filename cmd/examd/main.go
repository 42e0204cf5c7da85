package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	api "github.com/edusphere/exam-engine/internal/api/http"
	"github.com/edusphere/exam-engine/internal/attempt"
	"github.com/edusphere/exam-engine/internal/auth"
	"github.com/edusphere/exam-engine/internal/bank"
	"github.com/edusphere/exam-engine/internal/config"
	"github.com/edusphere/exam-engine/internal/db"
	"github.com/edusphere/exam-engine/internal/examcfg"
	"github.com/edusphere/exam-engine/internal/proctor"
	"github.com/edusphere/exam-engine/internal/rbac"
	"github.com/edusphere/exam-engine/internal/school"
)

func main() {
	cfg := config.FromEnv()

	// --- DB ---
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	dbh, err := db.Open(ctx, db.Driver(cfg.DBDriver), cfg.DBDSN)
	if err != nil {
		log.Fatalf("db open failed: %v", err)
	}

	// --- Stores & collaborators ---
	dir := school.NewSQLDirectory(dbh)
	gradebook := school.NewSQLGradebook()
	audit := school.NewSQLAuditSink(dbh)

	bankStore := bank.NewSQLStore(dbh)
	configStore := examcfg.NewSQLStore(dbh)
	attemptStore := attempt.NewSQLStore(dbh, cfg.DBDriver, gradebook)
	proctorStore := proctor.NewSQLStore(dbh)

	configSvc := examcfg.NewService(configStore, bankStore, dir)
	attemptSvc := attempt.NewService(attemptStore, configStore, dir, audit, cfg.AnswerBatchLimit)
	proctorSvc := proctor.NewService(proctorStore, proctor.NewAttemptOwner(dbh))

	// --- Auth ---
	authSvc := auth.NewAuthService(cfg.AuthSecret, time.Duration(cfg.TokenTTLMins)*time.Minute)

	// --- Router ---
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Post("/auth/login", auth.LoginHandler(authSvc, dbh))

	// Protected API (JWT -> identity+role in context -> RBAC)
	r.Group(func(pr chi.Router) {
		pr.Use(auth.JWTMiddleware(authSvc))

		// Question bank (staff)
		pr.With(rbac.Require("question:manage")).Post("/categories", api.CreateCategoryHandler(bankStore))
		pr.With(rbac.Require("question:manage")).Put("/categories/{categoryID}", api.UpdateCategoryHandler(bankStore))
		pr.With(rbac.Require("question:manage")).Delete("/categories/{categoryID}", api.DeleteCategoryHandler(bankStore))

		pr.With(rbac.Require("question:manage")).Post("/questions", api.CreateQuestionHandler(bankStore))
		pr.With(rbac.Require("question:manage")).Put("/questions/{questionID}", api.UpdateQuestionHandler(bankStore))
		pr.With(rbac.Require("question:manage")).Delete("/questions/{questionID}", api.DeleteQuestionHandler(bankStore))
		pr.With(rbac.Require("question:view")).Get("/questions", api.ListQuestionsHandler(bankStore))

		// Exam configuration (staff)
		pr.With(rbac.Require("config:manage")).Post("/exam-configs", api.CreateConfigHandler(configSvc))
		pr.With(rbac.Require("config:view")).Get("/exam-configs/{configID}", api.GetConfigHandler(configSvc))
		pr.With(rbac.Require("config:manage")).Patch("/exam-configs/{configID}", api.PatchConfigHandler(configSvc))
		pr.With(rbac.Require("config:manage")).Delete("/exam-configs/{configID}", api.DeleteConfigHandler(configSvc))
		pr.With(rbac.Require("config:manage")).Post("/exam-configs/{configID}/questions", api.AddConfigQuestionsHandler(configSvc))
		pr.With(rbac.Require("config:view")).Get("/exam-configs/{configID}/questions", api.ListConfigQuestionsHandler(configSvc))

		// Student flow
		pr.With(rbac.Require("attempt:start")).Post("/exam-configs/{configID}/attempts", api.StartAttemptHandler(attemptSvc))
		pr.With(rbac.Require("attempt:view-own")).Get("/attempts/{attemptID}/questions", api.AttemptQuestionsHandler(attemptSvc))
		pr.With(rbac.Require("attempt:save")).Post("/attempts/{attemptID}/answers", api.SaveAnswersHandler(attemptSvc))
		pr.With(rbac.Require("attempt:submit")).Post("/attempts/{attemptID}/submit", api.SubmitAttemptHandler(attemptSvc))
		pr.With(rbac.Require("proctor:append")).Post("/attempts/{attemptID}/events", api.AppendProctorEventHandler(proctorSvc))

		// Read-back (own or staff audit)
		pr.With(rbac.RequireAny("attempt:view-own", "attempt:view-all")).Get("/attempts/{attemptID}", api.GetAttemptHandler(attemptSvc))
		pr.With(rbac.RequireAny("attempt:view-own", "attempt:view-all")).Get("/attempts/{attemptID}/answers", api.AttemptAnswersHandler(attemptSvc))
		pr.With(rbac.Require("attempt:view-all")).Get("/attempts", api.ListAttemptsHandler(attemptSvc))
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })

	log.Printf("listening on %s (db=%s)", cfg.HTTPAddr, cfg.DBDriver)
	log.Fatal(http.ListenAndServe(cfg.HTTPAddr, r))
}
