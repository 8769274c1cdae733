// Package devserver is a self-contained local implementation of the judge
// platform's HTTP contract, backed by embedded SQLite. Grading is a
// deterministic stand-in; the package exists so the CLI and the test suite
// can run end-to-end without the production backend.
package devserver

import (
	"code_judge_cli/internal/common/security"
	"code_judge_cli/internal/devserver/store"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/jwtauth/v5"
)

func NewRouter(users *store.UserStore, challenges *store.ChallengeStore, submissions *store.SubmissionStore) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Timeout(60 * time.Second))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	authHandler := &AuthHandler{users: users}
	userHandler := &UserHandler{users: users}
	challengeHandler := &ChallengeHandler{challenges: challenges}
	submissionHandler := &SubmissionHandler{challenges: challenges, submissions: submissions}

	r.Route("/auth", func(auth chi.Router) {
		auth.Post("/login", authHandler.login)
		auth.Post("/register", authHandler.register)
	})

	r.Group(func(protected chi.Router) {
		protected.Use(jwtauth.Verifier(security.TokenAuth))
		protected.Use(Authenticator)

		protected.Route("/user", func(user chi.Router) {
			user.Get("/me", userHandler.me)
			user.Put("/update/role", userHandler.updateRole)
			user.Get("/pagination", userHandler.pagination)
		})

		protected.Route("/challenge", func(challenge chi.Router) {
			challenge.Get("/pagination", challengeHandler.pagination)
			challenge.Get("/get/{id}", challengeHandler.get)
			challenge.Post("/create", challengeHandler.create)
			challenge.Put("/update/{id}", challengeHandler.update)
			challenge.Delete("/delete/{id}", challengeHandler.delete)
		})

		protected.Route("/submission", func(submission chi.Router) {
			submission.Post("/submit", submissionHandler.submit)
			submission.Get("/pagination", submissionHandler.pagination)
			submission.Get("/get/{id}", submissionHandler.get)
		})
	})

	return r
}
