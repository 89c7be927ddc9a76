package http

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"quizdesk/internal/auth"
)

// RouterConfig collects the handlers and settings the API is built from.
type RouterConfig struct {
	Quizzes       *QuizHandler
	Admin         *AdminHandler
	Stream        *WSHandler
	Auth          *auth.Service
	AllowedOrigin string
	// PublicDir is served under /api/static/ and at the root when set.
	PublicDir string
}

// NewRouter wires every route behind CORS and request logging.
func NewRouter(cfg RouterConfig) http.Handler {
	router := mux.NewRouter()

	router.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	}).Methods(http.MethodGet)

	router.HandleFunc("/api/admin/login", cfg.Admin.Login).Methods(http.MethodPost)
	router.HandleFunc("/api/questions/{quizId}", cfg.Quizzes.GetQuestions).Methods(http.MethodGet)
	router.HandleFunc("/api/submit", cfg.Quizzes.Submit).Methods(http.MethodPost)
	router.HandleFunc("/api/quizzes", cfg.Quizzes.ListQuizzes).Methods(http.MethodGet)

	superAdmin := auth.RequireRole(cfg.Auth, auth.RoleSuperAdmin)
	anyAdmin := auth.RequireRole(cfg.Auth, auth.RoleSuperAdmin, auth.RoleViewOnly)

	router.Handle("/api/quiz/create", superAdmin(http.HandlerFunc(cfg.Quizzes.CreateQuiz))).Methods(http.MethodPost)
	router.Handle("/api/results", anyAdmin(http.HandlerFunc(cfg.Admin.ListResults))).Methods(http.MethodGet)
	// registered before {id} so the stream path is not taken as an id
	router.Handle("/api/results/stream", anyAdmin(http.HandlerFunc(cfg.Stream.ServeWS))).Methods(http.MethodGet)
	router.Handle("/api/results/{id}", anyAdmin(http.HandlerFunc(cfg.Admin.GetResult))).Methods(http.MethodGet)

	if cfg.PublicDir != "" {
		files := http.FileServer(http.Dir(cfg.PublicDir))
		router.PathPrefix("/api/static/").Handler(staticHeaders(cfg.AllowedOrigin, http.StripPrefix("/api/static/", files)))
		router.PathPrefix("/").Handler(files).Methods(http.MethodGet, http.MethodHead)
	}

	origins := []string{cfg.AllowedOrigin}
	if cfg.AllowedOrigin == "" {
		origins = []string{"*"}
	}
	corsMiddleware := cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           300,
	})
	return logRequests(corsMiddleware.Handler(router))
}
