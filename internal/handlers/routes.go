package handlers

import (
	"net/http"

	"github.com/ahsanfayaz52/hopperhelps/internal/auth"
	"github.com/ahsanfayaz52/hopperhelps/internal/journal"
	"github.com/ahsanfayaz52/hopperhelps/internal/logging"
	"github.com/ahsanfayaz52/hopperhelps/internal/middleware"
	"github.com/gorilla/mux"
)

type Deps struct {
	Log          logging.Logger
	DB           Pinger
	Auth         *auth.Service
	Journal      *journal.Service
	Analyzer     MoodAnalyzer
	Recommender  Recommender
	SecureCookie bool
}

// NewRouter registers every route. Session gating happens here, at routing
// time: protected routes need a valid session and auth-only pages bounce
// signed-in users to the dashboard.
func NewRouter(d Deps) *mux.Router {
	jwtService := d.Auth.Tokens()

	r := mux.NewRouter()
	r.Use(middleware.RequestLogger(d.Log))
	r.Use(middleware.Recoverer(d.Log))

	r.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/login", http.StatusFound)
	}).Methods("GET")
	r.HandleFunc("/healthz", HealthHandler(d.DB)).Methods("GET")

	registerHandler := RegisterHandler(d.Auth, d.SecureCookie, d.Log)
	loginHandler := LoginHandler(d.Auth, d.SecureCookie, d.Log)

	r.HandleFunc("/register", registerHandler).Methods("POST")
	r.HandleFunc("/login", loginHandler).Methods("POST")
	r.HandleFunc("/logout", LogoutHandler(d.SecureCookie)).Methods("GET", "POST")

	// Auth-only pages
	guest := r.NewRoute().Subrouter()
	guest.Use(auth.RedirectIfSession(jwtService))
	guest.HandleFunc("/register", registerHandler).Methods("GET")
	guest.HandleFunc("/login", loginHandler).Methods("GET")

	// Authenticated routes
	journalHandler := NewJournalHandler(d.Journal, d.Auth, d.Log)
	aiHandler := NewAIHandler(d.Analyzer, d.Recommender, d.Journal, d.Log)

	s := r.NewRoute().Subrouter()
	s.Use(auth.RequireSession(jwtService))
	s.HandleFunc("/dashboard", journalHandler.DashboardHandler).Methods("GET")

	api := s.PathPrefix("/api").Subrouter()
	api.HandleFunc("/analyze", aiHandler.Analyze).Methods("POST")
	api.HandleFunc("/recommend", aiHandler.Recommend).Methods("POST")
	api.HandleFunc("/recommend", aiHandler.RecommendFromHistory).Methods("GET")
	api.HandleFunc("/calendar", journalHandler.Calendar).Methods("GET")
	api.HandleFunc("/days", journalHandler.ListDays).Methods("GET")
	api.HandleFunc("/days/{date}", journalHandler.GetDay).Methods("GET")
	api.HandleFunc("/days/{date}/sync", journalHandler.SyncDay).Methods("POST")
	api.HandleFunc("/days/{date}/notes", journalHandler.CreateNote).Methods("POST")
	api.HandleFunc("/days/{date}/notes/{id}", journalHandler.UpdateNote).Methods("PATCH")
	api.HandleFunc("/days/{date}/notes/{id}", journalHandler.DeleteNote).Methods("DELETE")
	api.HandleFunc("/days/{date}/notes/{id}/analyze", journalHandler.AnalyzeNote).Methods("POST")

	return r
}
