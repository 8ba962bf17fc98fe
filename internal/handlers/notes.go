package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/ahsanfayaz52/hopperhelps/internal/ai"
	"github.com/ahsanfayaz52/hopperhelps/internal/auth"
	"github.com/ahsanfayaz52/hopperhelps/internal/calendar"
	"github.com/ahsanfayaz52/hopperhelps/internal/common"
	"github.com/ahsanfayaz52/hopperhelps/internal/journal"
	"github.com/ahsanfayaz52/hopperhelps/internal/logging"
	"github.com/ahsanfayaz52/hopperhelps/internal/models"
	"github.com/gorilla/mux"
)

// JournalHandler serves the day and note API for the signed-in user.
type JournalHandler struct {
	journal *journal.Service
	authSvc *auth.Service
	log     logging.Logger
	now     func() time.Time
}

func NewJournalHandler(journalSvc *journal.Service, authSvc *auth.Service, log logging.Logger) *JournalHandler {
	return &JournalHandler{journal: journalSvc, authSvc: authSvc, log: log, now: time.Now}
}

func (h *JournalHandler) today() string {
	return h.now().UTC().Format(models.DateKeyLayout)
}

func (h *JournalHandler) DashboardHandler(w http.ResponseWriter, r *http.Request) {
	userID := auth.GetUserIDFromContext(r.Context())
	user, err := h.authSvc.User(r.Context(), userID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			auth.ClearSessionCookie(w, false)
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		writeServiceError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"email": user.Email,
		"today": h.today(),
	})
}

func (h *JournalHandler) ListDays(w http.ResponseWriter, r *http.Request) {
	userID := auth.GetUserIDFromContext(r.Context())
	query := r.URL.Query()

	from, to := query.Get("from"), query.Get("to")
	if from == "" && to == "" {
		from, to = h.today(), h.today()
	}

	days, err := h.journal.ListDays(r.Context(), userID, from, to)
	if err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"days": days})
}

func (h *JournalHandler) GetDay(w http.ResponseWriter, r *http.Request) {
	userID := auth.GetUserIDFromContext(r.Context())
	entry, err := h.journal.GetDay(r.Context(), userID, mux.Vars(r)["date"])
	if err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

type createNoteRequest struct {
	Content string `json:"content"`
	Analyze bool   `json:"analyze"`
}

func (h *JournalHandler) CreateNote(w http.ResponseWriter, r *http.Request) {
	userID := auth.GetUserIDFromContext(r.Context())

	var req createNoteRequest
	if err := decodeJSON(r, &req); err != nil {
		writeInvalid(w, ai.FieldError{Message: err.Error()})
		return
	}

	out, err := h.journal.CreateNote(r.Context(), userID, mux.Vars(r)["date"], req.Content, req.Analyze)
	if err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, out)
}

type updateNoteRequest struct {
	models.NotePatch
	Reanalyze bool `json:"reanalyze"`
}

func (h *JournalHandler) UpdateNote(w http.ResponseWriter, r *http.Request) {
	userID := auth.GetUserIDFromContext(r.Context())
	vars := mux.Vars(r)

	var req updateNoteRequest
	if err := decodeJSON(r, &req); err != nil {
		writeInvalid(w, ai.FieldError{Message: err.Error()})
		return
	}

	out, err := h.journal.UpdateNote(r.Context(), userID, vars["date"], vars["id"], req.NotePatch, req.Reanalyze)
	if err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *JournalHandler) DeleteNote(w http.ResponseWriter, r *http.Request) {
	userID := auth.GetUserIDFromContext(r.Context())
	vars := mux.Vars(r)

	out, err := h.journal.DeleteNote(r.Context(), userID, vars["date"], vars["id"])
	if err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *JournalHandler) AnalyzeNote(w http.ResponseWriter, r *http.Request) {
	userID := auth.GetUserIDFromContext(r.Context())
	vars := mux.Vars(r)

	out, err := h.journal.AnalyzeNote(r.Context(), userID, vars["date"], vars["id"])
	if err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *JournalHandler) SyncDay(w http.ResponseWriter, r *http.Request) {
	userID := auth.GetUserIDFromContext(r.Context())

	out, err := h.journal.Synchronize(r.Context(), userID, mux.Vars(r)["date"])
	if err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *JournalHandler) Calendar(w http.ResponseWriter, r *http.Request) {
	userID := auth.GetUserIDFromContext(r.Context())
	now := h.now().UTC()

	month := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	if m := r.URL.Query().Get("month"); m != "" {
		parsed, err := calendar.ParseMonth(m)
		if err != nil {
			writeInvalid(w, ai.FieldError{Path: "month", Message: "month must be formatted YYYY-MM"})
			return
		}
		month = parsed
	}

	from, to := calendar.Bounds(month)
	days, err := h.journal.ListDays(r.Context(), userID, from, to)
	if err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, calendar.Build(month, days, now))
}
