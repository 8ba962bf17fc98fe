package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/ahsanfayaz52/hopperhelps/internal/ai"
	"github.com/ahsanfayaz52/hopperhelps/internal/auth"
	"github.com/ahsanfayaz52/hopperhelps/internal/journal"
	"github.com/ahsanfayaz52/hopperhelps/internal/logging"
)

const (
	recentWindow  = 7 * 24 * time.Hour
	recentEntries = 20
)

type MoodAnalyzer interface {
	Analyze(ctx context.Context, text string) (*ai.Analysis, error)
}

type Recommender interface {
	Recommend(ctx context.Context, rc ai.RecommendContext) (*ai.Recommendation, error)
}

type AIHandler struct {
	analyzer    MoodAnalyzer
	recommender Recommender
	journal     *journal.Service
	log         logging.Logger
	now         func() time.Time
}

func NewAIHandler(analyzer MoodAnalyzer, recommender Recommender, journalSvc *journal.Service, log logging.Logger) *AIHandler {
	return &AIHandler{
		analyzer:    analyzer,
		recommender: recommender,
		journal:     journalSvc,
		log:         log,
		now:         time.Now,
	}
}

type analyzeRequest struct {
	Text *string `json:"text"`
}

func (h *AIHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeInvalid(w, ai.FieldError{Message: err.Error()})
		return
	}
	if req.Text == nil {
		writeInvalid(w, ai.FieldError{Path: "text", Message: "Required"})
		return
	}
	if strings.TrimSpace(*req.Text) == "" {
		writeInvalid(w, ai.FieldError{Path: "text", Message: "Please enter some text to analyze"})
		return
	}

	analysis, err := h.analyzer.Analyze(r.Context(), *req.Text)
	if err != nil {
		h.log.Error(r.Context(), "mood analysis failed", "err", err)
		writeError(w, http.StatusInternalServerError, "Failed to analyze mood")
		return
	}
	writeJSON(w, http.StatusOK, analysis)
}

type recommendRequest struct {
	Context *ai.RecommendContext `json:"context"`
}

func (h *AIHandler) Recommend(w http.ResponseWriter, r *http.Request) {
	var req recommendRequest
	if err := decodeJSON(r, &req); err != nil {
		writeInvalid(w, ai.FieldError{Message: err.Error()})
		return
	}
	if req.Context == nil {
		writeInvalid(w, ai.FieldError{Path: "context", Message: "Required"})
		return
	}
	h.recommend(w, r, *req.Context)
}

// RecommendFromHistory builds the context from the last week of notes.
// Repeated "topic" query parameters become preferred topics.
func (h *AIHandler) RecommendFromHistory(w http.ResponseWriter, r *http.Request) {
	userID := auth.GetUserIDFromContext(r.Context())
	now := h.now()

	notes, err := h.journal.RecentEntries(r.Context(), userID, now.Add(-recentWindow), recentEntries)
	if err != nil {
		writeServiceError(w, r, h.log, err)
		return
	}
	h.recommend(w, r, ai.BuildContext(now, notes, r.URL.Query()["topic"]))
}

func (h *AIHandler) recommend(w http.ResponseWriter, r *http.Request, rc ai.RecommendContext) {
	rec, err := h.recommender.Recommend(r.Context(), rc)
	if err != nil {
		var verr *ai.ValidationError
		if errors.As(err, &verr) {
			writeInvalid(w, verr.Fields...)
			return
		}
		h.log.Error(r.Context(), "recommendation failed", "err", err)
		writeJSON(w, http.StatusInternalServerError, errorBody{
			Error:   "Failed to generate recommendation",
			Message: err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, rec)
}
