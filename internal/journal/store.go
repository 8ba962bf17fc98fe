package journal

import (
	"context"
	"time"

	"github.com/ahsanfayaz52/hopperhelps/internal/models"
)

// NoteStore persists notes keyed by (user, date, id).
type NoteStore interface {
	Create(ctx context.Context, n *models.Note) error
	Get(ctx context.Context, userID, dateKey, id string) (*models.Note, error)
	Update(ctx context.Context, n *models.Note) error
	Delete(ctx context.Context, userID, dateKey, id string) error
	// List returns the day's notes ascending by creation time.
	List(ctx context.Context, userID, dateKey string) ([]models.Note, error)
	ListSince(ctx context.Context, userID string, since time.Time, limit int) ([]models.Note, error)
	ListDateKeys(ctx context.Context, userID string) ([]string, error)
}

// SummaryStore persists one DaySummary per (user, date).
type SummaryStore interface {
	Get(ctx context.Context, userID, dateKey string) (*models.DaySummary, error)
	Create(ctx context.Context, s *models.DaySummary) error
	Update(ctx context.Context, s *models.DaySummary, guard bool) error
	Delete(ctx context.Context, userID, dateKey string) error
	ListRange(ctx context.Context, userID, from, to string) ([]models.DaySummary, error)
	ListDateKeys(ctx context.Context, userID string) ([]string, error)
}

type DayLoader interface {
	GetDayEntry(ctx context.Context, userID, dateKey string) (*models.DayEntry, error)
}

// Analyzer turns a day's combined text into derived mood fields.
type Analyzer interface {
	Derive(ctx context.Context, text string) (models.Derived, error)
}
