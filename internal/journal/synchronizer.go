package journal

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ahsanfayaz52/hopperhelps/internal/common"
	"github.com/ahsanfayaz52/hopperhelps/internal/config"
	"github.com/ahsanfayaz52/hopperhelps/internal/models"
)

// Action says what a synchronization wrote.
type Action string

const (
	ActionNone    Action = "none"
	ActionCreated Action = "created"
	ActionUpdated Action = "updated"
	ActionCleared Action = "cleared"
)

type SyncResult struct {
	// Summary is the stored summary after the run, nil when the day has none.
	Summary *models.DaySummary
	Action  Action
}

// SyncPolicy selects how edge cases of synchronization are handled.
type SyncPolicy struct {
	// EmptyDay is config.EmptyDayRetain or config.EmptyDayClear.
	EmptyDay string
	// Conflict is config.ConflictLastWriterWins or config.ConflictCompareAndSwap.
	Conflict string
	// Retries is how many extra attempts follow a lost race.
	Retries int
}

func PolicyFromConfig(cfg *config.Config) SyncPolicy {
	return SyncPolicy{
		EmptyDay: cfg.EmptyDayPolicy,
		Conflict: cfg.ConflictPolicy,
		Retries:  cfg.SyncRetries,
	}
}

// Synchronizer keeps a day's summary equal to the derived fields of its
// latest note.
type Synchronizer struct {
	notes     NoteStore
	summaries SummaryStore
	policy    SyncPolicy
	now       func() time.Time
}

func NewSynchronizer(notes NoteStore, summaries SummaryStore, policy SyncPolicy) *Synchronizer {
	if policy.EmptyDay == "" {
		policy.EmptyDay = config.EmptyDayRetain
	}
	if policy.Conflict == "" {
		policy.Conflict = config.ConflictLastWriterWins
	}
	return &Synchronizer{
		notes:     notes,
		summaries: summaries,
		policy:    policy,
		now:       serverTime,
	}
}

// Synchronize recomputes the summary for (userID, dateKey) from the full note
// set and writes it only when it changed. Running it again on an unchanged
// note set performs no writes.
func (s *Synchronizer) Synchronize(ctx context.Context, userID, dateKey string) (*SyncResult, error) {
	if userID == "" || dateKey == "" {
		return nil, fmt.Errorf("synchronize: %w", common.ErrInvalidInput)
	}

	var err error
	for attempt := 0; attempt <= s.policy.Retries; attempt++ {
		var res *SyncResult
		res, err = s.syncOnce(ctx, userID, dateKey)
		if err == nil {
			return res, nil
		}
		if !errors.Is(err, common.ErrConflict) || ctx.Err() != nil {
			return nil, err
		}
	}
	return nil, err
}

func (s *Synchronizer) syncOnce(ctx context.Context, userID, dateKey string) (*SyncResult, error) {
	fail := func(op string, err error) error {
		return &StorageError{Op: op, UserID: userID, DateKey: dateKey, Err: err}
	}

	notes, err := s.notes.List(ctx, userID, dateKey)
	if err != nil {
		return nil, fail("list notes", err)
	}

	var candidate models.Derived
	if latest := LatestNote(notes); latest != nil {
		candidate = latest.Derived
	}

	existing, err := s.summaries.Get(ctx, userID, dateKey)
	if err != nil {
		if !errors.Is(err, common.ErrNotFound) {
			return nil, fail("read summary", err)
		}
		existing = nil
	}

	switch {
	case existing == nil && len(notes) == 0:
		return &SyncResult{Action: ActionNone}, nil

	case existing == nil:
		summary := &models.DaySummary{
			UserID:    userID,
			DateKey:   dateKey,
			Derived:   candidate,
			CreatedAt: EarliestNote(notes).CreatedAt,
			UpdatedAt: s.now(),
		}
		if err := s.summaries.Create(ctx, summary); err != nil {
			return nil, fail("create summary", err)
		}
		return &SyncResult{Summary: summary, Action: ActionCreated}, nil

	case len(notes) == 0:
		if s.policy.EmptyDay != config.EmptyDayClear {
			return &SyncResult{Summary: existing, Action: ActionNone}, nil
		}
		if err := s.summaries.Delete(ctx, userID, dateKey); err != nil {
			if errors.Is(err, common.ErrNotFound) {
				return &SyncResult{Action: ActionNone}, nil
			}
			return nil, fail("clear summary", err)
		}
		return &SyncResult{Action: ActionCleared}, nil

	case existing.Derived == candidate:
		return &SyncResult{Summary: existing, Action: ActionNone}, nil
	}

	updated := *existing
	updated.Derived = candidate
	updated.UpdatedAt = s.now()
	guard := s.policy.Conflict == config.ConflictCompareAndSwap
	if err := s.summaries.Update(ctx, &updated, guard); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			// deleted between read and write; the retry recreates it
			err = fmt.Errorf("%w: summary removed concurrently", common.ErrConflict)
		}
		return nil, fail("update summary", err)
	}
	return &SyncResult{Summary: &updated, Action: ActionUpdated}, nil
}

// LatestNote returns the note with the greatest CreatedAt. Ties go to the one
// that comes last in notes. It returns nil for an empty slice.
func LatestNote(notes []models.Note) *models.Note {
	var latest *models.Note
	for i := range notes {
		if latest == nil || !notes[i].CreatedAt.Before(latest.CreatedAt) {
			latest = &notes[i]
		}
	}
	return latest
}

// EarliestNote returns the note with the smallest CreatedAt, first on ties.
func EarliestNote(notes []models.Note) *models.Note {
	var earliest *models.Note
	for i := range notes {
		if earliest == nil || notes[i].CreatedAt.Before(earliest.CreatedAt) {
			earliest = &notes[i]
		}
	}
	return earliest
}

func serverTime() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}
