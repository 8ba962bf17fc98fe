package journal

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/ahsanfayaz52/hopperhelps/internal/logging"
	"github.com/ahsanfayaz52/hopperhelps/internal/models"
	"github.com/google/uuid"
)

const (
	MaxContentLength = 5000
	defaultRecent    = 20
)

// Service runs the note lifecycle: every mutation is stored first, then
// optionally analyzed, then the day summary is synchronized.
type Service struct {
	notes     NoteStore
	summaries SummaryStore
	days      DayLoader
	analyzer  Analyzer
	sync      *Synchronizer
	stale     *StaleSet
	log       logging.Logger

	now   func() time.Time
	newID func() string
}

// NewService wires the pipeline. analyzer may be nil, in which case every
// analyze step fails with ErrAnalysisUnavailable.
func NewService(notes NoteStore, summaries SummaryStore, days DayLoader, analyzer Analyzer,
	sync *Synchronizer, stale *StaleSet, log logging.Logger) *Service {
	return &Service{
		notes:     notes,
		summaries: summaries,
		days:      days,
		analyzer:  analyzer,
		sync:      sync,
		stale:     stale,
		log:       log,
		now:       serverTime,
		newID:     uuid.NewString,
	}
}

func (s *Service) CreateNote(ctx context.Context, userID, dateKey, content string, analyze bool) (*Outcome, error) {
	if err := ValidateDay(userID, dateKey); err != nil {
		return nil, err
	}
	content, err := validateContent(content)
	if err != nil {
		return nil, err
	}

	note := &models.Note{
		ID:        s.newID(),
		UserID:    userID,
		DateKey:   dateKey,
		Content:   content,
		CreatedAt: s.now(),
	}
	if err := s.notes.Create(ctx, note); err != nil {
		return nil, &StorageError{Op: "create note", UserID: userID, DateKey: dateKey, Err: err}
	}

	out := &Outcome{Note: note}
	out.record(StepStore, nil)
	s.log.Info(ctx, "note created", "user", userID, "date", dateKey, "note", note.ID)

	if analyze {
		s.analyze(ctx, out, note)
	}
	s.synchronize(ctx, out, userID, dateKey)
	return out, nil
}

func (s *Service) UpdateNote(ctx context.Context, userID, dateKey, noteID string, patch models.NotePatch, reanalyze bool) (*Outcome, error) {
	if err := ValidateDay(userID, dateKey); err != nil {
		return nil, err
	}
	if noteID == "" {
		return nil, invalid("id", "note id is required")
	}
	if patch.IsEmpty() && !reanalyze {
		return nil, invalid("patch", "nothing to update")
	}
	if err := validatePatch(&patch); err != nil {
		return nil, err
	}

	note, err := s.notes.Get(ctx, userID, dateKey, noteID)
	if err != nil {
		return nil, &StorageError{Op: "read note", UserID: userID, DateKey: dateKey, Err: err}
	}

	out := &Outcome{}
	if !patch.IsEmpty() {
		updated := patch.Apply(*note)
		if err := s.notes.Update(ctx, &updated); err != nil {
			return nil, &StorageError{Op: "update note", UserID: userID, DateKey: dateKey, Err: err}
		}
		note = &updated
		out.record(StepStore, nil)
	}
	out.Note = note

	if reanalyze {
		s.analyze(ctx, out, note)
	}
	s.synchronize(ctx, out, userID, dateKey)
	return out, nil
}

func (s *Service) DeleteNote(ctx context.Context, userID, dateKey, noteID string) (*Outcome, error) {
	if err := ValidateDay(userID, dateKey); err != nil {
		return nil, err
	}
	if noteID == "" {
		return nil, invalid("id", "note id is required")
	}

	if err := s.notes.Delete(ctx, userID, dateKey, noteID); err != nil {
		return nil, &StorageError{Op: "delete note", UserID: userID, DateKey: dateKey, Err: err}
	}

	out := &Outcome{}
	out.record(StepStore, nil)
	s.log.Info(ctx, "note deleted", "user", userID, "date", dateKey, "note", noteID)

	s.synchronize(ctx, out, userID, dateKey)
	return out, nil
}

// AnalyzeNote re-runs analysis of the day's text into the given note and then
// synchronizes. It is the retry path for a failed analyze step.
func (s *Service) AnalyzeNote(ctx context.Context, userID, dateKey, noteID string) (*Outcome, error) {
	if err := ValidateDay(userID, dateKey); err != nil {
		return nil, err
	}
	note, err := s.notes.Get(ctx, userID, dateKey, noteID)
	if err != nil {
		return nil, &StorageError{Op: "read note", UserID: userID, DateKey: dateKey, Err: err}
	}

	out := &Outcome{Note: note}
	s.analyze(ctx, out, note)
	s.synchronize(ctx, out, userID, dateKey)
	return out, nil
}

// Synchronize is the retry path for a stale day summary.
func (s *Service) Synchronize(ctx context.Context, userID, dateKey string) (*Outcome, error) {
	if err := ValidateDay(userID, dateKey); err != nil {
		return nil, err
	}
	out := &Outcome{}
	s.synchronize(ctx, out, userID, dateKey)
	return out, nil
}

func (s *Service) GetDay(ctx context.Context, userID, dateKey string) (*models.DayEntry, error) {
	if err := ValidateDay(userID, dateKey); err != nil {
		return nil, err
	}
	entry, err := s.days.GetDayEntry(ctx, userID, dateKey)
	if err != nil {
		return nil, &StorageError{Op: "read day", UserID: userID, DateKey: dateKey, Err: err}
	}
	if entry.Notes == nil {
		entry.Notes = []models.Note{}
	}
	return entry, nil
}

// ListDays returns the stored summaries with from <= date <= to.
func (s *Service) ListDays(ctx context.Context, userID, from, to string) ([]models.DaySummary, error) {
	if err := ValidateDay(userID, from); err != nil {
		return nil, err
	}
	if err := validateDateKey("to", to); err != nil {
		return nil, err
	}
	if to < from {
		return nil, invalid("to", "must not be before from")
	}

	days, err := s.summaries.ListRange(ctx, userID, from, to)
	if err != nil {
		return nil, &StorageError{Op: "list summaries", UserID: userID, DateKey: from + ".." + to, Err: err}
	}
	if days == nil {
		days = []models.DaySummary{}
	}
	return days, nil
}

// RecentEntries returns up to limit notes created at or after since, newest
// first.
func (s *Service) RecentEntries(ctx context.Context, userID string, since time.Time, limit int) ([]models.Note, error) {
	if userID == "" {
		return nil, invalid("user", "user id is required")
	}
	if limit <= 0 {
		limit = defaultRecent
	}
	notes, err := s.notes.ListSince(ctx, userID, since, limit)
	if err != nil {
		return nil, &StorageError{Op: "list recent notes", UserID: userID, Err: err}
	}
	return notes, nil
}

type ResyncReport struct {
	Days    int
	Changed int
	Failed  []string
}

// ResyncUser synchronizes every day the user has notes or a summary for.
// Failed days are marked stale and listed in the report.
func (s *Service) ResyncUser(ctx context.Context, userID string) (*ResyncReport, error) {
	if userID == "" {
		return nil, invalid("user", "user id is required")
	}

	noteDays, err := s.notes.ListDateKeys(ctx, userID)
	if err != nil {
		return nil, &StorageError{Op: "list note days", UserID: userID, Err: err}
	}
	summaryDays, err := s.summaries.ListDateKeys(ctx, userID)
	if err != nil {
		return nil, &StorageError{Op: "list summary days", UserID: userID, Err: err}
	}
	keys := slices.Concat(noteDays, summaryDays)
	slices.Sort(keys)
	keys = slices.Compact(keys)

	report := &ResyncReport{Days: len(keys)}
	for _, key := range keys {
		res, err := s.sync.Synchronize(ctx, userID, key)
		if err != nil {
			s.stale.Mark(userID, key)
			s.log.Warn(ctx, "resync failed", "user", userID, "date", key, "err", err)
			report.Failed = append(report.Failed, key)
			continue
		}
		s.stale.Unmark(userID, key)
		if res.Action != ActionNone {
			report.Changed++
		}
	}
	return report, nil
}

func (s *Service) analyze(ctx context.Context, out *Outcome, note *models.Note) {
	if s.analyzer == nil {
		out.record(StepAnalyze, fmt.Errorf("%w: analyzer not configured", ErrAnalysisUnavailable))
		return
	}

	notes, err := s.notes.List(ctx, note.UserID, note.DateKey)
	if err != nil {
		out.record(StepAnalyze, &StorageError{Op: "list notes", UserID: note.UserID, DateKey: note.DateKey, Err: err})
		return
	}

	derived, err := s.analyzer.Derive(ctx, DayText(notes))
	if err != nil {
		s.log.Warn(ctx, "analysis failed", "user", note.UserID, "date", note.DateKey, "err", err)
		out.record(StepAnalyze, fmt.Errorf("%w: %v", ErrAnalysisUnavailable, err))
		return
	}

	updated := models.PatchFromDerived(derived).Apply(*note)
	if err := s.notes.Update(ctx, &updated); err != nil {
		out.record(StepAnalyze, &StorageError{Op: "store analysis", UserID: note.UserID, DateKey: note.DateKey, Err: err})
		return
	}
	*note = updated
	out.record(StepAnalyze, nil)
}

func (s *Service) synchronize(ctx context.Context, out *Outcome, userID, dateKey string) {
	res, err := s.sync.Synchronize(ctx, userID, dateKey)
	if err != nil {
		s.stale.Mark(userID, dateKey)
		out.SummaryStale = true
		out.record(StepSynchronize, err)
		s.log.Warn(ctx, "day summary stale", "user", userID, "date", dateKey, "err", err)
		return
	}
	s.stale.Unmark(userID, dateKey)
	out.Summary = res.Summary
	out.record(StepSynchronize, nil)
	if res.Action != ActionNone {
		s.log.Debug(ctx, "day summary synchronized", "user", userID, "date", dateKey, "action", res.Action)
	}
}

// DayText joins note contents in chronological order, one per line.
func DayText(notes []models.Note) string {
	ordered := slices.Clone(notes)
	slices.SortStableFunc(ordered, func(a, b models.Note) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	parts := make([]string, 0, len(ordered))
	for _, n := range ordered {
		parts = append(parts, n.Content)
	}
	return strings.Join(parts, "\n")
}

// ValidateDay checks the scope of a journal operation.
func ValidateDay(userID, dateKey string) error {
	if userID == "" {
		return invalid("user", "user id is required")
	}
	return validateDateKey("date", dateKey)
}

func validateDateKey(field, key string) error {
	if key == "" {
		return invalid(field, "date is required")
	}
	t, err := time.Parse(models.DateKeyLayout, key)
	if err != nil || t.Format(models.DateKeyLayout) != key {
		return invalid(field, "date must be formatted YYYY-MM-DD")
	}
	return nil
}

func validateContent(content string) (string, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return "", invalid("content", "content is required")
	}
	if utf8.RuneCountInString(content) > MaxContentLength {
		return "", invalid("content", fmt.Sprintf("content must be at most %d characters", MaxContentLength))
	}
	return content, nil
}

func validatePatch(p *models.NotePatch) error {
	if p.Content != nil {
		content, err := validateContent(*p.Content)
		if err != nil {
			return err
		}
		p.Content = &content
	}
	if p.Mood != nil && *p.Mood != "" && !models.IsMood(*p.Mood) {
		return invalid("mood", "unknown mood")
	}
	if p.Confidence != nil && (*p.Confidence < 0 || *p.Confidence > 1) {
		return invalid("confidence", "must be between 0 and 1")
	}
	if p.CompanionEmotion != nil && *p.CompanionEmotion != "" && !models.IsCompanionEmotion(*p.CompanionEmotion) {
		return invalid("hopperEmotion", "unknown companion emotion")
	}
	return nil
}
