package journal

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/ahsanfayaz52/hopperhelps/internal/common"
	"github.com/ahsanfayaz52/hopperhelps/internal/models"
)

func dayKey(userID, dateKey string) string {
	return userID + "|" + dateKey
}

type fakeNotes struct {
	mu      sync.Mutex
	notes   map[string][]models.Note
	listErr error
	saveErr error
}

func newFakeNotes() *fakeNotes {
	return &fakeNotes{notes: make(map[string][]models.Note)}
}

func (f *fakeNotes) Create(_ context.Context, n *models.Note) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	k := dayKey(n.UserID, n.DateKey)
	f.notes[k] = append(f.notes[k], *n)
	return nil
}

func (f *fakeNotes) Get(_ context.Context, userID, dateKey, id string) (*models.Note, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, n := range f.notes[dayKey(userID, dateKey)] {
		if n.ID == id {
			return &n, nil
		}
	}
	return nil, fmt.Errorf("get note: %w", common.ErrNotFound)
}

func (f *fakeNotes) Update(_ context.Context, n *models.Note) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	list := f.notes[dayKey(n.UserID, n.DateKey)]
	for i := range list {
		if list[i].ID == n.ID {
			list[i] = *n
			return nil
		}
	}
	return fmt.Errorf("update note: %w", common.ErrNotFound)
}

func (f *fakeNotes) Delete(_ context.Context, userID, dateKey, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	k := dayKey(userID, dateKey)
	list := f.notes[k]
	for i := range list {
		if list[i].ID == id {
			f.notes[k] = slices.Delete(list, i, i+1)
			return nil
		}
	}
	return fmt.Errorf("delete note: %w", common.ErrNotFound)
}

func (f *fakeNotes) List(_ context.Context, userID, dateKey string) ([]models.Note, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := slices.Clone(f.notes[dayKey(userID, dateKey)])
	slices.SortStableFunc(out, func(a, b models.Note) int { return a.CreatedAt.Compare(b.CreatedAt) })
	return out, nil
}

func (f *fakeNotes) ListSince(_ context.Context, userID string, since time.Time, limit int) ([]models.Note, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Note
	for _, list := range f.notes {
		for _, n := range list {
			if n.UserID == userID && !n.CreatedAt.Before(since) {
				out = append(out, n)
			}
		}
	}
	slices.SortFunc(out, func(a, b models.Note) int { return b.CreatedAt.Compare(a.CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeNotes) ListDateKeys(_ context.Context, userID string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var keys []string
	for _, list := range f.notes {
		if len(list) > 0 && list[0].UserID == userID {
			keys = append(keys, list[0].DateKey)
		}
	}
	slices.Sort(keys)
	return keys, nil
}

// put seeds a note without going through the service.
func (f *fakeNotes) put(n models.Note) {
	f.mu.Lock()
	defer f.mu.Unlock()
	k := dayKey(n.UserID, n.DateKey)
	f.notes[k] = append(f.notes[k], n)
}

type fakeSummaries struct {
	mu        sync.Mutex
	summaries map[string]models.DaySummary

	creates, updates, deletes int
	getErr                    error
	writeErr                  error
	// conflicts makes the next N writes fail with common.ErrConflict.
	conflicts int
	// beforeWrite runs before each write, without the lock held.
	beforeWrite func()
}

func newFakeSummaries() *fakeSummaries {
	return &fakeSummaries{summaries: make(map[string]models.DaySummary)}
}

func (f *fakeSummaries) writes() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.creates + f.updates + f.deletes
}

func (f *fakeSummaries) hook() error {
	if f.beforeWrite != nil {
		f.beforeWrite()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.writeErr != nil {
		return f.writeErr
	}
	if f.conflicts > 0 {
		f.conflicts--
		return fmt.Errorf("write summary: %w", common.ErrConflict)
	}
	return nil
}

func (f *fakeSummaries) Get(_ context.Context, userID, dateKey string) (*models.DaySummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	s, ok := f.summaries[dayKey(userID, dateKey)]
	if !ok {
		return nil, fmt.Errorf("get summary: %w", common.ErrNotFound)
	}
	return &s, nil
}

func (f *fakeSummaries) Create(_ context.Context, s *models.DaySummary) error {
	if err := f.hook(); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	k := dayKey(s.UserID, s.DateKey)
	if _, ok := f.summaries[k]; ok {
		return fmt.Errorf("create summary: %w", common.ErrConflict)
	}
	s.Version = 1
	f.summaries[k] = *s
	f.creates++
	return nil
}

func (f *fakeSummaries) Update(_ context.Context, s *models.DaySummary, guard bool) error {
	if err := f.hook(); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	k := dayKey(s.UserID, s.DateKey)
	cur, ok := f.summaries[k]
	if !ok {
		return fmt.Errorf("update summary: %w", common.ErrNotFound)
	}
	if guard && cur.Version != s.Version {
		return fmt.Errorf("update summary: %w", common.ErrConflict)
	}
	cur.Derived = s.Derived
	cur.UpdatedAt = s.UpdatedAt
	cur.Version++
	f.summaries[k] = cur
	s.Version = cur.Version
	f.updates++
	return nil
}

func (f *fakeSummaries) Delete(_ context.Context, userID, dateKey string) error {
	if err := f.hook(); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	k := dayKey(userID, dateKey)
	if _, ok := f.summaries[k]; !ok {
		return fmt.Errorf("delete summary: %w", common.ErrNotFound)
	}
	delete(f.summaries, k)
	f.deletes++
	return nil
}

func (f *fakeSummaries) ListRange(_ context.Context, userID, from, to string) ([]models.DaySummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.DaySummary
	for _, s := range f.summaries {
		if s.UserID == userID && s.DateKey >= from && s.DateKey <= to {
			out = append(out, s)
		}
	}
	slices.SortFunc(out, func(a, b models.DaySummary) int { return cmp.Compare(a.DateKey, b.DateKey) })
	return out, nil
}

func (f *fakeSummaries) ListDateKeys(_ context.Context, userID string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var keys []string
	for _, s := range f.summaries {
		if s.UserID == userID {
			keys = append(keys, s.DateKey)
		}
	}
	slices.Sort(keys)
	return keys, nil
}

// set stores a summary directly, bypassing counters.
func (f *fakeSummaries) set(s models.DaySummary) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if s.Version == 0 {
		s.Version = 1
	}
	f.summaries[dayKey(s.UserID, s.DateKey)] = s
}

func (f *fakeSummaries) stored(userID, dateKey string) (models.DaySummary, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.summaries[dayKey(userID, dateKey)]
	return s, ok
}

type fakeDays struct {
	notes     *fakeNotes
	summaries *fakeSummaries
}

func (f fakeDays) GetDayEntry(ctx context.Context, userID, dateKey string) (*models.DayEntry, error) {
	entry := &models.DayEntry{DateKey: dateKey}
	if s, ok := f.summaries.stored(userID, dateKey); ok {
		entry.Summary = &s
	}
	notes, err := f.notes.List(ctx, userID, dateKey)
	if err != nil {
		return nil, err
	}
	entry.Notes = notes
	return entry, nil
}

type fakeAnalyzer struct {
	mu     sync.Mutex
	result models.Derived
	err    error
	texts  []string
}

func (f *fakeAnalyzer) Derive(_ context.Context, text string) (models.Derived, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.texts = append(f.texts, text)
	if f.err != nil {
		return models.Derived{}, f.err
	}
	return f.result, nil
}

func ts(minute int) time.Time {
	return time.Date(2024, 1, 1, 9, minute, 0, 0, time.UTC)
}

func moodNote(id string, minute int, mood string) models.Note {
	return models.Note{
		ID:        id,
		UserID:    "u1",
		DateKey:   "2024-01-01",
		Content:   "note " + id,
		Derived:   models.Derived{Mood: mood, Confidence: 0.7, Analysis: mood + " day", CompanionEmotion: "empathetic", CompanionResponse: "hi"},
		CreatedAt: ts(minute),
	}
}
