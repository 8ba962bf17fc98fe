package journal

import (
	"cmp"
	"slices"
	"sync"
)

// DayRef identifies one user's day.
type DayRef struct {
	UserID  string
	DateKey string
}

// StaleSet tracks days whose last synchronization failed. It is safe for
// concurrent use.
type StaleSet struct {
	mu   sync.Mutex
	days map[DayRef]struct{}
}

func NewStaleSet() *StaleSet {
	return &StaleSet{days: make(map[DayRef]struct{})}
}

func (s *StaleSet) Mark(userID, dateKey string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.days[DayRef{UserID: userID, DateKey: dateKey}] = struct{}{}
}

func (s *StaleSet) Unmark(userID, dateKey string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.days, DayRef{UserID: userID, DateKey: dateKey})
}

func (s *StaleSet) Contains(userID, dateKey string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.days[DayRef{UserID: userID, DateKey: dateKey}]
	return ok
}

func (s *StaleSet) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.days)
}

// Drain empties the set and returns its members ordered by user then date.
func (s *StaleSet) Drain() []DayRef {
	s.mu.Lock()
	out := make([]DayRef, 0, len(s.days))
	for ref := range s.days {
		out = append(out, ref)
	}
	s.days = make(map[DayRef]struct{})
	s.mu.Unlock()

	slices.SortFunc(out, func(a, b DayRef) int {
		if c := cmp.Compare(a.UserID, b.UserID); c != 0 {
			return c
		}
		return cmp.Compare(a.DateKey, b.DateKey)
	})
	return out
}
