// Package calendar lays out a month of day summaries as a Sunday-first grid.
package calendar

import (
	"fmt"
	"time"

	"github.com/ahsanfayaz52/hopperhelps/internal/models"
)

const (
	MonthLayout = "2006-01"
	// Cells is six weeks, enough for any month.
	Cells = 42
)

type Cell struct {
	Date    string `json:"date"`
	Day     int    `json:"day"`
	InMonth bool   `json:"inMonth"`
	IsToday bool   `json:"isToday,omitempty"`
	Mood    string `json:"mood,omitempty"`
	Color   string `json:"color,omitempty"`
}

type Grid struct {
	Month string `json:"month"`
	Prev  string `json:"prev"`
	Next  string `json:"next"`
	Cells []Cell `json:"cells"`
}

// ParseMonth reads "YYYY-MM" and returns the first of that month in UTC.
func ParseMonth(s string) (time.Time, error) {
	t, err := time.Parse(MonthLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("month must be formatted YYYY-MM: %w", err)
	}
	return t, nil
}

// Bounds returns the first and last date keys covered by the month's grid.
func Bounds(month time.Time) (from, to string) {
	start := gridStart(month)
	return start.Format(models.DateKeyLayout), start.AddDate(0, 0, Cells-1).Format(models.DateKeyLayout)
}

// Build fills the grid for month. today marks the current day when it falls
// inside the grid; pass the zero time to skip it.
func Build(month time.Time, summaries []models.DaySummary, today time.Time) Grid {
	first := time.Date(month.Year(), month.Month(), 1, 0, 0, 0, 0, time.UTC)

	moods := make(map[string]string, len(summaries))
	for _, s := range summaries {
		if s.Mood != "" {
			moods[s.DateKey] = s.Mood
		}
	}
	todayKey := ""
	if !today.IsZero() {
		todayKey = today.Format(models.DateKeyLayout)
	}

	grid := Grid{
		Month: first.Format(MonthLayout),
		Prev:  first.AddDate(0, -1, 0).Format(MonthLayout),
		Next:  first.AddDate(0, 1, 0).Format(MonthLayout),
		Cells: make([]Cell, 0, Cells),
	}
	day := gridStart(first)
	for i := 0; i < Cells; i++ {
		key := day.Format(models.DateKeyLayout)
		cell := Cell{
			Date:    key,
			Day:     day.Day(),
			InMonth: day.Month() == first.Month(),
			IsToday: key == todayKey,
		}
		if mood, ok := moods[key]; ok {
			cell.Mood = mood
			cell.Color = models.MoodColor(mood)
		}
		grid.Cells = append(grid.Cells, cell)
		day = day.AddDate(0, 0, 1)
	}
	return grid
}

func gridStart(month time.Time) time.Time {
	first := time.Date(month.Year(), month.Month(), 1, 0, 0, 0, 0, time.UTC)
	return first.AddDate(0, 0, -int(first.Weekday()))
}
