package models

import "time"

// DateKeyLayout is the layout of the per-day identifier, e.g. 2024-01-31.
const DateKeyLayout = "2006-01-02"

// Derived holds the fields produced by mood analysis. A note carries its own
// copy and the day summary mirrors the copy of the latest note.
type Derived struct {
	Mood              string  `json:"mood"`
	Confidence        float64 `json:"confidence"`
	Analysis          string  `json:"analysis"`
	CompanionEmotion  string  `json:"hopperEmotion"`
	CompanionResponse string  `json:"hopperResponse"`
}

func (d Derived) IsBlank() bool {
	return d == Derived{}
}

type Note struct {
	ID      string `json:"id"`
	UserID  string `json:"-"`
	DateKey string `json:"date"`
	Content string `json:"content"`
	Derived
	CreatedAt time.Time `json:"createdAt"`
}

// NotePatch is a partial update. Nil fields are left untouched.
type NotePatch struct {
	Content           *string  `json:"content,omitempty"`
	Mood              *string  `json:"mood,omitempty"`
	Confidence        *float64 `json:"confidence,omitempty"`
	Analysis          *string  `json:"analysis,omitempty"`
	CompanionEmotion  *string  `json:"hopperEmotion,omitempty"`
	CompanionResponse *string  `json:"hopperResponse,omitempty"`
}

// PatchFromDerived builds a patch that overwrites every derived field.
func PatchFromDerived(d Derived) NotePatch {
	return NotePatch{
		Mood:              &d.Mood,
		Confidence:        &d.Confidence,
		Analysis:          &d.Analysis,
		CompanionEmotion:  &d.CompanionEmotion,
		CompanionResponse: &d.CompanionResponse,
	}
}

func (p NotePatch) IsEmpty() bool {
	return p == NotePatch{}
}

// Apply returns a copy of n with the patch applied.
func (p NotePatch) Apply(n Note) Note {
	if p.Content != nil {
		n.Content = *p.Content
	}
	if p.Mood != nil {
		n.Mood = *p.Mood
	}
	if p.Confidence != nil {
		n.Confidence = *p.Confidence
	}
	if p.Analysis != nil {
		n.Analysis = *p.Analysis
	}
	if p.CompanionEmotion != nil {
		n.CompanionEmotion = *p.CompanionEmotion
	}
	if p.CompanionResponse != nil {
		n.CompanionResponse = *p.CompanionResponse
	}
	return n
}

// DaySummary is the per-day aggregate. It is derived from the day's notes and
// can always be rebuilt from them.
type DaySummary struct {
	UserID  string `json:"-"`
	DateKey string `json:"date"`
	Derived
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	Version   int64     `json:"version"`
}

// DayEntry is a day summary together with the notes it was derived from.
type DayEntry struct {
	DateKey string      `json:"date"`
	Summary *DaySummary `json:"summary"`
	Notes   []Note      `json:"notes"`
}
