package models

import "slices"

// Moods the analyzer may assign to a note.
var Moods = []string{
	"happy",
	"neutral",
	"anxious",
	"sad",
	"frustrated",
	"angry",
	"excited",
	"reflective",
	"peaceful",
}

// CompanionEmotions are the tones Hopper can take when responding to a note.
var CompanionEmotions = []string{
	"empathetic",
	"encouraging",
	"curious",
	"playful",
	"celebratory",
	"problem-solving",
}

// moodColors backs the calendar dots.
var moodColors = map[string]string{
	"happy":      "#f6c945",
	"neutral":    "#b8b8b8",
	"anxious":    "#e09f5a",
	"sad":        "#5b8bd6",
	"frustrated": "#d9734e",
	"angry":      "#d64545",
	"excited":    "#f28ab2",
	"reflective": "#8e7cc3",
	"peaceful":   "#6fbf8e",
}

func IsMood(s string) bool {
	return slices.Contains(Moods, s)
}

func IsCompanionEmotion(s string) bool {
	return slices.Contains(CompanionEmotions, s)
}

// MoodColor returns the display color for a mood, or "" when unknown.
func MoodColor(mood string) string {
	return moodColors[mood]
}
