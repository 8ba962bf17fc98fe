package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNotePatch_Apply(t *testing.T) {
	created := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	n := Note{ID: "n1", Content: "old", CreatedAt: created, Derived: Derived{Mood: "sad", Confidence: 0.4}}

	content := "new"
	mood := "happy"
	got := NotePatch{Content: &content, Mood: &mood}.Apply(n)

	assert.Equal(t, "new", got.Content)
	assert.Equal(t, "happy", got.Mood)
	assert.Equal(t, 0.4, got.Confidence)
	assert.Equal(t, created, got.CreatedAt)
	assert.Equal(t, "old", n.Content, "original note must not change")
}

func TestPatchFromDerived_OverwritesAll(t *testing.T) {
	n := Note{Derived: Derived{Mood: "sad", Confidence: 0.4, Analysis: "a", CompanionEmotion: "curious", CompanionResponse: "r"}}
	got := PatchFromDerived(Derived{}).Apply(n)

	assert.True(t, got.Derived.IsBlank())
}

func TestNotePatch_IsEmpty(t *testing.T) {
	assert.True(t, NotePatch{}.IsEmpty())
	s := "x"
	assert.False(t, NotePatch{Analysis: &s}.IsEmpty())
}

func TestMoodEnums(t *testing.T) {
	assert.True(t, IsMood("reflective"))
	assert.False(t, IsMood("meh"))
	assert.True(t, IsCompanionEmotion("problem-solving"))
	assert.False(t, IsCompanionEmotion("happy"))
	assert.NotEmpty(t, MoodColor("happy"))
	assert.Empty(t, MoodColor("meh"))
}
