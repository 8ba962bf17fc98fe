package ai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ahsanfayaz52/hopperhelps/internal/models"
)

// MaxAnalysisLength caps the analysis text kept from the model.
const MaxAnalysisLength = 200

const analyzeSystem = `You are an empathetic assistant specialized in emotional analysis.
Your task is to:
1. Analyze the user's journal text to determine their emotional state
2. Provide a confidence score between 0 and 1 for your analysis
3. Give a brief analysis of their emotional state (maximum 200 characters)
4. Write a compassionate response from Hopper, the rabbit mascot, that matches one
   of Hopper's emotional states, offers supportive guidance and optionally one
   small action step

Hopper is supportive but not overbearing, technically curious, loves
problem-solving, keeps a positive outlook, never judges and uses at most one emoji.

Respond ONLY with a JSON object of this shape:
{"mood": one of [%s],
 "confidence": number,
 "analysis": string,
 "response": {"text": string, "hopperEmotion": one of [%s]}}`

type Response struct {
	Text          string `json:"text"`
	HopperEmotion string `json:"hopperEmotion"`
}

// Analysis is the structured mood judgment returned by /api/analyze.
type Analysis struct {
	Mood       string   `json:"mood"`
	Confidence float64  `json:"confidence"`
	Analysis   string   `json:"analysis"`
	Response   Response `json:"response"`
}

func (a *Analysis) Derived() models.Derived {
	return models.Derived{
		Mood:              a.Mood,
		Confidence:        a.Confidence,
		Analysis:          a.Analysis,
		CompanionEmotion:  a.Response.HopperEmotion,
		CompanionResponse: a.Response.Text,
	}
}

func (a *Analysis) normalize() error {
	a.Mood = strings.ToLower(strings.TrimSpace(a.Mood))
	a.Response.HopperEmotion = strings.ToLower(strings.TrimSpace(a.Response.HopperEmotion))
	a.Analysis = truncate(strings.TrimSpace(a.Analysis), MaxAnalysisLength)
	a.Response.Text = strings.TrimSpace(a.Response.Text)

	switch {
	case !models.IsMood(a.Mood):
		return fmt.Errorf("%w: unknown mood %q", ErrInvalidResponse, a.Mood)
	case a.Confidence < 0 || a.Confidence > 1:
		return fmt.Errorf("%w: confidence %v out of range", ErrInvalidResponse, a.Confidence)
	case a.Analysis == "":
		return fmt.Errorf("%w: empty analysis", ErrInvalidResponse)
	case a.Response.Text == "":
		return fmt.Errorf("%w: empty response text", ErrInvalidResponse)
	case !models.IsCompanionEmotion(a.Response.HopperEmotion):
		return fmt.Errorf("%w: unknown hopper emotion %q", ErrInvalidResponse, a.Response.HopperEmotion)
	}
	return nil
}

type MoodAnalyzer struct {
	client  ChatClient
	model   string
	timeout time.Duration
	system  string
}

func NewMoodAnalyzer(client ChatClient, model string, timeout time.Duration) *MoodAnalyzer {
	return &MoodAnalyzer{
		client:  client,
		model:   model,
		timeout: timeout,
		system:  fmt.Sprintf(analyzeSystem, quoteList(models.Moods), quoteList(models.CompanionEmotions)),
	}
}

// Analyze classifies text. The call is bounded by the analyzer timeout.
func (m *MoodAnalyzer) Analyze(ctx context.Context, text string) (*Analysis, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyText
	}

	var a Analysis
	if err := completeJSON(ctx, m.client, m.model, m.timeout, m.system, text, &a); err != nil {
		return nil, fmt.Errorf("analyze mood: %w", err)
	}
	if err := a.normalize(); err != nil {
		return nil, fmt.Errorf("analyze mood: %w", err)
	}
	return &a, nil
}

// Derive is Analyze reduced to the fields stored on a note.
func (m *MoodAnalyzer) Derive(ctx context.Context, text string) (models.Derived, error) {
	a, err := m.Analyze(ctx, text)
	if err != nil {
		return models.Derived{}, err
	}
	return a.Derived(), nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func quoteList(values []string) string {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = `"` + v + `"`
	}
	return strings.Join(quoted, ", ")
}
