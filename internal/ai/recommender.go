package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/ahsanfayaz52/hopperhelps/internal/models"
)

var (
	Categories = []string{
		"reflection",
		"growth",
		"gratitude",
		"challenge",
		"creativity",
		"relationships",
		"goals",
		"wellbeing",
	}
	Difficulties = []string{"easy", "medium", "challenging"}
	TimesOfDay   = []string{"morning", "afternoon", "evening"}
	// RecommendEmotions differs from the analysis set: "happy" replaces
	// "problem-solving".
	RecommendEmotions = []string{
		"empathetic",
		"encouraging",
		"curious",
		"playful",
		"celebratory",
		"happy",
	}
)

const recommendSystem = `You generate thoughtful, contextual journal prompts.
Your task is to:
1. Analyze the user's journaling history and current context
2. Generate a relevant, engaging prompt that encourages deeper reflection
3. Provide follow-up questions that can help expand the entry
4. Frame the recommendation in Hopper's voice: supportive, curious and gentle

Consider recent moods, the time of day, the day of week and the user's
preferred topics if provided. Difficulty should match the user's current
emotional state. Hopper uses friendly language, at most one emoji, and is never
judgmental or prescriptive.

Respond ONLY with a JSON object of this shape:
{"prompt": string,
 "context": string explaining why this prompt is relevant now,
 "category": one of [%s],
 "difficulty": one of [%s],
 "estimatedTime": minutes between 1 and 60,
 "followUp": 1 to 3 strings,
 "hopperIntro": string,
 "hopperEmotion": one of [%s]}`

type RecentEntry struct {
	Content   string `json:"content"`
	Mood      string `json:"mood"`
	Timestamp string `json:"timestamp"`
}

// RecommendContext describes the user's situation for a recommendation.
type RecommendContext struct {
	RecentEntries   []RecentEntry `json:"recentEntries"`
	TimeOfDay       string        `json:"timeOfDay"`
	DayOfWeek       string        `json:"dayOfWeek"`
	PreferredTopics []string      `json:"preferredTopics,omitempty"`
}

// FieldError is one failed check, addressed by a dotted path.
type FieldError struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

// ValidationError collects every field problem of a request.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.Path + ": " + f.Message
	}
	return "invalid request data: " + strings.Join(parts, "; ")
}

// Validate reports every problem with the context. Paths are rooted at the
// request body, e.g. "context.timeOfDay".
func (c *RecommendContext) Validate() []FieldError {
	var errs []FieldError
	if c.RecentEntries == nil {
		errs = append(errs, FieldError{Path: "context.recentEntries", Message: "Required"})
	}
	if !slices.Contains(TimesOfDay, c.TimeOfDay) {
		errs = append(errs, FieldError{
			Path:    "context.timeOfDay",
			Message: "Invalid enum value. Expected " + enumList(TimesOfDay),
		})
	}
	if c.DayOfWeek == "" {
		errs = append(errs, FieldError{Path: "context.dayOfWeek", Message: "Required"})
	}
	return errs
}

// Recommendation is a suggested journal prompt.
type Recommendation struct {
	Prompt        string   `json:"prompt"`
	Context       string   `json:"context"`
	Category      string   `json:"category"`
	Difficulty    string   `json:"difficulty"`
	EstimatedTime float64  `json:"estimatedTime"`
	FollowUp      []string `json:"followUp"`
	HopperIntro   string   `json:"hopperIntro"`
	HopperEmotion string   `json:"hopperEmotion"`
}

func (r *Recommendation) check() error {
	switch {
	case strings.TrimSpace(r.Prompt) == "":
		return fmt.Errorf("%w: empty prompt", ErrInvalidResponse)
	case strings.TrimSpace(r.Context) == "":
		return fmt.Errorf("%w: empty context", ErrInvalidResponse)
	case !slices.Contains(Categories, r.Category):
		return fmt.Errorf("%w: unknown category %q", ErrInvalidResponse, r.Category)
	case !slices.Contains(Difficulties, r.Difficulty):
		return fmt.Errorf("%w: unknown difficulty %q", ErrInvalidResponse, r.Difficulty)
	case r.EstimatedTime < 1 || r.EstimatedTime > 60:
		return fmt.Errorf("%w: estimated time %v out of range", ErrInvalidResponse, r.EstimatedTime)
	case len(r.FollowUp) < 1 || len(r.FollowUp) > 3:
		return fmt.Errorf("%w: %d follow-up questions", ErrInvalidResponse, len(r.FollowUp))
	case strings.TrimSpace(r.HopperIntro) == "":
		return fmt.Errorf("%w: empty intro", ErrInvalidResponse)
	case !slices.Contains(RecommendEmotions, r.HopperEmotion):
		return fmt.Errorf("%w: unknown hopper emotion %q", ErrInvalidResponse, r.HopperEmotion)
	}
	return nil
}

type Recommender struct {
	client  ChatClient
	model   string
	timeout time.Duration
	system  string
}

func NewRecommender(client ChatClient, model string, timeout time.Duration) *Recommender {
	return &Recommender{
		client:  client,
		model:   model,
		timeout: timeout,
		system: fmt.Sprintf(recommendSystem,
			quoteList(Categories), quoteList(Difficulties), quoteList(RecommendEmotions)),
	}
}

// Recommend validates rc and asks the model for a prompt. Invalid input is
// returned as *ValidationError.
func (r *Recommender) Recommend(ctx context.Context, rc RecommendContext) (*Recommendation, error) {
	if errs := rc.Validate(); len(errs) > 0 {
		return nil, &ValidationError{Fields: errs}
	}

	prompt, err := json.Marshal(struct {
		RecommendContext
		Instruction string `json:"_instruction"`
	}{rc, "Generate a contextual journal prompt based on this user data"})
	if err != nil {
		return nil, fmt.Errorf("recommend: encode context: %w", err)
	}

	var rec Recommendation
	if err := completeJSON(ctx, r.client, r.model, r.timeout, r.system, string(prompt), &rec); err != nil {
		return nil, fmt.Errorf("recommend: %w", err)
	}
	if err := rec.check(); err != nil {
		return nil, fmt.Errorf("recommend: %w", err)
	}
	return &rec, nil
}

// BuildContext derives a recommendation context from the clock and the
// user's recent notes.
func BuildContext(now time.Time, notes []models.Note, topics []string) RecommendContext {
	entries := make([]RecentEntry, 0, len(notes))
	for _, n := range notes {
		entries = append(entries, RecentEntry{
			Content:   n.Content,
			Mood:      n.Mood,
			Timestamp: n.CreatedAt.Format(time.RFC3339),
		})
	}
	return RecommendContext{
		RecentEntries:   entries,
		TimeOfDay:       TimeOfDay(now),
		DayOfWeek:       now.Weekday().String(),
		PreferredTopics: topics,
	}
}

func TimeOfDay(t time.Time) string {
	switch h := t.Hour(); {
	case h < 12:
		return "morning"
	case h < 17:
		return "afternoon"
	default:
		return "evening"
	}
}

func enumList(values []string) string {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = "'" + v + "'"
	}
	return strings.Join(quoted, " | ")
}
