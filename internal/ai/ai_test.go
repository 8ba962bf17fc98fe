package ai

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ahsanfayaz52/hopperhelps/internal/config"
	"github.com/ahsanfayaz52/hopperhelps/internal/models"
	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeChat struct {
	content string
	err     error
	reqs    []openai.ChatCompletionRequest
}

func (f *fakeChat) CreateChatCompletion(_ context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	f.reqs = append(f.reqs, req)
	if f.err != nil {
		return openai.ChatCompletionResponse{}, f.err
	}
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: f.content}},
		},
	}, nil
}

const goodAnalysis = `{
	"mood": "Happy",
	"confidence": 0.92,
	"analysis": "You sound proud of finishing the project.",
	"response": {"text": "Way to go! 🥕", "hopperEmotion": "celebratory"}
}`

func TestMoodAnalyzer_Analyze(t *testing.T) {
	chat := &fakeChat{content: goodAnalysis}
	m := NewMoodAnalyzer(chat, "gpt-4o-mini", time.Second)

	a, err := m.Analyze(context.Background(), "I shipped the project today")
	require.NoError(t, err)
	assert.Equal(t, "happy", a.Mood)
	assert.InDelta(t, 0.92, a.Confidence, 1e-9)
	assert.Equal(t, "celebratory", a.Response.HopperEmotion)

	require.Len(t, chat.reqs, 1)
	req := chat.reqs[0]
	assert.Equal(t, "gpt-4o-mini", req.Model)
	require.NotNil(t, req.ResponseFormat)
	assert.Equal(t, openai.ChatCompletionResponseFormatTypeJSONObject, req.ResponseFormat.Type)
	assert.Equal(t, openai.ChatMessageRoleSystem, req.Messages[0].Role)
	assert.Contains(t, req.Messages[0].Content, `"reflective"`)
	assert.Equal(t, "I shipped the project today", req.Messages[1].Content)

	d := a.Derived()
	assert.Equal(t, models.Derived{
		Mood:              "happy",
		Confidence:        0.92,
		Analysis:          "You sound proud of finishing the project.",
		CompanionEmotion:  "celebratory",
		CompanionResponse: "Way to go! 🥕",
	}, d)
}

func TestMoodAnalyzer_TruncatesAnalysis(t *testing.T) {
	long := strings.Repeat("é", 250)
	chat := &fakeChat{content: `{"mood":"sad","confidence":0.5,"analysis":"` + long + `","response":{"text":"hug","hopperEmotion":"empathetic"}}`}

	a, err := NewMoodAnalyzer(chat, "m", 0).Analyze(context.Background(), "meh")
	require.NoError(t, err)
	assert.Equal(t, MaxAnalysisLength, len([]rune(a.Analysis)))
}

func TestMoodAnalyzer_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		err     error
		text    string
		want    error
	}{
		{name: "empty text", text: "   ", want: ErrEmptyText},
		{name: "not json", content: "I think you are happy", text: "x", want: ErrInvalidResponse},
		{name: "unknown mood", content: `{"mood":"hangry","confidence":0.5,"analysis":"a","response":{"text":"t","hopperEmotion":"curious"}}`, text: "x", want: ErrInvalidResponse},
		{name: "confidence", content: `{"mood":"sad","confidence":1.5,"analysis":"a","response":{"text":"t","hopperEmotion":"curious"}}`, text: "x", want: ErrInvalidResponse},
		{name: "emotion", content: `{"mood":"sad","confidence":0.5,"analysis":"a","response":{"text":"t","hopperEmotion":"happy"}}`, text: "x", want: ErrInvalidResponse},
		{name: "empty analysis", content: `{"mood":"sad","confidence":0.5,"analysis":"","response":{"text":"t","hopperEmotion":"curious"}}`, text: "x", want: ErrInvalidResponse},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chat := &fakeChat{content: tt.content, err: tt.err}
			_, err := NewMoodAnalyzer(chat, "m", 0).Analyze(context.Background(), tt.text)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	upstream := errors.New("rate limited")
	_, err := NewMoodAnalyzer(&fakeChat{err: upstream}, "m", 0).Derive(context.Background(), "x")
	assert.ErrorIs(t, err, upstream)
}

func TestMoodAnalyzer_AgainstHTTPStub(t *testing.T) {
	var gotAuth, gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path

		var req openai.ChatCompletionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(openai.ChatCompletionResponse{
			ID:     "chatcmpl-1",
			Object: "chat.completion",
			Model:  req.Model,
			Choices: []openai.ChatCompletionChoice{{
				Index:        0,
				Message:      openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: goodAnalysis},
				FinishReason: openai.FinishReasonStop,
			}},
		})
	}))
	defer srv.Close()

	cfg := config.Defaults()
	cfg.OpenAIKey = "sk-test"
	cfg.OpenAIBaseURL = srv.URL + "/v1/"

	m := NewMoodAnalyzer(NewClient(cfg), cfg.OpenAIModel, cfg.AnalyzerTimeout)
	d, err := m.Derive(context.Background(), "won the hackathon")
	require.NoError(t, err)
	assert.Equal(t, "happy", d.Mood)
	assert.Equal(t, "Bearer sk-test", gotAuth)
	assert.Equal(t, "/v1/chat/completions", gotPath)
}

func TestMoodAnalyzer_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Drain the body so the server notices the client going away.
		_, _ = io.Copy(io.Discard, r.Body)
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	}))
	defer srv.Close()

	cfg := config.Defaults()
	cfg.OpenAIBaseURL = srv.URL + "/v1"

	start := time.Now()
	_, err := NewMoodAnalyzer(NewClient(cfg), "m", 50*time.Millisecond).Analyze(context.Background(), "slow")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), time.Second)
}
