package generation

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/studyclip/flashcard-server-go/internal/errors"
	"github.com/studyclip/flashcard-server-go/internal/model"
)

func TestStripFences(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"bare array untouched", `[{"question":"Q","answer":"A"}]`, `[{"question":"Q","answer":"A"}]`},
		{"plain fences", "```\n[1]\n```", "[1]"},
		{"fences with language tag", "```json\n[1]\n```", "[1]"},
		{"fences on one line", "```[1]```", "[1]"},
		{"surrounding whitespace", "  \n```\n[1]\n```\n  ", "[1]"},
		{"only leading fence left alone", "```\n[1]", "```\n[1]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StripFences(tt.in))
		})
	}
}

func TestParseCards(t *testing.T) {
	t.Run("accepts valid array", func(t *testing.T) {
		cards, err := ParseCards(`[{"question":"Q1","answer":"A1"}]`)
		require.NoError(t, err)
		assert.Equal(t, model.CardList{{Question: "Q1", Answer: "A1"}}, cards)
	})

	t.Run("fenced payload parses to the identical array", func(t *testing.T) {
		plain, err := ParseCards(`[{"question":"Q1","answer":"A1"}]`)
		require.NoError(t, err)
		fenced, err := ParseCards("```json\n[{\"question\":\"Q1\",\"answer\":\"A1\"}]\n```")
		require.NoError(t, err)
		assert.Equal(t, plain, fenced)
	})

	t.Run("rejects JSON object", func(t *testing.T) {
		_, err := ParseCards(`{"question":"Q1","answer":"A1"}`)
		require.Error(t, err)
		assert.Equal(t, apperrors.ErrCodeGenerationFormat, apperrors.GetCode(err))
	})

	t.Run("rejects missing answer", func(t *testing.T) {
		_, err := ParseCards(`[{"question":"Q1"}]`)
		require.Error(t, err)
		assert.Equal(t, apperrors.ErrCodeGenerationFormat, apperrors.GetCode(err))
	})

	t.Run("rejects non-string answer", func(t *testing.T) {
		_, err := ParseCards(`[{"question":"Q1","answer":42}]`)
		require.Error(t, err)
		assert.Equal(t, apperrors.ErrCodeGenerationFormat, apperrors.GetCode(err))
	})

	t.Run("rejects non-JSON text", func(t *testing.T) {
		_, err := ParseCards("Sure! Here are your flashcards.")
		require.Error(t, err)
		assert.Equal(t, apperrors.ErrCodeGenerationFormat, apperrors.GetCode(err))
	})

	t.Run("accepts empty array", func(t *testing.T) {
		cards, err := ParseCards(`[]`)
		require.NoError(t, err)
		assert.Empty(t, cards)
	})
}

func TestBuildPrompt(t *testing.T) {
	t.Run("embeds transcript and count", func(t *testing.T) {
		prompt := BuildPrompt("the mitochondria is the powerhouse", nil, 10)
		assert.Contains(t, prompt, "10 study flashcards")
		assert.Contains(t, prompt, "the mitochondria is the powerhouse")
		assert.NotContains(t, prompt, "Already Existing Flashcards")
	})

	t.Run("joins existing questions on newlines", func(t *testing.T) {
		prompt := BuildPrompt("text", []string{"Q1", "Q2"}, 5)
		assert.Contains(t, prompt, "Already Existing Flashcards:\nQ1\nQ2")
		assert.Contains(t, prompt, "Do not duplicate already existing flashcards")
	})

	t.Run("requests same language as transcript", func(t *testing.T) {
		prompt := BuildPrompt("text", nil, 10)
		assert.Contains(t, prompt, "same language as the transcript")
	})
}

func completionResponse(content string) string {
	body, _ := json.Marshal(map[string]any{
		"choices": []map[string]any{
			{"message": map[string]string{"content": content}},
		},
	})
	return string(body)
}

func TestGenerate(t *testing.T) {
	t.Run("fails without API key", func(t *testing.T) {
		client := NewClient("", "gpt-4o")
		_, err := client.Generate(context.Background(), "text", nil, 10)
		require.Error(t, err)
		assert.Equal(t, apperrors.ErrCodeInternal, apperrors.GetCode(err))
	})

	t.Run("sends prompt and parses cards", func(t *testing.T) {
		var gotAuth string
		var gotReq chatRequest
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotAuth = r.Header.Get("Authorization")
			require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(completionResponse(`[{"question":"Q1","answer":"A1"}]`)))
		}))
		defer server.Close()

		client := NewClient("sk-test", "gpt-4o").WithBaseURL(server.URL)
		cards, err := client.Generate(context.Background(), "transcript text", []string{"Old question"}, 10)

		require.NoError(t, err)
		assert.Equal(t, model.CardList{{Question: "Q1", Answer: "A1"}}, cards)
		assert.Equal(t, "Bearer sk-test", gotAuth)
		assert.Equal(t, "gpt-4o", gotReq.Model)
		require.Len(t, gotReq.Messages, 1)
		assert.Contains(t, gotReq.Messages[0].Content, "transcript text")
		assert.Contains(t, gotReq.Messages[0].Content, "Old question")
	})

	t.Run("strips fences from response", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(completionResponse("```json\n[{\"question\":\"Q1\",\"answer\":\"A1\"}]\n```")))
		}))
		defer server.Close()

		client := NewClient("sk-test", "gpt-4o").WithBaseURL(server.URL)
		cards, err := client.Generate(context.Background(), "text", nil, 10)

		require.NoError(t, err)
		assert.Equal(t, model.CardList{{Question: "Q1", Answer: "A1"}}, cards)
	})

	t.Run("invalid shape is a generation format error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(completionResponse(`{"not":"an array"}`)))
		}))
		defer server.Close()

		client := NewClient("sk-test", "gpt-4o").WithBaseURL(server.URL)
		_, err := client.Generate(context.Background(), "text", nil, 10)

		require.Error(t, err)
		assert.Equal(t, apperrors.ErrCodeGenerationFormat, apperrors.GetCode(err))
	})

	t.Run("upstream error status surfaces as external error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusTooManyRequests)
			w.Write([]byte(`{"error":{"message":"rate limited","type":"rate_limit_error"}}`))
		}))
		defer server.Close()

		client := NewClient("sk-test", "gpt-4o").WithBaseURL(server.URL)
		_, err := client.Generate(context.Background(), "text", nil, 10)

		require.Error(t, err)
		assert.Equal(t, apperrors.ErrCodeExternal, apperrors.GetCode(err))
		assert.Contains(t, err.Error(), "rate limited")
	})
}
