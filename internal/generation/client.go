// Package generation is the boundary to the external completion service that
// turns transcript text into flashcard candidates.
package generation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/studyclip/flashcard-server-go/internal/config"
	apperrors "github.com/studyclip/flashcard-server-go/internal/errors"
	"github.com/studyclip/flashcard-server-go/internal/model"
)

const (
	openaiBaseURL = "https://api.openai.com/v1/chat/completions"

	completionMaxTokens   = 15000
	completionTemperature = 0.3
)

type Client struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

type chatError struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

func NewClient(apiKey, model string) *Client {
	return &Client{
		apiKey:  apiKey,
		model:   model,
		baseURL: openaiBaseURL,
		client: &http.Client{
			Timeout: config.GenerationTimeout,
		},
	}
}

// WithBaseURL overrides the completion endpoint. Used by tests.
func (c *Client) WithBaseURL(baseURL string) *Client {
	c.baseURL = baseURL
	return c
}

// Generate asks the completion service for exactly count new flashcards for
// sourceText, avoiding the given existing questions. The whole batch is
// accepted or rejected: any parse or shape failure returns a
// GENERATION_FORMAT_ERROR and no cards.
func (c *Client) Generate(ctx context.Context, sourceText string, existingQuestions []string, count int) (model.CardList, error) {
	if c.apiKey == "" {
		return nil, apperrors.Internal("OpenAI API key is not configured")
	}

	prompt := BuildPrompt(sourceText, existingQuestions, count)

	body, err := json.Marshal(chatRequest{
		Model:       c.model,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		MaxTokens:   completionMaxTokens,
		Temperature: completionTemperature,
	})
	if err != nil {
		return nil, apperrors.Internal("failed to encode completion request").WithCause(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return nil, apperrors.Internal("failed to create completion request").WithCause(err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		log.Error().Err(err).Dur("elapsed", time.Since(start)).Msg("completion request failed")
		return nil, apperrors.External("openai", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperrors.External("openai", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr chatError
		detail := fmt.Sprintf("status %d", resp.StatusCode)
		if json.Unmarshal(respBody, &apiErr) == nil && apiErr.Error.Message != "" {
			detail = fmt.Sprintf("status %d: %s", resp.StatusCode, apiErr.Error.Message)
		}
		log.Error().
			Int("status", resp.StatusCode).
			Dur("elapsed", time.Since(start)).
			Msg("completion request rejected")
		return nil, apperrors.External("openai", fmt.Errorf("completion failed: %s", detail))
	}

	var chat chatResponse
	if err := json.Unmarshal(respBody, &chat); err != nil {
		return nil, apperrors.External("openai", fmt.Errorf("decode completion response: %w", err))
	}
	if len(chat.Choices) == 0 {
		return nil, apperrors.External("openai", fmt.Errorf("completion response has no choices"))
	}

	cards, err := ParseCards(chat.Choices[0].Message.Content)
	if err != nil {
		return nil, err
	}

	log.Info().
		Int("cards", len(cards)).
		Dur("elapsed", time.Since(start)).
		Msg("flashcards generated")

	return cards, nil
}

// BuildPrompt assembles the deterministic instruction text sent to the
// completion service.
func BuildPrompt(sourceText string, existingQuestions []string, count int) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Convert the following transcript into %d study flashcards in JSON format (return this as text, do NOT return this in markdown).\n", count)
	b.WriteString(`Each flashcard should be an object with "question" and "answer" fields.` + "\n")
	b.WriteString("Ensure that the flashcards cover the important information in the transcript.\n")
	if len(existingQuestions) > 0 {
		fmt.Fprintf(&b, "Do not duplicate already existing flashcards, these %d new flashcards MUST cover new content and topics within the transcript that are not covered by the existing flashcards.\n", count)
	}
	b.WriteString("\nTranscript:\n")
	b.WriteString(sourceText)
	b.WriteString("\n")
	if len(existingQuestions) > 0 {
		b.WriteString("\nAlready Existing Flashcards:\n")
		b.WriteString(strings.Join(existingQuestions, "\n"))
		b.WriteString("\n")
	}
	b.WriteString(`
Provide the flashcards in the following JSON format:
[
  {
    "question": "Question 1",
    "answer": "Answer 1"
  },
  {
    "question": "Question 2",
    "answer": "Answer 2"
  }
]

Requirements:
  - Return only the JSON array of flashcards.
  - Do not include any extra text, explanations, or code snippets.
  - Do not use markdown formatting or code blocks.
  - Ensure the JSON is valid and can be parsed.
  - Generated flashcards MUST be in the same language as the transcript. If the transcript is a language other than English, generated output MUST be in that language.
  - Ignore information within the transcript pertaining to personnel or course structure. Flashcards are for educational content.`)

	return b.String()
}

// rawCard distinguishes missing fields from empty ones; a non-string value
// fails json.Unmarshal outright.
type rawCard struct {
	Question *string `json:"question"`
	Answer   *string `json:"answer"`
}

// ParseCards strictly decodes a completion response into a card list.
// Surrounding code fences are stripped first; everything else about the
// payload must already be a bare JSON array of {question, answer} string
// pairs or the whole batch is rejected.
func ParseCards(text string) (model.CardList, error) {
	cleaned := StripFences(text)

	var raw []rawCard
	if err := json.Unmarshal([]byte(cleaned), &raw); err != nil {
		return nil, apperrors.GenerationFormat("Failed to parse generated flashcards", err)
	}

	cards := make(model.CardList, 0, len(raw))
	for i, rc := range raw {
		if rc.Question == nil || rc.Answer == nil {
			return nil, apperrors.GenerationFormat(
				fmt.Sprintf("Generated flashcard %d is missing a question or answer", i), nil)
		}
		cards = append(cards, model.Card{Question: *rc.Question, Answer: *rc.Answer})
	}

	return cards, nil
}

// StripFences removes a surrounding markdown code fence, with or without a
// language tag, from the completion output.
func StripFences(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "```") || !strings.HasSuffix(trimmed, "```") {
		return trimmed
	}

	trimmed = strings.TrimSuffix(trimmed, "```")
	trimmed = strings.TrimPrefix(trimmed, "```")
	// Drop a language tag like "json" on the opening fence line.
	if idx := strings.IndexByte(trimmed, '\n'); idx >= 0 {
		firstLine := strings.TrimSpace(trimmed[:idx])
		if firstLine != "" && !strings.ContainsAny(firstLine, "[{") {
			trimmed = trimmed[idx+1:]
		}
	}

	return strings.TrimSpace(trimmed)
}
