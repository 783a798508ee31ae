// Package transcript fetches YouTube caption tracks and relays them as plain
// transcript segments.
package transcript

import (
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
)

const (
	watchBaseURL = "https://www.youtube.com/watch?v="

	// Some caption endpoints refuse requests without a browser user agent.
	userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36"
)

// Segment is one caption cue. Offset and Duration are in seconds.
type Segment struct {
	Text     string  `json:"text"`
	Offset   float64 `json:"offset"`
	Duration float64 `json:"duration"`
}

type captionTrack struct {
	BaseURL      string `json:"baseUrl"`
	LanguageCode string `json:"languageCode"`
	Kind         string `json:"kind"`
}

type timedTextResponse struct {
	Events []struct {
		StartMs    int64 `json:"tStartMs"`
		DurationMs int64 `json:"dDurationMs"`
		Segs       []struct {
			UTF8 string `json:"utf8"`
		} `json:"segs"`
	} `json:"events"`
}

type Client struct {
	baseURL string
	client  *http.Client
}

func NewClient() *Client {
	return &Client{
		baseURL: watchBaseURL,
		client: &http.Client{
			Timeout: config.TranscriptTimeout,
		},
	}
}

// WithBaseURL overrides the watch-page endpoint. Used by tests.
func (c *Client) WithBaseURL(baseURL string) *Client {
	c.baseURL = baseURL
	return c
}

// Fetch returns the transcript of the given video, or TRANSCRIPT_UNAVAILABLE
// when the video has no caption tracks.
func (c *Client) Fetch(ctx context.Context, videoID string) ([]Segment, error) {
	start := time.Now()

	page, err := c.get(ctx, c.baseURL+videoID)
	if err != nil {
		return nil, err
	}

	tracks, err := parseCaptionTracks(page)
	if err != nil {
		return nil, err
	}
	if len(tracks) == 0 {
		return nil, apperrors.TranscriptUnavailable(videoID)
	}

	trackURL := tracks[0].BaseURL
	if !strings.Contains(trackURL, "fmt=") {
		trackURL += "&fmt=json3"
	}

	body, err := c.get(ctx, trackURL)
	if err != nil {
		return nil, err
	}

	segments, err := parseTimedText(body)
	if err != nil {
		return nil, apperrors.TranscriptUnavailable(videoID).WithCause(err)
	}

	log.Info().
		Str("videoId", videoID).
		Int("segments", len(segments)).
		Dur("elapsed", time.Since(start)).
		Msg("transcript fetched")

	return segments, nil
}

func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, apperrors.Internal("failed to create transcript request").WithCause(err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept-Language", "en-US,en")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, apperrors.External("youtube", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apperrors.External("youtube", fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperrors.External("youtube", err)
	}
	return body, nil
}

// parseCaptionTracks digs the captionTracks array out of the watch page
// player config.
func parseCaptionTracks(page []byte) ([]captionTrack, error) {
	const marker = `"captionTracks":`

	idx := strings.Index(string(page), marker)
	if idx < 0 {
		return nil, nil
	}

	raw := extractJSONArray(string(page)[idx+len(marker):])
	if raw == "" {
		return nil, nil
	}

	var tracks []captionTrack
	if err := json.Unmarshal([]byte(raw), &tracks); err != nil {
		return nil, apperrors.External("youtube", fmt.Errorf("decode caption tracks: %w", err))
	}
	return tracks, nil
}

// extractJSONArray returns the balanced JSON array at the start of s,
// or "" when s does not start with one.
func extractJSONArray(s string) string {
	if len(s) == 0 || s[0] != '[' {
		return ""
	}

	depth := 0
	inString := false
	escaped := false
	for i := 0; i < len(s); i++ {
		ch := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				return s[:i+1]
			}
		}
	}
	return ""
}

func parseTimedText(body []byte) ([]Segment, error) {
	var timed timedTextResponse
	if err := json.Unmarshal(body, &timed); err != nil {
		return nil, fmt.Errorf("decode timed text: %w", err)
	}

	segments := make([]Segment, 0, len(timed.Events))
	for _, event := range timed.Events {
		var b strings.Builder
		for _, seg := range event.Segs {
			b.WriteString(seg.UTF8)
		}
		text := strings.TrimSpace(b.String())
		if text == "" {
			continue
		}
		segments = append(segments, Segment{
			Text:     text,
			Offset:   float64(event.StartMs) / 1000,
			Duration: float64(event.DurationMs) / 1000,
		})
	}
	return segments, nil
}
