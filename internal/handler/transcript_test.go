package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "github.com/studyclip/flashcard-server-go/internal/errors"
	"github.com/studyclip/flashcard-server-go/internal/transcript"
)

// Mock transcript fetcher
type mockTranscriptFetcher struct {
	mock.Mock
}

func (m *mockTranscriptFetcher) Fetch(ctx context.Context, videoID string) ([]transcript.Segment, error) {
	args := m.Called(ctx, videoID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]transcript.Segment), args.Error(1)
}

func fetchTranscript(t *testing.T, h *TranscriptHandler, videoURL string) *httptest.ResponseRecorder {
	t.Helper()
	target := "/transcript"
	if videoURL != "" {
		target += "?url=" + url.QueryEscape(videoURL)
	}
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	h.Fetch(rec, req)
	return rec
}

func TestTranscriptHandler_Fetch(t *testing.T) {
	t.Run("returns segments for a YouTube URL", func(t *testing.T) {
		fetcher := new(mockTranscriptFetcher)
		h := NewTranscriptHandler(fetcher)

		fetcher.On("Fetch", mock.Anything, "dQw4w9WgXcQ").Return([]transcript.Segment{
			{Text: "hello", Offset: 0, Duration: 1.5},
		}, nil)

		rec := fetchTranscript(t, h, "https://www.youtube.com/watch?v=dQw4w9WgXcQ")

		assert.Equal(t, http.StatusOK, rec.Code)
		var segments []transcript.Segment
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &segments))
		require.Len(t, segments, 1)
		assert.Equal(t, "hello", segments[0].Text)
	})

	t.Run("short link resolves to the same video id", func(t *testing.T) {
		fetcher := new(mockTranscriptFetcher)
		h := NewTranscriptHandler(fetcher)

		fetcher.On("Fetch", mock.Anything, "dQw4w9WgXcQ").Return([]transcript.Segment{}, nil)

		rec := fetchTranscript(t, h, "https://youtu.be/dQw4w9WgXcQ")

		assert.Equal(t, http.StatusOK, rec.Code)
		fetcher.AssertExpectations(t)
	})

	t.Run("missing url is a 400", func(t *testing.T) {
		fetcher := new(mockTranscriptFetcher)
		h := NewTranscriptHandler(fetcher)

		rec := fetchTranscript(t, h, "")

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		fetcher.AssertNotCalled(t, "Fetch", mock.Anything, mock.Anything)
	})

	t.Run("non-YouTube url is a 400", func(t *testing.T) {
		fetcher := new(mockTranscriptFetcher)
		h := NewTranscriptHandler(fetcher)

		rec := fetchTranscript(t, h, "https://vimeo.com/12345")

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		fetcher.AssertNotCalled(t, "Fetch", mock.Anything, mock.Anything)
	})

	t.Run("video without captions is a 404", func(t *testing.T) {
		fetcher := new(mockTranscriptFetcher)
		h := NewTranscriptHandler(fetcher)

		fetcher.On("Fetch", mock.Anything, "dQw4w9WgXcQ").
			Return(nil, apperrors.TranscriptUnavailable("dQw4w9WgXcQ"))

		rec := fetchTranscript(t, h, "https://www.youtube.com/watch?v=dQw4w9WgXcQ")

		assert.Equal(t, http.StatusNotFound, rec.Code)
		var body map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, string(apperrors.ErrCodeTranscriptUnavailable), body["code"])
	})
}
