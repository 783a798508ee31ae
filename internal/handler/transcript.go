package handler

import (
	"context"
	"net/http"

	"github.com/rs/zerolog/log"

	apperrors "github.com/studyclip/flashcard-server-go/internal/errors"
	"github.com/studyclip/flashcard-server-go/internal/transcript"
	"github.com/studyclip/flashcard-server-go/internal/util"
)

// TranscriptFetcher is the transcript gateway boundary.
type TranscriptFetcher interface {
	Fetch(ctx context.Context, videoID string) ([]transcript.Segment, error)
}

type TranscriptHandler struct {
	client TranscriptFetcher
}

func NewTranscriptHandler(client TranscriptFetcher) *TranscriptHandler {
	return &TranscriptHandler{client: client}
}

// GET /transcript?url=
func (h *TranscriptHandler) Fetch(w http.ResponseWriter, r *http.Request) {
	videoURL := r.URL.Query().Get("url")
	if videoURL == "" {
		writeError(w, apperrors.MissingRequired("url"))
		return
	}

	videoID := util.ExtractVideoID(videoURL)
	if videoID == "" {
		writeError(w, apperrors.InvalidInput("url", "not a YouTube URL"))
		return
	}

	segments, err := h.client.Fetch(r.Context(), videoID)
	if err != nil {
		if apperrors.GetCode(err) != apperrors.ErrCodeTranscriptUnavailable {
			log.Error().Err(err).Str("videoId", videoID).Msg("failed to fetch transcript")
		}
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, segments)
}
