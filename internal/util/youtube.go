package util

import (
	"net/url"
	"strings"
)

// ExtractVideoID pulls the video identifier out of a YouTube watch URL.
// Supported forms: youtu.be/<id> and (www.)youtube.com/watch?v=<id>.
// Returns "" for anything else.
func ExtractVideoID(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}

	host := strings.ToLower(parsed.Hostname())
	switch host {
	case "youtu.be":
		return strings.Trim(parsed.Path, "/")
	case "youtube.com", "www.youtube.com", "m.youtube.com":
		return parsed.Query().Get("v")
	default:
		return ""
	}
}
