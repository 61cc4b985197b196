package validation

import (
	"net/url"
	"strings"

	"github.com/nijaru/yt-transcript/errors"
)

const videoIDLength = 11

// ResolveVideoID turns a bare video id or a YouTube URL (watch, short or
// embed form, with or without a scheme) into an 11-character video id.
func ResolveVideoID(input string) (string, error) {
	trimmed := strings.TrimSpace(input)

	if IsVideoID(trimmed) {
		return trimmed, nil
	}

	rawURL := trimmed
	if !hasHTTPScheme(trimmed) && isYouTubeDomain(trimmed) {
		rawURL = "https://" + trimmed
	}

	parsedURL, err := url.Parse(rawURL)
	if err != nil || !isYouTubeDomain(parsedURL.Hostname()) {
		return "", errors.InvalidVideo("ResolveVideoID", input)
	}

	if id := parsedURL.Query().Get("v"); IsVideoID(id) {
		return id, nil
	}

	segments := strings.Split(strings.TrimPrefix(parsedURL.Path, "/"), "/")

	if parsedURL.Hostname() == "youtu.be" && IsVideoID(segments[0]) {
		return segments[0], nil
	}

	if len(segments) >= 2 && segments[0] == "embed" && IsVideoID(segments[1]) {
		return segments[1], nil
	}

	return "", errors.InvalidVideo("ResolveVideoID", input)
}

// IsVideoID reports whether s is exactly 11 characters of [A-Za-z0-9_-].
func IsVideoID(s string) bool {
	if len(s) != videoIDLength {
		return false
	}
	for _, c := range s {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '-', c == '_':
		default:
			return false
		}
	}
	return true
}

// LooksLikeURL reports whether the identifier was given with an http(s) scheme.
func LooksLikeURL(s string) bool {
	return hasHTTPScheme(s)
}

func hasHTTPScheme(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

func isYouTubeDomain(host string) bool {
	return strings.Contains(host, "youtube.com") || strings.Contains(host, "youtu.be")
}
