package utils

import (
	"encoding/json"
	"net/http"
	"strings"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/nijaru/yt-transcript/errors"
)

type errorResponse struct {
	Error     string   `json:"error"`
	Kind      string   `json:"kind,omitempty"`
	VideoID   string   `json:"video_id,omitempty"`
	Languages []string `json:"languages,omitempty"`
}

func HandleError(w http.ResponseWriter, message string, statusCode int) {
	writeJSON(w, statusCode, errorResponse{Error: message})
}

// RespondWithError answers with the status code mapped from the error kind.
// Errors outside the transcript taxonomy become a generic 500.
func RespondWithError(w http.ResponseWriter, err error) {
	kind := errors.KindOf(err)
	status := kind.HTTPStatus()

	entry := logrus.WithError(err).WithFields(logrus.Fields{
		"status_code": status,
		"kind":        kind.String(),
	})
	if status >= http.StatusInternalServerError {
		entry.Error("Request failed")
	} else {
		entry.Warn("Request failed")
	}

	if kind == errors.Unknown {
		HandleError(w, "Internal server error", status)
		return
	}

	resp := errorResponse{Error: err.Error(), Kind: kind.String()}
	var e *errors.Error
	if pkgerrors.As(err, &e) {
		resp.VideoID = e.VideoID
		resp.Languages = e.Languages
	}
	writeJSON(w, status, resp)
}

func RespondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	writeJSON(w, code, payload)
}

func RespondWithText(w http.ResponseWriter, code int, contentType, body string) {
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(code)
	if _, err := w.Write([]byte(body)); err != nil {
		logrus.WithError(err).Error("Failed to write response")
	}
}

func writeJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logrus.WithError(err).Error("Failed to encode JSON response")
	}
}

// FormatText breaks running text after each sentence terminator.
func FormatText(text string) string {
	text = strings.TrimSpace(text)
	var builder strings.Builder
	for _, char := range text {
		builder.WriteRune(char)
		if char == '.' || char == '!' || char == '?' {
			builder.WriteRune('\n')
		}
	}
	return builder.String()
}
