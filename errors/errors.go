package errors

import (
	"fmt"
	"net/http"
	"strings"

	pkgerrors "github.com/pkg/errors"
)

// Kind classifies every failure the transcript pipeline can report.
type Kind int

const (
	Unknown Kind = iota
	InvalidVideoID
	HTTPError
	IPBlocked
	FailedToCreateConsentCookie
	YouTubeDataUnparsable
	JSONParseError
	XMLParseError
	RequestBlocked
	AgeRestricted
	VideoUnavailable
	VideoUnplayable
	TranscriptsDisabled
	NoTranscriptFound
	NotTranslatable
	TranslationLanguageNotAvailable
	PoTokenRequired
)

var kindNames = map[Kind]string{
	Unknown:                         "unknown",
	InvalidVideoID:                  "invalid_video_id",
	HTTPError:                       "http_error",
	IPBlocked:                       "ip_blocked",
	FailedToCreateConsentCookie:     "failed_to_create_consent_cookie",
	YouTubeDataUnparsable:           "youtube_data_unparsable",
	JSONParseError:                  "json_parse_error",
	XMLParseError:                   "xml_parse_error",
	RequestBlocked:                  "request_blocked",
	AgeRestricted:                   "age_restricted",
	VideoUnavailable:                "video_unavailable",
	VideoUnplayable:                 "video_unplayable",
	TranscriptsDisabled:             "transcripts_disabled",
	NoTranscriptFound:               "no_transcript_found",
	NotTranslatable:                 "not_translatable",
	TranslationLanguageNotAvailable: "translation_language_not_available",
	PoTokenRequired:                 "po_token_required",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return kindNames[Unknown]
}

// HTTPStatus maps a kind onto the status code the API surface answers with.
func (k Kind) HTTPStatus() int {
	switch k {
	case InvalidVideoID:
		return http.StatusBadRequest
	case IPBlocked, RequestBlocked:
		return http.StatusTooManyRequests
	case AgeRestricted, PoTokenRequired:
		return http.StatusForbidden
	case VideoUnavailable, TranscriptsDisabled, NoTranscriptFound:
		return http.StatusNotFound
	case VideoUnplayable, NotTranslatable, TranslationLanguageNotAvailable:
		return http.StatusUnprocessableEntity
	case HTTPError, FailedToCreateConsentCookie, YouTubeDataUnparsable, JSONParseError, XMLParseError:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

type Error struct {
	Kind Kind   `json:"kind"`
	Op   string `json:"-"`

	VideoID    string   `json:"video_id,omitempty"`
	Languages  []string `json:"languages,omitempty"`
	Language   string   `json:"language,omitempty"`
	Reason     string   `json:"reason,omitempty"`
	StatusCode int      `json:"status_code,omitempty"`

	Err error `json:"-"`
}

func (e *Error) Error() string {
	msg := e.message()
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) message() string {
	switch e.Kind {
	case InvalidVideoID:
		return fmt.Sprintf("invalid video id: %s (YouTube video IDs must be 11 characters, or a valid YouTube URL)", e.VideoID)
	case HTTPError:
		if e.StatusCode > 0 {
			return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Reason)
		}
		return fmt.Sprintf("request failed: %s", e.Reason)
	case IPBlocked:
		return fmt.Sprintf("requests from this IP are blocked by YouTube (video %s)", e.VideoID)
	case FailedToCreateConsentCookie:
		return fmt.Sprintf("failed to create consent cookie for video %s", e.VideoID)
	case YouTubeDataUnparsable:
		return fmt.Sprintf("could not parse YouTube data for video %s: %s", e.VideoID, e.Reason)
	case JSONParseError:
		return fmt.Sprintf("invalid JSON response for video %s", e.VideoID)
	case XMLParseError:
		return "invalid caption XML"
	case RequestBlocked:
		return fmt.Sprintf("YouTube is blocking requests for video %s (bot check)", e.VideoID)
	case AgeRestricted:
		return fmt.Sprintf("video %s is age restricted", e.VideoID)
	case VideoUnavailable:
		return fmt.Sprintf("video %s is unavailable", e.VideoID)
	case VideoUnplayable:
		return fmt.Sprintf("video %s is unplayable: %s", e.VideoID, e.Reason)
	case TranscriptsDisabled:
		return fmt.Sprintf("transcripts are disabled for video %s", e.VideoID)
	case NoTranscriptFound:
		return fmt.Sprintf("no transcript found for video %s in languages [%s]", e.VideoID, strings.Join(e.Languages, ", "))
	case NotTranslatable:
		return fmt.Sprintf("transcript for video %s is not translatable", e.VideoID)
	case TranslationLanguageNotAvailable:
		return fmt.Sprintf("translation language %s is not available for video %s", e.Language, e.VideoID)
	case PoTokenRequired:
		return fmt.Sprintf("a PoToken is required to fetch the transcript for video %s", e.VideoID)
	default:
		if e.Reason != "" {
			return e.Reason
		}
		return "unknown error"
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports kind equality so callers can match against sentinel values like
// &Error{Kind: NoTranscriptFound}.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// KindOf returns the kind of the first *Error in err's chain, or Unknown.
func KindOf(err error) Kind {
	var e *Error
	if pkgerrors.As(err, &e) {
		return e.Kind
	}
	return Unknown
}

func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

func New(kind Kind, op, videoID string) *Error {
	return &Error{Kind: kind, Op: op, VideoID: videoID}
}

func InvalidVideo(op, input string) *Error {
	return &Error{Kind: InvalidVideoID, Op: op, VideoID: input}
}

func HTTPStatusError(op, videoID string, statusCode int, body string) *Error {
	return &Error{Kind: HTTPError, Op: op, VideoID: videoID, StatusCode: statusCode, Reason: body}
}

// Transport wraps a failure below the HTTP layer (dial, TLS, body read).
func Transport(op, videoID string, err error) *Error {
	return &Error{Kind: HTTPError, Op: op, VideoID: videoID, Reason: "transport failure", Err: pkgerrors.WithStack(err)}
}

// TooLarge reports a response body over the read limit.
func TooLarge(op, videoID string, limit int64) *Error {
	return &Error{Kind: HTTPError, Op: op, VideoID: videoID, Reason: fmt.Sprintf("response too large (over %d bytes)", limit)}
}

func Unparsable(op, videoID, reason string) *Error {
	return &Error{Kind: YouTubeDataUnparsable, Op: op, VideoID: videoID, Reason: reason}
}

func JSON(op, videoID string, err error) *Error {
	return &Error{Kind: JSONParseError, Op: op, VideoID: videoID, Err: pkgerrors.Wrap(err, "decode json")}
}

func XML(op string, err error) *Error {
	return &Error{Kind: XMLParseError, Op: op, Err: err}
}

func Unplayable(op, videoID, reason string) *Error {
	return &Error{Kind: VideoUnplayable, Op: op, VideoID: videoID, Reason: reason}
}

func NoTranscript(op, videoID string, languages []string) *Error {
	langs := make([]string, len(languages))
	copy(langs, languages)
	return &Error{Kind: NoTranscriptFound, Op: op, VideoID: videoID, Languages: langs}
}

func TranslationUnavailable(op, videoID, language string) *Error {
	return &Error{Kind: TranslationLanguageNotAvailable, Op: op, VideoID: videoID, Language: language}
}
