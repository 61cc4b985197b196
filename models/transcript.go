package models

import (
	"sort"

	"github.com/nijaru/yt-transcript/errors"
)

// TranscriptItem is a single caption cue. Start and Duration are seconds.
type TranscriptItem struct {
	Text     string  `json:"text"`
	Start    float64 `json:"start"`
	Duration float64 `json:"duration"`
}

type TranslationLanguage struct {
	Language     string `json:"language"`
	LanguageCode string `json:"language_code"`
}

// Track describes one caption track discovered for a video.
type Track struct {
	LanguageCode         string                `json:"language_code"`
	Language             string                `json:"language"`
	IsGenerated          bool                  `json:"is_generated"`
	IsTranslatable       bool                  `json:"is_translatable"`
	BaseURL              string                `json:"-"`
	TranslationLanguages []TranslationLanguage `json:"translation_languages,omitempty"`
}

// TranslationName returns the display name of code among the track's
// translation targets.
func (t *Track) TranslationName(code string) (string, bool) {
	for _, tl := range t.TranslationLanguages {
		if tl.LanguageCode == code {
			return tl.Language, true
		}
	}
	return "", false
}

// TranscriptResult is the decoded transcript of one track, possibly translated.
type TranscriptResult struct {
	VideoID        string           `json:"video_id"`
	Language       string           `json:"language"`
	LanguageCode   string           `json:"language_code"`
	IsGenerated    bool             `json:"is_generated"`
	IsTranslatable bool             `json:"is_translatable"`
	Items          []TranscriptItem `json:"transcript"`
}

// Catalog holds every caption track of a video, split by origin and keyed
// by language code.
type Catalog struct {
	VideoID              string                `json:"video_id"`
	ManuallyCreated      map[string]*Track     `json:"manually_created"`
	Generated            map[string]*Track     `json:"generated"`
	TranslationLanguages []TranslationLanguage `json:"translation_languages"`
}

func NewCatalog(videoID string) *Catalog {
	return &Catalog{
		VideoID:         videoID,
		ManuallyCreated: make(map[string]*Track),
		Generated:       make(map[string]*Track),
	}
}

// FindTranscript returns the first track matching the preference list,
// trying manually created tracks before generated ones for each code.
func (c *Catalog) FindTranscript(languageCodes []string) (*Track, error) {
	for _, code := range languageCodes {
		if t, ok := c.ManuallyCreated[code]; ok {
			return t, nil
		}
		if t, ok := c.Generated[code]; ok {
			return t, nil
		}
	}
	return nil, errors.NoTranscript("FindTranscript", c.VideoID, languageCodes)
}

func (c *Catalog) FindManuallyCreated(languageCodes []string) (*Track, error) {
	return findIn(c.ManuallyCreated, c.VideoID, "FindManuallyCreated", languageCodes)
}

func (c *Catalog) FindGenerated(languageCodes []string) (*Track, error) {
	return findIn(c.Generated, c.VideoID, "FindGenerated", languageCodes)
}

func findIn(tracks map[string]*Track, videoID, op string, languageCodes []string) (*Track, error) {
	for _, code := range languageCodes {
		if t, ok := tracks[code]; ok {
			return t, nil
		}
	}
	return nil, errors.NoTranscript(op, videoID, languageCodes)
}

// AllTranscripts lists manually created tracks first, then generated ones,
// each group ordered by language code.
func (c *Catalog) AllTranscripts() []*Track {
	all := make([]*Track, 0, len(c.ManuallyCreated)+len(c.Generated))
	all = append(all, sortedTracks(c.ManuallyCreated)...)
	all = append(all, sortedTracks(c.Generated)...)
	return all
}

func (c *Catalog) Empty() bool {
	return len(c.ManuallyCreated) == 0 && len(c.Generated) == 0
}

func sortedTracks(tracks map[string]*Track) []*Track {
	codes := make([]string, 0, len(tracks))
	for code := range tracks {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	out := make([]*Track, 0, len(codes))
	for _, code := range codes {
		out = append(out, tracks[code])
	}
	return out
}
