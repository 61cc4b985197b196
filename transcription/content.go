package transcription

import (
	"context"
	"net/url"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/nijaru/yt-transcript/errors"
	"github.com/nijaru/yt-transcript/models"
)

const poTokenMarker = "&exp=xpe"

// Fetch downloads and decodes one track. A non-empty translateTo asks
// YouTube for a machine translation into that language code.
func (c *Client) Fetch(ctx context.Context, videoID string, track *models.Track, translateTo string) (*models.TranscriptResult, error) {
	const op = "Fetch"

	if track == nil {
		return nil, errors.NoTranscript(op, videoID, nil)
	}

	captionURL := track.BaseURL
	if translateTo != "" {
		captionURL += "&tlang=" + url.QueryEscape(translateTo)
	}

	if strings.Contains(captionURL, poTokenMarker) {
		return nil, errors.New(errors.PoTokenRequired, op, videoID)
	}

	if err := c.wait(ctx); err != nil {
		return nil, err
	}

	body, err := c.get(ctx, op, videoID, captionURL, maxCaptionBytes)
	if err != nil {
		return nil, err
	}

	items, err := c.decoder.Decode(body)
	if err != nil {
		if e, ok := err.(*errors.Error); ok {
			e.VideoID = videoID
		}
		return nil, err
	}

	result := &models.TranscriptResult{
		VideoID:        videoID,
		Language:       track.Language,
		LanguageCode:   track.LanguageCode,
		IsGenerated:    track.IsGenerated,
		IsTranslatable: track.IsTranslatable,
		Items:          items,
	}
	if translateTo != "" {
		if name, ok := track.TranslationName(translateTo); ok {
			result.Language = name
		}
		result.LanguageCode = translateTo
		result.IsGenerated = true
	}

	c.logger.WithFields(logrus.Fields{
		"video_id": videoID,
		"language": result.LanguageCode,
		"items":    len(items),
	}).Debug("Fetched transcript")
	return result, nil
}

// FetchTranscript lists the video's tracks and fetches the first one matching
// languages (DefaultLanguages when empty).
func (c *Client) FetchTranscript(ctx context.Context, input string, languages []string) (*models.TranscriptResult, error) {
	if len(languages) == 0 {
		languages = DefaultLanguages
	}

	catalog, err := c.ListTranscripts(ctx, input)
	if err != nil {
		return nil, err
	}

	track, err := catalog.FindTranscript(languages)
	if err != nil {
		return nil, err
	}

	return c.Fetch(ctx, catalog.VideoID, track, "")
}

// TranslateTranscript lists the video's tracks and fetches the best source
// track translated into target.
func (c *Client) TranslateTranscript(ctx context.Context, input string, sourceLanguages []string, target string) (*models.TranscriptResult, error) {
	catalog, err := c.ListTranscripts(ctx, input)
	if err != nil {
		return nil, err
	}
	return c.TranslateFromCatalog(ctx, catalog, sourceLanguages, target)
}

// TranslateFromCatalog picks the source track from an already listed catalog.
// Untranslatable tracks and unknown targets fail before any request is made.
func (c *Client) TranslateFromCatalog(ctx context.Context, catalog *models.Catalog, sourceLanguages []string, target string) (*models.TranscriptResult, error) {
	const op = "TranslateTranscript"

	if len(sourceLanguages) == 0 {
		sourceLanguages = DefaultLanguages
	}

	track, err := catalog.FindTranscript(sourceLanguages)
	if err != nil {
		return nil, err
	}

	if !track.IsTranslatable {
		return nil, errors.New(errors.NotTranslatable, op, catalog.VideoID)
	}
	if _, ok := track.TranslationName(target); !ok {
		return nil, errors.TranslationUnavailable(op, catalog.VideoID, target)
	}

	return c.Fetch(ctx, catalog.VideoID, track, target)
}
