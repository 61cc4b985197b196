package captions

import (
	"strings"

	"github.com/nijaru/yt-transcript/errors"
	"github.com/nijaru/yt-transcript/models"
)

const (
	srv3Param = "&fmt=srv3"
	kindASR   = "asr"
)

// ExtractCatalog builds the track catalog from the
// captions.playerCaptionsTracklistRenderer node. Entries missing a language
// code or base URL are skipped; a video with no usable track at all is
// reported as TranscriptsDisabled.
func ExtractCatalog(videoID string, p *PlayerResponse) (*models.Catalog, error) {
	renderer, ok := p.root.path("captions", "playerCaptionsTracklistRenderer")
	if !ok {
		return nil, errors.New(errors.TranscriptsDisabled, "ExtractCatalog", videoID)
	}

	catalog := models.NewCatalog(videoID)
	catalog.TranslationLanguages = translationLanguages(renderer)

	tracks, _ := renderer.objects("captionTracks")
	for _, entry := range tracks {
		track, ok := readTrack(entry, catalog.TranslationLanguages)
		if !ok {
			continue
		}
		if track.IsGenerated {
			catalog.Generated[track.LanguageCode] = track
		} else {
			catalog.ManuallyCreated[track.LanguageCode] = track
		}
	}

	if catalog.Empty() {
		return nil, errors.New(errors.TranscriptsDisabled, "ExtractCatalog", videoID)
	}
	return catalog, nil
}

func translationLanguages(renderer node) []models.TranslationLanguage {
	entries, _ := renderer.objects("translationLanguages")

	out := make([]models.TranslationLanguage, 0, len(entries))
	for _, entry := range entries {
		code, ok := entry.str("languageCode")
		if !ok {
			continue
		}
		name, ok := entry.runText("languageName")
		if !ok {
			continue
		}
		out = append(out, models.TranslationLanguage{Language: name, LanguageCode: code})
	}
	return out
}

func readTrack(entry node, translations []models.TranslationLanguage) (*models.Track, bool) {
	code, ok := entry.str("languageCode")
	if !ok {
		return nil, false
	}
	baseURL, ok := entry.str("baseUrl")
	if !ok {
		return nil, false
	}

	name, ok := entry.runText("name")
	if !ok {
		name = code
	}
	kind, _ := entry.str("kind")
	translatable, _ := entry.boolean("isTranslatable")

	track := &models.Track{
		LanguageCode:   code,
		Language:       name,
		IsGenerated:    kind == kindASR,
		IsTranslatable: translatable,
		BaseURL:        strings.ReplaceAll(baseURL, srv3Param, ""),
	}
	if translatable {
		track.TranslationLanguages = append([]models.TranslationLanguage(nil), translations...)
	}
	return track, true
}
