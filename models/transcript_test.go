package models

import (
	"testing"

	"github.com/nijaru/yt-transcript/errors"
)

func testCatalog() *Catalog {
	c := NewCatalog("dQw4w9WgXcQ")
	c.ManuallyCreated["en"] = &Track{LanguageCode: "en", Language: "English"}
	c.ManuallyCreated["de"] = &Track{LanguageCode: "de", Language: "Deutsch"}
	c.Generated["en"] = &Track{LanguageCode: "en", Language: "English (auto-generated)", IsGenerated: true}
	c.Generated["fr"] = &Track{LanguageCode: "fr", Language: "Français (auto-generated)", IsGenerated: true}
	return c
}

func TestFindTranscript(t *testing.T) {
	c := testCatalog()

	tests := []struct {
		name          string
		langs         []string
		wantCode      string
		wantGenerated bool
		wantErr       bool
	}{
		{name: "manual preferred over generated", langs: []string{"en"}, wantCode: "en"},
		{name: "falls through to generated", langs: []string{"fr"}, wantCode: "fr", wantGenerated: true},
		{name: "preference order wins", langs: []string{"fr", "en"}, wantCode: "fr", wantGenerated: true},
		{name: "skips unknown codes", langs: []string{"es", "de"}, wantCode: "de"},
		{name: "nothing matches", langs: []string{"es", "it"}, wantErr: true},
		{name: "empty preference list", langs: nil, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			track, err := c.FindTranscript(tt.langs)
			if tt.wantErr {
				if !errors.Is(err, errors.NoTranscriptFound) {
					t.Fatalf("expected NoTranscriptFound, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if track.LanguageCode != tt.wantCode || track.IsGenerated != tt.wantGenerated {
				t.Errorf("got %s (generated=%v) want %s (generated=%v)", track.LanguageCode, track.IsGenerated, tt.wantCode, tt.wantGenerated)
			}
		})
	}
}

func TestFindTranscriptErrorCarriesCandidates(t *testing.T) {
	c := testCatalog()

	_, err := c.FindTranscript([]string{"es", "it"})
	e, ok := err.(*errors.Error)
	if !ok {
		t.Fatalf("expected *errors.Error, got %T", err)
	}
	if e.VideoID != "dQw4w9WgXcQ" {
		t.Errorf("got video id %s", e.VideoID)
	}
	if len(e.Languages) != 2 || e.Languages[0] != "es" || e.Languages[1] != "it" {
		t.Errorf("got languages %v want [es it]", e.Languages)
	}
}

func TestFindManuallyCreated(t *testing.T) {
	c := testCatalog()

	track, err := c.FindManuallyCreated([]string{"en"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if track.IsGenerated {
		t.Error("expected manually created track")
	}

	if _, err := c.FindManuallyCreated([]string{"fr"}); !errors.Is(err, errors.NoTranscriptFound) {
		t.Errorf("expected NoTranscriptFound for generated-only language, got %v", err)
	}
}

func TestFindGenerated(t *testing.T) {
	c := testCatalog()

	track, err := c.FindGenerated([]string{"de", "en"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !track.IsGenerated || track.LanguageCode != "en" {
		t.Errorf("got %s (generated=%v) want generated en", track.LanguageCode, track.IsGenerated)
	}

	if _, err := c.FindGenerated([]string{"de"}); !errors.Is(err, errors.NoTranscriptFound) {
		t.Errorf("expected NoTranscriptFound for manual-only language, got %v", err)
	}
}

func TestAllTranscripts(t *testing.T) {
	c := testCatalog()

	all := c.AllTranscripts()
	if len(all) != 4 {
		t.Fatalf("expected 4 tracks, got %d", len(all))
	}

	want := []struct {
		code      string
		generated bool
	}{{"de", false}, {"en", false}, {"en", true}, {"fr", true}}
	for i, w := range want {
		if all[i].LanguageCode != w.code || all[i].IsGenerated != w.generated {
			t.Errorf("track %d: got %s/%v want %s/%v", i, all[i].LanguageCode, all[i].IsGenerated, w.code, w.generated)
		}
	}
}

func TestTranslationName(t *testing.T) {
	track := &Track{
		TranslationLanguages: []TranslationLanguage{
			{Language: "German", LanguageCode: "de"},
			{Language: "Spanish", LanguageCode: "es"},
		},
	}

	if name, ok := track.TranslationName("es"); !ok || name != "Spanish" {
		t.Errorf("got %q, %v want Spanish, true", name, ok)
	}
	if _, ok := track.TranslationName("ja"); ok {
		t.Error("expected ja to be absent")
	}
}
