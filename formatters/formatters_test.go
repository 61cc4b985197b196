package formatters

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/nijaru/yt-transcript/models"
)

func sampleResult() *models.TranscriptResult {
	return &models.TranscriptResult{
		VideoID:        "dQw4w9WgXcQ",
		Language:       "English",
		LanguageCode:   "en",
		IsTranslatable: true,
		Items: []models.TranscriptItem{
			{Text: "Never gonna give you up.", Start: 0.5, Duration: 2},
			{Text: "Never gonna let you down!", Start: 2.0, Duration: 3661.25},
		},
	}
}

func TestSRT(t *testing.T) {
	out, err := SRTFormatter{}.Format(sampleResult())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := "1\n00:00:00,500 --> 00:00:02,000\nNever gonna give you up.\n\n" +
		"2\n00:00:02,000 --> 01:01:03,250\nNever gonna let you down!\n\n"
	if out != want {
		t.Errorf("got\n%q\nwant\n%q", out, want)
	}
}

func TestWebVTT(t *testing.T) {
	out, err := WebVTTFormatter{}.Format(sampleResult())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.HasPrefix(out, "WEBVTT\n\n") {
		t.Errorf("missing header: %q", out)
	}
	if !strings.Contains(out, "00:00:00.500 --> 00:00:02.000\nNever gonna give you up.") {
		t.Errorf("unexpected cue layout: %q", out)
	}
}

func TestText(t *testing.T) {
	out, _ := TextFormatter{}.Format(sampleResult())

	if out != "Never gonna give you up.\nNever gonna let you down!" {
		t.Errorf("got %q", out)
	}
}

func TestParagraph(t *testing.T) {
	result := &models.TranscriptResult{Items: []models.TranscriptItem{
		{Text: "first  part"}, {Text: "of a sentence."}, {Text: "  "}, {Text: "Next one?"},
	}}

	out, _ := ParagraphFormatter{}.Format(result)
	if out != "first part of a sentence.\n Next one?\n" {
		t.Errorf("got %q", out)
	}
}

func TestJSON(t *testing.T) {
	out, err := JSONFormatter{}.Format(sampleResult())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal([]byte(out), &decoded); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	for _, key := range []string{"video_id", "language", "language_code", "is_generated", "is_translatable", "transcript"} {
		if _, ok := decoded[key]; !ok {
			t.Errorf("missing key %s", key)
		}
	}
}

func TestForName(t *testing.T) {
	tests := []struct {
		name    string
		want    string
		wantErr bool
	}{
		{"", "application/json", false},
		{"JSON", "application/json", false},
		{"srt", "application/x-subrip; charset=utf-8", false},
		{"webvtt", "text/vtt; charset=utf-8", false},
		{"txt", "text/plain; charset=utf-8", false},
		{"docx", "", true},
	}

	for _, tt := range tests {
		f, err := ForName(tt.name)
		if (err != nil) != tt.wantErr {
			t.Errorf("ForName(%q) error = %v, wantErr %v", tt.name, err, tt.wantErr)
			continue
		}
		if err == nil && f.ContentType() != tt.want {
			t.Errorf("ForName(%q) content type %q want %q", tt.name, f.ContentType(), tt.want)
		}
	}
}

func TestCuesClipOverlap(t *testing.T) {
	items := []models.TranscriptItem{
		{Text: "a", Start: 1, Duration: 5},
		{Text: "b", Start: 3, Duration: 1},
	}

	c := cues(items)
	if c[0].end != seconds(3) {
		t.Errorf("first cue should end at next start, got %v", c[0].end)
	}
	if c[1].end != seconds(4) {
		t.Errorf("last cue end: got %v", c[1].end)
	}
}
