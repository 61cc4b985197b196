package formatters

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	pkgerrors "github.com/pkg/errors"

	"github.com/nijaru/yt-transcript/models"
	"github.com/nijaru/yt-transcript/utils"
)

// Formatter renders a transcript for output.
type Formatter interface {
	Format(result *models.TranscriptResult) (string, error)
	ContentType() string
}

// Names lists the formats accepted by ForName.
var Names = []string{"json", "text", "paragraph", "srt", "vtt"}

func ForName(name string) (Formatter, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "json":
		return JSONFormatter{Indent: true}, nil
	case "text", "txt":
		return TextFormatter{}, nil
	case "paragraph":
		return ParagraphFormatter{}, nil
	case "srt":
		return SRTFormatter{}, nil
	case "vtt", "webvtt":
		return WebVTTFormatter{}, nil
	default:
		return nil, pkgerrors.Errorf("unknown format %q (want one of %s)", name, strings.Join(Names, ", "))
	}
}

type JSONFormatter struct {
	Indent bool
}

func (f JSONFormatter) Format(result *models.TranscriptResult) (string, error) {
	var (
		b   []byte
		err error
	)
	if f.Indent {
		b, err = json.MarshalIndent(result, "", "  ")
	} else {
		b, err = json.Marshal(result)
	}
	if err != nil {
		return "", pkgerrors.Wrap(err, "marshal transcript")
	}
	return string(b), nil
}

func (JSONFormatter) ContentType() string { return "application/json" }

// TextFormatter writes one cue per line.
type TextFormatter struct{}

func (TextFormatter) Format(result *models.TranscriptResult) (string, error) {
	lines := make([]string, 0, len(result.Items))
	for _, item := range result.Items {
		lines = append(lines, item.Text)
	}
	return strings.Join(lines, "\n"), nil
}

func (TextFormatter) ContentType() string { return "text/plain; charset=utf-8" }

// ParagraphFormatter joins cues into running text broken at sentence ends.
type ParagraphFormatter struct{}

func (ParagraphFormatter) Format(result *models.TranscriptResult) (string, error) {
	parts := make([]string, 0, len(result.Items))
	for _, item := range result.Items {
		if text := strings.Join(strings.Fields(item.Text), " "); text != "" {
			parts = append(parts, text)
		}
	}
	return utils.FormatText(strings.Join(parts, " ")), nil
}

func (ParagraphFormatter) ContentType() string { return "text/plain; charset=utf-8" }

type SRTFormatter struct{}

func (SRTFormatter) Format(result *models.TranscriptResult) (string, error) {
	var b strings.Builder
	for i, c := range cues(result.Items) {
		fmt.Fprintf(&b, "%d\n", i+1)
		fmt.Fprintf(&b, "%s --> %s\n", timestamp(c.start, ","), timestamp(c.end, ","))
		b.WriteString(c.text)
		b.WriteString("\n\n")
	}
	return b.String(), nil
}

func (SRTFormatter) ContentType() string { return "application/x-subrip; charset=utf-8" }

type WebVTTFormatter struct{}

func (WebVTTFormatter) Format(result *models.TranscriptResult) (string, error) {
	var b strings.Builder
	b.WriteString("WEBVTT\n\n")
	for _, c := range cues(result.Items) {
		fmt.Fprintf(&b, "%s --> %s\n", timestamp(c.start, "."), timestamp(c.end, "."))
		b.WriteString(c.text)
		b.WriteString("\n\n")
	}
	return b.String(), nil
}

func (WebVTTFormatter) ContentType() string { return "text/vtt; charset=utf-8" }

type cue struct {
	start, end time.Duration
	text       string
}

// cues converts items to timed cues, clipping each end to the next start so
// players never show two cues at once.
func cues(items []models.TranscriptItem) []cue {
	out := make([]cue, 0, len(items))
	for i, item := range items {
		start := seconds(item.Start)
		end := seconds(item.Start + item.Duration)
		if i+1 < len(items) {
			if next := seconds(items[i+1].Start); next > start && next < end {
				end = next
			}
		}
		out = append(out, cue{start: start, end: end, text: item.Text})
	}
	return out
}

func seconds(s float64) time.Duration {
	return time.Duration(math.Round(s*1000)) * time.Millisecond
}

// timestamp formats d as HH:MM:SS<sep>mmm.
func timestamp(d time.Duration, sep string) string {
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	secs := int(d.Seconds()) % 60
	millis := int(d.Milliseconds()) % 1000

	return fmt.Sprintf("%02d:%02d:%02d%s%03d", hours, minutes, secs, sep, millis)
}
