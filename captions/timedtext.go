package captions

import (
	"bytes"
	"encoding/xml"
	"html"
	"regexp"
	"strconv"
	"strings"

	pkgerrors "github.com/pkg/errors"

	"github.com/nijaru/yt-transcript/errors"
	"github.com/nijaru/yt-transcript/models"
)

var (
	tagPattern = regexp.MustCompile(`</?([a-zA-Z][a-zA-Z0-9]*)\b[^>]*>`)

	formattingTags = map[string]bool{
		"strong": true,
		"em":     true,
		"b":      true,
		"i":      true,
		"mark":   true,
		"small":  true,
		"del":    true,
		"ins":    true,
		"sub":    true,
		"sup":    true,
	}
)

type timedText struct {
	XMLName xml.Name  `xml:"transcript"`
	Cues    []*xmlCue `xml:"text"`
}

type xmlCue struct {
	Start    string `xml:"start,attr"`
	Duration string `xml:"dur,attr"`
	Text     string `xml:",chardata"`
}

// Decoder turns a timedtext payload (<transcript><text start dur>…) into
// transcript items, in document order.
type Decoder struct {
	preserveFormatting bool
}

// NewDecoder returns a decoder. With preserveFormatting set, basic formatting
// tags (<b>, <i>, <em>…) survive in the cue text; otherwise all markup is
// stripped.
func NewDecoder(preserveFormatting bool) *Decoder {
	return &Decoder{preserveFormatting: preserveFormatting}
}

func (d *Decoder) Decode(payload []byte) ([]models.TranscriptItem, error) {
	if len(bytes.TrimSpace(payload)) == 0 {
		return []models.TranscriptItem{}, nil
	}

	doc := new(timedText)
	dec := xml.NewDecoder(bytes.NewReader(payload))
	dec.Entity = xml.HTMLEntity
	if err := dec.Decode(doc); err != nil {
		return nil, errors.XML("Decode", pkgerrors.Wrap(err, "timedtext"))
	}

	items := make([]models.TranscriptItem, 0, len(doc.Cues))
	for _, c := range doc.Cues {
		start, err := parseSeconds(c.Start)
		if err != nil {
			return nil, errors.XML("Decode", pkgerrors.Wrapf(err, "start attribute %q", c.Start))
		}
		dur, err := parseSeconds(c.Duration)
		if err != nil {
			return nil, errors.XML("Decode", pkgerrors.Wrapf(err, "dur attribute %q", c.Duration))
		}
		items = append(items, models.TranscriptItem{
			Text:     d.cleanText(c.Text),
			Start:    start,
			Duration: dur,
		})
	}
	return items, nil
}

// parseSeconds treats a missing attribute as zero.
func parseSeconds(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	return strconv.ParseFloat(s, 64)
}

func (d *Decoder) cleanText(s string) string {
	// cue text arrives entity-encoded a second time (&amp;#39;)
	s = html.UnescapeString(s)
	return tagPattern.ReplaceAllStringFunc(s, func(tag string) string {
		if d.preserveFormatting {
			m := tagPattern.FindStringSubmatch(tag)
			if len(m) > 1 && formattingTags[strings.ToLower(m[1])] {
				return tag
			}
		}
		return ""
	})
}
