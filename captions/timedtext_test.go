package captions

import (
	"testing"

	"github.com/nijaru/yt-transcript/errors"
	"github.com/nijaru/yt-transcript/models"
)

func TestDecode(t *testing.T) {
	payload := `<?xml version="1.0" encoding="utf-8" ?>
<transcript>
<text start="0.5" dur="1.54">Hey there</text>
<text start="2.04" dur="3.1">I&amp;#39;m &lt;b&gt;bold&lt;/b&gt; &amp;amp; &lt;font color="#fff"&gt;white&lt;/font&gt;</text>
<text start="5.14">no duration</text>
</transcript>`

	items, err := NewDecoder(false).Decode([]byte(payload))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []models.TranscriptItem{
		{Text: "Hey there", Start: 0.5, Duration: 1.54},
		{Text: "I'm bold & white", Start: 2.04, Duration: 3.1},
		{Text: "no duration", Start: 5.14, Duration: 0},
	}
	if len(items) != len(want) {
		t.Fatalf("got %d items want %d", len(items), len(want))
	}
	for i := range want {
		if items[i] != want[i] {
			t.Errorf("item %d: got %+v want %+v", i, items[i], want[i])
		}
	}
}

func TestDecodePreserveFormatting(t *testing.T) {
	payload := `<transcript><text start="1" dur="2">&lt;i&gt;music&lt;/i&gt; &lt;font color="red"&gt;plays&lt;/font&gt;</text></transcript>`

	items, err := NewDecoder(true).Decode([]byte(payload))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("got %d items want 1", len(items))
	}
	if items[0].Text != "<i>music</i> plays" {
		t.Errorf("got %q want %q", items[0].Text, "<i>music</i> plays")
	}
}

func TestDecodeKeepsDocumentOrder(t *testing.T) {
	payload := `<transcript><text start="9" dur="1">later</text><text start="1" dur="1">earlier</text></transcript>`

	items, err := NewDecoder(false).Decode([]byte(payload))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if items[0].Text != "later" || items[1].Text != "earlier" {
		t.Errorf("items were reordered: %+v", items)
	}
}

func TestDecodeEmpty(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{"empty body", ""},
		{"whitespace", "  \n"},
		{"empty root", "<transcript></transcript>"},
		{"self-closing root", "<transcript/>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items, err := NewDecoder(false).Decode([]byte(tt.payload))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if items == nil || len(items) != 0 {
				t.Errorf("expected empty non-nil slice, got %#v", items)
			}
		})
	}
}

func TestDecodeMalformed(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{"unterminated", `<transcript><text start="1" dur="2">hello`},
		{"not xml", "this is not xml"},
		{"wrong root", `<html><body>oops</body></html>`},
		{"bad start", `<transcript><text start="abc" dur="1">x</text></transcript>`},
		{"bad dur", `<transcript><text start="1" dur="?">x</text></transcript>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewDecoder(false).Decode([]byte(tt.payload))
			if !errors.Is(err, errors.XMLParseError) {
				t.Errorf("expected XMLParseError, got %v", err)
			}
		})
	}
}
