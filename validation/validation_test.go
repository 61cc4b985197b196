package validation

import (
	"strings"
	"testing"

	"github.com/nijaru/yt-transcript/errors"
)

func TestResolveVideoID(t *testing.T) {
	tests := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{"dQw4w9WgXcQ", "dQw4w9WgXcQ", false},
		{"  dQw4w9WgXcQ\n", "dQw4w9WgXcQ", false},
		{"https://www.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ", false},
		{"https://www.youtube.com/watch?feature=share&v=dQw4w9WgXcQ&t=42", "dQw4w9WgXcQ", false},
		{"http://m.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ", false},
		{"youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ", false},
		{"https://youtu.be/dQw4w9WgXcQ", "dQw4w9WgXcQ", false},
		{"https://youtu.be/_NuH3D4SN-c?si=VSFea_rMwtaiR8Q7", "_NuH3D4SN-c", false},
		{"youtu.be/_NuH3D4SN-c", "_NuH3D4SN-c", false},
		{"https://www.youtube.com/embed/dQw4w9WgXcQ", "dQw4w9WgXcQ", false},
		{"www.youtube.com/embed/dQw4w9WgXcQ?start=10", "dQw4w9WgXcQ", false},
		{"not-a-valid-id", "", true},
		{"https://example.com", "", true},
		{"https://example.com/watch?v=dQw4w9WgXcQ", "", true},
		{"https://www.youtube.com/watch?v=tooshort", "", true},
		{"https://www.youtube.com/embed/", "", true},
		{"https://www.youtube.com/", "", true},
		{"dQw4w9WgXc!", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ResolveVideoID(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ResolveVideoID(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ResolveVideoID(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestResolveVideoIDErrorMessage(t *testing.T) {
	_, err := ResolveVideoID("not-a-valid-id")

	if !errors.Is(err, errors.InvalidVideoID) {
		t.Fatalf("expected InvalidVideoID, got %v", err)
	}
	msg := err.Error()
	if !strings.Contains(msg, "not-a-valid-id") {
		t.Errorf("expected input in message, got %s", msg)
	}
	if !strings.Contains(msg, "YouTube video IDs must be 11 characters, or a valid YouTube URL") {
		t.Errorf("expected format hint in message, got %s", msg)
	}
}

func TestIsVideoID(t *testing.T) {
	tests := []struct {
		id   string
		want bool
	}{
		{"dQw4w9WgXcQ", true},
		{"_NuH3D4SN-c", true},
		{"dQw4w9WgXc", false},
		{"dQw4w9WgXcQQ", false},
		{"dQw4w9WgXc?", false},
		{"dQw4w9WgXcé", false},
	}

	for _, tt := range tests {
		if got := IsVideoID(tt.id); got != tt.want {
			t.Errorf("IsVideoID(%q) = %v, want %v", tt.id, got, tt.want)
		}
	}
}
