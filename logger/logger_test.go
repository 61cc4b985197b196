package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestNewWritesRotatingFile(t *testing.T) {
	dir := t.TempDir()

	log, err := New(Options{Dir: dir, Level: "debug", Format: "json"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if log.GetLevel() != logrus.DebugLevel {
		t.Errorf("expected debug level, got %v", log.GetLevel())
	}

	log.WithField("video_id", "dQw4w9WgXcQ").Info("Listed transcripts")

	data, err := os.ReadFile(filepath.Join(dir, logFileName))
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(data), `"video_id":"dQw4w9WgXcQ"`) {
		t.Errorf("expected json entry, got %s", data)
	}
}

func TestNewInvalidOptions(t *testing.T) {
	if _, err := New(Options{Level: "loud"}); err == nil {
		t.Error("expected error for invalid level")
	}
	if _, err := New(Options{Level: "info", Format: "xml"}); err == nil {
		t.Error("expected error for invalid format")
	}
}
