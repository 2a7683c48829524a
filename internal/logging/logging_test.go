package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"fare-predict/internal/config"
)

func TestNewWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fare.log")
	logger, cleanup, err := New(config.LogConfig{Level: "info", Format: "json", File: path, MaxSizeMB: 1, MaxBackups: 1})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	logger.Info("model loaded")
	logger.Debug("filtered out")
	cleanup()

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	out := string(raw)
	if !strings.Contains(out, `"msg":"model loaded"`) {
		t.Fatalf("log file missing entry: %s", out)
	}
	if strings.Contains(out, "filtered out") {
		t.Fatalf("debug entry written at info level: %s", out)
	}
}

func TestNewRejectsBadLevel(t *testing.T) {
	if _, _, err := New(config.LogConfig{Level: "loud", Format: "console"}); err == nil {
		t.Fatalf("expected level error")
	}
}
