package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewWithWritersFansOut(t *testing.T) {
	var console, file bytes.Buffer
	logger := NewWithWriters("worker", "info", &console, &file)

	logger.Debug("hidden")
	logger.Info("record_processed", "record_id", "rec1")

	if strings.Contains(console.String(), "hidden") {
		t.Fatalf("debug line must be filtered at info level")
	}
	if !strings.Contains(console.String(), "record_id=rec1") {
		t.Fatalf("console output lacks text attrs: %q", console.String())
	}
	var line map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(file.Bytes()), &line); err != nil {
		t.Fatalf("file output is not JSON: %v (%q)", err, file.String())
	}
	if line["msg"] != "record_processed" || line["service"] != "worker" {
		t.Fatalf("unexpected JSON line %v", line)
	}
}

func TestNewWritesLogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "worker.log")
	logger, cleanup, err := New("worker", "warn", path)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	logger.Warn("fallback_used")
	if err := cleanup(); err != nil {
		t.Fatalf("cleanup() error = %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(raw), `"msg":"fallback_used"`) {
		t.Fatalf("unexpected log file %q", raw)
	}
}

func TestParseLevel(t *testing.T) {
	if parseLevel("WARNING").String() != "WARN" || parseLevel("bogus").String() != "INFO" {
		t.Fatalf("unexpected level parsing")
	}
}
