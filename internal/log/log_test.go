package log

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestNewWithWriter_JSON(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := NewWithWriter(&buf, Config{Level: slog.LevelInfo, JSON: true})
	logger.Info("server started", "addr", ":8080")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, buf.String())
	}
	if entry["msg"] != "server started" {
		t.Errorf("msg = %v", entry["msg"])
	}
	if entry["addr"] != ":8080" {
		t.Errorf("addr = %v", entry["addr"])
	}
}

func TestNewWithWriter_Text(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := NewWithWriter(&buf, Config{Level: slog.LevelDebug})
	logger.Debug("indexing document", "id", "doc_1")

	out := buf.String()
	if !strings.Contains(out, "indexing document") || !strings.Contains(out, "id=doc_1") {
		t.Errorf("unexpected text output: %s", out)
	}
}

func TestNewWithWriter_LevelFilter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := NewWithWriter(&buf, Config{Level: slog.LevelWarn})

	logger.Info("dropped")
	if buf.Len() != 0 {
		t.Errorf("info record passed a warn-level filter: %s", buf.String())
	}

	logger.Warn("kept")
	if !strings.Contains(buf.String(), "kept") {
		t.Error("warn record missing")
	}
}

func TestNewNop(t *testing.T) {
	t.Parallel()

	logger := NewNop()
	if logger == nil {
		t.Fatal("NewNop() returned nil")
	}
	logger.Error("discarded", "key", "value")
}
