package infra

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
)

func TestNewLoggerProductionWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerTo(&buf, "production", "")
	logger.Debug().Msg("hidden")
	logger.Info().Str("job_id", "J-1").Msg("report generated")

	var entry map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry); err != nil {
		t.Fatalf("expected a single JSON line, got %q: %v", buf.String(), err)
	}
	if entry["service"] != "fieldreport" || entry["job_id"] != "J-1" {
		t.Fatalf("unexpected entry: %v", entry)
	}
}

func TestNewLoggerLevelOverride(t *testing.T) {
	logger := NewLoggerTo(&bytes.Buffer{}, "development", "warn")
	if logger.GetLevel() != zerolog.WarnLevel {
		t.Fatalf("level = %s", logger.GetLevel())
	}
	if l := NewLoggerTo(&bytes.Buffer{}, "production", "nonsense"); l.GetLevel() != zerolog.InfoLevel {
		t.Fatalf("level = %s", l.GetLevel())
	}
}
