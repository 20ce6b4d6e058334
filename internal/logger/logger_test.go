package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func lastLine(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	var entry map[string]interface{}
	if err := json.Unmarshal([]byte(lines[len(lines)-1]), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v (%q)", err, buf.String())
	}
	return entry
}

func TestNewWithWriterLevel(t *testing.T) {
	tests := []struct {
		level string
		want  zerolog.Level
	}{
		{level: "debug", want: zerolog.DebugLevel},
		{level: "WARN", want: zerolog.WarnLevel},
		{level: "", want: zerolog.InfoLevel},
		{level: "loud", want: zerolog.InfoLevel},
	}
	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			if got := NewWithWriter(&bytes.Buffer{}, tt.level).GetLevel(); got != tt.want {
				t.Fatalf("GetLevel() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRuntimeFormatsMessages(t *testing.T) {
	var buf bytes.Buffer
	log := Runtime(NewWithWriter(&buf, "debug"))

	log.Info("MatchLoop: Practice %s won by %s.", "m1", "player")
	entry := lastLine(t, &buf)
	if entry["message"] != "MatchLoop: Practice m1 won by player." || entry["level"] != "info" {
		t.Fatalf("entry = %v", entry)
	}

	log.Warn("careful")
	if entry := lastLine(t, &buf); entry["level"] != "warn" {
		t.Fatalf("entry = %v, want warn", entry)
	}
}

func TestRuntimeRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	log := Runtime(NewWithWriter(&buf, "error"))
	log.Debug("hidden")
	log.Info("hidden")
	if buf.Len() != 0 {
		t.Fatalf("filtered levels were written: %q", buf.String())
	}
	log.Error("shown")
	if entry := lastLine(t, &buf); entry["message"] != "shown" {
		t.Fatalf("entry = %v", entry)
	}
}

func TestRuntimeWithFields(t *testing.T) {
	var buf bytes.Buffer
	base := Runtime(NewWithWriter(&buf, "info"))
	child := base.WithField("match_id", "m1").WithFields(map[string]interface{}{"tick": 3})

	child.Info("tick")
	entry := lastLine(t, &buf)
	if entry["match_id"] != "m1" || entry["tick"] != float64(3) {
		t.Fatalf("entry = %v, want fields", entry)
	}
	if len(base.Fields()) != 0 {
		t.Fatalf("parent fields = %v, want none", base.Fields())
	}
	fields := child.Fields()
	fields["match_id"] = "changed"
	if child.Fields()["match_id"] != "m1" {
		t.Fatal("Fields() exposed internal map")
	}
}
