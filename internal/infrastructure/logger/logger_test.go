package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/mymoolah/walletcore/internal/domain"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"unknown", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		if got := parseLevel(tt.input); got != tt.want {
			t.Fatalf("parseLevel(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestNewWithWriterFormats(t *testing.T) {
	tests := []struct {
		name       string
		format     string
		assertions func(t *testing.T, output string)
	}{
		{
			name:   "json format starts with brace",
			format: "json",
			assertions: func(t *testing.T, output string) {
				if !strings.HasPrefix(strings.TrimSpace(output), "{") {
					t.Fatalf("expected json output, got %q", output)
				}
			},
		},
		{
			name:   "console format is not json",
			format: "console",
			assertions: func(t *testing.T, output string) {
				if strings.HasPrefix(strings.TrimSpace(output), "{") || !strings.Contains(output, "hello") {
					t.Fatalf("expected console output, got %q", output)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			log := NewWithWriter(Config{Format: tt.format, Level: "debug"}, &buf)
			log.Info().Msg("hello")

			if buf.Len() == 0 {
				t.Fatal("expected log output")
			}
			tt.assertions(t, buf.String())
		})
	}
}

func TestWithContextAddsCorrelationFields(t *testing.T) {
	var buf bytes.Buffer
	base := NewWithWriter(Config{Format: "json", Level: "info"}, &buf)

	ctx := domain.WithRequestID(context.Background(), "req-1")
	ctx = domain.WithUserID(ctx, "user-7")
	ctx = WithContext(ctx, base)

	Critical(ctx).Msg("negative balance")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("invalid json %q: %v", buf.String(), err)
	}
	if entry["request_id"] != "req-1" || entry["user_id"] != "user-7" {
		t.Fatalf("missing correlation fields: %v", entry)
	}
	if entry["critical"] != true || entry["level"] != "error" {
		t.Fatalf("expected critical error entry, got %v", entry)
	}
}

func TestFromContextFallsBackToGlobal(t *testing.T) {
	if l := FromContext(context.Background()); l == nil {
		t.Fatal("expected a logger")
	}
}
