package logging_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/fzdarsky/srp6a/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeEntry(t *testing.T, line string) map[string]any {
	t.Helper()
	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(line), &entry))
	return entry
}

func TestLogger_JSONFormat(t *testing.T) {
	var stdout, stderr bytes.Buffer
	logger := logging.New(logging.LevelInfo, logging.FormatJSON)
	logger.SetOutput(&stdout, &stderr)

	logger.Info("handshake started", map[string]any{
		"username": "alice",
		"bits":     2048,
	})

	entry := decodeEntry(t, stdout.String())
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "handshake started", entry["message"])
	assert.NotEmpty(t, entry["timestamp"])

	fields, ok := entry["fields"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "alice", fields["username"])
	assert.Equal(t, float64(2048), fields["bits"])
	assert.Empty(t, stderr.String())
}

func TestLogger_HumanFormatSortsFields(t *testing.T) {
	var stdout, stderr bytes.Buffer
	logger := logging.New(logging.LevelInfo, logging.FormatHuman)
	logger.SetOutput(&stdout, &stderr)

	logger.Info("handshake finished", map[string]any{
		"username": "alice",
		"group":    "rfc5054_2048",
	})

	output := stdout.String()
	assert.Contains(t, output, "info: handshake finished")
	assert.True(t, strings.HasSuffix(output, " group=rfc5054_2048 username=alice\n"), output)
}

func TestLogger_ErrorsGoToStderr(t *testing.T) {
	var stdout, stderr bytes.Buffer
	logger := logging.New(logging.LevelDebug, logging.FormatJSON)
	logger.SetOutput(&stdout, &stderr)

	logger.Error("verifier store unreadable")

	assert.Empty(t, stdout.String())
	assert.Contains(t, stderr.String(), "verifier store unreadable")
}

func TestLogger_LevelFiltering(t *testing.T) {
	tests := []struct {
		name      string
		logLevel  logging.LogLevel
		logFunc   func(*logging.Logger)
		shouldLog bool
	}{
		{
			name:      "debug logged when level is debug",
			logLevel:  logging.LevelDebug,
			logFunc:   func(l *logging.Logger) { l.Debug("test") },
			shouldLog: true,
		},
		{
			name:      "debug not logged when level is info",
			logLevel:  logging.LevelInfo,
			logFunc:   func(l *logging.Logger) { l.Debug("test") },
			shouldLog: false,
		},
		{
			name:      "warn logged when level is info",
			logLevel:  logging.LevelInfo,
			logFunc:   func(l *logging.Logger) { l.Warn("test") },
			shouldLog: true,
		},
		{
			name:      "info not logged when level is error",
			logLevel:  logging.LevelError,
			logFunc:   func(l *logging.Logger) { l.Info("test") },
			shouldLog: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			logger := logging.New(tt.logLevel, logging.FormatJSON)
			logger.SetOutput(&stdout, &stderr)

			tt.logFunc(logger)

			if tt.shouldLog {
				assert.NotEmpty(t, stdout.String()+stderr.String())
			} else {
				assert.Empty(t, stdout.String()+stderr.String())
			}
		})
	}
}

func TestLogger_RedactsSRPSecrets(t *testing.T) {
	var stdout bytes.Buffer
	logger := logging.New(logging.LevelInfo, logging.FormatJSON)
	logger.SetOutput(&stdout, &stdout)

	logger.Info("session derived", map[string]any{
		"username":    "alice",
		"Verifier":    "7e273de8",
		"session_key": "017eefa1",
		"M1":          "abcd",
		"nested": map[string]any{
			"password": "password123",
			"group":    "rfc5054_1024",
		},
	})

	output := stdout.String()
	assert.NotContains(t, output, "7e273de8")
	assert.NotContains(t, output, "017eefa1")
	assert.NotContains(t, output, "abcd")
	assert.NotContains(t, output, "password123")

	fields := decodeEntry(t, output)["fields"].(map[string]any)
	assert.Equal(t, "alice", fields["username"])
	assert.Equal(t, "[REDACTED]", fields["Verifier"])
	nested := fields["nested"].(map[string]any)
	assert.Equal(t, "[REDACTED]", nested["password"])
	assert.Equal(t, "rfc5054_1024", nested["group"])
}

func TestLogger_WithFields(t *testing.T) {
	var stdout, stderr bytes.Buffer
	logger := logging.New(logging.LevelInfo, logging.FormatJSON)
	logger.SetOutput(&stdout, &stderr)

	session := logger.WithFields(map[string]any{"session_id": "s1", "username": "alice"})
	session.Info("proof verified", map[string]any{"username": "bob"})

	fields := decodeEntry(t, stdout.String())["fields"].(map[string]any)
	assert.Equal(t, "s1", fields["session_id"])
	assert.Equal(t, "bob", fields["username"], "call fields override context fields")

	// The parent logger is unaffected.
	stdout.Reset()
	logger.Info("plain")
	_, hasFields := decodeEntry(t, stdout.String())["fields"]
	assert.False(t, hasFields)
}

func TestRedactor_CustomKeys(t *testing.T) {
	r := logging.NewRedactor()
	r.AddSensitiveKey("Session_ID")
	r.RemoveSensitiveKey("salt")

	out := r.RedactFields(map[string]any{
		"session_id": "s1",
		"salt":       "beb25379",
	})
	assert.Equal(t, "[REDACTED]", out["session_id"])
	assert.Equal(t, "beb25379", out["salt"])

	assert.Nil(t, r.RedactFields(nil))
}

func TestRedactor_ConcurrentUpdates(t *testing.T) {
	r := logging.NewRedactor()

	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			key := fmt.Sprintf("token_%d", i)
			for range 100 {
				r.AddSensitiveKey(key)
				r.RemoveSensitiveKey(key)
			}
		}()
		go func() {
			defer wg.Done()
			for range 100 {
				out := r.RedactFields(map[string]any{
					"verifier": "deadbeef",
					"nested":   map[string]any{"session_key": "cafe"},
				})
				assert.Equal(t, "[REDACTED]", out["verifier"])
			}
		}()
	}
	wg.Wait()

	r.AddSensitiveKey("token_0")
	assert.Equal(t, "[REDACTED]", r.RedactFields(map[string]any{"token_0": "x"})["token_0"])
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, logging.LevelDebug, logging.ParseLevel("debug"))
	assert.Equal(t, logging.LevelWarn, logging.ParseLevel(" WARN "))
	assert.Equal(t, logging.LevelError, logging.ParseLevel("error"))
	assert.Equal(t, logging.LevelInfo, logging.ParseLevel(""))
	assert.Equal(t, logging.LevelInfo, logging.ParseLevel("verbose"))
}

func TestParseFormat(t *testing.T) {
	assert.Equal(t, logging.FormatHuman, logging.ParseFormat("human"))
	assert.Equal(t, logging.FormatJSON, logging.ParseFormat("json"))
	assert.Equal(t, logging.FormatJSON, logging.ParseFormat("xml"))
}
