package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"threadscraper/pkg/config"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *config.LoggingConfig
		wantErr bool
	}{
		{name: "info level", cfg: &config.LoggingConfig{Level: "info"}},
		{name: "debug level", cfg: &config.LoggingConfig{Level: "debug"}},
		{name: "empty level defaults to info", cfg: &config.LoggingConfig{Level: ""}},
		{name: "invalid level", cfg: &config.LoggingConfig{Level: "loud"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := New(tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, l)
		})
	}
}

func TestParseLogLevel(t *testing.T) {
	cases := map[string]zerolog.Level{
		"debug":    zerolog.DebugLevel,
		"INFO":     zerolog.InfoLevel,
		"warning":  zerolog.WarnLevel,
		"error":    zerolog.ErrorLevel,
		"disabled": zerolog.Disabled,
	}
	for in, want := range cases {
		got, err := parseLogLevel(in)
		if err != nil {
			t.Errorf("parseLogLevel(%q) returned error: %v", in, err)
		}
		if got != want {
			t.Errorf("parseLogLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestFileOutput(t *testing.T) {
	path := t.TempDir() + "/logs/run.log"
	l, err := New(&config.LoggingConfig{Level: "info", File: path})
	require.NoError(t, err)

	l.WithField("post_index", 3).Info("Post processed")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Post processed")
	assert.Contains(t, string(data), `"post_index":3`)
}

func TestStructuredFields(t *testing.T) {
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	var buf bytes.Buffer
	l, err := NewWithWriter(&buf, "debug")
	require.NoError(t, err)

	l.WithFields(map[string]interface{}{
		"selector": "article",
		"count":    7,
		"elapsed":  1500 * time.Millisecond,
		"headless": true,
	}).WithError(errors.New("detached node")).Warn("Locate finished")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "warn", entry["level"])
	assert.Equal(t, "Locate finished", entry["message"])
	assert.Equal(t, "article", entry["selector"])
	assert.Equal(t, float64(7), entry["count"])
	assert.Equal(t, true, entry["headless"])
	assert.Equal(t, "detached node", entry["error"])
}

func TestWithFieldsDoesNotLeakIntoParent(t *testing.T) {
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	var buf bytes.Buffer
	parent, err := NewWithWriter(&buf, "info")
	require.NoError(t, err)

	_ = parent.WithField("post_index", 1)
	parent.Info("parent line")

	assert.NotContains(t, buf.String(), "post_index")
}

func TestTestLoggerCapturesScopedFields(t *testing.T) {
	tl := NewTestLogger()

	scoped := tl.WithField("post_index", 2).WithError(errors.New("timeout"))
	scoped.WarnWithFields("Failed to store image, skipping", map[string]interface{}{"source_url": "https://cdn/x.jpg"})
	tl.Info("run complete")

	msgs := tl.GetMessages()
	require.Len(t, msgs, 2)
	assert.Equal(t, "WARN", msgs[0].Level)
	assert.Equal(t, 2, msgs[0].Fields["post_index"])
	assert.Equal(t, "https://cdn/x.jpg", msgs[0].Fields["source_url"])
	assert.EqualError(t, msgs[0].Error, "timeout")
	assert.True(t, tl.HasMessage("run complete"))
	assert.False(t, tl.HasError())

	tl.Clear()
	assert.Empty(t, tl.GetMessages())
}

func TestHelpers(t *testing.T) {
	tl := NewTestLogger()

	LogAssetFailed(tl, 1, "https://cdn.example.com/"+strings.Repeat("a", 200), errors.New("404"))
	LogPostDropped(tl, 4, errors.New("stale element"))
	LogRequest(tl, "GET", "https://cdn.example.com/a.jpg", 503, 12.5)

	assert.Len(t, tl.GetMessagesByLevel("WARN"), 1)
	assert.Len(t, tl.GetMessagesByLevel("ERROR"), 2)

	warn := tl.GetMessagesByLevel("WARN")[0]
	assert.True(t, strings.HasSuffix(warn.Fields["source_url"].(string), "..."))
}

func TestGlobalLogger(t *testing.T) {
	require.NoError(t, Initialize(&config.LoggingConfig{Level: "error"}))
	assert.NotNil(t, GetLogger())
	assert.NotNil(t, OrGlobal(nil))

	nop := NewNopLogger()
	assert.Equal(t, nop, OrGlobal(nop))
}
