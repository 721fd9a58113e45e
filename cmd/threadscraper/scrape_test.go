package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTargetLabel(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"https://www.threads.com/saved", "threads.com/saved"},
		{"https://www.threads.com/saved/", "threads.com/saved"},
		{"http://localhost:8080", "localhost:8080"},
		{"not a url", "not a url"},
	}
	for _, tt := range tests {
		if got := targetLabel(tt.in); got != tt.want {
			t.Errorf("targetLabel(%q) = %q, expected %q", tt.in, got, tt.want)
		}
	}
}

func TestScrapeFlagsOnlyCarriesChangedValues(t *testing.T) {
	require.NoError(t, scrapeCmd.ParseFlags([]string{"--storage", "local", "--max-posts", "0", "--tui"}))
	t.Cleanup(func() {
		storageMode, maxPosts, useTUI = "", 0, false
	})

	flags := scrapeFlags(scrapeCmd)
	assert.Equal(t, "local", flags["storage-mode"])
	assert.Equal(t, 0, flags["max-posts"], "an explicit zero lifts the cap")
	assert.NotContains(t, flags, "headless")
	assert.NotContains(t, flags, "target-url")
}

func TestExtractDefaultsToLocalStorage(t *testing.T) {
	require.NoError(t, extractCmd.ParseFlags([]string{"--html", "saved.html"}))
	t.Cleanup(func() { htmlFile = "" })

	flags := extractFlags(extractCmd)
	assert.Equal(t, "local", flags["storage-mode"])
	assert.Equal(t, "https://www.threads.com/saved", flags["target-url"])
	assert.Equal(t, true, flags["static-page"])
}
