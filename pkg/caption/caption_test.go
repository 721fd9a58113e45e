package caption

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"threadscraper/pkg/browser"
	"threadscraper/pkg/browser/browsertest"
	"threadscraper/pkg/config"
	"threadscraper/pkg/logger"
)

const (
	controls  = `button, [role="button"]`
	textNodes = "span, p, div"
)

func newExtractor() *Extractor {
	cfg := config.DefaultConfig().Extract
	cfg.ExpandWait = 0
	return New(cfg, logger.NewNopLogger())
}

func TestPickCaptionDropsInterfaceNoise(t *testing.T) {
	block := strings.Join([]string{
		"Alice",
		"Like",
		"Reply",
		"2h",
		"This is the actual caption about a hiking trip that is fairly long",
		"12",
	}, "\n")

	assert.Equal(t, "This is the actual caption about a hiking trip that is fairly long", PickCaption(block))
}

func TestPickCaption(t *testing.T) {
	tests := []struct {
		name  string
		block string
		want  string
	}{
		{name: "empty", block: "", want: ""},
		{name: "only noise", block: "Like\nReply\n3d\n42\nx", want: ""},
		{name: "long line with noise word is kept", block: "Share\nI would like to go back there someday", want: "I would like to go back there someday"},
		{name: "noise boundary at 14 chars", block: "see more views\nabc", want: "abc"},
		{name: "15 chars with noise survives", block: "see more views!\nabc", want: "see more views!"},
		{name: "four char time token survives", block: "100d", want: "100d"},
		{name: "unicode digits are numeric", block: "١٢\nok", want: "ok"},
		{name: "whitespace normalized", block: "  hello    there  \n", want: "hello there"},
		{name: "longest wins", block: "first one\nsecond 1", want: "first one"},
		{name: "tie keeps earlier line", block: "abcd\nwxyz", want: "abcd"},
		{name: "lone letter dropped", block: "a", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PickCaption(tt.block); got != tt.want {
				t.Errorf("PickCaption(%q) = %q, want %q", tt.block, got, tt.want)
			}
		})
	}
}

func TestPickerCustomLexicon(t *testing.T) {
	p := NewPicker([]string{"GEFÄLLT"})
	assert.Equal(t, "short", p.Pick("gefällt mir\nshort"))
}

func TestExtractRenderedTextFromSnapshot(t *testing.T) {
	snap, err := browser.NewSnapshotFromString(`<article>
		<div><span>alice</span><span>2h</span></div>
		<div>Sunset over the lake, best evening of the summer</div>
		<div role="button">Like</div><div role="button">Reply</div>
		<span>14</span>
	</article>`, "")
	require.NoError(t, err)
	post, err := snap.FindOne("article")
	require.NoError(t, err)

	got := newExtractor().Extract(context.Background(), post)
	assert.Equal(t, "Sunset over the lake, best evening of the summer", got)
}

func TestExtractClicksExpandControls(t *testing.T) {
	post := &browsertest.Element{Inner: "Short text…\nLike"}
	more := &browsertest.Element{Inner: "See more"}
	more.OnClick = func(*browsertest.Element) {
		post.SetInner("The full caption once expanded is much longer\nLike")
	}
	like := &browsertest.Element{Inner: "Like"}
	post.Children = map[string][]browser.Element{controls: {like, more}}

	got := newExtractor().Extract(context.Background(), post)
	assert.Equal(t, 1, more.Clicks())
	assert.Equal(t, 0, like.Clicks())
	assert.Equal(t, "The full caption once expanded is much longer", got)
}

func TestExtractFailedExpandIsIgnored(t *testing.T) {
	more := &browsertest.Element{Inner: "more", ClickErr: errors.New("not clickable")}
	post := &browsertest.Element{
		Inner:    "A caption that stays truncated",
		Children: map[string][]browser.Element{controls: {more}},
	}

	assert.Equal(t, "A caption that stays truncated", newExtractor().Extract(context.Background(), post))
}

func TestExtractRenderedFallsBackToNormalizedText(t *testing.T) {
	post := &browsertest.Element{Inner: "Like\n  Reply  "}
	assert.Equal(t, "Like Reply", newExtractor().Extract(context.Background(), post))
}

func TestExtractRawText(t *testing.T) {
	post := &browsertest.Element{Inner: "   ", Raw: "  raw dom text  "}
	assert.Equal(t, "raw dom text", newExtractor().Extract(context.Background(), post))
}

func TestExtractTranslateAnchor(t *testing.T) {
	container := &browsertest.Element{Children: map[string][]browser.Element{textNodes: {
		&browsertest.Element{Inner: "Translate"},
		&browsertest.Element{Inner: "5"},
		&browsertest.Element{Inner: "Ein langer Satz über das Wandern"},
		&browsertest.Element{Inner: "x"},
	}}}
	grand := &browsertest.Element{Up: container}
	parent := &browsertest.Element{Up: grand}
	translate := &browsertest.Element{Inner: "Translate", Up: parent}

	post := &browsertest.Element{
		Children: map[string][]browser.Element{controls: {translate}},
	}

	assert.Equal(t, "Ein langer Satz über das Wandern", newExtractor().Extract(context.Background(), post))
}

func TestExtractLastResortJoinsTextNodes(t *testing.T) {
	post := &browsertest.Element{
		TextErr: errors.New("stale"),
		Children: map[string][]browser.Element{textNodes: {
			&browsertest.Element{Inner: " hello "},
			&browsertest.Element{Inner: ""},
			&browsertest.Element{Inner: "world"},
		}},
	}

	assert.Equal(t, "hello world", newExtractor().Extract(context.Background(), post))
}

func TestExtractSurvivesDriverPanics(t *testing.T) {
	post := &browsertest.Element{PanicOnFind: "stale element reference"}

	var got string
	assert.NotPanics(t, func() { got = newExtractor().Extract(context.Background(), post) })
	assert.Equal(t, "", got)
}

func TestExtractNothingFound(t *testing.T) {
	assert.Equal(t, "", newExtractor().Extract(context.Background(), &browsertest.Element{}))
}
