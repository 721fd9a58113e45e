package locator

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"threadscraper/pkg/browser"
	"threadscraper/pkg/browser/browsertest"
	"threadscraper/pkg/logger"
)

func TestLocateFirstNonEmptySelectorWins(t *testing.T) {
	snap, err := browser.NewSnapshotFromString(`<body>
		<div class="post-a">1</div><div class="post-b">2</div>
		<div class="card">3</div><div class="card">4</div><div class="card">5</div>
	</body>`, "")
	require.NoError(t, err)

	els, sel := New(nil, logger.NewNopLogger()).Locate(snap)
	assert.Equal(t, `div[class*="post"]`, sel)
	assert.Len(t, els, 2, "later selectors must not be merged in")
}

func TestLocateSkipsErroringSelector(t *testing.T) {
	a := &browsertest.Element{Inner: "a"}
	page := &browsertest.Page{
		Frames:  []browsertest.Frame{{`div[role="article"]`: {a}}},
		FindErr: map[string]error{"article": errors.New("boom")},
	}

	els, sel := New(nil, logger.NewNopLogger()).Locate(page)
	assert.Equal(t, `div[role="article"]`, sel)
	assert.Equal(t, []browser.Element{a}, els)
}

func TestLocateImageParentFallback(t *testing.T) {
	p1 := &browsertest.Element{Inner: "p1"}
	p2 := &browsertest.Element{Inner: "p2"}
	orphan := &browsertest.Element{ParentErr: errors.New("detached")}
	page := &browsertest.Page{Frames: []browsertest.Frame{{
		"img": {
			&browsertest.Element{Up: p1},
			orphan,
			&browsertest.Element{Up: p2},
		},
	}}}

	els, sel := New(nil, logger.NewNopLogger()).Locate(page)
	assert.Equal(t, ImageParentFallback, sel)
	assert.Equal(t, []browser.Element{p1, p2}, els)
}

func TestLocateEmptyPage(t *testing.T) {
	snap, err := browser.NewSnapshotFromString(`<body><p>nothing here</p></body>`, "")
	require.NoError(t, err)

	els, sel := New(nil, logger.NewNopLogger()).Locate(snap)
	assert.Empty(t, els)
	assert.Equal(t, ImageParentFallback, sel)
}

func TestLocateCustomSelectors(t *testing.T) {
	snap, err := browser.NewSnapshotFromString(`<body><article>x</article><li class="saved">y</li></body>`, "")
	require.NoError(t, err)

	els, sel := New([]string{"li.saved", "article"}, logger.NewNopLogger()).Locate(snap)
	if sel != "li.saved" || len(els) != 1 {
		t.Errorf("Locate() = %d elements via %q, want 1 via li.saved", len(els), sel)
	}
}
