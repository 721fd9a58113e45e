package paginator

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"threadscraper/pkg/browser"
	"threadscraper/pkg/browser/browsertest"
	"threadscraper/pkg/locator"
	"threadscraper/pkg/logger"
)

func posts(n int, prefix string) []browser.Element {
	out := make([]browser.Element, n)
	for i := range out {
		out[i] = &browsertest.Element{Inner: prefix + string(rune('a'+i))}
	}
	return out
}

func newLocator() *locator.Locator {
	return locator.New([]string{"article"}, logger.NewNopLogger())
}

func fastOpts() Options {
	return Options{MaxScrolls: 20}
}

func TestPaginateStallAfterOneScroll(t *testing.T) {
	page := &browsertest.Page{
		Frames:  []browsertest.Frame{{"article": posts(3, "p")}},
		Heights: []int{100, 100},
	}

	res := Paginate(context.Background(), page, newLocator(), fastOpts(), logger.NewNopLogger())
	assert.Equal(t, 1, res.ScrollAttempts)
	assert.Equal(t, StopStall, res.StopReason)
	assert.Len(t, res.Elements, 3)
	assert.Equal(t, "article", res.Selector)
}

func TestPaginateReplacesSet(t *testing.T) {
	first := posts(3, "a")
	second := posts(2, "b")
	page := &browsertest.Page{
		Frames: []browsertest.Frame{
			{"article": first},
			{"article": second},
		},
		Heights: []int{100, 200, 200},
	}

	res := Paginate(context.Background(), page, newLocator(), fastOpts(), logger.NewNopLogger())
	assert.Equal(t, StopStall, res.StopReason)
	assert.Equal(t, second, res.Elements, "the latest non-empty locate wins, nothing is merged")
}

func TestPaginateEmptyLocateKeepsPreviousSet(t *testing.T) {
	first := posts(2, "a")
	page := &browsertest.Page{
		Frames:  []browsertest.Frame{{"article": first}, {}},
		Heights: []int{100, 200, 200},
	}

	res := Paginate(context.Background(), page, newLocator(), fastOpts(), logger.NewNopLogger())
	assert.Equal(t, first, res.Elements)
}

func TestPaginateTargetTruncates(t *testing.T) {
	page := &browsertest.Page{
		Frames:  []browsertest.Frame{{"article": posts(2, "a")}, {"article": posts(8, "b")}},
		Heights: []int{100, 200, 300, 400},
	}

	opts := fastOpts()
	opts.TargetCount = 5
	res := Paginate(context.Background(), page, newLocator(), opts, logger.NewNopLogger())

	assert.Equal(t, StopTarget, res.StopReason)
	assert.Len(t, res.Elements, 5)
	assert.Equal(t, 1, res.ScrollAttempts)
}

func TestPaginateTargetAlreadyMet(t *testing.T) {
	page := &browsertest.Page{
		Frames:  []browsertest.Frame{{"article": posts(4, "a")}},
		Heights: []int{100},
	}

	opts := fastOpts()
	opts.TargetCount = 4
	res := Paginate(context.Background(), page, newLocator(), opts, logger.NewNopLogger())
	assert.Equal(t, 0, page.Scrolls())
	assert.Equal(t, StopTarget, res.StopReason)
}

func TestPaginateMaxScrolls(t *testing.T) {
	page := &browsertest.Page{
		Frames:  []browsertest.Frame{{"article": posts(1, "a")}},
		Heights: []int{1, 2, 3, 4, 5, 6, 7, 8, 9},
	}

	opts := fastOpts()
	opts.MaxScrolls = 3
	res := Paginate(context.Background(), page, newLocator(), opts, logger.NewNopLogger())
	assert.Equal(t, StopMaxScrolls, res.StopReason)
	assert.Equal(t, 3, res.ScrollAttempts)
	assert.Equal(t, 3, page.Scrolls())
}

func TestPaginateHeightErrorIsAStall(t *testing.T) {
	page := &browsertest.Page{
		Frames:      []browsertest.Frame{{"article": posts(2, "a")}},
		Heights:     []int{100},
		HeightErr:   errors.New("execution context destroyed"),
		HeightErrAt: 1,
	}

	res := Paginate(context.Background(), page, newLocator(), fastOpts(), logger.NewNopLogger())
	assert.Equal(t, StopHeightError, res.StopReason)
	assert.Equal(t, 1, res.ScrollAttempts)
	assert.Len(t, res.Elements, 2)
}

func TestPaginateCancelled(t *testing.T) {
	page := &browsertest.Page{
		Frames:  []browsertest.Frame{{"article": posts(2, "a")}},
		Heights: []int{1, 2, 3},
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := Paginate(ctx, page, newLocator(), fastOpts(), logger.NewNopLogger())
	assert.Equal(t, StopCancelled, res.StopReason)
	assert.Len(t, res.Elements, 2)
}

func TestPaginateAccumulate(t *testing.T) {
	shared := &browsertest.Element{Inner: "shared"}
	page := &browsertest.Page{
		Frames: []browsertest.Frame{
			{"article": {&browsertest.Element{Inner: "one"}, shared}},
			{"article": {shared, &browsertest.Element{Inner: "three"}}},
		},
		Heights: []int{100, 200, 200},
	}

	opts := fastOpts()
	opts.Accumulate = true
	res := Paginate(context.Background(), page, newLocator(), opts, logger.NewNopLogger())

	require.Len(t, res.Elements, 3)
	var texts []string
	for _, el := range res.Elements {
		texts = append(texts, browser.VisibleText(el))
	}
	assert.Equal(t, []string{"one", "shared", "three"}, texts)
}

func TestPaginateSnapshotStallsImmediately(t *testing.T) {
	snap, err := browser.NewSnapshotFromString(`<article>a</article><article>b</article>`, "")
	require.NoError(t, err)

	res := Paginate(context.Background(), snap, newLocator(), fastOpts(), logger.NewNopLogger())
	assert.Equal(t, StopStall, res.StopReason)
	assert.Equal(t, 1, res.ScrollAttempts)
	assert.Len(t, res.Elements, 2)
}
