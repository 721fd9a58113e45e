// Package paginator drives infinite-scroll loading of the saved-posts feed.
package paginator

import (
	"context"
	"strings"
	"time"

	"threadscraper/pkg/browser"
	"threadscraper/pkg/logger"
	"threadscraper/pkg/ratelimit"
)

// StopReason says why the scroll loop ended
type StopReason string

const (
	// StopStall means the document height did not change after a scroll
	StopStall StopReason = "stall"
	// StopTarget means enough posts were found
	StopTarget StopReason = "target"
	// StopMaxScrolls means the scroll budget ran out
	StopMaxScrolls StopReason = "max_scrolls"
	// StopHeightError means a scroll or height script failed; treated like a stall
	StopHeightError StopReason = "height_error"
	// StopCancelled means the context ended
	StopCancelled StopReason = "cancelled"
)

// Locator finds post containers on the current page
type Locator interface {
	Locate(page browser.Finder) ([]browser.Element, string)
}

// Options configures a pagination run
type Options struct {
	// TargetCount stops scrolling once this many posts are present; 0 means no target
	TargetCount int
	MaxScrolls  int
	ScrollPause time.Duration
	// Accumulate keeps posts from earlier scrolls, deduplicated by Key.
	// When false every non-empty locate replaces the set, so the result
	// mirrors what a virtualizing feed currently keeps in the DOM.
	Accumulate bool
	Key        func(browser.Element) string
}

// DefaultOptions returns the scroll limits of the original tool
func DefaultOptions() Options {
	return Options{MaxScrolls: 20, ScrollPause: time.Second}
}

// Result is the outcome of Paginate
type Result struct {
	Elements       []browser.Element
	ScrollAttempts int
	StopReason     StopReason
	Selector       string
}

// Paginate scrolls page until the feed stops growing, the target count is
// reached, the scroll budget is spent or ctx ends, re-locating posts after
// every scroll. Height comparison is exact.
func Paginate(ctx context.Context, page browser.Page, loc Locator, opts Options, log logger.Logger) Result {
	log = logger.OrGlobal(log)

	var res Result
	set, sel := loc.Locate(page)
	res.Selector = sel

	var seen map[string]bool
	if opts.Accumulate {
		seen = make(map[string]bool)
		set = merge(nil, set, seen, opts.key())
	}

	last, err := page.ScrollHeight()
	if err != nil {
		log.WithError(err).Debug("Reading scroll height failed")
		res.StopReason = StopHeightError
		res.Elements = truncate(set, opts.TargetCount)
		return res
	}

	scrolls := 0
	for {
		if opts.TargetCount > 0 && len(set) >= opts.TargetCount {
			res.StopReason = StopTarget
			break
		}
		if scrolls >= opts.MaxScrolls {
			res.StopReason = StopMaxScrolls
			break
		}
		if ctx.Err() != nil {
			res.StopReason = StopCancelled
			break
		}

		if err := page.ScrollToBottom(); err != nil {
			log.WithError(err).Debug("Scroll script failed")
			res.StopReason = StopHeightError
			break
		}
		res.ScrollAttempts++

		if err := ratelimit.Sleep(ctx, opts.ScrollPause); err != nil {
			res.StopReason = StopCancelled
			break
		}

		if found, s := loc.Locate(page); len(found) > 0 {
			if opts.Accumulate {
				set = merge(set, found, seen, opts.key())
			} else {
				set = found
			}
			res.Selector = s
		}

		h, err := page.ScrollHeight()
		if err != nil {
			log.WithError(err).Debug("Reading scroll height failed")
			res.StopReason = StopHeightError
			break
		}
		if h == last {
			res.StopReason = StopStall
			break
		}
		last = h
		scrolls++

		log.DebugWithFields("Scrolled feed", map[string]interface{}{
			"scrolls": scrolls,
			"height":  h,
			"posts":   len(set),
		})
	}

	res.Elements = truncate(set, opts.TargetCount)
	log.InfoWithFields("Pagination finished", map[string]interface{}{
		"posts":           len(res.Elements),
		"scroll_attempts": res.ScrollAttempts,
		"stop_reason":     string(res.StopReason),
		"selector":        res.Selector,
	})
	return res
}

func (o Options) key() func(browser.Element) string {
	if o.Key != nil {
		return o.Key
	}
	return DefaultKey
}

// DefaultKey identifies a post by its first link and its visible text
func DefaultKey(el browser.Element) string {
	var href string
	if links, err := el.FindAll("a[href]"); err == nil && len(links) > 0 {
		href, _, _ = links[0].Attribute("href")
	}
	return href + "\x00" + strings.TrimSpace(browser.VisibleText(el))
}

func merge(set, found []browser.Element, seen map[string]bool, key func(browser.Element) string) []browser.Element {
	for _, el := range found {
		k := key(el)
		if seen[k] {
			continue
		}
		seen[k] = true
		set = append(set, el)
	}
	return set
}

func truncate(set []browser.Element, n int) []browser.Element {
	if n > 0 && len(set) > n {
		return set[:n]
	}
	return set
}
