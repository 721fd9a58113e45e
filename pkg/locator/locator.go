// Package locator finds the post containers on a saved-posts page.
package locator

import (
	"threadscraper/pkg/browser"
	"threadscraper/pkg/logger"
)

// ImageParentFallback names the strategy used when no selector matched
const ImageParentFallback = "img-parent"

// DefaultSelectors is the cascade tried in order, most specific first
var DefaultSelectors = []string{
	`article`,
	`div[role="article"]`,
	`div[data-testid="post"]`,
	`div[class*="post"]`,
	`div[class*="card"]`,
	`div[class*="thread"]`,
	`div[class*="item"]`,
}

// Locator runs a selector cascade over a page
type Locator struct {
	selectors []string
	log       logger.Logger
}

// New creates a Locator. An empty list means DefaultSelectors.
func New(selectors []string, log logger.Logger) *Locator {
	if len(selectors) == 0 {
		selectors = DefaultSelectors
	}
	return &Locator{selectors: selectors, log: logger.OrGlobal(log)}
}

// Locate returns the elements of the first selector with a non-empty result.
// Results are never merged across selectors. When nothing matches, the
// parent of every image on the page is used instead. Lookup failures count
// as misses, so Locate never fails; an empty slice is a valid answer.
func (l *Locator) Locate(page browser.Finder) ([]browser.Element, string) {
	for _, sel := range l.selectors {
		els, err := page.FindAll(sel)
		if err != nil {
			l.log.WithError(err).WithField("selector", sel).Debug("Post selector failed, skipping")
			continue
		}
		if len(els) > 0 {
			l.log.DebugWithFields("Post selector matched", map[string]interface{}{
				"selector": sel,
				"count":    len(els),
			})
			return els, sel
		}
	}

	imgs, err := page.FindAll("img")
	if err != nil {
		l.log.WithError(err).Debug("Image lookup failed")
		return nil, ImageParentFallback
	}

	parents := make([]browser.Element, 0, len(imgs))
	for _, img := range imgs {
		p, err := img.Parent()
		if err != nil || p == nil {
			continue
		}
		parents = append(parents, p)
	}

	l.log.WithField("count", len(parents)).Debug("No post selector matched, using image parents")
	return parents, ImageParentFallback
}
