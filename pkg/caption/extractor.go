// Package caption pulls the caption text out of a post container.
package caption

import (
	"context"
	"fmt"
	"strings"

	"threadscraper/pkg/browser"
	"threadscraper/pkg/config"
	"threadscraper/pkg/logger"
	"threadscraper/pkg/ratelimit"
)

// parentHops is how far up from a translate control the caption container sits
const parentHops = 3

// Extractor runs the caption strategies against one post at a time
type Extractor struct {
	cfg    config.ExtractConfig
	picker *Picker
	log    logger.Logger
}

// New creates an Extractor from the extract section of the configuration
func New(cfg config.ExtractConfig, log logger.Logger) *Extractor {
	if cfg.ControlSelector == "" {
		cfg.ControlSelector = `button, [role="button"]`
	}
	if cfg.TextNodeSelector == "" {
		cfg.TextNodeSelector = "span, p, div"
	}
	return &Extractor{
		cfg:    cfg,
		picker: NewPicker(cfg.NoiseWords),
		log:    logger.OrGlobal(log),
	}
}

// Extract returns the best caption for el, or "" when every strategy comes up empty.
// Strategies run in order and the first non-empty answer wins: expand
// truncated text, rendered text, raw text, text around a translate control,
// and finally every text node joined together. A failing strategy is skipped.
func (e *Extractor) Extract(ctx context.Context, el browser.Element) string {
	if e.cfg.ScrollIntoView {
		if err := el.ScrollIntoView(); err == nil {
			_ = ratelimit.Sleep(ctx, e.cfg.ExpandWait)
		}
	}

	e.attempt("expand", func() (string, bool) {
		if e.expand(el) > 0 {
			_ = ratelimit.Sleep(ctx, e.cfg.ExpandWait)
		}
		return "", false
	})

	steps := []struct {
		name string
		fn   func(browser.Element) (string, bool)
	}{
		{"rendered", e.fromRendered},
		{"raw", e.fromRaw},
		{"translate", e.fromTranslate},
		{"text_nodes", e.fromTextNodes},
	}
	for _, step := range steps {
		text, ok := e.attempt(step.name, func() (string, bool) { return step.fn(el) })
		if ok {
			e.log.DebugWithFields("Caption extracted", map[string]interface{}{
				"strategy": step.name,
				"length":   len(text),
			})
			return text
		}
	}
	return ""
}

// attempt runs one strategy, turning a driver panic into a skipped step
func (e *Extractor) attempt(name string, fn func() (string, bool)) (text string, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			e.log.WithField("strategy", name).WithError(fmt.Errorf("%v", r)).Debug("Caption strategy panicked")
			text, ok = "", false
		}
	}()
	return fn()
}

// expand clicks every "see more" style control and reports how many were clicked
func (e *Extractor) expand(el browser.Element) int {
	controls, err := el.FindAll(e.cfg.ControlSelector)
	if err != nil {
		return 0
	}
	clicked := 0
	for _, btn := range browser.FilterByText(controls, e.cfg.ExpandTokens) {
		if err := btn.Click(); err != nil {
			e.log.WithError(err).Debug("Expand click failed")
			continue
		}
		clicked++
	}
	return clicked
}

func (e *Extractor) fromRendered(el browser.Element) (string, bool) {
	text, err := el.InnerText()
	if err != nil || strings.TrimSpace(text) == "" {
		return "", false
	}
	if picked := e.picker.Pick(text); picked != "" {
		return picked, true
	}
	return browser.NormalizeSpace(text), true
}

func (e *Extractor) fromRaw(el browser.Element) (string, bool) {
	text, err := el.TextContent()
	if err != nil {
		return "", false
	}
	text = strings.TrimSpace(text)
	return text, text != ""
}

func (e *Extractor) fromTranslate(el browser.Element) (string, bool) {
	if e.cfg.TranslateToken == "" {
		return "", false
	}
	controls, err := el.FindAll(e.cfg.ControlSelector)
	if err != nil {
		return "", false
	}

	for _, btn := range browser.FilterByText(controls, []string{e.cfg.TranslateToken}) {
		container := btn
		for i := 0; i < parentHops && container != nil; i++ {
			if container, err = container.Parent(); err != nil {
				container = nil
			}
		}
		if container == nil {
			continue
		}

		texts := e.nodeTexts(container, e.keepNearTranslate)
		if len(texts) == 0 {
			continue
		}
		joined := strings.Join(texts, "\n")
		if picked := e.picker.Pick(joined); picked != "" {
			return picked, true
		}
		return strings.Join(texts, " "), true
	}
	return "", false
}

func (e *Extractor) keepNearTranslate(s string) bool {
	if len([]rune(s)) < 2 || isDigits(s) {
		return false
	}
	low := strings.ToLower(s)
	for _, noise := range e.cfg.TranslateNoise {
		if low == strings.ToLower(noise) {
			return false
		}
	}
	return true
}

func (e *Extractor) fromTextNodes(el browser.Element) (string, bool) {
	texts := e.nodeTexts(el, func(string) bool { return true })
	combined := strings.TrimSpace(strings.Join(texts, " "))
	return combined, combined != ""
}

// nodeTexts returns the trimmed rendered text of every text-bearing descendant accepted by keep
func (e *Extractor) nodeTexts(root browser.Element, keep func(string) bool) []string {
	nodes, err := root.FindAll(e.cfg.TextNodeSelector)
	if err != nil {
		return nil
	}
	var texts []string
	for _, n := range nodes {
		s, err := n.InnerText()
		if err != nil {
			continue
		}
		if s = strings.TrimSpace(s); s != "" && keep(s) {
			texts = append(texts, s)
		}
	}
	return texts
}
