// Package browser defines the driver surface the extraction engine consumes
// and its two implementations: a live rod session and a static HTML snapshot.
package browser

import (
	"errors"
	"strings"
	"unicode"
)

// ErrNotFound is returned by FindOne when no element matches
var ErrNotFound = errors.New("element not found")

// Finder looks up descendants by CSS selector
type Finder interface {
	FindAll(selector string) ([]Element, error)
}

// Page is a loaded document the engine can query and scroll
type Page interface {
	Finder
	Navigate(url string) error
	CurrentURL() (string, error)
	// FindOne returns the first match or ErrNotFound
	FindOne(selector string) (Element, error)
	ScrollHeight() (int, error)
	ScrollToBottom() error
	Close() error
}

// Element is a node handle inside a Page
type Element interface {
	Finder
	Parent() (Element, error)
	// Attribute reports the value and whether the attribute is present.
	// src and href come back resolved against the document URL.
	Attribute(name string) (string, bool, error)
	// InnerText is the rendered, visibility-aware text
	InnerText() (string, error)
	// TextContent is the raw DOM text
	TextContent() (string, error)
	Click() error
	// Fill clears the field and types value
	Fill(value string) error
	// Submit submits the enclosing form
	Submit() error
	ScrollIntoView() error
}

// FindFirst returns the first element matched by any selector, in order.
// Lookup errors are treated as misses.
func FindFirst(f Finder, selectors []string) (Element, string, bool) {
	for _, sel := range selectors {
		els, err := f.FindAll(sel)
		if err != nil || len(els) == 0 {
			continue
		}
		return els[0], sel, true
	}
	return nil, "", false
}

// NormalizeSpace collapses every run of whitespace to one space and trims
func NormalizeSpace(s string) string {
	return strings.Join(strings.FieldsFunc(s, unicode.IsSpace), " ")
}

// VisibleText returns the whitespace-normalized, lowercased rendered text of el,
// falling back to its raw text when the rendered text is empty.
func VisibleText(el Element) string {
	text, err := el.InnerText()
	if err != nil || strings.TrimSpace(text) == "" {
		text, err = el.TextContent()
		if err != nil {
			return ""
		}
	}
	return strings.ToLower(NormalizeSpace(text))
}

// FilterByText keeps the elements whose VisibleText contains any of tokens.
// Tokens are matched case-insensitively.
func FilterByText(els []Element, tokens []string) []Element {
	var out []Element
	for _, el := range els {
		text := VisibleText(el)
		if text == "" {
			continue
		}
		for _, tok := range tokens {
			if tok != "" && strings.Contains(text, strings.ToLower(tok)) {
				out = append(out, el)
				break
			}
		}
	}
	return out
}
