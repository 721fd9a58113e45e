package browser

import (
	"errors"
	"io"
	"net/url"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
)

// snapshotHeight is the fixed document height a snapshot reports
const snapshotHeight = 1000

var errDetached = errors.New("node has no parent")

// Snapshot is a Page over a static HTML document.
// It never changes: scrolling loads nothing and clicks only get recorded.
type Snapshot struct {
	doc  *goquery.Document
	base *url.URL
	url  string

	mu        sync.Mutex
	selectors map[string]cascadia.Selector
	scrolls   int
	clicks    int
	submits   int
}

// NewSnapshot parses r as HTML. Relative src and href values resolve against baseURL.
func NewSnapshot(r io.Reader, baseURL string) (*Snapshot, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, err
	}

	s := &Snapshot{doc: doc, url: baseURL, selectors: make(map[string]cascadia.Selector)}
	if baseURL != "" {
		if s.base, err = url.Parse(baseURL); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// NewSnapshotFromString is NewSnapshot over an in-memory document
func NewSnapshotFromString(doc, baseURL string) (*Snapshot, error) {
	return NewSnapshot(strings.NewReader(doc), baseURL)
}

func (s *Snapshot) compile(selector string) (cascadia.Selector, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if m, ok := s.selectors[selector]; ok {
		return m, nil
	}
	m, err := cascadia.Compile(selector)
	if err != nil {
		return nil, err
	}
	s.selectors[selector] = m
	return m, nil
}

func (s *Snapshot) find(sel *goquery.Selection, selector string) ([]Element, error) {
	m, err := s.compile(selector)
	if err != nil {
		return nil, err
	}
	found := sel.FindMatcher(m)
	out := make([]Element, 0, found.Length())
	found.Each(func(_ int, one *goquery.Selection) {
		out = append(out, &snapshotElement{snap: s, sel: one})
	})
	return out, nil
}

// Navigate records the URL; the document itself is not reloaded
func (s *Snapshot) Navigate(u string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.url = u
	return nil
}

func (s *Snapshot) CurrentURL() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.url, nil
}

func (s *Snapshot) FindAll(selector string) ([]Element, error) {
	return s.find(s.doc.Selection, selector)
}

func (s *Snapshot) FindOne(selector string) (Element, error) {
	els, err := s.FindAll(selector)
	if err != nil {
		return nil, err
	}
	if len(els) == 0 {
		return nil, ErrNotFound
	}
	return els[0], nil
}

func (s *Snapshot) ScrollHeight() (int, error) {
	return snapshotHeight, nil
}

func (s *Snapshot) ScrollToBottom() error {
	s.mu.Lock()
	s.scrolls++
	s.mu.Unlock()
	return nil
}

func (s *Snapshot) Close() error {
	return nil
}

// Stats reports how many scrolls, clicks and form submits the document received
func (s *Snapshot) Stats() (scrolls, clicks, submits int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scrolls, s.clicks, s.submits
}

func (s *Snapshot) resolve(ref string) string {
	if s.base == nil {
		return ref
	}
	u, err := url.Parse(strings.TrimSpace(ref))
	if err != nil {
		return ref
	}
	return s.base.ResolveReference(u).String()
}

type snapshotElement struct {
	snap *Snapshot
	sel  *goquery.Selection
}

func (e *snapshotElement) FindAll(selector string) ([]Element, error) {
	return e.snap.find(e.sel, selector)
}

func (e *snapshotElement) Parent() (Element, error) {
	p := e.sel.Parent()
	if p.Length() == 0 || p.Nodes[0].Type != html.ElementNode {
		return nil, errDetached
	}
	return &snapshotElement{snap: e.snap, sel: p}, nil
}

func (e *snapshotElement) Attribute(name string) (string, bool, error) {
	v, ok := e.sel.Attr(name)
	if !ok {
		return "", false, nil
	}
	if (name == "src" || name == "href") && v != "" {
		v = e.snap.resolve(v)
	}
	return v, true, nil
}

func (e *snapshotElement) InnerText() (string, error) {
	if len(e.sel.Nodes) == 0 {
		return "", nil
	}
	return renderText(e.sel.Nodes[0]), nil
}

func (e *snapshotElement) TextContent() (string, error) {
	return e.sel.Text(), nil
}

func (e *snapshotElement) Click() error {
	e.snap.mu.Lock()
	e.snap.clicks++
	e.snap.mu.Unlock()
	return nil
}

func (e *snapshotElement) Fill(value string) error {
	e.sel.SetAttr("value", value)
	return nil
}

func (e *snapshotElement) Submit() error {
	if e.sel.Closest("form").Length() == 0 {
		return errors.New("no enclosing form")
	}
	e.snap.mu.Lock()
	e.snap.submits++
	e.snap.mu.Unlock()
	return nil
}

func (e *snapshotElement) ScrollIntoView() error {
	return nil
}

var skippedTags = map[string]bool{
	"script": true, "style": true, "template": true, "noscript": true, "head": true,
}

var blockTags = map[string]bool{
	"address": true, "article": true, "aside": true, "blockquote": true, "dd": true,
	"div": true, "dl": true, "dt": true, "fieldset": true, "figcaption": true,
	"figure": true, "footer": true, "form": true, "h1": true, "h2": true, "h3": true,
	"h4": true, "h5": true, "h6": true, "header": true, "hr": true, "li": true,
	"main": true, "nav": true, "ol": true, "p": true, "pre": true, "section": true,
	"table": true, "tr": true, "ul": true,
}

// renderText approximates innerText: hidden subtrees are skipped and
// block elements and <br> break lines.
func renderText(n *html.Node) string {
	var b strings.Builder
	walkText(n, &b)

	var lines []string
	for _, line := range strings.Split(b.String(), "\n") {
		if line = NormalizeSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}

func walkText(n *html.Node, b *strings.Builder) {
	switch n.Type {
	case html.TextNode:
		b.WriteString(n.Data)
		return
	case html.ElementNode:
		if skippedTags[n.Data] || isHidden(n) {
			return
		}
		if n.Data == "br" {
			b.WriteByte('\n')
			return
		}
	}

	block := n.Type == html.ElementNode && blockTags[n.Data]
	if block {
		b.WriteByte('\n')
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walkText(c, b)
	}
	if block {
		b.WriteByte('\n')
	} else if n.Type == html.ElementNode && (n.Data == "td" || n.Data == "th") {
		b.WriteByte(' ')
	}
}

func isHidden(n *html.Node) bool {
	for _, a := range n.Attr {
		switch a.Key {
		case "hidden":
			return true
		case "aria-hidden":
			if strings.EqualFold(strings.TrimSpace(a.Val), "true") {
				return true
			}
		case "style":
			style := strings.ToLower(strings.Join(strings.Fields(a.Val), ""))
			if strings.Contains(style, "display:none") || strings.Contains(style, "visibility:hidden") {
				return true
			}
		}
	}
	return false
}
