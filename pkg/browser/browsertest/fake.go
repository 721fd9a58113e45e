// Package browsertest provides scriptable Page and Element fakes for engine tests.
package browsertest

import (
	"sync"

	"threadscraper/pkg/browser"
)

// Frame maps selectors to the elements a page returns for them
type Frame map[string][]browser.Element

// Page is a scripted browser.Page.
// Frames[i] answers lookups after i scrolls (the last frame repeats),
// and Heights[k] is returned by the k-th ScrollHeight call (the last repeats).
type Page struct {
	mu sync.Mutex

	URL     string
	Frames  []Frame
	Heights []int
	// HeightErr is returned by every ScrollHeight call from HeightErrAt on
	HeightErr   error
	HeightErrAt int
	FindErr     map[string]error
	// OnNavigate lets a test swap frames when the page is re-opened
	OnNavigate func(p *Page, url string)

	scrolls     int
	heightCalls int
	navigations []string
}

func (p *Page) frame() Frame {
	if len(p.Frames) == 0 {
		return nil
	}
	i := p.scrolls
	if i >= len(p.Frames) {
		i = len(p.Frames) - 1
	}
	return p.Frames[i]
}

func (p *Page) Navigate(url string) error {
	p.mu.Lock()
	p.URL = url
	p.navigations = append(p.navigations, url)
	hook := p.OnNavigate
	p.mu.Unlock()

	if hook != nil {
		hook(p, url)
	}
	return nil
}

func (p *Page) CurrentURL() (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.URL, nil
}

func (p *Page) FindAll(selector string) ([]browser.Element, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.FindErr[selector]; err != nil {
		return nil, err
	}
	return p.frame()[selector], nil
}

func (p *Page) FindOne(selector string) (browser.Element, error) {
	els, err := p.FindAll(selector)
	if err != nil {
		return nil, err
	}
	if len(els) == 0 {
		return nil, browser.ErrNotFound
	}
	return els[0], nil
}

func (p *Page) ScrollHeight() (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	k := p.heightCalls
	p.heightCalls++
	if p.HeightErr != nil && k >= p.HeightErrAt {
		return 0, p.HeightErr
	}
	if len(p.Heights) == 0 {
		return 0, nil
	}
	if k >= len(p.Heights) {
		k = len(p.Heights) - 1
	}
	return p.Heights[k], nil
}

func (p *Page) ScrollToBottom() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.scrolls++
	return nil
}

func (p *Page) Close() error { return nil }

// Scrolls reports how many ScrollToBottom calls were made
func (p *Page) Scrolls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.scrolls
}

// Navigations returns every URL passed to Navigate
func (p *Page) Navigations() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.navigations...)
}

// Element is a scripted browser.Element
type Element struct {
	mu sync.Mutex

	Inner    string
	Raw      string
	Attrs    map[string]string
	Children map[string][]browser.Element
	Up       browser.Element

	FindErr   error
	ParentErr error
	TextErr   error
	ClickErr  error
	FillErr   error
	SubmitErr error
	// PanicOnFind simulates a driver that panics on a stale node
	PanicOnFind interface{}
	// OnClick runs after a successful click
	OnClick func(e *Element)

	clicks  int
	filled  []string
	submits int
}

func (e *Element) FindAll(selector string) ([]browser.Element, error) {
	if e.PanicOnFind != nil {
		panic(e.PanicOnFind)
	}
	if e.FindErr != nil {
		return nil, e.FindErr
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.Children[selector], nil
}

func (e *Element) Parent() (browser.Element, error) {
	if e.ParentErr != nil {
		return nil, e.ParentErr
	}
	if e.Up == nil {
		return nil, browser.ErrNotFound
	}
	return e.Up, nil
}

func (e *Element) Attribute(name string) (string, bool, error) {
	v, ok := e.Attrs[name]
	return v, ok, nil
}

func (e *Element) InnerText() (string, error) {
	if e.TextErr != nil {
		return "", e.TextErr
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.Inner, nil
}

func (e *Element) TextContent() (string, error) {
	if e.TextErr != nil {
		return "", e.TextErr
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.Raw, nil
}

func (e *Element) Click() error {
	if e.ClickErr != nil {
		return e.ClickErr
	}
	e.mu.Lock()
	e.clicks++
	hook := e.OnClick
	e.mu.Unlock()
	if hook != nil {
		hook(e)
	}
	return nil
}

func (e *Element) Fill(value string) error {
	if e.FillErr != nil {
		return e.FillErr
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.filled = append(e.filled, value)
	return nil
}

func (e *Element) Submit() error {
	if e.SubmitErr != nil {
		return e.SubmitErr
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.submits++
	return nil
}

func (e *Element) ScrollIntoView() error { return nil }

// SetInner replaces the rendered text, e.g. from an OnClick hook
func (e *Element) SetInner(text string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.Inner = text
}

// Clicks reports how many times the element was clicked
func (e *Element) Clicks() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.clicks
}

// Filled returns every value typed into the element
func (e *Element) Filled() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.filled...)
}

// Submits reports how many times the element's form was submitted
func (e *Element) Submits() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.submits
}
