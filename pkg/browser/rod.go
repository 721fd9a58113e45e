package browser

import (
	"context"
	"fmt"
	"os"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
	"github.com/ysmood/gson"
	"threadscraper/pkg/config"
	apperrors "threadscraper/pkg/errors"
	"threadscraper/pkg/logger"
)

// Session owns one automated Chrome, either launched by us or attached to
type Session struct {
	browser  *rod.Browser
	launcher *launcher.Launcher
	cfg      config.BrowserConfig
	tempDir  string
	attached bool
	log      logger.Logger
}

// Launch starts or attaches to Chrome according to cfg.
// When the existing profile cannot be opened and the fresh-profile fallback
// is allowed, a disposable profile directory is used instead; it is removed
// on Close. Any other start failure is fatal.
func Launch(ctx context.Context, cfg config.BrowserConfig, log logger.Logger) (*Session, error) {
	log = logger.OrGlobal(log)

	if cfg.Attach {
		s, err := attach(ctx, cfg, log)
		if err != nil {
			return nil, apperrors.Fatal("browser.attach", "failed to attach to running browser at "+cfg.DebugAddress, err)
		}
		return s, nil
	}

	userDataDir, profileDir := "", ""
	if cfg.UseProfile {
		userDataDir, profileDir = cfg.UserDataDir, cfg.ProfileDir
	}

	s, err := launch(ctx, cfg, userDataDir, profileDir, log)
	if err == nil {
		return s, nil
	}
	if !cfg.UseProfile || !cfg.AllowFreshProfileFallback {
		return nil, apperrors.Fatal("browser.launch", "failed to start browser", err)
	}

	log.WithError(err).WarnWithFields("Profile launch failed, retrying with a fresh temporary profile", map[string]interface{}{
		"user_data_dir": userDataDir,
		"profile_dir":   profileDir,
	})

	tmp, terr := os.MkdirTemp("", "threads_profile_")
	if terr != nil {
		return nil, apperrors.Fatal("browser.launch", "failed to create temporary profile", terr)
	}
	s, err = launch(ctx, cfg, tmp, "", log)
	if err != nil {
		_ = os.RemoveAll(tmp)
		return nil, apperrors.Fatal("browser.launch", "failed to start browser with fresh profile", err)
	}
	s.tempDir = tmp
	return s, nil
}

func launch(ctx context.Context, cfg config.BrowserConfig, userDataDir, profileDir string, log logger.Logger) (*Session, error) {
	l := launcher.New().
		Context(ctx).
		Headless(cfg.Headless).
		NoSandbox(cfg.NoSandbox)

	if cfg.Bin != "" {
		l = l.Bin(cfg.Bin)
	}
	if userDataDir != "" {
		l = l.UserDataDir(userDataDir)
	}
	if profileDir != "" {
		l.Set(flags.Flag("profile-directory"), profileDir)
	}

	l.Delete(flags.Flag("enable-automation"))
	l.Set(flags.Flag("disable-blink-features"), "AutomationControlled")
	l.Set(flags.Flag("disable-dev-shm-usage"))
	l.Set(flags.Flag("disable-notifications"))
	l.Set(flags.Flag("disable-extensions"))
	l.Set(flags.Flag("no-first-run"))
	l.Set(flags.Flag("no-default-browser-check"))
	l.Set(flags.Flag("remote-allow-origins"), "*")
	if cfg.WindowSize != "" {
		l.Set(flags.Flag("window-size"), cfg.WindowSize)
	}

	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("launch chrome: %w", err)
	}

	b := rod.New().Context(ctx).ControlURL(controlURL)
	if err := b.Connect(); err != nil {
		l.Kill()
		return nil, fmt.Errorf("connect to chrome: %w", err)
	}

	log.InfoWithFields("Browser launched", map[string]interface{}{
		"headless":      cfg.Headless,
		"user_data_dir": userDataDir,
		"profile_dir":   profileDir,
	})

	return &Session{browser: b, launcher: l, cfg: cfg, log: log}, nil
}

func attach(ctx context.Context, cfg config.BrowserConfig, log logger.Logger) (*Session, error) {
	controlURL, err := launcher.ResolveURL(cfg.DebugAddress)
	if err != nil {
		return nil, err
	}

	b := rod.New().Context(ctx).ControlURL(controlURL)
	if err := b.Connect(); err != nil {
		return nil, err
	}

	log.WithField("debug_address", cfg.DebugAddress).Info("Attached to running browser")
	return &Session{browser: b, cfg: cfg, attached: true, log: log}, nil
}

// NewPage opens a tab bound to ctx with the stealth script installed
func (s *Session) NewPage(ctx context.Context) (*RodPage, error) {
	p, err := s.browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, apperrors.Fatal("browser.page", "failed to open tab", err)
	}

	if s.cfg.Stealth {
		if _, err := p.EvalOnNewDocument(stealth.JS); err != nil {
			s.log.WithError(err).Warn("Stealth injection failed, proceeding without it")
		}
	}

	return &RodPage{page: p.Context(ctx)}, nil
}

// Attached reports whether the session drives a browser it did not start
func (s *Session) Attached() bool {
	return s.attached
}

// Close shuts the browser down. An attached browser is left running.
func (s *Session) Close() error {
	if s.attached {
		return nil
	}

	err := s.browser.Close()
	if s.tempDir != "" {
		s.launcher.Cleanup()
		_ = os.RemoveAll(s.tempDir)
	} else {
		s.launcher.Kill()
	}
	return err
}

// RodPage is a Page backed by a live Chrome tab
type RodPage struct {
	page *rod.Page
}

// Navigate loads url and waits for the load event
func (p *RodPage) Navigate(url string) error {
	if err := p.page.Navigate(url); err != nil {
		return err
	}
	return p.page.WaitLoad()
}

func (p *RodPage) CurrentURL() (string, error) {
	info, err := p.page.Info()
	if err != nil {
		return "", err
	}
	return info.URL, nil
}

func (p *RodPage) FindAll(selector string) ([]Element, error) {
	els, err := p.page.Elements(selector)
	if err != nil {
		return nil, err
	}
	return wrapRod(els), nil
}

func (p *RodPage) FindOne(selector string) (Element, error) {
	els, err := p.page.Elements(selector)
	if err != nil {
		return nil, err
	}
	if len(els) == 0 {
		return nil, ErrNotFound
	}
	return &RodElement{el: els[0]}, nil
}

func (p *RodPage) ScrollHeight() (int, error) {
	v, err := p.Eval(`() => document.body.scrollHeight`)
	if err != nil {
		return 0, err
	}
	return v.Int(), nil
}

func (p *RodPage) ScrollToBottom() error {
	_, err := p.Eval(`() => window.scrollTo(0, document.body.scrollHeight)`)
	return err
}

// Eval runs js in the page and returns its value
func (p *RodPage) Eval(js string, args ...interface{}) (gson.JSON, error) {
	res, err := p.page.Eval(js, args...)
	if err != nil {
		return gson.JSON{}, err
	}
	return res.Value, nil
}

func (p *RodPage) Close() error {
	return p.page.Close()
}

// RodElement is an Element backed by a remote DOM node
type RodElement struct {
	el *rod.Element
}

func wrapRod(els rod.Elements) []Element {
	out := make([]Element, len(els))
	for i, el := range els {
		out[i] = &RodElement{el: el}
	}
	return out
}

func (e *RodElement) FindAll(selector string) ([]Element, error) {
	els, err := e.el.Elements(selector)
	if err != nil {
		return nil, err
	}
	return wrapRod(els), nil
}

func (e *RodElement) Parent() (Element, error) {
	p, err := e.el.Parent()
	if err != nil {
		return nil, err
	}
	return &RodElement{el: p}, nil
}

func (e *RodElement) Attribute(name string) (string, bool, error) {
	v, err := e.el.Attribute(name)
	if err != nil {
		return "", false, err
	}
	if v == nil {
		return "", false, nil
	}

	// the DOM property carries the absolute URL
	if name == "src" || name == "href" {
		prop, err := e.el.Property(name)
		if err == nil && prop.Str() != "" {
			return prop.Str(), true, nil
		}
	}
	return *v, true, nil
}

func (e *RodElement) InnerText() (string, error) {
	return e.el.Text()
}

func (e *RodElement) TextContent() (string, error) {
	res, err := e.el.Eval(`() => this.textContent`)
	if err != nil {
		return "", err
	}
	return res.Value.Str(), nil
}

// Click dispatches a script click and falls back to a real mouse click
func (e *RodElement) Click() error {
	if _, err := e.el.Eval(`() => this.click()`); err == nil {
		return nil
	}
	return e.el.Click(proto.InputMouseButtonLeft, 1)
}

func (e *RodElement) Fill(value string) error {
	if _, err := e.el.Eval(`() => { this.value = '' }`); err != nil {
		return err
	}
	return e.el.Input(value)
}

func (e *RodElement) Submit() error {
	_, err := e.el.Eval(`() => {
		const form = this.form || this.closest('form');
		if (!form) throw new Error('no enclosing form');
		if (form.requestSubmit) form.requestSubmit(); else form.submit();
	}`)
	return err
}

func (e *RodElement) ScrollIntoView() error {
	_, err := e.el.Eval(`() => this.scrollIntoView({block: 'center'})`)
	return err
}
