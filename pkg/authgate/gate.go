// Package authgate detects the site's login wall and walks through it:
// credentials first, then an optional one-time code.
package authgate

import (
	"context"
	"strings"

	"threadscraper/pkg/auth"
	"threadscraper/pkg/browser"
	"threadscraper/pkg/config"
	"threadscraper/pkg/logger"
	"threadscraper/pkg/ratelimit"
)

// State is a step of the login flow
type State string

const (
	Unknown             State = "unknown"
	NotChallenged       State = "not_challenged"
	AwaitingCredentials State = "awaiting_credentials"
	AwaitingCode        State = "awaiting_code"
	Resolved            State = "resolved"
	Abandoned           State = "abandoned"
)

// Outcome is where the gate ended and how it got there
type Outcome struct {
	Final      State
	Trail      []State
	Challenged bool
}

func (o *Outcome) move(s State) {
	o.Final = s
	o.Trail = append(o.Trail, s)
}

// CredentialSource supplies stored logins; *auth.Manager satisfies it
type CredentialSource interface {
	Lookup(account string) (*auth.Account, error)
}

// Notifier alerts the operator outside the terminal
type Notifier interface {
	Notify(title, message string) error
}

// Gate drives one login attempt on a page
type Gate struct {
	page     browser.Page
	cfg      config.AuthConfig
	creds    CredentialSource
	prompter Prompter
	notifier Notifier
	log      logger.Logger
}

// Option customizes a Gate
type Option func(*Gate)

func WithCredentials(c CredentialSource) Option { return func(g *Gate) { g.creds = c } }
func WithPrompter(p Prompter) Option           { return func(g *Gate) { g.prompter = p } }
func WithNotifier(n Notifier) Option           { return func(g *Gate) { g.notifier = n } }
func WithLogger(l logger.Logger) Option        { return func(g *Gate) { g.log = l } }

// New builds a gate for page. Without a prompter no operator input is requested.
func New(page browser.Page, cfg config.AuthConfig, opts ...Option) *Gate {
	g := &Gate{page: page, cfg: cfg}
	for _, opt := range opts {
		opt(g)
	}
	g.log = logger.OrGlobal(g.log).WithField("component", "authgate")
	return g
}

// Run walks the state machine to Resolved or Abandoned. It never fails the
// run: an abandoned login leaves the session unauthenticated.
func (g *Gate) Run(ctx context.Context) Outcome {
	out := Outcome{Final: Unknown, Trail: []State{Unknown}}

	login := IsLoginPage(g.page)
	if !login && ratelimit.Sleep(ctx, g.cfg.RecheckDelay) == nil {
		login = IsLoginPage(g.page)
	}
	if !login {
		out.move(NotChallenged)
		out.move(Resolved)
		return out
	}

	out.Challenged = true
	out.move(AwaitingCredentials)
	g.log.Info("Login page detected")

	if !g.submitCredentials(ctx) {
		out.move(Abandoned)
		return out
	}

	if err := ratelimit.Sleep(ctx, g.cfg.PostSubmitDelay); err != nil {
		out.move(Abandoned)
		return out
	}
	out.move(AwaitingCode)
	out.move(g.handleCode(ctx))
	return out
}

// IsLoginPage applies the login-wall heuristic: a login-ish URL, or a form
// next to a text, email or password input.
func IsLoginPage(p browser.Page) bool {
	if u, err := p.CurrentURL(); err == nil {
		u = strings.ToLower(u)
		if strings.Contains(u, "login") || strings.Contains(u, "signin") {
			return true
		}
	}

	forms, err := p.FindAll("form")
	if err != nil || len(forms) == 0 {
		return false
	}
	_, _, ok := browser.FindFirst(p, []string{
		"input[type='text'], input[type='email']",
		"input[type='password']",
	})
	return ok
}

func (g *Gate) submitCredentials(ctx context.Context) bool {
	username, password := g.credentials(ctx)
	if username == "" {
		g.log.Warn("No username provided, skipping login")
		return false
	}

	_, _, okUser := browser.FindFirst(g.page, g.cfg.UserSelectors)
	_, _, okPass := browser.FindFirst(g.page, g.cfg.PasswordSelectors)
	if !okUser || !okPass {
		g.log.WarnWithFields("Could not find login inputs, log in manually in the browser window", map[string]interface{}{
			"user_field":     okUser,
			"password_field": okPass,
		})
		return false
	}

	if _, ok := g.fillFirst(g.cfg.UserSelectors, username, "username"); !ok {
		g.log.Warn("No username field accepted input, log in manually in the browser window")
		return false
	}
	passField, ok := g.fillFirst(g.cfg.PasswordSelectors, password, "password")
	if !ok {
		g.log.Warn("No password field accepted input, log in manually in the browser window")
		return false
	}

	how := g.submit(passField)
	g.log.WithField("method", how).Info("Login submitted")
	return true
}

// fillFirst fills the first candidate that accepts value, trying every match
// of every selector in order. A failed fill moves on to the next candidate.
func (g *Gate) fillFirst(selectors []string, value, field string) (browser.Element, bool) {
	for _, sel := range selectors {
		els, err := g.page.FindAll(sel)
		if err != nil {
			continue
		}
		for _, el := range els {
			if err := el.Fill(value); err != nil {
				g.log.WithError(err).WithFields(map[string]interface{}{
					"field":    field,
					"selector": sel,
				}).Debug("Fill failed, trying next candidate")
				continue
			}
			return el, true
		}
	}
	return nil, false
}

// credentials resolves the login from config, then the store, then the operator.
// An empty password after all sources means the login is abandoned.
func (g *Gate) credentials(ctx context.Context) (string, string) {
	username, password := g.cfg.Username, g.cfg.Password

	if g.creds != nil && (username == "" || password == "") {
		account := g.cfg.Account
		if account == "" {
			account = username
		}
		if acc, err := g.creds.Lookup(account); err == nil {
			if username == "" {
				username = acc.Username
			}
			if password == "" && acc.Username == username {
				password = acc.Password
			}
		} else {
			g.log.WithError(err).Debug("No stored credentials")
		}
	}

	if username == "" {
		username = Ask(ctx, g.prompter, "Enter Threads ID/Email: ", g.cfg.CredentialTimeout, false)
	}
	if username != "" && password == "" {
		password = Ask(ctx, g.prompter, "Enter Threads Password: ", g.cfg.CredentialTimeout, true)
		if password == "" {
			return "", ""
		}
	}
	return username, password
}

// submit clicks a submit control or falls back to submitting the password
// field's form. It reports which route was taken.
func (g *Gate) submit(passField browser.Element) string {
	for _, sel := range g.cfg.SubmitSelectors {
		els, err := g.page.FindAll(sel)
		if err != nil || len(els) == 0 {
			continue
		}
		if els[0].Click() == nil {
			return "selector"
		}
	}

	if g.cfg.SubmitTextSelector != "" {
		if els, err := g.page.FindAll(g.cfg.SubmitTextSelector); err == nil {
			for _, el := range browser.FilterByText(els, g.cfg.SubmitTexts) {
				if el.Click() == nil {
					return "text"
				}
			}
		}
	}

	if err := passField.Submit(); err != nil {
		g.log.WithError(err).Debug("Form submit failed")
		return "none"
	}
	return "form"
}

func (g *Gate) handleCode(ctx context.Context) State {
	field, ok := g.pollCodeField(ctx)
	if !ok {
		g.log.Debug("No verification code requested")
		return Resolved
	}

	g.log.Info("Verification code required")
	if g.notifier != nil {
		if err := g.notifier.Notify("Threads verification", "Enter the verification code in the terminal"); err != nil {
			g.log.WithError(err).Debug("Notification failed")
		}
	}

	code := Ask(ctx, g.prompter, "Enter OTP: ", g.cfg.CodeTimeout, false)
	if code == "" {
		g.log.Warn("Verification code entry timed out, continuing without login")
		return Abandoned
	}

	if err := field.Fill(code); err != nil {
		g.log.WithError(err).Warn("Failed to fill verification code")
	}
	if err := field.Submit(); err != nil {
		if el, _, found := browser.FindFirst(g.page, g.cfg.ConfirmSelectors); found {
			if cerr := el.Click(); cerr != nil {
				g.log.WithError(cerr).Debug("Confirm click failed")
			}
		}
	}
	return Resolved
}

// pollCodeField looks for a one-time-code input until OTPWait elapses
func (g *Gate) pollCodeField(ctx context.Context) (browser.Element, bool) {
	interval, polls := g.cfg.OTPPollInterval, 1
	if interval > 0 {
		polls += int(g.cfg.OTPWait / interval)
	}

	for i := 0; i < polls; i++ {
		if i > 0 && ratelimit.Sleep(ctx, interval) != nil {
			return nil, false
		}
		if el, _, ok := browser.FindFirst(g.page, g.cfg.OTPSelectors); ok {
			return el, true
		}
	}
	return nil, false
}
