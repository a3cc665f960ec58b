// Package session owns the single browser context used for scraping: it
// loads and persists the credential bundle, performs interactive login with
// a bounded challenge wait, tracks the authentication state, and hands out
// scoped page handles that detect authwall interstitials.
package session

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/playwright-community/playwright-go"

	"liscraper/pkg/config"
	errs "liscraper/pkg/errors"
	"liscraper/pkg/logger"
	"liscraper/pkg/retry"
)

// AuthState tracks where the scraping identity stands with the target
type AuthState string

const (
	StateUnauthenticated   AuthState = "unauthenticated"
	StateCookiesPending    AuthState = "cookies_pending"
	StateAuthenticated     AuthState = "authenticated"
	StateChallengeRequired AuthState = "challenge_required"
	StateInvalidated       AuthState = "invalidated"
)

// Username/password fields move between markup generations; first match wins
var (
	usernameSelectors = []string{
		"input#username",
		"input[name='session_key']",
		"input[autocomplete='username']",
	}
	passwordSelectors = []string{
		"input#password",
		"input[name='session_password']",
		"input[autocomplete='current-password']",
	}
	submitSelectors = []string{
		"button[type='submit']",
		"button[data-litms-control-urn='login-submit']",
	}
)

// Manager owns one browser context and its authentication state. All state
// transitions go through the manager; callers only read.
type Manager struct {
	target  config.TargetConfig
	browser config.BrowserConfig
	log     logger.Logger

	pw         *playwright.Playwright
	engine     playwright.Browser
	browserCtx playwright.BrowserContext

	mu        sync.Mutex
	state     AuthState
	available bool

	// injected clock/sleep so challenge-wait tests run without real delay
	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// NewManager creates an uninitialized session manager
func NewManager(target config.TargetConfig, browser config.BrowserConfig, log logger.Logger) *Manager {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Manager{
		target:  target,
		browser: browser,
		log:     log,
		state:   StateUnauthenticated,
		now:     time.Now,
		sleep:   retry.Wait,
	}
}

// Initialize launches the browser, applies the fingerprint and stealth
// script, and restores the persisted credential bundle. Failure is reported
// as a capability error, never propagated as fatal: the service runs
// degraded with scraping disabled.
func (m *Manager) Initialize(ctx context.Context) error {
	pw, err := playwright.Run()
	if err != nil {
		return m.initFailed("browser engine start", err)
	}
	m.pw = pw

	engine, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(m.browser.Headless),
		Args: []string{
			"--disable-blink-features=AutomationControlled",
			"--disable-dev-shm-usage",
			"--no-sandbox",
		},
	})
	if err != nil {
		return m.initFailed("browser launch", err)
	}
	m.engine = engine

	browserCtx, err := engine.NewContext(playwright.BrowserNewContextOptions{
		UserAgent:  playwright.String(m.browser.UserAgent),
		Locale:     playwright.String(m.browser.Locale),
		TimezoneId: playwright.String(m.browser.Timezone),
		Viewport: &playwright.Size{
			Width:  m.browser.ViewportWidth,
			Height: m.browser.ViewportHeight,
		},
	})
	if err != nil {
		return m.initFailed("browser context", err)
	}
	m.browserCtx = browserCtx

	if err := browserCtx.AddInitScript(playwright.Script{Content: playwright.String(stealthScript)}); err != nil {
		return m.initFailed("stealth script", err)
	}

	m.setAvailable(true)

	// Restore the persisted identity if one exists
	cookies, err := LoadCookieBundle(m.target.CookieFile)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			m.log.WithError(err).Warn("cookie bundle unreadable, starting unauthenticated")
		}
	} else if len(cookies) > 0 {
		m.setState(StateCookiesPending)
		if err := browserCtx.AddCookies(toOptionalCookies(cookies)); err != nil {
			m.log.WithError(err).Warn("cookie injection failed")
			m.setState(StateUnauthenticated)
		} else if HasSessionCookie(cookies) {
			// Optimistic: validation happens on first real navigation
			m.setState(StateAuthenticated)
			m.log.Info("session restored from cookie bundle")
		} else {
			m.setState(StateUnauthenticated)
		}
	}

	if m.State() != StateAuthenticated && m.target.Email != "" {
		if err := m.Login(ctx); err != nil {
			m.log.WithError(err).Warn("initial login failed, continuing unauthenticated")
		}
	}

	return nil
}

// Login navigates to the login surface and submits the configured
// credentials. A challenge redirect is polled at a fixed interval up to a
// bounded total wait; clearing it is a manual, out-of-band step. Login
// failure is soft: public-data scraping remains possible without it.
func (m *Manager) Login(ctx context.Context) error {
	if !m.Available() {
		return errs.New(errs.ErrorTypeCapabilityUnavailable, "browser session not initialized")
	}
	if m.target.Email == "" || m.target.Password == "" {
		return errs.New(errs.ErrorTypeAuth, "no credentials configured")
	}

	page, err := m.browserCtx.NewPage()
	if err != nil {
		return errs.Newf(errs.ErrorTypeCapabilityUnavailable, "open login page: %v", err)
	}
	defer page.Close()

	if _, err := page.Goto(m.target.BaseURL+"/login", playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
		Timeout:   playwright.Float(float64(m.browser.NavigationTimeout.Milliseconds())),
	}); err != nil {
		return errs.Newf(errs.ErrorTypeTimeout, "login navigation: %v", err)
	}

	username := m.firstVisible(page, usernameSelectors)
	password := m.firstVisible(page, passwordSelectors)
	if username == nil || password == nil {
		return errs.New(errs.ErrorTypeAuth, "login form fields not found")
	}

	if err := username.Fill(m.target.Email); err != nil {
		return errs.Newf(errs.ErrorTypeAuth, "fill username: %v", err)
	}
	if err := password.Fill(m.target.Password); err != nil {
		return errs.Newf(errs.ErrorTypeAuth, "fill password: %v", err)
	}
	if submit := m.firstVisible(page, submitSelectors); submit != nil {
		if err := submit.Click(); err != nil {
			return errs.Newf(errs.ErrorTypeAuth, "submit login: %v", err)
		}
	} else if err := page.Keyboard().Press("Enter"); err != nil {
		return errs.Newf(errs.ErrorTypeAuth, "submit login: %v", err)
	}

	page.WaitForTimeout(2000)

	if IsChallenge(page.URL()) {
		m.setState(StateChallengeRequired)
		if err := m.waitForChallenge(ctx, page); err != nil {
			m.setState(StateUnauthenticated)
			return err
		}
	}

	title, _ := page.Title()
	content, _ := page.Content()
	if IsAuthwall(page.URL(), title, content) {
		m.setState(StateUnauthenticated)
		return errs.New(errs.ErrorTypeAuth, "credentials rejected by target")
	}

	m.setState(StateAuthenticated)
	m.persistCookies()
	m.log.Info("login succeeded")
	return nil
}

// waitForChallenge polls until the verification surface clears or the
// bounded total wait elapses.
func (m *Manager) waitForChallenge(ctx context.Context, page playwright.Page) error {
	deadline := m.now().Add(m.browser.ChallengeWait)
	m.log.WithField("wait", m.browser.ChallengeWait.String()).
		Warn("verification challenge detected, waiting for manual completion")

	for m.now().Before(deadline) {
		if err := m.sleep(ctx, m.browser.ChallengePoll); err != nil {
			return errs.Newf(errs.ErrorTypeAuth, "challenge wait cancelled: %v", err)
		}
		if !IsChallenge(page.URL()) {
			return nil
		}
	}
	return errs.New(errs.ErrorTypeAuth, "verification challenge not completed in time")
}

// OpenPage opens a scoped page and navigates it to url. The caller must
// Close the returned page on all exit paths. Landing on an authwall flips
// the session to Invalidated and returns a typed auth error so the caller
// can retry after a fresh Login.
func (m *Manager) OpenPage(ctx context.Context, url string) (*Page, error) {
	if !m.Available() {
		return nil, errs.New(errs.ErrorTypeCapabilityUnavailable, "browser session not initialized")
	}

	pwPage, err := m.browserCtx.NewPage()
	if err != nil {
		return nil, errs.Newf(errs.ErrorTypeCapabilityUnavailable, "open page: %v", err)
	}

	page := newPage(pwPage, m.browser, m.log)

	if err := page.Navigate(url); err != nil {
		page.Close()
		return nil, err
	}

	if page.HitAuthwall() {
		page.Close()
		m.MarkInvalidated()
		return nil, errs.New(errs.ErrorTypeAuth, "authwall encountered")
	}

	return page, nil
}

// EnsureAuthenticated re-logs-in after an invalidation. At most one attempt
// is made per call; repeated failures leave the session unauthenticated.
func (m *Manager) EnsureAuthenticated(ctx context.Context) error {
	if m.State() == StateAuthenticated {
		return nil
	}
	return m.Login(ctx)
}

// State returns the current authentication state
func (m *Manager) State() AuthState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Available reports whether the browser engine initialized
func (m *Manager) Available() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.available
}

// MarkInvalidated records that a request landed on an authwall
func (m *Manager) MarkInvalidated() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state == StateAuthenticated {
		m.log.Warn("session invalidated by authwall")
	}
	m.state = StateInvalidated
}

// Close tears the browser down
func (m *Manager) Close() {
	m.setAvailable(false)
	if m.browserCtx != nil {
		_ = m.browserCtx.Close()
	}
	if m.engine != nil {
		_ = m.engine.Close()
	}
	if m.pw != nil {
		_ = m.pw.Stop()
	}
}

// persistCookies rewrites the credential bundle after a successful login
func (m *Manager) persistCookies() {
	cookies, err := m.browserCtx.Cookies()
	if err != nil {
		m.log.WithError(err).Warn("cookie read-back failed")
		return
	}
	if err := SaveCookieBundle(m.target.CookieFile, fromBrowserCookies(cookies)); err != nil {
		m.log.WithError(err).Warn("cookie bundle write failed")
	}
}

// firstVisible returns the first selector candidate that is present and
// visible on the page.
func (m *Manager) firstVisible(page playwright.Page, selectors []string) playwright.Locator {
	for _, selector := range selectors {
		locator := page.Locator(selector).First()
		if visible, err := locator.IsVisible(); err == nil && visible {
			return locator
		}
	}
	return nil
}

func (m *Manager) initFailed(step string, err error) error {
	m.setAvailable(false)
	m.log.WithError(err).WithField("step", step).Error("session initialization failed, scraping disabled")
	return errs.New(errs.ErrorTypeCapabilityUnavailable, fmt.Sprintf("%s: %v", step, err))
}

func (m *Manager) setState(state AuthState) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = state
}

func (m *Manager) setAvailable(available bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.available = available
}
