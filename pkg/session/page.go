package session

import (
	"strings"
	"sync"
	"time"

	"github.com/playwright-community/playwright-go"

	"liscraper/pkg/config"
	errs "liscraper/pkg/errors"
	"liscraper/pkg/extract"
	"liscraper/pkg/logger"
)

// Selectors for the "see more posts" style expanders on activity feeds
var showMoreSelectors = []string{
	"button.scaffold-finite-scroll__load-button",
	"button[aria-label*='more results']",
	"button.show-more-less-button",
}

// Page wraps one browser page. Network responses that look like data-API
// traffic are captured as they arrive so extraction can mine them later
// without replaying requests.
type Page struct {
	page      playwright.Page
	timeoutMs float64
	contentMs float64
	settleMs  float64
	log       logger.Logger

	mu       sync.Mutex
	captures []extract.NetworkCapture
}

func newPage(pwPage playwright.Page, browser config.BrowserConfig, log logger.Logger) *Page {
	p := &Page{
		page:      pwPage,
		timeoutMs: float64(browser.NavigationTimeout.Milliseconds()),
		contentMs: float64(browser.ContentTimeout.Milliseconds()),
		settleMs:  settleWait(browser.ContentTimeout),
		log:       log,
	}

	pwPage.OnResponse(func(response playwright.Response) {
		url := response.URL()
		if !looksLikeAPIResponse(url, response.Request().ResourceType()) {
			return
		}
		body, err := response.Body()
		if err != nil || len(body) == 0 {
			return
		}
		p.mu.Lock()
		defer p.mu.Unlock()
		// Bounded so a chatty page cannot grow the capture set unchecked
		if len(p.captures) < maxCaptures {
			p.captures = append(p.captures, extract.NetworkCapture{URL: url, Body: body})
		}
	})

	return p
}

const maxCaptures = 50

// settleWait derives the short pause used after scrolls and load-more
// clicks from the content timeout: a fifth of the budget, clamped so a
// generous timeout does not turn every scroll into a multi-second stall.
func settleWait(contentTimeout time.Duration) float64 {
	ms := float64(contentTimeout.Milliseconds()) / 5
	if ms < 500 {
		return 500
	}
	if ms > 3000 {
		return 3000
	}
	return ms
}

func looksLikeAPIResponse(url, resourceType string) bool {
	if resourceType != "xhr" && resourceType != "fetch" {
		return false
	}
	for _, token := range []string{"/voyager/", "/graphql", "/api/"} {
		if strings.Contains(url, token) {
			return true
		}
	}
	return false
}

// Navigate loads url and waits for the DOM to settle
func (p *Page) Navigate(url string) error {
	if _, err := p.page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
		Timeout:   playwright.Float(p.timeoutMs),
	}); err != nil {
		return errs.Newf(errs.ErrorTypeTimeout, "navigate %s: %v", url, err)
	}
	// Give late XHR content up to the content budget to land; a page that
	// never goes idle is served as-is
	if err := p.page.WaitForLoadState(playwright.PageWaitForLoadStateOptions{
		State:   playwright.LoadStateNetworkidle,
		Timeout: playwright.Float(p.contentMs),
	}); err != nil {
		p.log.WithField("url", url).Debug("content did not settle within budget")
	}
	return nil
}

// HitAuthwall reports whether the page landed on the login interstitial
func (p *Page) HitAuthwall() bool {
	title, _ := p.page.Title()
	content, _ := p.page.Content()
	return IsAuthwall(p.page.URL(), title, content)
}

// Snapshot captures everything extraction needs from the live page: final
// URL and title, rendered markup, in-page state objects, and the network
// captures recorded since navigation.
func (p *Page) Snapshot() *extract.PageSnapshot {
	title, _ := p.page.Title()
	html, _ := p.page.Content()

	snap := extract.NewPageSnapshot(p.page.URL(), title, html)

	if result, err := p.page.Evaluate(stateProbeScript); err == nil {
		if state, ok := result.([]interface{}); ok {
			snap.State = state
		}
	}

	p.mu.Lock()
	snap.Captures = append([]extract.NetworkCapture(nil), p.captures...)
	p.mu.Unlock()

	return snap
}

// ScrollToBottom scrolls the page to the end of its current content and
// waits briefly for lazy content to load.
func (p *Page) ScrollToBottom() {
	if _, err := p.page.Evaluate(`window.scrollTo(0, document.body.scrollHeight)`); err != nil {
		p.log.WithError(err).Debug("scroll failed")
		return
	}
	p.page.WaitForTimeout(p.settleMs)
}

// ClickShowMore clicks the first visible load-more control, if any.
// Returns whether a control was clicked.
func (p *Page) ClickShowMore() bool {
	for _, selector := range showMoreSelectors {
		locator := p.page.Locator(selector).First()
		if visible, err := locator.IsVisible(); err == nil && visible {
			if err := locator.Click(); err == nil {
				p.page.WaitForTimeout(p.settleMs)
				return true
			}
		}
	}
	return false
}

// Count returns how many elements match selector on the live page
func (p *Page) Count(selector string) int {
	count, err := p.page.Locator(selector).Count()
	if err != nil {
		return 0
	}
	return count
}

// URL returns the page's current URL
func (p *Page) URL() string {
	return p.page.URL()
}

// Close releases the underlying browser page
func (p *Page) Close() {
	_ = p.page.Close()
}
