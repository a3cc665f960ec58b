package scraper

import (
	"context"

	"liscraper/pkg/extract"
	"liscraper/pkg/session"
)

// PageHandle is the slice of a live browser page the scraper drives
type PageHandle interface {
	Snapshot() *extract.PageSnapshot
	ScrollToBottom()
	ClickShowMore() bool
	Count(selector string) int
	URL() string
	Close()
}

// SessionDriver abstracts the browser session for testing
type SessionDriver interface {
	OpenPage(ctx context.Context, url string) (PageHandle, error)
	EnsureAuthenticated(ctx context.Context) error
	State() session.AuthState
	Available() bool
}

// managerDriver adapts a session.Manager to SessionDriver
type managerDriver struct {
	m *session.Manager
}

// NewSessionDriver wraps a session manager for use by the scraper
func NewSessionDriver(m *session.Manager) SessionDriver {
	return managerDriver{m: m}
}

func (d managerDriver) OpenPage(ctx context.Context, url string) (PageHandle, error) {
	page, err := d.m.OpenPage(ctx, url)
	if err != nil {
		return nil, err
	}
	return page, nil
}

func (d managerDriver) EnsureAuthenticated(ctx context.Context) error {
	return d.m.EnsureAuthenticated(ctx)
}

func (d managerDriver) State() session.AuthState {
	return d.m.State()
}

func (d managerDriver) Available() bool {
	return d.m.Available()
}
