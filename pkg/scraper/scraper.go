// Package scraper drives the browser session through a company's public
// surfaces and runs the extraction pipeline over each captured snapshot.
package scraper

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"liscraper/pkg/config"
	errs "liscraper/pkg/errors"
	"liscraper/pkg/extract"
	"liscraper/pkg/logger"
	"liscraper/pkg/models"
	"liscraper/pkg/retry"
)

// Scraper visits a company's profile, posts, and people surfaces in order
// and extracts typed records from each. All navigations flow through a
// shared pacer so outbound traffic stays human-shaped.
type Scraper struct {
	session SessionDriver
	cfg     config.ScrapeConfig
	baseURL string
	log     logger.Logger

	pacer *rate.Limiter

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// New creates a scraper over an initialized session
func New(sess SessionDriver, cfg config.ScrapeConfig, baseURL string, log logger.Logger) *Scraper {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Scraper{
		session: sess,
		cfg:     cfg,
		baseURL: baseURL,
		log:     log,
		pacer:   rate.NewLimiter(rate.Every(2*time.Second), 1),
		now:     time.Now,
		sleep:   retry.Wait,
	}
}

// Result is everything one full scrape produced
type Result struct {
	Profile extract.ProfilePartial
	Posts   []models.Post
	People  []models.Person
}

// ScrapeCompany scrapes a company's profile, recent posts, and associated
// people. The profile is mandatory; posts and people failures degrade to
// empty slices rather than failing the whole scrape.
func (s *Scraper) ScrapeCompany(ctx context.Context, externalID string) (*Result, error) {
	if !s.session.Available() {
		return nil, errs.New(errs.ErrorTypeCapabilityUnavailable, "scraping capability unavailable")
	}

	profile, err := s.ScrapeProfile(ctx, externalID)
	if err != nil {
		return nil, err
	}

	posts, err := s.ScrapePosts(ctx, externalID)
	if err != nil {
		s.log.WithError(err).WithField("company", externalID).Warn("posts scrape failed")
		posts = nil
	}

	people := s.ScrapePeople(ctx, externalID, posts)

	return &Result{Profile: profile, Posts: posts, People: people}, nil
}

// ScrapeProfile loads the company's main page and runs the full strategy
// pipeline over it. A page that yields not even a name is treated as a
// parsing failure.
func (s *Scraper) ScrapeProfile(ctx context.Context, externalID string) (extract.ProfilePartial, error) {
	page, err := s.openWithAuthRetry(ctx, s.companyURL(externalID))
	if err != nil {
		return extract.ProfilePartial{}, err
	}
	defer page.Close()

	partial := extract.ExtractProfile(page.Snapshot())
	if partial.Name == nil {
		return partial, errs.Newf(errs.ErrorTypeParsing, "no profile fields extracted for %s", externalID)
	}
	return partial, nil
}

// ScrapePosts loads the company's activity feed and paginates it by
// scrolling until the configured post count is loaded, the feed stops
// growing for two consecutive rounds, or the round cap is hit.
func (s *Scraper) ScrapePosts(ctx context.Context, externalID string) ([]models.Post, error) {
	page, err := s.openWithAuthRetry(ctx, s.companyURL(externalID)+"posts/")
	if err != nil {
		return nil, err
	}
	defer page.Close()

	selector := extract.PostSelector()
	loaded := page.Count(selector)
	stale := 0
	for round := 0; round < s.cfg.MaxScrollRounds; round++ {
		if s.cfg.MaxPosts > 0 && loaded >= s.cfg.MaxPosts {
			break
		}
		if err := ctx.Err(); err != nil {
			break
		}

		page.ScrollToBottom()
		page.ClickShowMore()

		count := page.Count(selector)
		if count <= loaded {
			stale++
			if stale >= 2 {
				break
			}
		} else {
			stale = 0
		}
		loaded = count
	}

	posts := extract.ExtractPosts(page.Snapshot(), s.now(), s.cfg.MaxPosts, s.cfg.MaxCommentsPerPost)
	s.log.WithFields(map[string]interface{}{
		"company": externalID,
		"posts":   len(posts),
	}).Info("posts scraped")
	return posts, nil
}

// ScrapePeople loads the company's people surface. When that surface is
// authwalled the post authors already in hand serve as the fallback
// source. Optionally each person's own profile is visited sequentially to
// fill in missing fields.
func (s *Scraper) ScrapePeople(ctx context.Context, externalID string, posts []models.Post) []models.Person {
	var people []models.Person

	page, err := s.openWithAuthRetry(ctx, s.companyURL(externalID)+"people/")
	if err != nil {
		s.log.WithError(err).WithField("company", externalID).
			Warn("people surface unavailable, falling back to post authors")
		people = extract.PeopleFromPosts(posts, s.cfg.MaxPeople)
	} else {
		people = extract.ExtractPeople(page.Snapshot(), s.cfg.MaxPeople)
		page.Close()
		if len(people) == 0 {
			people = extract.PeopleFromPosts(posts, s.cfg.MaxPeople)
		}
	}

	if s.cfg.EnrichPeople {
		s.enrichPeople(ctx, externalID, people)
	}
	return people
}

// enrichPeople visits individual profiles strictly sequentially with a
// jittered delay between visits. Visits are capped and each failure skips
// just that person.
func (s *Scraper) enrichPeople(ctx context.Context, externalID string, people []models.Person) {
	visits := len(people)
	if s.cfg.MaxProfileVisits > 0 && visits > s.cfg.MaxProfileVisits {
		visits = s.cfg.MaxProfileVisits
	}

	for i := 0; i < visits; i++ {
		delay := time.Duration(3+i%3) * time.Second
		if err := s.sleep(ctx, delay); err != nil {
			return
		}

		page, err := s.openPage(ctx, people[i].ProfileURL)
		if err != nil {
			s.log.WithError(err).WithField("profile_url", people[i].ProfileURL).
				Debug("profile visit failed, skipping")
			continue
		}
		extract.EnrichPerson(&people[i], page.Snapshot())
		page.Close()

		logger.LogScrapeProgress(externalID, i+1, visits)
	}
}

// openPage paces, navigates, and retries transient failures. Auth errors
// are never blindly retried here; they go through the re-login path.
func (s *Scraper) openPage(ctx context.Context, url string) (PageHandle, error) {
	if err := s.pacer.Wait(ctx); err != nil {
		return nil, errs.Newf(errs.ErrorTypeTimeout, "pacing wait: %v", err)
	}

	return retry.DoWithResult(func() (PageHandle, error) {
		return s.session.OpenPage(ctx, url)
	}, &retry.Config{
		MaxAttempts: s.cfg.RetryAttempts,
		Backoff:     retry.DefaultExponentialBackoff(),
		RetryIf: func(err error) bool {
			if isAuthError(err) {
				return false
			}
			return retry.DefaultRetryIf(err)
		},
		Context: ctx,
	})
}

// openWithAuthRetry makes at most one fresh login attempt when a
// navigation lands on an authwall, then retries the navigation once.
func (s *Scraper) openWithAuthRetry(ctx context.Context, url string) (PageHandle, error) {
	page, err := s.openPage(ctx, url)
	if err == nil || !isAuthError(err) {
		return page, err
	}

	if loginErr := s.session.EnsureAuthenticated(ctx); loginErr != nil {
		return nil, err
	}
	return s.openPage(ctx, url)
}

func isAuthError(err error) bool {
	var typed *errs.Error
	return errors.As(err, &typed) && typed.Type == errs.ErrorTypeAuth
}

func (s *Scraper) companyURL(externalID string) string {
	return fmt.Sprintf("%s/company/%s/", s.baseURL, externalID)
}
