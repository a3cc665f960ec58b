// Package orchestrator ties retrieval tiers together: cache first, then the
// persistent store, then a live scrape. Fresh scrapes are enriched from the
// secondary source, persisted, and written through to the cache.
package orchestrator

import (
	"context"
	"time"

	"liscraper/pkg/config"
	errs "liscraper/pkg/errors"
	"liscraper/pkg/extract"
	"liscraper/pkg/logger"
	"liscraper/pkg/models"
	"liscraper/pkg/session"
)

// Source identifies which tier served a lookup
type Source string

const (
	SourceCache  Source = "cache"
	SourceStore  Source = "store"
	SourceScrape Source = "scrape"
)

// LookupResult is a served snapshot plus where it came from and any
// advisory about degraded auth.
type LookupResult struct {
	Snapshot *models.Snapshot `json:"snapshot"`
	Source   Source           `json:"source"`
	Advisory string           `json:"advisory,omitempty"`
}

// Orchestrator serves company lookups through the tiered retrieval flow
type Orchestrator struct {
	cache    SnapshotCache
	store    ProfileStore
	scraper  CompanyScraper
	enricher Enricher
	sess     SessionInfo
	cfg      *config.Config
	log      logger.Logger

	now func() time.Time
}

// New creates an orchestrator over the given tiers. enricher may be nil
// when no secondary source is configured.
func New(cache SnapshotCache, store ProfileStore, scraper CompanyScraper, enricher Enricher, sess SessionInfo, cfg *config.Config, log logger.Logger) *Orchestrator {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Orchestrator{
		cache:    cache,
		store:    store,
		scraper:  scraper,
		enricher: enricher,
		sess:     sess,
		cfg:      cfg,
		log:      log,
		now:      time.Now,
	}
}

// GetOrRefresh serves a company snapshot. force skips the cache and store
// tiers and goes straight to a live scrape.
func (o *Orchestrator) GetOrRefresh(ctx context.Context, externalID string, force bool) (*LookupResult, error) {
	if !force {
		if snap := o.cache.Get(ctx, externalID); snap != nil {
			return &LookupResult{Snapshot: snap, Source: SourceCache, Advisory: o.advisory()}, nil
		}

		snap, err := o.fromStore(ctx, externalID)
		if err != nil {
			o.log.WithError(err).WithField("company", externalID).Error("store lookup failed")
			return nil, errs.Newf(errs.ErrorTypeStoreUnavailable, "store lookup for %s: %v", externalID, err)
		}
		if snap != nil {
			o.cache.Set(ctx, externalID, snap)
			return &LookupResult{Snapshot: snap, Source: SourceStore, Advisory: o.advisory()}, nil
		}
	}

	snap, err := o.scrape(ctx, externalID)
	if err != nil {
		return nil, err
	}

	o.cache.Set(ctx, externalID, snap)
	return &LookupResult{Snapshot: snap, Source: SourceScrape, Advisory: o.advisory()}, nil
}

// fromStore hydrates a full snapshot out of the persistent store. Returns
// nil when the profile has never been scraped.
func (o *Orchestrator) fromStore(ctx context.Context, externalID string) (*models.Snapshot, error) {
	profile, err := o.store.GetProfile(ctx, externalID)
	if err != nil || profile == nil {
		return nil, err
	}

	posts, err := o.store.GetPosts(ctx, profile.ID, o.cfg.Scrape.MaxPosts)
	if err != nil {
		return nil, err
	}
	people, err := o.store.GetPeople(ctx, profile.ID, 1, o.cfg.Scrape.MaxPeople)
	if err != nil {
		return nil, err
	}

	return &models.Snapshot{
		Profile:  *profile,
		Posts:    posts,
		People:   people,
		CachedAt: o.now(),
	}, nil
}

// scrape runs a live scrape, enriches it, and persists the outcome. A
// store failure at any point fails the request; a snapshot is never served
// without having been persisted first.
func (o *Orchestrator) scrape(ctx context.Context, externalID string) (*models.Snapshot, error) {
	result, err := o.scraper.ScrapeCompany(ctx, externalID)
	if err != nil {
		return nil, err
	}

	partial := result.Profile
	if o.enricher != nil {
		if extraPartial, err := o.enricher.Lookup(ctx, externalID); err != nil {
			o.log.WithError(err).WithField("company", externalID).Warn("enrichment lookup failed")
		} else if extraPartial != nil {
			// Scraped values always win; enrichment only fills gaps
			partial = extract.MergeProfileParts([]extract.ProfilePartial{partial, *extraPartial})
		}
	}

	now := o.now()
	profile := partialToProfile(externalID, partial, now)

	stored, err := o.store.UpsertProfile(ctx, profile)
	if err != nil {
		o.log.WithError(err).WithField("company", externalID).Error("profile persist failed")
		return nil, errs.Newf(errs.ErrorTypeStoreUnavailable, "persist profile for %s: %v", externalID, err)
	}

	for i := range result.Posts {
		result.Posts[i].ProfileID = stored.ID
		result.Posts[i].ScrapedAt = now
	}
	for i := range result.People {
		result.People[i].ProfileID = stored.ID
	}

	if err := o.store.ReplacePosts(ctx, stored.ID, result.Posts); err != nil {
		o.log.WithError(err).WithField("company", externalID).Error("posts persist failed")
		return nil, errs.Newf(errs.ErrorTypeStoreUnavailable, "persist posts for %s: %v", externalID, err)
	}
	if err := o.store.ReplacePeople(ctx, stored.ID, result.People); err != nil {
		o.log.WithError(err).WithField("company", externalID).Error("people persist failed")
		return nil, errs.Newf(errs.ErrorTypeStoreUnavailable, "persist people for %s: %v", externalID, err)
	}

	return &models.Snapshot{
		Profile:  *stored,
		Posts:    result.Posts,
		People:   result.People,
		CachedAt: now,
	}, nil
}

// Invalidate drops a company's cached snapshot
func (o *Orchestrator) Invalidate(ctx context.Context, externalID string) {
	o.cache.Delete(ctx, externalID)
}

// advisory explains degraded auth to the caller. Data still flows in both
// cases; only completeness differs.
func (o *Orchestrator) advisory() string {
	if !o.sess.Available() {
		return "scraping capability unavailable; serving stored data only"
	}
	switch o.sess.State() {
	case session.StateAuthenticated:
		return ""
	default:
		if o.cfg.Target.Email == "" {
			return "no credentials configured; authenticated-only fields may be missing"
		}
		return "credentials were rejected by the target; authenticated-only fields may be missing"
	}
}

// partialToProfile maps merged extraction output onto the stored model
func partialToProfile(externalID string, p extract.ProfilePartial, now time.Time) *models.TargetProfile {
	return &models.TargetProfile{
		ExternalID:        externalID,
		ExternalNumericID: p.ExternalNumericID,
		Name:              p.Name,
		Description:       p.Description,
		Industry:          p.Industry,
		Location:          p.Location,
		Website:           p.Website,
		LogoURL:           p.LogoURL,
		FoundedYear:       p.FoundedYear,
		HeadCount:         p.HeadCount,
		CompanyType:       p.CompanyType,
		Specialties:       p.Specialties,
		FollowerCount:     p.FollowerCount,
		ScrapedAt:         now,
		UpdatedAt:         now,
	}
}

// ComponentHealth is one dependency's health
type ComponentHealth struct {
	Status string `json:"status"`
	Detail string `json:"detail,omitempty"`
}

// HealthReport is the aggregate service health. The store is the only
// dependency whose loss marks the whole service failed; everything else
// degrades.
type HealthReport struct {
	Status     string                     `json:"status"`
	Components map[string]ComponentHealth `json:"components"`
}

const (
	healthOK       = "ok"
	healthDegraded = "degraded"
	healthFailed   = "failed"
)

// Health probes every dependency and aggregates
func (o *Orchestrator) Health(ctx context.Context) *HealthReport {
	report := &HealthReport{Status: healthOK, Components: map[string]ComponentHealth{}}

	if err := o.store.Ping(ctx); err != nil {
		report.Components["store"] = ComponentHealth{Status: healthFailed, Detail: err.Error()}
		report.Status = healthFailed
	} else {
		report.Components["store"] = ComponentHealth{Status: healthOK}
	}

	if err := o.cache.Ping(ctx); err != nil {
		report.Components["cache"] = ComponentHealth{Status: healthDegraded, Detail: err.Error()}
		if report.Status == healthOK {
			report.Status = healthDegraded
		}
	} else {
		report.Components["cache"] = ComponentHealth{Status: healthOK}
	}

	switch {
	case !o.sess.Available():
		report.Components["session"] = ComponentHealth{Status: healthDegraded, Detail: "browser session unavailable"}
		if report.Status == healthOK {
			report.Status = healthDegraded
		}
	case o.sess.State() != session.StateAuthenticated:
		report.Components["session"] = ComponentHealth{Status: healthDegraded, Detail: string(o.sess.State())}
		if report.Status == healthOK {
			report.Status = healthDegraded
		}
	default:
		report.Components["session"] = ComponentHealth{Status: healthOK}
	}

	return report
}
