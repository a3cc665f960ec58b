package orchestrator

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"liscraper/pkg/extract"
	"liscraper/pkg/models"
	"liscraper/pkg/scraper"
	"liscraper/pkg/session"
)

// SnapshotCache is the cache tier
type SnapshotCache interface {
	Get(ctx context.Context, externalID string) *models.Snapshot
	Set(ctx context.Context, externalID string, snapshot *models.Snapshot)
	Delete(ctx context.Context, externalID string)
	Ping(ctx context.Context) error
}

// ProfileStore is the persistent tier
type ProfileStore interface {
	UpsertProfile(ctx context.Context, profile *models.TargetProfile) (*models.TargetProfile, error)
	GetProfile(ctx context.Context, externalID string) (*models.TargetProfile, error)
	ReplacePosts(ctx context.Context, profileID primitive.ObjectID, posts []models.Post) error
	ReplacePeople(ctx context.Context, profileID primitive.ObjectID, people []models.Person) error
	GetPosts(ctx context.Context, profileID primitive.ObjectID, limit int) ([]models.Post, error)
	GetPeople(ctx context.Context, profileID primitive.ObjectID, page, pageSize int) ([]models.Person, error)
	Ping(ctx context.Context) error
}

// CompanyScraper is the live-scrape tier
type CompanyScraper interface {
	ScrapeCompany(ctx context.Context, externalID string) (*scraper.Result, error)
}

// Enricher is the optional secondary structured-data source
type Enricher interface {
	Lookup(ctx context.Context, externalID string) (*extract.ProfilePartial, error)
}

// SessionInfo exposes the session state needed for advisories and health
type SessionInfo interface {
	Available() bool
	State() session.AuthState
}
