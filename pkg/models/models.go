// Package models defines the persisted records for scraped company data.
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TargetProfile is the organization record. ExternalID is the profile's
// public identifier on the target platform and is unique and immutable
// once assigned.
type TargetProfile struct {
	ID                primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	ExternalID        string             `bson:"external_id" json:"external_id"`
	ExternalNumericID *string            `bson:"external_numeric_id,omitempty" json:"external_numeric_id,omitempty"`
	Name              *string            `bson:"name,omitempty" json:"name,omitempty"`
	Description       *string            `bson:"description,omitempty" json:"description,omitempty"`
	Industry          *string            `bson:"industry,omitempty" json:"industry,omitempty"`
	Location          *string            `bson:"location,omitempty" json:"location,omitempty"`
	Website           *string            `bson:"website,omitempty" json:"website,omitempty"`
	LogoURL           *string            `bson:"logo_url,omitempty" json:"logo_url,omitempty"`
	FoundedYear       *int               `bson:"founded_year,omitempty" json:"founded_year,omitempty"`
	HeadCount         *string            `bson:"head_count,omitempty" json:"head_count,omitempty"`
	CompanyType       *string            `bson:"company_type,omitempty" json:"company_type,omitempty"`
	Specialties       []string           `bson:"specialties,omitempty" json:"specialties,omitempty"`
	FollowerCount     *int               `bson:"follower_count,omitempty" json:"follower_count,omitempty"`
	ScrapedAt         time.Time          `bson:"scraped_at" json:"scraped_at"`
	UpdatedAt         time.Time          `bson:"updated_at" json:"updated_at"`
}

// Post belongs to exactly one TargetProfile. Comments are stored in their
// own collection; the slice here is populated only in materialized
// snapshots and API responses.
type Post struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	ProfileID        primitive.ObjectID `bson:"profile_id" json:"profile_id"`
	ExternalPostID   *string            `bson:"external_post_id,omitempty" json:"external_post_id,omitempty"`
	Content          string             `bson:"content" json:"content"`
	PostURL          *string            `bson:"post_url,omitempty" json:"post_url,omitempty"`
	AuthorName       *string            `bson:"author_name,omitempty" json:"author_name,omitempty"`
	AuthorProfileURL *string            `bson:"author_profile_url,omitempty" json:"author_profile_url,omitempty"`
	Likes            int                `bson:"likes" json:"likes"`
	CommentCount     int                `bson:"comment_count" json:"comment_count"`
	Shares           int                `bson:"shares" json:"shares"`
	CreatedAt        *time.Time         `bson:"created_at,omitempty" json:"created_at,omitempty"`
	ScrapedAt        time.Time          `bson:"scraped_at" json:"scraped_at"`

	Comments []Comment `bson:"-" json:"comments,omitempty"`
}

// Valid reports whether the post carries enough identity to keep.
// Posts with neither content nor a URL are discarded.
func (p *Post) Valid() bool {
	return p.Content != "" || (p.PostURL != nil && *p.PostURL != "")
}

// Comment belongs to exactly one Post. ProfileID is carried redundantly so
// all comments for a profile can be dropped in one pass on re-scrape.
type Comment struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	PostID     primitive.ObjectID `bson:"post_id" json:"post_id"`
	ProfileID  primitive.ObjectID `bson:"profile_id" json:"profile_id"`
	AuthorName *string            `bson:"author_name,omitempty" json:"author_name,omitempty"`
	Content    string             `bson:"content" json:"content"`
	Likes      int                `bson:"likes" json:"likes"`
	CreatedAt  *time.Time         `bson:"created_at,omitempty" json:"created_at,omitempty"`
}

// Person belongs to exactly one TargetProfile. ProfileURL is the dedup key
// within a profile.
type Person struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	ProfileID       primitive.ObjectID `bson:"profile_id" json:"profile_id"`
	Name            string             `bson:"name" json:"name"`
	ProfileURL      string             `bson:"profile_url" json:"profile_url"`
	Headline        *string            `bson:"headline,omitempty" json:"headline,omitempty"`
	Location        *string            `bson:"location,omitempty" json:"location,omitempty"`
	CurrentPosition *string            `bson:"current_position,omitempty" json:"current_position,omitempty"`
	ConnectionCount *int               `bson:"connection_count,omitempty" json:"connection_count,omitempty"`
}

// Snapshot is the fully materialized cache value for one profile
type Snapshot struct {
	Profile  TargetProfile `json:"profile"`
	Posts    []Post        `json:"posts"`
	People   []Person      `json:"people"`
	CachedAt time.Time     `json:"cached_at"`
}
