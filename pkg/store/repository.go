package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"liscraper/pkg/models"
)

// UpsertProfile inserts or updates a profile keyed by its external id and
// returns the stored record with its object id populated.
func (s *Store) UpsertProfile(ctx context.Context, profile *models.TargetProfile) (*models.TargetProfile, error) {
	now := time.Now().UTC()
	profile.UpdatedAt = now
	if profile.ScrapedAt.IsZero() {
		profile.ScrapedAt = now
	}

	update := bson.M{
		"$set": bson.M{
			"external_numeric_id": profile.ExternalNumericID,
			"name":                profile.Name,
			"description":         profile.Description,
			"industry":            profile.Industry,
			"location":            profile.Location,
			"website":             profile.Website,
			"logo_url":            profile.LogoURL,
			"founded_year":        profile.FoundedYear,
			"head_count":          profile.HeadCount,
			"company_type":        profile.CompanyType,
			"specialties":         profile.Specialties,
			"follower_count":      profile.FollowerCount,
			"scraped_at":          profile.ScrapedAt,
			"updated_at":          profile.UpdatedAt,
		},
		"$setOnInsert": bson.M{
			"external_id": profile.ExternalID,
		},
	}

	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var stored models.TargetProfile
	err := s.db.Collection(collProfiles).
		FindOneAndUpdate(ctx, bson.M{"external_id": profile.ExternalID}, update, opts).
		Decode(&stored)
	if err != nil {
		return nil, fmt.Errorf("upsert profile %s: %w", profile.ExternalID, err)
	}
	return &stored, nil
}

// GetProfile returns the profile for externalID, or nil if absent
func (s *Store) GetProfile(ctx context.Context, externalID string) (*models.TargetProfile, error) {
	var profile models.TargetProfile
	err := s.db.Collection(collProfiles).
		FindOne(ctx, bson.M{"external_id": externalID}).
		Decode(&profile)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get profile %s: %w", externalID, err)
	}
	return &profile, nil
}

// ReplacePosts drops all posts and comments for the profile and bulk-inserts
// the new set. Posts are replaced wholesale, never merged, so a re-scrape
// cannot leave stale records behind.
func (s *Store) ReplacePosts(ctx context.Context, profileID primitive.ObjectID, posts []models.Post) error {
	if _, err := s.db.Collection(collComments).DeleteMany(ctx, bson.M{"profile_id": profileID}); err != nil {
		return fmt.Errorf("delete comments: %w", err)
	}
	if _, err := s.db.Collection(collPosts).DeleteMany(ctx, bson.M{"profile_id": profileID}); err != nil {
		return fmt.Errorf("delete posts: %w", err)
	}
	if len(posts) == 0 {
		return nil
	}

	docs := make([]interface{}, len(posts))
	for i := range posts {
		posts[i].ID = primitive.NewObjectID()
		posts[i].ProfileID = profileID
		if posts[i].ScrapedAt.IsZero() {
			posts[i].ScrapedAt = time.Now().UTC()
		}
		docs[i] = posts[i]
	}
	if _, err := s.db.Collection(collPosts).InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("insert posts: %w", err)
	}

	var comments []interface{}
	for i := range posts {
		for j := range posts[i].Comments {
			posts[i].Comments[j].PostID = posts[i].ID
			posts[i].Comments[j].ProfileID = profileID
			comments = append(comments, posts[i].Comments[j])
		}
	}
	if len(comments) > 0 {
		if _, err := s.db.Collection(collComments).InsertMany(ctx, comments); err != nil {
			return fmt.Errorf("insert comments: %w", err)
		}
	}
	return nil
}

// ReplacePeople drops all people for the profile and bulk-inserts the new set
func (s *Store) ReplacePeople(ctx context.Context, profileID primitive.ObjectID, people []models.Person) error {
	if _, err := s.db.Collection(collPeople).DeleteMany(ctx, bson.M{"profile_id": profileID}); err != nil {
		return fmt.Errorf("delete people: %w", err)
	}
	if len(people) == 0 {
		return nil
	}

	docs := make([]interface{}, len(people))
	for i := range people {
		people[i].ProfileID = profileID
		docs[i] = people[i]
	}
	if _, err := s.db.Collection(collPeople).InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("insert people: %w", err)
	}
	return nil
}

// GetPosts returns up to limit posts for the profile, newest first,
// with their comments attached.
func (s *Store) GetPosts(ctx context.Context, profileID primitive.ObjectID, limit int) ([]models.Post, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	cursor, err := s.db.Collection(collPosts).Find(ctx, bson.M{"profile_id": profileID}, opts)
	if err != nil {
		return nil, fmt.Errorf("find posts: %w", err)
	}
	var posts []models.Post
	if err := cursor.All(ctx, &posts); err != nil {
		return nil, fmt.Errorf("decode posts: %w", err)
	}
	if len(posts) == 0 {
		return posts, nil
	}

	// Attach comments in one pass
	commentCursor, err := s.db.Collection(collComments).Find(ctx, bson.M{"profile_id": profileID})
	if err != nil {
		return nil, fmt.Errorf("find comments: %w", err)
	}
	var comments []models.Comment
	if err := commentCursor.All(ctx, &comments); err != nil {
		return nil, fmt.Errorf("decode comments: %w", err)
	}

	byPost := make(map[primitive.ObjectID][]models.Comment)
	for _, c := range comments {
		byPost[c.PostID] = append(byPost[c.PostID], c)
	}
	for i := range posts {
		posts[i].Comments = byPost[posts[i].ID]
	}
	return posts, nil
}

// GetPeople returns one page of people for the profile
func (s *Store) GetPeople(ctx context.Context, profileID primitive.ObjectID, page, pageSize int) ([]models.Person, error) {
	if page < 1 {
		page = 1
	}
	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	if pageSize > 0 {
		opts.SetSkip(int64((page - 1) * pageSize)).SetLimit(int64(pageSize))
	}

	cursor, err := s.db.Collection(collPeople).Find(ctx, bson.M{"profile_id": profileID}, opts)
	if err != nil {
		return nil, fmt.Errorf("find people: %w", err)
	}
	var people []models.Person
	if err := cursor.All(ctx, &people); err != nil {
		return nil, fmt.Errorf("decode people: %w", err)
	}
	return people, nil
}
