package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"chapamarket/backend/internal/auth"
	"chapamarket/backend/internal/config"
	"chapamarket/backend/internal/db"
	"chapamarket/backend/internal/models"
)

// IBannerService defines the interface for homepage banner operations.
// Invariant: at most one banner is active at a time. Activate enforces this
// with a single set-based update, not a deactivate-all-then-activate pair.
type IBannerService interface {
	Create(ctx context.Context, actor auth.Session, title, description, imageKey string) (*models.Banner, error)
	Update(ctx context.Context, actor auth.Session, bannerID string, updates map[string]interface{}) (*models.Banner, error)
	FindAll(ctx context.Context) ([]models.Banner, error)
	FindActive(ctx context.Context) (*models.Banner, error)
	Activate(ctx context.Context, actor auth.Session, bannerID string) error
	Deactivate(ctx context.Context, actor auth.Session, bannerID string) error
	Delete(ctx context.Context, actor auth.Session, bannerID string) error
}

const bannersCollection = "homepage_banners"

// bannerService implements IBannerService.
type bannerService struct {
	db  *mongo.Database
	cfg *config.Config
}

// NewBannerService creates a new BannerService.
func NewBannerService(db *mongo.Database, cfg *config.Config) IBannerService {
	return &bannerService{db: db, cfg: cfg}
}

// Create inserts a new inactive banner.
func (s *bannerService) Create(ctx context.Context, actor auth.Session, title, description, imageKey string) (*models.Banner, error) {
	if err := actor.RequireAdmin(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(title) == "" {
		return nil, fmt.Errorf("banner title is required")
	}

	collection := s.db.Collection(bannersCollection)
	now := time.Now().UTC()

	var newBanner *models.Banner

	operation := func() error {
		newBanner = &models.Banner{
			ID:          uuid.NewString(),
			Title:       title,
			Description: description,
			ImageKey:    imageKey,
			IsActive:    false,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		_, insertErr := collection.InsertOne(ctx, newBanner)
		return insertErr
	}

	err := db.Try(operation)

	if err != nil {
		return nil, fmt.Errorf("failed to insert new banner after multiple retries: %w", err)
	}

	return newBanner, nil
}

// Update modifies mutable banner fields. The active flag is managed only
// through Activate/Deactivate.
func (s *bannerService) Update(ctx context.Context, actor auth.Session, bannerID string, updates map[string]interface{}) (*models.Banner, error) {
	if err := actor.RequireAdmin(); err != nil {
		return nil, err
	}

	allowedUpdates := bson.M{}
	for key, value := range updates {
		switch key {
		case "title", "description", "image_key":
			allowedUpdates[key] = value
		default:
			return nil, fmt.Errorf("field '%s' cannot be updated via Update", key)
		}
	}
	if len(allowedUpdates) == 0 {
		return nil, fmt.Errorf("no valid fields provided for update")
	}
	allowedUpdates["updated_at"] = time.Now().UTC()

	collection := s.db.Collection(bannersCollection)
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updatedBanner models.Banner
	err := collection.FindOneAndUpdate(ctx, bson.M{"_id": bannerID}, bson.M{"$set": allowedUpdates}, opts).Decode(&updatedBanner)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("banner %s not found", bannerID)
		}
		return nil, fmt.Errorf("failed to update banner %s: %w", bannerID, err)
	}

	return &updatedBanner, nil
}

// FindAll returns all banners, newest first.
func (s *bannerService) FindAll(ctx context.Context) ([]models.Banner, error) {
	collection := s.db.Collection(bannersCollection)
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query banners: %w", err)
	}
	defer cursor.Close(ctx)

	var banners []models.Banner
	if err = cursor.All(ctx, &banners); err != nil {
		return nil, fmt.Errorf("failed to decode banners: %w", err)
	}
	return banners, nil
}

// FindActive returns the currently active banner, or mongo.ErrNoDocuments
// when no banner is active.
func (s *bannerService) FindActive(ctx context.Context) (*models.Banner, error) {
	var banner models.Banner
	err := s.db.Collection(bannersCollection).FindOne(ctx, bson.M{"is_active": true}).Decode(&banner)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, mongo.ErrNoDocuments
		}
		return nil, fmt.Errorf("error finding active banner: %w", err)
	}
	return &banner, nil
}

// Activate makes bannerID the single active banner. The target is flipped on
// first, then every flag is rewritten in one pipeline update
// (is_active = (_id == target)), so two admins activating concurrently still
// leave exactly one banner active: whichever rewrite the store applies last
// wins wholesale.
func (s *bannerService) Activate(ctx context.Context, actor auth.Session, bannerID string) error {
	if err := actor.RequireAdmin(); err != nil {
		return err
	}
	collection := s.db.Collection(bannersCollection)
	now := time.Now().UTC()

	// Existence is checked by the update filter itself: a missing banner
	// matches nothing, so a stale ID returns not-found without touching the
	// rest of the collection.
	res, err := collection.UpdateOne(ctx, bson.M{"_id": bannerID},
		bson.M{"$set": bson.M{"is_active": true, "updated_at": now}})
	if err != nil {
		return fmt.Errorf("db error activating banner %s: %w", bannerID, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("banner %s not found", bannerID)
	}

	pipeline := mongo.Pipeline{
		{{Key: "$set", Value: bson.M{
			"is_active":  bson.M{"$eq": bson.A{"$_id", bannerID}},
			"updated_at": now,
		}}},
	}
	if _, err := collection.UpdateMany(ctx, bson.M{}, pipeline); err != nil {
		return fmt.Errorf("db error activating banner %s: %w", bannerID, err)
	}
	return nil
}

// Deactivate clears the active flag on one banner.
func (s *bannerService) Deactivate(ctx context.Context, actor auth.Session, bannerID string) error {
	if err := actor.RequireAdmin(); err != nil {
		return err
	}
	collection := s.db.Collection(bannersCollection)
	update := bson.M{"$set": bson.M{
		"is_active":  false,
		"updated_at": time.Now().UTC(),
	}}

	result, err := collection.UpdateOne(ctx, bson.M{"_id": bannerID}, update)
	if err != nil {
		return fmt.Errorf("db error deactivating banner %s: %w", bannerID, err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("banner %s not found", bannerID)
	}
	return nil
}

// Delete removes the banner permanently; deleting a missing banner is a no-op.
func (s *bannerService) Delete(ctx context.Context, actor auth.Session, bannerID string) error {
	if err := actor.RequireAdmin(); err != nil {
		return err
	}
	result, err := s.db.Collection(bannersCollection).DeleteOne(ctx, bson.M{"_id": bannerID})
	if err != nil {
		return fmt.Errorf("db error deleting banner %s: %w", bannerID, err)
	}
	if result.DeletedCount == 0 {
		log.Printf("Delete of banner %s matched no documents.", bannerID)
	}
	return nil
}
