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

// IListingService defines the interface for livestock listing operations.
type IListingService interface {
	Create(ctx context.Context, sellerID string, in models.NewListingInput) (*models.Listing, error)
	FindByID(ctx context.Context, listingID string) (*models.Listing, error)
	FindRecent(ctx context.Context, limit int) ([]models.Listing, error)
	FindPending(ctx context.Context, limit int) ([]models.Listing, error)
	FindBySeller(ctx context.Context, sellerID string) ([]models.Listing, error)
	Search(ctx context.Context, query, category string, verifiedOnly bool, limit int) ([]models.Listing, error)
	CountAll(ctx context.Context) (int64, error)
	CountPending(ctx context.Context) (int64, error)
	AttachImage(ctx context.Context, listingID, imageKey string) error

	// Admin moderation. No precondition guards: approving an approved
	// listing is a storage round-trip that changes nothing.
	Approve(ctx context.Context, actor auth.Session, listingID string) error
	Reject(ctx context.Context, actor auth.Session, listingID string) error
	ToggleFeatured(ctx context.Context, actor auth.Session, listingID string) error
	Delete(ctx context.Context, actor auth.Session, listingID string) error
}

const listingsCollection = "livestock"

// listingService implements IListingService.
type listingService struct {
	db  *mongo.Database
	cfg *config.Config
}

// NewListingService creates a new ListingService.
func NewListingService(db *mongo.Database, cfg *config.Config) IListingService {
	return &listingService{db: db, cfg: cfg}
}

// Create inserts a new unverified listing for a seller. The price string is
// validated and normalized here; nothing downstream re-parses it.
func (s *listingService) Create(ctx context.Context, sellerID string, in models.NewListingInput) (*models.Listing, error) {
	price, err := in.Validate(s.cfg.DefaultCurrency)
	if err != nil {
		return nil, err
	}

	collection := s.db.Collection(listingsCollection)
	now := time.Now().UTC()

	var newListing *models.Listing

	operation := func() error {
		newListing = &models.Listing{
			ID:          uuid.NewString(),
			SellerID:    sellerID,
			Name:        strings.TrimSpace(in.Name),
			Category:    strings.ToLower(strings.TrimSpace(in.Category)),
			Breed:       in.Breed,
			Age:         in.Age,
			Gender:      in.Gender,
			Price:       price,
			Location:    in.Location,
			Description: in.Description,
			Verified:    false,
			Featured:    false,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		_, insertErr := collection.InsertOne(ctx, newListing)
		return insertErr
	}

	err = db.Try(operation)

	if err != nil {
		return nil, fmt.Errorf("failed to insert new listing for seller %s after multiple retries: %w", sellerID, err)
	}

	return newListing, nil
}

// FindByID finds a listing by its ID. It does NOT filter on verified; the
// caller decides whether unverified listings are visible.
func (s *listingService) FindByID(ctx context.Context, listingID string) (*models.Listing, error) {
	var listing models.Listing
	collection := s.db.Collection(listingsCollection)

	err := collection.FindOne(ctx, bson.M{"_id": listingID}).Decode(&listing)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, mongo.ErrNoDocuments
		}
		return nil, fmt.Errorf("error finding listing by ID %s: %w", listingID, err)
	}
	return &listing, nil
}

// FindRecent returns the most recently created listings, newest first.
func (s *listingService) FindRecent(ctx context.Context, limit int) ([]models.Listing, error) {
	return s.find(ctx, bson.M{}, limit)
}

// FindPending returns listings awaiting admin approval (verified = false).
func (s *listingService) FindPending(ctx context.Context, limit int) ([]models.Listing, error) {
	return s.find(ctx, bson.M{"verified": false}, limit)
}

// FindBySeller returns all listings owned by a seller, newest first.
func (s *listingService) FindBySeller(ctx context.Context, sellerID string) ([]models.Listing, error) {
	return s.find(ctx, bson.M{"seller_id": sellerID}, 0)
}

func (s *listingService) find(ctx context.Context, filter bson.M, limit int) ([]models.Listing, error) {
	if limit <= 0 {
		limit = s.cfg.RecentFetchLimit
	}
	collection := s.db.Collection(listingsCollection)
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}).SetLimit(int64(limit))

	cursor, err := collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query listings: %w", err)
	}
	defer cursor.Close(ctx)

	var listings []models.Listing
	if err = cursor.All(ctx, &listings); err != nil {
		return nil, fmt.Errorf("failed to decode listings: %w", err)
	}
	return listings, nil
}

// Search matches listings by name, breed or location substring, optionally
// restricted to one category. Buyer-facing callers pass verifiedOnly=true.
func (s *listingService) Search(ctx context.Context, query, category string, verifiedOnly bool, limit int) ([]models.Listing, error) {
	filter := bson.M{}
	if verifiedOnly {
		filter["verified"] = true
	}
	if c := strings.ToLower(strings.TrimSpace(category)); c != "" {
		filter["category"] = c
	}
	if q := strings.TrimSpace(query); q != "" {
		regex := bson.M{"$regex": q, "$options": "i"}
		filter["$or"] = bson.A{
			bson.M{"name": regex},
			bson.M{"breed": regex},
			bson.M{"location": regex},
		}
	}
	return s.find(ctx, filter, limit)
}

// CountAll returns the total number of listings.
func (s *listingService) CountAll(ctx context.Context) (int64, error) {
	count, err := s.db.Collection(listingsCollection).CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count listings: %w", err)
	}
	return count, nil
}

// CountPending returns the number of listings with verified = false.
func (s *listingService) CountPending(ctx context.Context) (int64, error) {
	count, err := s.db.Collection(listingsCollection).CountDocuments(ctx, bson.M{"verified": false})
	if err != nil {
		return 0, fmt.Errorf("failed to count pending listings: %w", err)
	}
	return count, nil
}

// AttachImage sets the final processed image key on a listing. Called by the
// image processing task once the resized upload has been stored.
func (s *listingService) AttachImage(ctx context.Context, listingID, imageKey string) error {
	collection := s.db.Collection(listingsCollection)
	update := bson.M{"$set": bson.M{
		"image_key":  imageKey,
		"updated_at": time.Now().UTC(),
	}}

	result, err := collection.UpdateOne(ctx, bson.M{"_id": listingID}, update)
	if err != nil {
		return fmt.Errorf("db error attaching image %s to listing %s: %w", imageKey, listingID, err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("listing %s not found when attaching image", listingID)
	}
	return nil
}

// setVerified writes the verified flag unconditionally.
func (s *listingService) setVerified(ctx context.Context, actor auth.Session, listingID string, verified bool) error {
	if err := actor.RequireAdmin(); err != nil {
		return err
	}
	collection := s.db.Collection(listingsCollection)
	update := bson.M{"$set": bson.M{
		"verified":   verified,
		"updated_at": time.Now().UTC(),
	}}

	result, err := collection.UpdateOne(ctx, bson.M{"_id": listingID}, update)
	if err != nil {
		return fmt.Errorf("db error setting verified=%t on listing %s: %w", verified, listingID, err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("listing %s not found", listingID)
	}
	return nil
}

// Approve marks the listing verified, making it visible to buyers.
func (s *listingService) Approve(ctx context.Context, actor auth.Session, listingID string) error {
	return s.setVerified(ctx, actor, listingID, true)
}

// Reject clears the verified flag.
func (s *listingService) Reject(ctx context.Context, actor auth.Session, listingID string) error {
	return s.setVerified(ctx, actor, listingID, false)
}

// ToggleFeatured flips the featured flag with a single pipeline update, so
// two concurrent toggles can't both read the same prior value.
func (s *listingService) ToggleFeatured(ctx context.Context, actor auth.Session, listingID string) error {
	if err := actor.RequireAdmin(); err != nil {
		return err
	}
	collection := s.db.Collection(listingsCollection)
	pipeline := mongo.Pipeline{
		{{Key: "$set", Value: bson.M{
			"featured":   bson.M{"$not": "$featured"},
			"updated_at": time.Now().UTC(),
		}}},
	}

	result, err := collection.UpdateOne(ctx, bson.M{"_id": listingID}, pipeline)
	if err != nil {
		return fmt.Errorf("db error toggling featured on listing %s: %w", listingID, err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("listing %s not found", listingID)
	}
	return nil
}

// Delete removes the listing permanently. There is no soft-delete or
// tombstone; deleting a listing that does not exist is a no-op success.
func (s *listingService) Delete(ctx context.Context, actor auth.Session, listingID string) error {
	if err := actor.RequireAdmin(); err != nil {
		return err
	}
	result, err := s.db.Collection(listingsCollection).DeleteOne(ctx, bson.M{"_id": listingID})
	if err != nil {
		return fmt.Errorf("db error deleting listing %s: %w", listingID, err)
	}
	if result.DeletedCount == 0 {
		log.Printf("Delete of listing %s matched no documents.", listingID)
	}
	return nil
}
