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

// ErrEmailExists is returned when an attempt is made to use an email that already exists.
var ErrEmailExists = errors.New("email already in use by another account")

// ErrInvalidCredentials is returned when login email/password don't match.
var ErrInvalidCredentials = errors.New("invalid email or password")

// IProfileService defines the interface for user profile operations.
// This allows for easier mocking in tests.
type IProfileService interface {
	Register(ctx context.Context, firstName, lastName, email, phone, location, password string, role models.Role) (*models.Profile, error)
	Authenticate(ctx context.Context, email, password string) (*models.Profile, error)
	FindByID(ctx context.Context, userID string) (*models.Profile, error)
	FindByEmail(ctx context.Context, email string) (*models.Profile, error)
	FindRecent(ctx context.Context, limit int) ([]models.Profile, error)
	Search(ctx context.Context, query string, limit int) ([]models.Profile, error)
	CountAll(ctx context.Context) (int64, error)

	// Admin moderation. Every call is gated on the actor session.
	Suspend(ctx context.Context, actor auth.Session, userID string) error
	Activate(ctx context.Context, actor auth.Session, userID string) error
	GrantPremium(ctx context.Context, actor auth.Session, userID string) error
	RevokePremium(ctx context.Context, actor auth.Session, userID string) error
	SetRole(ctx context.Context, actor auth.Session, userID string, role models.Role) error
	Delete(ctx context.Context, actor auth.Session, userID string) error

	// ExpireLapsedPremiums revokes premium from accounts whose expiry has
	// passed. Called by the background sweep task.
	ExpireLapsedPremiums(ctx context.Context) (int64, error)
}

const profilesCollection = "profiles"

// profileService implements IProfileService.
type profileService struct {
	db  *mongo.Database
	cfg *config.Config
}

// NewProfileService creates a new ProfileService.
func NewProfileService(db *mongo.Database, cfg *config.Config) IProfileService {
	return &profileService{db: db, cfg: cfg}
}

// Register creates a new active profile with a hashed password.
func (s *profileService) Register(ctx context.Context, firstName, lastName, email, phone, location, password string, role models.Role) (*models.Profile, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, fmt.Errorf("email is required")
	}
	if password == "" {
		return nil, fmt.Errorf("password is required")
	}
	if !models.ValidRole(role) || role == models.RoleAdmin {
		// Admin accounts are promoted via SetRole, never self-registered.
		role = models.RoleBuyer
	}

	collection := s.db.Collection(profilesCollection)

	count, err := collection.CountDocuments(ctx, bson.M{"email": email})
	if err != nil {
		return nil, fmt.Errorf("error checking email uniqueness for %s: %w", email, err)
	}
	if count > 0 {
		return nil, ErrEmailExists
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	var newProfile *models.Profile

	operation := func() error {
		newProfile = &models.Profile{
			ID:            uuid.NewString(), // ID generated on each attempt
			FirstName:     firstName,
			LastName:      lastName,
			Email:         email,
			Phone:         phone,
			Location:      location,
			Role:          role,
			Status:        models.StatusActive,
			PremiumStatus: false,
			PasswordHash:  hash,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		_, insertErr := collection.InsertOne(ctx, newProfile)
		return insertErr
	}

	err = db.Try(operation)

	if err != nil {
		if mongo.IsDuplicateKeyError(err) && strings.Contains(err.Error(), "email_1") {
			return nil, ErrEmailExists
		}
		return nil, fmt.Errorf("error inserting new profile for %s after multiple retries: %w", email, err)
	}

	return newProfile, nil
}

// Authenticate verifies email/password and returns the profile on success.
// Suspended accounts can still authenticate; the API layer decides what a
// suspended session may do.
func (s *profileService) Authenticate(ctx context.Context, email, password string) (*models.Profile, error) {
	profile, err := s.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !auth.CheckPasswordHash(password, profile.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	return profile, nil
}

// FindByID finds a profile by its ID.
// Returns mongo.ErrNoDocuments if not found.
func (s *profileService) FindByID(ctx context.Context, userID string) (*models.Profile, error) {
	var profile models.Profile
	collection := s.db.Collection(profilesCollection)

	err := collection.FindOne(ctx, bson.M{"_id": userID}).Decode(&profile)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, mongo.ErrNoDocuments
		}
		return nil, fmt.Errorf("error finding profile by ID %s: %w", userID, err)
	}
	return &profile, nil
}

// FindByEmail finds a profile by email address.
func (s *profileService) FindByEmail(ctx context.Context, email string) (*models.Profile, error) {
	var profile models.Profile
	collection := s.db.Collection(profilesCollection)
	filter := bson.M{"email": strings.ToLower(strings.TrimSpace(email))}

	err := collection.FindOne(ctx, filter).Decode(&profile)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, mongo.ErrNoDocuments
		}
		return nil, fmt.Errorf("error finding profile by email %s: %w", email, err)
	}
	return &profile, nil
}

// FindRecent returns the most recently created profiles, newest first.
// Each call re-issues the query; no cursor state is kept.
func (s *profileService) FindRecent(ctx context.Context, limit int) ([]models.Profile, error) {
	if limit <= 0 {
		limit = s.cfg.RecentFetchLimit
	}
	collection := s.db.Collection(profilesCollection)
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}).SetLimit(int64(limit))

	cursor, err := collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent profiles: %w", err)
	}
	defer cursor.Close(ctx)

	var profiles []models.Profile
	if err = cursor.All(ctx, &profiles); err != nil {
		return nil, fmt.Errorf("failed to decode recent profiles: %w", err)
	}
	return profiles, nil
}

// Search matches profiles by name, email or location substring.
func (s *profileService) Search(ctx context.Context, query string, limit int) ([]models.Profile, error) {
	if limit <= 0 {
		limit = s.cfg.RecentFetchLimit
	}
	collection := s.db.Collection(profilesCollection)

	filter := bson.M{}
	if q := strings.TrimSpace(query); q != "" {
		regex := bson.M{"$regex": q, "$options": "i"}
		filter["$or"] = bson.A{
			bson.M{"first_name": regex},
			bson.M{"last_name": regex},
			bson.M{"email": regex},
			bson.M{"location": regex},
		}
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}).SetLimit(int64(limit))
	cursor, err := collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to search profiles: %w", err)
	}
	defer cursor.Close(ctx)

	var profiles []models.Profile
	if err = cursor.All(ctx, &profiles); err != nil {
		return nil, fmt.Errorf("failed to decode profile search results: %w", err)
	}
	return profiles, nil
}

// CountAll returns the total number of profiles.
func (s *profileService) CountAll(ctx context.Context) (int64, error) {
	count, err := s.db.Collection(profilesCollection).CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count profiles: %w", err)
	}
	return count, nil
}

// setStatus flips the account status. Re-applying the current status is a
// no-op that still round-trips to storage.
func (s *profileService) setStatus(ctx context.Context, actor auth.Session, userID string, status models.ProfileStatus) error {
	if err := actor.RequireAdmin(); err != nil {
		return err
	}
	collection := s.db.Collection(profilesCollection)
	update := bson.M{"$set": bson.M{
		"status":     status,
		"updated_at": time.Now().UTC(),
	}}

	result, err := collection.UpdateOne(ctx, bson.M{"_id": userID}, update)
	if err != nil {
		return fmt.Errorf("db error setting status %s on profile %s: %w", status, userID, err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("profile %s not found", userID)
	}
	return nil
}

// Suspend marks the account suspended.
func (s *profileService) Suspend(ctx context.Context, actor auth.Session, userID string) error {
	return s.setStatus(ctx, actor, userID, models.StatusSuspended)
}

// Activate marks the account active.
func (s *profileService) Activate(ctx context.Context, actor auth.Session, userID string) error {
	return s.setStatus(ctx, actor, userID, models.StatusActive)
}

// GrantPremium sets premium_status and a fixed expiry of now plus the
// configured premium period. Both fields are written in one update so the
// "expiry set iff premium" invariant can't be observed half-applied.
func (s *profileService) GrantPremium(ctx context.Context, actor auth.Session, userID string) error {
	if err := actor.RequireAdmin(); err != nil {
		return err
	}
	days := s.cfg.PremiumDays
	if days <= 0 {
		days = 30
	}
	now := time.Now().UTC()
	expiresAt := now.Add(time.Duration(days) * 24 * time.Hour)

	collection := s.db.Collection(profilesCollection)
	update := bson.M{"$set": bson.M{
		"premium_status":     true,
		"premium_expires_at": expiresAt,
		"updated_at":         now,
	}}

	result, err := collection.UpdateOne(ctx, bson.M{"_id": userID}, update)
	if err != nil {
		return fmt.Errorf("db error granting premium to profile %s: %w", userID, err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("profile %s not found", userID)
	}
	return nil
}

// RevokePremium clears premium_status and premium_expires_at together.
func (s *profileService) RevokePremium(ctx context.Context, actor auth.Session, userID string) error {
	if err := actor.RequireAdmin(); err != nil {
		return err
	}
	collection := s.db.Collection(profilesCollection)
	update := bson.M{
		"$set": bson.M{
			"premium_status": false,
			"updated_at":     time.Now().UTC(),
		},
		"$unset": bson.M{"premium_expires_at": ""},
	}

	result, err := collection.UpdateOne(ctx, bson.M{"_id": userID}, update)
	if err != nil {
		return fmt.Errorf("db error revoking premium from profile %s: %w", userID, err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("profile %s not found", userID)
	}
	return nil
}

// SetRole overwrites the account role. No audit trail is kept.
func (s *profileService) SetRole(ctx context.Context, actor auth.Session, userID string, role models.Role) error {
	if err := actor.RequireAdmin(); err != nil {
		return err
	}
	if !models.ValidRole(role) {
		return fmt.Errorf("unknown role %q", role)
	}
	collection := s.db.Collection(profilesCollection)
	update := bson.M{"$set": bson.M{
		"role":       role,
		"updated_at": time.Now().UTC(),
	}}

	result, err := collection.UpdateOne(ctx, bson.M{"_id": userID}, update)
	if err != nil {
		return fmt.Errorf("db error setting role %s on profile %s: %w", role, userID, err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("profile %s not found", userID)
	}
	return nil
}

// Delete removes the profile permanently. Referential cleanup of the user's
// listings, orders and messages is left to the store.
func (s *profileService) Delete(ctx context.Context, actor auth.Session, userID string) error {
	if err := actor.RequireAdmin(); err != nil {
		return err
	}
	result, err := s.db.Collection(profilesCollection).DeleteOne(ctx, bson.M{"_id": userID})
	if err != nil {
		return fmt.Errorf("db error deleting profile %s: %w", userID, err)
	}
	if result.DeletedCount == 0 {
		// Deleting an already-gone profile is a no-op success.
		log.Printf("Delete of profile %s matched no documents.", userID)
	}
	return nil
}

// ExpireLapsedPremiums clears premium from every account whose expiry is in
// the past. Returns the number of accounts downgraded.
func (s *profileService) ExpireLapsedPremiums(ctx context.Context) (int64, error) {
	collection := s.db.Collection(profilesCollection)
	now := time.Now().UTC()
	filter := bson.M{
		"premium_status":     true,
		"premium_expires_at": bson.M{"$lt": now},
	}
	update := bson.M{
		"$set": bson.M{
			"premium_status": false,
			"updated_at":     now,
		},
		"$unset": bson.M{"premium_expires_at": ""},
	}

	result, err := collection.UpdateMany(ctx, filter, update)
	if err != nil {
		return 0, fmt.Errorf("db error expiring lapsed premiums: %w", err)
	}
	return result.ModifiedCount, nil
}
