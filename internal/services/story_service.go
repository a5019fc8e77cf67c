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

// IStoryService defines the interface for homepage story operations.
type IStoryService interface {
	Create(ctx context.Context, actor auth.Session, title, content, authorName, authorImage string) (*models.Story, error)
	Update(ctx context.Context, actor auth.Session, storyID string, updates map[string]interface{}) (*models.Story, error)
	FindByID(ctx context.Context, storyID string) (*models.Story, error)
	FindPublished(ctx context.Context, limit int) ([]models.Story, error)
	FindRecent(ctx context.Context, limit int) ([]models.Story, error)
	Publish(ctx context.Context, actor auth.Session, storyID string) error
	ToggleFeatured(ctx context.Context, actor auth.Session, storyID string) error
	Delete(ctx context.Context, actor auth.Session, storyID string) error
}

const storiesCollection = "stories"

// storyService implements IStoryService.
type storyService struct {
	db  *mongo.Database
	cfg *config.Config
}

// NewStoryService creates a new StoryService.
func NewStoryService(db *mongo.Database, cfg *config.Config) IStoryService {
	return &storyService{db: db, cfg: cfg}
}

// Create inserts a new draft story.
func (s *storyService) Create(ctx context.Context, actor auth.Session, title, content, authorName, authorImage string) (*models.Story, error) {
	if err := actor.RequireAdmin(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(title) == "" {
		return nil, fmt.Errorf("story title is required")
	}

	collection := s.db.Collection(storiesCollection)
	now := time.Now().UTC()

	var newStory *models.Story

	operation := func() error {
		newStory = &models.Story{
			ID:          uuid.NewString(),
			Title:       title,
			Content:     content,
			AuthorName:  authorName,
			AuthorID:    actor.UserID,
			AuthorImage: authorImage,
			Featured:    false,
			Status:      models.StoryStatusDraft,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		_, insertErr := collection.InsertOne(ctx, newStory)
		return insertErr
	}

	err := db.Try(operation)

	if err != nil {
		return nil, fmt.Errorf("failed to insert new story after multiple retries: %w", err)
	}

	return newStory, nil
}

// Update modifies mutable story fields. Only title, content, author fields
// and status can change this way; featured has its own toggle.
func (s *storyService) Update(ctx context.Context, actor auth.Session, storyID string, updates map[string]interface{}) (*models.Story, error) {
	if err := actor.RequireAdmin(); err != nil {
		return nil, err
	}

	allowedUpdates := bson.M{}
	for key, value := range updates {
		switch key {
		case "title", "content", "author_name", "author_image", "status":
			allowedUpdates[key] = value
		default:
			return nil, fmt.Errorf("field '%s' cannot be updated via Update", key)
		}
	}
	if len(allowedUpdates) == 0 {
		return nil, fmt.Errorf("no valid fields provided for update")
	}
	allowedUpdates["updated_at"] = time.Now().UTC()

	collection := s.db.Collection(storiesCollection)
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var updatedStory models.Story
	err := collection.FindOneAndUpdate(ctx, bson.M{"_id": storyID}, bson.M{"$set": allowedUpdates}, opts).Decode(&updatedStory)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("story %s not found", storyID)
		}
		return nil, fmt.Errorf("failed to update story %s: %w", storyID, err)
	}

	return &updatedStory, nil
}

// FindByID finds a story by its ID.
func (s *storyService) FindByID(ctx context.Context, storyID string) (*models.Story, error) {
	var story models.Story
	err := s.db.Collection(storiesCollection).FindOne(ctx, bson.M{"_id": storyID}).Decode(&story)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, mongo.ErrNoDocuments
		}
		return nil, fmt.Errorf("error finding story by ID %s: %w", storyID, err)
	}
	return &story, nil
}

// FindPublished returns published stories, newest first, featured stories
// ahead of the rest.
func (s *storyService) FindPublished(ctx context.Context, limit int) ([]models.Story, error) {
	return s.find(ctx, bson.M{"status": models.StoryStatusPublished}, limit,
		bson.D{{Key: "featured", Value: -1}, {Key: "created_at", Value: -1}})
}

// FindRecent returns the most recent stories in any status, newest first.
func (s *storyService) FindRecent(ctx context.Context, limit int) ([]models.Story, error) {
	return s.find(ctx, bson.M{}, limit, bson.D{{Key: "created_at", Value: -1}})
}

func (s *storyService) find(ctx context.Context, filter bson.M, limit int, sortOrder bson.D) ([]models.Story, error) {
	if limit <= 0 {
		limit = s.cfg.RecentFetchLimit
	}
	collection := s.db.Collection(storiesCollection)
	opts := options.Find().SetSort(sortOrder).SetLimit(int64(limit))

	cursor, err := collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query stories: %w", err)
	}
	defer cursor.Close(ctx)

	var stories []models.Story
	if err = cursor.All(ctx, &stories); err != nil {
		return nil, fmt.Errorf("failed to decode stories: %w", err)
	}
	return stories, nil
}

// Publish sets the story status to published.
func (s *storyService) Publish(ctx context.Context, actor auth.Session, storyID string) error {
	if err := actor.RequireAdmin(); err != nil {
		return err
	}
	collection := s.db.Collection(storiesCollection)
	update := bson.M{"$set": bson.M{
		"status":     models.StoryStatusPublished,
		"updated_at": time.Now().UTC(),
	}}

	result, err := collection.UpdateOne(ctx, bson.M{"_id": storyID}, update)
	if err != nil {
		return fmt.Errorf("db error publishing story %s: %w", storyID, err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("story %s not found", storyID)
	}
	return nil
}

// ToggleFeatured flips the featured flag in a single pipeline update.
func (s *storyService) ToggleFeatured(ctx context.Context, actor auth.Session, storyID string) error {
	if err := actor.RequireAdmin(); err != nil {
		return err
	}
	collection := s.db.Collection(storiesCollection)
	pipeline := mongo.Pipeline{
		{{Key: "$set", Value: bson.M{
			"featured":   bson.M{"$not": "$featured"},
			"updated_at": time.Now().UTC(),
		}}},
	}

	result, err := collection.UpdateOne(ctx, bson.M{"_id": storyID}, pipeline)
	if err != nil {
		return fmt.Errorf("db error toggling featured on story %s: %w", storyID, err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("story %s not found", storyID)
	}
	return nil
}

// Delete removes the story permanently; deleting a missing story is a no-op.
func (s *storyService) Delete(ctx context.Context, actor auth.Session, storyID string) error {
	if err := actor.RequireAdmin(); err != nil {
		return err
	}
	result, err := s.db.Collection(storiesCollection).DeleteOne(ctx, bson.M{"_id": storyID})
	if err != nil {
		return fmt.Errorf("db error deleting story %s: %w", storyID, err)
	}
	if result.DeletedCount == 0 {
		log.Printf("Delete of story %s matched no documents.", storyID)
	}
	return nil
}
