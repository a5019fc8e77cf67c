package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"chapamarket/backend/internal/config"
	"chapamarket/backend/internal/db"
	"chapamarket/backend/internal/models"
)

// IMessageService defines the interface for buyer-seller messaging.
// A conversation is the derived (listing, peer) tuple; nothing is stored
// beyond the individual messages.
type IMessageService interface {
	Send(ctx context.Context, senderID, receiverID, listingID, content string) (*models.Message, error)
	FindRecent(ctx context.Context, limit int) ([]models.Message, error)
	CountAll(ctx context.Context) (int64, error)
	ConversationThread(ctx context.Context, userID, peerID, listingID string) ([]models.Message, error)
	ConversationsForUser(ctx context.Context, userID string) ([]models.Conversation, error)
}

const messagesCollection = "messages"

// messageService implements IMessageService.
type messageService struct {
	db  *mongo.Database
	cfg *config.Config
}

// NewMessageService creates a new MessageService.
func NewMessageService(db *mongo.Database, cfg *config.Config) IMessageService {
	return &messageService{db: db, cfg: cfg}
}

// Send stores a message addressed to a peer in the context of a listing.
func (s *messageService) Send(ctx context.Context, senderID, receiverID, listingID, content string) (*models.Message, error) {
	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("message content is required")
	}
	if senderID == receiverID {
		return nil, fmt.Errorf("cannot message yourself")
	}

	collection := s.db.Collection(messagesCollection)
	now := time.Now().UTC()

	var newMessage *models.Message

	operation := func() error {
		newMessage = &models.Message{
			ID:         uuid.NewString(),
			SenderID:   senderID,
			ReceiverID: receiverID,
			ListingID:  listingID,
			Content:    content,
			CreatedAt:  now,
		}
		_, insertErr := collection.InsertOne(ctx, newMessage)
		return insertErr
	}

	err := db.Try(operation)

	if err != nil {
		return nil, fmt.Errorf("failed to insert message from %s after multiple retries: %w", senderID, err)
	}

	return newMessage, nil
}

// FindRecent returns the most recent messages across all conversations,
// newest first. Used by the admin dashboard.
func (s *messageService) FindRecent(ctx context.Context, limit int) ([]models.Message, error) {
	if limit <= 0 {
		limit = s.cfg.RecentFetchLimit
	}
	collection := s.db.Collection(messagesCollection)
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}).SetLimit(int64(limit))

	cursor, err := collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent messages: %w", err)
	}
	defer cursor.Close(ctx)

	var messages []models.Message
	if err = cursor.All(ctx, &messages); err != nil {
		return nil, fmt.Errorf("failed to decode recent messages: %w", err)
	}
	return messages, nil
}

// CountAll returns the total number of messages.
func (s *messageService) CountAll(ctx context.Context) (int64, error) {
	count, err := s.db.Collection(messagesCollection).CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count messages: %w", err)
	}
	return count, nil
}

// ConversationThread returns all messages between userID and peerID scoped
// to one listing, oldest first.
func (s *messageService) ConversationThread(ctx context.Context, userID, peerID, listingID string) ([]models.Message, error) {
	collection := s.db.Collection(messagesCollection)
	filter := bson.M{
		"listing_id": listingID,
		"$or": bson.A{
			bson.M{"sender_id": userID, "receiver_id": peerID},
			bson.M{"sender_id": peerID, "receiver_id": userID},
		},
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})

	cursor, err := collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query conversation thread: %w", err)
	}
	defer cursor.Close(ctx)

	var messages []models.Message
	if err = cursor.All(ctx, &messages); err != nil {
		return nil, fmt.Errorf("failed to decode conversation thread: %w", err)
	}
	return messages, nil
}

// ConversationsForUser folds the user's messages into conversations keyed by
// (listing, peer), most recently active first.
func (s *messageService) ConversationsForUser(ctx context.Context, userID string) ([]models.Conversation, error) {
	collection := s.db.Collection(messagesCollection)
	filter := bson.M{"$or": bson.A{
		bson.M{"sender_id": userID},
		bson.M{"receiver_id": userID},
	}}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})

	cursor, err := collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query messages for user %s: %w", userID, err)
	}
	defer cursor.Close(ctx)

	var messages []models.Message
	if err = cursor.All(ctx, &messages); err != nil {
		return nil, fmt.Errorf("failed to decode messages for user %s: %w", userID, err)
	}

	return FoldConversations(messages, userID), nil
}

// FoldConversations groups messages into conversations keyed by
// (listing, peer) from the point of view of userID. Messages must be sorted
// newest first; the first message seen per key supplies the preview.
func FoldConversations(messages []models.Message, userID string) []models.Conversation {
	type key struct {
		listingID string
		peerID    string
	}
	byKey := make(map[key]*models.Conversation)
	var order []key

	for _, m := range messages {
		peer := m.SenderID
		if m.SenderID == userID {
			peer = m.ReceiverID
		}
		k := key{listingID: m.ListingID, peerID: peer}
		conv, ok := byKey[k]
		if !ok {
			conv = &models.Conversation{
				ListingID:     m.ListingID,
				PeerID:        peer,
				LastMessage:   m.Content,
				LastMessageAt: m.CreatedAt,
			}
			byKey[k] = conv
			order = append(order, k)
		}
		conv.MessageCount++
	}

	conversations := make([]models.Conversation, 0, len(order))
	for _, k := range order {
		conversations = append(conversations, *byKey[k])
	}
	// Callers may pass unsorted data; the contract is newest first.
	sort.SliceStable(conversations, func(i, j int) bool {
		return conversations[i].LastMessageAt.After(conversations[j].LastMessageAt)
	})
	return conversations
}
