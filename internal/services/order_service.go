package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"chapamarket/backend/internal/config"
	"chapamarket/backend/internal/db"
	"chapamarket/backend/internal/models"
)

// IOrderService defines the interface for order operations.
type IOrderService interface {
	Create(ctx context.Context, buyerID, sellerID, listingID, totalAmount, paymentMethod string) (*models.Order, error)
	FindRecent(ctx context.Context, limit int) ([]models.Order, error)
	FindByBuyer(ctx context.Context, buyerID string) ([]models.Order, error)
	CountAll(ctx context.Context) (int64, error)
	SumRevenue(ctx context.Context) (float64, error)
}

const ordersCollection = "orders"

// orderService implements IOrderService.
type orderService struct {
	db  *mongo.Database
	cfg *config.Config
}

// NewOrderService creates a new OrderService.
func NewOrderService(db *mongo.Database, cfg *config.Config) IOrderService {
	return &orderService{db: db, cfg: cfg}
}

// Create records a new pending order.
func (s *orderService) Create(ctx context.Context, buyerID, sellerID, listingID, totalAmount, paymentMethod string) (*models.Order, error) {
	collection := s.db.Collection(ordersCollection)
	now := time.Now().UTC()

	var newOrder *models.Order

	operation := func() error {
		newOrder = &models.Order{
			ID:            uuid.NewString(),
			BuyerID:       buyerID,
			SellerID:      sellerID,
			ListingID:     listingID,
			TotalAmount:   totalAmount,
			PaymentStatus: models.PaymentStatusPending,
			OrderStatus:   models.OrderStatusPending,
			PaymentMethod: paymentMethod,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		_, insertErr := collection.InsertOne(ctx, newOrder)
		return insertErr
	}

	err := db.Try(operation)

	if err != nil {
		return nil, fmt.Errorf("failed to insert new order for buyer %s after multiple retries: %w", buyerID, err)
	}

	return newOrder, nil
}

// FindRecent returns the most recently created orders, newest first.
func (s *orderService) FindRecent(ctx context.Context, limit int) ([]models.Order, error) {
	return s.find(ctx, bson.M{}, limit)
}

// FindByBuyer returns all orders placed by a buyer, newest first.
func (s *orderService) FindByBuyer(ctx context.Context, buyerID string) ([]models.Order, error) {
	return s.find(ctx, bson.M{"buyer_id": buyerID}, 0)
}

func (s *orderService) find(ctx context.Context, filter bson.M, limit int) ([]models.Order, error) {
	if limit <= 0 {
		limit = s.cfg.RecentFetchLimit
	}
	collection := s.db.Collection(ordersCollection)
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}).SetLimit(int64(limit))

	cursor, err := collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer cursor.Close(ctx)

	var orders []models.Order
	if err = cursor.All(ctx, &orders); err != nil {
		return nil, fmt.Errorf("failed to decode orders: %w", err)
	}
	return orders, nil
}

// CountAll returns the total number of orders.
func (s *orderService) CountAll(ctx context.Context) (int64, error) {
	count, err := s.db.Collection(ordersCollection).CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count orders: %w", err)
	}
	return count, nil
}

// SumRevenue scans every order's total_amount and sums it. Malformed or
// missing amounts count as zero; a bad row never fails the sum.
func (s *orderService) SumRevenue(ctx context.Context) (float64, error) {
	collection := s.db.Collection(ordersCollection)
	opts := options.Find().SetProjection(bson.D{{Key: "total_amount", Value: 1}})

	cursor, err := collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return 0, fmt.Errorf("failed to query order amounts: %w", err)
	}
	defer cursor.Close(ctx)

	var total float64
	for cursor.Next(ctx) {
		var row struct {
			TotalAmount string `bson:"total_amount"`
		}
		if err := cursor.Decode(&row); err != nil {
			// Unreadable row counts as zero, same as a malformed amount.
			continue
		}
		total += models.ParseAmount(row.TotalAmount)
	}
	if err := cursor.Err(); err != nil {
		return 0, fmt.Errorf("error iterating order amounts: %w", err)
	}
	return total, nil
}
