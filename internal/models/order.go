package models

import (
	"time"
)

// Payment and order lifecycle values as written by the checkout flow.
const (
	PaymentStatusPending   = "pending"
	PaymentStatusConfirmed = "confirmed"
	PaymentStatusFailed    = "failed"

	OrderStatusPending   = "pending"
	OrderStatusCompleted = "completed"
	OrderStatusCancelled = "cancelled"
)

// Order represents a purchase of a listing.
// TotalAmount is kept as the decimal string the store delivers; use
// ParseAmount when aggregating so malformed rows count as zero instead of
// breaking revenue totals.
type Order struct {
	ID            string    `bson:"_id" json:"id"`
	BuyerID       string    `bson:"buyer_id" json:"buyer_id"`
	SellerID      string    `bson:"seller_id" json:"seller_id"`
	ListingID     string    `bson:"listing_id" json:"listing_id"`
	TotalAmount   string    `bson:"total_amount" json:"total_amount"`
	PaymentStatus string    `bson:"payment_status" json:"payment_status"`
	OrderStatus   string    `bson:"order_status" json:"order_status"`
	PaymentMethod string    `bson:"payment_method,omitempty" json:"payment_method,omitempty"`
	CreatedAt     time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt     time.Time `bson:"updated_at" json:"updated_at"`
}
