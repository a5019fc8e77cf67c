package models

import (
	"time"
)

// Message is a single buyer-seller message scoped to a listing.
type Message struct {
	ID         string    `bson:"_id" json:"id"`
	SenderID   string    `bson:"sender_id" json:"sender_id"`
	ReceiverID string    `bson:"receiver_id" json:"receiver_id"`
	ListingID  string    `bson:"listing_id" json:"listing_id"`
	Content    string    `bson:"content" json:"content"`
	CreatedAt  time.Time `bson:"created_at" json:"created_at"`
}

// Conversation is the derived (listing, peer) tuple a message thread hangs
// off. It is never stored; it is folded out of the messages collection on
// demand.
type Conversation struct {
	ListingID     string    `json:"listing_id"`
	PeerID        string    `json:"peer_id"`
	LastMessage   string    `json:"last_message"`
	LastMessageAt time.Time `json:"last_message_at"`
	MessageCount  int       `json:"message_count"`
}
