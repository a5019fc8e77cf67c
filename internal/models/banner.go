package models

import (
	"time"
)

// Banner is a homepage hero banner. At most one banner is active at a time;
// the banner service enforces this with a single set-based update.
type Banner struct {
	ID          string    `bson:"_id" json:"id"`
	Title       string    `bson:"title" json:"title"`
	Description string    `bson:"description,omitempty" json:"description,omitempty"`
	ImageKey    string    `bson:"image_key,omitempty" json:"image_key,omitempty"` // S3 key
	IsActive    bool      `bson:"is_active" json:"is_active"`
	CreatedAt   time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time `bson:"updated_at" json:"updated_at"`
}
