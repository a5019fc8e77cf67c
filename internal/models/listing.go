package models

import (
	"fmt"
	"strings"
	"time"
)

// Livestock categories recognized by the marketplace. Category is stored as a
// plain string so new categories can be introduced without a migration.
const (
	CategoryCattle  = "cattle"
	CategoryGoats   = "goats"
	CategorySheep   = "sheep"
	CategoryPoultry = "poultry"
	CategoryPigs    = "pigs"
	CategoryOther   = "other"
)

// Listing represents a livestock listing put up by a seller.
// Verified and Featured are independent flags: a listing becomes visible to
// buyers once verified, and featured placement is a separate admin decision.
type Listing struct {
	ID          string    `bson:"_id" json:"id"`
	SellerID    string    `bson:"seller_id" json:"seller_id"`
	Name        string    `bson:"name" json:"name"`
	Category    string    `bson:"category" json:"category"`
	Breed       string    `bson:"breed,omitempty" json:"breed,omitempty"`
	Age         string    `bson:"age,omitempty" json:"age,omitempty"`
	Gender      string    `bson:"gender,omitempty" json:"gender,omitempty"`
	Price       Price     `bson:"price" json:"price"`
	Location    string    `bson:"location,omitempty" json:"location,omitempty"`
	Description string    `bson:"description,omitempty" json:"description,omitempty"`
	ImageKey    string    `bson:"image_key,omitempty" json:"image_key,omitempty"` // S3 key
	Verified    bool      `bson:"verified" json:"verified"`
	Featured    bool      `bson:"featured" json:"featured"`
	CreatedAt   time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time `bson:"updated_at" json:"updated_at"`
}

// NewListingInput carries the fields a seller submits when creating a listing.
// Price arrives as a string (either a plain decimal or the legacy
// "TSH 2,800,000" display form) and is normalized here, at the boundary.
type NewListingInput struct {
	Name        string `json:"name"`
	Category    string `json:"category"`
	Breed       string `json:"breed"`
	Age         string `json:"age"`
	Gender      string `json:"gender"`
	Price       string `json:"price"`
	Location    string `json:"location"`
	Description string `json:"description"`
}

// Validate checks required fields and normalizes the price.
func (in *NewListingInput) Validate(defaultCurrency string) (Price, error) {
	if strings.TrimSpace(in.Name) == "" {
		return Price{}, fmt.Errorf("listing name is required")
	}
	if strings.TrimSpace(in.Category) == "" {
		return Price{}, fmt.Errorf("listing category is required")
	}
	price, err := ParsePrice(in.Price, defaultCurrency)
	if err != nil {
		return Price{}, fmt.Errorf("invalid listing price: %w", err)
	}
	return price, nil
}
