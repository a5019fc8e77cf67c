package models

import (
	"time"
)

// StoryStatus is the publication state of a story.
type StoryStatus string

const (
	StoryStatusDraft     StoryStatus = "draft"
	StoryStatusPublished StoryStatus = "published"
)

// Story is an editorial/marketing article shown on the home page.
type Story struct {
	ID          string      `bson:"_id" json:"id"`
	Title       string      `bson:"title" json:"title"`
	Content     string      `bson:"content" json:"content"`
	AuthorName  string      `bson:"author_name" json:"author_name"`
	AuthorID    string      `bson:"author_id,omitempty" json:"author_id,omitempty"`
	AuthorImage string      `bson:"author_image,omitempty" json:"author_image,omitempty"` // S3 key
	Featured    bool        `bson:"featured" json:"featured"`
	Status      StoryStatus `bson:"status" json:"status"`
	CreatedAt   time.Time   `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time   `bson:"updated_at" json:"updated_at"`
}
