package models

import (
	"time"

	"github.com/google/uuid"
)

// Post lifecycle statuses. Only published posts are visible to readers
// other than the owner.
const (
	PostStatusDraft     = "draft"
	PostStatusPublished = "published"
)

// Post is an authored content unit. Slug is the public lookup key and is
// unique among published posts when present.
type Post struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Excerpt   *string   `json:"excerpt,omitempty"`
	AuthorID  uuid.UUID `json:"author_id"`
	IsPremium bool      `json:"is_premium"`
	Status    string    `json:"status"`
	Slug      *string   `json:"slug,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PostWithAuthor is a post joined with the display fields of its author,
// the shape the public read endpoints return.
type PostWithAuthor struct {
	Post
	AuthorName  string `json:"author_name"`
	AuthorEmail string `json:"author_email"`
}

// CreatePostRequest is the JSON body for creating a post.
type CreatePostRequest struct {
	Title     string `json:"title" validate:"required"`
	Content   string `json:"content" validate:"required"`
	Excerpt   string `json:"excerpt"`
	IsPremium bool   `json:"is_premium"`
	Status    string `json:"status" validate:"required,oneof=draft published"`
}

// UpdatePostRequest is the JSON body for updating a post.
type UpdatePostRequest struct {
	Title     string `json:"title" validate:"required"`
	Content   string `json:"content" validate:"required"`
	Excerpt   string `json:"excerpt"`
	IsPremium bool   `json:"is_premium"`
	Status    string `json:"status" validate:"required,oneof=draft published"`
}
