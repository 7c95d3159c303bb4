// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Inkwell Contributors

// Package blog provides blog post management: creation, retrieval, listing,
// and owner-guarded mutation.
package blog

import (
	"context"
	"time"
)

// Post is a published blog entry. AuthorName is denormalized from the owning
// account at creation time so listings don't need a join.
type Post struct {
	ID         int64
	Title      string
	Body       string
	AuthorID   int64
	AuthorName string
	CreatedAt  time.Time
}

// PostRepository provides post persistence.
type PostRepository interface {
	// Create stores a new post and fills in its assigned ID.
	Create(ctx context.Context, post *Post) error

	// GetByID retrieves a post by ID.
	// Returns ErrNotFound if no post exists.
	GetByID(ctx context.Context, id int64) (*Post, error)

	// Update replaces a post's title and body.
	// Returns ErrNotFound if no post exists.
	Update(ctx context.Context, post *Post) error

	// Delete removes a post.
	// Returns ErrNotFound if no post exists.
	Delete(ctx context.Context, id int64) error

	// ListRecent returns at most limit posts, newest first.
	ListRecent(ctx context.Context, limit int) ([]Post, error)
}
