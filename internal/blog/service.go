// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Inkwell Contributors

package blog

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/samber/oops"

	"github.com/inkwell/inkwell/internal/auth"
)

// DefaultListLimit is the number of posts returned when a listing request
// does not specify a limit.
const DefaultListLimit = 4

// PostService provides post operations with ownership enforcement.
// Mutations require the acting principal to be the post's author.
type PostService struct {
	posts PostRepository
}

// NewPostService creates a new PostService.
func NewPostService(posts PostRepository) (*PostService, error) {
	if posts == nil {
		return nil, oops.Errorf("post repository is required")
	}
	return &PostService{posts: posts}, nil
}

// Create publishes a new post owned by the author. The author's ID and name
// are stamped server-side; client-supplied values are never trusted.
func (s *PostService) Create(ctx context.Context, author *auth.Account, title, body string) (*Post, error) {
	if author == nil {
		return nil, oops.Code("AUTH_UNAUTHORIZED").Errorf("authentication required")
	}
	if err := validatePost(title, body); err != nil {
		return nil, err
	}

	post := &Post{
		Title:      title,
		Body:       body,
		AuthorID:   author.ID,
		AuthorName: author.Name,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.posts.Create(ctx, post); err != nil {
		return nil, oops.Code("POST_CREATE_FAILED").
			With("operation", "insert post").
			With("author_id", author.ID).
			Wrap(err)
	}
	return post, nil
}

// Get retrieves a post by ID.
func (s *PostService) Get(ctx context.Context, id int64) (*Post, error) {
	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, oops.Code("POST_NOT_FOUND").
				With("id", id).
				Errorf("no blog with that id")
		}
		return nil, oops.Code("POST_GET_FAILED").
			With("operation", "get post by id").
			With("id", id).
			Wrap(err)
	}
	return post, nil
}

// ListRecent returns the newest posts. A non-positive limit selects
// DefaultListLimit.
func (s *PostService) ListRecent(ctx context.Context, limit int) ([]Post, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	posts, err := s.posts.ListRecent(ctx, limit)
	if err != nil {
		return nil, oops.Code("POST_LIST_FAILED").
			With("operation", "list recent posts").
			With("limit", limit).
			Wrap(err)
	}
	return posts, nil
}

// Update replaces a post's title and body. Only the author may update;
// the ownership check runs after the post is fetched, so an absent post is
// reported as not found rather than forbidden.
func (s *PostService) Update(ctx context.Context, principal *auth.Account, id int64, title, body string) (*Post, error) {
	if err := validatePost(title, body); err != nil {
		return nil, err
	}

	post, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := auth.AuthorizeMutation(post.AuthorID, principal); err != nil {
		return nil, err
	}

	post.Title = title
	post.Body = body
	if err := s.posts.Update(ctx, post); err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, oops.Code("POST_NOT_FOUND").
				With("id", id).
				Errorf("no blog with that id")
		}
		return nil, oops.Code("POST_UPDATE_FAILED").
			With("operation", "update post").
			With("id", id).
			Wrap(err)
	}
	return post, nil
}

// Delete removes a post. Only the author may delete.
func (s *PostService) Delete(ctx context.Context, principal *auth.Account, id int64) error {
	post, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := auth.AuthorizeMutation(post.AuthorID, principal); err != nil {
		return err
	}

	if err := s.posts.Delete(ctx, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return oops.Code("POST_NOT_FOUND").
				With("id", id).
				Errorf("no blog with that id")
		}
		return oops.Code("POST_DELETE_FAILED").
			With("operation", "delete post").
			With("id", id).
			Wrap(err)
	}
	return nil
}

func validatePost(title, body string) error {
	if strings.TrimSpace(title) == "" {
		return oops.Code("VALIDATION_FAILED").Errorf("title cannot be empty")
	}
	if strings.TrimSpace(body) == "" {
		return oops.Code("VALIDATION_FAILED").Errorf("body cannot be empty")
	}
	return nil
}
