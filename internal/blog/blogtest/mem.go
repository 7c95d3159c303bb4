// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Inkwell Contributors

// Package blogtest provides an in-memory fake for blog.PostRepository.
package blogtest

import (
	"context"
	"sort"
	"sync"

	"github.com/inkwell/inkwell/internal/blog"
)

// MemPostRepository is an in-memory blog.PostRepository. Errors can be
// injected per method to exercise failure paths.
type MemPostRepository struct {
	mu     sync.Mutex
	nextID int64
	byID   map[int64]*blog.Post

	CreateErr     error
	GetByIDErr    error
	UpdateErr     error
	DeleteErr     error
	ListRecentErr error
}

var _ blog.PostRepository = (*MemPostRepository)(nil)

func NewMemPostRepository() *MemPostRepository {
	return &MemPostRepository{
		nextID: 1,
		byID:   make(map[int64]*blog.Post),
	}
}

// Seed inserts a post directly and returns it with its assigned ID.
func (r *MemPostRepository) Seed(post blog.Post) *blog.Post {
	r.mu.Lock()
	defer r.mu.Unlock()

	post.ID = r.nextID
	r.nextID++
	r.byID[post.ID] = &post
	return &post
}

func (r *MemPostRepository) Create(_ context.Context, post *blog.Post) error {
	if r.CreateErr != nil {
		return r.CreateErr
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	post.ID = r.nextID
	r.nextID++

	stored := *post
	r.byID[post.ID] = &stored
	return nil
}

func (r *MemPostRepository) GetByID(_ context.Context, id int64) (*blog.Post, error) {
	if r.GetByIDErr != nil {
		return nil, r.GetByIDErr
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	post, ok := r.byID[id]
	if !ok {
		return nil, blog.ErrNotFound
	}
	copied := *post
	return &copied, nil
}

func (r *MemPostRepository) Update(_ context.Context, post *blog.Post) error {
	if r.UpdateErr != nil {
		return r.UpdateErr
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.byID[post.ID]
	if !ok {
		return blog.ErrNotFound
	}
	existing.Title = post.Title
	existing.Body = post.Body
	return nil
}

func (r *MemPostRepository) Delete(_ context.Context, id int64) error {
	if r.DeleteErr != nil {
		return r.DeleteErr
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[id]; !ok {
		return blog.ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *MemPostRepository) ListRecent(_ context.Context, limit int) ([]blog.Post, error) {
	if r.ListRecentErr != nil {
		return nil, r.ListRecentErr
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	posts := make([]blog.Post, 0, len(r.byID))
	for _, post := range r.byID {
		posts = append(posts, *post)
	}
	sort.Slice(posts, func(i, j int) bool {
		if posts[i].CreatedAt.Equal(posts[j].CreatedAt) {
			return posts[i].ID > posts[j].ID
		}
		return posts[i].CreatedAt.After(posts[j].CreatedAt)
	})
	if len(posts) > limit {
		posts = posts[:limit]
	}
	return posts, nil
}
