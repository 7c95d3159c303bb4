// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Inkwell Contributors

// Package postgres implements the blog repository using PostgreSQL.
package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/samber/oops"

	"github.com/inkwell/inkwell/internal/blog"
)

// poolIface abstracts the pgx pool operations the repository needs, so that
// tests can substitute pgxmock.PgxPoolIface.
type poolIface interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostRepository implements blog.PostRepository using PostgreSQL.
type PostRepository struct {
	pool poolIface
}

// NewPostRepository creates a new PostRepository.
func NewPostRepository(pool poolIface) *PostRepository {
	return &PostRepository{pool: pool}
}

// Create stores a new post and fills in its assigned ID.
func (r *PostRepository) Create(ctx context.Context, post *blog.Post) error {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO posts (title, body, author_id, author_name, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`,
		post.Title,
		post.Body,
		post.AuthorID,
		post.AuthorName,
		post.CreatedAt,
	).Scan(&post.ID)
	if err != nil {
		return oops.Code("POST_CREATE_FAILED").
			With("operation", "insert post").
			With("author_id", post.AuthorID).
			Wrap(err)
	}
	return nil
}

// GetByID retrieves a post by ID.
func (r *PostRepository) GetByID(ctx context.Context, id int64) (*blog.Post, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, title, body, author_id, author_name, created_at
		FROM posts
		WHERE id = $1
	`, id)

	var post blog.Post
	err := row.Scan(&post.ID, &post.Title, &post.Body, &post.AuthorID, &post.AuthorName, &post.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("POST_NOT_FOUND").
			With("id", id).
			Wrap(blog.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("POST_GET_FAILED").
			With("operation", "get post by id").
			With("id", id).
			Wrap(err)
	}
	return &post, nil
}

// Update replaces a post's title and body.
func (r *PostRepository) Update(ctx context.Context, post *blog.Post) error {
	result, err := r.pool.Exec(ctx, `
		UPDATE posts SET title = $2, body = $3
		WHERE id = $1
	`, post.ID, post.Title, post.Body)
	if err != nil {
		return oops.Code("POST_UPDATE_FAILED").
			With("operation", "update post").
			With("id", post.ID).
			Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("POST_NOT_FOUND").
			With("id", post.ID).
			Wrap(blog.ErrNotFound)
	}
	return nil
}

// Delete removes a post.
func (r *PostRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.pool.Exec(ctx, `
		DELETE FROM posts WHERE id = $1
	`, id)
	if err != nil {
		return oops.Code("POST_DELETE_FAILED").
			With("operation", "delete post").
			With("id", id).
			Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("POST_NOT_FOUND").
			With("id", id).
			Wrap(blog.ErrNotFound)
	}
	return nil
}

// ListRecent returns at most limit posts, newest first.
func (r *PostRepository) ListRecent(ctx context.Context, limit int) ([]blog.Post, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, title, body, author_id, author_name, created_at
		FROM posts
		ORDER BY created_at DESC, id DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, oops.Code("POST_LIST_FAILED").
			With("operation", "list recent posts").
			With("limit", limit).
			Wrap(err)
	}
	defer rows.Close()

	var posts []blog.Post
	for rows.Next() {
		var post blog.Post
		if err := rows.Scan(&post.ID, &post.Title, &post.Body, &post.AuthorID, &post.AuthorName, &post.CreatedAt); err != nil {
			return nil, oops.Code("POST_SCAN_FAILED").
				With("operation", "scan post row").
				Wrap(err)
		}
		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.Code("POST_LIST_FAILED").
			With("operation", "iterate posts").
			Wrap(err)
	}
	return posts, nil
}

// Compile-time interface check.
var _ blog.PostRepository = (*PostRepository)(nil)
