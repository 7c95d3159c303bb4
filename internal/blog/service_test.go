// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Inkwell Contributors

package blog_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inkwell/inkwell/internal/auth"
	"github.com/inkwell/inkwell/internal/blog"
	"github.com/inkwell/inkwell/internal/blog/blogtest"
	"github.com/inkwell/inkwell/pkg/errutil"
)

var (
	alice = &auth.Account{ID: 1, Name: "alice"}
	bob   = &auth.Account{ID: 2, Name: "bob"}
)

func newPostService(t *testing.T) (*blog.PostService, *blogtest.MemPostRepository) {
	t.Helper()
	repo := blogtest.NewMemPostRepository()
	svc, err := blog.NewPostService(repo)
	require.NoError(t, err)
	return svc, repo
}

func TestNewPostService(t *testing.T) {
	_, err := blog.NewPostService(nil)
	require.Error(t, err)
}

func TestPostService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("stamps author and timestamp", func(t *testing.T) {
		svc, _ := newPostService(t)

		before := time.Now().UTC()
		post, err := svc.Create(ctx, alice, "Hello", "First post.")
		require.NoError(t, err)

		assert.NotZero(t, post.ID)
		assert.Equal(t, alice.ID, post.AuthorID)
		assert.Equal(t, "alice", post.AuthorName)
		assert.False(t, post.CreatedAt.Before(before))
	})

	t.Run("requires a principal", func(t *testing.T) {
		svc, _ := newPostService(t)

		_, err := svc.Create(ctx, nil, "Hello", "Body")
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "AUTH_UNAUTHORIZED")
	})

	t.Run("rejects blank title or body", func(t *testing.T) {
		svc, _ := newPostService(t)

		_, err := svc.Create(ctx, alice, "  ", "Body")
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "VALIDATION_FAILED")

		_, err = svc.Create(ctx, alice, "Title", "")
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "VALIDATION_FAILED")
	})
}

func TestPostService_Get(t *testing.T) {
	ctx := context.Background()
	svc, repo := newPostService(t)
	seeded := repo.Seed(blog.Post{Title: "Hello", Body: "Body", AuthorID: 1, AuthorName: "alice"})

	post, err := svc.Get(ctx, seeded.ID)
	require.NoError(t, err)
	assert.Equal(t, "Hello", post.Title)

	_, err = svc.Get(ctx, 999)
	require.Error(t, err)
	errutil.AssertErrorCode(t, err, "POST_NOT_FOUND")
}

func TestPostService_ListRecent(t *testing.T) {
	ctx := context.Background()
	svc, repo := newPostService(t)

	base := time.Now().UTC()
	for i := 0; i < 6; i++ {
		repo.Seed(blog.Post{
			Title:     "Post",
			Body:      "Body",
			AuthorID:  1,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
	}

	t.Run("zero limit applies the default", func(t *testing.T) {
		posts, err := svc.ListRecent(ctx, 0)
		require.NoError(t, err)
		assert.Len(t, posts, blog.DefaultListLimit)
	})

	t.Run("explicit limit", func(t *testing.T) {
		posts, err := svc.ListRecent(ctx, 2)
		require.NoError(t, err)
		require.Len(t, posts, 2)
		assert.True(t, posts[0].CreatedAt.After(posts[1].CreatedAt), "newest first")
	})
}

func TestPostService_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("author may update", func(t *testing.T) {
		svc, repo := newPostService(t)
		seeded := repo.Seed(blog.Post{Title: "Old", Body: "Old body", AuthorID: alice.ID, AuthorName: "alice"})

		post, err := svc.Update(ctx, alice, seeded.ID, "New", "New body")
		require.NoError(t, err)
		assert.Equal(t, "New", post.Title)

		stored, err := svc.Get(ctx, seeded.ID)
		require.NoError(t, err)
		assert.Equal(t, "New", stored.Title)
		assert.Equal(t, "New body", stored.Body)
	})

	t.Run("non-author is forbidden and nothing changes", func(t *testing.T) {
		svc, repo := newPostService(t)
		seeded := repo.Seed(blog.Post{Title: "Old", Body: "Old body", AuthorID: alice.ID, AuthorName: "alice"})

		_, err := svc.Update(ctx, bob, seeded.ID, "Hijacked", "x")
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "AUTH_FORBIDDEN")

		stored, err := svc.Get(ctx, seeded.ID)
		require.NoError(t, err)
		assert.Equal(t, "Old", stored.Title)
	})

	t.Run("missing post is not found, not forbidden", func(t *testing.T) {
		svc, _ := newPostService(t)

		_, err := svc.Update(ctx, bob, 999, "New", "Body")
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "POST_NOT_FOUND")
	})

	t.Run("unauthenticated principal", func(t *testing.T) {
		svc, repo := newPostService(t)
		seeded := repo.Seed(blog.Post{Title: "Old", Body: "Body", AuthorID: alice.ID})

		_, err := svc.Update(ctx, nil, seeded.ID, "New", "Body")
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "AUTH_UNAUTHORIZED")
	})
}

func TestPostService_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("author may delete", func(t *testing.T) {
		svc, repo := newPostService(t)
		seeded := repo.Seed(blog.Post{Title: "T", Body: "B", AuthorID: alice.ID})

		require.NoError(t, svc.Delete(ctx, alice, seeded.ID))

		_, err := svc.Get(ctx, seeded.ID)
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "POST_NOT_FOUND")
	})

	t.Run("non-author is forbidden", func(t *testing.T) {
		svc, repo := newPostService(t)
		seeded := repo.Seed(blog.Post{Title: "T", Body: "B", AuthorID: alice.ID})

		err := svc.Delete(ctx, bob, seeded.ID)
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "AUTH_FORBIDDEN")

		_, err = svc.Get(ctx, seeded.ID)
		require.NoError(t, err, "post must survive a forbidden delete")
	})

	t.Run("missing post is not found", func(t *testing.T) {
		svc, _ := newPostService(t)

		err := svc.Delete(ctx, alice, 999)
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "POST_NOT_FOUND")
	})
}
