// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Inkwell Contributors

package httpapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/inkwell/inkwell/internal/auth"
	"github.com/inkwell/inkwell/internal/auth/authtest"
	"github.com/inkwell/inkwell/internal/blog"
	"github.com/inkwell/inkwell/internal/blog/blogtest"
	"github.com/inkwell/inkwell/internal/observability"
)

type apiFixture struct {
	ts         *httptest.Server
	accounts   *authtest.MemAccountRepository
	posts      *blogtest.MemPostRepository
	dispatcher *authtest.RecordingDispatcher
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()

	accounts := authtest.NewMemAccountRepository()
	posts := blogtest.NewMemPostRepository()
	dispatcher := &authtest.RecordingDispatcher{}

	tokens, err := auth.NewTokenService([]byte("test-secret"), "HS256")
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	authSvc, err := auth.NewServiceWithLogger(
		accounts,
		auth.NewBcryptHasherWithCost(bcrypt.MinCost),
		tokens,
		dispatcher,
		auth.ServiceConfig{
			SessionTTL:   time.Minute,
			ResetTTL:     time.Minute,
			ResetBaseURL: "http://example.com/password/reset",
		},
		logger,
	)
	require.NoError(t, err)

	postSvc, err := blog.NewPostService(posts)
	require.NoError(t, err)

	metrics := observability.NewMetrics(prometheus.NewRegistry())

	srv, err := NewServer(":0", authSvc, postSvc, metrics, logger)
	require.NoError(t, err)

	ts := httptest.NewServer(srv.routes())
	t.Cleanup(ts.Close)

	return &apiFixture{ts: ts, accounts: accounts, posts: posts, dispatcher: dispatcher}
}

// do issues a JSON request, optionally with a bearer token, and decodes the
// response body into out when out is non-nil.
func (f *apiFixture) do(t *testing.T, method, path, token string, body, out any) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequest(method, f.ts.URL+path, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := f.ts.Client().Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })

	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp
}

func (f *apiFixture) register(t *testing.T, name, email, password string) accountResponse {
	t.Helper()
	var account accountResponse
	resp := f.do(t, http.MethodPost, "/users/registration", "",
		registrationRequest{Name: name, Email: email, Password: password}, &account)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	return account
}

func (f *apiFixture) login(t *testing.T, username, password string) string {
	t.Helper()
	var tokens tokenResponse
	resp := f.do(t, http.MethodPost, "/login", "",
		loginRequest{Username: username, Password: password}, &tokens)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "bearer", tokens.TokenType)
	return tokens.AccessToken
}

func assertErrorCode(t *testing.T, resp *http.Response, body *errorEnvelope, code string) {
	t.Helper()
	require.NotNil(t, body)
	assert.Equal(t, code, body.Error.Code)
}

func TestAPI_RegisterLoginFlow(t *testing.T) {
	f := newAPIFixture(t)

	account := f.register(t, "alice", "alice@example.com", "s3cret")
	assert.Equal(t, "alice", account.Name)
	assert.NotZero(t, account.ID)

	token := f.login(t, "alice", "s3cret")

	var details accountResponse
	resp := f.do(t, http.MethodPost, "/users/details", token, nil, &details)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, account.ID, details.ID)
	assert.Equal(t, "alice@example.com", details.Email)
}

func TestAPI_LoginFailures(t *testing.T) {
	f := newAPIFixture(t)
	f.register(t, "alice", "alice@example.com", "s3cret")

	tests := []struct {
		name     string
		username string
		password string
	}{
		{"wrong password", "alice", "nope"},
		{"unknown user", "nobody", "nope"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var envelope errorEnvelope
			resp := f.do(t, http.MethodPost, "/login", "",
				loginRequest{Username: tt.username, Password: tt.password}, &envelope)
			assert.Equal(t, http.StatusForbidden, resp.StatusCode)
			assertErrorCode(t, resp, &envelope, "AUTH_INVALID_CREDENTIALS")
		})
	}
}

func TestAPI_RegistrationConflicts(t *testing.T) {
	f := newAPIFixture(t)
	f.register(t, "alice", "alice@example.com", "pw")

	t.Run("duplicate name", func(t *testing.T) {
		var envelope errorEnvelope
		resp := f.do(t, http.MethodPost, "/users/registration", "",
			registrationRequest{Name: "alice", Email: "new@example.com", Password: "pw"}, &envelope)
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
		assertErrorCode(t, resp, &envelope, "ACCOUNT_NAME_TAKEN")
	})

	t.Run("duplicate email", func(t *testing.T) {
		var envelope errorEnvelope
		resp := f.do(t, http.MethodPost, "/users/registration", "",
			registrationRequest{Name: "bob", Email: "Alice@Example.com", Password: "pw"}, &envelope)
		assert.Equal(t, http.StatusConflict, resp.StatusCode)
		assertErrorCode(t, resp, &envelope, "ACCOUNT_EMAIL_TAKEN")
	})

	t.Run("invalid email", func(t *testing.T) {
		var envelope errorEnvelope
		resp := f.do(t, http.MethodPost, "/users/registration", "",
			registrationRequest{Name: "bob", Email: "not-an-email", Password: "pw"}, &envelope)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assertErrorCode(t, resp, &envelope, "VALIDATION_FAILED")
	})
}

func TestAPI_ProtectedRoutesRequireToken(t *testing.T) {
	f := newAPIFixture(t)

	paths := []struct {
		method string
		path   string
		body   any
	}{
		{http.MethodPost, "/users/details", nil},
		{http.MethodPost, "/blog", postRequest{Title: "T", Body: "B"}},
		{http.MethodPut, "/blog/1", postRequest{Title: "T", Body: "B"}},
		{http.MethodDelete, "/blog/1", nil},
	}

	for _, tt := range paths {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			var envelope errorEnvelope
			resp := f.do(t, tt.method, tt.path, "", tt.body, &envelope)
			assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
			assertErrorCode(t, resp, &envelope, "AUTH_UNAUTHORIZED")
		})
	}

	t.Run("garbage token", func(t *testing.T) {
		var envelope errorEnvelope
		resp := f.do(t, http.MethodPost, "/users/details", "garbage", nil, &envelope)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		assertErrorCode(t, resp, &envelope, "AUTH_UNAUTHORIZED")
	})
}

func TestAPI_BlogCRUD(t *testing.T) {
	f := newAPIFixture(t)
	f.register(t, "alice", "alice@example.com", "pw")
	token := f.login(t, "alice", "pw")

	var created postResponse
	resp := f.do(t, http.MethodPost, "/blog", token,
		postRequest{Title: "Hello", Body: "First post."}, &created)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "alice", created.AuthorName)
	require.NotZero(t, created.ID)

	t.Run("get", func(t *testing.T) {
		var got postResponse
		resp := f.do(t, http.MethodGet, fmt.Sprintf("/blog/%d", created.ID), "", nil, &got)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, created.Title, got.Title)
	})

	t.Run("list", func(t *testing.T) {
		var posts []postResponse
		resp := f.do(t, http.MethodGet, "/blog", "", nil, &posts)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		require.Len(t, posts, 1)
		assert.Equal(t, created.ID, posts[0].ID)
	})

	t.Run("update by author", func(t *testing.T) {
		var updated postResponse
		resp := f.do(t, http.MethodPut, fmt.Sprintf("/blog/%d", created.ID), token,
			postRequest{Title: "Edited", Body: "Edited body."}, &updated)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "Edited", updated.Title)
	})

	t.Run("delete by author", func(t *testing.T) {
		resp := f.do(t, http.MethodDelete, fmt.Sprintf("/blog/%d", created.ID), token, nil, nil)
		assert.Equal(t, http.StatusNoContent, resp.StatusCode)

		var envelope errorEnvelope
		resp = f.do(t, http.MethodGet, fmt.Sprintf("/blog/%d", created.ID), "", nil, &envelope)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("unknown id", func(t *testing.T) {
		var envelope errorEnvelope
		resp := f.do(t, http.MethodGet, "/blog/999", "", nil, &envelope)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assertErrorCode(t, resp, &envelope, "POST_NOT_FOUND")
	})

	t.Run("bad id", func(t *testing.T) {
		var envelope errorEnvelope
		resp := f.do(t, http.MethodGet, "/blog/abc", "", nil, &envelope)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assertErrorCode(t, resp, &envelope, "VALIDATION_FAILED")
	})
}

func TestAPI_OwnershipGuard(t *testing.T) {
	f := newAPIFixture(t)
	f.register(t, "alice", "alice@example.com", "pw")
	f.register(t, "bob", "bob@example.com", "pw")
	aliceToken := f.login(t, "alice", "pw")
	bobToken := f.login(t, "bob", "pw")

	var created postResponse
	resp := f.do(t, http.MethodPost, "/blog", aliceToken,
		postRequest{Title: "Alice's post", Body: "Hers alone."}, &created)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	t.Run("foreign update is forbidden", func(t *testing.T) {
		var envelope errorEnvelope
		resp := f.do(t, http.MethodPut, fmt.Sprintf("/blog/%d", created.ID), bobToken,
			postRequest{Title: "Hijacked", Body: "x"}, &envelope)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
		assertErrorCode(t, resp, &envelope, "AUTH_FORBIDDEN")
	})

	t.Run("foreign delete is forbidden", func(t *testing.T) {
		var envelope errorEnvelope
		resp := f.do(t, http.MethodDelete, fmt.Sprintf("/blog/%d", created.ID), bobToken, nil, &envelope)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
		assertErrorCode(t, resp, &envelope, "AUTH_FORBIDDEN")
	})

	t.Run("post is unchanged", func(t *testing.T) {
		var got postResponse
		resp := f.do(t, http.MethodGet, fmt.Sprintf("/blog/%d", created.ID), "", nil, &got)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "Alice's post", got.Title)
	})
}

func TestAPI_PasswordResetFlow(t *testing.T) {
	f := newAPIFixture(t)
	f.register(t, "alice", "alice@example.com", "old-pw")

	t.Run("unknown email", func(t *testing.T) {
		var envelope errorEnvelope
		resp := f.do(t, http.MethodPost, "/password/request", "",
			resetRequest{Email: "nobody@example.com"}, &envelope)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assertErrorCode(t, resp, &envelope, "ACCOUNT_NOT_FOUND")
	})

	t.Run("full flow", func(t *testing.T) {
		resp := f.do(t, http.MethodPost, "/password/request", "",
			resetRequest{Email: "alice@example.com"}, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		sent := f.dispatcher.Sent()
		require.NotEmpty(t, sent)
		link, ok := sent[len(sent)-1].Data["ResetLink"].(string)
		require.True(t, ok)

		parsed, err := http.NewRequest(http.MethodGet, link, nil)
		require.NoError(t, err)
		token := parsed.URL.Query().Get("token")
		require.NotEmpty(t, token)

		resp = f.do(t, http.MethodPut, "/password/reset?token="+token, "",
			resetConfirmRequest{Password: "new-pw"}, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)

		// Old password is dead, new one works.
		var envelope errorEnvelope
		resp = f.do(t, http.MethodPost, "/login", "",
			loginRequest{Username: "alice", Password: "old-pw"}, &envelope)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)

		f.login(t, "alice", "new-pw")
	})

	t.Run("missing token", func(t *testing.T) {
		var envelope errorEnvelope
		resp := f.do(t, http.MethodPut, "/password/reset", "",
			resetConfirmRequest{Password: "x"}, &envelope)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		assertErrorCode(t, resp, &envelope, "AUTH_UNAUTHORIZED")
	})
}

func TestAPI_MalformedBodies(t *testing.T) {
	f := newAPIFixture(t)

	req, err := http.NewRequest(http.MethodPost, f.ts.URL+"/login", bytes.NewReader([]byte("{not json")))
	require.NoError(t, err)
	resp, err := f.ts.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close() //nolint:errcheck

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAPI_RequestIDHeader(t *testing.T) {
	f := newAPIFixture(t)

	resp := f.do(t, http.MethodGet, "/blog", "", nil, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get(requestIDHeader))
}
