// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Inkwell Contributors

package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/samber/oops"

	"github.com/inkwell/inkwell/internal/auth"
	"github.com/inkwell/inkwell/internal/blog"
	"github.com/inkwell/inkwell/internal/observability"
	"github.com/inkwell/inkwell/pkg/errutil"
)

// maxBodyBytes bounds request bodies; all payloads here are small JSON.
const maxBodyBytes = 1 << 20

// handlers carries the services the HTTP surface delegates to.
type handlers struct {
	auth    *auth.Service
	posts   *blog.PostService
	metrics *observability.Metrics
	logger  *slog.Logger
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type registrationRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type accountResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

type resetRequest struct {
	Email string `json:"email"`
}

type resetConfirmRequest struct {
	Password string `json:"password"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type postRequest struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

type postResponse struct {
	ID         int64     `json:"id"`
	Title      string    `json:"title"`
	Body       string    `json:"body"`
	AuthorID   int64     `json:"author_id"`
	AuthorName string    `json:"author_name"`
	CreatedAt  time.Time `json:"created_at"`
}

func newAccountResponse(account *auth.Account) accountResponse {
	return accountResponse{
		ID:        account.ID,
		Name:      account.Name,
		Email:     account.Email,
		CreatedAt: account.CreatedAt,
	}
}

func newPostResponse(post *blog.Post) postResponse {
	return postResponse{
		ID:         post.ID,
		Title:      post.Title,
		Body:       post.Body,
		AuthorID:   post.AuthorID,
		AuthorName: post.AuthorName,
		CreatedAt:  post.CreatedAt,
	}
}

// handleLogin exchanges a username/password pair for a bearer token.
func (h *handlers) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !h.decode(w, r, &req) {
		return
	}

	pair, err := h.auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		h.metrics.LoginsTotal.WithLabelValues("failure").Inc()
		h.writeError(w, err)
		return
	}

	h.metrics.LoginsTotal.WithLabelValues("success").Inc()
	h.writeJSON(w, http.StatusOK, tokenResponse{
		AccessToken: pair.AccessToken,
		TokenType:   pair.TokenType,
	})
}

// handleRegistration creates a new account.
func (h *handlers) handleRegistration(w http.ResponseWriter, r *http.Request) {
	var req registrationRequest
	if !h.decode(w, r, &req) {
		return
	}

	account, err := h.auth.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, newAccountResponse(account))
}

// handleDetails returns the authenticated account's own details.
func (h *handlers) handleDetails(w http.ResponseWriter, r *http.Request) {
	account, ok := h.principal(w, r)
	if !ok {
		return
	}
	h.writeJSON(w, http.StatusOK, newAccountResponse(account))
}

// handlePasswordResetRequest triggers the reset email for an account.
func (h *handlers) handlePasswordResetRequest(w http.ResponseWriter, r *http.Request) {
	var req resetRequest
	if !h.decode(w, r, &req) {
		return
	}

	if err := h.auth.RequestPasswordReset(r.Context(), req.Email); err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, messageResponse{
		Message: "an email with password reset link has been sent",
	})
}

// handlePasswordReset replaces the password for the account named by the
// reset token, supplied as a query parameter.
func (h *handlers) handlePasswordReset(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")

	var req resetConfirmRequest
	if !h.decode(w, r, &req) {
		return
	}

	if err := h.auth.ConfirmPasswordReset(r.Context(), token, req.Password); err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, messageResponse{
		Message: "password has been reset",
	})
}

// handleCreatePost publishes a post owned by the authenticated account.
func (h *handlers) handleCreatePost(w http.ResponseWriter, r *http.Request) {
	account, ok := h.principal(w, r)
	if !ok {
		return
	}

	var req postRequest
	if !h.decode(w, r, &req) {
		return
	}

	post, err := h.posts.Create(r.Context(), account, req.Title, req.Body)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, newPostResponse(post))
}

// handleListPosts returns the newest posts, optionally limited by ?limit=.
func (h *handlers) handleListPosts(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			h.writeError(w, oops.Code("VALIDATION_FAILED").Errorf("limit must be a non-negative integer"))
			return
		}
		limit = parsed
	}

	posts, err := h.posts.ListRecent(r.Context(), limit)
	if err != nil {
		h.writeError(w, err)
		return
	}

	out := make([]postResponse, 0, len(posts))
	for i := range posts {
		out = append(out, newPostResponse(&posts[i]))
	}
	h.writeJSON(w, http.StatusOK, out)
}

// handleGetPost returns a single post by ID.
func (h *handlers) handleGetPost(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	post, err := h.posts.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, newPostResponse(post))
}

// handleUpdatePost replaces a post's title and body. Author only.
func (h *handlers) handleUpdatePost(w http.ResponseWriter, r *http.Request) {
	account, ok := h.principal(w, r)
	if !ok {
		return
	}
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	var req postRequest
	if !h.decode(w, r, &req) {
		return
	}

	post, err := h.posts.Update(r.Context(), account, id, req.Title, req.Body)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, newPostResponse(post))
}

// handleDeletePost removes a post. Author only.
func (h *handlers) handleDeletePost(w http.ResponseWriter, r *http.Request) {
	account, ok := h.principal(w, r)
	if !ok {
		return
	}
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	if err := h.posts.Delete(r.Context(), account, id); err != nil {
		h.writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// principal resolves the bearer token to an account, writing the error
// response itself when authentication fails.
func (h *handlers) principal(w http.ResponseWriter, r *http.Request) (*auth.Account, bool) {
	token, err := bearerToken(r)
	if err != nil {
		h.writeError(w, err)
		return nil, false
	}

	account, err := h.auth.CurrentAccount(r.Context(), token)
	if err != nil {
		h.writeError(w, err)
		return nil, false
	}
	return account, true
}

// bearerToken extracts the token from the Authorization header.
func bearerToken(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", oops.Code("AUTH_UNAUTHORIZED").Errorf("missing authorization header")
	}
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") || token == "" {
		return "", oops.Code("AUTH_UNAUTHORIZED").Errorf("malformed authorization header")
	}
	return token, nil
}

// pathID parses the {id} path segment, writing the error response itself on
// failure.
func (h *handlers) pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := r.PathValue("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		h.writeError(w, oops.Code("VALIDATION_FAILED").Errorf("invalid post id %q", raw))
		return 0, false
	}
	return id, true
}

// decode reads a JSON request body into dst, writing the error response
// itself on failure.
func (h *handlers) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(body)
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			h.writeError(w, oops.Code("VALIDATION_FAILED").Errorf("request body is required"))
			return false
		}
		h.writeError(w, oops.Code("VALIDATION_FAILED").Errorf("invalid request body"))
		return false
	}
	return true
}

type errorEnvelope struct {
	Error errorBody `json:"error"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// writeError maps a domain error to its HTTP status and JSON envelope.
// Internal errors are logged with full context and returned opaque.
func (h *handlers) writeError(w http.ResponseWriter, err error) {
	code, status := errorStatus(err)

	message := err.Error()
	if status == http.StatusInternalServerError {
		errutil.LogError(h.logger, "request failed", err)
		message = "internal server error"
	}

	h.writeJSON(w, status, errorEnvelope{Error: errorBody{Code: code, Message: message}})
}

func (h *handlers) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("write response failed", "error", err)
	}
}
