package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/corpora-labs/corpora-core/internal/core/domain"
)

// ErrorResponse represents an API error response
// @Description API error response
type ErrorResponse struct {
	Error string `json:"error" example:"invalid request body"`
}

// StatusResponse represents a simple status response
// @Description Simple status response
type StatusResponse struct {
	Status string `json:"status" example:"ok"`
}

// VersionResponse represents the API version response
// @Description API version response
type VersionResponse struct {
	Version string `json:"version" example:"1.0.0"`
}

// Health endpoints

// handleHealth godoc
// @Summary      Health check
// @Description  Returns the health status of the API
// @Tags         Health
// @Produce      json
// @Success      200  {object}  StatusResponse
// @Router       /health [get]
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleReady godoc
// @Summary      Readiness check
// @Description  Returns the readiness status of the API (checks backing stores)
// @Tags         Health
// @Produce      json
// @Success      200  {object}  StatusResponse
// @Failure      503  {object}  ErrorResponse  "A backing store is unreachable"
// @Router       /ready [get]
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.db != nil {
		if err := s.db.Ping(r.Context()); err != nil {
			writeError(w, http.StatusServiceUnavailable, "database unavailable")
			return
		}
	}
	if s.redisClient != nil {
		if err := s.redisClient.Ping(r.Context()); err != nil {
			writeError(w, http.StatusServiceUnavailable, "redis unavailable")
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// handleVersion godoc
// @Summary      Get API version
// @Description  Returns the current API version
// @Tags         Health
// @Produce      json
// @Success      200  {object}  VersionResponse
// @Router       /version [get]
func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"version": s.version})
}

// Auth endpoints

// handleLogin godoc
// @Summary      User login
// @Description  Authenticate with email and password to receive a JWT token
// @Tags         Authentication
// @Accept       json
// @Produce      json
// @Param        request  body      domain.LoginRequest  true  "Login credentials"
// @Success      200      {object}  domain.LoginResponse
// @Failure      400      {object}  ErrorResponse  "Invalid request body"
// @Failure      401      {object}  ErrorResponse  "Invalid credentials"
// @Failure      500      {object}  ErrorResponse  "Internal server error"
// @Router       /auth/login [post]
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req domain.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := s.authService.Login(r.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidCredentials):
			writeError(w, http.StatusUnauthorized, "invalid credentials")
		case errors.Is(err, domain.ErrInvalidInput):
			writeError(w, http.StatusBadRequest, "email and password are required")
		default:
			writeError(w, http.StatusInternalServerError, "authentication failed")
		}
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// handleRefresh godoc
// @Summary      Refresh token
// @Description  Exchange a refresh token for a new token pair
// @Tags         Authentication
// @Accept       json
// @Produce      json
// @Param        request  body      domain.RefreshRequest  true  "Refresh token"
// @Success      200      {object}  domain.LoginResponse
// @Failure      400      {object}  ErrorResponse  "Invalid request body"
// @Failure      401      {object}  ErrorResponse  "Invalid refresh token"
// @Router       /auth/refresh [post]
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var req domain.RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := s.authService.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "invalid refresh token")
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// handleLogout godoc
// @Summary      Logout user
// @Description  Invalidate the current session token
// @Tags         Authentication
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  StatusResponse
// @Router       /auth/logout [post]
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	token := extractBearerToken(r)
	if token != "" {
		_ = s.authService.Logout(r.Context(), token)
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Setup endpoint (no auth required, one-time use)

// SetupRequest holds the initial admin account details
type SetupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// handleSetup godoc
// @Summary      Initial setup
// @Description  Create the initial admin user. Can only be called once, while no users exist.
// @Tags         Setup
// @Accept       json
// @Produce      json
// @Param        request  body      SetupRequest  true  "Admin user details"
// @Success      201      {object}  domain.UserSummary
// @Failure      400      {object}  ErrorResponse  "Invalid input"
// @Failure      403      {object}  ErrorResponse  "Setup already complete"
// @Failure      500      {object}  ErrorResponse  "Setup failed"
// @Router       /setup [post]
func (s *Server) handleSetup(w http.ResponseWriter, r *http.Request) {
	var req SetupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := s.userService.Setup(r.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidInput):
			writeError(w, http.StatusBadRequest, "email and password are required")
		case errors.Is(err, domain.ErrAlreadyExists):
			writeError(w, http.StatusForbidden, "setup already complete")
		default:
			writeError(w, http.StatusInternalServerError, "setup failed")
		}
		return
	}

	writeJSON(w, http.StatusCreated, user.ToSummary())
}

// User endpoints

// handleGetMe godoc
// @Summary      Get current user
// @Description  Get the currently authenticated user's profile
// @Tags         Users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  domain.UserSummary
// @Failure      401  {object}  ErrorResponse  "Unauthorized"
// @Failure      404  {object}  ErrorResponse  "User not found"
// @Router       /me [get]
func (s *Server) handleGetMe(w http.ResponseWriter, r *http.Request) {
	authCtx := GetAuthContext(r.Context())
	if authCtx == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	user, err := s.userService.Get(r.Context(), authCtx.UserID)
	if err != nil {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}

	writeJSON(w, http.StatusOK, user.ToSummary())
}

// handleListUsers godoc
// @Summary      List all users
// @Description  Get a list of all users (admin only)
// @Tags         Users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   domain.UserSummary
// @Failure      401  {object}  ErrorResponse  "Unauthorized"
// @Failure      403  {object}  ErrorResponse  "Forbidden - admin only"
// @Router       /users [get]
func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.userService.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list users")
		return
	}

	summaries := make([]*domain.UserSummary, len(users))
	for i, u := range users {
		summaries[i] = u.ToSummary()
	}
	writeJSON(w, http.StatusOK, summaries)
}

// CreateUserRequest holds the fields for creating a user
type CreateUserRequest struct {
	Email    string   `json:"email"`
	Password string   `json:"password"`
	Roles    []string `json:"roles"`
}

// handleCreateUser godoc
// @Summary      Create user
// @Description  Create a new user (admin only)
// @Tags         Users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      CreateUserRequest  true  "User details"
// @Success      201      {object}  domain.UserSummary
// @Failure      400      {object}  ErrorResponse  "Invalid input"
// @Failure      409      {object}  ErrorResponse  "User already exists"
// @Router       /users [post]
func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := s.userService.Create(r.Context(), req.Email, req.Password, req.Roles)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidInput):
			writeError(w, http.StatusBadRequest, "email and password are required")
		case errors.Is(err, domain.ErrAlreadyExists):
			writeError(w, http.StatusConflict, "user already exists")
		default:
			writeError(w, http.StatusInternalServerError, "failed to create user")
		}
		return
	}

	writeJSON(w, http.StatusCreated, user.ToSummary())
}

// handleDeleteUser godoc
// @Summary      Delete user
// @Description  Delete a user (admin only)
// @Tags         Users
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "User ID"
// @Success      200  {object}  StatusResponse
// @Failure      404  {object}  ErrorResponse  "User not found"
// @Router       /users/{id} [delete]
func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	if err := s.userService.Delete(r.Context(), id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "user not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to delete user")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Document endpoints

// DocumentRequest holds the fields for creating or updating a document
type DocumentRequest struct {
	SourceName   string `json:"source_name"`
	Content      string `json:"content"`
	RequiredRole string `json:"required_role"`
}

// DocumentResponse pairs a stored document with its indexing outcome
type DocumentResponse struct {
	Document *domain.Document       `json:"document"`
	Indexing *domain.IndexingResult `json:"indexing"`
}

// handleCreateDocument godoc
// @Summary      Create document
// @Description  Store a document and index its chunks (admin only)
// @Tags         Documents
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      DocumentRequest  true  "Document content"
// @Success      201      {object}  DocumentResponse
// @Failure      400      {object}  ErrorResponse  "Invalid input"
// @Failure      409      {object}  ErrorResponse  "Indexing already in progress"
// @Router       /documents [post]
func (s *Server) handleCreateDocument(w http.ResponseWriter, r *http.Request) {
	var req DocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	doc, result, err := s.documentService.Create(r.Context(), &domain.Document{
		SourceName:   req.SourceName,
		Content:      req.Content,
		RequiredRole: req.RequiredRole,
	})
	if err != nil {
		writeDocumentError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, DocumentResponse{Document: doc, Indexing: result})
}

// handleUpdateDocument godoc
// @Summary      Update document
// @Description  Replace a document's content and re-index it (admin only)
// @Tags         Documents
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id       path      string           true  "Document ID"
// @Param        request  body      DocumentRequest  true  "Document content"
// @Success      200      {object}  DocumentResponse
// @Failure      404      {object}  ErrorResponse  "Document not found"
// @Failure      409      {object}  ErrorResponse  "Indexing already in progress"
// @Router       /documents/{id} [put]
func (s *Server) handleUpdateDocument(w http.ResponseWriter, r *http.Request) {
	var req DocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	doc, result, err := s.documentService.Update(r.Context(), &domain.Document{
		ID:           r.PathValue("id"),
		SourceName:   req.SourceName,
		Content:      req.Content,
		RequiredRole: req.RequiredRole,
	})
	if err != nil {
		writeDocumentError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, DocumentResponse{Document: doc, Indexing: result})
}

// handleGetDocument godoc
// @Summary      Get document
// @Description  Retrieve a document by ID
// @Tags         Documents
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Document ID"
// @Success      200  {object}  domain.Document
// @Failure      404  {object}  ErrorResponse  "Document not found"
// @Router       /documents/{id} [get]
func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	doc, err := s.documentService.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "document not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to get document")
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

// handleListDocuments godoc
// @Summary      List documents
// @Description  List documents with pagination
// @Tags         Documents
// @Produce      json
// @Security     BearerAuth
// @Param        limit   query     int  false  "Page size (default 50)"
// @Param        offset  query     int  false  "Offset"
// @Success      200     {array}   domain.Document
// @Router       /documents [get]
func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 50)
	offset := queryInt(r, "offset", 0)

	docs, err := s.documentService.List(r.Context(), limit, offset)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list documents")
		return
	}
	if docs == nil {
		docs = []*domain.Document{}
	}
	writeJSON(w, http.StatusOK, docs)
}

// handleDeleteDocument godoc
// @Summary      Delete document
// @Description  Delete a document and its indexed chunks (admin only)
// @Tags         Documents
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Document ID"
// @Success      200  {object}  StatusResponse
// @Failure      404  {object}  ErrorResponse  "Document not found"
// @Failure      409  {object}  ErrorResponse  "Indexing already in progress"
// @Router       /documents/{id} [delete]
func (s *Server) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	if err := s.documentService.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeDocumentError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Retrieval endpoints

// SearchRequest is a role-filtered retrieval request. The caller's roles
// come from the session, never from the request body.
type SearchRequest struct {
	Query string `json:"query"`
	Limit int    `json:"limit,omitempty"`
}

// AskRequest is a grounded question
type AskRequest struct {
	Question string `json:"question"`
}

// handleSearch godoc
// @Summary      Search chunks
// @Description  Role-filtered similarity search over indexed chunks
// @Tags         Search
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      SearchRequest  true  "Search query"
// @Success      200      {array}   domain.ScoredChunk
// @Failure      400      {object}  ErrorResponse  "Invalid input"
// @Router       /search [post]
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	authCtx := GetAuthContext(r.Context())
	if authCtx == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	chunks, err := s.retrievalService.SearchChunks(r.Context(), req.Query, authCtx.Roles)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			writeError(w, http.StatusBadRequest, "query is required")
			return
		}
		writeError(w, http.StatusInternalServerError, "search failed")
		return
	}
	writeJSON(w, http.StatusOK, chunks)
}

// handleSearchDocuments godoc
// @Summary      Search documents
// @Description  Role-filtered document search, public content included
// @Tags         Search
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      SearchRequest  true  "Search query"
// @Success      200      {array}   domain.DocumentHit
// @Failure      400      {object}  ErrorResponse  "Invalid input"
// @Router       /search/documents [post]
func (s *Server) handleSearchDocuments(w http.ResponseWriter, r *http.Request) {
	authCtx := GetAuthContext(r.Context())
	if authCtx == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	hits, err := s.retrievalService.SearchDocuments(r.Context(), req.Query, authCtx.Roles, req.Limit, 0)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			writeError(w, http.StatusBadRequest, "query is required")
			return
		}
		writeError(w, http.StatusInternalServerError, "search failed")
		return
	}
	if hits == nil {
		hits = []domain.DocumentHit{}
	}
	writeJSON(w, http.StatusOK, hits)
}

// handleAsk godoc
// @Summary      Ask a question
// @Description  Answer a question grounded on role-filtered retrieval
// @Tags         Search
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      AskRequest  true  "Question"
// @Success      200      {object}  domain.AskResult
// @Failure      400      {object}  ErrorResponse  "Invalid input"
// @Failure      502      {object}  ErrorResponse  "Upstream AI provider failed"
// @Router       /ask [post]
func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	authCtx := GetAuthContext(r.Context())
	if authCtx == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req AskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := s.askService.Ask(r.Context(), req.Question, authCtx.Roles)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidInput):
			writeError(w, http.StatusBadRequest, "question is required")
		case errors.Is(err, domain.ErrRateLimited):
			writeError(w, http.StatusTooManyRequests, "rate limited by AI provider")
		case errors.Is(err, domain.ErrUpstream), errors.Is(err, domain.ErrInvalidUpstreamResponse):
			writeError(w, http.StatusBadGateway, "AI provider failed")
		default:
			writeError(w, http.StatusInternalServerError, "ask failed")
		}
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// writeDocumentError maps document mutation errors to HTTP responses
func writeDocumentError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		writeError(w, http.StatusBadRequest, "source name, content and required role are required")
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "document not found")
	case errors.Is(err, domain.ErrIndexingInProgress):
		writeError(w, http.StatusConflict, "indexing already in progress")
	case errors.Is(err, domain.ErrRateLimited):
		writeError(w, http.StatusTooManyRequests, "rate limited by AI provider")
	case errors.Is(err, domain.ErrUpstream), errors.Is(err, domain.ErrInvalidUpstreamResponse):
		writeError(w, http.StatusBadGateway, "AI provider failed")
	default:
		writeError(w, http.StatusInternalServerError, "request failed")
	}
}

func queryInt(r *http.Request, name string, fallback int) int {
	value := r.URL.Query().Get(name)
	if value == "" {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return n
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
