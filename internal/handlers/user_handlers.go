package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"todoTracker/internal/handlers/jsonapi"
	"todoTracker/internal/logger"
	"todoTracker/internal/service"

	"go.uber.org/zap"
)

type UserHandler struct {
	UserService  UserService
	TokenService TokenService
}

func NewUserHandler(userService UserService, tokenService TokenService) UserHandler {
	return UserHandler{UserService: userService, TokenService: tokenService}
}

func (h *UserHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	body, err := readWriteBody(w, r)
	if err != nil {
		handleError(w, r, err)
		return
	}
	req, err := jsonapi.DecodeWrite(body, jsonapi.TypeUsers, "")
	if err != nil {
		handleError(w, r, err)
		return
	}
	in, err := jsonapi.DecodeUserInput(req)
	if err != nil {
		handleError(w, r, err)
		return
	}

	u, err := h.UserService.SignUp(r.Context(), in)
	if err != nil {
		handleError(w, r, err)
		return
	}

	logger.Info("HTTP_OUT: User created",
		zap.String("user_id", u.ID.String()),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusCreated))

	responseWithDocument(w, http.StatusCreated, jsonapi.Document{Data: jsonapi.User(u)})
}

type tokenRequest struct {
	GrantType string `json:"grant_type"`
	Username  string `json:"username"`
	Password  string `json:"password"`
}

// IssueToken is the OAuth2 password grant. Errors use the OAuth2 error body rather than
// the JSON:API envelope.
func (h *UserHandler) IssueToken(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	req, ok := readTokenRequest(w, r)
	if !ok {
		oauthError(w, "invalid_request", "The request is missing a required parameter or is malformed.")
		return
	}
	if req.GrantType != "password" {
		logger.Warn("HTTP: unsupported grant type", zap.String("grant_type", req.GrantType))
		oauthError(w, "unsupported_grant_type", "The authorization grant type is not supported.")
		return
	}

	token, err := h.TokenService.IssueToken(r.Context(), req.Username, req.Password)
	if err != nil {
		if busErr, ok := service.AsBusinessError(err); ok && busErr.Code == service.CodeUnauthorized {
			logger.Warn("HTTP: invalid credentials", zap.String("client_ip", r.RemoteAddr))
			oauthError(w, "invalid_grant", "The provided authorization grant is invalid.")
			return
		}
		handleError(w, r, err)
		return
	}

	logger.Info("HTTP_OUT: Token issued",
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	w.Header().Set("Cache-Control", "no-store")
	responseWithJSON(w, http.StatusOK,
		toPayload("access_token", token.AccessToken),
		toPayload("token_type", "Bearer"),
		toPayload("expires_in", token.ExpiresIn),
		toPayload("created_at", token.CreatedAt.Unix()),
	)
}

func readTokenRequest(w http.ResponseWriter, r *http.Request) (tokenRequest, bool) {
	var req tokenRequest

	if checkContentType(r, "application/json") {
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
			logger.Warn("HTTP: failed to read token request", zap.Error(err))
			return req, false
		}
		return req, true
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := r.ParseForm(); err != nil {
		logger.Warn("HTTP: failed to read token request", zap.Error(err))
		return req, false
	}
	req.GrantType = r.PostForm.Get("grant_type")
	req.Username = r.PostForm.Get("username")
	req.Password = r.PostForm.Get("password")
	return req, true
}

func oauthError(w http.ResponseWriter, code, description string) {
	responseWithJSON(w, http.StatusBadRequest,
		toPayload("error", code),
		toPayload("error_description", description),
	)
}
