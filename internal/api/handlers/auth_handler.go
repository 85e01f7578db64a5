package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"
	"sitetrack/internal/pkg/errors"
	"sitetrack/internal/platform/auth"
)

type AuthHandler struct {
	credentials *auth.CredentialChecker
	tokenSvc    *auth.TokenService
}

func NewAuthHandler(credentials *auth.CredentialChecker, tokenSvc *auth.TokenService) *AuthHandler {
	return &AuthHandler{
		credentials: credentials,
		tokenSvc:    tokenSvc,
	}
}

type TokenRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

func (h *AuthHandler) Token(w http.ResponseWriter, r *http.Request) {
	var req TokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errors.WriteError(w, http.StatusBadRequest, errors.ErrCodeInvalidInput, "Invalid request body", nil)
		return
	}

	if err := h.credentials.Check(req.Username, req.Password); err != nil {
		log.Warn().Str("username", req.Username).Msg("admin login rejected")
		errors.WriteError(w, http.StatusUnauthorized, errors.ErrCodeUnauthorized, "Invalid credentials", nil)
		return
	}

	accessToken, err := h.tokenSvc.GenerateAccessToken(req.Username, auth.RoleAdmin)
	if err != nil {
		log.Error().Err(err).Msg("failed to generate access token")
		errors.WriteError(w, http.StatusInternalServerError, errors.ErrCodeInternal, "Failed to generate token", nil)
		return
	}

	errors.WriteJSON(w, http.StatusOK, TokenResponse{
		AccessToken: accessToken,
		TokenType:   "Bearer",
	})
}
