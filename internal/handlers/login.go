package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/sbilibin2017/gw-user-service/internal/logger"
	"github.com/sbilibin2017/gw-user-service/internal/models"
)

//go:generate mockgen -source=login.go -destination=mock_login.go -package=handlers

// Authenticator checks user credentials.
type Authenticator interface {
	Authenticate(ctx context.Context, username, password string) (bool, error)
}

// TokenGenerator issues access tokens.
type TokenGenerator interface {
	Generate(ctx context.Context, username string) (string, error)
}

// NewLoginHandler returns an HTTP handler for user login.
// @Summary User login
// @Description Checks credentials and returns a JWT token
// @Tags users
// @Accept json
// @Produce json
// @Param loginRequest body models.LoginRequest true "Login Request"
// @Success 200 {object} models.LoginResponse "Authentication successful"
// @Failure 400 {object} models.ErrorResponse "Invalid input parameters"
// @Failure 401 {object} models.ErrorResponse "Invalid credentials"
// @Failure 429 {object} models.ErrorResponse "Too many login attempts"
// @Failure 500 {object} models.ErrorResponse "Internal server error"
// @Router /login [post]
func NewLoginHandler(svc Authenticator, tokens TokenGenerator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req models.LoginRequest

		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid input parameters")
			return
		}

		ok, err := svc.Authenticate(r.Context(), req.Username, req.Password)
		if err != nil {
			if errors.Is(err, models.ErrValidation) {
				writeError(w, http.StatusBadRequest, "Invalid input parameters")
				return
			}
			writeServiceError(w, err)
			return
		}
		if !ok {
			writeError(w, http.StatusUnauthorized, "Invalid credentials")
			return
		}

		username := strings.TrimSpace(req.Username)
		token, err := tokens.Generate(r.Context(), username)
		if err != nil {
			logger.Log.Errorw("failed to generate token", "username", username, "err", err)
			writeError(w, http.StatusInternalServerError, "Internal server error")
			return
		}

		writeJSON(w, http.StatusOK, models.LoginResponse{
			Message: "Authentication successful",
			Token:   token,
		})
	}
}
