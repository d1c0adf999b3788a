package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/sbilibin2017/gw-user-service/internal/models"
)

//go:generate mockgen -source=user.go -destination=mock_user.go -package=handlers

// UserLister lists active users.
type UserLister interface {
	List(ctx context.Context) ([]*models.UserDB, error)
}

// UserGetter loads one active user.
type UserGetter interface {
	GetByID(ctx context.Context, userID int64) (*models.UserDB, error)
}

// UserUpdater replaces a user's profile.
type UserUpdater interface {
	Update(ctx context.Context, userID int64, req models.UpdateUserRequest) (*models.UserDB, error)
}

// UserDeleter soft-deletes a user.
type UserDeleter interface {
	SoftDelete(ctx context.Context, userID int64) error
}

// NewListUsersHandler returns an HTTP handler listing active users.
// @Summary List users
// @Description Returns all active users in creation order
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.UserResponse "Active users"
// @Failure 401 "Unauthorized"
// @Failure 500 {object} models.ErrorResponse "Internal server error"
// @Router / [get]
func NewListUsersHandler(svc UserLister) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		users, err := svc.List(r.Context())
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, models.NewUserResponses(users))
	}
}

// NewGetUserHandler returns an HTTP handler for fetching a user by id.
// @Summary Get user
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} models.UserResponse "User"
// @Failure 400 {object} models.ErrorResponse "Invalid user ID"
// @Failure 401 "Unauthorized"
// @Failure 404 {object} models.ErrorResponse "User not found"
// @Router /{id} [get]
func NewGetUserHandler(svc UserGetter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := parseUserID(r)
		if !ok {
			writeError(w, http.StatusBadRequest, "Invalid user ID")
			return
		}

		user, err := svc.GetByID(r.Context(), userID)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, models.NewUserResponse(user))
	}
}

// NewUpdateUserHandler returns an HTTP handler for updating a user.
// @Summary Update user
// @Description Replaces names, username and email. An empty password keeps the current one.
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Param updateUserRequest body models.UpdateUserRequest true "New user data"
// @Success 200 {object} models.UserResponse "Updated user"
// @Failure 400 {object} models.ErrorResponse "Invalid request"
// @Failure 401 "Unauthorized"
// @Failure 404 {object} models.ErrorResponse "User not found"
// @Failure 409 {object} models.ErrorResponse "Username or email already exists"
// @Router /{id} [put]
func NewUpdateUserHandler(svc UserUpdater) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := parseUserID(r)
		if !ok {
			writeError(w, http.StatusBadRequest, "Invalid user ID")
			return
		}

		var req models.UpdateUserRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		user, err := svc.Update(r.Context(), userID, req)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, models.NewUserResponse(user))
	}
}

// NewDeleteUserHandler returns an HTTP handler for soft-deleting a user.
// @Summary Delete user
// @Description Marks the user as deleted. Username and email become available again.
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} models.MessageResponse "User soft deleted successfully"
// @Failure 400 {object} models.ErrorResponse "Invalid user ID"
// @Failure 401 "Unauthorized"
// @Failure 404 {object} models.ErrorResponse "User not found"
// @Router /{id} [delete]
func NewDeleteUserHandler(svc UserDeleter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := parseUserID(r)
		if !ok {
			writeError(w, http.StatusBadRequest, "Invalid user ID")
			return
		}

		if err := svc.SoftDelete(r.Context(), userID); err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, models.MessageResponse{Message: "User soft deleted successfully"})
	}
}
