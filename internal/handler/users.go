package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/userhubapp/userhub/internal/auth"
	"github.com/userhubapp/userhub/internal/user"
	"github.com/userhubapp/userhub/pkg/validator"
)

type userResponse struct {
	ID        uuid.UUID  `json:"id"`
	Username  string     `json:"username"`
	Email     string     `json:"email"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
	LastLogin *time.Time `json:"last_login,omitempty"`
}

func toUserResponse(u *user.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
		LastLogin: u.LastLogin,
	}
}

func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.List(r.Context())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to list users", "error", err)
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}

	resp := make([]userResponse, 0, len(users))
	for i := range users {
		resp = append(resp, toUserResponse(&users[i]))
	}

	respondJSON(w, http.StatusOK, resp)
}

func (h *Handler) getUser(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	u, err := h.users.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			respondError(w, http.StatusNotFound, "user not found")
			return
		}
		h.logger.ErrorContext(r.Context(), "failed to get user", "error", err, "user_id", id.String())
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}

	respondJSON(w, http.StatusOK, toUserResponse(u))
}

type updateUserRequest struct {
	Username *string `json:"username"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
}

func (h *Handler) updateUser(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	var req updateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	u, err := h.auth.Update(r.Context(), id, auth.UpdateInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		switch {
		case validator.IsValidationError(err):
			ve := validator.ExtractValidationErrors(err)
			respondJSON(w, http.StatusUnprocessableEntity, map[string]any{
				"error":  "validation failed",
				"fields": fieldMessages(ve),
			})
		case errors.Is(err, user.ErrNotFound):
			respondError(w, http.StatusNotFound, "user not found")
		case errors.Is(err, user.ErrUsernameTaken):
			respondError(w, http.StatusConflict, "username is already taken")
		case errors.Is(err, user.ErrEmailTaken):
			respondError(w, http.StatusConflict, "email is already registered")
		case errors.Is(err, user.ErrEmptyPatch):
			respondError(w, http.StatusBadRequest, "no fields to update")
		default:
			h.logger.ErrorContext(r.Context(), "failed to update user", "error", err, "user_id", id.String())
			respondError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}

	respondJSON(w, http.StatusOK, toUserResponse(u))
}

func fieldMessages(ve validator.ValidationErrors) map[string][]string {
	fields := make(map[string][]string, len(ve))
	for _, field := range ve.Fields() {
		fields[field] = ve.Get(field)
	}
	return fields
}
