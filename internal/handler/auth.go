package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/glowmart/glowmart-api/internal/domain/user"
)

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Token string       `json:"token"`
	User  userResponse `json:"user"`
}

type userResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

func toUserResponse(u *user.User) userResponse {
	return userResponse{
		ID:    u.ID,
		Email: u.Email,
		Name:  u.Name,
		Role:  string(u.Role),
	}
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decode(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" || !strings.Contains(req.Email, "@") {
		respondError(w, http.StatusBadRequest, "a valid email is required")
		return
	}
	if len(req.Password) < 8 {
		respondError(w, http.StatusBadRequest, "password must be at least 8 characters")
		return
	}

	hash, err := user.HashPassword(req.Password)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}

	u := &user.User{
		ID:           uuid.New().String(),
		Email:        req.Email,
		PasswordHash: hash,
		Name:         strings.TrimSpace(req.Name),
		Role:         user.RoleCustomer,
		CreatedAt:    time.Now(),
	}
	if err := h.users.Create(r.Context(), u); err != nil {
		h.respondServiceError(w, r, err)
		return
	}

	token, err := h.tokens.Issue(u)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respond(w, http.StatusCreated, authResponse{Token: token, User: toUserResponse(u)})
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decode(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	u, err := h.users.GetByEmail(r.Context(), strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil || !u.CheckPassword(req.Password) {
		// Same response for unknown email and wrong password.
		respondError(w, http.StatusUnauthorized, user.ErrBadCredentials.Error())
		return
	}

	token, err := h.tokens.Issue(u)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respond(w, http.StatusOK, authResponse{Token: token, User: toUserResponse(u)})
}

func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	s, _ := sessionFrom(r.Context())
	u, err := h.users.GetByID(r.Context(), s.UserID)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}
	respond(w, http.StatusOK, toUserResponse(u))
}
