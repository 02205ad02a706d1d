package handler

import (
	"errors"
	"net/http"

	"github.com/innofeed/innofeed/internal/handler/dto"
	"github.com/innofeed/innofeed/internal/service"
)

// Register creates an account.
// POST /register
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if !h.decode(w, r, &req) {
		return
	}

	id, err := h.accounts.Register(r.Context(), service.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.handleAccountError(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "user_registered", "user_id", id)
	writeJSON(w, http.StatusOK, dto.RegisterResponse{Message: "User registered successfully", UserID: id})
}

// Login checks credentials.
// POST /login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if !h.decode(w, r, &req) {
		return
	}

	user, err := h.accounts.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		h.handleAccountError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.LoginResponse{
		Message: "Login successful",
		UserID:  user.ID,
		Name:    user.DisplayName(),
	})
}

func (h *Handler) handleAccountError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrEmailRegistered):
		writeDetail(w, http.StatusBadRequest, "Email already registered")
	case errors.Is(err, service.ErrInvalidCredentials):
		writeDetail(w, http.StatusUnauthorized, "Invalid email or password")
	default:
		h.logger.ErrorContext(r.Context(), "internal_error", "error", err)
		writeDetail(w, http.StatusInternalServerError, "Internal Server Error")
	}
}
