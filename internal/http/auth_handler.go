package http

import (
	"context"
	"net/http"
	"time"

	"github.com/Allengabo/Yankicks-web/internal/domain"
)

const (
	MsgRegistered   = "User registered successfully!"
	MsgLoginSuccess = "Login successful!"
)

type Authenticator interface {
	Register(ctx context.Context, name, email, password string) (int64, error)
	Login(ctx context.Context, email, password string) (*domain.SessionUser, error)
}

type AuthHandler struct {
	auth    Authenticator
	timeout time.Duration
}

func NewAuthHandler(auth Authenticator, timeout time.Duration) *AuthHandler {
	return &AuthHandler{
		auth:    auth,
		timeout: timeout,
	}
}

type RegisterRequestDTO struct {
	Name     string `json:"name" validate:"required,max=255"`
	Email    string `json:"email" validate:"required,max=255"`
	Password string `json:"password" validate:"required,max=255"`
}

type LoginRequestDTO struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	Message string              `json:"message"`
	User    *domain.SessionUser `json:"user"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req RegisterRequestDTO
	if err := decodeAndValidate(w, r, &req); err != nil {
		handleDomainError(w, r, err)
		return
	}

	if _, err := h.auth.Register(ctx, req.Name, req.Email, req.Password); err != nil {
		handleDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, MessageResponse{Message: MsgRegistered})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	var req LoginRequestDTO
	if err := decodeAndValidate(w, r, &req); err != nil {
		handleDomainError(w, r, err)
		return
	}

	user, err := h.auth.Login(ctx, req.Email, req.Password)
	if err != nil {
		handleDomainError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, LoginResponse{Message: MsgLoginSuccess, User: user})
}
