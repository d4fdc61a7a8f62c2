package handler

import (
	"errors"
	"net/http"

	"github.com/efreitasn/orderdesk/internal/domain"
	"github.com/efreitasn/orderdesk/internal/service"
)

// UserHandler handles HTTP requests for registration and login.
type UserHandler struct {
	userSvc *service.UserService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(userSvc *service.UserService) *UserHandler {
	return &UserHandler{userSvc: userSvc}
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerResponse struct {
	Message string `json:"message"`
	UserID  string `json:"userId"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
}

// Register handles POST /register.
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := ParseJSON(w, r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	user, err := h.userSvc.Register(r.Context(), service.RegisterRequest{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		mapUserError(w, err)
		return
	}

	WriteJSON(w, http.StatusCreated, registerResponse{
		Message: "User registered successfully",
		UserID:  user.UserID,
	})
}

// Login handles POST /login.
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := ParseJSON(w, r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	if req.Email == "" || req.Password == "" {
		WriteError(w, http.StatusBadRequest, "validation_error", "email and password are required")
		return
	}

	token, err := h.userSvc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		mapUserError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, loginResponse{Token: token})
}

// Logout handles POST /logout.
func (h *UserHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.userSvc.Logout(r.Context(), tokenFrom(r.Context())); err != nil {
		mapUserError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// mapUserError maps domain errors to HTTP responses for user endpoints.
func mapUserError(w http.ResponseWriter, err error) {
	var validationErr *domain.ValidationError
	if errors.As(err, &validationErr) {
		WriteError(w, http.StatusBadRequest, "validation_error", validationErr.Message)
		return
	}

	switch {
	case errors.Is(err, domain.ErrUserAlreadyExists):
		WriteError(w, http.StatusConflict, "user_already_exists", "A user with this email already exists")
	case errors.Is(err, domain.ErrUserNotFound):
		WriteError(w, http.StatusNotFound, "user_not_found", "User not found")
	case errors.Is(err, domain.ErrIncorrectPassword):
		WriteError(w, http.StatusUnauthorized, "incorrect_password", "Incorrect password")
	default:
		WriteError(w, http.StatusInternalServerError, "internal_error", "An unexpected error occurred")
	}
}
