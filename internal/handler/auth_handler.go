package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"noteboard-server/internal/domain"
	"noteboard-server/internal/middleware"
	"noteboard-server/internal/service"
	"noteboard-server/pkg/response"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
)

type AuthHandler struct {
	authService *service.AuthService
	userService *service.UserService
	validate    *validator.Validate
}

func NewAuthHandler(authService *service.AuthService, userService *service.UserService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		userService: userService,
		validate:    validator.New(),
	}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req domain.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	authResp, err := h.authService.Register(&req)
	if err != nil {
		if errors.Is(err, service.ErrEmailTaken) || errors.Is(err, service.ErrUsernameTaken) {
			response.BadRequest(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to register")
		return
	}

	response.Created(w, authResp)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req domain.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	authResp, err := h.authService.Login(&req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			response.Unauthorized(w, "Invalid username or password")
			return
		}
		response.InternalError(w, "Failed to log in")
		return
	}

	response.Success(w, authResp)
}

// UpdateProfile handles PUT /auth/profile/{id}. Users may only touch their
// own record; the path id must match the authenticated user.
func (h *AuthHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	targetID := mux.Vars(r)["id"]
	userID := middleware.GetUserID(r)

	if targetID == "" {
		response.BadRequest(w, "User ID is required")
		return
	}
	if targetID != userID {
		response.Forbidden(w, "Cannot update another user's profile")
		return
	}

	var req domain.UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	user, err := h.userService.UpdateProfile(userID, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			response.NotFound(w, "User not found")
		case errors.Is(err, service.ErrEmailTaken), errors.Is(err, service.ErrUsernameTaken):
			response.BadRequest(w, err.Error())
		default:
			response.InternalError(w, "Failed to update profile")
		}
		return
	}

	response.Success(w, user)
}
