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

// AdminHandler serves the /api/admin/users surface. Routes are mounted
// behind the admin role middleware.
type AdminHandler struct {
	userService *service.UserService
	validate    *validator.Validate
}

func NewAdminHandler(userService *service.UserService) *AdminHandler {
	return &AdminHandler{
		userService: userService,
		validate:    validator.New(),
	}
}

func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.userService.List()
	if err != nil {
		response.InternalError(w, "Failed to list users")
		return
	}

	response.Success(w, users)
}

func (h *AdminHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	user, err := h.userService.Create(&req)
	if err != nil {
		if errors.Is(err, service.ErrEmailTaken) || errors.Is(err, service.ErrUsernameTaken) {
			response.BadRequest(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to create user")
		return
	}

	response.Created(w, user)
}

func (h *AdminHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if id == "" {
		response.BadRequest(w, "User ID is required")
		return
	}

	var req domain.UpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	user, err := h.userService.Update(id, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			response.NotFound(w, "User not found")
		case errors.Is(err, service.ErrEmailTaken), errors.Is(err, service.ErrUsernameTaken):
			response.BadRequest(w, err.Error())
		default:
			response.InternalError(w, "Failed to update user")
		}
		return
	}

	response.Success(w, user)
}

func (h *AdminHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if id == "" {
		response.BadRequest(w, "User ID is required")
		return
	}

	actorID := middleware.GetUserID(r)

	if err := h.userService.Delete(actorID, id); err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			response.NotFound(w, "User not found")
		case errors.Is(err, service.ErrSelfDelete), errors.Is(err, service.ErrLastAdmin):
			response.BadRequest(w, err.Error())
		default:
			response.InternalError(w, "Failed to delete user")
		}
		return
	}

	response.Success(w, map[string]string{"message": "User deleted successfully"})
}
