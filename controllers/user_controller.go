package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"gate-access-backend/middleware"
	"gate-access-backend/services"
	"gate-access-backend/utils"
)

// UserController is the admin-only account management surface.
type UserController struct {
	Users *services.UserService
}

func NewUserController(users *services.UserService) *UserController {
	return &UserController{Users: users}
}

// GET /api/users
func (u *UserController) List(ctx *gin.Context) {
	users, err := u.Users.List()
	if err != nil {
		utils.JSONError(ctx, http.StatusInternalServerError, "failed to list users")
		return
	}
	utils.JSONSuccess(ctx, http.StatusOK, users)
}

type userRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	Password string `json:"password"`
}

// POST /api/users
func (u *UserController) Create(ctx *gin.Context) {
	var req userRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.JSONError(ctx, http.StatusBadRequest, err.Error())
		return
	}
	user, err := u.Users.Create(req.Name, req.Email, req.Role, req.Password)
	switch {
	case errors.Is(err, services.ErrInvalidRole):
		utils.JSONError(ctx, http.StatusBadRequest, "role must be admin, host or guard")
	case errors.Is(err, services.ErrEmailTaken):
		utils.JSONError(ctx, http.StatusConflict, "email already registered")
	case err != nil:
		utils.JSONError(ctx, http.StatusInternalServerError, "failed to create user")
	default:
		utils.JSONSuccess(ctx, http.StatusCreated, user)
	}
}

// PUT /api/users/:id
func (u *UserController) Update(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	var req userRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.JSONError(ctx, http.StatusBadRequest, err.Error())
		return
	}
	user, err := u.Users.Update(id, req.Name, req.Email, req.Role, req.Password)
	switch {
	case errors.Is(err, services.ErrUserNotFound):
		utils.JSONError(ctx, http.StatusNotFound, "user not found")
	case errors.Is(err, services.ErrInvalidRole):
		utils.JSONError(ctx, http.StatusBadRequest, "role must be admin, host or guard")
	case errors.Is(err, services.ErrEmailTaken):
		utils.JSONError(ctx, http.StatusConflict, "email already registered")
	case err != nil:
		utils.JSONError(ctx, http.StatusInternalServerError, "failed to update user")
	default:
		utils.JSONSuccess(ctx, http.StatusOK, user)
	}
}

// DELETE /api/users/:id
func (u *UserController) Delete(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	actor := middleware.CurrentUser(ctx)
	err := u.Users.Delete(id, actor.ID)
	switch {
	case errors.Is(err, services.ErrSelfDeletion):
		utils.JSONError(ctx, http.StatusBadRequest, "cannot delete your own account")
	case errors.Is(err, services.ErrUserNotFound):
		utils.JSONError(ctx, http.StatusNotFound, "user not found")
	case err != nil:
		utils.JSONError(ctx, http.StatusInternalServerError, "failed to delete user")
	default:
		utils.JSONSuccess(ctx, http.StatusOK, gin.H{"deleted": id})
	}
}
