package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"gate-access-backend/middleware"
	"gate-access-backend/services"
	"gate-access-backend/utils"
)

type AuthController struct {
	Users *services.UserService
}

func NewAuthController(users *services.UserService) *AuthController {
	return &AuthController{Users: users}
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// POST /api/auth/login
func (a *AuthController) Login(ctx *gin.Context) {
	var req loginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.JSONError(ctx, http.StatusBadRequest, "email and password are required")
		return
	}

	user, err := a.Users.Authenticate(req.Email, req.Password)
	if errors.Is(err, services.ErrBadCredentials) {
		utils.JSONError(ctx, http.StatusUnauthorized, "invalid email or password")
		return
	}
	if err != nil {
		utils.JSONError(ctx, http.StatusInternalServerError, "login failed")
		return
	}

	token, err := middleware.IssueToken(user)
	if err != nil {
		utils.JSONError(ctx, http.StatusInternalServerError, "token signing failed")
		return
	}

	utils.JSONSuccess(ctx, http.StatusOK, gin.H{
		"token": token,
		"user": gin.H{
			"id":    user.ID,
			"name":  user.Name,
			"email": user.Email,
			"role":  user.Role,
			"plan":  user.Plan,
		},
	})
}

// GET /api/auth/me
func (a *AuthController) Me(ctx *gin.Context) {
	user := middleware.CurrentUser(ctx)
	if user == nil {
		utils.JSONError(ctx, http.StatusUnauthorized, "authentication required")
		return
	}
	utils.JSONSuccess(ctx, http.StatusOK, gin.H{
		"id":    user.ID,
		"name":  user.Name,
		"email": user.Email,
		"role":  user.Role,
		"plan":  user.Plan,
	})
}
