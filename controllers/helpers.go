package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"gate-access-backend/middleware"
	"gate-access-backend/utils"
)

func pathID(ctx *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(ctx.Param(name), 10, 64)
	if err != nil || id == 0 {
		utils.JSONError(ctx, http.StatusBadRequest, "invalid id")
		return 0, false
	}
	return uint(id), true
}

func currentUserID(ctx *gin.Context) uint {
	if user := middleware.CurrentUser(ctx); user != nil {
		return user.ID
	}
	return 0
}
