package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"gate-access-backend/services"
	"gate-access-backend/utils"
)

// LogsController serves the read-only audit views. Logs are append-only;
// there is deliberately no write surface here.
type LogsController struct {
	Access  *services.AccessService
	Luggage *services.LuggageService
}

func NewLogsController(access *services.AccessService, luggage *services.LuggageService) *LogsController {
	return &LogsController{Access: access, Luggage: luggage}
}

// GET /api/logs/access
func (l *LogsController) AccessLogs(ctx *gin.Context) {
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "200"))
	logs, err := l.Access.RecentAccessLogs(limit)
	if err != nil {
		utils.JSONError(ctx, http.StatusInternalServerError, "failed to load access logs")
		return
	}
	utils.JSONSuccess(ctx, http.StatusOK, logs)
}

// GET /api/logs/luggage
func (l *LogsController) LuggageLogs(ctx *gin.Context) {
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "200"))
	logs, err := l.Luggage.RecentScanLogs(limit)
	if err != nil {
		utils.JSONError(ctx, http.StatusInternalServerError, "failed to load luggage logs")
		return
	}
	utils.JSONSuccess(ctx, http.StatusOK, logs)
}
