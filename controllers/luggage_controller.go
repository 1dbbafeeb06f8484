package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"gate-access-backend/models"
	"gate-access-backend/services"
	"gate-access-backend/utils"
)

// LuggageController is the host-facing luggage surface: register items, hold
// or release them, and inspect their scan history. The guard-facing exit scan
// lives on GuardController.
type LuggageController struct {
	Luggage *services.LuggageService
}

func NewLuggageController(luggage *services.LuggageService) *LuggageController {
	return &LuggageController{Luggage: luggage}
}

type registerLuggageRequest struct {
	BookingID   uint   `json:"booking_id"`
	Label       string `json:"label"`
	Size        string `json:"size"`
	PhotoBase64 string `json:"photo_base64"`
}

// POST /api/luggage
func (l *LuggageController) Register(ctx *gin.Context) {
	var req registerLuggageRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.JSONError(ctx, http.StatusBadRequest, err.Error())
		return
	}
	if req.BookingID == 0 || req.Label == "" {
		utils.JSONError(ctx, http.StatusBadRequest, "booking_id and label are required")
		return
	}

	photoPath := ""
	if req.PhotoBase64 != "" {
		path, err := services.SaveBase64Image(req.PhotoBase64, "luggage")
		if err != nil {
			utils.JSONError(ctx, http.StatusBadRequest, "invalid photo payload")
			return
		}
		photoPath = path
	}

	lug, err := l.Luggage.Register(req.BookingID, req.Label, req.Size, photoPath)
	if err != nil {
		utils.JSONError(ctx, http.StatusInternalServerError, "failed to register luggage")
		return
	}
	utils.JSONSuccess(ctx, http.StatusCreated, lug)
}

// GET /api/luggage
func (l *LuggageController) List(ctx *gin.Context) {
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "200"))
	items, err := l.Luggage.List(limit)
	if err != nil {
		utils.JSONError(ctx, http.StatusInternalServerError, "failed to list luggage")
		return
	}
	utils.JSONSuccess(ctx, http.StatusOK, items)
}

// GET /api/luggage/:id
func (l *LuggageController) Detail(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	lug, scans, err := l.Luggage.GetByID(id)
	if errors.Is(err, services.ErrLuggageNotFound) {
		utils.JSONError(ctx, http.StatusNotFound, "luggage not found")
		return
	}
	if err != nil {
		utils.JSONError(ctx, http.StatusInternalServerError, "failed to load luggage")
		return
	}
	utils.JSONSuccess(ctx, http.StatusOK, gin.H{"luggage": lug, "scans": scans})
}

// POST /api/luggage/:id/block
func (l *LuggageController) Block(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	lug, err := l.Luggage.Block(id)
	l.statusResponse(ctx, lug, err)
}

// POST /api/luggage/:id/unblock
func (l *LuggageController) Unblock(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	lug, err := l.Luggage.Unblock(id)
	l.statusResponse(ctx, lug, err)
}

func (l *LuggageController) statusResponse(ctx *gin.Context, lug *models.Luggage, err error) {
	switch {
	case errors.Is(err, services.ErrLuggageNotFound):
		utils.JSONError(ctx, http.StatusNotFound, "luggage not found")
	case errors.Is(err, services.ErrLuggageExited):
		utils.JSONError(ctx, http.StatusConflict, "item has already exited")
	case err != nil:
		utils.JSONError(ctx, http.StatusInternalServerError, "failed to update luggage")
	default:
		utils.JSONSuccess(ctx, http.StatusOK, lug)
	}
}

// DELETE /api/luggage/:id
func (l *LuggageController) Delete(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	if err := l.Luggage.Delete(id); err != nil {
		if errors.Is(err, services.ErrLuggageNotFound) {
			utils.JSONError(ctx, http.StatusNotFound, "luggage not found")
			return
		}
		utils.JSONError(ctx, http.StatusInternalServerError, "failed to delete luggage")
		return
	}
	utils.JSONSuccess(ctx, http.StatusOK, gin.H{"deleted": id})
}

// GET /api/luggage/:id/qr.png
func (l *LuggageController) QRImage(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	lug, _, err := l.Luggage.GetByID(id)
	if errors.Is(err, services.ErrLuggageNotFound) {
		utils.JSONError(ctx, http.StatusNotFound, "luggage not found")
		return
	}
	if err != nil {
		utils.JSONError(ctx, http.StatusInternalServerError, "failed to load luggage")
		return
	}
	png, err := utils.QRPNG(lug.QRToken, 0)
	if err != nil {
		utils.JSONError(ctx, http.StatusInternalServerError, "failed to render QR")
		return
	}
	ctx.Data(http.StatusOK, "image/png", png)
}
