package controllers

import (
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"gate-access-backend/middleware"
	"gate-access-backend/services"
	"gate-access-backend/utils"
)

// GuardController exposes the checkpoint scan endpoints. Every request that
// reaches the decision services produces exactly one audit row; transport and
// auth failures short-circuit before any decision is made and are not logged
// as scans.
type GuardController struct {
	Access   *services.AccessService
	Luggage  *services.LuggageService
	Bookings *services.BookingService
	OCR      *services.OCRClient
}

func NewGuardController(access *services.AccessService, luggage *services.LuggageService, bookings *services.BookingService, ocr *services.OCRClient) *GuardController {
	return &GuardController{Access: access, Luggage: luggage, Bookings: bookings, OCR: ocr}
}

type personScanRequest struct {
	CheckpointID uint   `json:"checkpoint_id"`
	Image        string `json:"image"`
	DetectedID   string `json:"detected_id"`
}

func scanJSON(ctx *gin.Context, result *services.ScanResult) {
	ctx.JSON(http.StatusOK, gin.H{
		"ok":       true,
		"decision": result.Decision,
		"reason":   result.Reason,
		"message":  result.Message,
		"info":     result.Info,
	})
}

// POST /api/guard/scan
//
// The kiosk sends either a pre-extracted ID (client-side OCR) or a raw ID
// photo. With a photo the image is stored first, then run through OCR; OCR or
// storage faults are infrastructure errors, not deny decisions.
func (g *GuardController) ScanPerson(ctx *gin.Context) {
	var req personScanRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.JSONError(ctx, http.StatusBadRequest, err.Error())
		return
	}
	if req.CheckpointID == 0 {
		utils.JSONError(ctx, http.StatusBadRequest, "checkpoint_id is required")
		return
	}

	guard := middleware.CurrentUser(ctx)
	in := services.PersonScanInput{DetectedID: strings.TrimSpace(req.DetectedID)}

	if in.DetectedID == "" && req.Image != "" {
		path, err := services.SaveBase64Image(req.Image, "scans")
		if err != nil {
			utils.JSONError(ctx, http.StatusInternalServerError, "failed to store scan image")
			return
		}
		in.ImagePath = path

		text, err := g.OCR.RecognizeText(req.Image)
		if err != nil {
			log.Printf("[SCAN] ocr failed: %v", err)
			utils.JSONError(ctx, http.StatusBadGateway, "OCR service unavailable")
			return
		}
		in.OCRText = text
	}

	result, err := g.Access.ScanPerson(guard.ID, req.CheckpointID, in, g.Access.Now())
	if err != nil {
		utils.JSONError(ctx, http.StatusInternalServerError, "scan failed")
		return
	}
	scanJSON(ctx, result)
}

type qrScanRequest struct {
	CheckpointID uint   `json:"checkpoint_id"`
	Token        string `json:"token"`
}

// POST /api/guard/scan-qr
func (g *GuardController) ScanBookingQR(ctx *gin.Context) {
	var req qrScanRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.JSONError(ctx, http.StatusBadRequest, err.Error())
		return
	}
	if req.CheckpointID == 0 {
		utils.JSONError(ctx, http.StatusBadRequest, "checkpoint_id is required")
		return
	}

	guard := middleware.CurrentUser(ctx)
	result, err := g.Access.ScanBookingQR(guard.ID, req.CheckpointID, strings.TrimSpace(req.Token), g.Access.Now())
	if err != nil {
		utils.JSONError(ctx, http.StatusInternalServerError, "scan failed")
		return
	}
	scanJSON(ctx, result)
}

// POST /api/guard/scan-luggage
func (g *GuardController) ScanLuggage(ctx *gin.Context) {
	var req qrScanRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.JSONError(ctx, http.StatusBadRequest, err.Error())
		return
	}
	if req.CheckpointID == 0 {
		utils.JSONError(ctx, http.StatusBadRequest, "checkpoint_id is required")
		return
	}

	guard := middleware.CurrentUser(ctx)
	result, err := g.Luggage.Scan(guard.ID, req.CheckpointID, strings.TrimSpace(req.Token), g.Luggage.Now())
	if err != nil {
		utils.JSONError(ctx, http.StatusInternalServerError, "scan failed")
		return
	}
	ctx.JSON(http.StatusOK, gin.H{
		"ok":       true,
		"decision": result.Decision,
		"reason":   result.Reason,
		"message":  result.Message,
		"info":     result.Info,
	})
}

// GET /api/guard/verify-qr?token=... is a dry lookup for kiosk preview; it
// makes no decision and writes no log.
func (g *GuardController) VerifyBookingQR(ctx *gin.Context) {
	token := strings.TrimSpace(ctx.Query("token"))
	if token == "" {
		utils.JSONError(ctx, http.StatusBadRequest, "token is required")
		return
	}
	booking, err := g.Bookings.GetByQRToken(token)
	if err != nil {
		utils.JSONError(ctx, http.StatusNotFound, "QR not recognized")
		return
	}
	utils.JSONSuccess(ctx, http.StatusOK, gin.H{
		"booking_id": booking.ID,
		"guest_name": booking.Guest.FullName,
		"status":     booking.Status,
		"active":     booking.ActiveAt(g.Access.Now()),
	})
}
