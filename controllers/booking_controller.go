package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"gate-access-backend/middleware"
	"gate-access-backend/services"
	"gate-access-backend/utils"
)

type BookingController struct {
	Bookings *services.BookingService
}

func NewBookingController(bookings *services.BookingService) *BookingController {
	return &BookingController{Bookings: bookings}
}

type createBookingRequest struct {
	GuestName    string `json:"guest_name"`
	NationalID   string `json:"national_id"`
	Phone        string `json:"phone"`
	Email        string `json:"email"`
	RoomID       uint   `json:"room_id"`
	CheckIn      string `json:"check_in"`
	CheckOut     string `json:"check_out"`
	GuestsCount  int    `json:"guests_count"`
	OwnsVehicle  bool   `json:"owns_vehicle"`
	VehiclePlate string `json:"vehicle_plate"`
	SendEmail    bool   `json:"send_email"`
}

// POST /api/bookings
func (b *BookingController) Create(ctx *gin.Context) {
	var req createBookingRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.JSONError(ctx, http.StatusBadRequest, err.Error())
		return
	}
	if req.GuestName == "" || req.NationalID == "" || req.RoomID == 0 {
		utils.JSONError(ctx, http.StatusBadRequest, "guest_name, national_id and room_id are required")
		return
	}

	checkIn, err := services.ParseLocalDateTime(req.CheckIn)
	if err != nil {
		utils.JSONError(ctx, http.StatusBadRequest, "invalid check_in")
		return
	}
	checkOut, err := services.ParseLocalDateTime(req.CheckOut)
	if err != nil {
		utils.JSONError(ctx, http.StatusBadRequest, "invalid check_out")
		return
	}
	if !checkOut.After(checkIn) {
		utils.JSONError(ctx, http.StatusBadRequest, "check_out must be after check_in")
		return
	}

	booking, err := b.Bookings.Create(currentUserID(ctx), services.CreateBookingInput{
		GuestName:    req.GuestName,
		NationalID:   req.NationalID,
		Phone:        req.Phone,
		Email:        req.Email,
		RoomID:       req.RoomID,
		CheckIn:      checkIn,
		CheckOut:     checkOut,
		GuestsCount:  req.GuestsCount,
		OwnsVehicle:  req.OwnsVehicle,
		VehiclePlate: req.VehiclePlate,
		SendEmail:    req.SendEmail,
	})
	switch {
	case errors.Is(err, services.ErrInvalidRoom):
		utils.JSONError(ctx, http.StatusBadRequest, "room does not exist or is not yours")
	case errors.Is(err, services.ErrPlateRequired):
		utils.JSONError(ctx, http.StatusBadRequest, "vehicle plate is required when owns_vehicle is set")
	case err != nil:
		utils.JSONError(ctx, http.StatusInternalServerError, "failed to create booking")
	default:
		utils.JSONSuccess(ctx, http.StatusCreated, booking)
	}
}

// GET /api/bookings/calendar?start=YYYY-MM-DD&end=YYYY-MM-DD
func (b *BookingController) Calendar(ctx *gin.Context) {
	actor := middleware.CurrentUser(ctx)

	now := services.LocalNow()
	start := now.AddDate(0, -1, 0)
	end := now.AddDate(0, 2, 0)
	if q := ctx.Query("start"); q != "" {
		t, err := services.ParseLocalDateTime(q)
		if err != nil {
			utils.JSONError(ctx, http.StatusBadRequest, "invalid start")
			return
		}
		start = t
	}
	if q := ctx.Query("end"); q != "" {
		t, err := services.ParseLocalDateTime(q)
		if err != nil {
			utils.JSONError(ctx, http.StatusBadRequest, "invalid end")
			return
		}
		// Whole-day end bound.
		end = t.Add(24*time.Hour - time.Second)
	}

	events, err := b.Bookings.CalendarRange(actor, start, end)
	if err != nil {
		utils.JSONError(ctx, http.StatusInternalServerError, "failed to load calendar")
		return
	}
	utils.JSONSuccess(ctx, http.StatusOK, events)
}

// GET /api/bookings/:id
func (b *BookingController) Detail(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	booking, err := b.Bookings.GetByID(id)
	if errors.Is(err, services.ErrBookingNotFound) {
		utils.JSONError(ctx, http.StatusNotFound, "booking not found")
		return
	}
	if err != nil {
		utils.JSONError(ctx, http.StatusInternalServerError, "failed to load booking")
		return
	}
	utils.JSONSuccess(ctx, http.StatusOK, booking)
}

// POST /api/bookings/:id/cancel
func (b *BookingController) Cancel(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	booking, err := b.Bookings.Cancel(id)
	if errors.Is(err, services.ErrBookingNotFound) {
		utils.JSONError(ctx, http.StatusNotFound, "booking not found")
		return
	}
	if err != nil {
		utils.JSONError(ctx, http.StatusInternalServerError, "failed to cancel booking")
		return
	}
	utils.JSONSuccess(ctx, http.StatusOK, booking)
}

// GET /api/bookings/:id/qr.png
func (b *BookingController) QRImage(ctx *gin.Context) {
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	booking, err := b.Bookings.GetByID(id)
	if errors.Is(err, services.ErrBookingNotFound) {
		utils.JSONError(ctx, http.StatusNotFound, "booking not found")
		return
	}
	if err != nil {
		utils.JSONError(ctx, http.StatusInternalServerError, "failed to load booking")
		return
	}
	if booking.QRToken == nil || *booking.QRToken == "" {
		utils.JSONError(ctx, http.StatusNotFound, "booking has no QR token")
		return
	}
	png, err := utils.QRPNG(*booking.QRToken, 0)
	if err != nil {
		utils.JSONError(ctx, http.StatusInternalServerError, "failed to render QR")
		return
	}
	ctx.Data(http.StatusOK, "image/png", png)
}
