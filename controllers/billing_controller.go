package controllers

import (
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"gate-access-backend/middleware"
	"gate-access-backend/services"
	"gate-access-backend/utils"
)

type BillingController struct {
	Payments *services.PaymentService
}

func NewBillingController(payments *services.PaymentService) *BillingController {
	return &BillingController{Payments: payments}
}

type checkoutRequest struct {
	Plan  string `json:"plan"`
	Phone string `json:"phone"`
}

// POST /api/billing/checkout
func (b *BillingController) Checkout(ctx *gin.Context) {
	var req checkoutRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.JSONError(ctx, http.StatusBadRequest, err.Error())
		return
	}
	user := middleware.CurrentUser(ctx)

	payment, stk, err := b.Payments.InitiateCheckout(user, req.Plan, req.Phone)
	switch {
	case errors.Is(err, services.ErrUnknownPlan):
		utils.JSONError(ctx, http.StatusBadRequest, "plan must be basic or premium")
	case errors.Is(err, services.ErrBadMSISDN):
		utils.JSONError(ctx, http.StatusBadRequest, "phone must be in 2547XXXXXXXX format")
	case err != nil:
		log.Printf("[MPESA] checkout failed user=%d: %v", user.ID, err)
		utils.JSONError(ctx, http.StatusBadGateway, "payment provider request failed")
	default:
		utils.JSONSuccess(ctx, http.StatusOK, gin.H{
			"payment_id":          payment.ID,
			"checkout_request_id": payment.CheckoutRequestID,
			"customer_message":    stk.CustomerMessage,
		})
	}
}

// POST /api/billing/mpesa/callback
//
// Unauthenticated: Daraja calls this directly. Always answers the provider's
// expected {ResultCode: 0} acknowledgement so it stops retrying; failures are
// logged, not surfaced.
func (b *BillingController) MpesaCallback(ctx *gin.Context) {
	body, err := io.ReadAll(ctx.Request.Body)
	if err != nil {
		ctx.JSON(http.StatusOK, gin.H{"ResultCode": 0, "ResultDesc": "Accepted"})
		return
	}
	if err := b.Payments.HandleCallback(body); err != nil {
		log.Printf("[MPESA] callback not applied: %v", err)
	}
	ctx.JSON(http.StatusOK, gin.H{"ResultCode": 0, "ResultDesc": "Accepted"})
}

// GET /api/billing/plan
func (b *BillingController) MyPlan(ctx *gin.Context) {
	user := middleware.CurrentUser(ctx)
	latest, err := b.Payments.LatestPaidForUser(user.ID)
	if err != nil {
		utils.JSONError(ctx, http.StatusInternalServerError, "failed to load plan")
		return
	}
	resp := gin.H{"plan": user.Plan}
	if latest != nil {
		resp["paid_at"] = latest.UpdatedAt
		resp["receipt"] = latest.ReceiptNumber
	}
	utils.JSONSuccess(ctx, http.StatusOK, resp)
}

// GET /api/billing/payments
func (b *BillingController) MyPayments(ctx *gin.Context) {
	user := middleware.CurrentUser(ctx)
	payments, err := b.Payments.ListForUser(user.ID)
	if err != nil {
		utils.JSONError(ctx, http.StatusInternalServerError, "failed to list payments")
		return
	}
	utils.JSONSuccess(ctx, http.StatusOK, payments)
}
