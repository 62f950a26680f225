package handler

import (
	"context"

	"digital-payment-service/internal/adapter/http/dto"
	"digital-payment-service/internal/adapter/http/middleware"
	"digital-payment-service/internal/core/domain"
	"digital-payment-service/internal/core/ports"
	"digital-payment-service/pkg/apperror"
	"digital-payment-service/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// PaymentHandler handles payment-related endpoints.
type PaymentHandler struct {
	paymentSvc ports.PaymentService
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(paymentSvc ports.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentSvc: paymentSvc}
}

// userFrom returns the authenticated user, or nil for anonymous requests.
func userFrom(c *gin.Context) *uuid.UUID {
	if v, ok := c.Get(middleware.CtxUserID); ok {
		if id, ok := v.(uuid.UUID); ok {
			return &id
		}
	}
	return nil
}

// requireUser returns the authenticated user or writes a 403.
func requireUser(c *gin.Context) (uuid.UUID, bool) {
	if id := userFrom(c); id != nil {
		return *id, true
	}
	response.Error(c, apperror.ErrUnauthorized())
	return uuid.Nil, false
}

func paymentID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.ErrInvalidInput("invalid payment id"))
		return uuid.Nil, false
	}
	return id, true
}

// Create handles POST /api/v1/payments.
func (h *PaymentHandler) Create(c *gin.Context) {
	var req dto.CreatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.ErrInvalidInput(err.Error()))
		return
	}
	dto.SanitizeStruct(&req)

	p, err := h.paymentSvc.Create(c.Request.Context(), ports.CreatePaymentInput{
		UserID:          userFrom(c),
		ProductTable:    req.ProductTable,
		ProductID:       req.ProductID,
		Quantity:        req.Quantity,
		Currency:        req.Currency,
		PayMethod:       domain.PayMethod(req.PayMethod),
		EasyPayProvider: req.EasyPayProvider,
		PromotionCode:   req.PromotionCode,
		RedirectURL:     req.RedirectURL,
		RequiresWallet:  req.RequiresWallet,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.FromPayment(p))
}

// Verify handles POST /api/v1/payments/:id/verify.
func (h *PaymentHandler) Verify(c *gin.Context) {
	id, ok := paymentID(c)
	if !ok {
		return
	}
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req dto.VerifyPaymentRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, apperror.ErrInvalidInput(err.Error()))
			return
		}
		dto.SanitizeStruct(&req)
	}

	p, err := h.paymentSvc.Verify(c.Request.Context(), id, userID, req.WalletAddress)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.FromPayment(p))
}

// Cancel handles POST /api/v1/payments/:id/cancel.
func (h *PaymentHandler) Cancel(c *gin.Context) {
	h.finalize(c, h.paymentSvc.Cancel)
}

// Refund handles POST /api/v1/payments/:id/refund.
func (h *PaymentHandler) Refund(c *gin.Context) {
	h.finalize(c, h.paymentSvc.Refund)
}

// finalize is the shared body of Cancel and Refund. A successful cancellation
// still surfaces as a structured PAYMENT_CANCELLED error from the service.
func (h *PaymentHandler) finalize(c *gin.Context, op func(ctx context.Context, in ports.CancelPaymentInput) (*domain.Payment, error)) {
	id, ok := paymentID(c)
	if !ok {
		return
	}
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	var req dto.CancelPaymentRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, apperror.ErrInvalidInput(err.Error()))
			return
		}
		dto.SanitizeStruct(&req)
	}

	p, err := op(c.Request.Context(), ports.CancelPaymentInput{
		PaymentID:  id,
		UserID:     userID,
		Reason:     req.Reason,
		Amount:     req.Amount,
		Percentage: req.Percentage,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.FromPayment(p))
}

// Get handles GET /api/v1/payments/:id.
func (h *PaymentHandler) Get(c *gin.Context) {
	id, ok := paymentID(c)
	if !ok {
		return
	}

	p, err := h.paymentSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.FromPayment(p))
}

// List handles GET /api/v1/payments.
func (h *PaymentHandler) List(c *gin.Context) {
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	payments, err := h.paymentSvc.ListByUser(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.FromPayments(payments))
}

// Claim handles PUT /api/v1/payments/:id/user.
func (h *PaymentHandler) Claim(c *gin.Context) {
	id, ok := paymentID(c)
	if !ok {
		return
	}
	userID, ok := requireUser(c)
	if !ok {
		return
	}

	if err := h.paymentSvc.ClaimUser(c.Request.Context(), id, userID); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, gin.H{"payment_id": id.String(), "user_id": userID.String()})
}
