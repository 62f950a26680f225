package dto

import (
	"time"

	"digital-payment-service/internal/core/domain"

	"github.com/shopspring/decimal"
)

// CreatePaymentRequest is the request body for payment creation.
type CreatePaymentRequest struct {
	ProductTable    string  `json:"product_table" binding:"required,safe_id,max=64"`
	ProductID       string  `json:"product_id" binding:"required,safe_id,max=64"`
	Quantity        int     `json:"quantity" binding:"required,gt=0"`
	Currency        string  `json:"currency" binding:"required,len=3"`
	PayMethod       string  `json:"pay_method" binding:"required,max=32"`
	EasyPayProvider *string `json:"easy_pay_provider,omitempty"`
	PromotionCode   *string `json:"promotion_code,omitempty"`
	RedirectURL     *string `json:"redirect_url,omitempty" binding:"omitempty,safe_url"`
	RequiresWallet  bool    `json:"requires_wallet"`
}

// VerifyPaymentRequest is the request body for payment verification.
type VerifyPaymentRequest struct {
	WalletAddress *string `json:"wallet_address,omitempty" binding:"omitempty,max=128"`
}

// CancelPaymentRequest is the request body for cancellation and refund.
// Amount and Percentage are mutually exclusive; when both are absent the
// remaining balance is cancelled.
type CancelPaymentRequest struct {
	Reason     string           `json:"reason,omitempty" binding:"max=256"`
	Amount     *int64           `json:"amount,omitempty" binding:"omitempty,gt=0"`
	Percentage *decimal.Decimal `json:"percentage,omitempty"`
}

// GatewayResultResponse exposes the gateway's last response for a payment.
type GatewayResultResponse struct {
	Code      *string `json:"code,omitempty"`
	Message   *string `json:"message,omitempty"`
	PgCode    *string `json:"pg_code,omitempty"`
	PgMessage *string `json:"pg_message,omitempty"`
	TxType    *string `json:"tx_type,omitempty"`
	TxID      *string `json:"tx_id,omitempty"`
}

// PaymentResponse is the response body for a single payment.
type PaymentResponse struct {
	ID               string                `json:"id"`
	UserID           *string               `json:"user_id,omitempty"`
	ProductTable     string                `json:"product_table"`
	ProductID        string                `json:"product_id"`
	ProductName      string                `json:"product_name"`
	OriginalPrice    int64                 `json:"original_price"`
	ExchangeRate     string                `json:"exchange_rate"`
	RateProvider     string                `json:"rate_provider"`
	RateTimestamp    string                `json:"rate_timestamp"`
	ConvertedPrice   int64                 `json:"converted_price"`
	Quantity         int                   `json:"quantity"`
	TotalAmount      int64                 `json:"total_amount"`
	Currency         string                `json:"currency"`
	PromotionCode    *string               `json:"promotion_code,omitempty"`
	PromotionApplied bool                  `json:"promotion_applied"`
	PayMethod        string                `json:"pay_method"`
	EasyPayProvider  *string               `json:"easy_pay_provider,omitempty"`
	Status           string                `json:"status"`
	StatusReason     string                `json:"status_reason"`
	CreatedAt        string                `json:"created_at"`
	PaidAt           *string               `json:"paid_at,omitempty"`
	FailedAt         *string               `json:"failed_at,omitempty"`
	CancelledAt      *string               `json:"cancelled_at,omitempty"`
	RefundedAt       *string               `json:"refunded_at,omitempty"`
	CancelledAmount  int64                 `json:"cancelled_amount"`
	Gateway          GatewayResultResponse `json:"gateway"`
	RedirectURL      *string               `json:"redirect_url,omitempty"`
	RequiresWallet   bool                  `json:"requires_wallet"`
	ReceiverWallet   *string               `json:"receiver_wallet,omitempty"`
}

// PaymentListResponse wraps a user's payment history.
type PaymentListResponse struct {
	Items []PaymentResponse `json:"items"`
	Count int               `json:"count"`
}

// FromPayment converts a domain payment to its response DTO.
func FromPayment(p *domain.Payment) PaymentResponse {
	resp := PaymentResponse{
		ID:               p.ID.String(),
		ProductTable:     p.ProductTable,
		ProductID:        p.ProductID,
		ProductName:      p.ProductName,
		OriginalPrice:    p.OriginalPrice,
		ExchangeRate:     p.ExchangeRate.String(),
		RateProvider:     p.RateProvider,
		RateTimestamp:    formatTime(p.RateTimestamp),
		ConvertedPrice:   p.ConvertedPrice,
		Quantity:         p.Quantity,
		TotalAmount:      p.TotalAmount,
		Currency:         p.Currency,
		PromotionCode:    p.PromotionCode,
		PromotionApplied: p.PromotionApplied,
		PayMethod:        string(p.PayMethod),
		EasyPayProvider:  p.EasyPayProvider,
		Status:           string(p.Status),
		StatusReason:     p.StatusReason,
		CreatedAt:        formatTime(p.CreatedAt),
		PaidAt:           formatTimePtr(p.PaidAt),
		FailedAt:         formatTimePtr(p.FailedAt),
		CancelledAt:      formatTimePtr(p.CancelledAt),
		RefundedAt:       formatTimePtr(p.RefundedAt),
		CancelledAmount:  p.CancelledAmount,
		Gateway: GatewayResultResponse{
			Code:      p.Gateway.Code,
			Message:   p.Gateway.Message,
			PgCode:    p.Gateway.PgCode,
			PgMessage: p.Gateway.PgMessage,
			TxType:    p.Gateway.TxType,
			TxID:      p.Gateway.TxID,
		},
		RedirectURL:    p.RedirectURL,
		RequiresWallet: p.RequiresWallet,
		ReceiverWallet: p.ReceiverWallet,
	}
	if p.UserID != nil {
		s := p.UserID.String()
		resp.UserID = &s
	}
	return resp
}

// FromPayments converts a payment slice to the list response.
func FromPayments(payments []domain.Payment) PaymentListResponse {
	items := make([]PaymentResponse, 0, len(payments))
	for i := range payments {
		items = append(items, FromPayment(&payments[i]))
	}
	return PaymentListResponse{Items: items, Count: len(items)}
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := formatTime(*t)
	return &s
}
