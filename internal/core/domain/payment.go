package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentStatus represents the lifecycle state of a payment.
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "PENDING"
	PaymentStatusPaid      PaymentStatus = "PAID"
	PaymentStatusFailed    PaymentStatus = "FAILED"
	PaymentStatusCancelled PaymentStatus = "CANCELLED"
	PaymentStatusExpired   PaymentStatus = "EXPIRED"
	PaymentStatusRefunded  PaymentStatus = "REFUNDED"
)

// PayMethod is the payment channel family offered to the buyer.
type PayMethod string

const (
	PayMethodCard           PayMethod = "CARD"
	PayMethodVirtualAccount PayMethod = "VIRTUAL_ACCOUNT"
	PayMethodTransfer       PayMethod = "TRANSFER"
	PayMethodEasyPay        PayMethod = "EASY_PAY"
	PayMethodMobile         PayMethod = "MOBILE"
)

// RequiresProvider reports whether the method needs a sub-provider
// (e.g. EASY_PAY needs KAKAOPAY or TOSSPAY) to resolve a channel key.
func (m PayMethod) RequiresProvider() bool {
	return m == PayMethodEasyPay
}

// GatewayResult captures the gateway's last response for a payment.
type GatewayResult struct {
	Code      *string `json:"code,omitempty"`
	Message   *string `json:"message,omitempty"`
	PgCode    *string `json:"pg_code,omitempty"`
	PgMessage *string `json:"pg_message,omitempty"`
	TxType    *string `json:"tx_type,omitempty"`
	TxID      *string `json:"tx_id,omitempty"`
	Raw       []byte  `json:"-"`
}

// Payment is the persisted unit of work: a priced purchase of a digital
// product awaiting settlement against the external gateway.
//
// The pricing snapshot (OriginalPrice through PromotionApplied) is written once
// at creation and never recomputed; verification compares against it but must
// not overwrite it.
type Payment struct {
	ID     uuid.UUID  `json:"id"`
	UserID *uuid.UUID `json:"user_id,omitempty"` // nil until claimed

	ProductTable string `json:"product_table"`
	ProductID    string `json:"product_id"`
	ProductName  string `json:"product_name"`

	StoreID    string `json:"store_id"`
	ChannelKey string `json:"channel_key"`

	// Pricing snapshot
	OriginalPrice    int64           `json:"original_price"`
	ExchangeRate     decimal.Decimal `json:"exchange_rate"`
	RateProvider     string          `json:"rate_provider"`
	RateTimestamp    time.Time       `json:"rate_timestamp"`
	ConvertedPrice   int64           `json:"converted_price"`
	Quantity         int             `json:"quantity"`
	TotalAmount      int64           `json:"total_amount"`
	Currency         string          `json:"currency"`
	PromotionCode    *string         `json:"promotion_code,omitempty"`
	PromotionApplied bool            `json:"promotion_applied"`

	PayMethod       PayMethod `json:"pay_method"`
	EasyPayProvider *string   `json:"easy_pay_provider,omitempty"`

	Status       PaymentStatus `json:"status"`
	StatusReason string        `json:"status_reason"`

	CreatedAt   time.Time  `json:"created_at"`
	PaidAt      *time.Time `json:"paid_at,omitempty"`
	FailedAt    *time.Time `json:"failed_at,omitempty"`
	CancelledAt *time.Time `json:"cancelled_at,omitempty"`
	RefundedAt  *time.Time `json:"refunded_at,omitempty"`

	CancelledAmount int64         `json:"cancelled_amount"`
	Gateway         GatewayResult `json:"gateway"`

	RedirectURL    *string `json:"redirect_url,omitempty"`
	RequiresWallet bool    `json:"requires_wallet"`
	ReceiverWallet *string `json:"receiver_wallet,omitempty"`
}

// IsTerminal reports whether the payment has left PENDING for good.
func (p *Payment) IsTerminal() bool {
	return p.Status != PaymentStatusPending
}

// IsRefundable reports whether the refund flow may target this payment.
// REFUNDED is reachable only from EXPIRED, CANCELLED or FAILED.
func (p *Payment) IsRefundable() bool {
	switch p.Status {
	case PaymentStatusExpired, PaymentStatusCancelled, PaymentStatusFailed:
		return true
	}
	return false
}

// RemainingAmount is the portion of the total not yet cancelled.
func (p *Payment) RemainingAmount() int64 {
	if p.CancelledAmount >= p.TotalAmount {
		return 0
	}
	return p.TotalAmount - p.CancelledAmount
}
