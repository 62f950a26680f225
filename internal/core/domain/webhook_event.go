package domain

import (
	"time"

	"github.com/google/uuid"
)

// Gateway webhook event types.
const (
	EventTransactionPaid             = "Transaction.Paid"
	EventTransactionCancelled        = "Transaction.Cancelled"
	EventTransactionPartialCancelled = "Transaction.PartialCancelled"
	EventTransactionFailed           = "Transaction.Failed"
)

// WebhookEvent is the audit row written for every inbound gateway webhook.
// Description starts as the event type and is stamped once, at the end of
// processing, with a "processed at" marker. Rows are never deleted.
type WebhookEvent struct {
	ID          uuid.UUID `json:"id"`
	PaymentID   uuid.UUID `json:"payment_id"`
	Description string    `json:"description"`
	Payload     string    `json:"payload"`
	CreatedAt   time.Time `json:"created_at"`
}

// StampProcessed marks the event description with its completion time.
func (e *WebhookEvent) StampProcessed(at time.Time) {
	e.Description = e.Description + " | processed at " + at.UTC().Format(time.RFC3339)
}

// EmbedError appends the processing error to the payload for the audit trail.
func (e *WebhookEvent) EmbedError(msg string) {
	e.Payload = e.Payload + "\nerror: " + msg
}
