package postgres

import (
	"context"
	"fmt"

	"digital-payment-service/internal/core/domain"

	"github.com/google/uuid"
)

// WebhookEventRepo implements ports.WebhookEventRepository.
type WebhookEventRepo struct {
	pool Pool
}

// NewWebhookEventRepo creates a new WebhookEventRepo.
func NewWebhookEventRepo(pool Pool) *WebhookEventRepo {
	return &WebhookEventRepo{pool: pool}
}

// Create inserts the audit row at webhook receipt. Deliberately outside any
// atomic scope: the row must exist even if processing fails later.
func (r *WebhookEventRepo) Create(ctx context.Context, e *domain.WebhookEvent) error {
	query := `INSERT INTO webhook_events (id, payment_id, description, payload, created_at)
		VALUES ($1, $2, $3, $4, $5)`

	_, err := r.pool.Exec(ctx, query, e.ID, e.PaymentID, e.Description, e.Payload, e.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert webhook event: %w", err)
	}
	return nil
}

// Finalize stamps the row with its processed marker (and any embedded error).
func (r *WebhookEventRepo) Finalize(ctx context.Context, e *domain.WebhookEvent) error {
	query := `UPDATE webhook_events SET description = $1, payload = $2 WHERE id = $3`

	tag, err := r.pool.Exec(ctx, query, e.Description, e.Payload, e.ID)
	if err != nil {
		return fmt.Errorf("finalize webhook event: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("webhook event not found: %s", e.ID)
	}
	return nil
}

// ListByPayment fetches the audit trail for a payment, newest first.
func (r *WebhookEventRepo) ListByPayment(ctx context.Context, paymentID uuid.UUID) ([]domain.WebhookEvent, error) {
	query := `SELECT id, payment_id, description, payload, created_at
		FROM webhook_events WHERE payment_id = $1 ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, paymentID)
	if err != nil {
		return nil, fmt.Errorf("list webhook events: %w", err)
	}
	defer rows.Close()

	var events []domain.WebhookEvent
	for rows.Next() {
		var e domain.WebhookEvent
		if err := rows.Scan(&e.ID, &e.PaymentID, &e.Description, &e.Payload, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan webhook event row: %w", err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate webhook event rows: %w", err)
	}
	return events, nil
}
