package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"digital-payment-service/internal/core/domain"
	"digital-payment-service/internal/core/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// execer is satisfied by both Pool and pgx.Tx so status updates can run
// inside or outside an atomic scope.
type execer interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

// PaymentRepo implements ports.PaymentRepository.
type PaymentRepo struct {
	pool Pool
}

// NewPaymentRepo creates a new PaymentRepo.
func NewPaymentRepo(pool Pool) *PaymentRepo {
	return &PaymentRepo{pool: pool}
}

const paymentColumns = `id, user_id, product_table, product_id, product_name, store_id, channel_key,
	original_price, exchange_rate, rate_provider, rate_timestamp, converted_price,
	quantity, total_amount, currency, promotion_code, promotion_applied,
	pay_method, easy_pay_provider, status, status_reason,
	created_at, paid_at, failed_at, cancelled_at, refunded_at, cancelled_amount,
	gateway_code, gateway_message, pg_code, pg_message, gateway_tx_type, gateway_tx_id, gateway_raw,
	redirect_url, requires_wallet, receiver_wallet`

// Create inserts a new payment within a database transaction.
func (r *PaymentRepo) Create(ctx context.Context, tx pgx.Tx, p *domain.Payment) error {
	query := `INSERT INTO payments (` + paymentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19,
			$20, $21, $22, $23, $24, $25, $26, $27, $28, $29, $30, $31, $32, $33, $34, $35, $36, $37)`

	_, err := tx.Exec(ctx, query,
		p.ID, p.UserID, p.ProductTable, p.ProductID, p.ProductName, p.StoreID, p.ChannelKey,
		p.OriginalPrice, p.ExchangeRate, p.RateProvider, p.RateTimestamp, p.ConvertedPrice,
		p.Quantity, p.TotalAmount, p.Currency, p.PromotionCode, p.PromotionApplied,
		p.PayMethod, p.EasyPayProvider, p.Status, p.StatusReason,
		p.CreatedAt, p.PaidAt, p.FailedAt, p.CancelledAt, p.RefundedAt, p.CancelledAmount,
		p.Gateway.Code, p.Gateway.Message, p.Gateway.PgCode, p.Gateway.PgMessage,
		p.Gateway.TxType, p.Gateway.TxID, p.Gateway.Raw,
		p.RedirectURL, p.RequiresWallet, p.ReceiverWallet,
	)
	if err != nil {
		return fmt.Errorf("insert payment: %w", err)
	}
	return nil
}

// GetByID fetches a payment by UUID.
func (r *PaymentRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE id = $1`
	return scanPayment(r.pool.QueryRow(ctx, query, id))
}

// GetByIDForUpdate fetches a payment with a row lock inside an atomic scope.
func (r *PaymentRepo) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE id = $1 FOR UPDATE`
	return scanPayment(tx.QueryRow(ctx, query, id))
}

// ListByUser fetches all payments owned by a user, newest first.
func (r *PaymentRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE user_id = $1 ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	defer rows.Close()

	var payments []domain.Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan payment row: %w", err)
		}
		payments = append(payments, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate payment rows: %w", err)
	}
	return payments, nil
}

// FindRecentEquivalent looks for a PENDING or PAID payment matching the
// duplicate-guard tuple within the cooldown window.
func (r *PaymentRepo) FindRecentEquivalent(ctx context.Context, q ports.DuplicateQuery, cooldown time.Duration) (*domain.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments
		WHERE user_id IS NOT DISTINCT FROM $1
		AND product_table = $2 AND product_id = $3 AND product_name = $4
		AND pay_method = $5 AND easy_pay_provider IS NOT DISTINCT FROM $6
		AND quantity = $7 AND currency = $8
		AND promotion_code IS NOT DISTINCT FROM $9
		AND status IN ('PENDING', 'PAID')
		AND created_at >= $10
		ORDER BY created_at DESC LIMIT 1`

	cutoff := time.Now().UTC().Add(-cooldown)
	return scanPayment(r.pool.QueryRow(ctx, query,
		q.UserID, q.ProductTable, q.ProductID, q.ProductName,
		q.PayMethod, q.EasyPayProvider, q.Quantity, q.Currency,
		q.PromotionCode, cutoff,
	))
}

// UpdateStatus applies a status update outside any atomic scope.
func (r *PaymentRepo) UpdateStatus(ctx context.Context, id uuid.UUID, upd ports.StatusUpdate) error {
	return applyStatusUpdate(ctx, r.pool, id, upd)
}

// UpdateStatusTx applies a status update inside a caller-held atomic scope.
func (r *PaymentRepo) UpdateStatusTx(ctx context.Context, tx pgx.Tx, id uuid.UUID, upd ports.StatusUpdate) error {
	return applyStatusUpdate(ctx, tx, id, upd)
}

func applyStatusUpdate(ctx context.Context, db execer, id uuid.UUID, upd ports.StatusUpdate) error {
	tsColumn, err := terminalTimestampColumn(upd.Status)
	if err != nil {
		return err
	}

	query := `UPDATE payments SET status = $1, status_reason = $2, ` + tsColumn + ` = $3`
	args := []any{upd.Status, upd.Reason, upd.At}
	argIdx := 4

	if upd.Gateway != nil {
		query += fmt.Sprintf(`, gateway_code = $%d, gateway_message = $%d, pg_code = $%d, pg_message = $%d,
			gateway_tx_type = $%d, gateway_tx_id = $%d, gateway_raw = $%d`,
			argIdx, argIdx+1, argIdx+2, argIdx+3, argIdx+4, argIdx+5, argIdx+6)
		args = append(args, upd.Gateway.Code, upd.Gateway.Message, upd.Gateway.PgCode,
			upd.Gateway.PgMessage, upd.Gateway.TxType, upd.Gateway.TxID, upd.Gateway.Raw)
		argIdx += 7
	}
	if upd.CancelledAmount != nil {
		query += fmt.Sprintf(", cancelled_amount = $%d", argIdx)
		args = append(args, *upd.CancelledAmount)
		argIdx++
	}

	query += fmt.Sprintf(" WHERE id = $%d", argIdx)
	args = append(args, id)

	tag, err := db.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update payment status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("payment not found: %s", id)
	}
	return nil
}

func terminalTimestampColumn(status domain.PaymentStatus) (string, error) {
	switch status {
	case domain.PaymentStatusPaid:
		return "paid_at", nil
	case domain.PaymentStatusFailed:
		return "failed_at", nil
	case domain.PaymentStatusCancelled, domain.PaymentStatusExpired:
		return "cancelled_at", nil
	case domain.PaymentStatusRefunded:
		return "refunded_at", nil
	}
	return "", fmt.Errorf("status %s is not a valid update target", status)
}

// UpdateUserID claims an unowned payment for a user.
func (r *PaymentRepo) UpdateUserID(ctx context.Context, id uuid.UUID, userID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `UPDATE payments SET user_id = $1 WHERE id = $2`, userID, id)
	if err != nil {
		return fmt.Errorf("update payment user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("payment not found: %s", id)
	}
	return nil
}

// SetVerificationContext persists the claimed user and wallet address inside
// the verification atomic scope. Nil arguments leave the column untouched.
func (r *PaymentRepo) SetVerificationContext(ctx context.Context, tx pgx.Tx, id uuid.UUID, userID *uuid.UUID, wallet *string) error {
	query := `UPDATE payments SET user_id = COALESCE($1, user_id), receiver_wallet = COALESCE($2, receiver_wallet) WHERE id = $3`
	tag, err := tx.Exec(ctx, query, userID, wallet, id)
	if err != nil {
		return fmt.Errorf("set verification context: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("payment not found: %s", id)
	}
	return nil
}

// scanPayment scans a single row into a Payment.
func scanPayment(row pgx.Row) (*domain.Payment, error) {
	p := &domain.Payment{}
	err := row.Scan(
		&p.ID, &p.UserID, &p.ProductTable, &p.ProductID, &p.ProductName, &p.StoreID, &p.ChannelKey,
		&p.OriginalPrice, &p.ExchangeRate, &p.RateProvider, &p.RateTimestamp, &p.ConvertedPrice,
		&p.Quantity, &p.TotalAmount, &p.Currency, &p.PromotionCode, &p.PromotionApplied,
		&p.PayMethod, &p.EasyPayProvider, &p.Status, &p.StatusReason,
		&p.CreatedAt, &p.PaidAt, &p.FailedAt, &p.CancelledAt, &p.RefundedAt, &p.CancelledAmount,
		&p.Gateway.Code, &p.Gateway.Message, &p.Gateway.PgCode, &p.Gateway.PgMessage,
		&p.Gateway.TxType, &p.Gateway.TxID, &p.Gateway.Raw,
		&p.RedirectURL, &p.RequiresWallet, &p.ReceiverWallet,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan payment: %w", err)
	}
	return p, nil
}
