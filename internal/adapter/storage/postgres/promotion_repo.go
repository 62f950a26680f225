package postgres

import (
	"context"
	"errors"
	"fmt"

	"digital-payment-service/internal/core/domain"

	"github.com/jackc/pgx/v5"
)

// PromotionRepo implements ports.PromotionRepository.
type PromotionRepo struct {
	pool Pool
}

// NewPromotionRepo creates a new PromotionRepo.
func NewPromotionRepo(pool Pool) *PromotionRepo {
	return &PromotionRepo{pool: pool}
}

// GetByCode fetches a promotion by its code, or nil if unknown. A non-nil tx
// pins the read to that transaction's snapshot.
func (r *PromotionRepo) GetByCode(ctx context.Context, tx pgx.Tx, code string) (*domain.Promotion, error) {
	query := `SELECT id, code, discount_type, value, active FROM promotions WHERE code = $1`

	var row pgx.Row
	if tx != nil {
		row = tx.QueryRow(ctx, query, code)
	} else {
		row = r.pool.QueryRow(ctx, query, code)
	}

	promo := &domain.Promotion{}
	err := row.Scan(
		&promo.ID, &promo.Code, &promo.DiscountType, &promo.Value, &promo.Active,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get promotion: %w", err)
	}
	return promo, nil
}
