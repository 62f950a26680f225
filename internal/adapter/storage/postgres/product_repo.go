package postgres

import (
	"context"
	"errors"
	"fmt"

	"digital-payment-service/internal/core/domain"

	"github.com/jackc/pgx/v5"
)

// productTables whitelists the table tags products can be resolved from.
// Tags come from client input, so they are never interpolated directly.
var productTables = map[string]string{
	"courses":       "courses",
	"ebooks":        "ebooks",
	"subscriptions": "subscription_plans",
}

// ProductRepo implements ports.ProductResolver against per-category tables.
type ProductRepo struct {
	pool Pool
}

// NewProductRepo creates a new ProductRepo.
func NewProductRepo(pool Pool) *ProductRepo {
	return &ProductRepo{pool: pool}
}

// rowQuerier is satisfied by both the pool and pgx.Tx.
type rowQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Resolve maps (table tag, product id) to a pricing view. Returns nil for an
// unknown tag or a missing product.
func (r *ProductRepo) Resolve(ctx context.Context, table, id string) (*domain.ProductInfo, error) {
	return r.resolve(ctx, r.pool, table, id)
}

// ResolveTx is Resolve pinned to a transaction's snapshot.
func (r *ProductRepo) ResolveTx(ctx context.Context, tx pgx.Tx, table, id string) (*domain.ProductInfo, error) {
	return r.resolve(ctx, tx, table, id)
}

func (r *ProductRepo) resolve(ctx context.Context, q rowQuerier, table, id string) (*domain.ProductInfo, error) {
	tableName, ok := productTables[table]
	if !ok {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT id, name, price, currency FROM %s WHERE id = $1`, tableName)

	info := &domain.ProductInfo{Table: table}
	err := q.QueryRow(ctx, query, id).Scan(&info.ID, &info.Name, &info.Price, &info.Currency)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("resolve product: %w", err)
	}
	return info, nil
}
