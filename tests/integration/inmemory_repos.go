package integration

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"digital-payment-service/internal/core/domain"
	"digital-payment-service/internal/core/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// --- In-Memory Payment Repo ---

type inMemoryPaymentRepo struct {
	mu       sync.RWMutex
	payments map[uuid.UUID]*domain.Payment
}

func newInMemoryPaymentRepo() *inMemoryPaymentRepo {
	return &inMemoryPaymentRepo{payments: make(map[uuid.UUID]*domain.Payment)}
}

func (r *inMemoryPaymentRepo) Create(ctx context.Context, tx pgx.Tx, p *domain.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *p
	r.payments[p.ID] = &cp
	return nil
}

func (r *inMemoryPaymentRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.payments[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (r *inMemoryPaymentRepo) GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Payment, error) {
	return r.GetByID(ctx, id)
}

func (r *inMemoryPaymentRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []domain.Payment
	for _, p := range r.payments {
		if p.UserID != nil && *p.UserID == userID {
			result = append(result, *p)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	return result, nil
}

func (r *inMemoryPaymentRepo) FindRecentEquivalent(ctx context.Context, q ports.DuplicateQuery, cooldown time.Duration) (*domain.Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cutoff := time.Now().UTC().Add(-cooldown)
	for _, p := range r.payments {
		if p.Status != domain.PaymentStatusPending && p.Status != domain.PaymentStatusPaid {
			continue
		}
		if p.CreatedAt.Before(cutoff) {
			continue
		}
		if !uuidPtrEqual(p.UserID, q.UserID) || !strPtrEqual(p.EasyPayProvider, q.EasyPayProvider) ||
			!strPtrEqual(p.PromotionCode, q.PromotionCode) {
			continue
		}
		if p.ProductTable == q.ProductTable && p.ProductID == q.ProductID && p.ProductName == q.ProductName &&
			p.PayMethod == q.PayMethod && p.Quantity == q.Quantity && p.Currency == q.Currency {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *inMemoryPaymentRepo) UpdateStatus(ctx context.Context, id uuid.UUID, upd ports.StatusUpdate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.payments[id]
	if !ok {
		return fmt.Errorf("payment not found: %s", id)
	}
	p.Status = upd.Status
	p.StatusReason = upd.Reason
	at := upd.At
	switch upd.Status {
	case domain.PaymentStatusPaid:
		p.PaidAt = &at
	case domain.PaymentStatusFailed:
		p.FailedAt = &at
	case domain.PaymentStatusCancelled, domain.PaymentStatusExpired:
		p.CancelledAt = &at
	case domain.PaymentStatusRefunded:
		p.RefundedAt = &at
	}
	if upd.Gateway != nil {
		p.Gateway = *upd.Gateway
	}
	if upd.CancelledAmount != nil {
		p.CancelledAmount = *upd.CancelledAmount
	}
	return nil
}

func (r *inMemoryPaymentRepo) UpdateStatusTx(ctx context.Context, tx pgx.Tx, id uuid.UUID, upd ports.StatusUpdate) error {
	return r.UpdateStatus(ctx, id, upd)
}

func (r *inMemoryPaymentRepo) UpdateUserID(ctx context.Context, id uuid.UUID, userID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.payments[id]
	if !ok {
		return fmt.Errorf("payment not found: %s", id)
	}
	p.UserID = &userID
	return nil
}

func (r *inMemoryPaymentRepo) SetVerificationContext(ctx context.Context, tx pgx.Tx, id uuid.UUID, userID *uuid.UUID, wallet *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.payments[id]
	if !ok {
		return fmt.Errorf("payment not found: %s", id)
	}
	if userID != nil {
		p.UserID = userID
	}
	if wallet != nil {
		p.ReceiverWallet = wallet
	}
	return nil
}

func uuidPtrEqual(a, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func strPtrEqual(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// --- In-Memory Webhook Event Repo ---

type inMemoryWebhookEventRepo struct {
	mu     sync.RWMutex
	events map[uuid.UUID]*domain.WebhookEvent
}

func newInMemoryWebhookEventRepo() *inMemoryWebhookEventRepo {
	return &inMemoryWebhookEventRepo{events: make(map[uuid.UUID]*domain.WebhookEvent)}
}

func (r *inMemoryWebhookEventRepo) Create(ctx context.Context, e *domain.WebhookEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *e
	r.events[e.ID] = &cp
	return nil
}

func (r *inMemoryWebhookEventRepo) Finalize(ctx context.Context, e *domain.WebhookEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.events[e.ID]; !ok {
		return fmt.Errorf("webhook event not found: %s", e.ID)
	}
	cp := *e
	r.events[e.ID] = &cp
	return nil
}

func (r *inMemoryWebhookEventRepo) ListByPayment(ctx context.Context, paymentID uuid.UUID) ([]domain.WebhookEvent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []domain.WebhookEvent
	for _, e := range r.events {
		if e.PaymentID == paymentID {
			result = append(result, *e)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.Before(result[j].CreatedAt) })
	return result, nil
}

// --- In-Memory Exchange Rate Repo ---

type inMemoryExchangeRateRepo struct {
	mu    sync.RWMutex
	rates []domain.ExchangeRate
}

func newInMemoryExchangeRateRepo() *inMemoryExchangeRateRepo {
	return &inMemoryExchangeRateRepo{}
}

func (r *inMemoryExchangeRateRepo) Latest(ctx context.Context, from, to string) (*domain.ExchangeRate, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var latest *domain.ExchangeRate
	for i := range r.rates {
		rate := r.rates[i]
		if rate.FromCurrency != from || rate.ToCurrency != to {
			continue
		}
		if latest == nil || rate.CreatedAt.After(latest.CreatedAt) {
			cp := rate
			latest = &cp
		}
	}
	return latest, nil
}

func (r *inMemoryExchangeRateRepo) Insert(ctx context.Context, rate *domain.ExchangeRate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rates = append(r.rates, *rate)
	return nil
}

func (r *inMemoryExchangeRateRepo) PruneOlderThan(ctx context.Context, age time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cutoff := time.Now().UTC().Add(-age)
	kept := r.rates[:0]
	for _, rate := range r.rates {
		if rate.CreatedAt.After(cutoff) {
			kept = append(kept, rate)
		}
	}
	r.rates = kept
	return nil
}

// --- In-Memory Promotion Repo ---

type inMemoryPromotionRepo struct {
	mu     sync.RWMutex
	promos map[string]*domain.Promotion
}

func newInMemoryPromotionRepo() *inMemoryPromotionRepo {
	return &inMemoryPromotionRepo{promos: make(map[string]*domain.Promotion)}
}

func (r *inMemoryPromotionRepo) add(p domain.Promotion) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.promos[p.Code] = &p
}

func (r *inMemoryPromotionRepo) GetByCode(ctx context.Context, _ pgx.Tx, code string) (*domain.Promotion, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.promos[code]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

// --- Static Product Resolver ---

type staticProductResolver struct {
	mu       sync.RWMutex
	products map[string]*domain.ProductInfo
}

func newStaticProductResolver() *staticProductResolver {
	return &staticProductResolver{products: make(map[string]*domain.ProductInfo)}
}

func (r *staticProductResolver) add(p domain.ProductInfo) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.products[p.Table+"/"+p.ID] = &p
}

func (r *staticProductResolver) Resolve(ctx context.Context, table, id string) (*domain.ProductInfo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.products[table+"/"+id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (r *staticProductResolver) ResolveTx(ctx context.Context, _ pgx.Tx, table, id string) (*domain.ProductInfo, error) {
	return r.Resolve(ctx, table, id)
}

// --- In-Memory Rate Cache ---

type inMemoryRateCache struct {
	mu    sync.RWMutex
	rates map[string]domain.ResolvedRate
}

func newInMemoryRateCache() *inMemoryRateCache {
	return &inMemoryRateCache{rates: make(map[string]domain.ResolvedRate)}
}

func (c *inMemoryRateCache) Get(ctx context.Context, from, to string) (*domain.ResolvedRate, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	rate, ok := c.rates[from+":"+to]
	if !ok {
		return nil, nil
	}
	return &rate, nil
}

func (c *inMemoryRateCache) Set(ctx context.Context, from, to string, rate domain.ResolvedRate, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rates[from+":"+to] = rate
	return nil
}

// --- In-Memory Transactor (no-op tx) ---

type inMemoryTransactor struct{}

func newInMemoryTransactor() *inMemoryTransactor {
	return &inMemoryTransactor{}
}

func (t *inMemoryTransactor) Begin(ctx context.Context) (pgx.Tx, error) {
	return &noopTx{}, nil
}

// noopTx is a no-op pgx.Tx implementation for in-memory testing.
type noopTx struct{}

func (t *noopTx) Begin(ctx context.Context) (pgx.Tx, error) { return t, nil }
func (t *noopTx) Commit(ctx context.Context) error          { return nil }
func (t *noopTx) Rollback(ctx context.Context) error        { return nil }
func (t *noopTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, nil
}
func (t *noopTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults { return nil }
func (t *noopTx) LargeObjects() pgx.LargeObjects                               { return pgx.LargeObjects{} }
func (t *noopTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, nil
}
func (t *noopTx) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	return pgconn.NewCommandTag(""), nil
}
func (t *noopTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}
func (t *noopTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return nil
}
func (t *noopTx) Conn() *pgx.Conn { return nil }
