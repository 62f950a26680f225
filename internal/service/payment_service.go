package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"digital-payment-service/config"
	"digital-payment-service/internal/core/domain"
	"digital-payment-service/internal/core/ports"
	"digital-payment-service/pkg/apperror"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const (
	duplicateCooldown = 10 * time.Second
	amountTolerance   = 10 // minor units
	txAcquireTimeout  = 15 * time.Second
	txExecTimeout     = 10 * time.Second
)

// PaymentServiceImpl implements ports.PaymentService: the creation,
// verification and settlement pipeline against the external gateway.
type PaymentServiceImpl struct {
	paymentRepo ports.PaymentRepository
	products    ports.ProductResolver
	pricing     ports.PricingEngine
	rates       ports.ExchangeRateResolver
	gateway     ports.GatewayClient
	transactor  ports.DBTransactor
	storeID     string
	channels    map[string]string
	log         zerolog.Logger
}

// NewPaymentService creates a new PaymentServiceImpl.
func NewPaymentService(
	paymentRepo ports.PaymentRepository,
	products ports.ProductResolver,
	pricing ports.PricingEngine,
	rates ports.ExchangeRateResolver,
	gateway ports.GatewayClient,
	transactor ports.DBTransactor,
	cfg config.GatewayConfig,
	log zerolog.Logger,
) *PaymentServiceImpl {
	return &PaymentServiceImpl{
		paymentRepo: paymentRepo,
		products:    products,
		pricing:     pricing,
		rates:       rates,
		gateway:     gateway,
		transactor:  transactor,
		storeID:     cfg.StoreID,
		channels:    cfg.Channels,
		log:         log,
	}
}

// Create prices and records a new PENDING payment.
func (s *PaymentServiceImpl) Create(ctx context.Context, in ports.CreatePaymentInput) (*domain.Payment, error) {
	if err := validateCreateInput(in); err != nil {
		return nil, err
	}

	// A cheap read-only resolve feeds the guard tuple its product name. The
	// authoritative pricing read happens again inside the creation scope.
	product, err := s.products.Resolve(ctx, in.ProductTable, in.ProductID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("resolve product: %w", err))
	}
	if product == nil {
		return nil, apperror.ErrInvalidProduct()
	}

	// Duplicate guard. Best-effort and fail-open: a guard outage must not
	// block payment creation.
	existing, err := s.paymentRepo.FindRecentEquivalent(ctx, ports.DuplicateQuery{
		UserID:          in.UserID,
		ProductTable:    in.ProductTable,
		ProductID:       in.ProductID,
		ProductName:     product.Name,
		PayMethod:       in.PayMethod,
		EasyPayProvider: in.EasyPayProvider,
		Quantity:        in.Quantity,
		Currency:        in.Currency,
		PromotionCode:   in.PromotionCode,
	}, duplicateCooldown)
	if err != nil {
		s.log.Warn().Err(err).Msg("duplicate guard check failed, continuing")
	} else if existing != nil {
		return nil, apperror.ErrDuplicatePayment(existing.ID.String())
	}

	acquireCtx, cancelAcquire := context.WithTimeout(ctx, txAcquireTimeout)
	defer cancelAcquire()
	dbTx, err := s.transactor.Begin(acquireCtx)
	if err != nil {
		return nil, creationFailed(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	execCtx, cancelExec := context.WithTimeout(ctx, txExecTimeout)
	defer cancelExec()

	channelKey, err := s.channelKeyFor(in.PayMethod, in.EasyPayProvider)
	if err != nil {
		return nil, err
	}

	// Re-read the product on the scope's snapshot: every pricing field that
	// ends up in the row must come from one consistent read.
	product, err = s.products.ResolveTx(execCtx, dbTx, in.ProductTable, in.ProductID)
	if err != nil {
		return nil, creationFailed(fmt.Errorf("resolve product in scope: %w", err))
	}
	if product == nil {
		return nil, apperror.ErrInvalidProduct()
	}

	rate := s.rates.Resolve(execCtx, product.Currency, in.Currency)
	quote, err := s.pricing.Price(execCtx, dbTx, ports.PricingInput{
		BasePrice:     product.Price,
		FromCurrency:  product.Currency,
		ToCurrency:    in.Currency,
		Quantity:      in.Quantity,
		PromotionCode: in.PromotionCode,
		Rate:          rate,
	})
	if err != nil {
		return nil, creationFailed(fmt.Errorf("price quote: %w", err))
	}

	now := time.Now().UTC()
	payment := &domain.Payment{
		ID:               uuid.New(),
		UserID:           in.UserID,
		ProductTable:     in.ProductTable,
		ProductID:        in.ProductID,
		ProductName:      product.Name,
		StoreID:          s.storeID,
		ChannelKey:       channelKey,
		OriginalPrice:    product.Price,
		ExchangeRate:     rate.Rate,
		RateProvider:     rate.Provider,
		RateTimestamp:    rate.AsOf,
		ConvertedPrice:   quote.UnitConverted,
		Quantity:         in.Quantity,
		TotalAmount:      quote.Total,
		Currency:         in.Currency,
		PromotionCode:    in.PromotionCode,
		PromotionApplied: quote.PromotionApplied,
		PayMethod:        in.PayMethod,
		EasyPayProvider:  in.EasyPayProvider,
		Status:           domain.PaymentStatusPending,
		StatusReason:     "Payment initiated",
		CreatedAt:        now,
		RedirectURL:      in.RedirectURL,
		RequiresWallet:   in.RequiresWallet,
	}

	if err := s.paymentRepo.Create(execCtx, dbTx, payment); err != nil {
		return nil, creationFailed(fmt.Errorf("insert payment: %w", err))
	}
	if err := dbTx.Commit(execCtx); err != nil {
		return nil, creationFailed(fmt.Errorf("commit tx: %w", err))
	}

	s.log.Info().
		Str("payment_id", payment.ID.String()).
		Str("product", in.ProductTable+"/"+in.ProductID).
		Int64("total_amount", payment.TotalAmount).
		Str("currency", payment.Currency).
		Bool("promotion_applied", payment.PromotionApplied).
		Msg("payment created")

	return payment, nil
}

// Verify reconciles a PENDING payment with the gateway's authoritative
// status. The re-pricing check runs inside a locked scope; the gateway call
// happens after the scope closes so no network wait holds a row lock.
func (s *PaymentServiceImpl) Verify(ctx context.Context, paymentID, requesterID uuid.UUID, walletAddress *string) (*domain.Payment, error) {
	p, err := s.paymentRepo.GetByID(ctx, paymentID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("load payment: %w", err))
	}
	if p == nil {
		return nil, apperror.ErrPaymentNotFound()
	}

	// An auth mismatch on a real payment id is suspicious: burn the payment
	// rather than silently rejecting.
	if p.UserID != nil && *p.UserID != requesterID {
		s.failLocal(ctx, p, "Unauthorized payment access", nil)
		return nil, apperror.ErrUnauthorized()
	}

	// Idempotency backstop for webhook replays: terminal payments never
	// trigger a gateway call again.
	if p.Status != domain.PaymentStatusPending {
		return nil, apperror.ErrInvalidPaymentState()
	}

	p, err = s.repriceInScope(ctx, paymentID, requesterID, walletAddress)
	if err != nil {
		return nil, err
	}

	// Fully discounted payments have nothing to settle upstream.
	if p.TotalAmount == 0 {
		return s.applyOutcome(ctx, p, domain.PaymentStatusPaid, "Payment completed (zero amount)", nil)
	}

	gwp, err := s.gateway.FetchStatus(ctx, paymentID.String())
	if err != nil {
		if errors.Is(err, ports.ErrUpstreamPaymentNotFound) {
			if _, updErr := s.applyOutcome(ctx, p, domain.PaymentStatusCancelled, "Payment not found upstream", nil); updErr != nil {
				return nil, updErr
			}
			return nil, apperror.ErrPaymentCancelled("not found upstream")
		}
		s.failLocal(ctx, p, "Gateway status fetch failed", nil)
		return nil, apperror.ErrPaymentResponseFailed(err)
	}

	return s.settle(ctx, p, gwp)
}

// settle maps the gateway's reported status onto the local state machine.
func (s *PaymentServiceImpl) settle(ctx context.Context, p *domain.Payment, gwp *ports.GatewayPayment) (*domain.Payment, error) {
	gw := gatewayResultFrom(gwp)

	switch gwp.Status {
	case ports.GatewayStatusPaid:
		diff := gwp.Amount.Total - p.TotalAmount
		if diff < 0 {
			diff = -diff
		}
		if diff > amountTolerance {
			s.log.Warn().
				Str("payment_id", p.ID.String()).
				Int64("stored", p.TotalAmount).
				Int64("gateway", gwp.Amount.Total).
				Msg("gateway amount mismatch")
			s.failLocal(ctx, p, "Gateway amount mismatch", gw)
			return nil, apperror.ErrInvalidPaymentAmount()
		}
		return s.applyOutcome(ctx, p, domain.PaymentStatusPaid, "Payment completed", gw)

	case ports.GatewayStatusCancelled, ports.GatewayStatusPartialCancelled:
		if _, err := s.applyOutcome(ctx, p, domain.PaymentStatusCancelled, "Cancelled at gateway", gw); err != nil {
			return nil, err
		}
		return nil, apperror.ErrPaymentCancelled("cancelled at gateway")

	case ports.GatewayStatusFailed:
		s.failLocal(ctx, p, "Failed at gateway", gw)
		return nil, apperror.ErrPaymentFailed("failed at gateway")

	case ports.GatewayStatusVirtualAccountIssued, ports.GatewayStatusReady, ports.GatewayStatusPayPending:
		// Not completed yet; the payment stays PENDING.
		return nil, apperror.ErrPaymentNotCompleted()

	default:
		s.failLocal(ctx, p, "Unexpected gateway status: "+gwp.Status, gw)
		return nil, apperror.ErrPaymentFailed("unexpected gateway status " + gwp.Status)
	}
}

// repriceInScope locks the payment row, claims user and wallet context, and
// recomputes the price with the payment's stored exchange-rate snapshot. Any
// divergence from the stored snapshot burns the payment inside the scope.
func (s *PaymentServiceImpl) repriceInScope(ctx context.Context, paymentID, requesterID uuid.UUID, walletAddress *string) (*domain.Payment, error) {
	acquireCtx, cancelAcquire := context.WithTimeout(ctx, txAcquireTimeout)
	defer cancelAcquire()
	dbTx, err := s.transactor.Begin(acquireCtx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin verification scope: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	execCtx, cancelExec := context.WithTimeout(ctx, txExecTimeout)
	defer cancelExec()

	locked, err := s.paymentRepo.GetByIDForUpdate(execCtx, dbTx, paymentID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("lock payment: %w", err))
	}
	if locked == nil {
		return nil, apperror.ErrPaymentNotFound()
	}
	if locked.Status != domain.PaymentStatusPending {
		return nil, apperror.ErrInvalidPaymentState()
	}

	if locked.RequiresWallet && locked.ReceiverWallet == nil && (walletAddress == nil || *walletAddress == "") {
		if err := s.failInScope(execCtx, dbTx, locked, "Missing receiver wallet"); err != nil {
			return nil, err
		}
		return nil, apperror.ErrInvalidInput("receiver wallet address is required")
	}

	var claimID *uuid.UUID
	if locked.UserID == nil && requesterID != uuid.Nil {
		claimID = &requesterID
	}
	if claimID != nil || walletAddress != nil {
		if err := s.paymentRepo.SetVerificationContext(execCtx, dbTx, paymentID, claimID, walletAddress); err != nil {
			return nil, apperror.InternalError(fmt.Errorf("set verification context: %w", err))
		}
	}

	product, err := s.products.ResolveTx(execCtx, dbTx, locked.ProductTable, locked.ProductID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("re-resolve product: %w", err))
	}
	if product == nil {
		if err := s.failInScope(execCtx, dbTx, locked, "Product no longer available"); err != nil {
			return nil, err
		}
		return nil, apperror.ErrInvalidAmount()
	}

	// Recompute with the stored rate snapshot, not a fresh FX lookup, so a
	// rate move between creation and verification is not flagged as fraud.
	quote, err := s.pricing.Price(execCtx, dbTx, ports.PricingInput{
		BasePrice:     product.Price,
		FromCurrency:  product.Currency,
		ToCurrency:    locked.Currency,
		Quantity:      locked.Quantity,
		PromotionCode: locked.PromotionCode,
		Rate: domain.ResolvedRate{
			Rate:     locked.ExchangeRate,
			Provider: locked.RateProvider,
			AsOf:     locked.RateTimestamp,
		},
	})
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("reprice: %w", err))
	}
	if quote.UnitConverted != locked.ConvertedPrice || quote.Total != locked.TotalAmount {
		s.log.Warn().
			Str("payment_id", locked.ID.String()).
			Int64("stored_total", locked.TotalAmount).
			Int64("recomputed_total", quote.Total).
			Msg("price diverged since creation")
		if err := s.failInScope(execCtx, dbTx, locked, "Recomputed price mismatch"); err != nil {
			return nil, err
		}
		return nil, apperror.ErrInvalidAmount()
	}

	if err := dbTx.Commit(execCtx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit verification scope: %w", err))
	}

	if claimID != nil {
		locked.UserID = claimID
	}
	if walletAddress != nil {
		locked.ReceiverWallet = walletAddress
	}
	return locked, nil
}

// Cancel places a PENDING or PAID payment into CANCELLED via the gateway.
// Success is reported as a structured PAYMENT_CANCELLED result: the payment
// itself lands in a non-success terminal state.
func (s *PaymentServiceImpl) Cancel(ctx context.Context, in ports.CancelPaymentInput) (*domain.Payment, error) {
	return s.finalize(ctx, in, domain.PaymentStatusCancelled)
}

// Refund moves an EXPIRED, CANCELLED or FAILED payment to REFUNDED. Unlike
// Cancel, a successful refund is reported as success.
func (s *PaymentServiceImpl) Refund(ctx context.Context, in ports.CancelPaymentInput) (*domain.Payment, error) {
	return s.finalize(ctx, in, domain.PaymentStatusRefunded)
}

func (s *PaymentServiceImpl) finalize(ctx context.Context, in ports.CancelPaymentInput, target domain.PaymentStatus) (*domain.Payment, error) {
	p, err := s.paymentRepo.GetByID(ctx, in.PaymentID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("load payment: %w", err))
	}
	if p == nil {
		return nil, apperror.ErrPaymentNotFound()
	}
	if p.UserID == nil || *p.UserID != in.UserID {
		return nil, apperror.ErrUnauthorized()
	}

	switch target {
	case domain.PaymentStatusRefunded:
		if !p.IsRefundable() {
			return nil, apperror.ErrInvalidPaymentState()
		}
	case domain.PaymentStatusCancelled:
		if p.Status != domain.PaymentStatusPending && p.Status != domain.PaymentStatusPaid {
			return nil, apperror.ErrInvalidPaymentState()
		}
	default:
		return nil, apperror.InternalError(fmt.Errorf("unsupported finalize target %s", target))
	}

	amount, err := cancelAmount(p, in.Amount, in.Percentage)
	if err != nil {
		return nil, err
	}

	reason := in.Reason
	if reason == "" {
		if target == domain.PaymentStatusRefunded {
			reason = "Refund requested"
		} else {
			reason = "Cancellation requested"
		}
	}

	gwp, err := s.gateway.Cancel(ctx, in.PaymentID.String(), amount, p.Currency, reason)
	if err != nil {
		// A failed upstream cancel must surface; the local record stays put.
		return nil, apperror.ErrPaymentResponseFailed(err)
	}

	newCancelled := p.CancelledAmount + amount
	now := time.Now().UTC()
	upd := ports.StatusUpdate{
		Status:          target,
		Reason:          reason,
		Gateway:         gatewayResultFrom(gwp),
		CancelledAmount: &newCancelled,
		At:              now,
	}
	if err := s.paymentRepo.UpdateStatus(ctx, in.PaymentID, upd); err != nil {
		return nil, apperror.ErrDatabase(fmt.Errorf("finalize payment: %w", err))
	}

	p.Status = target
	p.StatusReason = reason
	p.CancelledAmount = newCancelled
	p.Gateway = *upd.Gateway
	if target == domain.PaymentStatusRefunded {
		p.RefundedAt = &now
	} else {
		p.CancelledAt = &now
	}

	s.log.Info().
		Str("payment_id", p.ID.String()).
		Str("status", string(target)).
		Int64("cancelled_amount", amount).
		Msg("payment finalized")

	if target == domain.PaymentStatusRefunded {
		return p, nil
	}
	return p, apperror.ErrPaymentCancelled(reason)
}

// GetByID fetches one payment.
func (s *PaymentServiceImpl) GetByID(ctx context.Context, id uuid.UUID) (*domain.Payment, error) {
	p, err := s.paymentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("load payment: %w", err))
	}
	if p == nil {
		return nil, apperror.ErrPaymentNotFound()
	}
	return p, nil
}

// ListByUser fetches all payments owned by a user.
func (s *PaymentServiceImpl) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Payment, error) {
	payments, err := s.paymentRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list payments: %w", err))
	}
	return payments, nil
}

// ClaimUser attaches an unowned payment to a user.
func (s *PaymentServiceImpl) ClaimUser(ctx context.Context, paymentID, userID uuid.UUID) error {
	p, err := s.paymentRepo.GetByID(ctx, paymentID)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("load payment: %w", err))
	}
	if p == nil {
		return apperror.ErrPaymentNotFound()
	}
	if p.UserID != nil {
		if *p.UserID == userID {
			return nil
		}
		return apperror.ErrUnauthorized()
	}
	if err := s.paymentRepo.UpdateUserID(ctx, paymentID, userID); err != nil {
		return apperror.ErrDatabase(fmt.Errorf("claim payment: %w", err))
	}
	return nil
}

// applyOutcome writes a terminal status outside any scope and returns the
// updated payment.
func (s *PaymentServiceImpl) applyOutcome(ctx context.Context, p *domain.Payment, status domain.PaymentStatus, reason string, gw *domain.GatewayResult) (*domain.Payment, error) {
	now := time.Now().UTC()
	upd := ports.StatusUpdate{Status: status, Reason: reason, Gateway: gw, At: now}
	if err := s.paymentRepo.UpdateStatus(ctx, p.ID, upd); err != nil {
		return nil, apperror.ErrDatabase(fmt.Errorf("update payment status: %w", err))
	}

	p.Status = status
	p.StatusReason = reason
	if gw != nil {
		p.Gateway = *gw
	}
	switch status {
	case domain.PaymentStatusPaid:
		p.PaidAt = &now
	case domain.PaymentStatusFailed:
		p.FailedAt = &now
	case domain.PaymentStatusCancelled, domain.PaymentStatusExpired:
		p.CancelledAt = &now
	case domain.PaymentStatusRefunded:
		p.RefundedAt = &now
	}

	s.log.Info().
		Str("payment_id", p.ID.String()).
		Str("status", string(status)).
		Str("reason", reason).
		Msg("payment status updated")
	return p, nil
}

// failLocal burns a payment to FAILED outside any scope. Terminal payments
// are left untouched: transitions are one-way. The burn first voids the
// payment upstream, best-effort, so the gateway cannot still capture money
// the ledger records as FAILED; the local write happens either way. The
// cancelled amount itself is reconciled later by the gateway's cancellation
// webhook, not here.
func (s *PaymentServiceImpl) failLocal(ctx context.Context, p *domain.Payment, reason string, gw *domain.GatewayResult) {
	if p.IsTerminal() {
		return
	}

	upd := ports.StatusUpdate{Status: domain.PaymentStatusFailed, Reason: reason, Gateway: gw, At: time.Now().UTC()}

	if remaining := p.RemainingAmount(); remaining > 0 {
		gwp, err := s.gateway.Cancel(ctx, p.ID.String(), remaining, p.Currency, reason)
		if err != nil {
			s.log.Warn().Err(err).Str("payment_id", p.ID.String()).Msg("upstream cancel during burn failed")
		} else if upd.Gateway == nil {
			upd.Gateway = gatewayResultFrom(gwp)
		}
	}

	if err := s.paymentRepo.UpdateStatus(ctx, p.ID, upd); err != nil {
		s.log.Error().Err(err).Str("payment_id", p.ID.String()).Msg("failed to burn payment")
	}
}

// failInScope burns a payment to FAILED inside the caller's scope and commits
// the scope. No gateway call happens here: network waits must not hold the
// row lock.
func (s *PaymentServiceImpl) failInScope(ctx context.Context, dbTx pgx.Tx, p *domain.Payment, reason string) error {
	upd := ports.StatusUpdate{Status: domain.PaymentStatusFailed, Reason: reason, At: time.Now().UTC()}
	if err := s.paymentRepo.UpdateStatusTx(ctx, dbTx, p.ID, upd); err != nil {
		return apperror.ErrDatabase(fmt.Errorf("burn payment in scope: %w", err))
	}
	if err := dbTx.Commit(ctx); err != nil {
		return apperror.ErrDatabase(fmt.Errorf("commit burn: %w", err))
	}
	return nil
}

func creationFailed(err error) *apperror.AppError {
	e := apperror.Wrap("INTERNAL_SERVER_ERROR", "Payment creation failed", http.StatusInternalServerError, err)
	return e
}

func validateCreateInput(in ports.CreatePaymentInput) error {
	switch {
	case in.ProductTable == "":
		return apperror.ErrInvalidInput("product table is required")
	case in.ProductID == "":
		return apperror.ErrInvalidInput("product id is required")
	case in.Currency == "":
		return apperror.ErrInvalidInput("currency is required")
	case in.PayMethod == "":
		return apperror.ErrInvalidInput("pay method is required")
	case in.Quantity < 1:
		return apperror.ErrInvalidInput("quantity must be at least 1")
	}
	return nil
}

// channelKeyFor maps (pay method, sub-provider) to a configured gateway
// channel key. Keys are "METHOD" or "METHOD:PROVIDER".
func (s *PaymentServiceImpl) channelKeyFor(method domain.PayMethod, provider *string) (string, error) {
	if method.RequiresProvider() && (provider == nil || *provider == "") {
		return "", apperror.ErrInvalidPaymentMethod()
	}
	key := string(method)
	if provider != nil && *provider != "" {
		key = key + ":" + *provider
	}
	channelKey, ok := s.channels[key]
	if !ok {
		return "", apperror.ErrInvalidPaymentMethod()
	}
	return channelKey, nil
}

// cancelAmount picks the amount to cancel: the explicit amount if positive,
// else total x percentage (rounded half away from zero, the same rule pricing
// uses), else everything still outstanding.
func cancelAmount(p *domain.Payment, amount *int64, percentage *decimal.Decimal) (int64, error) {
	remaining := p.RemainingAmount()

	var chosen int64
	switch {
	case amount != nil && *amount > 0:
		chosen = *amount
	case percentage != nil:
		if percentage.IsNegative() || percentage.GreaterThan(decimal.NewFromInt(100)) {
			return 0, apperror.ErrInvalidInput("percentage must be between 0 and 100")
		}
		chosen = decimal.NewFromInt(p.TotalAmount).
			Mul(*percentage).
			Div(decimal.NewFromInt(100)).
			Round(0).
			IntPart()
	default:
		chosen = remaining
	}

	if chosen <= 0 || chosen > remaining {
		return 0, apperror.ErrInvalidInput("cancel amount exceeds the remaining balance")
	}
	return chosen, nil
}

func gatewayResultFrom(gwp *ports.GatewayPayment) *domain.GatewayResult {
	return &domain.GatewayResult{
		Code:      gwp.Code,
		Message:   gwp.Message,
		PgCode:    gwp.PgCode,
		PgMessage: gwp.PgMessage,
		TxType:    gwp.TxType,
		TxID:      gwp.TxID,
		Raw:       gwp.Raw,
	}
}
