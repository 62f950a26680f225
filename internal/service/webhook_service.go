package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"digital-payment-service/config"
	"digital-payment-service/internal/core/domain"
	"digital-payment-service/internal/core/ports"
	"digital-payment-service/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// WebhookServiceImpl implements ports.WebhookService. Every accepted webhook
// writes exactly one audit row and finalizes it exactly once; processing
// errors are embedded into the row and then re-raised so the transport can
// answer non-2xx and let the gateway retry.
type WebhookServiceImpl struct {
	eventRepo   ports.WebhookEventRepository
	paymentRepo ports.PaymentRepository
	payments    ports.PaymentService
	gateway     ports.GatewayClient
	storeID     string
	log         zerolog.Logger
}

// NewWebhookService creates a new WebhookServiceImpl.
func NewWebhookService(
	eventRepo ports.WebhookEventRepository,
	paymentRepo ports.PaymentRepository,
	payments ports.PaymentService,
	gateway ports.GatewayClient,
	cfg config.GatewayConfig,
	log zerolog.Logger,
) *WebhookServiceImpl {
	return &WebhookServiceImpl{
		eventRepo:   eventRepo,
		paymentRepo: paymentRepo,
		payments:    payments,
		gateway:     gateway,
		storeID:     cfg.StoreID,
		log:         log,
	}
}

type webhookPayload struct {
	Type string `json:"type"`
	Data struct {
		PaymentID string `json:"paymentId"`
		StoreID   string `json:"storeId"`
	} `json:"data"`
}

// Handle ingests one gateway webhook.
func (s *WebhookServiceImpl) Handle(ctx context.Context, body []byte) error {
	var evt webhookPayload
	if err := json.Unmarshal(body, &evt); err != nil {
		return apperror.ErrInvalidInput("malformed webhook payload")
	}

	// Rejections happen before any audit row is written: attacker-supplied
	// noise must not end up looking like a legitimate audit trail.
	if evt.Data.PaymentID == "" {
		return apperror.ErrInvalidInput("webhook missing payment id")
	}
	if evt.Data.StoreID != "" && evt.Data.StoreID != s.storeID {
		return apperror.ErrInvalidInput("Invalid store ID")
	}
	paymentID, err := uuid.Parse(evt.Data.PaymentID)
	if err != nil {
		return apperror.ErrInvalidInput("invalid payment id")
	}

	p, err := s.paymentRepo.GetByID(ctx, paymentID)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("load payment: %w", err))
	}
	if p == nil {
		return apperror.ErrPaymentNotFound()
	}

	event := &domain.WebhookEvent{
		ID:          uuid.New(),
		PaymentID:   paymentID,
		Description: evt.Type,
		Payload:     string(body),
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.eventRepo.Create(ctx, event); err != nil {
		return apperror.InternalError(fmt.Errorf("create webhook audit row: %w", err))
	}

	dispatchErr := s.dispatch(ctx, evt.Type, p)

	event.StampProcessed(time.Now().UTC())
	if dispatchErr != nil {
		event.EmbedError(dispatchErr.Error())
	}
	if err := s.eventRepo.Finalize(ctx, event); err != nil {
		s.log.Error().Err(err).
			Str("event_id", event.ID.String()).
			Str("payment_id", paymentID.String()).
			Msg("failed to finalize webhook audit row")
	}

	if dispatchErr != nil {
		return dispatchErr
	}
	s.log.Info().
		Str("payment_id", paymentID.String()).
		Str("event_type", evt.Type).
		Msg("webhook processed")
	return nil
}

func (s *WebhookServiceImpl) dispatch(ctx context.Context, eventType string, p *domain.Payment) error {
	switch eventType {
	case domain.EventTransactionPaid:
		return s.handlePaid(ctx, p)
	case domain.EventTransactionCancelled, domain.EventTransactionPartialCancelled:
		return s.handleCancelled(ctx, p)
	case domain.EventTransactionFailed:
		return s.handleFailed(ctx, p)
	default:
		s.log.Warn().
			Str("payment_id", p.ID.String()).
			Str("event_type", eventType).
			Msg("unrecognized webhook event type, ignored")
		return nil
	}
}

// handlePaid pushes the payment through the verification state machine. A
// replay against an already-terminal payment is a no-op success: the state
// machine refusing to re-verify IS the idempotency mechanism.
func (s *WebhookServiceImpl) handlePaid(ctx context.Context, p *domain.Payment) error {
	requester := uuid.Nil
	if p.UserID != nil {
		requester = *p.UserID
	}

	_, err := s.payments.Verify(ctx, p.ID, requester, nil)
	if err != nil {
		var appErr *apperror.AppError
		if errors.As(err, &appErr) && appErr.Code == "INVALID_PAYMENT_STATE" {
			s.log.Debug().Str("payment_id", p.ID.String()).Msg("paid webhook replay on terminal payment, ignored")
			return nil
		}
		return err
	}
	return nil
}

// handleCancelled reconciles the local record with the amount the gateway
// actually cancelled. The money already moved upstream, so this is a local
// status write, not another gateway cancel.
func (s *WebhookServiceImpl) handleCancelled(ctx context.Context, p *domain.Payment) error {
	gwp, err := s.gateway.FetchStatus(ctx, p.ID.String())
	if err != nil {
		return apperror.ErrPaymentResponseFailed(fmt.Errorf("fetch cancelled amount: %w", err))
	}

	if p.Status == domain.PaymentStatusCancelled && p.CancelledAmount == gwp.Amount.Cancelled {
		return nil
	}

	cancelled := gwp.Amount.Cancelled
	upd := ports.StatusUpdate{
		Status:          domain.PaymentStatusCancelled,
		Reason:          "Cancelled at gateway (webhook)",
		Gateway:         gatewayResultFrom(gwp),
		CancelledAmount: &cancelled,
		At:              time.Now().UTC(),
	}
	if err := s.paymentRepo.UpdateStatus(ctx, p.ID, upd); err != nil {
		return apperror.ErrDatabase(fmt.Errorf("apply webhook cancellation: %w", err))
	}
	return nil
}

func (s *WebhookServiceImpl) handleFailed(ctx context.Context, p *domain.Payment) error {
	if p.IsTerminal() {
		return nil
	}
	upd := ports.StatusUpdate{
		Status: domain.PaymentStatusFailed,
		Reason: "Failed at gateway (webhook)",
		At:     time.Now().UTC(),
	}
	if err := s.paymentRepo.UpdateStatus(ctx, p.ID, upd); err != nil {
		return apperror.ErrDatabase(fmt.Errorf("apply webhook failure: %w", err))
	}
	return nil
}
