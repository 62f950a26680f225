package handler_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"digital-payment-service/internal/adapter/http/handler"
	"digital-payment-service/internal/core/domain"
	"digital-payment-service/internal/core/ports"
	"digital-payment-service/internal/core/ports/mocks"
	"digital-payment-service/pkg/apperror"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const userToken = "user-token"

type handlerDeps struct {
	paymentSvc *mocks.MockPaymentService
	webhookSvc *mocks.MockWebhookService
	router     *gin.Engine
	userID     uuid.UUID
}

func setupRouter(t *testing.T, checkers ...ports.HealthChecker) *handlerDeps {
	t.Helper()
	ctrl := gomock.NewController(t)

	d := &handlerDeps{
		paymentSvc: mocks.NewMockPaymentService(ctrl),
		webhookSvc: mocks.NewMockWebhookService(ctrl),
		userID:     uuid.New(),
	}

	tokenSvc := mocks.NewMockTokenService(ctrl)
	tokenSvc.EXPECT().Validate(userToken).
		Return(&ports.TokenClaims{UserID: d.userID}, nil).AnyTimes()
	tokenSvc.EXPECT().Validate(gomock.Not(userToken)).
		Return(nil, errors.New("bad token")).AnyTimes()

	d.router = handler.SetupRouter(handler.RouterDeps{
		PaymentSvc:     d.paymentSvc,
		WebhookSvc:     d.webhookSvc,
		TokenSvc:       tokenSvc,
		HealthCheckers: checkers,
		Logger:         zerolog.Nop(),
	})
	return d
}

func doRequest(r *gin.Engine, method, path, body string, authed bool) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if authed {
		req.Header.Set("Authorization", "Bearer "+userToken)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func samplePayment(userID *uuid.UUID) *domain.Payment {
	return &domain.Payment{
		ID:             uuid.New(),
		UserID:         userID,
		ProductTable:   "courses",
		ProductID:      "course-101",
		ProductName:    "Intro to Go",
		StoreID:        "store-test-1",
		ChannelKey:     "channel-card",
		OriginalPrice:  10000,
		ExchangeRate:   decimal.NewFromInt(1),
		RateProvider:   "fallback",
		RateTimestamp:  time.Now().UTC(),
		ConvertedPrice: 10000,
		Quantity:       1,
		TotalAmount:    10000,
		Currency:       "KRW",
		PayMethod:      domain.PayMethodCard,
		Status:         domain.PaymentStatusPending,
		StatusReason:   "Payment initiated",
		CreatedAt:      time.Now().UTC(),
	}
}

const createBody = `{
	"product_table": "courses",
	"product_id": "course-101",
	"quantity": 1,
	"currency": "KRW",
	"pay_method": "CARD"
}`

func TestCreatePayment(t *testing.T) {
	t.Run("anonymous creation succeeds", func(t *testing.T) {
		d := setupRouter(t)
		p := samplePayment(nil)
		d.paymentSvc.EXPECT().Create(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, in ports.CreatePaymentInput) (*domain.Payment, error) {
				assert.Nil(t, in.UserID)
				assert.Equal(t, "courses", in.ProductTable)
				assert.Equal(t, domain.PayMethodCard, in.PayMethod)
				return p, nil
			})

		w := doRequest(d.router, http.MethodPost, "/api/v1/payments", createBody, false)

		require.Equal(t, http.StatusCreated, w.Code)
		assert.Contains(t, w.Body.String(), p.ID.String())
		assert.Contains(t, w.Body.String(), `"status":"PENDING"`)
	})

	t.Run("authenticated creation carries the user", func(t *testing.T) {
		d := setupRouter(t)
		d.paymentSvc.EXPECT().Create(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, in ports.CreatePaymentInput) (*domain.Payment, error) {
				require.NotNil(t, in.UserID)
				assert.Equal(t, d.userID, *in.UserID)
				return samplePayment(in.UserID), nil
			})

		w := doRequest(d.router, http.MethodPost, "/api/v1/payments", createBody, true)
		assert.Equal(t, http.StatusCreated, w.Code)
	})

	t.Run("malformed body rejected", func(t *testing.T) {
		d := setupRouter(t)
		w := doRequest(d.router, http.MethodPost, "/api/v1/payments", `{"quantity": 0}`, false)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "INVALID_INPUT")
	})

	t.Run("duplicate surfaces as conflict", func(t *testing.T) {
		d := setupRouter(t)
		d.paymentSvc.EXPECT().Create(gomock.Any(), gomock.Any()).
			Return(nil, apperror.ErrDuplicatePayment(uuid.New().String()))

		w := doRequest(d.router, http.MethodPost, "/api/v1/payments", createBody, false)
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Contains(t, w.Body.String(), "DUPLICATE_PAYMENT")
	})
}

func TestVerifyPayment(t *testing.T) {
	t.Run("requires authentication", func(t *testing.T) {
		d := setupRouter(t)
		w := doRequest(d.router, http.MethodPost, "/api/v1/payments/"+uuid.NewString()+"/verify", "", false)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("verifies with wallet address", func(t *testing.T) {
		d := setupRouter(t)
		p := samplePayment(&d.userID)
		p.Status = domain.PaymentStatusPaid
		d.paymentSvc.EXPECT().Verify(gomock.Any(), p.ID, d.userID, gomock.Any()).
			DoAndReturn(func(_ context.Context, _, _ uuid.UUID, wallet *string) (*domain.Payment, error) {
				require.NotNil(t, wallet)
				assert.Equal(t, "0xabc123", *wallet)
				return p, nil
			})

		w := doRequest(d.router, http.MethodPost, "/api/v1/payments/"+p.ID.String()+"/verify",
			`{"wallet_address": "0xabc123"}`, true)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"status":"PAID"`)
	})

	t.Run("empty body means no wallet", func(t *testing.T) {
		d := setupRouter(t)
		p := samplePayment(&d.userID)
		d.paymentSvc.EXPECT().Verify(gomock.Any(), p.ID, d.userID, nil).Return(p, nil)

		w := doRequest(d.router, http.MethodPost, "/api/v1/payments/"+p.ID.String()+"/verify", "", true)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("amount mismatch maps to 409", func(t *testing.T) {
		d := setupRouter(t)
		id := uuid.New()
		d.paymentSvc.EXPECT().Verify(gomock.Any(), id, d.userID, nil).
			Return(nil, apperror.ErrInvalidPaymentAmount())

		w := doRequest(d.router, http.MethodPost, "/api/v1/payments/"+id.String()+"/verify", "", true)
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Contains(t, w.Body.String(), "INVALID_PAYMENT_AMOUNT")
	})

	t.Run("pending gateway status maps to 202", func(t *testing.T) {
		d := setupRouter(t)
		id := uuid.New()
		d.paymentSvc.EXPECT().Verify(gomock.Any(), id, d.userID, nil).
			Return(nil, apperror.ErrPaymentNotCompleted())

		w := doRequest(d.router, http.MethodPost, "/api/v1/payments/"+id.String()+"/verify", "", true)
		assert.Equal(t, http.StatusAccepted, w.Code)
	})

	t.Run("bad payment id rejected", func(t *testing.T) {
		d := setupRouter(t)
		w := doRequest(d.router, http.MethodPost, "/api/v1/payments/not-a-uuid/verify", "", true)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestCancelPayment(t *testing.T) {
	t.Run("successful cancel reports PAYMENT_CANCELLED", func(t *testing.T) {
		d := setupRouter(t)
		id := uuid.New()
		d.paymentSvc.EXPECT().Cancel(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, in ports.CancelPaymentInput) (*domain.Payment, error) {
				assert.Equal(t, id, in.PaymentID)
				assert.Equal(t, d.userID, in.UserID)
				assert.Equal(t, "changed my mind", in.Reason)
				return nil, apperror.ErrPaymentCancelled("changed my mind")
			})

		w := doRequest(d.router, http.MethodPost, "/api/v1/payments/"+id.String()+"/cancel",
			`{"reason": "changed my mind"}`, true)

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Contains(t, w.Body.String(), "PAYMENT_CANCELLED")
	})

	t.Run("partial cancel by percentage", func(t *testing.T) {
		d := setupRouter(t)
		id := uuid.New()
		d.paymentSvc.EXPECT().Cancel(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, in ports.CancelPaymentInput) (*domain.Payment, error) {
				require.NotNil(t, in.Percentage)
				assert.True(t, in.Percentage.Equal(decimal.NewFromInt(50)))
				return nil, apperror.ErrPaymentCancelled("")
			})

		w := doRequest(d.router, http.MethodPost, "/api/v1/payments/"+id.String()+"/cancel",
			`{"percentage": 50}`, true)
		assert.Equal(t, http.StatusConflict, w.Code)
	})
}

func TestRefundPayment(t *testing.T) {
	d := setupRouter(t)
	p := samplePayment(&d.userID)
	p.Status = domain.PaymentStatusRefunded
	d.paymentSvc.EXPECT().Refund(gomock.Any(), gomock.Any()).Return(p, nil)

	w := doRequest(d.router, http.MethodPost, "/api/v1/payments/"+p.ID.String()+"/refund", "", true)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"REFUNDED"`)
}

func TestGetPayment(t *testing.T) {
	t.Run("public lookup succeeds", func(t *testing.T) {
		d := setupRouter(t)
		p := samplePayment(nil)
		d.paymentSvc.EXPECT().GetByID(gomock.Any(), p.ID).Return(p, nil)

		w := doRequest(d.router, http.MethodGet, "/api/v1/payments/"+p.ID.String(), "", false)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), p.ID.String())
	})

	t.Run("unknown payment maps to 404", func(t *testing.T) {
		d := setupRouter(t)
		id := uuid.New()
		d.paymentSvc.EXPECT().GetByID(gomock.Any(), id).Return(nil, apperror.ErrPaymentNotFound())

		w := doRequest(d.router, http.MethodGet, "/api/v1/payments/"+id.String(), "", false)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestListPayments(t *testing.T) {
	d := setupRouter(t)
	p := samplePayment(&d.userID)
	d.paymentSvc.EXPECT().ListByUser(gomock.Any(), d.userID).Return([]domain.Payment{*p}, nil)

	w := doRequest(d.router, http.MethodGet, "/api/v1/payments", "", true)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"count":1`)
}

func TestClaimPayment(t *testing.T) {
	d := setupRouter(t)
	id := uuid.New()
	d.paymentSvc.EXPECT().ClaimUser(gomock.Any(), id, d.userID).Return(nil)

	w := doRequest(d.router, http.MethodPut, "/api/v1/payments/"+id.String()+"/user", "", true)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), id.String())
}

func TestWebhook(t *testing.T) {
	body := `{"type": "Transaction.Paid", "data": {"paymentId": "` + uuid.NewString() + `", "storeId": "store-test-1"}}`

	t.Run("success answers success true", func(t *testing.T) {
		d := setupRouter(t)
		d.webhookSvc.EXPECT().Handle(gomock.Any(), []byte(body)).Return(nil)

		w := doRequest(d.router, http.MethodPost, "/api/v1/webhooks/gateway", body, false)
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"success": true}`, w.Body.String())
	})

	t.Run("processing failure answers non-2xx for redelivery", func(t *testing.T) {
		d := setupRouter(t)
		d.webhookSvc.EXPECT().Handle(gomock.Any(), gomock.Any()).
			Return(apperror.InternalError(errors.New("db down")))

		w := doRequest(d.router, http.MethodPost, "/api/v1/webhooks/gateway", body, false)
		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

type fakeChecker struct {
	name string
	err  error
}

func (f fakeChecker) Name() string                 { return f.name }
func (f fakeChecker) Ping(_ context.Context) error { return f.err }

func TestHealthCheck(t *testing.T) {
	t.Run("all healthy", func(t *testing.T) {
		d := setupRouter(t, fakeChecker{name: "postgres"}, fakeChecker{name: "redis"})
		w := doRequest(d.router, http.MethodGet, "/health", "", false)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"status":"healthy"`)
	})

	t.Run("degraded when a dependency is down", func(t *testing.T) {
		d := setupRouter(t, fakeChecker{name: "postgres"}, fakeChecker{name: "redis", err: errors.New("refused")})
		w := doRequest(d.router, http.MethodGet, "/health", "", false)
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.Contains(t, w.Body.String(), "degraded")
	})
}
