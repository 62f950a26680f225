package integration

import (
	"encoding/json"
	"net/http"
	"sync"
	"testing"

	"digital-payment-service/internal/core/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (r *inMemoryPaymentRepo) count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.payments)
}

func TestConcurrentDistinctCreates(t *testing.T) {
	env := newTestEnv(t)

	const workers = 20
	codes := make([]int, workers)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			// Distinct quantities keep the purchases outside each other's
			// duplicate-guard tuple.
			w := env.request(t, http.MethodPost, "/api/v1/payments", createBody(i+1), "")
			codes[i] = w.Code
		}(i)
	}
	wg.Wait()

	for i, code := range codes {
		assert.Equal(t, http.StatusCreated, code, "worker %d", i)
	}
	assert.Equal(t, workers, env.payments.count())
}

func TestConcurrentWebhookDeliveries(t *testing.T) {
	env := newTestEnv(t)

	created := env.createPayment(t, createBody(1), "")
	env.gateway.set(created.ID, "PAID", 10000)
	body := webhookBody(domain.EventTransactionPaid, created.ID, testStoreID)

	const deliveries = 5
	codes := make([]int, deliveries)

	var wg sync.WaitGroup
	for i := 0; i < deliveries; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			w := env.request(t, http.MethodPost, "/api/v1/webhooks/gateway", body, "")
			codes[i] = w.Code
		}(i)
	}
	wg.Wait()

	// Redeliveries of a settled payment are acknowledged, not failed.
	for i, code := range codes {
		assert.Equal(t, http.StatusOK, code, "delivery %d", i)
	}

	stored, err := env.payments.GetByID(t.Context(), uuid.MustParse(created.ID))
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentStatusPaid, stored.Status)

	events, err := env.events.ListByPayment(t.Context(), stored.ID)
	require.NoError(t, err)
	require.Len(t, events, deliveries)
	for _, e := range events {
		assert.Contains(t, e.Description, "processed at")
	}
}

func TestConcurrentReadsDuringVerification(t *testing.T) {
	env := newTestEnv(t)
	token := env.userToken(t, uuid.New())

	created := env.createPayment(t, createBody(1), token)
	env.gateway.set(created.ID, "PAID", 10000)

	var wg sync.WaitGroup
	wg.Add(1)
	verifyCode := 0
	go func() {
		defer wg.Done()
		w := env.request(t, http.MethodPost, "/api/v1/payments/"+created.ID+"/verify", "", token)
		verifyCode = w.Code
	}()

	const readers = 10
	statuses := make([]string, readers)
	for i := 0; i < readers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			w := env.request(t, http.MethodGet, "/api/v1/payments/"+created.ID, "", "")
			if w.Code != http.StatusOK {
				return
			}
			var resp struct {
				Data struct {
					Status string `json:"status"`
				} `json:"data"`
			}
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err == nil {
				statuses[i] = resp.Data.Status
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, http.StatusOK, verifyCode)

	// Readers only ever observe legal states of the machine.
	for i, s := range statuses {
		if s == "" {
			continue
		}
		if s != string(domain.PaymentStatusPending) && s != string(domain.PaymentStatusPaid) {
			t.Errorf("reader %d saw unexpected status %s", i, s)
		}
	}
}
