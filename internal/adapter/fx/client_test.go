package fx

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"digital-payment-service/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(baseURL string) *Client {
	return NewClient(config.FXConfig{BaseURL: baseURL}, nil)
}

func TestClient_FetchRate_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/latest/USD", r.URL.Path)
		w.Write([]byte(`{"result":"success","rates":{"KRW":1384.25,"EUR":0.92}}`))
	}))
	defer srv.Close()

	rate, err := newTestClient(srv.URL).FetchRate(context.Background(), "USD", "KRW")
	require.NoError(t, err)
	assert.Equal(t, "1384.25", rate.String())
}

func TestClient_FetchRate_MissingCurrency(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"result":"success","rates":{"EUR":0.92}}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).FetchRate(context.Background(), "USD", "KRW")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no rate for USD/KRW")
}

func TestClient_FetchRate_ProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"result":"error","error-type":"unsupported-code"}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).FetchRate(context.Background(), "XXX", "KRW")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `result "error"`)
}

func TestClient_FetchRate_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).FetchRate(context.Background(), "USD", "KRW")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "returned 503")
}

func TestClient_FetchRate_NonPositiveRate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"result":"success","rates":{"KRW":0}}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).FetchRate(context.Background(), "USD", "KRW")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "non-positive rate")
}

func TestClient_Name(t *testing.T) {
	assert.Equal(t, "open-er-api", newTestClient("http://fx.local").Name())
}
