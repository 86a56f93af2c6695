package billing

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestCreateInvoice(t *testing.T) {
	invoiceID := uuid.New()
	buyerID := uuid.New()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/invoices", r.URL.Path)
		require.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req createInvoiceRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, buyerID, req.PartnerID)
		require.Equal(t, "out_invoice", req.MoveType)
		require.Len(t, req.Lines, 2)
		require.Equal(t, "Commission", req.Lines[0].Description)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(createInvoiceResponse{InvoiceID: invoiceID})
	}))
	defer srv.Close()

	client, err := NewClient(srv.URL, "test-key", 0, time.Millisecond)
	require.NoError(t, err)

	got, err := client.CreateInvoice(context.Background(), buyerID, []InvoiceLine{
		{Description: "Commission", Quantity: 0.06, UnitPrice: 290000},
		{Description: "Administrative fee", Quantity: 1, UnitPrice: 100},
	})
	require.NoError(t, err)
	require.Equal(t, invoiceID, got)
}

func TestCreateInvoiceServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "ledger closed", http.StatusConflict)
	}))
	defer srv.Close()

	client, err := NewClient(srv.URL, "test-key", 0, time.Millisecond)
	require.NoError(t, err)

	_, err = client.CreateInvoice(context.Background(), uuid.New(), nil)
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusConflict, apiErr.StatusCode)
}

func TestCreateInvoiceRetriesOnRateLimit(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		json.NewEncoder(w).Encode(createInvoiceResponse{InvoiceID: uuid.New()})
	}))
	defer srv.Close()

	client, err := NewClient(srv.URL, "test-key", 2, time.Millisecond)
	require.NoError(t, err)

	_, err = client.CreateInvoice(context.Background(), uuid.New(), nil)
	require.NoError(t, err)
	require.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestCreateInvoiceRateLimitExhausted(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client, err := NewClient(srv.URL, "test-key", 1, time.Millisecond)
	require.NoError(t, err)

	_, err = client.CreateInvoice(context.Background(), uuid.New(), nil)
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusTooManyRequests, apiErr.StatusCode)
}
