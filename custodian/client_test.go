package custodian

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Debit(t *testing.T) {
	t.Run("posts the participant and amount", func(t *testing.T) {
		var got transferRequest
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/custody/debit", r.URL.Path)
			require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
			w.WriteHeader(http.StatusOK)
		}))
		defer server.Close()

		client := New(server.URL)
		err := client.Debit(context.Background(), 123, 5000)

		require.NoError(t, err)
		assert.Equal(t, int64(123), got.ParticipantID)
		assert.Equal(t, int64(5000), got.Amount)
	})

	t.Run("non-2xx status is an error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusPaymentRequired)
		}))
		defer server.Close()

		client := New(server.URL)
		err := client.Debit(context.Background(), 123, 5000)

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "http 402")
	})
}

func TestClient_Credit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/custody/credit", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := New(server.URL)
	assert.NoError(t, client.Credit(context.Background(), 456, 100))
}

func TestClient_BalanceOf(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/custody/balance", r.URL.Path)
		json.NewEncoder(w).Encode(balanceResponse{Balance: 750})
	}))
	defer server.Close()

	client := New(server.URL)
	balance, err := client.BalanceOf(context.Background())

	require.NoError(t, err)
	assert.Equal(t, int64(750), balance)
}

func TestClient_AllowanceOf(t *testing.T) {
	t.Run("reads the participant allowance", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/custody/allowance/789", r.URL.Path)
			json.NewEncoder(w).Encode(allowanceResponse{Allowance: 2500})
		}))
		defer server.Close()

		client := New(server.URL)
		allowance, err := client.AllowanceOf(context.Background(), 789)

		require.NoError(t, err)
		assert.Equal(t, int64(2500), allowance)
	})

	t.Run("unreachable custodian is an error", func(t *testing.T) {
		client := New("http://127.0.0.1:1")
		_, err := client.AllowanceOf(context.Background(), 789)
		assert.Error(t, err)
	})
}
