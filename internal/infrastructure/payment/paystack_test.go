package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaystack_Initialize(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/transaction/initialize", r.URL.Path)
		assert.Equal(t, "Bearer sk_test", r.Header.Get("Authorization"))

		var req InitializeRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.EqualValues(t, 7500000, req.Amount)
		assert.Equal(t, "VM-1", req.Reference)

		_, _ = w.Write([]byte(`{"status":true,"message":"Authorization URL created","data":{"authorization_url":"https://checkout.paystack.com/abc","access_code":"abc","reference":"VM-1"}}`))
	}))
	defer srv.Close()

	p := NewPaystack("sk_test", srv.URL, srv.Client())
	res, err := p.Initialize(context.Background(), InitializeRequest{Email: "a@b.c", Amount: 7500000, Reference: "VM-1"})
	require.NoError(t, err)
	assert.Equal(t, "https://checkout.paystack.com/abc", res.AuthorizationURL)
}

func TestPaystack_Verify(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/transaction/verify/VM-1", r.URL.Path)
		_, _ = w.Write([]byte(`{"status":true,"message":"Verification successful","data":{"status":"success","reference":"VM-1","amount":7500000,"currency":"NGN","paid_at":"2024-05-01T10:00:00.000Z"}}`))
	}))
	defer srv.Close()

	p := NewPaystack("sk_test", srv.URL, srv.Client())
	tx, err := p.Verify(context.Background(), "VM-1")
	require.NoError(t, err)
	assert.Equal(t, StatusSuccess, tx.Status)
	assert.EqualValues(t, 7500000, tx.Amount)
	require.NotNil(t, tx.PaidAt)
	assert.Equal(t, 2024, tx.PaidAt.Year())
}

func TestPaystack_GatewayError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"status":false,"message":"Transaction reference not found"}`))
	}))
	defer srv.Close()

	p := NewPaystack("sk_test", srv.URL, srv.Client())
	_, err := p.Verify(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrGateway))
	assert.Contains(t, err.Error(), "reference not found")
}

func TestPaystack_NotConfigured(t *testing.T) {
	p := NewPaystack("", "", nil)
	_, err := p.Initialize(context.Background(), InitializeRequest{})
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestPaystack_VerifySignature(t *testing.T) {
	body := []byte(`{"event":"charge.success","data":{"reference":"VM-1"}}`)
	mac := hmac.New(sha512.New, []byte("sk_test"))
	mac.Write(body)
	sig := hex.EncodeToString(mac.Sum(nil))

	p := NewPaystack("sk_test", "", nil)
	assert.True(t, p.VerifySignature(body, sig))
	assert.False(t, p.VerifySignature(append(body, ' '), sig))
	assert.False(t, p.VerifySignature(body, "zz"))
	assert.False(t, NewPaystack("other", "", nil).VerifySignature(body, sig))
}
