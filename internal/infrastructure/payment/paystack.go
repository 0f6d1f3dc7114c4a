package payment

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const (
	StatusSuccess   = "success"
	StatusFailed    = "failed"
	StatusAbandoned = "abandoned"

	EventChargeSuccess = "charge.success"

	// SignatureHeader carries the hex HMAC-SHA512 of the raw webhook body.
	SignatureHeader = "x-paystack-signature"
)

var (
	ErrNotConfigured = errors.New("payment gateway not configured")
	ErrGateway       = errors.New("payment gateway error")
)

// Paystack talks to the Paystack transaction API.
type Paystack struct {
	secret  string
	baseURL string
	http    *http.Client
}

func NewPaystack(secret, baseURL string, hc *http.Client) *Paystack {
	if hc == nil {
		hc = &http.Client{Timeout: 15 * time.Second}
	}
	if baseURL == "" {
		baseURL = "https://api.paystack.co"
	}
	return &Paystack{secret: secret, baseURL: baseURL, http: hc}
}

type InitializeRequest struct {
	Email       string         `json:"email"`
	Amount      int64          `json:"amount"` // kobo
	Reference   string         `json:"reference"`
	Currency    string         `json:"currency,omitempty"`
	CallbackURL string         `json:"callback_url,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

type InitializeResult struct {
	AuthorizationURL string `json:"authorization_url"`
	AccessCode       string `json:"access_code"`
	Reference        string `json:"reference"`
}

// Transaction is the verified state of a charge.
type Transaction struct {
	Status          string     `json:"status"`
	Reference       string     `json:"reference"`
	Amount          int64      `json:"amount"` // kobo
	Currency        string     `json:"currency"`
	GatewayResponse string     `json:"gateway_response"`
	PaidAt          *time.Time `json:"paid_at"`
}

// WebhookEvent is the envelope Paystack posts to the webhook URL.
type WebhookEvent struct {
	Event string      `json:"event"`
	Data  Transaction `json:"data"`
}

type envelope[T any] struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    T      `json:"data"`
}

func (p *Paystack) Initialize(ctx context.Context, req InitializeRequest) (*InitializeResult, error) {
	var out envelope[InitializeResult]
	if err := p.do(ctx, http.MethodPost, "/transaction/initialize", req, &out); err != nil {
		return nil, err
	}
	if out.Data.AuthorizationURL == "" {
		return nil, fmt.Errorf("%w: missing authorization url", ErrGateway)
	}
	return &out.Data, nil
}

func (p *Paystack) Verify(ctx context.Context, reference string) (*Transaction, error) {
	var out envelope[Transaction]
	if err := p.do(ctx, http.MethodGet, "/transaction/verify/"+url.PathEscape(reference), nil, &out); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

// VerifySignature checks a webhook body against its signature header.
func (p *Paystack) VerifySignature(body []byte, signature string) bool {
	if p.secret == "" || signature == "" {
		return false
	}
	want, err := hex.DecodeString(signature)
	if err != nil {
		return false
	}
	mac := hmac.New(sha512.New, []byte(p.secret))
	mac.Write(body)
	return hmac.Equal(mac.Sum(nil), want)
}

func (p *Paystack) do(ctx context.Context, method, path string, body any, out any) error {
	if p.secret == "" {
		return ErrNotConfigured
	}

	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rd = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, p.baseURL+path, rd)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+p.secret)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	res, err := p.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrGateway, err)
	}
	defer func() { _ = res.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("%w: read body: %v", ErrGateway, err)
	}

	var head envelope[json.RawMessage]
	if err := json.Unmarshal(raw, &head); err != nil {
		return fmt.Errorf("%w: status %d: invalid body", ErrGateway, res.StatusCode)
	}
	if res.StatusCode >= 300 || !head.Status {
		return fmt.Errorf("%w: status %d: %s", ErrGateway, res.StatusCode, head.Message)
	}
	return json.Unmarshal(raw, out)
}
