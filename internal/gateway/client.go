package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client talks to the gateway's REST API with basic-auth credentials. One
// Client is constructed at process start and shared; it holds no per-request
// state.
type Client struct {
	keyID         string
	keySecret     string
	webhookSecret string
	baseURL       string
	http          *http.Client
	loggerf       func(format string, args ...interface{})
}

type ClientConfig struct {
	KeyID         string
	KeySecret     string
	WebhookSecret string
	BaseURL       string
	Timeout       time.Duration
}

func NewClient(cfg ClientConfig, loggerf func(format string, args ...interface{})) *Client {
	if loggerf == nil {
		loggerf = func(string, ...interface{}) {}
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		keyID:         cfg.KeyID,
		keySecret:     cfg.KeySecret,
		webhookSecret: cfg.WebhookSecret,
		baseURL:       cfg.BaseURL,
		http:          &http.Client{Timeout: timeout},
		loggerf:       loggerf,
	}
}

// KeyID is exposed to clients that need the public key id to open the
// gateway's checkout widget.
func (c *Client) KeyID() string { return c.keyID }

func (c *Client) CreateOrder(ctx context.Context, in CreateOrderInput) (*Order, error) {
	body := map[string]interface{}{
		"amount":   in.Amount,
		"currency": in.Currency,
		"receipt":  in.Receipt,
	}
	if len(in.Notes) > 0 {
		body["notes"] = in.Notes
	}
	var out Order
	if err := c.do(ctx, http.MethodPost, "/v1/orders", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) FetchPayment(ctx context.Context, paymentID string) (*PaymentDetails, error) {
	var out struct {
		ID         string `json:"id"`
		OrderID    string `json:"order_id"`
		Method     string `json:"method"`
		Amount     int64  `json:"amount"`
		CapturedAt int64  `json:"captured_at"`
	}
	if err := c.do(ctx, http.MethodGet, "/v1/payments/"+paymentID, nil, &out); err != nil {
		return nil, err
	}
	return &PaymentDetails{
		ID:         out.ID,
		OrderID:    out.OrderID,
		Method:     out.Method,
		Amount:     out.Amount,
		CapturedAt: time.Unix(out.CapturedAt, 0).UTC(),
	}, nil
}

func (c *Client) CreateRefund(ctx context.Context, paymentID string, amount int64) (*Refund, error) {
	body := map[string]interface{}{}
	if amount > 0 {
		body["amount"] = amount
	}
	var out Refund
	if err := c.do(ctx, http.MethodPost, "/v1/payments/"+paymentID+"/refund", body, &out); err != nil {
		return nil, err
	}
	return &Refund{ID: out.ID, PaymentID: paymentID, Amount: out.Amount}, nil
}

func (c *Client) do(ctx context.Context, method, path string, body interface{}, out interface{}) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.SetBasicAuth(c.keyID, c.keySecret)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.loggerf("level=error msg=gateway request failed method=%s path=%s err=%v", method, path, err)
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: read response: %v", ErrUnavailable, err)
	}
	if resp.StatusCode >= 500 || resp.StatusCode == http.StatusUnauthorized {
		c.loggerf("level=error msg=gateway error response method=%s path=%s status=%d body=%s", method, path, resp.StatusCode, raw)
		return fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("gateway rejected request: status %d body %s", resp.StatusCode, raw)
	}
	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("decode gateway response: %w", err)
		}
	}
	return nil
}
