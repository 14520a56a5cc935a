package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
)

// BuildUPIString assembles the upi:// deep link encoded into payment QR
// codes. The amount travels as a plain decimal, the order number as the
// transaction note.
func BuildUPIString(upiID string, amount float64, orderNumber string) string {
	q := url.Values{}
	q.Set("pa", upiID)
	q.Set("pn", "SHOPSERV")
	q.Set("am", fmt.Sprintf("%.2f", amount))
	q.Set("cu", "INR")
	q.Set("tn", "Order "+orderNumber)
	return "upi://pay?" + q.Encode()
}

// Client talks to the card payment gateway. It is a fallible external
// collaborator: callers must never let its errors roll back a committed
// order.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewClient(gatewayURL, apiKey string) *Client {
	return &Client{
		baseURL: gatewayURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

type Intent struct {
	ID           string `json:"id"`
	ClientSecret string `json:"client_secret"`
}

// CreateIntent registers a payment intent with the gateway keyed by order
// number. Amount is converted to the smallest currency unit.
func (c *Client) CreateIntent(ctx context.Context, orderID uint, orderNumber string, amount float64) (*Intent, error) {
	if c.baseURL == "" {
		// No gateway configured: mint a local reference so the order can
		// still carry an intent id in dev environments.
		return &Intent{ID: "pi_" + uuid.NewString()}, nil
	}

	payload := map[string]any{
		"amount":   int64(amount * 100),
		"currency": "inr",
		"metadata": map[string]any{
			"order_id":     orderID,
			"order_number": orderNumber,
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("payment: encode intent: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/payment_intents", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("payment: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("payment: do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("payment: intent failed with status %d", resp.StatusCode)
	}

	var intent Intent
	if err := json.NewDecoder(resp.Body).Decode(&intent); err != nil {
		return nil, fmt.Errorf("payment: decode response: %w", err)
	}
	return &intent, nil
}
