package payments

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"
)

// Order is a payment intent issued by the gateway. The amount is kept in the
// display currency; the wire format converts to the smallest unit.
type Order struct {
	ID       string  `json:"id"`
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
}

type Gateway interface {
	CreateOrder(ctx context.Context, amount float64, currency, receipt string) (*Order, error)
}

type httpGateway struct {
	baseURL   string
	keyID     string
	keySecret string
	client    *http.Client
}

func NewHTTPGateway(baseURL, keyID, keySecret string) Gateway {
	return &httpGateway{
		baseURL:   baseURL,
		keyID:     keyID,
		keySecret: keySecret,
		client:    &http.Client{Timeout: 15 * time.Second},
	}
}

func (g *httpGateway) CreateOrder(ctx context.Context, amount float64, currency, receipt string) (*Order, error) {
	body := map[string]any{
		// smallest currency unit, e.g. paise for INR
		"amount":   int64(math.Round(amount * 100)),
		"currency": currency,
		"receipt":  receipt,
	}
	b, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/v1/orders", bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(g.keyID, g.keySecret)
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gateway order request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("gateway rejected order creation: %s: %s", resp.Status, string(msg))
	}

	var out struct {
		ID       string `json:"id"`
		Amount   int64  `json:"amount"`
		Currency string `json:"currency"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, err
	}
	if out.ID == "" {
		return nil, errors.New("gateway returned empty order id")
	}

	return &Order{
		ID:       out.ID,
		Amount:   float64(out.Amount) / 100,
		Currency: out.Currency,
	}, nil
}

// VerifySignature checks the gateway's payment signature:
// HMAC-SHA256(secret, orderID + "|" + paymentID) compared as hex digests.
func VerifySignature(secret, orderID, paymentID, signature string) bool {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

// SignPayload produces the signature a genuine gateway callback would carry.
// Exposed for the demo gateway and for tests.
func SignPayload(secret, orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}
