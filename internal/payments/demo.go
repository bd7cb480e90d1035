package payments

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"strings"
)

// DemoOrderPrefix marks orders minted by the offline demo gateway. The real
// HTTP gateway never issues ids with this prefix, and signature verification
// for them is only skipped when the server runs in demo mode.
const DemoOrderPrefix = "order_demo_"

// DemoGateway issues local order ids without contacting any provider. It is
// selected by the GATEWAY_DEMO_MODE flag and is never wired alongside the
// real gateway.
type DemoGateway struct{}

func NewDemoGateway() Gateway {
	return DemoGateway{}
}

func (DemoGateway) CreateOrder(ctx context.Context, amount float64, currency, receipt string) (*Order, error) {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return nil, err
	}
	return &Order{
		ID:       DemoOrderPrefix + hex.EncodeToString(buf),
		Amount:   amount,
		Currency: currency,
	}, nil
}

// IsDemoOrder reports whether an order id was minted by the demo gateway.
func IsDemoOrder(orderID string) bool {
	return strings.HasPrefix(orderID, DemoOrderPrefix)
}
