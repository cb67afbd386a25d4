package payment

import (
	"context"
	"fmt"

	razorpay "github.com/razorpay/razorpay-go"
)

// RazorpayConfig holds API credentials
type RazorpayConfig struct {
	KeyID     string
	KeySecret string
}

// RazorpayGateway is a Gateway backed by the Razorpay Orders API
type RazorpayGateway struct {
	client *razorpay.Client
	secret string
}

// NewRazorpayGateway creates a gateway from API credentials
func NewRazorpayGateway(config RazorpayConfig) *RazorpayGateway {
	return &RazorpayGateway{
		client: razorpay.NewClient(config.KeyID, config.KeySecret),
		secret: config.KeySecret,
	}
}

func (g *RazorpayGateway) CreateOrder(ctx context.Context, req OrderRequest) (*Order, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	notes := make(map[string]interface{}, len(req.Notes))
	for k, v := range req.Notes {
		notes[k] = v
	}

	data := map[string]interface{}{
		"amount":   req.Amount,
		"currency": req.Currency,
		"receipt":  req.Receipt,
		"notes":    notes,
	}

	body, err := g.client.Order.Create(data, nil)
	if err != nil {
		return nil, fmt.Errorf("razorpay create order: %w", err)
	}

	return parseOrder(body, req)
}

func (g *RazorpayGateway) VerifySignature(orderID, paymentID, signature string) bool {
	return VerifySignature(g.secret, orderID, paymentID, signature)
}

// parseOrder reads the decoded JSON order, falling back to the request for
// fields the response omits
func parseOrder(body map[string]interface{}, req OrderRequest) (*Order, error) {
	id, _ := body["id"].(string)
	if id == "" {
		return nil, fmt.Errorf("razorpay create order: response has no order id")
	}

	order := &Order{
		ID:       id,
		Amount:   req.Amount,
		Currency: req.Currency,
		Receipt:  req.Receipt,
	}
	switch amount := body["amount"].(type) {
	case float64:
		order.Amount = int64(amount)
	case int64:
		order.Amount = amount
	case int:
		order.Amount = int64(amount)
	}
	if currency, ok := body["currency"].(string); ok && currency != "" {
		order.Currency = currency
	}
	if receipt, ok := body["receipt"].(string); ok && receipt != "" {
		order.Receipt = receipt
	}
	return order, nil
}
