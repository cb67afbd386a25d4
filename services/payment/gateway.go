// Package payment talks to the external payment provider.
package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// OrderRequest describes a payment intent to create. Amount is in the
// currency's smallest unit.
type OrderRequest struct {
	Amount   int64
	Currency string
	Receipt  string
	Notes    map[string]string
}

// Order is the provider's payment intent
type Order struct {
	ID       string
	Amount   int64
	Currency string
	Receipt  string
}

// Gateway creates payment intents and checks payment confirmations
type Gateway interface {
	CreateOrder(ctx context.Context, req OrderRequest) (*Order, error)
	// VerifySignature reports whether signature was issued by the provider
	// for this order and payment
	VerifySignature(orderID, paymentID, signature string) bool
}

// Signature computes the checkout signature: hex HMAC-SHA256 of
// "<order_id>|<payment_id>" keyed with the API secret.
func Signature(secret, orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature compares signature against the expected value in constant time
func VerifySignature(secret, orderID, paymentID, signature string) bool {
	if secret == "" || signature == "" {
		return false
	}
	expected := Signature(secret, orderID, paymentID)
	return hmac.Equal([]byte(expected), []byte(signature))
}
