package payment

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignatureRoundTrip(t *testing.T) {
	sig := Signature("secret", "order_1", "pay_1")

	assert.Len(t, sig, 64)
	assert.True(t, VerifySignature("secret", "order_1", "pay_1", sig))
	assert.False(t, VerifySignature("secret", "order_1", "pay_2", sig))
	assert.False(t, VerifySignature("other", "order_1", "pay_1", sig))
	assert.False(t, VerifySignature("secret", "order_1", "pay_1", ""))
	assert.False(t, VerifySignature("", "order_1", "pay_1", sig))
}

func TestParseOrder(t *testing.T) {
	req := OrderRequest{Amount: 7500, Currency: "INR", Receipt: "r1"}

	order, err := parseOrder(map[string]interface{}{
		"id":       "order_abc",
		"amount":   float64(7500),
		"currency": "INR",
		"receipt":  "r1",
	}, req)
	require.NoError(t, err)
	assert.Equal(t, &Order{ID: "order_abc", Amount: 7500, Currency: "INR", Receipt: "r1"}, order)

	_, err = parseOrder(map[string]interface{}{"error": "bad"}, req)
	assert.Error(t, err)
}

func TestRazorpayGatewayHonoursCancelledContext(t *testing.T) {
	g := NewRazorpayGateway(RazorpayConfig{KeyID: "rzp_test", KeySecret: "secret"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := g.CreateOrder(ctx, OrderRequest{Amount: 100, Currency: "INR"})
	assert.ErrorIs(t, err, context.Canceled)

	assert.True(t, g.VerifySignature("o", "p", Signature("secret", "o", "p")))
}
