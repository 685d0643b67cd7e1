package payment

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var secret = []byte("gateway-secret")

func TestVerifySignature_Valid(t *testing.T) {
	cb := Callback{
		GatewayOrderID:   "order_abc",
		GatewayPaymentID: "pay_xyz",
		Signature:        Sign("order_abc", "pay_xyz", secret),
	}
	assert.True(t, VerifySignature(cb, secret))
}

func TestVerifySignature_TamperedPaymentID(t *testing.T) {
	cb := Callback{
		GatewayOrderID:   "order_abc",
		GatewayPaymentID: "pay_other",
		Signature:        Sign("order_abc", "pay_xyz", secret),
	}
	assert.False(t, VerifySignature(cb, secret))
}

func TestVerifySignature_WrongSecret(t *testing.T) {
	cb := Callback{
		GatewayOrderID:   "order_abc",
		GatewayPaymentID: "pay_xyz",
		Signature:        Sign("order_abc", "pay_xyz", []byte("other-secret")),
	}
	assert.False(t, VerifySignature(cb, secret))
}

func TestVerifySignature_NotHex(t *testing.T) {
	cb := Callback{
		GatewayOrderID:   "order_abc",
		GatewayPaymentID: "pay_xyz",
		Signature:        "zz-not-hex",
	}
	assert.False(t, VerifySignature(cb, secret))
}

func TestVerifySignature_EmptySignature(t *testing.T) {
	cb := Callback{GatewayOrderID: "order_abc", GatewayPaymentID: "pay_xyz"}
	assert.False(t, VerifySignature(cb, secret))
}
