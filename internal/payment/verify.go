package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// VerifySignature recomputes the expected signature as
// HMAC-SHA256(gateway_order_id + "|" + gateway_payment_id, secret) and
// compares it to the supplied signature in constant time.
func VerifySignature(cb Callback, secret []byte) bool {
	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(cb.GatewayOrderID))
	mac.Write([]byte("|"))
	mac.Write([]byte(cb.GatewayPaymentID))

	supplied, err := hex.DecodeString(cb.Signature)
	if err != nil {
		return false
	}
	return hmac.Equal(mac.Sum(nil), supplied)
}

// Sign produces the signature the gateway would return for the given order
// and payment ids. Exposed for tests and local sandbox tooling.
func Sign(gatewayOrderID, gatewayPaymentID string, secret []byte) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(gatewayOrderID))
	mac.Write([]byte("|"))
	mac.Write([]byte(gatewayPaymentID))
	return hex.EncodeToString(mac.Sum(nil))
}
