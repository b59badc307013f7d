package gateway

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// VerifyPaymentSignature checks the signature the gateway hands to the paying
// client after checkout: hex HMAC-SHA256 over "orderID|paymentID" with the key
// secret. Comparison is constant-time; a mismatch is a plain false, never an
// error.
func (c *Client) VerifyPaymentSignature(orderID, paymentID, signature string) bool {
	expected := signHMAC([]byte(orderID+"|"+paymentID), c.keySecret)
	return hmacEqualHex(expected, signature)
}

// VerifyWebhookSignature checks the signature header of a webhook delivery:
// hex HMAC-SHA256 over the raw request body with the webhook shared secret,
// which is distinct from the key secret.
func (c *Client) VerifyWebhookSignature(body []byte, signature string) bool {
	expected := signHMAC(body, c.webhookSecret)
	return hmacEqualHex(expected, signature)
}

func signHMAC(payload []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

func hmacEqualHex(expected, supplied string) bool {
	a, err := hex.DecodeString(expected)
	if err != nil {
		return false
	}
	b, err := hex.DecodeString(supplied)
	if err != nil {
		return false
	}
	return hmac.Equal(a, b)
}
