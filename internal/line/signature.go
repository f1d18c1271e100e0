// internal/line/signature.go
package line

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
)

// SignatureHeader carries the platform's signature on webhook deliveries.
const SignatureHeader = "X-Line-Signature"

// VerifySignature checks that rawBody was signed by the platform: a
// base64-encoded HMAC-SHA256 over the exact raw request bytes, keyed with
// the channel secret. The caller must pass the untouched wire bytes; any
// re-serialization before this check invalidates it.
func VerifySignature(secret string, rawBody []byte, signature string) bool {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(rawBody)
	expected := base64.StdEncoding.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

// Sign computes the signature the platform would send for rawBody. Used by
// tests and local tooling to build validly signed deliveries.
func Sign(secret string, rawBody []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(rawBody)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}
