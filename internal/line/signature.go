// Package line is the LINE Messaging API binding: webhook signature
// verification, event normalization, and the reply client.
package line

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
)

// SignatureHeader carries the HMAC-SHA256 signature of the raw request body.
const SignatureHeader = "x-line-signature"

// Sign computes the base64 HMAC-SHA256 digest of body with the channel
// secret as key.
func Sign(body []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// VerifySignature reports whether signature matches the digest of the exact
// raw body bytes. The body must not be re-serialized before verification:
// key order or whitespace differences change the digest.
func VerifySignature(body []byte, signature, secret string) bool {
	if signature == "" {
		return false
	}
	expected, err := base64.StdEncoding.DecodeString(signature)
	if err != nil {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hmac.Equal(expected, mac.Sum(nil))
}
