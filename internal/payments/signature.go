package payments

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var (
	// ErrInvalidSignature is returned when the webhook signature does not match
	ErrInvalidSignature = errors.New("webhook signature verification failed")

	// ErrSignatureExpired is returned when the signed timestamp is outside the
	// replay tolerance window
	ErrSignatureExpired = errors.New("webhook signature timestamp outside tolerance")
)

// VerifySignature checks a gateway webhook signature header of the form
// "t=<unix>,v1=<hex>" against the raw request body. The signed payload is
// "<t>.<body>", HMAC-SHA256 with the shared webhook secret. Verification must
// run on the raw bytes; any re-serialization of the body breaks the MAC.
func VerifySignature(payload []byte, header, secret string, tolerance time.Duration, now time.Time) error {
	var timestamp int64 = -1
	var signatures []string

	for _, part := range strings.Split(header, ",") {
		kv := strings.SplitN(strings.TrimSpace(part), "=", 2)
		if len(kv) != 2 {
			continue
		}
		switch kv[0] {
		case "t":
			ts, err := strconv.ParseInt(kv[1], 10, 64)
			if err != nil {
				return ErrInvalidSignature
			}
			timestamp = ts
		case "v1":
			signatures = append(signatures, kv[1])
		}
	}

	if timestamp < 0 || len(signatures) == 0 {
		return ErrInvalidSignature
	}

	signedAt := time.Unix(timestamp, 0)
	if now.Sub(signedAt) > tolerance || signedAt.Sub(now) > tolerance {
		return ErrSignatureExpired
	}

	expected := ComputeSignature(payload, timestamp, secret)
	for _, sig := range signatures {
		if hmac.Equal([]byte(sig), []byte(expected)) {
			return nil
		}
	}

	return ErrInvalidSignature
}

// ComputeSignature produces the hex MAC for a payload at a given timestamp
func ComputeSignature(payload []byte, timestamp int64, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.", timestamp)
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}
