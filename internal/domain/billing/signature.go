package billing

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
	ErrMissingSignature = errors.New("missing signature")
	ErrInvalidSignature = errors.New("invalid signature")
	ErrStaleTimestamp   = errors.New("stale signature timestamp")
)

// Tolerancia de timestamp del esquema de firma (mismo default que Stripe).
const signatureTolerance = 5 * time.Minute

// verifySignature valida el header Stripe-Signature (esquema v1):
// header "t=<unix>,v1=<hex>", firma = HMAC-SHA256(secret, "<t>.<body>").
// El webhook original no verificaba nada; acá es obligatorio.
func verifySignature(payload []byte, header, secret string, now time.Time) error {
	header = strings.TrimSpace(header)
	if header == "" {
		return ErrMissingSignature
	}

	var ts int64 = -1
	var candidates []string

	for _, part := range strings.Split(header, ",") {
		k, v, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok {
			continue
		}
		switch k {
		case "t":
			parsed, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				return ErrInvalidSignature
			}
			ts = parsed
		case "v1":
			candidates = append(candidates, v)
		}
	}

	if ts < 0 || len(candidates) == 0 {
		return ErrInvalidSignature
	}

	// timestamp fuera de tolerancia => firma potencialmente re-usada
	age := now.Sub(time.Unix(ts, 0))
	if age > signatureTolerance || age < -signatureTolerance {
		return ErrStaleTimestamp
	}

	expected := computeSignature(payload, ts, secret)
	for _, candidate := range candidates {
		if hmac.Equal([]byte(candidate), []byte(expected)) {
			return nil
		}
	}
	return ErrInvalidSignature
}

func computeSignature(payload []byte, ts int64, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.", ts)
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}
