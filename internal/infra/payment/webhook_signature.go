package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// VerifyWebhookSignature checks a Mercado Pago x-signature header of the
// form "ts=<timestamp>,v1=<hmac>". The HMAC-SHA256 manifest is
// "id:<data.id>;request-id:<x-request-id>;ts:<ts>;" keyed by the shared
// webhook secret. An event that fails here is rejected outright and
// never reaches reconciliation.
func VerifyWebhookSignature(secret, dataID, requestID, signatureHeader string) bool {
	if secret == "" || signatureHeader == "" {
		return false
	}

	var ts, v1 string
	for _, part := range strings.Split(signatureHeader, ",") {
		k, v, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok {
			continue
		}
		switch k {
		case "ts":
			ts = v
		case "v1":
			v1 = v
		}
	}
	if ts == "" || v1 == "" {
		return false
	}

	manifest := fmt.Sprintf("id:%s;request-id:%s;ts:%s;", dataID, requestID, ts)
	h := hmac.New(sha256.New, []byte(secret))
	h.Write([]byte(manifest))
	expected := hex.EncodeToString(h.Sum(nil))

	return hmac.Equal([]byte(expected), []byte(strings.ToLower(v1)))
}
