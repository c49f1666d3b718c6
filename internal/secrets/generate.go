package secrets

import (
	"crypto/rand"
	"encoding/base64"
)

// GenerateRandom produces a cryptographically random URL-safe string that
// satisfies the given requirements. The base64 alphabet makes a failing
// draw pathologically unlikely, but the loop revalidates each draw anyway;
// retries are silent so the operator never sees noise from discarded draws.
func GenerateRandom(req Requirements) string {
	length := req.MinLength
	if length <= 0 {
		length = DefaultMinLength
	}
	for {
		raw := make([]byte, length)
		if _, err := rand.Read(raw); err != nil {
			// crypto/rand never fails on supported platforms.
			panic(err)
		}
		candidate := base64.RawURLEncoding.EncodeToString(raw)
		if len(Evaluate(candidate, req)) == 0 {
			return candidate
		}
	}
}
