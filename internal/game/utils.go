package game

import (
	crand "crypto/rand"
	"math/big"
	"math/rand"
)

// CodeRegistry reports whether a session code is taken.
type CodeRegistry interface {
	Exists(code string) bool
}

// GenerateSessionCode creates a random session code
func GenerateSessionCode() string {
	code := make([]byte, SessionCodeLength)
	for i := range SessionCodeLength {
		n, err := crand.Int(crand.Reader, big.NewInt(int64(len(SessionCodeChars))))
		if err != nil {
			// fallback to math/rand if crypto fails
			code[i] = SessionCodeChars[rand.Intn(len(SessionCodeChars))]
			continue
		}
		code[i] = SessionCodeChars[n.Int64()]
	}
	return string(code)
}

// GetUniqueSessionCode generates a code not yet present in the registry
func GetUniqueSessionCode(registry CodeRegistry) string {
	for {
		code := GenerateSessionCode()
		if !registry.Exists(code) {
			return code
		}
	}
}
