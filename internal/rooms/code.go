package rooms

import (
	"context"
	"crypto/rand"
	"fmt"
)

// CodeAlphabet is the 31-symbol alphabet for join codes. Visually ambiguous
// characters (0, 1, O, I, L) are excluded.
const CodeAlphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"

// CodeLength is the join code length. 31^6 ~ 887M possible codes.
const CodeLength = 6

// ValidCode reports whether s is a well-formed join code.
func ValidCode(s string) bool {
	if len(s) != CodeLength {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !isCodeChar(s[i]) {
			return false
		}
	}
	return true
}

func isCodeChar(b byte) bool {
	for i := 0; i < len(CodeAlphabet); i++ {
		if CodeAlphabet[i] == b {
			return true
		}
	}
	return false
}

// randomCode draws a code from the alphabet using crypto/rand. Modulo bias is
// negligible for a 31-symbol alphabet over 256 byte values at this scale.
func randomCode() (string, error) {
	buf := make([]byte, CodeLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random: %w", err)
	}
	out := make([]byte, CodeLength)
	for i, b := range buf {
		out[i] = CodeAlphabet[int(b)%len(CodeAlphabet)]
	}
	return string(out), nil
}

// GenerateUniqueCode draws codes until exists reports one unused. No retry
// bound: the code space makes collisions vanishingly rare, and the database
// unique constraint remains the authoritative guard.
func GenerateUniqueCode(ctx context.Context, exists func(ctx context.Context, code string) (bool, error)) (string, error) {
	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		code, err := randomCode()
		if err != nil {
			return "", err
		}
		taken, err := exists(ctx, code)
		if err != nil {
			return "", err
		}
		if !taken {
			return code, nil
		}
	}
}
