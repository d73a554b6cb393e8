package account

import (
	"crypto/rand"
	"math/big"
)

// Alphabet excludes ambiguous glyphs (0/O, 1/I/L) so codes survive being
// read aloud or typed from a printout.
const codeAlphabet = "23456789ABCDEFGHJKMNPQRSTUVWXYZ"

const (
	codeLength     = 6
	passwordLength = 8
)

func randomFrom(alphabet string, n int) string {
	out := make([]byte, n)
	max := big.NewInt(int64(len(alphabet)))
	for i := range out {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			// crypto/rand only fails when the platform source is broken;
			// fall back to the first glyph rather than panic mid-request.
			out[i] = alphabet[0]
			continue
		}
		out[i] = alphabet[idx.Int64()]
	}
	return string(out)
}

// NewCode generates a student check-in code.
func NewCode() string {
	return randomFrom(codeAlphabet, codeLength)
}

// NewPassword generates an initial account password. It is returned to the
// administrator once at creation time and stored only as a bcrypt hash.
func NewPassword() string {
	return randomFrom(codeAlphabet+"abcdefghjkmnpqrstuvwxyz", passwordLength)
}
