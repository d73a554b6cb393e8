package account

import (
	"strings"
	"testing"
)

func TestNewCode(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 200; i++ {
		code := NewCode()
		if len(code) != codeLength {
			t.Fatalf("code %q has length %d, want %d", code, len(code), codeLength)
		}
		for _, r := range code {
			if !strings.ContainsRune(codeAlphabet, r) {
				t.Fatalf("code %q contains %q outside the alphabet", code, r)
			}
		}
		seen[code] = true
	}
	// Collisions over 200 draws from a 31^6 space would indicate a
	// broken random source.
	if len(seen) < 195 {
		t.Errorf("only %d distinct codes in 200 draws", len(seen))
	}
}

func TestNewPassword(t *testing.T) {
	pw := NewPassword()
	if len(pw) != passwordLength {
		t.Fatalf("password length = %d, want %d", len(pw), passwordLength)
	}
	for _, banned := range "0O1lIi" {
		if strings.ContainsRune(pw, banned) {
			t.Errorf("password %q contains ambiguous glyph %q", pw, banned)
		}
	}
}
