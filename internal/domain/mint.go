package domain

import (
	"fmt"

	"filippo.io/edwards25519"
	"github.com/mr-tron/base58"
)

// mintByteLen is the decoded length of a Solana public key.
const mintByteLen = 32

// ValidateMint checks that a mint address is well formed: base58 text
// decoding to exactly 32 bytes. Observations carrying malformed mints
// are dropped before merge, with the reason recorded in the audit trail.
func ValidateMint(mint string) error {
	if mint == "" {
		return fmt.Errorf("empty mint address")
	}
	decoded, err := base58.Decode(mint)
	if err != nil {
		return fmt.Errorf("decode mint %q: %w", mint, err)
	}
	if len(decoded) != mintByteLen {
		return fmt.Errorf("mint %q: decoded length %d, want %d", mint, len(decoded), mintByteLen)
	}
	return nil
}

// MintOnCurve reports whether the mint address lies on the ed25519
// curve. PDAs (program-derived addresses) are intentionally off-curve;
// a mint that is on-curve is an ordinary keypair-derived account.
func MintOnCurve(mint string) bool {
	decoded, err := base58.Decode(mint)
	if err != nil || len(decoded) != mintByteLen {
		return false
	}
	_, err = new(edwards25519.Point).SetBytes(decoded)
	return err == nil
}
