// Package solanaaddr validates Solana account addresses.
package solanaaddr

import (
	"fmt"

	"filippo.io/edwards25519"
	"github.com/mr-tron/base58"
)

// Validate checks that addr is a base58-encoded 32-byte public key.
func Validate(addr string) error {
	decoded, err := base58.Decode(addr)
	if err != nil {
		return fmt.Errorf("decode address: %w", err)
	}
	if len(decoded) != 32 {
		return fmt.Errorf("address must decode to 32 bytes, got %d", len(decoded))
	}
	return nil
}

// IsOnCurve reports whether the address is a valid ed25519 curve point.
// Wallet accounts are on-curve keypairs; program derived addresses are not.
func IsOnCurve(addr string) bool {
	decoded, err := base58.Decode(addr)
	if err != nil || len(decoded) != 32 {
		return false
	}
	_, err = new(edwards25519.Point).SetBytes(decoded)
	return err == nil
}

// ValidateWallet checks that addr is a well-formed wallet address: a 32-byte
// base58 public key that lies on the ed25519 curve.
func ValidateWallet(addr string) error {
	if err := Validate(addr); err != nil {
		return err
	}
	if !IsOnCurve(addr) {
		return fmt.Errorf("address %s is off-curve, not a wallet keypair", addr)
	}
	return nil
}
