package utils

import (
	"fmt"
	"strings"

	"github.com/gagliardetto/solana-go"
)

// ValidateSolanaAddress checks that address is a base58-encoded 32-byte public key.
func ValidateSolanaAddress(address string) error {
	if strings.TrimSpace(address) != address || address == "" {
		return fmt.Errorf("invalid address %q: empty or padded", address)
	}
	if _, err := solana.PublicKeyFromBase58(address); err != nil {
		return fmt.Errorf("invalid address %q: %w", address, err)
	}
	return nil
}

// ShortenAddress renders an address as its first and last chars characters joined by "...".
func ShortenAddress(address string, chars int) string {
	if address == "" {
		return ""
	}
	if chars <= 0 || len(address) <= chars*2 {
		return address
	}
	return address[:chars] + "..." + address[len(address)-chars:]
}
