// Package chain identifies which blockchain a wallet address belongs to
// using address-format heuristics. Detection is pure string inspection with
// no network access.
package chain

import "strings"

// ID identifies a supported blockchain network.
type ID string

const (
	Bitcoin  ID = "BTC"
	Ethereum ID = "ETH"
	Solana   ID = "SOL"
)

// NativeCurrency returns the ticker of the chain's native asset.
func (id ID) NativeCurrency() string {
	return string(id)
}

// Decimals returns the fixed exponent between the chain's minor unit
// (satoshi, wei, lamport) and its major unit.
func (id ID) Decimals() int32 {
	switch id {
	case Bitcoin:
		return 8
	case Ethereum:
		return 18
	case Solana:
		return 9
	default:
		return 0
	}
}

// Detect classifies a wallet address by format, first match wins:
//
//  1. prefix "1"/"3" with length 26-35, or prefix "bc1"/"tb1"  -> BTC
//  2. "0x" + 40 hex characters (case-insensitive)              -> ETH
//  3. Base58 alphabet, length 32-44, not caught above          -> SOL
//
// BTC and ETH detection is authoritative; SOL is anything Base58-shaped left
// over, with the extra constraint that addresses starting with "1" or "3"
// must be longer than 34 characters to avoid colliding with BTC.
// Unrecognized addresses return ok=false.
func Detect(address string) (ID, bool) {
	addr := strings.TrimSpace(address)
	if addr == "" {
		return "", false
	}

	if isBitcoin(addr) {
		return Bitcoin, true
	}
	if isEthereum(addr) {
		return Ethereum, true
	}
	if isSolana(addr) {
		return Solana, true
	}
	return "", false
}

func isBitcoin(addr string) bool {
	lower := strings.ToLower(addr)
	if strings.HasPrefix(lower, "bc1") || strings.HasPrefix(lower, "tb1") {
		return true
	}
	if (strings.HasPrefix(addr, "1") || strings.HasPrefix(addr, "3")) &&
		len(addr) >= 26 && len(addr) <= 35 {
		return true
	}
	return false
}

func isEthereum(addr string) bool {
	if len(addr) != 42 {
		return false
	}
	lower := strings.ToLower(addr)
	if !strings.HasPrefix(lower, "0x") {
		return false
	}
	for _, r := range lower[2:] {
		if !isHexDigit(r) {
			return false
		}
	}
	return true
}

func isSolana(addr string) bool {
	if len(addr) < 32 || len(addr) > 44 {
		return false
	}
	for _, r := range addr {
		if !isBase58(r) {
			return false
		}
	}
	// A 1/3-prefixed Base58 string at BTC lengths is BTC territory.
	if strings.HasPrefix(addr, "1") || strings.HasPrefix(addr, "3") {
		return len(addr) > 34
	}
	return true
}

func isHexDigit(r rune) bool {
	return (r >= '0' && r <= '9') || (r >= 'a' && r <= 'f')
}

// isBase58 reports membership in the Bitcoin Base58 alphabet, which excludes
// 0, O, I and l.
func isBase58(r rune) bool {
	switch {
	case r >= '1' && r <= '9':
		return true
	case r >= 'A' && r <= 'H', r >= 'J' && r <= 'N', r >= 'P' && r <= 'Z':
		return true
	case r >= 'a' && r <= 'k', r >= 'm' && r <= 'z':
		return true
	}
	return false
}
