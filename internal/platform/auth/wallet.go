package auth

import "strings"

// ValidWalletAddress reports whether the string is a well-formed Ethereum
// address: "0x" followed by exactly 40 hex characters.
func ValidWalletAddress(addr string) bool {
	if len(addr) != 42 || !strings.HasPrefix(addr, "0x") {
		return false
	}
	for _, r := range addr[2:] {
		switch {
		case r >= '0' && r <= '9':
		case r >= 'a' && r <= 'f':
		case r >= 'A' && r <= 'F':
		default:
			return false
		}
	}
	return true
}

// NormalizeWalletAddress lowercases an address so lookups are case-insensitive.
func NormalizeWalletAddress(addr string) string {
	return strings.ToLower(addr)
}
