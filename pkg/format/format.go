// Package format implements the string format predicates referenced by the
// action schemas: checksummed EVM addresses, function signatures, content
// identifiers and wei amounts.
//
// Every predicate accepts any value and reports false for non-strings.
package format

import (
	"encoding/hex"
	"regexp"
	"strings"

	"golang.org/x/crypto/sha3"
)

// Format names as they appear in schema declarations.
const (
	NameAddress = "address"
	NameABI     = "abi"
	NameCID     = "cid"
	NameWei     = "wei"
)

// Func is a total format predicate.
type Func func(v any) bool

var (
	addressRe = regexp.MustCompile(`^(0x)?[0-9a-fA-F]{40}$`)
	abiRe     = regexp.MustCompile(`^(function\s+)?[a-zA-Z_][a-zA-Z0-9_]*\((([a-zA-Z0-9\[\]]+)(,[a-zA-Z0-9\[\]]+)*)?\)$`)
	// CIDv0: "Qm" followed by 44 base58btc characters (no 0, O, I, l).
	cidRe = regexp.MustCompile(`^Qm[1-9A-HJ-NP-Za-km-z]{44}$`)
	weiRe = regexp.MustCompile(`^[0-9]+$`)
)

var table = map[string]Func{
	NameAddress: Address,
	NameABI:     ABI,
	NameCID:     CID,
	NameWei:     Wei,
}

// Lookup returns the predicate registered under name.
func Lookup(name string) (Func, bool) {
	f, ok := table[name]
	return f, ok
}

// Names lists the registered format names in a stable order.
func Names() []string {
	return []string{NameAddress, NameABI, NameCID, NameWei}
}

// Address reports whether v is a 20-byte hex address whose letter casing
// matches its EIP-55 checksum. The 0x prefix is optional.
func Address(v any) bool {
	s, ok := v.(string)
	if !ok || !addressRe.MatchString(s) {
		return false
	}
	digits := strings.TrimPrefix(s, "0x")
	return digits == checksum(digits)
}

// ChecksumAddress returns the EIP-55 form of a hex address, always with the
// 0x prefix. ok is false when s is not 40 hex digits.
func ChecksumAddress(s string) (string, bool) {
	if !addressRe.MatchString(s) {
		return "", false
	}
	return "0x" + checksum(strings.TrimPrefix(s, "0x")), true
}

// checksum applies EIP-55 casing to 40 hex digits.
func checksum(digits string) string {
	lower := strings.ToLower(digits)
	h := sha3.NewLegacyKeccak256()
	h.Write([]byte(lower))
	hash := hex.EncodeToString(h.Sum(nil))

	out := []byte(lower)
	for i, c := range out {
		if c >= 'a' && c <= 'f' && hash[i] >= '8' {
			out[i] = c - 'a' + 'A'
		}
	}
	return string(out)
}

// ABI reports whether v is a single function signature such as
// "transfer(address,uint256)", optionally prefixed with "function ".
func ABI(v any) bool {
	s, ok := v.(string)
	return ok && abiRe.MatchString(s)
}

// CID reports whether v is a base58 CIDv0 content identifier.
func CID(v any) bool {
	s, ok := v.(string)
	return ok && cidRe.MatchString(s)
}

// Wei reports whether v is an unsigned decimal integer string.
func Wei(v any) bool {
	s, ok := v.(string)
	return ok && weiRe.MatchString(s)
}
