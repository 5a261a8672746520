// Package numutil provides the big-integer helpers shared by the DSA
// engine: bit-length, octet-string conversions, modular arithmetic, and
// uniform random integer generation.
//
// All values are *big.Int; the package is the single arbitrary-precision
// abstraction of the library. ParseInt accepts decimal strings, hex
// strings with an 0x prefix, and native integers via FromInt64, so keys
// can be populated from any envelope representation.
package numutil

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/mahdiidarabi/go-dsa/internal/entropy"
)

// BitSize returns the number of bits needed to represent n, with
// BitSize(0) = 0.
func BitSize(n *big.Int) int {
	return n.BitLen()
}

// OS2IP interprets b as a big-endian base-256 integer. The empty string
// maps to zero.
func OS2IP(b []byte) *big.Int {
	return new(big.Int).SetBytes(b)
}

// I2OSP returns the minimal big-endian octet representation of n.
// Zero maps to the empty string; callers needing a fixed width must pad.
func I2OSP(n *big.Int) []byte {
	return n.Bytes()
}

// ModExp returns a^e mod n as a non-negative integer.
func ModExp(a, e, n *big.Int) *big.Int {
	return new(big.Int).Exp(a, e, n)
}

// ModInverse returns the multiplicative inverse of a modulo n. It fails
// when gcd(a, n) != 1.
func ModInverse(a, n *big.Int) (*big.Int, error) {
	inv := new(big.Int).ModInverse(a, n)
	if inv == nil {
		return nil, fmt.Errorf("numutil: %v has no inverse modulo %v", a, n)
	}
	return inv, nil
}

// MakeRandom draws an integer with exactly bits bits: the top bit is
// forced high, so the result is always in [2^(bits-1), 2^bits).
func MakeRandom(src *entropy.Source, bits int) (*big.Int, error) {
	if bits <= 0 {
		return nil, fmt.Errorf("numutil: bit count must be positive, got %d", bits)
	}
	nbytes := (bits + 7) / 8
	buf, err := src.Bytes(nbytes)
	if err != nil {
		return nil, err
	}
	n := new(big.Int).SetBytes(buf)
	// Trim the excess high bits from a partial leading byte, then pin
	// the top bit of the requested width.
	excess := nbytes*8 - bits
	if excess > 0 {
		n.Rsh(n, uint(excess))
	}
	n.SetBit(n, bits-1, 1)
	return n, nil
}

// MakeRandomRange draws an integer uniform in [0, max] by rejection
// sampling over the bit width of max.
func MakeRandomRange(src *entropy.Source, max *big.Int) (*big.Int, error) {
	if max.Sign() < 0 {
		return nil, fmt.Errorf("numutil: range bound must be non-negative")
	}
	if max.Sign() == 0 {
		return new(big.Int), nil
	}
	bits := max.BitLen()
	nbytes := (bits + 7) / 8
	excess := nbytes*8 - bits
	for {
		buf, err := src.Bytes(nbytes)
		if err != nil {
			return nil, err
		}
		n := new(big.Int).SetBytes(buf)
		if excess > 0 {
			n.Rsh(n, uint(excess))
		}
		if n.Cmp(max) <= 0 {
			return n, nil
		}
	}
}

// ParseInt converts a decimal or 0x-prefixed hex string to an integer.
func ParseInt(s string) (*big.Int, error) {
	s = strings.TrimSpace(s)
	base := 10
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		s = s[2:]
		base = 16
	}
	n, ok := new(big.Int).SetString(s, base)
	if !ok {
		return nil, fmt.Errorf("numutil: cannot parse %q as base-%d integer", s, base)
	}
	return n, nil
}

// FromInt64 lifts a native integer into the shared value type.
func FromInt64(v int64) *big.Int {
	return big.NewInt(v)
}
