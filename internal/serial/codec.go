package serial

import (
	"fmt"
	"math/big"
	"math/bits"
	"strconv"
	"strings"
)

const (
	// DefaultPrime is the multiplier used unless the config overrides it.
	DefaultPrime uint64 = 1_000_000_007

	// CodeLength is the fixed width of a public code.
	CodeLength = 8

	alphabet    = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	modulus     = uint64(2_821_109_907_456) // 36^8
	serialSpace = uint64(1_000_000_000_000) // 12 decimal digits
	digitCount  = 12
)

// Codec maps 12-digit serials onto 8-character Base36 codes by
// multiplying with a prime modulo 36^8. The mapping is a bijection on
// the residues, so every code decodes back to exactly one number.
type Codec struct {
	prime   uint64
	inverse uint64
}

func NewCodec(prime uint64) (*Codec, error) {
	if prime == 0 {
		return nil, fmt.Errorf("%w: must be positive", ErrInvalidPrime)
	}
	p := prime % modulus
	inv := new(big.Int).ModInverse(new(big.Int).SetUint64(p), new(big.Int).SetUint64(modulus))
	if inv == nil {
		return nil, fmt.Errorf("%w: %d shares a factor with 36^8", ErrInvalidPrime, prime)
	}
	return &Codec{prime: p, inverse: inv.Uint64()}, nil
}

// MustCodec is NewCodec for known-good primes.
func MustCodec(prime uint64) *Codec {
	c, err := NewCodec(prime)
	if err != nil {
		panic(err)
	}
	return c
}

// ToPublic converts an original serial into its public code. Only the
// digits are checked here; catalog rules belong to Catalog.Validate.
func (c *Codec) ToPublic(original string) (string, error) {
	clean := strings.ReplaceAll(original, "-", "")
	if len(clean) != digitCount || !allDigits(clean) {
		return "", fmt.Errorf("%w %q", ErrInvalidSerial, original)
	}
	n, err := strconv.ParseUint(clean, 10, 64)
	if err != nil {
		return "", fmt.Errorf("%w %q: %v", ErrInvalidSerial, original, err)
	}
	return encode36(mulmod(n, c.prime)), nil
}

// ToOriginal converts a public code back into XXXX-XXXX-XXXX form.
func (c *Codec) ToOriginal(code string) (string, error) {
	if len(code) != CodeLength {
		return "", fmt.Errorf("%w: must be %d characters, got %d", ErrInvalidCode, CodeLength, len(code))
	}
	var num uint64
	for i := 0; i < len(code); i++ {
		d := strings.IndexByte(alphabet, code[i])
		if d < 0 {
			return "", fmt.Errorf("%w: contains invalid characters", ErrInvalidCode)
		}
		num = num*36 + uint64(d)
	}
	orig := mulmod(num, c.inverse)
	if orig >= serialSpace {
		return "", fmt.Errorf("%w: %s", ErrNotSerial, code)
	}
	return formatSerial(orig), nil
}

func mulmod(a, b uint64) uint64 {
	hi, lo := bits.Mul64(a, b)
	return bits.Rem64(hi, lo, modulus)
}

func encode36(n uint64) string {
	var buf [CodeLength]byte
	for i := CodeLength - 1; i >= 0; i-- {
		buf[i] = alphabet[n%36]
		n /= 36
	}
	return string(buf[:])
}

func formatSerial(n uint64) string {
	s := fmt.Sprintf("%012d", n)
	return s[:4] + "-" + s[4:8] + "-" + s[8:]
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return s != ""
}
