// Package operand defines the values the adder reads from its user.
// An operand is either an integer or the not-a-number sentinel produced
// when text contains no parsable integer.
package operand

import (
	"math"
	"math/big"
	"strconv"
)

// NaNLiteral is the rendering of the not-a-number sentinel.
const NaNLiteral = "NaN"

// maxExact bounds the integers held exactly. Larger magnitudes are kept
// as the nearest float64, the way the host number type stores them.
const maxExact = 1 << 53

type kind uint8

const (
	kindNaN kind = iota
	kindInt
	kindNumber
)

// Operand is an integer or NaN. The zero value is NaN.
type Operand struct {
	kind kind
	i    int64
	f    float64
}

// Int returns an operand holding v.
func Int(v int64) Operand {
	return Operand{kind: kindInt, i: v}
}

// NaN returns the not-a-number sentinel.
func NaN() Operand {
	return Operand{}
}

// IsNaN reports whether o is the not-a-number sentinel.
func (o Operand) IsNaN() bool {
	return o.kind == kindNaN
}

// Int64 returns the value reduced to 64-bit two's complement and whether
// o holds a value. Its low 32 bits are the value modulo 2^32. Infinities
// reduce to 0.
func (o Operand) Int64() (int64, bool) {
	switch o.kind {
	case kindInt:
		return o.i, true
	case kindNumber:
		if math.IsInf(o.f, 0) {
			return 0, true
		}
		n, _ := new(big.Float).SetFloat64(o.f).Int(nil)
		mask := new(big.Int).SetUint64(math.MaxUint64)
		return int64(n.And(n, mask).Uint64()), true
	}
	return 0, false
}

// String renders the decimal value or NaNLiteral. Values at or beyond
// 1e21 use exponent notation.
func (o Operand) String() string {
	switch o.kind {
	case kindInt:
		return strconv.FormatInt(o.i, 10)
	case kindNumber:
		return formatNumber(o.f)
	}
	return NaNLiteral
}

func formatNumber(f float64) string {
	switch {
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case math.Abs(f) < 1e21:
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return strconv.FormatFloat(f, 'e', -1, 64)
}

// Parse converts text the way a general-purpose string-to-integer parser
// with no explicit radix does: leading whitespace is skipped, an optional
// sign is accepted, a 0x/0X prefix selects base 16, and digits are consumed
// up to the first character that is not a digit in the base. Text with no
// digits yields NaN. Magnitudes above 2^53 round to the nearest float64.
func Parse(text string) Operand {
	s := trimLeadingSpace(text)

	neg := false
	if s != "" && (s[0] == '+' || s[0] == '-') {
		neg = s[0] == '-'
		s = s[1:]
	}

	base := 10
	if len(s) >= 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		base = 16
		s = s[2:]
	}

	end := 0
	for end < len(s) {
		d, ok := digitValue(s[end])
		if !ok || d >= base {
			break
		}
		end++
	}
	if end == 0 {
		return NaN()
	}

	mag, ok := new(big.Int).SetString(s[:end], base)
	if !ok {
		return NaN()
	}
	if neg {
		mag.Neg(mag)
	}

	if mag.IsInt64() {
		if v := mag.Int64(); v >= -maxExact && v <= maxExact {
			return Int(v)
		}
	}
	f, _ := new(big.Float).SetInt(mag).Float64()
	return Operand{kind: kindNumber, f: f}
}

func digitValue(c byte) (int, bool) {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0'), true
	case c >= 'a' && c <= 'z':
		return int(c-'a') + 10, true
	case c >= 'A' && c <= 'Z':
		return int(c-'A') + 10, true
	}
	return 0, false
}

func trimLeadingSpace(s string) string {
	for i, r := range s {
		if !isSpace(r) {
			return s[i:]
		}
	}
	return ""
}

// isSpace matches the ECMAScript WhiteSpace and LineTerminator sets.
func isSpace(r rune) bool {
	switch r {
	case '\t', '\n', '\v', '\f', '\r', ' ',
		'\u00a0', '\u1680', '\u2028', '\u2029', '\u202f', '\u205f', '\u3000', '\ufeff':
		return true
	}
	return r >= '\u2000' && r <= '\u200a'
}
