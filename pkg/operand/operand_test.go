package operand

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", "2", "2"},
		{"negative", "-17", "-17"},
		{"explicit plus", "+8", "8"},
		{"leading whitespace", " \t\n 42", "42"},
		{"no-break space", "\u00a07", "7"},
		{"byte order mark", "\ufeff9", "9"},
		{"trailing garbage", "12abc", "12"},
		{"stops at decimal point", "3.99", "3"},
		{"exponent ignored", "1e3", "1"},
		{"hex prefix", "0x1A", "26"},
		{"upper hex prefix", "0XfF", "255"},
		{"negative hex", "-0x10", "-16"},
		{"hex prefix without digits", "0x", "NaN"},
		{"leading zeros", "007", "7"},
		{"empty", "", "NaN"},
		{"only whitespace", "   ", "NaN"},
		{"letters", "x", "NaN"},
		{"sign only", "-", "NaN"},
		{"space after sign", "- 5", "NaN"},
		{"inner whitespace", "1 2", "1"},
		{"negative zero", "-0", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Parse(tt.input).String())
		})
	}
}

func TestParseLargeValues(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		want   string
		wrap64 int64
		wrap32 int32
	}{
		{"largest exact", "9007199254740992", "9007199254740992", 9007199254740992, 0},
		{"rounds past 2^53", "9007199254740993", "9007199254740992", 9007199254740992, 0},
		{"beyond int64", "99999999999999999999", "100000000000000000000", 7766279631452241920, 1661992960},
		{"negative beyond int64", "-99999999999999999999", "-100000000000000000000", -7766279631452241920, -1661992960},
		{"2^64", "18446744073709551616", "18446744073709552000", 0, 0},
		{"exponent notation", "1000000000000000000000", "1e+21", 3875820019684212736, -559939584},
		{"large hex", "0xFFFFFFFFFFFFFFFFFF", "4.722366482869645e+21", 0, 0},
		{"infinity", "1" + strings.Repeat("0", 400), "Infinity", 0, 0},
		{"negative infinity", "-1" + strings.Repeat("0", 400), "-Infinity", 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := Parse(tt.input)
			assert.Equal(t, tt.want, o.String())

			v, ok := o.Int64()
			assert.True(t, ok)
			assert.Equal(t, tt.wrap64, v)
			assert.Equal(t, tt.wrap32, int32(v))
		})
	}
}

func TestZeroValueIsNaN(t *testing.T) {
	var o Operand
	assert.True(t, o.IsNaN())
	assert.Equal(t, NaNLiteral, o.String())
	assert.Equal(t, NaN(), o)
}

func TestInt(t *testing.T) {
	o := Int(-3)
	assert.False(t, o.IsNaN())
	v, ok := o.Int64()
	assert.True(t, ok)
	assert.Equal(t, int64(-3), v)
	assert.Equal(t, "-3", o.String())
}
