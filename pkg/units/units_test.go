package units_test

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/sdscatalog/pkg/units"
)

func TestFormatQuantity(t *testing.T) {
	cases := map[float64]string{
		1500:      "1.50kg",
		0.5:       "500.00mg",
		1_000_000: "1.00Mg",
		1:         "1.00g",
		999:       "999.00g",
		2.5e12:    "2.50Tg",
		3e9:       "3.00Gg",
		4.2e-6:    "4.20µg",
		7e-9:      "7.00ng",
	}
	for in, want := range cases {
		assert.Equal(t, want, units.FormatQuantity(in), "amount %v", in)
	}
}

func TestFormatQuantity_BelowNano(t *testing.T) {
	assert.Equal(t, "0g", units.FormatQuantity(0))
	assert.Equal(t, "-5g", units.FormatQuantity(-5))
	assert.Equal(t, "0.0000000001g", units.FormatQuantity(1e-10))

	nano := units.Formatter{BelowNano: units.NanoBelowNano}
	assert.Equal(t, "0.00ng", nano.Format(0))
	assert.Equal(t, "0.10ng", nano.Format(1e-10))
}

func TestParseBelowNano(t *testing.T) {
	assert.Equal(t, units.NanoBelowNano, units.ParseBelowNano(" NANO "))
	assert.Equal(t, units.RawBelowNano, units.ParseBelowNano("raw"))
	assert.Equal(t, units.RawBelowNano, units.ParseBelowNano(""))
}

func TestFormatQuantity_RoundTrip(t *testing.T) {
	amounts := []float64{0, 1e-9, 3.3e-7, 0.0421, 0.5, 1, 12.345, 999.99, 1500, 123456, 9.87e8, 4.4e10, 7.25e13}
	for _, amount := range amounts {
		out := units.FormatQuantity(amount)
		require.True(t, strings.HasSuffix(out, "g"), out)

		back, err := units.ParseQuantity(out)
		require.NoError(t, err, out)

		// Two decimals on a scaled value >= 1 bound the error to 0.5%.
		tolerance := math.Max(math.Abs(amount)*0.005, 1e-12)
		assert.InDelta(t, amount, back, tolerance, "amount %v formatted as %s", amount, out)
	}
}

func TestParseQuantity_Errors(t *testing.T) {
	_, err := units.ParseQuantity("12kb")
	assert.Error(t, err)

	_, err = units.ParseQuantity("abcg")
	assert.Error(t, err)
}
