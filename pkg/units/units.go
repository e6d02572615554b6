// Package units formats gram quantities with an adaptive SI prefix.
//
//	units.FormatQuantity(1500)  // "1.50kg"
//	units.FormatQuantity(0.5)   // "500.00mg"
package units

import (
	"fmt"
	"strconv"
	"strings"
)

// Unit is the base unit suffix appended to every formatted quantity.
const Unit = "g"

type prefix struct {
	symbol    string
	threshold float64
}

// prefixes is ordered largest first; FormatQuantity picks the first match.
var prefixes = []prefix{
	{"T", 1e12},
	{"G", 1e9},
	{"M", 1e6},
	{"k", 1e3},
	{"", 1},
	{"m", 1e-3},
	{"µ", 1e-6},
	{"n", 1e-9},
}

// BelowNano decides how amounts smaller than one nanogram are printed.
type BelowNano int

const (
	// RawBelowNano prints the amount unscaled, e.g. "0g".
	RawBelowNano BelowNano = iota
	// NanoBelowNano scales into nanograms anyway, e.g. "0.00ng".
	NanoBelowNano
)

// ParseBelowNano maps a config value ("raw" or "nano") to a policy.
func ParseBelowNano(s string) BelowNano {
	if strings.EqualFold(strings.TrimSpace(s), "nano") {
		return NanoBelowNano
	}
	return RawBelowNano
}

// Formatter converts raw gram amounts to human-readable strings.
type Formatter struct {
	BelowNano BelowNano
}

// Default uses the raw fallback for sub-nanogram amounts.
var Default = Formatter{BelowNano: RawBelowNano}

// FormatQuantity formats amount with Default.
func FormatQuantity(amount float64) string { return Default.Format(amount) }

// Format selects the largest prefix whose threshold amount reaches and
// renders the scaled value with two decimals.
func (f Formatter) Format(amount float64) string {
	for _, p := range prefixes {
		if amount >= p.threshold {
			return fmt.Sprintf("%.2f%s%s", amount/p.threshold, p.symbol, Unit)
		}
	}

	if f.BelowNano == NanoBelowNano {
		last := prefixes[len(prefixes)-1]
		return fmt.Sprintf("%.2f%s%s", amount/last.threshold, last.symbol, Unit)
	}
	return strconv.FormatFloat(amount, 'f', -1, 64) + Unit
}

// ParseQuantity reverses Format, returning the amount in grams.
func ParseQuantity(s string) (float64, error) {
	body, ok := strings.CutSuffix(strings.TrimSpace(s), Unit)
	if !ok {
		return 0, fmt.Errorf("units: %q has no %q suffix", s, Unit)
	}

	multiplier := 1.0
	for _, p := range prefixes {
		if p.symbol != "" && strings.HasSuffix(body, p.symbol) {
			body = strings.TrimSuffix(body, p.symbol)
			multiplier = p.threshold
			break
		}
	}

	v, err := strconv.ParseFloat(body, 64)
	if err != nil {
		return 0, fmt.Errorf("units: parse %q: %w", s, err)
	}
	return v * multiplier, nil
}
