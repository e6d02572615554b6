// Package hazard aggregates GHS hazard data across the safety data sheets
// of one shipment: pictogram union, hazard statement union, signal word
// escalation and each item's share of the total quantity.
package hazard

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrMissingReference means a quantity refers to a record that was not
	// supplied, or a record was supplied without a quantity.
	ErrMissingReference = errors.New("hazard: missing record reference")
	// ErrDivisionByZero means the quantities sum to zero.
	ErrDivisionByZero = errors.New("hazard: total quantity is zero")
)

// DefaultAbsentMarker is printed when no record carries a signal word.
const DefaultAbsentMarker = "N/A"

// Record is the hazard-relevant view of one safety data sheet.
type Record struct {
	ID          uint
	ProductName string
	CASNumber   string
	SignalWord  SignalWord
	Pictograms  []string
	Statements  []string
}

// ItemShare is one record's quantity and its share of the total.
type ItemShare struct {
	Record   Record
	Quantity float64
	Share    float64 // percent, 0..100
}

// ShareText renders Share with two decimals and a percent sign.
func (i ItemShare) ShareText() string { return fmt.Sprintf("%.2f%%", i.Share) }

// Result is the per-shipment aggregate used to render a cover sheet.
type Result struct {
	Total      float64
	Items      []ItemShare
	Pictograms []string
	Statements []Statement
	SignalWord SignalWord
}

// SignalLabel is the escalated signal word as printed on the cover sheet.
func (r *Result) SignalLabel(absent string) string { return r.SignalWord.Label(absent) }

// Aggregator combines records. The zero value is not usable; use
// NewAggregator.
type Aggregator struct {
	lookup StatementLookup
	policy StatementPolicy
}

// NewAggregator builds an Aggregator resolving statements through lookup.
// A nil lookup uses GHSStatements.
func NewAggregator(lookup StatementLookup, policy StatementPolicy) *Aggregator {
	if lookup == nil {
		lookup = GHSStatements
	}
	return &Aggregator{lookup: lookup, policy: policy}
}

// Aggregate computes the shipment aggregate. Items keep the order of
// records, so callers control the cover sheet row order.
func (a *Aggregator) Aggregate(records []Record, quantities map[uint]float64) (*Result, error) {
	byID := make(map[uint]struct{}, len(records))
	for _, rec := range records {
		byID[rec.ID] = struct{}{}
	}
	for id := range quantities {
		if _, ok := byID[id]; !ok {
			return nil, fmt.Errorf("%w: no record for sds id %d", ErrMissingReference, id)
		}
	}

	var total float64
	for _, rec := range records {
		q, ok := quantities[rec.ID]
		if !ok {
			return nil, fmt.Errorf("%w: no quantity for sds id %d", ErrMissingReference, rec.ID)
		}
		total += q
	}
	if total == 0 {
		return nil, ErrDivisionByZero
	}

	res := &Result{Total: total, Items: make([]ItemShare, 0, len(records))}
	words := make([]SignalWord, 0, len(records))
	pictograms := map[string]struct{}{}
	var codes []string

	for _, rec := range records {
		q := quantities[rec.ID]
		res.Items = append(res.Items, ItemShare{
			Record:   rec,
			Quantity: q,
			Share:    q / total * 100,
		})

		words = append(words, rec.SignalWord)
		for _, p := range rec.Pictograms {
			if p = strings.TrimSpace(p); p != "" {
				pictograms[p] = struct{}{}
			}
		}
		codes = append(codes, rec.Statements...)
	}

	res.SignalWord = Escalate(words...)
	res.Pictograms = sortedKeys(pictograms)

	statements, err := Resolve(a.lookup, codes, a.policy)
	if err != nil {
		return nil, err
	}
	res.Statements = statements

	return res, nil
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
