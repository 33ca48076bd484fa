// Package catalog holds the fixed set of CME futures contracts signals can
// be composed against.
package catalog

import (
	"fmt"
	"math"
	"strings"

	"signaldesk.com/internal/model"
)

// contracts is declared once and never mutated; Lookup and All hand out copies.
var contracts = []model.Contract{
	{Symbol: "NQ", Name: "E-mini NASDAQ 100", PointValue: 20, TickValue: 5, TicksPerPoint: 4},
	{Symbol: "ES", Name: "E-mini S&P 500", PointValue: 50, TickValue: 12.5, TicksPerPoint: 4},
	{Symbol: "GC", Name: "Gold", PointValue: 100, TickValue: 10, TicksPerPoint: 10},
	{Symbol: "MNQ", Name: "Micro E-mini NASDAQ 100", PointValue: 2, TickValue: 0.5, TicksPerPoint: 4},
	{Symbol: "MGC", Name: "Micro Gold", PointValue: 10, TickValue: 1, TicksPerPoint: 10},
}

var bySymbol = func() map[string]int {
	idx := make(map[string]int, len(contracts))
	for i, c := range contracts {
		idx[c.Symbol] = i
	}
	return idx
}()

// Normalize trims and upper-cases a user supplied symbol.
func Normalize(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

// Lookup returns the contract for symbol.
func Lookup(symbol string) (model.Contract, bool) {
	i, ok := bySymbol[Normalize(symbol)]
	if !ok {
		return model.Contract{}, false
	}
	return contracts[i], true
}

// All returns every contract in declaration order.
func All() []model.Contract {
	out := make([]model.Contract, len(contracts))
	copy(out, contracts)
	return out
}

// InvariantViolation reports a contract whose point value does not equal
// tick value times ticks per point.
type InvariantViolation struct {
	Symbol   string
	Expected float64 // TickValue * TicksPerPoint
	Actual   float64 // PointValue
}

func (v InvariantViolation) String() string {
	return fmt.Sprintf("%s: point value %.4f != tick value x ticks per point %.4f", v.Symbol, v.Actual, v.Expected)
}

const invariantTolerance = 1e-9

// Validate checks the point/tick invariant for every entry.
func Validate() []InvariantViolation {
	return validate(contracts)
}

func validate(list []model.Contract) []InvariantViolation {
	var out []InvariantViolation
	for _, c := range list {
		expected := c.TickValue * float64(c.TicksPerPoint)
		if math.Abs(expected-c.PointValue) > invariantTolerance {
			out = append(out, InvariantViolation{Symbol: c.Symbol, Expected: expected, Actual: c.PointValue})
		}
	}
	return out
}
