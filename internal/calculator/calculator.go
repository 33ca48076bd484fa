// Package calculator converts raw signal inputs (price, points or ticks) into
// absolute prices and derives the preview metrics: dollar profit and loss,
// percentage from entry per take-profit target, and reward:risk.
//
// Every function is pure. Values that cannot be computed yet are returned as
// nil (or false) instead of zero, so callers can tell "unset" from "0".
//
// Stop-loss and take-profit levels are always anchored on the entry price:
//
//	buy:  stop = entry - delta, target = entry + delta
//	sell: stop = entry + delta, target = entry - delta
//
// In price mode the raw values are taken as absolute prices.
package calculator

import (
	"fmt"
	"math"

	"signaldesk.com/internal/model"
)

// Level selects which side of the entry a delta is applied to.
type Level int

const (
	LevelStopLoss Level = iota
	LevelTakeProfit
)

// WarningInvalidSetup is reported when the levels are on the wrong side of
// the entry for the chosen direction.
const WarningInvalidSetup = "Check your entry, stop loss, and take profit levels."

// PriceDeltaFromMagnitude converts a points or ticks magnitude into a price
// delta for contract c. Price mode returns the magnitude unchanged. It
// reports false when the contract is unresolved.
func PriceDeltaFromMagnitude(magnitude float64, mode model.InputMode, c *model.Contract) (float64, bool) {
	switch mode {
	case model.ModePrice:
		return magnitude, true
	case model.ModePoints:
		if c == nil {
			return 0, false
		}
		return magnitude * c.PointDelta(), true
	case model.ModeTicks:
		if c == nil {
			return 0, false
		}
		return magnitude * c.TickValue, true
	}
	return 0, false
}

// LevelPrice applies delta to entry on the side implied by direction and level.
func LevelPrice(entry, delta float64, direction model.Direction, level Level) float64 {
	up := level == LevelTakeProfit
	if direction == model.DirectionSell {
		up = !up
	}
	if up {
		return entry + delta
	}
	return entry - delta
}

// ResolveLevel returns the absolute price for a raw stop-loss or target value.
func ResolveLevel(d model.Draft, raw float64, level Level) *float64 {
	if raw <= 0 {
		return nil
	}
	if d.InputMode == model.ModePrice {
		return ptr(raw)
	}
	if d.EntryPrice <= 0 {
		return nil
	}
	delta, ok := PriceDeltaFromMagnitude(raw, d.InputMode, d.Contract)
	if !ok {
		return nil
	}
	return ptr(LevelPrice(d.EntryPrice, delta, d.Direction, level))
}

// ValueFromPrices converts the distance between entry and price back to
// points and values it in dollars for qty contracts.
func ValueFromPrices(entry, price float64, c model.Contract, qty int) float64 {
	if c.PointValue == 0 {
		return 0
	}
	points := math.Abs(price-entry) * float64(c.TicksPerPoint) / c.PointValue
	return points * c.PointValue * float64(qty)
}

// DollarValue is the dollar amount at stake for a raw stop-loss or target
// value. Points and ticks are valued directly; price mode goes through
// ValueFromPrices.
func DollarValue(d model.Draft, raw float64) *float64 {
	c := d.Contract
	if c == nil || d.EntryPrice <= 0 || raw <= 0 || d.ContractQuantity < 1 {
		return nil
	}
	qty := float64(d.ContractQuantity)

	switch d.InputMode {
	case model.ModePrice:
		if raw == d.EntryPrice || c.PointValue == 0 {
			return nil
		}
		return ptr(ValueFromPrices(d.EntryPrice, raw, *c, d.ContractQuantity))
	case model.ModePoints:
		return ptr(raw * c.PointValue * qty)
	case model.ModeTicks:
		return ptr(raw * c.TickValue * qty)
	}
	return nil
}

// TargetPercentage is the distance of a target from entry as a percentage
// of entry, rounded to two decimals.
func TargetPercentage(d model.Draft, magnitude float64) *float64 {
	if d.EntryPrice <= 0 || magnitude <= 0 {
		return nil
	}

	var diff float64
	if d.InputMode == model.ModePrice {
		diff = math.Abs(magnitude - d.EntryPrice)
	} else {
		delta, ok := PriceDeltaFromMagnitude(magnitude, d.InputMode, d.Contract)
		if !ok {
			return nil
		}
		diff = delta
	}
	return ptr(Round2(diff / d.EntryPrice * 100))
}

// Assess classifies the setup and, when it is valid, returns reward:risk.
//
//	buy:  takeProfit > entry > stopLoss
//	sell: stopLoss > entry > takeProfit
func Assess(entry float64, stopLoss, takeProfit *float64, direction model.Direction) (model.Setup, *float64) {
	if entry <= 0 || stopLoss == nil || takeProfit == nil || *stopLoss <= 0 || *takeProfit <= 0 {
		return model.SetupIncomplete, nil
	}
	sl, tp := *stopLoss, *takeProfit

	var valid bool
	if direction == model.DirectionSell {
		valid = sl > entry && entry > tp
	} else {
		valid = tp > entry && entry > sl
	}
	if !valid {
		return model.SetupInvalid, nil
	}

	risk := math.Abs(entry - sl)
	if risk == 0 {
		return model.SetupValid, nil
	}
	return model.SetupValid, ptr(math.Abs(tp-entry) / risk)
}

// Derive recomputes every derived field of d from scratch.
func Derive(d model.Draft) model.Derived {
	out := model.Derived{
		StopLossPrice:     ResolveLevel(d, d.StopLoss, LevelStopLoss),
		TargetPrices:      make([]*float64, len(d.Targets)),
		TargetPercentages: make([]*float64, len(d.Targets)),
		PotentialProfit:   DollarValue(d, d.TakeProfit()),
		PotentialLoss:     DollarValue(d, d.StopLoss),
		Warnings:          []string{},
	}

	for i, t := range d.Targets {
		out.TargetPrices[i] = ResolveLevel(d, t.Magnitude, LevelTakeProfit)
		out.TargetPercentages[i] = TargetPercentage(d, t.Magnitude)
	}
	if len(out.TargetPrices) > 0 {
		out.TakeProfitPrice = out.TargetPrices[0]
	}

	out.Setup, out.RewardRisk = Assess(d.EntryPrice, out.StopLossPrice, out.TakeProfitPrice, d.Direction)

	if d.Contract == nil && d.Symbol != "" {
		out.Warnings = append(out.Warnings, fmt.Sprintf("Unknown contract %q: profit and loss unavailable.", d.Symbol))
	}
	if out.Setup == model.SetupInvalid {
		out.Warnings = append(out.Warnings, WarningInvalidSetup)
	}
	return out
}

// Apply derives d and writes the per-target percentages back onto it.
func Apply(d *model.Draft) model.Derived {
	derived := Derive(*d)
	for i := range d.Targets {
		d.Targets[i].Percentage = copyPtr(derived.TargetPercentages[i])
	}
	return derived
}

// Round2 rounds to two decimal places, half away from zero. Magnitudes of
// 1e15 and above carry no cents and are returned as is.
func Round2(x float64) float64 {
	if math.Abs(x) >= 1e15 {
		return x
	}
	return math.Round(x*100) / 100
}

// ptr treats an overflowed (infinite or NaN) result as unavailable.
func ptr(v float64) *float64 {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return nil
	}
	return &v
}

func copyPtr(p *float64) *float64 {
	if p == nil {
		return nil
	}
	return ptr(*p)
}
