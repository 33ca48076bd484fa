// Package preview renders a draft and its derived values into display rows.
package preview

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"

	"signaldesk.com/internal/model"
)

const (
	Placeholder            = "—"
	DescriptionPlaceholder = "Your signal description will appear here..."

	// ratios at or above this are graded "good"
	goodRewardRisk = 2.0
)

// Render builds the preview card for d.
func Render(d model.Draft, derived model.Derived) model.Card {
	card := model.Card{
		Title:       "Signal Preview",
		Description: d.Description,
		Image:       d.Image,
	}
	if strings.TrimSpace(card.Description) == "" {
		card.Description = DescriptionPlaceholder
	}

	rows := []model.CardRow{
		{Label: "Symbol", Value: orPlaceholder(d.Symbol)},
		{Label: "Asset", Value: orPlaceholder(d.AssetName)},
		{Label: "Contracts", Value: Contracts(d.ContractQuantity)},
		{Label: "Order Type", Value: string(d.OrderKind)},
		{Label: "Type", Value: strings.ToUpper(string(d.Direction)), Tone: string(d.Direction)},
	}
	if d.CurrentPrice > 0 {
		rows = append(rows, model.CardRow{Label: "Current Price", Value: Price(d.CurrentPrice)})
	}
	rows = append(rows,
		model.CardRow{Label: "Entry", Value: Price(d.EntryPrice)},
		model.CardRow{Label: "Stop Loss", Value: Level(d.StopLoss, d.InputMode, derived.StopLossPrice)},
	)

	for i, t := range d.Targets {
		label := "Take Profit"
		if len(d.Targets) > 1 {
			label = fmt.Sprintf("Take Profit %d", i+1)
		}
		value := Level(t.Magnitude, d.InputMode, at(derived.TargetPrices, i))
		if p := at(derived.TargetPercentages, i); p != nil {
			value += fmt.Sprintf(" +%.2f%%", *p)
		}
		rows = append(rows, model.CardRow{Label: label, Value: value})
	}

	rows = append(rows,
		model.CardRow{Label: "Potential Profit", Value: Dollars(derived.PotentialProfit), Tone: "good"},
		model.CardRow{Label: "Potential Loss", Value: Dollars(derived.PotentialLoss), Tone: "sell"},
	)

	switch derived.Setup {
	case model.SetupValid:
		if derived.RewardRisk != nil {
			tone := "fair"
			if *derived.RewardRisk >= goodRewardRisk {
				tone = "good"
			}
			rows = append(rows, model.CardRow{
				Label: "Reward/Risk Ratio",
				Value: strconv.FormatFloat(*derived.RewardRisk, 'f', 2, 64),
				Tone:  tone,
			})
		}
	case model.SetupInvalid:
		card.Warning = "Warning: Check your entry, stop loss, and take profit levels."
	}

	card.Rows = rows
	return card
}

// Contracts formats a quantity as "1 Contract" or "N Contracts".
func Contracts(qty int) string {
	if qty == 1 {
		return "1 Contract"
	}
	return fmt.Sprintf("%d Contracts", qty)
}

// Price formats an absolute price, or the placeholder when not provided.
func Price(v float64) string {
	if v <= 0 {
		return Placeholder
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// Raw formats a raw input value in the unit of mode.
func Raw(v float64, mode model.InputMode) string {
	if v <= 0 {
		return Placeholder
	}
	switch mode {
	case model.ModePoints:
		return strconv.FormatFloat(v, 'f', -1, 64) + " pts"
	case model.ModeTicks:
		return strconv.FormatFloat(v, 'f', -1, 64) + " ticks"
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// Level formats a stop or target: the raw value, followed by the resolved
// price in parentheses outside price mode.
func Level(raw float64, mode model.InputMode, resolved *float64) string {
	s := Raw(raw, mode)
	if mode == model.ModePrice || s == Placeholder || resolved == nil {
		return s
	}
	return fmt.Sprintf("%s (%s)", s, strconv.FormatFloat(*resolved, 'f', 2, 64))
}

// Dollars formats a monetary value as "$1,234.50".
func Dollars(v *float64) string {
	if v == nil {
		return Placeholder
	}
	return "$" + humanize.FormatFloat("#,###.##", *v)
}

func orPlaceholder(s string) string {
	if strings.TrimSpace(s) == "" {
		return Placeholder
	}
	return s
}

func at(list []*float64, i int) *float64 {
	if i < 0 || i >= len(list) {
		return nil
	}
	return list[i]
}
