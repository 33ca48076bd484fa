package model

// Setup classifies the stop/entry/target arrangement.
type Setup string

const (
	SetupIncomplete Setup = "incomplete" // entry, stop-loss or take-profit not yet available
	SetupValid      Setup = "valid"
	SetupInvalid    Setup = "invalid"
)

// Derived holds every value computed from a Draft. Nil pointers mean the
// value is unavailable, which is not the same as zero.
type Derived struct {
	StopLossPrice     *float64   `json:"StopLossPrice"`
	TakeProfitPrice   *float64   `json:"TakeProfitPrice"`
	TargetPrices      []*float64 `json:"TargetPrices"`
	TargetPercentages []*float64 `json:"TargetPercentages"`
	PotentialProfit   *float64   `json:"PotentialProfit"`
	PotentialLoss     *float64   `json:"PotentialLoss"`
	RewardRisk        *float64   `json:"RewardRisk"`
	Setup             Setup      `json:"Setup"`
	Warnings          []string   `json:"Warnings"`
}

// CardRow is one label/value line of the preview card.
type CardRow struct {
	Label string `json:"Label"`
	Value string `json:"Value"`
	Tone  string `json:"Tone,omitempty"` // buy, sell, good, fair, warn
}

// Card is the display-ready rendering of a draft.
type Card struct {
	Title       string    `json:"Title"`
	Rows        []CardRow `json:"Rows"`
	Warning     string    `json:"Warning,omitempty"`
	Description string    `json:"Description"`
	Image       string    `json:"Image,omitempty"`
}

// Preview is a draft augmented with its derived fields.
type Preview struct {
	Draft   Draft   `json:"Draft"`
	Derived Derived `json:"Derived"`
	Card    Card    `json:"Card"`
}
