package model

import (
	"time"
)

// InputMode defines how raw stop-loss and take-profit values are read.
type InputMode string

const (
	ModePrice  InputMode = "price"
	ModePoints InputMode = "points"
	ModeTicks  InputMode = "ticks"
)

func (m InputMode) Valid() bool {
	switch m {
	case ModePrice, ModePoints, ModeTicks:
		return true
	}
	return false
}

// Direction is the side of the trade idea.
type Direction string

const (
	DirectionBuy  Direction = "buy"
	DirectionSell Direction = "sell"
)

func (d Direction) Valid() bool {
	return d == DirectionBuy || d == DirectionSell
}

// OrderKind is the order type attached to the signal.
type OrderKind string

const (
	OrderMarket OrderKind = "MARKET"
	OrderLimit  OrderKind = "LIMIT"
	OrderStop   OrderKind = "STOP"
)

func (k OrderKind) Valid() bool {
	switch k {
	case OrderMarket, OrderLimit, OrderStop:
		return true
	}
	return false
}

// TakeProfitTarget is one take-profit row. Magnitude is in the unit of the
// draft's InputMode; Percentage is nil until it can be computed.
type TakeProfitTarget struct {
	Magnitude  float64  `json:"Magnitude" msgpack:"magnitude"`
	Percentage *float64 `json:"Percentage" msgpack:"percentage"`
}

// Draft is the in-progress signal owned by one editing session.
type Draft struct {
	ID               string             `json:"ID" msgpack:"id"`
	Symbol           string             `json:"Symbol" msgpack:"symbol"`
	AssetName        string             `json:"AssetName" msgpack:"asset_name"`
	Contract         *Contract          `json:"Contract" msgpack:"contract"` // nil while unresolved
	InputMode        InputMode          `json:"InputMode" msgpack:"input_mode"`
	Direction        Direction          `json:"Direction" msgpack:"direction"`
	EntryPrice       float64            `json:"EntryPrice" msgpack:"entry_price"`
	CurrentPrice     float64            `json:"CurrentPrice" msgpack:"current_price"`
	StopLoss         float64            `json:"StopLoss" msgpack:"stop_loss"`
	Targets          []TakeProfitTarget `json:"Targets" msgpack:"targets"`
	ContractQuantity int                `json:"ContractQuantity" msgpack:"contract_quantity"`
	OrderKind        OrderKind          `json:"OrderKind" msgpack:"order_kind"`
	Description      string             `json:"Description" msgpack:"description"`
	Image            string             `json:"Image,omitempty" msgpack:"image"`
	CreatedAt        time.Time          `json:"CreatedAt" msgpack:"created_at"`
	UpdatedAt        time.Time          `json:"UpdatedAt" msgpack:"updated_at"`
}

// NewDraft returns a draft with the form defaults: points mode, buy, one
// contract, a market order and a single empty target.
func NewDraft(id string) Draft {
	now := time.Now()
	return Draft{
		ID:               id,
		InputMode:        ModePoints,
		Direction:        DirectionBuy,
		Targets:          []TakeProfitTarget{{}},
		ContractQuantity: 1,
		OrderKind:        OrderMarket,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

// TakeProfit returns the primary target magnitude (the first row).
func (d Draft) TakeProfit() float64 {
	if len(d.Targets) == 0 {
		return 0
	}
	return d.Targets[0].Magnitude
}

// AddTarget appends an empty target row.
func (d *Draft) AddTarget() {
	d.Targets = append(d.Targets, TakeProfitTarget{})
}

// RemoveTarget deletes the target at index. It reports false and leaves the
// list untouched when only one row remains or the index is out of range.
func (d *Draft) RemoveTarget(index int) bool {
	if len(d.Targets) <= 1 || index < 0 || index >= len(d.Targets) {
		return false
	}
	d.Targets = append(d.Targets[:index:index], d.Targets[index+1:]...)
	return true
}

// SetTarget updates the magnitude of the target at index.
func (d *Draft) SetTarget(index int, magnitude float64) bool {
	if index < 0 || index >= len(d.Targets) {
		return false
	}
	d.Targets[index].Magnitude = magnitude
	return true
}

// Clone returns a deep copy so callers never share target slices.
func (d Draft) Clone() Draft {
	out := d
	if d.Contract != nil {
		c := *d.Contract
		out.Contract = &c
	}
	out.Targets = make([]TakeProfitTarget, len(d.Targets))
	for i, t := range d.Targets {
		out.Targets[i].Magnitude = t.Magnitude
		if t.Percentage != nil {
			p := *t.Percentage
			out.Targets[i].Percentage = &p
		}
	}
	return out
}

// DraftEdit is a partial update; nil fields are left unchanged.
type DraftEdit struct {
	Symbol           *string    `json:"Symbol"`
	InputMode        *InputMode `json:"InputMode"`
	Direction        *Direction `json:"Direction"`
	EntryPrice       *float64   `json:"EntryPrice"`
	CurrentPrice     *float64   `json:"CurrentPrice"`
	StopLoss         *float64   `json:"StopLoss"`
	ContractQuantity *int       `json:"ContractQuantity"`
	OrderKind        *OrderKind `json:"OrderKind"`
	Description      *string    `json:"Description"`
}
