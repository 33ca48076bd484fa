package model

// Contract describes the economics of a tradable futures contract.
type Contract struct {
	Symbol        string  `json:"Symbol" msgpack:"symbol"`
	Name          string  `json:"Name" msgpack:"name"`
	PointValue    float64 `json:"PointValue" msgpack:"point_value"`         // dollars per full point, per contract
	TickValue     float64 `json:"TickValue" msgpack:"tick_value"`           // dollars per tick, per contract
	TicksPerPoint int     `json:"TicksPerPoint" msgpack:"ticks_per_point"`
}

// PointDelta is the price delta one point of input maps to.
func (c Contract) PointDelta() float64 {
	if c.TicksPerPoint == 0 {
		return 0
	}
	return c.PointValue / float64(c.TicksPerPoint)
}
