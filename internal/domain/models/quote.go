package models

// Quote is the canonical point-in-time price snapshot for one ticker.
type Quote struct {
	Symbol        string   `json:"symbol"`
	Price         float64  `json:"price"`
	Change        float64  `json:"change"`
	ChangePercent float64  `json:"changePercent"` // percent, 2.0 means +2%
	High          float64  `json:"high"`
	Low           float64  `json:"low"`
	Open          float64  `json:"open"`
	PreviousClose float64  `json:"previousClose"`
	Volume        int64    `json:"volume"`
	MarketCap     *float64 `json:"marketCap,omitempty"`
	Timestamp     int64    `json:"timestamp"` // epoch milliseconds
	Source        string   `json:"-"`
}

// Valid reports whether q carries a usable price. A zero price means the
// provider had no data, not that the instrument trades at zero.
func (q *Quote) Valid() bool {
	return q != nil && q.Price > 0
}
