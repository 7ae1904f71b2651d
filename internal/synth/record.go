package synth

// ExecutionRecord represents one synthetic bond execution row.
// Records are immutable once created; the feed never mutates a
// record after it has been appended.
type ExecutionRecord struct {
	// Index is the zero-based row index assigned by the feed counter.
	Index        int64   `json:"index"`
	ExecID       string  `json:"exec_id"`
	OrderID      string  `json:"order_id"`
	Symbol       string  `json:"symbol"`
	CUSIP        string  `json:"cusip"`
	Side         string  `json:"side"` // "BUY" or "SELL"
	Quantity     int64   `json:"quantity"`
	Price        float64 `json:"price"`
	Yield        float64 `json:"yield"`
	Notional     float64 `json:"notional"`
	Venue        string  `json:"venue"`
	Counterparty string  `json:"counterparty"`
	ExecStatus   string  `json:"exec_status"` // "FILLED", "PARTIAL" or "REJECTED"
	Trader       string  `json:"trader"`
	Book         string  `json:"book"`
}
