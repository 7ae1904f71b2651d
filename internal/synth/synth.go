package synth

import (
	"fmt"
	"math"
)

// Reference data for the synthetic US rates desk.
var (
	symbols = []string{"UST 2Y", "UST 5Y", "UST 10Y", "UST 30Y", "SOFR 3M", "TIPS 10Y"}

	// cusips is positionally aligned with symbols: the same index must
	// be used into both tables.
	cusips = []string{"91282CJL6", "91282CJM4", "91282CJN2", "912810TM0", "91282CJP7", "912810TP3"}

	venues = []string{"D2C", "D2D", "ECN", "RFQ", "CLOB"}

	counterparties = []string{"GS", "JPM", "MS", "BARC", "CITI", "BofA", "HSBC", "DB"}

	traders = []string{"JSMITH", "ADOE", "MWONG", "KPATEL"}

	books = []string{"RATES-NY", "RATES-LDN", "RATES-TKY"}

	// Fills dominate; partials and rejects are equally rare.
	execStatuses = NewWeightedTable(
		WeightedEntry{Value: "FILLED", Weight: 3},
		WeightedEntry{Value: "PARTIAL", Weight: 1},
		WeightedEntry{Value: "REJECTED", Weight: 1},
	)
)

// Uniform is a source of uniform random draws in [0,1).
// *math/rand.Rand satisfies it.
type Uniform interface {
	Float64() float64
}

// Synthesizer computes all column values for one execution row.
// It is stateless across calls; the row index is owned by the caller.
type Synthesizer struct {
	rng Uniform
}

// NewSynthesizer creates a synthesizer drawing randomness from rng.
func NewSynthesizer(rng Uniform) *Synthesizer {
	return &Synthesizer{rng: rng}
}

// Synthesize builds the execution record for row index ii.
//
// Identifier, instrument, side, trader and book fields are pure functions
// of ii, so replaying the same index sequence reproduces them exactly.
// Quantity, price, yield, venue, counterparty and status consume fresh
// draws and carry no reproducibility contract. ii must be non-negative;
// the caller is responsible for supplying indexes in strictly increasing
// order.
func (s *Synthesizer) Synthesize(ii int64) ExecutionRecord {
	rec := ExecutionRecord{
		Index:   ii,
		ExecID:  fmt.Sprintf("EXE-%06d", ii),
		OrderID: fmt.Sprintf("ORD-%04d", ii%500),
		Symbol:  symbols[ii%int64(len(symbols))],
		CUSIP:   cusips[ii%int64(len(cusips))],
		Trader:  traders[ii%int64(len(traders))],
		Book:    books[ii%int64(len(books))],
	}

	if ii%2 == 0 {
		rec.Side = "BUY"
	} else {
		rec.Side = "SELL"
	}

	// Lots in 1..50, scaled to millions of face value. The rounding
	// edge at u close to 1 would produce 51 lots, so clamp.
	lots := int64(math.Round(s.rng.Float64()*50 + 1))
	if lots > 50 {
		lots = 50
	}
	rec.Quantity = lots * 1_000_000

	// Prices tick in 1/128ths, yields in basis points.
	rec.Price = 99.0 + math.Round(s.rng.Float64()*400)/128.0
	rec.Yield = 3.5 + math.Round(s.rng.Float64()*200)/100.0
	rec.Notional = float64(rec.Quantity) * rec.Price / 100.0

	rec.Venue = pick(s.rng, venues)
	rec.Counterparty = pick(s.rng, counterparties)
	rec.ExecStatus = execStatuses.Pick(s.rng.Float64())

	return rec
}

// pick selects one entry uniformly at random.
func pick(rng Uniform, values []string) string {
	i := int(rng.Float64() * float64(len(values)))
	if i >= len(values) {
		i = len(values) - 1
	}
	return values[i]
}
