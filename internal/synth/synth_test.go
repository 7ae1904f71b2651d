package synth

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSynthesizer(seed int64) *Synthesizer {
	return NewSynthesizer(rand.New(rand.NewSource(seed)))
}

func TestSynthesize_DeterministicFields(t *testing.T) {
	s := newTestSynthesizer(1)

	rec := s.Synthesize(0)
	assert.Equal(t, "EXE-000000", rec.ExecID)
	assert.Equal(t, "ORD-0000", rec.OrderID)
	assert.Equal(t, "UST 2Y", rec.Symbol)
	assert.Equal(t, "91282CJL6", rec.CUSIP)
	assert.Equal(t, "BUY", rec.Side)
	assert.Equal(t, "JSMITH", rec.Trader)
	assert.Equal(t, "RATES-NY", rec.Book)

	rec = s.Synthesize(501)
	assert.Equal(t, "EXE-000501", rec.ExecID)
	assert.Equal(t, "ORD-0001", rec.OrderID, "order id wraps at 500")
	assert.Equal(t, "UST 30Y", rec.Symbol, "501 mod 6 = 3")
	assert.Equal(t, "912810TM0", rec.CUSIP)
	assert.Equal(t, "SELL", rec.Side, "odd index sells")
	assert.Equal(t, "ADOE", rec.Trader)
	assert.Equal(t, "RATES-NY", rec.Book)
}

func TestSynthesize_IdentifierFormats(t *testing.T) {
	s := newTestSynthesizer(2)

	for _, ii := range []int64{0, 1, 6, 499, 500, 501, 999_999} {
		rec := s.Synthesize(ii)
		assert.Equal(t, fmt.Sprintf("EXE-%06d", ii), rec.ExecID)
		assert.Equal(t, fmt.Sprintf("ORD-%04d", ii%500), rec.OrderID)
		if ii%2 == 0 {
			assert.Equal(t, "BUY", rec.Side)
		} else {
			assert.Equal(t, "SELL", rec.Side)
		}
	}
}

func TestSynthesize_SymbolCusipPairing(t *testing.T) {
	s := newTestSynthesizer(3)

	for ii := int64(0); ii < 100; ii++ {
		rec := s.Synthesize(ii)
		idx := ii % 6
		assert.Equal(t, symbols[idx], rec.Symbol)
		assert.Equal(t, cusips[idx], rec.CUSIP, "cusip must come from the same index as symbol")
	}
}

func TestSynthesize_RandomFieldRanges(t *testing.T) {
	s := newTestSynthesizer(4)

	for ii := int64(0); ii < 10_000; ii++ {
		rec := s.Synthesize(ii)

		require.Zero(t, rec.Quantity%1_000_000, "quantity must be a whole number of million lots")
		assert.GreaterOrEqual(t, rec.Quantity, int64(1_000_000))
		assert.LessOrEqual(t, rec.Quantity, int64(50_000_000))

		assert.GreaterOrEqual(t, rec.Price, 99.0)
		assert.LessOrEqual(t, rec.Price, 99.0+400.0/128.0)

		assert.GreaterOrEqual(t, rec.Yield, 3.5)
		assert.LessOrEqual(t, rec.Yield, 5.5)

		assert.InDelta(t, float64(rec.Quantity)*rec.Price/100.0, rec.Notional, 1e-6,
			"notional must be recomputed from the row's own quantity and price")

		assert.Contains(t, venues, rec.Venue)
		assert.Contains(t, counterparties, rec.Counterparty)
		assert.Contains(t, []string{"FILLED", "PARTIAL", "REJECTED"}, rec.ExecStatus)
	}
}

func TestSynthesize_StatusDistribution(t *testing.T) {
	s := newTestSynthesizer(5)

	const n = 100_000
	counts := make(map[string]int)
	for ii := int64(0); ii < n; ii++ {
		counts[s.Synthesize(ii).ExecStatus]++
	}

	assert.InDelta(t, 0.6, float64(counts["FILLED"])/n, 0.01)
	assert.InDelta(t, 0.2, float64(counts["PARTIAL"])/n, 0.01)
	assert.InDelta(t, 0.2, float64(counts["REJECTED"])/n, 0.01)
}

func TestValidate(t *testing.T) {
	s := newTestSynthesizer(6)

	for ii := int64(0); ii < 1000; ii++ {
		require.NoError(t, Validate(s.Synthesize(ii)))
	}

	rec := s.Synthesize(42)
	rec.CUSIP = "91282CJM4" // belongs to UST 5Y, not index 42's symbol
	assert.Error(t, Validate(rec))

	rec = s.Synthesize(42)
	rec.Notional = rec.Notional + 1
	assert.Error(t, Validate(rec))

	rec = s.Synthesize(43)
	rec.Side = "BUY"
	assert.Error(t, Validate(rec), "odd index must sell")
}

func TestWeightedTable_Pick(t *testing.T) {
	table := NewWeightedTable(
		WeightedEntry{Value: "A", Weight: 3},
		WeightedEntry{Value: "B", Weight: 1},
		WeightedEntry{Value: "C", Weight: 1},
	)
	require.Equal(t, 5, table.TotalWeight())

	// Cumulative boundaries: A owns [0, 0.6), B owns [0.6, 0.8), C the rest.
	assert.Equal(t, "A", table.Pick(0.0))
	assert.Equal(t, "A", table.Pick(0.59))
	assert.Equal(t, "B", table.Pick(0.6))
	assert.Equal(t, "B", table.Pick(0.79))
	assert.Equal(t, "C", table.Pick(0.8))
	assert.Equal(t, "C", table.Pick(0.999999))
}

func TestWeightedTable_IgnoresNonPositiveWeights(t *testing.T) {
	table := NewWeightedTable(
		WeightedEntry{Value: "dead", Weight: 0},
		WeightedEntry{Value: "live", Weight: 2},
		WeightedEntry{Value: "negative", Weight: -1},
	)
	assert.Equal(t, 2, table.TotalWeight())
	assert.Equal(t, "live", table.Pick(0.0))
	assert.Equal(t, "live", table.Pick(0.99))
}
