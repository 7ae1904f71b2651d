package synth

import (
	"fmt"
	"math"
)

// Validate checks that a record honors every derivation rule for its
// index: identifier formats, table lookups, side parity, random-field
// ranges and the notional identity. Used by consumers auditing the feed.
func Validate(rec ExecutionRecord) error {
	if rec.Index < 0 {
		return fmt.Errorf("negative index %d", rec.Index)
	}

	if want := fmt.Sprintf("EXE-%06d", rec.Index); rec.ExecID != want {
		return fmt.Errorf("exec_id %q, want %q", rec.ExecID, want)
	}
	if want := fmt.Sprintf("ORD-%04d", rec.Index%500); rec.OrderID != want {
		return fmt.Errorf("order_id %q, want %q", rec.OrderID, want)
	}

	idx := rec.Index % int64(len(symbols))
	if rec.Symbol != symbols[idx] {
		return fmt.Errorf("symbol %q, want %q", rec.Symbol, symbols[idx])
	}
	if rec.CUSIP != cusips[idx] {
		return fmt.Errorf("cusip %q not aligned with symbol %q", rec.CUSIP, rec.Symbol)
	}

	wantSide := "SELL"
	if rec.Index%2 == 0 {
		wantSide = "BUY"
	}
	if rec.Side != wantSide {
		return fmt.Errorf("side %q, want %q", rec.Side, wantSide)
	}

	if rec.Trader != traders[rec.Index%int64(len(traders))] {
		return fmt.Errorf("trader %q, want %q", rec.Trader, traders[rec.Index%int64(len(traders))])
	}
	if rec.Book != books[rec.Index%int64(len(books))] {
		return fmt.Errorf("book %q, want %q", rec.Book, books[rec.Index%int64(len(books))])
	}

	if rec.Quantity < 1_000_000 || rec.Quantity > 50_000_000 || rec.Quantity%1_000_000 != 0 {
		return fmt.Errorf("quantity %d outside [1M, 50M] in whole millions", rec.Quantity)
	}
	if rec.Price < 99.0 || rec.Price > 99.0+400.0/128.0 {
		return fmt.Errorf("price %f out of range", rec.Price)
	}
	if rec.Yield < 3.5 || rec.Yield > 5.5 {
		return fmt.Errorf("yield %f out of range", rec.Yield)
	}
	if math.Abs(rec.Notional-float64(rec.Quantity)*rec.Price/100.0) > 1e-6 {
		return fmt.Errorf("notional %f does not match quantity*price/100", rec.Notional)
	}

	if !contains(venues, rec.Venue) {
		return fmt.Errorf("unknown venue %q", rec.Venue)
	}
	if !contains(counterparties, rec.Counterparty) {
		return fmt.Errorf("unknown counterparty %q", rec.Counterparty)
	}
	switch rec.ExecStatus {
	case "FILLED", "PARTIAL", "REJECTED":
	default:
		return fmt.Errorf("unknown exec_status %q", rec.ExecStatus)
	}

	return nil
}

func contains(values []string, v string) bool {
	for _, x := range values {
		if x == v {
			return true
		}
	}
	return false
}
