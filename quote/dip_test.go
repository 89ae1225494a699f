package quote

import (
	"testing"

	"github.com/shopspring/decimal"
)

func dec(v int64) *decimal.Decimal {
	d := decimal.NewFromInt(v)
	return &d
}

func TestBestDIPCandidate_MaxNetLoan(t *testing.T) {
	candidates := []QuoteResult{
		{ID: "a", NetLoan: dec(100000)},
		{ID: "b", NetLoan: dec(250000)},
		{ID: "c", NetLoan: dec(180000)},
	}

	best := BestDIPCandidate(candidates)
	if best == nil || best.ID != "b" {
		t.Fatalf("expected candidate b (net 250000), got %+v", best)
	}
}

func TestBestDIPCandidate_GrossLoanFallback(t *testing.T) {
	// All-null net loans fall back to gross loan.
	candidates := []QuoteResult{
		{ID: "a", GrossLoan: dec(50000)},
		{ID: "b", GrossLoan: dec(90000)},
	}

	best := BestDIPCandidate(candidates)
	if best == nil || best.ID != "b" {
		t.Fatalf("expected candidate b (gross 90000), got %+v", best)
	}
}

func TestBestDIPCandidate_TieKeepsFirst(t *testing.T) {
	candidates := []QuoteResult{
		{ID: "first", NetLoan: dec(200000)},
		{ID: "second", NetLoan: dec(200000)},
	}

	best := BestDIPCandidate(candidates)
	if best == nil || best.ID != "first" {
		t.Fatalf("tie should keep first encountered, got %+v", best)
	}
}

func TestBestDIPCandidate_NetBeatsGross(t *testing.T) {
	// coalesce(net, gross, 0): a row with a small net loan still competes
	// on that net value, not its larger gross.
	candidates := []QuoteResult{
		{ID: "a", NetLoan: dec(100), GrossLoan: dec(900000)},
		{ID: "b", NetLoan: dec(200)},
	}

	best := BestDIPCandidate(candidates)
	if best == nil || best.ID != "b" {
		t.Fatalf("expected b, got %+v", best)
	}
}

func TestBestDIPCandidate_Empty(t *testing.T) {
	if BestDIPCandidate(nil) != nil {
		t.Error("empty candidate set should yield nil")
	}
}

func TestCloneForDIP(t *testing.T) {
	src := QuoteResult{
		ID:          "src-id",
		QuoteID:     "other-quote",
		Stage:       StageQuote,
		ProductName: "2yr Fixed",
		NetLoan:     dec(250000),
	}

	clone := CloneForDIP(src, "q-1")

	if clone.ID != "" {
		t.Error("clone must not keep the source id")
	}
	if clone.QuoteID != "q-1" {
		t.Errorf("clone quote id should be forced to q-1, got %q", clone.QuoteID)
	}
	if clone.Stage != StageDIP {
		t.Errorf("clone stage should be DIP, got %q", clone.Stage)
	}
	if clone.ProductName != "2yr Fixed" || clone.NetLoan == nil {
		t.Error("clone should carry the candidate's fields")
	}
	if !clone.CreatedAt.IsZero() || !clone.UpdatedAt.IsZero() {
		t.Error("clone timestamps should be reset for the store to assign")
	}
}
