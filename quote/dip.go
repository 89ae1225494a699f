/*
dip.go - DIP candidate selection

PURPOSE:
  When a quote's dip_status is promoted to an "issued" value, exactly one
  QUOTE-stage result row is re-derived into the canonical DIP row. This file
  holds the pure selection heuristic; the surrounding delete/insert steps
  live in service.go.

HEURISTIC:
  Maximize coalesce(net_loan, gross_loan, 0) over the candidates. Linear
  scan; ties keep the first row encountered.
*/
package quote

import (
	"time"

	"github.com/shopspring/decimal"
)

// BestDIPCandidate selects the candidate with the highest effective loan
// value. Returns nil when the candidate set is empty.
func BestDIPCandidate(candidates []QuoteResult) *QuoteResult {
	var best *QuoteResult
	bestValue := decimal.Zero
	for i := range candidates {
		v := effectiveLoanValue(&candidates[i])
		if best == nil || v.GreaterThan(bestValue) {
			best = &candidates[i]
			bestValue = v
		}
	}
	return best
}

func effectiveLoanValue(r *QuoteResult) decimal.Decimal {
	if r.NetLoan != nil {
		return *r.NetLoan
	}
	if r.GrossLoan != nil {
		return *r.GrossLoan
	}
	return decimal.Zero
}

// CloneForDIP copies a candidate's fields into a fresh DIP-stage row for
// the owning quote. Identity and timestamps are left for the store to
// assign; stage and quote id are forced.
func CloneForDIP(candidate QuoteResult, quoteID string) QuoteResult {
	clone := candidate
	clone.ID = ""
	clone.QuoteID = quoteID
	clone.Stage = StageDIP
	clone.CreatedAt = time.Time{}
	clone.UpdatedAt = time.Time{}
	return clone
}
