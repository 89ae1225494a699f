/*
results.go - Result set derivation

PURPOSE:
  Result rows are replaced wholesale on every create/update: delete all
  existing rows for the quote, re-insert the supplied set. The only derived
  field this core computes is serviced_months.

DERIVATION:
  serviced_months = max(0, initial_term - rolled_months) when both inputs
  are present; nil when either is missing. Never negative.
*/
package quote

// DeriveServicedMonths computes the serviced portion of the loan term.
func DeriveServicedMonths(initialTerm, rolledMonths *int) *int {
	if initialTerm == nil || rolledMonths == nil {
		return nil
	}
	months := *initialTerm - *rolledMonths
	if months < 0 {
		months = 0
	}
	return &months
}

// NormalizeResults prepares client-supplied result rows for persistence:
// forces the owning quote id, defaults the stage, and computes derived
// fields. Client-supplied rows never carry the DIP stage - only the
// reconciler writes that row.
func NormalizeResults(quoteID string, results []QuoteResult) []QuoteResult {
	out := make([]QuoteResult, len(results))
	for i, res := range results {
		res.QuoteID = quoteID
		if res.Stage == "" || res.Stage == StageDIP {
			res.Stage = StageQuote
		}
		res.ServicedMonths = DeriveServicedMonths(res.InitialTerm, res.RolledMonths)
		out[i] = res
	}
	return out
}
