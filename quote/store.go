/*
store.go - Persistence interface for the quote lifecycle

PURPOSE:
  Defines what the service needs from the external store. Every method is
  family-parameterized: the caller resolves the ProductFamily once and the
  store maps it to the owning table pair.

NOT-FOUND CONTRACT:
  GetQuote/UpdateQuote/DeleteQuote return ErrNotFound for the definitive
  "no rows" outcome in that family. Any other failure propagates as-is and
  must never trigger a fallback probe into the sibling family.

SEE ALSO:
  - store/sqlite: the SQLite implementation
  - service.go: fallback probing and best-effort side effects
*/
package quote

import "context"

// Store is the persistence contract for quotes and their result rows.
type Store interface {
	// InsertQuote creates a quote row in the family's table.
	InsertQuote(ctx context.Context, family ProductFamily, q Quote) error

	// GetQuote returns the quote or ErrNotFound.
	GetQuote(ctx context.Context, family ProductFamily, id string) (*Quote, error)

	// UpdateQuote writes the full row. Returns ErrNotFound when the update
	// affected zero rows in this family.
	UpdateQuote(ctx context.Context, family ProductFamily, q Quote) error

	// DeleteQuote removes the quote row, returning the deleted quote or
	// ErrNotFound. Child results are NOT cascaded here.
	DeleteQuote(ctx context.Context, family ProductFamily, id string) (*Quote, error)

	// ListQuotes returns quotes newest-first.
	ListQuotes(ctx context.Context, family ProductFamily, filter ListFilter) ([]Quote, error)

	// ReplaceResults deletes all result rows for the quote and bulk-inserts
	// the supplied set, returning the inserted count. The delete and insert
	// are separate statements; the delete may commit even when the insert
	// fails.
	ReplaceResults(ctx context.Context, family ProductFamily, quoteID string, results []QuoteResult) (int, error)

	// ListResults returns all result rows for a quote.
	ListResults(ctx context.Context, family ProductFamily, quoteID string) ([]QuoteResult, error)

	// DeleteResults removes all result rows for a quote.
	DeleteResults(ctx context.Context, family ProductFamily, quoteID string) error

	// DeleteDIPResult removes any DIP-stage row for the quote.
	DeleteDIPResult(ctx context.Context, family ProductFamily, quoteID string) error

	// InsertResult creates a single result row.
	InsertResult(ctx context.Context, family ProductFamily, res QuoteResult) error
}
