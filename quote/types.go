/*
types.go - Core types for the quote lifecycle engine

PURPOSE:
  Defines the two parallel entity families (BTL and Bridging quotes) and
  their child result rows. Both families share one Go type; the owning
  ProductFamily tag decides which table pair a row lives in.

KEY TYPES:
  Quote:       One pricing scenario with lifecycle milestones
  QuoteResult: One priced product/fee option for a quote
  Stage:       QUOTE (default, many per quote) or DIP (at most one per quote)

LIFECYCLE MILESTONES:
  quote_issued_at / dip_issued_at are promoted from free-text status strings:
  a case-insensitive substring match on "issued" marks the milestone. Once
  set, the timestamps are monotonic - unrelated updates never clear them.

SEE ALSO:
  - family.go: ProductFamily resolution
  - results.go: serviced-months derivation
  - service.go: lifecycle orchestration
*/
package quote

import (
	"time"

	"github.com/shopspring/decimal"
)

// Stage marks where a result row sits in the quote lifecycle.
type Stage string

const (
	// StageQuote is the default stage for client-supplied result rows.
	StageQuote Stage = "QUOTE"
	// StageDIP marks the single canonical Decision-in-Principle row.
	StageDIP Stage = "DIP"
)

// Quote is one pricing scenario for a broker's client.
type Quote struct {
	ID              string
	ReferenceNumber string
	CalculatorType  string // canonical tag: "BTL" or "BRIDGING"
	LoanAmount      *decimal.Decimal
	GrossLoan       *decimal.Decimal
	LTV             *decimal.Decimal
	PayloadJSON     string // opaque scenario fields
	QuoteStatus     string
	DIPStatus       string
	QuoteIssuedAt   *time.Time
	DIPIssuedAt     *time.Time
	UserID          string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// QuoteResult is one priced product/fee-option variant of a quote.
// Financial fields this core does not interpret travel in PayloadJSON.
type QuoteResult struct {
	ID             string
	QuoteID        string
	Stage          Stage
	ProductName    string
	FeeColumn      string
	Rate           *decimal.Decimal
	ProductFee     *decimal.Decimal
	NetLoan        *decimal.Decimal
	GrossLoan      *decimal.Decimal
	InitialTerm    *int
	RolledMonths   *int
	ServicedMonths *int // derived, see results.go
	PayloadJSON    string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// QuoteUpdate carries a partial update. Nil pointers mean "field untouched";
// the merge semantics live in Service.Update.
type QuoteUpdate struct {
	LoanAmount    *decimal.Decimal
	GrossLoan     *decimal.Decimal
	LTV           *decimal.Decimal
	PayloadJSON   *string
	QuoteStatus   *string
	DIPStatus     *string
	QuoteIssuedAt *time.Time
	DIPIssuedAt   *time.Time
}

// ListFilter narrows a quote listing.
type ListFilter struct {
	UserID string
	Limit  int
	Offset int
}
