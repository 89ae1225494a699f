/*
service.go - Quote lifecycle orchestration

PURPOSE:
  Implements the client-visible operations: create, get, update, delete,
  list. The primary quote write is the unit of success/failure; everything
  downstream (result replacement, DIP reconciliation) is a best-effort side
  effect that degrades to "logged but not reported".

FAMILY RESOLUTION:
  The family is resolved once per operation:
  - create: from the calculatorType string
  - get/delete: probe BTL first, then Bridging on a definitive not-found
  - update: from the caller's hint (default BTL), with a sibling retry when
    the primary family reports not-found - hints can be stale or omitted

TIMESTAMP PROMOTION:
  quote_status and dip_status are free text; a case-insensitive substring
  match on "issued" promotes the corresponding timestamp. Once set, the
  timestamp is monotonic: it survives unrelated updates and only moves
  forward when the caller explicitly supplies a newer value.

ERROR HANDLING:
  Store errors other than not-found propagate immediately and never trigger
  the sibling probe. Side-effect failures are logged with a "non-fatal"
  prefix and swallowed.
*/
package quote

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Service orchestrates the quote lifecycle over a Store.
type Service struct {
	store Store
	refs  *ReferenceIssuer
	now   func() time.Time
}

// NewService creates a lifecycle service.
func NewService(store Store, refs *ReferenceIssuer) *Service {
	return &Service{store: store, refs: refs, now: time.Now}
}

// CreateInput carries everything needed to create a quote.
type CreateInput struct {
	CalculatorType string
	UserID         string // authenticated caller, never client-supplied
	Quote          Quote
	Results        []QuoteResult
}

// Create inserts a new quote in the family selected by calculatorType and
// writes any initial result rows. Result-write failure does not fail the
// create (the quote row already committed).
func (s *Service) Create(ctx context.Context, in CreateInput) (*Quote, error) {
	family := ResolveFamily(in.CalculatorType)

	q := in.Quote
	q.ID = uuid.NewString()
	q.CalculatorType = family.Tag()
	q.ReferenceNumber = s.refs.Issue(ctx)
	q.UserID = in.UserID
	now := s.now().UTC()
	q.CreatedAt = now
	q.UpdatedAt = now

	// Status strings can arrive pre-issued (e.g. a quote created directly
	// from an illustration); promote timestamps on the way in.
	q.QuoteIssuedAt = promoteIssuedAt(nil, q.QuoteIssuedAt, true, q.QuoteStatus, now)
	q.DIPIssuedAt = promoteIssuedAt(nil, q.DIPIssuedAt, true, q.DIPStatus, now)

	if err := s.store.InsertQuote(ctx, family, q); err != nil {
		return nil, fmt.Errorf("failed to create quote: %w", err)
	}

	if len(in.Results) > 0 {
		s.replaceResultsBestEffort(ctx, family, q.ID, in.Results)
	}

	return &q, nil
}

// Get returns the quote, probing BTL first and Bridging on a miss. The
// family that owns the row also owns its results table.
func (s *Service) Get(ctx context.Context, id string, includeResults bool) (*Quote, []QuoteResult, error) {
	q, family, err := s.resolve(ctx, id, FamilyBTL)
	if err != nil {
		return nil, nil, err
	}

	var results []QuoteResult
	if includeResults {
		results, err = s.store.ListResults(ctx, family, id)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to load results: %w", err)
		}
	}
	return q, results, nil
}

// UpdateInput carries a partial update for a quote.
type UpdateInput struct {
	CalculatorTypeHint string // optional; stale hints are tolerated
	Fields             QuoteUpdate
	Results            []QuoteResult // nil means "leave results alone"
}

// Update merges the supplied fields onto the stored quote and persists it,
// falling back to the sibling family when the hinted family misses. When
// the update promotes dip_status to an issued value the DIP reconciler runs
// as a best-effort side step.
func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (*Quote, error) {
	primary := FamilyBTL
	if in.CalculatorTypeHint != "" {
		primary = ResolveFamily(in.CalculatorTypeHint)
	}

	existing, family, err := s.resolve(ctx, id, primary)
	if err != nil {
		return nil, err
	}

	updated := mergeUpdate(*existing, in.Fields, s.now().UTC())
	if err := s.store.UpdateQuote(ctx, family, updated); err != nil {
		return nil, err
	}

	if in.Results != nil {
		s.replaceResultsBestEffort(ctx, family, id, in.Results)
	}

	if in.Fields.DIPStatus != nil && statusIssued(*in.Fields.DIPStatus) {
		s.reconcileDIP(ctx, family, id)
	}

	return &updated, nil
}

// Delete removes the quote, probing both families, then clears child
// results best-effort (the cascade is conceptual, not transactional).
func (s *Service) Delete(ctx context.Context, id string) (*Quote, error) {
	q, err := s.store.DeleteQuote(ctx, FamilyBTL, id)
	family := FamilyBTL
	if errors.Is(err, ErrNotFound) {
		q, err = s.store.DeleteQuote(ctx, FamilyBridging, id)
		family = FamilyBridging
	}
	if err != nil {
		return nil, err
	}

	if derr := s.store.DeleteResults(ctx, family, id); derr != nil {
		log.Printf("non-fatal: failed to delete results for quote %s: %v", id, derr)
	}
	return q, nil
}

// List returns a date-descending page. With an empty calculatorType the
// page is the merge of both families, equivalent to listing each family
// separately and merge-sorting on created_at.
func (s *Service) List(ctx context.Context, calculatorType string, filter ListFilter) ([]Quote, error) {
	if filter.Limit <= 0 {
		filter.Limit = 50
	}

	if calculatorType != "" {
		return s.store.ListQuotes(ctx, ResolveFamily(calculatorType), filter)
	}

	// Pull enough rows from each family to fill the page after merging.
	wide := ListFilter{UserID: filter.UserID, Limit: filter.Limit + filter.Offset}
	btl, err := s.store.ListQuotes(ctx, FamilyBTL, wide)
	if err != nil {
		return nil, err
	}
	bridging, err := s.store.ListQuotes(ctx, FamilyBridging, wide)
	if err != nil {
		return nil, err
	}

	merged := mergeByCreatedDesc(btl, bridging)
	if filter.Offset >= len(merged) {
		return []Quote{}, nil
	}
	merged = merged[filter.Offset:]
	if len(merged) > filter.Limit {
		merged = merged[:filter.Limit]
	}
	return merged, nil
}

// resolve locates the quote, trying the primary family first and its
// sibling on a definitive not-found. Other errors propagate untouched.
func (s *Service) resolve(ctx context.Context, id string, primary ProductFamily) (*Quote, ProductFamily, error) {
	q, err := s.store.GetQuote(ctx, primary, id)
	if err == nil {
		return q, primary, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, primary, err
	}

	sibling := primary.Sibling()
	q, err = s.store.GetQuote(ctx, sibling, id)
	if err != nil {
		return nil, sibling, err
	}
	return q, sibling, nil
}

// replaceResultsBestEffort runs the result set writer, logging failures
// instead of surfacing them. The owning quote write already succeeded.
func (s *Service) replaceResultsBestEffort(ctx context.Context, family ProductFamily, quoteID string, results []QuoteResult) {
	normalized := NormalizeResults(quoteID, results)
	if _, err := s.store.ReplaceResults(ctx, family, quoteID, normalized); err != nil {
		log.Printf("non-fatal: failed to replace results for quote %s: %v", quoteID, err)
	}
}

// reconcileDIP enforces the single-canonical-DIP-row invariant: drop any
// stale DIP row, re-derive one from the current QUOTE-stage rows. Every
// failure is logged and swallowed - reconciliation must not fail the quote
// update that triggered it.
func (s *Service) reconcileDIP(ctx context.Context, family ProductFamily, quoteID string) {
	if err := s.store.DeleteDIPResult(ctx, family, quoteID); err != nil {
		log.Printf("non-fatal: DIP reconciliation (delete) failed for quote %s: %v", quoteID, err)
		return
	}

	all, err := s.store.ListResults(ctx, family, quoteID)
	if err != nil {
		log.Printf("non-fatal: DIP reconciliation (load) failed for quote %s: %v", quoteID, err)
		return
	}

	var candidates []QuoteResult
	for _, r := range all {
		if r.Stage != StageDIP {
			candidates = append(candidates, r)
		}
	}

	best := BestDIPCandidate(candidates)
	if best == nil {
		return
	}

	dip := CloneForDIP(*best, quoteID)
	dip.ID = uuid.NewString()
	if err := s.store.InsertResult(ctx, family, dip); err != nil {
		log.Printf("non-fatal: DIP reconciliation (insert) failed for quote %s: %v", quoteID, err)
	}
}

// mergeUpdate applies a partial update onto the stored quote, including
// the timestamp-promotion rules.
func mergeUpdate(q Quote, u QuoteUpdate, now time.Time) Quote {
	if u.LoanAmount != nil {
		q.LoanAmount = u.LoanAmount
	}
	if u.GrossLoan != nil {
		q.GrossLoan = u.GrossLoan
	}
	if u.LTV != nil {
		q.LTV = u.LTV
	}
	if u.PayloadJSON != nil {
		q.PayloadJSON = *u.PayloadJSON
	}

	quoteStatusTouched := u.QuoteStatus != nil
	dipStatusTouched := u.DIPStatus != nil
	if quoteStatusTouched {
		q.QuoteStatus = *u.QuoteStatus
	}
	if dipStatusTouched {
		q.DIPStatus = *u.DIPStatus
	}

	q.QuoteIssuedAt = promoteIssuedAt(q.QuoteIssuedAt, u.QuoteIssuedAt, quoteStatusTouched, q.QuoteStatus, now)
	q.DIPIssuedAt = promoteIssuedAt(q.DIPIssuedAt, u.DIPIssuedAt, dipStatusTouched, q.DIPStatus, now)

	q.UpdatedAt = now
	return q
}

// promoteIssuedAt applies the milestone timestamp rules:
//   - status touched and issued: keep the existing timestamp, unless the
//     caller explicitly supplied a newer one; first promotion uses the
//     supplied value, else now
//   - status untouched: re-assert the existing timestamp so a partial
//     update never appears to null it out
func promoteIssuedAt(existing, supplied *time.Time, statusTouched bool, status string, now time.Time) *time.Time {
	if !statusTouched || !statusIssued(status) {
		return existing
	}
	if existing != nil {
		if supplied != nil && supplied.After(*existing) {
			return supplied
		}
		return existing
	}
	if supplied != nil {
		return supplied
	}
	return &now
}

// statusIssued reports whether a free-text status marks the milestone.
func statusIssued(status string) bool {
	return strings.Contains(strings.ToLower(status), "issued")
}

func mergeByCreatedDesc(a, b []Quote) []Quote {
	merged := make([]Quote, 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		if a[i].CreatedAt.After(b[j].CreatedAt) || a[i].CreatedAt.Equal(b[j].CreatedAt) {
			merged = append(merged, a[i])
			i++
		} else {
			merged = append(merged, b[j])
			j++
		}
	}
	merged = append(merged, a[i:]...)
	merged = append(merged, b[j:]...)
	return merged
}
