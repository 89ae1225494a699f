/*
patch.go - Allow-listed rate patch with best-effort audit

PURPOSE:
  The only write this core performs against rate data: a single-field patch
  restricted to an explicit allow-list, followed by a synchronous audit-log
  entry. The audit write is best-effort - failure is logged but never rolls
  back the rate mutation (write-then-best-effort-audit, not two-phase).

VALIDATION:
  - field must be in the allow-list
  - table must name one of the two rate tables
  - rate values must parse and fall in [0, 100]
*/
package rates

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	// ErrRateNotFound is returned when the rate row is absent.
	ErrRateNotFound = errors.New("rate not found")

	// ErrFieldNotAllowed is returned for fields outside the allow-list.
	ErrFieldNotAllowed = errors.New("field not allowed")

	// ErrUnknownTable is returned for tables other than the two rate tables.
	ErrUnknownTable = errors.New("unknown rate table")

	// ErrRateOutOfRange is returned when a rate value is outside [0, 100].
	ErrRateOutOfRange = errors.New("rate must be between 0 and 100")
)

var allowedFields = map[string]bool{
	"rate":        true,
	"min_loan":    true,
	"max_loan":    true,
	"product_fee": true,
	"min_term":    true,
	"max_term":    true,
}

var allowedTables = map[string]bool{
	"btl_rates":      true,
	"bridging_rates": true,
}

// RateStore is the write path for rate patches.
type RateStore interface {
	// GetRate returns the row or ErrRateNotFound. table is pre-validated.
	GetRate(ctx context.Context, table, id string) (*Rate, error)

	// UpdateRateField writes one allow-listed field, returning the updated
	// row or ErrRateNotFound when zero rows were affected.
	UpdateRateField(ctx context.Context, table, id, field, value string) (*Rate, error)

	// InsertAuditEntry appends an audit record.
	InsertAuditEntry(ctx context.Context, entry AuditEntry) error
}

// Patcher applies audited single-field rate patches.
type Patcher struct {
	store RateStore
}

// NewPatcher creates a patcher.
func NewPatcher(store RateStore) *Patcher {
	return &Patcher{store: store}
}

// PatchInput identifies one field change on one rate row.
type PatchInput struct {
	Table   string
	ID      string
	Field   string
	Value   string
	Actor   string
	Context string
}

// Patch validates, applies the mutation, then writes the audit entry.
func (p *Patcher) Patch(ctx context.Context, in PatchInput) (*Rate, error) {
	if !allowedTables[in.Table] {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTable, in.Table)
	}
	if !allowedFields[in.Field] {
		return nil, fmt.Errorf("%w: %s", ErrFieldNotAllowed, in.Field)
	}
	if in.Field == "rate" {
		if err := validateRateValue(in.Value); err != nil {
			return nil, err
		}
	}

	existing, err := p.store.GetRate(ctx, in.Table, in.ID)
	if err != nil {
		return nil, err
	}
	oldValue := fieldValue(existing, in.Field)

	updated, err := p.store.UpdateRateField(ctx, in.Table, in.ID, in.Field, in.Value)
	if err != nil {
		return nil, err
	}

	entry := AuditEntry{
		ID:        uuid.NewString(),
		TableName: in.Table,
		RecordID:  in.ID,
		FieldName: in.Field,
		OldValue:  oldValue,
		NewValue:  in.Value,
		Actor:     in.Actor,
		Context:   in.Context,
	}
	if err := p.store.InsertAuditEntry(ctx, entry); err != nil {
		log.Printf("non-fatal: audit write failed for %s.%s %s: %v", in.Table, in.Field, in.ID, err)
	}

	return updated, nil
}

func validateRateValue(value string) error {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return fmt.Errorf("%w: %q is not numeric", ErrRateOutOfRange, value)
	}
	if d.IsNegative() || d.GreaterThan(decimal.NewFromInt(100)) {
		return ErrRateOutOfRange
	}
	return nil
}

func fieldValue(r *Rate, field string) string {
	switch field {
	case "rate":
		return r.Rate
	case "min_loan":
		return r.MinLoan
	case "max_loan":
		return r.MaxLoan
	case "product_fee":
		return r.ProductFee
	case "min_term":
		return r.MinTerm
	case "max_term":
		return r.MaxTerm
	}
	return ""
}
