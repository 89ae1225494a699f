package quote_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mfs/quote-engine/quote"
	"github.com/mfs/quote-engine/store/sqlite"
)

func newService(t *testing.T) (*quote.Service, *sqlite.Store) {
	t.Helper()
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return quote.NewService(store, quote.NewReferenceIssuer(store)), store
}

func decVal(v string) *decimal.Decimal {
	d := decimal.RequireFromString(v)
	return &d
}

func strPtr(s string) *string { return &s }

func TestServiceCreateAndGet(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, quote.CreateInput{
		CalculatorType: "BTL",
		UserID:         "user-1",
		Quote: quote.Quote{
			LoanAmount:  decVal("250000"),
			QuoteStatus: "Draft",
		},
		Results: []quote.QuoteResult{
			{ProductName: "2yr Fixed", NetLoan: decVal("200000")},
		},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.Regexp(t, "^MFS", created.ReferenceNumber)
	assert.Equal(t, "BTL", created.CalculatorType)
	assert.Nil(t, created.QuoteIssuedAt, "draft quotes carry no issued timestamp")

	got, results, err := svc.Get(ctx, created.ID, true)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	require.Len(t, results, 1)
	assert.Equal(t, quote.StageQuote, results[0].Stage)
}

func TestServiceCreate_PreIssuedStatusPromotesTimestamp(t *testing.T) {
	svc, _ := newService(t)

	created, err := svc.Create(context.Background(), quote.CreateInput{
		CalculatorType: "BTL",
		UserID:         "user-1",
		Quote:          quote.Quote{QuoteStatus: "Quote Issued"},
	})
	require.NoError(t, err)
	require.NotNil(t, created.QuoteIssuedAt, "pre-issued status should promote on create")
}

func TestServiceUpdate_FallbackLocatesBridgingQuote(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, quote.CreateInput{
		CalculatorType: "bridging",
		UserID:         "user-1",
		Quote:          quote.Quote{QuoteStatus: "Draft"},
	})
	require.NoError(t, err)

	// No hint: the update probes BTL first, misses, and must still find the
	// Bridging-family row.
	updated, err := svc.Update(ctx, created.ID, quote.UpdateInput{
		Fields: quote.QuoteUpdate{QuoteStatus: strPtr("Quote Issued")},
	})
	require.NoError(t, err)
	assert.Equal(t, "Quote Issued", updated.QuoteStatus)
	assert.NotNil(t, updated.QuoteIssuedAt)

	got, _, err := svc.Get(ctx, created.ID, false)
	require.NoError(t, err)
	assert.Equal(t, "Quote Issued", got.QuoteStatus)
}

func TestServiceUpdate_TimestampMonotonic(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, quote.CreateInput{
		CalculatorType: "BTL",
		UserID:         "user-1",
		Quote:          quote.Quote{QuoteStatus: "Draft"},
	})
	require.NoError(t, err)

	first, err := svc.Update(ctx, created.ID, quote.UpdateInput{
		Fields: quote.QuoteUpdate{QuoteStatus: strPtr("Quote Issued")},
	})
	require.NoError(t, err)
	require.NotNil(t, first.QuoteIssuedAt)
	// The store round-trips timestamps at second precision.
	issuedAt := first.QuoteIssuedAt.Truncate(time.Second)

	// Re-issuing does not move the timestamp.
	second, err := svc.Update(ctx, created.ID, quote.UpdateInput{
		Fields: quote.QuoteUpdate{QuoteStatus: strPtr("Quote Issued")},
	})
	require.NoError(t, err)
	require.NotNil(t, second.QuoteIssuedAt)
	assert.True(t, second.QuoteIssuedAt.Equal(issuedAt), "re-issue must not advance the timestamp")

	// An unrelated update re-asserts it.
	third, err := svc.Update(ctx, created.ID, quote.UpdateInput{
		Fields: quote.QuoteUpdate{LoanAmount: decVal("300000")},
	})
	require.NoError(t, err)
	require.NotNil(t, third.QuoteIssuedAt)
	assert.True(t, third.QuoteIssuedAt.Equal(issuedAt))

	// An explicitly newer caller-supplied value does advance it.
	newer := issuedAt.Add(time.Hour).UTC()
	fourth, err := svc.Update(ctx, created.ID, quote.UpdateInput{
		Fields: quote.QuoteUpdate{QuoteStatus: strPtr("Quote Issued"), QuoteIssuedAt: &newer},
	})
	require.NoError(t, err)
	require.NotNil(t, fourth.QuoteIssuedAt)
	assert.True(t, fourth.QuoteIssuedAt.Equal(newer))
}

func TestServiceUpdate_DIPReconciliation(t *testing.T) {
	svc, store := newService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, quote.CreateInput{
		CalculatorType: "BTL",
		UserID:         "user-1",
		Quote:          quote.Quote{QuoteStatus: "Quote Issued"},
		Results: []quote.QuoteResult{
			{ProductName: "2yr Fixed", NetLoan: decVal("100000")},
			{ProductName: "5yr Fixed", NetLoan: decVal("250000")},
			{ProductName: "Tracker", NetLoan: decVal("180000")},
		},
	})
	require.NoError(t, err)

	_, err = svc.Update(ctx, created.ID, quote.UpdateInput{
		Fields: quote.QuoteUpdate{DIPStatus: strPtr("DIP Issued")},
	})
	require.NoError(t, err)

	results, err := store.ListResults(ctx, quote.FamilyBTL, created.ID)
	require.NoError(t, err)

	var dips []quote.QuoteResult
	for _, r := range results {
		if r.Stage == quote.StageDIP {
			dips = append(dips, r)
		}
	}
	require.Len(t, dips, 1, "exactly one canonical DIP row")
	assert.Equal(t, "5yr Fixed", dips[0].ProductName, "DIP row mirrors the max-loan candidate")
	assert.Len(t, results, 4, "QUOTE rows are untouched")

	// Promoting again replaces, never accumulates.
	_, err = svc.Update(ctx, created.ID, quote.UpdateInput{
		Fields: quote.QuoteUpdate{DIPStatus: strPtr("DIP Re-Issued")},
	})
	require.NoError(t, err)

	results, err = store.ListResults(ctx, quote.FamilyBTL, created.ID)
	require.NoError(t, err)
	dips = dips[:0]
	for _, r := range results {
		if r.Stage == quote.StageDIP {
			dips = append(dips, r)
		}
	}
	assert.Len(t, dips, 1, "repeated promotion must not accumulate DIP rows")
}

func TestServiceUpdate_ResultsSemantics(t *testing.T) {
	svc, store := newService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, quote.CreateInput{
		CalculatorType: "BTL",
		UserID:         "user-1",
		Quote:          quote.Quote{QuoteStatus: "Draft"},
		Results: []quote.QuoteResult{
			{ProductName: "2yr Fixed"},
		},
	})
	require.NoError(t, err)

	// Nil results leave the stored set alone.
	_, err = svc.Update(ctx, created.ID, quote.UpdateInput{
		Fields: quote.QuoteUpdate{LoanAmount: decVal("100")},
	})
	require.NoError(t, err)
	rows, err := store.ListResults(ctx, quote.FamilyBTL, created.ID)
	require.NoError(t, err)
	assert.Len(t, rows, 1)

	// An empty-but-present set clears it.
	_, err = svc.Update(ctx, created.ID, quote.UpdateInput{
		Fields:  quote.QuoteUpdate{LoanAmount: decVal("200")},
		Results: []quote.QuoteResult{},
	})
	require.NoError(t, err)
	rows, err = store.ListResults(ctx, quote.FamilyBTL, created.ID)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestServiceDelete(t *testing.T) {
	svc, store := newService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, quote.CreateInput{
		CalculatorType: "bridge-fusion",
		UserID:         "user-1",
		Quote:          quote.Quote{QuoteStatus: "Draft"},
		Results:        []quote.QuoteResult{{ProductName: "Bridge"}},
	})
	require.NoError(t, err)

	deleted, err := svc.Delete(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, deleted.ID)

	_, _, err = svc.Get(ctx, created.ID, false)
	assert.True(t, errors.Is(err, quote.ErrNotFound))

	rows, err := store.ListResults(ctx, quote.FamilyBridging, created.ID)
	require.NoError(t, err)
	assert.Empty(t, rows, "child results should be cleared")
}

func TestServiceDelete_Missing(t *testing.T) {
	svc, _ := newService(t)
	_, err := svc.Delete(context.Background(), "ghost")
	assert.True(t, errors.Is(err, quote.ErrNotFound))
}

func TestServiceList_MergesFamilies(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	var ids []string
	for _, calcType := range []string{"BTL", "bridging", "BTL", "bridging"} {
		created, err := svc.Create(ctx, quote.CreateInput{
			CalculatorType: calcType,
			UserID:         "user-1",
			Quote:          quote.Quote{QuoteStatus: "Draft"},
		})
		require.NoError(t, err)
		ids = append(ids, created.ID)
	}

	merged, err := svc.List(ctx, "", quote.ListFilter{UserID: "user-1", Limit: 10})
	require.NoError(t, err)
	assert.Len(t, merged, 4, "empty calculator type lists both families")

	for i := 1; i < len(merged); i++ {
		assert.False(t, merged[i].CreatedAt.After(merged[i-1].CreatedAt), "page must be date-descending")
	}

	btlOnly, err := svc.List(ctx, "BTL", quote.ListFilter{Limit: 10})
	require.NoError(t, err)
	assert.Len(t, btlOnly, 2)
	for _, q := range btlOnly {
		assert.Equal(t, "BTL", q.CalculatorType)
	}
}
