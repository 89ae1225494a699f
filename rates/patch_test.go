package rates

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRateStore struct {
	rate     *Rate
	getErr   error
	updErr   error
	auditErr error

	updatedField string
	updatedValue string
	audits       []AuditEntry
}

func (s *stubRateStore) GetRate(ctx context.Context, table, id string) (*Rate, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	return s.rate, nil
}

func (s *stubRateStore) UpdateRateField(ctx context.Context, table, id, field, value string) (*Rate, error) {
	if s.updErr != nil {
		return nil, s.updErr
	}
	s.updatedField = field
	s.updatedValue = value
	updated := *s.rate
	return &updated, nil
}

func (s *stubRateStore) InsertAuditEntry(ctx context.Context, entry AuditEntry) error {
	if s.auditErr != nil {
		return s.auditErr
	}
	s.audits = append(s.audits, entry)
	return nil
}

func TestPatch_WritesFieldAndAudit(t *testing.T) {
	store := &stubRateStore{rate: &Rate{ID: "r1", Rate: "5.49"}}
	patcher := NewPatcher(store)

	updated, err := patcher.Patch(context.Background(), PatchInput{
		Table:   "btl_rates",
		ID:      "r1",
		Field:   "rate",
		Value:   "5.99",
		Actor:   "ops@example.com",
		Context: "repricing 2026-08",
	})
	require.NoError(t, err)
	require.NotNil(t, updated)

	assert.Equal(t, "rate", store.updatedField)
	assert.Equal(t, "5.99", store.updatedValue)

	require.Len(t, store.audits, 1)
	entry := store.audits[0]
	assert.NotEmpty(t, entry.ID)
	assert.Equal(t, "btl_rates", entry.TableName)
	assert.Equal(t, "r1", entry.RecordID)
	assert.Equal(t, "5.49", entry.OldValue)
	assert.Equal(t, "5.99", entry.NewValue)
	assert.Equal(t, "ops@example.com", entry.Actor)
}

func TestPatch_RejectsUnknownTable(t *testing.T) {
	patcher := NewPatcher(&stubRateStore{})
	_, err := patcher.Patch(context.Background(), PatchInput{Table: "quotes", ID: "r1", Field: "rate", Value: "5"})
	assert.ErrorIs(t, err, ErrUnknownTable)
}

func TestPatch_RejectsDisallowedField(t *testing.T) {
	patcher := NewPatcher(&stubRateStore{})
	for _, field := range []string{"id", "set_key", "tier", "updated_at", ""} {
		_, err := patcher.Patch(context.Background(), PatchInput{Table: "btl_rates", ID: "r1", Field: field, Value: "x"})
		assert.ErrorIs(t, err, ErrFieldNotAllowed, "field %q", field)
	}
}

func TestPatch_RateRange(t *testing.T) {
	cases := []struct {
		value string
		ok    bool
	}{
		{"0", true},
		{"100", true},
		{"5.49", true},
		{"-0.01", false},
		{"100.01", false},
		{"five", false},
	}
	for _, tc := range cases {
		store := &stubRateStore{rate: &Rate{ID: "r1", Rate: "1"}}
		_, err := NewPatcher(store).Patch(context.Background(), PatchInput{
			Table: "bridging_rates", ID: "r1", Field: "rate", Value: tc.value,
		})
		if tc.ok {
			assert.NoError(t, err, "value %q", tc.value)
		} else {
			assert.ErrorIs(t, err, ErrRateOutOfRange, "value %q", tc.value)
		}
	}
}

func TestPatch_NonRateFieldSkipsRangeCheck(t *testing.T) {
	store := &stubRateStore{rate: &Rate{ID: "r1", MaxLoan: "1000000"}}
	_, err := NewPatcher(store).Patch(context.Background(), PatchInput{
		Table: "btl_rates", ID: "r1", Field: "max_loan", Value: "2000000",
	})
	assert.NoError(t, err)
	assert.Equal(t, "2000000", store.updatedValue)
}

func TestPatch_MissingRow(t *testing.T) {
	store := &stubRateStore{getErr: ErrRateNotFound}
	_, err := NewPatcher(store).Patch(context.Background(), PatchInput{
		Table: "btl_rates", ID: "missing", Field: "rate", Value: "5",
	})
	assert.ErrorIs(t, err, ErrRateNotFound)
	assert.Empty(t, store.updatedField, "update must not run when the row is absent")
}

func TestPatch_AuditFailureIsNonFatal(t *testing.T) {
	store := &stubRateStore{
		rate:     &Rate{ID: "r1", Rate: "5.49"},
		auditErr: errors.New("audit table locked"),
	}
	updated, err := NewPatcher(store).Patch(context.Background(), PatchInput{
		Table: "btl_rates", ID: "r1", Field: "rate", Value: "5.99",
	})
	require.NoError(t, err, "rate mutation must survive an audit failure")
	assert.NotNil(t, updated)
	assert.Equal(t, "5.99", store.updatedValue)
}
