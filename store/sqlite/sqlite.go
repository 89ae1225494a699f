/*
Package sqlite provides the SQLite-backed implementation of the storage
interfaces.

PURPOSE:
  Implements quote.Store, quote.SequenceGenerator, rates.RateSource and
  rates.RateStore. In production the same patterns apply to PostgreSQL -
  only minor SQL dialect differences.

KEY TABLES:
  quotes / quote_results:               BTL family
  bridge_quotes / bridge_quote_results: Bridging family
  btl_rates / bridging_rates:           rate data (two divergent schemas)
  rate_audit_log:                       append-only patch audit
  reference_sequence:                   counter behind reference issuance

FAMILY DISPATCH:
  Table names are selected from the quote.ProductFamily tag via a fixed
  switch - never built from request strings.

NOT-FOUND CONTRACT:
  sql.ErrNoRows and zero-rows-affected updates map to quote.ErrNotFound /
  rates.ErrRateNotFound. Every other failure is wrapped and propagated.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety, as with the rest of our SQLite
  services. The delete-then-insert windows in ReplaceResults and the DIP
  row replacement are intentionally NOT transactional; a concurrent reader
  between the statements observes zero rows. Per-statement atomicity is the
  only guarantee.

WAL MODE:
  Opened with WAL and foreign keys on. Use ":memory:" for tests.
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/mfs/quote-engine/quote"
	"github.com/mfs/quote-engine/rates"
)

// Store implements all storage interfaces using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- BTL family
	CREATE TABLE IF NOT EXISTS quotes (
		id TEXT PRIMARY KEY,
		reference_number TEXT NOT NULL,
		calculator_type TEXT NOT NULL,
		loan_amount TEXT,
		gross_loan TEXT,
		ltv TEXT,
		payload_json TEXT,
		quote_status TEXT,
		dip_status TEXT,
		quote_issued_at TEXT,
		dip_issued_at TEXT,
		user_id TEXT NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_quotes_user_created
		ON quotes(user_id, created_at DESC);

	CREATE TABLE IF NOT EXISTS quote_results (
		id TEXT PRIMARY KEY,
		quote_id TEXT NOT NULL,
		stage TEXT NOT NULL DEFAULT 'QUOTE',
		product_name TEXT,
		fee_column TEXT,
		rate TEXT,
		product_fee TEXT,
		net_loan TEXT,
		gross_loan TEXT,
		initial_term INTEGER,
		rolled_months INTEGER,
		serviced_months INTEGER,
		payload_json TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_quote_results_quote
		ON quote_results(quote_id, stage);

	-- Bridging family (structurally parallel)
	CREATE TABLE IF NOT EXISTS bridge_quotes (
		id TEXT PRIMARY KEY,
		reference_number TEXT NOT NULL,
		calculator_type TEXT NOT NULL,
		loan_amount TEXT,
		gross_loan TEXT,
		ltv TEXT,
		payload_json TEXT,
		quote_status TEXT,
		dip_status TEXT,
		quote_issued_at TEXT,
		dip_issued_at TEXT,
		user_id TEXT NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_bridge_quotes_user_created
		ON bridge_quotes(user_id, created_at DESC);

	CREATE TABLE IF NOT EXISTS bridge_quote_results (
		id TEXT PRIMARY KEY,
		quote_id TEXT NOT NULL,
		stage TEXT NOT NULL DEFAULT 'QUOTE',
		product_name TEXT,
		fee_column TEXT,
		rate TEXT,
		product_fee TEXT,
		net_loan TEXT,
		gross_loan TEXT,
		initial_term INTEGER,
		rolled_months INTEGER,
		serviced_months INTEGER,
		payload_json TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_bridge_quote_results_quote
		ON bridge_quote_results(quote_id, stage);

	-- Rate tables. Numeric-looking columns are TEXT on purpose: the
	-- analyzer audits parseability, the schema does not enforce it.
	CREATE TABLE IF NOT EXISTS btl_rates (
		id TEXT PRIMARY KEY,
		set_key TEXT NOT NULL,
		property TEXT,
		product TEXT,
		product_fee TEXT,
		rate TEXT,
		max_ltv TEXT,
		min_loan TEXT,
		max_loan TEXT,
		min_term TEXT,
		max_term TEXT,
		tier TEXT,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_btl_rates_set_property
		ON btl_rates(set_key, property);

	CREATE TABLE IF NOT EXISTS bridging_rates (
		id TEXT PRIMARY KEY,
		set_key TEXT NOT NULL,
		property TEXT,
		product TEXT,
		product_fee TEXT,
		rate TEXT,
		max_ltv TEXT,
		min_loan TEXT,
		max_loan TEXT,
		min_term TEXT,
		max_term TEXT,
		type TEXT,
		charge_type TEXT,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_bridging_rates_set_property
		ON bridging_rates(set_key, property);

	-- Append-only audit of single-field rate patches
	CREATE TABLE IF NOT EXISTS rate_audit_log (
		id TEXT PRIMARY KEY,
		table_name TEXT NOT NULL,
		record_id TEXT NOT NULL,
		field_name TEXT NOT NULL,
		old_value TEXT,
		new_value TEXT,
		actor TEXT,
		context TEXT,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_rate_audit_record
		ON rate_audit_log(table_name, record_id);

	-- Counter behind reference number issuance
	CREATE TABLE IF NOT EXISTS reference_sequence (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		value INTEGER NOT NULL
	);
	INSERT OR IGNORE INTO reference_sequence (id, value) VALUES (1, 100000);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// FAMILY DISPATCH
// =============================================================================

func quoteTable(family quote.ProductFamily) string {
	if family == quote.FamilyBridging {
		return "bridge_quotes"
	}
	return "quotes"
}

func resultsTable(family quote.ProductFamily) string {
	if family == quote.FamilyBridging {
		return "bridge_quote_results"
	}
	return "quote_results"
}

// =============================================================================
// QUOTE STORE (quote.Store interface)
// =============================================================================

// InsertQuote creates a quote row in the family's table.
func (s *Store) InsertQuote(ctx context.Context, family quote.ProductFamily, q quote.Quote) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := fmt.Sprintf(`
		INSERT INTO %s
		(id, reference_number, calculator_type, loan_amount, gross_loan, ltv,
		 payload_json, quote_status, dip_status, quote_issued_at, dip_issued_at,
		 user_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, quoteTable(family))

	_, err := s.db.ExecContext(ctx, query,
		q.ID, q.ReferenceNumber, q.CalculatorType,
		nullDecimal(q.LoanAmount), nullDecimal(q.GrossLoan), nullDecimal(q.LTV),
		q.PayloadJSON, q.QuoteStatus, q.DIPStatus,
		nullTime(q.QuoteIssuedAt), nullTime(q.DIPIssuedAt),
		q.UserID,
		q.CreatedAt.UTC().Format(time.RFC3339),
		q.UpdatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to insert quote: %w", err)
	}
	return nil
}

const quoteColumns = `id, reference_number, calculator_type, loan_amount, gross_loan, ltv,
	payload_json, quote_status, dip_status, quote_issued_at, dip_issued_at,
	user_id, created_at, updated_at`

// GetQuote returns the quote or quote.ErrNotFound.
func (s *Store) GetQuote(ctx context.Context, family quote.ProductFamily, id string) (*quote.Quote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := fmt.Sprintf("SELECT %s FROM %s WHERE id = ?", quoteColumns, quoteTable(family))
	row := s.db.QueryRowContext(ctx, query, id)

	q, err := scanQuote(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, quote.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get quote: %w", err)
	}
	return q, nil
}

// UpdateQuote writes the full row. Zero rows affected means the quote does
// not exist in this family.
func (s *Store) UpdateQuote(ctx context.Context, family quote.ProductFamily, q quote.Quote) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := fmt.Sprintf(`
		UPDATE %s SET
			loan_amount = ?, gross_loan = ?, ltv = ?, payload_json = ?,
			quote_status = ?, dip_status = ?, quote_issued_at = ?, dip_issued_at = ?,
			updated_at = ?
		WHERE id = ?
	`, quoteTable(family))

	res, err := s.db.ExecContext(ctx, query,
		nullDecimal(q.LoanAmount), nullDecimal(q.GrossLoan), nullDecimal(q.LTV), q.PayloadJSON,
		q.QuoteStatus, q.DIPStatus, nullTime(q.QuoteIssuedAt), nullTime(q.DIPIssuedAt),
		q.UpdatedAt.UTC().Format(time.RFC3339),
		q.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update quote: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected == 0 {
		return quote.ErrNotFound
	}
	return nil
}

// DeleteQuote removes the quote row, returning the deleted quote.
func (s *Store) DeleteQuote(ctx context.Context, family quote.ProductFamily, id string) (*quote.Quote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := fmt.Sprintf("SELECT %s FROM %s WHERE id = ?", quoteColumns, quoteTable(family))
	q, err := scanQuote(s.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, quote.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load quote for delete: %w", err)
	}

	del := fmt.Sprintf("DELETE FROM %s WHERE id = ?", quoteTable(family))
	if _, err := s.db.ExecContext(ctx, del, id); err != nil {
		return nil, fmt.Errorf("failed to delete quote: %w", err)
	}
	return q, nil
}

// ListQuotes returns quotes newest-first.
func (s *Store) ListQuotes(ctx context.Context, family quote.ProductFamily, filter quote.ListFilter) ([]quote.Quote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := fmt.Sprintf("SELECT %s FROM %s", quoteColumns, quoteTable(family))
	var args []any
	if filter.UserID != "" {
		query += " WHERE user_id = ?"
		args = append(args, filter.UserID)
	}
	query += " ORDER BY created_at DESC, id ASC LIMIT ? OFFSET ?"
	args = append(args, filter.Limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list quotes: %w", err)
	}
	defer rows.Close()

	var quotes []quote.Quote
	for rows.Next() {
		q, err := scanQuote(rows)
		if err != nil {
			return nil, err
		}
		quotes = append(quotes, *q)
	}
	return quotes, rows.Err()
}

// =============================================================================
// RESULT SET WRITER
// =============================================================================

// ReplaceResults deletes all result rows for the quote and bulk-inserts the
// supplied set. The delete and insert are separate statements: if the
// insert fails, the delete has already committed. That window is accepted
// and the caller logs it.
func (s *Store) ReplaceResults(ctx context.Context, family quote.ProductFamily, quoteID string, results []quote.QuoteResult) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	del := fmt.Sprintf("DELETE FROM %s WHERE quote_id = ?", resultsTable(family))
	if _, err := s.db.ExecContext(ctx, del, quoteID); err != nil {
		return 0, fmt.Errorf("failed to clear results: %w", err)
	}

	count := 0
	for _, res := range results {
		if err := s.insertResult(ctx, family, res); err != nil {
			return count, err
		}
		count++
	}
	return count, nil
}

// ListResults returns all result rows for a quote.
func (s *Store) ListResults(ctx context.Context, family quote.ProductFamily, quoteID string) ([]quote.QuoteResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := fmt.Sprintf(`
		SELECT id, quote_id, stage, product_name, fee_column, rate, product_fee,
		       net_loan, gross_loan, initial_term, rolled_months, serviced_months,
		       payload_json, created_at, updated_at
		FROM %s
		WHERE quote_id = ?
		ORDER BY created_at ASC, id ASC
	`, resultsTable(family))

	rows, err := s.db.QueryContext(ctx, query, quoteID)
	if err != nil {
		return nil, fmt.Errorf("failed to list results: %w", err)
	}
	defer rows.Close()

	var results []quote.QuoteResult
	for rows.Next() {
		res, err := scanResult(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, *res)
	}
	return results, rows.Err()
}

// DeleteResults removes all result rows for a quote.
func (s *Store) DeleteResults(ctx context.Context, family quote.ProductFamily, quoteID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := fmt.Sprintf("DELETE FROM %s WHERE quote_id = ?", resultsTable(family))
	_, err := s.db.ExecContext(ctx, query, quoteID)
	return err
}

// DeleteDIPResult removes any DIP-stage row for the quote.
func (s *Store) DeleteDIPResult(ctx context.Context, family quote.ProductFamily, quoteID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := fmt.Sprintf("DELETE FROM %s WHERE quote_id = ? AND stage = ?", resultsTable(family))
	_, err := s.db.ExecContext(ctx, query, quoteID, string(quote.StageDIP))
	return err
}

// InsertResult creates a single result row.
func (s *Store) InsertResult(ctx context.Context, family quote.ProductFamily, res quote.QuoteResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.insertResult(ctx, family, res)
}

func (s *Store) insertResult(ctx context.Context, family quote.ProductFamily, res quote.QuoteResult) error {
	if res.ID == "" {
		res.ID = uuid.NewString()
	}
	now := time.Now().UTC().Format(time.RFC3339)
	createdAt := now
	if !res.CreatedAt.IsZero() {
		createdAt = res.CreatedAt.UTC().Format(time.RFC3339)
	}

	query := fmt.Sprintf(`
		INSERT INTO %s
		(id, quote_id, stage, product_name, fee_column, rate, product_fee,
		 net_loan, gross_loan, initial_term, rolled_months, serviced_months,
		 payload_json, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, resultsTable(family))

	_, err := s.db.ExecContext(ctx, query,
		res.ID, res.QuoteID, string(res.Stage), res.ProductName, res.FeeColumn,
		nullDecimal(res.Rate), nullDecimal(res.ProductFee),
		nullDecimal(res.NetLoan), nullDecimal(res.GrossLoan),
		nullInt(res.InitialTerm), nullInt(res.RolledMonths), nullInt(res.ServicedMonths),
		res.PayloadJSON, createdAt, now,
	)
	if err != nil {
		return fmt.Errorf("failed to insert result: %w", err)
	}
	return nil
}

// =============================================================================
// REFERENCE SEQUENCE (quote.SequenceGenerator interface)
// =============================================================================

// NextReference increments the counter and returns the next reference.
func (s *Store) NextReference(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.ExecContext(ctx, "UPDATE reference_sequence SET value = value + 1 WHERE id = 1"); err != nil {
		return "", fmt.Errorf("failed to advance reference sequence: %w", err)
	}

	var value int64
	if err := s.db.QueryRowContext(ctx, "SELECT value FROM reference_sequence WHERE id = 1").Scan(&value); err != nil {
		return "", fmt.Errorf("failed to read reference sequence: %w", err)
	}
	return fmt.Sprintf("MFS%06d", value), nil
}

// =============================================================================
// RATE STORE (rates.RateSource + rates.RateStore interfaces)
// =============================================================================

// ListRates returns all rows for a set key, optionally filtered to one
// property value.
func (s *Store) ListRates(ctx context.Context, kind rates.SchemaKind, setKey, property string) ([]rates.Rate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tierCols := "tier, '', ''"
	if kind == rates.SchemaBridging {
		tierCols = "'', type, charge_type"
	}

	query := fmt.Sprintf(`
		SELECT id, set_key, property, product, product_fee, rate, max_ltv,
		       min_loan, max_loan, min_term, max_term, %s, updated_at
		FROM %s
		WHERE set_key = ?
	`, tierCols, kind.Table())
	args := []any{setKey}
	if property != "" {
		query += " AND property = ?"
		args = append(args, property)
	}
	query += " ORDER BY property, product, id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list rates: %w", err)
	}
	defer rows.Close()

	var out []rates.Rate
	for rows.Next() {
		r, err := scanRate(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *r)
	}
	return out, rows.Err()
}

// Table/field names are re-checked at the store boundary before
// interpolation; the patcher validates first.
var rateTables = map[string]bool{"btl_rates": true, "bridging_rates": true}

var rateFields = map[string]bool{
	"rate": true, "min_loan": true, "max_loan": true,
	"product_fee": true, "min_term": true, "max_term": true,
}

// GetRate returns the row or rates.ErrRateNotFound.
func (s *Store) GetRate(ctx context.Context, table, id string) (*rates.Rate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !rateTables[table] {
		return nil, rates.ErrUnknownTable
	}
	return s.getRate(ctx, table, id)
}

func (s *Store) getRate(ctx context.Context, table, id string) (*rates.Rate, error) {
	tierCols := "tier, '', ''"
	if table == "bridging_rates" {
		tierCols = "'', type, charge_type"
	}

	query := fmt.Sprintf(`
		SELECT id, set_key, property, product, product_fee, rate, max_ltv,
		       min_loan, max_loan, min_term, max_term, %s, updated_at
		FROM %s WHERE id = ?
	`, tierCols, table)

	r, err := scanRate(s.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, rates.ErrRateNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get rate: %w", err)
	}
	return r, nil
}

// UpdateRateField writes one allow-listed field on one rate row.
func (s *Store) UpdateRateField(ctx context.Context, table, id, field, value string) (*rates.Rate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !rateTables[table] {
		return nil, rates.ErrUnknownTable
	}
	if !rateFields[field] {
		return nil, rates.ErrFieldNotAllowed
	}

	query := fmt.Sprintf("UPDATE %s SET %s = ?, updated_at = ? WHERE id = ?", table, field)
	res, err := s.db.ExecContext(ctx, query, value, time.Now().UTC().Format(time.RFC3339), id)
	if err != nil {
		return nil, fmt.Errorf("failed to update rate: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, rates.ErrRateNotFound
	}

	return s.getRate(ctx, table, id)
}

// InsertRate seeds a rate row (used by tests and imports).
func (s *Store) InsertRate(ctx context.Context, table string, r rates.Rate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !rateTables[table] {
		return rates.ErrUnknownTable
	}
	if r.ID == "" {
		r.ID = uuid.NewString()
	}

	tierCols, tierVals := "tier", []any{r.Tier}
	placeholders := "?"
	if table == "bridging_rates" {
		tierCols, tierVals = "type, charge_type", []any{r.Type, r.ChargeType}
		placeholders = "?, ?"
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (id, set_key, property, product, product_fee, rate, max_ltv,
		                min_loan, max_loan, min_term, max_term, %s, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, %s, ?)
	`, table, tierCols, placeholders)

	args := []any{r.ID, r.SetKey, r.Property, r.Product, r.ProductFee, r.Rate, r.MaxLTV,
		r.MinLoan, r.MaxLoan, r.MinTerm, r.MaxTerm}
	args = append(args, tierVals...)
	args = append(args, time.Now().UTC().Format(time.RFC3339))

	_, err := s.db.ExecContext(ctx, query, args...)
	return err
}

// InsertAuditEntry appends an audit record.
func (s *Store) InsertAuditEntry(ctx context.Context, entry rates.AuditEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO rate_audit_log
		(id, table_name, record_id, field_name, old_value, new_value, actor, context, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := s.db.ExecContext(ctx, query,
		entry.ID, entry.TableName, entry.RecordID, entry.FieldName,
		entry.OldValue, entry.NewValue, entry.Actor, entry.Context,
		time.Now().UTC().Format(time.RFC3339),
	)
	return err
}

// ListAuditEntries returns audit records for one rate row, newest first.
func (s *Store) ListAuditEntries(ctx context.Context, table, recordID string) ([]rates.AuditEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT id, table_name, record_id, field_name, old_value, new_value, actor, context, created_at
		FROM rate_audit_log
		WHERE table_name = ? AND record_id = ?
		ORDER BY created_at DESC, id ASC
	`
	rows, err := s.db.QueryContext(ctx, query, table, recordID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []rates.AuditEntry
	for rows.Next() {
		var e rates.AuditEntry
		var oldValue, newValue, actor, auditContext sql.NullString
		var createdAt string
		if err := rows.Scan(&e.ID, &e.TableName, &e.RecordID, &e.FieldName,
			&oldValue, &newValue, &actor, &auditContext, &createdAt); err != nil {
			return nil, err
		}
		e.OldValue = oldValue.String
		e.NewValue = newValue.String
		e.Actor = actor.String
		e.Context = auditContext.String
		e.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// =============================================================================
// SCANNING HELPERS
// =============================================================================

type rowScanner interface {
	Scan(dest ...any) error
}

func scanQuote(row rowScanner) (*quote.Quote, error) {
	var (
		q             quote.Quote
		loanAmount    sql.NullString
		grossLoan     sql.NullString
		ltv           sql.NullString
		payload       sql.NullString
		quoteStatus   sql.NullString
		dipStatus     sql.NullString
		quoteIssuedAt sql.NullString
		dipIssuedAt   sql.NullString
		createdAt     string
		updatedAt     string
	)

	err := row.Scan(
		&q.ID, &q.ReferenceNumber, &q.CalculatorType,
		&loanAmount, &grossLoan, &ltv, &payload,
		&quoteStatus, &dipStatus, &quoteIssuedAt, &dipIssuedAt,
		&q.UserID, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	q.LoanAmount = parseDecimal(loanAmount)
	q.GrossLoan = parseDecimal(grossLoan)
	q.LTV = parseDecimal(ltv)
	q.PayloadJSON = payload.String
	q.QuoteStatus = quoteStatus.String
	q.DIPStatus = dipStatus.String
	q.QuoteIssuedAt = parseTime(quoteIssuedAt)
	q.DIPIssuedAt = parseTime(dipIssuedAt)
	q.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	q.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return &q, nil
}

func scanResult(row rowScanner) (*quote.QuoteResult, error) {
	var (
		res            quote.QuoteResult
		stage          string
		productName    sql.NullString
		feeColumn      sql.NullString
		rate           sql.NullString
		productFee     sql.NullString
		netLoan        sql.NullString
		grossLoan      sql.NullString
		initialTerm    sql.NullInt64
		rolledMonths   sql.NullInt64
		servicedMonths sql.NullInt64
		payload        sql.NullString
		createdAt      string
		updatedAt      string
	)

	err := row.Scan(
		&res.ID, &res.QuoteID, &stage, &productName, &feeColumn,
		&rate, &productFee, &netLoan, &grossLoan,
		&initialTerm, &rolledMonths, &servicedMonths,
		&payload, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	res.Stage = quote.Stage(stage)
	res.ProductName = productName.String
	res.FeeColumn = feeColumn.String
	res.Rate = parseDecimal(rate)
	res.ProductFee = parseDecimal(productFee)
	res.NetLoan = parseDecimal(netLoan)
	res.GrossLoan = parseDecimal(grossLoan)
	res.InitialTerm = parseInt(initialTerm)
	res.RolledMonths = parseInt(rolledMonths)
	res.ServicedMonths = parseInt(servicedMonths)
	res.PayloadJSON = payload.String
	res.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	res.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return &res, nil
}

func scanRate(row rowScanner) (*rates.Rate, error) {
	var (
		r          rates.Rate
		property   sql.NullString
		product    sql.NullString
		productFee sql.NullString
		rate       sql.NullString
		maxLTV     sql.NullString
		minLoan    sql.NullString
		maxLoan    sql.NullString
		minTerm    sql.NullString
		maxTerm    sql.NullString
		tier       sql.NullString
		rateType   sql.NullString
		chargeType sql.NullString
		updatedAt  string
	)

	err := row.Scan(
		&r.ID, &r.SetKey, &property, &product, &productFee, &rate, &maxLTV,
		&minLoan, &maxLoan, &minTerm, &maxTerm, &tier, &rateType, &chargeType,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	r.Property = property.String
	r.Product = product.String
	r.ProductFee = productFee.String
	r.Rate = rate.String
	r.MaxLTV = maxLTV.String
	r.MinLoan = minLoan.String
	r.MaxLoan = maxLoan.String
	r.MinTerm = minTerm.String
	r.MaxTerm = maxTerm.String
	r.Tier = tier.String
	r.Type = rateType.String
	r.ChargeType = chargeType.String
	r.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return &r, nil
}

// =============================================================================
// NULL HELPERS
// =============================================================================

func nullDecimal(d *decimal.Decimal) any {
	if d == nil {
		return nil
	}
	return d.String()
}

func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC().Format(time.RFC3339)
}

func nullInt(i *int) any {
	if i == nil {
		return nil
	}
	return *i
}

func parseDecimal(s sql.NullString) *decimal.Decimal {
	if !s.Valid || s.String == "" {
		return nil
	}
	d, err := decimal.NewFromString(s.String)
	if err != nil {
		return nil
	}
	return &d
}

func parseTime(s sql.NullString) *time.Time {
	if !s.Valid || s.String == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, s.String)
	if err != nil {
		return nil
	}
	return &t
}

func parseInt(i sql.NullInt64) *int {
	if !i.Valid {
		return nil
	}
	v := int(i.Int64)
	return &v
}
