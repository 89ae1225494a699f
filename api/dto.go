/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

VALIDATION:
  Request validation proper lives with the external validation collaborator;
  handlers only guard what the core cannot tolerate (missing ids, bad JSON).

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/mfs/quote-engine/quote"
)

// QuoteDTO represents a quote in API responses.
type QuoteDTO struct {
	ID              string           `json:"id"`
	ReferenceNumber string           `json:"reference_number"`
	CalculatorType  string           `json:"calculator_type"`
	LoanAmount      *decimal.Decimal `json:"loan_amount,omitempty"`
	GrossLoan       *decimal.Decimal `json:"gross_loan,omitempty"`
	LTV             *decimal.Decimal `json:"ltv,omitempty"`
	Payload         string           `json:"payload,omitempty"`
	QuoteStatus     string           `json:"quote_status,omitempty"`
	DIPStatus       string           `json:"dip_status,omitempty"`
	QuoteIssuedAt   *time.Time       `json:"quote_issued_at,omitempty"`
	DIPIssuedAt     *time.Time       `json:"dip_issued_at,omitempty"`
	UserID          string           `json:"user_id"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`

	Results []QuoteResultDTO `json:"results,omitempty"`
}

// QuoteResultDTO represents one priced product/fee option.
type QuoteResultDTO struct {
	ID             string           `json:"id"`
	QuoteID        string           `json:"quote_id"`
	Stage          string           `json:"stage"`
	ProductName    string           `json:"product_name,omitempty"`
	FeeColumn      string           `json:"fee_column,omitempty"`
	Rate           *decimal.Decimal `json:"rate,omitempty"`
	ProductFee     *decimal.Decimal `json:"product_fee,omitempty"`
	NetLoan        *decimal.Decimal `json:"net_loan,omitempty"`
	GrossLoan      *decimal.Decimal `json:"gross_loan,omitempty"`
	InitialTerm    *int             `json:"initial_term,omitempty"`
	RolledMonths   *int             `json:"rolled_months,omitempty"`
	ServicedMonths *int             `json:"serviced_months,omitempty"`
	Payload        string           `json:"payload,omitempty"`
}

// ResultInput is a client-supplied result row. Stage is not accepted from
// clients; DIP rows are written only by the reconciler.
type ResultInput struct {
	ProductName  string           `json:"product_name,omitempty"`
	FeeColumn    string           `json:"fee_column,omitempty"`
	Rate         *decimal.Decimal `json:"rate,omitempty"`
	ProductFee   *decimal.Decimal `json:"product_fee,omitempty"`
	NetLoan      *decimal.Decimal `json:"net_loan,omitempty"`
	GrossLoan    *decimal.Decimal `json:"gross_loan,omitempty"`
	InitialTerm  *int             `json:"initial_term,omitempty"`
	RolledMonths *int             `json:"rolled_months,omitempty"`
	Payload      string           `json:"payload,omitempty"`
}

// CreateQuoteRequest is the request to create a quote.
type CreateQuoteRequest struct {
	CalculatorType string           `json:"calculator_type"`
	LoanAmount     *decimal.Decimal `json:"loan_amount,omitempty"`
	GrossLoan      *decimal.Decimal `json:"gross_loan,omitempty"`
	LTV            *decimal.Decimal `json:"ltv,omitempty"`
	Payload        string           `json:"payload,omitempty"`
	QuoteStatus    string           `json:"quote_status,omitempty"`
	DIPStatus      string           `json:"dip_status,omitempty"`
	QuoteIssuedAt  *time.Time       `json:"quote_issued_at,omitempty"`
	DIPIssuedAt    *time.Time       `json:"dip_issued_at,omitempty"`
	Results        []ResultInput    `json:"results,omitempty"`
}

// UpdateQuoteRequest is a partial update. Nil fields are untouched; a
// non-nil Results slice replaces the result set wholesale.
type UpdateQuoteRequest struct {
	CalculatorType string           `json:"calculator_type,omitempty"` // resolution hint, may be stale
	LoanAmount     *decimal.Decimal `json:"loan_amount,omitempty"`
	GrossLoan      *decimal.Decimal `json:"gross_loan,omitempty"`
	LTV            *decimal.Decimal `json:"ltv,omitempty"`
	Payload        *string          `json:"payload,omitempty"`
	QuoteStatus    *string          `json:"quote_status,omitempty"`
	DIPStatus      *string          `json:"dip_status,omitempty"`
	QuoteIssuedAt  *time.Time       `json:"quote_issued_at,omitempty"`
	DIPIssuedAt    *time.Time       `json:"dip_issued_at,omitempty"`
	Results        *[]ResultInput   `json:"results,omitempty"`
}

// PatchRateRequest is the request to patch one allow-listed rate field.
type PatchRateRequest struct {
	Field   string `json:"field"`
	Value   string `json:"value"`
	Table   string `json:"table"`
	Context string `json:"context,omitempty"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

func toQuoteDTO(q *quote.Quote, results []quote.QuoteResult) QuoteDTO {
	dto := QuoteDTO{
		ID:              q.ID,
		ReferenceNumber: q.ReferenceNumber,
		CalculatorType:  q.CalculatorType,
		LoanAmount:      q.LoanAmount,
		GrossLoan:       q.GrossLoan,
		LTV:             q.LTV,
		Payload:         q.PayloadJSON,
		QuoteStatus:     q.QuoteStatus,
		DIPStatus:       q.DIPStatus,
		QuoteIssuedAt:   q.QuoteIssuedAt,
		DIPIssuedAt:     q.DIPIssuedAt,
		UserID:          q.UserID,
		CreatedAt:       q.CreatedAt,
		UpdatedAt:       q.UpdatedAt,
	}
	for _, r := range results {
		dto.Results = append(dto.Results, toResultDTO(r))
	}
	return dto
}

func toResultDTO(r quote.QuoteResult) QuoteResultDTO {
	return QuoteResultDTO{
		ID:             r.ID,
		QuoteID:        r.QuoteID,
		Stage:          string(r.Stage),
		ProductName:    r.ProductName,
		FeeColumn:      r.FeeColumn,
		Rate:           r.Rate,
		ProductFee:     r.ProductFee,
		NetLoan:        r.NetLoan,
		GrossLoan:      r.GrossLoan,
		InitialTerm:    r.InitialTerm,
		RolledMonths:   r.RolledMonths,
		ServicedMonths: r.ServicedMonths,
		Payload:        r.PayloadJSON,
	}
}

func toDomainResults(inputs []ResultInput) []quote.QuoteResult {
	results := make([]quote.QuoteResult, len(inputs))
	for i, in := range inputs {
		results[i] = quote.QuoteResult{
			ProductName:  in.ProductName,
			FeeColumn:    in.FeeColumn,
			Rate:         in.Rate,
			ProductFee:   in.ProductFee,
			NetLoan:      in.NetLoan,
			GrossLoan:    in.GrossLoan,
			InitialTerm:  in.InitialTerm,
			RolledMonths: in.RolledMonths,
			PayloadJSON:  in.Payload,
		}
	}
	return results
}
