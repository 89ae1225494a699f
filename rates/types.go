/*
types.go - Rate table types for the data-health analyzer

PURPOSE:
  Rate rows come from two divergent schemas: the BTL table carries a `tier`
  column, the Bridging/Fusion table carries `type` + `charge_type` which
  together play the same role. The analyzer normalizes both to one
  comparable "tier-like" dimension via an explicit SchemaKind tag - never
  by sniffing which fields happen to be present.

DATA QUALITY:
  product_fee and max_ltv are stored as text because the source data is
  dirty; the analyzer exists precisely because numeric validity is not
  mechanically enforced. Rows that fail to parse are reported, not fixed.
*/
package rates

import (
	"strings"
	"time"
)

// SchemaKind selects which rate schema a set key belongs to.
type SchemaKind string

const (
	SchemaBTL      SchemaKind = "BTL"
	SchemaBridging SchemaKind = "BRIDGING"
)

// ResolveSchemaKind maps a set key to its schema. Bridging and Fusion set
// keys share one table; everything else is BTL.
func ResolveSchemaKind(setKey string) SchemaKind {
	key := strings.ToLower(setKey)
	if strings.Contains(key, "bridging") || strings.Contains(key, "bridge") || strings.Contains(key, "fusion") {
		return SchemaBridging
	}
	return SchemaBTL
}

// Table returns the rate table backing this schema.
func (k SchemaKind) Table() string {
	if k == SchemaBridging {
		return "bridging_rates"
	}
	return "btl_rates"
}

// Rate is one priced product tier. Tier is populated for BTL rows;
// Type/ChargeType for Bridging/Fusion rows.
type Rate struct {
	ID         string
	SetKey     string
	Property   string // Residential / Commercial / Semi-Commercial / Core
	Product    string
	ProductFee string // text on purpose, see package comment
	Rate       string
	MaxLTV     string
	MinLoan    string
	MaxLoan    string
	MinTerm    string
	MaxTerm    string
	Tier       string
	Type       string
	ChargeType string
	UpdatedAt  time.Time
}

// TierKey normalizes the two schemas to one comparable dimension.
func (r Rate) TierKey(kind SchemaKind) string {
	if kind == SchemaBridging {
		return r.Type + "/" + r.ChargeType
	}
	return r.Tier
}

// AuditEntry is an append-only record of a single-field rate patch.
type AuditEntry struct {
	ID        string
	TableName string
	RecordID  string
	FieldName string
	OldValue  string
	NewValue  string
	Actor     string
	Context   string
	CreatedAt time.Time
}
