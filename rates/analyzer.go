/*
analyzer.go - Rate data-health analyzer

PURPOSE:
  Read-only batch scan over one rate family producing duplicate-group and
  anomaly reports for operational remediation. Uniqueness per
  (product, fee, tier, property) is NOT enforced by the schema, so this
  scan is how bad pricing rows get found.

REPORT CATEGORIES:
  Exact duplicates:      same (property, product, fee, tier-like, rate)
  Cross-tier duplicates: same (property, product, fee) but more than one
                         distinct tier-like value - likely unintended
                         collisions rather than legitimate duplicates
  Anomalies:             product_fee present but not a finite number;
                         max_ltv not a finite number

  Every group carries a capped sample of member ids (cap = 10).
*/
package rates

import (
	"context"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

const sampleCap = 10

// RateSource is the read path the analyzer needs.
type RateSource interface {
	// ListRates returns all rows for a set key, optionally filtered to one
	// property value.
	ListRates(ctx context.Context, kind SchemaKind, setKey, property string) ([]Rate, error)
}

// Analyzer runs data-health scans over a RateSource.
type Analyzer struct {
	source RateSource
}

// NewAnalyzer creates an analyzer.
func NewAnalyzer(source RateSource) *Analyzer {
	return &Analyzer{source: source}
}

// Stats summarizes a scan.
type Stats struct {
	RowsScanned         int `json:"rows_scanned"`
	ExactDuplicates     int `json:"exact_duplicate_groups"`
	CrossTierDuplicates int `json:"cross_tier_duplicate_groups"`
	Anomalies           int `json:"anomalies"`
}

// DuplicateGroup is a set of rows identical across the full pricing key.
type DuplicateGroup struct {
	Property   string   `json:"property"`
	Product    string   `json:"product"`
	ProductFee string   `json:"product_fee"`
	TierKey    string   `json:"tier_key"`
	Rate       string   `json:"rate"`
	Count      int      `json:"count"`
	SampleIDs  []string `json:"sample_ids"`
}

// CrossTierGroup is a set of rows sharing (property, product, fee) across
// more than one tier-like value.
type CrossTierGroup struct {
	Property   string   `json:"property"`
	Product    string   `json:"product"`
	ProductFee string   `json:"product_fee"`
	TierKeys   []string `json:"tier_keys"`
	Count      int      `json:"count"`
	SampleIDs  []string `json:"sample_ids"`
}

// Anomaly is a single row with an unparseable numeric field.
type Anomaly struct {
	ID    string `json:"id"`
	Field string `json:"field"`
	Value string `json:"value"`
}

// Report is the full analyzer output.
type Report struct {
	SetKey              string           `json:"set_key"`
	Schema              SchemaKind       `json:"schema"`
	Stats               Stats            `json:"stats"`
	ExactDuplicates     []DuplicateGroup `json:"exact_duplicates"`
	CrossTierDuplicates []CrossTierGroup `json:"cross_tier_duplicates"`
	Anomalies           []Anomaly        `json:"anomalies"`
}

// Analyze scans one rate family. property is an optional filter; empty
// means all properties. The scan never mutates data.
func (a *Analyzer) Analyze(ctx context.Context, setKey, property string) (*Report, error) {
	kind := ResolveSchemaKind(setKey)
	rows, err := a.source.ListRates(ctx, kind, setKey, property)
	if err != nil {
		return nil, err
	}

	report := &Report{
		SetKey:              setKey,
		Schema:              kind,
		ExactDuplicates:     []DuplicateGroup{},
		CrossTierDuplicates: []CrossTierGroup{},
		Anomalies:           []Anomaly{},
	}
	report.Stats.RowsScanned = len(rows)

	exact := make(map[string][]Rate)
	crossTier := make(map[string][]Rate)
	var exactKeys, crossKeys []string

	for _, row := range rows {
		fee, feeAnomaly := normalizeFee(row.ProductFee)
		if feeAnomaly {
			report.Anomalies = append(report.Anomalies, Anomaly{ID: row.ID, Field: "product_fee", Value: row.ProductFee})
		}
		if !parsesAsNumber(row.MaxLTV) {
			report.Anomalies = append(report.Anomalies, Anomaly{ID: row.ID, Field: "max_ltv", Value: row.MaxLTV})
		}

		tierKey := row.TierKey(kind)
		rate := strings.TrimSpace(row.Rate)

		ek := groupKey(row.Property, row.Product, fee, tierKey, rate)
		if _, seen := exact[ek]; !seen {
			exactKeys = append(exactKeys, ek)
		}
		exact[ek] = append(exact[ek], row)

		ck := groupKey(row.Property, row.Product, fee)
		if _, seen := crossTier[ck]; !seen {
			crossKeys = append(crossKeys, ck)
		}
		crossTier[ck] = append(crossTier[ck], row)
	}

	for _, key := range exactKeys {
		members := exact[key]
		if len(members) < 2 {
			continue
		}
		first := members[0]
		fee, _ := normalizeFee(first.ProductFee)
		report.ExactDuplicates = append(report.ExactDuplicates, DuplicateGroup{
			Property:   first.Property,
			Product:    first.Product,
			ProductFee: fee,
			TierKey:    first.TierKey(kind),
			Rate:       strings.TrimSpace(first.Rate),
			Count:      len(members),
			SampleIDs:  sampleIDs(members),
		})
	}

	for _, key := range crossKeys {
		members := crossTier[key]
		if len(members) < 2 {
			continue
		}
		tiers := distinctTierKeys(members, kind)
		if len(tiers) < 2 {
			// Same-tier duplicates already surface in the exact report.
			continue
		}
		first := members[0]
		fee, _ := normalizeFee(first.ProductFee)
		report.CrossTierDuplicates = append(report.CrossTierDuplicates, CrossTierGroup{
			Property:   first.Property,
			Product:    first.Product,
			ProductFee: fee,
			TierKeys:   tiers,
			Count:      len(members),
			SampleIDs:  sampleIDs(members),
		})
	}

	report.Stats.ExactDuplicates = len(report.ExactDuplicates)
	report.Stats.CrossTierDuplicates = len(report.CrossTierDuplicates)
	report.Stats.Anomalies = len(report.Anomalies)
	return report, nil
}

// normalizeFee returns the numeric grouping key for a product fee:
// "none" when absent, the canonical decimal string when parseable, and the
// raw value (flagged anomalous) when not.
func normalizeFee(raw string) (key string, anomaly bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "none", false
	}
	d, err := decimal.NewFromString(trimmed)
	if err != nil {
		return trimmed, true
	}
	return d.String(), false
}

func parsesAsNumber(raw string) bool {
	_, err := decimal.NewFromString(strings.TrimSpace(raw))
	return err == nil
}

func groupKey(parts ...string) string {
	return strings.Join(parts, "\x1f")
}

func sampleIDs(members []Rate) []string {
	n := len(members)
	if n > sampleCap {
		n = sampleCap
	}
	ids := make([]string, n)
	for i := 0; i < n; i++ {
		ids[i] = members[i].ID
	}
	return ids
}

func distinctTierKeys(members []Rate, kind SchemaKind) []string {
	seen := make(map[string]bool)
	var tiers []string
	for _, m := range members {
		key := m.TierKey(kind)
		if !seen[key] {
			seen[key] = true
			tiers = append(tiers, key)
		}
	}
	sort.Strings(tiers)
	return tiers
}
