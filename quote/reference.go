/*
reference.go - Quote reference number issuance

PURPOSE:
  Every quote gets a human-readable unique reference number at creation.
  The number comes from an external unique-sequence generator; if that
  collaborator fails for ANY reason the issuer falls back to a
  timestamp-derived value. Reference issuance never blocks quote creation.

FALLBACK FORMAT:
  "MFS" + current unix milliseconds, e.g. MFS1724800000000. Collisions are
  theoretically possible under the fallback; accepted, since the fallback
  only fires when the generator is down.
*/
package quote

import (
	"context"
	"fmt"
	"log"
	"time"
)

// SequenceGenerator issues monotonically increasing sequence values.
// Implemented by the store; treated as an opaque collaborator here.
type SequenceGenerator interface {
	NextReference(ctx context.Context) (string, error)
}

// ReferenceIssuer wraps a SequenceGenerator with the fallback policy.
type ReferenceIssuer struct {
	gen SequenceGenerator
}

// NewReferenceIssuer creates an issuer. gen may be nil, in which case every
// issuance uses the fallback.
func NewReferenceIssuer(gen SequenceGenerator) *ReferenceIssuer {
	return &ReferenceIssuer{gen: gen}
}

// Issue returns a reference number, falling back to a timestamp-derived
// value when the generator is unavailable. It never returns an error.
func (r *ReferenceIssuer) Issue(ctx context.Context) string {
	if r.gen != nil {
		ref, err := r.gen.NextReference(ctx)
		if err == nil && ref != "" {
			return ref
		}
		if err != nil {
			log.Printf("reference generator failed, using fallback: %v", err)
		}
	}
	return fallbackReference(time.Now())
}

func fallbackReference(now time.Time) string {
	return fmt.Sprintf("MFS%d", now.UnixMilli())
}
