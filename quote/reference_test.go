package quote

import (
	"context"
	"errors"
	"strings"
	"testing"
)

type stubGenerator struct {
	ref string
	err error
}

func (s *stubGenerator) NextReference(ctx context.Context) (string, error) {
	return s.ref, s.err
}

func TestIssue_UsesGenerator(t *testing.T) {
	issuer := NewReferenceIssuer(&stubGenerator{ref: "MFS000123"})
	if got := issuer.Issue(context.Background()); got != "MFS000123" {
		t.Errorf("expected generator value, got %q", got)
	}
}

func TestIssue_FallsBackOnError(t *testing.T) {
	issuer := NewReferenceIssuer(&stubGenerator{err: errors.New("sequence service down")})
	got := issuer.Issue(context.Background())
	if !strings.HasPrefix(got, "MFS") {
		t.Errorf("fallback should be MFS-prefixed, got %q", got)
	}
	if len(got) <= len("MFS") {
		t.Errorf("fallback should carry a timestamp suffix, got %q", got)
	}
}

func TestIssue_FallsBackOnNilGenerator(t *testing.T) {
	issuer := NewReferenceIssuer(nil)
	if got := issuer.Issue(context.Background()); !strings.HasPrefix(got, "MFS") {
		t.Errorf("expected MFS fallback, got %q", got)
	}
}

func TestIssue_FallsBackOnEmptyReference(t *testing.T) {
	issuer := NewReferenceIssuer(&stubGenerator{ref: ""})
	if got := issuer.Issue(context.Background()); !strings.HasPrefix(got, "MFS") {
		t.Errorf("expected MFS fallback for empty generator value, got %q", got)
	}
}
