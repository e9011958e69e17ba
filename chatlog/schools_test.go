package chatlog

import (
	"errors"
	"testing"

	apperrors "ask_analytics/errors"
)

func TestFindSchoolByEitherName(t *testing.T) {
	byFull, err := FindSchool("University of Toronto")
	if err != nil {
		t.Fatalf("full name lookup: %v", err)
	}
	byShort, err := FindSchool("toronto")
	if err != nil {
		t.Fatalf("short name lookup: %v", err)
	}
	if byFull.OperatorSuffix != byShort.OperatorSuffix {
		t.Fatalf("full and short lookups disagree")
	}
}

func TestFindSchoolUnknown(t *testing.T) {
	_, err := FindSchool("Hogwarts")
	if !errors.Is(err, apperrors.ErrSchoolNotFound) {
		t.Fatalf("expected ErrSchoolNotFound, got %v", err)
	}
}

func TestSchoolByQueue(t *testing.T) {
	s, ok := SchoolByQueue("ottawa-fr")
	if !ok || s.ShortName != "Ottawa" {
		t.Fatalf("expected ottawa-fr to belong to Ottawa, got %q ok=%v", s.ShortName, ok)
	}
	if _, ok := SchoolByQueue("nonexistent"); ok {
		t.Fatalf("unknown queue should not resolve")
	}
}

func TestSchoolByOperatorSuffix(t *testing.T) {
	s, ok := SchoolByOperator("jsmith_tor")
	if !ok || s.ShortName != "Toronto" {
		t.Fatalf("expected jsmith_tor to resolve to Toronto")
	}
	// The suffix is everything after the final underscore.
	s, ok = SchoolByOperator("j_smith_uwo")
	if !ok || s.ShortName != "Western" {
		t.Fatalf("expected j_smith_uwo to resolve to Western")
	}
	for _, bad := range []string{"nounderscore", "trailing_", "jsmith_xyz", ""} {
		if _, ok := SchoolByOperator(bad); ok {
			t.Fatalf("expected %q not to resolve", bad)
		}
	}
}

func TestRegistryQueuesAreUnique(t *testing.T) {
	seen := map[string]string{}
	for _, s := range Registry {
		for _, q := range s.Queues {
			if other, dup := seen[q]; dup {
				t.Fatalf("queue %q claimed by both %s and %s", q, other, s.ShortName)
			}
			seen[q] = s.ShortName
		}
	}
}
