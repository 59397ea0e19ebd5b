package commands

import (
	"testing"
)

func TestParseFilters_Equality(t *testing.T) {
	f, err := parseFilters([]string{"topic=infra", "year=2024", "published=true"})
	if err != nil {
		t.Fatalf("parseFilters: %v", err)
	}
	if len(f.Must) != 3 {
		t.Fatalf("got %d conditions, want 3", len(f.Must))
	}

	if f.Must[0].Key != "topic" || f.Must[0].Match != "infra" {
		t.Errorf("cond 0 = %+v", f.Must[0])
	}
	// Bare numbers and booleans get typed, so they match typed payloads.
	if f.Must[1].Match != float64(2024) {
		t.Errorf("year match = %v (%T), want float64 2024", f.Must[1].Match, f.Must[1].Match)
	}
	if f.Must[2].Match != true {
		t.Errorf("published match = %v, want true", f.Must[2].Match)
	}
}

func TestParseFilters_Ranges(t *testing.T) {
	f, err := parseFilters([]string{"score>=0.5", "year<2025", "rank>3", "price<=10"})
	if err != nil {
		t.Fatalf("parseFilters: %v", err)
	}

	if r := f.Must[0].Range; r == nil || r.GTE == nil || *r.GTE != 0.5 {
		t.Errorf("score condition = %+v, want gte 0.5", f.Must[0])
	}
	if r := f.Must[1].Range; r == nil || r.LT == nil || *r.LT != 2025 {
		t.Errorf("year condition = %+v, want lt 2025", f.Must[1])
	}
	if r := f.Must[2].Range; r == nil || r.GT == nil || *r.GT != 3 {
		t.Errorf("rank condition = %+v, want gt 3", f.Must[2])
	}
	if r := f.Must[3].Range; r == nil || r.LTE == nil || *r.LTE != 10 {
		t.Errorf("price condition = %+v, want lte 10", f.Must[3])
	}
}

func TestParseFilters_Errors(t *testing.T) {
	for _, expr := range []string{
		"no-operator",
		"=value",
		">=3",
		"score>=high",
	} {
		t.Run(expr, func(t *testing.T) {
			if _, err := parseFilters([]string{expr}); err == nil {
				t.Errorf("parseFilters(%q) should fail", expr)
			}
		})
	}
}

func TestParseFilters_Empty(t *testing.T) {
	f, err := parseFilters(nil)
	if err != nil {
		t.Fatalf("parseFilters(nil): %v", err)
	}
	if f != nil {
		t.Errorf("got %+v, want nil filter", f)
	}
}

func TestParseFilters_MatchesPayload(t *testing.T) {
	f, err := parseFilters([]string{"topic=infra", "year>=2024"})
	if err != nil {
		t.Fatalf("parseFilters: %v", err)
	}

	if !f.Matches(map[string]any{"topic": "infra", "year": 2024}) {
		t.Error("payload should match")
	}
	if f.Matches(map[string]any{"topic": "infra", "year": 2023}) {
		t.Error("payload with year 2023 should not match")
	}
}
