package search

import (
	"math"
	"testing"

	"github.com/heatparts/storefront/pkg/types"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestScoreMatchClassesOrdered(t *testing.T) {
	exact := Score("5114", types.Part{Name: "5114"})
	prefix := Score("5114", types.Part{Name: "5114 pump"})
	substring := Score("5114", types.Part{Name: "pump 5114"})

	if !(exact > prefix && prefix > substring && substring > 0) {
		t.Fatalf("expected exact > prefix > substring > 0, got %v %v %v", exact, prefix, substring)
	}
	if !almostEqual(exact, WeightName*3) || !almostEqual(prefix, WeightName*2) {
		t.Fatalf("unexpected exact/prefix scores %v %v", exact, prefix)
	}
}

func TestScoreSubstringProximityBonus(t *testing.T) {
	// "pump" at position 5 of a 9-char field
	got := Score("pump", types.Part{Description: "main pump"})
	want := WeightDescription + WeightDescription*(1-5.0/9.0)*0.5
	if !almostEqual(got, want) {
		t.Fatalf("got %v want %v", got, want)
	}

	early := Score("pump", types.Part{Description: "a pump and more text"})
	late := Score("pump", types.Part{Description: "more text and a pump"})
	if early <= late {
		t.Fatalf("earlier occurrence should score higher: %v <= %v", early, late)
	}
}

func TestScoreGCExactOutranksManufacturerSubstring(t *testing.T) {
	gc := types.Part{ID: 1, Name: "Fan", GCNumbers: []string{"GC000001", "GC123456"}}
	if got := Score("GC123456", gc); !almostEqual(got, 24) {
		t.Fatalf("expected 24 from the gc field alone, got %v", got)
	}

	maker := types.Part{ID: 2, Name: "Valve", Manufacturer: "xGC123456 Heating"}
	ranked := Rank("GC123456", []types.Part{maker, gc})
	if len(ranked) != 2 || ranked[0].Part.ID != 1 {
		t.Fatalf("expected gc match first, got %+v", ranked)
	}
}

func TestScoreIsCaseInsensitiveAndIgnoresAbsentFields(t *testing.T) {
	if got := Score("  VAILLANT ", types.Part{Manufacturer: "Vaillant"}); !almostEqual(got, WeightManufacturer*3) {
		t.Fatalf("unexpected score %v", got)
	}
	if got := Score("valve", types.Part{}); got != 0 {
		t.Fatalf("absent fields must not contribute, got %v", got)
	}
	if got := Score("   ", types.Part{Name: "anything"}); got != 0 {
		t.Fatalf("blank query must score zero, got %v", got)
	}
}

func TestRankDropsZeroAndIsStable(t *testing.T) {
	parts := []types.Part{
		{ID: 1, Name: "pump a"},
		{ID: 2, Name: "unrelated"},
		{ID: 3, Name: "pump b"},
		{ID: 4, PartNumber: "pump"},
	}

	first := Rank("pump", parts)
	second := Rank("pump", parts)

	if len(first) != 3 {
		t.Fatalf("expected 3 matches, got %d", len(first))
	}
	ids := []int64{first[0].Part.ID, first[1].Part.ID, first[2].Part.ID}
	if ids[0] != 4 || ids[1] != 1 || ids[2] != 3 {
		t.Fatalf("unexpected order %v", ids)
	}
	for i := range first {
		if first[i].Part.ID != second[i].Part.ID {
			t.Fatalf("ranking is not repeatable")
		}
	}
}
