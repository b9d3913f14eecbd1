package conflate

import (
	"testing"

	"github.com/paulmach/orb"
)

func newMatcher() FeatureMatcher {
	cfg := DefaultConfig()
	return FeatureMatcher{Config: cfg, Geom: GeometryOps{}, Tags: TagComparator{Config: cfg}}
}

func TestFindCandidatesSkipsTaglessPOI(t *testing.T) {
	fm := newMatcher()
	primary := Feature{
		Geometry:   NewPointGeometry(orb.Point{0, 0}),
		Properties: map[string]string{"amenity": "bench"},
	}
	secondaries := []Feature{{
		Geometry:   NewPointGeometry(orb.Point{1, 1}),
		Properties: map[string]string{"amenity": "bench", "id": "1"},
	}}
	if got := fm.FindCandidates(primary, secondaries); got != nil {
		t.Fatalf("expected no candidates for a tagless POI, got %v", got)
	}
}

func TestFindCandidatesOrdersByHitsThenDistance(t *testing.T) {
	fm := newMatcher()
	primary := Feature{
		Geometry:   NewPointGeometry(orb.Point{0, 0}),
		Properties: map[string]string{"name": "Trailhead", "amenity": "parking"},
	}
	secondaries := []Feature{
		{
			Geometry:   NewPointGeometry(orb.Point{3, 0}),
			Properties: map[string]string{"name": "Trailhead", "amenity": "parking", "id": "far"},
		},
		{
			Geometry:   NewPointGeometry(orb.Point{1, 0}),
			Properties: map[string]string{"name": "Trailhead", "amenity": "parking", "id": "near"},
		},
	}
	candidates := fm.FindCandidates(primary, secondaries)
	if len(candidates) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(candidates))
	}
	if candidates[0].Secondary.Properties["id"] != "near" {
		t.Fatalf("expected the nearer equal-hit candidate first, got %q", candidates[0].Secondary.Properties["id"])
	}
}

func TestFindCandidatesRejectsOutOfRange(t *testing.T) {
	fm := newMatcher()
	primary := Feature{
		Geometry:   NewPointGeometry(orb.Point{0, 0}),
		Properties: map[string]string{"name": "Trailhead", "amenity": "parking"},
	}
	secondaries := []Feature{{
		Geometry:   NewPointGeometry(orb.Point{1000, 1000}),
		Properties: map[string]string{"name": "Trailhead", "amenity": "parking"},
	}}
	if got := fm.FindCandidates(primary, secondaries); len(got) != 0 {
		t.Fatalf("expected candidate out of distance threshold to be excluded, got %v", got)
	}
}

func TestAcceptRules(t *testing.T) {
	fm := newMatcher()

	twoHits := MatchCandidate{Tags: TagMergeResult{Hits: 2}}
	if !fm.Accept(twoHits) {
		t.Fatalf("expected >=2 hits to always accept")
	}

	oneHitGoodGeometry := MatchCandidate{Tags: TagMergeResult{Hits: 1}, AngleDeg: 5, SlopeDelta: 0.2}
	if !fm.Accept(oneHitGoodGeometry) {
		t.Fatalf("expected 1 hit with small angle/slope to accept")
	}

	oneHitBadGeometry := MatchCandidate{Tags: TagMergeResult{Hits: 1}, AngleDeg: 25, SlopeDelta: 5}
	if fm.Accept(oneHitBadGeometry) {
		t.Fatalf("expected 1 hit with large angle/slope to reject")
	}

	exactDuplicate := MatchCandidate{Tags: TagMergeResult{Hits: 0}, Dist: 0, AngleDeg: 0, SlopeDelta: 0}
	if !fm.Accept(exactDuplicate) {
		t.Fatalf("expected exact geometric duplicate with 0 hits to accept")
	}

	zeroHitsOtherwise := MatchCandidate{Tags: TagMergeResult{Hits: 0}, Dist: 1, AngleDeg: 0, SlopeDelta: 0}
	if fm.Accept(zeroHitsOtherwise) {
		t.Fatalf("expected 0 hits with nonzero distance to reject")
	}
}
