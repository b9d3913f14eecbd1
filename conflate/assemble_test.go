package conflate

import (
	"testing"

	"github.com/paulmach/orb"
)

func newAssembler() ResultAssembler {
	return ResultAssembler{Matcher: newMatcher()}
}

func TestAssembleNoCandidatesIsNew(t *testing.T) {
	ra := newAssembler()
	primary := Feature{
		Geometry:   NewPointGeometry(orb.Point{0, 0}),
		Properties: map[string]string{"name": "Lonesome Trail"},
	}
	got := ra.Assemble(primary, nil)
	if got.Outcome != OutcomeNew {
		t.Fatalf("expected New, got %v", got.Outcome)
	}
	if got.Feature.Properties["version"] != "1" {
		t.Fatalf("expected version=1 on a new feature")
	}
	if got.Feature.Properties["informal"] != "yes" {
		t.Fatalf("expected informal=yes on a new feature")
	}
	if got.Feature.Properties["fixme"] == "" {
		t.Fatalf("expected a fixme note on a new feature")
	}
}

func TestAssembleUnacceptableTopCandidateIsNew(t *testing.T) {
	ra := newAssembler()
	primary := Feature{
		Geometry:   NewLineGeometry(orb.LineString{{0, 0}, {10, 0}}),
		Properties: map[string]string{"name": "Some Road"},
	}
	candidates := []MatchCandidate{{
		Secondary: Feature{Properties: map[string]string{"name": "Completely Other Road"}},
		Dist:      1,
		AngleDeg:  30,
		SlopeDelta: 10,
		Tags:      TagMergeResult{Hits: 0, Merged: map[string]string{"name": "Some Road"}},
	}}
	got := ra.Assemble(primary, candidates)
	if got.Outcome != OutcomeNew {
		t.Fatalf("expected New for an unacceptable top candidate, got %v", got.Outcome)
	}
}

func TestAssembleIdenticalMergeIsUnchanged(t *testing.T) {
	ra := newAssembler()
	secondary := Feature{Properties: map[string]string{"name": "Forest Road 701"}}
	primary := Feature{Properties: map[string]string{"name": "Forest Road 701"}}
	candidates := []MatchCandidate{{
		Secondary: secondary,
		Dist:      0, AngleDeg: 0, SlopeDelta: 0,
		Tags: TagMergeResult{Hits: 2, Merged: map[string]string{"name": "Forest Road 701"}},
	}}
	got := ra.Assemble(primary, candidates)
	if got.Outcome != OutcomeUnchanged {
		t.Fatalf("expected Unchanged, got %v", got.Outcome)
	}
}

func TestAssembleDifferingMergeIsUpdatedWithDiagnostics(t *testing.T) {
	ra := newAssembler()
	secondary := Feature{Properties: map[string]string{"name": "Forest Road 701", "surface": "dirt"}}
	primary := Feature{Properties: map[string]string{"name": "Forest Road 701", "surface": "gravel"}}
	candidates := []MatchCandidate{{
		Secondary: secondary,
		Dist:      1.5, AngleDeg: 2, SlopeDelta: 0.1,
		Tags: TagMergeResult{Hits: 2, Ratio: 100, Merged: map[string]string{"name": "Forest Road 701", "surface": "gravel"}},
	}}
	got := ra.Assemble(primary, candidates)
	if got.Outcome != OutcomeUpdated {
		t.Fatalf("expected Updated, got %v", got.Outcome)
	}
	if got.Feature.Properties["hits"] != "2" {
		t.Fatalf("expected hits diagnostic, got %q", got.Feature.Properties["hits"])
	}
	if got.Feature.Properties["ratio"] != "100" {
		t.Fatalf("expected ratio diagnostic, got %q", got.Feature.Properties["ratio"])
	}
}
