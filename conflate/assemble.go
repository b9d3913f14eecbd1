package conflate

import (
	"fmt"
	"strconv"
)

// ResultAssembler turns a primary feature plus its scored candidates
// into a classification: Updated (merged onto an existing secondary),
// New (no acceptable secondary match), or Unchanged (the merge would
// be identical to the secondary feature already on record, so nothing
// is emitted unless Config.EmitUnchanged is set).
type ResultAssembler struct {
	Matcher FeatureMatcher
}

// Outcome is the disposition ResultAssembler reaches for one primary
// feature.
type Outcome int

const (
	OutcomeNew Outcome = iota
	OutcomeUpdated
	OutcomeUnchanged
)

// Assembled is everything ResultAssembler produced for one primary
// feature: its classification, the resulting feature (for Unchanged,
// the secondary's geometry with the merged tags, which Conflate only
// emits when Config.EmitUnchanged is set), and which secondary (by
// index into the caller's secondary slice) it was matched against, if
// any.
type Assembled struct {
	Outcome        Outcome
	Feature        Feature
	SecondaryIndex int
	HasSecondary   bool
	// Hits is the tag-match hit count of the candidate this result was
	// built from, used to break contention when two primaries both
	// claim the same secondary. Zero when HasSecondary is false.
	Hits int
}

// Assemble classifies primary given its ordered candidates. Candidates
// must already be produced by FeatureMatcher.FindCandidates (ordered by
// hits desc, dist asc).
func (ra ResultAssembler) Assemble(primary Feature, candidates []MatchCandidate) Assembled {
	if len(candidates) == 0 {
		return Assembled{Outcome: OutcomeNew, Feature: newFeature(primary)}
	}

	top := candidates[0]
	if !ra.Matcher.Accept(top) {
		return Assembled{Outcome: OutcomeNew, Feature: newFeature(primary)}
	}

	merged := top.Tags.Merged
	if tagsEqual(merged, top.Secondary.Properties) {
		return Assembled{
			Outcome:        OutcomeUnchanged,
			Feature:        Feature{Geometry: top.Secondary.Geometry, Properties: merged},
			SecondaryIndex: top.SecondaryIndex,
			HasSecondary:   true,
			Hits:           top.Tags.Hits,
		}
	}

	return Assembled{
		Outcome:        OutcomeUpdated,
		Feature:        Feature{Geometry: top.Secondary.Geometry, Properties: withMatchDiagnostics(merged, top)},
		SecondaryIndex: top.SecondaryIndex,
		HasSecondary:   true,
		Hits:           top.Tags.Hits,
	}
}

// newFeature stamps a primary feature that found no acceptable match
// as a brand new import candidate: version 1, informal=yes, and a
// fixme breadcrumb for the human reviewer.
func newFeature(primary Feature) Feature {
	f := primary.Clone()
	f.Properties["version"] = "1"
	f.Properties["informal"] = "yes"
	f.Properties["fixme"] = "New features should be imported following OSM guidelines."
	return f
}

// unchangedFeature tags an Unchanged candidate's feature with a status
// marker before it is appended to Result.Updated under emit_unchanged,
// distinguishing it from a genuine merge without disturbing the
// Unchanged-equals-secondary tag comparison that produced it in the
// first place.
func unchangedFeature(f Feature) Feature {
	out := f.Clone()
	out.Properties["status"] = "unchanged"
	return out
}

// withMatchDiagnostics mirrors the match diagnostics (hits, dist,
// slope, angle, and the fuzz ratio when one was recorded) onto the
// merged tag bag as string values, leaving a breadcrumb trail on the
// feature itself the way the reference conflation tooling does.
func withMatchDiagnostics(merged map[string]string, c MatchCandidate) map[string]string {
	out := make(map[string]string, len(merged)+4)
	for k, v := range merged {
		out[k] = v
	}
	out["hits"] = strconv.Itoa(c.Tags.Hits)
	out["dist"] = formatFloat(c.Dist)
	out["slope"] = formatFloat(c.SlopeDelta)
	out["angle"] = formatFloat(c.AngleDeg)
	if c.Tags.Ratio > 0 {
		out["ratio"] = strconv.Itoa(c.Tags.Ratio)
	}
	return out
}

func formatFloat(f float64) string {
	return fmt.Sprintf("%.4f", f)
}

func tagsEqual(a, b map[string]string) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		if b[k] != v {
			return false
		}
	}
	return true
}
