package conflate

import (
	"math"
	"sort"

	"github.com/paulmach/orb"
)

// MatchCandidate is one secondary feature considered against a primary
// feature, with the geometric and tag-comparison diagnostics needed to
// decide whether it's an acceptable match.
type MatchCandidate struct {
	SecondaryIndex int
	Secondary      Feature
	Dist           float64
	SlopeDelta     float64
	AngleDeg       float64
	Tags           TagMergeResult
}

// FeatureMatcher searches a secondary feature set for candidates that
// plausibly represent the same real-world feature as a primary
// feature, then decides whether the best candidate is an acceptable
// match.
type FeatureMatcher struct {
	Config Config
	Geom   GeometryOps
	Tags   TagComparator
}

// FindCandidates scans secondaries for features within the configured
// distance threshold of primary, evaluates tags and slope/angle for
// each, discards candidates that fail the rejection rule outright, and
// returns the survivors ordered by (hits desc, dist asc). The scan
// stops early either once MaxCandidates survivors have been collected
// or as soon as a 3-hit candidate is found (a confident enough match
// that searching further has no value).
//
// A point-type primary feature with two or fewer property keys and
// none of them a match key (no name, ref, or ref:usfs to go on) is
// treated as a stray point of interest and never matched at all.
func (fm FeatureMatcher) FindCandidates(primary Feature, secondaries []Feature) []MatchCandidate {
	if primary.Geometry.Type == GeomPoint && len(primary.Properties) <= 2 && !hasAnyMatchKey(primary.Properties) {
		return nil
	}

	distThreshold := fm.Config.DistThresholdFor(primary.Geometry.Type)
	searchBound := expandBound(primary.Geometry.Bound(), distThreshold)

	var candidates []MatchCandidate
	for idx, sec := range secondaries {
		if !searchBound.Intersects(sec.Geometry.Bound()) {
			continue
		}

		dist := fm.Geom.Distance(primary.Geometry, sec.Geometry)
		if dist > distThreshold {
			continue
		}

		slopeDelta, angleDeg := fm.Geom.SlopeAndAngle(primary.Geometry, sec.Geometry)
		tagResult := fm.Tags.Compare(primary, sec)

		if tagResult.Hits == 0 &&
			(math.Abs(angleDeg) > fm.Config.AngleThreshold || math.Abs(slopeDelta) > fm.Config.SlopeThreshold) {
			continue
		}

		candidates = append(candidates, MatchCandidate{
			SecondaryIndex: idx,
			Secondary:      sec,
			Dist:           dist,
			SlopeDelta:     slopeDelta,
			AngleDeg:       angleDeg,
			Tags:           tagResult,
		})

		if tagResult.Hits >= 3 {
			break
		}
		if len(candidates) >= fm.Config.MaxCandidates {
			break
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Tags.Hits != candidates[j].Tags.Hits {
			return candidates[i].Tags.Hits > candidates[j].Tags.Hits
		}
		return candidates[i].Dist < candidates[j].Dist
	})

	return candidates
}

// Accept decides whether a candidate is a strong enough match to merge
// onto: two or more tag hits always accept; a single hit accepts only
// when the geometry is nearly parallel (angle under 15 degrees, slope
// delta under 1); zero hits accepts only for an exact geometric
// duplicate (distance, slope delta, and angle all exactly zero).
func (FeatureMatcher) Accept(c MatchCandidate) bool {
	switch {
	case c.Tags.Hits >= 2:
		return true
	case c.Tags.Hits == 1:
		return math.Abs(c.AngleDeg) < 15 && math.Abs(c.SlopeDelta) < 1
	default:
		return c.Dist == 0 && c.AngleDeg == 0 && c.SlopeDelta == 0
	}
}

func hasAnyMatchKey(props map[string]string) bool {
	for _, k := range MatchKeys {
		if _, ok := props[k]; ok {
			return true
		}
	}
	return false
}

func expandBound(b orb.Bound, margin float64) orb.Bound {
	return orb.Bound{
		Min: orb.Point{b.Min[0] - margin, b.Min[1] - margin},
		Max: orb.Point{b.Max[0] + margin, b.Max[1] + margin},
	}
}
