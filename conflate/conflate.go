package conflate

import (
	"context"
	"fmt"
)

// Conflate matches every feature in primary against secondary and
// returns the features that should be written back as updates to
// existing secondary features (Updated), the features that have no
// acceptable match and should be imported as new (New), and any
// recoverable per-feature Warnings collected along the way.
//
// primary and secondary are read-only; Conflate normalizes a working
// copy of each internally (see NameRefNormalizer) and never mutates
// the caller's slices.
func Conflate(ctx context.Context, primary, secondary []Feature, config Config, logger Logger) (Result, error) {
	if logger == nil {
		logger = DefaultLogger()
	}

	normalizer := NameRefNormalizer{}
	normPrimary := normalizeAll(normalizer, primary)
	normSecondary := normalizeAll(normalizer, secondary)

	geom := GeometryOps{}
	refLat := config.ReferenceLatitude
	if refLat == 0 {
		refLat = geom.ReferenceLatitude(normPrimary)
	}

	projPrimary := projectAll(geom, normPrimary, refLat)
	projSecondary := projectAll(geom, normSecondary, refLat)

	matcher := FeatureMatcher{Config: config, Geom: geom, Tags: TagComparator{Config: config}}
	assembler := ResultAssembler{Matcher: matcher}
	dispatcher := ParallelDispatcher{Matcher: matcher, Assembler: assembler, Workers: config.Workers}

	assembled, err := dispatcher.Run(ctx, projPrimary, projSecondary)
	if err != nil {
		return Result{}, fmt.Errorf("conflate: %w", err)
	}

	return resolveContention(assembled, normPrimary, normSecondary, config.EmitUnchanged, logger), nil
}

func normalizeAll(n NameRefNormalizer, features []Feature) []Feature {
	out := make([]Feature, len(features))
	for i, f := range features {
		out[i] = n.Normalize(f)
	}
	return out
}

func projectAll(geom GeometryOps, features []Feature, refLat float64) []Feature {
	out := make([]Feature, len(features))
	for i, f := range features {
		out[i] = Feature{Geometry: geom.Project(f.Geometry, refLat), Properties: f.Properties}
	}
	return out
}

// resolveContention enforces the secondary-uniqueness invariant: if two
// primaries both claim the same secondary, the one with the higher hit
// count (ties broken by earlier primary index, for determinism) keeps
// the claim; the other is demoted to a New feature with a warning.
// Final output features carry the original, unprojected geometry:
// Updated features keep the secondary's own geometry, New features
// keep the primary's. When emitUnchanged is true, a winning Unchanged
// decision is appended to Updated too, tagged to distinguish it from a
// genuine merge; when false it is dropped, per spec.md's emit_unchanged
// config field.
func resolveContention(assembled []Assembled, normPrimary, normSecondary []Feature, emitUnchanged bool, logger Logger) Result {
	winner := make(map[int]int, len(assembled))
	for i, a := range assembled {
		if !a.HasSecondary {
			continue
		}
		cur, ok := winner[a.SecondaryIndex]
		if !ok || a.Hits > assembled[cur].Hits {
			winner[a.SecondaryIndex] = i
		}
	}

	var result Result
	for i, a := range assembled {
		switch a.Outcome {
		case OutcomeNew:
			f := a.Feature
			f.Geometry = normPrimary[i].Geometry
			result.New = append(result.New, f)

		case OutcomeUnchanged:
			if winner[a.SecondaryIndex] != i {
				w := Warning{
					Stage:   "assemble",
					Message: fmt.Sprintf("secondary %d already claimed by a higher-scoring primary; primary %d demoted to new", a.SecondaryIndex, i),
				}
				result.Warnings = append(result.Warnings, w)
				logger.Warnf("%s: %s", w.Stage, w.Message)
				result.New = append(result.New, newFeature(normPrimary[i]))
				continue
			}
			if emitUnchanged {
				f := unchangedFeature(a.Feature)
				f.Geometry = normSecondary[a.SecondaryIndex].Geometry
				result.Updated = append(result.Updated, f)
			}

		case OutcomeUpdated:
			if winner[a.SecondaryIndex] != i {
				w := Warning{
					Stage:   "assemble",
					Message: fmt.Sprintf("secondary %d already claimed by a higher-scoring primary; primary %d demoted to new", a.SecondaryIndex, i),
				}
				result.Warnings = append(result.Warnings, w)
				logger.Warnf("%s: %s", w.Stage, w.Message)
				result.New = append(result.New, newFeature(normPrimary[i]))
				continue
			}
			f := a.Feature
			f.Geometry = normSecondary[a.SecondaryIndex].Geometry
			result.Updated = append(result.Updated, f)
		}
	}
	return result
}
