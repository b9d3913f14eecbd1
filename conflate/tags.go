package conflate

import "strings"

// denyListedTags are dropped from the merged tag bag outright: editor
// chrome and ODK/XLSForm export artifacts that never belong on an OSM
// feature.
var denyListedTags = map[string]bool{
	"title":          true,
	"label":          true,
	"start":          true,
	"end":            true,
	"today":          true,
	"deviceid":       true,
	"instanceID":     true,
	"meta":           true,
	"SubmissionDate": true,
	"KEY":            true,
}

// TagComparator merges a primary feature's tags onto a secondary
// feature's tags, scoring MatchKeys for similarity and recording
// enough diagnostics for ResultAssembler to explain its decision.
type TagComparator struct {
	Config Config
}

// TagMergeResult is the outcome of comparing one primary/secondary tag
// pair.
type TagMergeResult struct {
	Merged map[string]string
	Hits   int
	// Ratio is the fuzz ratio of the first MatchKeys entry (in
	// MatchKeys order) that scored a hit; zero if no match key hit.
	Ratio int
}

// Compare merges primary onto secondary's tags following the match-key
// scoring rules, the highway/id/version special cases, and the
// deny-list.
func (tc TagComparator) Compare(primary, secondary Feature) TagMergeResult {
	merged := make(map[string]string, len(secondary.Properties)+len(primary.Properties))
	for k, v := range secondary.Properties {
		if denyListedTags[k] {
			continue
		}
		if k == "highway" || k == "id" || k == "version" {
			continue
		}
		merged[k] = v
	}

	result := TagMergeResult{}

	matchKeySet := make(map[string]bool, len(MatchKeys))
	for _, k := range MatchKeys {
		matchKeySet[k] = true
	}

	for _, key := range orderedKeys(primary.Properties) {
		if denyListedTags[key] || key == "highway" || key == "id" || key == "version" {
			continue
		}
		pval := primary.Properties[key]
		sval, hasS := secondary.Properties[key]

		if !matchKeySet[key] {
			if hasS && pval != sval {
				merged["old_"+key] = sval
			}
			merged[key] = pval
			continue
		}

		if !hasS {
			merged[key] = pval
			continue
		}

		r := ratio(strings.ToLower(pval), strings.ToLower(sval))
		lengthDelta := len([]rune(pval)) - len([]rune(sval))
		if lengthDelta < 0 {
			lengthDelta = -lengthDelta
		}
		isHit := r > tc.Config.FuzzRatioThreshold && lengthDelta <= tc.Config.MaxLengthDelta

		suppressCarryover := false
		if key == "ref" || key == "ref:usfs" {
			if numericTailEqual(pval, sval) {
				isHit = true
			}
			if key == "ref:usfs" && r >= 80 && r <= 90 && strings.HasPrefix(strings.ToUpper(sval), "FS ") {
				suppressCarryover = true
			}
		}

		if isHit {
			result.Hits++
			if result.Ratio == 0 {
				result.Ratio = r
			}
		} else if !suppressCarryover {
			merged["old_"+key] = sval
		}
		merged[key] = pval
	}

	// highway always comes from secondary.
	if hv, ok := secondary.Properties["highway"]; ok {
		merged["highway"] = hv
	} else if pv, ok := primary.Properties["highway"]; ok {
		merged["highway"] = pv
	}

	// id: secondary wins if present, else primary's id negated as a
	// placeholder for a not-yet-uploaded feature.
	if iv, ok := secondary.Properties["id"]; ok {
		merged["id"] = iv
	} else if pv, ok := primary.Properties["id"]; ok {
		merged["id"] = negateID(pv)
	}

	// version is always the secondary's, untouched.
	if vv, ok := secondary.Properties["version"]; ok {
		merged["version"] = vv
	}

	result.Merged = merged
	return result
}

// numericTailEqual reports whether a and b share the same trailing
// numeric portion once uppercased, e.g. "FR 701A" and "fr 701a".
func numericTailEqual(a, b string) bool {
	ta := numericTail(a)
	tb := numericTail(b)
	return ta != "" && ta == tb
}

func numericTail(s string) string {
	s = strings.ToUpper(strings.TrimSpace(s))
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	return fields[len(fields)-1]
}

func negateID(id string) string {
	if strings.HasPrefix(id, "-") {
		return id
	}
	return "-" + id
}

// orderedKeys returns m's keys in a stable order (match keys first, in
// MatchKeys order, then everything else alphabetically) so Compare's
// diagnostics are deterministic across runs.
func orderedKeys(m map[string]string) []string {
	seen := make(map[string]bool, len(m))
	out := make([]string, 0, len(m))
	for _, k := range MatchKeys {
		if _, ok := m[k]; ok {
			out = append(out, k)
			seen[k] = true
		}
	}
	rest := make([]string, 0, len(m))
	for k := range m {
		if !seen[k] {
			rest = append(rest, k)
		}
	}
	sortStrings(rest)
	return append(out, rest...)
}

func sortStrings(s []string) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j-1] > s[j]; j-- {
			s[j-1], s[j] = s[j], s[j-1]
		}
	}
}
