package conflate

import (
	"regexp"
	"strconv"
	"strings"
)

// NameRefNormalizer canonicalizes the name/ref/ref:usfs tags of a
// feature so that the same road imported from two different sources
// compares equal. It is idempotent: running it twice on an
// already-normalized feature is a no-op.
type NameRefNormalizer struct{}

var (
	tigerKeyPattern      = regexp.MustCompile(`^tiger:`)
	legacyImportKeyPattern = regexp.MustCompile(`^_[A-Z]+$`)

	// abbreviations is the static expansion table for common road-name
	// abbreviations left over from data sources that don't spell words
	// out in full. Spec calls this "a static lookup table"; it's kept as
	// a Go map literal rather than loaded from YAML because there is no
	// runtime-configurable surface for it.
	abbreviations = map[string]string{
		"Cr":   "Creek",
		"Crk":  "Creek",
		"Rd":   "Road",
		"Rd.":  "Road",
		"Mtn":  "Mountain",
		"Mtn.": "Mountain",
		"Ck":   "Creek",
		"Cyn":  "Canyon",
		"Spgs": "Springs",
		"Spg":  "Spring",
		"Hwy":  "Highway",
		"Ln":   "Lane",
		"Trl":  "Trail",
		"Mdw":  "Meadow",
		"Pk":   "Peak",
		"Pt":   "Point",
		"Rdg":  "Ridge",
		"Fk":   "Fork",
		"Jct":  "Junction",
		"Sta":  "Station",
	}

	countyRoadPattern       = regexp.MustCompile(`(?i)^county road\s+(.+)$`)
	forestServiceRoadPattern = regexp.MustCompile(`(?i)^(?:forest service road|forest road|usfs trail|fs road)\s+(.+)$`)
	frPrefixPattern          = regexp.MustCompile(`(?i)^(?:fr|fs|fsr)\s+(.+)$`)

	// nameForestPrefixPattern recognizes the name-field spellings of a
	// Forest Service road or trail that fixnames.py walks through one
	// regex branch at a time ("forest road ", "fr ", "fs ", "fsr ",
	// "usfs trail ", "fire road ", "forest service road"...); unlike
	// ref-field values these never arrive already prefixed, so the
	// prefix words themselves are discarded and only the trailing
	// reference token is kept.
	nameForestPrefixPattern = regexp.MustCompile(`(?i)^(?:forest service road|forest road|usfs trail|fire road|fsr?|fr)\b`)
	nameCountyPrefixPattern = regexp.MustCompile(`(?i)^county road\b`)

	// refTokenPattern extracts the canonical reference number: the last
	// numeric-dot-alpha token in the string, anchored at the end (spec.md
	// §4.2's "Reference extraction rule").
	refTokenPattern = regexp.MustCompile(`[0-9][0-9A-Za-z.]*$`)
)

// Normalize rewrites f's name/ref/ref:usfs tags in place on a clone and
// returns it: strips TIGER-import and legacy "_XYZ" keys, derives a
// canonical ref:usfs/ref from the name when one encodes a Forest
// Service road/trail or county road number and no ref-bearing field
// already carries it, expands known abbreviations in name, canonicalizes
// ref/ref:usfs prefixes, and splits ";"-separated multi-values, keeping
// the first branch as the primary value and the rest as a "<key>:alt"
// passthrough.
func (n NameRefNormalizer) Normalize(f Feature) Feature {
	out := f.Clone()

	for k := range out.Properties {
		if tigerKeyPattern.MatchString(k) || legacyImportKeyPattern.MatchString(k) {
			delete(out.Properties, k)
		}
	}

	if name, ok := out.Properties["name"]; ok {
		primary := splitMultiValue(out.Properties, "name", name)
		n.deriveRefFromName(out.Properties, primary)
		out.Properties["name"] = n.normalizeName(primary)
	}

	if ref, ok := out.Properties["ref"]; ok {
		out.Properties["ref"] = n.normalizeRef(splitMultiValue(out.Properties, "ref", ref), "CR")
	}

	if refUSFS, ok := out.Properties["ref:usfs"]; ok {
		out.Properties["ref:usfs"] = n.normalizeRef(splitMultiValue(out.Properties, "ref:usfs", refUSFS), "FR")
	}

	return out
}

// splitMultiValue splits a ";"-separated tag value, writing every
// branch after the first into "<key>:alt" (joined back with ";" if
// there were more than two), and returns the first branch for further
// normalization.
func splitMultiValue(props map[string]string, key, value string) string {
	if !strings.Contains(value, ";") {
		return value
	}
	parts := strings.Split(value, ";")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	if len(parts) > 1 {
		props[key+":alt"] = strings.Join(parts[1:], ";")
	}
	return parts[0]
}

// deriveRefFromName implements spec.md §4.2's "Reference extraction
// rule": when name encodes a Forest Service road/trail or county road
// number and the feature doesn't already carry the corresponding
// ref-bearing field, write a canonical ref:usfs/ref tag onto props,
// extracting the reference number as the last numeric-dot-alpha token
// in name, anchored at the end. Grounded on fixnames.py's sequence of
// "forest road ", "fr ", "fs ", "usfs trail ", "county road "... regex
// branches, each of which takes the trailing word of the name as the
// route number; unlike fixnames.py this stops at the first matching
// prefix rather than trying every branch, since the prefixes are
// mutually exclusive by construction.
func (NameRefNormalizer) deriveRefFromName(props map[string]string, name string) {
	token := refTokenPattern.FindString(name)
	if token == "" {
		return
	}
	token = strings.ToUpper(token)

	lower := strings.ToLower(strings.TrimSpace(name))
	switch {
	case nameCountyPrefixPattern.MatchString(lower):
		if _, ok := props["ref"]; !ok {
			props["ref"] = "CR " + token
		}
	case nameForestPrefixPattern.MatchString(lower):
		if _, ok := props["ref:usfs"]; !ok {
			props["ref:usfs"] = "FR " + token
		}
	}
}

// normalizeName expands abbreviations word by word and appends "Road"
// when the result doesn't already read as one.
func (NameRefNormalizer) normalizeName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return name
	}

	words := strings.Fields(name)
	for i, w := range words {
		if expanded, ok := abbreviations[w]; ok {
			words[i] = expanded
		}
	}
	rebuilt := strings.Join(words, " ")

	if !strings.Contains(strings.ToLower(rebuilt), "road") &&
		!strings.Contains(strings.ToLower(rebuilt), "trail") &&
		!strings.Contains(strings.ToLower(rebuilt), "highway") {
		rebuilt += " Road"
	}
	return rebuilt
}

// normalizeRef canonicalizes a reference number string into
// "<prefix> <number>" form. wantPrefix is "FR" for ref:usfs values and
// "CR" for bare ref values; the short prefixes FR, FS and FSR are
// rewritten to it, while a spelled-out "county road" always becomes
// "CR" and a spelled-out forest road/trail always becomes "FR". This
// applies regardless of which side of a comparison the value came
// from, so a never-reimported secondary feature still compares equal
// to a freshly imported primary one.
func (NameRefNormalizer) normalizeRef(ref, wantPrefix string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return ref
	}

	if m := countyRoadPattern.FindStringSubmatch(ref); m != nil {
		return "CR " + strings.ToUpper(strings.TrimSpace(m[1]))
	}
	if m := forestServiceRoadPattern.FindStringSubmatch(ref); m != nil {
		return "FR " + strings.ToUpper(strings.TrimSpace(m[1]))
	}
	if m := frPrefixPattern.FindStringSubmatch(ref); m != nil {
		return wantPrefix + " " + strings.ToUpper(strings.TrimSpace(m[1]))
	}

	// No recognized prefix: if it's purely numeric/alnum, apply
	// wantPrefix directly; otherwise leave untouched (e.g. a two-letter
	// state route code the caller already formatted).
	if isLikelyBareNumber(ref) {
		return wantPrefix + " " + strings.ToUpper(ref)
	}
	return ref
}

func isLikelyBareNumber(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	if _, err := strconv.Atoi(strings.TrimRight(strings.ToUpper(s), "ABCDEFGHIJKLMNOPQRSTUVWXYZ")); err == nil {
		return true
	}
	return false
}
