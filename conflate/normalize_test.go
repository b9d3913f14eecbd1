package conflate

import "testing"

func TestNormalizeStripsLegacyImportKeys(t *testing.T) {
	f := Feature{Properties: map[string]string{
		"tiger:cfcc": "A41",
		"_ABC":       "junk",
		"name":       "Main St",
	}}
	out := NameRefNormalizer{}.Normalize(f)
	if _, ok := out.Properties["tiger:cfcc"]; ok {
		t.Fatalf("expected tiger:* key to be stripped")
	}
	if _, ok := out.Properties["_ABC"]; ok {
		t.Fatalf("expected legacy _XYZ key to be stripped")
	}
}

func TestNormalizeExpandsAbbreviationsAndAppendsRoad(t *testing.T) {
	f := Feature{Properties: map[string]string{"name": "Elk Cr"}}
	out := NameRefNormalizer{}.Normalize(f)
	if out.Properties["name"] != "Elk Creek Road" {
		t.Fatalf("expected %q, got %q", "Elk Creek Road", out.Properties["name"])
	}
}

func TestNormalizeDoesNotDoubleAppendRoad(t *testing.T) {
	f := Feature{Properties: map[string]string{"name": "Main Road"}}
	out := NameRefNormalizer{}.Normalize(f)
	if out.Properties["name"] != "Main Road" {
		t.Fatalf("expected %q, got %q", "Main Road", out.Properties["name"])
	}
}

func TestNormalizeRefUSFSPrefixRewrite(t *testing.T) {
	cases := map[string]string{
		"FS 701":          "FR 701",
		"FSR 701":         "FR 701",
		"Forest Road 701": "FR 701",
		"701":             "FR 701",
	}
	for in, want := range cases {
		f := Feature{Properties: map[string]string{"ref:usfs": in}}
		out := NameRefNormalizer{}.Normalize(f)
		if got := out.Properties["ref:usfs"]; got != want {
			t.Errorf("normalizeRef(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestNormalizeCountyRefPrefix(t *testing.T) {
	f := Feature{Properties: map[string]string{"ref": "County Road 12"}}
	out := NameRefNormalizer{}.Normalize(f)
	if out.Properties["ref"] != "CR 12" {
		t.Fatalf("expected %q, got %q", "CR 12", out.Properties["ref"])
	}
}

func TestNormalizeDerivesRefUSFSFromName(t *testing.T) {
	f := Feature{Properties: map[string]string{"name": "Forest Road 701"}}
	out := NameRefNormalizer{}.Normalize(f)
	if out.Properties["ref:usfs"] != "FR 701" {
		t.Fatalf("expected ref:usfs derived from name to be %q, got %q", "FR 701", out.Properties["ref:usfs"])
	}
}

func TestNormalizeDerivesRefFromCountyRoadName(t *testing.T) {
	f := Feature{Properties: map[string]string{"name": "County Road 12"}}
	out := NameRefNormalizer{}.Normalize(f)
	if out.Properties["ref"] != "CR 12" {
		t.Fatalf("expected ref derived from name to be %q, got %q", "CR 12", out.Properties["ref"])
	}
}

func TestNormalizeDoesNotOverrideExistingRefUSFSFromName(t *testing.T) {
	f := Feature{Properties: map[string]string{"name": "Forest Road 701", "ref:usfs": "FR 900"}}
	out := NameRefNormalizer{}.Normalize(f)
	if out.Properties["ref:usfs"] != "FR 900" {
		t.Fatalf("expected already-present ref:usfs to win over name-derived value, got %q", out.Properties["ref:usfs"])
	}
}

func TestNormalizeMultiValueNameDerivesRefUSFSAndKeepsSecondBranch(t *testing.T) {
	f := Feature{Properties: map[string]string{
		"name": "Forest Road 701; Forest Road 701A",
	}}
	out := NameRefNormalizer{}.Normalize(f)
	if out.Properties["ref:usfs"] != "FR 701" {
		t.Fatalf("expected name-derived ref:usfs %q, got %q", "FR 701", out.Properties["ref:usfs"])
	}
	if out.Properties["name:alt"] != "Forest Road 701A" {
		t.Fatalf("expected alt branch preserved under name:alt, got %q", out.Properties["name:alt"])
	}
}

func TestNormalizeMultiValueRefUSFSPreservesSecondBranch(t *testing.T) {
	f := Feature{Properties: map[string]string{
		"ref:usfs": "Forest Road 701; Forest Road 701A",
	}}
	out := NameRefNormalizer{}.Normalize(f)
	if out.Properties["ref:usfs"] != "FR 701" {
		t.Fatalf("expected primary branch %q, got %q", "FR 701", out.Properties["ref:usfs"])
	}
	if out.Properties["ref:usfs:alt"] != "Forest Road 701A" {
		t.Fatalf("expected alt branch preserved, got %q", out.Properties["ref:usfs:alt"])
	}
}

func TestNormalizeIsIdempotent(t *testing.T) {
	f := Feature{Properties: map[string]string{"name": "Elk Cr", "ref:usfs": "FS 701"}}
	once := NameRefNormalizer{}.Normalize(f)
	twice := NameRefNormalizer{}.Normalize(once)
	if once.Properties["name"] != twice.Properties["name"] {
		t.Fatalf("normalize is not idempotent on name: %q vs %q", once.Properties["name"], twice.Properties["name"])
	}
	if once.Properties["ref:usfs"] != twice.Properties["ref:usfs"] {
		t.Fatalf("normalize is not idempotent on ref:usfs: %q vs %q", once.Properties["ref:usfs"], twice.Properties["ref:usfs"])
	}
}
