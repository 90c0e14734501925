package templates

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestFontTiers_TierFor(t *testing.T) {
	tiers := DefaultFamilies()[FamilyStandard].NameLine.Tiers
	cases := []struct {
		name string
		want Tier
	}{
		{"Ram", TierLarge},
		{"Ram Kumar", TierLarge},
		{"Abcdefghijklm", TierLarge},
		{"Abcdefghijklmn", TierMedium},
		{"Abcdefghijklmnopqrst", TierMedium},
		{"Venkataramanan Subramaniam", TierSmall},
		{"राम कुमार शर्मा जी", TierMedium},
	}
	for _, tc := range cases {
		if got := tiers.TierFor(tc.name); got != tc.want {
			t.Errorf("TierFor(%q) = %v, want %v", tc.name, got, tc.want)
		}
	}
	if got := tiers.Size(TierSmall); got != 45 {
		t.Errorf("small size %v, want 45", got)
	}
}

func TestParseAspectRatio(t *testing.T) {
	ar, err := ParseAspectRatio("1080:1600")
	if err != nil {
		t.Fatalf("ParseAspectRatio: %v", err)
	}
	if ar.HeightFor(350) != 519 {
		t.Errorf("HeightFor(350) = %d, want 519", ar.HeightFor(350))
	}
	for _, bad := range []string{"", "1080", "0:10", "a:b", "-1:2"} {
		if _, err := ParseAspectRatio(bad); err == nil {
			t.Errorf("ParseAspectRatio(%q) should fail", bad)
		}
	}
}

func TestDefaultFamiliesValidate(t *testing.T) {
	for name, f := range DefaultFamilies() {
		if err := f.Validate(); err != nil {
			t.Errorf("family %s: %v", name, err)
		}
	}
}

func TestParseFamilies(t *testing.T) {
	doc := []byte(`
families:
  - name: gold
    aspect_ratio: "1080:1600"
    background: builtin:gold-dark
    photo:
      rect: {left: 25, top: 26, width: 50, height: 33.75}
      shape: round
    name_line:
      left: 50
      top: 64
      height: 6
      max_width: 70
      align: center
      color: "#f5d77a"
      tiers: {large: 72, medium: 58, small: 44, medium_above: 13, small_above: 20}
    logo: {left: 38, top: 84, width: 24, height: 7}
`)
	fams, err := ParseFamilies(doc)
	if err != nil {
		t.Fatalf("ParseFamilies: %v", err)
	}
	g, ok := fams["gold"]
	if !ok {
		t.Fatal("gold family missing")
	}
	if g.AspectRatio != (AspectRatio{W: 1080, H: 1600}) {
		t.Errorf("aspect %v", g.AspectRatio)
	}
	if g.Photo.Shape != ShapeRound {
		t.Errorf("shape %q, want round", g.Photo.Shape)
	}
	if g.Logo == nil || g.Logo.Top != 84 {
		t.Errorf("logo %+v", g.Logo)
	}
	if g.NameLine.MaxWidth != 70 {
		t.Errorf("name max width %v, want 70", g.NameLine.MaxWidth)
	}
}

func TestFamilyValidate_NameMaxWidth(t *testing.T) {
	f := DefaultFamilies()[FamilyStandard]
	f.NameLine.MaxWidth = 120
	if err := f.Validate(); err == nil {
		t.Error("max width over 100 accepted")
	}
	f.NameLine.MaxWidth = 0
	if err := f.Validate(); err != nil {
		t.Errorf("unbounded name line rejected: %v", err)
	}
}

func TestParseFamilies_RejectsBadTiers(t *testing.T) {
	doc := []byte(`
families:
  - name: broken
    aspect_ratio: "1:1"
    background: builtin:minimalist
    photo: {rect: {left: 10, top: 10, width: 20, height: 20}, shape: square}
    name_line:
      left: 50
      top: 50
      height: 5
      align: center
      tiers: {large: 10, medium: 8, small: 6, medium_above: 20, small_above: 10}
`)
	if _, err := ParseFamilies(doc); err == nil {
		t.Fatal("expected tier validation error")
	}
}

func TestLoadFamilies_MissingFileYieldsDefaults(t *testing.T) {
	fams, err := LoadFamilies(filepath.Join(t.TempDir(), "none.yaml"))
	if err != nil {
		t.Fatalf("LoadFamilies: %v", err)
	}
	if len(fams) != len(DefaultFamilies()) {
		t.Errorf("got %d families, want defaults", len(fams))
	}
}

func TestLoadFamilies_MergesOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "f.yaml")
	doc := `
families:
  - name: standard
    aspect_ratio: "1080:1080"
    background: builtin:minimalist
    photo: {rect: {left: 10, top: 10, width: 30, height: 30}, shape: square}
    name_line:
      left: 50
      top: 70
      height: 6
      align: center
      tiers: {large: 70, medium: 55, small: 40, medium_above: 13, small_above: 20}
`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}
	fams, err := LoadFamilies(path)
	if err != nil {
		t.Fatalf("LoadFamilies: %v", err)
	}
	if fams[FamilyStandard].AspectRatio.H != 1080 {
		t.Errorf("standard not overridden: %v", fams[FamilyStandard].AspectRatio)
	}
	if _, ok := fams[FamilyCitizen]; !ok {
		t.Error("citizen family dropped by merge")
	}
}

func TestRegistry_Resolve(t *testing.T) {
	orgs := []Organization{
		{ID: "citizen", Name: "My Pledge for India", Icon: "🇮🇳", PosterLogoURL: "logos/ezone.png", LogoURL: "logos/other.png", Family: FamilyCitizen, Active: true},
		{ID: "1", Name: "Delhi Public School", LogoURL: "logos/dps.jpeg", Active: true},
		{ID: "4", Name: "Vaels International School", LogoURL: "logos/vis.png", Active: true, LogoRect: &Rect{Left: 18.17, Top: 85.72, Width: 24.46, Height: 4.72}},
	}
	r, err := NewRegistry(DefaultFamilies(), orgs)
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}

	c, ok := r.GetTemplateByID("citizen")
	if !ok {
		t.Fatal("citizen missing")
	}
	if c.AspectRatio != (AspectRatio{W: 1080, H: 1300}) {
		t.Errorf("citizen aspect %v", c.AspectRatio)
	}
	if c.LogoImage != "logos/ezone.png" {
		t.Errorf("poster logo should win, got %q", c.LogoImage)
	}
	if !c.HasLogo() {
		t.Error("citizen family carries a logo slot")
	}

	plain, _ := r.GetTemplateByID("1")
	if plain.Organization.Family != FamilyStandard {
		t.Errorf("family defaulted to %q", plain.Organization.Family)
	}
	if plain.HasLogo() {
		t.Error("standard family without logo rect should have no logo layer")
	}

	v, _ := r.GetTemplateByID(" 4 ")
	if v.LogoRect == nil || v.LogoRect.Left != 18.17 {
		t.Fatalf("logo rect %+v", v.LogoRect)
	}
	if v.FallbackGlyph != "V" {
		t.Errorf("fallback glyph %q, want V", v.FallbackGlyph)
	}
	if len(r.ListTemplates()) != 3 || r.ListTemplates()[2].ID != "4" {
		t.Error("ListTemplates should keep directory order")
	}
}

func TestRegistry_WithFamily(t *testing.T) {
	r, err := NewRegistry(DefaultFamilies(), []Organization{
		{ID: "1", Name: "Delhi Public School", LogoURL: "logos/dps.jpeg", Active: true},
	})
	if err != nil {
		t.Fatal(err)
	}
	d, err := r.WithFamily("1", FamilyCitizen)
	if err != nil {
		t.Fatalf("WithFamily: %v", err)
	}
	if d.AspectRatio != (AspectRatio{W: 1080, H: 1300}) || !d.HasLogo() || d.LogoImage != "logos/dps.jpeg" {
		t.Errorf("descriptor %+v", d)
	}
	if orig, _ := r.GetTemplateByID("1"); orig.Family.Name != FamilyStandard {
		t.Errorf("registry entry changed to %q", orig.Family.Name)
	}

	_, err = r.WithFamily("1", "neon")
	if err == nil || !strings.Contains(err.Error(), "citizen, standard") {
		t.Errorf("unknown family error %v", err)
	}
	if _, err := r.WithFamily("nope", FamilyStandard); err == nil {
		t.Error("unknown organization accepted")
	}
	if names := FamilyNames(r.Families()); len(names) != 2 || names[0] != FamilyCitizen {
		t.Errorf("family names %v", names)
	}
}

func TestRegistry_Errors(t *testing.T) {
	if _, err := NewRegistry(DefaultFamilies(), []Organization{{ID: "x", Family: "nope"}}); err == nil {
		t.Error("unknown family should fail")
	}
	if _, err := NewRegistry(DefaultFamilies(), []Organization{{ID: "x"}, {ID: "x"}}); err == nil {
		t.Error("duplicate id should fail")
	}
	if _, err := NewRegistry(DefaultFamilies(), []Organization{{Name: "no id"}}); err == nil {
		t.Error("missing id should fail")
	}
}
