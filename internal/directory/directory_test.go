package directory

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/youruser/pledgeapp/internal/templates"
)

const sampleCSV = `id,name,location,sub_location,icon,logo_url,poster_logo_url,active,featured,family,logo_rect
citizen,My Pledge for India,National,General Public,🇮🇳,,logos/ezone.png,true,true,citizen,
1,Delhi Public School,New Delhi,R.K. Puram,🏛️,logos/dps_logo.jpeg,,,no,,
4,Vaels International School,Chennai,Neelankarai,🏫,logos/vis_logo.png,,yes,yes,standard,18.17%/85.72%/24.46%/4.72%
,skipped row,,,,,,,,,
9,Closed School,Pune,Kothrud,,,,false,false,,
`

func TestParseOrganizations(t *testing.T) {
	orgs, err := ParseOrganizations(strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatalf("ParseOrganizations: %v", err)
	}
	if len(orgs) != 4 {
		t.Fatalf("got %d orgs, want 4", len(orgs))
	}
	if !orgs[1].Active {
		t.Error("active should default to true")
	}
	if orgs[1].Featured {
		t.Error("featured=no parsed as true")
	}
	if orgs[0].PosterLogoURL != "logos/ezone.png" || orgs[0].Family != templates.FamilyCitizen {
		t.Errorf("citizen row %+v", orgs[0])
	}
	r := orgs[2].LogoRect
	if r == nil || r.Left != 18.17 || r.Height != 4.72 {
		t.Errorf("logo rect %+v", r)
	}
	if orgs[3].Active {
		t.Error("active=false parsed as true")
	}
}

func TestParseOrganizations_Errors(t *testing.T) {
	if _, err := ParseOrganizations(strings.NewReader("name,location\nA,B\n")); err == nil {
		t.Error("missing id column should fail")
	}
	bad := "id,name,logo_rect\n1,A,10/20/30\n"
	if _, err := ParseOrganizations(strings.NewReader(bad)); err == nil {
		t.Error("three-part logo rect should fail")
	}
}

func TestLoadOrganizations(t *testing.T) {
	orgs, err := LoadOrganizations(filepath.Join(t.TempDir(), "missing.csv"))
	if err != nil {
		t.Fatalf("missing file: %v", err)
	}
	if len(orgs) != len(DefaultOrganizations()) {
		t.Errorf("missing file should yield defaults, got %d", len(orgs))
	}

	path := filepath.Join(t.TempDir(), "orgs.csv")
	if err := os.WriteFile(path, []byte(sampleCSV), 0o644); err != nil {
		t.Fatal(err)
	}
	orgs, err = LoadOrganizations(path)
	if err != nil {
		t.Fatalf("LoadOrganizations: %v", err)
	}
	if len(orgs) != 4 {
		t.Errorf("got %d orgs, want 4", len(orgs))
	}
}

func TestDefaultOrganizationsResolve(t *testing.T) {
	if _, err := templates.NewRegistry(templates.DefaultFamilies(), DefaultOrganizations()); err != nil {
		t.Fatalf("defaults do not resolve: %v", err)
	}
}

func TestSearch(t *testing.T) {
	orgs, err := ParseOrganizations(strings.NewReader(sampleCSV))
	if err != nil {
		t.Fatal(err)
	}
	cases := []struct {
		q    Query
		want []string
	}{
		{Query{}, []string{"citizen", "1", "4", "9"}},
		{Query{ActiveOnly: true}, []string{"citizen", "1", "4"}},
		{Query{Words: "  DELHI  public "}, []string{"1"}},
		{Query{Words: "chennai neelankarai"}, []string{"4"}},
		{Query{Words: "delhi chennai"}, nil},
		{Query{FeaturedOnly: true}, []string{"citizen", "4"}},
	}
	for _, tc := range cases {
		got := Search(orgs, tc.q)
		if len(got) != len(tc.want) {
			t.Errorf("Search(%+v) = %d results, want %d", tc.q, len(got), len(tc.want))
			continue
		}
		for i, o := range got {
			if o.ID != tc.want[i] {
				t.Errorf("Search(%+v)[%d] = %s, want %s", tc.q, i, o.ID, tc.want[i])
			}
		}
	}
	if n := len(Featured(orgs)); n != 2 {
		t.Errorf("Featured = %d, want 2", n)
	}
}
