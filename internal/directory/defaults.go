package directory

import "github.com/youruser/pledgeapp/internal/templates"

// DefaultOrganizations is the directory used when no CSV is configured.
func DefaultOrganizations() []templates.Organization {
	return []templates.Organization{
		{
			ID:            "citizen",
			Name:          "My Pledge for India",
			Location:      "National",
			SubLocation:   "General Public",
			Icon:          "🇮🇳",
			PosterLogoURL: "logos/ezone.png",
			Active:        true,
			Featured:      true,
			Family:        templates.FamilyCitizen,
		},
		{ID: "1", Name: "Delhi Public School", Location: "New Delhi", SubLocation: "R.K. Puram", Icon: "🏛️", LogoURL: "logos/dps_logo.jpeg", Active: true, Family: templates.FamilyStandard},
		{ID: "2", Name: "Kendriya Vidyalaya", Location: "Bangalore", SubLocation: "Hebbal", Icon: "🏫", LogoURL: "logos/kv_logo.png", Active: true, Family: templates.FamilyStandard},
		{ID: "3", Name: "National Public School", Location: "Indiranagar", SubLocation: "Bangalore", Icon: "🎓", LogoURL: "logos/nps_logo.jpeg", Active: true, Family: templates.FamilyStandard},
		{
			ID:          "4",
			Name:        "Vaels International School",
			Location:    "Chennai",
			SubLocation: "Neelankarai & Injabakkam",
			Icon:        "🏫",
			LogoURL:     "logos/vis_logo.png",
			Active:      true,
			Featured:    true,
			Family:      templates.FamilyStandard,
			LogoRect:    &templates.Rect{Left: 18.17, Top: 85.72, Width: 24.46, Height: 4.72},
		},
	}
}
