package directory

import (
	"strings"

	"github.com/youruser/pledgeapp/internal/templates"
)

// Query narrows the directory listing.
type Query struct {
	Words        string
	FeaturedOnly bool
	ActiveOnly   bool
}

// Search returns the organizations matching q, in input order. Every word
// of q.Words must appear in the name, location or sub-location.
func Search(orgs []templates.Organization, q Query) []templates.Organization {
	kw := strings.Fields(strings.ToLower(q.Words))
	out := []templates.Organization{}
	for _, o := range orgs {
		if q.FeaturedOnly && !o.Featured {
			continue
		}
		if q.ActiveOnly && !o.Active {
			continue
		}
		if len(kw) > 0 {
			hay := strings.ToLower(strings.Join([]string{o.Name, o.Location, o.SubLocation}, " "))
			ok := true
			for _, k := range kw {
				if !strings.Contains(hay, k) {
					ok = false
					break
				}
			}
			if !ok {
				continue
			}
		}
		out = append(out, o)
	}
	return out
}

// Featured returns the active organizations shown on the landing page.
func Featured(orgs []templates.Organization) []templates.Organization {
	return Search(orgs, Query{FeaturedOnly: true, ActiveOnly: true})
}
