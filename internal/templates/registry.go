package templates

import (
	"fmt"
	"strings"
)

// Registry maps organization ids to resolved descriptors. It is immutable
// after construction and safe for concurrent use.
type Registry struct {
	families map[string]Family
	order    []string
	byID     map[string]Descriptor
}

// NewRegistry resolves every organization against its family.
func NewRegistry(families map[string]Family, orgs []Organization) (*Registry, error) {
	r := &Registry{
		families: make(map[string]Family, len(families)),
		byID:     make(map[string]Descriptor, len(orgs)),
	}
	for name, f := range families {
		if err := f.Validate(); err != nil {
			return nil, err
		}
		r.families[name] = f
	}
	for _, o := range orgs {
		d, err := r.resolve(o)
		if err != nil {
			return nil, err
		}
		if _, dup := r.byID[d.ID]; dup {
			return nil, fmt.Errorf("organization %s declared twice", d.ID)
		}
		r.byID[d.ID] = d
		r.order = append(r.order, d.ID)
	}
	return r, nil
}

func (r *Registry) resolve(o Organization) (Descriptor, error) {
	id := strings.TrimSpace(o.ID)
	if id == "" {
		return Descriptor{}, fmt.Errorf("organization %q: id is required", o.Name)
	}
	o.ID = id
	famName := o.Family
	if famName == "" {
		famName = FamilyStandard
	}
	fam, ok := r.families[famName]
	if !ok {
		return Descriptor{}, fmt.Errorf("organization %s: unknown family %q", id, famName)
	}
	o.Family = famName

	d := Descriptor{
		ID:            id,
		Organization:  o,
		Family:        fam,
		AspectRatio:   fam.AspectRatio,
		Background:    fam.Background,
		FallbackGlyph: strings.TrimSpace(o.Icon),
	}
	switch {
	case o.LogoRect != nil:
		if err := o.LogoRect.Validate(); err != nil {
			return Descriptor{}, fmt.Errorf("organization %s logo: %w", id, err)
		}
		lr := *o.LogoRect
		d.LogoRect = &lr
	case fam.Logo != nil:
		lr := *fam.Logo
		d.LogoRect = &lr
	}
	if d.LogoRect != nil {
		d.LogoImage = o.PosterLogoURL
		if d.LogoImage == "" {
			d.LogoImage = o.LogoURL
		}
		if d.FallbackGlyph == "" {
			d.FallbackGlyph = firstRune(o.Name)
		}
	}
	return d, nil
}

func firstRune(s string) string {
	for _, r := range strings.TrimSpace(s) {
		return string(r)
	}
	return ""
}

// GetTemplateByID returns the descriptor for an organization id.
func (r *Registry) GetTemplateByID(id string) (Descriptor, bool) {
	d, ok := r.byID[strings.TrimSpace(id)]
	return d, ok
}

// ListTemplates returns all descriptors in directory order.
func (r *Registry) ListTemplates() []Descriptor {
	out := make([]Descriptor, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.byID[id])
	}
	return out
}

// Organizations returns the directory entries in order.
func (r *Registry) Organizations() []Organization {
	out := make([]Organization, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.byID[id].Organization)
	}
	return out
}

// Family returns a family by name.
func (r *Registry) Family(name string) (Family, bool) {
	f, ok := r.families[name]
	return f, ok
}

// WithFamily resolves organization id as if it used the named family.
func (r *Registry) WithFamily(id, family string) (Descriptor, error) {
	d, ok := r.GetTemplateByID(id)
	if !ok {
		return Descriptor{}, fmt.Errorf("unknown organization %q", id)
	}
	if _, ok := r.Family(family); !ok {
		return Descriptor{}, fmt.Errorf("unknown family %q (have %s)", family, strings.Join(FamilyNames(r.families), ", "))
	}
	o := d.Organization
	o.Family = family
	return r.resolve(o)
}

// Families returns the registered families keyed by name.
func (r *Registry) Families() map[string]Family {
	out := make(map[string]Family, len(r.families))
	for k, v := range r.families {
		out[k] = v
	}
	return out
}
