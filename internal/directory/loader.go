// Package directory loads the organization directory and searches it.
package directory

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/youruser/pledgeapp/internal/templates"
)

// LoadOrganizations reads organizations from a CSV file. A missing file
// yields the built-in directory.
func LoadOrganizations(path string) ([]templates.Organization, error) {
	fp, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return DefaultOrganizations(), nil
	}
	if err != nil {
		return nil, err
	}
	defer fp.Close()
	orgs, err := ParseOrganizations(fp)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	return orgs, nil
}

// ParseOrganizations decodes the directory CSV. The header row names the
// columns; unknown columns are ignored.
func ParseOrganizations(r io.Reader) ([]templates.Organization, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(rows) < 1 {
		return nil, fmt.Errorf("csv has no header")
	}
	cols := map[string]int{}
	for i, h := range rows[0] {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	if _, ok := cols["id"]; !ok {
		return nil, fmt.Errorf("csv header is missing the id column")
	}

	get := func(row []string, name string) string {
		if idx, ok := cols[name]; ok && idx < len(row) {
			return strings.TrimSpace(row[idx])
		}
		return ""
	}

	out := []templates.Organization{}
	for line, row := range rows[1:] {
		o := templates.Organization{
			ID:            get(row, "id"),
			Name:          get(row, "name"),
			Location:      get(row, "location"),
			SubLocation:   get(row, "sub_location"),
			Icon:          get(row, "icon"),
			LogoURL:       get(row, "logo_url"),
			PosterLogoURL: get(row, "poster_logo_url"),
			Family:        get(row, "family"),
			Active:        parseBool(get(row, "active"), true),
			Featured:      parseBool(get(row, "featured"), false),
		}
		if o.ID == "" {
			continue
		}
		if raw := get(row, "logo_rect"); raw != "" && raw != "-" {
			rect, err := parseRect(raw)
			if err != nil {
				return nil, fmt.Errorf("row %d (%s): %w", line+2, o.ID, err)
			}
			o.LogoRect = &rect
		}
		out = append(out, o)
	}
	return out, nil
}

func parseBool(s string, def bool) bool {
	switch strings.ToLower(s) {
	case "true", "yes", "1":
		return true
	case "false", "no", "0":
		return false
	}
	return def
}

// parseRect reads "left/top/width/height" in percent; a trailing % is allowed.
func parseRect(s string) (templates.Rect, error) {
	parts := strings.Split(s, "/")
	if len(parts) != 4 {
		return templates.Rect{}, fmt.Errorf("logo_rect %q: want left/top/width/height", s)
	}
	var v [4]float64
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSuffix(strings.TrimSpace(p), "%"), 64)
		if err != nil {
			return templates.Rect{}, fmt.Errorf("logo_rect %q: %w", s, err)
		}
		v[i] = f
	}
	return templates.Rect{Left: v[0], Top: v[1], Width: v[2], Height: v[3]}, nil
}
