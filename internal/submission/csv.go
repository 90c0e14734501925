package submission

import (
	"context"
	"encoding/csv"
	"io"
)

var csvHeader = []string{
	"Submission ID", "Organization/School", "Name",
	"Class", "Section", "Phone", "Email",
	"Date", "Downloaded",
}

// ExportCSV writes every stored submission as CSV.
func (s *Service) ExportCSV(ctx context.Context, w io.Writer) error {
	recs, err := s.Records(ctx)
	if err != nil {
		return err
	}
	return WriteCSV(w, recs)
}

// WriteCSV writes records with the admin column layout.
func WriteCSV(w io.Writer, recs []Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, r := range recs {
		downloaded := "No"
		if r.PosterDownloaded {
			downloaded = "Yes"
		}
		row := []string{
			r.ID,
			Sanitize(r.OrganizationName),
			Sanitize(r.Name),
			dash(Sanitize(r.Grade)),
			dash(Sanitize(r.Section)),
			Sanitize(r.Phone),
			Sanitize(r.Email),
			r.Timestamp.Format("2006-01-02 15:04:05"),
			downloaded,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
