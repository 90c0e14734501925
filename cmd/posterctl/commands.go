package main

import (
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/youruser/pledgeapp/internal/app"
	"github.com/youruser/pledgeapp/internal/assets"
	"github.com/youruser/pledgeapp/internal/config"
	"github.com/youruser/pledgeapp/internal/crop"
	"github.com/youruser/pledgeapp/internal/export"
	"github.com/youruser/pledgeapp/internal/logging"
	"github.com/youruser/pledgeapp/internal/poster"
	"github.com/youruser/pledgeapp/internal/submission"
	"github.com/youruser/pledgeapp/internal/templates"
	"github.com/youruser/pledgeapp/internal/wizard"
)

func setup() (config.Config, hclog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, nil, err
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	return cfg, logging.New("posterctl", cfg.LogLevel, cfg.LogJSON, os.Stderr), nil
}

func newRenderCmd() *cobra.Command {
	var (
		orgID     string
		name      string
		photoPath string
		outPath   string
		family    string
		preview   bool
		width     int
	)
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render a poster to a PNG file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := setup()
			if err != nil {
				return err
			}
			if width > 0 {
				cfg.ExportWidth = width
				cfg.PreviewWidth = width
			}
			reg, err := app.Templates(cfg)
			if err != nil {
				return err
			}
			desc, ok := reg.GetTemplateByID(orgID)
			if !ok {
				return fmt.Errorf("unknown organization %q", orgID)
			}
			if family != "" {
				if desc, err = reg.WithFamily(orgID, family); err != nil {
					return err
				}
			}
			renderer, _, err := app.NewRenderer(cfg, logger)
			if err != nil {
				return err
			}

			form := wizard.DefaultForm()
			form.FullName = name
			if photoPath != "" {
				if form.Photo, err = cropFile(photoPath); err != nil {
					return err
				}
			}
			p := poster.Compose(form, desc, poster.Options{ShowPlaceholderText: preview})
			display, _ := poster.DisplayName(name, "")
			if outPath == "" {
				outPath = export.Filename(display)
			}

			ctx := cmd.Context()
			var data []byte
			if preview {
				img, err := renderer.Rasterize(ctx, p, poster.PreviewScale(p.AspectRatio, cfg.PreviewWidth))
				if err != nil {
					return err
				}
				if data, err = assets.EncodePNG(img); err != nil {
					return err
				}
			} else {
				exp := export.New(renderer, export.Options{Width: cfg.ExportWidth, Supersample: cfg.Supersample, Logger: logger})
				img, err := exp.Export(ctx, "posterctl", p, display)
				if err != nil {
					return err
				}
				data = img.Data
			}
			if err := os.WriteFile(outPath, data, 0o644); err != nil {
				return err
			}
			logger.Info("poster written", "path", outPath, "template", desc.ID, "bytes", len(data))
			return nil
		},
	}
	cmd.Flags().StringVar(&orgID, "org", "", "Organization id (required)")
	cmd.Flags().StringVar(&name, "name", "", "Name printed on the poster")
	cmd.Flags().StringVar(&photoPath, "photo", "", "Photo to crop into the photo slot")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Output PNG path")
	cmd.Flags().StringVar(&family, "family", "", "Render with this template family instead of the organization's")
	cmd.Flags().BoolVar(&preview, "preview", false, "Render at preview scale with on-screen chrome")
	cmd.Flags().IntVar(&width, "width", 0, "Canvas width before supersampling")
	if err := cmd.MarkFlagRequired("org"); err != nil {
		panic(err)
	}
	return cmd
}

// cropFile applies the default crop box to an image file.
func cropFile(path string) (crop.Photo, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return crop.Photo{}, err
	}
	img, err := assets.DecodeBytes(b)
	if err != nil {
		return crop.Photo{}, fmt.Errorf("decode %s: %w", path, err)
	}
	s, err := crop.NewSession(img)
	if err != nil {
		return crop.Photo{}, err
	}
	return s.Confirm()
}

func newTemplatesCmd() *cobra.Command {
	var families bool
	cmd := &cobra.Command{
		Use:   "templates",
		Short: "List the poster template of every organization",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, _, err := setup()
			if err != nil {
				return err
			}
			reg, err := app.Templates(cfg)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			if families {
				fams := reg.Families()
				fmt.Fprintln(tw, "FAMILY\tASPECT\tBACKGROUND\tPHOTO\tALIGN\tTIERS")
				for _, n := range templates.FamilyNames(fams) {
					f := fams[n]
					t := f.NameLine.Tiers
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%g/%g/%g\n",
						f.Name, f.AspectRatio, f.Background, f.Photo.Shape, f.NameLine.Align, t.Large, t.Medium, t.Small)
				}
				return tw.Flush()
			}
			fmt.Fprintln(tw, "ID\tORGANIZATION\tFAMILY\tASPECT\tLOGO\tACTIVE")
			for _, d := range reg.ListTemplates() {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%t\t%t\n",
					d.ID, d.Organization.Name, d.Family.Name, d.AspectRatio, d.HasLogo(), d.Organization.Active)
			}
			return tw.Flush()
		},
	}
	cmd.Flags().BoolVar(&families, "families", false, "List template families instead of organizations")
	return cmd
}

func newExportCSVCmd() *cobra.Command {
	var outPath string
	cmd := &cobra.Command{
		Use:   "export-csv",
		Short: "Write stored submissions as CSV",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, _, err := setup()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			store, err := app.OpenStore(ctx, cfg)
			if err != nil {
				return err
			}
			recs, err := store.List(ctx)
			if err != nil {
				return errors.Join(err, store.Close())
			}
			w := cmd.OutOrStdout()
			if outPath != "" {
				f, err := os.Create(outPath)
				if err != nil {
					return errors.Join(err, store.Close())
				}
				defer f.Close()
				w = f
			}
			return errors.Join(submission.WriteCSV(w, recs), store.Close())
		},
	}
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Output file (default stdout)")
	return cmd
}
