// Package export rasterizes composed posters at export scale and delivers
// them as downloads or native shares.
package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"regexp"
	"strings"
	"sync"

	"github.com/hashicorp/go-hclog"

	"github.com/youruser/pledgeapp/internal/logging"
	"github.com/youruser/pledgeapp/internal/poster"
)

var (
	// ErrExportInFlight rejects a second export for a key already exporting.
	ErrExportInFlight = errors.New("an export is already in progress")
	// ErrNoRasterizer is returned when no rasterizer is configured.
	ErrNoRasterizer = errors.New("no rasterizer configured")
	// ErrRasterize wraps every failure of the rasterization step.
	ErrRasterize = errors.New("could not generate image")
)

// UserMessage is shown when an export fails; the user may retry.
const UserMessage = "Could not generate image. Please try again."

// Rasterizer draws a poster at a scale.
type Rasterizer interface {
	Rasterize(ctx context.Context, p poster.Poster, s poster.RenderScale) (*image.NRGBA, error)
}

// Image is an exported PNG.
type Image struct {
	Data        []byte
	Width       int
	Height      int
	ContentType string
	Filename    string
}

// Options configure an Exporter.
type Options struct {
	// Width is the export canvas width before supersampling.
	Width       int
	Supersample int
	Stage       *Stage
	Logger      hclog.Logger
}

// Exporter renders posters at export scale, one export per key at a time.
type Exporter struct {
	raster Rasterizer
	width  int
	ss     int
	stage  *Stage
	logger hclog.Logger

	mu       sync.Mutex
	inFlight map[string]struct{}
}

func New(r Rasterizer, opts Options) *Exporter {
	if opts.Width <= 0 {
		opts.Width = 1080
	}
	if opts.Supersample <= 0 {
		opts.Supersample = 2
	}
	if opts.Stage == nil {
		opts.Stage = NewStage()
	}
	return &Exporter{
		raster:   r,
		width:    opts.Width,
		ss:       opts.Supersample,
		stage:    opts.Stage,
		logger:   logging.OrDiscard(opts.Logger).Named("export"),
		inFlight: make(map[string]struct{}),
	}
}

// Stage exposes the off-screen surface tracker.
func (e *Exporter) Stage() *Stage { return e.stage }

func (e *Exporter) acquire(key string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, busy := e.inFlight[key]; busy {
		return false
	}
	e.inFlight[key] = struct{}{}
	return true
}

func (e *Exporter) release(key string) {
	e.mu.Lock()
	delete(e.inFlight, key)
	e.mu.Unlock()
}

// InFlight reports whether key is exporting.
func (e *Exporter) InFlight(key string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, busy := e.inFlight[key]
	return busy
}

// Export rasterizes p at export scale and encodes a PNG. key identifies the
// poster being exported (one per user session); a concurrent call with
// the same key fails with ErrExportInFlight. Exports are not retried.
func (e *Exporter) Export(ctx context.Context, key string, p poster.Poster, displayName string) (Image, error) {
	if !e.acquire(key) {
		return Image{}, ErrExportInFlight
	}
	defer e.release(key)

	scale := poster.ExportScale(p.AspectRatio, e.width, e.ss)
	surface := e.stage.Attach(key, scale)
	defer e.stage.Detach(surface)

	img, err := e.rasterize(ctx, p, scale)
	if err != nil {
		e.logger.Error("export failed", "key", key, "template", p.TemplateID, "error", err)
		return Image{}, err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return Image{}, fmt.Errorf("%w: encode png: %v", ErrRasterize, err)
	}
	b := img.Bounds()
	e.logger.Debug("export done", "key", key, "width", b.Dx(), "height", b.Dy(), "bytes", buf.Len())
	return Image{
		Data:        buf.Bytes(),
		Width:       b.Dx(),
		Height:      b.Dy(),
		ContentType: "image/png",
		Filename:    Filename(displayName),
	}, nil
}

func (e *Exporter) rasterize(ctx context.Context, p poster.Poster, scale poster.RenderScale) (img *image.NRGBA, err error) {
	if e.raster == nil {
		return nil, fmt.Errorf("%w: %w", ErrRasterize, ErrNoRasterizer)
	}
	defer func() {
		if r := recover(); r != nil {
			img = nil
			err = fmt.Errorf("%w: panic: %v", ErrRasterize, r)
		}
	}()
	img, err = e.raster.Rasterize(ctx, p, scale)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRasterize, err)
	}
	if img == nil {
		return nil, fmt.Errorf("%w: empty canvas", ErrRasterize)
	}
	return img, nil
}

var unsafeName = regexp.MustCompile(`[^A-Za-z0-9_\-]+`)

// Filename builds the download name for a pledger.
func Filename(displayName string) string {
	name := strings.Join(strings.Fields(displayName), "_")
	name = unsafeName.ReplaceAllString(name, "")
	if name == "" {
		return "Pledge.png"
	}
	return "Pledge_" + name + ".png"
}
