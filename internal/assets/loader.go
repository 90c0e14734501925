// Package assets resolves poster asset references (backgrounds, logos) to
// decoded images. Each load is a future: callers wait on completion
// instead of sleeping for a fixed delay.
package assets

import (
	"context"
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/hashicorp/go-hclog"

	"github.com/youruser/pledgeapp/internal/logging"
)

var (
	// ErrNoAsset is returned for an empty reference.
	ErrNoAsset = errors.New("no asset reference")
	// ErrOutsideRoot is returned for file references escaping the assets dir.
	ErrOutsideRoot = errors.New("asset path escapes the assets directory")
)

// Pending is the completion signal of one asset decode.
type Pending struct {
	ref  string
	done chan struct{}
	img  image.Image
	err  error
}

// Wait blocks until the asset is decoded or ctx ends.
func (p *Pending) Wait(ctx context.Context) (image.Image, error) {
	select {
	case <-p.done:
		return p.img, p.err
	case <-ctx.Done():
		return nil, fmt.Errorf("waiting for %s: %w", p.ref, ctx.Err())
	}
}

// Ready reports whether the decode finished.
func (p *Pending) Ready() bool {
	select {
	case <-p.done:
		return true
	default:
	}
	return false
}

func resolved(ref string, img image.Image, err error) *Pending {
	p := &Pending{ref: ref, done: make(chan struct{}), img: img, err: err}
	close(p.done)
	return p
}

// Loader decodes asset references. Successful loads are shared between
// callers; failed loads are retried on the next request.
type Loader struct {
	root   string
	logger hclog.Logger

	mu      sync.Mutex
	pending map[string]*Pending
}

// NewLoader returns a loader reading file references under root.
func NewLoader(root string, logger hclog.Logger) *Loader {
	return &Loader{
		root:    root,
		logger:  logging.OrDiscard(logger).Named("assets"),
		pending: make(map[string]*Pending),
	}
}

// Load starts decoding ref, or returns the in-flight/finished decode.
func (l *Loader) Load(ref string) *Pending {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return resolved(ref, nil, ErrNoAsset)
	}
	if strings.HasPrefix(ref, "data:") {
		img, err := DecodeDataURL(ref)
		return resolved("data url", img, err)
	}

	l.mu.Lock()
	if p, ok := l.pending[ref]; ok {
		l.mu.Unlock()
		return p
	}
	p := &Pending{ref: ref, done: make(chan struct{})}
	l.pending[ref] = p
	l.mu.Unlock()

	go func() {
		p.img, p.err = l.decode(ref)
		if p.err != nil {
			l.logger.Warn("asset decode failed", "ref", ref, "error", p.err)
			l.mu.Lock()
			delete(l.pending, ref)
			l.mu.Unlock()
		}
		close(p.done)
	}()
	return p
}

// Preload starts decoding every ref without waiting.
func (l *Loader) Preload(refs ...string) {
	for _, r := range refs {
		if r != "" {
			l.Load(r)
		}
	}
}

func (l *Loader) decode(ref string) (image.Image, error) {
	switch {
	case strings.HasPrefix(ref, builtinPrefix):
		gen, ok := builtins[strings.TrimPrefix(ref, builtinPrefix)]
		if !ok {
			return nil, fmt.Errorf("unknown builtin asset %q", ref)
		}
		return gen(), nil
	case strings.HasPrefix(ref, "http://"), strings.HasPrefix(ref, "https://"):
		return DownloadImage(context.Background(), ref)
	}
	path, err := l.localPath(ref)
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return DecodeBytes(b)
}

func (l *Loader) localPath(ref string) (string, error) {
	rel := strings.TrimPrefix(ref, "/assets/")
	rel = strings.TrimPrefix(rel, "/")
	root, err := filepath.Abs(l.root)
	if err != nil {
		return "", err
	}
	full := filepath.Join(root, filepath.FromSlash(rel))
	if full != root && !strings.HasPrefix(full, root+string(filepath.Separator)) {
		return "", ErrOutsideRoot
	}
	return full, nil
}
