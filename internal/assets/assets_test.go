package assets

import (
	"context"
	"errors"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/disintegration/imaging"
)

func waitCtx(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func TestParseHex(t *testing.T) {
	cases := map[string]color.NRGBA{
		"#000":      {A: 255},
		"#fff":      {R: 255, G: 255, B: 255, A: 255},
		"#e5e7eb":   {R: 0xe5, G: 0xe7, B: 0xeb, A: 255},
		"ff000080":  {R: 255, A: 0x80},
		" #1a1a1a ": {R: 0x1a, G: 0x1a, B: 0x1a, A: 255},
	}
	for in, want := range cases {
		got, err := ParseHex(in)
		if err != nil {
			t.Errorf("ParseHex(%q): %v", in, err)
			continue
		}
		if got != want {
			t.Errorf("ParseHex(%q) = %v, want %v", in, got, want)
		}
	}
	if _, err := ParseHex("#12"); err == nil {
		t.Error("two digits should fail")
	}
}

func TestDataURLRoundTrip(t *testing.T) {
	src := imaging.New(4, 3, color.NRGBA{R: 200, A: 255})
	b, err := EncodePNG(src)
	if err != nil {
		t.Fatal(err)
	}
	img, err := DecodeDataURL(EncodeDataURL("image/png", b))
	if err != nil {
		t.Fatalf("DecodeDataURL: %v", err)
	}
	if img.Bounds().Dx() != 4 || img.Bounds().Dy() != 3 {
		t.Errorf("bounds %v", img.Bounds())
	}
	if _, err := DataURLBytes("http://example.com/x.png"); err == nil {
		t.Error("non data url should fail")
	}
	if _, err := DataURLBytes("data:image/png;base64"); err == nil {
		t.Error("data url without payload should fail")
	}
}

func TestLoader_Builtin(t *testing.T) {
	l := NewLoader(t.TempDir(), nil)
	for _, ref := range []string{"builtin:tricolor", "builtin:gold-dark", "builtin:minimalist"} {
		if !IsBuiltin(ref) {
			t.Errorf("IsBuiltin(%q) = false", ref)
		}
		img, err := l.Load(ref).Wait(waitCtx(t))
		if err != nil {
			t.Fatalf("%s: %v", ref, err)
		}
		if img.Bounds().Dx() != builtinW || img.Bounds().Dy() != builtinH {
			t.Errorf("%s bounds %v", ref, img.Bounds())
		}
	}
	if IsBuiltin("builtin:nope") || IsBuiltin("tricolor") {
		t.Error("IsBuiltin accepted an unknown ref")
	}
}

func TestLoader_SharesSuccessfulLoads(t *testing.T) {
	l := NewLoader(t.TempDir(), nil)
	p1 := l.Load("builtin:minimalist")
	if _, err := p1.Wait(waitCtx(t)); err != nil {
		t.Fatal(err)
	}
	if !p1.Ready() {
		t.Error("Ready false after Wait")
	}
	if p2 := l.Load("builtin:minimalist"); p2 != p1 {
		t.Error("second load should reuse the finished decode")
	}
}

func TestLoader_RetriesFailedLoads(t *testing.T) {
	root := t.TempDir()
	l := NewLoader(root, nil)

	missing := l.Load("logos/school.png")
	if _, err := missing.Wait(waitCtx(t)); err == nil {
		t.Fatal("missing file should fail")
	}

	if err := os.MkdirAll(filepath.Join(root, "logos"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := imaging.Save(imaging.New(10, 5, color.White), filepath.Join(root, "logos", "school.png")); err != nil {
		t.Fatal(err)
	}
	retry := l.Load("logos/school.png")
	img, err := retry.Wait(waitCtx(t))
	if err != nil {
		t.Fatalf("retry after failure: %v", err)
	}
	if img.Bounds() != image.Rect(0, 0, 10, 5) {
		t.Errorf("bounds %v", img.Bounds())
	}
}

func TestLoader_RejectsEscapes(t *testing.T) {
	l := NewLoader(t.TempDir(), nil)
	_, err := l.Load("../../etc/passwd").Wait(waitCtx(t))
	if !errors.Is(err, ErrOutsideRoot) {
		t.Errorf("err = %v, want ErrOutsideRoot", err)
	}
	_, err = l.Load("   ").Wait(waitCtx(t))
	if !errors.Is(err, ErrNoAsset) {
		t.Errorf("err = %v, want ErrNoAsset", err)
	}
}

func TestPending_WaitHonorsContext(t *testing.T) {
	p := &Pending{ref: "slow", done: make(chan struct{})}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := p.Wait(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
	if p.Ready() {
		t.Error("unfinished decode reported ready")
	}
}

func TestLoader_AssetsPrefix(t *testing.T) {
	root := t.TempDir()
	if err := imaging.Save(imaging.New(3, 3, color.White), filepath.Join(root, "bg.png")); err != nil {
		t.Fatal(err)
	}
	l := NewLoader(root, nil)
	if _, err := l.Load("/assets/bg.png").Wait(waitCtx(t)); err != nil {
		t.Fatalf("/assets/ prefix: %v", err)
	}
}
