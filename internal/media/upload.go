package media

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"io"
	"net/http"
	"strings"

	"github.com/youruser/pledgeapp/internal/assets"
)

// DefaultMaxUploadBytes is the upload size ceiling.
const DefaultMaxUploadBytes = 10 << 20

// MaxUploadPixels caps the decoded width*height of an upload.
const MaxUploadPixels = 40_000_000

var (
	ErrFileTooLarge  = errors.New("image exceeds the upload size limit")
	ErrNotImage      = errors.New("file is not an image")
	ErrEmptyFile     = errors.New("file is empty")
	ErrTooManyPixels = errors.New("image dimensions exceed the pixel limit")
)

// AcceptUpload validates and decodes an uploaded photo. declaredType is the
// client-supplied MIME type and size the client-declared length (-1 if
// unknown); both are checked again against the bytes actually read.
func AcceptUpload(declaredType string, size, limit int64, r io.Reader) (Source, error) {
	if limit <= 0 {
		limit = DefaultMaxUploadBytes
	}
	if size > limit {
		return Source{}, ErrFileTooLarge
	}
	if declaredType != "" && declaredType != "application/octet-stream" && !isImageType(declaredType) {
		return Source{}, ErrNotImage
	}
	b, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return Source{}, fmt.Errorf("read upload: %w", err)
	}
	if int64(len(b)) > limit {
		return Source{}, ErrFileTooLarge
	}
	if len(b) == 0 {
		return Source{}, ErrEmptyFile
	}
	sniffed := http.DetectContentType(b)
	if !isImageType(sniffed) {
		return Source{}, ErrNotImage
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(b))
	if err != nil {
		return Source{}, fmt.Errorf("%w: %v", ErrNotImage, err)
	}
	if int64(cfg.Width)*int64(cfg.Height) > MaxUploadPixels {
		return Source{}, fmt.Errorf("%w: %dx%d", ErrTooManyPixels, cfg.Width, cfg.Height)
	}
	img, err := assets.DecodeBytes(b)
	if err != nil {
		return Source{}, fmt.Errorf("%w: %v", ErrNotImage, err)
	}
	return Source{Image: img, Bytes: b, ContentType: sniffed, Origin: OriginUpload}, nil
}

func isImageType(ct string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(ct)), "image/")
}

// UserMessage maps acquisition errors to the text shown next to the photo field.
func UserMessage(err error) string {
	switch {
	case errors.Is(err, ErrFileTooLarge):
		return "Image size should be less than 10MB"
	case errors.Is(err, ErrTooManyPixels):
		return "Image dimensions are too large. Please choose a smaller photo."
	case errors.Is(err, ErrNotImage), errors.Is(err, ErrEmptyFile):
		return "Please choose an image file"
	case errors.Is(err, ErrCameraUnavailable), errors.Is(err, ErrPermissionDenied):
		return "Unable to access camera. Please allow permissions or upload a file."
	}
	return "Could not read the photo. Please try again."
}
