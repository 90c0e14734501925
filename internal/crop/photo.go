package crop

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"

	"github.com/youruser/pledgeapp/internal/assets"
)

// Photo is a cropped OutputSize square JPEG held as a data: URL. The zero
// value is the empty photo.
type Photo struct {
	DataURL string `json:"data_url,omitempty"`
}

// Empty reports whether no photo is stored.
func (p Photo) Empty() bool {
	return p.DataURL == ""
}

// Decode returns the photo pixels.
func (p Photo) Decode() (image.Image, error) {
	if p.Empty() {
		return nil, fmt.Errorf("photo is empty")
	}
	return assets.DecodeDataURL(p.DataURL)
}

// Bytes returns the encoded JPEG.
func (p Photo) Bytes() ([]byte, error) {
	if p.Empty() {
		return nil, fmt.Errorf("photo is empty")
	}
	return assets.DataURLBytes(p.DataURL)
}

// EncodePhoto JPEG-encodes img at JPEGQuality.
func EncodePhoto(img image.Image) (Photo, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: JPEGQuality}); err != nil {
		return Photo{}, fmt.Errorf("encode photo: %w", err)
	}
	return Photo{DataURL: assets.EncodeDataURL("image/jpeg", buf.Bytes())}, nil
}
