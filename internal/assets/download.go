package assets

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"net/url"
	"strings"

	"github.com/disintegration/imaging"

	"github.com/youruser/pledgeapp/internal/util"
)

// DownloadImage downloads an image from URL and decodes it.
func DownloadImage(ctx context.Context, url string) (image.Image, error) {
	body, err := util.GetBytes(ctx, url)
	if err != nil {
		return nil, err
	}
	return DecodeBytes(body)
}

// DecodeBytes decodes an encoded image, honoring EXIF orientation.
func DecodeBytes(b []byte) (image.Image, error) {
	if len(b) == 0 {
		return nil, errors.New("empty image data")
	}
	return imaging.Decode(bytes.NewReader(b), imaging.AutoOrientation(true))
}

// DecodeDataURL decodes a data: URL holding a base64 or percent-encoded image.
func DecodeDataURL(ref string) (image.Image, error) {
	b, err := DataURLBytes(ref)
	if err != nil {
		return nil, err
	}
	return DecodeBytes(b)
}

// DataURLBytes returns the payload of a data: URL.
func DataURLBytes(ref string) ([]byte, error) {
	rest, ok := strings.CutPrefix(ref, "data:")
	if !ok {
		return nil, fmt.Errorf("not a data url")
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return nil, fmt.Errorf("malformed data url")
	}
	if strings.HasSuffix(meta, ";base64") {
		b, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return nil, fmt.Errorf("data url: %w", err)
		}
		return b, nil
	}
	s, err := url.PathUnescape(payload)
	if err != nil {
		return nil, fmt.Errorf("data url: %w", err)
	}
	return []byte(s), nil
}

// EncodeDataURL wraps b in a base64 data: URL.
func EncodeDataURL(mime string, b []byte) string {
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(b)
}

// EncodePNG encodes img as PNG.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
