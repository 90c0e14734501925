package export

import (
	"context"
	"errors"
)

// File is a shareable file.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// ShareRequest is handed to a native share sheet.
type ShareRequest struct {
	Files []File
	Title string
	Text  string
}

// ShareTarget is the platform share capability.
type ShareTarget interface {
	CanShare(req ShareRequest) bool
	Share(ctx context.Context, req ShareRequest) error
}

// Downloader saves a file for the user.
type Downloader interface {
	Download(ctx context.Context, f File) error
}

// Outcome says how an image reached the user.
type Outcome string

const (
	OutcomeShared     Outcome = "shared"
	OutcomeDownloaded Outcome = "downloaded"
)

// AsFile wraps an exported image.
func (img Image) AsFile() File {
	return File{Name: img.Filename, ContentType: img.ContentType, Data: img.Data}
}

// Download hands img to d.
func Download(ctx context.Context, img Image, d Downloader) error {
	if d == nil {
		return errors.New("no downloader")
	}
	return d.Download(ctx, img.AsFile())
}

// Share offers img to the native share target, falling back to download
// when sharing files is unsupported.
func Share(ctx context.Context, img Image, title, text string, target ShareTarget, fallback Downloader) (Outcome, error) {
	req := ShareRequest{Files: []File{img.AsFile()}, Title: title, Text: text}
	if target == nil || !target.CanShare(req) {
		return OutcomeDownloaded, Download(ctx, img, fallback)
	}
	return OutcomeShared, target.Share(ctx, req)
}
