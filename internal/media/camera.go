package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"sync"
	"sync/atomic"

	"github.com/disintegration/imaging"
)

var (
	ErrCameraUnavailable = errors.New("camera unavailable")
	ErrPermissionDenied  = errors.New("camera permission denied")
	ErrCaptureClosed     = errors.New("capture session closed")
)

// cameraJPEGQuality matches a browser canvas' default JPEG quality.
const cameraJPEGQuality = 92

// Constraints requests a video stream.
type Constraints struct {
	FacingMode string
	Width      int
	Height     int
}

// FrontCamera is the selfie stream the photo step asks for.
func FrontCamera() Constraints {
	return Constraints{FacingMode: "user", Width: 1280, Height: 720}
}

// Camera opens video streams.
type Camera interface {
	Open(ctx context.Context, c Constraints) (Stream, error)
}

// Stream is a live video stream. Stop releases its tracks and is idempotent.
type Stream interface {
	Frame() (image.Image, error)
	Stop()
}

// CaptureSession owns an open stream until Capture or Cancel.
type CaptureSession struct {
	stream Stream
	mirror bool

	mu     sync.Mutex
	closed bool
}

// OpenCapture opens a stream on cam. Failures are wrapped in
// ErrCameraUnavailable unless the camera already reports a media error.
func OpenCapture(ctx context.Context, cam Camera, c Constraints) (*CaptureSession, error) {
	if cam == nil {
		return nil, ErrCameraUnavailable
	}
	s, err := cam.Open(ctx, c)
	if err != nil {
		if errors.Is(err, ErrPermissionDenied) || errors.Is(err, ErrCameraUnavailable) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrCameraUnavailable, err)
	}
	return &CaptureSession{stream: s, mirror: c.FacingMode == "user"}, nil
}

// Capture grabs the current frame, mirrors it to match the preview the user
// saw, encodes it as JPEG and stops the stream.
func (s *CaptureSession) Capture() (Source, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return Source{}, ErrCaptureClosed
	}
	defer s.closeLocked()

	frame, err := s.stream.Frame()
	if err != nil {
		return Source{}, fmt.Errorf("read frame: %w", err)
	}
	var out image.Image = frame
	if s.mirror {
		out = imaging.FlipH(frame)
	}
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, out, &jpeg.Options{Quality: cameraJPEGQuality}); err != nil {
		return Source{}, fmt.Errorf("encode frame: %w", err)
	}
	return Source{Image: out, Bytes: buf.Bytes(), ContentType: "image/jpeg", Origin: OriginCamera}, nil
}

// Cancel stops the stream without capturing.
func (s *CaptureSession) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closeLocked()
}

func (s *CaptureSession) closeLocked() {
	if s.closed {
		return
	}
	s.closed = true
	s.stream.Stop()
}

// FrameCamera serves a single still frame as a stream. The HTTP camera path
// uses it for the raw frame posted by the browser.
type FrameCamera struct {
	frame  image.Image
	active atomic.Int64
}

func NewFrameCamera(frame image.Image) *FrameCamera {
	return &FrameCamera{frame: frame}
}

func (c *FrameCamera) Open(_ context.Context, _ Constraints) (Stream, error) {
	if c.frame == nil {
		return nil, ErrCameraUnavailable
	}
	c.active.Add(1)
	return &frameStream{cam: c}, nil
}

// ActiveTracks is the number of streams not yet stopped.
func (c *FrameCamera) ActiveTracks() int {
	return int(c.active.Load())
}

type frameStream struct {
	cam  *FrameCamera
	once sync.Once
}

func (s *frameStream) Frame() (image.Image, error) {
	return s.cam.frame, nil
}

func (s *frameStream) Stop() {
	s.once.Do(func() { s.cam.active.Add(-1) })
}
