package api

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/youruser/pledgeapp/internal/assets"
	"github.com/youruser/pledgeapp/internal/crop"
	"github.com/youruser/pledgeapp/internal/media"
	"github.com/youruser/pledgeapp/internal/wizard"
)

// multipartSlack covers the multipart framing around the file part.
const multipartSlack = 64 << 10

func (h *Handler) limit() int64 {
	if h.maxUpload > 0 {
		return h.maxUpload
	}
	return media.DefaultMaxUploadBytes
}

// formFile reads one file part, mapping an oversized body to ErrFileTooLarge.
func (h *Handler) formFile(c *gin.Context, field string) (*multipart.FileHeader, error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.limit()+multipartSlack)
	fh, err := c.FormFile(field)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, media.ErrFileTooLarge
		}
		return nil, fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return fh, nil
}

func (h *Handler) uploadPhoto(c *gin.Context) {
	fh, err := h.formFile(c, "photo")
	if err != nil {
		h.fail(c, err)
		return
	}
	f, err := fh.Open()
	if err != nil {
		h.fail(c, err)
		return
	}
	defer f.Close()

	src, err := media.AcceptUpload(fh.Header.Get("Content-Type"), fh.Size, h.limit(), f)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.openCrop(c, src)
}

// capturePhoto takes the raw frame the browser grabbed from its front camera
// and runs it through a capture session, which mirrors it and stops the
// stream.
func (h *Handler) capturePhoto(c *gin.Context) {
	fh, err := h.formFile(c, "frame")
	if err != nil {
		h.fail(c, err)
		return
	}
	f, err := fh.Open()
	if err != nil {
		h.fail(c, err)
		return
	}
	defer f.Close()

	raw, err := media.AcceptUpload(fh.Header.Get("Content-Type"), fh.Size, h.limit(), f)
	if err != nil {
		h.fail(c, fmt.Errorf("%w: %v", media.ErrCameraUnavailable, err))
		return
	}
	cs, err := media.OpenCapture(c.Request.Context(), media.NewFrameCamera(raw.Image), media.FrontCamera())
	if err != nil {
		h.fail(c, err)
		return
	}
	src, err := cs.Capture()
	if err != nil {
		cs.Cancel()
		h.fail(c, err)
		return
	}
	h.openCrop(c, src)
}

func (h *Handler) openCrop(c *gin.Context, src media.Source) {
	err := h.sessions.Update(c.Param("id"), func(s *wizard.Session) error {
		return s.OpenCrop(h.sessions.Refs(), src)
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	h.respond(c, http.StatusCreated)
}

func (h *Handler) getPhoto(c *gin.Context) {
	var photo crop.Photo
	if err := h.sessions.Read(c.Param("id"), func(s *wizard.Session) { photo = s.Form.Photo }); err != nil {
		h.fail(c, err)
		return
	}
	if photo.Empty() {
		h.fail(c, wizard.ErrNoPhoto)
		return
	}
	b, err := photo.Bytes()
	if err != nil {
		h.fail(c, err)
		return
	}
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, "image/jpeg", b)
}

func (h *Handler) reopenCrop(c *gin.Context) {
	err := h.sessions.Update(c.Param("id"), func(s *wizard.Session) error {
		return s.ReopenCrop(h.sessions.Refs())
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	h.respond(c, http.StatusCreated)
}

func (h *Handler) getCropSource(c *gin.Context) {
	var ref media.Ref
	if err := h.sessions.Read(c.Param("id"), func(s *wizard.Session) { ref = s.CropRef() }); err != nil {
		h.fail(c, err)
		return
	}
	src, ok := h.sessions.Refs().Get(ref)
	if !ok {
		h.fail(c, wizard.ErrNoCrop)
		return
	}
	if len(src.Bytes) == 0 {
		b, err := assets.EncodePNG(src.Image)
		if err != nil {
			h.fail(c, err)
			return
		}
		src.Bytes, src.ContentType = b, "image/png"
	}
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, src.ContentType, src.Bytes)
}

// cropRequest sets the box outright, moves it, or zooms it. Absent fields
// are ignored.
type cropRequest struct {
	X    *float64 `json:"x"`
	Y    *float64 `json:"y"`
	Size *float64 `json:"size"`
	DX   float64  `json:"dx"`
	DY   float64  `json:"dy"`
	Zoom float64  `json:"zoom"`
}

func (h *Handler) adjustCrop(c *gin.Context) {
	var req cropRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}
	err := h.sessions.Update(c.Param("id"), func(s *wizard.Session) error {
		cs, err := s.Crop()
		if err != nil {
			return err
		}
		if req.X != nil || req.Y != nil || req.Size != nil {
			b := cs.Box()
			if req.X != nil {
				b.X = *req.X
			}
			if req.Y != nil {
				b.Y = *req.Y
			}
			if req.Size != nil {
				b.Size = *req.Size
			}
			if err := cs.SetBox(b); err != nil {
				return err
			}
		}
		if req.DX != 0 || req.DY != 0 {
			if err := cs.Move(req.DX, req.DY); err != nil {
				return err
			}
		}
		if req.Zoom != 0 {
			return cs.Zoom(req.Zoom)
		}
		return nil
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	h.respond(c, http.StatusOK)
}

func (h *Handler) confirmCrop(c *gin.Context) {
	err := h.sessions.Update(c.Param("id"), func(s *wizard.Session) error {
		_, err := s.ConfirmCrop(h.sessions.Refs())
		return err
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	h.respond(c, http.StatusOK)
}

func (h *Handler) cancelCrop(c *gin.Context) {
	err := h.sessions.Update(c.Param("id"), func(s *wizard.Session) error {
		s.CancelCrop(h.sessions.Refs())
		return nil
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	h.respond(c, http.StatusOK)
}
