package api

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/youruser/pledgeapp/internal/assets"
	"github.com/youruser/pledgeapp/internal/export"
	"github.com/youruser/pledgeapp/internal/pledge"
	"github.com/youruser/pledgeapp/internal/poster"
	"github.com/youruser/pledgeapp/internal/submission"
	"github.com/youruser/pledgeapp/internal/wizard"
)

const (
	minPreviewWidth = 120
	maxPreviewWidth = 1080
)

// compose lays out the session's poster from its answer record.
func (h *Handler) compose(id string, opts poster.Options) (poster.Poster, wizard.FormState, string, error) {
	var (
		form  wizard.FormState
		orgID string
		subID string
	)
	if err := h.sessions.Read(id, func(s *wizard.Session) {
		form, orgID, subID = s.Form, s.OrganizationID, s.SubmissionID
	}); err != nil {
		return poster.Poster{}, form, "", err
	}
	if orgID == "" {
		return poster.Poster{}, form, "", wizard.ErrNoOrganization
	}
	d, ok := h.registry.GetTemplateByID(orgID)
	if !ok {
		return poster.Poster{}, form, "", errOrgNotFound
	}
	return poster.Compose(form, d, opts), form, subID, nil
}

func (h *Handler) preview(c *gin.Context) {
	p, _, _, err := h.compose(c.Param("id"), poster.Options{ShowPlaceholderText: true})
	if err != nil {
		h.fail(c, err)
		return
	}
	w := h.previewWidth
	if v, err := strconv.Atoi(c.Query("w")); err == nil {
		w = min(max(v, minPreviewWidth), maxPreviewWidth)
	}
	img, err := h.renderer.Rasterize(c.Request.Context(), p, poster.PreviewScale(p.AspectRatio, w))
	if err != nil {
		h.fail(c, fmt.Errorf("%w: %w", export.ErrRasterize, err))
		return
	}
	b, err := assets.EncodePNG(img)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, "image/png", b)
}

// exportPoster renders the final poster for the session.
func (h *Handler) exportPoster(c *gin.Context) (export.Image, string, bool) {
	id := c.Param("id")
	p, form, subID, err := h.compose(id, poster.Options{})
	if err != nil {
		h.fail(c, err)
		return export.Image{}, "", false
	}
	name, _ := poster.DisplayName(form.FullName, "")
	img, err := h.exporter.Export(c.Request.Context(), id, p, name)
	if err != nil {
		h.fail(c, err)
		return export.Image{}, "", false
	}
	return img, subID, true
}

func (h *Handler) download(c *gin.Context) {
	img, subID, ok := h.exportPoster(c)
	if !ok {
		return
	}
	if err := export.Download(c.Request.Context(), img, attachment{c}); err != nil {
		h.fail(c, err)
		return
	}
	h.logDownload(c.Request.Context(), subID)
}

// share answers with a share payload when the client declares it can share
// files (X-Share-Files: 1) and falls back to a download otherwise.
func (h *Handler) share(c *gin.Context) {
	img, subID, ok := h.exportPoster(c)
	if !ok {
		return
	}
	target := shareSheet{c: c, enabled: truthy(c.GetHeader("X-Share-Files"))}
	text := pledge.ShareText(h.shareText, h.shareURL)
	outcome, err := export.Share(c.Request.Context(), img, h.shareTitle, text, target, attachment{c})
	if err != nil {
		h.fail(c, err)
		return
	}
	h.logger.Debug("poster delivered", "session", c.Param("id"), "outcome", outcome)
	h.logDownload(c.Request.Context(), subID)
}

func (h *Handler) logDownload(ctx context.Context, subID string) {
	if h.submissions == nil || subID == "" {
		return
	}
	if err := h.submissions.LogDownload(ctx, submission.ConfirmationID(subID)); err != nil {
		h.logger.Warn("download not logged", "submission", subID, "error", err)
	}
}

// attachment delivers a file as a browser download.
type attachment struct{ c *gin.Context }

func (a attachment) Download(_ context.Context, f export.File) error {
	a.c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", f.Name))
	a.c.Data(http.StatusOK, f.ContentType, f.Data)
	return nil
}

// shareSheet hands the file back to a client that invokes its native share
// sheet itself.
type shareSheet struct {
	c       *gin.Context
	enabled bool
}

func (s shareSheet) CanShare(req export.ShareRequest) bool {
	return s.enabled && len(req.Files) > 0
}

type sharedFile struct {
	Name        string `json:"name"`
	ContentType string `json:"content_type"`
	Data        string `json:"data"`
}

func (s shareSheet) Share(_ context.Context, req export.ShareRequest) error {
	files := make([]sharedFile, 0, len(req.Files))
	for _, f := range req.Files {
		files = append(files, sharedFile{
			Name:        f.Name,
			ContentType: f.ContentType,
			Data:        base64.StdEncoding.EncodeToString(f.Data),
		})
	}
	s.c.JSON(http.StatusOK, gin.H{
		"outcome": export.OutcomeShared,
		"title":   req.Title,
		"text":    req.Text,
		"files":   files,
	})
	return nil
}
