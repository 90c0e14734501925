// Package api exposes the pledge wizard and poster pipeline over HTTP.
package api

import (
	"bytes"
	"crypto/subtle"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/hashicorp/go-hclog"

	"github.com/youruser/pledgeapp/internal/directory"
	"github.com/youruser/pledgeapp/internal/export"
	"github.com/youruser/pledgeapp/internal/logging"
	"github.com/youruser/pledgeapp/internal/pledge"
	"github.com/youruser/pledgeapp/internal/poster"
	"github.com/youruser/pledgeapp/internal/share"
	"github.com/youruser/pledgeapp/internal/submission"
	"github.com/youruser/pledgeapp/internal/templates"
	"github.com/youruser/pledgeapp/internal/wizard"
)

// Deps are the collaborators a Handler serves.
type Deps struct {
	Registry       *templates.Registry
	Sessions       *wizard.Store
	Renderer       *poster.Renderer
	Exporter       *export.Exporter
	Submissions    *submission.Service
	Logger         hclog.Logger
	PreviewWidth   int
	MaxUploadBytes int64
	ShareURL       string
	ShareTitle     string
	ShareText      string
	AdminToken     string
}

// Handler serves the HTTP API.
type Handler struct {
	registry     *templates.Registry
	sessions     *wizard.Store
	renderer     *poster.Renderer
	exporter     *export.Exporter
	submissions  *submission.Service
	logger       hclog.Logger
	previewWidth int
	maxUpload    int64
	shareURL     string
	shareTitle   string
	shareText    string
	adminToken   string
}

func NewHandler(d Deps) *Handler {
	if d.PreviewWidth <= 0 {
		d.PreviewWidth = 350
	}
	return &Handler{
		registry:     d.Registry,
		sessions:     d.Sessions,
		renderer:     d.Renderer,
		exporter:     d.Exporter,
		submissions:  d.Submissions,
		logger:       logging.OrDiscard(d.Logger).Named("api"),
		previewWidth: d.PreviewWidth,
		maxUpload:    d.MaxUploadBytes,
		shareURL:     d.ShareURL,
		shareTitle:   d.ShareTitle,
		shareText:    d.ShareText,
		adminToken:   d.AdminToken,
	}
}

// health
func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "sessions": h.sessions.Len()})
}

func (h *Handler) listOrganizations(c *gin.Context) {
	q := directory.Query{
		Words:        c.Query("q"),
		FeaturedOnly: truthy(c.Query("featured")),
		ActiveOnly:   !truthy(c.Query("all")),
	}
	out := directory.Search(h.registry.Organizations(), q)
	c.JSON(http.StatusOK, gin.H{"count": len(out), "organizations": out})
}

func (h *Handler) getOrganization(c *gin.Context) {
	d, ok := h.registry.GetTemplateByID(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "organization not found"})
		return
	}
	c.JSON(http.StatusOK, d)
}

func (h *Handler) getPledge(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"pledge": pledge.Fixed,
		"points": pledge.Points,
		"text":   pledge.ExportText(pledge.Fixed, pledge.Points),
	})
}

// qr endpoint returns a PNG of a QR for the "text" query param, defaulting
// to the campaign link
func (h *Handler) qrHandler(c *gin.Context) {
	text := c.Query("text")
	if text == "" {
		text = h.shareURL
	}
	size := share.DefaultQRSize
	if v, err := strconv.Atoi(c.Query("size")); err == nil {
		size = v
	}
	b, err := share.GenerateQRPNG(text, size)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.Data(http.StatusOK, "image/png", b)
}

func (h *Handler) requireAdmin(c *gin.Context) {
	got := strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
	if subtle.ConstantTimeCompare([]byte(got), []byte(h.adminToken)) != 1 {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	c.Next()
}

func (h *Handler) exportSubmissions(c *gin.Context) {
	var buf bytes.Buffer
	if err := h.submissions.ExportCSV(c.Request.Context(), &buf); err != nil {
		h.logger.Error("csv export failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "export failed"})
		return
	}
	c.Header("Content-Disposition", `attachment; filename="submissions.csv"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

func truthy(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}
