package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/youruser/pledgeapp/internal/crop"
	"github.com/youruser/pledgeapp/internal/export"
	"github.com/youruser/pledgeapp/internal/media"
	"github.com/youruser/pledgeapp/internal/wizard"
)

// fail maps domain errors to a status and a JSON error body.
func (h *Handler) fail(c *gin.Context, err error) {
	var fields wizard.FieldErrors
	switch {
	case errors.Is(err, wizard.ErrSessionNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.As(err, &fields):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Please fill all fields to continue.", "fields": fields})
	case errors.Is(err, media.ErrFileTooLarge), errors.Is(err, media.ErrTooManyPixels):
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": media.UserMessage(err)})
	case errors.Is(err, media.ErrNotImage), errors.Is(err, media.ErrEmptyFile):
		c.JSON(http.StatusUnsupportedMediaType, gin.H{"error": media.UserMessage(err)})
	case errors.Is(err, media.ErrCameraUnavailable), errors.Is(err, media.ErrPermissionDenied):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": media.UserMessage(err), "fallback": "upload"})
	case errors.Is(err, crop.ErrNoSource), errors.Is(err, crop.ErrBoxOutside), errors.Is(err, crop.ErrBoxTooSmall):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, wizard.ErrNoCrop), errors.Is(err, wizard.ErrNoPhoto),
		errors.Is(err, wizard.ErrNoNextStep), errors.Is(err, wizard.ErrNoPreviousStep),
		errors.Is(err, wizard.ErrStepAhead), errors.Is(err, wizard.ErrNoOrganization),
		errors.Is(err, wizard.ErrPledgeIncomplete), errors.Is(err, wizard.ErrInactiveOrg):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, wizard.ErrUnknownField), errors.Is(err, errBadRequest):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, errOrgNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, export.ErrExportInFlight):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "retry": true})
	case errors.Is(err, export.ErrRasterize):
		c.JSON(http.StatusInternalServerError, gin.H{"error": export.UserMessage, "retry": true})
	default:
		h.logger.Error("request failed", "path", c.FullPath(), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

var (
	errBadRequest  = errors.New("bad request")
	errOrgNotFound = errors.New("organization not found")
)
