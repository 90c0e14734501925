package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/youruser/pledgeapp/internal/submission"
	"github.com/youruser/pledgeapp/internal/wizard"
)

func (h *Handler) createSession(c *gin.Context) {
	v := h.sessions.Create()
	h.logger.Debug("session created", "session", v.ID)
	c.JSON(http.StatusCreated, v)
}

func (h *Handler) getSession(c *gin.Context) {
	v, err := h.sessions.Get(c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, v)
}

func (h *Handler) deleteSession(c *gin.Context) {
	if !h.sessions.Delete(c.Param("id")) {
		h.fail(c, wizard.ErrSessionNotFound)
		return
	}
	c.Status(http.StatusNoContent)
}

// respond writes the current view of the session after a mutation.
func (h *Handler) respond(c *gin.Context, status int) {
	v, err := h.sessions.Get(c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(status, v)
}

type selectOrgRequest struct {
	OrganizationID string `json:"organization_id" binding:"required"`
}

func (h *Handler) selectOrganization(c *gin.Context) {
	var req selectOrgRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}
	d, ok := h.registry.GetTemplateByID(req.OrganizationID)
	if !ok {
		h.fail(c, errOrgNotFound)
		return
	}
	err := h.sessions.Update(c.Param("id"), func(s *wizard.Session) error {
		return s.SelectOrganization(d.ID, d.Organization.Active)
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	h.respond(c, http.StatusOK)
}

// updateForm accepts a map of field name to value. opt_in takes "true"/"false".
func (h *Handler) updateForm(c *gin.Context) {
	var fields map[string]string
	if err := c.ShouldBindJSON(&fields); err != nil {
		h.fail(c, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}
	err := h.sessions.Update(c.Param("id"), func(s *wizard.Session) error {
		next := s.Form
		for name, value := range fields {
			if err := next.UpdateField(name, value); err != nil {
				return err
			}
		}
		s.Form = next
		return nil
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	h.respond(c, http.StatusOK)
}

func (h *Handler) resetForm(c *gin.Context) {
	err := h.sessions.Update(c.Param("id"), func(s *wizard.Session) error {
		s.CancelCrop(h.sessions.Refs())
		s.Form.Reset()
		return nil
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	h.respond(c, http.StatusOK)
}

type stepRequest struct {
	Action string `json:"action" binding:"required"`
	Step   string `json:"step"`
}

func (h *Handler) step(c *gin.Context) {
	var req stepRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}
	id := c.Param("id")
	var entered bool
	err := h.sessions.Update(id, func(s *wizard.Session) error {
		switch req.Action {
		case "next":
			ok, err := s.Next()
			if err != nil {
				return err
			}
			entered = ok && s.ClaimSubmission()
			return nil
		case "back":
			return s.Back()
		case "goto":
			st, err := wizard.ParseStep(req.Step)
			if err != nil {
				return fmt.Errorf("%w: %v", errBadRequest, err)
			}
			return s.Goto(st, h.sessions.Refs())
		}
		return fmt.Errorf("%w: unknown action %q", errBadRequest, req.Action)
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	if entered {
		h.submit(c.Request.Context(), id)
	}
	h.respond(c, http.StatusOK)
}

// submit records the completed pledge. The wizard never blocks on it: a
// failed local save is logged and the user still reaches the success step.
func (h *Handler) submit(ctx context.Context, id string) {
	if h.submissions == nil {
		return
	}
	var (
		orgID string
		a     submission.Answer
	)
	if err := h.sessions.Read(id, func(s *wizard.Session) {
		orgID = s.OrganizationID
		a = submission.Answer{
			Name:     s.Form.FullName,
			Grade:    s.Form.Class,
			Section:  s.Form.Section,
			Phone:    s.Form.FullPhone(),
			Email:    s.Form.Email,
			OptIn:    s.Form.OptIn,
			HasPhoto: !s.Form.Photo.Empty(),
		}
	}); err != nil {
		return
	}
	orgName := ""
	if d, ok := h.registry.GetTemplateByID(orgID); ok {
		orgName = d.Organization.Name
	}
	cid, err := h.submissions.Submit(ctx, orgID, orgName, a)
	if err != nil {
		h.logger.Error("submission not stored", "session", id, "error", err)
		return
	}
	_ = h.sessions.Update(id, func(s *wizard.Session) error {
		s.SubmissionID = string(cid)
		return nil
	})
	h.logger.Info("pledge submitted", "session", id, "submission", cid, "organization", orgID)
}

// acknowledgeRequest replaces the acknowledged points; an explicit empty
// list clears them.
type acknowledgeRequest struct {
	Acknowledged []int `json:"acknowledged" binding:"required"`
}

func (h *Handler) acknowledge(c *gin.Context) {
	var req acknowledgeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}
	err := h.sessions.Update(c.Param("id"), func(s *wizard.Session) error {
		s.Acknowledge(req.Acknowledged)
		return nil
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	h.respond(c, http.StatusOK)
}
