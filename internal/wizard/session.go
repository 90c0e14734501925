// Package wizard sequences a user through the pledge flow and owns the
// answer record and the transient crop session of each visitor.
package wizard

import (
	"errors"
	"fmt"
	"time"

	"github.com/youruser/pledgeapp/internal/assets"
	"github.com/youruser/pledgeapp/internal/crop"
	"github.com/youruser/pledgeapp/internal/media"
	"github.com/youruser/pledgeapp/internal/pledge"
)

var (
	ErrNoOrganization   = errors.New("no organization selected")
	ErrPledgeIncomplete = errors.New("every pledge point must be acknowledged")
	ErrNoNextStep       = errors.New("already at the last step")
	ErrNoPreviousStep   = errors.New("already at the first step")
	ErrStepAhead        = errors.New("cannot jump ahead of the current step")
	ErrNoCrop           = errors.New("no crop in progress")
	ErrNoPhoto          = errors.New("no photo to re-crop")
	ErrInactiveOrg      = errors.New("organization is not accepting pledges")
)

// Session is one visitor's wizard state. Access it only through Store.
type Session struct {
	ID             string
	CreatedAt      time.Time
	UpdatedAt      time.Time
	Step           Step
	OrganizationID string
	Form           FormState
	Acknowledged   []int
	SubmissionID   string

	submitted bool
	crop      *crop.Session
	cropRef   media.Ref
}

func newSession(id string, now time.Time) *Session {
	return &Session{
		ID:        id,
		CreatedAt: now,
		UpdatedAt: now,
		Step:      StepHome,
		Form:      DefaultForm(),
	}
}

// SelectOrganization records the organization and moves to the form.
func (s *Session) SelectOrganization(id string, active bool) error {
	if id == "" {
		return ErrNoOrganization
	}
	if !active {
		return ErrInactiveOrg
	}
	s.OrganizationID = id
	if s.Step < StepForm {
		s.Step = StepForm
	}
	return nil
}

// Next advances one step after checking the current step is complete.
// It reports whether the session just entered StepSuccess.
func (s *Session) Next() (enteredSuccess bool, err error) {
	switch s.Step {
	case StepHome:
	case StepDirectory:
		if s.OrganizationID == "" {
			return false, ErrNoOrganization
		}
	case StepForm:
		if s.OrganizationID == "" {
			return false, ErrNoOrganization
		}
		if err := s.Form.Validate(); err != nil {
			return false, err
		}
	case StepPreview:
	case StepReading:
		if !pledge.AllAcknowledged(s.Acknowledged) {
			return false, ErrPledgeIncomplete
		}
	case StepSuccess:
		return false, ErrNoNextStep
	}
	s.Step++
	return s.Step == StepSuccess, nil
}

// Back returns to the previous step.
func (s *Session) Back() error {
	if s.Step == StepHome {
		return ErrNoPreviousStep
	}
	s.Step--
	return nil
}

// Goto moves back to an earlier step. Going home starts over.
func (s *Session) Goto(step Step, refs *media.Refs) error {
	if step > s.Step {
		return fmt.Errorf("%w: %s", ErrStepAhead, step)
	}
	if step == StepHome {
		s.Reset(refs)
		return nil
	}
	s.Step = step
	return nil
}

// Reset clears the answer record and any crop in progress.
func (s *Session) Reset(refs *media.Refs) {
	s.CancelCrop(refs)
	s.Step = StepHome
	s.OrganizationID = ""
	s.Form.Reset()
	s.Acknowledged = nil
	s.SubmissionID = ""
	s.submitted = false
}

// Acknowledge replaces the acknowledged pledge points.
func (s *Session) Acknowledge(points []int) {
	s.Acknowledged = pledge.Normalize(points)
}

// ClaimSubmission returns true exactly once per completed pledge.
func (s *Session) ClaimSubmission() bool {
	if s.submitted || s.Step != StepSuccess {
		return false
	}
	s.submitted = true
	return true
}

// OpenCrop starts a crop session on src, releasing any previous one.
func (s *Session) OpenCrop(refs *media.Refs, src media.Source) error {
	cs, err := crop.NewSession(src.Image)
	if err != nil {
		return err
	}
	s.CancelCrop(refs)
	s.crop = cs
	s.cropRef = refs.Create(src)
	return nil
}

// ReopenCrop seeds a new crop session from the stored photo.
func (s *Session) ReopenCrop(refs *media.Refs) error {
	if s.Form.Photo.Empty() {
		return ErrNoPhoto
	}
	b, err := s.Form.Photo.Bytes()
	if err != nil {
		return fmt.Errorf("reopen photo: %w", err)
	}
	img, err := assets.DecodeBytes(b)
	if err != nil {
		return fmt.Errorf("reopen photo: %w", err)
	}
	return s.OpenCrop(refs, media.Source{Image: img, Bytes: b, ContentType: "image/jpeg", Origin: media.OriginPhoto})
}

// Crop returns the crop session in progress.
func (s *Session) Crop() (*crop.Session, error) {
	if s.crop == nil {
		return nil, ErrNoCrop
	}
	return s.crop, nil
}

// CropRef is the reference held for the crop source, empty when idle.
func (s *Session) CropRef() media.Ref {
	return s.cropRef
}

// ConfirmCrop stores the cropped photo and ends the crop session.
func (s *Session) ConfirmCrop(refs *media.Refs) (crop.Photo, error) {
	if s.crop == nil {
		return crop.Photo{}, ErrNoCrop
	}
	p, err := s.crop.Confirm()
	if err != nil {
		return crop.Photo{}, err
	}
	s.Form.Photo = p
	s.CancelCrop(refs)
	return p, nil
}

// CancelCrop discards the crop session. The stored photo is untouched.
func (s *Session) CancelCrop(refs *media.Refs) {
	if refs != nil {
		refs.Revoke(s.cropRef)
	}
	s.cropRef = ""
	s.crop = nil
}

// View is the client-facing snapshot of a session.
type View struct {
	ID             string    `json:"id"`
	Step           Step      `json:"step"`
	OrganizationID string    `json:"organization_id,omitempty"`
	Form           FormState `json:"form"`
	HasPhoto       bool      `json:"has_photo"`
	Acknowledged   []int     `json:"acknowledged"`
	SubmissionID   string    `json:"submission_id,omitempty"`
	Crop           *CropView `json:"crop,omitempty"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// CropView describes a crop session in progress.
type CropView struct {
	Box          crop.Box `json:"box"`
	SourceWidth  int      `json:"source_width"`
	SourceHeight int      `json:"source_height"`
	Ref          string   `json:"ref"`
}

// View snapshots s.
func (s *Session) View() View {
	v := View{
		ID:             s.ID,
		Step:           s.Step,
		OrganizationID: s.OrganizationID,
		Form:           s.Form,
		HasPhoto:       !s.Form.Photo.Empty(),
		Acknowledged:   append([]int{}, s.Acknowledged...),
		SubmissionID:   s.SubmissionID,
		UpdatedAt:      s.UpdatedAt,
	}
	if s.crop != nil {
		w, h := s.crop.SourceSize()
		v.Crop = &CropView{Box: s.crop.Box(), SourceWidth: w, SourceHeight: h, Ref: string(s.cropRef)}
	}
	return v
}
