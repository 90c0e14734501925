package submission

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"

	"github.com/youruser/pledgeapp/internal/logging"
)

// DefaultRelayTimeout bounds each remote relay call.
const DefaultRelayTimeout = 12 * time.Second

// Service records submissions. Relays run detached from the caller: their
// results are logged and never reach the wizard.
type Service struct {
	store   Store
	relays  []Relay
	timeout time.Duration
	logger  hclog.Logger
	now     func() time.Time

	wg sync.WaitGroup
}

// NewService builds a service over a local store and any number of relays.
func NewService(store Store, relays []Relay, timeout time.Duration, logger hclog.Logger) *Service {
	if timeout <= 0 {
		timeout = DefaultRelayTimeout
	}
	return &Service{
		store:   store,
		relays:  relays,
		timeout: timeout,
		logger:  logging.OrDiscard(logger).Named("submission"),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Submit stores the answer locally and dispatches it to every relay. The
// returned error reports only the local store; relay failures are logged.
func (s *Service) Submit(ctx context.Context, orgID, orgName string, a Answer) (ConfirmationID, error) {
	if strings.TrimSpace(orgName) == "" {
		orgName = "Unknown Organization"
	}
	photo := "None"
	if a.HasPhoto {
		photo = "Uploaded"
	}
	rec := Record{
		ID:               uuid.NewString(),
		OrganizationID:   orgID,
		OrganizationName: orgName,
		Name:             strings.TrimSpace(a.Name),
		Grade:            strings.TrimSpace(a.Grade),
		Section:          strings.TrimSpace(a.Section),
		Phone:            strings.TrimSpace(a.Phone),
		Email:            strings.TrimSpace(a.Email),
		Message:          a.Message,
		PhotoStatus:      photo,
		Timestamp:        s.now(),
		PosterGenerated:  true,
		OptIn:            a.OptIn,
	}

	var storeErr error
	if s.store != nil {
		if err := s.store.Save(ctx, rec); err != nil {
			storeErr = fmt.Errorf("save submission: %w", err)
			s.logger.Error("local save failed", "id", rec.ID, "error", err)
		}
	}
	s.dispatch(rec)
	return ConfirmationID(rec.ID), storeErr
}

func (s *Service) dispatch(rec Record) {
	for _, r := range s.relays {
		s.wg.Add(1)
		go func(r Relay) {
			defer s.wg.Done()
			ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
			defer cancel()
			if err := r.Send(ctx, rec); err != nil {
				s.logger.Warn("relay failed", "relay", r.Name(), "id", rec.ID, "error", err)
				return
			}
			s.logger.Debug("relay delivered", "relay", r.Name(), "id", rec.ID)
		}(r)
	}
}

// LogDownload flags a submission's poster as downloaded.
func (s *Service) LogDownload(ctx context.Context, id ConfirmationID) error {
	if s.store == nil || id == "" {
		return nil
	}
	return s.store.MarkDownloaded(ctx, string(id))
}

// Records lists stored submissions.
func (s *Service) Records(ctx context.Context) ([]Record, error) {
	if s.store == nil {
		return nil, nil
	}
	return s.store.List(ctx)
}

// Wait blocks until in-flight relays finish.
func (s *Service) Wait() {
	s.wg.Wait()
}
