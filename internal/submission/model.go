// Package submission records completed pledges: always in the local store,
// and best-effort in remote spreadsheet/backend relays.
package submission

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned for unknown submission ids.
var ErrNotFound = errors.New("submission not found")

// ConfirmationID identifies a stored submission.
type ConfirmationID string

// Answer is the part of the wizard answer record that gets persisted.
type Answer struct {
	Name     string
	Grade    string
	Section  string
	Phone    string
	Email    string
	Message  string
	OptIn    bool
	HasPhoto bool
}

// Record is one stored submission.
type Record struct {
	ID               string    `json:"id"`
	OrganizationID   string    `json:"schoolId"`
	OrganizationName string    `json:"schoolName"`
	Name             string    `json:"studentName"`
	Grade            string    `json:"grade"`
	Section          string    `json:"section"`
	Phone            string    `json:"phone"`
	Email            string    `json:"email"`
	Message          string    `json:"message,omitempty"`
	PhotoStatus      string    `json:"photoStatus"`
	Timestamp        time.Time `json:"timestamp"`
	PosterGenerated  bool      `json:"posterGenerated"`
	PosterDownloaded bool      `json:"posterDownloaded"`
	OptIn            bool      `json:"optIn"`
}

// Store persists records locally.
type Store interface {
	Save(ctx context.Context, r Record) error
	MarkDownloaded(ctx context.Context, id string) error
	List(ctx context.Context) ([]Record, error)
}

// Relay forwards a record to a remote sink.
type Relay interface {
	Name() string
	Send(ctx context.Context, r Record) error
}
