package submission

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/youruser/pledgeapp/internal/util"
)

// Sanitize neutralizes spreadsheet formula triggers.
func Sanitize(s string) string {
	if s == "" {
		return s
	}
	switch s[0] {
	case '=', '+', '-', '@':
		return "'" + s
	}
	return s
}

// HTTPRelay posts records as JSON to a remote endpoint.
type HTTPRelay struct {
	name        string
	url         string
	contentType string
	sanitize    bool
	client      *http.Client
}

// NewSheetsRelay targets a spreadsheet web-app endpoint. The body is sent
// as text/plain so the script receives the raw payload, with every text
// cell sanitized.
func NewSheetsRelay(url string, client *http.Client) *HTTPRelay {
	return &HTTPRelay{name: "sheets", url: url, contentType: "text/plain;charset=utf-8", sanitize: true, client: clientOrDefault(client)}
}

// NewBackendRelay targets a JSON backend API.
func NewBackendRelay(url string, client *http.Client) *HTTPRelay {
	return &HTTPRelay{name: "backend", url: url, contentType: "application/json", client: clientOrDefault(client)}
}

func clientOrDefault(c *http.Client) *http.Client {
	if c != nil {
		return c
	}
	return &http.Client{}
}

// ConfiguredRelays builds the relays whose URLs are set.
func ConfiguredRelays(sheetsURL, backendURL string, client *http.Client) []Relay {
	var out []Relay
	if strings.HasPrefix(sheetsURL, "http") {
		out = append(out, NewSheetsRelay(sheetsURL, client))
	}
	if strings.HasPrefix(backendURL, "http") {
		out = append(out, NewBackendRelay(backendURL, client))
	}
	return out
}

func (h *HTTPRelay) Name() string { return h.name }

func (h *HTTPRelay) Send(ctx context.Context, r Record) error {
	if h.sanitize {
		r.OrganizationName = Sanitize(r.OrganizationName)
		r.Name = Sanitize(r.Name)
		r.Grade = Sanitize(r.Grade)
		r.Section = Sanitize(r.Section)
		r.Phone = Sanitize(r.Phone)
		r.Email = Sanitize(r.Email)
		r.Message = Sanitize(r.Message)
	}
	body, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}
	status, err := util.Post(ctx, h.client, h.url, h.contentType, body)
	if err != nil {
		return err
	}
	if status < 200 || status > 399 {
		return fmt.Errorf("%s responded %d", h.name, status)
	}
	return nil
}
