package logging

import (
	"bytes"
	"encoding/json"
	"testing"
)

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	l := New("pledge", "info", true, &buf)
	l.Debug("hidden")
	l.Named("api").Info("served", "status", 200)

	var line map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line); err != nil {
		t.Fatalf("decode %q: %v", buf.String(), err)
	}
	if line["@message"] != "served" || line["@module"] != "pledge.api" {
		t.Errorf("unexpected line %v", line)
	}
}

func TestOrDiscard(t *testing.T) {
	if OrDiscard(nil) == nil {
		t.Fatal("nil logger")
	}
	l := Discard()
	if OrDiscard(l) != l {
		t.Error("non-nil logger replaced")
	}
}
