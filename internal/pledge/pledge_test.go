package pledge

import (
	"strings"
	"testing"
)

func allPoints() []int {
	out := make([]int, len(Points))
	for i := range out {
		out[i] = i
	}
	return out
}

func TestAllAcknowledged(t *testing.T) {
	if AllAcknowledged(nil) {
		t.Error("nothing acknowledged reported complete")
	}
	if !AllAcknowledged(allPoints()) {
		t.Error("every point acknowledged reported incomplete")
	}
	partial := append(allPoints()[1:], 1, 2, 99, -1)
	if AllAcknowledged(partial) {
		t.Error("duplicates and out-of-range indexes counted toward completion")
	}
}

func TestNormalize(t *testing.T) {
	got := Normalize([]int{3, 1, 3, -1, 42, 0})
	want := []int{3, 1, 0}
	if len(got) != len(want) {
		t.Fatalf("Normalize = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Normalize = %v, want %v", got, want)
		}
	}
}

func TestExportText(t *testing.T) {
	out := ExportText(Fixed, Points[:2])
	if !strings.HasPrefix(out, "# "+Fixed.Text) {
		t.Errorf("missing title: %q", out)
	}
	if !strings.Contains(out, "1. "+Points[0]) || !strings.Contains(out, "2. "+Points[1]) {
		t.Errorf("points not numbered: %q", out)
	}
}

func TestShareText(t *testing.T) {
	if got := ShareText(" I pledged ", " https://x.test/ "); got != "I pledged https://x.test/" {
		t.Errorf("ShareText = %q", got)
	}
	if got := ShareText("", "https://x.test/"); got != "https://x.test/" {
		t.Errorf("ShareText without text = %q", got)
	}
	if got := ShareText("hi", ""); got != "hi" {
		t.Errorf("ShareText without link = %q", got)
	}
}
