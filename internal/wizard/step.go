package wizard

import (
	"fmt"
	"strings"
)

// Step is a wizard screen.
type Step int

const (
	StepHome Step = iota
	StepDirectory
	StepForm
	StepPreview
	StepReading
	StepSuccess
)

var stepNames = []string{"home", "directory", "form", "preview", "reading", "success"}

func (s Step) String() string {
	if s < 0 || int(s) >= len(stepNames) {
		return fmt.Sprintf("step(%d)", int(s))
	}
	return stepNames[s]
}

// ParseStep parses a step name.
func ParseStep(name string) (Step, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, n := range stepNames {
		if n == name {
			return Step(i), nil
		}
	}
	return 0, fmt.Errorf("unknown step %q", name)
}

func (s Step) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Step) UnmarshalText(b []byte) error {
	v, err := ParseStep(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}
