package wizard

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/youruser/pledgeapp/internal/crop"
)

// Form field names accepted by UpdateField.
const (
	FieldFullName    = "full_name"
	FieldEmail       = "email"
	FieldPhone       = "phone"
	FieldCountryCode = "country_code"
	FieldClass       = "class"
	FieldSection     = "section"
	FieldOptIn       = "opt_in"
)

// ErrInvalidForm is matched by FieldErrors.
var ErrInvalidForm = errors.New("form is incomplete")

// ErrUnknownField is returned by UpdateField for names it does not own.
var ErrUnknownField = errors.New("unknown form field")

var (
	emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phoneRe = regexp.MustCompile(`^[0-9]{10,12}$`)
)

// FormState is the answer record carried across wizard steps. FullName is
// always defined; it may be empty.
type FormState struct {
	FullName    string     `json:"full_name"`
	Email       string     `json:"email"`
	Phone       string     `json:"phone"`
	CountryCode string     `json:"country_code"`
	Class       string     `json:"class"`
	Section     string     `json:"section"`
	OptIn       bool       `json:"opt_in"`
	Photo       crop.Photo `json:"-"`
}

// DefaultForm is the blank form.
func DefaultForm() FormState {
	return FormState{CountryCode: "+91"}
}

// UpdateField sets one text field.
func (f *FormState) UpdateField(name, value string) error {
	switch name {
	case FieldFullName:
		f.FullName = value
	case FieldEmail:
		f.Email = value
	case FieldPhone:
		f.Phone = value
	case FieldCountryCode:
		f.CountryCode = value
	case FieldClass:
		f.Class = value
	case FieldSection:
		f.Section = value
	case FieldOptIn:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		f.OptIn = b
	default:
		return fmt.Errorf("%w: %q", ErrUnknownField, name)
	}
	return nil
}

// Reset restores the blank form, dropping the photo.
func (f *FormState) Reset() {
	*f = DefaultForm()
}

// FullPhone joins country code and number.
func (f FormState) FullPhone() string {
	return strings.TrimSpace(f.CountryCode + " " + strings.TrimSpace(f.Phone))
}

// FieldErrors maps field names to inline messages.
type FieldErrors map[string]string

func (e FieldErrors) Error() string {
	keys := make([]string, 0, len(e))
	for k := range e {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e[k])
	}
	return "invalid form: " + strings.Join(parts, "; ")
}

func (e FieldErrors) Is(target error) bool {
	return target == ErrInvalidForm
}

// Validate checks the contact fields. The photo is optional.
func (f FormState) Validate() error {
	errs := FieldErrors{}
	if utf8.RuneCountInString(strings.TrimSpace(f.FullName)) <= 2 {
		errs[FieldFullName] = "Please enter your full name"
	}
	if !emailRe.MatchString(strings.TrimSpace(f.Email)) {
		errs[FieldEmail] = "Please enter a valid email address"
	}
	if !phoneRe.MatchString(strings.TrimSpace(f.Phone)) {
		errs[FieldPhone] = "Please enter a valid phone number"
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}
