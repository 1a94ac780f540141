// Package messenger hands a phone number off to an external messaging
// application. A Target describes the app by URL scheme; the Launcher
// checks that some installed application handles that scheme before
// opening the compose address.
package messenger

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Target describes a messaging application reachable by URL scheme.
type Target struct {
	Name        string // registry name, e.g. "whatsapp"
	DisplayName string // shown to the user, e.g. "WhatsApp"
	Scheme      string // URL scheme the handler must claim
	Address     string // compose address template; {number} and {digits} are expanded
	Handler     string // optional desktop handler id the scheme must resolve to
	Opener      string // executable that opens the address
}

// WhatsAppPreset opens a WhatsApp chat with the number.
func WhatsAppPreset() Target {
	return Target{
		Name:        "whatsapp",
		DisplayName: "WhatsApp",
		Scheme:      "whatsapp",
		Address:     "whatsapp://send?phone={digits}",
		Opener:      "xdg-open",
	}
}

// SMSPreset opens the default SMS composer.
func SMSPreset() Target {
	return Target{
		Name:        "sms",
		DisplayName: "SMS app",
		Scheme:      "sms",
		Address:     "sms:{number}",
		Opener:      "xdg-open",
	}
}

// SMSToPreset opens a "send to" address, the form used by Android's
// compose-message action.
func SMSToPreset() Target {
	return Target{
		Name:        "smsto",
		DisplayName: "Messaging app",
		Scheme:      "smsto",
		Address:     "smsto:{number}",
		Opener:      "xdg-open",
	}
}

// BuildAddress expands the target's address template for phone.
// {number} is the phone number with surrounding space trimmed; {digits}
// keeps only its decimal digits.
func (t Target) BuildAddress(phone string) (string, error) {
	number := strings.TrimSpace(phone)
	digits := onlyDigits(number)
	if number == "" || (strings.Contains(t.Address, "{digits}") && digits == "") {
		return "", fmt.Errorf("%w: %q", ErrEmptyAddress, phone)
	}
	r := strings.NewReplacer("{number}", number, "{digits}", digits)
	return r.Replace(t.Address), nil
}

func onlyDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ErrEmptyAddress indicates a contact has no usable phone number.
var ErrEmptyAddress = errors.New("messenger: empty phone number")

// NotResolvableError indicates no installed application can take the
// handoff. Handler is set when the scheme resolved to an application other
// than the one the target pins.
type NotResolvableError struct {
	Target  Target
	Handler string
	Err     error
}

func (e *NotResolvableError) Error() string {
	switch {
	case e.Err != nil:
		return fmt.Sprintf("messenger: %s: cannot resolve %s: handler: %s", e.Target.Name, e.Target.Scheme, e.Err)
	case e.Handler != "":
		return fmt.Sprintf("messenger: %s: %s: is handled by %s, want %s", e.Target.Name, e.Target.Scheme, e.Handler, e.Target.Handler)
	default:
		return fmt.Sprintf("messenger: %s: no application handles %s:", e.Target.Name, e.Target.Scheme)
	}
}

func (e *NotResolvableError) Unwrap() error {
	return e.Err
}

// Notice is the short user-facing text for this failure.
func (e *NotResolvableError) Notice() string {
	return e.Target.DisplayName + " is not installed."
}

// LaunchError wraps a failure running the opener.
type LaunchError struct {
	Target string
	Err    error
}

func (e *LaunchError) Error() string {
	return fmt.Sprintf("messenger: %s: %s", e.Target, e.Err)
}

func (e *LaunchError) Unwrap() error {
	return e.Err
}

// TimeoutError indicates the opener did not exit within its time limit.
type TimeoutError struct {
	Target   string
	Duration time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("messenger: %s: timed out after %s", e.Target, e.Duration)
}
