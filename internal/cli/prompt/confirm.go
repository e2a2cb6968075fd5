// Package prompt wraps promptui for the interactive parts of the CLIs.
package prompt

import (
	"errors"
	"strings"

	"github.com/manifoldco/promptui"
)

// ErrAborted reports that the user pressed Ctrl+C or closed stdin.
var ErrAborted = errors.New("aborted")

// IsAborted reports whether err ends a prompt without an answer.
func IsAborted(err error) bool {
	return errors.Is(err, ErrAborted) ||
		errors.Is(err, promptui.ErrInterrupt) ||
		errors.Is(err, promptui.ErrEOF)
}

func wrapError(err error) error {
	if err != nil && IsAborted(err) {
		return ErrAborted
	}
	return err
}

// Confirm asks a yes/no question; Enter alone picks defaultYes.
func Confirm(label string, defaultYes bool) (bool, error) {
	hint := " [y/N]"
	if defaultYes {
		hint = " [Y/n]"
	}
	p := promptui.Prompt{Label: label + hint, IsConfirm: true}
	answer, err := p.Run()
	return confirmed(answer, err, defaultYes)
}

// confirmed turns the result of a promptui confirm prompt into a decision.
// promptui answers anything but "y" with ErrAbort, an empty line included.
func confirmed(answer string, err error, defaultYes bool) (bool, error) {
	switch {
	case errors.Is(err, promptui.ErrAbort):
		if strings.TrimSpace(answer) == "" {
			return defaultYes, nil
		}
		return false, nil
	case err != nil:
		return false, wrapError(err)
	}
	return isYes(answer), nil
}

// ConfirmWithForce skips the question when force is set. The default
// answer is no.
func ConfirmWithForce(label string, force bool) (bool, error) {
	if force {
		return true, nil
	}
	return Confirm(label, false)
}

func isYes(answer string) bool {
	a := strings.ToLower(strings.TrimSpace(answer))
	return a == "y" || a == "yes"
}
