package ui

import (
	"errors"
	"strconv"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/mobile"
	"fyne.io/fyne/v2/widget"
)

// NumericalEntry is an Entry that only accepts digits from the keyboard.
type NumericalEntry struct {
	widget.Entry
}

// NewNumericalEntry creates a new NumericalEntry.
func NewNumericalEntry() *NumericalEntry {
	entry := &NumericalEntry{}
	entry.ExtendBaseWidget(entry)
	return entry
}

// TypedRune drops anything but 0-9. Pasted text bypasses this, so pair the
// entry with a Validator.
func (e *NumericalEntry) TypedRune(r rune) {
	if r >= '0' && r <= '9' {
		e.Entry.TypedRune(r)
	}
}

// Keyboard requests the numeric keypad on mobile.
func (e *NumericalEntry) Keyboard() mobile.KeyboardType {
	return mobile.NumberKeyboard
}

// IntValue parses the current text. ok is false for empty or non-numeric text.
func (e *NumericalEntry) IntValue() (v int, ok bool) {
	v, err := strconv.Atoi(e.Text)
	return v, err == nil
}

// rangeMessages are the localized texts of a rangeValidator.
type rangeMessages struct {
	Required   string
	NotNumber  string
	OutOfRange string
}

// rangeValidator accepts integers in [lo, hi].
func rangeValidator(lo, hi int, msgs rangeMessages) fyne.StringValidator {
	return func(s string) error {
		if s == "" {
			return errors.New(msgs.Required)
		}
		v, err := strconv.Atoi(s)
		if err != nil {
			return errors.New(msgs.NotNumber)
		}
		if v < lo || v > hi {
			return errors.New(msgs.OutOfRange)
		}
		return nil
	}
}
