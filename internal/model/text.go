package model

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// NotAvailable is the sentinel string the backend stores for fields it could not fill.
const NotAvailable = "N/A"

// Text is an optional string field of a feed item.
//
// A field is missing when the key is absent, the value is JSON null, the empty
// string, or the sentinel "N/A". All four decode to the same zero Text, so
// callers only ever check Present.
type Text struct {
	value string
	valid bool
}

// NewText returns a Text holding s, or a missing Text if s is "" or "N/A".
func NewText(s string) Text {
	if s == "" || s == NotAvailable {
		return Text{}
	}
	return Text{value: s, valid: true}
}

// TextFromPtr converts a nullable database value.
func TextFromPtr(s *string) Text {
	if s == nil {
		return Text{}
	}
	return NewText(*s)
}

// Present reports whether the field carries a usable value.
func (t Text) Present() bool {
	return t.valid
}

// Value returns the value, or "" when missing.
func (t Text) Value() string {
	return t.value
}

// Or returns the value, or fallback when missing.
func (t Text) Or(fallback string) string {
	if !t.valid {
		return fallback
	}
	return t.value
}

// String implements fmt.Stringer.
func (t Text) String() string {
	return t.value
}

// IsZero lets encoding/json omitzero drop missing fields.
func (t Text) IsZero() bool {
	return !t.valid
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *Text) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*t = Text{}
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("optional text: %w", err)
	}

	*t = NewText(s)
	return nil
}

// MarshalJSON implements json.Marshaler. Missing values encode as null.
func (t Text) MarshalJSON() ([]byte, error) {
	if !t.valid {
		return []byte("null"), nil
	}
	return json.Marshal(t.value)
}
