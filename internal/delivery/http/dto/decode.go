package dto

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"volunteer-match/internal/domain/domainerr"
	"volunteer-match/internal/domain/proficiency"
	"volunteer-match/internal/pkg/validation"
)

const dateLayout = "2006-01-02"

// Decode parses a JSON body into out, rejecting unknown fields and trailing
// data, then validates it.
func Decode(body []byte, out any) error {
	if len(bytes.TrimSpace(body)) == 0 {
		return domainerr.Invalid("body", "request body is required")
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.DisallowUnknownFields()
	if err := dec.Decode(out); err != nil {
		return decodeError(err)
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return domainerr.Invalid("body", "request body must contain a single JSON object")
	}
	return validation.Struct(out)
}

func decodeError(err error) error {
	var typeErr *json.UnmarshalTypeError
	var syntaxErr *json.SyntaxError
	switch {
	case errors.As(err, &typeErr):
		return domainerr.Invalid(typeErr.Field, fmt.Sprintf("%s must be %s", typeErr.Field, typeErr.Type))
	case errors.As(err, &syntaxErr):
		return domainerr.Invalid("body", "malformed JSON")
	default:
		// DisallowUnknownFields reports `json: unknown field "x"`.
		return domainerr.Invalid("body", err.Error())
	}
}

func parseDate(field string, raw *string) (*time.Time, error) {
	if raw == nil || *raw == "" {
		return nil, nil
	}
	t, err := time.Parse(dateLayout, *raw)
	if err != nil {
		return nil, domainerr.Invalid(field, field+" must be a date (YYYY-MM-DD)")
	}
	return &t, nil
}

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(dateLayout)
	return &s
}

// parseLevel reads an optional proficiency level. Empty input yields the
// zero Level so the caller's default applies.
func parseLevel(field, raw string) (proficiency.Level, error) {
	if raw == "" {
		return "", nil
	}
	l, err := proficiency.Parse(raw)
	if err != nil {
		return "", domainerr.InvalidEnum(field, raw)
	}
	return l, nil
}

func levelPtr(field string, raw *string) (*proficiency.Level, error) {
	if raw == nil {
		return nil, nil
	}
	l, err := proficiency.Parse(*raw)
	if err != nil {
		return nil, domainerr.InvalidEnum(field, *raw)
	}
	return &l, nil
}
