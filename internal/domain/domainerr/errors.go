// Package domainerr defines the error kinds surfaced by the skills engine.
// Every error returned to callers either is one of the kind sentinels or
// unwraps to one, so callers branch with errors.Is.
package domainerr

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound                  = errors.New("not found")
	ErrDuplicate                 = errors.New("duplicate")
	ErrCircularReference         = errors.New("circular reference")
	ErrInvalidEnumValue          = errors.New("invalid enum value")
	ErrInUse                     = errors.New("in use")
	ErrAlreadyVerified           = errors.New("already verified")
	ErrVerificationNotApplicable = errors.New("verification not applicable")
	ErrIneligible                = errors.New("ineligible")
	ErrUnknownSkill              = errors.New("unknown skill")
	ErrInvalidInput              = errors.New("invalid input")
	ErrForbidden                 = errors.New("forbidden")
)

type Error struct {
	Kind    error
	Entity  string
	Field   string
	Value   string
	Message string
	Reasons []string
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	msg := e.Message
	if msg == "" && e.Kind != nil {
		msg = e.Kind.Error()
	}
	if len(e.Reasons) > 0 {
		return msg + ": " + strings.Join(e.Reasons, "; ")
	}
	return msg
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Kind
}

// Code is the snake_case kind name used on the wire.
func (e *Error) Code() string {
	if e == nil || e.Kind == nil {
		return "error"
	}
	return strings.ReplaceAll(e.Kind.Error(), " ", "_")
}

func NotFound(entity string, id any) *Error {
	return &Error{
		Kind:    ErrNotFound,
		Entity:  entity,
		Field:   "id",
		Value:   fmt.Sprint(id),
		Message: fmt.Sprintf("%s %v not found", entity, id),
	}
}

func Duplicate(entity, field, value string) *Error {
	return &Error{
		Kind:    ErrDuplicate,
		Entity:  entity,
		Field:   field,
		Value:   value,
		Message: fmt.Sprintf("%s with %s %q already exists", entity, field, value),
	}
}

func CircularReference(entity string, id, parentID any) *Error {
	return &Error{
		Kind:    ErrCircularReference,
		Entity:  entity,
		Field:   "parent_id",
		Value:   fmt.Sprint(parentID),
		Message: fmt.Sprintf("setting parent %v on %s %v would create a cycle", parentID, entity, id),
	}
}

func InvalidEnum(field, value string) *Error {
	return &Error{
		Kind:    ErrInvalidEnumValue,
		Field:   field,
		Value:   value,
		Message: fmt.Sprintf("invalid %s: %q", field, value),
	}
}

func InUse(entity string, id any, detail string) *Error {
	return &Error{
		Kind:    ErrInUse,
		Entity:  entity,
		Field:   "id",
		Value:   fmt.Sprint(id),
		Message: fmt.Sprintf("%s %v is in use: %s", entity, id, detail),
	}
}

func AlreadyVerified(entity string, id any) *Error {
	return &Error{
		Kind:    ErrAlreadyVerified,
		Entity:  entity,
		Field:   "verification_status",
		Value:   fmt.Sprint(id),
		Message: fmt.Sprintf("%s %v is already verified", entity, id),
	}
}

func NotApplicable(entity string, id any, detail string) *Error {
	return &Error{
		Kind:    ErrVerificationNotApplicable,
		Entity:  entity,
		Field:   "verification_status",
		Value:   fmt.Sprint(id),
		Message: detail,
	}
}

func Ineligible(reasons []string) *Error {
	cp := make([]string, len(reasons))
	copy(cp, reasons)
	return &Error{
		Kind:    ErrIneligible,
		Entity:  "mission",
		Message: "volunteer is not eligible for this mission",
		Reasons: cp,
	}
}

func UnknownSkill(id any, detail string) *Error {
	return &Error{
		Kind:    ErrUnknownSkill,
		Entity:  "skill",
		Field:   "skill_id",
		Value:   fmt.Sprint(id),
		Message: fmt.Sprintf("skill %v %s", id, detail),
	}
}

func Invalid(field, message string) *Error {
	return &Error{
		Kind:    ErrInvalidInput,
		Field:   field,
		Message: message,
	}
}

func Forbidden(entity string, id any) *Error {
	return &Error{
		Kind:    ErrForbidden,
		Entity:  entity,
		Field:   "id",
		Value:   fmt.Sprint(id),
		Message: fmt.Sprintf("%s %v does not belong to the caller", entity, id),
	}
}

// As extracts the structured error, if any.
func As(err error) (*Error, bool) {
	var de *Error
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}
