package skill

import (
	"strings"

	"volunteer-match/internal/domain/domainerr"
)

type VerificationRequirement string

const (
	VerificationNone        VerificationRequirement = "none"
	VerificationDocument    VerificationRequirement = "document"
	VerificationTest        VerificationRequirement = "test"
	VerificationEndorsement VerificationRequirement = "endorsement"
)

var verificationRequirements = []VerificationRequirement{
	VerificationNone, VerificationDocument, VerificationTest, VerificationEndorsement,
}

func ParseVerificationRequirement(raw string) (VerificationRequirement, error) {
	return parseEnum("verification_requirement", raw, verificationRequirements)
}

func (v VerificationRequirement) Valid() bool { return contains(verificationRequirements, v) }

// Required reports whether volunteers must be verified for this skill.
func (v VerificationRequirement) Required() bool {
	return v.Valid() && v != VerificationNone
}

func (v *VerificationRequirement) UnmarshalText(b []byte) error {
	p, err := ParseVerificationRequirement(string(b))
	if err != nil {
		return err
	}
	*v = p
	return nil
}

type VerificationStatus string

const (
	StatusNotRequired VerificationStatus = "not_required"
	StatusPending     VerificationStatus = "pending"
	StatusVerified    VerificationStatus = "verified"
	StatusRejected    VerificationStatus = "rejected"
)

var verificationStatuses = []VerificationStatus{
	StatusNotRequired, StatusPending, StatusVerified, StatusRejected,
}

func ParseVerificationStatus(raw string) (VerificationStatus, error) {
	return parseEnum("verification_status", raw, verificationStatuses)
}

func (s VerificationStatus) Valid() bool { return contains(verificationStatuses, s) }

func (s *VerificationStatus) UnmarshalText(b []byte) error {
	p, err := ParseVerificationStatus(string(b))
	if err != nil {
		return err
	}
	*s = p
	return nil
}

type ReviewStatus string

const (
	ReviewPending       ReviewStatus = "pending"
	ReviewUnderReview   ReviewStatus = "under_review"
	ReviewApproved      ReviewStatus = "approved"
	ReviewRejected      ReviewStatus = "rejected"
	ReviewNeedsMoreInfo ReviewStatus = "needs_more_info"
)

var reviewStatuses = []ReviewStatus{
	ReviewPending, ReviewUnderReview, ReviewApproved, ReviewRejected, ReviewNeedsMoreInfo,
}

func ParseReviewStatus(raw string) (ReviewStatus, error) {
	return parseEnum("review_status", raw, reviewStatuses)
}

func ReviewStatuses() []ReviewStatus {
	out := make([]ReviewStatus, len(reviewStatuses))
	copy(out, reviewStatuses)
	return out
}

func (s ReviewStatus) Valid() bool { return contains(reviewStatuses, s) }

// Open requests still block a new request for the same volunteer skill.
func (s ReviewStatus) Open() bool {
	switch s {
	case ReviewPending, ReviewUnderReview, ReviewNeedsMoreInfo:
		return true
	default:
		return false
	}
}

func (s ReviewStatus) Terminal() bool {
	return s == ReviewApproved || s == ReviewRejected
}

func (s *ReviewStatus) UnmarshalText(b []byte) error {
	p, err := ParseReviewStatus(string(b))
	if err != nil {
		return err
	}
	*s = p
	return nil
}

type RequirementLevel string

const (
	LevelNiceToHave RequirementLevel = "nice_to_have"
	LevelPreferred  RequirementLevel = "preferred"
	LevelRequired   RequirementLevel = "required"
	LevelCritical   RequirementLevel = "critical"
)

var requirementLevels = []RequirementLevel{
	LevelNiceToHave, LevelPreferred, LevelRequired, LevelCritical,
}

func ParseRequirementLevel(raw string) (RequirementLevel, error) {
	return parseEnum("requirement_level", raw, requirementLevels)
}

func RequirementLevels() []RequirementLevel {
	out := make([]RequirementLevel, len(requirementLevels))
	copy(out, requirementLevels)
	return out
}

func (l RequirementLevel) Valid() bool { return contains(requirementLevels, l) }

// Gating levels can block eligibility; the rest only influence score.
func (l RequirementLevel) Gating() bool {
	return l == LevelRequired || l == LevelCritical
}

// Rank orders levels from nice_to_have (1) to critical (4).
func (l RequirementLevel) Rank() int {
	for i, v := range requirementLevels {
		if v == l {
			return i + 1
		}
	}
	return 0
}

func (l *RequirementLevel) UnmarshalText(b []byte) error {
	p, err := ParseRequirementLevel(string(b))
	if err != nil {
		return err
	}
	*l = p
	return nil
}

func parseEnum[T ~string](field, raw string, allowed []T) (T, error) {
	v := T(strings.ToLower(strings.TrimSpace(raw)))
	if !contains(allowed, v) {
		var zero T
		return zero, domainerr.InvalidEnum(field, raw)
	}
	return v, nil
}

func contains[T comparable](set []T, v T) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}
