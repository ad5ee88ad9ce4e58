package dto

import (
	"github.com/google/uuid"

	"volunteer-match/internal/domain/matching"
	"volunteer-match/internal/usecase"
)

// SkillSearchRequest searches volunteers by skill. Omitted fields take the
// strict defaults: verified skills only, and every skill must match.
type SkillSearchRequest struct {
	SkillIDs       []uuid.UUID `json:"skill_ids" validate:"required,min=1,max=50"`
	VerifiedOnly   *bool       `json:"verified_only"`
	MinProficiency string      `json:"min_proficiency"`
	MatchType      string      `json:"match_type"`
	Limit          int         `json:"limit" validate:"gte=0"`
}

func (r SkillSearchRequest) Query() (usecase.SkillSearchQuery, error) {
	minLevel, err := parseLevel("min_proficiency", r.MinProficiency)
	if err != nil {
		return usecase.SkillSearchQuery{}, err
	}
	mt, err := matching.ParseMatchType(r.MatchType)
	if err != nil {
		return usecase.SkillSearchQuery{}, err
	}
	verifiedOnly := true
	if r.VerifiedOnly != nil {
		verifiedOnly = *r.VerifiedOnly
	}
	return usecase.SkillSearchQuery{
		SkillIDs:       r.SkillIDs,
		VerifiedOnly:   verifiedOnly,
		MinProficiency: minLevel,
		MatchType:      mt,
		Limit:          r.Limit,
	}, nil
}
