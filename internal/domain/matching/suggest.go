package matching

import (
	"sort"
	"strings"

	"github.com/google/uuid"

	"volunteer-match/internal/domain/skill"
)

// SkillUsage is a candidate skill and how many volunteers or missions
// reference it.
type SkillUsage struct {
	Skill      skill.Skill `json:"skill"`
	References int         `json:"references"`
}

// RankSuggestions orders candidates by usage, most referenced first, then
// by name. Inactive skills and anything in exclude are dropped.
func RankSuggestions(candidates []SkillUsage, exclude map[uuid.UUID]struct{}, limit int) []SkillUsage {
	out := make([]SkillUsage, 0, len(candidates))
	seen := make(map[uuid.UUID]struct{}, len(candidates))
	for _, c := range candidates {
		if !c.Skill.IsActive {
			continue
		}
		if _, skip := exclude[c.Skill.ID]; skip {
			continue
		}
		if _, dup := seen[c.Skill.ID]; dup {
			continue
		}
		seen[c.Skill.ID] = struct{}{}
		out = append(out, c)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].References != out[j].References {
			return out[i].References > out[j].References
		}
		if a, b := strings.ToLower(out[i].Skill.Name), strings.ToLower(out[j].Skill.Name); a != b {
			return a < b
		}
		return out[i].Skill.ID.String() < out[j].Skill.ID.String()
	})
	return truncate(out, limit)
}
