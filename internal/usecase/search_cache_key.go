package usecase

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"
	"strings"

	"github.com/google/uuid"
)

const (
	searchKeyPrefix  = "skills:search:"
	searchLockPrefix = "skills:lock:"

	// SearchCachePattern matches every cached search result.
	SearchCachePattern = searchKeyPrefix + "*"
)

type searchCacheKeyInput struct {
	Kind               string   `json:"kind"`
	Subject            string   `json:"subject,omitempty"`
	SkillIDs           []string `json:"skill_ids,omitempty"`
	VerifiedOnly       bool     `json:"verified_only"`
	MinProficiency     string   `json:"min_proficiency,omitempty"`
	MatchType          string   `json:"match_type,omitempty"`
	RequireAllRequired bool     `json:"require_all_required,omitempty"`
	Limit              int      `json:"limit"`
}

func normalizeSearchValue(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ToLower(s)
	s = strings.Join(strings.Fields(s), " ")
	return s
}

// sortedIDs returns ids as strings in ascending order so the same set
// always hashes to the same key.
func sortedIDs(ids []uuid.UUID) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, id.String())
	}
	sort.Strings(out)
	return out
}

func searchCacheKey(in searchCacheKeyInput) string {
	in.Kind = normalizeSearchValue(in.Kind)
	in.MinProficiency = normalizeSearchValue(in.MinProficiency)
	in.MatchType = normalizeSearchValue(in.MatchType)

	b, _ := json.Marshal(in)
	sum := sha256.Sum256(b)
	return searchKeyPrefix + in.Kind + ":" + hex.EncodeToString(sum[:])
}

func searchLockKey(searchKey string) string {
	searchKey = strings.TrimSpace(searchKey)
	if strings.HasPrefix(searchKey, searchKeyPrefix) {
		return searchLockPrefix + strings.TrimPrefix(searchKey, searchKeyPrefix)
	}
	return searchLockPrefix + searchKey
}
