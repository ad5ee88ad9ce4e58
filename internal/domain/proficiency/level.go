// Package proficiency is the single ordering of skill proficiency levels.
// Every comparison of a volunteer's level against a required level goes
// through MeetsOrExceeds.
package proficiency

import (
	"strings"

	"volunteer-match/internal/domain/domainerr"
)

type Level string

const (
	Beginner     Level = "beginner"
	Intermediate Level = "intermediate"
	Advanced     Level = "advanced"
	Expert       Level = "expert"
)

var ordered = [...]Level{Beginner, Intermediate, Advanced, Expert}

var displayNames = map[Level]string{
	Beginner:     "Beginner",
	Intermediate: "Intermediate",
	Advanced:     "Advanced",
	Expert:       "Expert",
}

// Parse validates a raw value. Input is matched case-insensitively.
func Parse(raw string) (Level, error) {
	l := Level(strings.ToLower(strings.TrimSpace(raw)))
	if !l.Valid() {
		return "", domainerr.InvalidEnum("proficiency_level", raw)
	}
	return l, nil
}

func All() []Level {
	out := make([]Level, len(ordered))
	copy(out, ordered[:])
	return out
}

func (l Level) Valid() bool {
	return l.Ordinal() > 0
}

// Ordinal is 1 for beginner through 4 for expert, 0 for unknown values.
func (l Level) Ordinal() int {
	for i, v := range ordered {
		if v == l {
			return i + 1
		}
	}
	return 0
}

func (l Level) String() string {
	return string(l)
}

func (l Level) Display() string {
	if d, ok := displayNames[l]; ok {
		return d
	}
	return string(l)
}

func (l Level) MarshalText() ([]byte, error) {
	return []byte(l), nil
}

func (l *Level) UnmarshalText(b []byte) error {
	v, err := Parse(string(b))
	if err != nil {
		return err
	}
	*l = v
	return nil
}

// MeetsOrExceeds reports whether candidate is at least required.
// Unknown levels never meet anything and are never met.
func MeetsOrExceeds(candidate, required Level) bool {
	c, r := candidate.Ordinal(), required.Ordinal()
	if c == 0 || r == 0 {
		return false
	}
	return c >= r
}

// LevelsAtOrAbove returns floor and every level above it, lowest first.
func LevelsAtOrAbove(floor Level) []Level {
	if !floor.Valid() {
		return nil
	}
	out := make([]Level, 0, len(ordered))
	for _, l := range ordered {
		if MeetsOrExceeds(l, floor) {
			out = append(out, l)
		}
	}
	return out
}
