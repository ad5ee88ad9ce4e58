package proficiency

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"volunteer-match/internal/domain/domainerr"
)

func TestMeetsOrExceeds_TotalOrder(t *testing.T) {
	levels := All()

	for _, a := range levels {
		assert.True(t, MeetsOrExceeds(a, a), "reflexive %s", a)

		for _, b := range levels {
			if MeetsOrExceeds(a, b) && MeetsOrExceeds(b, a) {
				assert.Equal(t, a, b, "antisymmetric")
			}
			assert.True(t, MeetsOrExceeds(a, b) || MeetsOrExceeds(b, a), "total %s/%s", a, b)

			for _, c := range levels {
				if MeetsOrExceeds(a, b) && MeetsOrExceeds(b, c) {
					assert.True(t, MeetsOrExceeds(a, c), "transitive %s>=%s>=%s", a, b, c)
				}
			}
		}
	}
}

func TestMeetsOrExceeds_Ordering(t *testing.T) {
	assert.True(t, MeetsOrExceeds(Expert, Beginner))
	assert.True(t, MeetsOrExceeds(Advanced, Intermediate))
	assert.False(t, MeetsOrExceeds(Beginner, Intermediate))
	assert.False(t, MeetsOrExceeds(Level("guru"), Beginner))
	assert.False(t, MeetsOrExceeds(Expert, Level("")))
}

func TestLevelsAtOrAbove(t *testing.T) {
	assert.Equal(t, []Level{Advanced, Expert}, LevelsAtOrAbove(Advanced))
	assert.Equal(t, All(), LevelsAtOrAbove(Beginner))
	assert.Equal(t, []Level{Expert}, LevelsAtOrAbove(Expert))
	assert.Nil(t, LevelsAtOrAbove(Level("unknown")))
}

func TestParse(t *testing.T) {
	l, err := Parse(" Advanced ")
	require.NoError(t, err)
	assert.Equal(t, Advanced, l)

	_, err = Parse("master")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domainerr.ErrInvalidEnumValue))
}

func TestUnmarshalText_RejectsUnknown(t *testing.T) {
	var l Level
	require.NoError(t, l.UnmarshalText([]byte("expert")))
	assert.Equal(t, Expert, l)
	assert.Error(t, l.UnmarshalText([]byte("ninja")))
}
