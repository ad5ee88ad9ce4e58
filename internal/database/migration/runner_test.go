package migration

import (
	"io/fs"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Embedded(t *testing.T) {
	src, err := fs.Sub(embedded, "sql")
	require.NoError(t, err)

	migs, err := Load(src)
	require.NoError(t, err)
	require.NotEmpty(t, migs)
	assert.Equal(t, int64(1), migs[0].Version)
	assert.Equal(t, "skills_engine", migs[0].Label)
	assert.Len(t, migs[0].Checksum, 64)
}

func TestLoad_OrdersAndSkipsUnrelated(t *testing.T) {
	fsys := fstest.MapFS{
		"V10__later.sql": {Data: []byte("SELECT 10;")},
		"V2__second.sql": {Data: []byte("SELECT 2;")},
		"README.md":      {Data: []byte("docs")},
		"V1__first.sql":  {Data: []byte("  SELECT 1;  \n")},
	}

	migs, err := Load(fsys)
	require.NoError(t, err)
	require.Len(t, migs, 3)
	assert.Equal(t, []int64{1, 2, 10}, []int64{migs[0].Version, migs[1].Version, migs[2].Version})
	assert.Equal(t, "SELECT 1;", migs[0].SQL)
}

func TestLoad_Rejects(t *testing.T) {
	_, err := Load(fstest.MapFS{"V1__empty.sql": {Data: []byte("   ")}})
	assert.Error(t, err)

	_, err = Load(fstest.MapFS{
		"V1__a.sql":  {Data: []byte("SELECT 1;")},
		"V01__b.sql": {Data: []byte("SELECT 1;")},
	})
	assert.Error(t, err)
}

func TestPlan(t *testing.T) {
	migs, err := Load(fstest.MapFS{
		"V1__first.sql":  {Data: []byte("SELECT 1;")},
		"V2__second.sql": {Data: []byte("SELECT 2;")},
	})
	require.NoError(t, err)

	pending, err := Plan(migs, map[int64]Record{})
	require.NoError(t, err)
	assert.Len(t, pending, 2)

	pending, err = Plan(migs, map[int64]Record{1: {Version: 1, Checksum: migs[0].Checksum}})
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, int64(2), pending[0].Version)

	_, err = Plan(migs, map[int64]Record{1: {Version: 1, Checksum: "edited"}})
	assert.ErrorIs(t, err, ErrChecksumMismatch)

	_, err = Plan(migs, map[int64]Record{7: {Version: 7}})
	assert.ErrorIs(t, err, ErrUnknownApplied)
}
