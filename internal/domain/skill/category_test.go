package skill

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"volunteer-match/internal/domain/domainerr"
)

func cat(name string, parent *Category) Category {
	c := Category{ID: uuid.New(), Name: name}
	if parent != nil {
		id := parent.ID
		c.ParentID = &id
	}
	return c
}

func TestCategoryIndex_WouldCreateCycle(t *testing.T) {
	root := cat("Technology", nil)
	web := cat("Web", &root)
	frontend := cat("Frontend", &web)
	other := cat("Health", nil)

	x := NewCategoryIndex([]Category{root, web, frontend, other})

	assert.True(t, x.WouldCreateCycle(root.ID, root.ID), "self parent")
	assert.True(t, x.WouldCreateCycle(root.ID, frontend.ID), "descendant as parent")
	assert.True(t, x.WouldCreateCycle(web.ID, frontend.ID))
	assert.False(t, x.WouldCreateCycle(frontend.ID, root.ID))
	assert.False(t, x.WouldCreateCycle(web.ID, other.ID))
	assert.False(t, x.WouldCreateCycle(root.ID, other.ID))
}

func TestCategoryIndex_Path(t *testing.T) {
	root := cat("Technology", nil)
	web := cat("Web", &root)
	frontend := cat("Frontend", &web)

	x := NewCategoryIndex([]Category{frontend, root, web})

	path, err := x.Path(frontend.ID)
	require.NoError(t, err)
	require.Len(t, path, 3)
	assert.Equal(t, root.ID, path[0].ID)
	assert.Equal(t, web.ID, path[1].ID)
	assert.Equal(t, frontend.ID, path[2].ID)

	path, err = x.Path(root.ID)
	require.NoError(t, err)
	assert.Len(t, path, 1)

	_, err = x.Path(uuid.New())
	assert.True(t, errors.Is(err, domainerr.ErrNotFound))
}

func TestCategoryIndex_Path_TerminatesOnCorruptCycle(t *testing.T) {
	a := Category{ID: uuid.New(), Name: "A"}
	b := Category{ID: uuid.New(), Name: "B"}
	a.ParentID = &b.ID
	b.ParentID = &a.ID

	x := NewCategoryIndex([]Category{a, b})
	_, err := x.Path(a.ID)
	assert.True(t, errors.Is(err, domainerr.ErrCircularReference))
}

func TestCategoryIndex_PathHasNoRepeatedNode(t *testing.T) {
	root := cat("Root", nil)
	cats := []Category{root}
	parent := root
	for i := 0; i < 20; i++ {
		c := cat(uuid.NewString(), &parent)
		cats = append(cats, c)
		parent = c
	}
	x := NewCategoryIndex(cats)

	for _, c := range cats {
		path, err := x.Path(c.ID)
		require.NoError(t, err)
		seen := map[uuid.UUID]bool{}
		for _, p := range path {
			assert.False(t, seen[p.ID])
			seen[p.ID] = true
		}
		assert.Equal(t, root.ID, path[0].ID)
		assert.Equal(t, c.ID, path[len(path)-1].ID)
	}
}

func TestCategoryIndex_Descendants(t *testing.T) {
	root := cat("Root", nil)
	a := cat("A", &root)
	b := cat("B", &root)
	a1 := cat("A1", &a)

	x := NewCategoryIndex([]Category{root, a, b, a1})
	assert.ElementsMatch(t, []uuid.UUID{a.ID, b.ID, a1.ID}, x.Descendants(root.ID))
	assert.Empty(t, x.Descendants(b.ID))
}

func TestCategoryTree_WalkIsRestartable(t *testing.T) {
	root := cat("Technology", nil)
	web := cat("Web", &root)
	data := cat("Data", &root)
	health := cat("Health", nil)

	x := NewCategoryIndex([]Category{root, web, data, health})
	tree := x.Tree(map[uuid.UUID]int{web.ID: 3, health.ID: 1})

	collect := func() []string {
		var names []string
		for n := range tree.Walk() {
			names = append(names, n.Category.Name)
		}
		return names
	}

	first := collect()
	assert.Equal(t, []string{"Health", "Technology", "Data", "Web"}, first)
	assert.Equal(t, first, collect())

	var roots []CategoryNode
	for n := range tree.Roots() {
		roots = append(roots, n)
	}
	require.Len(t, roots, 2)
	assert.Equal(t, 1, roots[0].SkillCount)

	var children []CategoryNode
	for c := range roots[1].Children() {
		children = append(children, c)
	}
	require.Len(t, children, 2)
	assert.Equal(t, 1, children[0].Depth)
	assert.Equal(t, 3, children[1].SkillCount)
}

func TestNameKey(t *testing.T) {
	assert.Equal(t, "first aid", NameKey("  First   Aid "))
	assert.Equal(t, "First Aid", NormalizeName("  First   Aid "))
}
