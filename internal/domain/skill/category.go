package skill

import (
	"iter"
	"sort"
	"strings"

	"github.com/google/uuid"

	"volunteer-match/internal/domain/domainerr"
)

// CategoryIndex is an in-memory view of the category graph used for
// cycle checks, ancestor paths and tree rendering.
type CategoryIndex struct {
	byID     map[uuid.UUID]Category
	children map[uuid.UUID][]uuid.UUID
	roots    []uuid.UUID
}

func NewCategoryIndex(categories []Category) *CategoryIndex {
	x := &CategoryIndex{
		byID:     make(map[uuid.UUID]Category, len(categories)),
		children: make(map[uuid.UUID][]uuid.UUID),
	}
	for _, c := range categories {
		x.byID[c.ID] = c
	}
	for _, c := range categories {
		if c.ParentID == nil {
			x.roots = append(x.roots, c.ID)
			continue
		}
		x.children[*c.ParentID] = append(x.children[*c.ParentID], c.ID)
	}

	byName := func(ids []uuid.UUID) {
		sort.SliceStable(ids, func(i, j int) bool {
			a, b := x.byID[ids[i]], x.byID[ids[j]]
			if ka, kb := strings.ToLower(a.Name), strings.ToLower(b.Name); ka != kb {
				return ka < kb
			}
			return a.ID.String() < b.ID.String()
		})
	}
	byName(x.roots)
	for k := range x.children {
		byName(x.children[k])
	}
	return x
}

func (x *CategoryIndex) Get(id uuid.UUID) (Category, bool) {
	c, ok := x.byID[id]
	return c, ok
}

func (x *CategoryIndex) Len() int {
	return len(x.byID)
}

func (x *CategoryIndex) Children(id uuid.UUID) []Category {
	ids := x.children[id]
	out := make([]Category, 0, len(ids))
	for _, cid := range ids {
		out = append(out, x.byID[cid])
	}
	return out
}

// WouldCreateCycle walks the ancestor chain of newParent and reports
// whether it reaches id. A pre-existing loop in the chain also counts.
func (x *CategoryIndex) WouldCreateCycle(id, newParent uuid.UUID) bool {
	if id == newParent {
		return true
	}
	seen := make(map[uuid.UUID]struct{}, len(x.byID))
	cur := newParent
	for {
		if cur == id {
			return true
		}
		if _, dup := seen[cur]; dup {
			return true
		}
		seen[cur] = struct{}{}

		c, ok := x.byID[cur]
		if !ok || c.ParentID == nil {
			return false
		}
		cur = *c.ParentID
	}
}

// Path returns the ancestors of id from the root down to id itself.
func (x *CategoryIndex) Path(id uuid.UUID) ([]Category, error) {
	c, ok := x.byID[id]
	if !ok {
		return nil, domainerr.NotFound("skill_category", id)
	}

	path := []Category{c}
	seen := map[uuid.UUID]struct{}{id: {}}
	for c.ParentID != nil {
		parent, ok := x.byID[*c.ParentID]
		if !ok {
			return nil, domainerr.NotFound("skill_category", *c.ParentID)
		}
		if _, dup := seen[parent.ID]; dup {
			return nil, domainerr.CircularReference("skill_category", id, parent.ID)
		}
		seen[parent.ID] = struct{}{}
		path = append(path, parent)
		c = parent
	}

	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path, nil
}

// Descendants returns every category below id, breadth first.
func (x *CategoryIndex) Descendants(id uuid.UUID) []uuid.UUID {
	var out []uuid.UUID
	seen := map[uuid.UUID]struct{}{id: {}}
	queue := append([]uuid.UUID(nil), x.children[id]...)
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if _, dup := seen[cur]; dup {
			continue
		}
		seen[cur] = struct{}{}
		out = append(out, cur)
		queue = append(queue, x.children[cur]...)
	}
	return out
}

// Tree returns a lazily expanded view of the hierarchy. skillCounts maps a
// category id to the number of skills directly in it.
func (x *CategoryIndex) Tree(skillCounts map[uuid.UUID]int) CategoryTree {
	return CategoryTree{index: x, counts: skillCounts}
}

type CategoryTree struct {
	index  *CategoryIndex
	counts map[uuid.UUID]int
}

type CategoryNode struct {
	Category   Category
	SkillCount int
	Depth      int

	tree CategoryTree
}

func (t CategoryTree) node(id uuid.UUID, depth int) CategoryNode {
	return CategoryNode{
		Category:   t.index.byID[id],
		SkillCount: t.counts[id],
		Depth:      depth,
		tree:       t,
	}
}

// Roots yields the top-level categories. Each call starts a fresh sequence.
func (t CategoryTree) Roots() iter.Seq[CategoryNode] {
	return func(yield func(CategoryNode) bool) {
		if t.index == nil {
			return
		}
		for _, id := range t.index.roots {
			if !yield(t.node(id, 0)) {
				return
			}
		}
	}
}

// Walk yields every node depth first, parents before children.
func (t CategoryTree) Walk() iter.Seq[CategoryNode] {
	return func(yield func(CategoryNode) bool) {
		var visit func(n CategoryNode) bool
		visit = func(n CategoryNode) bool {
			if n.Depth > t.index.Len() {
				return true
			}
			if !yield(n) {
				return false
			}
			for child := range n.Children() {
				if !visit(child) {
					return false
				}
			}
			return true
		}
		for root := range t.Roots() {
			if !visit(root) {
				return
			}
		}
	}
}

func (n CategoryNode) Children() iter.Seq[CategoryNode] {
	return func(yield func(CategoryNode) bool) {
		if n.tree.index == nil {
			return
		}
		for _, id := range n.tree.index.children[n.Category.ID] {
			if !yield(n.tree.node(id, n.Depth+1)) {
				return
			}
		}
	}
}
