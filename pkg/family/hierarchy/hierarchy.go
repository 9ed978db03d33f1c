// Package hierarchy derives a parent/child view of a family tree and renders
// it as indented text.
//
// Parent edges point from a child to a parent (child -father-> parent). The
// hierarchy inverts them into a parent -> children index, treats every
// member without a parent edge of its own as a root, and walks depth-first
// from each root.
//
//	Alice (p1) 💍 Bob (p2)
//	├── Carol (p3)
//	│   └── Erin (p5)
//	└── Dave (p4)
//
// Render does not guard against cycles in parent edges: a cycle reachable
// from a root makes it recurse forever. Call [Validate] first when the input
// is untrusted.
package hierarchy

import (
	"errors"
	"strings"

	apperrors "github.com/matzehuels/famtree/pkg/errors"
	"github.com/matzehuels/famtree/pkg/family"
)

// ErrParentCycle is returned by [Validate] when a chain of father/mother
// edges leads back to where it started.
var ErrParentCycle = errors.New("parent relationships contain a cycle")

// Tree-drawing connectors.
const (
	branchMid  = "├── "
	branchLast = "└── "
	indentMid  = "│   "
	indentLast = "    "

	// spouseMark separates a member from the spouses listed on its line.
	spouseMark = " 💍 "
)

// Index maps a parent id to its child ids in scan order.
type Index map[string][]string

// ChildIndex scans every member in order, and each member's edges in order,
// and records child ids under the parent each father/mother edge targets.
// A child listed under the same parent by two edges appears twice.
func ChildIndex(t *family.Tree) Index {
	idx := make(Index)
	for _, m := range t.Members() {
		for _, r := range m.Relations {
			if r.Kind.IsParent() {
				idx[r.Target] = append(idx[r.Target], m.ID)
			}
		}
	}
	return idx
}

// childSet returns every id that appears in some child list.
func (idx Index) childSet() map[string]bool {
	set := make(map[string]bool)
	for _, children := range idx {
		for _, id := range children {
			set[id] = true
		}
	}
	return set
}

// Roots returns, in member order, the members whose id does not appear in
// any child list, i.e. members without a father or mother edge.
func Roots(t *family.Tree) []*family.Member {
	children := ChildIndex(t).childSet()
	var roots []*family.Member
	for _, m := range t.Members() {
		if !children[m.ID] {
			roots = append(roots, m)
		}
	}
	return roots
}

// Render returns the whole hierarchy, one line per visited member, starting
// from every root in member order. An empty tree renders as "".
func Render(t *family.Tree) string {
	idx := ChildIndex(t)
	children := idx.childSet()

	var b strings.Builder
	for _, m := range t.Members() {
		if !children[m.ID] {
			writeMember(&b, t, idx, m.ID, "", "")
		}
	}
	return b.String()
}

// RenderFrom renders the subtree below a single member, with that member on
// the first line. It returns ErrCodeNotFound for an unknown id.
func RenderFrom(t *family.Tree, id string) (string, error) {
	if _, ok := t.Member(id); !ok {
		return "", apperrors.Wrap(apperrors.ErrCodeNotFound, family.ErrMemberNotFound, "member %s not found", id)
	}
	var b strings.Builder
	writeMember(&b, t, ChildIndex(t), id, "", "")
	return b.String(), nil
}

// writeMember emits id's line with the given connector, then recurses into
// its children. prefix is the indentation inherited from the ancestors.
// Ids that are not in the tree are skipped along with their subtree.
func writeMember(b *strings.Builder, t *family.Tree, idx Index, id, prefix, connector string) {
	m, ok := t.Member(id)
	if !ok {
		return
	}

	b.WriteString(prefix)
	b.WriteString(connector)
	b.WriteString(Line(t, m))
	b.WriteByte('\n')

	childPrefix := prefix
	switch connector {
	case branchMid:
		childPrefix += indentMid
	case branchLast:
		childPrefix += indentLast
	}

	kids := idx[id]
	for i, child := range kids {
		next := branchMid
		if i == len(kids)-1 {
			next = branchLast
		}
		writeMember(b, t, idx, child, childPrefix, next)
	}
}

// Line formats a member with its spouses inline: "Alice (p1) 💍 Bob (p2)".
func Line(t *family.Tree, m *family.Member) string {
	line := m.Label()
	spouses := t.Spouses(m)
	if len(spouses) == 0 {
		return line
	}
	labels := make([]string, len(spouses))
	for i, s := range spouses {
		labels[i] = s.Label()
	}
	return line + spouseMark + strings.Join(labels, ", ")
}

// Validate reports ErrParentCycle (as ErrCodeGraphCycle) if following
// father/mother edges from any member can return to it. Cycle detection is a
// depth-first search with white/gray/black coloring in O(N+E).
func Validate(t *family.Tree) error {
	const (
		white = iota
		gray
		black
	)

	idx := ChildIndex(t)
	color := make(map[string]int, t.Len())
	var cycleAt string

	var dfs func(id string) bool
	dfs = func(id string) bool {
		color[id] = gray
		for _, child := range idx[id] {
			switch color[child] {
			case white:
				if dfs(child) {
					return true
				}
			case gray:
				cycleAt = child
				return true
			}
		}
		color[id] = black
		return false
	}

	for _, m := range t.Members() {
		if color[m.ID] == white && dfs(m.ID) {
			return apperrors.Wrap(apperrors.ErrCodeGraphCycle, ErrParentCycle, "cycle through member %s", cycleAt)
		}
	}
	return nil
}
