// Package text renders the flat views of a family tree: the member list and
// the relationship list.
//
// Names are ordered with [golang.org/x/text/collate] so that accented and
// mixed-case names sort the way a reader expects, rather than by byte value.
package text

import (
	"fmt"
	"slices"
	"strings"
	"sync"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/matzehuels/famtree/pkg/family"
)

// Placeholders printed when a view has nothing to show.
const (
	NoMembers   = "No members to display."
	NoRelations = "No relationships to display."
)

var (
	collatorMu sync.Mutex
	collator   = collate.New(language.Und, collate.IgnoreCase)
)

// SortByName returns the members ordered by name, ties broken by id.
// The input slice is not modified.
func SortByName(members []*family.Member) []*family.Member {
	out := slices.Clone(members)

	// collate.Collator is not safe for concurrent use.
	collatorMu.Lock()
	defer collatorMu.Unlock()
	slices.SortStableFunc(out, func(a, b *family.Member) int {
		if c := collator.CompareString(a.Name, b.Name); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
	return out
}

// MemberLine formats one entry of the member list.
func MemberLine(m *family.Member) string {
	return fmt.Sprintf("%s - %s", m.Label(), m.Gender)
}

// MemberList renders every member on its own line, sorted by name.
func MemberList(t *family.Tree) string {
	if t.Len() == 0 {
		return NoMembers + "\n"
	}
	var b strings.Builder
	for _, m := range SortByName(t.Members()) {
		b.WriteString(MemberLine(m))
		b.WriteByte('\n')
	}
	return b.String()
}

// Group is one member's outgoing edges with their targets resolved.
type Group struct {
	Member *family.Member
	Edges  []Edge
}

// Edge is a relation whose target exists in the tree.
type Edge struct {
	Kind   family.Kind
	Target *family.Member
}

// Relationships groups outgoing edges per member, in member order. Edges
// whose target is missing are skipped, and members left with no edges are
// omitted.
func Relationships(t *family.Tree) []Group {
	var groups []Group
	for _, m := range t.Members() {
		var edges []Edge
		for _, r := range m.Relations {
			target, ok := t.Member(r.Target)
			if !ok {
				continue
			}
			edges = append(edges, Edge{Kind: r.Kind, Target: target})
		}
		if len(edges) > 0 {
			groups = append(groups, Group{Member: m, Edges: edges})
		}
	}
	return groups
}

// RelationshipList renders the groups from [Relationships]:
//
//	Alice (p1)
//	  spouse -> Bob (p2)
func RelationshipList(t *family.Tree) string {
	groups := Relationships(t)
	if len(groups) == 0 {
		return NoRelations + "\n"
	}
	var b strings.Builder
	for i, g := range groups {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(g.Member.Label())
		b.WriteByte('\n')
		for _, e := range g.Edges {
			fmt.Fprintf(&b, "  %s -> %s\n", e.Kind, e.Target.Label())
		}
	}
	return b.String()
}
