package family

import (
	"slices"
	"strings"

	apperrors "github.com/matzehuels/famtree/pkg/errors"
)

// Kind tags a relationship edge. Kinds read from a snapshot are kept verbatim;
// new edges must use one of [Kinds].
type Kind string

const (
	KindFather   Kind = "father"
	KindMother   Kind = "mother"
	KindSpouse   Kind = "spouse"
	KindSon      Kind = "son"
	KindDaughter Kind = "daughter"
	KindBrother  Kind = "brother"
	KindSister   Kind = "sister"
)

// Kinds is the fixed relationship vocabulary in display order.
var Kinds = []Kind{KindFather, KindMother, KindSpouse, KindSon, KindDaughter, KindBrother, KindSister}

// symmetricKinds mirror automatically: A->B implies B->A.
var symmetricKinds = map[Kind]bool{
	KindSpouse: true,
}

// parentKinds point from a child to one of its parents.
var parentKinds = map[Kind]bool{
	KindFather: true,
	KindMother: true,
}

// IsSymmetric reports whether edges of kind k are mirrored on the target.
func (k Kind) IsSymmetric() bool { return symmetricKinds[k] }

// IsParent reports whether k points from a child to a parent.
func (k Kind) IsParent() bool { return parentKinds[k] }

// Valid reports whether k belongs to the vocabulary.
func (k Kind) Valid() bool { return slices.Contains(Kinds, k) }

// ParseKind maps user input onto a [Kind], ignoring case and surrounding
// whitespace. It reports false for anything outside [Kinds].
func ParseKind(s string) (Kind, bool) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	return k, k.Valid()
}

// Relation is a directed edge owned by its source member.
type Relation struct {
	Kind   Kind
	Target string
}

// Link is a fully qualified edge as enumerated by [Tree.Relations].
type Link struct {
	From string
	Kind Kind
	To   string
}

// AddRelation adds the edge from -> to of the given kind.
//
// It fails without changing the tree when either id is empty, when from and
// to are equal, when either member is unknown, when kind is outside the
// vocabulary, or when from already has this exact edge (ErrDuplicateRelation).
// For symmetric kinds the mirror edge to -> from is inserted unless it is
// already present.
func (t *Tree) AddRelation(from, to string, kind Kind) error {
	if from == "" || to == "" {
		return apperrors.Wrap(apperrors.ErrCodeInvalidInput, ErrMissingMember, "select both members")
	}
	if from == to {
		return apperrors.Wrap(apperrors.ErrCodeInvalidInput, ErrSelfRelation, "cannot relate to self")
	}
	if !kind.Valid() {
		return apperrors.Wrap(apperrors.ErrCodeInvalidInput, ErrUnknownKind, "unknown relationship %q", kind)
	}

	src, okSrc := t.index[from]
	dst, okDst := t.index[to]
	if !okSrc || !okDst {
		return apperrors.Wrap(apperrors.ErrCodeUnknownMember, ErrUnknownMember, "members not found")
	}

	if src.HasRelation(kind, to) {
		return apperrors.Wrap(apperrors.ErrCodeRelationExists, ErrDuplicateRelation, "%s already has %s -> %s", from, kind, to)
	}

	src.Relations = append(src.Relations, Relation{Kind: kind, Target: to})
	if kind.IsSymmetric() && !dst.HasRelation(kind, from) {
		dst.Relations = append(dst.Relations, Relation{Kind: kind, Target: from})
	}
	return nil
}

// DeleteRelation removes the edge from -> to of the given kind. For symmetric
// kinds the mirror edge is removed too when present. Deleting an edge that
// does not exist, or from an unknown member, is a no-op.
func (t *Tree) DeleteRelation(from string, kind Kind, to string) {
	src, ok := t.index[from]
	if !ok {
		return
	}
	src.Relations = slices.DeleteFunc(src.Relations, func(r Relation) bool {
		return r.Kind == kind && r.Target == to
	})

	if !kind.IsSymmetric() {
		return
	}
	if dst, ok := t.index[to]; ok {
		dst.Relations = slices.DeleteFunc(dst.Relations, func(r Relation) bool {
			return r.Kind == kind && r.Target == from
		})
	}
}

// Relations returns every edge in the tree, in member order and then edge
// order. Edges whose target is missing are included.
func (t *Tree) Relations() []Link {
	var links []Link
	for _, m := range t.members {
		for _, r := range m.Relations {
			links = append(links, Link{From: m.ID, Kind: r.Kind, To: r.Target})
		}
	}
	return links
}

// RelationCount returns the total number of edges in the tree.
func (t *Tree) RelationCount() int {
	n := 0
	for _, m := range t.members {
		n += len(m.Relations)
	}
	return n
}

// Spouses returns the members linked from m by spouse edges, skipping
// targets that are not in the tree.
func (t *Tree) Spouses(m *Member) []*Member {
	var out []*Member
	for _, r := range m.Relations {
		if r.Kind != KindSpouse {
			continue
		}
		if s, ok := t.index[r.Target]; ok {
			out = append(out, s)
		}
	}
	return out
}
