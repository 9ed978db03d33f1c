package family

import (
	"errors"
	"slices"
	"strconv"
	"strings"

	apperrors "github.com/matzehuels/famtree/pkg/errors"
)

var (
	// ErrEmptyName is returned by [Tree.AddMember] when the name is empty
	// after trimming surrounding whitespace.
	ErrEmptyName = errors.New("member name must not be empty")

	// ErrMissingMember is returned when a relation is requested without
	// selecting both endpoints.
	ErrMissingMember = errors.New("member id must not be empty")

	// ErrMemberNotFound is returned by [Tree.DeleteMember] when no member has
	// the given id. The tree is unchanged.
	ErrMemberNotFound = errors.New("member not found")

	// ErrUnknownMember is returned by [Tree.AddRelation] when either endpoint
	// does not exist in the tree.
	ErrUnknownMember = errors.New("unknown member")

	// ErrSelfRelation is returned by [Tree.AddRelation] when both endpoints
	// are the same member.
	ErrSelfRelation = errors.New("cannot relate a member to itself")

	// ErrUnknownKind is returned by [Tree.AddRelation] for a relationship kind
	// outside the fixed vocabulary.
	ErrUnknownKind = errors.New("unknown relationship kind")

	// ErrDuplicateRelation is returned by [Tree.AddRelation] when the source
	// member already has an edge with the same kind and target.
	ErrDuplicateRelation = errors.New("relationship exists")
)

// idPrefix prefixes every generated member id.
const idPrefix = "p"

// Gender is a member's gender as entered by the user.
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"
)

// Genders lists the accepted genders in display order.
var Genders = []Gender{GenderMale, GenderFemale, GenderOther}

// ParseGender maps user input onto a [Gender], ignoring case and surrounding
// whitespace. It reports false for anything outside [Genders].
func ParseGender(s string) (Gender, bool) {
	g := Gender(strings.ToLower(strings.TrimSpace(s)))
	return g, slices.Contains(Genders, g)
}

// Member is a person in the tree. Relations are owned by the member and
// point at other members by id.
type Member struct {
	ID        string
	Name      string
	Gender    Gender
	Relations []Relation
}

// Label returns the display form "Name (id)" used by every text view.
func (m *Member) Label() string {
	return m.Name + " (" + m.ID + ")"
}

// HasRelation reports whether m has an edge of the given kind to target.
func (m *Member) HasRelation(kind Kind, target string) bool {
	return slices.ContainsFunc(m.Relations, func(r Relation) bool {
		return r.Kind == kind && r.Target == target
	})
}

// Tree is the registry of members and their relationships.
//
// The zero value is not usable - use [New] to create a Tree.
// Tree is not safe for concurrent use without external synchronization.
type Tree struct {
	members []*Member
	index   map[string]*Member
	nextID  int
}

// New creates an empty tree whose first member will be "p1".
func New() *Tree {
	return &Tree{
		index:  make(map[string]*Member),
		nextID: 1,
	}
}

// FromMembers builds a tree from already-identified members, as read from a
// snapshot, and recomputes the id counter. Relations are copied as-is; edges
// pointing at missing members are kept so that a round trip is lossless.
// Returns an error if a member has an empty or duplicate id.
func FromMembers(members []Member) (*Tree, error) {
	t := New()
	for i := range members {
		m := members[i]
		if m.ID == "" {
			return nil, apperrors.Wrap(apperrors.ErrCodeInvalidFormat, ErrMissingMember, "member #%d has no id", i+1)
		}
		if _, exists := t.index[m.ID]; exists {
			return nil, apperrors.New(apperrors.ErrCodeInvalidFormat, "duplicate member id %q", m.ID)
		}
		m.Relations = slices.Clone(m.Relations)
		t.members = append(t.members, &m)
		t.index[m.ID] = &m
	}
	t.ResetCounter()
	return t, nil
}

// AddMember appends a new member with the next unused sequential id.
// The name is trimmed; an empty result fails with ErrEmptyName and leaves the
// tree untouched.
func (t *Tree) AddMember(name string, gender Gender) (*Member, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.Wrap(apperrors.ErrCodeInvalidInput, ErrEmptyName, "enter a name")
	}

	id := idPrefix + strconv.Itoa(t.nextID)
	for t.index[id] != nil {
		t.nextID++
		id = idPrefix + strconv.Itoa(t.nextID)
	}
	t.nextID++

	m := &Member{ID: id, Name: name, Gender: gender, Relations: []Relation{}}
	t.members = append(t.members, m)
	t.index[id] = m
	return m, nil
}

// DeleteMember removes the member and every edge, on any member, that
// targets it. An unknown id returns ErrMemberNotFound and changes nothing.
func (t *Tree) DeleteMember(id string) error {
	if _, ok := t.index[id]; !ok {
		return apperrors.Wrap(apperrors.ErrCodeNotFound, ErrMemberNotFound, "member %s not found", id)
	}

	t.members = slices.DeleteFunc(t.members, func(m *Member) bool { return m.ID == id })
	delete(t.index, id)
	for _, m := range t.members {
		m.Relations = slices.DeleteFunc(m.Relations, func(r Relation) bool { return r.Target == id })
	}
	return nil
}

// Clone returns a deep copy of the tree, id counter included.
func (t *Tree) Clone() *Tree {
	c := &Tree{
		members: make([]*Member, len(t.members)),
		index:   make(map[string]*Member, len(t.members)),
		nextID:  t.nextID,
	}
	for i, m := range t.members {
		cp := *m
		cp.Relations = slices.Clone(m.Relations)
		c.members[i] = &cp
		c.index[cp.ID] = &cp
	}
	return c
}

// Member returns the member with the given id and true, or nil and false.
// The returned pointer refers to the member stored in the tree.
func (t *Tree) Member(id string) (*Member, bool) {
	m, ok := t.index[id]
	return m, ok
}

// Members returns the members in insertion order. The slice is a copy but
// the members are shared with the tree.
func (t *Tree) Members() []*Member { return slices.Clone(t.members) }

// Len returns the number of members.
func (t *Tree) Len() int { return len(t.members) }

// NextID returns the id counter: the numeric part of the id the next
// [Tree.AddMember] will try first.
func (t *Tree) NextID() int { return t.nextID }

// ResetCounter recomputes the id counter as one past the largest numeric id
// suffix in the tree, or 1 when no id has a numeric suffix.
func (t *Tree) ResetCounter() {
	highest := 0
	found := false
	for _, m := range t.members {
		n, ok := idNumber(m.ID)
		if !ok {
			continue
		}
		if !found || n > highest {
			highest = n
			found = true
		}
	}
	t.nextID = 1
	if found && highest+1 > 1 {
		t.nextID = highest + 1
	}
}

// idNumber extracts the leading decimal digits after the "p" prefix.
// "p12" yields 12; "p7b" yields 7; "x3" and "p" yield false.
func idNumber(id string) (int, bool) {
	s := strings.TrimPrefix(id, idPrefix)
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0, false
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, false
	}
	return n, true
}
