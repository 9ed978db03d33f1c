package family

import (
	"errors"
	"testing"

	apperrors "github.com/matzehuels/famtree/pkg/errors"
)

func mustAdd(t *testing.T, tr *Tree, name string, g Gender) *Member {
	t.Helper()
	m, err := tr.AddMember(name, g)
	if err != nil {
		t.Fatalf("AddMember(%q) error: %v", name, err)
	}
	return m
}

func TestAddMember(t *testing.T) {
	tr := New()

	alice := mustAdd(t, tr, "  Alice  ", GenderFemale)
	bob := mustAdd(t, tr, "Bob", GenderMale)

	if alice.ID != "p1" || bob.ID != "p2" {
		t.Errorf("ids = %s, %s, want p1, p2", alice.ID, bob.ID)
	}
	if alice.Name != "Alice" {
		t.Errorf("Name = %q, want trimmed %q", alice.Name, "Alice")
	}
	if alice.Relations == nil || len(alice.Relations) != 0 {
		t.Errorf("Relations = %v, want empty non-nil slice", alice.Relations)
	}
	if tr.Len() != 2 {
		t.Errorf("Len() = %d, want 2", tr.Len())
	}
	if tr.NextID() != 3 {
		t.Errorf("NextID() = %d, want 3", tr.NextID())
	}
}

func TestAddMemberEmptyName(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"spaces", "   "},
		{"tabs and newlines", "\t\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := New()
			m, err := tr.AddMember(tt.input, GenderOther)
			if m != nil {
				t.Errorf("AddMember(%q) returned member %v", tt.input, m)
			}
			if !errors.Is(err, ErrEmptyName) {
				t.Errorf("error = %v, want ErrEmptyName", err)
			}
			if !apperrors.Is(err, apperrors.ErrCodeInvalidInput) {
				t.Errorf("code = %v, want %v", apperrors.GetCode(err), apperrors.ErrCodeInvalidInput)
			}
			if tr.Len() != 0 || tr.NextID() != 1 {
				t.Errorf("tree mutated: Len=%d NextID=%d", tr.Len(), tr.NextID())
			}
		})
	}
}

func TestAddMemberSkipsUsedIDs(t *testing.T) {
	tr, err := FromMembers([]Member{{ID: "p2", Name: "Two"}, {ID: "custom", Name: "Custom"}})
	if err != nil {
		t.Fatalf("FromMembers error: %v", err)
	}
	// Counter recomputes to 3; a manual rewind must not produce a duplicate id.
	tr.nextID = 2
	m := mustAdd(t, tr, "Next", GenderMale)
	if m.ID != "p3" {
		t.Errorf("ID = %s, want p3", m.ID)
	}
}

func TestDeleteMemberCascades(t *testing.T) {
	tr := New()
	alice := mustAdd(t, tr, "Alice", GenderFemale)
	bob := mustAdd(t, tr, "Bob", GenderMale)
	carol := mustAdd(t, tr, "Carol", GenderFemale)

	mustRelate(t, tr, bob.ID, alice.ID, KindMother)
	mustRelate(t, tr, alice.ID, carol.ID, KindSpouse)
	mustRelate(t, tr, carol.ID, bob.ID, KindSon)
	mustRelate(t, tr, bob.ID, carol.ID, KindMother)

	if err := tr.DeleteMember(alice.ID); err != nil {
		t.Fatalf("DeleteMember error: %v", err)
	}

	if _, ok := tr.Member(alice.ID); ok {
		t.Error("deleted member still present")
	}
	for _, m := range tr.Members() {
		for _, r := range m.Relations {
			if r.Target == alice.ID {
				t.Errorf("%s still has edge %s -> %s", m.ID, r.Kind, r.Target)
			}
		}
	}
	// Edges between the remaining members survive.
	if !bob.HasRelation(KindMother, carol.ID) || !carol.HasRelation(KindSon, bob.ID) {
		t.Error("unrelated edges were removed")
	}
	if tr.RelationCount() != 2 {
		t.Errorf("RelationCount() = %d, want 2", tr.RelationCount())
	}
}

func TestDeleteMemberUnknown(t *testing.T) {
	tr := New()
	mustAdd(t, tr, "Alice", GenderFemale)

	err := tr.DeleteMember("p42")
	if !errors.Is(err, ErrMemberNotFound) {
		t.Fatalf("error = %v, want ErrMemberNotFound", err)
	}
	if !apperrors.IsWarning(err) {
		t.Error("deleting an absent member should be a warning")
	}
	if tr.Len() != 1 {
		t.Errorf("Len() = %d, want 1", tr.Len())
	}
}

func TestFromMembers(t *testing.T) {
	tests := []struct {
		name     string
		members  []Member
		wantNext int
		wantErr  bool
	}{
		{
			name:     "Empty",
			members:  nil,
			wantNext: 1,
		},
		{
			name:     "GapsAndOrder",
			members:  []Member{{ID: "p1"}, {ID: "p5"}, {ID: "p3"}},
			wantNext: 6,
		},
		{
			name:     "NonNumericOnly",
			members:  []Member{{ID: "alice"}, {ID: "bob"}},
			wantNext: 1,
		},
		{
			name:     "MixedIDs",
			members:  []Member{{ID: "x9"}, {ID: "p2"}, {ID: "p10abc"}},
			wantNext: 11,
		},
		{
			name:     "BareNumber",
			members:  []Member{{ID: "7"}},
			wantNext: 8,
		},
		{
			name:    "DuplicateID",
			members: []Member{{ID: "p1"}, {ID: "p1"}},
			wantErr: true,
		},
		{
			name:    "EmptyID",
			members: []Member{{ID: ""}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr, err := FromMembers(tt.members)
			if (err != nil) != tt.wantErr {
				t.Fatalf("FromMembers error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				if !apperrors.Is(err, apperrors.ErrCodeInvalidFormat) {
					t.Errorf("code = %v, want %v", apperrors.GetCode(err), apperrors.ErrCodeInvalidFormat)
				}
				return
			}
			if tr.NextID() != tt.wantNext {
				t.Errorf("NextID() = %d, want %d", tr.NextID(), tt.wantNext)
			}
			if tr.Len() != len(tt.members) {
				t.Errorf("Len() = %d, want %d", tr.Len(), len(tt.members))
			}
		})
	}
}

func TestFromMembersCopiesRelations(t *testing.T) {
	src := []Member{
		{ID: "p1", Name: "A", Relations: []Relation{{Kind: KindSpouse, Target: "p2"}}},
		{ID: "p2", Name: "B", Relations: []Relation{{Kind: KindSpouse, Target: "p1"}}},
	}
	tr, err := FromMembers(src)
	if err != nil {
		t.Fatalf("FromMembers error: %v", err)
	}
	tr.DeleteRelation("p1", KindSpouse, "p2")
	if len(src[0].Relations) != 1 {
		t.Error("FromMembers should not alias the input relations")
	}
}

func TestParseGender(t *testing.T) {
	tests := []struct {
		in   string
		want Gender
		ok   bool
	}{
		{"male", GenderMale, true},
		{" Female ", GenderFemale, true},
		{"OTHER", GenderOther, true},
		{"", "", false},
		{"robot", "robot", false},
	}
	for _, tt := range tests {
		got, ok := ParseGender(tt.in)
		if ok != tt.ok || (ok && got != tt.want) {
			t.Errorf("ParseGender(%q) = %q, %v, want %q, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestMemberLabel(t *testing.T) {
	m := &Member{ID: "p3", Name: "Carol"}
	if got := m.Label(); got != "Carol (p3)" {
		t.Errorf("Label() = %q, want %q", got, "Carol (p3)")
	}
}

func TestClone(t *testing.T) {
	tr := New()
	a := mustAdd(t, tr, "Alice", GenderFemale)
	b := mustAdd(t, tr, "Bob", GenderMale)
	if err := tr.AddRelation(a.ID, b.ID, KindSpouse); err != nil {
		t.Fatal(err)
	}
	if err := tr.DeleteMember(b.ID); err != nil {
		t.Fatal(err)
	}

	c := tr.Clone()
	if c.NextID() != tr.NextID() {
		t.Errorf("NextID = %d, want %d", c.NextID(), tr.NextID())
	}

	// Changes to the copy do not reach the original.
	ca, _ := c.Member(a.ID)
	ca.Name = "Alicia"
	ca.Relations = append(ca.Relations, Relation{Kind: KindSister, Target: "p9"})
	mustAdd(t, c, "Carl", GenderMale)

	if a.Name != "Alice" || len(a.Relations) != 0 {
		t.Errorf("original member changed: %+v", a)
	}
	if tr.Len() != 1 {
		t.Errorf("original Len = %d, want 1", tr.Len())
	}
	if m, _ := c.Member("p3"); m == nil {
		t.Error("clone should keep the counter past deleted ids")
	}
}
