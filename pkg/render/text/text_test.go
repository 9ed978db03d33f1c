package text

import (
	"testing"

	"github.com/matzehuels/famtree/pkg/family"
)

func buildTree(t *testing.T) *family.Tree {
	t.Helper()
	tree, err := family.FromMembers([]family.Member{
		{ID: "p1", Name: "zoe", Gender: family.GenderFemale, Relations: []family.Relation{
			{Kind: family.KindSpouse, Target: "p2"},
			{Kind: family.KindSister, Target: "p9"},
		}},
		{ID: "p2", Name: "Émile", Gender: family.GenderMale, Relations: []family.Relation{
			{Kind: family.KindSpouse, Target: "p1"},
		}},
		{ID: "p3", Name: "Adam", Gender: family.GenderOther},
		{ID: "p4", Name: "adam", Gender: family.GenderMale, Relations: []family.Relation{
			{Kind: family.KindFather, Target: "p1"},
		}},
	})
	if err != nil {
		t.Fatalf("FromMembers: %v", err)
	}
	return tree
}

func TestSortByName(t *testing.T) {
	tree := buildTree(t)
	got := SortByName(tree.Members())

	want := []string{"p3", "p4", "p2", "p1"}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i, id := range want {
		if got[i].ID != id {
			t.Errorf("position %d = %s, want %s", i, got[i].ID, id)
		}
	}

	if tree.Members()[0].ID != "p1" {
		t.Error("SortByName modified tree order")
	}
}

func TestMemberList(t *testing.T) {
	tests := []struct {
		name string
		tree func(*testing.T) *family.Tree
		want string
	}{
		{
			name: "empty",
			tree: func(*testing.T) *family.Tree { return family.New() },
			want: "No members to display.\n",
		},
		{
			name: "sorted",
			tree: buildTree,
			want: "Adam (p3) - other\n" +
				"adam (p4) - male\n" +
				"Émile (p2) - male\n" +
				"zoe (p1) - female\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MemberList(tt.tree(t)); got != tt.want {
				t.Errorf("MemberList =\n%s\nwant\n%s", got, tt.want)
			}
		})
	}
}

func TestRelationships(t *testing.T) {
	groups := Relationships(buildTree(t))
	if len(groups) != 3 {
		t.Fatalf("groups = %d, want 3", len(groups))
	}
	if groups[0].Member.ID != "p1" || len(groups[0].Edges) != 1 {
		t.Errorf("p1 group = %+v, want only the spouse edge", groups[0])
	}
	if groups[2].Edges[0].Kind != family.KindFather || groups[2].Edges[0].Target.ID != "p1" {
		t.Errorf("p4 edge = %+v", groups[2].Edges[0])
	}
}

func TestRelationshipList(t *testing.T) {
	if got := RelationshipList(family.New()); got != "No relationships to display.\n" {
		t.Errorf("empty = %q", got)
	}

	want := "zoe (p1)\n" +
		"  spouse -> Émile (p2)\n" +
		"\n" +
		"Émile (p2)\n" +
		"  spouse -> zoe (p1)\n" +
		"\n" +
		"adam (p4)\n" +
		"  father -> zoe (p1)\n"
	if got := RelationshipList(buildTree(t)); got != want {
		t.Errorf("RelationshipList =\n%s\nwant\n%s", got, want)
	}
}
