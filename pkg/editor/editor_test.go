package editor

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	apperrors "github.com/matzehuels/famtree/pkg/errors"
	"github.com/matzehuels/famtree/pkg/family"
	"github.com/matzehuels/famtree/pkg/observability"
	"github.com/matzehuels/famtree/pkg/render/nodelink"
	"github.com/matzehuels/famtree/pkg/storage"
)

// countingStore wraps a MemoryStore and counts writes.
type countingStore struct {
	*storage.MemoryStore
	saves   int
	failing error
}

func (s *countingStore) Save(ctx context.Context, data []byte) error {
	if s.failing != nil {
		return s.failing
	}
	s.saves++
	return s.MemoryStore.Save(ctx, data)
}

func newEditor(t *testing.T) (*Editor, *countingStore) {
	t.Helper()
	store := &countingStore{MemoryStore: storage.NewMemoryStore()}
	e, err := Open(context.Background(), store, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return e, store
}

func stored(t *testing.T, s storage.Store) string {
	t.Helper()
	data, ok, err := s.Load(context.Background())
	if err != nil || !ok {
		t.Fatalf("Load = %v, %v", ok, err)
	}
	return string(data)
}

func TestOpenEmpty(t *testing.T) {
	e, store := newEditor(t)
	if e.Len() != 0 {
		t.Errorf("Len = %d, want 0", e.Len())
	}
	if store.saves != 0 {
		t.Errorf("Open should not write, saves = %d", store.saves)
	}
	if e.Backend() != "custom" {
		t.Errorf("Backend = %s, want custom for wrapped store", e.Backend())
	}
}

func TestOpenLoadsSnapshot(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	_ = store.Save(ctx, []byte(`{"members":[{"id":"p4","name":"Ann","gender":"female","relations":[]}]}`))

	e, err := Open(ctx, store, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if e.Backend() != storage.BackendMemory {
		t.Errorf("Backend = %s", e.Backend())
	}
	m, err := e.AddMember(ctx, "Ben", "male")
	if err != nil {
		t.Fatal(err)
	}
	if m.ID != "p5" {
		t.Errorf("new id = %s, want p5 after loading p4", m.ID)
	}
}

func TestOpenCorruptSnapshotStartsEmpty(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	_ = store.Save(ctx, []byte(`{"members":`))

	e, err := Open(ctx, store, nil)
	if err != nil {
		t.Fatalf("Open should tolerate a corrupt snapshot: %v", err)
	}
	if e.Len() != 0 {
		t.Errorf("Len = %d, want 0", e.Len())
	}
}

func TestMutationsPersist(t *testing.T) {
	ctx := context.Background()
	e, store := newEditor(t)

	a, err := e.AddMember(ctx, "  Alice ", "female")
	if err != nil {
		t.Fatal(err)
	}
	if a.Name != "Alice" || a.ID != "p1" {
		t.Errorf("AddMember = %+v", a)
	}
	b, _ := e.AddMember(ctx, "Bob", "MALE")
	if err := e.AddRelation(ctx, a.ID, b.ID, family.KindSpouse); err != nil {
		t.Fatal(err)
	}
	if store.saves != 3 {
		t.Errorf("saves = %d, want 3", store.saves)
	}
	if !strings.Contains(stored(t, store), `"type": "spouse"`) {
		t.Errorf("snapshot missing spouse edge:\n%s", stored(t, store))
	}

	if err := e.DeleteRelation(ctx, b.ID, family.KindSpouse, a.ID); err != nil {
		t.Fatal(err)
	}
	if strings.Contains(stored(t, store), "spouse") {
		t.Error("spouse edges should be gone in both directions")
	}

	if err := e.DeleteMember(ctx, a.ID); err != nil {
		t.Fatal(err)
	}
	if e.Len() != 1 {
		t.Errorf("Len = %d, want 1", e.Len())
	}
}

func TestUnchangedSnapshotIsNotSaved(t *testing.T) {
	ctx := context.Background()
	e, store := newEditor(t)
	a, _ := e.AddMember(ctx, "Alice", "female")
	b, _ := e.AddMember(ctx, "Bob", "male")
	before := store.saves

	// Removing an edge that does not exist changes nothing.
	if err := e.DeleteRelation(ctx, a.ID, family.KindFather, b.ID); err != nil {
		t.Fatal(err)
	}
	if store.saves != before {
		t.Errorf("saves = %d, want %d", store.saves, before)
	}
}

func TestMutationErrors(t *testing.T) {
	ctx := context.Background()
	e, store := newEditor(t)
	a, _ := e.AddMember(ctx, "Alice", "female")
	b, _ := e.AddMember(ctx, "Bob", "male")
	_ = e.AddRelation(ctx, a.ID, b.ID, family.KindSpouse)
	saves := store.saves

	tests := []struct {
		name     string
		run      func() error
		code     apperrors.Code
		sentinel error
		warning  bool
	}{
		{
			name:     "empty name",
			run:      func() error { _, err := e.AddMember(ctx, "   ", "male"); return err },
			code:     apperrors.ErrCodeInvalidInput,
			sentinel: family.ErrEmptyName,
		},
		{
			name: "bad gender",
			run:  func() error { _, err := e.AddMember(ctx, "Carl", "robot"); return err },
			code: apperrors.ErrCodeInvalidInput,
		},
		{
			name:    "delete unknown",
			run:     func() error { return e.DeleteMember(ctx, "p99") },
			code:    apperrors.ErrCodeNotFound,
			warning: true,
		},
		{
			name:     "self relation",
			run:      func() error { return e.AddRelation(ctx, a.ID, a.ID, family.KindBrother) },
			code:     apperrors.ErrCodeInvalidInput,
			sentinel: family.ErrSelfRelation,
		},
		{
			name:     "unknown member",
			run:      func() error { return e.AddRelation(ctx, a.ID, "p99", family.KindSister) },
			code:     apperrors.ErrCodeUnknownMember,
			sentinel: family.ErrUnknownMember,
		},
		{
			name:     "duplicate",
			run:      func() error { return e.AddRelation(ctx, b.ID, a.ID, family.KindSpouse) },
			code:     apperrors.ErrCodeRelationExists,
			sentinel: family.ErrDuplicateRelation,
			warning:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.run()
			if !apperrors.Is(err, tt.code) {
				t.Fatalf("error = %v, want %s", err, tt.code)
			}
			if tt.sentinel != nil && !errors.Is(err, tt.sentinel) {
				t.Errorf("error %v does not wrap %v", err, tt.sentinel)
			}
			if apperrors.IsWarning(err) != tt.warning {
				t.Errorf("IsWarning = %v, want %v", !tt.warning, tt.warning)
			}
		})
	}

	if store.saves != saves {
		t.Errorf("failed operations wrote %d snapshots", store.saves-saves)
	}
	if e.Len() != 2 {
		t.Errorf("Len = %d, want 2", e.Len())
	}
}

func TestStorageFailure(t *testing.T) {
	ctx := context.Background()
	e, store := newEditor(t)
	if _, err := e.AddMember(ctx, "Alice", "female"); err != nil {
		t.Fatal(err)
	}
	if _, err := e.AddMember(ctx, "Bob", "male"); err != nil {
		t.Fatal(err)
	}
	before, _ := e.JSON()
	store.failing = apperrors.New(apperrors.ErrCodeStorage, "disk full")

	tests := []struct {
		name string
		fn   func() error
	}{
		{"add member", func() error { _, err := e.AddMember(ctx, "Carl", "male"); return err }},
		{"delete member", func() error { return e.DeleteMember(ctx, "p1") }},
		{"add relation", func() error { return e.AddRelation(ctx, "p1", "p2", family.KindSpouse) }},
		{"load snapshot", func() error { return e.LoadSnapshot(ctx, []byte(`{"members":[]}`)) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.fn(); !apperrors.Is(err, apperrors.ErrCodeStorage) {
				t.Fatalf("error = %v, want STORAGE_ERROR", err)
			}
			if after, _ := e.JSON(); after != before {
				t.Errorf("tree changed after failed save:\n%s\nwant\n%s", after, before)
			}
		})
	}

	// Retrying after the outage adds one member under the next id.
	store.failing = nil
	m, err := e.AddMember(ctx, "Carl", "male")
	if err != nil {
		t.Fatal(err)
	}
	if m.ID != "p3" || e.Len() != 3 {
		t.Errorf("retry added %s, Len = %d; want p3, 3", m.ID, e.Len())
	}
	if got := stored(t, store); strings.Count(got, "Carl") != 1 {
		t.Errorf("stored snapshot = %s", got)
	}
}

func TestDeleteRelationRollback(t *testing.T) {
	ctx := context.Background()
	e, store := newEditor(t)
	_, _ = e.AddMember(ctx, "Alice", "female")
	_, _ = e.AddMember(ctx, "Bob", "male")
	_ = e.AddRelation(ctx, "p1", "p2", family.KindSpouse)

	store.failing = errors.New("connection refused")
	if err := e.DeleteRelation(ctx, "p1", family.KindSpouse, "p2"); err == nil {
		t.Fatal("expected save error")
	}
	if got := len(e.Relationships()); got != 2 {
		t.Errorf("relationships = %d, want spouse pair kept", got)
	}
}

func TestRefresh(t *testing.T) {
	ctx := context.Background()
	e, store := newEditor(t)
	_, _ = e.AddMember(ctx, "Alice", "female")

	// Another writer replaces the snapshot.
	_ = store.MemoryStore.Save(ctx, []byte(`{"members":[
		{"id":"p1","name":"Alice","gender":"female","relations":[]},
		{"id":"p7","name":"Gus","gender":"male","relations":[]}]}`))
	if err := e.Refresh(ctx); err != nil {
		t.Fatal(err)
	}
	if e.Len() != 2 {
		t.Fatalf("Len after refresh = %d, want 2", e.Len())
	}

	// A corrupt snapshot is reported and the tree is kept.
	_ = store.MemoryStore.Save(ctx, []byte(`not json`))
	err := e.Refresh(ctx)
	if !apperrors.Is(err, apperrors.ErrCodeInvalidFormat) {
		t.Errorf("error = %v, want INVALID_FORMAT", err)
	}
	if e.Len() != 2 {
		t.Errorf("Len after failed refresh = %d, want 2", e.Len())
	}
}

func TestRefreshAbsentKeepsTree(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore()
	e, _ := Open(ctx, store, nil)
	e.tree, _ = family.FromMembers([]family.Member{{ID: "p1", Name: "Solo", Gender: family.GenderOther}})

	if err := e.Refresh(ctx); err != nil {
		t.Fatal(err)
	}
	if e.Len() != 1 {
		t.Errorf("Len = %d, want 1", e.Len())
	}
}

func TestLoadSnapshot(t *testing.T) {
	ctx := context.Background()
	e, store := newEditor(t)
	_, _ = e.AddMember(ctx, "Alice", "female")

	for _, bad := range []string{`[]`, `{"members":{}}`, `{"members":[{"id":""}]}`} {
		if err := e.LoadSnapshot(ctx, []byte(bad)); !apperrors.Is(err, apperrors.ErrCodeInvalidFormat) {
			t.Errorf("LoadSnapshot(%s) = %v, want INVALID_FORMAT", bad, err)
		}
	}
	if e.Len() != 1 {
		t.Fatalf("failed loads changed the tree")
	}

	if err := e.LoadSnapshot(ctx, []byte(`{"members":[{"id":"p3","name":"Zed","gender":"male","relations":[]}]}`)); err != nil {
		t.Fatal(err)
	}
	if _, ok := e.Member("p3"); !ok {
		t.Error("p3 missing after load")
	}
	if !strings.Contains(stored(t, store), "Zed") {
		t.Error("loaded tree was not persisted")
	}
}

func TestLoadFileAndSaveFile(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	e, _ := newEditor(t)

	if _, err := e.SaveFile(dir, time.Now()); !apperrors.Is(err, apperrors.ErrCodeInvalidInput) {
		t.Errorf("saving empty tree = %v, want INVALID_INPUT", err)
	}

	a, _ := e.AddMember(ctx, "Alice", "female")
	b, _ := e.AddMember(ctx, "Bob", "male")
	_ = e.AddRelation(ctx, b.ID, a.ID, family.KindMother)

	now := time.Date(2025, 3, 14, 9, 26, 53, 0, time.Local)
	path, err := e.SaveFile(dir, now)
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(path) != "family_tree_2025-03-14_09-26-53.json" {
		t.Errorf("backup name = %s", filepath.Base(path))
	}

	other, _ := newEditor(t)
	if err := other.LoadFile(ctx, path); err != nil {
		t.Fatal(err)
	}
	want, _ := e.JSON()
	got, _ := other.JSON()
	if got != want {
		t.Errorf("round trip mismatch:\n%s\nvs\n%s", got, want)
	}

	bad := filepath.Join(dir, "bad.json")
	_ = os.WriteFile(bad, []byte(`{"members":"nope"}`), 0644)
	if err := other.LoadFile(ctx, bad); !apperrors.Is(err, apperrors.ErrCodeInvalidFormat) {
		t.Errorf("LoadFile(bad) = %v, want INVALID_FORMAT", err)
	}
	if err := other.LoadFile(ctx, filepath.Join(dir, "missing.json")); err == nil {
		t.Error("LoadFile(missing) should fail")
	}
	if other.Len() != 2 {
		t.Errorf("failed loads changed the tree")
	}
}

func TestViews(t *testing.T) {
	ctx := context.Background()
	e, _ := newEditor(t)
	alice, _ := e.AddMember(ctx, "Alice", "female")
	bob, _ := e.AddMember(ctx, "Bob", "male")
	carl, _ := e.AddMember(ctx, "Carl", "male")
	_ = e.AddRelation(ctx, alice.ID, bob.ID, family.KindSpouse)
	_ = e.AddRelation(ctx, carl.ID, alice.ID, family.KindMother)

	members := e.Members()
	if len(members) != 3 || members[0].Name != "Alice" || members[2].Name != "Carl" {
		t.Errorf("Members = %+v", members)
	}
	members[0].Relations[0].Target = "changed"
	if m, _ := e.Member(alice.ID); m.Relations[0].Target != bob.ID {
		t.Error("Members should return copies")
	}

	links := e.Relationships()
	if len(links) != 3 {
		t.Errorf("Relationships = %v, want 3 edges", links)
	}

	h, err := e.Hierarchy()
	if err != nil {
		t.Fatal(err)
	}
	want := "Alice (p1) 💍 Bob (p2)\n└── Carl (p3)\nBob (p2) 💍 Alice (p1)\n"
	if h != want {
		t.Errorf("Hierarchy =\n%s\nwant\n%s", h, want)
	}

	sub, err := e.HierarchyFrom(carl.ID)
	if err != nil || sub != "Carl (p3)\n" {
		t.Errorf("HierarchyFrom = %q, %v", sub, err)
	}
	if _, err := e.HierarchyFrom("p42"); !apperrors.Is(err, apperrors.ErrCodeNotFound) {
		t.Errorf("HierarchyFrom(unknown) = %v", err)
	}

	if !strings.Contains(e.MemberList(), "Bob (p2) - male") {
		t.Errorf("MemberList = %q", e.MemberList())
	}
	if !strings.Contains(e.RelationshipList(), "mother -> Alice (p1)") {
		t.Errorf("RelationshipList = %q", e.RelationshipList())
	}
	if !strings.Contains(e.DOT(nodelink.Options{}), `"p1" -> "p3";`) {
		t.Error("DOT missing parent edge")
	}
}

func TestHierarchyRejectsCycle(t *testing.T) {
	ctx := context.Background()
	e, _ := newEditor(t)
	a, _ := e.AddMember(ctx, "A", "male")
	b, _ := e.AddMember(ctx, "B", "male")
	_ = e.AddRelation(ctx, a.ID, b.ID, family.KindFather)
	_ = e.AddRelation(ctx, b.ID, a.ID, family.KindFather)

	if _, err := e.Hierarchy(); !apperrors.Is(err, apperrors.ErrCodeGraphCycle) {
		t.Errorf("Hierarchy = %v, want GRAPH_CYCLE", err)
	}
}

type recordingHooks struct {
	observability.NoopEditorHooks
	observability.NoopStorageHooks
	mu   sync.Mutex
	ops  []string
	skip int
}

func (h *recordingHooks) OnMutation(_ context.Context, op string, err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if err != nil {
		op += ":error"
	}
	h.ops = append(h.ops, op)
}

func (h *recordingHooks) OnSkip(context.Context, string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.skip++
}

func TestHooks(t *testing.T) {
	hooks := &recordingHooks{}
	observability.SetEditorHooks(hooks)
	observability.SetStorageHooks(hooks)
	defer observability.Reset()

	ctx := context.Background()
	e, _ := newEditor(t)
	a, _ := e.AddMember(ctx, "A", "male")
	_ = e.DeleteMember(ctx, "p9")
	_ = e.DeleteRelation(ctx, a.ID, family.KindSpouse, "p9")

	want := []string{OpAddMember, OpDeleteMember + ":error", OpDeleteRelation}
	if strings.Join(hooks.ops, ",") != strings.Join(want, ",") {
		t.Errorf("ops = %v, want %v", hooks.ops, want)
	}
	if hooks.skip != 1 {
		t.Errorf("skips = %d, want 1", hooks.skip)
	}
}

func TestConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	e, _ := newEditor(t)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = e.AddMember(ctx, "M", "other")
			_ = e.MemberList()
		}()
	}
	wg.Wait()

	if e.Len() != 20 {
		t.Errorf("Len = %d, want 20", e.Len())
	}
}
