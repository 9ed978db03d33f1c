// Package editor binds a family tree to a storage backend.
//
// An [Editor] owns one [family.Tree] and one [storage.Store]. Every
// successful mutation writes the new snapshot to the store, skipping the
// write when the snapshot text is unchanged. All methods are serialised
// behind a mutex, so the HTTP server and the file watcher can share one
// Editor.
//
// Failed operations, a failed save included, leave both the tree and the
// stored snapshot as they were. Warnings (NOT_FOUND, RELATION_EXISTS) are returned as errors; use
// [apperrors.IsWarning] to tell them apart from failures.
package editor

import (
	"context"
	"io"
	"slices"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	apperrors "github.com/matzehuels/famtree/pkg/errors"
	"github.com/matzehuels/famtree/pkg/family"
	"github.com/matzehuels/famtree/pkg/family/hierarchy"
	fio "github.com/matzehuels/famtree/pkg/io"
	"github.com/matzehuels/famtree/pkg/observability"
	"github.com/matzehuels/famtree/pkg/render/nodelink"
	"github.com/matzehuels/famtree/pkg/render/text"
	"github.com/matzehuels/famtree/pkg/storage"
)

// Mutation names passed to [observability.EditorHooks.OnMutation].
const (
	OpAddMember      = "add_member"
	OpDeleteMember   = "delete_member"
	OpAddRelation    = "add_relation"
	OpDeleteRelation = "delete_relation"
)

// Reload sources passed to [observability.EditorHooks.OnReload].
const (
	SourceStorage  = "storage"
	SourceFile     = "file"
	SourceSnapshot = "snapshot"
)

// Editor is a tree plus the store it persists to.
type Editor struct {
	mu      sync.Mutex
	tree    *family.Tree
	store   storage.Store
	backend string
	logger  *log.Logger

	// fingerprint of the snapshot last loaded from or saved to the store
	saved string
}

// Open loads the stored snapshot into a new Editor. An absent snapshot
// starts an empty tree. A snapshot that cannot be parsed is logged and
// also starts an empty tree; the next mutation overwrites it. Only a
// backend failure is returned as an error.
//
// A nil logger discards log output.
func Open(ctx context.Context, store storage.Store, logger *log.Logger) (*Editor, error) {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	e := &Editor{
		tree:    family.New(),
		store:   store,
		backend: storage.Describe(store),
		logger:  logger,
	}

	data, ok, err := e.load(ctx)
	if err != nil {
		return nil, err
	}
	if !ok {
		logger.Debug("no stored snapshot", "backend", e.backend)
		return e, nil
	}

	tree, err := fio.Unmarshal(data)
	observability.Editor().OnReload(ctx, SourceStorage, treeLen(tree), err)
	if err != nil {
		logger.Warn("stored snapshot unreadable, starting empty", "backend", e.backend, "error", err)
		return e, nil
	}
	e.tree = tree
	e.saved = storage.Fingerprint(data)
	logger.Debug("loaded snapshot", "backend", e.backend, "members", tree.Len())
	return e, nil
}

// Close closes the underlying store.
func (e *Editor) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.store.Close()
}

// Backend returns the storage backend name.
func (e *Editor) Backend() string { return e.backend }

// =============================================================================
// Mutations
// =============================================================================

// AddMember adds a member and returns a copy of it.
// gender must be one of [family.Genders].
func (e *Editor) AddMember(ctx context.Context, name, gender string) (family.Member, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	g, ok := family.ParseGender(gender)
	if !ok {
		err := apperrors.New(apperrors.ErrCodeInvalidInput, "unknown gender %q", gender)
		e.record(ctx, OpAddMember, err)
		return family.Member{}, err
	}
	prev := e.tree.Clone()
	m, err := e.tree.AddMember(name, g)
	if err != nil {
		e.record(ctx, OpAddMember, err)
		return family.Member{}, err
	}
	if err := e.commit(ctx, OpAddMember, prev); err != nil {
		return family.Member{}, err
	}
	e.logger.Info("member added", "id", m.ID, "name", m.Name)
	return clone(m), nil
}

// DeleteMember removes a member and every edge pointing at it.
func (e *Editor) DeleteMember(ctx context.Context, id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	prev := e.tree.Clone()
	if err := e.tree.DeleteMember(id); err != nil {
		e.record(ctx, OpDeleteMember, err)
		return err
	}
	if err := e.commit(ctx, OpDeleteMember, prev); err != nil {
		return err
	}
	e.logger.Info("member deleted", "id", id)
	return nil
}

// AddRelation adds the edge from -> to. Spouse edges are mirrored.
func (e *Editor) AddRelation(ctx context.Context, from, to string, kind family.Kind) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	prev := e.tree.Clone()
	if err := e.tree.AddRelation(from, to, kind); err != nil {
		e.record(ctx, OpAddRelation, err)
		return err
	}
	if err := e.commit(ctx, OpAddRelation, prev); err != nil {
		return err
	}
	e.logger.Info("relationship added", "from", from, "type", kind, "to", to)
	return nil
}

// DeleteRelation removes the edge from -> to and its spouse mirror.
// Removing an edge that does not exist is a no-op; the only error is a
// storage failure.
func (e *Editor) DeleteRelation(ctx context.Context, from string, kind family.Kind, to string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	prev := e.tree.Clone()
	e.tree.DeleteRelation(from, kind, to)
	return e.commit(ctx, OpDeleteRelation, prev)
}

// =============================================================================
// Whole-tree replacement
// =============================================================================

// Refresh reloads the tree from the store. An absent snapshot leaves the
// tree as is. An unreadable snapshot is logged, leaves the tree as is, and
// is returned.
func (e *Editor) Refresh(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	data, ok, err := e.load(ctx)
	if err != nil || !ok {
		return err
	}
	fp := storage.Fingerprint(data)
	if fp == e.saved {
		return nil
	}

	tree, err := fio.Unmarshal(data)
	observability.Editor().OnReload(ctx, SourceStorage, treeLen(tree), err)
	if err != nil {
		e.logger.Error("refresh failed, keeping current tree", "backend", e.backend, "error", err)
		return err
	}
	e.tree = tree
	e.saved = fp
	e.logger.Info("tree refreshed", "backend", e.backend, "members", tree.Len())
	return nil
}

// LoadFile replaces the tree with the snapshot file at path and persists it.
// On any error the current tree is kept.
func (e *Editor) LoadFile(ctx context.Context, path string) error {
	tree, err := fio.ImportJSON(path)
	if err == nil {
		e.logger.Debug("read snapshot file", "path", path)
	}
	return e.replace(ctx, SourceFile, tree, err)
}

// LoadSnapshot replaces the tree with the given snapshot text and persists it.
// On any error the current tree is kept.
func (e *Editor) LoadSnapshot(ctx context.Context, data []byte) error {
	tree, err := fio.Unmarshal(data)
	return e.replace(ctx, SourceSnapshot, tree, err)
}

func (e *Editor) replace(ctx context.Context, source string, tree *family.Tree, err error) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	observability.Editor().OnReload(ctx, source, treeLen(tree), err)
	if err != nil {
		return err
	}
	prev := e.tree
	e.tree = tree
	if err := e.persist(ctx); err != nil {
		e.tree = prev
		e.logger.Warn("tree not replaced", "source", source, "error", err)
		return err
	}
	e.logger.Info("tree replaced", "source", source, "members", tree.Len())
	return nil
}

// SaveFile writes a timestamped backup of the tree into dir and returns its
// path. An empty tree is rejected.
func (e *Editor) SaveFile(dir string, now time.Time) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	path, err := fio.WriteBackup(dir, e.tree, now)
	if err != nil {
		return "", err
	}
	e.logger.Info("backup written", "path", path, "members", e.tree.Len())
	return path, nil
}

// =============================================================================
// Views
// =============================================================================

// Snapshot returns the current snapshot text.
func (e *Editor) Snapshot() ([]byte, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return fio.Marshal(e.tree)
}

// JSON returns the current snapshot text as a string.
func (e *Editor) JSON() (string, error) {
	data, err := e.Snapshot()
	return string(data), err
}

// Len returns the number of members.
func (e *Editor) Len() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tree.Len()
}

// Member returns a copy of the member with the given id.
func (e *Editor) Member(id string) (family.Member, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	m, ok := e.tree.Member(id)
	if !ok {
		return family.Member{}, false
	}
	return clone(m), true
}

// Members returns copies of all members sorted by name.
func (e *Editor) Members() []family.Member {
	e.mu.Lock()
	defer e.mu.Unlock()
	sorted := text.SortByName(e.tree.Members())
	out := make([]family.Member, len(sorted))
	for i, m := range sorted {
		out[i] = clone(m)
	}
	return out
}

// Relationships returns every edge whose target exists, grouped by owner
// in member order.
func (e *Editor) Relationships() []family.Link {
	e.mu.Lock()
	defer e.mu.Unlock()
	var links []family.Link
	for _, g := range text.Relationships(e.tree) {
		for _, edge := range g.Edges {
			links = append(links, family.Link{From: g.Member.ID, Kind: edge.Kind, To: edge.Target.ID})
		}
	}
	return links
}

// MemberList renders the sorted member list.
func (e *Editor) MemberList() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return text.MemberList(e.tree)
}

// RelationshipList renders the grouped relationship list.
func (e *Editor) RelationshipList() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return text.RelationshipList(e.tree)
}

// Hierarchy renders the indented tree from every root. A cycle of
// father/mother edges is reported as GRAPH_CYCLE.
func (e *Editor) Hierarchy() (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := hierarchy.Validate(e.tree); err != nil {
		return "", err
	}
	return hierarchy.Render(e.tree), nil
}

// HierarchyFrom renders the subtree below the member with the given id.
func (e *Editor) HierarchyFrom(id string) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := hierarchy.Validate(e.tree); err != nil {
		return "", err
	}
	return hierarchy.RenderFrom(e.tree, id)
}

// DOT returns the Graphviz source for the whole family.
func (e *Editor) DOT(opts nodelink.Options) string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return nodelink.ToDOT(e.tree, opts)
}

// =============================================================================
// Persistence
// =============================================================================

// load reads the stored snapshot and reports it to the storage hooks.
func (e *Editor) load(ctx context.Context) ([]byte, bool, error) {
	start := time.Now()
	data, ok, err := e.store.Load(ctx)
	observability.Storage().OnLoad(ctx, e.backend, ok, len(data), time.Since(start), err)
	if err != nil {
		e.logger.Error("load snapshot", "backend", e.backend, "error", err)
	}
	return data, ok, err
}

// persist writes the current tree unless the stored copy is identical.
// Callers hold e.mu.
func (e *Editor) persist(ctx context.Context) error {
	data, err := fio.Marshal(e.tree)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrCodeInternal, err, "encode snapshot")
	}
	fp := storage.Fingerprint(data)
	if fp == e.saved {
		observability.Storage().OnSkip(ctx, e.backend)
		return nil
	}

	start := time.Now()
	err = e.store.Save(ctx, data)
	observability.Storage().OnSave(ctx, e.backend, len(data), time.Since(start), err)
	if err != nil {
		e.logger.Error("save snapshot", "backend", e.backend, "error", err)
		return err
	}
	e.saved = fp
	e.logger.Debug("snapshot saved", "backend", e.backend, "bytes", len(data))
	return nil
}

// commit persists a mutation and records it. When the save fails the tree
// is restored to prev. Callers hold e.mu.
func (e *Editor) commit(ctx context.Context, op string, prev *family.Tree) error {
	err := e.persist(ctx)
	if err != nil {
		e.tree = prev
		e.logger.Warn("change rolled back", "op", op, "error", err)
	}
	e.record(ctx, op, err)
	return err
}

func (e *Editor) record(ctx context.Context, op string, err error) {
	observability.Editor().OnMutation(ctx, op, err)
	if err != nil && apperrors.IsWarning(err) {
		e.logger.Warn(apperrors.UserMessage(err), "op", op)
	}
}

func clone(m *family.Member) family.Member {
	c := *m
	c.Relations = slices.Clone(m.Relations)
	return c
}

func treeLen(t *family.Tree) int {
	if t == nil {
		return 0
	}
	return t.Len()
}
