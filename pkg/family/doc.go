// Package family provides the member registry and relationship store of a
// family tree.
//
// # Overview
//
// A [Tree] holds an ordered list of [Member] records. Each member owns an
// ordered list of directed [Relation] edges pointing at other members by id.
// Insertion order is display order and carries no other meaning.
//
//	t := family.New()
//	alice, _ := t.AddMember("Alice", family.GenderFemale)
//	bob, _ := t.AddMember("Bob", family.GenderMale)
//	_ = t.AddRelation(bob.ID, alice.ID, family.KindMother)
//
// # Identifiers
//
// Members receive sequential ids of the form "p1", "p2", ... The counter is
// part of the tree and is recomputed when a snapshot is loaded (see
// [Tree.ResetCounter]).
//
// # Symmetric Kinds
//
// Some relationship kinds are symmetric. Adding an edge of a symmetric kind
// from A to B also inserts B to A, and deleting either direction deletes both.
// Only [KindSpouse] is symmetric; parent and sibling kinds are directional.
//
// # Errors
//
// Operations either complete or leave the tree untouched. Failures are
// *errors.Error values from pkg/errors whose Cause is one of the sentinel
// errors below, so both errors.Is(err, family.ErrSelfRelation) and
// apperrors.Is(err, apperrors.ErrCodeInvalidInput) work.
//
// # Concurrency
//
// A Tree is not safe for concurrent use without external synchronization.
package family
