// Package io provides JSON import and export for family trees.
//
// # Overview
//
// A snapshot is the complete serialized state of a [family.Tree]: every
// member and every relationship edge. It is the only persisted unit; the
// storage backends in pkg/storage and the backup files written here all hold
// the same document.
//
// # JSON Format
//
// The format has one required top-level array:
//
//	{
//	  "members": [
//	    {
//	      "id": "p1",
//	      "name": "Alice",
//	      "gender": "female",
//	      "relations": [
//	        {"type": "spouse", "target": "p2"}
//	      ]
//	    },
//	    {
//	      "id": "p2",
//	      "name": "Bob",
//	      "gender": "male",
//	      "relations": [
//	        {"type": "spouse", "target": "p1"}
//	      ]
//	    }
//	  ]
//	}
//
// Member order is display order. Relationship types outside the fixed
// vocabulary are preserved verbatim.
//
// # Import
//
// Use [Unmarshal] for in-memory text, [ReadJSON] for any io.Reader, or
// [ImportJSON] for a file path. A document that is not JSON, has no
// "members" array, or has wrong-typed member fields fails with an
// INVALID_FORMAT error and no tree is returned. On success the id counter is
// recomputed from the numeric suffixes of the loaded ids.
//
// # Export
//
// Use [Marshal], [WriteJSON] or [ExportJSON]. [WriteBackup] writes a
// timestamped copy named by [BackupName] into a directory:
//
//	path, err := io.WriteBackup("backups", tree, time.Now())
//	// backups/family_tree_2025-03-14_09-26-53.json
//
// Round trip: Unmarshal(Marshal(t)) yields the same members, ids, and edges.
package io
