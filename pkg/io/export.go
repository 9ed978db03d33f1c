package io

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/matzehuels/famtree/pkg/family"
)

type snapshot struct {
	Members []member `json:"members"`
}

type member struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Gender    string     `json:"gender"`
	Relations []relation `json:"relations"`
}

type relation struct {
	Type   string `json:"type"`
	Target string `json:"target"`
}

func fromTree(t *family.Tree) snapshot {
	members := t.Members()
	out := snapshot{Members: make([]member, len(members))}
	for i, m := range members {
		rels := make([]relation, len(m.Relations))
		for j, r := range m.Relations {
			rels[j] = relation{Type: string(r.Kind), Target: r.Target}
		}
		out.Members[i] = member{
			ID:        m.ID,
			Name:      m.Name,
			Gender:    string(m.Gender),
			Relations: rels,
		}
	}
	return out
}

// WriteJSON encodes the tree as an indented snapshot and writes it to w.
// The output can be re-imported with [ReadJSON] for round-trip processing.
func WriteJSON(t *family.Tree, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(fromTree(t)); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// Marshal returns the snapshot text for t.
func Marshal(t *family.Tree) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteJSON(t, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ExportJSON writes the tree to a JSON file at path. The file is written to
// a temporary name and renamed into place, so path holds either the old
// content or the complete new snapshot.
func ExportJSON(t *family.Tree, path string) error {
	data, err := Marshal(t)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".famtree-export-*.json")
	if err != nil {
		return fmt.Errorf("create temp file for %s: %w", path, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", tmp.Name(), err)
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return fmt.Errorf("chmod %s: %w", tmp.Name(), err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename to %s: %w", path, err)
	}
	return nil
}
