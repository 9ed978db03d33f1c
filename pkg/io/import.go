package io

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	apperrors "github.com/matzehuels/famtree/pkg/errors"
	"github.com/matzehuels/famtree/pkg/family"
)

// envelope defers decoding of "members" so that a missing or wrong-typed
// field can be told apart from a malformed entry.
type envelope struct {
	Members json.RawMessage `json:"members"`
}

// ReadJSON decodes a snapshot from r into a new tree.
//
// ReadJSON returns an INVALID_FORMAT error if:
//   - The input is not a JSON object
//   - The "members" field is missing, null, or not an array
//   - A member entry has wrong-typed fields
//   - A member has an empty id or two members share an id
//
// The returned tree is independent of r. ReadJSON does not close r.
func ReadJSON(r io.Reader) (*family.Tree, error) {
	var env envelope
	if err := json.NewDecoder(r).Decode(&env); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInvalidFormat, err, "invalid JSON format")
	}

	raw := bytes.TrimSpace(env.Members)
	if len(raw) == 0 || raw[0] != '[' {
		return nil, apperrors.New(apperrors.ErrCodeInvalidFormat, "invalid JSON format: members must be an array")
	}

	var data []member
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeInvalidFormat, err, "invalid JSON format: members")
	}

	members := make([]family.Member, len(data))
	for i, m := range data {
		rels := make([]family.Relation, len(m.Relations))
		for j, r := range m.Relations {
			rels[j] = family.Relation{Kind: family.Kind(r.Type), Target: r.Target}
		}
		members[i] = family.Member{
			ID:        m.ID,
			Name:      m.Name,
			Gender:    family.Gender(m.Gender),
			Relations: rels,
		}
	}
	return family.FromMembers(members)
}

// Unmarshal decodes snapshot text. See [ReadJSON].
func Unmarshal(data []byte) (*family.Tree, error) {
	return ReadJSON(bytes.NewReader(data))
}

// ImportJSON reads a snapshot file at path and returns the decoded tree.
//
// ImportJSON returns the same INVALID_FORMAT errors as [ReadJSON]; failing
// to open the file is reported as a plain wrapped error.
func ImportJSON(path string) (*family.Tree, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadJSON(f)
}
