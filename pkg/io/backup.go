package io

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	apperrors "github.com/matzehuels/famtree/pkg/errors"
	"github.com/matzehuels/famtree/pkg/family"
)

// backupLayout renders the timestamp part of a backup filename.
const backupLayout = "2006-01-02_15-04-05"

// BackupName returns the suggested filename for a backup taken at t,
// e.g. "family_tree_2025-03-14_09-26-53.json".
func BackupName(t time.Time) string {
	return "family_tree_" + t.Format(backupLayout) + ".json"
}

// WriteBackup exports the tree into dir under [BackupName](now) and returns
// the written path. An empty tree is rejected with INVALID_INPUT and nothing
// is written. dir is created if it does not exist.
func WriteBackup(dir string, t *family.Tree, now time.Time) (string, error) {
	if t.Len() == 0 {
		return "", apperrors.New(apperrors.ErrCodeInvalidInput, "no data to save")
	}
	name := BackupName(now)
	if err := apperrors.ValidateFilename(name); err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create %s: %w", dir, err)
	}
	path := filepath.Join(dir, name)
	if err := ExportJSON(t, path); err != nil {
		return "", err
	}
	return path, nil
}
