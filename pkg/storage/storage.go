// Package storage persists family-tree snapshots.
//
// A [Store] holds exactly one snapshot document (the JSON text produced by
// pkg/io) under a fixed key. Load reports whether a snapshot exists; an
// absent snapshot is not an error. Backends:
//   - memory: process-local, for tests and throwaway sessions
//   - file: a single JSON file on disk (the default for the CLI)
//   - redis: a string key in Redis
//   - mongo: a document in a MongoDB collection
//   - sqlite: a row in an embedded SQLite database
//
// Use [Open] to construct a backend from [Options].
package storage

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	apperrors "github.com/matzehuels/famtree/pkg/errors"
)

// DefaultKey is the snapshot key used when none is configured.
const DefaultKey = "familyTree"

// Backend names accepted by [Open].
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendMongo  = "mongo"
	BackendSQLite = "sqlite"
)

// Store loads and saves the snapshot text.
type Store interface {
	// Load returns the stored snapshot and true, or nil and false when
	// nothing has been stored yet.
	Load(ctx context.Context) ([]byte, bool, error)

	// Save replaces the stored snapshot.
	Save(ctx context.Context, data []byte) error

	// Close releases connections held by the backend.
	Close() error
}

// Options selects and configures a backend.
type Options struct {
	Backend string // One of the Backend* constants; empty means file
	Key     string // Snapshot key for redis, mongo and sqlite

	Path string // File backend: snapshot path

	RedisURL string // Redis backend: redis://[:password@]host:port/db

	MongoURI        string // Mongo backend: connection string
	MongoDatabase   string
	MongoCollection string

	SQLitePath string // SQLite backend: database file
}

// Open constructs the backend named by opts.Backend.
func Open(ctx context.Context, opts Options) (Store, error) {
	key := opts.Key
	if key == "" {
		key = DefaultKey
	}

	switch opts.Backend {
	case BackendMemory:
		return NewMemoryStore(), nil
	case BackendFile, "":
		if opts.Path == "" {
			return nil, apperrors.New(apperrors.ErrCodeInvalidInput, "file backend needs a path")
		}
		return NewFileStore(opts.Path)
	case BackendRedis:
		return NewRedisStore(ctx, opts.RedisURL, key)
	case BackendMongo:
		return NewMongoStore(ctx, opts.MongoURI, opts.MongoDatabase, opts.MongoCollection, key)
	case BackendSQLite:
		return NewSQLiteStore(ctx, opts.SQLitePath, key)
	default:
		return nil, apperrors.New(apperrors.ErrCodeUnsupported, "unknown storage backend %q", opts.Backend)
	}
}

// Fingerprint computes a SHA-256 hash of a snapshot.
// Returns the full 64-character hex string.
func Fingerprint(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

// storageError wraps a backend failure with the STORAGE_ERROR code.
func storageError(err error, format string, args ...any) error {
	return apperrors.Wrap(apperrors.ErrCodeStorage, err, "%s", fmt.Sprintf(format, args...))
}

// Describe returns the backend name of s, as used in [Options.Backend].
func Describe(s Store) string {
	switch s.(type) {
	case *MemoryStore:
		return BackendMemory
	case *FileStore:
		return BackendFile
	case *RedisStore:
		return BackendRedis
	case *MongoStore:
		return BackendMongo
	case *SQLiteStore:
		return BackendSQLite
	}
	return "custom"
}
