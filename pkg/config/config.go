// Package config loads famtree settings from a TOML file.
//
// The file lives at $XDG_CONFIG_HOME/famtree/config.toml (falling back to
// ~/.config/famtree/config.toml). Every key is optional:
//
//	[storage]
//	backend = "sqlite"            # file | memory | redis | mongo | sqlite
//	path = "~/.local/share/famtree/tree.json"
//	key = "familyTree"
//	redis_url = "redis://localhost:6379/0"
//	mongo_uri = "mongodb://localhost:27017"
//	mongo_database = "famtree"
//	mongo_collection = "snapshots"
//	sqlite_path = "~/.local/share/famtree/famtree.db"
//
//	[server]
//	addr = ":8080"
//
//	[log]
//	level = "info"                # debug | info | warn | error
//	file = ""                     # rotate logs into this file instead of stderr
//	max_size_mb = 10
//	max_backups = 3
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	apperrors "github.com/matzehuels/famtree/pkg/errors"
	"github.com/matzehuels/famtree/pkg/storage"
)

// AppName names the config and data directories.
const AppName = "famtree"

// Config is the decoded config file.
type Config struct {
	Storage Storage `toml:"storage"`
	Server  Server  `toml:"server"`
	Log     Log     `toml:"log"`
}

// Storage selects and configures the snapshot backend.
type Storage struct {
	Backend         string `toml:"backend"`
	Path            string `toml:"path"`
	Key             string `toml:"key"`
	RedisURL        string `toml:"redis_url"`
	MongoURI        string `toml:"mongo_uri"`
	MongoDatabase   string `toml:"mongo_database"`
	MongoCollection string `toml:"mongo_collection"`
	SQLitePath      string `toml:"sqlite_path"`
}

// Server configures `famtree serve`.
type Server struct {
	Addr string `toml:"addr"`
}

// Log configures logging.
type Log struct {
	Level      string `toml:"level"`
	File       string `toml:"file"`
	MaxSizeMB  int    `toml:"max_size_mb"`
	MaxBackups int    `toml:"max_backups"`
}

// Default returns the settings used when no file exists.
func Default() Config {
	data := DataDir()
	return Config{
		Storage: Storage{
			Backend:    storage.BackendFile,
			Path:       filepath.Join(data, "tree.json"),
			Key:        storage.DefaultKey,
			SQLitePath: filepath.Join(data, "famtree.db"),
		},
		Server: Server{Addr: ":8080"},
		Log:    Log{Level: "info", MaxSizeMB: 10, MaxBackups: 3},
	}
}

// Load reads the file at path over the defaults. A missing file is not an
// error. Unknown keys are rejected so typos surface early.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	md, err := toml.DecodeFile(path, &cfg)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return Config{}, apperrors.Wrap(apperrors.ErrCodeInvalidFormat, err, "parse config %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, apperrors.New(apperrors.ErrCodeInvalidFormat,
			"unknown config keys in %s: %s", path, strings.Join(keys, ", "))
	}

	cfg.Storage.Path = expandHome(cfg.Storage.Path)
	cfg.Storage.SQLitePath = expandHome(cfg.Storage.SQLitePath)
	cfg.Log.File = expandHome(cfg.Log.File)
	return cfg, nil
}

// StorageOptions converts the [storage] section for [storage.Open].
func (c Config) StorageOptions() storage.Options {
	return storage.Options{
		Backend:         c.Storage.Backend,
		Key:             c.Storage.Key,
		Path:            c.Storage.Path,
		RedisURL:        c.Storage.RedisURL,
		MongoURI:        c.Storage.MongoURI,
		MongoDatabase:   c.Storage.MongoDatabase,
		MongoCollection: c.Storage.MongoCollection,
		SQLitePath:      c.Storage.SQLitePath,
	}
}

// Path returns the default config file location using XDG standard
// (~/.config/famtree/config.toml).
func Path() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, AppName, "config.toml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", AppName+".toml")
	}
	return filepath.Join(home, ".config", AppName, "config.toml")
}

// DataDir returns the default data directory using XDG standard
// (~/.local/share/famtree/).
func DataDir() string {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return filepath.Join(dir, AppName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".local", "share", AppName)
}

// Write encodes cfg as TOML to path, creating the directory if needed.
func Write(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return nil
}

func expandHome(p string) string {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~"))
}
