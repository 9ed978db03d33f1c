package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	apperrors "github.com/matzehuels/famtree/pkg/errors"
	"github.com/matzehuels/famtree/pkg/storage"
)

func TestPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	if got := Path(); got != "/tmp/xdg/famtree/config.toml" {
		t.Errorf("Path() = %s", got)
	}

	t.Setenv("XDG_CONFIG_HOME", "")
	home, _ := os.UserHomeDir()
	got := Path()
	if !strings.HasPrefix(got, home) || !strings.HasSuffix(got, filepath.Join(".config", AppName, "config.toml")) {
		t.Errorf("Path() = %s, want under %s/.config", got, home)
	}
}

func TestDataDir(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/tmp/data")
	if got := DataDir(); got != "/tmp/data/famtree" {
		t.Errorf("DataDir() = %s", got)
	}
}

func TestDefault(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/tmp/data")
	cfg := Default()
	if cfg.Storage.Backend != storage.BackendFile {
		t.Errorf("backend = %s", cfg.Storage.Backend)
	}
	if cfg.Storage.Path != "/tmp/data/famtree/tree.json" {
		t.Errorf("path = %s", cfg.Storage.Path)
	}
	if cfg.Storage.Key != storage.DefaultKey {
		t.Errorf("key = %s", cfg.Storage.Key)
	}
	if cfg.Server.Addr != ":8080" || cfg.Log.Level != "info" {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestLoad(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/tmp/data")
	dir := t.TempDir()

	tests := []struct {
		name    string
		content string
		check   func(*testing.T, Config)
		wantErr bool
	}{
		{
			name: "partial override keeps defaults",
			content: `
[storage]
backend = "redis"
redis_url = "redis://localhost:6379/1"

[log]
level = "debug"
`,
			check: func(t *testing.T, c Config) {
				opts := c.StorageOptions()
				if opts.Backend != storage.BackendRedis || opts.RedisURL != "redis://localhost:6379/1" {
					t.Errorf("storage = %+v", opts)
				}
				if opts.Key != storage.DefaultKey {
					t.Errorf("key default lost: %q", opts.Key)
				}
				if c.Log.Level != "debug" || c.Server.Addr != ":8080" {
					t.Errorf("cfg = %+v", c)
				}
			},
		},
		{
			name: "home expansion",
			content: `
[storage]
sqlite_path = "~/fam.db"
`,
			check: func(t *testing.T, c Config) {
				home, _ := os.UserHomeDir()
				if c.Storage.SQLitePath != filepath.Join(home, "fam.db") {
					t.Errorf("sqlite_path = %s", c.Storage.SQLitePath)
				}
			},
		},
		{name: "unknown key", content: "[storage]\nbackedn = \"file\"\n", wantErr: true},
		{name: "bad syntax", content: "[storage\n", wantErr: true},
	}

	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, "c"+string(rune('0'+i))+".toml")
			if err := os.WriteFile(path, []byte(tt.content), 0644); err != nil {
				t.Fatal(err)
			}
			cfg, err := Load(path)
			if tt.wantErr {
				if !apperrors.Is(err, apperrors.ErrCodeInvalidFormat) {
					t.Fatalf("Load error = %v, want INVALID_FORMAT", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Load error: %v", err)
			}
			tt.check(t, cfg)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Storage.Backend != storage.BackendFile {
		t.Errorf("missing file should yield defaults, got %+v", cfg.Storage)
	}
}

func TestWriteRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.toml")
	cfg := Default()
	cfg.Storage.Backend = storage.BackendSQLite
	cfg.Server.Addr = "127.0.0.1:9000"

	if err := Write(path, cfg); err != nil {
		t.Fatal(err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if got != cfg {
		t.Errorf("round trip = %+v, want %+v", got, cfg)
	}
}
