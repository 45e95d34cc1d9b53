package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := Default("/tmp/tavla.db")
	if cfg.Database.Driver != DriverSQLite {
		t.Fatalf("unexpected driver %q", cfg.Database.Driver)
	}
	if cfg.Database.Path != "/tmp/tavla.db" {
		t.Fatalf("unexpected db path %q", cfg.Database.Path)
	}
	if len(cfg.Board.Categories) != 2 || cfg.Board.Categories[0] != "Technical Task" {
		t.Fatalf("unexpected categories %v", cfg.Board.Categories)
	}
	if cfg.Board.MaxAvatars != 4 {
		t.Fatalf("unexpected max_avatars %d", cfg.Board.MaxAvatars)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	defaults := Default("/tmp/tavla.db")
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.toml"), defaults)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Database.Path != defaults.Database.Path {
		t.Fatalf("expected default db path, got %q", cfg.Database.Path)
	}
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[database]
driver = "mongo"
uri = "mongodb://localhost:27017"
name = "join"

[board]
categories = ["Technical Task", "User Story", "Bug"]
max_avatars = 3

[identity]
name = "Sofia"

[logging]
level = "debug"
file = "/tmp/tavla.log"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	cfg, err := Load(path, Default("/tmp/default.db"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Database.Driver != DriverMongo || cfg.Database.Name != "join" {
		t.Fatalf("unexpected database config %+v", cfg.Database)
	}
	if len(cfg.Board.Categories) != 3 {
		t.Fatalf("unexpected categories %v", cfg.Board.Categories)
	}
	if cfg.Board.MaxAvatars != 3 {
		t.Fatalf("unexpected max_avatars %d", cfg.Board.MaxAvatars)
	}
	if cfg.Identity.Name != "Sofia" {
		t.Fatalf("unexpected identity %q", cfg.Identity.Name)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.File != "/tmp/tavla.log" {
		t.Fatalf("unexpected logging %+v", cfg.Logging)
	}
}

func TestLoadRejectsInvalidDriver(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[database]
driver = "couch"
path = "/tmp/tavla.db"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	if _, err := Load(path, Default("/tmp/default.db")); err == nil {
		t.Fatal("expected error for invalid driver")
	}
}

func TestLoadRejectsMongoWithoutURI(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[database]
driver = "mongo"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	if _, err := Load(path, Default("/tmp/default.db")); err == nil {
		t.Fatal("expected error for mongo driver without uri")
	}
}

func TestValidateRejectsDuplicateCategories(t *testing.T) {
	cfg := Default("/tmp/tavla.db")
	cfg.Board.Categories = []string{"Bug", "bug"}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for duplicated categories")
	}
}

func TestEnsureConfigDir(t *testing.T) {
	target := filepath.Join(t.TempDir(), "a", "b", "config.toml")
	if err := EnsureConfigDir(target); err != nil {
		t.Fatalf("EnsureConfigDir() error = %v", err)
	}
	if _, err := os.Stat(filepath.Dir(target)); err != nil {
		t.Fatalf("expected dir to exist, stat error %v", err)
	}
}
