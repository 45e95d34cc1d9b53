package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
)

type StoreDriver string

const (
	DriverSQLite StoreDriver = "sqlite"
	DriverMongo  StoreDriver = "mongo"
)

type Config struct {
	Database   DatabaseConfig   `toml:"database"`
	Board      BoardConfig      `toml:"board"`
	TaskFields TaskFieldsConfig `toml:"task_fields"`
	Confirm    ConfirmConfig    `toml:"confirm"`
	Identity   IdentityConfig   `toml:"identity"`
	Logging    LoggingConfig    `toml:"logging"`
}

type DatabaseConfig struct {
	Driver StoreDriver `toml:"driver"`
	Path   string      `toml:"path"` // sqlite file
	URI    string      `toml:"uri"`  // mongo connection string
	Name   string      `toml:"name"` // mongo database name
}

type BoardConfig struct {
	Categories   []string `toml:"categories"`
	ShowGreeting bool     `toml:"show_greeting"`
	MaxAvatars   int      `toml:"max_avatars"`
}

type TaskFieldsConfig struct {
	ShowPriority    bool `toml:"show_priority"`
	ShowDueDate     bool `toml:"show_due_date"`
	ShowDescription bool `toml:"show_description"`
}

type ConfirmConfig struct {
	DeleteTitle   string `toml:"delete_title"`
	DeleteMessage string `toml:"delete_message"`
	ConfirmLabel  string `toml:"confirm_label"`
	CancelLabel   string `toml:"cancel_label"`
}

type IdentityConfig struct {
	Name string `toml:"name"`
}

type LoggingConfig struct {
	Level      string `toml:"level"`
	File       string `toml:"file"`
	MaxSizeMB  int    `toml:"max_size_mb"`
	MaxBackups int    `toml:"max_backups"`
}

func Default(dbPath string) Config {
	return Config{
		Database: DatabaseConfig{
			Driver: DriverSQLite,
			Path:   dbPath,
			Name:   "tavla",
		},
		Board: BoardConfig{
			Categories:   []string{"Technical Task", "User Story"},
			ShowGreeting: true,
			MaxAvatars:   4,
		},
		TaskFields: TaskFieldsConfig{
			ShowPriority:    true,
			ShowDueDate:     true,
			ShowDescription: true,
		},
		Confirm: ConfirmConfig{
			DeleteTitle:   "Delete task",
			DeleteMessage: "Are you sure you want to delete this task?",
			ConfirmLabel:  "Delete",
			CancelLabel:   "Cancel",
		},
		Identity: IdentityConfig{},
		Logging: LoggingConfig{
			Level:      "info",
			MaxSizeMB:  5,
			MaxBackups: 2,
		},
	}
}

func Load(path string, defaults Config) (Config, error) {
	cfg := defaults
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if len(content) == 0 {
		return cfg, nil
	}

	if err := toml.Unmarshal(content, &cfg); err != nil {
		return Config{}, fmt.Errorf("decode toml: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c Config) Validate() error {
	switch c.Database.Driver {
	case DriverSQLite:
		if strings.TrimSpace(c.Database.Path) == "" {
			return errors.New("database.path is required for the sqlite driver")
		}
	case DriverMongo:
		if strings.TrimSpace(c.Database.URI) == "" {
			return errors.New("database.uri is required for the mongo driver")
		}
		if strings.TrimSpace(c.Database.Name) == "" {
			return errors.New("database.name is required for the mongo driver")
		}
	default:
		return fmt.Errorf("invalid database.driver: %q", c.Database.Driver)
	}

	if len(c.Board.Categories) == 0 {
		return errors.New("board.categories must include at least one category")
	}
	seen := map[string]struct{}{}
	for idx, category := range c.Board.Categories {
		category = strings.TrimSpace(category)
		if category == "" {
			return fmt.Errorf("board.categories[%d] is empty", idx)
		}
		key := strings.ToLower(category)
		if _, ok := seen[key]; ok {
			return fmt.Errorf("board.categories[%d] is duplicated: %s", idx, category)
		}
		seen[key] = struct{}{}
	}
	if c.Board.MaxAvatars < 1 {
		return errors.New("board.max_avatars must be >= 1")
	}

	switch strings.TrimSpace(strings.ToLower(c.Logging.Level)) {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid logging.level: %q", c.Logging.Level)
	}
	if c.Logging.MaxSizeMB < 0 || c.Logging.MaxBackups < 0 {
		return errors.New("logging rotation settings must be >= 0")
	}

	return nil
}

func EnsureConfigDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
