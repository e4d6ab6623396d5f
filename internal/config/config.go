package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

type Config struct {
	ScanRoots     []string `toml:"scan_roots"`     // where exported chat folders live
	PageSize      int      `toml:"page_size"`      // default result limit for search
	DateOrder     string   `toml:"date_order"`     // "dmy" or "mdy" for slash dates
	MeName        string   `toml:"me_name"`        // participant shown as "me"
	SystemPhrases []string `toml:"system_phrases"` // extra system-message patterns
}

func Load() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		ScanRoots: []string{
			filepath.Join(home, "Downloads"),
			filepath.Join(home, "Documents"),
		},
		PageSize:  100,
		DateOrder: "dmy",
	}

	cfgPath := filepath.Join(home, ".config", "wcv", "config.toml")
	if _, err := os.Stat(cfgPath); err == nil {
		if _, err := toml.DecodeFile(cfgPath, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", cfgPath, err)
		}
	}

	// expand ~ in paths
	for i, root := range cfg.ScanRoots {
		cfg.ScanRoots[i] = expandHome(root, home)
	}

	if cfg.PageSize <= 0 {
		cfg.PageSize = 100
	}

	return cfg, nil
}

func expandHome(path, home string) string {
	if len(path) > 1 && path[0] == '~' && path[1] == '/' {
		return filepath.Join(home, path[2:])
	}
	return path
}
