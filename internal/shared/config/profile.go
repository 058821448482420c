package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Profile is the optional TOML file read by the CLI.
//
//	api_base = "https://audit.example.com"
//	currency = "USD"
//	date_order = "day_first"
//	token = "..."
//
//	[poll]
//	interval = "2.5s"
//	max_attempts = 120
//	timeout = "20m"
type Profile struct {
	APIBase   string      `toml:"api_base"`
	Currency  string      `toml:"currency"`
	DateOrder string      `toml:"date_order"`
	Token     string      `toml:"token"`
	ThemeFile string      `toml:"theme_file"`
	Poll      PollProfile `toml:"poll"`
}

// PollProfile overrides status polling limits.
type PollProfile struct {
	Interval    string `toml:"interval"`
	MaxAttempts int    `toml:"max_attempts"`
	Timeout     string `toml:"timeout"`
}

// LoadProfile parses a TOML profile. A missing file yields an empty profile.
func LoadProfile(path string) (Profile, error) {
	if strings.TrimSpace(path) == "" {
		return Profile{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Profile{}, nil
		}
		return Profile{}, fmt.Errorf("failed to read profile '%s': %w", path, err)
	}
	var p Profile
	if err := toml.Unmarshal(data, &p); err != nil {
		return Profile{}, fmt.Errorf("failed to parse TOML: %w", err)
	}
	return p, nil
}

// Apply overlays non-empty profile values on cfg.
func (p Profile) Apply(cfg Config) (Config, error) {
	if v := strings.TrimSpace(p.APIBase); v != "" {
		cfg.APIBase = strings.TrimRight(v, "/")
	}
	if v := strings.TrimSpace(p.Currency); v != "" {
		cfg.DefaultCurrency = strings.ToUpper(v)
	}
	if v := strings.TrimSpace(p.DateOrder); v != "" {
		cfg.DateOrder = normalizeDateOrder(v)
	}
	if v := strings.TrimSpace(p.ThemeFile); v != "" {
		cfg.ThemeFile = v
	}
	if v := strings.TrimSpace(p.Poll.Interval); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return cfg, fmt.Errorf("poll.interval: %w", err)
		}
		cfg.PollInterval = d
	}
	if v := strings.TrimSpace(p.Poll.Timeout); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return cfg, fmt.Errorf("poll.timeout: %w", err)
		}
		cfg.PollTimeout = d
	}
	if p.Poll.MaxAttempts > 0 {
		cfg.PollMaxAttempts = p.Poll.MaxAttempts
	}
	return cfg, nil
}
