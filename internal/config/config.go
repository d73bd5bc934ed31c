/*
Package config loads the scraper configuration from a json5 file with an
optional `.local` override next to it.
*/
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"dario.cat/mergo"
	"github.com/titanous/json5"
)

const DefaultPath = "aipsscraper.json5"

type Upload struct {
	Enabled        *bool    `json:"enabled"`
	Command        string   `json:"command"`
	Args           []string `json:"args"`
	Destination    string   `json:"destination"`
	TimeoutSeconds int      `json:"timeoutSeconds"`
}

type Email struct {
	SMTPServer string `json:"smtpServer"`
	SMTPPort   int    `json:"smtpPort"`
	SMTPUser   string `json:"smtpUser"`
	SMTPPass   string `json:"smtpPass"`
	FromEmail  string `json:"fromEmail"`
	ToEmail    string `json:"toEmail"`
}

type Config struct {
	Endpoint       string `json:"endpoint"`
	UserAgent      string `json:"userAgent"`
	TimeoutSeconds int    `json:"timeoutSeconds"`
	BrowserTLS     bool   `json:"browserTLS"`
	OutputDir      string `json:"outputDir"`
	// Timezone decides the date used by --today. Empty means the local zone.
	Timezone string `json:"timezone"`
	Upload   Upload `json:"upload"`
	Email    Email  `json:"email"`
}

func Default() Config {
	enabled := true
	return Config{
		Endpoint:       "https://download.swissmedicinfo.ch/",
		UserAgent:      "Mozilla/5.0 (X11; Linux x86_64; rv:65.0) Gecko/20100101 Firefox/65.0",
		TimeoutSeconds: 300,
		OutputDir:      ".",
		Upload: Upload{
			Enabled:        &enabled,
			Command:        "scp",
			Destination:    "zdavatz@65.109.137.20:/var/www/pillbox.oddb.org/",
			TimeoutSeconds: 120,
		},
		Email: Email{
			SMTPPort: 587,
		},
	}
}

func splitExt(f string) (string, string) {
	for i := len(f) - 1; i >= 0; i-- {
		if f[i] == '.' {
			return f[0:i], f[i+1:]
		}
	}
	return f, ""
}

// ReadConfig reads name and merges <name>.local.<ext> over it, the local
// file winning. It returns os.ErrNotExist if neither file exists.
func ReadConfig[T any](name string) (T, error) {
	var out T
	allNotFound := true

	dirname := filepath.Dir(name)
	prefixname, ext := splitExt(filepath.Base(name))

	defaultFile, err := os.ReadFile(name)
	if err != nil && !os.IsNotExist(err) {
		return out, err
	}
	if len(defaultFile) > 0 {
		if err := json5.Unmarshal(defaultFile, &out); err != nil {
			return out, fmt.Errorf("failed to parse %s: %w", name, err)
		}
		allNotFound = false
	}

	localFilepath := filepath.Join(dirname, fmt.Sprintf("%s.local.%s", prefixname, ext))
	localFile, err := os.ReadFile(localFilepath)
	if err != nil && !os.IsNotExist(err) {
		return out, err
	}
	if len(localFile) > 0 {
		var override T
		if err := json5.Unmarshal(localFile, &override); err != nil {
			return out, fmt.Errorf("failed to parse %s: %w", localFilepath, err)
		}
		if err := mergo.Merge(&out, override, mergo.WithOverride, mergo.WithoutDereference); err != nil {
			return out, err
		}
		slog.Info("merging config with local overrides", "local", localFilepath)
		allNotFound = false
	}

	if allNotFound {
		return out, os.ErrNotExist
	}
	return out, nil
}

// Load reads the config at path and fills every unset field from Default.
// A missing file yields the defaults.
func Load(path string) (Config, error) {
	cfg, err := ReadConfig[Config](path)
	if errors.Is(err, os.ErrNotExist) {
		slog.Debug("no config file, using defaults", "path", path)
		cfg = Config{}
	} else if err != nil {
		return Config{}, err
	}

	// Pointer fields are empty only when nil, so an explicit false survives.
	if err := mergo.Merge(&cfg, Default(), mergo.WithoutDereference); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.Endpoint == "" {
		return errors.New("config: endpoint must not be empty")
	}
	if c.TimeoutSeconds <= 0 {
		return fmt.Errorf("config: timeoutSeconds must be positive, got %d", c.TimeoutSeconds)
	}
	if c.Upload.TimeoutSeconds <= 0 {
		return fmt.Errorf("config: upload.timeoutSeconds must be positive, got %d", c.Upload.TimeoutSeconds)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

func (c Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

func (c Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("config: invalid time zone name '%s': %w", c.Timezone, err)
	}
	return loc, nil
}

func (u Upload) IsEnabled() bool {
	return u.Enabled == nil || *u.Enabled
}

func (u Upload) Timeout() time.Duration {
	return time.Duration(u.TimeoutSeconds) * time.Second
}

// Complete reports whether every field needed to send mail is set.
func (e Email) Complete() bool {
	return e.SMTPServer != "" && e.SMTPUser != "" && e.SMTPPass != "" && e.ToEmail != ""
}
