// Package config loads the settings shelf needs to reach the library API.
//
// Sources, lowest precedence first:
//
//  1. Defaults (local server, the six library tables).
//  2. An optional YAML file (--config), decoded strictly.
//  3. An optional .env file (--env-file).
//  4. Process environment: API_KEY, BASE_ID, API_URL, API_TIMEOUT.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Environment keys read through viper.
const (
	EnvAPIKey  = "API_KEY"
	EnvBaseID  = "BASE_ID"
	EnvBaseURL = "API_URL"
	EnvTimeout = "API_TIMEOUT"
)

// Table names of the personal library.
const (
	TableBooks      = "BOOKS"
	TableAuthors    = "AUTHORS"
	TableEditions   = "EDITIONS"
	TablePublishers = "PUBLISHERS"
	TableArtworks   = "ARTWORKS"
	TableReviews    = "REVIEWS"
)

// Config holds everything needed to query the library API.
type Config struct {
	// BaseURL is the API root, e.g. http://127.0.0.1:8080.
	BaseURL string `yaml:"base_url" validate:"required,url"`

	// APIKey is sent as the xc-token header.
	APIKey string `yaml:"api_key" validate:"required"`

	// BaseID identifies the library base. Informational; table IDs are
	// already unique.
	BaseID string `yaml:"base_id"`

	// Timeout bounds each HTTP request.
	Timeout time.Duration `yaml:"timeout" validate:"gt=0"`

	// Tables maps upper-case table names to API table IDs.
	Tables map[string]string `yaml:"tables" validate:"required,min=1,dive,keys,required,endkeys,required"`

	// Relations names the link fields used to walk between tables.
	Relations Relations `yaml:"relations"`
}

// Relations names the fields that link records across tables.
type Relations struct {
	// BookAuthors is the many-to-many field on BOOKS whose entries carry an
	// "Authors" link.
	BookAuthors string `yaml:"book_authors" validate:"required"`

	// BookLink is the field on EDITIONS (and ARTWORKS, REVIEWS) that links
	// to a book.
	BookLink string `yaml:"book_link" validate:"required"`
}

// Default returns the built-in configuration. APIKey is empty; it must come
// from the environment or a config file.
func Default() *Config {
	return &Config{
		BaseURL: "http://127.0.0.1:8080",
		Timeout: 10 * time.Second,
		Tables: map[string]string{
			TableBooks:      "mth1bd75romp8p3",
			TableAuthors:    "mgd51sp0b93cu0y",
			TableEditions:   "mdgeonaqlm8fjxd",
			TablePublishers: "mqg3ii2ioil1bld",
			TableArtworks:   "mp3s5cruo63kxvi",
			TableReviews:    "mjr2am3o9mlpyo1",
		},
		Relations: Relations{
			BookAuthors: "nc_7ok3___nc_m2m_Books_Authors",
			BookLink:    "Books",
		},
	}
}

// LoadOptions selects the files Load reads. Empty paths are skipped.
type LoadOptions struct {
	ConfigFile string
	EnvFile    string
}

// Load builds a Config from defaults, the optional files and the
// environment, then validates it.
func Load(opts LoadOptions) (*Config, error) {
	cfg := Default()

	if opts.ConfigFile != "" {
		if err := cfg.mergeFile(opts.ConfigFile); err != nil {
			return nil, err
		}
	}

	if err := cfg.mergeEnv(opts.EnvFile); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// mergeFile overlays a YAML file onto cfg. Unknown keys are rejected to
// catch typos like "table:" vs "tables:".
func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	var file Config
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&file); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if file.BaseURL != "" {
		c.BaseURL = file.BaseURL
	}
	if file.APIKey != "" {
		c.APIKey = file.APIKey
	}
	if file.BaseID != "" {
		c.BaseID = file.BaseID
	}
	if file.Timeout != 0 {
		c.Timeout = file.Timeout
	}
	if len(file.Tables) > 0 {
		c.Tables = make(map[string]string, len(file.Tables))
		for name, id := range file.Tables {
			c.Tables[strings.ToUpper(name)] = id
		}
	}
	if file.Relations.BookAuthors != "" {
		c.Relations.BookAuthors = file.Relations.BookAuthors
	}
	if file.Relations.BookLink != "" {
		c.Relations.BookLink = file.Relations.BookLink
	}
	return nil
}

// mergeEnv overlays the .env file (if present) and the process
// environment. The environment wins over the .env file.
func (c *Config) mergeEnv(envFile string) error {
	v := viper.New()

	if envFile != "" {
		v.SetConfigFile(envFile)
		v.SetConfigType("env")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("failed to read env file %s: %w", envFile, err)
			}
		}
	}
	v.AutomaticEnv()

	if s := v.GetString(EnvAPIKey); s != "" {
		c.APIKey = s
	}
	if s := v.GetString(EnvBaseID); s != "" {
		c.BaseID = s
	}
	if s := v.GetString(EnvBaseURL); s != "" {
		c.BaseURL = s
	}
	if v.IsSet(EnvTimeout) {
		raw := v.GetString(EnvTimeout)
		d, err := time.ParseDuration(raw)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvTimeout, raw, err)
		}
		c.Timeout = d
	}
	return nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the configuration is usable.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("invalid config: %s failed %q check", fe.Namespace(), fe.Tag())
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// TableNames returns the configured table names, sorted.
func (c *Config) TableNames() []string {
	names := make([]string, 0, len(c.Tables))
	for name := range c.Tables {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// ResolveTable maps a user-supplied table name (any case) to its canonical
// upper-case name.
func (c *Config) ResolveTable(name string) (string, error) {
	upper := strings.ToUpper(strings.TrimSpace(name))
	if _, ok := c.Tables[upper]; ok {
		return upper, nil
	}
	return "", &UnknownTableError{Name: name, Valid: c.TableNames()}
}

// TableID returns the API identifier for a table name (any case).
func (c *Config) TableID(name string) (string, error) {
	canonical, err := c.ResolveTable(name)
	if err != nil {
		return "", err
	}
	return c.Tables[canonical], nil
}

// UnknownTableError reports a table name that is not configured.
type UnknownTableError struct {
	Name  string
	Valid []string
}

func (e *UnknownTableError) Error() string {
	return fmt.Sprintf("unknown table %q (available: %s)", e.Name, strings.Join(e.Valid, ", "))
}
