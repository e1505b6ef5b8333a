// Package config loads invoicer settings from defaults, an optional YAML
// file and the environment, and validates the result against an embedded
// CUE schema.
package config

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"gopkg.in/yaml.v3"
)

//go:embed schema.cue
var schemaCUE string

// Environment variables read by Load.
const (
	EnvConfigPath = "INVOICER_CONFIG"
	EnvDatabase   = "DATABASE_URL"
	EnvLogLevel   = "INVOICER_LOG_LEVEL"
	EnvServerAddr = "INVOICER_SERVER_ADDR"
	EnvOutputDir  = "INVOICER_OUTPUT_DIR"
)

// Config defines invoicer configuration.
type Config struct {
	Database DatabaseConfig `yaml:"database" json:"database"`
	Log      LogConfig      `yaml:"log" json:"log"`
	Server   ServerConfig   `yaml:"server" json:"server"`
	Output   OutputConfig   `yaml:"output" json:"output"`
	Invoice  InvoiceConfig  `yaml:"invoice" json:"invoice"`
}

type DatabaseConfig struct {
	Path string `yaml:"path" json:"path"`
}

type LogConfig struct {
	Level string `yaml:"level" json:"level"`
}

type ServerConfig struct {
	Addr        string   `yaml:"addr" json:"addr"`
	CORSOrigins []string `yaml:"cors_origins" json:"cors_origins"`
}

type OutputConfig struct {
	Dir string `yaml:"dir" json:"dir"`
}

// InvoiceConfig holds the issuer details printed on every invoice.
type InvoiceConfig struct {
	IssuerName       string `yaml:"issuer_name" json:"issuer_name"`
	IssuerAddress    string `yaml:"issuer_address" json:"issuer_address"`
	Currency         string `yaml:"currency" json:"currency"`
	Locale           string `yaml:"locale" json:"locale"`
	PaymentTermsDays int    `yaml:"payment_terms_days" json:"payment_terms_days"`
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		Database: DatabaseConfig{Path: "invoicer.db"},
		Log:      LogConfig{Level: "info"},
		Server:   ServerConfig{Addr: "127.0.0.1:8080", CORSOrigins: []string{}},
		Output:   OutputConfig{Dir: "."},
		Invoice: InvoiceConfig{
			Currency:         "EUR",
			Locale:           "en",
			PaymentTermsDays: 14,
		},
	}
}

// Load reads configuration from an optional YAML file and environment
// variables. path wins over INVOICER_CONFIG; an empty path with no
// variable set means defaults only.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv(EnvConfigPath)
	}
	if path != "" {
		if err := loadFromFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if dbPath := os.Getenv(EnvDatabase); dbPath != "" {
		cfg.Database.Path = dbPath
	}
	if level := os.Getenv(EnvLogLevel); level != "" {
		cfg.Log.Level = level
	}
	if addr := os.Getenv(EnvServerAddr); addr != "" {
		cfg.Server.Addr = addr
	}
	if dir := os.Getenv(EnvOutputDir); dir != "" {
		cfg.Output.Dir = dir
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

// Validate checks the configuration against the embedded CUE schema.
func (c Config) Validate() error {
	if c.Server.CORSOrigins == nil {
		c.Server.CORSOrigins = []string{}
	}

	data, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	ctx := cuecontext.New()
	schema := ctx.CompileString(schemaCUE, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return fmt.Errorf("compile config schema: %w", err)
	}

	value := ctx.CompileBytes(data, cue.Filename("config"))
	if err := value.Err(); err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	unified := schema.LookupPath(cue.ParsePath("#Config")).Unify(value)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("invalid config: %s", cueerrors.Details(err, nil))
	}
	return nil
}
