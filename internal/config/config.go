// Package config resolves runtime settings for the client and the stub backend.
// Precedence, lowest first: defaults, YAML file, environment, flags.
package config

import (
	"errors"
	"flag"
	"fmt"
	"net/url"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/0xcro3dile/polit/internal/adapters/queryclient"
	"github.com/0xcro3dile/polit/internal/adapters/uploader"
)

// Endpoint defaults come from the adapters that own them.
const (
	DefaultUploadURL = uploader.DefaultURL
	DefaultQueryURL  = queryclient.DefaultURL
	DefaultStubAddr  = ":8000"
)

type Config struct {
	UploadURL string `yaml:"upload_url"`
	QueryURL  string `yaml:"query_url"`
	// DropDir is watched for dropped files. Empty disables the drop folder.
	DropDir  string `yaml:"drop_dir"`
	LogLevel string `yaml:"log_level"`
	// LogFile receives log records. Empty means stderr.
	LogFile string `yaml:"log_file"`
	NoColor bool   `yaml:"no_color"`
}

// StubConfig configures the development backend.
type StubConfig struct {
	Addr     string
	LogLevel string
	// OllamaURL enables generated answers. Empty means extractive answers only.
	OllamaURL   string
	OllamaModel string
}

func defaults() *Config {
	return &Config{
		UploadURL: DefaultUploadURL,
		QueryURL:  DefaultQueryURL,
		LogLevel:  "info",
	}
}

// Load builds the client configuration from args (without the program name).
func Load(args []string) (*Config, error) {
	fs := flag.NewFlagSet("polit", flag.ContinueOnError)

	configPath := fs.String("config", getEnv("POLIT_CONFIG", ""), "Path to a YAML config file")
	uploadURL := fs.String("upload-url", "", "Upload endpoint URL")
	queryURL := fs.String("query-url", "", "Query endpoint URL")
	dropDir := fs.String("drop-dir", "", "Directory watched for dropped files")
	logLevel := fs.String("log-level", "", "Log level (debug, info, warn, error)")
	logFile := fs.String("log-file", "", "Write logs to this file instead of stderr")
	noColor := fs.Bool("no-color", false, "Disable colored output")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parsing flags: %w", err)
	}

	cfg := defaults()
	if *configPath != "" {
		if err := cfg.loadFile(*configPath); err != nil {
			return nil, err
		}
	}

	cfg.UploadURL = getEnv("POLIT_UPLOAD_URL", cfg.UploadURL)
	cfg.QueryURL = getEnv("POLIT_QUERY_URL", cfg.QueryURL)
	cfg.DropDir = getEnv("POLIT_DROP_DIR", cfg.DropDir)
	cfg.LogLevel = getEnv("POLIT_LOG_LEVEL", cfg.LogLevel)
	cfg.LogFile = getEnv("POLIT_LOG_FILE", cfg.LogFile)
	if getEnv("NO_COLOR", "") != "" {
		cfg.NoColor = true
	}

	// Only flags given on the command line override earlier layers.
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "upload-url":
			cfg.UploadURL = *uploadURL
		case "query-url":
			cfg.QueryURL = *queryURL
		case "drop-dir":
			cfg.DropDir = *dropDir
		case "log-level":
			cfg.LogLevel = *logLevel
		case "log-file":
			cfg.LogFile = *logFile
		case "no-color":
			cfg.NoColor = *noColor
		}
	})

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return nil
}

// Validate checks that both endpoints are absolute http(s) URLs.
func (c *Config) Validate() error {
	if err := validateURL("upload url", c.UploadURL); err != nil {
		return err
	}
	if err := validateURL("query url", c.QueryURL); err != nil {
		return err
	}
	if c.DropDir != "" {
		info, err := os.Stat(c.DropDir)
		if err != nil {
			return fmt.Errorf("drop dir: %w", err)
		}
		if !info.IsDir() {
			return fmt.Errorf("drop dir %s is not a directory", c.DropDir)
		}
	}
	return nil
}

func validateURL(name, raw string) error {
	if raw == "" {
		return fmt.Errorf("%s is required", name)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%s %q: scheme must be http or https", name, raw)
	}
	if u.Host == "" {
		return fmt.Errorf("%s %q: missing host", name, raw)
	}
	return nil
}

// LoadStub builds the stub backend configuration.
func LoadStub(args []string) (*StubConfig, error) {
	fs := flag.NewFlagSet("polit-stub", flag.ContinueOnError)

	cfg := &StubConfig{}
	fs.StringVar(&cfg.Addr, "addr", getEnv("POLIT_STUB_ADDR", DefaultStubAddr), "Listen address")
	fs.StringVar(&cfg.LogLevel, "log-level", getEnv("POLIT_LOG_LEVEL", "info"), "Log level")
	fs.StringVar(&cfg.OllamaURL, "ollama-url", getEnv("POLIT_STUB_OLLAMA_URL", ""), "Ollama base URL for generated answers")
	fs.StringVar(&cfg.OllamaModel, "ollama-model", getEnv("POLIT_STUB_OLLAMA_MODEL", ""), "Ollama model name")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parsing flags: %w", err)
	}
	if cfg.Addr == "" {
		return nil, errors.New("listen address is required")
	}
	if cfg.OllamaURL != "" {
		if err := validateURL("ollama url", cfg.OllamaURL); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
