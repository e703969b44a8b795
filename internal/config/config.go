package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/a3tai/contract-diff/internal/diff"
	"github.com/a3tai/contract-diff/internal/pdf"
	"github.com/a3tai/contract-diff/internal/report"
)

const (
	// Mode constants
	ModeCLI    = "cli"
	ModeStdio  = "stdio"
	ModeServer = "server"

	// Default values
	DefaultPort        = 8080
	DefaultHost        = "127.0.0.1"
	DefaultLogLevel    = "info"
	DefaultMaxFileSize = 100 * 1024 * 1024 // 100MB

	// Directory permissions
	DefaultDirPerm = 0o750

	// EnvPrefix prefixes every environment variable, e.g. CONTRACT_DIFF_MODE.
	EnvPrefix = "CONTRACT_DIFF"
)

// ErrVersionRequested is returned by LoadFromFlags when --version is given.
var ErrVersionRequested = errors.New("version requested")

// Config holds all configuration for contract-diff
type Config struct {
	// Run mode: "cli", "stdio" or "server"
	Mode string
	Host string
	Port int

	// Document directory for the MCP tools and the web UI
	Directory string

	// Comparison inputs and output (cli mode)
	Old       string
	New       string
	Output    string
	Format    string
	Strategy  string
	RulesFile string
	Backend   string

	// Application configuration
	Version     string
	ServerName  string
	LogLevel    string
	MaxFileSize int64 // Maximum input file size in bytes
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	currentDir, err := os.Getwd()
	if err != nil {
		currentDir = "."
	}

	return &Config{
		Mode:        ModeCLI,
		Host:        DefaultHost,
		Port:        DefaultPort,
		Directory:   currentDir,
		Format:      string(report.FormatHTML),
		Strategy:    string(diff.StrategyStructured),
		Backend:     string(pdf.BackendLedongthuc),
		Version:     "1.0.0",
		ServerName:  "contract-diff",
		LogLevel:    DefaultLogLevel,
		MaxFileSize: DefaultMaxFileSize,
	}
}

// LoadFromFlags parses command line flags, the environment and an optional
// .env file in the working directory, and returns a validated configuration.
func LoadFromFlags() (*Config, error) {
	cfg := DefaultConfig()

	if err := loadDotEnv(".env"); err != nil {
		return nil, err
	}
	setupViperEnvironment(cfg)
	defineCommandLineFlags(cfg)
	bindFlagsToViper()
	setupUsageMessage()

	if versionRequested(os.Args[1:]) {
		return nil, ErrVersionRequested
	}

	if err := pflag.CommandLine.Parse(os.Args[1:]); err != nil {
		return nil, err
	}

	populateConfigFromViper(cfg)

	if cfg.Directory != "" {
		if expandedPath, err := filepath.Abs(cfg.Directory); err == nil {
			cfg.Directory = expandedPath
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// loadDotEnv loads path into the environment when it exists. Variables
// already set take precedence.
func loadDotEnv(path string) error {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// flagKeys lists every option; each is a flag, a viper key and an
// environment variable.
var flagKeys = []string{
	"mode", "host", "port", "dir",
	"old", "new", "output", "format", "strategy", "rules", "backend",
	"loglevel", "maxfilesize",
}

func setupViperEnvironment(cfg *Config) {
	viper.SetEnvPrefix(EnvPrefix)
	viper.AutomaticEnv()

	viper.SetDefault("mode", cfg.Mode)
	viper.SetDefault("host", cfg.Host)
	viper.SetDefault("port", cfg.Port)
	viper.SetDefault("dir", cfg.Directory)
	viper.SetDefault("format", cfg.Format)
	viper.SetDefault("strategy", cfg.Strategy)
	viper.SetDefault("backend", cfg.Backend)
	viper.SetDefault("loglevel", cfg.LogLevel)
	viper.SetDefault("maxfilesize", cfg.MaxFileSize)
}

func defineCommandLineFlags(cfg *Config) {
	pflag.String("mode", cfg.Mode, "Run mode: 'cli' compares two files, 'stdio' serves MCP over standard I/O, "+
		"'server' serves the web UI and MCP over SSE")
	pflag.String("host", cfg.Host, "Server host address (server mode only)")
	pflag.Int("port", cfg.Port, "Server port (server mode only)")
	pflag.String("dir", cfg.Directory, "Directory containing contract documents (stdio and server modes)")
	pflag.String("old", "", "Old contract (PDF or text file)")
	pflag.String("new", "", "New contract (PDF or text file)")
	pflag.StringP("output", "o", "", "Write the report to this file instead of stdout")
	pflag.String("format", cfg.Format, "Report format: "+formatList())
	pflag.String("strategy", cfg.Strategy, "Comparison strategy: 'structured' or 'lines'")
	pflag.String("rules", "", "YAML or JSON rules file replacing the default recognition rules")
	pflag.String("backend", cfg.Backend, "PDF text backend: 'ledongthuc' or 'rscpdf'")
	pflag.String("loglevel", cfg.LogLevel, "Log level (debug, info, warn, error)")
	pflag.Int64("maxfilesize", cfg.MaxFileSize, "Maximum input file size in bytes")
}

func bindFlagsToViper() {
	for _, key := range flagKeys {
		_ = viper.BindPFlag(key, pflag.Lookup(key))
	}
}

func formatList() string {
	names := make([]string, 0, len(report.Formats))
	for _, f := range report.Formats {
		names = append(names, string(f))
	}
	return strings.Join(names, ", ")
}

func setupUsageMessage() {
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage of %s:\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\ncontract-diff - compare the payout terms of two contract versions\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		pflag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s --old=v1.pdf --new=v2.pdf                 # HTML report on stdout\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --old=v1.pdf --new=v2.pdf --format=xlsx -o diff.xlsx\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --mode=stdio --dir=/path/to/contracts     # MCP over stdio\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --mode=server --host=0.0.0.0 --port=8081  # web UI and MCP SSE\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nEnvironment Variables (also read from ./.env):\n")
		for _, key := range flagKeys {
			fmt.Fprintf(os.Stderr, "  %s_%s\n", EnvPrefix, strings.ToUpper(key))
		}
	}
}

func versionRequested(args []string) bool {
	for _, arg := range args {
		if arg == "-version" || arg == "--version" || arg == "-v" {
			return true
		}
	}
	return false
}

func populateConfigFromViper(cfg *Config) {
	cfg.Mode = viper.GetString("mode")
	cfg.Host = viper.GetString("host")
	cfg.Port = viper.GetInt("port")
	cfg.Directory = viper.GetString("dir")
	cfg.Old = viper.GetString("old")
	cfg.New = viper.GetString("new")
	cfg.Output = viper.GetString("output")
	cfg.Format = viper.GetString("format")
	cfg.Strategy = viper.GetString("strategy")
	cfg.RulesFile = viper.GetString("rules")
	cfg.Backend = viper.GetString("backend")
	cfg.LogLevel = viper.GetString("loglevel")
	cfg.MaxFileSize = viper.GetInt64("maxfilesize")
}

// Validate checks the configuration and normalizes the format, strategy and
// backend names.
func (c *Config) Validate() error {
	if c.Mode != ModeCLI && c.Mode != ModeStdio && c.Mode != ModeServer {
		return errors.New("mode must be one of 'cli', 'stdio' or 'server'")
	}

	if c.Mode == ModeServer && (c.Port < 1 || c.Port > 65535) {
		return errors.New("port must be between 1 and 65535")
	}

	if c.Mode != ModeCLI {
		if c.Directory == "" {
			return errors.New("document directory cannot be empty")
		}
		// Create the document directory if it doesn't exist
		if _, err := os.Stat(c.Directory); os.IsNotExist(err) {
			if err := os.MkdirAll(c.Directory, DefaultDirPerm); err != nil {
				return fmt.Errorf("cannot create document directory %s: %w", c.Directory, err)
			}
		} else if err != nil {
			return fmt.Errorf("cannot access document directory %s: %w", c.Directory, err)
		}
	}

	if c.MaxFileSize <= 0 {
		return errors.New("maximum file size must be positive")
	}

	format, err := report.ParseFormat(c.Format)
	if err != nil {
		return err
	}
	c.Format = string(format)

	strategy, err := diff.ParseStrategy(c.Strategy)
	if err != nil {
		return err
	}
	c.Strategy = string(strategy)

	backend, err := pdf.ParseBackend(c.Backend)
	if err != nil {
		return err
	}
	c.Backend = string(backend)

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s (must be one of: debug, info, warn, error)", c.LogLevel)
	}

	return nil
}

// Address returns the server address as host:port
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// IsDebug returns true if debug logging is enabled
func (c *Config) IsDebug() bool {
	return c.LogLevel == "debug"
}

// String returns a string representation of the configuration
func (c *Config) String() string {
	return fmt.Sprintf("Config{Mode: %s, Host: %s, Port: %d, Directory: %s, Format: %s, Strategy: %s, "+
		"Backend: %s, LogLevel: %s, MaxFileSize: %d}",
		c.Mode, c.Host, c.Port, c.Directory, c.Format, c.Strategy, c.Backend, c.LogLevel, c.MaxFileSize)
}

// IsCLIMode returns true for a one-shot comparison run
func (c *Config) IsCLIMode() bool {
	return c.Mode == ModeCLI
}

// IsServerMode returns true if the server is running in HTTP server mode
func (c *Config) IsServerMode() bool {
	return c.Mode == ModeServer
}

// IsStdioMode returns true if the server is running in stdio mode
func (c *Config) IsStdioMode() bool {
	return c.Mode == ModeStdio
}
