package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/RowanDark/inop/internal/cipher"
	"github.com/RowanDark/inop/internal/observability/tracing"
	"github.com/RowanDark/inop/internal/wheels"
)

// FileName is the configuration file looked up in the working directory.
const FileName = "inop.yml"

// Config captures the inop configuration resolved from defaults, an optional
// file, and environment overrides.
type Config struct {
	Session     cipher.Settings `yaml:"session"`
	Pipeline    cipher.Flags    `yaml:"pipeline"`
	Server      ServerConfig    `yaml:"server"`
	Log         LogConfig       `yaml:"log"`
	Tracing     tracing.Config  `yaml:"tracing"`
	ProfilesDir string          `yaml:"profiles_dir,omitempty"`
}

// ServerConfig controls the listeners of inopd.
type ServerConfig struct {
	HTTPAddr        string        `yaml:"http_addr"`
	GRPCAddr        string        `yaml:"grpc_addr"`
	MaxConns        int           `yaml:"max_conns"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// LogConfig selects the log level and handler format.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the built-in configuration: the classic three rotor
// machine with the pipeline defaults. Operators are expected to replace the
// session with one from Generate.
func Default() Config {
	return Config{
		Session: cipher.Settings{
			Suite:     "Legacy",
			Rotors:    []string{"I", "II", "III"},
			Reflector: "B",
			RingSet:   []int{1, 1, 1},
			MasterKey: "AAAA",
		},
		Pipeline: cipher.DefaultFlags(),
		Server: ServerConfig{
			HTTPAddr:        "127.0.0.1:8713",
			GRPCAddr:        "127.0.0.1:8714",
			MaxConns:        64,
			ShutdownTimeout: 5 * time.Second,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Tracing: tracing.Config{
			ServiceName: "inopd",
		},
	}
}

// Load resolves the configuration using defaults, a configuration file and
// environment overrides. With an empty path ./inop.yml is used when present;
// an explicit path must exist. Environment variables prefixed with INOP_
// have the highest precedence.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		wd, err := os.Getwd()
		if err != nil {
			return Config{}, fmt.Errorf("determine working directory: %w", err)
		}
		path = filepath.Join(wd, FileName)
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := applyFileConfig(&cfg, data); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	case !explicit && errors.Is(err, fs.ErrNotExist):
	default:
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}

	applyEnvOverrides(&cfg)
	return cfg, nil
}

func applyFileConfig(cfg *Config, data []byte) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	cfg.Session.MasterKey = strings.TrimSpace(cfg.Session.MasterKey)
	cfg.Session.Suite = strings.TrimSpace(cfg.Session.Suite)
	return nil
}

func applyEnvOverrides(cfg *Config) {
	if val := strings.TrimSpace(os.Getenv("INOP_SUITE")); val != "" {
		cfg.Session.Suite = val
	}
	if val := strings.TrimSpace(os.Getenv("INOP_MASTER_KEY")); val != "" {
		cfg.Session.MasterKey = val
	}
	if val := strings.TrimSpace(os.Getenv("INOP_DOUBLE_PASS")); val != "" {
		if parsed, err := strconv.ParseBool(val); err == nil {
			cfg.Pipeline.DoublePass = parsed
		}
	}
	if val := strings.TrimSpace(os.Getenv("INOP_PADDING")); val != "" {
		if parsed, err := strconv.ParseBool(val); err == nil {
			cfg.Pipeline.Padding = parsed
		}
	}
	if val := strings.TrimSpace(os.Getenv("INOP_STEP_REFLECTOR")); val != "" {
		if parsed, err := strconv.ParseBool(val); err == nil {
			cfg.Pipeline.StepReflector = parsed
		}
	}
	if val := strings.TrimSpace(os.Getenv("INOP_BLOCK")); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			cfg.Pipeline.Block = parsed
		}
	}
	if val := strings.TrimSpace(os.Getenv("INOP_HTTP_ADDR")); val != "" {
		cfg.Server.HTTPAddr = val
	}
	if val := strings.TrimSpace(os.Getenv("INOP_GRPC_ADDR")); val != "" {
		cfg.Server.GRPCAddr = val
	}
	if val := strings.TrimSpace(os.Getenv("INOP_MAX_CONNS")); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			cfg.Server.MaxConns = parsed
		}
	}
	if val := strings.TrimSpace(os.Getenv("INOP_LOG_LEVEL")); val != "" {
		cfg.Log.Level = val
	}
	if val := strings.TrimSpace(os.Getenv("INOP_LOG_FORMAT")); val != "" {
		cfg.Log.Format = val
	}
	if val := strings.TrimSpace(os.Getenv("INOP_TRACE_FILE")); val != "" {
		cfg.Tracing.FilePath = val
	}
	if val := strings.TrimSpace(os.Getenv("INOP_TRACE_SAMPLE_RATIO")); val != "" {
		if parsed, err := strconv.ParseFloat(val, 64); err == nil {
			cfg.Tracing.SampleRatio = parsed
		}
	}
	if val := strings.TrimSpace(os.Getenv("INOP_PROFILES_DIR")); val != "" {
		cfg.ProfilesDir = val
	}
}

// Validate checks the session against catalog (nil for the built-in wheels)
// and every other section, reporting all problems at once.
func Validate(cfg Config, catalog *wheels.Catalog) error {
	var errs []error
	if err := cfg.Session.Validate(catalog); err != nil {
		errs = append(errs, err)
	}
	if err := cfg.Pipeline.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("pipeline: %w", err))
	}
	if cfg.Server.MaxConns < 0 {
		errs = append(errs, fmt.Errorf("server: max_conns cannot be negative, got %d", cfg.Server.MaxConns))
	}
	if cfg.Server.ShutdownTimeout < 0 {
		errs = append(errs, fmt.Errorf("server: shutdown_timeout cannot be negative"))
	}
	if _, err := ParseLevel(cfg.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log: %w", err))
	}
	switch strings.ToLower(cfg.Log.Format) {
	case "", "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log: unknown format %q", cfg.Log.Format))
	}
	if err := cfg.Tracing.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("tracing: %w", err))
	}
	return errors.Join(errs...)
}

// ParseLevel maps a level name to a slog level. The empty string is info.
func ParseLevel(name string) (slog.Level, error) {
	var level slog.Level
	if strings.TrimSpace(name) == "" {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(strings.TrimSpace(name))); err != nil {
		return 0, fmt.Errorf("unknown level %q", name)
	}
	return level, nil
}

// Save writes cfg as YAML. The file holds the master key and is created
// owner-readable only.
func Save(path string, cfg Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write config %s: %w", path, err)
	}
	return nil
}
