package config

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"gopkg.in/yaml.v3"

	"github.com/roach88/pend/internal/journal"
	"github.com/roach88/pend/internal/store"
)

//go:embed schema.cue
var schemaCUE string

// Backend names.
const (
	BackendFile   = "file"
	BackendMemory = "memory"
)

// ErrInvalid is returned for configuration that fails the schema.
var ErrInvalid = errors.New("invalid config")

// Config is the resolved configuration for one pend invocation.
type Config struct {
	Backend  string `yaml:"backend" json:"backend"`
	Root     string `yaml:"root" json:"root"`
	Journal  string `yaml:"journal" json:"journal"`
	LogLevel string `yaml:"log_level" json:"log_level"`
	Format   string `yaml:"format" json:"format"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Backend:  BackendFile,
		Root:     ".pend",
		LogLevel: "info",
		Format:   "text",
	}
}

// Load reads the YAML file at path over Default. An empty path returns
// Default unchanged; a named file that does not exist is an error.
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config file: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse validates data against the schema and decodes it over Default.
func Parse(data []byte) (Config, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return Config{}, fmt.Errorf("%w: failed to parse YAML: %v", ErrInvalid, err)
	}
	if raw == nil {
		raw = map[string]any{}
	}
	if err := validate(raw); err != nil {
		return Config{}, err
	}

	cfg := Default()
	if len(raw) == 0 {
		return cfg, nil
	}
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return cfg, nil
}

// Validate checks a fully resolved configuration, typically after
// command-line overrides have been applied.
func (c Config) Validate() error {
	if err := validate(c); err != nil {
		return err
	}
	if c.Backend == BackendFile && c.Root == "" {
		return fmt.Errorf("%w: root is required for the file backend", ErrInvalid)
	}
	return nil
}

// validate unifies v with #Config. Structs are encoded through their
// json tags, so Config and raw YAML maps share one schema.
func validate(v any) error {
	ctx := cuecontext.New()
	schema := ctx.CompileString(schemaCUE)
	if err := schema.Err(); err != nil {
		return fmt.Errorf("compiling config schema: %w", err)
	}

	def := schema.LookupPath(cue.ParsePath("#Config"))
	value := def.Unify(ctx.Encode(v))
	if err := value.Validate(cue.Concrete(true)); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return nil
}

// Level maps LogLevel to a slog level. Unknown names fall back to Info.
func (c Config) Level() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}

// OpenStore builds the configured backend.
func (c Config) OpenStore(logger *slog.Logger) (store.Store, error) {
	switch c.Backend {
	case BackendMemory:
		return store.NewMemoryStore(store.WithMemoryLogger(logger)), nil
	case BackendFile, "":
		return store.NewFileStore(c.Root, store.WithLogger(logger))
	default:
		return nil, fmt.Errorf("%w: unknown backend %q", ErrInvalid, c.Backend)
	}
}

// OpenJournal opens the configured journal. It returns nil, nil when no
// journal path is set.
func (c Config) OpenJournal() (*journal.Journal, error) {
	if c.Journal == "" {
		return nil, nil
	}
	return journal.Open(c.Journal)
}
