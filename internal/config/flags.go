package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"
)

// Flags is the vcgen.yaml configuration. It is built once at startup and
// passed down; nothing mutates it afterwards.
type Flags struct {
	// RequireTermination makes a while loop without a decreasing clause a
	// fatal error. When false the termination obligations are omitted.
	RequireTermination bool `yaml:"require_termination"`

	// KeepTrivialVCs keeps obviously true confirms as VCs.
	KeepTrivialVCs bool `yaml:"keep_trivial_vcs,omitempty"`

	// SimplifyAssumes substitutes assumed equalities "v = e" into the VCs
	// instead of adding them as antecedents.
	SimplifyAssumes bool `yaml:"simplify_assumes,omitempty"`

	// Workers bounds how many procedures are processed concurrently.
	// Defaults to GOMAXPROCS.
	Workers int `yaml:"workers,omitempty"`

	// LogLevel is a logrus level name ("info", "debug", ...).
	LogLevel string `yaml:"log_level,omitempty"`

	// Store is the path of the sqlite database runs are recorded in.
	// Empty disables persistence.
	Store string `yaml:"store,omitempty"`

	// Color is "auto", "always" or "never".
	Color string `yaml:"color,omitempty"`

	// Listen is the address "vcgen serve" binds to.
	Listen string `yaml:"listen,omitempty"`
}

// DefaultFlags returns the configuration used when no vcgen.yaml exists.
func DefaultFlags() *Flags {
	f := &Flags{RequireTermination: true}
	f.setDefaults()
	return f
}

// LoadConfig reads and parses a vcgen.yaml file.
func LoadConfig(path string) (*Flags, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	return ParseConfig(data, path)
}

// ParseConfig parses vcgen.yaml content from bytes.
// The path argument is used only for error messages.
func ParseConfig(data []byte, path string) (*Flags, error) {
	// require_termination defaults to true, so start from it rather than
	// the zero value.
	cfg := Flags{RequireTermination: true}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if err := cfg.validate(path); err != nil {
		return nil, err
	}
	cfg.setDefaults()
	return &cfg, nil
}

// FindConfig searches for vcgen.yaml starting from dir and walking up
// to parent directories. Returns an empty path and nil error if none exists.
func FindConfig(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving directory: %w", err)
	}

	for {
		for _, name := range ConfigFileNames {
			candidate := filepath.Join(dir, name)
			if _, err := os.Stat(candidate); err == nil {
				return candidate, nil
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}
		dir = parent
	}
}

func (f *Flags) validate(path string) error {
	if f.Workers < 0 {
		return fmt.Errorf("%s: workers must not be negative, got %d", path, f.Workers)
	}
	switch f.Color {
	case "", "auto", "always", "never":
	default:
		return fmt.Errorf("%s: color must be auto, always or never, got %q", path, f.Color)
	}
	return nil
}

func (f *Flags) setDefaults() {
	if f.Workers == 0 {
		f.Workers = runtime.GOMAXPROCS(0)
	}
	if f.LogLevel == "" {
		f.LogLevel = "warning"
	}
	if f.Color == "" {
		f.Color = "auto"
	}
	if f.Listen == "" {
		f.Listen = "127.0.0.1:7431"
	}
}
