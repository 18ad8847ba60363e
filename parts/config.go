package parts

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/soypat/solid"
	"github.com/soypat/solid/helpers/matter"
	"gopkg.in/yaml.v3"
)

// Config holds the parameters of every part.
type Config struct {
	// Facets is the fragment count written in the OpenSCAD file header
	// for round primitives.
	Facets int `yaml:"facets"`
	// Material names the printing material to compensate for. Empty for none.
	Material string     `yaml:"material"`
	Tray     TrayParams `yaml:"tray"`
	Case     CaseParams `yaml:"case"`
}

// DefaultConfig returns the default parameters of all parts.
func DefaultConfig() Config {
	return Config{
		Facets: solid.DefaultFacets,
		Tray:   DefaultTrayParams(),
		Case:   DefaultCaseParams(),
	}
}

// Validate checks all parameters of cfg.
func (cfg Config) Validate() error {
	var errs []error
	if cfg.Facets < 3 {
		errs = append(errs, fmt.Errorf("facets=%d must be at least 3: %w", cfg.Facets, ErrInvalidParam))
	}
	if _, err := matter.Lookup(cfg.Material); err != nil {
		errs = append(errs, fmt.Errorf("%w: %w", err, ErrInvalidParam))
	}
	errs = append(errs, cfg.Tray.Validate(), cfg.Case.Validate())
	return errors.Join(errs...)
}

// DecodeConfig reads a YAML document from r on top of base and validates
// the result. Fields absent from the document keep the base values.
// Unknown fields are an error.
func DecodeConfig(r io.Reader, base Config) (Config, error) {
	cfg, err := decodeConfig(r, base)
	if err != nil {
		return base, err
	}
	if err := cfg.Validate(); err != nil {
		return base, err
	}
	return cfg, nil
}

func decodeConfig(r io.Reader, base Config) (Config, error) {
	cfg := base
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return base, fmt.Errorf("decoding config: %w", err)
	}
	return cfg, nil
}

// LoadConfig reads the YAML configuration file at path over the default
// configuration and validates it. An empty path returns the default configuration.
func LoadConfig(path string) (Config, error) {
	cfg, err := ReadConfig(path)
	if err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// ReadConfig is like LoadConfig but does not validate the parameters.
func ReadConfig(path string) (Config, error) {
	if path == "" {
		return DefaultConfig(), nil
	}
	fp, err := os.Open(path)
	if err != nil {
		return Config{}, err
	}
	defer fp.Close()
	cfg, err := decodeConfig(fp, DefaultConfig())
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// YAML returns cfg as a YAML document.
func (cfg Config) YAML() ([]byte, error) {
	return yaml.Marshal(cfg)
}
