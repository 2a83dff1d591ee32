package foamdict

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config is the file form of the parse and write settings. Key names follow
// the flag names OpenFOAM tooling has long used for these switches.
type Config struct {
	MacroExpansion     bool `yaml:"doMacroExpansion"`
	PreserveComments   bool `yaml:"preserveComments"`
	ListLengthUnparsed int  `yaml:"listLengthUnparsed"`
	NoVectorOrTensor   bool `yaml:"noVectorOrTensor"`
	NoCondense         bool `yaml:"dontCondense"`
	DuplicateCheck     bool `yaml:"duplicateCheck"`
	DuplicateFail      bool `yaml:"duplicateFail"`
	BinaryMode         bool `yaml:"binaryMode"`

	// Body shapes; at most one may be set.
	NoHeader           bool `yaml:"noHeader"`
	NoBody             bool `yaml:"noBody"`
	ListDict           bool `yaml:"listDict"`
	ListDictWithHeader bool `yaml:"listDictWithHeader"`
	BoundaryDict       bool `yaml:"boundaryDict"`

	Write WriteConfig `yaml:"write"`
}

// WriteConfig holds the output settings.
type WriteConfig struct {
	LongListThreshold int    `yaml:"longListOutputThreshold"`
	Indent            string `yaml:"indent"`
	SortBoundary      bool   `yaml:"sortBoundary"`
	Backup            bool   `yaml:"backup"`
}

// DefaultConfig returns the settings matching DefaultOptions and
// DefaultGeneratorOptions.
func DefaultConfig() *Config {
	gen := DefaultGeneratorOptions()
	return &Config{
		PreserveComments: true,
		Write: WriteConfig{
			LongListThreshold: gen.LongListThreshold,
			Indent:            gen.Indent,
		},
	}
}

// LoadConfig loads configuration from a YAML file. A missing file yields
// the defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	return ParseConfig(data)
}

// ParseConfig decodes YAML on top of the defaults.
func ParseConfig(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

// Save writes the configuration as YAML.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// Shape returns the selected body shape. Selecting more than one is an
// error.
func (c *Config) Shape() (BodyShape, error) {
	shape := ShapeFull
	n := 0
	for _, s := range []struct {
		on    bool
		shape BodyShape
	}{
		{c.NoHeader, ShapeHeaderless},
		{c.NoBody, ShapeHeaderOnly},
		{c.ListDict, ShapeList},
		{c.ListDictWithHeader, ShapeListWithHeader},
		{c.BoundaryDict, ShapeBoundary},
	} {
		if s.on {
			shape = s.shape
			n++
		}
	}
	if n > 1 {
		return ShapeFull, newSemanticError("only one start symbol can be specified", ErrShapeConflict, Token{})
	}
	return shape, nil
}

// Options converts the configuration to parser options.
func (c *Config) Options() (Options, error) {
	shape, err := c.Shape()
	if err != nil {
		return Options{}, err
	}
	return Options{
		MacroExpansion:   c.MacroExpansion,
		PreserveComments: c.PreserveComments,
		RawListThreshold: c.ListLengthUnparsed,
		NoVectorOrTensor: c.NoVectorOrTensor,
		NoCondense:       c.NoCondense,
		DuplicateCheck:   c.DuplicateCheck || c.DuplicateFail,
		DuplicateFail:    c.DuplicateFail,
		BinaryMode:       c.BinaryMode,
		Shape:            shape,
	}, nil
}

// GeneratorOptions converts the write section to generator options.
func (c *Config) GeneratorOptions() GeneratorOptions {
	gen := DefaultGeneratorOptions()
	if c.Write.LongListThreshold > 0 {
		gen.LongListThreshold = c.Write.LongListThreshold
	}
	if c.Write.Indent != "" {
		gen.Indent = c.Write.Indent
	}
	gen.SortBoundary = c.Write.SortBoundary
	return gen
}

// WriteOptions converts the write section to file write options.
func (c *Config) WriteOptions() WriteOptions {
	return WriteOptions{Backup: c.Write.Backup, Generator: c.GeneratorOptions()}
}
