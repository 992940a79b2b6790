package project

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/dhamidi/packrat/parser"
)

// Config is the content of a .packrat.toml or .packrat.yaml file.
//
//	grammar = "java.ebnf"
//	start = "CompilationUnit"
//	skip = ["Modifier"]
//	keywords = ["class", "package"]
//	include = ["src/**/*.java"]
//	complete_input = true
type Config struct {
	// Grammar is the EBNF file, relative to the project root.
	Grammar string `toml:"grammar" yaml:"grammar"`
	// Start is the production parsing begins with.
	Start string `toml:"start" yaml:"start"`
	// Skip lists productions whose nodes are left out of the tree.
	Skip []string `toml:"skip" yaml:"skip"`
	// Ignore lists lexical productions the scanner drops, like comments.
	Ignore []string `toml:"ignore" yaml:"ignore"`
	// Keywords are passed to the built-in lexer for grammars without
	// lexical productions.
	Keywords []string `toml:"keywords" yaml:"keywords"`

	Include []string `toml:"include" yaml:"include"`
	Exclude []string `toml:"exclude" yaml:"exclude"`

	CompleteInput bool `toml:"complete_input" yaml:"complete_input"`
	// Invalidation is "outpost" or "end".
	Invalidation string `toml:"invalidation" yaml:"invalidation"`
	ContextLines int    `toml:"context_lines" yaml:"context_lines"`
	Format       string `toml:"format" yaml:"format"`
	Jobs         int    `toml:"jobs" yaml:"jobs"`
}

// DefaultConfig returns the configuration used when no file is found.
func DefaultConfig() Config {
	var c Config
	c.applyDefaults()
	return c
}

func (c *Config) applyDefaults() {
	if c.Invalidation == "" {
		c.Invalidation = parser.InvalidateThroughOutpost.String()
	}
	if c.ContextLines <= 0 {
		c.ContextLines = 4
	}
	if c.Format == "" {
		c.Format = "tree"
	}
	if c.Jobs <= 0 {
		c.Jobs = runtime.NumCPU()
	}
}

// Validate reports configuration values that cannot work.
func (c *Config) Validate() error {
	var errs []error
	if _, err := ParseInvalidation(c.Invalidation); err != nil {
		errs = append(errs, err)
	}
	if c.Grammar != "" && c.Start == "" {
		errs = append(errs, errors.New("start is required when a grammar is set"))
	}
	return errors.Join(errs...)
}

// ParseInvalidation maps the configuration spelling of an invalidation
// bound to its value.
func ParseInvalidation(s string) (parser.InvalidationBound, error) {
	for _, b := range []parser.InvalidationBound{parser.InvalidateThroughOutpost, parser.InvalidateThroughEnd} {
		if strings.EqualFold(s, b.String()) {
			return b, nil
		}
	}
	return 0, fmt.Errorf("invalid invalidation bound %q: want outpost or end", s)
}

// decodeConfig parses data according to the extension of path. Unknown keys
// are errors.
func decodeConfig(path string, data []byte) (Config, error) {
	var c Config
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		md, err := toml.Decode(string(data), &c)
		if err != nil {
			return c, fmt.Errorf("decode %s: %w", path, err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return c, fmt.Errorf("decode %s: unknown key %s", path, undecoded[0])
		}
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&c); err != nil && !errors.Is(err, io.EOF) {
			return c, fmt.Errorf("decode %s: %w", path, err)
		}
	default:
		return c, fmt.Errorf("decode %s: unsupported configuration format %q", path, ext)
	}
	c.applyDefaults()
	return c, c.Validate()
}
