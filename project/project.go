package project

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/tliron/commonlog"

	"github.com/dhamidi/packrat/ast"
	"github.com/dhamidi/packrat/ebnf/grammar"
	"github.com/dhamidi/packrat/lexer"
	"github.com/dhamidi/packrat/parser"
)

var log = commonlog.GetLogger("packrat.project")

// ConfigNames are the configuration file names looked for, in order.
var ConfigNames = []string{".packrat.toml", ".packrat.yaml", ".packrat.yml"}

// ErrNoConfig is returned by LoadFrom when no configuration file exists in
// the directory or any of its parents.
var ErrNoConfig = errors.New("no packrat configuration found")

// Project is a directory tree of sources parsed with one grammar.
type Project struct {
	RootDir string
	// ConfigFile is empty when the project was created with New.
	ConfigFile string
	Config     Config

	grammar *grammar.Grammar
}

// New creates a project rooted at rootDir without reading a configuration
// file.
func New(rootDir string, cfg Config) (*Project, error) {
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Project{RootDir: rootDir, Config: cfg}, nil
}

// Load looks for a configuration file starting in the current directory.
func Load() (*Project, error) {
	return LoadFrom(".")
}

// LoadFrom looks for a configuration file in dir and then in each parent
// directory. The directory holding the file is the project root.
func LoadFrom(dir string) (*Project, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", dir, err)
	}
	for {
		for _, name := range ConfigNames {
			path := filepath.Join(abs, name)
			if info, err := os.Stat(path); err == nil && !info.IsDir() {
				return LoadFile(path)
			}
		}
		parent := filepath.Dir(abs)
		if parent == abs {
			return nil, fmt.Errorf("%w in %s or its parents", ErrNoConfig, dir)
		}
		abs = parent
	}
}

// LoadFile reads the configuration at path. Its directory is the project
// root.
func LoadFile(path string) (*Project, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg, err := decodeConfig(path, data)
	if err != nil {
		return nil, err
	}
	log.Debugf("loaded %s", path)
	return &Project{RootDir: filepath.Dir(path), ConfigFile: path, Config: cfg}, nil
}

// Path resolves name against the project root.
func (p *Project) Path(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(p.RootDir, name)
}

// Grammar loads and compiles the configured grammar once.
func (p *Project) Grammar() (*grammar.Grammar, error) {
	if p.grammar != nil {
		return p.grammar, nil
	}
	if p.Config.Grammar == "" {
		return nil, errors.New("no grammar configured")
	}
	g, err := grammar.LoadFile(p.Path(p.Config.Grammar), grammar.WithSkipped(p.Config.Skip...))
	if err != nil {
		return nil, err
	}
	p.grammar = g
	return g, nil
}

// Start returns the rule of the configured start production.
func (p *Project) Start() (*parser.Rule, error) {
	g, err := p.Grammar()
	if err != nil {
		return nil, err
	}
	r, ok := g.Rule(p.Config.Start)
	if !ok {
		return nil, fmt.Errorf("start production %q is not defined in %s", p.Config.Start, p.Config.Grammar)
	}
	return r, nil
}

// ParserOptions returns the parser options the configuration asks for,
// followed by extra.
func (p *Project) ParserOptions(extra ...parser.Option) []parser.Option {
	var opts []parser.Option
	if p.Config.CompleteInput {
		opts = append(opts, parser.WithCompleteInput())
	}
	if bound, err := ParseInvalidation(p.Config.Invalidation); err == nil {
		opts = append(opts, parser.WithInvalidation(bound))
	}
	return append(opts, extra...)
}

// Tokenize turns src into tokens. Grammars with lexical productions bring
// their own scanner; all others use the lexer package.
func (p *Project) Tokenize(uri string, src []byte) ([]*ast.Token, error) {
	g, err := p.Grammar()
	if err != nil {
		return nil, err
	}
	if g.HasLexical() {
		return g.Scan(src, uri, grammar.WithIgnored(p.Config.Ignore...)), nil
	}
	return lexer.Lex(string(src), uri, lexer.WithKeywords(p.Config.Keywords...)), nil
}

// Parse tokenizes and parses one source. The State is returned for failed
// parses too, so the caller can render the failure.
func (p *Project) Parse(uri string, src []byte, extra ...parser.Option) (*parser.State, *ast.Node, error) {
	start, err := p.Start()
	if err != nil {
		return nil, nil, err
	}
	tokens, err := p.Tokenize(uri, src)
	if err != nil {
		return nil, nil, err
	}
	return parser.New(start, p.ParserOptions(extra...)...).ParseState(tokens)
}

// Files expands the include patterns below the project root and drops
// every file matching an exclude pattern. The result is sorted and relative
// to the root.
func (p *Project) Files() ([]string, error) {
	return p.Glob(p.Config.Include...)
}

// Glob expands patterns like Files does, using the project's exclude list.
func (p *Project) Glob(patterns ...string) ([]string, error) {
	fsys := os.DirFS(p.RootDir)
	var files []string
	for _, pattern := range patterns {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid pattern %q", pattern)
		}
		matches, err := doublestar.Glob(fsys, pattern, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("glob %s: %w", pattern, err)
		}
		for _, match := range matches {
			excluded, err := p.excluded(match)
			if err != nil {
				return nil, err
			}
			if !excluded && !slices.Contains(files, match) {
				files = append(files, match)
			}
		}
	}
	sort.Strings(files)
	return files, nil
}

func (p *Project) excluded(name string) (bool, error) {
	for _, pattern := range p.Config.Exclude {
		ok, err := doublestar.Match(pattern, name)
		if err != nil {
			return false, fmt.Errorf("exclude %s: %w", pattern, err)
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

// ReadFile reads a file of the project by its root-relative name.
func (p *Project) ReadFile(name string) ([]byte, error) {
	return fs.ReadFile(os.DirFS(p.RootDir), filepath.ToSlash(name))
}
