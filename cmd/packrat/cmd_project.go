package main

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/cobra"

	"github.com/dhamidi/packrat/project"
)

// projectFlags override the configuration file. With --grammar no file is
// needed at all.
type projectFlags struct {
	grammar      string
	start        string
	skip         []string
	ignore       []string
	keywords     []string
	complete     bool
	invalidation string
	contextLines int
	format       string
	jobs         int
}

func (f *projectFlags) register(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVarP(&f.grammar, "grammar", "g", "", "EBNF grammar file (default from .packrat.toml)")
	flags.StringVarP(&f.start, "start", "s", "", "start production")
	flags.StringSliceVar(&f.skip, "skip", nil, "productions to leave out of the tree")
	flags.StringSliceVar(&f.ignore, "ignore", nil, "lexical productions the scanner drops")
	flags.StringSliceVar(&f.keywords, "keywords", nil, "identifiers the built-in lexer marks as keywords")
	flags.BoolVar(&f.complete, "complete", false, "require the start production to consume all input")
	flags.StringVar(&f.invalidation, "invalidation", "", "memo invalidation bound: outpost or end")
	flags.IntVarP(&f.contextLines, "context", "C", 0, "source lines shown around a failure")
	flags.StringVarP(&f.format, "format", "f", "", "output format: tree, line or json")
	flags.IntVarP(&f.jobs, "jobs", "j", 0, "files parsed in parallel")
}

func (f *projectFlags) load(cmd *cobra.Command) (*project.Project, error) {
	var (
		rootDir    string
		configFile string
		cfg        project.Config
	)
	if f.grammar != "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, err
		}
		rootDir = wd
	} else {
		p, err := project.Load()
		if errors.Is(err, project.ErrNoConfig) {
			return nil, fmt.Errorf("%w: pass --grammar and --start or create %s", err, project.ConfigNames[0])
		}
		if err != nil {
			return nil, err
		}
		rootDir, configFile, cfg = p.RootDir, p.ConfigFile, p.Config
	}

	flags := cmd.Flags()
	if f.grammar != "" {
		cfg.Grammar = f.grammar
	}
	if flags.Changed("start") {
		cfg.Start = f.start
	}
	if flags.Changed("skip") {
		cfg.Skip = f.skip
	}
	if flags.Changed("ignore") {
		cfg.Ignore = f.ignore
	}
	if flags.Changed("keywords") {
		cfg.Keywords = f.keywords
	}
	if flags.Changed("complete") {
		cfg.CompleteInput = f.complete
	}
	if flags.Changed("invalidation") {
		cfg.Invalidation = f.invalidation
	}
	if flags.Changed("context") {
		cfg.ContextLines = f.contextLines
	}
	if flags.Changed("format") {
		cfg.Format = f.format
	}
	if flags.Changed("jobs") {
		cfg.Jobs = f.jobs
	}

	p, err := project.New(rootDir, cfg)
	if err != nil {
		return nil, err
	}
	p.ConfigFile = configFile
	return p, nil
}

// sourceFiles resolves command line arguments to files. Arguments that are
// not existing files are globs; without arguments the project's include
// patterns apply.
func sourceFiles(p *project.Project, args []string) ([]string, error) {
	var files []string
	if len(args) == 0 {
		names, err := p.Files()
		if err != nil {
			return nil, err
		}
		for _, name := range names {
			files = append(files, p.Path(name))
		}
		if len(files) == 0 {
			return nil, errors.New("no files given and the include patterns match nothing")
		}
		return files, nil
	}

	for _, arg := range args {
		if info, err := os.Stat(arg); err == nil && !info.IsDir() {
			files = append(files, arg)
			continue
		}
		matches, err := doublestar.FilepathGlob(arg, doublestar.WithFilesOnly())
		if err != nil {
			return nil, fmt.Errorf("glob %s: %w", arg, err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("%s: no such file", arg)
		}
		sort.Strings(matches)
		files = append(files, matches...)
	}
	return files, nil
}

func newProjectCmd() *cobra.Command {
	var flags projectFlags

	cmd := &cobra.Command{
		Use:   "project",
		Short: "Show the effective project configuration",
		Long:  `Display the configuration file, grammar and the files the include patterns select.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := flags.load(cmd)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			config := p.ConfigFile
			if config == "" {
				config = "(none)"
			}
			fmt.Fprintf(out, "Root:         %s\n", p.RootDir)
			fmt.Fprintf(out, "Config:       %s\n", config)
			fmt.Fprintf(out, "Grammar:      %s\n", p.Config.Grammar)
			fmt.Fprintf(out, "Start:        %s\n", p.Config.Start)
			fmt.Fprintf(out, "Skip:         %s\n", strings.Join(p.Config.Skip, ", "))
			fmt.Fprintf(out, "Invalidation: %s\n", p.Config.Invalidation)
			fmt.Fprintf(out, "Format:       %s\n", p.Config.Format)

			if len(p.Config.Include) == 0 {
				return nil
			}
			files, err := p.Files()
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "\nFiles (%d):\n", len(files))
			for _, file := range files {
				fmt.Fprintf(out, "  %s\n", file)
			}
			return nil
		},
	}
	flags.register(cmd)

	return cmd
}
