package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/dhamidi/packrat/format"
	"github.com/dhamidi/packrat/parser"
	"github.com/dhamidi/packrat/project"
)

type parsed struct {
	format.Result
	state *parser.State
}

type parseRun struct {
	project *project.Project
	enc     format.Encoder
	opts    []parser.Option
	trace   bool
	stats   bool
	stdout  io.Writer
	stderr  io.Writer
}

func newParseCmd() *cobra.Command {
	var flags projectFlags
	var trace bool
	var stats bool
	var watch time.Duration

	cmd := &cobra.Command{
		Use:   "parse [file or glob...]",
		Short: "Parse source files and print their trees or failures",
		Long: `Parse every file given on the command line, or every file selected by the
project's include patterns, and print the result in the chosen format.
The command fails when any file does not match the grammar.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := flags.load(cmd)
			if err != nil {
				return err
			}
			// Compile the grammar once, before the workers share it.
			if _, err := p.Start(); err != nil {
				return err
			}
			files, err := sourceFiles(p, args)
			if err != nil {
				return err
			}
			enc, err := format.New(p.Config.Format, cmd.OutOrStdout(), p.Config.ContextLines)
			if err != nil {
				return err
			}

			run := &parseRun{
				project: p,
				enc:     enc,
				trace:   trace,
				stats:   stats,
				stdout:  cmd.OutOrStdout(),
				stderr:  cmd.ErrOrStderr(),
			}
			if trace {
				run.opts = append(run.opts, parser.WithPathTracking())
			}

			if watch <= 0 {
				failed, err := run.parseAll(files)
				if err != nil {
					return err
				}
				if failed > 0 {
					return fmt.Errorf("%d of %d files failed to parse", failed, len(files))
				}
				return nil
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			if _, err := run.parseAll(files); err != nil {
				return err
			}
			w := project.NewWatcher(func() ([]string, error) { return sourceFiles(p, args) }, watch)
			return w.Run(ctx, func(changed, removed []string) {
				if _, err := run.parseAll(changed); err != nil {
					fmt.Fprintln(run.stderr, err)
				}
			})
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVar(&trace, "trace", false, "print the rules active at each failure")
	cmd.Flags().BoolVar(&stats, "stats", false, "print memoization statistics")
	cmd.Flags().DurationVarP(&watch, "watch", "w", 0, "keep running and reparse changed files, polling at this interval")

	return cmd
}

// parseAll parses files in parallel and encodes the results in order.
func (r *parseRun) parseAll(files []string) (failed int, err error) {
	results := make([]*parsed, len(files))
	var g errgroup.Group
	g.SetLimit(r.project.Config.Jobs)
	for i, file := range files {
		g.Go(func() error {
			results[i] = parseFile(r.project, file, r.opts)
			return nil
		})
	}
	_ = g.Wait()

	for _, res := range results {
		if res.Err != nil {
			failed++
		}
		if r.project.Config.Format == "tree" && len(results) > 1 {
			fmt.Fprintf(r.stdout, "==> %s <==\n", res.URI)
		}
		if err := r.enc.Encode(&res.Result); err != nil {
			return failed, fmt.Errorf("encode %s: %w", res.URI, err)
		}
		if res.state == nil {
			continue
		}
		if r.trace && res.Err != nil {
			fmt.Fprint(r.stderr, parser.RenderPath(res.state))
		}
		if r.stats {
			s := res.state.Stats()
			fmt.Fprintf(r.stderr, "%s: %d tokens, %d rule attempts, %d memo hits, %d negative memo hits\n",
				res.URI, res.state.Len(), s.RuleAttempts, s.MemoHits, s.NegativeMemoHits)
		}
	}
	return failed, nil
}

func parseFile(p *project.Project, file string, opts []parser.Option) *parsed {
	r := &parsed{Result: format.Result{URI: file}}
	src, err := os.ReadFile(file)
	if err != nil {
		r.Err = fmt.Errorf("read source: %w", err)
		return r
	}
	r.state, r.Node, r.Err = p.Parse(file, src, opts...)
	return r
}
