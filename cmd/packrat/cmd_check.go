package main

import (
	"errors"
	"fmt"
	"io"
	"reflect"

	"github.com/spf13/cobra"

	"github.com/dhamidi/packrat/ebnf/grammar"
)

func newCheckCmd() *cobra.Command {
	var startProduction string

	cmd := &cobra.Command{
		Use:           "check <grammar.ebnf>",
		Short:         "Parse, compile and verify an EBNF grammar file",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			g, err := grammar.LoadFile(args[0])
			if err != nil {
				printErrors(out, err)
				return err
			}

			if startProduction != "" {
				if err := g.Verify(startProduction); err != nil {
					printErrors(out, err)
					return err
				}
			}

			fmt.Fprintf(out, "%s: %d rules, %d literals\n", args[0], len(g.RuleNames()), len(g.Literals()))
			return nil
		},
	}

	cmd.Flags().StringVar(&startProduction, "start", "", "start production for verification (if empty, only checks syntax and names)")

	return cmd
}

// printErrors prints one line per error. It unpacks errors.Join results and
// the error lists of the ebnf package.
func printErrors(w io.Writer, err error) {
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		for _, e := range joined.Unwrap() {
			printErrors(w, e)
		}
		return
	}
	v := reflect.ValueOf(err)
	if v.Kind() == reflect.Slice {
		for i := 0; i < v.Len(); i++ {
			fmt.Fprintln(w, v.Index(i).Interface())
		}
		return
	}
	if inner := errors.Unwrap(err); inner != nil && reflect.ValueOf(inner).Kind() == reflect.Slice {
		printErrors(w, inner)
		return
	}
	fmt.Fprintln(w, err)
}
