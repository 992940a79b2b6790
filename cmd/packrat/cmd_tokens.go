package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newTokensCmd() *cobra.Command {
	var flags projectFlags

	cmd := &cobra.Command{
		Use:   "tokens <file>",
		Short: "Print the tokens the parser would see",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := flags.load(cmd)
			if err != nil {
				return err
			}
			src, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read source: %w", err)
			}
			tokens, err := p.Tokenize(args[0], src)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for i, tok := range tokens {
				fmt.Fprintf(w, "%d\t%d:%d\t%s\t%s\n", i, tok.Line, tok.Column, tok.Type, tok.Value)
			}
			return w.Flush()
		},
	}
	flags.register(cmd)

	return cmd
}
