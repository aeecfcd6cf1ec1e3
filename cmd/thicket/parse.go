package main

import (
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var parseFlags = struct {
	max    *int
	ranked *bool
	noLeo  *bool
}{}

func init() {
	cmd := &cobra.Command{
		Use:     "parse <grammar file path> <input>",
		Short:   "Parse input and print the parse trees",
		Example: `  thicket parse expr.bnf '1 + 2 * 3'`,
		Args:    cobra.MinimumNArgs(2),
		RunE:    runParse,
	}
	parseFlags.max = cmd.Flags().IntP("max", "n", 1, "maximum number of parse trees to print")
	parseFlags.ranked = cmd.Flags().Bool("ranked", false, "print trees of higher ranked rules first")
	parseFlags.noLeo = cmd.Flags().Bool("no-leo", false, "disable Leo's optimization for right recursion")
	rootCmd.AddCommand(cmd)
}

func runParse(cmd *cobra.Command, args []string) error {
	g, err := loadGrammar(args[0])
	if err != nil {
		return err
	}
	s := newSession(g, *rootFlags.lexer, *parseFlags.ranked, !*parseFlags.noLeo)
	input := strings.Join(args[1:], " ")
	res, err := s.parse(input)
	if err != nil {
		return err
	}
	pterm.Info.Printf("%d parse tree(s)\n", res.count)
	return res.render(*parseFlags.max)
}
