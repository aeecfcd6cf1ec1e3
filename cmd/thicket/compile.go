package main

import (
	"fmt"
	"os"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var compileFlags = struct {
	dot *string
}{}

func init() {
	cmd := &cobra.Command{
		Use:     "compile <grammar file path>",
		Short:   "Compile a grammar and show its rules",
		Example: `  thicket compile expr.bnf --dot expr.dot`,
		Args:    cobra.ExactArgs(1),
		RunE:    runCompile,
	}
	compileFlags.dot = cmd.Flags().String("dot", "", "write the prediction graph in GraphViz format to a file")
	rootCmd.AddCommand(cmd)
}

func runCompile(cmd *cobra.Command, args []string) error {
	g, err := loadGrammar(args[0])
	if err != nil {
		return err
	}
	g.Dump() // only visible in debug mode
	data := pterm.TableData{{"#", "rule", "rank", "used"}}
	for _, r := range g.Rules() {
		data = append(data, []string{
			fmt.Sprintf("%d", r.Serial), r.String(), fmt.Sprintf("%d", r.Rank), fmt.Sprintf("%v", r.IsUsed()),
		})
	}
	if err = pterm.DefaultTable.WithHasHeader().WithData(data).Render(); err != nil {
		return err
	}
	fp, err := g.Fingerprint()
	if err != nil {
		return err
	}
	pterm.Info.Printf("start symbol %s, nullable = %v\n", g.Start().Name, g.StartIsNullable())
	pterm.Info.Printf("%d internal symbols, %d internal rules, %d item templates\n",
		len(g.ISymbols()), len(g.IRules()), len(g.AHMs()))
	pterm.Info.Printf("fingerprint %s\n", fp)
	if *compileFlags.dot == "" {
		return nil
	}
	f, err := os.Create(*compileFlags.dot)
	if err != nil {
		return fmt.Errorf("cannot create %s: %w", *compileFlags.dot, err)
	}
	defer f.Close()
	return g.PredictionGraphViz(f)
}
