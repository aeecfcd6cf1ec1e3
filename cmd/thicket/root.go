package main

import (
	"fmt"
	"os"

	"github.com/npillmayer/schuko/tracing"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var rootFlags = struct {
	trace *string
	lexer *string
}{}

var rootCmd = &cobra.Command{
	Use:   "thicket",
	Short: "Compile grammars and parse input with an Earley parser",
	Long: `thicket reads grammars in BNF notation and parses input with them.
Ambiguous grammars are fine: all parse trees of an input are found.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		initDisplay()
		level := tracing.TraceLevelFromString(*rootFlags.trace)
		for _, key := range []string{"thicket.cli", "thicket.lr", "thicket.scanner"} {
			tracing.Select(key).SetTraceLevel(level)
		}
	},
	SilenceErrors: true,
	SilenceUsage:  true,
}

func init() {
	rootFlags.trace = rootCmd.PersistentFlags().StringP("trace", "t", "Error", "trace level [Debug|Info|Error]")
	rootFlags.lexer = rootCmd.PersistentFlags().StringP("lexer", "l", "go", "tokenizer for input [go|lexmachine]")
}

// Execute runs the command given on the command line.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return err
	}
	return nil
}

// We use pterm for moderately fancy output.
func initDisplay() {
	pterm.Info.Prefix = pterm.Prefix{
		Text:  "  >>",
		Style: pterm.NewStyle(pterm.BgCyan, pterm.FgBlack),
	}
	pterm.Error.Prefix = pterm.Prefix{
		Text:  "  Error",
		Style: pterm.NewStyle(pterm.BgRed, pterm.FgBlack),
	}
}
