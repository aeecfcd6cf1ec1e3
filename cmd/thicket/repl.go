package main

import (
	"strings"

	"github.com/chzyer/readline"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var replFlags = struct {
	max *int
}{}

func init() {
	cmd := &cobra.Command{
		Use:   "repl <grammar file path>",
		Short: "Parse lines of input interactively",
		Long: `repl reads lines of input and prints their parse trees.
Lines starting with a colon are commands:

  :rules      list the grammar rules
  :expected   list the terminals expected after the latest input
  :progress   show the rules in progress after the latest input
  :all        toggle printing of all parse trees
  :quit       leave (as does <ctrl>D)`,
		Args: cobra.ExactArgs(1),
		RunE: runREPL,
	}
	replFlags.max = cmd.Flags().IntP("max", "n", 1, "maximum number of parse trees to print")
	rootCmd.AddCommand(cmd)
}

func runREPL(cmd *cobra.Command, args []string) error {
	g, err := loadGrammar(args[0])
	if err != nil {
		return err
	}
	repl, err := readline.New("thicket> ")
	if err != nil {
		return err
	}
	defer repl.Close()
	intp := &intp{
		s:    newSession(g, *rootFlags.lexer, false, true),
		repl: repl,
		max:  *replFlags.max,
	}
	pterm.Info.Printf("grammar %s, quit with <ctrl>D\n", g.Name)
	intp.loop()
	return nil
}

// intp is our interpreter object.
type intp struct {
	s    *session
	repl *readline.Instance
	max  int
	all  bool
}

func (intp *intp) loop() {
	for {
		line, err := intp.repl.Readline()
		if err != nil { // io.EOF or interrupt
			break
		}
		if line = strings.TrimSpace(line); line == "" {
			continue
		}
		if quit := intp.eval(line); quit {
			break
		}
	}
	pterm.Println("Good bye!")
}

// eval executes a command or parses a line of input.
func (intp *intp) eval(line string) bool {
	switch line {
	case ":quit", ":q":
		return true
	case ":rules":
		for _, r := range intp.s.g.Rules() {
			pterm.Printf("%3d: %v\n", r.Serial, r)
		}
		return false
	case ":expected":
		pterm.Info.Printf("expected: %s\n", intp.s.expected())
		return false
	case ":progress":
		intp.progress()
		return false
	case ":all":
		intp.all = !intp.all
		pterm.Info.Printf("printing all trees = %v\n", intp.all)
		return false
	}
	if strings.HasPrefix(line, ":") {
		pterm.Error.Printf("unknown command %s\n", line)
		return false
	}
	res, err := intp.s.parse(line)
	if err != nil {
		pterm.Error.Println(err.Error())
		return false
	}
	max := intp.max
	if intp.all {
		max = int(^uint(0) >> 1)
	}
	pterm.Info.Printf("%d parse tree(s)\n", res.count)
	if err = res.render(max); err != nil {
		pterm.Error.Println(err.Error())
	}
	return false
}

func (intp *intp) progress() {
	rec := intp.s.last
	if rec == nil {
		pterm.Info.Println("no input yet")
		return
	}
	reports, err := rec.Progress(rec.LatestSet().ID())
	if err != nil {
		pterm.Error.Println(err.Error())
		return
	}
	for _, rep := range reports {
		pterm.Println(rep.String())
	}
}
