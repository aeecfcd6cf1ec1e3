package lr

import (
	"errors"
	"fmt"
)

// Errors reported by grammar construction and compilation. Detailed errors
// returned by the grammar wrap one of these and may be tested with errors.Is.
var (
	ErrNoRules           = errors.New("grammar has no rules")
	ErrNoStart           = errors.New("grammar has no start symbol")
	ErrStartNotLHS       = errors.New("start symbol is not the LHS of any rule")
	ErrUnproductiveStart = errors.New("start symbol is unproductive")
	ErrCycle             = errors.New("grammar is cyclic")
	ErrNullingTerminal   = errors.New("terminal symbol is nulling")
	ErrCountedNullable   = errors.New("sequence item or separator is nullable")
	ErrDuplicateRule     = errors.New("duplicate rule")
	ErrSequenceLHS       = errors.New("sequence LHS is the LHS of another rule")
	ErrSequenceMin       = errors.New("sequence minimum must be 0 or 1")
	ErrFrozen            = errors.New("grammar is compiled and may not be changed")
	ErrNotCompiled       = errors.New("grammar is not compiled")
	ErrNoSuchSymbol      = errors.New("no such symbol")
	ErrNoSuchRule        = errors.New("no such rule")
	ErrNoSuchAssertion   = errors.New("no such assertion")
	ErrTokenType         = errors.New("token type already bound to another terminal")
)

// GrammarError is an error type for problems with a grammar. It names the
// symbol or rule in question, if any, and wraps one of the sentinel errors.
type GrammarError struct {
	Err    error
	Symbol string
	Rule   string
}

func (e *GrammarError) Error() string {
	switch {
	case e.Rule != "":
		return fmt.Sprintf("%s: %s", e.Err.Error(), e.Rule)
	case e.Symbol != "":
		return fmt.Sprintf("%s: %s", e.Err.Error(), e.Symbol)
	}
	return e.Err.Error()
}

// Unwrap returns the sentinel error.
func (e *GrammarError) Unwrap() error {
	return e.Err
}

func symbolError(err error, sym *Symbol) error {
	return &GrammarError{Err: err, Symbol: sym.Name}
}

func ruleError(err error, r *Rule) error {
	return &GrammarError{Err: err, Rule: r.String()}
}
