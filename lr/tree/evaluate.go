package tree

import (
	"github.com/npillmayer/thicket"
	"github.com/npillmayer/thicket/lr"
	"github.com/npillmayer/thicket/lr/earley"
)

// Evaluator computes semantic values of tree nodes, bottom-up.
type Evaluator interface {
	Rule(rule *lr.Rule, span thicket.Span, children []interface{}) interface{}
	Token(tok *earley.Token) interface{}
	Null(sym *lr.Symbol, pos uint64) interface{}
}

// Evaluate computes the value of a tree. Children are evaluated left to
// right before their parent.
func Evaluate(n *Node, ev Evaluator) interface{} {
	switch {
	case n.IsToken():
		return ev.Token(n.Token)
	case n.IsNull():
		return ev.Null(n.Symbol, n.Span.From())
	}
	values := make([]interface{}, len(n.Children))
	for i, ch := range n.Children {
		values[i] = Evaluate(ch, ev)
	}
	return ev.Rule(n.Rule, n.Span, values)
}

// EvaluatorFuncs adapts plain functions to the Evaluator interface. Missing
// functions evaluate to nil.
type EvaluatorFuncs struct {
	RuleFunc  func(rule *lr.Rule, span thicket.Span, children []interface{}) interface{}
	TokenFunc func(tok *earley.Token) interface{}
	NullFunc  func(sym *lr.Symbol, pos uint64) interface{}
}

// Rule calls RuleFunc.
func (ef EvaluatorFuncs) Rule(rule *lr.Rule, span thicket.Span, children []interface{}) interface{} {
	if ef.RuleFunc == nil {
		return nil
	}
	return ef.RuleFunc(rule, span, children)
}

// Token calls TokenFunc.
func (ef EvaluatorFuncs) Token(tok *earley.Token) interface{} {
	if ef.TokenFunc == nil {
		return nil
	}
	return ef.TokenFunc(tok)
}

// Null calls NullFunc.
func (ef EvaluatorFuncs) Null(sym *lr.Symbol, pos uint64) interface{} {
	if ef.NullFunc == nil {
		return nil
	}
	return ef.NullFunc(sym, pos)
}
