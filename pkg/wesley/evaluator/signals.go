package evaluator

import (
	"github.com/wesleylang/wesley/pkg/wesley/box"
	"github.com/wesleylang/wesley/pkg/wesley/lexer"
)

// ReturnSignal unwinds the evaluator out of a function body. It is a
// control signal, not an error; function call boundaries catch it and use
// its value.
type ReturnSignal struct {
	Value box.Value
	Node  *lexer.Token
}

func (r *ReturnSignal) Error() string { return "return outside function" }

// BreakSignal unwinds the evaluator out of a loop body. Loop constructs
// catch it and terminate with an empty result.
type BreakSignal struct {
	Node *lexer.Token
}

func (b *BreakSignal) Error() string { return "break outside loop" }
