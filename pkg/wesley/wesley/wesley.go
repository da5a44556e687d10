// Package wesley provides the public API for embedding the Wesley
// interpreter: one Interp aggregate owning the lexer, the grammar, and the
// dispatch system, with string and file evaluation entry points.
package wesley

import (
	"os"

	"github.com/wesleylang/wesley/pkg/wesley/box"
	"github.com/wesleylang/wesley/pkg/wesley/errors"
	"github.com/wesleylang/wesley/pkg/wesley/evaluator"
	"github.com/wesleylang/wesley/pkg/wesley/lexer"
	"github.com/wesleylang/wesley/pkg/wesley/parser"
)

// EvalFilename is the synthetic filename for REPL lines and eval() input.
const EvalFilename = errors.EvalFilename

// Interp owns one interpreter instance: lexer, rule graph, function
// registry, and scope stack. It is single-threaded; callers must serialise
// use. Re-entrant evaluation through the eval() builtin shares the same
// registry and scopes.
type Interp struct {
	lexer  *lexer.Lexer
	rule   parser.Rule
	system *box.System
	logger evaluator.Logger
}

// New creates an interpreter with the standard bindings installed and
// script output going to logger. A nil logger means stdout.
func New(logger evaluator.Logger) *Interp {
	if logger == nil {
		logger = evaluator.DefaultLogger
	}
	in := &Interp{
		lexer:  lexer.New(),
		rule:   parser.Grammar(),
		system: box.NewSystem(),
		logger: logger,
	}
	evaluator.Bootstrap(in.system, logger)

	in.system.RegisterFunction(&box.DynamicFunc{NumParams: 1, Fn: func(args []box.Value) (box.Value, error) {
		src, err := box.As[string](args[0])
		if err != nil {
			return box.Empty(), errors.New(errors.ClassEval, "Can not evaluate string")
		}
		return in.EvaluateString(src, EvalFilename)
	}}, "eval")

	return in
}

// System exposes the dispatch system so hosts can register their own
// functions and objects.
func (in *Interp) System() *box.System { return in.system }

// Logger returns the interpreter's output logger.
func (in *Interp) Logger() evaluator.Logger { return in.logger }

// EvaluateString runs input through the full pipeline: lex, de-quote
// string literals, parse, evaluate. A Return signal escaping the outermost
// call yields its value as the result; a Break escaping every loop is an
// eval error. The scope stack depth is the same on exit as on entry even
// when evaluation fails.
func (in *Interp) EvaluateString(input, filename string) (box.Value, error) {
	tokens, err := in.lexer.Lex(input, filename)
	if err != nil {
		lerr := err.(*lexer.Error)
		return box.Empty(), errors.New(errors.ClassParse, lerr.Message).
			At(lerr.Filename, lerr.Pos.Line, lerr.Pos.Column)
	}
	lexer.Dequote(tokens)

	root, err := parser.Parse(in.rule, tokens, filename)
	if err != nil {
		return box.Empty(), err
	}

	depth := in.system.ScopeDepth()
	v, err := evaluator.Eval(in.system, root)
	for in.system.ScopeDepth() > depth {
		in.system.PopScope()
	}

	switch sig := err.(type) {
	case nil:
		return v, nil
	case *evaluator.ReturnSignal:
		return sig.Value, nil
	case *evaluator.BreakSignal:
		e := errors.New(errors.ClassEval, "break outside loop")
		if sig.Node != nil {
			e.At(sig.Node.Filename, sig.Node.Start.Line, sig.Node.Start.Column)
		}
		return box.Empty(), e
	default:
		return box.Empty(), err
	}
}

// EvaluateFile loads and evaluates one script file.
func (in *Interp) EvaluateFile(path string) (box.Value, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return box.Empty(), errors.Newf(errors.ClassEval, "Can not open %s", path)
	}
	return in.EvaluateString(string(data), path)
}
