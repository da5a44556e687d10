// Package parser provides the rule-combinator toolkit and the Wesley
// grammar. Rules compose into a possibly cyclic graph; Parse runs the top
// rule over a token stream and yields a concrete syntax tree of
// lexer.Token nodes.
package parser

import (
	"github.com/wesleylang/wesley/pkg/wesley/errors"
	"github.com/wesleylang/wesley/pkg/wesley/lexer"
)

// Parse runs rule over tokens, requiring full consumption. On success it
// returns a synthetic File root holding the parse tree.
func Parse(rule Rule, tokens []*lexer.Token, filename string) (*lexer.Token, error) {
	root := &lexer.Token{Text: "Root", Type: lexer.File, Filename: filename}
	if len(tokens) > 0 {
		root.Start = tokens[0].Start
		root.End = tokens[len(tokens)-1].End
	}

	pos, ok := rule.match(tokens, 0, root)
	if ok && pos == len(tokens) {
		return root, nil
	}

	perr := errors.New(errors.ClassParse, "Parse failed to complete")
	perr.File = filename
	if pos < len(tokens) {
		perr.Line = tokens[pos].Start.Line
		perr.Column = tokens[pos].Start.Column
	} else if len(tokens) > 0 {
		last := tokens[len(tokens)-1]
		perr.Line = last.End.Line
		perr.Column = last.End.Column
	}
	return nil, perr
}

// Grammar builds the Wesley rule graph and returns its top rule.
func Grammar() Rule {
	params := NewSpliceRule()
	block := NewRule(lexer.ScopedBlock)
	fundef := NewRule(lexer.FunctionDef)
	statement := NewSpliceRule()
	equation := NewRule(lexer.Equation)
	boolean := NewRule(lexer.Boolean)
	comparison := NewRule(lexer.Comparison)
	expression := NewRule(lexer.Expression)
	term := NewRule(lexer.Term)
	factor := NewRule(lexer.Factor)
	negate := NewRule(lexer.Negate)
	prefix := NewRule(lexer.Prefix)

	funcall := NewRule(lexer.FunCall)
	methodcall := NewRule(lexer.MethodCall)
	ifBlock := NewRule(lexer.IfBlock)
	whileBlock := NewRule(lexer.WhileBlock)
	forBlock := NewRule(lexer.ForBlock)
	arraycall := NewRule(lexer.ArrayCall)
	vardecl := NewRule(lexer.VariableDecl)
	arrayinit := NewRule(lexer.ArrayInit)

	returnStatement := NewRule(lexer.Return)
	breakStatement := NewRule(lexer.Break)

	value := NewSpliceRule()
	forConditions := NewSpliceRule()
	sourceElem := NewSpliceRule()
	sourceElems := NewSpliceRule()
	statementList := NewSpliceRule()

	sep := Ign(Id(lexer.Semicolon))

	rule := Seq(Star(sep), sourceElems, Star(sep))

	sourceElems.Define(Seq(sourceElem, Star(Seq(Plus(sep), sourceElem))))
	sourceElem.Define(Alt(fundef, statement))
	statementList.Define(Seq(statement, Star(Seq(Plus(sep), statement))))
	statement.Define(Alt(ifBlock, whileBlock, forBlock, equation))

	ifBlock.Define(Seq(Ign(Str("if")), boolean, block,
		Star(Seq(Star(sep), Str("elseif"), boolean, block)),
		Opt(Seq(Star(sep), Str("else"), block))))
	whileBlock.Define(Seq(Ign(Str("while")), boolean, block))
	forBlock.Define(Seq(Ign(Str("for")), forConditions, block))
	forConditions.Define(Seq(Ign(Id(lexer.ParensOpen)), Opt(equation), Ign(Str(";")),
		boolean, Ign(Str(";")), equation, Ign(Id(lexer.ParensClose))))

	fundef.Define(Seq(Ign(Str("def")), Id(lexer.Identifier),
		Opt(Seq(Ign(Id(lexer.ParensOpen)), Opt(params), Ign(Id(lexer.ParensClose)))),
		block))
	params.Define(Seq(Id(lexer.Identifier), Star(Seq(Ign(Str(",")), Id(lexer.Identifier)))))
	block.Define(Seq(Star(sep), Ign(Id(lexer.CurlyOpen)), Star(sep),
		Opt(statementList), Star(sep), Ign(Id(lexer.CurlyClose))))

	lvalue := Alt(vardecl, arraycall, Id(lexer.Identifier))
	equation.Define(Seq(Star(Alt(
		Seq(lvalue, Str("=")),
		Seq(lvalue, Str("+=")),
		Seq(lvalue, Str("-=")),
		Seq(lvalue, Str("*=")),
		Seq(lvalue, Str("/=")))), boolean))
	boolean.Define(Seq(comparison, Star(Alt(
		Seq(Str("&&"), comparison),
		Seq(Str("||"), comparison)))))
	comparison.Define(Seq(expression, Star(Alt(
		Seq(Str("=="), expression),
		Seq(Str("!="), expression),
		Seq(Str("<"), expression),
		Seq(Str("<="), expression),
		Seq(Str(">"), expression),
		Seq(Str(">="), expression)))))
	expression.Define(Seq(term, Star(Alt(
		Seq(Str("+"), term),
		Seq(Str("-"), term)))))
	term.Define(Seq(factor, Star(Alt(
		Seq(Str("*"), factor),
		Seq(Str("/"), factor)))))
	factor.Define(Alt(methodcall, arraycall, value, negate, prefix,
		Seq(Ign(Str("+")), value)))
	funcall.Define(Seq(Id(lexer.Identifier), Ign(Id(lexer.ParensOpen)),
		Opt(Seq(boolean, Star(Seq(Ign(Str(",")), boolean)))),
		Ign(Id(lexer.ParensClose))))
	methodcall.Define(Seq(value, Plus(Seq(Ign(Str(".")), funcall))))
	negate.Define(Seq(Ign(Str("-")), boolean))
	prefix.Define(Alt(
		Seq(Str("++"), Alt(boolean, arraycall)),
		Seq(Str("--"), Alt(boolean, arraycall))))
	arraycall.Define(Seq(value, Plus(Seq(Ign(Id(lexer.SquareOpen)), boolean, Ign(Id(lexer.SquareClose))))))
	value.Define(Alt(vardecl, arrayinit, block,
		Seq(Ign(Id(lexer.ParensOpen)), boolean, Ign(Id(lexer.ParensClose))),
		returnStatement, breakStatement,
		funcall, Id(lexer.Identifier), Id(lexer.RealNumber), Id(lexer.Integer),
		Id(lexer.QuotedString), Id(lexer.SingleQuotedString)))
	arrayinit.Define(Seq(Ign(Id(lexer.SquareOpen)),
		Opt(Seq(boolean, Star(Seq(Ign(Str(",")), boolean)))),
		Ign(Id(lexer.SquareClose))))
	vardecl.Define(Seq(Ign(Str("var")), Id(lexer.Identifier)))
	returnStatement.Define(Seq(Ign(Str("return")), Opt(boolean)))
	breakStatement.Define(Wrap(Ign(Str("break"))))

	return rule
}
