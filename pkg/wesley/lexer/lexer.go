package lexer

import (
	"fmt"
	"regexp"
	"strings"
)

// TokenType tags both lexer tokens and parse-tree nodes
type TokenType int

const (
	File TokenType = iota
	Whitespace
	Identifier
	Integer
	Operator
	ParensOpen
	ParensClose
	SquareOpen
	SquareClose
	CurlyOpen
	CurlyClose
	Comma
	QuotedString
	SingleQuotedString
	CarriageReturn
	Semicolon
	FunctionDef
	ScopedBlock
	Statement
	Equation
	Return
	Expression
	Term
	Factor
	Negate
	Comment
	Value
	FunCall
	MethodCall
	Comparison
	IfBlock
	WhileBlock
	Boolean
	RealNumber
	ArrayCall
	VariableDecl
	ArrayInit
	ForBlock
	Prefix
	Break
)

var tokenTypeNames = []string{
	"File", "Whitespace", "Identifier", "Integer", "Operator", "Parens_Open", "Parens_Close",
	"Square_Open", "Square_Close", "Curly_Open", "Curly_Close", "Comma", "Quoted_String",
	"Single_Quoted_String", "Carriage_Return", "Semicolon", "Function_Def", "Scoped_Block",
	"Statement", "Equation", "Return", "Expression", "Term", "Factor", "Negate", "Comment",
	"Value", "Fun_Call", "Method_Call", "Comparison", "If_Block", "While_Block", "Boolean",
	"Real_Number", "Array_Call", "Variable_Decl", "Array_Init", "For_Block", "Prefix", "Break",
}

func (t TokenType) String() string {
	if int(t) < 0 || int(t) >= len(tokenTypeNames) {
		return fmt.Sprintf("TokenType(%d)", int(t))
	}
	return tokenTypeNames[t]
}

// Position is a 1-based line/column pair
type Position struct {
	Line   int
	Column int
}

// Token is a single lexed atom. The parser reuses the same record for parse
// nodes, attaching matched tokens as Children.
type Token struct {
	Text     string
	Type     TokenType
	Filename string
	Start    Position
	End      Position
	Children []*Token
}

func (t *Token) String() string {
	return fmt.Sprintf("%s(%s) @ %s: (%d, %d) to (%d, %d)",
		t.Text, t.Type, t.Filename, t.Start.Line, t.Start.Column, t.End.Line, t.End.Column)
}

// Dump writes an indented tree of the token and its children, for debugging
func (t *Token) Dump(prepend string) string {
	var sb strings.Builder
	sb.WriteString(prepend)
	sb.WriteString("Token: ")
	sb.WriteString(t.String())
	sb.WriteString("\n")
	for _, c := range t.Children {
		sb.WriteString(c.Dump(prepend + "  "))
	}
	return sb.String()
}

// Pattern is a compiled regular expression paired with the token type it
// emits. Matches are anchored at the current input cursor.
type Pattern struct {
	re  *regexp.Regexp
	typ TokenType
}

// NewPattern compiles expr anchored at the start of the remaining input.
func NewPattern(expr string, typ TokenType) Pattern {
	return Pattern{re: regexp.MustCompile(`\A(?:` + expr + `)`), typ: typ}
}

func (p Pattern) match(s string) (string, bool) {
	if p.re == nil {
		return "", false
	}
	loc := p.re.FindStringIndex(s)
	if loc == nil {
		return "", false
	}
	return s[:loc[1]], true
}

// Error reports a lexing failure with its source location.
type Error struct {
	Message  string
	Filename string
	Pos      Position
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s in '%s' line: %d", e.Message, e.Filename, e.Pos.Line)
}

// Lexer is a pattern-driven tokeniser. Configure it once with the skip,
// separator, and comment classes plus an ordered list of token patterns,
// then call Lex.
type Lexer struct {
	skip         Pattern
	lineSep      Pattern
	commandSep   Pattern
	commentOpen  Pattern
	commentClose Pattern
	commentLine  Pattern
	patterns     []Pattern
}

// SetSkip sets the pattern whose matches are silently consumed.
func (l *Lexer) SetSkip(p Pattern) { l.skip = p }

// SetLineSep sets the line separator pattern. Matching it advances the line
// counter and resets the column.
func (l *Lexer) SetLineSep(p Pattern) { l.lineSep = p }

// SetCommandSep sets the statement terminator pattern. Matches emit a token.
func (l *Lexer) SetCommandSep(p Pattern) { l.commandSep = p }

// SetMultilineComment sets the open and close delimiters for block comments.
func (l *Lexer) SetMultilineComment(open, close Pattern) {
	l.commentOpen = open
	l.commentClose = close
}

// SetSinglelineComment sets the line comment opener, which consumes to end of line.
func (l *Lexer) SetSinglelineComment(p Pattern) { l.commentLine = p }

// AddPattern appends a normal token pattern. Patterns are tried in
// registration order; the first anchored match wins.
func (l *Lexer) AddPattern(p Pattern) { l.patterns = append(l.patterns, p) }

type cursor struct {
	input string
	pos   int
	line  int
	col   int
}

func (c *cursor) rest() string { return c.input[c.pos:] }

// Lex tokenises input, emitting a flat token stream with source spans.
func (l *Lexer) Lex(input, filename string) ([]*Token, error) {
	var tokens []*Token
	c := &cursor{input: input, line: 1, col: 1}

	for c.pos < len(c.input) {
		if matched, ok := l.skip.match(c.rest()); ok && matched != "" {
			l.consume(c, matched)
			continue
		}
		if matched, ok := l.commentOpen.match(c.rest()); ok {
			if err := l.consumeBlockComment(c, matched, filename); err != nil {
				return nil, err
			}
			continue
		}
		if matched, ok := l.commentLine.match(c.rest()); ok {
			l.consume(c, matched)
			rest := c.rest()
			if i := strings.IndexByte(rest, '\n'); i >= 0 {
				l.consume(c, rest[:i])
			} else {
				l.consume(c, rest)
			}
			continue
		}
		if matched, ok := l.commandSep.match(c.rest()); ok {
			tokens = append(tokens, l.emit(c, matched, l.commandSep.typ, filename))
			continue
		}
		if matched, ok := l.lineSep.match(c.rest()); ok {
			tokens = append(tokens, l.emit(c, matched, l.lineSep.typ, filename))
			continue
		}
		found := false
		for _, p := range l.patterns {
			if matched, ok := p.match(c.rest()); ok && matched != "" {
				tokens = append(tokens, l.emit(c, matched, p.typ, filename))
				found = true
				break
			}
		}
		if !found {
			return nil, &Error{
				Message:  fmt.Sprintf("Unknown character: %q", c.rest()[0]),
				Filename: filename,
				Pos:      Position{Line: c.line, Column: c.col},
			}
		}
	}

	return tokens, nil
}

func (l *Lexer) emit(c *cursor, matched string, typ TokenType, filename string) *Token {
	start := Position{Line: c.line, Column: c.col}
	l.consume(c, matched)
	return &Token{
		Text:     matched,
		Type:     typ,
		Filename: filename,
		Start:    start,
		End:      Position{Line: c.line, Column: c.col},
	}
}

func (l *Lexer) consume(c *cursor, matched string) {
	c.pos += len(matched)
	for {
		i := strings.IndexByte(matched, '\n')
		if i < 0 {
			c.col += len(matched)
			return
		}
		c.line++
		c.col = 1
		matched = matched[i+1:]
	}
}

func (l *Lexer) consumeBlockComment(c *cursor, open string, filename string) error {
	start := Position{Line: c.line, Column: c.col}
	l.consume(c, open)
	for c.pos < len(c.input) {
		if matched, ok := l.commentClose.match(c.rest()); ok {
			l.consume(c, matched)
			return nil
		}
		l.consume(c, c.rest()[:1])
	}
	return &Error{Message: "Unterminated comment", Filename: filename, Pos: start}
}

// Dequote strips the surrounding quote characters from string literal
// tokens, in place. Escape sequences are left uninterpreted.
func Dequote(tokens []*Token) {
	for _, t := range tokens {
		if t.Type == QuotedString || t.Type == SingleQuotedString {
			if len(t.Text) >= 2 {
				t.Text = t.Text[1 : len(t.Text)-1]
			}
		}
	}
}

// New returns a lexer configured with the Wesley token patterns.
func New() *Lexer {
	l := &Lexer{}
	l.SetSkip(NewPattern(`[ \t]+`, Whitespace))
	l.SetLineSep(NewPattern(`\n|\r\n`, CarriageReturn))
	l.SetCommandSep(NewPattern(`;|\r\n|\n`, Semicolon))
	l.SetMultilineComment(NewPattern(`/\*`, Comment), NewPattern(`\*/`, Comment))
	l.SetSinglelineComment(NewPattern(`//`, Comment))

	l.AddPattern(NewPattern(`[A-Za-z_]+`, Identifier))
	l.AddPattern(NewPattern(`[0-9]+\.[0-9]+`, RealNumber))
	l.AddPattern(NewPattern(`[0-9]+`, Integer))
	l.AddPattern(NewPattern(`[!@#$%^&*|\-+=<>.]+|/[!@#$%^&|\-+=<>]*`, Operator))
	l.AddPattern(NewPattern(`\(`, ParensOpen))
	l.AddPattern(NewPattern(`\)`, ParensClose))
	l.AddPattern(NewPattern(`\[`, SquareOpen))
	l.AddPattern(NewPattern(`\]`, SquareClose))
	l.AddPattern(NewPattern(`\{`, CurlyOpen))
	l.AddPattern(NewPattern(`\}`, CurlyClose))
	l.AddPattern(NewPattern(`,`, Comma))
	l.AddPattern(NewPattern(`"(?:[^"\\]|\\.)*"`, QuotedString))
	l.AddPattern(NewPattern(`'(?:[^'\\]|\\.)*'`, SingleQuotedString))

	return l
}
