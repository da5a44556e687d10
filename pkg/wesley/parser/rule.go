package parser

import (
	"github.com/wesleylang/wesley/pkg/wesley/lexer"
)

// noNode marks a rule that splices its children into the parent instead of
// wrapping them in a fresh node.
const noNode lexer.TokenType = -1

type combinator int

const (
	cUninit combinator = iota
	cSeq
	cAlt
	cStar
	cPlus
	cOpt
	cIgn
	cWrap
	cTokenType
	cTokenText
)

// Rule is a composable grammar fragment. Rule values are handles sharing one
// underlying definition, so a rule may be declared, referenced from other
// rules, and only then given its body with Define. The rule graph may be
// cyclic.
type Rule struct {
	impl *ruleImpl
}

type ruleImpl struct {
	typ      combinator
	children []Rule
	text     string
	tokType  lexer.TokenType
	node     lexer.TokenType
	wrap     bool
}

// NewRule declares a rule whose matches are wrapped in a fresh node of the
// given type. The rule must be given a body with Define before use.
func NewRule(node lexer.TokenType) Rule {
	return Rule{impl: &ruleImpl{typ: cUninit, node: node}}
}

// NewSpliceRule declares a rule with no output node of its own; matched
// children are spliced into the enclosing parent.
func NewSpliceRule() Rule {
	return Rule{impl: &ruleImpl{typ: cUninit, node: noNode}}
}

// Define installs the rule's body. References taken before Define see the
// definition, which is what permits recursive grammars.
func (r Rule) Define(body Rule) {
	impl := r.impl
	if body.impl.typ == cWrap {
		impl.wrap = true
		impl.children = body.impl.children
		impl.typ = cSeq
		return
	}
	impl.children = []Rule{body}
	impl.typ = cSeq
}

func combine(typ combinator, children ...Rule) Rule {
	return Rule{impl: &ruleImpl{typ: typ, children: children, node: noNode}}
}

// Seq matches each rule in order, backtracking on any failure.
func Seq(rules ...Rule) Rule { return combine(cSeq, rules...) }

// Alt tries each rule in order; the first success wins.
func Alt(rules ...Rule) Rule { return combine(cAlt, rules...) }

// Star matches r zero or more times. It never fails.
func Star(r Rule) Rule { return combine(cStar, r) }

// Plus matches r one or more times, failing iff the first try fails.
func Plus(r Rule) Rule { return combine(cPlus, r) }

// Opt matches r zero or one time. It never fails.
func Opt(r Rule) Rule { return combine(cOpt, r) }

// Ign matches r but discards anything it would contribute to the parent.
// Used for syntactic delimiters.
func Ign(r Rule) Rule { return combine(cIgn, r) }

// Wrap forces the defined rule to emit its node even when the body
// contributed no children, as with bare keywords.
func Wrap(r Rule) Rule { return combine(cWrap, r) }

// Id consumes one token iff its type matches, contributing it as a child.
func Id(t lexer.TokenType) Rule {
	return Rule{impl: &ruleImpl{typ: cTokenType, tokType: t, node: noNode}}
}

// Str consumes one token iff its text matches, regardless of its type.
// Used to pick keywords and operator glyphs out of broader token classes.
func Str(text string) Rule {
	return Rule{impl: &ruleImpl{typ: cTokenText, text: text, node: noNode}}
}

// match runs the rule at tokens[pos], appending contributed children to
// parent. It returns the new position and whether the rule matched; on
// failure the position is unchanged and parent is untouched.
func (r Rule) match(tokens []*lexer.Token, pos int, parent *lexer.Token) (int, bool) {
	impl := r.impl
	if impl == nil || impl.typ == cUninit {
		return pos, false
	}

	target := parent
	var fresh *lexer.Token
	if impl.node != noNode {
		fresh = &lexer.Token{Type: impl.node, Filename: parent.Filename}
		target = fresh
	}

	next, ok := impl.run(tokens, pos, target)
	if !ok {
		return pos, false
	}

	if fresh != nil && (len(fresh.Children) > 0 || impl.wrap) {
		if len(fresh.Children) > 0 {
			fresh.Start = fresh.Children[0].Start
			fresh.End = fresh.Children[len(fresh.Children)-1].End
			fresh.Filename = fresh.Children[0].Filename
		} else if pos < len(tokens) {
			fresh.Start = tokens[pos].Start
			fresh.End = tokens[pos].Start
			fresh.Filename = tokens[pos].Filename
		}
		parent.Children = append(parent.Children, fresh)
	}
	return next, true
}

func (impl *ruleImpl) run(tokens []*lexer.Token, pos int, parent *lexer.Token) (int, bool) {
	switch impl.typ {
	case cSeq:
		mark := len(parent.Children)
		p := pos
		for _, child := range impl.children {
			var ok bool
			p, ok = child.match(tokens, p, parent)
			if !ok {
				parent.Children = parent.Children[:mark]
				return pos, false
			}
		}
		return p, true

	case cAlt:
		for _, child := range impl.children {
			if p, ok := child.match(tokens, pos, parent); ok {
				return p, true
			}
		}
		return pos, false

	case cStar:
		p := pos
		for {
			next, ok := impl.children[0].match(tokens, p, parent)
			if !ok || next == p {
				return p, true
			}
			p = next
		}

	case cPlus:
		p, ok := impl.children[0].match(tokens, pos, parent)
		if !ok {
			return pos, false
		}
		for {
			next, ok := impl.children[0].match(tokens, p, parent)
			if !ok || next == p {
				return p, true
			}
			p = next
		}

	case cOpt:
		if p, ok := impl.children[0].match(tokens, pos, parent); ok {
			return p, true
		}
		return pos, true

	case cIgn, cWrap:
		discard := &lexer.Token{Type: parent.Type, Filename: parent.Filename}
		return impl.children[0].match(tokens, pos, discard)

	case cTokenType:
		if pos < len(tokens) && tokens[pos].Type == impl.tokType {
			parent.Children = append(parent.Children, tokens[pos])
			return pos + 1, true
		}
		return pos, false

	case cTokenText:
		if pos < len(tokens) && tokens[pos].Text == impl.text {
			parent.Children = append(parent.Children, tokens[pos])
			return pos + 1, true
		}
		return pos, false
	}
	return pos, false
}
