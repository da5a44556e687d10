// Package evaluator walks the concrete syntax tree, dispatching each node
// kind to its semantic action against a shared box.System. Non-local exits
// (return, break) travel as typed control signals through the error return.
package evaluator

import (
	"strconv"

	"github.com/wesleylang/wesley/pkg/wesley/box"
	"github.com/wesleylang/wesley/pkg/wesley/errors"
	"github.com/wesleylang/wesley/pkg/wesley/lexer"
)

// Eval evaluates a parse node and returns its boxed result. Statements with
// no natural value yield the empty box.
func Eval(s *box.System, node *lexer.Token) (box.Value, error) {
	switch node.Type {
	case lexer.File, lexer.Value:
		return evalChildren(s, node)

	case lexer.Identifier:
		switch node.Text {
		case "true":
			return box.New(true), nil
		case "false":
			return box.New(false), nil
		}
		v, err := s.GetObject(node.Text)
		if err != nil {
			return box.Empty(), evalErr(err, node)
		}
		return v, nil

	case lexer.RealNumber:
		f, err := strconv.ParseFloat(node.Text, 64)
		if err != nil {
			return box.Empty(), newEvalError("Invalid real number: "+node.Text, node)
		}
		return box.New(f), nil

	case lexer.Integer:
		i, err := strconv.Atoi(node.Text)
		if err != nil {
			return box.Empty(), newEvalError("Invalid integer: "+node.Text, node)
		}
		return box.New(i), nil

	case lexer.QuotedString, lexer.SingleQuotedString:
		return box.New(node.Text), nil

	case lexer.Equation:
		return evalEquation(s, node)

	case lexer.VariableDecl:
		name := node.Children[0].Text
		s.SetObject(name, box.Empty())
		v, err := s.GetObject(name)
		if err != nil {
			return box.Empty(), evalErr(err, node)
		}
		return v, nil

	case lexer.Factor, lexer.Expression, lexer.Term, lexer.Boolean, lexer.Comparison:
		return evalFold(s, node)

	case lexer.ArrayCall:
		return evalArrayCall(s, node)

	case lexer.Negate:
		return evalNegate(s, node)

	case lexer.Prefix:
		return evalPrefix(s, node)

	case lexer.ArrayInit:
		return evalArrayInit(s, node)

	case lexer.FunCall:
		return evalFunCall(s, node)

	case lexer.MethodCall:
		return evalMethodCall(s, node)

	case lexer.IfBlock:
		return evalIfBlock(s, node)

	case lexer.WhileBlock:
		return evalWhileBlock(s, node)

	case lexer.ForBlock:
		return evalForBlock(s, node)

	case lexer.FunctionDef:
		return evalFunctionDef(s, node)

	case lexer.ScopedBlock:
		return evalScopedBlock(s, node)

	case lexer.Return:
		ret := box.Empty()
		if len(node.Children) > 0 {
			var err error
			ret, err = Eval(s, node.Children[0])
			if err != nil {
				return box.Empty(), err
			}
		}
		return box.Empty(), &ReturnSignal{Value: ret, Node: node}

	case lexer.Break:
		return box.Empty(), &BreakSignal{Node: node}

	case lexer.Statement, lexer.CarriageReturn, lexer.Semicolon, lexer.Comment,
		lexer.Operator, lexer.Whitespace, lexer.ParensOpen, lexer.ParensClose,
		lexer.SquareOpen, lexer.SquareClose, lexer.CurlyOpen, lexer.CurlyClose,
		lexer.Comma:
		return box.Empty(), nil
	}

	return box.Empty(), newEvalError("Unknown node kind: "+node.Type.String(), node)
}

func evalChildren(s *box.System, node *lexer.Token) (box.Value, error) {
	retval := box.Empty()
	for _, child := range node.Children {
		var err error
		retval, err = Eval(s, child)
		if err != nil {
			return box.Empty(), err
		}
	}
	return retval, nil
}

// evalEquation folds the assignment chain right to left: the rightmost
// operand is evaluated first, then each (lhs, op) pair dispatches op with
// (lhs, current).
func evalEquation(s *box.System, node *lexer.Token) (box.Value, error) {
	retval, err := Eval(s, node.Children[len(node.Children)-1])
	if err != nil {
		return box.Empty(), err
	}
	for i := len(node.Children) - 3; i >= 0; i -= 2 {
		op := node.Children[i+1]
		lhs, err := evalAssignTarget(s, node.Children[i], op.Text)
		if err != nil {
			return box.Empty(), err
		}
		retval, err = dispatchAt(s, op.Text, []box.Value{lhs, retval}, op,
			"Can not find appropriate '"+op.Text+"'")
		if err != nil {
			return box.Empty(), err
		}
	}
	return retval, nil
}

// evalAssignTarget resolves the left-hand side of an assignment. A plain
// identifier assigned with '=' is created in the innermost frame when no
// binding exists yet; every other target must already resolve.
func evalAssignTarget(s *box.System, node *lexer.Token, op string) (box.Value, error) {
	if op == "=" && node.Type == lexer.Identifier && node.Text != "true" && node.Text != "false" {
		if v, err := s.GetObject(node.Text); err == nil {
			return v, nil
		}
		s.SetObject(node.Text, box.Empty())
		v, err := s.GetObject(node.Text)
		if err != nil {
			return box.Empty(), evalErr(err, node)
		}
		return v, nil
	}
	return Eval(s, node)
}

// evalFold is the left-associative fold shared by the binary operator
// productions: children are (operand, op, operand, op, operand, ...).
func evalFold(s *box.System, node *lexer.Token) (box.Value, error) {
	retval, err := Eval(s, node.Children[0])
	if err != nil {
		return box.Empty(), err
	}
	for i := 1; i+1 < len(node.Children); i += 2 {
		op := node.Children[i]
		rhs, err := Eval(s, node.Children[i+1])
		if err != nil {
			return box.Empty(), err
		}
		retval, err = dispatchAt(s, op.Text, []box.Value{retval, rhs}, op,
			"Can not find appropriate '"+op.Text+"'")
		if err != nil {
			return box.Empty(), err
		}
	}
	return retval, nil
}

func evalArrayCall(s *box.System, node *lexer.Token) (box.Value, error) {
	retval, err := Eval(s, node.Children[0])
	if err != nil {
		return box.Empty(), err
	}
	for _, idxNode := range node.Children[1:] {
		idx, err := Eval(s, idxNode)
		if err != nil {
			return box.Empty(), err
		}
		retval, err = dispatchAt(s, "[]", []box.Value{retval, idx}, idxNode,
			"Can not find appropriate array lookup '[]'")
		if err != nil {
			return box.Empty(), err
		}
	}
	return retval, nil
}

func evalNegate(s *box.System, node *lexer.Token) (box.Value, error) {
	operand, err := Eval(s, node.Children[0])
	if err != nil {
		return box.Empty(), err
	}
	return dispatchAt(s, "-", []box.Value{operand}, node.Children[0],
		"Can not find appropriate negation")
}

func evalPrefix(s *box.System, node *lexer.Token) (box.Value, error) {
	operand, err := Eval(s, node.Children[1])
	if err != nil {
		return box.Empty(), err
	}
	return dispatchAt(s, node.Children[0].Text, []box.Value{operand}, node.Children[0],
		"Can not find appropriate prefix")
}

func evalArrayInit(s *box.System, node *lexer.Token) (box.Value, error) {
	vec, err := dispatchAt(s, "Vector", nil, node, "Can not find appropriate 'Vector()'")
	if err != nil {
		return box.Empty(), err
	}
	for _, elemNode := range node.Children {
		elem, err := Eval(s, elemNode)
		if err != nil {
			return box.Empty(), err
		}
		if _, err := dispatchAt(s, "push_back", []box.Value{vec, elem}, elemNode,
			"Can not find appropriate 'push_back'"); err != nil {
			return box.Empty(), err
		}
	}
	return vec, nil
}

func evalFunCall(s *box.System, node *lexer.Token) (box.Value, error) {
	callee := node.Children[0]
	args := make([]box.Value, 0, len(node.Children)-1)
	for _, argNode := range node.Children[1:] {
		arg, err := Eval(s, argNode)
		if err != nil {
			return box.Empty(), err
		}
		args = append(args, arg)
	}
	retval, err := s.Dispatch(callee.Text, args)
	if rs, ok := err.(*ReturnSignal); ok {
		return rs.Value, nil
	}
	if err != nil {
		return box.Empty(), evalErr(err, callee)
	}
	return retval, nil
}

// evalMethodCall rebinds the receiver across each .name(args) segment,
// dispatching name with the receiver prepended to the arguments.
func evalMethodCall(s *box.System, node *lexer.Token) (box.Value, error) {
	retval, err := Eval(s, node.Children[0])
	if err != nil {
		return box.Empty(), err
	}
	for _, call := range node.Children[1:] {
		name := call.Children[0]
		args := []box.Value{retval}
		for _, argNode := range call.Children[1:] {
			arg, err := Eval(s, argNode)
			if err != nil {
				return box.Empty(), err
			}
			args = append(args, arg)
		}
		retval, err = s.Dispatch(name.Text, args)
		if rs, ok := err.(*ReturnSignal); ok {
			retval = rs.Value
			err = nil
		}
		if err != nil {
			return box.Empty(), evalErr(err, name)
		}
	}
	return retval, nil
}

func evalIfBlock(s *box.System, node *lexer.Token) (box.Value, error) {
	cond, err := evalCondition(s, node.Children[0], "If condition not boolean")
	if err != nil {
		return box.Empty(), err
	}
	if cond {
		return evalChildAt(s, node, 1)
	}
	// Tail is (keyword, cond_or_block, block) arms; 'else' has no
	// condition so its block sits at keyword+1. An empty block contributes
	// no node, so any arm's block may be absent; nextArm steps over a block
	// only when one is there.
	for i := nextArm(node, 1); i < len(node.Children); i = nextArm(node, i+2) {
		keyword := node.Children[i]
		if keyword.Text == "else" {
			return evalChildAt(s, node, i+1)
		}
		if i+1 >= len(node.Children) {
			return box.Empty(), nil
		}
		cond, err := evalCondition(s, node.Children[i+1], "Elseif condition not boolean")
		if err != nil {
			return box.Empty(), err
		}
		if cond {
			return evalChildAt(s, node, i+2)
		}
	}
	return box.Empty(), nil
}

// evalChildAt evaluates the i'th child when it is a block; an absent block
// (an empty block that attached no node) is a no-op.
func evalChildAt(s *box.System, node *lexer.Token, i int) (box.Value, error) {
	if i >= len(node.Children) || node.Children[i].Type != lexer.ScopedBlock {
		return box.Empty(), nil
	}
	return Eval(s, node.Children[i])
}

// nextArm returns the index just past the block at i, or i itself when
// that block is absent because it was empty.
func nextArm(node *lexer.Token, i int) int {
	if i < len(node.Children) && node.Children[i].Type == lexer.ScopedBlock {
		return i + 1
	}
	return i
}

func evalWhileBlock(s *box.System, node *lexer.Token) (box.Value, error) {
	for {
		cond, err := evalCondition(s, node.Children[0], "While condition not boolean")
		if err != nil {
			return box.Empty(), err
		}
		if !cond {
			return box.Empty(), nil
		}
		if _, err := evalChildAt(s, node, 1); err != nil {
			if _, ok := err.(*BreakSignal); ok {
				return box.Empty(), nil
			}
			return box.Empty(), err
		}
	}
}

func evalForBlock(s *box.System, node *lexer.Token) (box.Value, error) {
	var init, cond, post, body *lexer.Token
	switch len(node.Children) {
	case 4:
		init, cond, post, body = node.Children[0], node.Children[1], node.Children[2], node.Children[3]
	case 3:
		cond, post, body = node.Children[0], node.Children[1], node.Children[2]
	default:
		return box.Empty(), newEvalError("Malformed for block", node)
	}

	if init != nil {
		if _, err := Eval(s, init); err != nil {
			return box.Empty(), err
		}
	}
	for {
		c, err := evalCondition(s, cond, "For condition not boolean")
		if err != nil {
			return box.Empty(), err
		}
		if !c {
			return box.Empty(), nil
		}
		if _, err := Eval(s, body); err != nil {
			if _, ok := err.(*BreakSignal); ok {
				return box.Empty(), nil
			}
			return box.Empty(), err
		}
		if _, err := Eval(s, post); err != nil {
			return box.Empty(), err
		}
	}
}

// evalFunctionDef registers a dynamic proxy for the script function. The
// proxy pushes a scope, binds arguments to parameter names, and evaluates
// the body, turning a Return signal into the call's result.
func evalFunctionDef(s *box.System, node *lexer.Token) (box.Value, error) {
	name := node.Children[0].Text
	body := node.Children[len(node.Children)-1]
	paramNames := make([]string, 0, len(node.Children)-2)
	for _, p := range node.Children[1 : len(node.Children)-1] {
		paramNames = append(paramNames, p.Text)
	}

	s.RegisterFunction(&box.DynamicFunc{
		NumParams: len(paramNames),
		Fn: func(args []box.Value) (box.Value, error) {
			s.NewScope()
			defer s.PopScope()
			for i, pname := range paramNames {
				s.AddObject(pname, args[i])
			}
			v, err := Eval(s, body)
			if rs, ok := err.(*ReturnSignal); ok {
				return rs.Value, nil
			}
			if err != nil {
				return box.Empty(), err
			}
			return v, nil
		},
	}, name)

	return box.Empty(), nil
}

func evalScopedBlock(s *box.System, node *lexer.Token) (box.Value, error) {
	s.NewScope()
	defer s.PopScope()
	return evalChildren(s, node)
}

func evalCondition(s *box.System, node *lexer.Token, failMsg string) (bool, error) {
	v, err := Eval(s, node)
	if err != nil {
		return false, err
	}
	cond, err := box.As[bool](v)
	if err != nil {
		return false, newEvalError(failMsg, node)
	}
	return cond, nil
}

// dispatchAt dispatches name and anchors any failure at the given node.
// Control signals pass through untouched.
func dispatchAt(s *box.System, name string, args []box.Value, node *lexer.Token, failMsg string) (box.Value, error) {
	v, err := s.Dispatch(name, args)
	if err == nil {
		return v, nil
	}
	switch err.(type) {
	case *ReturnSignal, *BreakSignal:
		return box.Empty(), err
	}
	if werr, ok := err.(*errors.Error); ok && werr.Class == errors.ClassUndefined {
		return box.Empty(), newEvalError(failMsg, node)
	}
	return box.Empty(), evalErr(err, node)
}

// evalErr anchors an error at node, preserving the message of structured
// errors and wrapping host errors as eval errors.
func evalErr(err error, node *lexer.Token) error {
	if werr, ok := err.(*errors.Error); ok {
		if werr.Line == 0 && node != nil {
			werr.At(node.Filename, node.Start.Line, node.Start.Column)
		}
		return werr
	}
	return newEvalError(err.Error(), node)
}

func newEvalError(msg string, node *lexer.Token) *errors.Error {
	e := errors.New(errors.ClassEval, msg)
	if node != nil {
		e.At(node.Filename, node.Start.Line, node.Start.Column)
	}
	return e
}
