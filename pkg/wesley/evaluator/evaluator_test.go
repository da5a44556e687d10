package evaluator

import (
	"strings"
	"testing"

	"github.com/wesleylang/wesley/pkg/wesley/box"
	"github.com/wesleylang/wesley/pkg/wesley/errors"
	"github.com/wesleylang/wesley/pkg/wesley/lexer"
	"github.com/wesleylang/wesley/pkg/wesley/parser"
)

// captureLogger collects print() output for assertions.
type captureLogger struct {
	lines []string
}

func (l *captureLogger) Log(values ...any)     { l.lines = append(l.lines, formatLogValues(values...)) }
func (l *captureLogger) LogLine(values ...any) { l.lines = append(l.lines, formatLogValues(values...)) }

func newTestSystem(logger Logger) *box.System {
	s := box.NewSystem()
	Bootstrap(s, logger)
	return s
}

// testEvalOn parses and evaluates input against an existing system, so
// tests can run several forms with shared state.
func testEvalOn(t *testing.T, s *box.System, input string) (box.Value, error) {
	t.Helper()
	tokens, err := lexer.New().Lex(input, "test.wes")
	if err != nil {
		t.Fatalf("Lex failed for %q: %v", input, err)
	}
	lexer.Dequote(tokens)
	root, err := parser.Parse(parser.Grammar(), tokens, "test.wes")
	if err != nil {
		t.Fatalf("Parse failed for %q: %v", input, err)
	}
	return Eval(s, root)
}

func testEval(t *testing.T, input string) (box.Value, error) {
	t.Helper()
	return testEvalOn(t, newTestSystem(&captureLogger{}), input)
}

func evalInt(t *testing.T, input string) int {
	t.Helper()
	v, err := testEval(t, input)
	if err != nil {
		t.Fatalf("eval of %q failed: %v", input, err)
	}
	i, err := box.As[int](v)
	if err != nil {
		t.Fatalf("eval of %q did not produce an int: %v", input, err)
	}
	return i
}

func TestEvalIntegerArithmetic(t *testing.T) {
	tests := []struct {
		input    string
		expected int
	}{
		{"42", 42},
		{"1 + 2", 3},
		{"1 + 2 * 3", 7},
		{"(1 + 2) * 3", 9},
		{"10 - 2 - 3", 5},
		{"7 / 2", 3},
		{"-5", -5},
		{"+5", 5},
		{"2 + -3", -1},
	}
	for _, tt := range tests {
		if got := evalInt(t, tt.input); got != tt.expected {
			t.Errorf("%q: expected %d, got %d", tt.input, tt.expected, got)
		}
	}
}

func TestEvalRealArithmetic(t *testing.T) {
	tests := []struct {
		input    string
		expected float64
	}{
		{"1.5", 1.5},
		{"1.5 + 2.5", 4.0},
		{"1 + 0.5", 1.5},
		{"3.0 / 2", 1.5},
	}
	for _, tt := range tests {
		v, err := testEval(t, tt.input)
		if err != nil {
			t.Fatalf("eval of %q failed: %v", tt.input, err)
		}
		f, err := box.As[float64](v)
		if err != nil {
			t.Fatalf("%q did not produce a float: %v", tt.input, err)
		}
		if f != tt.expected {
			t.Errorf("%q: expected %g, got %g", tt.input, tt.expected, f)
		}
	}
}

func TestEvalStrings(t *testing.T) {
	v, err := testEval(t, `"hi"`)
	if err != nil {
		t.Fatalf("eval failed: %v", err)
	}
	s, err := box.As[string](v)
	if err != nil || s != "hi" {
		t.Errorf("expected hi, got %v (%v)", v, err)
	}

	v, err = testEval(t, `concat_string("foo", "bar")`)
	if err != nil {
		t.Fatalf("eval failed: %v", err)
	}
	if s, _ := box.As[string](v); s != "foobar" {
		t.Errorf("expected foobar, got %q", s)
	}

	v, err = testEval(t, `"foo" + "bar"`)
	if err != nil {
		t.Fatalf("eval failed: %v", err)
	}
	if s, _ := box.As[string](v); s != "foobar" {
		t.Errorf("expected foobar, got %q", s)
	}
}

func TestEvalBooleans(t *testing.T) {
	tests := []struct {
		input    string
		expected bool
	}{
		{"true", true},
		{"false", false},
		{"1 == 1", true},
		{"1 != 1", false},
		{"1 < 2", true},
		{"2 <= 1", false},
		{"2 > 1", true},
		{"1 >= 2", false},
		{"1.5 > 1", true},
		{`"a" < "b"`, true},
		{"1 < 2 && 2 < 3", true},
		{"1 < 2 && 3 < 2", false},
		{"1 > 2 || 1 < 2", true},
	}
	for _, tt := range tests {
		v, err := testEval(t, tt.input)
		if err != nil {
			t.Fatalf("eval of %q failed: %v", tt.input, err)
		}
		b, err := box.As[bool](v)
		if err != nil {
			t.Fatalf("%q did not produce a bool: %v", tt.input, err)
		}
		if b != tt.expected {
			t.Errorf("%q: expected %v, got %v", tt.input, tt.expected, b)
		}
	}
}

func TestEvalVariables(t *testing.T) {
	tests := []struct {
		input    string
		expected int
	}{
		{"var x = 5; x + 3", 8},
		{"var x = 5; x = 10; x", 10},
		{"x = 5; x", 5},
		{"var x = 2; var y = 3; x * y", 6},
		{"var x = 5; x += 2; x", 7},
		{"var x = 5; x -= 2; x", 3},
		{"var x = 5; x *= 2; x", 10},
		{"var x = 6; x /= 2; x", 3},
		{"var x = 0; ++x; x", 1},
		{"var x = 0; --x; x", -1},
		{"var x = 0; x = y = 4; x + y", 8},
	}
	for _, tt := range tests {
		if got := evalInt(t, tt.input); got != tt.expected {
			t.Errorf("%q: expected %d, got %d", tt.input, tt.expected, got)
		}
	}
}

func TestEvalUnboundIdentifier(t *testing.T) {
	_, err := testEval(t, "nope")
	if err == nil {
		t.Fatal("expected error for unbound identifier")
	}
	if !strings.Contains(err.Error(), "Can not find object: nope") {
		t.Errorf("unexpected message: %v", err)
	}
}

func TestEvalFunctions(t *testing.T) {
	tests := []struct {
		input    string
		expected int
	}{
		{"def f { 7 }; f()", 7},
		{"def add(a, b) { a + b }; add(2, 3)", 5},
		{"def f(x) { return x * 2 }; f(4)", 8},
		{"def f(x) { return x; 99 }; f(1)", 1},
		{"def fact(n) { if (n == 0) { return 1 } else { return n * fact(n - 1) } }; fact(5)", 120},
		{"add_two(20, 22)", 42},
	}
	for _, tt := range tests {
		if got := evalInt(t, tt.input); got != tt.expected {
			t.Errorf("%q: expected %d, got %d", tt.input, tt.expected, got)
		}
	}
}

func TestEvalFunctionScope(t *testing.T) {
	// parameters bind in the call's own frame and vanish afterwards
	_, err := testEval(t, "def f(x) { x }; f(1); x")
	if err == nil || !strings.Contains(err.Error(), "Can not find object: x") {
		t.Errorf("expected x to be out of scope, got %v", err)
	}
}

func TestEvalUnknownFunction(t *testing.T) {
	_, err := testEval(t, "foo(1)")
	if err == nil {
		t.Fatal("expected error for unbound function")
	}
	werr, ok := err.(*errors.Error)
	if !ok {
		t.Fatalf("expected *errors.Error, got %T", err)
	}
	if !strings.Contains(werr.Message, "foo") {
		t.Errorf("message should mention foo: %v", werr)
	}
	if werr.Line != 1 || werr.Column != 1 {
		t.Errorf("expected location at the call token, got %d:%d", werr.Line, werr.Column)
	}
}

func TestEvalVectors(t *testing.T) {
	s := newTestSystem(&captureLogger{})

	v, err := testEvalOn(t, s, "var v = [1, 2, 3]; v[1]")
	if err != nil {
		t.Fatalf("eval failed: %v", err)
	}
	if i, _ := box.As[int](v); i != 2 {
		t.Errorf("expected 2, got %v", v)
	}

	v, err = testEvalOn(t, s, "v.push_back(4); v[3]")
	if err != nil {
		t.Fatalf("eval failed: %v", err)
	}
	if i, _ := box.As[int](v); i != 4 {
		t.Errorf("expected 4, got %v", v)
	}

	v, err = testEvalOn(t, s, "v.size()")
	if err != nil {
		t.Fatalf("eval failed: %v", err)
	}
	if i, _ := box.As[int](v); i != 4 {
		t.Errorf("expected size 4, got %v", v)
	}
}

func TestEvalVectorOutOfBounds(t *testing.T) {
	_, err := testEval(t, "var v = [1]; v[5]")
	if err == nil {
		t.Fatal("expected out of bounds error")
	}
	if !strings.Contains(err.Error(), "out of bounds") {
		t.Errorf("unexpected message: %v", err)
	}
}

func TestEvalNestedIndexing(t *testing.T) {
	if got := evalInt(t, "var v = [[1, 2], [3, 4]]; v[1][0]"); got != 3 {
		t.Errorf("expected 3, got %d", got)
	}
}

func TestEvalVectorAliasing(t *testing.T) {
	// assignment through an index writes through the element's box
	if got := evalInt(t, "var v = [1, 2]; v[0] = 9; v[0]"); got != 9 {
		t.Errorf("expected 9, got %d", got)
	}
}

func TestEvalIf(t *testing.T) {
	tests := []struct {
		input    string
		expected int
	}{
		{"if (true) { 1 } else { 2 }", 1},
		{"if (false) { 1 } else { 2 }", 2},
		{"if (false) { 1 } elseif (true) { 2 } else { 3 }", 2},
		{"if (false) { 1 } elseif (false) { 2 } else { 3 }", 3},
		{"var x = 9; if (x > 5) { x - 5 }", 4},
	}
	for _, tt := range tests {
		if got := evalInt(t, tt.input); got != tt.expected {
			t.Errorf("%q: expected %d, got %d", tt.input, tt.expected, got)
		}
	}
}

func TestEvalIfConditionNotBoolean(t *testing.T) {
	_, err := testEval(t, "if (1) { }")
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "If condition not boolean") {
		t.Errorf("unexpected message: %v", err)
	}
}

func TestEvalWhile(t *testing.T) {
	if got := evalInt(t, "var i = 0; while (i < 10) { i += 1 }; i"); got != 10 {
		t.Errorf("expected 10, got %d", got)
	}
	if got := evalInt(t, "var i = 0; while (i < 10) { if (i == 3) { break }; i += 1 }; i"); got != 3 {
		t.Errorf("expected 3, got %d", got)
	}
}

func TestEvalWhileConditionNotBoolean(t *testing.T) {
	_, err := testEval(t, "while (1) { }")
	if err == nil || !strings.Contains(err.Error(), "While condition not boolean") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestEvalFor(t *testing.T) {
	logger := &captureLogger{}
	s := newTestSystem(logger)

	v, err := testEvalOn(t, s, "var i = 0; for (i = 0; i < 3; i += 1) { print(i) }")
	if err != nil {
		t.Fatalf("eval failed: %v", err)
	}
	if !v.IsEmpty() {
		t.Errorf("for result should be empty, got %v", v)
	}
	want := []string{"0", "1", "2"}
	if len(logger.lines) != len(want) {
		t.Fatalf("expected %v, got %v", want, logger.lines)
	}
	for i := range want {
		if logger.lines[i] != want[i] {
			t.Errorf("line %d: expected %q, got %q", i, want[i], logger.lines[i])
		}
	}
}

func TestEvalForWithoutInit(t *testing.T) {
	if got := evalInt(t, "var i = 0; for (; i < 4; i += 1) { 0 }; i"); got != 4 {
		t.Errorf("expected 4, got %d", got)
	}
}

func TestEvalForBreak(t *testing.T) {
	if got := evalInt(t, "var i = 0; var n = 0; for (i = 0; i < 100; i += 1) { if (i == 5) { break }; n += 1 }; n"); got != 5 {
		t.Errorf("expected 5, got %d", got)
	}
}

func TestEvalScopedBlock(t *testing.T) {
	// var creates in the innermost frame only
	_, err := testEval(t, "{ var hidden = 1 }; hidden")
	if err == nil || !strings.Contains(err.Error(), "Can not find object: hidden") {
		t.Errorf("expected hidden to be out of scope, got %v", err)
	}

	// assignment to an outer binding mutates in place across the scope
	if got := evalInt(t, "var x = 1; { x = 5 }; x"); got != 5 {
		t.Errorf("expected 5, got %d", got)
	}
}

// The scope stack is balanced after every top-level form, including
// failing ones.
func TestEvalScopeBalance(t *testing.T) {
	s := newTestSystem(&captureLogger{})
	inputs := []string{
		"var x = 1",
		"{ var y = 2; y }",
		"def f(a) { a }; f(3)",
		"nope",
		"if (1) { }",
		"{ nope }",
		"def g { nope }; g()",
	}
	for _, input := range inputs {
		depth := s.ScopeDepth()
		testEvalOn(t, s, input)
		if s.ScopeDepth() != depth {
			t.Errorf("%q: scope depth %d, want %d", input, s.ScopeDepth(), depth)
		}
	}
}

func TestEvalPrint(t *testing.T) {
	logger := &captureLogger{}
	s := newTestSystem(logger)

	inputs := []string{`print("hello")`, "print(true)", "print(3)", "print(1.5)", "print([1, 2])"}
	for _, input := range inputs {
		if _, err := testEvalOn(t, s, input); err != nil {
			t.Fatalf("%q failed: %v", input, err)
		}
	}
	want := []string{"hello", "true", "3", "1.5", "[1, 2]"}
	for i := range want {
		if logger.lines[i] != want[i] {
			t.Errorf("line %d: expected %q, got %q", i, want[i], logger.lines[i])
		}
	}
}

func TestEvalToString(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"to_string(42)", "42"},
		{"to_string(1.5)", "1.5"},
		{"to_string(true)", "true"},
		{`to_string("s")`, "s"},
		{"to_string([1, 2])", "[1, 2]"},
	}
	for _, tt := range tests {
		v, err := testEval(t, tt.input)
		if err != nil {
			t.Fatalf("%q failed: %v", tt.input, err)
		}
		if s, _ := box.As[string](v); s != tt.expected {
			t.Errorf("%q: expected %q, got %q", tt.input, tt.expected, s)
		}
	}
}

func TestEvalVectorInt(t *testing.T) {
	s := newTestSystem(&captureLogger{})
	v, err := testEvalOn(t, s, "var v = VectorInt(); v.push_back(7); v[0]")
	if err != nil {
		t.Fatalf("eval failed: %v", err)
	}
	if i, _ := box.As[int](v); i != 7 {
		t.Errorf("expected 7, got %v", v)
	}
}

func TestEvalDivisionByZero(t *testing.T) {
	_, err := testEval(t, "1 / 0")
	if err == nil || !strings.Contains(err.Error(), "Division by zero") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestEvalMethodCallChaining(t *testing.T) {
	// each segment rebinds the receiver to the previous result
	if got := evalInt(t, "var v = [1]; v.push_back(2).size()"); got != 2 {
		t.Errorf("expected 2, got %d", got)
	}
}

func TestEvalStatementResultEmpty(t *testing.T) {
	inputs := []string{
		"var i = 0; while (i < 1) { i += 1 }",
		"var i = 0; for (i = 0; i < 1; i += 1) { 0 }",
		"def f { 1 }",
	}
	for _, input := range inputs {
		v, err := testEval(t, input)
		if err != nil {
			t.Fatalf("%q failed: %v", input, err)
		}
		if !v.IsEmpty() {
			t.Errorf("%q: expected empty result, got %v", input, v)
		}
	}
}

func TestEvalReturnSignalEscapes(t *testing.T) {
	_, err := testEval(t, "return 5")
	rs, ok := err.(*ReturnSignal)
	if !ok {
		t.Fatalf("expected ReturnSignal, got %v", err)
	}
	if i, _ := box.As[int](rs.Value); i != 5 {
		t.Errorf("expected 5, got %v", rs.Value)
	}
}

func TestEvalBreakSignalEscapes(t *testing.T) {
	_, err := testEval(t, "break")
	if _, ok := err.(*BreakSignal); !ok {
		t.Fatalf("expected BreakSignal, got %v", err)
	}
}

func TestEvalDumpObject(t *testing.T) {
	logger := &captureLogger{}
	s := newTestSystem(logger)
	if _, err := testEvalOn(t, s, "dump_object(42)"); err != nil {
		t.Fatalf("eval failed: %v", err)
	}
	if len(logger.lines) != 1 || !strings.Contains(logger.lines[0], "int") {
		t.Errorf("unexpected dump output: %v", logger.lines)
	}
}
