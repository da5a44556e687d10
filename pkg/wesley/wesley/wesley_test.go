package wesley

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/wesleylang/wesley/pkg/wesley/box"
	"github.com/wesleylang/wesley/pkg/wesley/errors"
)

func TestEvaluateAtoms(t *testing.T) {
	in := New(NullLogger())

	v, err := in.EvaluateString("42", EvalFilename)
	if err != nil {
		t.Fatalf("eval failed: %v", err)
	}
	if i, _ := box.As[int](v); i != 42 {
		t.Errorf("expected 42, got %v", v)
	}

	v, err = in.EvaluateString("1.5", EvalFilename)
	if err != nil {
		t.Fatalf("eval failed: %v", err)
	}
	if f, _ := box.As[float64](v); f != 1.5 {
		t.Errorf("expected exactly 1.5, got %v", v)
	}

	v, err = in.EvaluateString(`"hi"`, EvalFilename)
	if err != nil {
		t.Fatalf("eval failed: %v", err)
	}
	if s, _ := box.As[string](v); s != "hi" {
		t.Errorf("expected quotes stripped, got %q", s)
	}
}

// Re-entrant evaluation through the eval() builtin shares the registry and
// scope stack.
func TestEvalBuiltin(t *testing.T) {
	in := New(NullLogger())

	v, err := in.EvaluateString(`eval("2 + 2")`, EvalFilename)
	if err != nil {
		t.Fatalf("eval failed: %v", err)
	}
	if i, _ := box.As[int](v); i != 4 {
		t.Errorf("expected 4, got %v", v)
	}

	// state set inside eval() is visible afterwards
	if _, err := in.EvaluateString(`eval("var shared = 11")`, EvalFilename); err != nil {
		t.Fatalf("eval failed: %v", err)
	}
	v, err = in.EvaluateString("shared", EvalFilename)
	if err != nil {
		t.Fatalf("eval failed: %v", err)
	}
	if i, _ := box.As[int](v); i != 11 {
		t.Errorf("expected 11, got %v", v)
	}

	// non-string argument
	if _, err := in.EvaluateString("eval(1)", EvalFilename); err == nil {
		t.Error("expected error for eval of a non-string")
	}
}

func TestStatePersistsAcrossLines(t *testing.T) {
	in := New(NullLogger())
	if _, err := in.EvaluateString("var x = 5", EvalFilename); err != nil {
		t.Fatalf("eval failed: %v", err)
	}
	v, err := in.EvaluateString("x + 3", EvalFilename)
	if err != nil {
		t.Fatalf("eval failed: %v", err)
	}
	if i, _ := box.As[int](v); i != 8 {
		t.Errorf("expected 8, got %v", v)
	}
}

// A Return escaping the outermost call is the line's result.
func TestTopLevelReturn(t *testing.T) {
	in := New(NullLogger())
	v, err := in.EvaluateString("return 7", EvalFilename)
	if err != nil {
		t.Fatalf("expected return value as result, got %v", err)
	}
	if i, _ := box.As[int](v); i != 7 {
		t.Errorf("expected 7, got %v", v)
	}
}

func TestTopLevelBreak(t *testing.T) {
	in := New(NullLogger())
	_, err := in.EvaluateString("break", EvalFilename)
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "break outside loop") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestParseErrorReporting(t *testing.T) {
	in := New(NullLogger())
	_, err := in.EvaluateString("{ var x = 1", "script.wes")
	if err == nil {
		t.Fatal("expected parse error")
	}
	werr, ok := err.(*errors.Error)
	if !ok {
		t.Fatalf("expected *errors.Error, got %T", err)
	}
	if !werr.IsParse() {
		t.Errorf("expected parse class, got %s", werr.Class)
	}
	if got := werr.Report(); !strings.Contains(got, "Parsing error") || !strings.Contains(got, "script.wes") {
		t.Errorf("unexpected report: %s", got)
	}
}

func TestLexErrorBecomesParseError(t *testing.T) {
	in := New(NullLogger())
	_, err := in.EvaluateString("var x = `", "script.wes")
	if err == nil {
		t.Fatal("expected error")
	}
	werr, ok := err.(*errors.Error)
	if !ok || !werr.IsParse() {
		t.Errorf("expected parse-class error, got %v", err)
	}
}

// Scope depth is restored even when evaluation fails partway.
func TestScopeBalancedUnderFailure(t *testing.T) {
	in := New(NullLogger())
	depth := in.System().ScopeDepth()
	inputs := []string{"{ nope }", "if (1) { }", "def f { nope }; f()", "break"}
	for _, input := range inputs {
		in.EvaluateString(input, EvalFilename)
		if in.System().ScopeDepth() != depth {
			t.Errorf("%q: scope depth %d, want %d", input, in.System().ScopeDepth(), depth)
		}
	}
}

func TestPrintGoesToLogger(t *testing.T) {
	logger := NewBufferedLogger()
	in := New(logger)
	if _, err := in.EvaluateString(`print("one"); print(2)`, EvalFilename); err != nil {
		t.Fatalf("eval failed: %v", err)
	}
	lines := logger.Lines()
	if len(lines) != 2 || lines[0] != "one" || lines[1] != "2" {
		t.Errorf("unexpected output: %v", lines)
	}
}

func TestEvaluateFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "prog.wes")
	src := "def double(x) { x * 2 }\nvar r = double(21)\nr\n"
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}

	in := New(NullLogger())
	v, err := in.EvaluateFile(path)
	if err != nil {
		t.Fatalf("EvaluateFile failed: %v", err)
	}
	if i, _ := box.As[int](v); i != 42 {
		t.Errorf("expected 42, got %v", v)
	}

	if _, err := in.EvaluateFile(filepath.Join(dir, "missing.wes")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestHostRegistration(t *testing.T) {
	in := New(NullLogger())
	in.System().RegisterFunction(box.Fn2(func(a, b int) int {
		if a > b {
			return a
		}
		return b
	}), "max")

	v, err := in.EvaluateString("max(3, 9)", EvalFilename)
	if err != nil {
		t.Fatalf("eval failed: %v", err)
	}
	if i, _ := box.As[int](v); i != 9 {
		t.Errorf("expected 9, got %v", v)
	}
}

func TestErrorLocationInFile(t *testing.T) {
	in := New(NullLogger())
	_, err := in.EvaluateString("var x = 1\nfoo(x)\n", "script.wes")
	if err == nil {
		t.Fatal("expected error")
	}
	werr := err.(*errors.Error)
	if werr.Line != 2 {
		t.Errorf("expected error on line 2, got %d", werr.Line)
	}
	report := werr.Report()
	if !strings.Contains(report, "script.wes") || !strings.Contains(report, "line: 2") {
		t.Errorf("unexpected report: %s", report)
	}
}
