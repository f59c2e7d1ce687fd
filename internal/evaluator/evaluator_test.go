package evaluator

import (
	"strings"
	"testing"

	"github.com/mxvl/minipy/internal/lexer"
	"github.com/mxvl/minipy/internal/parser"
)

func runSource(t *testing.T, src string) (string, error) {
	t.Helper()
	toks, err := lexer.New(src).Lex()
	if err != nil {
		t.Fatalf("lex error: %v", err)
	}
	prog, err := parser.New(toks).ParseProgram()
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	var out strings.Builder
	ev := New(func(s string) { out.WriteString(s) })
	runErr := ev.Run(prog)
	return out.String(), runErr
}

func TestPrintIntegerAssignment(t *testing.T) {
	out, err := runSource(t, "x = 42\nprint(x)\n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "42\n" {
		t.Fatalf("got %q", out)
	}
}

func TestFloorDivideAndArithmetic(t *testing.T) {
	out, err := runSource(t, "x = 10\ny = 3\nprint(x // y)\nprint(x - y * 2)\n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "3\n4\n" {
		t.Fatalf("got %q", out)
	}
}

func TestListAppendAndIndex(t *testing.T) {
	out, err := runSource(t, "a = list()\na.append(1)\na.append(2)\na.append(3)\nprint(a)\nprint(a[1])\n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "[1, 2, 3]\n2\n" {
		t.Fatalf("got %q", out)
	}
}

func TestIfElifElseDispatch(t *testing.T) {
	src := "x = 5\nif x > 0:\n  print(1)\nelif x == 0:\n  print(0)\nelse:\n  print(-1 + 0)\n"
	out, err := runSource(t, src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "1\n" {
		t.Fatalf("got %q", out)
	}
}

func TestWhileWithContinueAndBreakLikeLoop(t *testing.T) {
	src := "i = 0\nwhile i < 3:\n  if i == 1:\n    i = i + 1\n    continue\n  print(i)\n  i = i + 1\n"
	out, err := runSource(t, src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "0\n2\n" {
		t.Fatalf("got %q", out)
	}
}

func TestDivisionByZero(t *testing.T) {
	out, err := runSource(t, "x = 1\nprint(x // 0)\n")
	if err == nil {
		t.Fatalf("expected an error")
	}
	if err.Error() != "Division by zero" {
		t.Fatalf("unexpected message: %q", err.Error())
	}
	if out != "" {
		t.Fatalf("expected no output before the error, got %q", out)
	}
}

func TestBreakOutsideLoopIsRuntimeError(t *testing.T) {
	_, err := runSource(t, "break\n")
	if err == nil || err.Error() != "'break' outside loop" {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestContinueOutsideLoopIsRuntimeError(t *testing.T) {
	_, err := runSource(t, "continue\n")
	if err == nil || err.Error() != "'continue' outside loop" {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestNonBooleanConditionIsRejected(t *testing.T) {
	_, err := runSource(t, "if 1:\n  print(1)\n")
	if err == nil {
		t.Fatalf("expected an error for a non-boolean condition")
	}
}

func TestShortCircuitAndSkipsRightSide(t *testing.T) {
	src := "a = list()\nx = False and a[0] == 1\nprint(x)\n"
	out, err := runSource(t, src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "False\n" {
		t.Fatalf("got %q", out)
	}
}

func TestShortCircuitOrSkipsRightSide(t *testing.T) {
	src := "a = list()\nx = True or a[0] == 1\nprint(x)\n"
	out, err := runSource(t, src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "True\n" {
		t.Fatalf("got %q", out)
	}
}

func TestUndefinedVariableError(t *testing.T) {
	_, err := runSource(t, "print(x)\n")
	if err == nil || err.Error() != "Undefined variable 'x'" {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestIndexOutOfRangeError(t *testing.T) {
	_, err := runSource(t, "a = list()\na.append(1)\nprint(a[5])\n")
	if err == nil || err.Error() != "List index out of range" {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestNegativeIndexError(t *testing.T) {
	_, err := runSource(t, "a = list()\na.append(1)\nprint(a[-1])\n")
	if err == nil || err.Error() != "List index cannot be negative" {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestListEqualityIsRejected(t *testing.T) {
	_, err := runSource(t, "a = list()\nb = list()\nprint(a == b)\n")
	if err == nil || err.Error() != "Cannot compare lists" {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestMixedListAndScalarEqualityReportsTypeMismatch(t *testing.T) {
	_, err := runSource(t, "a = list()\nb = 1\nprint(a == b)\n")
	if err == nil || err.Error() != "Equality comparison requires same types" {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestIndexAssignmentReplacesInPlace(t *testing.T) {
	src := "a = list()\na.append(1)\na.append(2)\na[0] = 9\nprint(a)\n"
	out, err := runSource(t, src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "[9, 2]\n" {
		t.Fatalf("got %q", out)
	}
}

func TestAssignmentCopiesLists(t *testing.T) {
	src := "a = list()\na.append(1)\nb = a\nb.append(2)\nprint(a)\nprint(b)\n"
	out, err := runSource(t, src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "[1]\n[1, 2]\n" {
		t.Fatalf("got %q", out)
	}
}

func TestNegativeLiteralIsUnaryNeg(t *testing.T) {
	out, err := runSource(t, "print(-5)\n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "-5\n" {
		t.Fatalf("got %q", out)
	}
}

func TestBooleanRendering(t *testing.T) {
	out, err := runSource(t, "print(True)\nprint(False)\n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "True\nFalse\n" {
		t.Fatalf("got %q", out)
	}
}

func TestSideEffectFreeProgramProducesNoOutput(t *testing.T) {
	out, err := runSource(t, "x = 1\ny = x + 1\n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "" {
		t.Fatalf("expected no output, got %q", out)
	}
}
