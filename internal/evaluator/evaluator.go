package evaluator

import (
	"fmt"

	"github.com/mxvl/minipy/internal/parser"
)

// RuntimeError reports a failure discovered while walking the AST: a type
// mismatch, an undefined variable, an out-of-range index, or a break/continue
// outside any loop. The front-end renders it as "Error: <Msg>".
type RuntimeError struct {
	Msg string
}

func (e *RuntimeError) Error() string { return e.Msg }

func runtimeErrorf(format string, args ...interface{}) *RuntimeError {
	return &RuntimeError{Msg: fmt.Sprintf(format, args...)}
}

// breakSignal and continueSignal are sentinel errors that unwind statement
// evaluation up to the innermost enclosing While, which is the only place
// that catches them. Anything else that sees one simply propagates it.
type breakSignal struct{}

func (breakSignal) Error() string { return "break" }

type continueSignal struct{}

func (continueSignal) Error() string { return "continue" }

// Evaluator walks a parsed program against a single flat Environment,
// printing through out as it goes.
type Evaluator struct {
	env      *Environment
	out      func(string)
	loopDepth int
}

// New builds an Evaluator. out receives each rendered print line, already
// terminated with a single "\n".
func New(out func(string)) *Evaluator {
	return &Evaluator{env: NewEnvironment(), out: out}
}

// Run executes an entire program's statements in order.
func (ev *Evaluator) Run(prog *parser.Program) error {
	return ev.execStatements(prog.Statements)
}

func (ev *Evaluator) execStatements(stmts []parser.Stmt) error {
	for _, s := range stmts {
		if err := ev.execStmt(s); err != nil {
			return err
		}
	}
	return nil
}

func (ev *Evaluator) execStmt(s parser.Stmt) error {
	switch stmt := s.(type) {
	case parser.AssignStmt:
		v, err := ev.eval(stmt.Value)
		if err != nil {
			return err
		}
		ev.env.Set(stmt.Name, v)
		return nil

	case parser.MakeListStmt:
		ev.env.Set(stmt.Name, EmptyList())
		return nil

	case parser.IndexAssignStmt:
		return ev.execIndexAssign(stmt)

	case parser.AppendStmt:
		return ev.execAppend(stmt)

	case parser.PrintStmt:
		v, err := ev.eval(stmt.Value)
		if err != nil {
			return err
		}
		ev.out(Render(v) + "\n")
		return nil

	case parser.BreakStmt:
		if ev.loopDepth == 0 {
			return runtimeErrorf("'break' outside loop")
		}
		return breakSignal{}

	case parser.ContinueStmt:
		if ev.loopDepth == 0 {
			return runtimeErrorf("'continue' outside loop")
		}
		return continueSignal{}

	case parser.IfStmt:
		return ev.execIf(stmt)

	case parser.WhileStmt:
		return ev.execWhile(stmt)

	default:
		return runtimeErrorf("unsupported statement %T", stmt)
	}
}

func (ev *Evaluator) execIndexAssign(stmt parser.IndexAssignStmt) error {
	list, err := ev.env.GetList(stmt.Name)
	if err != nil {
		return err
	}
	idx, err := ev.evalIndex(stmt.Index, len(list))
	if err != nil {
		return err
	}
	v, err := ev.eval(stmt.Value)
	if err != nil {
		return err
	}
	list[idx] = v.Copy()
	ev.env.MutateList(stmt.Name, list)
	return nil
}

func (ev *Evaluator) execAppend(stmt parser.AppendStmt) error {
	list, err := ev.env.GetList(stmt.Name)
	if err != nil {
		return err
	}
	v, err := ev.eval(stmt.Value)
	if err != nil {
		return err
	}
	ev.env.MutateList(stmt.Name, append(list, v.Copy()))
	return nil
}

func (ev *Evaluator) execIf(stmt parser.IfStmt) error {
	cond, err := ev.evalBoolCondition(stmt.Cond)
	if err != nil {
		return err
	}
	if cond {
		return ev.execStatements(stmt.Then.Statements)
	}
	for _, elif := range stmt.Elifs {
		cond, err := ev.evalBoolCondition(elif.Cond)
		if err != nil {
			return err
		}
		if cond {
			return ev.execStatements(elif.Body.Statements)
		}
	}
	if stmt.Else != nil {
		return ev.execStatements(stmt.Else.Statements)
	}
	return nil
}

// execWhile increments loopDepth before evaluating the body and restores it
// on every exit path, including the error path, so a runtime error raised
// deep inside a loop never leaves loopDepth stuck.
func (ev *Evaluator) execWhile(stmt parser.WhileStmt) error {
	ev.loopDepth++
	defer func() { ev.loopDepth-- }()

	for {
		cond, err := ev.evalBoolCondition(stmt.Cond)
		if err != nil {
			return err
		}
		if !cond {
			return nil
		}

		err = ev.execStatements(stmt.Body.Statements)
		if err == nil {
			continue
		}
		switch err.(type) {
		case breakSignal:
			return nil
		case continueSignal:
			continue
		default:
			return err
		}
	}
}

// evalBoolCondition enforces strict boolean-only conditions: no integer or
// list value is ever truthy.
func (ev *Evaluator) evalBoolCondition(e parser.Expr) (bool, error) {
	v, err := ev.eval(e)
	if err != nil {
		return false, err
	}
	if v.Kind != BooleanKind {
		return false, runtimeErrorf("Condition must be boolean")
	}
	return v.Bool, nil
}

func (ev *Evaluator) eval(e parser.Expr) (Value, error) {
	switch expr := e.(type) {
	case parser.NumberLit:
		return Integer(expr.Value), nil

	case parser.BoolLit:
		return Boolean(expr.Value), nil

	case parser.VarExpr:
		return ev.env.Get(expr.Name)

	case parser.IndexExpr:
		return ev.evalIndexExpr(expr)

	case parser.UnaryExpr:
		return ev.evalUnary(expr)

	case parser.BinaryExpr:
		return ev.evalBinary(expr)

	default:
		return Value{}, runtimeErrorf("unsupported expression %T", expr)
	}
}

func (ev *Evaluator) evalIndexExpr(expr parser.IndexExpr) (Value, error) {
	list, err := ev.env.GetList(expr.Name)
	if err != nil {
		return Value{}, err
	}
	idx, err := ev.evalIndex(expr.Index, len(list))
	if err != nil {
		return Value{}, err
	}
	return list[idx], nil
}

// evalIndex evaluates an index expression and validates it against length,
// producing the three distinct messages the language distinguishes.
func (ev *Evaluator) evalIndex(e parser.Expr, length int) (int, error) {
	v, err := ev.eval(e)
	if err != nil {
		return 0, err
	}
	if v.Kind != IntegerKind {
		return 0, runtimeErrorf("List index must be an integer")
	}
	if v.Int < 0 {
		return 0, runtimeErrorf("List index cannot be negative")
	}
	if v.Int >= int64(length) {
		return 0, runtimeErrorf("List index out of range")
	}
	return int(v.Int), nil
}

func (ev *Evaluator) evalUnary(expr parser.UnaryExpr) (Value, error) {
	v, err := ev.eval(expr.Operand)
	if err != nil {
		return Value{}, err
	}
	switch expr.Op {
	case parser.Neg:
		if v.Kind != IntegerKind {
			return Value{}, runtimeErrorf("Unary minus requires integer operand")
		}
		return Integer(-v.Int), nil
	case parser.Not:
		if v.Kind != BooleanKind {
			return Value{}, runtimeErrorf("Logical not requires boolean operand")
		}
		return Boolean(!v.Bool), nil
	default:
		return Value{}, runtimeErrorf("unsupported unary operator")
	}
}

func (ev *Evaluator) evalBinary(expr parser.BinaryExpr) (Value, error) {
	switch expr.Op {
	case parser.And:
		return ev.evalShortCircuit(expr, false)
	case parser.Or:
		return ev.evalShortCircuit(expr, true)
	}

	left, err := ev.eval(expr.Left)
	if err != nil {
		return Value{}, err
	}
	right, err := ev.eval(expr.Right)
	if err != nil {
		return Value{}, err
	}

	switch expr.Op {
	case parser.Eq:
		return ev.evalEquality(left, right, true)
	case parser.Ne:
		return ev.evalEquality(left, right, false)
	}

	if left.Kind != IntegerKind || right.Kind != IntegerKind {
		return Value{}, runtimeErrorf("%s requires integer operands", binaryOpVerb(expr.Op))
	}

	switch expr.Op {
	case parser.Add:
		return Integer(left.Int + right.Int), nil
	case parser.Sub:
		return Integer(left.Int - right.Int), nil
	case parser.Mul:
		return Integer(left.Int * right.Int), nil
	case parser.Div:
		if right.Int == 0 {
			return Value{}, runtimeErrorf("Division by zero")
		}
		return Integer(left.Int / right.Int), nil
	case parser.Lt:
		return Boolean(left.Int < right.Int), nil
	case parser.Le:
		return Boolean(left.Int <= right.Int), nil
	case parser.Gt:
		return Boolean(left.Int > right.Int), nil
	case parser.Ge:
		return Boolean(left.Int >= right.Int), nil
	default:
		return Value{}, runtimeErrorf("unsupported binary operator")
	}
}

// evalShortCircuit evaluates the left side first; if it alone already
// determines the result (false for And, true for Or) the right side is
// never evaluated, so an error on the right is suppressed.
func (ev *Evaluator) evalShortCircuit(expr parser.BinaryExpr, shortCircuitsOn bool) (Value, error) {
	left, err := ev.eval(expr.Left)
	if err != nil {
		return Value{}, err
	}
	if left.Kind != BooleanKind {
		return Value{}, runtimeErrorf("%s requires boolean operands", binaryOpVerb(expr.Op))
	}
	if left.Bool == shortCircuitsOn {
		return Boolean(shortCircuitsOn), nil
	}

	right, err := ev.eval(expr.Right)
	if err != nil {
		return Value{}, err
	}
	if right.Kind != BooleanKind {
		return Value{}, runtimeErrorf("%s requires boolean operands", binaryOpVerb(expr.Op))
	}
	return right, nil
}

func (ev *Evaluator) evalEquality(left, right Value, wantEqual bool) (Value, error) {
	if left.Kind != right.Kind {
		return Value{}, runtimeErrorf("Equality comparison requires same types")
	}
	if left.Kind == ListKind {
		return Value{}, runtimeErrorf("Cannot compare lists")
	}

	var equal bool
	switch left.Kind {
	case IntegerKind:
		equal = left.Int == right.Int
	case BooleanKind:
		equal = left.Bool == right.Bool
	default:
		return Value{}, runtimeErrorf("Cannot compare undefined values")
	}

	if wantEqual {
		return Boolean(equal), nil
	}
	return Boolean(!equal), nil
}

// binaryOpVerb names the operator the way the runtime error messages do:
// "Addition", "Comparison", "Logical AND", and so on, each paired with
// "requires integer/boolean operands" at the call site.
func binaryOpVerb(op parser.BinaryOp) string {
	switch op {
	case parser.Add:
		return "Addition"
	case parser.Sub:
		return "Subtraction"
	case parser.Mul:
		return "Multiplication"
	case parser.Div:
		return "Division"
	case parser.Lt, parser.Le, parser.Gt, parser.Ge:
		return "Comparison"
	case parser.And:
		return "Logical AND"
	case parser.Or:
		return "Logical OR"
	default:
		return "Operation"
	}
}
