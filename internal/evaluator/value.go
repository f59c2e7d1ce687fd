// Package evaluator walks a parser.Program and executes it against a single
// flat environment, the way the original tree-walking interpreter does.
package evaluator

import "strings"

// Kind tags the variant held by a Value.
type Kind int

const (
	IntegerKind Kind = iota
	BooleanKind
	ListKind
	UndefinedKind
)

// Value is the runtime's tagged union: an Integer, a Boolean, a List, or
// Undefined. Lists own their elements; assigning a List copies it deeply so
// that mutating one binding never affects another.
type Value struct {
	Kind Kind
	Int  int64
	Bool bool
	List []Value
}

var Undefined = Value{Kind: UndefinedKind}

func Integer(i int64) Value { return Value{Kind: IntegerKind, Int: i} }

func Boolean(b bool) Value { return Value{Kind: BooleanKind, Bool: b} }

func EmptyList() Value { return Value{Kind: ListKind, List: []Value{}} }

// Copy returns a value safe to store under a different binding: scalars are
// already copied by Go's value semantics, but a List's backing slice is
// aliased unless copied explicitly.
func (v Value) Copy() Value {
	if v.Kind != ListKind {
		return v
	}
	out := make([]Value, len(v.List))
	for i, e := range v.List {
		out[i] = e.Copy()
	}
	return Value{Kind: ListKind, List: out}
}

// Render implements the §6.2 print contract: decimal integers, True/False
// booleans, and comma-space-separated bracketed lists.
func Render(v Value) string {
	var b strings.Builder
	render(&b, v)
	return b.String()
}

func render(b *strings.Builder, v Value) {
	switch v.Kind {
	case IntegerKind:
		writeInt(b, v.Int)
	case BooleanKind:
		if v.Bool {
			b.WriteString("True")
		} else {
			b.WriteString("False")
		}
	case ListKind:
		b.WriteByte('[')
		for i, e := range v.List {
			if i > 0 {
				b.WriteString(", ")
			}
			render(b, e)
		}
		b.WriteByte(']')
	default:
		b.WriteString("undefined")
	}
}

func writeInt(b *strings.Builder, i int64) {
	if i == 0 {
		b.WriteByte('0')
		return
	}
	n := i
	if n < 0 {
		b.WriteByte('-')
		n = -n
	}
	var digits [20]byte
	pos := len(digits)
	for n > 0 {
		pos--
		digits[pos] = byte('0' + n%10)
		n /= 10
	}
	b.Write(digits[pos:])
}
