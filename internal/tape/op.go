package tape

import "fmt"

// OpCode identifies an elementary operator recorded on a tape.
//
// The set is closed: every sweep dispatches with a switch over these
// values, and the arity of each opcode is fixed by the tables below.
type OpCode uint8

// Operator codes. Suffixes name the operand kinds: v for a variable row,
// p for a parameter-pool entry.
const (
	Inv OpCode = iota // independent variable

	Addvv
	Addpv
	Addvp
	Subvv
	Subpv
	Subvp
	Mulvv
	Mulpv
	Mulvp
	Divvv
	Divpv
	Divvp

	Neg
	Abs
	Exp
	Log
	Sqrt

	Sin  // results: cos (auxiliary), sin
	Cos  // results: sin (auxiliary), cos
	Atan // results: 1+x*x (auxiliary), atan

	Powvv // results: log(x), log(x)*y, exp(log(x)*y)
	Powpv
	Powvp

	Ldp // load, parameter index
	Ldv // load, variable index

	Stpp // store, parameter index, parameter value
	Stpv // store, parameter index, variable value
	Stvp // store, variable index, parameter value
	Stvv // store, variable index, variable value

	Com // comparison

	numOps
)

var opNames = [numOps]string{
	Inv:   "Inv",
	Addvv: "Addvv", Addpv: "Addpv", Addvp: "Addvp",
	Subvv: "Subvv", Subpv: "Subpv", Subvp: "Subvp",
	Mulvv: "Mulvv", Mulpv: "Mulpv", Mulvp: "Mulvp",
	Divvv: "Divvv", Divpv: "Divpv", Divvp: "Divvp",
	Neg: "Neg", Abs: "Abs", Exp: "Exp", Log: "Log", Sqrt: "Sqrt",
	Sin: "Sin", Cos: "Cos", Atan: "Atan",
	Powvv: "Powvv", Powpv: "Powpv", Powvp: "Powvp",
	Ldp: "Ldp", Ldv: "Ldv",
	Stpp: "Stpp", Stpv: "Stpv", Stvp: "Stvp", Stvv: "Stvv",
	Com: "Com",
}

var numArg = [numOps]int{
	Inv:   0,
	Addvv: 2, Addpv: 2, Addvp: 2,
	Subvv: 2, Subpv: 2, Subvp: 2,
	Mulvv: 2, Mulpv: 2, Mulvp: 2,
	Divvv: 2, Divpv: 2, Divvp: 2,
	Neg: 1, Abs: 1, Exp: 1, Log: 1, Sqrt: 1,
	Sin: 1, Cos: 1, Atan: 1,
	Powvv: 2, Powpv: 2, Powvp: 2,
	Ldp: 3, Ldv: 3,
	Stpp: 3, Stpv: 3, Stvp: 3, Stvv: 3,
	Com: 4,
}

var numRes = [numOps]int{
	Inv:   1,
	Addvv: 1, Addpv: 1, Addvp: 1,
	Subvv: 1, Subpv: 1, Subvp: 1,
	Mulvv: 1, Mulpv: 1, Mulvp: 1,
	Divvv: 1, Divpv: 1, Divvp: 1,
	Neg: 1, Abs: 1, Exp: 1, Log: 1, Sqrt: 1,
	Sin: 2, Cos: 2, Atan: 2,
	Powvv: 3, Powpv: 3, Powvp: 3,
	Ldp: 1, Ldv: 1,
	Stpp: 0, Stpv: 0, Stvp: 0, Stvv: 0,
	Com: 0,
}

// NumArg returns the number of argument slots used by op.
func (op OpCode) NumArg() int {
	return numArg[op]
}

// NumRes returns the number of tape rows produced by op.
func (op OpCode) NumRes() int {
	return numRes[op]
}

// Valid reports whether op is a known opcode.
func (op OpCode) Valid() bool {
	return op < numOps
}

// String returns the opcode mnemonic.
func (op OpCode) String() string {
	if !op.Valid() {
		return fmt.Sprintf("OpCode(%d)", uint8(op))
	}
	return opNames[op]
}

// ArgIsVar reports whether argument slot k of op refers to a variable row.
// Slots that hold a parameter-pool index, a combined offset, an integer
// vector index, a load slot or packed flags report false.
func (op OpCode) ArgIsVar(k int) bool {
	switch op {
	case Addvv, Subvv, Mulvv, Divvv, Powvv:
		return k < 2
	case Addpv, Subpv, Mulpv, Divpv, Powpv:
		return k == 1
	case Addvp, Subvp, Mulvp, Divvp, Powvp:
		return k == 0
	case Neg, Abs, Exp, Log, Sqrt, Sin, Cos, Atan:
		return k == 0
	case Ldv:
		return k == 1
	case Stpv:
		return k == 2
	case Stvp:
		return k == 1
	case Stvv:
		return k == 1 || k == 2
	}
	return false
}

// ArgIsPar reports whether argument slot k of op is a parameter-pool index.
func (op OpCode) ArgIsPar(k int) bool {
	switch op {
	case Addpv, Subpv, Mulpv, Divpv, Powpv:
		return k == 0
	case Addvp, Subvp, Mulvp, Divvp, Powvp:
		return k == 1
	case Stpp, Stvp:
		return k == 2
	}
	return false
}

// Op is one operator record.
//
// Res is the primary (last) result row; an operator with several results
// owns rows Res-NumRes()+1 through Res. Operators without results carry
// the next unassigned row in Res so ordering can still be checked.
type Op struct {
	Code OpCode
	Arg  [4]int
	Res  int
}

// FirstRes returns the first row written by the operator.
func (o Op) FirstRes() int {
	n := o.Code.NumRes()
	if n == 0 {
		return o.Res
	}
	return o.Res - n + 1
}

// CompareOp is the comparison class packed into Arg[0] of a Com record.
type CompareOp int

// Comparison classes.
const (
	CompareLt CompareOp = iota
	CompareLe
	CompareGt
	CompareGe
	CompareEq
	CompareNe
)

// Eval applies the comparison to two values.
func (c CompareOp) Eval(x, y float64) bool {
	switch c {
	case CompareLt:
		return x < y
	case CompareLe:
		return x <= y
	case CompareGt:
		return x > y
	case CompareGe:
		return x >= y
	case CompareEq:
		return x == y
	case CompareNe:
		return x != y
	}
	panic(fmt.Sprintf("tape: unknown comparison %d", int(c)))
}

// Flags packed into Arg[1] of a Com record.
const (
	CompareResult   = 1 << 0 // recorded boolean result
	CompareLeftVar  = 1 << 1 // left operand is a variable row
	CompareRightVar = 1 << 2 // right operand is a variable row
)
