// expr.go implements the AST Expression sum type (spec.md section 3).
// Every Expr carries a Location and an initially-null semantic Type slot
// filled by the Local Checker (src/sema). The four L-value kinds
// (Identifier, Dereference, Access, Index) additionally implement LValue.
//
// Grounded on the teacher's single tagged ir.Node (src/ir/nodetype.go),
// re-expressed per spec.md section 9 as one Go struct per expression kind
// implementing a common Expr interface, so the checkers and code
// generator can type-switch instead of double-dispatching through a
// visitor.

package ast

import "slc/src/util"

// SemType is the minimal surface an Expr's resolved semantic type exposes.
// The concrete implementations live in src/sema; this interface exists so
// package ast need not import sema (which itself needs to reference ast
// declarations), avoiding an import cycle.
type SemType interface {
	String() string
}

// Declarer is the var/const keyword that introduced a binding, governing
// mutability (spec.md section 3's Declarer in the glossary).
type Declarer int

const (
	DeclarerVar Declarer = iota
	DeclarerConst
)

func (d Declarer) String() string {
	if d == DeclarerConst {
		return "const"
	}
	return "var"
}

// Expr is any AST expression node.
type Expr interface {
	Node
	expr()
	// ExprType returns the node's resolved semantic type, or nil before
	// the Local Checker has run.
	ExprType() SemType
	// SetType is called exactly once by the Local Checker to populate
	// ExprType.
	SetType(SemType)
}

// LValue is implemented by expressions that denote a storable location:
// Identifier, Dereference, Access, Index (spec.md section 3).
type LValue interface {
	Expr
	// LDeclarer reports the mutability governing this location. The Local
	// Checker computes it (e.g. for Access, "const anywhere wins" per
	// spec.md section 4.6); it is meaningless before that pass runs.
	LDeclarer() Declarer
	SetLDeclarer(Declarer)
}

// ExprBase is embedded by every Expr implementation.
type ExprBase struct {
	Loc util.Location
	Typ SemType
}

func (e ExprBase) Location() util.Location  { return e.Loc }
func (e *ExprBase) expr()                   {}
func (e *ExprBase) ExprType() SemType       { return e.Typ }
func (e *ExprBase) SetType(t SemType)       { e.Typ = t }

// LValueBase is embedded by LValue implementations in addition to ExprBase.
type LValueBase struct {
	ExprBase
	Declarer Declarer
}

func (l *LValueBase) LDeclarer() Declarer        { return l.Declarer }
func (l *LValueBase) SetLDeclarer(d Declarer)     { l.Declarer = d }

// BinaryOp enumerates binary/logical operators.
type BinaryOp int

const (
	OpAdd BinaryOp = iota
	OpSub
	OpMul
	OpDiv
	OpMod
	OpPow
	OpEq
	OpNeq
	OpLt
	OpLte
	OpGt
	OpGte
	OpAnd
	OpOr
)

// UnaryOp enumerates prefix unary operators.
type UnaryOp int

const (
	OpNeg UnaryOp = iota // Unary '-'.
	OpNot                // Unary '!'.
	OpAddr               // Unary '&' (address-of).
	OpDeref              // Unary '*' (dereference); checked and lowered on the Unary node itself, not rewritten to Dereference.
)

// AssignOp enumerates '=' and the compound assignment operators.
type AssignOp int

const (
	AssignPlain AssignOp = iota
	AssignAdd
	AssignSub
	AssignMul
	AssignDiv
	AssignMod
	AssignXor
	AssignAnd
	AssignAndAnd
	AssignOr
	AssignOrOr
)

// Assign is "lhs op= rhs".
type Assign struct {
	ExprBase
	Op       AssignOp
	Target   Expr
	Value    Expr
}

func (*Assign) expr() {}

// Logical is "lhs and/or rhs" (short-circuiting; kept distinct from
// Binary so the code generator can branch rather than eagerly evaluate).
type Logical struct {
	ExprBase
	Op    BinaryOp
	Left  Expr
	Right Expr
}

// Binary is any non-short-circuiting binary operator.
type Binary struct {
	ExprBase
	Op    BinaryOp
	Left  Expr
	Right Expr
}

// Unary is a prefix unary expression, including '*': the Local Checker
// gives Unary{Op: OpDeref} dereference semantics in place rather than
// rewriting it to a Dereference node.
type Unary struct {
	ExprBase
	Op      UnaryOp
	Operand Expr
}

// Dereference is "*ptr"; an L-value whose declarer follows the pointer's.
type Dereference struct {
	LValueBase
	Operand Expr
}

// Call is "callee(args...)".
type Call struct {
	ExprBase
	Callee Expr
	Args   []Expr
}

// Cast is "expr as Type".
type Cast struct {
	ExprBase
	Operand    Expr
	Annotation Annotation
}

// Access is "left.member" or "left->member" (ArrowDeref distinguishes
// them; both resolve the same way once the left side is a pointer).
type Access struct {
	LValueBase
	Left       Expr
	Member     string
	ArrowDeref bool
}

// Index is "left[index]".
type Index struct {
	LValueBase
	Left  Expr
	Index Expr
}

// Grouping is "(expr)".
type Grouping struct {
	ExprBase
	Inner Expr
}

// Identifier is a bare or path-qualified name, e.g. "x" or "A::B::x".
type Identifier struct {
	LValueBase
	Path []string
}

// LiteralKind distinguishes Literal expressions.
type LiteralKind int

const (
	LitInt LiteralKind = iota
	LitFloat
	LitBool
	LitChar
	LitString
	LitNil
)

// Literal is a scalar literal: int, float, bool, char, string, or nil.
type Literal struct {
	ExprBase
	Kind   LiteralKind
	Int    int64
	Float  float64
	Bool   bool
	Char   rune
	String string
}

// Array is "[e1, e2, ...]".
type Array struct {
	ExprBase
	Elements []Expr
}

// ArrayGen is "[e ; n]": evaluates e n times at runtime.
type ArrayGen struct {
	ExprBase
	Gen  Expr
	Size Expr
}

// Tuple is "(e1, e2, ...)" with two or more elements, or "()"/"(e,)".
type Tuple struct {
	ExprBase
	Elements []Expr
}

// ObjectField is one "name: expr" pair of a struct literal.
type ObjectField struct {
	Name  string
	Value Expr
}

// Object is ":Path { field: expr, ... }", a struct literal.
type Object struct {
	ExprBase
	Annotation Annotation
	Fields     []ObjectField
}
