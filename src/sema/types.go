// types.go implements the semantic Type system (spec.md section 4.4):
// Struct, Function, Array, Pointer, Tuple, Blank, with string-equality
// compatibility and the Blank unification mechanism that drives local type
// inference. Grounded on original_source/src/checker/type.h, re-expressed
// as a Go interface + concrete struct per type kind (the same tagged-sum
// pattern used throughout package ast) rather than a C++ class hierarchy.
//
// Go has no shared_ptr aliasing, so "the blank side is mutated in place"
// (type.h's Type::are_compatible taking shared_ptr&) is reinterpreted here
// as AreCompatible returning the type the caller should store wherever the
// blank was referenced (SetResolvedType on a Var, SetType on an Expr):
// see DESIGN.md's Open Question decisions.
package sema

import (
	"strings"

	"slc/src/ast"
)

// Kind discriminates the concrete Type implementations.
type Kind int

const (
	KindStruct Kind = iota
	KindFunction
	KindArray
	KindPointer
	KindTuple
	KindBlank
)

// Type is a resolved semantic type; its String form is also its equality
// and compatibility key (spec.md section 3).
type Type interface {
	ast.SemType
	Kind() Kind
}

// StructType names a struct (including installed primitives) by the
// unique_name of its StructScope in the namespace tree.
type StructType struct {
	Scope *StructScope
}

func (t *StructType) Kind() Kind      { return KindStruct }
func (t *StructType) String() string  { return t.Scope.UniqueName }

// FuncParam is one parameter slot of a FunctionType.
type FuncParam struct {
	Mutable bool
	Type    Type
}

// FunctionType is a function's signature: ordered parameters (each with
// its own mutability), a return type and mutability, and a variadic flag
// for extern declarations like "fun(i32, ...) => i32".
type FunctionType struct {
	Params    []FuncParam
	ReturnMut bool
	Return    Type
	Variadic  bool
}

func (t *FunctionType) Kind() Kind { return KindFunction }
func (t *FunctionType) String() string {
	sb := strings.Builder{}
	sb.WriteString("fun(")
	for _, p := range t.Params {
		if p.Mutable {
			sb.WriteString("var ")
		}
		sb.WriteString(p.Type.String())
		sb.WriteString(", ")
	}
	if t.Variadic {
		sb.WriteString("...")
	}
	sb.WriteString(") => ")
	if t.ReturnMut {
		sb.WriteString("var ")
	}
	sb.WriteString(t.Return.String())
	return sb.String()
}

// ArrayType is a fixed- or unresolved-size array of Inner. Size is -1
// until known (spec.md section 3's "size or -1 when unresolved").
type ArrayType struct {
	Inner Type
	Size  int
}

func (t *ArrayType) Kind() Kind     { return KindArray }
func (t *ArrayType) String() string { return t.Inner.String() + "[]" }

// PointerType is a pointer to Inner; Mutable governs whether the pointee
// can be written through it. Mutability is not part of the canonical
// string (original_source/src/checker/type.h's Pointer::to_string), only
// of the Annotation's diagnostic form.
type PointerType struct {
	Mutable bool
	Inner   Type
}

func (t *PointerType) Kind() Kind     { return KindPointer }
func (t *PointerType) String() string { return t.Inner.String() + "*" }

// TupleType is an ordered list of element types.
type TupleType struct {
	Elements []Type
}

func (t *TupleType) Kind() Kind { return KindTuple }
func (t *TupleType) String() string {
	sb := strings.Builder{}
	sb.WriteByte('(')
	for _, e := range t.Elements {
		sb.WriteString(e.String())
		sb.WriteString(", ")
	}
	sb.WriteByte(')')
	return sb.String()
}

// BlankType is the placeholder used for as-yet-uninferred declarations
// (spec.md section 4.4). Its canonical string is empty; it never equals
// anything by the kind==kind branch of AreCompatible except another Blank.
type BlankType struct{}

func (t *BlankType) Kind() Kind     { return KindBlank }
func (t *BlankType) String() string { return "" }

// AreCompatible implements spec.md section 4.4's compatibility rule. It
// returns the type that should be stored wherever a Blank operand was
// referenced, and whether the two types are compatible at all.
func AreCompatible(a, b Type) (unified Type, ok bool) {
	if a.Kind() == b.Kind() {
		return a, a.String() == b.String()
	}
	if a.Kind() == KindBlank {
		if blankArray(b) {
			return nil, false
		}
		return b, true
	}
	if b.Kind() == KindBlank {
		if blankArray(a) {
			return nil, false
		}
		return a, true
	}
	return nil, false
}

// blankArray reports whether t is an array whose element type is still
// Blank: such an array is never compatible with a bare Blank, since an
// empty array literal carries no inferable element type.
func blankArray(t Type) bool {
	arr, ok := t.(*ArrayType)
	return ok && arr.Inner != nil && arr.Inner.Kind() == KindBlank
}

// Primitive integer/float canonical names (spec.md section 4.4).
var intTypeNames = map[string]bool{"::i8": true, "::i16": true, "::i32": true, "::i64": true, "::char": true}
var floatTypeNames = map[string]bool{"::f32": true, "::f64": true}

// IsInt reports whether t is one of the primitive integer types.
func IsInt(t Type) bool { return intTypeNames[t.String()] }

// IsFloat reports whether t is one of the primitive float types.
func IsFloat(t Type) bool { return floatTypeNames[t.String()] }

// IsNumeric reports whether t is an integer or float primitive.
func IsNumeric(t Type) bool { return IsInt(t) || IsFloat(t) }

// IsAggregate reports whether t must be stored via a pointer/alloca in
// code generation rather than carried as an SSA value (spec.md section
// 4.4): arrays, tuples, and non-primitive structs.
func IsAggregate(t Type) bool {
	switch v := t.(type) {
	case *ArrayType, *TupleType:
		return true
	case *StructType:
		return v.Scope != nil && !v.Scope.Primitive
	}
	return false
}
