// decl.go implements the AST Declaration sum type (spec.md section 3).
// Var, Fun, and ExternFun all implement VariableDeclarable, exposing
// their declarer, name, written annotation and resolved type through one
// shared interface, the way the Global/Local Checker need to treat them
// uniformly when declaring symbols.

package ast

import "slc/src/util"

// Decl is any top-level or local declaration.
type Decl interface {
	Node
	decl()
}

// VariableDeclarable is implemented by every declaration that introduces
// a name with a type: Var, Fun, ExternFun.
type VariableDeclarable interface {
	Decl
	DeclName() string
	DeclDeclarer() Declarer
	WrittenType() Annotation
	ResolvedType() SemType
	SetResolvedType(SemType)
}

// DeclBase is embedded by every Decl implementation.
type DeclBase struct {
	Loc      util.Location
	Resolved SemType
}

func (d DeclBase) Location() util.Location { return d.Loc }
func (d *DeclBase) decl()                  {}
func (d *DeclBase) ResolvedType() SemType  { return d.Resolved }
func (d *DeclBase) SetResolvedType(t SemType) { d.Resolved = t }

// Var is "declarer name: annotation = initializer" (initializer and, in
// some contexts, the annotation may be omitted — spec.md section 4.2's
// implicit forms synthesize the missing annotation as "auto").
type Var struct {
	DeclBase
	Declarer    Declarer
	Name        string
	Annotation  Annotation
	Initializer Expr // nil if omitted.
}

func (v *Var) DeclName() string         { return v.Name }
func (v *Var) DeclDeclarer() Declarer    { return v.Declarer }
func (v *Var) WrittenType() Annotation   { return v.Annotation }

// Fun is a function declaration with a body.
type Fun struct {
	DeclBase
	Declarer   Declarer
	Name       string
	Params     []*Var
	Return     *Var // Return.Name is empty for an unnamed return; Return.Annotation is Void{} if omitted.
	Body       []Stmt
	Annotation Annotation // The full "fun(...) => ..." annotation, synthesized from Params/Return.
}

func (f *Fun) DeclName() string       { return f.Name }
func (f *Fun) DeclDeclarer() Declarer  { return f.Declarer }
func (f *Fun) WrittenType() Annotation { return f.Annotation }

// ExternFun is "extern fun name: annotation", a prototype with no body.
type ExternFun struct {
	DeclBase
	Name       string
	Annotation Annotation
}

func (e *ExternFun) DeclName() string         { return e.Name }
func (e *ExternFun) DeclDeclarer() Declarer    { return DeclarerConst }
func (e *ExternFun) WrittenType() Annotation   { return e.Annotation }

// StructField is one member declaration nested inside a Struct.
type StructField = Decl

// Struct is "struct Name { ...nested declarations... }".
type Struct struct {
	DeclBase
	Name    string
	Members []Decl
}

// NamespaceDecl is "namespace Name { ...nested declarations... }".
type NamespaceDecl struct {
	DeclBase
	Name    string
	Members []Decl
}
