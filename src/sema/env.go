// env.go implements the Namespace Tree & Environment (spec.md section
// 4.3): a single-instance registry of scopes (root, namespace, struct,
// local) and Variable nodes, with upward and downward name resolution.
// Grounded on original_source/src/checker/environment.cpp and scope.h,
// re-expressed as Go structs implementing a small ScopeNode interface
// instead of a dynamic_pointer_cast-based class hierarchy; downward_lookup
// here follows spec.md section 4.3's fuller "retry from successively
// higher scopes" algorithm rather than the original's two-attempt version.
package sema

import (
	"errors"
	"fmt"

	"slc/src/ast"
	"slc/src/util"
)

// ScopeKind distinguishes the four scope varieties of spec.md section 3.
type ScopeKind int

const (
	ScopeRoot ScopeKind = iota
	ScopeNamespace
	ScopeStructKind
	ScopeLocal
)

// ScopeNode is any node reachable during name resolution: *Scope,
// *StructScope, or *Variable.
type ScopeNode interface {
	scopeNode()
}

// Scope is a root, namespace, or local scope node.
type Scope struct {
	Kind       ScopeKind
	Name       string
	UniqueName string
	Parent     ScopeNode
	Children   map[string]ScopeNode
}

func (*Scope) scopeNode() {}

// StructScope is a struct (user-defined or installed primitive). It
// additionally carries its ordered instance members and a lazily-filled
// code-gen struct type handle (spec.md section 3); codegen fills LLVMType
// with whatever concrete value its backend needs, kept opaque here so
// this package does not import the LLVM bindings.
type StructScope struct {
	Scope
	InstanceMembers map[string]ast.Decl
	MemberOrder     []string
	LLVMType        interface{}
	Primitive       bool
}

func childrenOf(n ScopeNode) map[string]ScopeNode {
	switch v := n.(type) {
	case *Scope:
		return v.Children
	case *StructScope:
		return v.Children
	}
	return nil
}

func parentOf(n ScopeNode) ScopeNode {
	switch v := n.(type) {
	case *Scope:
		return v.Parent
	case *StructScope:
		return v.Parent
	}
	return nil
}

func uniqueNameOf(n ScopeNode) string {
	switch v := n.(type) {
	case *Scope:
		return v.UniqueName
	case *StructScope:
		return v.UniqueName
	}
	return ""
}

// Variable is a declared name: a back-pointer to its AST declaration and
// its resolved (or still-Blank) Type. The LLVM value handle for a
// variable's storage lives in the code generator's own side table, not
// here (spec.md section 9).
type Variable struct {
	Decl ast.VariableDeclarable
	Type Type
}

func (*Variable) scopeNode() {}

var primitiveNames = []string{"i8", "i16", "i32", "i64", "f32", "f64", "bool", "char", "void"}

// ErrUnknownType is returned by GetType when an annotation names a symbol
// that cannot be resolved in the current scope chain.
var ErrUnknownType = errors.New("unknown type")

// Environment is the process-wide, single-active-compilation registry
// described by spec.md section 4.3 and section 5's concurrency model.
type Environment struct {
	root        *Scope
	current     ScopeNode
	localStamp  util.Stamper
	structOrder []*StructScope
	funcOrder   []*Variable
}

// NewEnvironment returns a freshly reset Environment.
func NewEnvironment() *Environment {
	e := &Environment{}
	e.Reset()
	return e
}

// Reset restores the Environment to its just-initialized state: an empty
// root scope with the primitive StructScopes installed (spec.md section 5).
func (e *Environment) Reset() {
	e.root = &Scope{Kind: ScopeRoot, Children: map[string]ScopeNode{}}
	e.current = e.root
	e.localStamp = util.Stamper{}
	e.structOrder = nil
	e.funcOrder = nil
	e.installPrimitives()
}

func (e *Environment) installPrimitives() {
	for _, name := range primitiveNames {
		ss := &StructScope{
			Scope: Scope{
				Kind:       ScopeStructKind,
				Name:       name,
				UniqueName: "::" + name,
				Parent:     e.root,
				Children:   map[string]ScopeNode{},
			},
			InstanceMembers: map[string]ast.Decl{},
			Primitive:       true,
		}
		e.root.Children[name] = ss
		e.structOrder = append(e.structOrder, ss)
	}
}

// Current returns the scope the Environment is presently positioned at.
func (e *Environment) Current() ScopeNode { return e.current }

// UpwardLookup searches the current scope, then each parent in turn,
// crossing namespace/struct/local boundaries without restriction (spec.md
// section 4.3).
func (e *Environment) UpwardLookup(name string) ScopeNode {
	for cur := e.current; cur != nil; cur = parentOf(cur) {
		if kids := childrenOf(cur); kids != nil {
			if n, ok := kids[name]; ok {
				return n
			}
		}
	}
	return nil
}

// descend walks path[:len-1] as scope names starting at start, then looks
// up the final segment as a child of the last scope reached.
func descend(start ScopeNode, path []string) ScopeNode {
	cur := start
	for _, seg := range path[:len(path)-1] {
		kids := childrenOf(cur)
		if kids == nil {
			return nil
		}
		next, ok := kids[seg]
		if !ok {
			return nil
		}
		cur = next
	}
	kids := childrenOf(cur)
	if kids == nil {
		return nil
	}
	n, ok := kids[path[len(path)-1]]
	if !ok {
		return nil
	}
	return n
}

// DownwardLookup resolves a qualified path A::B::...::x, trying a
// whole-path descent from the current scope, then from each ancestor in
// turn up to and including the root (spec.md section 4.3).
func (e *Environment) DownwardLookup(path []string) ScopeNode {
	start := e.current
	for {
		if n := descend(start, path); n != nil {
			return n
		}
		if start == ScopeNode(e.root) {
			return nil
		}
		next := parentOf(start)
		if next == nil {
			return nil
		}
		start = next
	}
}

// Enter pushes into an existing named namespace or struct child of the
// current scope.
func (e *Environment) Enter(name string) error {
	kids := childrenOf(e.current)
	child, ok := kids[name]
	if !ok {
		return fmt.Errorf("%q is not declared here", name)
	}
	switch child.(type) {
	case *Scope, *StructScope:
		e.current = child
		return nil
	default:
		return fmt.Errorf("%q is not a namespace or struct", name)
	}
}

// Exit moves the cursor to the current scope's parent; it is an error to
// exit the root scope.
func (e *Environment) Exit() error {
	p := parentOf(e.current)
	if p == nil {
		return fmt.Errorf("cannot exit the root scope")
	}
	e.current = p
	return nil
}

// IncreaseLocalScope creates a new anonymous, counter-stamped local scope
// as a child of the current scope and enters it. Local scopes are never
// registered in their parent's Children map (spec.md section 3's "do not
// outlive their scope" invariant): they exist only via the parent chain
// while the checker's cursor is inside them.
func (e *Environment) IncreaseLocalScope() {
	n := e.localStamp.Next()
	e.current = &Scope{
		Kind:       ScopeLocal,
		Name:       fmt.Sprintf("L%d", n),
		UniqueName: fmt.Sprintf("%s::L%d", uniqueNameOf(e.current), n),
		Parent:     e.current,
		Children:   map[string]ScopeNode{},
	}
}

// AddNamespace declares and enters a new namespace; permitted only at
// root or namespace scope.
func (e *Environment) AddNamespace(name string) error {
	s, ok := e.current.(*Scope)
	if !ok || (s.Kind != ScopeRoot && s.Kind != ScopeNamespace) {
		return fmt.Errorf("namespaces may only be declared at root or namespace scope")
	}
	if _, exists := s.Children[name]; exists {
		return fmt.Errorf("%q is already declared in this scope", name)
	}
	ns := &Scope{
		Kind:       ScopeNamespace,
		Name:       name,
		UniqueName: s.UniqueName + "::" + name,
		Parent:     s,
		Children:   map[string]ScopeNode{},
	}
	s.Children[name] = ns
	e.current = ns
	return nil
}

// AddStruct declares and enters a new struct; permitted at root,
// namespace, or (nested structs) struct scope, never inside a local scope.
func (e *Environment) AddStruct(name string) (*StructScope, error) {
	var parentChildren map[string]ScopeNode
	var parentUnique string
	switch s := e.current.(type) {
	case *Scope:
		if s.Kind != ScopeRoot && s.Kind != ScopeNamespace {
			return nil, fmt.Errorf("structs may not be declared in a local scope")
		}
		parentChildren, parentUnique = s.Children, s.UniqueName
	case *StructScope:
		parentChildren, parentUnique = s.Children, s.UniqueName
	default:
		return nil, fmt.Errorf("structs may not be declared here")
	}
	if _, exists := parentChildren[name]; exists {
		return nil, fmt.Errorf("%q is already declared in this scope", name)
	}
	ss := &StructScope{
		Scope: Scope{
			Kind:       ScopeStructKind,
			Name:       name,
			UniqueName: parentUnique + "::" + name,
			Parent:     e.current,
			Children:   map[string]ScopeNode{},
		},
		InstanceMembers: map[string]ast.Decl{},
	}
	parentChildren[name] = ss
	e.current = ss
	e.structOrder = append(e.structOrder, ss)
	return ss, nil
}

// RecordInstanceMember adds d to the current struct scope's ordered
// instance-member table. It is a no-op outside a struct scope.
func (e *Environment) RecordInstanceMember(name string, d ast.Decl) {
	ss, ok := e.current.(*StructScope)
	if !ok {
		return
	}
	if _, exists := ss.InstanceMembers[name]; !exists {
		ss.MemberOrder = append(ss.MemberOrder, name)
	}
	ss.InstanceMembers[name] = d
}

// DeclareVariable creates a Variable node for decl in the current scope.
// When deferred is true and decl's written annotation cannot yet be
// resolved, the Variable's type is left Blank for the Local Checker to
// fill in later (spec.md section 4.3); otherwise a resolution failure is
// reported as err. A non-nil conflict return means decl's name was
// already bound here (SYMBOL_ALREADY_DECLARED); conflict is the prior
// binding, for a "previous declaration" note.
func (e *Environment) DeclareVariable(decl ast.VariableDeclarable, deferred bool) (v *Variable, conflict *Variable, err error) {
	kids := childrenOf(e.current)
	if existing, ok := kids[decl.DeclName()]; ok {
		if prior, ok := existing.(*Variable); ok {
			return nil, prior, nil
		}
		return nil, nil, fmt.Errorf("%q is already declared in this scope", decl.DeclName())
	}
	t, terr := e.GetType(decl.WrittenType())
	if terr != nil {
		if !deferred {
			return nil, nil, terr
		}
		t = &BlankType{}
	}
	nv := &Variable{Decl: decl, Type: t}
	kids[decl.DeclName()] = nv
	if e.current == ScopeNode(e.root) {
		switch decl.(type) {
		case *ast.Fun, *ast.ExternFun:
			e.funcOrder = append(e.funcOrder, nv)
		}
	}
	return nv, nil, nil
}

// GetVariable resolves a (possibly qualified) identifier path to its
// Variable node, trying an upward lookup first for bare names and falling
// back to (or directly using, for qualified names) a downward lookup.
func (e *Environment) GetVariable(path []string) *Variable {
	var node ScopeNode
	if len(path) == 1 {
		node = e.UpwardLookup(path[0])
		if node == nil {
			node = descend(ScopeNode(e.root), path)
		}
	} else {
		node = e.DownwardLookup(path)
	}
	v, _ := node.(*Variable)
	return v
}

// GetInstanceVariable consults st's instance_members for member.
func (e *Environment) GetInstanceVariable(st *StructType, member string) ast.Decl {
	if st == nil || st.Scope == nil {
		return nil
	}
	return st.Scope.InstanceMembers[member]
}

// GetType walks an Annotation, resolving names via the same upward/
// downward strategy as GetVariable, and builds the corresponding Type
// (spec.md section 4.3).
func (e *Environment) GetType(a ast.Annotation) (Type, error) {
	switch v := a.(type) {
	case ast.Auto:
		return &BlankType{}, nil
	case ast.Void:
		return e.resolveSegmented(ast.Segmented{Segments: []ast.ClassSegment{{Name: "void"}}})
	case ast.Segmented:
		return e.resolveSegmented(v)
	case ast.Pointer:
		inner, err := e.GetType(v.Inner)
		if err != nil {
			return nil, err
		}
		return &PointerType{Mutable: v.Mutable, Inner: inner}, nil
	case ast.ArrayAnnotation:
		inner, err := e.GetType(v.Inner)
		if err != nil {
			return nil, err
		}
		size := -1
		if v.Size != nil {
			if n, ok := evalConstInt(v.Size); ok {
				size = n
			}
		}
		return &ArrayType{Inner: inner, Size: size}, nil
	case ast.TupleAnnotation:
		elems := make([]Type, len(v.Elements))
		for i, el := range v.Elements {
			t, err := e.GetType(el)
			if err != nil {
				return nil, err
			}
			elems[i] = t
		}
		return &TupleType{Elements: elems}, nil
	case ast.Function:
		params := make([]FuncParam, len(v.Params))
		for i, p := range v.Params {
			t, err := e.GetType(p.Type)
			if err != nil {
				return nil, err
			}
			params[i] = FuncParam{Mutable: p.Mutable, Type: t}
		}
		ret, err := e.GetType(v.Return)
		if err != nil {
			return nil, err
		}
		return &FunctionType{Params: params, ReturnMut: v.ReturnMut, Return: ret, Variadic: v.Variadic}, nil
	default:
		return nil, ErrUnknownType
	}
}

// resolveSegmented resolves a Segmented annotation to the StructType it
// names. Type-argument segments are carried by the annotation for
// diagnostics but do not affect resolution (generics are pass-through
// syntax only, per scope).
func (e *Environment) resolveSegmented(s ast.Segmented) (Type, error) {
	path := make([]string, len(s.Segments))
	for i, seg := range s.Segments {
		path[i] = seg.Name
	}
	var node ScopeNode
	if len(path) == 1 {
		node = e.UpwardLookup(path[0])
		if node == nil {
			node = descend(ScopeNode(e.root), path)
		}
	} else {
		node = e.DownwardLookup(path)
	}
	ss, ok := node.(*StructScope)
	if !ok {
		return nil, ErrUnknownType
	}
	return &StructType{Scope: ss}, nil
}

// StructScopes enumerates every declared StructScope in declaration order,
// for the code generator's struct-declaring pass (spec.md section 4.7).
func (e *Environment) StructScopes() []*StructScope {
	out := make([]*StructScope, len(e.structOrder))
	copy(out, e.structOrder)
	return out
}

// GlobalFunctions enumerates every root-scope Fun/ExternFun Variable in
// declaration order, for the code generator's prototype-declaring pass.
func (e *Environment) GlobalFunctions() []*Variable {
	out := make([]*Variable, len(e.funcOrder))
	copy(out, e.funcOrder)
	return out
}

// evalConstInt evaluates the minimal constant-expression subset spec.md
// section 4.6 requires for array sizes: integer literals and unary '-'
// applied to one. Richer constant folding is out of scope.
func evalConstInt(e ast.Expr) (int, bool) {
	switch v := e.(type) {
	case *ast.Literal:
		if v.Kind == ast.LitInt {
			return int(v.Int), true
		}
	case *ast.Unary:
		if v.Op == ast.OpNeg {
			if n, ok := evalConstInt(v.Operand); ok {
				return -n, true
			}
		}
	case *ast.Grouping:
		return evalConstInt(v.Inner)
	}
	return 0, false
}
