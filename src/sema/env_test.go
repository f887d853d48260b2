package sema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"slc/src/ast"
)

func TestNewEnvironmentInstallsPrimitives(t *testing.T) {
	env := NewEnvironment()
	for _, name := range []string{"i8", "i16", "i32", "i64", "f32", "f64", "bool", "char", "void"} {
		node := env.UpwardLookup(name)
		require.NotNil(t, node, "primitive %q should be installed", name)
		ss, ok := node.(*StructScope)
		require.True(t, ok)
		assert.True(t, ss.Primitive)
		assert.Equal(t, "::"+name, ss.UniqueName)
	}
}

func TestAddNamespaceAndEnterExit(t *testing.T) {
	env := NewEnvironment()
	require.NoError(t, env.AddNamespace("math"))
	assert.Equal(t, "::math", env.Current().(*Scope).UniqueName)

	require.NoError(t, env.Exit())
	assert.Same(t, ScopeNode(env.root), env.Current())

	require.NoError(t, env.Enter("math"))
	assert.Equal(t, "::math", env.Current().(*Scope).UniqueName)

	err := env.Enter("doesnotexist")
	assert.Error(t, err)
}

func TestAddNamespaceRejectsDuplicate(t *testing.T) {
	env := NewEnvironment()
	require.NoError(t, env.AddNamespace("math"))
	require.NoError(t, env.Exit())
	err := env.AddNamespace("math")
	assert.Error(t, err)
}

func TestAddStructNestingAndDuplicateRejection(t *testing.T) {
	env := NewEnvironment()
	ss, err := env.AddStruct("Point")
	require.NoError(t, err)
	assert.Equal(t, "::Point", ss.UniqueName)
	require.NoError(t, env.Exit())

	_, err = env.AddStruct("Point")
	assert.Error(t, err)
}

func TestAddStructRejectedInsideLocalScope(t *testing.T) {
	env := NewEnvironment()
	env.IncreaseLocalScope()
	_, err := env.AddStruct("Point")
	assert.Error(t, err)
}

func TestDeclareVariableAndGetVariable(t *testing.T) {
	env := NewEnvironment()
	decl := &ast.Var{Declarer: ast.DeclarerVar, Name: "x", Annotation: ast.Segmented{Segments: []ast.ClassSegment{{Name: "i32"}}}}

	nv, conflict, err := env.DeclareVariable(decl, false)
	require.NoError(t, err)
	require.Nil(t, conflict)
	require.NotNil(t, nv)
	assert.Equal(t, "::i32", nv.Type.String())

	got := env.GetVariable([]string{"x"})
	require.NotNil(t, got)
	assert.Same(t, nv, got)
}

func TestDeclareVariableReportsConflict(t *testing.T) {
	env := NewEnvironment()
	decl := &ast.Var{Declarer: ast.DeclarerVar, Name: "x", Annotation: ast.Segmented{Segments: []ast.ClassSegment{{Name: "i32"}}}}
	first, _, err := env.DeclareVariable(decl, false)
	require.NoError(t, err)

	_, conflict, err := env.DeclareVariable(decl, false)
	require.NoError(t, err)
	assert.Same(t, first, conflict)
}

func TestDeclareVariableDeferredLeavesBlankOnUnknownType(t *testing.T) {
	env := NewEnvironment()
	decl := &ast.Var{Declarer: ast.DeclarerVar, Name: "x", Annotation: ast.Segmented{Segments: []ast.ClassSegment{{Name: "Nope"}}}}

	nv, _, err := env.DeclareVariable(decl, true)
	require.NoError(t, err)
	require.NotNil(t, nv)
	assert.Equal(t, KindBlank, nv.Type.Kind())
}

func TestDeclareVariableNonDeferredFailsOnUnknownType(t *testing.T) {
	env := NewEnvironment()
	decl := &ast.Var{Declarer: ast.DeclarerVar, Name: "x", Annotation: ast.Segmented{Segments: []ast.ClassSegment{{Name: "Nope"}}}}

	_, _, err := env.DeclareVariable(decl, false)
	assert.Error(t, err)
}

func TestDownwardLookupQualifiedPath(t *testing.T) {
	env := NewEnvironment()
	require.NoError(t, env.AddNamespace("a"))
	require.NoError(t, env.AddNamespace("b"))
	ss, err := env.AddStruct("Point")
	require.NoError(t, err)
	require.NoError(t, env.Exit()) // out of Point
	require.NoError(t, env.Exit()) // out of b
	require.NoError(t, env.Exit()) // out of a

	node := env.DownwardLookup([]string{"a", "b", "Point"})
	assert.Same(t, ScopeNode(ss), node)
}

func TestUpwardLookupCrossesScopeBoundaries(t *testing.T) {
	env := NewEnvironment()
	decl := &ast.Var{Declarer: ast.DeclarerVar, Name: "outer", Annotation: ast.Segmented{Segments: []ast.ClassSegment{{Name: "i32"}}}}
	_, _, err := env.DeclareVariable(decl, false)
	require.NoError(t, err)

	env.IncreaseLocalScope()
	found := env.UpwardLookup("outer")
	assert.NotNil(t, found)
}

func TestIncreaseLocalScopeIsNotRegisteredInParent(t *testing.T) {
	env := NewEnvironment()
	before := len(env.root.Children)
	env.IncreaseLocalScope()
	assert.Equal(t, before, len(env.root.Children))
}

func TestGlobalFunctionsAndStructScopesOrdering(t *testing.T) {
	env := NewEnvironment()
	fn1 := &ast.Fun{Name: "a", Annotation: ast.Void{}, Return: &ast.Var{Annotation: ast.Void{}}}
	fn2 := &ast.Fun{Name: "b", Annotation: ast.Void{}, Return: &ast.Var{Annotation: ast.Void{}}}
	_, _, err := env.DeclareVariable(fn1, false)
	require.NoError(t, err)
	_, _, err = env.DeclareVariable(fn2, false)
	require.NoError(t, err)

	funcs := env.GlobalFunctions()
	require.Len(t, funcs, 2)
	assert.Equal(t, "a", funcs[0].Decl.DeclName())
	assert.Equal(t, "b", funcs[1].Decl.DeclName())

	before := len(env.StructScopes())
	_, err = env.AddStruct("Point")
	require.NoError(t, err)
	after := len(env.StructScopes())
	assert.Equal(t, before+1, after)
}

func TestGetTypeResolvesArrayPointerTuple(t *testing.T) {
	env := NewEnvironment()
	i32 := ast.Segmented{Segments: []ast.ClassSegment{{Name: "i32"}}}

	pt, err := env.GetType(ast.Pointer{Inner: i32})
	require.NoError(t, err)
	assert.Equal(t, "::i32*", pt.String())

	at, err := env.GetType(ast.ArrayAnnotation{Inner: i32, Size: &ast.Literal{Kind: ast.LitInt, Int: 4}})
	require.NoError(t, err)
	arr, ok := at.(*ArrayType)
	require.True(t, ok)
	assert.Equal(t, 4, arr.Size)

	tt, err := env.GetType(ast.TupleAnnotation{Elements: []ast.Annotation{i32, i32}})
	require.NoError(t, err)
	assert.Equal(t, "(::i32, ::i32, )", tt.String())
}

func TestGetTypeUnknownSegmentFails(t *testing.T) {
	env := NewEnvironment()
	_, err := env.GetType(ast.Segmented{Segments: []ast.ClassSegment{{Name: "Nope"}}})
	assert.ErrorIs(t, err, ErrUnknownType)
}
