package llvmgen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"slc/src/ast"
	"slc/src/sema"
	"slc/src/util"
)

func i32Annotation() ast.Annotation {
	return ast.Segmented{Segments: []ast.ClassSegment{{Name: "i32"}}}
}

func voidAnnotation() ast.Annotation {
	return ast.Segmented{Segments: []ast.ClassSegment{{Name: "void"}}}
}

func charAnnotation() ast.Annotation {
	return ast.Segmented{Segments: []ast.ClassSegment{{Name: "char"}}}
}

func checkedProgram(t *testing.T, prog []ast.Stmt) (*sema.Environment, *util.Sink) {
	t.Helper()
	env := sema.NewEnvironment()
	sink := util.NewSink()
	sink.Mute(true)
	sema.CheckGlobal(prog, env, sink)
	require.Zero(t, sink.ErrorCount(), "global check errors: %v", sink.Codes())
	sema.CheckLocal(prog, env, sink)
	require.Zero(t, sink.ErrorCount(), "local check errors: %v", sink.Codes())
	return env, sink
}

func addFunDecl() *ast.Fun {
	return &ast.Fun{
		Name: "add",
		Annotation: ast.Function{
			Params: []ast.FunctionParam{{Type: i32Annotation()}, {Type: i32Annotation()}},
			Return: i32Annotation(),
		},
		Params: []*ast.Var{
			{Declarer: ast.DeclarerVar, Name: "a", Annotation: i32Annotation()},
			{Declarer: ast.DeclarerVar, Name: "b", Annotation: i32Annotation()},
		},
		Return: &ast.Var{Annotation: i32Annotation()},
		Body: []ast.Stmt{
			&ast.Return{Value: &ast.Binary{
				Op:    ast.OpAdd,
				Left:  &ast.Identifier{Path: []string{"a"}},
				Right: &ast.Identifier{Path: []string{"b"}},
			}},
		},
	}
}

func TestGenerateFunctionEmitsArithmeticAndVerifies(t *testing.T) {
	prog := []ast.Stmt{&ast.DeclStmt{Decl: addFunDecl()}}
	env, sink := checkedProgram(t, prog)

	ctx, mod, err := Generate(prog, env, sink, "addmod")
	require.NoError(t, err)
	defer ctx.Dispose()

	ir := mod.String()
	assert.Contains(t, ir, "define i32 @add")
	assert.Contains(t, ir, "add i32")
}

func TestGenerateDeclaresGlobalVariable(t *testing.T) {
	gv := &ast.Var{Declarer: ast.DeclarerVar, Name: "counter", Annotation: i32Annotation(), Initializer: &ast.Literal{Kind: ast.LitInt, Int: 0}}
	prog := []ast.Stmt{&ast.DeclStmt{Decl: gv}}
	env, sink := checkedProgram(t, prog)

	ctx, mod, err := Generate(prog, env, sink, "globalmod")
	require.NoError(t, err)
	defer ctx.Dispose()

	assert.Contains(t, mod.String(), "@counter")
}

func TestGenerateStructDeclaresNamedType(t *testing.T) {
	structDecl := &ast.Struct{
		Name: "Point",
		Members: []ast.Decl{
			&ast.Var{Declarer: ast.DeclarerVar, Name: "x", Annotation: i32Annotation()},
			&ast.Var{Declarer: ast.DeclarerVar, Name: "y", Annotation: i32Annotation()},
		},
	}
	prog := []ast.Stmt{&ast.DeclStmt{Decl: structDecl}}
	env, sink := checkedProgram(t, prog)

	ctx, mod, err := Generate(prog, env, sink, "structmod")
	require.NoError(t, err)
	defer ctx.Dispose()

	assert.Contains(t, mod.String(), "%__Point")
}

func TestGenerateExternFunDeclaresNoBody(t *testing.T) {
	ext := &ast.ExternFun{Name: "puts", Annotation: ast.Function{
		Params: []ast.FunctionParam{{Type: i32Annotation()}},
		Return: i32Annotation(),
	}}
	prog := []ast.Stmt{&ast.DeclStmt{Decl: ext}}
	env, sink := checkedProgram(t, prog)

	ctx, mod, err := Generate(prog, env, sink, "externmod")
	require.NoError(t, err)
	defer ctx.Dispose()

	assert.Contains(t, mod.String(), "declare i32 @puts")
}

// TestGenerateObjectLiteralAndFieldAccess covers end-to-end scenario:
// constructing a struct literal and reading one of its fields back.
func TestGenerateObjectLiteralAndFieldAccess(t *testing.T) {
	structDecl := &ast.Struct{
		Name: "Point",
		Members: []ast.Decl{
			&ast.Var{Declarer: ast.DeclarerVar, Name: "x", Annotation: i32Annotation()},
			&ast.Var{Declarer: ast.DeclarerVar, Name: "y", Annotation: i32Annotation()},
		},
	}
	pointAnnotation := ast.Segmented{Segments: []ast.ClassSegment{{Name: "Point"}}}
	getFun := &ast.Fun{
		Name:       "getX",
		Annotation: ast.Function{Return: i32Annotation()},
		Return:     &ast.Var{Annotation: i32Annotation()},
		Body: []ast.Stmt{
			&ast.DeclStmt{Decl: &ast.Var{
				Declarer:   ast.DeclarerVar,
				Name:       "p",
				Annotation: pointAnnotation,
				Initializer: &ast.Object{
					Annotation: pointAnnotation,
					Fields: []ast.ObjectField{
						{Name: "x", Value: &ast.Literal{Kind: ast.LitInt, Int: 1}},
						{Name: "y", Value: &ast.Literal{Kind: ast.LitInt, Int: 2}},
					},
				},
			}},
			&ast.Return{Value: &ast.Access{Left: &ast.Identifier{Path: []string{"p"}}, Member: "x"}},
		},
	}
	prog := []ast.Stmt{
		&ast.DeclStmt{Decl: structDecl},
		&ast.DeclStmt{Decl: getFun},
	}
	env, sink := checkedProgram(t, prog)

	ctx, mod, err := Generate(prog, env, sink, "objmod")
	require.NoError(t, err)
	defer ctx.Dispose()

	ir := mod.String()
	assert.Contains(t, ir, "%__Point")
	assert.Contains(t, ir, "getelementptr")
	assert.Contains(t, ir, "define i32 @getX")
}

// TestGenerateDereferenceAssignment covers end-to-end scenario: assigning
// through a mutable pointer parameter.
func TestGenerateDereferenceAssignment(t *testing.T) {
	setFun := &ast.Fun{
		Name: "set",
		Annotation: ast.Function{
			Params: []ast.FunctionParam{{Mutable: true, Type: ast.Pointer{Inner: i32Annotation(), Mutable: true}}},
			Return: voidAnnotation(),
		},
		Params: []*ast.Var{
			{Declarer: ast.DeclarerVar, Name: "p", Annotation: ast.Pointer{Inner: i32Annotation(), Mutable: true}},
		},
		Return: &ast.Var{Annotation: voidAnnotation()},
		Body: []ast.Stmt{
			&ast.ExprStmt{Expr: &ast.Assign{
				Op:     ast.AssignPlain,
				Target: &ast.Unary{Op: ast.OpDeref, Operand: &ast.Identifier{Path: []string{"p"}}},
				Value:  &ast.Literal{Kind: ast.LitInt, Int: 5},
			}},
		},
	}
	prog := []ast.Stmt{&ast.DeclStmt{Decl: setFun}}
	env, sink := checkedProgram(t, prog)

	ctx, mod, err := Generate(prog, env, sink, "derefmod")
	require.NoError(t, err)
	defer ctx.Dispose()

	ir := mod.String()
	assert.Contains(t, ir, "define void @set")
	assert.Contains(t, ir, "store i32 5")
}

// TestGenerateExternVariadicCall covers end-to-end scenario: calling an
// extern variadic function.
func TestGenerateExternVariadicCall(t *testing.T) {
	printfExtern := &ast.ExternFun{
		Name: "printf",
		Annotation: ast.Function{
			Params:   []ast.FunctionParam{{Type: ast.Pointer{Inner: charAnnotation()}}},
			Return:   i32Annotation(),
			Variadic: true,
		},
	}
	callFun := &ast.Fun{
		Name:       "report",
		Annotation: ast.Function{Return: i32Annotation()},
		Return:     &ast.Var{Annotation: i32Annotation()},
		Body: []ast.Stmt{
			&ast.Return{Value: &ast.Call{
				Callee: &ast.Identifier{Path: []string{"printf"}},
				Args: []ast.Expr{
					&ast.Literal{Kind: ast.LitString, String: "count: %d"},
					&ast.Literal{Kind: ast.LitInt, Int: 1},
				},
			}},
		},
	}
	prog := []ast.Stmt{
		&ast.DeclStmt{Decl: printfExtern},
		&ast.DeclStmt{Decl: callFun},
	}
	env, sink := checkedProgram(t, prog)

	ctx, mod, err := Generate(prog, env, sink, "variadicmod")
	require.NoError(t, err)
	defer ctx.Dispose()

	ir := mod.String()
	assert.Contains(t, ir, "declare i32 @printf(i8*, ...)")
	assert.Contains(t, ir, "call i32 (i8*, ...) @printf")
}

func TestIsVoidTypeMatchesOnlyVoidStruct(t *testing.T) {
	voidScope := &sema.StructScope{Scope: sema.Scope{Name: "void", UniqueName: "::void"}, Primitive: true}
	i32Scope := &sema.StructScope{Scope: sema.Scope{Name: "i32", UniqueName: "::i32"}, Primitive: true}

	assert.True(t, isVoidType(&sema.StructType{Scope: voidScope}))
	assert.False(t, isVoidType(&sema.StructType{Scope: i32Scope}))
	assert.False(t, isVoidType(&sema.BlankType{}))
}

func TestUnderlyingLiteralUnwrapsGrouping(t *testing.T) {
	nilLit := &ast.Literal{Kind: ast.LitNil}
	grouped := &ast.Grouping{Inner: nilLit}

	lit, ok := underlyingLiteral(grouped)
	require.True(t, ok)
	assert.Equal(t, ast.LitNil, lit.Kind)

	_, ok = underlyingLiteral(&ast.Identifier{Path: []string{"x"}})
	assert.False(t, ok)
}

func TestConstIndexHandlesLiteralAndNegation(t *testing.T) {
	n, ok := constIndex(&ast.Literal{Kind: ast.LitInt, Int: 3})
	require.True(t, ok)
	assert.Equal(t, 3, n)

	neg, ok := constIndex(&ast.Unary{Op: ast.OpNeg, Operand: &ast.Literal{Kind: ast.LitInt, Int: 2}})
	require.True(t, ok)
	assert.Equal(t, -2, neg)

	_, ok = constIndex(&ast.Identifier{Path: []string{"x"}})
	assert.False(t, ok)
}
