package sema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"slc/src/ast"
	"slc/src/util"
)

func newChecker(env *Environment, sink *util.Sink) *localChecker {
	return &localChecker{env: env, sink: sink}
}

func voidFun(name string, body []ast.Stmt) *ast.Fun {
	return &ast.Fun{Name: name, Annotation: ast.Void{}, Return: &ast.Var{Annotation: ast.Void{}}, Body: body}
}

func i32Fun(name string, body []ast.Stmt) *ast.Fun {
	return &ast.Fun{Name: name, Annotation: i32Annotation(), Return: &ast.Var{Annotation: i32Annotation()}, Body: body}
}

func TestCheckLocalResolvesNilAgainstDeclaredPointerType(t *testing.T) {
	nilLit := &ast.Literal{Kind: ast.LitNil}
	pVar := &ast.Var{Declarer: ast.DeclarerVar, Name: "p", Annotation: ast.Pointer{Inner: i32Annotation()}, Initializer: nilLit}
	prog := []ast.Stmt{
		&ast.DeclStmt{Decl: i32Fun("f", []ast.Stmt{
			&ast.DeclStmt{Decl: pVar},
			&ast.Return{Value: &ast.Literal{Kind: ast.LitInt, Int: 0}},
		})},
	}
	env := NewEnvironment()
	sink := newSink()
	CheckGlobal(prog, env, sink)
	require.Zero(t, sink.ErrorCount())
	CheckLocal(prog, env, sink)
	require.Zero(t, sink.ErrorCount())

	resolved, ok := pVar.ResolvedType().(Type)
	require.True(t, ok)
	assert.Equal(t, "::i32*", resolved.String())

	// the literal's own ExprType stays Blank even though the variable it
	// initialized resolved to a concrete pointer type.
	assert.Equal(t, KindBlank, nilLit.ExprType().(Type).Kind())
}

func TestCheckLocalAutoWithoutInitializerErrors(t *testing.T) {
	v := &ast.Var{Declarer: ast.DeclarerVar, Name: "x", Annotation: ast.Auto{}}
	prog := []ast.Stmt{
		&ast.DeclStmt{Decl: voidFun("f", []ast.Stmt{&ast.DeclStmt{Decl: v}})},
	}
	env := NewEnvironment()
	sink := newSink()
	CheckGlobal(prog, env, sink)
	CheckLocal(prog, env, sink)
	assert.Contains(t, sink.Codes(), ErrAutoWithoutInitializer)
}

func TestCheckLocalConstWithoutInitializerErrors(t *testing.T) {
	v := &ast.Var{Declarer: ast.DeclarerConst, Name: "x", Annotation: i32Annotation()}
	prog := []ast.Stmt{
		&ast.DeclStmt{Decl: voidFun("f", []ast.Stmt{&ast.DeclStmt{Decl: v}})},
	}
	env := NewEnvironment()
	sink := newSink()
	CheckGlobal(prog, env, sink)
	CheckLocal(prog, env, sink)
	assert.Contains(t, sink.Codes(), ErrUninitializedConst)
}

func TestCheckLocalAssignToConstErrors(t *testing.T) {
	constVar := &ast.Var{Declarer: ast.DeclarerConst, Name: "x", Annotation: i32Annotation(), Initializer: &ast.Literal{Kind: ast.LitInt, Int: 5}}
	assign := &ast.ExprStmt{Expr: &ast.Assign{
		Op:     ast.AssignPlain,
		Target: &ast.Identifier{Path: []string{"x"}},
		Value:  &ast.Literal{Kind: ast.LitInt, Int: 6},
	}}
	prog := []ast.Stmt{
		&ast.DeclStmt{Decl: voidFun("f", []ast.Stmt{
			&ast.DeclStmt{Decl: constVar},
			assign,
		})},
	}
	env := NewEnvironment()
	sink := newSink()
	CheckGlobal(prog, env, sink)
	CheckLocal(prog, env, sink)
	assert.Contains(t, sink.Codes(), ErrAssignToConst)
	assert.NotContains(t, sink.Codes(), ErrIncompatibleTypes)
}

func TestCheckLocalFunMissingReturnOnPathErrors(t *testing.T) {
	fn := i32Fun("f", []ast.Stmt{
		&ast.ExprStmt{Expr: &ast.Literal{Kind: ast.LitInt, Int: 1}},
	})
	prog := []ast.Stmt{&ast.DeclStmt{Decl: fn}}
	env := NewEnvironment()
	sink := newSink()
	CheckGlobal(prog, env, sink)
	CheckLocal(prog, env, sink)
	assert.Contains(t, sink.Codes(), ErrNoReturnInNonVoidFun)
}

func TestCheckLocalFunWithReturnOnEveryPathOK(t *testing.T) {
	fn := i32Fun("f", []ast.Stmt{
		&ast.Return{Value: &ast.Literal{Kind: ast.LitInt, Int: 1}},
	})
	prog := []ast.Stmt{&ast.DeclStmt{Decl: fn}}
	env := NewEnvironment()
	sink := newSink()
	CheckGlobal(prog, env, sink)
	CheckLocal(prog, env, sink)
	assert.NotContains(t, sink.Codes(), ErrNoReturnInNonVoidFun)
}

func TestCheckLocalBreakAndContinueOutsideLoop(t *testing.T) {
	fn := i32Fun("f", []ast.Stmt{
		&ast.Break{},
		&ast.Continue{},
		&ast.Return{Value: &ast.Literal{Kind: ast.LitInt, Int: 1}},
	})
	prog := []ast.Stmt{&ast.DeclStmt{Decl: fn}}
	env := NewEnvironment()
	sink := newSink()
	CheckGlobal(prog, env, sink)
	CheckLocal(prog, env, sink)
	assert.Contains(t, sink.Codes(), ErrBreakOutsideLoop)
	assert.Contains(t, sink.Codes(), ErrContinueOutsideLoop)
}

func TestCheckLocalBreakInsideLoopOK(t *testing.T) {
	loop := &ast.Loop{Kind: ast.LoopBare, Body: &ast.Block{Stmts: []ast.Stmt{&ast.Break{}}}}
	fn := voidFun("f", []ast.Stmt{loop})
	prog := []ast.Stmt{&ast.DeclStmt{Decl: fn}}
	env := NewEnvironment()
	sink := newSink()
	CheckGlobal(prog, env, sink)
	CheckLocal(prog, env, sink)
	assert.NotContains(t, sink.Codes(), ErrBreakOutsideLoop)
}

func TestCastAllowedNumericAndPointerPairs(t *testing.T) {
	env := NewEnvironment()
	i32 := primitiveType(env, "i32")
	f64 := primitiveType(env, "f64")
	boolT := primitiveType(env, "bool")
	ptrI32 := &PointerType{Inner: i32}
	ptrF64 := &PointerType{Inner: f64}
	blank := &BlankType{}

	assert.True(t, castAllowed(i32, f64))
	assert.True(t, castAllowed(ptrI32, ptrF64))
	assert.True(t, castAllowed(blank, i32))
	assert.False(t, castAllowed(i32, boolT))
	assert.False(t, castAllowed(i32, ptrI32))
}

func TestTypeOfArrayUnifiesElements(t *testing.T) {
	env := NewEnvironment()
	sink := newSink()
	lc := newChecker(env, sink)
	arr := &ast.Array{Elements: []ast.Expr{
		&ast.Literal{Kind: ast.LitInt, Int: 1},
		&ast.Literal{Kind: ast.LitInt, Int: 2},
	}}
	typ := lc.checkExpr(arr)
	require.Zero(t, sink.ErrorCount())
	at, ok := typ.(*ArrayType)
	require.True(t, ok)
	assert.Equal(t, "::i32", at.Inner.String())
	assert.Equal(t, 2, at.Size)
}

func TestTypeOfArrayInconsistentElementsErrors(t *testing.T) {
	env := NewEnvironment()
	sink := newSink()
	lc := newChecker(env, sink)
	arr := &ast.Array{Elements: []ast.Expr{
		&ast.Literal{Kind: ast.LitInt, Int: 1},
		&ast.Literal{Kind: ast.LitBool, Bool: true},
	}}
	lc.checkExpr(arr)
	assert.Contains(t, sink.Codes(), ErrInconsistentArrayTypes)
}

func TestTypeOfArrayEmptyErrors(t *testing.T) {
	env := NewEnvironment()
	sink := newSink()
	lc := newChecker(env, sink)
	typ := lc.checkExpr(&ast.Array{})
	assert.Contains(t, sink.Codes(), ErrIndeterminateArrayType)
	at, ok := typ.(*ArrayType)
	require.True(t, ok)
	assert.Equal(t, 0, at.Size)
}

func TestTypeOfIndexArrayElement(t *testing.T) {
	env := NewEnvironment()
	sink := newSink()
	lc := newChecker(env, sink)
	arr := &ast.Array{Elements: []ast.Expr{
		&ast.Literal{Kind: ast.LitInt, Int: 1},
		&ast.Literal{Kind: ast.LitInt, Int: 2},
	}}
	ix := &ast.Index{Left: arr, Index: &ast.Literal{Kind: ast.LitInt, Int: 1}}
	typ := lc.checkExpr(ix)
	require.Zero(t, sink.ErrorCount())
	assert.Equal(t, "::i32", typ.String())
}

func TestTypeOfIndexNonIntegerErrors(t *testing.T) {
	env := NewEnvironment()
	sink := newSink()
	lc := newChecker(env, sink)
	arr := &ast.Array{Elements: []ast.Expr{&ast.Literal{Kind: ast.LitInt, Int: 1}}}
	ix := &ast.Index{Left: arr, Index: &ast.Literal{Kind: ast.LitBool, Bool: true}}
	lc.checkExpr(ix)
	assert.Contains(t, sink.Codes(), ErrIncompatibleTypes)
}

func TestTypeOfTupleIndexOutOfRange(t *testing.T) {
	env := NewEnvironment()
	sink := newSink()
	lc := newChecker(env, sink)
	tuple := &ast.Tuple{Elements: []ast.Expr{
		&ast.Literal{Kind: ast.LitInt, Int: 1},
		&ast.Literal{Kind: ast.LitInt, Int: 2},
	}}
	ix := &ast.Index{Left: tuple, Index: &ast.Literal{Kind: ast.LitInt, Int: 5}}
	lc.checkExpr(ix)
	assert.Contains(t, sink.Codes(), ErrTupleIndexOutOfRange)
}

func TestTypeOfTupleIndexInRange(t *testing.T) {
	env := NewEnvironment()
	sink := newSink()
	lc := newChecker(env, sink)
	tuple := &ast.Tuple{Elements: []ast.Expr{
		&ast.Literal{Kind: ast.LitInt, Int: 1},
		&ast.Literal{Kind: ast.LitBool, Bool: true},
	}}
	ix := &ast.Index{Left: tuple, Index: &ast.Literal{Kind: ast.LitInt, Int: 1}}
	typ := lc.checkExpr(ix)
	require.Zero(t, sink.ErrorCount())
	assert.Equal(t, "::bool", typ.String())
}

func declareFunc(env *Environment, name string, fnType *FunctionType) {
	env.root.Children[name] = &Variable{Decl: &ast.Fun{Name: name}, Type: fnType}
}

func TestTypeOfCallArityAndTypeChecking(t *testing.T) {
	env := NewEnvironment()
	sink := newSink()
	lc := newChecker(env, sink)
	fnType := &FunctionType{Params: []FuncParam{{Type: primitiveType(env, "i32")}}, Return: primitiveType(env, "bool")}
	declareFunc(env, "foo", fnType)

	call := &ast.Call{Callee: &ast.Identifier{Path: []string{"foo"}}, Args: []ast.Expr{&ast.Literal{Kind: ast.LitInt, Int: 1}}}
	typ := lc.checkExpr(call)
	require.Zero(t, sink.ErrorCount())
	assert.Equal(t, "::bool", typ.String())
}

func TestTypeOfCallArityMismatchErrors(t *testing.T) {
	env := NewEnvironment()
	sink := newSink()
	lc := newChecker(env, sink)
	fnType := &FunctionType{Params: []FuncParam{{Type: primitiveType(env, "i32")}}, Return: primitiveType(env, "bool")}
	declareFunc(env, "foo", fnType)

	call := &ast.Call{Callee: &ast.Identifier{Path: []string{"foo"}}}
	lc.checkExpr(call)
	assert.Contains(t, sink.Codes(), ErrInvalidArity)
}

func TestTypeOfCallArgTypeMismatchErrors(t *testing.T) {
	env := NewEnvironment()
	sink := newSink()
	lc := newChecker(env, sink)
	fnType := &FunctionType{Params: []FuncParam{{Type: primitiveType(env, "i32")}}, Return: primitiveType(env, "bool")}
	declareFunc(env, "foo", fnType)

	call := &ast.Call{Callee: &ast.Identifier{Path: []string{"foo"}}, Args: []ast.Expr{&ast.Literal{Kind: ast.LitBool, Bool: true}}}
	lc.checkExpr(call)
	assert.Contains(t, sink.Codes(), ErrIncompatibleTypes)
}

func TestTypeOfCallOnNonFunctionErrors(t *testing.T) {
	env := NewEnvironment()
	sink := newSink()
	lc := newChecker(env, sink)
	env.root.Children["notafun"] = &Variable{Decl: &ast.Var{Name: "notafun"}, Type: primitiveType(env, "i32")}

	call := &ast.Call{Callee: &ast.Identifier{Path: []string{"notafun"}}}
	lc.checkExpr(call)
	assert.Contains(t, sink.Codes(), ErrCallOnNonFun)
}

func TestTypeOfBinaryOrderingAcceptsNumeric(t *testing.T) {
	env := NewEnvironment()
	sink := newSink()
	lc := newChecker(env, sink)
	lt := &ast.Binary{Op: ast.OpLt, Left: &ast.Literal{Kind: ast.LitInt, Int: 1}, Right: &ast.Literal{Kind: ast.LitInt, Int: 2}}
	typ := lc.checkExpr(lt)
	require.Zero(t, sink.ErrorCount())
	assert.Equal(t, "::bool", typ.String())
}

func TestTypeOfBinaryOrderingRejectsNonNumeric(t *testing.T) {
	env := NewEnvironment()
	sink := newSink()
	lc := newChecker(env, sink)
	lt := &ast.Binary{Op: ast.OpLt, Left: &ast.Literal{Kind: ast.LitBool, Bool: true}, Right: &ast.Literal{Kind: ast.LitBool, Bool: false}}
	lc.checkExpr(lt)
	assert.Contains(t, sink.Codes(), ErrIncompatibleTypes)
}

func TestTypeOfBinaryEqualityAllowsNonNumeric(t *testing.T) {
	env := NewEnvironment()
	sink := newSink()
	lc := newChecker(env, sink)
	eq := &ast.Binary{Op: ast.OpEq, Left: &ast.Literal{Kind: ast.LitBool, Bool: true}, Right: &ast.Literal{Kind: ast.LitBool, Bool: false}}
	typ := lc.checkExpr(eq)
	require.Zero(t, sink.ErrorCount())
	assert.Equal(t, "::bool", typ.String())
}

func TestTypeOfObjectAllowsOmittingDefaultedFields(t *testing.T) {
	env := NewEnvironment()
	sink := newSink()
	lc := newChecker(env, sink)
	_, err := env.AddStruct("Point")
	require.NoError(t, err)
	xDecl := &ast.Var{Declarer: ast.DeclarerVar, Name: "x", Annotation: i32Annotation(), Initializer: &ast.Literal{Kind: ast.LitInt, Int: 0}}
	xDecl.SetResolvedType(primitiveType(env, "i32"))
	yDecl := &ast.Var{Declarer: ast.DeclarerVar, Name: "y", Annotation: i32Annotation(), Initializer: &ast.Literal{Kind: ast.LitInt, Int: 0}}
	yDecl.SetResolvedType(primitiveType(env, "i32"))
	zDecl := &ast.Var{Declarer: ast.DeclarerVar, Name: "z", Annotation: i32Annotation()}
	zDecl.SetResolvedType(primitiveType(env, "i32"))
	env.RecordInstanceMember("x", xDecl)
	env.RecordInstanceMember("y", yDecl)
	env.RecordInstanceMember("z", zDecl)
	require.NoError(t, env.Exit())

	obj := &ast.Object{
		Annotation: ast.Segmented{Segments: []ast.ClassSegment{{Name: "Point"}}},
		Fields:     []ast.ObjectField{{Name: "z", Value: &ast.Literal{Kind: ast.LitInt, Int: 1}}},
	}
	lc.checkExpr(obj)
	assert.Zero(t, sink.ErrorCount())
	assert.NotContains(t, sink.Codes(), ErrMissingFieldInObj)
}

func TestTypeOfObjectStillRequiresUndefaultedFields(t *testing.T) {
	env := NewEnvironment()
	sink := newSink()
	lc := newChecker(env, sink)
	_, err := env.AddStruct("Point")
	require.NoError(t, err)
	xDecl := &ast.Var{Declarer: ast.DeclarerVar, Name: "x", Annotation: i32Annotation()}
	xDecl.SetResolvedType(primitiveType(env, "i32"))
	env.RecordInstanceMember("x", xDecl)
	require.NoError(t, env.Exit())

	obj := &ast.Object{
		Annotation: ast.Segmented{Segments: []ast.ClassSegment{{Name: "Point"}}},
		Fields:     nil,
	}
	lc.checkExpr(obj)
	assert.Contains(t, sink.Codes(), ErrMissingFieldInObj)
}

func TestTypeOfAccessConstMemberMakesTargetConst(t *testing.T) {
	env := NewEnvironment()
	sink := newSink()
	lc := newChecker(env, sink)
	ss, err := env.AddStruct("Point")
	require.NoError(t, err)
	xDecl := &ast.Var{Declarer: ast.DeclarerConst, Name: "x", Annotation: i32Annotation(), Initializer: &ast.Literal{Kind: ast.LitInt, Int: 0}}
	xDecl.SetResolvedType(primitiveType(env, "i32"))
	env.RecordInstanceMember("x", xDecl)
	require.NoError(t, env.Exit())

	env.root.Children["pt"] = &Variable{Decl: &ast.Var{Name: "pt", Declarer: ast.DeclarerVar}, Type: &StructType{Scope: ss}}
	access := &ast.Access{Left: &ast.Identifier{Path: []string{"pt"}}, Member: "x"}
	assign := &ast.Assign{Op: ast.AssignPlain, Target: access, Value: &ast.Literal{Kind: ast.LitInt, Int: 1}}
	lc.checkExpr(assign)
	assert.Contains(t, sink.Codes(), ErrAssignToConst)
}

func TestTypeOfAccessVarMemberOnVarLeftIsAssignable(t *testing.T) {
	env := NewEnvironment()
	sink := newSink()
	lc := newChecker(env, sink)
	ss, err := env.AddStruct("Point")
	require.NoError(t, err)
	xDecl := &ast.Var{Declarer: ast.DeclarerVar, Name: "x", Annotation: i32Annotation()}
	xDecl.SetResolvedType(primitiveType(env, "i32"))
	env.RecordInstanceMember("x", xDecl)
	require.NoError(t, env.Exit())

	env.root.Children["pt"] = &Variable{Decl: &ast.Var{Name: "pt", Declarer: ast.DeclarerVar}, Type: &StructType{Scope: ss}}
	access := &ast.Access{Left: &ast.Identifier{Path: []string{"pt"}}, Member: "x"}
	assign := &ast.Assign{Op: ast.AssignPlain, Target: access, Value: &ast.Literal{Kind: ast.LitInt, Int: 1}}
	lc.checkExpr(assign)
	assert.NotContains(t, sink.Codes(), ErrAssignToConst)
}

func TestTypeOfAccessOnStructFindsMember(t *testing.T) {
	env := NewEnvironment()
	sink := newSink()
	lc := newChecker(env, sink)
	ss, err := env.AddStruct("Point")
	require.NoError(t, err)
	xDecl := &ast.Var{Name: "x", Annotation: i32Annotation()}
	xDecl.SetResolvedType(primitiveType(env, "i32"))
	env.RecordInstanceMember("x", xDecl)
	require.NoError(t, env.Exit())

	env.root.Children["pt"] = &Variable{Decl: &ast.Var{Name: "pt"}, Type: &StructType{Scope: ss}}
	access := &ast.Access{Left: &ast.Identifier{Path: []string{"pt"}}, Member: "x"}
	typ := lc.checkExpr(access)
	require.Zero(t, sink.ErrorCount())
	assert.Equal(t, "::i32", typ.String())
}

func TestTypeOfAccessUnknownMemberErrors(t *testing.T) {
	env := NewEnvironment()
	sink := newSink()
	lc := newChecker(env, sink)
	ss, err := env.AddStruct("Point")
	require.NoError(t, err)
	require.NoError(t, env.Exit())

	env.root.Children["pt"] = &Variable{Decl: &ast.Var{Name: "pt"}, Type: &StructType{Scope: ss}}
	access := &ast.Access{Left: &ast.Identifier{Path: []string{"pt"}}, Member: "missing"}
	lc.checkExpr(access)
	assert.Contains(t, sink.Codes(), ErrInvalidStructMember)
}
