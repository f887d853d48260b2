// global.go implements the Global Checker (spec.md section 4.5), the
// first of the two semantic-analysis passes: it walks every top-level
// statement, rejects anything that is not a declaration, and declares
// every global name (Var, Fun, ExternFun, Struct, Namespace) so that the
// Local Checker's second pass can resolve references regardless of
// declaration order. Grounded on original_source/src/checker/checker.cpp's
// two-pass structure; each item is checked independently so one bad
// top-level declaration does not stop the rest from being registered.
package sema

import (
	"slc/src/ast"
	"slc/src/util"
)

// CheckGlobal is the Global Checker's entry point.
func CheckGlobal(prog []ast.Stmt, env *Environment, sink *util.Sink) {
	for _, stmt := range prog {
		checkGlobalStmt(stmt, env, sink)
	}
	checkMain(env, sink)
}

func checkGlobalStmt(stmt ast.Stmt, env *Environment, sink *util.Sink) {
	switch v := stmt.(type) {
	case *ast.DeclStmt:
		checkGlobalDecl(v.Decl, env, sink)
	case *ast.EndOfFile:
		// the end-of-file marker is not an executable statement.
	default:
		sink.Error(ErrGlobalExecutableStmt, stmt.Location(),
			"executable statements are not permitted at global scope")
	}
}

func checkGlobalDecl(decl ast.Decl, env *Environment, sink *util.Sink) {
	switch v := decl.(type) {
	case *ast.Var:
		declareGlobalVariable(v, env, sink)
	case *ast.Fun:
		declareGlobalVariable(v, env, sink)
	case *ast.ExternFun:
		if v.Name == "main" {
			sink.Error(ErrExternMain, v.Location(), "\"main\" may not be declared extern")
			return
		}
		declareGlobalVariable(v, env, sink)
	case *ast.Struct:
		checkGlobalStruct(v, env, sink)
	case *ast.NamespaceDecl:
		checkGlobalNamespace(v, env, sink)
	default:
		sink.Error(ErrGlobalExecutableStmt, decl.Location(),
			"declaration kind %T is not permitted at global scope", decl)
	}
}

func declareGlobalVariable(decl ast.VariableDeclarable, env *Environment, sink *util.Sink) {
	v, conflict, err := env.DeclareVariable(decl, true)
	if conflict != nil {
		d := sink.Error(ErrSymbolAlreadyDeclared, decl.Location(),
			"%q is already declared in this scope", decl.DeclName())
		d.Note(conflict.Decl.Location(), "previous declaration was here")
		return
	}
	if err != nil {
		sink.Error(ErrUnknownTypeCode, decl.Location(), "%s", err)
		return
	}
	decl.SetResolvedType(v.Type)
}

func checkGlobalStruct(s *ast.Struct, env *Environment, sink *util.Sink) {
	scope, err := env.AddStruct(s.Name)
	if err != nil {
		sink.Error(ErrSymbolAlreadyDeclared, s.Location(), "%s", err)
		return
	}
	s.SetResolvedType(&StructType{Scope: scope})
	for _, m := range s.Members {
		checkGlobalDecl(m, env, sink)
		if named, ok := m.(interface{ DeclName() string }); ok {
			env.RecordInstanceMember(named.DeclName(), m)
		}
	}
	env.Exit()
}

func checkGlobalNamespace(n *ast.NamespaceDecl, env *Environment, sink *util.Sink) {
	if _, ok := env.Current().(*StructScope); ok {
		sink.Error(ErrNamespaceInStruct, n.Location(), "namespaces may not be nested in a struct")
		return
	}
	if err := env.AddNamespace(n.Name); err != nil {
		sink.Error(ErrSymbolAlreadyDeclared, n.Location(), "%s", err)
		return
	}
	for _, m := range n.Members {
		checkGlobalDecl(m, env, sink)
	}
	env.Exit()
}

// checkMain validates the signature of a top-level "main", if one was
// declared (spec.md section 4.5): either "fun() => i32" or
// "fun(i32, char**) => i32". Absence of "main" is left to the linker.
func checkMain(env *Environment, sink *util.Sink) {
	mainVar := env.GetVariable([]string{"main"})
	if mainVar == nil {
		return
	}
	fn, ok := mainVar.Type.(*FunctionType)
	if !ok {
		return
	}
	if _, ok := mainVar.Decl.(*ast.Fun); !ok {
		sink.Error(ErrInvalidMainSignature, mainVar.Decl.Location(),
			"\"main\" must be declared with %q, found %s", "fun", fn.String())
		return
	}
	i32 := primitiveType(env, "i32")
	valid := !fn.Variadic && fn.Return != nil && i32 != nil && fn.Return.String() == i32.String()
	switch len(fn.Params) {
	case 0:
	case 2:
		char := primitiveType(env, "char")
		charPtrPtr := &PointerType{Inner: &PointerType{Inner: char}}
		valid = valid && i32 != nil && fn.Params[0].Type.String() == i32.String() &&
			fn.Params[1].Type.String() == charPtrPtr.String()
	default:
		valid = false
	}
	if !valid {
		sink.Error(ErrInvalidMainSignature, mainVar.Decl.Location(),
			"\"main\" must have signature fun() => i32 or fun(i32, char**) => i32, found %s", fn.String())
	}
}

func primitiveType(env *Environment, name string) Type {
	t, err := env.GetType(ast.Segmented{Segments: []ast.ClassSegment{{Name: name}}})
	if err != nil {
		return nil
	}
	return t
}
