// local.go implements the Local Checker (spec.md section 4.6), the
// second semantic-analysis pass: it walks every function body and global
// initializer, resolving each expression's type bottom-up and filling in
// the Blank types the Global Checker deferred. Grounded on
// original_source/src/checker/checker.cpp's second pass, re-expressed
// here as one localChecker value carrying the few pieces of per-function
// state (current function, loop nesting depth) that the original threads
// through recursive visitor calls.
package sema

import (
	"strings"

	"slc/src/ast"
	"slc/src/util"
)

type localChecker struct {
	env       *Environment
	sink      *util.Sink
	fn        *ast.Fun
	loopDepth int
}

// CheckLocal is the Local Checker's entry point. It must run after
// CheckGlobal has populated env with every top-level name.
func CheckLocal(prog []ast.Stmt, env *Environment, sink *util.Sink) {
	lc := &localChecker{env: env, sink: sink}
	for _, stmt := range prog {
		lc.checkTopLevel(stmt)
	}
}

func (lc *localChecker) checkTopLevel(stmt ast.Stmt) {
	switch v := stmt.(type) {
	case *ast.DeclStmt:
		lc.checkTopDecl(v.Decl)
	case *ast.EndOfFile:
	default:
		// already reported by the Global Checker.
	}
}

func (lc *localChecker) checkTopDecl(decl ast.Decl) {
	switch v := decl.(type) {
	case *ast.Var:
		nv := lc.env.GetVariable([]string{v.Name})
		lc.checkVarInit(v, nv)
	case *ast.Fun:
		lc.checkFun(v)
	case *ast.ExternFun:
		// no body to check.
	case *ast.Struct:
		if err := lc.env.Enter(v.Name); err != nil {
			return
		}
		for _, m := range v.Members {
			lc.checkTopDecl(m)
		}
		lc.env.Exit()
	case *ast.NamespaceDecl:
		if err := lc.env.Enter(v.Name); err != nil {
			return
		}
		for _, m := range v.Members {
			lc.checkTopDecl(m)
		}
		lc.env.Exit()
	}
}

// checkLocalVarDecl declares and checks a Var appearing inside a function
// body or block; global Vars are already declared by the Global Checker.
func (lc *localChecker) checkLocalVarDecl(v *ast.Var) {
	nv, conflict, err := lc.env.DeclareVariable(v, false)
	if conflict != nil {
		d := lc.sink.Error(ErrSymbolAlreadyDeclared, v.Location(), "%q is already declared in this scope", v.Name)
		d.Note(conflict.Decl.Location(), "previous declaration was here")
		return
	}
	if err != nil {
		lc.sink.Error(ErrUnknownTypeCode, v.Location(), "%s", err)
		return
	}
	lc.checkVarInit(v, nv)
}

func (lc *localChecker) checkVarInit(v *ast.Var, nv *Variable) {
	t := Type(&BlankType{})
	if nv != nil {
		t = nv.Type
	}
	if v.Declarer == ast.DeclarerConst && v.Initializer == nil {
		lc.sink.Error(ErrUninitializedConst, v.Location(), "const %q must have an initializer", v.Name)
	}
	if _, isAuto := v.Annotation.(ast.Auto); isAuto && v.Initializer == nil {
		lc.sink.Error(ErrAutoWithoutInitializer, v.Location(),
			"%q has no type annotation and no initializer to infer one from", v.Name)
		v.SetResolvedType(t)
		return
	}
	if v.Initializer != nil {
		initType := lc.checkExpr(v.Initializer)
		if unified, ok := AreCompatible(t, initType); ok {
			t = unified
		} else {
			lc.sink.Error(ErrIncompatibleTypes, v.Initializer.Location(),
				"cannot initialize %q of type %s with value of type %s", v.Name, t.String(), initType.String())
		}
	}
	if arrAnn, ok := v.Annotation.(ast.ArrayAnnotation); ok {
		if arrAnn.Size != nil {
			if arr, ok := t.(*ArrayType); ok && arr.Size < 0 {
				lc.sink.Error(ErrArraySizeUnknown, v.Location(), "array size for %q is not a constant expression", v.Name)
			}
		} else if v.Initializer == nil {
			lc.sink.Error(ErrSizedArrayWithoutInitializer, v.Location(), "array %q has an inferred size but no initializer", v.Name)
		}
	}
	v.SetResolvedType(t)
	if nv != nil {
		nv.Type = t
	}
}

func (lc *localChecker) checkFun(fn *ast.Fun) {
	lc.env.IncreaseLocalScope()
	seen := map[string]*ast.Var{}
	for _, p := range fn.Params {
		if prev, dup := seen[p.Name]; dup {
			d := lc.sink.Error(ErrDuplicateParamName, p.Location(), "duplicate parameter name %q", p.Name)
			d.Note(prev.Location(), "previous parameter was here")
			continue
		}
		seen[p.Name] = p
		nv, conflict, err := lc.env.DeclareVariable(p, false)
		if conflict != nil || err != nil {
			continue
		}
		p.SetResolvedType(nv.Type)
	}
	retType, err := lc.env.GetType(fn.Return.Annotation)
	if err != nil {
		lc.sink.Error(ErrUnknownTypeCode, fn.Return.Location(), "%s", err)
		retType = &BlankType{}
	}
	fn.Return.SetResolvedType(retType)

	outerFn, outerDepth := lc.fn, lc.loopDepth
	lc.fn, lc.loopDepth = fn, 0
	returns := lc.checkBlockStmts(fn.Body)
	lc.fn, lc.loopDepth = outerFn, outerDepth

	if !isVoidReturn(retType) && !returns {
		lc.sink.Error(ErrNoReturnInNonVoidFun, fn.Location(),
			"function %q must return a value of type %s on every path", fn.Name, retType.String())
	}
	lc.env.Exit()
}

// checkBlockStmts checks a statement list inside its own local scope and
// reports whether every path through it returns.
func (lc *localChecker) checkBlockStmts(stmts []ast.Stmt) bool {
	lc.env.IncreaseLocalScope()
	defer lc.env.Exit()
	returns := false
	for _, s := range stmts {
		if lc.checkStmt(s) {
			returns = true
		}
	}
	return returns
}

func (lc *localChecker) checkStmt(s ast.Stmt) bool {
	switch v := s.(type) {
	case *ast.DeclStmt:
		if vd, ok := v.Decl.(*ast.Var); ok {
			lc.checkLocalVarDecl(vd)
		}
		return false
	case *ast.ExprStmt:
		lc.checkExpr(v.Expr)
		return false
	case *ast.Block:
		return lc.checkBlockStmts(v.Stmts)
	case *ast.Conditional:
		return lc.checkConditional(v)
	case *ast.Loop:
		return lc.checkLoop(v)
	case *ast.Return:
		lc.checkReturn(v)
		return true
	case *ast.Break:
		if lc.loopDepth == 0 {
			lc.sink.Error(ErrBreakOutsideLoop, v.Location(), "break outside of a loop")
		}
		return false
	case *ast.Continue:
		if lc.loopDepth == 0 {
			lc.sink.Error(ErrContinueOutsideLoop, v.Location(), "continue outside of a loop")
		}
		return false
	default:
		return false
	}
}

func (lc *localChecker) checkConditional(c *ast.Conditional) bool {
	condType := lc.checkExpr(c.Cond)
	if !isBoolType(condType) {
		lc.sink.Error(ErrConditionalWithoutBool, c.Cond.Location(), "condition must be of type bool, found %s", condType.String())
	}
	thenReturns := lc.checkStmt(c.Then)
	if c.Else == nil {
		return false
	}
	return thenReturns && lc.checkStmt(c.Else)
}

func (lc *localChecker) checkLoop(l *ast.Loop) bool {
	switch l.Kind {
	case ast.LoopWhile:
		condType := lc.checkExpr(l.Cond)
		if !isBoolType(condType) {
			lc.sink.Error(ErrConditionalWithoutBool, l.Cond.Location(), "loop condition must be of type bool, found %s", condType.String())
		}
	case ast.LoopForIn:
		iterType := lc.checkExpr(l.Iterable)
		elemType := lc.forInElementType(iterType, l)
		lc.env.IncreaseLocalScope()
		bind := &ast.Var{DeclBase: ast.DeclBase{Loc: l.Location()}, Declarer: ast.DeclarerConst, Name: l.Var, Annotation: ast.Auto{}}
		nv, _, _ := lc.env.DeclareVariable(bind, true)
		if nv != nil {
			nv.Type = elemType
		}
	}
	lc.loopDepth++
	lc.checkStmt(l.Body)
	lc.loopDepth--
	if l.Kind == ast.LoopForIn {
		lc.env.Exit()
	}
	return false
}

func (lc *localChecker) forInElementType(t Type, l *ast.Loop) Type {
	arr, ok := t.(*ArrayType)
	if !ok {
		lc.sink.Error(ErrIncompatibleTypes, l.Iterable.Location(), "for-in requires an array, found %s", t.String())
		return &BlankType{}
	}
	return arr.Inner
}

func (lc *localChecker) checkReturn(r *ast.Return) {
	expected := Type(&BlankType{})
	if lc.fn != nil {
		if rt, ok := lc.fn.Return.ResolvedType().(Type); ok {
			expected = rt
		}
	}
	if r.Value == nil {
		if !isVoidReturn(expected) {
			lc.sink.Error(ErrReturnIncompatible, r.Location(), "function must return a value of type %s", expected.String())
		}
		return
	}
	valType := lc.checkExpr(r.Value)
	if _, ok := AreCompatible(expected, valType); !ok {
		lc.sink.Error(ErrReturnIncompatible, r.Location(),
			"return value of type %s is incompatible with function's return type %s", valType.String(), expected.String())
	}
}

func (lc *localChecker) checkExpr(e ast.Expr) Type {
	t := lc.typeOfExpr(e)
	e.SetType(t)
	return t
}

func (lc *localChecker) typeOfExpr(e ast.Expr) Type {
	switch v := e.(type) {
	case *ast.Literal:
		return lc.typeOfLiteral(v)
	case *ast.Identifier:
		return lc.typeOfIdentifier(v)
	case *ast.Unary:
		return lc.typeOfUnary(v)
	case *ast.Dereference:
		return lc.typeOfDereference(v)
	case *ast.Binary:
		return lc.typeOfBinary(v)
	case *ast.Logical:
		return lc.typeOfLogical(v)
	case *ast.Assign:
		return lc.typeOfAssign(v)
	case *ast.Call:
		return lc.typeOfCall(v)
	case *ast.Cast:
		return lc.typeOfCast(v)
	case *ast.Access:
		return lc.typeOfAccess(v)
	case *ast.Index:
		return lc.typeOfIndex(v)
	case *ast.Grouping:
		return lc.checkExpr(v.Inner)
	case *ast.Array:
		return lc.typeOfArray(v)
	case *ast.ArrayGen:
		return lc.typeOfArrayGen(v)
	case *ast.Tuple:
		return lc.typeOfTuple(v)
	case *ast.Object:
		return lc.typeOfObject(v)
	default:
		return &BlankType{}
	}
}

func (lc *localChecker) typeOfLiteral(l *ast.Literal) Type {
	switch l.Kind {
	case ast.LitInt:
		return primitiveType(lc.env, "i32")
	case ast.LitFloat:
		return primitiveType(lc.env, "f64")
	case ast.LitBool:
		return primitiveType(lc.env, "bool")
	case ast.LitChar:
		return primitiveType(lc.env, "char")
	case ast.LitString:
		return &PointerType{Inner: primitiveType(lc.env, "char")}
	case ast.LitNil:
		return &BlankType{}
	default:
		return &BlankType{}
	}
}

func (lc *localChecker) typeOfIdentifier(id *ast.Identifier) Type {
	nv := lc.env.GetVariable(id.Path)
	if nv == nil {
		lc.sink.Error(ErrUnknownTypeCode, id.Location(), "undeclared identifier %q", strings.Join(id.Path, "::"))
		id.SetLDeclarer(ast.DeclarerVar)
		return &BlankType{}
	}
	id.SetLDeclarer(nv.Decl.DeclDeclarer())
	return nv.Type
}

func (lc *localChecker) typeOfUnary(u *ast.Unary) Type {
	opType := lc.checkExpr(u.Operand)
	switch u.Op {
	case ast.OpNeg:
		if !IsNumeric(opType) {
			lc.sink.Error(ErrIncompatibleTypes, u.Location(), "unary '-' requires a numeric operand, found %s", opType.String())
		}
		return opType
	case ast.OpNot:
		if !isBoolType(opType) {
			lc.sink.Error(ErrIncompatibleTypes, u.Location(), "unary '!' requires a bool operand, found %s", opType.String())
		}
		return opType
	case ast.OpAddr:
		mut := false
		if lv, ok := u.Operand.(ast.LValue); ok {
			mut = lv.LDeclarer() == ast.DeclarerVar
		}
		return &PointerType{Mutable: mut, Inner: opType}
	case ast.OpDeref:
		// The parser leaves a prefix '*' as Unary{Op: OpDeref} rather than
		// promoting it to a Dereference node (no parent pointers to rewrite
		// through); this case gives it dereference semantics directly, and
		// typeOfAssign recognizes it as an assignable target by the same
		// special case.
		ptr, ok := opType.(*PointerType)
		if !ok {
			lc.sink.Error(ErrDereferenceNonPointer, u.Location(), "cannot dereference non-pointer type %s", opType.String())
			return &BlankType{}
		}
		return ptr.Inner
	default:
		return &BlankType{}
	}
}

func (lc *localChecker) typeOfDereference(d *ast.Dereference) Type {
	opType := lc.checkExpr(d.Operand)
	ptr, ok := opType.(*PointerType)
	if !ok {
		lc.sink.Error(ErrDereferenceNonPointer, d.Location(), "cannot dereference non-pointer type %s", opType.String())
		d.SetLDeclarer(ast.DeclarerVar)
		return &BlankType{}
	}
	if ptr.Mutable {
		d.SetLDeclarer(ast.DeclarerVar)
	} else {
		d.SetLDeclarer(ast.DeclarerConst)
	}
	return ptr.Inner
}

func (lc *localChecker) typeOfBinary(b *ast.Binary) Type {
	lt := lc.checkExpr(b.Left)
	rt := lc.checkExpr(b.Right)
	switch b.Op {
	case ast.OpAdd, ast.OpSub, ast.OpMul, ast.OpDiv, ast.OpMod, ast.OpPow:
		unified, ok := AreCompatible(lt, rt)
		if !ok || !IsNumeric(unified) {
			lc.sink.Error(ErrIncompatibleTypes, b.Location(),
				"arithmetic operator requires two compatible numeric operands, found %s and %s", lt.String(), rt.String())
			return &BlankType{}
		}
		return unified
	case ast.OpEq, ast.OpNeq:
		if _, ok := AreCompatible(lt, rt); !ok {
			lc.sink.Error(ErrIncompatibleTypes, b.Location(),
				"comparison requires two compatible operands, found %s and %s", lt.String(), rt.String())
		}
		return primitiveType(lc.env, "bool")
	case ast.OpLt, ast.OpLte, ast.OpGt, ast.OpGte:
		unified, ok := AreCompatible(lt, rt)
		if !ok || !IsNumeric(unified) {
			lc.sink.Error(ErrIncompatibleTypes, b.Location(),
				"ordering comparison requires two compatible numeric operands, found %s and %s", lt.String(), rt.String())
		}
		return primitiveType(lc.env, "bool")
	default:
		return &BlankType{}
	}
}

func (lc *localChecker) typeOfLogical(l *ast.Logical) Type {
	lt := lc.checkExpr(l.Left)
	rt := lc.checkExpr(l.Right)
	if !isBoolType(lt) || !isBoolType(rt) {
		sym := "and"
		if l.Op == ast.OpOr {
			sym = "or"
		}
		lc.sink.Error(ErrIncompatibleTypes, l.Location(), "%s requires two bool operands, found %s and %s", sym, lt.String(), rt.String())
	}
	return primitiveType(lc.env, "bool")
}

func (lc *localChecker) typeOfAssign(a *ast.Assign) Type {
	targetType := lc.checkExpr(a.Target)
	valueType := lc.checkExpr(a.Value)

	lv, isLValue := a.Target.(ast.LValue)
	if !isLValue {
		u, isDerefUnary := a.Target.(*ast.Unary)
		if !isDerefUnary || u.Op != ast.OpDeref {
			lc.sink.Error(ErrAssignToNonLValue, a.Target.Location(), "left-hand side of assignment is not assignable")
			return targetType
		}
		if ptr, ok := u.Operand.ExprType().(*PointerType); ok && !ptr.Mutable {
			lc.sink.Error(ErrAssignToConst, a.Target.Location(), "cannot assign to a const-declared location")
		}
	} else if lv.LDeclarer() == ast.DeclarerConst {
		lc.sink.Error(ErrAssignToConst, a.Target.Location(), "cannot assign to a const-declared location")
	}

	unified, ok := AreCompatible(targetType, valueType)
	if !ok {
		lc.sink.Error(ErrIncompatibleTypes, a.Location(),
			"cannot assign value of type %s to location of type %s", valueType.String(), targetType.String())
		return targetType
	}
	if id, ok := a.Target.(*ast.Identifier); ok {
		if nv := lc.env.GetVariable(id.Path); nv != nil {
			nv.Type = unified
		}
	}
	return unified
}

func (lc *localChecker) typeOfCall(c *ast.Call) Type {
	calleeType := lc.checkExpr(c.Callee)
	fn, ok := calleeType.(*FunctionType)
	if !ok {
		lc.sink.Error(ErrCallOnNonFun, c.Callee.Location(), "cannot call a value of type %s", calleeType.String())
		for _, a := range c.Args {
			lc.checkExpr(a)
		}
		return &BlankType{}
	}
	if fn.Variadic {
		if len(c.Args) < len(fn.Params) {
			lc.sink.Error(ErrInvalidArity, c.Location(), "expected at least %d arguments, found %d", len(fn.Params), len(c.Args))
		}
	} else if len(c.Args) != len(fn.Params) {
		lc.sink.Error(ErrInvalidArity, c.Location(), "expected %d arguments, found %d", len(fn.Params), len(c.Args))
	}
	for i, a := range c.Args {
		at := lc.checkExpr(a)
		if i < len(fn.Params) {
			if _, ok := AreCompatible(fn.Params[i].Type, at); !ok {
				lc.sink.Error(ErrIncompatibleTypes, a.Location(),
					"argument %d has type %s, expected %s", i+1, at.String(), fn.Params[i].Type.String())
			}
		}
	}
	return fn.Return
}

func (lc *localChecker) typeOfCast(c *ast.Cast) Type {
	opType := lc.checkExpr(c.Operand)
	target, err := lc.env.GetType(c.Annotation)
	if err != nil {
		lc.sink.Error(ErrUnknownTypeCode, c.Location(), "%s", err)
		return &BlankType{}
	}
	if !castAllowed(opType, target) {
		lc.sink.Error(ErrIncompatibleTypes, c.Location(), "cannot cast %s to %s", opType.String(), target.String())
	}
	return target
}

func castAllowed(from, to Type) bool {
	if from.Kind() == KindBlank || to.Kind() == KindBlank {
		return true
	}
	if IsNumeric(from) && IsNumeric(to) {
		return true
	}
	_, fromPtr := from.(*PointerType)
	_, toPtr := to.(*PointerType)
	return fromPtr && toPtr
}

func (lc *localChecker) typeOfAccess(a *ast.Access) Type {
	leftType := lc.checkExpr(a.Left)
	var structType *StructType
	if a.ArrowDeref {
		ptr, ok := leftType.(*PointerType)
		if !ok {
			lc.sink.Error(ErrDereferenceNonPointer, a.Location(), "cannot dereference non-pointer type %s", leftType.String())
			return &BlankType{}
		}
		st, ok := ptr.Inner.(*StructType)
		if !ok {
			lc.sink.Error(ErrAccessOnNonStruct, a.Location(), "cannot access member of non-struct type %s", ptr.Inner.String())
			return &BlankType{}
		}
		structType = st
		if ptr.Mutable {
			a.SetLDeclarer(ast.DeclarerVar)
		} else {
			a.SetLDeclarer(ast.DeclarerConst)
		}
	} else {
		st, ok := leftType.(*StructType)
		if !ok {
			lc.sink.Error(ErrAccessOnNonStruct, a.Location(), "cannot access member of non-struct type %s", leftType.String())
			return &BlankType{}
		}
		structType = st
		declarer := ast.DeclarerVar
		if lv, ok := a.Left.(ast.LValue); ok {
			declarer = lv.LDeclarer()
		}
		a.SetLDeclarer(declarer)
	}
	member := lc.env.GetInstanceVariable(structType, a.Member)
	vd, ok := member.(ast.VariableDeclarable)
	if !ok {
		lc.sink.Error(ErrInvalidStructMember, a.Location(), "%s has no member %q", structType.String(), a.Member)
		return &BlankType{}
	}
	a.SetLDeclarer(stricterDeclarer(a.LDeclarer(), vd.DeclDeclarer()))
	t, _ := vd.ResolvedType().(Type)
	if t == nil {
		t = &BlankType{}
	}
	return t
}

// stricterDeclarer combines the declarer of an access's left operand with
// the accessed member's own declarer: const wins on either side, so
// a.x is only assignable when both a and x were declared var.
func stricterDeclarer(a, b ast.Declarer) ast.Declarer {
	if a == ast.DeclarerConst || b == ast.DeclarerConst {
		return ast.DeclarerConst
	}
	return ast.DeclarerVar
}

func (lc *localChecker) typeOfIndex(ix *ast.Index) Type {
	leftType := lc.checkExpr(ix.Left)
	idxType := lc.checkExpr(ix.Index)
	if !IsInt(idxType) && idxType.Kind() != KindBlank {
		lc.sink.Error(ErrIncompatibleTypes, ix.Index.Location(), "array index must be an integer, found %s", idxType.String())
	}
	if lv, ok := ix.Left.(ast.LValue); ok {
		ix.SetLDeclarer(lv.LDeclarer())
	} else {
		ix.SetLDeclarer(ast.DeclarerVar)
	}
	switch t := leftType.(type) {
	case *ArrayType:
		return t.Inner
	case *TupleType:
		n, ok := evalConstInt(ix.Index)
		if !ok {
			lc.sink.Error(ErrNoLiteralIndexOnTuple, ix.Index.Location(), "tuple index must be an integer literal")
			return &BlankType{}
		}
		if n < 0 || n >= len(t.Elements) {
			lc.sink.Error(ErrTupleIndexOutOfRange, ix.Index.Location(), "tuple index %d out of range for %s", n, t.String())
			return &BlankType{}
		}
		return t.Elements[n]
	case *PointerType:
		return t.Inner
	default:
		lc.sink.Error(ErrIncompatibleTypes, ix.Location(), "cannot index into type %s", leftType.String())
		return &BlankType{}
	}
}

func (lc *localChecker) typeOfArray(a *ast.Array) Type {
	if len(a.Elements) == 0 {
		lc.sink.Error(ErrIndeterminateArrayType, a.Location(), "empty array literal has no inferable element type")
		return &ArrayType{Inner: &BlankType{}, Size: 0}
	}
	first := lc.checkExpr(a.Elements[0])
	for _, el := range a.Elements[1:] {
		t := lc.checkExpr(el)
		if unified, ok := AreCompatible(first, t); ok {
			first = unified
		} else {
			lc.sink.Error(ErrInconsistentArrayTypes, el.Location(),
				"array elements must share a type: found %s and %s", first.String(), t.String())
		}
	}
	return &ArrayType{Inner: first, Size: len(a.Elements)}
}

func (lc *localChecker) typeOfArrayGen(a *ast.ArrayGen) Type {
	genType := lc.checkExpr(a.Gen)
	sizeType := lc.checkExpr(a.Size)
	if !IsInt(sizeType) && sizeType.Kind() != KindBlank {
		lc.sink.Error(ErrIncompatibleTypes, a.Size.Location(), "array generator size must be an integer, found %s", sizeType.String())
	}
	size := -1
	if n, ok := evalConstInt(a.Size); ok {
		size = n
	} else {
		lc.sink.Error(ErrArraySizeUnknown, a.Size.Location(), "array generator size is not a constant expression")
	}
	return &ArrayType{Inner: genType, Size: size}
}

func (lc *localChecker) typeOfTuple(t *ast.Tuple) Type {
	elems := make([]Type, len(t.Elements))
	for i, el := range t.Elements {
		elems[i] = lc.checkExpr(el)
	}
	return &TupleType{Elements: elems}
}

func (lc *localChecker) typeOfObject(o *ast.Object) Type {
	target, err := lc.env.GetType(o.Annotation)
	if err != nil {
		lc.sink.Error(ErrUnknownTypeCode, o.Location(), "%s", err)
		for _, f := range o.Fields {
			lc.checkExpr(f.Value)
		}
		return &BlankType{}
	}
	st, ok := target.(*StructType)
	if !ok {
		lc.sink.Error(ErrAccessOnNonStruct, o.Location(), "%s is not a struct type", target.String())
		for _, f := range o.Fields {
			lc.checkExpr(f.Value)
		}
		return target
	}
	supplied := map[string]bool{}
	for _, f := range o.Fields {
		ft := lc.checkExpr(f.Value)
		supplied[f.Name] = true
		member := lc.env.GetInstanceVariable(st, f.Name)
		vd, ok := member.(ast.VariableDeclarable)
		if !ok {
			lc.sink.Error(ErrUnknownFieldInObj, o.Location(), "%s has no field %q", st.String(), f.Name)
			continue
		}
		mt, _ := vd.ResolvedType().(Type)
		if mt == nil {
			mt = &BlankType{}
		}
		if _, ok := AreCompatible(mt, ft); !ok {
			lc.sink.Error(ErrIncompatibleTypes, f.Value.Location(),
				"field %q expects type %s, found %s", f.Name, mt.String(), ft.String())
		}
	}
	if st.Scope != nil {
		for _, name := range st.Scope.MemberOrder {
			decl, ok := st.Scope.InstanceMembers[name].(*ast.Var)
			if !ok || supplied[decl.Name] || decl.Initializer != nil {
				continue
			}
			lc.sink.Error(ErrMissingFieldInObj, o.Location(), "missing field %q in %s literal", decl.Name, st.String())
		}
	}
	return st
}

func isVoidReturn(t Type) bool {
	st, ok := t.(*StructType)
	return ok && st.Scope != nil && st.Scope.Name == "void"
}

func isBoolType(t Type) bool {
	st, ok := t.(*StructType)
	return ok && st.Scope != nil && st.Scope.Name == "bool"
}
