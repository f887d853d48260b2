// expr.go lowers ast.Expr nodes to LLVM IR values. genExpr always returns
// an SSA value (loading through a pointer where the expression denotes a
// location); genLValue returns the address of a location directly, for
// Assign's target and unary '&'. Grounded on src/ir/llvm/transform.go's
// genExpression, generalized from its single-pass integer-only operator
// set to the full binary/unary/call/cast/access/index/aggregate surface
// spec.md section 4.7 requires.
package llvmgen

import (
	"tinygo.org/x/go-llvm"

	"slc/src/ast"
	"slc/src/sema"
)

// genExprAs lowers e for storage into a slot of LLVM type want. The only
// case this differs from genExpr is a bare nil literal: its own ExprType
// stays an unresolved Blank (the Local Checker unifies nil against the
// surrounding context's type, not the literal's own node — see
// DESIGN.md's Open Question on nil), so genExpr alone has nothing to pick
// a concrete pointer type from. Resolving it here against the slot it is
// about to be stored into keeps CreateStore's operand types matched,
// which this LLVM binding's non-opaque pointers require.
func (g *Generator) genExprAs(e ast.Expr, want llvm.Type) llvm.Value {
	if lit, ok := underlyingLiteral(e); ok && lit.Kind == ast.LitNil {
		return llvm.ConstNull(want)
	}
	return g.genExpr(e)
}

// underlyingLiteral unwraps Grouping nodes to find a bare Literal, so
// "(nil)" is recognized the same as "nil".
func underlyingLiteral(e ast.Expr) (*ast.Literal, bool) {
	for {
		switch v := e.(type) {
		case *ast.Literal:
			return v, true
		case *ast.Grouping:
			e = v.Inner
		default:
			return nil, false
		}
	}
}

func (g *Generator) genExpr(e ast.Expr) llvm.Value {
	switch v := e.(type) {
	case *ast.Literal:
		return g.genLiteral(v)
	case *ast.Identifier:
		return g.genIdentifierLoad(v)
	case *ast.Grouping:
		return g.genExpr(v.Inner)
	case *ast.Unary:
		return g.genUnary(v)
	case *ast.Dereference:
		return g.builder.CreateLoad(g.genExpr(v.Operand), "")
	case *ast.Binary:
		return g.genBinary(v)
	case *ast.Logical:
		return g.genLogical(v)
	case *ast.Assign:
		return g.genAssign(v)
	case *ast.Call:
		return g.genCall(v)
	case *ast.Cast:
		return g.genCast(v)
	case *ast.Access:
		return g.builder.CreateLoad(g.genAccessPtr(v), "")
	case *ast.Index:
		return g.builder.CreateLoad(g.genIndexPtr(v), "")
	case *ast.Array:
		return g.genArray(v)
	case *ast.ArrayGen:
		return g.genArrayGen(v)
	case *ast.Tuple:
		return g.genTuple(v)
	case *ast.Object:
		return g.genObject(v)
	default:
		return llvm.Value{}
	}
}

// genLValue returns the address of e, for assignment targets and '&'.
func (g *Generator) genLValue(e ast.Expr) llvm.Value {
	switch v := e.(type) {
	case *ast.Identifier:
		nv := g.env.GetVariable(v.Path)
		if nv == nil {
			return llvm.Value{}
		}
		return g.storage[nv]
	case *ast.Unary:
		if v.Op == ast.OpDeref {
			return g.genExpr(v.Operand)
		}
		return llvm.Value{}
	case *ast.Dereference:
		return g.genExpr(v.Operand)
	case *ast.Access:
		return g.genAccessPtr(v)
	case *ast.Index:
		return g.genIndexPtr(v)
	case *ast.Grouping:
		return g.genLValue(v.Inner)
	default:
		return llvm.Value{}
	}
}

func (g *Generator) genIdentifierLoad(id *ast.Identifier) llvm.Value {
	nv := g.env.GetVariable(id.Path)
	if nv == nil {
		return llvm.Value{}
	}
	if fn, ok := g.funcs[nv]; ok {
		return fn
	}
	ptr, ok := g.storage[nv]
	if !ok {
		return llvm.Value{}
	}
	return g.builder.CreateLoad(ptr, "")
}

func (g *Generator) genLiteral(l *ast.Literal) llvm.Value {
	switch l.Kind {
	case ast.LitInt:
		return llvm.ConstInt(g.ctx.Int32Type(), uint64(l.Int), true)
	case ast.LitFloat:
		return llvm.ConstFloat(g.ctx.DoubleType(), l.Float)
	case ast.LitBool:
		var b uint64
		if l.Bool {
			b = 1
		}
		return llvm.ConstInt(g.ctx.Int1Type(), b, false)
	case ast.LitChar:
		return llvm.ConstInt(g.ctx.Int8Type(), uint64(l.Char), false)
	case ast.LitString:
		return g.builder.CreateGlobalStringPtr(l.String, "")
	case ast.LitNil:
		// Reached only where no surrounding slot type is available to
		// genExprAs (e.g. nil as a bare expression statement); every
		// store/compare/call-argument/return site resolves nil against
		// its destination type itself instead of calling genLiteral.
		return llvm.ConstNull(llvm.PointerType(g.ctx.Int8Type(), 0))
	default:
		return llvm.Value{}
	}
}

func (g *Generator) genUnary(u *ast.Unary) llvm.Value {
	switch u.Op {
	case ast.OpNeg:
		v := g.genExpr(u.Operand)
		if isFloatSemType(u.Operand.ExprType()) {
			return g.builder.CreateFNeg(v, "")
		}
		return g.builder.CreateNeg(v, "")
	case ast.OpNot:
		return g.builder.CreateNot(g.genExpr(u.Operand), "")
	case ast.OpAddr:
		return g.genLValue(u.Operand)
	case ast.OpDeref:
		return g.builder.CreateLoad(g.genExpr(u.Operand), "")
	default:
		return llvm.Value{}
	}
}

func (g *Generator) genBinary(b *ast.Binary) llvm.Value {
	leftNil, lok := underlyingLiteral(b.Left)
	rightNil, rok := underlyingLiteral(b.Right)
	lok = lok && leftNil.Kind == ast.LitNil
	rok = rok && rightNil.Kind == ast.LitNil
	if lok && rok {
		return g.genComparison(b.Op, llvm.ConstNull(g.ctx.Int8Type()), llvm.ConstNull(g.ctx.Int8Type()), false)
	}
	if rok {
		lv := g.genExpr(b.Left)
		return g.genComparison(b.Op, lv, llvm.ConstNull(lv.Type()), false)
	}
	if lok {
		rv := g.genExpr(b.Right)
		return g.genComparison(b.Op, llvm.ConstNull(rv.Type()), rv, false)
	}

	lv := g.genExpr(b.Left)
	rv := g.genExpr(b.Right)
	isFloat := isFloatSemType(b.Left.ExprType()) || isFloatSemType(b.Right.ExprType())
	switch b.Op {
	case ast.OpAdd:
		if isFloat {
			return g.builder.CreateFAdd(lv, rv, "")
		}
		return g.builder.CreateAdd(lv, rv, "")
	case ast.OpSub:
		if isFloat {
			return g.builder.CreateFSub(lv, rv, "")
		}
		return g.builder.CreateSub(lv, rv, "")
	case ast.OpMul:
		if isFloat {
			return g.builder.CreateFMul(lv, rv, "")
		}
		return g.builder.CreateMul(lv, rv, "")
	case ast.OpDiv:
		if isFloat {
			return g.builder.CreateFDiv(lv, rv, "")
		}
		return g.builder.CreateSDiv(lv, rv, "")
	case ast.OpMod:
		if isFloat {
			return g.builder.CreateFRem(lv, rv, "")
		}
		return g.builder.CreateSRem(lv, rv, "")
	case ast.OpPow:
		return g.genPow(lv, rv, isFloat)
	case ast.OpEq, ast.OpNeq, ast.OpLt, ast.OpLte, ast.OpGt, ast.OpGte:
		return g.genComparison(b.Op, lv, rv, isFloat)
	default:
		return llvm.Value{}
	}
}

func (g *Generator) genComparison(op ast.BinaryOp, lv, rv llvm.Value, isFloat bool) llvm.Value {
	if isFloat {
		var pred llvm.FloatPredicate
		switch op {
		case ast.OpEq:
			pred = llvm.FloatOEQ
		case ast.OpNeq:
			pred = llvm.FloatONE
		case ast.OpLt:
			pred = llvm.FloatOLT
		case ast.OpLte:
			pred = llvm.FloatOLE
		case ast.OpGt:
			pred = llvm.FloatOGT
		case ast.OpGte:
			pred = llvm.FloatOGE
		}
		return g.builder.CreateFCmp(pred, lv, rv, "")
	}
	var pred llvm.IntPredicate
	switch op {
	case ast.OpEq:
		pred = llvm.IntEQ
	case ast.OpNeq:
		pred = llvm.IntNE
	case ast.OpLt:
		pred = llvm.IntSLT
	case ast.OpLte:
		pred = llvm.IntSLE
	case ast.OpGt:
		pred = llvm.IntSGT
	case ast.OpGte:
		pred = llvm.IntSGE
	}
	return g.builder.CreateICmp(pred, lv, rv, "")
}

// genPow lowers '^' to a call to libc's double-precision pow; LLVM has no integer
// exponentiation instruction, so integer operands round-trip through
// double precision the same way the original niter compiler's runtime
// support does (spec.md section 4.7).
func (g *Generator) genPow(lv, rv llvm.Value, isFloat bool) llvm.Value {
	dbl := g.ctx.DoubleType()
	if !isFloat {
		lv = g.builder.CreateSIToFP(lv, dbl, "")
		rv = g.builder.CreateSIToFP(rv, dbl, "")
	}
	fn := g.mod.NamedFunction("pow")
	if fn.IsAFunction().IsNil() {
		ft := llvm.FunctionType(dbl, []llvm.Type{dbl, dbl}, false)
		fn = llvm.AddFunction(g.mod, "pow", ft)
	}
	res := g.builder.CreateCall(fn, []llvm.Value{lv, rv}, "")
	if !isFloat {
		return g.builder.CreateFPToSI(res, g.ctx.Int32Type(), "")
	}
	return res
}

// genLogical lowers short-circuiting 'and'/'or' through a result alloca
// rather than a phi node, matching the alloca-per-value style the teacher
// uses for every other stack slot (src/ir/llvm/transform.go).
func (g *Generator) genLogical(l *ast.Logical) llvm.Value {
	result := g.builder.CreateAlloca(g.ctx.Int1Type(), "")
	lv := g.genExpr(l.Left)
	g.builder.CreateStore(lv, result)

	rhs := llvm.AddBasicBlock(g.curFn, "")
	merge := llvm.AddBasicBlock(g.curFn, "")
	if l.Op == ast.OpAnd {
		g.builder.CreateCondBr(lv, rhs, merge)
	} else {
		g.builder.CreateCondBr(lv, merge, rhs)
	}

	g.builder.SetInsertPointAtEnd(rhs)
	rv := g.genExpr(l.Right)
	g.builder.CreateStore(rv, result)
	g.builder.CreateBr(merge)

	g.builder.SetInsertPointAtEnd(merge)
	return g.builder.CreateLoad(result, "")
}

func (g *Generator) genAssign(a *ast.Assign) llvm.Value {
	ptr := g.genLValue(a.Target)
	val := g.genExprAs(a.Value, ptr.Type().ElementType())
	if a.Op != ast.AssignPlain {
		cur := g.builder.CreateLoad(ptr, "")
		isFloat := isFloatSemType(a.Target.ExprType())
		val = g.applyCompoundOp(a.Op, cur, val, isFloat)
	}
	g.builder.CreateStore(val, ptr)
	return val
}

func (g *Generator) applyCompoundOp(op ast.AssignOp, cur, val llvm.Value, isFloat bool) llvm.Value {
	switch op {
	case ast.AssignAdd:
		if isFloat {
			return g.builder.CreateFAdd(cur, val, "")
		}
		return g.builder.CreateAdd(cur, val, "")
	case ast.AssignSub:
		if isFloat {
			return g.builder.CreateFSub(cur, val, "")
		}
		return g.builder.CreateSub(cur, val, "")
	case ast.AssignMul:
		if isFloat {
			return g.builder.CreateFMul(cur, val, "")
		}
		return g.builder.CreateMul(cur, val, "")
	case ast.AssignDiv:
		if isFloat {
			return g.builder.CreateFDiv(cur, val, "")
		}
		return g.builder.CreateSDiv(cur, val, "")
	case ast.AssignMod:
		if isFloat {
			return g.builder.CreateFRem(cur, val, "")
		}
		return g.builder.CreateSRem(cur, val, "")
	case ast.AssignXor:
		return g.builder.CreateXor(cur, val, "")
	case ast.AssignAnd, ast.AssignAndAnd:
		return g.builder.CreateAnd(cur, val, "")
	case ast.AssignOr, ast.AssignOrOr:
		return g.builder.CreateOr(cur, val, "")
	default:
		return val
	}
}

func (g *Generator) genCall(c *ast.Call) llvm.Value {
	callee := g.genExpr(c.Callee)
	params := callee.Params()
	args := make([]llvm.Value, len(c.Args))
	for i, a := range c.Args {
		if i < len(params) {
			args[i] = g.genExprAs(a, params[i].Type())
		} else {
			args[i] = g.genExpr(a)
		}
	}
	return g.builder.CreateCall(callee, args, "")
}

func (g *Generator) genCast(c *ast.Cast) llvm.Value {
	v := g.genExpr(c.Operand)
	fromFloat := isFloatSemType(c.Operand.ExprType())
	toFloat := isFloatSemType(c.ExprType())
	target := g.llvmType(mustSemaType(c.ExprType()))
	switch {
	case fromFloat && toFloat:
		return g.builder.CreateFPCast(v, target, "")
	case fromFloat && !toFloat:
		return g.builder.CreateFPToSI(v, target, "")
	case !fromFloat && toFloat:
		return g.builder.CreateSIToFP(v, target, "")
	default:
		from := v.Type()
		switch {
		case from.IntTypeWidth() < target.IntTypeWidth():
			return g.builder.CreateSExt(v, target, "")
		case from.IntTypeWidth() > target.IntTypeWidth():
			return g.builder.CreateTrunc(v, target, "")
		default:
			return g.builder.CreateBitCast(v, target, "")
		}
	}
}

func (g *Generator) genAccessPtr(a *ast.Access) llvm.Value {
	var base llvm.Value
	var st *sema.StructType
	if a.ArrowDeref {
		base = g.genExpr(a.Left)
		if pt, ok := mustSemaType(a.Left.ExprType()).(*sema.PointerType); ok {
			st, _ = pt.Inner.(*sema.StructType)
		}
	} else {
		base = g.genLValue(a.Left)
		st, _ = mustSemaType(a.Left.ExprType()).(*sema.StructType)
	}
	if st == nil || st.Scope == nil {
		return llvm.Value{}
	}
	idx := indexOfMember(st.Scope, a.Member)
	if idx < 0 {
		return llvm.Value{}
	}
	return g.builder.CreateStructGEP(base, idx, "")
}

func (g *Generator) genIndexPtr(ix *ast.Index) llvm.Value {
	idx := g.genExpr(ix.Index)
	leftType := mustSemaType(ix.Left.ExprType())
	switch leftType.(type) {
	case *sema.PointerType:
		base := g.genExpr(ix.Left)
		return g.builder.CreateGEP(base, []llvm.Value{idx}, "")
	case *sema.TupleType:
		base := g.genLValue(ix.Left)
		n, _ := constIndex(ix.Index)
		return g.builder.CreateStructGEP(base, n, "")
	default:
		base := g.genLValue(ix.Left)
		zero := llvm.ConstInt(g.ctx.Int32Type(), 0, false)
		return g.builder.CreateGEP(base, []llvm.Value{zero, idx}, "")
	}
}

func (g *Generator) genArray(a *ast.Array) llvm.Value {
	arrTy := g.llvmType(mustSemaType(a.ExprType()))
	alloca := g.builder.CreateAlloca(arrTy, "")
	zero := llvm.ConstInt(g.ctx.Int32Type(), 0, false)
	for i, el := range a.Elements {
		idx := llvm.ConstInt(g.ctx.Int32Type(), uint64(i), false)
		ptr := g.builder.CreateGEP(alloca, []llvm.Value{zero, idx}, "")
		g.builder.CreateStore(g.genExprAs(el, ptr.Type().ElementType()), ptr)
	}
	return g.builder.CreateLoad(alloca, "")
}

// genArrayGen lowers "[e ; n]" as a counted runtime loop, since e is
// evaluated n times rather than folded into one constant (spec.md
// section 3).
func (g *Generator) genArrayGen(a *ast.ArrayGen) llvm.Value {
	arrTy := g.llvmType(mustSemaType(a.ExprType()))
	alloca := g.builder.CreateAlloca(arrTy, "")
	size := g.genExpr(a.Size)

	idxAlloca := g.builder.CreateAlloca(g.ctx.Int32Type(), "")
	g.builder.CreateStore(llvm.ConstInt(g.ctx.Int32Type(), 0, false), idxAlloca)

	head := llvm.AddBasicBlock(g.curFn, "")
	body := llvm.AddBasicBlock(g.curFn, "")
	done := llvm.AddBasicBlock(g.curFn, "")
	g.builder.CreateBr(head)

	g.builder.SetInsertPointAtEnd(head)
	idx := g.builder.CreateLoad(idxAlloca, "")
	cond := g.builder.CreateICmp(llvm.IntSLT, idx, size, "")
	g.builder.CreateCondBr(cond, body, done)

	g.builder.SetInsertPointAtEnd(body)
	val := g.genExpr(a.Gen)
	zero := llvm.ConstInt(g.ctx.Int32Type(), 0, false)
	elemPtr := g.builder.CreateGEP(alloca, []llvm.Value{zero, idx}, "")
	g.builder.CreateStore(val, elemPtr)
	next := g.builder.CreateAdd(idx, llvm.ConstInt(g.ctx.Int32Type(), 1, false), "")
	g.builder.CreateStore(next, idxAlloca)
	g.builder.CreateBr(head)

	g.builder.SetInsertPointAtEnd(done)
	return g.builder.CreateLoad(alloca, "")
}

func (g *Generator) genTuple(t *ast.Tuple) llvm.Value {
	tupTy := g.llvmType(mustSemaType(t.ExprType()))
	alloca := g.builder.CreateAlloca(tupTy, "")
	for i, el := range t.Elements {
		ptr := g.builder.CreateStructGEP(alloca, i, "")
		g.builder.CreateStore(g.genExprAs(el, ptr.Type().ElementType()), ptr)
	}
	return g.builder.CreateLoad(alloca, "")
}

func (g *Generator) genObject(o *ast.Object) llvm.Value {
	st, _ := mustSemaType(o.ExprType()).(*sema.StructType)
	if st == nil || st.Scope == nil {
		return llvm.Value{}
	}
	alloca := g.builder.CreateAlloca(g.llvmType(st), "")
	for _, f := range o.Fields {
		idx := indexOfMember(st.Scope, f.Name)
		if idx < 0 {
			continue
		}
		ptr := g.builder.CreateStructGEP(alloca, idx, "")
		g.builder.CreateStore(g.genExprAs(f.Value, ptr.Type().ElementType()), ptr)
	}
	return g.builder.CreateLoad(alloca, "")
}

func indexOfMember(ss *sema.StructScope, name string) int {
	for i, m := range ss.MemberOrder {
		if m == name {
			return i
		}
	}
	return -1
}

// mustSemaType recovers the sema.Type a checked Expr's ExprType carries.
// ast.SemType is the narrow leaf interface used to avoid an ast<->sema
// import cycle (spec.md section 9); every value actually stored by the
// Local Checker also satisfies sema.Type.
func mustSemaType(t ast.SemType) sema.Type {
	if st, ok := t.(sema.Type); ok {
		return st
	}
	return &sema.BlankType{}
}

func isFloatSemType(t ast.SemType) bool {
	st, ok := t.(sema.Type)
	return ok && sema.IsFloat(st)
}

// constIndex evaluates the same minimal constant-expression subset
// sema.evalConstInt does, for tuple literal indices that codegen needs
// as an immediate struct-field number rather than a runtime value.
func constIndex(e ast.Expr) (int, bool) {
	switch v := e.(type) {
	case *ast.Literal:
		if v.Kind == ast.LitInt {
			return int(v.Int), true
		}
	case *ast.Unary:
		if v.Op == ast.OpNeg {
			if n, ok := constIndex(v.Operand); ok {
				return -n, true
			}
		}
	case *ast.Grouping:
		return constIndex(v.Inner)
	}
	return 0, false
}
