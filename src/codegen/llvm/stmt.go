// stmt.go lowers ast.Stmt nodes, re-walking the Local Checker's scope
// structure a second time on the same *sema.Environment (package doc in
// gen.go explains why) so every declaration along the way mints a fresh
// *sema.Variable this package can key its storage table on.
package llvmgen

import (
	"tinygo.org/x/go-llvm"

	"slc/src/ast"
	"slc/src/sema"
)

func (g *Generator) genBlockStmts(stmts []ast.Stmt) {
	g.env.IncreaseLocalScope()
	for _, s := range stmts {
		if blockTerminated(g.builder.GetInsertBlock()) {
			break
		}
		g.genStmt(s)
	}
	g.env.Exit()
}

func (g *Generator) genStmt(s ast.Stmt) {
	switch v := s.(type) {
	case *ast.DeclStmt:
		if vd, ok := v.Decl.(*ast.Var); ok {
			g.genLocalVarDecl(vd)
		}
	case *ast.ExprStmt:
		g.genExpr(v.Expr)
	case *ast.Block:
		g.genBlockStmts(v.Stmts)
	case *ast.Conditional:
		g.genConditional(v)
	case *ast.Loop:
		g.genLoop(v)
	case *ast.Return:
		g.genReturn(v)
	case *ast.Break:
		if n := len(g.breakTarget); n > 0 {
			g.builder.CreateBr(g.breakTarget[n-1])
		}
	case *ast.Continue:
		if n := len(g.contTarget); n > 0 {
			g.builder.CreateBr(g.contTarget[n-1])
		}
	}
}

func (g *Generator) genLocalVarDecl(v *ast.Var) {
	nv, _, err := g.env.DeclareVariable(v, false)
	if err != nil || nv == nil {
		return
	}
	t, ok := nv.Type.(sema.Type)
	if !ok {
		t = &sema.BlankType{}
	}
	llt := g.llvmType(t)
	alloca := g.builder.CreateAlloca(llt, v.Name)
	g.storage[nv] = alloca
	if v.Initializer != nil {
		g.builder.CreateStore(g.genExprAs(v.Initializer, llt), alloca)
	}
}

func (g *Generator) genConditional(c *ast.Conditional) {
	cond := g.genExpr(c.Cond)
	thenBlock := llvm.AddBasicBlock(g.curFn, "")
	mergeBlock := llvm.AddBasicBlock(g.curFn, "")
	elseBlock := mergeBlock
	if c.Else != nil {
		elseBlock = llvm.AddBasicBlock(g.curFn, "")
	}
	g.builder.CreateCondBr(cond, thenBlock, elseBlock)

	g.builder.SetInsertPointAtEnd(thenBlock)
	g.genStmt(c.Then)
	if !blockTerminated(g.builder.GetInsertBlock()) {
		g.builder.CreateBr(mergeBlock)
	}

	if c.Else != nil {
		g.builder.SetInsertPointAtEnd(elseBlock)
		g.genStmt(c.Else)
		if !blockTerminated(g.builder.GetInsertBlock()) {
			g.builder.CreateBr(mergeBlock)
		}
	}

	g.builder.SetInsertPointAtEnd(mergeBlock)
}

func (g *Generator) genLoop(l *ast.Loop) {
	switch l.Kind {
	case ast.LoopWhile:
		g.genWhileLoop(l)
	case ast.LoopBare:
		g.genBareLoop(l)
	case ast.LoopForIn:
		g.genForInLoop(l)
	}
}

func (g *Generator) genWhileLoop(l *ast.Loop) {
	head := llvm.AddBasicBlock(g.curFn, "")
	body := llvm.AddBasicBlock(g.curFn, "")
	done := llvm.AddBasicBlock(g.curFn, "")
	g.builder.CreateBr(head)

	g.builder.SetInsertPointAtEnd(head)
	cond := g.genExpr(l.Cond)
	g.builder.CreateCondBr(cond, body, done)

	g.pushLoop(done, head)
	g.builder.SetInsertPointAtEnd(body)
	g.genStmt(l.Body)
	if !blockTerminated(g.builder.GetInsertBlock()) {
		g.builder.CreateBr(head)
	}
	g.popLoop()

	g.builder.SetInsertPointAtEnd(done)
}

func (g *Generator) genBareLoop(l *ast.Loop) {
	body := llvm.AddBasicBlock(g.curFn, "")
	done := llvm.AddBasicBlock(g.curFn, "")
	g.builder.CreateBr(body)

	g.pushLoop(done, body)
	g.builder.SetInsertPointAtEnd(body)
	g.genStmt(l.Body)
	if !blockTerminated(g.builder.GetInsertBlock()) {
		g.builder.CreateBr(body)
	}
	g.popLoop()

	g.builder.SetInsertPointAtEnd(done)
}

// genForInLoop lowers "for name in iterable body" as an index-counted
// loop over iterable's backing array storage, binding name to a fresh
// alloca loaded from each element in turn. The bound variable is
// declared through the same Environment second pass as every other
// local (spec.md section 4.6's for-in scope, mirrored from
// src/sema/local.go's checkLoop).
func (g *Generator) genForInLoop(l *ast.Loop) {
	arrType, _ := mustSemaType(l.Iterable.ExprType()).(*sema.ArrayType)
	if arrType == nil {
		return
	}
	iterablePtr := g.genLValue(l.Iterable)
	if iterablePtr.IsNil() {
		tmp := g.builder.CreateAlloca(g.llvmType(arrType), "")
		g.builder.CreateStore(g.genExpr(l.Iterable), tmp)
		iterablePtr = tmp
	}
	size := arrType.Size
	if size < 0 {
		size = 0
	}

	g.env.IncreaseLocalScope()
	bind := &ast.Var{DeclBase: ast.DeclBase{Loc: l.Location()}, Declarer: ast.DeclarerConst, Name: l.Var, Annotation: ast.Auto{}}
	nv, _, _ := g.env.DeclareVariable(bind, true)
	elemTy := g.llvmType(arrType.Inner)
	bindAlloca := g.builder.CreateAlloca(elemTy, l.Var)
	if nv != nil {
		nv.Type = arrType.Inner
		g.storage[nv] = bindAlloca
	}

	idxAlloca := g.builder.CreateAlloca(g.ctx.Int32Type(), "")
	g.builder.CreateStore(llvm.ConstInt(g.ctx.Int32Type(), 0, false), idxAlloca)

	head := llvm.AddBasicBlock(g.curFn, "")
	body := llvm.AddBasicBlock(g.curFn, "")
	step := llvm.AddBasicBlock(g.curFn, "")
	done := llvm.AddBasicBlock(g.curFn, "")
	g.builder.CreateBr(head)

	g.builder.SetInsertPointAtEnd(head)
	idx := g.builder.CreateLoad(idxAlloca, "")
	cond := g.builder.CreateICmp(llvm.IntSLT, idx, llvm.ConstInt(g.ctx.Int32Type(), uint64(size), false), "")
	g.builder.CreateCondBr(cond, body, done)

	g.builder.SetInsertPointAtEnd(body)
	zero := llvm.ConstInt(g.ctx.Int32Type(), 0, false)
	elemPtr := g.builder.CreateGEP(iterablePtr, []llvm.Value{zero, idx}, "")
	g.builder.CreateStore(g.builder.CreateLoad(elemPtr, ""), bindAlloca)

	g.pushLoop(done, step)
	g.genStmt(l.Body)
	if !blockTerminated(g.builder.GetInsertBlock()) {
		g.builder.CreateBr(step)
	}
	g.popLoop()

	g.builder.SetInsertPointAtEnd(step)
	next := g.builder.CreateAdd(g.builder.CreateLoad(idxAlloca, ""), llvm.ConstInt(g.ctx.Int32Type(), 1, false), "")
	g.builder.CreateStore(next, idxAlloca)
	g.builder.CreateBr(head)

	g.builder.SetInsertPointAtEnd(done)
	g.env.Exit()
}

func (g *Generator) genReturn(r *ast.Return) {
	if r.Value != nil {
		g.builder.CreateStore(g.genExprAs(r.Value, g.retAlloca.Type().ElementType()), g.retAlloca)
	}
	g.builder.CreateBr(g.exitBlock)
}

func (g *Generator) pushLoop(breakBB, contBB llvm.BasicBlock) {
	g.breakTarget = append(g.breakTarget, breakBB)
	g.contTarget = append(g.contTarget, contBB)
}

func (g *Generator) popLoop() {
	g.breakTarget = g.breakTarget[:len(g.breakTarget)-1]
	g.contTarget = g.contTarget[:len(g.contTarget)-1]
}
