// parser.go implements the recursive-descent, Pratt-precedence Parser
// (spec.md section 4.2). Grounded on the teacher's goyacc grammar
// (frontend/vslc.y, now removed) re-expressed as hand-written descent per
// spec.md section 9's guidance to replace the generated-parser approach;
// the panic/recover "bailout" synchronize pattern below is the same one
// go/parser uses internally for syntax errors, adapted to this grammar's
// per-statement resilience (spec.md section 4.2's "synchronize").
//
// Grouping-aware newline elision: a NEWLINE token is skipped transparently
// whenever the bracket stack (brackets) is non-empty, i.e. while any of
// ( [ are open. '{' is deliberately NOT pushed when it introduces a block
// or a struct/namespace body — those use newlines as real statement
// terminators — but it IS pushed around a struct-literal's field list,
// which is a grouping like any other.
package frontend

import (
	"slc/src/ast"
	"slc/src/util"
)

// Parser error codes, offset from util.CodeParser (3000).
const (
	errExpectedToken      = util.CodeParser + 1
	errExpectedExpr       = util.CodeParser + 2
	errExpectedAnnotation = util.CodeParser + 3
	errDeclarerlessParam  = util.CodeParser + 4
	errTooManyArgs        = util.CodeParser + 5
	errNonDeclInBody      = util.CodeParser + 6
)

const maxCallArgs = 255

type parser struct {
	tokens   []Token
	pos      int
	sink     *util.Sink
	brackets util.Stack // holds the Kind expected to close each open grouping.
}

// parseBailout unwinds the call stack back to the nearest statement
// boundary after a diagnostic has already been recorded.
type parseBailout struct{}

// Parse produces the ordered list of top-level statements from tokens
// (spec.md section 2, component 6). A terminal ast.EndOfFile statement is
// always appended.
func Parse(tokens []Token, sink *util.Sink) []ast.Stmt {
	p := &parser{tokens: tokens, sink: sink}
	var stmts []ast.Stmt
	for {
		p.skipTerminators()
		if p.cur().Kind == EOF {
			break
		}
		if s := p.parseStatementRecover(); s != nil {
			stmts = append(stmts, s)
		}
	}
	stmts = append(stmts, &ast.EndOfFile{StmtBase: ast.StmtBase{Loc: p.cur().Loc}})
	return stmts
}

// --- token-stream primitives ---

func (p *parser) skipGroupedNewlines() {
	for p.brackets.Size() > 0 && p.pos < len(p.tokens) && p.tokens[p.pos].Kind == NEWLINE {
		p.pos++
	}
}

func (p *parser) cur() Token {
	p.skipGroupedNewlines()
	if p.pos >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[p.pos]
}

func (p *parser) advance() Token {
	t := p.cur()
	if t.Kind != EOF {
		p.pos++
	}
	return t
}

func (p *parser) match(k Kind) bool {
	if p.cur().Kind == k {
		p.advance()
		return true
	}
	return false
}

func (p *parser) expect(k Kind, format string, args ...interface{}) Token {
	t := p.cur()
	if t.Kind != k {
		p.fail(t.Loc, errExpectedToken, format, args...)
	}
	return p.advance()
}

func (p *parser) fail(loc util.Location, code util.Code, format string, args ...interface{}) {
	p.sink.Error(code, loc, format, args...)
	panic(parseBailout{})
}

func (p *parser) open(openKind, closeKind Kind) Token {
	t := p.expect(openKind, "expected '%s'", kindGlyph(openKind))
	p.brackets.Push(closeKind)
	return t
}

func (p *parser) close(closeKind Kind) Token {
	t := p.expect(closeKind, "expected '%s'", kindGlyph(closeKind))
	p.brackets.Pop()
	return t
}

func kindGlyph(k Kind) string {
	switch k {
	case LPAREN:
		return "("
	case RPAREN:
		return ")"
	case LBRACKET:
		return "["
	case RBRACKET:
		return "]"
	case LBRACE:
		return "{"
	case RBRACE:
		return "}"
	case GT:
		return ">"
	default:
		return "?"
	}
}

// skipTerminators consumes consecutive statement-terminating NEWLINE and
// SEMICOLON tokens, used between top-level and block statements.
func (p *parser) skipTerminators() {
	for p.cur().Kind == NEWLINE || p.cur().Kind == SEMICOLON {
		p.advance()
	}
}

// endStatement consumes the single terminator closing a statement; a
// following '}' or EOF ends it implicitly without consuming anything
// (spec.md section 4.2).
func (p *parser) endStatement() {
	switch p.cur().Kind {
	case NEWLINE, SEMICOLON:
		p.advance()
	case RBRACE, EOF:
	default:
		p.fail(p.cur().Loc, errExpectedToken, "expected end of statement, found %q", p.cur().Lexeme)
	}
}

func (p *parser) atStatementEnd() bool {
	switch p.cur().Kind {
	case NEWLINE, SEMICOLON, RBRACE, EOF:
		return true
	}
	return false
}

// --- error recovery ---

func (p *parser) parseStatementRecover() (stmt ast.Stmt) {
	defer func() {
		if r := recover(); r != nil {
			if _, ok := r.(parseBailout); ok {
				p.synchronize()
				stmt = nil
				return
			}
			panic(r)
		}
	}()
	return p.parseStatement()
}

// synchronize discards tokens until the next statement terminator or a
// token that clearly begins a new declaration/control statement, clearing
// the grouping stack (spec.md section 4.2).
func (p *parser) synchronize() {
	p.brackets = util.Stack{}
	for p.pos < len(p.tokens) {
		switch p.tokens[p.pos].Kind {
		case EOF:
			return
		case NEWLINE, SEMICOLON:
			p.pos++
			return
		case STRUCT, FUN, VAR, CONST, FOR, IF, WHILE, LOOP, RETURN:
			return
		}
		p.pos++
	}
}

// --- statements ---

func (p *parser) parseStatement() ast.Stmt {
	switch p.cur().Kind {
	case VAR, CONST:
		return p.parseVarDeclStmt()
	case FUN:
		return p.parseFunDeclStmt()
	case EXTERN:
		return p.parseExternDeclStmt()
	case STRUCT:
		return p.parseStructDeclStmt()
	case NAMESPACE:
		return p.parseNamespaceDeclStmt()
	case IF:
		return p.parseIf()
	case WHILE:
		return p.parseWhile()
	case LOOP:
		return p.parseLoop()
	case FOR:
		return p.parseForIn()
	case RETURN:
		return p.parseReturn()
	case BREAK:
		loc := p.advance().Loc
		p.endStatement()
		return &ast.Break{StmtBase: ast.StmtBase{Loc: loc}}
	case CONTINUE:
		loc := p.advance().Loc
		p.endStatement()
		return &ast.Continue{StmtBase: ast.StmtBase{Loc: loc}}
	case LBRACE:
		return p.parseBlock()
	default:
		return p.parseExprStatement()
	}
}

func (p *parser) parseVarDeclStmt() ast.Stmt {
	loc := p.cur().Loc
	declarer := ast.DeclarerVar
	if p.cur().Kind == CONST {
		declarer = ast.DeclarerConst
	}
	p.advance()
	name := p.expect(IDENTIFIER, "expected variable name").Lexeme
	var annotation ast.Annotation = ast.Auto{}
	if p.match(COLON) {
		annotation = p.parseAnnotation()
	}
	var init ast.Expr
	if p.match(ASSIGN) {
		init = p.parseExpr()
	}
	p.endStatement()
	decl := &ast.Var{
		DeclBase:    ast.DeclBase{Loc: loc},
		Declarer:    declarer,
		Name:        name,
		Annotation:  annotation,
		Initializer: init,
	}
	return &ast.DeclStmt{StmtBase: ast.StmtBase{Loc: loc}, Decl: decl}
}

func (p *parser) parseParam() *ast.Var {
	loc := p.cur().Loc
	var declarer ast.Declarer
	switch p.cur().Kind {
	case VAR:
		declarer = ast.DeclarerVar
		p.advance()
	case CONST:
		declarer = ast.DeclarerConst
		p.advance()
	default:
		p.fail(loc, errDeclarerlessParam, "parameter must be declared 'var' or 'const'")
	}
	name := p.expect(IDENTIFIER, "expected parameter name").Lexeme
	p.expect(COLON, "expected ':' before parameter type")
	ann := p.parseAnnotation()
	return &ast.Var{DeclBase: ast.DeclBase{Loc: loc}, Declarer: declarer, Name: name, Annotation: ann}
}

func buildFunAnnotation(params []*ast.Var, ret *ast.Var) ast.Annotation {
	fparams := make([]ast.FunctionParam, len(params))
	for i, v := range params {
		fparams[i] = ast.FunctionParam{Mutable: v.Declarer == ast.DeclarerVar, Type: v.Annotation}
	}
	return ast.Function{Params: fparams, ReturnMut: ret.Declarer == ast.DeclarerVar, Return: ret.Annotation}
}

func (p *parser) parseFunDeclStmt() ast.Stmt {
	loc := p.advance().Loc // 'fun'
	name := p.expect(IDENTIFIER, "expected function name").Lexeme
	p.open(LPAREN, RPAREN)
	var params []*ast.Var
	if p.cur().Kind != RPAREN {
		for {
			params = append(params, p.parseParam())
			if !p.match(COMMA) {
				break
			}
			if p.cur().Kind == RPAREN {
				break
			}
		}
	}
	p.close(RPAREN)

	ret := &ast.Var{DeclBase: ast.DeclBase{Loc: loc}, Declarer: ast.DeclarerConst, Annotation: ast.Void{}}
	if p.match(FATARROW) {
		mut := p.match(VAR)
		declarer := ast.DeclarerConst
		if mut {
			declarer = ast.DeclarerVar
		}
		ret = &ast.Var{DeclBase: ast.DeclBase{Loc: loc}, Declarer: declarer, Annotation: p.parseAnnotationWithMut(false)}
	}

	body := p.parseBlockStmts()
	decl := &ast.Fun{
		DeclBase:   ast.DeclBase{Loc: loc},
		Declarer:   ast.DeclarerConst,
		Name:       name,
		Params:     params,
		Return:     ret,
		Body:       body,
		Annotation: buildFunAnnotation(params, ret),
	}
	return &ast.DeclStmt{StmtBase: ast.StmtBase{Loc: loc}, Decl: decl}
}

func (p *parser) parseExternDeclStmt() ast.Stmt {
	loc := p.advance().Loc // 'extern'
	p.expect(FUN, "expected 'fun' after 'extern'")
	name := p.expect(IDENTIFIER, "expected function name").Lexeme
	p.open(LPAREN, RPAREN)
	var params []ast.FunctionParam
	variadic := false
	if p.cur().Kind != RPAREN {
		for {
			if p.match(ELLIPSIS) {
				variadic = true
				break
			}
			mut := p.match(VAR)
			params = append(params, ast.FunctionParam{Mutable: mut, Type: p.parseAnnotationWithMut(false)})
			if !p.match(COMMA) {
				break
			}
			if p.cur().Kind == RPAREN {
				break
			}
		}
	}
	p.close(RPAREN)
	retMut := false
	var ret ast.Annotation = ast.Void{}
	if p.match(FATARROW) {
		retMut = p.match(VAR)
		ret = p.parseAnnotationWithMut(false)
	}
	p.endStatement()
	decl := &ast.ExternFun{
		DeclBase:   ast.DeclBase{Loc: loc},
		Name:       name,
		Annotation: ast.Function{Params: params, ReturnMut: retMut, Return: ret, Variadic: variadic},
	}
	return &ast.DeclStmt{StmtBase: ast.StmtBase{Loc: loc}, Decl: decl}
}

func (p *parser) parseStructDeclStmt() ast.Stmt {
	loc := p.advance().Loc // 'struct'
	name := p.expect(IDENTIFIER, "expected struct name").Lexeme
	members := p.parseDeclBody()
	decl := &ast.Struct{DeclBase: ast.DeclBase{Loc: loc}, Name: name, Members: members}
	return &ast.DeclStmt{StmtBase: ast.StmtBase{Loc: loc}, Decl: decl}
}

func (p *parser) parseNamespaceDeclStmt() ast.Stmt {
	loc := p.advance().Loc // 'namespace'
	name := p.expect(IDENTIFIER, "expected namespace name").Lexeme
	members := p.parseDeclBody()
	decl := &ast.NamespaceDecl{DeclBase: ast.DeclBase{Loc: loc}, Name: name, Members: members}
	return &ast.DeclStmt{StmtBase: ast.StmtBase{Loc: loc}, Decl: decl}
}

// parseDeclBody parses "{ decl... }" as used by struct/namespace bodies,
// which admit only nested declarations (spec.md section 3).
func (p *parser) parseDeclBody() []ast.Decl {
	p.expect(LBRACE, "expected '{'")
	var members []ast.Decl
	p.skipTerminators()
	for p.cur().Kind != RBRACE && p.cur().Kind != EOF {
		if s := p.parseStatementRecover(); s != nil {
			if ds, ok := s.(*ast.DeclStmt); ok {
				members = append(members, ds.Decl)
			} else {
				p.sink.Error(errNonDeclInBody, s.Location(), "only declarations are permitted here")
			}
		}
		p.skipTerminators()
	}
	p.expect(RBRACE, "expected '}'")
	return members
}

func (p *parser) parseBlock() ast.Stmt {
	loc := p.cur().Loc
	stmts := p.parseBlockStmts()
	return &ast.Block{StmtBase: ast.StmtBase{Loc: loc}, Stmts: stmts}
}

func (p *parser) parseBlockStmts() []ast.Stmt {
	p.expect(LBRACE, "expected '{'")
	var stmts []ast.Stmt
	p.skipTerminators()
	for p.cur().Kind != RBRACE && p.cur().Kind != EOF {
		if s := p.parseStatementRecover(); s != nil {
			stmts = append(stmts, s)
		}
		p.skipTerminators()
	}
	p.expect(RBRACE, "expected '}'")
	return stmts
}

// parseControlBody parses an if/while/loop/for-in body, which may be a
// block or a single statement (spec.md section 3).
func (p *parser) parseControlBody() ast.Stmt {
	if p.cur().Kind == LBRACE {
		return p.parseBlock()
	}
	return p.parseStatement()
}

func (p *parser) parseIf() ast.Stmt {
	loc := p.advance().Loc // 'if'
	cond := p.parseExpr()
	then := p.parseControlBody()
	var els ast.Stmt
	save := p.pos
	p.skipTerminators()
	if p.cur().Kind == ELSE {
		p.advance()
		if p.cur().Kind == IF {
			els = p.parseIf()
		} else {
			els = p.parseControlBody()
		}
	} else {
		p.pos = save
	}
	return &ast.Conditional{StmtBase: ast.StmtBase{Loc: loc}, Cond: cond, Then: then, Else: els}
}

func (p *parser) parseWhile() ast.Stmt {
	loc := p.advance().Loc // 'while'
	cond := p.parseExpr()
	body := p.parseControlBody()
	return &ast.Loop{StmtBase: ast.StmtBase{Loc: loc}, Kind: ast.LoopWhile, Cond: cond, Body: body}
}

func (p *parser) parseLoop() ast.Stmt {
	loc := p.advance().Loc // 'loop'
	body := p.parseControlBody()
	return &ast.Loop{StmtBase: ast.StmtBase{Loc: loc}, Kind: ast.LoopBare, Body: body}
}

func (p *parser) parseForIn() ast.Stmt {
	loc := p.advance().Loc // 'for'
	name := p.expect(IDENTIFIER, "expected loop variable name").Lexeme
	p.expect(IN, "expected 'in'")
	iter := p.parseExpr()
	body := p.parseControlBody()
	return &ast.Loop{StmtBase: ast.StmtBase{Loc: loc}, Kind: ast.LoopForIn, Var: name, Iterable: iter, Body: body}
}

func (p *parser) parseReturn() ast.Stmt {
	loc := p.advance().Loc // 'return'
	var value ast.Expr
	if !p.atStatementEnd() {
		value = p.parseExpr()
	}
	p.endStatement()
	return &ast.Return{StmtBase: ast.StmtBase{Loc: loc}, Value: value}
}

func (p *parser) parseExprStatement() ast.Stmt {
	loc := p.cur().Loc
	e := p.parseExpr()
	p.endStatement()
	return &ast.ExprStmt{StmtBase: ast.StmtBase{Loc: loc}, Expr: e}
}

// --- expressions: Pratt precedence climbing, lowest to highest ---

func (p *parser) parseExpr() ast.Expr {
	return p.parseAssignment()
}

var assignOps = map[Kind]ast.AssignOp{
	ASSIGN:       ast.AssignPlain,
	PLUS_EQ:      ast.AssignAdd,
	MINUS_EQ:     ast.AssignSub,
	STAR_EQ:      ast.AssignMul,
	SLASH_EQ:     ast.AssignDiv,
	PERCENT_EQ:   ast.AssignMod,
	CARET_EQ:     ast.AssignXor,
	AMP_EQ:       ast.AssignAnd,
	AMP_AMP_EQ:   ast.AssignAndAnd,
	PIPE_EQ:      ast.AssignOr,
	PIPE_PIPE_EQ: ast.AssignOrOr,
}

func (p *parser) parseAssignment() ast.Expr {
	left := p.parseOr()
	if op, ok := assignOps[p.cur().Kind]; ok {
		loc := p.advance().Loc
		right := p.parseAssignment() // right-associative
		return &ast.Assign{ExprBase: ast.ExprBase{Loc: loc}, Op: op, Target: left, Value: right}
	}
	return left
}

func (p *parser) parseOr() ast.Expr {
	left := p.parseAnd()
	for p.cur().Kind == OR {
		loc := p.advance().Loc
		right := p.parseAnd()
		left = &ast.Logical{ExprBase: ast.ExprBase{Loc: loc}, Op: ast.OpOr, Left: left, Right: right}
	}
	return left
}

func (p *parser) parseAnd() ast.Expr {
	left := p.parseEquality()
	for p.cur().Kind == AND {
		loc := p.advance().Loc
		right := p.parseEquality()
		left = &ast.Logical{ExprBase: ast.ExprBase{Loc: loc}, Op: ast.OpAnd, Left: left, Right: right}
	}
	return left
}

func (p *parser) parseEquality() ast.Expr {
	left := p.parseComparison()
	for {
		var op ast.BinaryOp
		switch p.cur().Kind {
		case EQ:
			op = ast.OpEq
		case NEQ:
			op = ast.OpNeq
		default:
			return left
		}
		loc := p.advance().Loc
		right := p.parseComparison()
		left = &ast.Binary{ExprBase: ast.ExprBase{Loc: loc}, Op: op, Left: left, Right: right}
	}
}

func (p *parser) parseComparison() ast.Expr {
	left := p.parseTerm()
	for {
		var op ast.BinaryOp
		switch p.cur().Kind {
		case LT:
			op = ast.OpLt
		case LTE:
			op = ast.OpLte
		case GT:
			op = ast.OpGt
		case GTE:
			op = ast.OpGte
		default:
			return left
		}
		loc := p.advance().Loc
		right := p.parseTerm()
		left = &ast.Binary{ExprBase: ast.ExprBase{Loc: loc}, Op: op, Left: left, Right: right}
	}
}

func (p *parser) parseTerm() ast.Expr {
	left := p.parseFactor()
	for {
		var op ast.BinaryOp
		switch p.cur().Kind {
		case PLUS:
			op = ast.OpAdd
		case MINUS:
			op = ast.OpSub
		default:
			return left
		}
		loc := p.advance().Loc
		right := p.parseFactor()
		left = &ast.Binary{ExprBase: ast.ExprBase{Loc: loc}, Op: op, Left: left, Right: right}
	}
}

func (p *parser) parseFactor() ast.Expr {
	left := p.parsePower()
	for {
		var op ast.BinaryOp
		switch p.cur().Kind {
		case STAR:
			op = ast.OpMul
		case SLASH:
			op = ast.OpDiv
		case PERCENT:
			op = ast.OpMod
		default:
			return left
		}
		loc := p.advance().Loc
		right := p.parsePower()
		left = &ast.Binary{ExprBase: ast.ExprBase{Loc: loc}, Op: op, Left: left, Right: right}
	}
}

func (p *parser) parsePower() ast.Expr {
	left := p.parseUnary()
	if p.cur().Kind == CARET {
		loc := p.advance().Loc
		right := p.parsePower() // right-associative
		return &ast.Binary{ExprBase: ast.ExprBase{Loc: loc}, Op: ast.OpPow, Left: left, Right: right}
	}
	return left
}

var unaryOps = map[Kind]ast.UnaryOp{
	BANG:  ast.OpNot,
	NOT:   ast.OpNot,
	MINUS: ast.OpNeg,
	STAR:  ast.OpDeref,
	AMP:   ast.OpAddr,
}

func (p *parser) parseUnary() ast.Expr {
	if op, ok := unaryOps[p.cur().Kind]; ok {
		loc := p.advance().Loc
		operand := p.parseUnary()
		return &ast.Unary{ExprBase: ast.ExprBase{Loc: loc}, Op: op, Operand: operand}
	}
	return p.parseAccessCall()
}

func (p *parser) parseAccessCall() ast.Expr {
	e := p.parsePrimary()
	for {
		switch p.cur().Kind {
		case DOT, ARROW:
			arrow := p.cur().Kind == ARROW
			loc := p.advance().Loc
			member := p.expect(IDENTIFIER, "expected member name after '%s'", dotOrArrow(arrow)).Lexeme
			e = &ast.Access{
				LValueBase: ast.LValueBase{ExprBase: ast.ExprBase{Loc: loc}},
				Left:       e,
				Member:     member,
				ArrowDeref: arrow,
			}
		case LBRACKET:
			t := p.open(LBRACKET, RBRACKET)
			idx := p.parseExpr()
			p.close(RBRACKET)
			e = &ast.Index{LValueBase: ast.LValueBase{ExprBase: ast.ExprBase{Loc: t.Loc}}, Left: e, Index: idx}
		case LPAREN:
			t := p.open(LPAREN, RPAREN)
			args := p.parseArgs()
			p.close(RPAREN)
			if len(args) > maxCallArgs {
				p.sink.Error(errTooManyArgs, t.Loc, "call has more than %d arguments", maxCallArgs)
			}
			e = &ast.Call{ExprBase: ast.ExprBase{Loc: t.Loc}, Callee: e, Args: args}
		case AS:
			loc := p.advance().Loc
			ann := p.parseAnnotation()
			e = &ast.Cast{ExprBase: ast.ExprBase{Loc: loc}, Operand: e, Annotation: ann}
		default:
			return e
		}
	}
}

func dotOrArrow(arrow bool) string {
	if arrow {
		return "->"
	}
	return "."
}

func (p *parser) parseArgs() []ast.Expr {
	var args []ast.Expr
	if p.cur().Kind == RPAREN {
		return args
	}
	for {
		args = append(args, p.parseExpr())
		if !p.match(COMMA) {
			break
		}
		if p.cur().Kind == RPAREN {
			break
		}
	}
	return args
}

func (p *parser) parsePrimary() ast.Expr {
	t := p.cur()
	switch t.Kind {
	case INT_LIT:
		p.advance()
		return &ast.Literal{ExprBase: ast.ExprBase{Loc: t.Loc}, Kind: ast.LitInt, Int: t.Literal.Int}
	case FLOAT_LIT:
		p.advance()
		return &ast.Literal{ExprBase: ast.ExprBase{Loc: t.Loc}, Kind: ast.LitFloat, Float: t.Literal.Float}
	case CHAR_LIT:
		p.advance()
		return &ast.Literal{ExprBase: ast.ExprBase{Loc: t.Loc}, Kind: ast.LitChar, Char: t.Literal.Char}
	case STRING_LIT:
		p.advance()
		return &ast.Literal{ExprBase: ast.ExprBase{Loc: t.Loc}, Kind: ast.LitString, String: t.Literal.String}
	case TRUE, FALSE:
		p.advance()
		return &ast.Literal{ExprBase: ast.ExprBase{Loc: t.Loc}, Kind: ast.LitBool, Bool: t.Literal.Bool}
	case NIL:
		p.advance()
		return &ast.Literal{ExprBase: ast.ExprBase{Loc: t.Loc}, Kind: ast.LitNil}
	case IDENTIFIER:
		return p.parseIdentifierPath()
	case COLON:
		return p.parseObjectLiteral()
	case LPAREN:
		return p.parseGroupingOrTuple()
	case LBRACKET:
		return p.parseArrayLiteral()
	default:
		p.fail(t.Loc, errExpectedExpr, "expected expression, found %q", t.Lexeme)
		return nil // unreachable: fail panics.
	}
}

func (p *parser) parseIdentifierPath() ast.Expr {
	t := p.advance()
	path := []string{t.Lexeme}
	for p.cur().Kind == PATH {
		p.advance()
		seg := p.expect(IDENTIFIER, "expected identifier after '::'")
		path = append(path, seg.Lexeme)
	}
	return &ast.Identifier{LValueBase: ast.LValueBase{ExprBase: ast.ExprBase{Loc: t.Loc}}, Path: path}
}

// parseGroupingOrTuple disambiguates "()" / "(e)" / "(e,)" / "(e1, e2)" by
// the presence of a comma, with trailing comma permitted (spec.md section
// 4.2 and the boundary behaviors of section 8).
func (p *parser) parseGroupingOrTuple() ast.Expr {
	loc := p.open(LPAREN, RPAREN)
	if p.cur().Kind == RPAREN {
		p.close(RPAREN)
		return &ast.Tuple{ExprBase: ast.ExprBase{Loc: loc.Loc}}
	}
	first := p.parseExpr()
	if p.cur().Kind == RPAREN {
		p.close(RPAREN)
		return &ast.Grouping{ExprBase: ast.ExprBase{Loc: loc.Loc}, Inner: first}
	}
	elements := []ast.Expr{first}
	for p.match(COMMA) {
		if p.cur().Kind == RPAREN {
			break
		}
		elements = append(elements, p.parseExpr())
	}
	p.close(RPAREN)
	return &ast.Tuple{ExprBase: ast.ExprBase{Loc: loc.Loc}, Elements: elements}
}

// parseArrayLiteral parses "[e1, ..., en]" (trailing comma permitted) or
// the generator form "[e ; n]".
func (p *parser) parseArrayLiteral() ast.Expr {
	loc := p.open(LBRACKET, RBRACKET)
	if p.cur().Kind == RBRACKET {
		p.close(RBRACKET)
		return &ast.Array{ExprBase: ast.ExprBase{Loc: loc.Loc}}
	}
	first := p.parseExpr()
	if p.match(SEMICOLON) {
		size := p.parseExpr()
		p.close(RBRACKET)
		return &ast.ArrayGen{ExprBase: ast.ExprBase{Loc: loc.Loc}, Gen: first, Size: size}
	}
	elements := []ast.Expr{first}
	for p.match(COMMA) {
		if p.cur().Kind == RBRACKET {
			break
		}
		elements = append(elements, p.parseExpr())
	}
	p.close(RBRACKET)
	return &ast.Array{ExprBase: ast.ExprBase{Loc: loc.Loc}, Elements: elements}
}

// parseObjectLiteral parses ":Path { field: e, ... }".
func (p *parser) parseObjectLiteral() ast.Expr {
	loc := p.advance().Loc // ':'
	segs := p.parseSegments()
	p.open(LBRACE, RBRACE)
	var fields []ast.ObjectField
	if p.cur().Kind != RBRACE {
		for {
			name := p.expect(IDENTIFIER, "expected field name").Lexeme
			p.expect(COLON, "expected ':' after field name")
			val := p.parseExpr()
			fields = append(fields, ast.ObjectField{Name: name, Value: val})
			if !p.match(COMMA) {
				break
			}
			if p.cur().Kind == RBRACE {
				break
			}
		}
	}
	p.close(RBRACE)
	return &ast.Object{ExprBase: ast.ExprBase{Loc: loc}, Annotation: ast.Segmented{Segments: segs}, Fields: fields}
}

// --- annotation grammar (spec.md section 4.2) ---

func (p *parser) parseAnnotation() ast.Annotation {
	mut := p.match(VAR)
	return p.parseAnnotationWithMut(mut)
}

// parseAnnotationWithMut parses an annotation whose leading 'var' (if any)
// has already been consumed by the caller, so the resulting mutability
// flag can be attached exactly once, to the first pointer/param level it
// applies to.
func (p *parser) parseAnnotationWithMut(mut bool) ast.Annotation {
	base := p.parseAnnotationPrimary()
	return p.parseAnnotationPostfix(base, mut)
}

func (p *parser) parseAnnotationPrimary() ast.Annotation {
	switch p.cur().Kind {
	case FUN:
		return p.parseFunctionAnnotation()
	case LPAREN:
		return p.parseTupleAnnotation()
	case IDENTIFIER:
		return ast.Segmented{Segments: p.parseSegments()}
	default:
		p.fail(p.cur().Loc, errExpectedAnnotation, "expected type annotation, found %q", p.cur().Lexeme)
		return nil
	}
}

// parseAnnotationPostfix applies trailing '*' and '[...]'. A '*' consumes
// the pending mutability flag; subsequent stars default to immutable,
// since the grammar offers no way to mark a second pointer level mutable.
func (p *parser) parseAnnotationPostfix(base ast.Annotation, mut bool) ast.Annotation {
	for {
		switch p.cur().Kind {
		case STAR:
			p.advance()
			base = ast.Pointer{Inner: base, Mutable: mut}
			mut = false
		case LBRACKET:
			p.open(LBRACKET, RBRACKET)
			var size ast.Expr
			if p.cur().Kind == STAR {
				p.advance()
			} else if p.cur().Kind != RBRACKET {
				size = p.parseExpr()
			}
			p.close(RBRACKET)
			base = ast.ArrayAnnotation{Inner: base, Size: size}
		default:
			return base
		}
	}
}

func (p *parser) parseSegments() []ast.ClassSegment {
	var segs []ast.ClassSegment
	for {
		name := p.expect(IDENTIFIER, "expected type name").Lexeme
		var args []ast.Annotation
		if p.cur().Kind == LT {
			p.advance()
			for {
				args = append(args, p.parseAnnotation())
				if !p.match(COMMA) {
					break
				}
			}
			p.expect(GT, "expected '>' to close type arguments")
		}
		segs = append(segs, ast.ClassSegment{Name: name, Args: args})
		if !p.match(PATH) {
			break
		}
	}
	return segs
}

func (p *parser) parseTupleAnnotation() ast.Annotation {
	p.open(LPAREN, RPAREN)
	var elems []ast.Annotation
	if p.cur().Kind != RPAREN {
		for {
			elems = append(elems, p.parseAnnotation())
			if !p.match(COMMA) {
				break
			}
			if p.cur().Kind == RPAREN {
				break
			}
		}
	}
	p.close(RPAREN)
	return ast.TupleAnnotation{Elements: elems}
}

func (p *parser) parseFunctionAnnotation() ast.Annotation {
	p.advance() // 'fun'
	p.open(LPAREN, RPAREN)
	var params []ast.FunctionParam
	variadic := false
	if p.cur().Kind != RPAREN {
		for {
			if p.match(ELLIPSIS) {
				variadic = true
				break
			}
			mut := p.match(VAR)
			params = append(params, ast.FunctionParam{Mutable: mut, Type: p.parseAnnotationWithMut(false)})
			if !p.match(COMMA) {
				break
			}
			if p.cur().Kind == RPAREN {
				break
			}
		}
	}
	p.close(RPAREN)
	retMut := false
	var ret ast.Annotation = ast.Void{}
	if p.match(FATARROW) {
		retMut = p.match(VAR)
		ret = p.parseAnnotationWithMut(false)
	}
	return ast.Function{Params: params, ReturnMut: retMut, Return: ret, Variadic: variadic}
}
