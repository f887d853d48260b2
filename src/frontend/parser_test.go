package frontend

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"slc/src/ast"
	"slc/src/util"
)

func parse(t *testing.T, src string) ([]ast.Stmt, *util.Sink) {
	t.Helper()
	sink := util.NewSink()
	sink.Mute(true)
	file := &util.SourceFile{Name: "test.slc", Text: src}
	toks := Lex(file, sink)
	return Parse(toks, sink), sink
}

// printProgram prints every statement but the trailing EndOfFile sentinel.
func printProgram(stmts []ast.Stmt) []string {
	out := make([]string, 0, len(stmts))
	for _, s := range stmts {
		if _, ok := s.(*ast.EndOfFile); ok {
			continue
		}
		out = append(out, ast.Print(s))
	}
	return out
}

func TestParsePrecedenceClimbing(t *testing.T) {
	stmts, sink := parse(t, "1 + 2 * 3\n")
	require.Zero(t, sink.ErrorCount())
	require.Len(t, stmts, 2)
	assert.Equal(t, "(+ 1 (* 2 3))", ast.Print(stmts[0]))
}

func TestParsePowerIsRightAssociative(t *testing.T) {
	stmts, sink := parse(t, "2 ^ 3 ^ 2\n")
	require.Zero(t, sink.ErrorCount())
	assert.Equal(t, "(^ 2 (^ 3 2))", ast.Print(stmts[0]))
}

func TestParseAssignmentIsRightAssociative(t *testing.T) {
	stmts, sink := parse(t, "a = b = 1\n")
	require.Zero(t, sink.ErrorCount())
	assert.Equal(t, "(= a (= b 1))", ast.Print(stmts[0]))
}

func TestParseVarDecl(t *testing.T) {
	stmts, sink := parse(t, "var x : i32 = 5\n")
	require.Zero(t, sink.ErrorCount())
	assert.Equal(t, "(decl:var x i32 5)", ast.Print(stmts[0]))
}

func TestParseAutoVarDecl(t *testing.T) {
	stmts, sink := parse(t, "var x = 5\n")
	require.Zero(t, sink.ErrorCount())
	assert.Equal(t, "(decl:var x auto 5)", ast.Print(stmts[0]))
}

func TestParseFunDecl(t *testing.T) {
	stmts, sink := parse(t, "fun add(const a: i32, const b: i32) => i32 {\n  return a + b\n}\n")
	require.Zero(t, sink.ErrorCount())
	assert.Equal(t, "(decl:fun add ((a i32) (b i32)) i32 ((return (+ a b))))", ast.Print(stmts[0]))
}

func TestParseIfElseChain(t *testing.T) {
	stmts, sink := parse(t, "if a { b } else if c { d } else { e }\n")
	require.Zero(t, sink.ErrorCount())
	assert.Equal(t, "(if a (block b) (if c (block d) (block e)))", ast.Print(stmts[0]))
}

func TestParseForIn(t *testing.T) {
	stmts, sink := parse(t, "for x in xs { print(x) }\n")
	require.Zero(t, sink.ErrorCount())
	assert.Equal(t, "(for x xs (block (call print x)))", ast.Print(stmts[0]))
}

func TestParseGroupingVsTuple(t *testing.T) {
	stmts, sink := parse(t, "(1)\n(1, 2)\n()\n")
	require.Zero(t, sink.ErrorCount())
	got := printProgram(stmts)
	assert.Equal(t, []string{"(group 1)", "(tuple 1 2)", "(tuple)"}, got)
}

func TestParseTrailingCommaInCall(t *testing.T) {
	stmts, sink := parse(t, "f(1, 2,)\n")
	require.Zero(t, sink.ErrorCount())
	assert.Equal(t, "(call f 1 2)", ast.Print(stmts[0]))
}

func TestParseArrayAndGenerator(t *testing.T) {
	stmts, sink := parse(t, "[1, 2, 3]\n[0 ; 10]\n")
	require.Zero(t, sink.ErrorCount())
	got := printProgram(stmts)
	assert.Equal(t, []string{"(array 1 2 3)", "(array-gen 0 10)"}, got)
}

func TestParseNewlineElisionInsideBrackets(t *testing.T) {
	stmts, sink := parse(t, "f(1,\n  2,\n  3)\n")
	require.Zero(t, sink.ErrorCount())
	assert.Equal(t, "(call f 1 2 3)", ast.Print(stmts[0]))
}

func TestParseAccessAndArrowAndIndex(t *testing.T) {
	stmts, sink := parse(t, "a.b->c[0]\n")
	require.Zero(t, sink.ErrorCount())
	assert.Equal(t, "([] (-> (. a b) c) 0)", ast.Print(stmts[0]))
}

func TestParseCastExpr(t *testing.T) {
	stmts, sink := parse(t, "x as i64\n")
	require.Zero(t, sink.ErrorCount())
	assert.Equal(t, "(as x i64)", ast.Print(stmts[0]))
}

func TestParsePointerAndArrayAnnotation(t *testing.T) {
	stmts, sink := parse(t, "var p : i32*\nvar a : i32[3]\n")
	require.Zero(t, sink.ErrorCount())
	got := printProgram(stmts)
	assert.Equal(t, []string{"(decl:var p i32*)", "(decl:var a i32[])"}, got)
}

func TestParseSyntaxErrorSynchronizesToNextStatement(t *testing.T) {
	stmts, sink := parse(t, "var x = )\nvar y = 1\n")
	assert.Greater(t, sink.ErrorCount(), 0)
	// the malformed statement is dropped; the well-formed one after it parses.
	found := false
	for _, s := range stmts {
		if ast.Print(s) == "(decl:var y auto 1)" {
			found = true
		}
	}
	assert.True(t, found, "parser should recover and continue after a syntax error")
}

func TestParseBreakContinue(t *testing.T) {
	stmts, sink := parse(t, "loop {\n  break\n  continue\n}\n")
	require.Zero(t, sink.ErrorCount())
	assert.Equal(t, "(loop (block (break) (continue)))", ast.Print(stmts[0]))
}
