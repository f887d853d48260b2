// token.go defines the Token type and the full Kind enumeration of
// spec.md section 6's lexical surface.

package frontend

import "slc/src/util"

// Kind differentiates tokens emitted by the lexer.
type Kind int

const (
	EOF Kind = iota
	NEWLINE
	IDENTIFIER

	// Literals. "inf" and "NaN" lex directly to FLOAT_LIT (spec.md section
	// 4.1); "true"/"false" keep their own keyword kinds below and carry a
	// Literal.Bool, since the parser treats TRUE/FALSE/NIL as primary
	// literal expressions alongside the *_LIT kinds.
	INT_LIT
	FLOAT_LIT
	CHAR_LIT
	STRING_LIT

	// Keywords.
	AND
	OR
	NOT
	IF
	ELSE
	LOOP
	WHILE
	FOR
	IN
	BREAK
	CONTINUE
	RETURN
	YIELD
	VAR
	CONST
	FUN
	OPER
	STRUCT
	ENUM
	TYPE
	INTERFACE
	USING
	NAMESPACE
	STATIC
	GLOBAL
	SELF
	AS
	TYPEOF
	IS
	ALLOC
	DEALLOC
	EXTERN
	TRUE
	FALSE
	NIL

	// Punctuation / operators.
	LPAREN
	RPAREN
	LBRACKET
	RBRACKET
	LBRACE
	RBRACE
	COMMA
	DOT
	COLON
	SEMICOLON
	ARROW    // ->
	FATARROW // =>
	PATH     // ::
	RANGE    // ..
	ELLIPSIS // ...

	PLUS
	MINUS
	STAR
	SLASH
	PERCENT
	CARET
	AMP    // &
	PIPE   // |
	BANG   // !
	ASSIGN // =

	EQ  // ==
	NEQ // !=
	LT
	LTE
	GT
	GTE

	PLUS_EQ
	MINUS_EQ
	STAR_EQ
	SLASH_EQ
	PERCENT_EQ
	CARET_EQ
	AMP_EQ
	AMP_AMP_EQ
	PIPE_EQ
	PIPE_PIPE_EQ

	// Error placeholder token, synthesized so the lexer can continue
	// scanning after a malformed lexeme (spec.md section 4.1).
	ILLEGAL
)

// Literal is the optional value attached to a literal token.
type Literal struct {
	Int    int64
	Float  float64
	Bool   bool
	Char   rune
	String string
}

// Token is a single lexeme with its kind, text, optional literal value and
// Location (spec.md section 3).
type Token struct {
	Kind    Kind
	Lexeme  string
	Literal Literal
	Loc     util.Location
}

// Is reports whether t has kind k.
func (t Token) Is(k Kind) bool { return t.Kind == k }
