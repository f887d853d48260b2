// keywords.go recognizes reserved words from spec.md section 6's keyword
// list. Grounded on the teacher's frontend/lang.go: keywords are bucketed
// by length so a lookup only scans words the exact length of the
// candidate identifier, rather than hashing or scanning the whole table.

package frontend

type reservedWord struct {
	val string
	kind Kind
}

// rw buckets reserved words by length; rw[n-1] holds every keyword of
// length n. The longest VSL-family keyword is "interface"/"namespace" at
// nine characters.
var rw = [...][]reservedWord{
	{}, // 1-grams: none.
	{ // 2-grams
		{"or", OR}, {"if", IF}, {"in", IN}, {"as", AS}, {"is", IS},
	},
	{ // 3-grams. "inf" and "NaN" are handled before this table is
		// consulted (spec.md section 4.1: they lex as float literals).
		{"and", AND}, {"not", NOT}, {"for", FOR}, {"var", VAR},
		{"fun", FUN}, {"nil", NIL},
	},
	{ // 4-grams
		{"else", ELSE}, {"loop", LOOP}, {"oper", OPER}, {"enum", ENUM},
		{"type", TYPE}, {"self", SELF}, {"true", TRUE},
	},
	{ // 5-grams
		{"while", WHILE}, {"break", BREAK}, {"yield", YIELD}, {"const", CONST},
		{"using", USING}, {"alloc", ALLOC}, {"false", FALSE},
	},
	{ // 6-grams
		{"return", RETURN}, {"struct", STRUCT}, {"static", STATIC},
		{"global", GLOBAL}, {"typeof", TYPEOF}, {"extern", EXTERN},
	},
	{ // 7-grams
		{"dealloc", DEALLOC},
	},
	{ // 8-grams
		{"continue", CONTINUE},
	},
	{ // 9-grams
		{"interface", INTERFACE}, {"namespace", NAMESPACE},
	},
}

// isKeyword reports whether s is a reserved word, returning its Kind.
// Strings longer than the longest keyword, or not found in their length
// bucket, are identifiers.
func isKeyword(s string) (bool, Kind) {
	if len(s) == 0 || len(s) > len(rw) {
		return false, IDENTIFIER
	}
	for _, e := range rw[len(s)-1] {
		if e.val == s {
			return true, e.kind
		}
	}
	return false, IDENTIFIER
}
