// annotation.go implements the Annotation sum type (spec.md section 3):
// the syntax the programmer writes to denote a type, before resolution.
// Grounded on original_source/src/parser/annotation.h's shape (a
// discriminated union of segmented-path / pointer / array / tuple /
// function annotations), re-expressed as a Go interface + type switch per
// spec.md section 9's tagged-sum guidance.

package ast

// Annotation is the parse-time representation of a written type.
type Annotation interface {
	annotation()
	// String renders the canonical printed form used in diagnostics, e.g.
	// "A::B<i32>", "i32*", "i32[]", "(i32, bool, )", "fun(i32, ) => i32".
	String() string
}

// ClassSegment is one "Name<Arg, ...>" segment of a path annotation, e.g.
// the "List<i32>" in "std::List<i32>".
type ClassSegment struct {
	Name string
	Args []Annotation
}

// Segmented is a path of class segments joined by "::", e.g. "A::B<i32>".
type Segmented struct {
	Segments []ClassSegment
}

func (Segmented) annotation() {}

func (s Segmented) String() string {
	out := ""
	for i, seg := range s.Segments {
		if i > 0 {
			out += "::"
		}
		out += seg.Name
		if len(seg.Args) > 0 {
			out += "<"
			for j, a := range seg.Args {
				if j > 0 {
					out += ", "
				}
				out += a.String()
			}
			out += ">"
		}
	}
	return out
}

// Pointer is "Inner*", optionally declared mutable with a leading "var".
type Pointer struct {
	Inner   Annotation
	Mutable bool
}

func (Pointer) annotation() {}
func (p Pointer) String() string {
	prefix := ""
	if p.Mutable {
		prefix = "var "
	}
	return prefix + p.Inner.String() + "*"
}

// ArrayAnnotation is "Inner[N]" (fixed size, Size != nil) or "Inner[*]"
// (inferred size, Size == nil).
type ArrayAnnotation struct {
	Inner Annotation
	Size  Expr // nil when the size is inferred ("*").
}

func (ArrayAnnotation) annotation() {}
func (a ArrayAnnotation) String() string {
	if a.Size == nil {
		return a.Inner.String() + "[*]"
	}
	return a.Inner.String() + "[]"
}

// TupleAnnotation is "(A, B, ...)".
type TupleAnnotation struct {
	Elements []Annotation
}

func (TupleAnnotation) annotation() {}
func (t TupleAnnotation) String() string {
	out := "("
	for _, e := range t.Elements {
		out += e.String() + ", "
	}
	return out + ")"
}

// FunctionParam is one parameter of a Function annotation.
type FunctionParam struct {
	Mutable bool
	Type    Annotation
}

// Function is "fun(p1, p2, ...) => ret", optionally variadic.
type Function struct {
	Params       []FunctionParam
	ReturnMut    bool
	Return       Annotation
	Variadic     bool
}

func (Function) annotation() {}
func (f Function) String() string {
	out := "fun("
	for _, p := range f.Params {
		if p.Mutable {
			out += "var "
		}
		out += p.Type.String() + ", "
	}
	if f.Variadic {
		out += "..."
	}
	out += ") => "
	if f.ReturnMut {
		out += "var "
	}
	return out + f.Return.String()
}

// Auto is the synthesized annotation the parser inserts when an
// initializer's type is omitted (spec.md section 4.2's "implicit forms").
// It resolves to a Blank type in the Local Checker.
type Auto struct{}

func (Auto) annotation()  {}
func (Auto) String() string { return "auto" }

// Void is the synthesized annotation for an omitted return type.
type Void struct{}

func (Void) annotation()  {}
func (Void) String() string { return "void" }
