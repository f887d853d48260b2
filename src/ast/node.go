// node.go defines the Node interface shared by every Expr, Decl and Stmt:
// every AST node carries a source Location (spec.md section 3).

package ast

import "slc/src/util"

// Node is implemented by every Expr, Decl and Stmt.
type Node interface {
	Location() util.Location
}
