// errors.go enumerates the Global and Local Checker's diagnostic codes,
// offset from util.CodeTypeDef (4000) and util.CodeTypeCheck (5000) per
// spec.md section 4.5/4.6, matching the names and groupings of
// original_source/src/logger/error_code.h's E_TYPE_DEF and E_TYPE_CHECK
// ranges.
package sema

import "slc/src/util"

// Global Checker codes (spec.md section 4.5).
const (
	ErrSymbolAlreadyDeclared = util.CodeTypeDef + iota
	ErrUnknownTypeCode
	ErrNamespaceInStruct
	ErrNamespaceInLocalScope
	ErrStructInLocalScope
	ErrGlobalExecutableStmt
	ErrInvalidMainSignature
	ErrExternMain
	ErrUnimplemented
)

// Local Checker codes (spec.md section 4.6).
const (
	ErrUninitializedConst = util.CodeTypeCheck + iota
	ErrAutoWithoutInitializer
	ErrSizedArrayWithoutInitializer
	ErrArraySizeUnknown
	ErrAssignToNonLValue
	ErrAssignToConst
	ErrIncompatibleTypes
	ErrCallOnNonFun
	ErrInvalidArity
	ErrDereferenceNonPointer
	ErrAccessOnNonStruct
	ErrInvalidStructMember
	ErrNoLiteralIndexOnTuple
	ErrTupleIndexOutOfRange
	ErrIndeterminateArrayType
	ErrInconsistentArrayTypes
	ErrMissingFieldInObj
	ErrUnknownFieldInObj
	ErrConditionalWithoutBool
	ErrInconsistentReturnTypes
	ErrReturnIncompatible
	ErrNoReturnInNonVoidFun
	ErrDuplicateParamName
	ErrBreakOutsideLoop
	ErrContinueOutsideLoop
	ErrNotAnLValueForIn
)
