// Package demangle decodes Itanium C++ ABI mangled symbol names, the scheme
// used by GCC and Clang on ELF and EABI targets.
package demangle

import (
	"fmt"
	"strings"
)

// NodeKind identifies the type of component tree node.
type NodeKind int

const (
	NodeKindUnknown NodeKind = iota
	// Name nodes
	NodeKindIdentifier
	NodeKindNamed
	NodeKindTemplate
	NodeKindOperator
	NodeKindCtorDtor
	NodeKindUnnamed
	NodeKindLocalName
	NodeKindABITagged
	// Type nodes
	NodeKindBuiltin
	NodeKindQualified
	NodeKindPointer
	NodeKindLvalueRef
	NodeKindRvalueRef
	NodeKindArray
	NodeKindFunctionType
	NodeKindPointerToMember
	// Template argument nodes
	NodeKindLiteral
	NodeKindArgPack
	// Symbol nodes
	NodeKindEncoding
	NodeKindSpecialForm
	NodeKindClone
)

var nodeKindNames = map[NodeKind]string{
	NodeKindIdentifier:      "identifier",
	NodeKindNamed:           "named",
	NodeKindTemplate:        "template",
	NodeKindOperator:        "operator",
	NodeKindCtorDtor:        "ctor-dtor",
	NodeKindUnnamed:         "unnamed",
	NodeKindLocalName:       "local-name",
	NodeKindABITagged:       "abi-tagged",
	NodeKindBuiltin:         "builtin",
	NodeKindQualified:       "qualified",
	NodeKindPointer:         "pointer",
	NodeKindLvalueRef:       "lvalue-ref",
	NodeKindRvalueRef:       "rvalue-ref",
	NodeKindArray:           "array",
	NodeKindFunctionType:    "function-type",
	NodeKindPointerToMember: "pointer-to-member",
	NodeKindLiteral:         "literal",
	NodeKindArgPack:         "arg-pack",
	NodeKindEncoding:        "encoding",
	NodeKindSpecialForm:     "special-form",
	NodeKindClone:           "clone",
}

func (k NodeKind) String() string {
	if name, ok := nodeKindNames[k]; ok {
		return name
	}
	return "unknown"
}

// Node is the interface implemented by all component tree nodes.
// String renders the node as C++ source text.
type Node interface {
	Kind() NodeKind
	fmt.Stringer
}

// Identifier is a simple name.
type Identifier struct {
	Name string
}

func (n *Identifier) Kind() NodeKind { return NodeKindIdentifier }
func (n *Identifier) String() string { return render(n) }

// Named is a scope chain such as A::B::c. Parts are in source order.
type Named struct {
	Parts []Node
}

func (n *Named) Kind() NodeKind { return NodeKindNamed }
func (n *Named) String() string { return render(n) }

// Template is a template-id: a template name applied to arguments.
type Template struct {
	Base Node
	Args []Node
}

func (n *Template) Kind() NodeKind { return NodeKindTemplate }
func (n *Template) String() string { return render(n) }

// OperatorKind identifies an overloadable operator.
type OperatorKind int

const (
	OpUnknown OperatorKind = iota
	OpNew
	OpNewArray
	OpDelete
	OpDeleteArray
	OpUnaryPlus
	OpUnaryMinus
	OpAddressOf
	OpDereference
	OpComplement
	OpPlus
	OpMinus
	OpMultiply
	OpDivide
	OpModulo
	OpAnd
	OpOr
	OpXor
	OpAssign
	OpPlusAssign
	OpMinusAssign
	OpMultiplyAssign
	OpDivideAssign
	OpModuloAssign
	OpAndAssign
	OpOrAssign
	OpXorAssign
	OpLeftShift
	OpRightShift
	OpLeftShiftAssign
	OpRightShiftAssign
	OpEqual
	OpNotEqual
	OpLess
	OpGreater
	OpLessEqual
	OpGreaterEqual
	OpSpaceship
	OpLogicalNot
	OpLogicalAnd
	OpLogicalOr
	OpIncrement
	OpDecrement
	OpComma
	OpArrowStar
	OpArrow
	OpCall
	OpSubscript
	OpConditional
	OpCoAwait
	OpConversion
	OpLiteral
	OpVendor
)

// Operator is an operator function name. Target holds the destination type
// of a conversion operator; Name holds the suffix of a literal operator or
// the name of a vendor operator.
type Operator struct {
	Op     OperatorKind
	Target Node
	Name   string
}

func (n *Operator) Kind() NodeKind { return NodeKindOperator }
func (n *Operator) String() string { return render(n) }

// CtorDtor names a constructor or destructor of Class.
type CtorDtor struct {
	Class      string
	Destructor bool
	Variant    byte // '0'..'3' as mangled
}

func (n *CtorDtor) Kind() NodeKind { return NodeKindCtorDtor }
func (n *CtorDtor) String() string { return render(n) }

// Unnamed is an entity without a source name (<unnamed #N>), or a named local
// entity distinguished by a discriminator (name#N). Discriminator is the
// 1-based display number; zero means none.
type Unnamed struct {
	Name          string
	Discriminator int
}

func (n *Unnamed) Kind() NodeKind { return NodeKindUnnamed }
func (n *Unnamed) String() string { return render(n) }

// LocalName is an entity declared inside a function body.
type LocalName struct {
	Function Node
	Entity   Node
}

func (n *LocalName) Kind() NodeKind { return NodeKindLocalName }
func (n *LocalName) String() string { return render(n) }

// ABITagged is a name carrying [abi:tag] annotations.
type ABITagged struct {
	Name Node
	Tags []string
}

func (n *ABITagged) Kind() NodeKind { return NodeKindABITagged }
func (n *ABITagged) String() string { return render(n) }

// BuiltinKind identifies fundamental types.
type BuiltinKind int

const (
	BuiltinVoid BuiltinKind = iota
	BuiltinWChar
	BuiltinBool
	BuiltinChar
	BuiltinSignedChar
	BuiltinUnsignedChar
	BuiltinShort
	BuiltinUnsignedShort
	BuiltinInt
	BuiltinUnsignedInt
	BuiltinLong
	BuiltinUnsignedLong
	BuiltinLongLong
	BuiltinUnsignedLongLong
	BuiltinInt128
	BuiltinUnsignedInt128
	BuiltinFloat
	BuiltinDouble
	BuiltinLongDouble
	BuiltinFloat128
	BuiltinEllipsis
	BuiltinDecimal32
	BuiltinDecimal64
	BuiltinDecimal128
	BuiltinHalf
	BuiltinChar8
	BuiltinChar16
	BuiltinChar32
	BuiltinNullptr
	BuiltinAuto
	BuiltinDecltypeAuto
	BuiltinVendor
)

// Builtin is a fundamental type. Name is set for vendor extended types.
type Builtin struct {
	Type BuiltinKind
	Name string
}

func (n *Builtin) Kind() NodeKind { return NodeKindBuiltin }
func (n *Builtin) String() string { return render(n) }

// Qualifiers represents CV-qualifiers.
type Qualifiers struct {
	IsConst    bool
	IsVolatile bool
	IsRestrict bool
}

func (q Qualifiers) String() string {
	var parts []string
	if q.IsConst {
		parts = append(parts, "const")
	}
	if q.IsVolatile {
		parts = append(parts, "volatile")
	}
	if q.IsRestrict {
		parts = append(parts, "restrict")
	}
	return strings.Join(parts, " ")
}

func (q Qualifiers) IsEmpty() bool {
	return !q.IsConst && !q.IsVolatile && !q.IsRestrict
}

// RefQualifier for member function reference qualifiers.
type RefQualifier int

const (
	RefQualifierNone RefQualifier = iota
	RefQualifierLValue
	RefQualifierRValue
)

// Qualified is a CV-qualified type.
type Qualified struct {
	Quals Qualifiers
	Inner Node
}

func (n *Qualified) Kind() NodeKind { return NodeKindQualified }
func (n *Qualified) String() string { return render(n) }

// Pointer is a pointer to Inner.
type Pointer struct {
	Inner Node
}

func (n *Pointer) Kind() NodeKind { return NodeKindPointer }
func (n *Pointer) String() string { return render(n) }

// Reference is an lvalue or rvalue reference to Inner.
type Reference struct {
	Inner  Node
	RValue bool
}

func (n *Reference) Kind() NodeKind {
	if n.RValue {
		return NodeKindRvalueRef
	}
	return NodeKindLvalueRef
}

func (n *Reference) String() string { return render(n) }

// Array is an array of Elem. Bound is nil for arrays of unknown bound.
type Array struct {
	Bound Node
	Elem  Node
}

func (n *Array) Kind() NodeKind { return NodeKindArray }
func (n *Array) String() string { return render(n) }

// FunctionType is a function signature. Return is nil when the mangling
// leaves it implicit. Quals and RefQual apply to the implicit object of a
// member function.
type FunctionType struct {
	Return  Node
	Params  []Node
	Quals   Qualifiers
	RefQual RefQualifier
	ExternC bool
}

func (n *FunctionType) Kind() NodeKind { return NodeKindFunctionType }
func (n *FunctionType) String() string { return render(n) }

// PointerToMember is a pointer to a Member of Class.
type PointerToMember struct {
	Class  Node
	Member Node
}

func (n *PointerToMember) Kind() NodeKind { return NodeKindPointerToMember }
func (n *PointerToMember) String() string { return render(n) }

// Literal is a non-type template argument. Text holds the digits (or hex
// payload for floating-point types) without sign. Name is set instead for
// an external-name argument (L_Z...E).
type Literal struct {
	Type     Node
	Text     string
	Negative bool
	Name     Node
}

func (n *Literal) Kind() NodeKind { return NodeKindLiteral }
func (n *Literal) String() string { return render(n) }

// ArgPack is a template argument pack.
type ArgPack struct {
	Args []Node
}

func (n *ArgPack) Kind() NodeKind { return NodeKindArgPack }
func (n *ArgPack) String() string { return render(n) }

// Encoding is a function or data symbol. Signature is nil for data.
type Encoding struct {
	Name      Node
	Signature *FunctionType
}

func (n *Encoding) Kind() NodeKind { return NodeKindEncoding }
func (n *Encoding) String() string { return render(n) }

// SpecialKind identifies ABI-internal symbols.
type SpecialKind int

const (
	SpecialVirtualTable SpecialKind = iota
	SpecialVTT
	SpecialTypeinfo
	SpecialTypeinfoName
	SpecialGuardVariable
	SpecialVirtualThunk
	SpecialNonVirtualThunk
)

// SpecialForm is a virtual table, RTTI structure, guard variable or thunk.
// Offset and VirtualOffset are meaningful for thunks only.
type SpecialForm struct {
	Form          SpecialKind
	Operand       Node
	Offset        int64
	VirtualOffset int64
}

func (n *SpecialForm) Kind() NodeKind { return NodeKindSpecialForm }
func (n *SpecialForm) String() string { return render(n) }

// Clone is a compiler-generated copy of Symbol, such as a .cold split.
type Clone struct {
	Symbol Node
	Suffix string
}

func (n *Clone) Kind() NodeKind { return NodeKindClone }
func (n *Clone) String() string { return render(n) }
