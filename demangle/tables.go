package demangle

// Fixed ABI vocabularies. The parser dispatches on these tables rather than
// on branch chains so each mapping can be checked against the ABI document.

// builtinCodes maps one-letter <builtin-type> codes.
var builtinCodes = map[byte]BuiltinKind{
	'v': BuiltinVoid,
	'w': BuiltinWChar,
	'b': BuiltinBool,
	'c': BuiltinChar,
	'a': BuiltinSignedChar,
	'h': BuiltinUnsignedChar,
	's': BuiltinShort,
	't': BuiltinUnsignedShort,
	'i': BuiltinInt,
	'j': BuiltinUnsignedInt,
	'l': BuiltinLong,
	'm': BuiltinUnsignedLong,
	'x': BuiltinLongLong,
	'y': BuiltinUnsignedLongLong,
	'n': BuiltinInt128,
	'o': BuiltinUnsignedInt128,
	'f': BuiltinFloat,
	'd': BuiltinDouble,
	'e': BuiltinLongDouble,
	'g': BuiltinFloat128,
	'z': BuiltinEllipsis,
}

// extendedBuiltinCodes maps the second letter of D-prefixed builtins.
var extendedBuiltinCodes = map[byte]BuiltinKind{
	'f': BuiltinDecimal32,
	'd': BuiltinDecimal64,
	'e': BuiltinDecimal128,
	'h': BuiltinHalf,
	'u': BuiltinChar8,
	's': BuiltinChar16,
	'i': BuiltinChar32,
	'n': BuiltinNullptr,
	'a': BuiltinAuto,
	'c': BuiltinDecltypeAuto,
}

var builtinNames = map[BuiltinKind]string{
	BuiltinVoid:             "void",
	BuiltinWChar:            "wchar_t",
	BuiltinBool:             "bool",
	BuiltinChar:             "char",
	BuiltinSignedChar:       "signed char",
	BuiltinUnsignedChar:     "unsigned char",
	BuiltinShort:            "short",
	BuiltinUnsignedShort:    "unsigned short",
	BuiltinInt:              "int",
	BuiltinUnsignedInt:      "unsigned int",
	BuiltinLong:             "long",
	BuiltinUnsignedLong:     "unsigned long",
	BuiltinLongLong:         "long long",
	BuiltinUnsignedLongLong: "unsigned long long",
	BuiltinInt128:           "__int128",
	BuiltinUnsignedInt128:   "unsigned __int128",
	BuiltinFloat:            "float",
	BuiltinDouble:           "double",
	BuiltinLongDouble:       "long double",
	BuiltinFloat128:         "__float128",
	BuiltinEllipsis:         "...",
	BuiltinDecimal32:        "decimal32",
	BuiltinDecimal64:        "decimal64",
	BuiltinDecimal128:       "decimal128",
	BuiltinHalf:             "half",
	BuiltinChar8:            "char8_t",
	BuiltinChar16:           "char16_t",
	BuiltinChar32:           "char32_t",
	BuiltinNullptr:          "decltype(nullptr)",
	BuiltinAuto:             "auto",
	BuiltinDecltypeAuto:     "decltype(auto)",
}

// literalSuffixes gives the integer-literal suffix for builtin types that
// render as a bare number rather than a cast.
var literalSuffixes = map[BuiltinKind]string{
	BuiltinInt:              "",
	BuiltinUnsignedInt:      "U",
	BuiltinLong:             "L",
	BuiltinUnsignedLong:     "UL",
	BuiltinLongLong:         "LL",
	BuiltinUnsignedLongLong: "ULL",
}

var floatingBuiltins = map[BuiltinKind]bool{
	BuiltinFloat:      true,
	BuiltinDouble:     true,
	BuiltinLongDouble: true,
	BuiltinFloat128:   true,
	BuiltinHalf:       true,
}

// operatorCodes maps two-letter <operator-name> codes. cv, li and v<digit>
// carry operands and are handled by the parser directly.
var operatorCodes = map[string]OperatorKind{
	"nw": OpNew,
	"na": OpNewArray,
	"dl": OpDelete,
	"da": OpDeleteArray,
	"ps": OpUnaryPlus,
	"ng": OpUnaryMinus,
	"ad": OpAddressOf,
	"de": OpDereference,
	"co": OpComplement,
	"pl": OpPlus,
	"mi": OpMinus,
	"ml": OpMultiply,
	"dv": OpDivide,
	"rm": OpModulo,
	"an": OpAnd,
	"or": OpOr,
	"eo": OpXor,
	"aS": OpAssign,
	"pL": OpPlusAssign,
	"mI": OpMinusAssign,
	"mL": OpMultiplyAssign,
	"dV": OpDivideAssign,
	"rM": OpModuloAssign,
	"aN": OpAndAssign,
	"oR": OpOrAssign,
	"eO": OpXorAssign,
	"ls": OpLeftShift,
	"rs": OpRightShift,
	"lS": OpLeftShiftAssign,
	"rS": OpRightShiftAssign,
	"eq": OpEqual,
	"ne": OpNotEqual,
	"lt": OpLess,
	"gt": OpGreater,
	"le": OpLessEqual,
	"ge": OpGreaterEqual,
	"ss": OpSpaceship,
	"nt": OpLogicalNot,
	"aa": OpLogicalAnd,
	"oo": OpLogicalOr,
	"pp": OpIncrement,
	"mm": OpDecrement,
	"cm": OpComma,
	"pm": OpArrowStar,
	"pt": OpArrow,
	"cl": OpCall,
	"ix": OpSubscript,
	"qu": OpConditional,
	"aw": OpCoAwait,
}

var operatorSymbols = map[OperatorKind]string{
	OpNew:              "new",
	OpNewArray:         "new[]",
	OpDelete:           "delete",
	OpDeleteArray:      "delete[]",
	OpUnaryPlus:        "+",
	OpUnaryMinus:       "-",
	OpAddressOf:        "&",
	OpDereference:      "*",
	OpComplement:       "~",
	OpPlus:             "+",
	OpMinus:            "-",
	OpMultiply:         "*",
	OpDivide:           "/",
	OpModulo:           "%",
	OpAnd:              "&",
	OpOr:               "|",
	OpXor:              "^",
	OpAssign:           "=",
	OpPlusAssign:       "+=",
	OpMinusAssign:      "-=",
	OpMultiplyAssign:   "*=",
	OpDivideAssign:     "/=",
	OpModuloAssign:     "%=",
	OpAndAssign:        "&=",
	OpOrAssign:         "|=",
	OpXorAssign:        "^=",
	OpLeftShift:        "<<",
	OpRightShift:       ">>",
	OpLeftShiftAssign:  "<<=",
	OpRightShiftAssign: ">>=",
	OpEqual:            "==",
	OpNotEqual:         "!=",
	OpLess:             "<",
	OpGreater:          ">",
	OpLessEqual:        "<=",
	OpGreaterEqual:     ">=",
	OpSpaceship:        "<=>",
	OpLogicalNot:       "!",
	OpLogicalAnd:       "&&",
	OpLogicalOr:        "||",
	OpIncrement:        "++",
	OpDecrement:        "--",
	OpComma:            ",",
	OpArrowStar:        "->*",
	OpArrow:            "->",
	OpCall:             "()",
	OpSubscript:        "[]",
	OpConditional:      "?",
	OpCoAwait:          "co_await",
}

// specialTypeCodes maps T-prefixed special names whose operand is a <type>.
var specialTypeCodes = map[byte]SpecialKind{
	'V': SpecialVirtualTable,
	'T': SpecialVTT,
	'I': SpecialTypeinfo,
	'S': SpecialTypeinfoName,
}

var specialNames = map[SpecialKind]string{
	SpecialVirtualTable:  "virtual table",
	SpecialVTT:           "VTT structure",
	SpecialTypeinfo:      "typeinfo structure",
	SpecialTypeinfoName:  "typeinfo name",
	SpecialGuardVariable: "one-time-init guard",
}

// cvQualifierCodes lists the CV-qualifier letters in their mangled order.
var cvQualifierCodes = map[byte]func(*Qualifiers){
	'r': func(q *Qualifiers) { q.IsRestrict = true },
	'V': func(q *Qualifiers) { q.IsVolatile = true },
	'K': func(q *Qualifiers) { q.IsConst = true },
}

// anonymousNamespacePrefix starts the source name GCC gives to anonymous
// namespaces.
const anonymousNamespacePrefix = "_GLOBAL_"
