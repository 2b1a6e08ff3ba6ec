package demangle

import (
	"strconv"
	"strings"
)

// render returns the C++ source text of n.
func render(n Node) string {
	return declare(n, "")
}

// declare renders type n around decl, the declarator built up so far by the
// enclosing pointer, reference, array and function nodes. For a plain name
// decl is empty.
func declare(n Node, decl string) string {
	switch n := n.(type) {
	case *Pointer:
		return declare(n.Inner, "*"+nested(n.Inner, decl))
	case *Reference:
		if n.RValue {
			return declare(n.Inner, "&&"+nested(n.Inner, decl))
		}
		return declare(n.Inner, "&"+nested(n.Inner, decl))
	case *Qualified:
		if arr, ok := n.Inner.(*Array); ok {
			// qualifiers on an array apply to its elements
			return declare(&Array{Bound: arr.Bound, Elem: &Qualified{Quals: n.Quals, Inner: arr.Elem}}, decl)
		}
		q := " " + n.Quals.String()
		if startsIdentifier(decl) {
			q += " "
		}
		return declare(n.Inner, q+decl)
	case *Array:
		dims := "["
		if n.Bound != nil {
			dims += render(n.Bound)
		}
		dims += "]"
		if decl != "" && decl[0] != '[' && decl[0] != '(' {
			decl = "(" + strings.TrimLeft(decl, " ") + ")"
		}
		return declare(n.Elem, decl+dims)
	case *FunctionType:
		params := "(" + joinArgs(n.Params) + ")" + qualifierSuffix(n.Quals, n.RefQual)
		inner := strings.TrimLeft(decl, " ")
		if n.Return == nil {
			if inner == "" {
				return params
			}
			return "(" + inner + ")" + params
		}
		if inner == "" {
			return declare(n.Return, " "+params)
		}
		return declare(n.Return, " ("+inner+")"+params)
	case *PointerToMember:
		return declare(n.Member, render(n.Class)+"::*"+nested(n.Member, decl))
	}
	return joinDeclarator(leaf(n), decl)
}

// nested drops the space separating decl from a preceding type when the
// operator in front of it ends up inside the parentheses of a function or
// array declarator. Qualifiers keep their space.
func nested(inner Node, decl string) string {
	switch inner.(type) {
	case *FunctionType, *Array:
	default:
		return decl
	}
	if !strings.HasPrefix(decl, " ") || startsQualifier(decl[1:]) {
		return decl
	}
	return decl[1:]
}

func startsQualifier(s string) bool {
	for _, q := range []string{"const", "volatile", "restrict"} {
		if strings.HasPrefix(s, q) && !startsIdentifier(s[len(q):]) {
			return true
		}
	}
	return false
}

// joinDeclarator appends decl to a type name, separating them only where
// two identifiers would otherwise run together.
func joinDeclarator(s, decl string) string {
	if startsIdentifier(decl) {
		return s + " " + decl
	}
	return s + decl
}

func startsIdentifier(s string) bool {
	if s == "" {
		return false
	}
	c := s[0]
	return isDigit(c) || isLower(c) || (c >= 'A' && c <= 'Z') || c == '_' || c == ':' || c == '<'
}

// leaf renders nodes that have no declarator structure.
func leaf(n Node) string {
	switch n := n.(type) {
	case *Identifier:
		return n.Name
	case *Named:
		parts := make([]string, len(n.Parts))
		for i, part := range n.Parts {
			parts[i] = render(part)
		}
		return strings.Join(parts, "::")
	case *Template:
		return render(n.Base) + "<" + closeAngle(joinArgs(n.Args))
	case *Operator:
		return renderOperator(n)
	case *CtorDtor:
		if n.Destructor {
			return "~" + n.Class
		}
		return n.Class
	case *Unnamed:
		if n.Name == "" {
			return "<unnamed #" + strconv.Itoa(n.Discriminator) + ">"
		}
		if n.Discriminator > 0 {
			return n.Name + "#" + strconv.Itoa(n.Discriminator)
		}
		return n.Name
	case *LocalName:
		return render(n.Function) + "::" + render(n.Entity)
	case *ABITagged:
		var sb strings.Builder
		sb.WriteString(render(n.Name))
		for _, tag := range n.Tags {
			sb.WriteString("[abi:")
			sb.WriteString(tag)
			sb.WriteString("]")
		}
		return sb.String()
	case *Builtin:
		if n.Type == BuiltinVendor {
			return n.Name
		}
		return builtinNames[n.Type]
	case *Literal:
		return renderLiteral(n)
	case *ArgPack:
		return joinArgs(n.Args)
	case *Encoding:
		return renderEncoding(n)
	case *SpecialForm:
		return renderSpecial(n)
	case *Clone:
		return render(n.Symbol) + " [clone " + n.Suffix + "]"
	case nil:
		return ""
	}
	return n.String()
}

// joinArgs renders a parameter or template argument list without the
// surrounding brackets.
func joinArgs(args []Node) string {
	parts := make([]string, len(args))
	for i, arg := range args {
		parts[i] = render(arg)
	}
	return strings.Join(parts, ",")
}

// closeAngle terminates a template argument list, keeping >> apart.
func closeAngle(s string) string {
	if strings.HasSuffix(s, ">") {
		return s + " >"
	}
	return s + ">"
}

func qualifierSuffix(q Qualifiers, ref RefQualifier) string {
	var s string
	if !q.IsEmpty() {
		s = " " + q.String()
	}
	switch ref {
	case RefQualifierLValue:
		s += " &"
	case RefQualifierRValue:
		s += " &&"
	}
	return s
}

func renderOperator(n *Operator) string {
	switch n.Op {
	case OpConversion:
		return "operator " + render(n.Target) + "()"
	case OpLiteral:
		return `operator"" ` + n.Name
	case OpVendor:
		return "operator " + n.Name
	}
	return "operator " + operatorSymbols[n.Op]
}

func renderLiteral(n *Literal) string {
	if n.Name != nil {
		return render(n.Name)
	}

	sign := ""
	if n.Negative {
		sign = "-"
	}

	b, ok := n.Type.(*Builtin)
	switch {
	case n.Type == nil:
		return sign + n.Text
	case ok && b.Type == BuiltinBool && !n.Negative && (n.Text == "0" || n.Text == "1"):
		if n.Text == "1" {
			return "true"
		}
		return "false"
	case ok && b.Type == BuiltinNullptr:
		return "nullptr"
	case ok && floatingBuiltins[b.Type]:
		return "(" + render(b) + ")" + sign + "[" + n.Text + "]"
	}
	if ok {
		if suffix, found := literalSuffixes[b.Type]; found {
			return sign + n.Text + suffix
		}
	}
	return "(" + render(n.Type) + ")" + sign + n.Text
}

// renderEncoding prints a function as
// [return-type ]name(params)[ cv-qualifiers][ ref-qualifier].
func renderEncoding(n *Encoding) string {
	name := render(n.Name)
	sig := n.Signature
	if sig == nil {
		return name
	}

	params := "(" + joinArgs(sig.Params) + ")"
	quals := qualifierSuffix(sig.Quals, sig.RefQual)

	if op, ok := lastComponent(n.Name).(*Operator); ok && op.Op == OpConversion {
		// the operator name already carries an empty parameter list
		return name + quals + params
	}
	if sig.Return != nil {
		return declare(sig.Return, " "+name+params+quals)
	}
	return name + params + quals
}

func renderSpecial(n *SpecialForm) string {
	target := render(n.Operand)
	switch n.Form {
	case SpecialNonVirtualThunk:
		return "<non-virtual base override at offset " + signedHex(n.Offset) + " for " + target + ">"
	case SpecialVirtualThunk:
		return "<virtual base override at offset " + signedHex(n.Offset) +
			", vcall offset " + signedHex(n.VirtualOffset) + " for " + target + ">"
	}
	return "<" + specialNames[n.Form] + " for " + target + ">"
}

func signedHex(v int64) string {
	if v < 0 {
		return "-0x" + strconv.FormatUint(uint64(-v), 16)
	}
	return "+0x" + strconv.FormatInt(v, 16)
}
