package demangle

import (
	"errors"
	"fmt"
)

// parser holds the state of one decode call.
type parser struct {
	cur  *cursor
	subs substitutionTable

	// Template arguments that T_ parameters resolve against: the last
	// argument list parsed as part of the enclosing encoding's name.
	templateArgs []Node
	captureArgs  bool
}

type nameResult struct {
	node  Node
	quals Qualifiers
	ref   RefQualifier
}

func newParser(input string, offset int) *parser {
	return &parser{cur: newCursor(input, offset)}
}

// locate fills in the position of errors raised away from the cursor.
func (p *parser) locate(err error) error {
	var de *Error
	if errors.As(err, &de) && de.Input == "" {
		de.Input = p.cur.input
		de.Offset = p.cur.offset
	}
	return err
}

func (p *parser) fail(reason error, format string, args ...any) error {
	return p.cur.fail(reason, fmt.Sprintf(format, args...))
}

// parseMangledName parses an <encoding> plus clone suffixes and requires the
// whole input to be consumed.
func (p *parser) parseMangledName() (Node, error) {
	n, err := p.parseEncoding()
	if err != nil {
		return nil, err
	}
	for p.cur.peek() == '.' {
		n, err = p.parseCloneSuffix(n)
		if err != nil {
			return nil, err
		}
	}
	if !p.cur.atEnd() {
		return nil, p.fail(ErrUnexpectedCharacter, "trailing characters %q", p.cur.input[p.cur.offset:])
	}
	return n, nil
}

// parseTypeSymbol parses a single <type> and requires the whole input to be
// consumed.
func (p *parser) parseTypeSymbol() (Node, error) {
	n, err := p.parseType()
	if err != nil {
		return nil, err
	}
	if !p.cur.atEnd() {
		return nil, p.fail(ErrUnexpectedCharacter, "trailing characters %q", p.cur.input[p.cur.offset:])
	}
	return n, nil
}

func (p *parser) parseCloneSuffix(sym Node) (Node, error) {
	start := p.cur.Offset()
	p.cur.skip('.')
	c := p.cur.peek()
	if !isLower(c) && c != '_' && !isDigit(c) {
		return nil, p.fail(ErrUnexpectedCharacter, "bad clone suffix")
	}
	for isLower(p.cur.peek()) || p.cur.peek() == '_' {
		p.cur.offset++
	}
	for p.cur.peek() == '.' && isDigit(p.cur.peekAt(1)) || isDigit(p.cur.peek()) {
		p.cur.skip('.')
		for isDigit(p.cur.peek()) {
			p.cur.offset++
		}
	}
	return &Clone{Symbol: sym, Suffix: p.cur.input[start:p.cur.offset]}, nil
}

func (p *parser) atEncodingEnd() bool {
	c := p.cur.peek()
	return p.cur.atEnd() || c == 'E' || c == '.'
}

// parseEncoding parses a function, data or special name.
func (p *parser) parseEncoding() (Node, error) {
	switch p.cur.peek() {
	case 'T':
		return p.parseSpecialName()
	case 'G':
		return p.parseGuardVariable()
	}

	prev := p.captureArgs
	defer func() { p.captureArgs = prev }()

	sourceNamed := isDigit(p.cur.peek())
	p.captureArgs = true
	name, err := p.parseName()
	p.captureArgs = false
	if err != nil {
		return nil, err
	}

	if p.atEncodingEnd() && !isFunctionName(name.node) {
		return &Encoding{Name: name.node}, nil
	}

	nameEnd := p.cur.Offset()
	sig, err := p.parseBareFunctionType(hasExplicitReturn(name.node))
	if err != nil {
		if sourceNamed {
			shortLength(err, nameEnd)
		}
		return nil, err
	}
	sig.Quals = name.quals
	sig.RefQual = name.ref
	return &Encoding{Name: name.node, Signature: sig}, nil
}

// shortLength reports a parameter list failure as ErrMalformed when everything
// from the end of the name through the failing character reads as identifier
// text, which is what a length prefix shorter than the name looks like.
func shortLength(err error, nameEnd int) {
	var de *Error
	if !errors.As(err, &de) || (de.Err != ErrUnexpectedCharacter && de.Err != ErrUnknownCode) {
		return
	}
	if de.Offset < nameEnd || de.Offset >= len(de.Input) {
		return
	}
	for i := nameEnd; i <= de.Offset; i++ {
		if c := de.Input[i]; !isLower(c) && !isDigit(c) && c != '_' {
			return
		}
	}
	de.Detail = "length prefix shorter than the name: " + de.Detail
	de.Err = ErrMalformed
}

// parseBareFunctionType parses the parameter types that follow a function
// name, preceded by the return type for template functions.
func (p *parser) parseBareFunctionType(withReturn bool) (*FunctionType, error) {
	sig := &FunctionType{}
	if withReturn {
		ret, err := p.parseType()
		if err != nil {
			return nil, err
		}
		sig.Return = ret
	}

	var params []Node
	for !p.atEncodingEnd() {
		param, err := p.parseType()
		if err != nil {
			return nil, err
		}
		params = append(params, param)
	}
	params, err := p.normalizeParams(params)
	if err != nil {
		return nil, err
	}
	sig.Params = params
	return sig, nil
}

// normalizeParams turns a lone void into an empty list and rejects void
// anywhere else.
func (p *parser) normalizeParams(params []Node) ([]Node, error) {
	if len(params) == 0 {
		if p.cur.atEnd() {
			return nil, p.fail(ErrTruncated, "expected parameter types")
		}
		return nil, p.fail(ErrUnexpectedCharacter, "empty parameter list")
	}
	for _, param := range params {
		if b, ok := param.(*Builtin); ok && b.Type == BuiltinVoid {
			if len(params) == 1 {
				return nil, nil
			}
			return nil, p.fail(ErrMalformed, "void in a parameter list of %d types", len(params))
		}
	}
	return params, nil
}

// parseSpecialName parses T-prefixed virtual tables, RTTI and thunks.
func (p *parser) parseSpecialName() (Node, error) {
	if err := p.cur.expect('T'); err != nil {
		return nil, err
	}
	start := p.cur.Offset()
	c, err := p.cur.next()
	if err != nil {
		return nil, err
	}

	if kind, ok := specialTypeCodes[c]; ok {
		typ, err := p.parseType()
		if err != nil {
			return nil, err
		}
		return &SpecialForm{Form: kind, Operand: typ}, nil
	}

	switch c {
	case 'h':
		off, err := p.parseCallOffsetNumber()
		if err != nil {
			return nil, err
		}
		target, err := p.parseEncoding()
		if err != nil {
			return nil, err
		}
		return &SpecialForm{Form: SpecialNonVirtualThunk, Operand: target, Offset: off}, nil
	case 'v':
		off, err := p.parseCallOffsetNumber()
		if err != nil {
			return nil, err
		}
		voff, err := p.parseCallOffsetNumber()
		if err != nil {
			return nil, err
		}
		target, err := p.parseEncoding()
		if err != nil {
			return nil, err
		}
		return &SpecialForm{Form: SpecialVirtualThunk, Operand: target, Offset: off, VirtualOffset: voff}, nil
	}

	p.cur.offset = start
	return nil, p.fail(ErrUnknownCode, "unknown special name T%c", c)
}

func (p *parser) parseCallOffsetNumber() (int64, error) {
	n, err := p.cur.takeSignedNumber()
	if err != nil {
		return 0, err
	}
	if err := p.cur.expect('_'); err != nil {
		return 0, err
	}
	return n, nil
}

func (p *parser) parseGuardVariable() (Node, error) {
	if err := p.cur.expect('G'); err != nil {
		return nil, err
	}
	if _, err := p.cur.takeToken("V"); err != nil {
		return nil, err
	}
	name, err := p.parseName()
	if err != nil {
		return nil, err
	}
	return &SpecialForm{Form: SpecialGuardVariable, Operand: name.node}, nil
}

// parseName parses a <name>.
func (p *parser) parseName() (nameResult, error) {
	switch c := p.cur.peek(); {
	case c == 'N':
		return p.parseNestedName()
	case c == 'Z':
		return p.parseLocalName()
	case c == 'S' && p.cur.peekAt(1) != 't':
		n, err := p.parseSubstitution()
		if err != nil {
			return nameResult{}, err
		}
		if p.cur.peek() == 'I' {
			args, err := p.parseTemplateArgs()
			if err != nil {
				return nameResult{}, err
			}
			n = &Template{Base: n, Args: args}
		}
		return nameResult{node: n}, nil
	}

	n, err := p.parseUnscopedName()
	if err != nil {
		return nameResult{}, err
	}
	if p.cur.peek() == 'I' {
		p.subs.record(n)
		args, err := p.parseTemplateArgs()
		if err != nil {
			return nameResult{}, err
		}
		n = &Template{Base: n, Args: args}
	}
	return nameResult{node: n}, nil
}

func (p *parser) parseUnscopedName() (Node, error) {
	if p.cur.hasPrefix("St") {
		p.cur.offset += 2
		uq, err := p.parseUnqualifiedName(nil)
		if err != nil {
			return nil, err
		}
		return &Named{Parts: []Node{stdNamespace, uq}}, nil
	}
	return p.parseUnqualifiedName(nil)
}

// parseNestedName parses N [<CV-qualifiers>] [<ref-qualifier>] <prefix> E.
// Each completed prefix is recorded before the next component is read.
func (p *parser) parseNestedName() (nameResult, error) {
	var res nameResult
	if err := p.cur.expect('N'); err != nil {
		return res, err
	}
	res.quals = p.parseCVQualifiers()
	switch p.cur.peek() {
	case 'R':
		p.cur.offset++
		res.ref = RefQualifierLValue
	case 'O':
		p.cur.offset++
		res.ref = RefQualifierRValue
	}

	var cur Node
	for {
		if p.cur.atEnd() {
			return res, p.fail(ErrTruncated, "unterminated nested name")
		}
		c := p.cur.peek()
		if c == 'E' {
			p.cur.offset++
			break
		}

		switch {
		case c == 'S' && cur == nil:
			if p.cur.hasPrefix("St") {
				p.cur.offset += 2
				cur = &Named{Parts: []Node{stdNamespace}}
				continue
			}
			n, err := p.parseSubstitution()
			if err != nil {
				return res, err
			}
			cur = n
			continue
		case c == 'I':
			if cur == nil {
				return res, p.fail(ErrUnexpectedCharacter, "template arguments without a template name")
			}
			args, err := p.parseTemplateArgs()
			if err != nil {
				return res, err
			}
			cur = &Template{Base: cur, Args: args}
		case c == 'T' && cur == nil:
			n, err := p.parseTemplateParam()
			if err != nil {
				return res, err
			}
			cur = n
		default:
			comp, err := p.parseUnqualifiedName(cur)
			if err != nil {
				return res, err
			}
			cur = extendName(cur, comp)
		}

		if p.cur.peek() != 'E' {
			p.subs.record(cur)
		}
	}

	if cur == nil {
		return res, p.fail(ErrMalformed, "empty nested name")
	}
	res.node = cur
	return res, nil
}

// extendName returns scope::comp without modifying scope.
func extendName(scope, comp Node) Node {
	switch s := scope.(type) {
	case nil:
		return &Named{Parts: []Node{comp}}
	case *Named:
		parts := make([]Node, 0, len(s.Parts)+1)
		parts = append(parts, s.Parts...)
		return &Named{Parts: append(parts, comp)}
	default:
		return &Named{Parts: []Node{scope, comp}}
	}
}

// parseLocalName parses Z <encoding> E <entity> [<discriminator>].
func (p *parser) parseLocalName() (nameResult, error) {
	var res nameResult
	if err := p.cur.expect('Z'); err != nil {
		return res, err
	}
	fn, err := p.parseEncoding()
	if err != nil {
		return res, err
	}
	if err := p.cur.expect('E'); err != nil {
		return res, err
	}

	var entity Node
	if p.cur.skip('s') {
		entity = &Identifier{Name: "string literal"}
	} else {
		if p.cur.peek() == 'd' {
			return res, p.fail(ErrUnknownCode, "default argument scopes are not supported")
		}
		inner, err := p.parseName()
		if err != nil {
			return res, err
		}
		entity = inner.node
		res.quals = inner.quals
		res.ref = inner.ref
	}

	if p.cur.peek() == '_' {
		d, err := p.parseDiscriminator()
		if err != nil {
			return res, err
		}
		entity = withDiscriminator(entity, d+1)
	}

	res.node = &LocalName{Function: fn, Entity: entity}
	return res, nil
}

// parseDiscriminator parses _ <digit> or __ <number> _.
func (p *parser) parseDiscriminator() (int, error) {
	if err := p.cur.expect('_'); err != nil {
		return 0, err
	}
	if p.cur.skip('_') {
		n, err := p.cur.takeNumber()
		if err != nil {
			return 0, err
		}
		if err := p.cur.expect('_'); err != nil {
			return 0, err
		}
		return n, nil
	}
	c, err := p.cur.next()
	if err != nil {
		return 0, err
	}
	if !isDigit(c) {
		p.cur.offset--
		return 0, p.fail(ErrUnexpectedCharacter, "bad discriminator %q", c)
	}
	return int(c - '0'), nil
}

func withDiscriminator(entity Node, display int) Node {
	switch e := entity.(type) {
	case *Identifier:
		return &Unnamed{Name: e.Name, Discriminator: display}
	case *Named:
		if len(e.Parts) == 0 {
			return entity
		}
		parts := make([]Node, len(e.Parts))
		copy(parts, e.Parts)
		parts[len(parts)-1] = withDiscriminator(parts[len(parts)-1], display)
		return &Named{Parts: parts}
	}
	return entity
}

// parseUnqualifiedName parses one name component. scope is the enclosing
// prefix, needed to name constructors and destructors.
func (p *parser) parseUnqualifiedName(scope Node) (Node, error) {
	var n Node
	var err error

	c := p.cur.peek()
	switch {
	case p.cur.atEnd():
		return nil, p.fail(ErrTruncated, "expected a name")
	case isDigit(c):
		n, err = p.parseSourceName()
	case c == 'L':
		// internal linkage marker
		p.cur.offset++
		n, err = p.parseSourceName()
	case c == 'U':
		n, err = p.parseUnnamedTypeName()
	case c == 'C' || c == 'D':
		n, err = p.parseCtorDtorName(scope)
	case isLower(c):
		n, err = p.parseOperatorName()
	default:
		return nil, p.fail(ErrUnexpectedCharacter, "%q does not start a name", c)
	}
	if err != nil {
		return nil, err
	}

	var tags []string
	for p.cur.skip('B') {
		tag, err := p.parseSourceName()
		if err != nil {
			return nil, err
		}
		tags = append(tags, tag.(*Identifier).Name)
	}
	if len(tags) > 0 {
		n = &ABITagged{Name: n, Tags: tags}
	}
	return n, nil
}

// parseSourceName parses <length> <identifier>.
func (p *parser) parseSourceName() (Node, error) {
	start := p.cur.Offset()
	n, err := p.cur.takeNumber()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		p.cur.offset = start
		return nil, p.fail(ErrMalformed, "zero-length identifier")
	}
	name, err := p.cur.take(n)
	if err != nil {
		return nil, err
	}
	if isAnonymousNamespace(name) {
		return &Identifier{Name: "(anonymous namespace)"}, nil
	}
	return &Identifier{Name: name}, nil
}

func isAnonymousNamespace(name string) bool {
	if len(name) < len(anonymousNamespacePrefix)+2 || name[:len(anonymousNamespacePrefix)] != anonymousNamespacePrefix {
		return false
	}
	sep := name[len(anonymousNamespacePrefix)]
	return (sep == '.' || sep == '_' || sep == '$') && name[len(anonymousNamespacePrefix)+1] == 'N'
}

// parseUnnamedTypeName parses Ut [<number>] _.
func (p *parser) parseUnnamedTypeName() (Node, error) {
	if !p.cur.hasPrefix("Ut") {
		if p.cur.hasPrefix("Ul") {
			return nil, p.fail(ErrUnknownCode, "closure types are not supported")
		}
		return nil, p.fail(ErrUnknownCode, "unknown unnamed name %q", p.cur.peekN(2))
	}
	p.cur.offset += 2
	n := 0
	if isDigit(p.cur.peek()) {
		v, err := p.cur.takeNumber()
		if err != nil {
			return nil, err
		}
		n = v
	}
	if err := p.cur.expect('_'); err != nil {
		return nil, err
	}
	return &Unnamed{Discriminator: n + 1}, nil
}

func (p *parser) parseCtorDtorName(scope Node) (Node, error) {
	code := p.cur.peekN(2)
	if len(code) < 2 {
		return nil, p.fail(ErrTruncated, "expected constructor or destructor code")
	}
	var dtor bool
	switch {
	case code[0] == 'C' && code[1] >= '1' && code[1] <= '3':
	case code[0] == 'D' && code[1] >= '0' && code[1] <= '2':
		dtor = true
	default:
		return nil, p.fail(ErrUnknownCode, "unknown constructor or destructor code %q", code)
	}
	if scope == nil {
		return nil, p.fail(ErrMalformed, "constructor or destructor outside a class")
	}
	p.cur.offset += 2
	return &CtorDtor{Class: className(scope), Destructor: dtor, Variant: code[1]}, nil
}

// className returns the unqualified, unparameterized name of a class scope.
func className(n Node) string {
	switch n := n.(type) {
	case *Named:
		if len(n.Parts) > 0 {
			return className(n.Parts[len(n.Parts)-1])
		}
	case *Template:
		return className(n.Base)
	case *ABITagged:
		return className(n.Name)
	case *Identifier:
		return n.Name
	}
	return render(n)
}

func (p *parser) parseOperatorName() (Node, error) {
	code := p.cur.peekN(2)
	if len(code) < 2 {
		return nil, p.fail(ErrTruncated, "expected operator code")
	}

	switch {
	case code == "cv":
		p.cur.offset += 2
		target, err := p.parseType()
		if err != nil {
			return nil, err
		}
		return &Operator{Op: OpConversion, Target: target}, nil
	case code == "li":
		p.cur.offset += 2
		name, err := p.parseSourceName()
		if err != nil {
			return nil, err
		}
		return &Operator{Op: OpLiteral, Name: name.(*Identifier).Name}, nil
	case code[0] == 'v' && isDigit(code[1]):
		p.cur.offset += 2
		name, err := p.parseSourceName()
		if err != nil {
			return nil, err
		}
		return &Operator{Op: OpVendor, Name: name.(*Identifier).Name}, nil
	}

	op, ok := operatorCodes[code]
	if !ok {
		return nil, p.fail(ErrUnknownCode, "unknown operator code %q", code)
	}
	p.cur.offset += 2
	return &Operator{Op: op}, nil
}

func (p *parser) parseCVQualifiers() Qualifiers {
	var q Qualifiers
	for {
		set, ok := cvQualifierCodes[p.cur.peek()]
		if !ok {
			return q
		}
		set(&q)
		p.cur.offset++
	}
}

// parseSubstitution parses S_, S<seq-id>_ or a two-letter std abbreviation.
func (p *parser) parseSubstitution() (Node, error) {
	if err := p.cur.expect('S'); err != nil {
		return nil, err
	}
	c := p.cur.peek()
	switch {
	case p.cur.atEnd():
		return nil, p.fail(ErrTruncated, "expected substitution")
	case isLower(c):
		n, err := p.subs.resolveStd(c)
		if err != nil {
			return nil, p.locate(err)
		}
		p.cur.offset++
		return n, nil
	case c == '_' || isDigit(c) || (c >= 'A' && c <= 'Z'):
		start := p.cur.Offset()
		idx, err := p.cur.takeSeqID()
		if err != nil {
			return nil, err
		}
		n, err := p.subs.resolve(idx)
		if err != nil {
			p.cur.offset = start
			return nil, p.locate(err)
		}
		return n, nil
	}
	return nil, p.fail(ErrUnexpectedCharacter, "%q does not start a substitution", c)
}

// parseTemplateParam parses T_ or T<number>_.
func (p *parser) parseTemplateParam() (Node, error) {
	if err := p.cur.expect('T'); err != nil {
		return nil, err
	}
	start := p.cur.Offset()
	idx, err := p.cur.takeSeqID()
	if err != nil {
		return nil, err
	}
	if idx >= len(p.templateArgs) {
		p.cur.offset = start
		return nil, p.fail(ErrInvalidSubstitution, "template parameter %d of %d", idx, len(p.templateArgs))
	}
	return p.templateArgs[idx], nil
}

// parseTemplateArgs parses I <template-arg>+ E.
func (p *parser) parseTemplateArgs() ([]Node, error) {
	if err := p.cur.expect('I'); err != nil {
		return nil, err
	}

	capture := p.captureArgs
	p.captureArgs = false
	defer func() { p.captureArgs = capture }()

	var args []Node
	for !p.cur.skip('E') {
		arg, err := p.parseTemplateArg()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
	}
	if len(args) == 0 {
		return nil, p.fail(ErrMalformed, "empty template argument list")
	}
	if capture {
		p.templateArgs = args
	}
	return args, nil
}

func (p *parser) parseTemplateArg() (Node, error) {
	switch p.cur.peek() {
	case 'L':
		return p.parseExprPrimary()
	case 'X':
		return nil, p.fail(ErrUnknownCode, "expression template arguments are not supported")
	case 'J':
		p.cur.offset++
		var args []Node
		for !p.cur.skip('E') {
			arg, err := p.parseTemplateArg()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
		}
		return &ArgPack{Args: args}, nil
	}
	return p.parseType()
}

// parseExprPrimary parses L <type> [n] <value> E and L _Z <encoding> E.
func (p *parser) parseExprPrimary() (Node, error) {
	if err := p.cur.expect('L'); err != nil {
		return nil, err
	}
	if p.cur.hasPrefix("_Z") {
		p.cur.offset += 2
		enc, err := p.parseEncoding()
		if err != nil {
			return nil, err
		}
		if err := p.cur.expect('E'); err != nil {
			return nil, err
		}
		return &Literal{Name: enc}, nil
	}

	typ, err := p.parseType()
	if err != nil {
		return nil, err
	}
	floating := false
	if b, ok := typ.(*Builtin); ok {
		floating = floatingBuiltins[b.Type]
	}

	lit := &Literal{Type: typ, Negative: p.cur.skip('n')}
	start := p.cur.Offset()
	for {
		c := p.cur.peek()
		if isDigit(c) || (floating && c >= 'a' && c <= 'f') {
			p.cur.offset++
			continue
		}
		break
	}
	lit.Text = p.cur.input[start:p.cur.offset]

	if lit.Text == "" {
		if b, ok := typ.(*Builtin); !ok || b.Type != BuiltinNullptr {
			if p.cur.atEnd() {
				return nil, p.fail(ErrTruncated, "expected literal value")
			}
			return nil, p.fail(ErrUnexpectedCharacter, "expected literal value, found %q", p.cur.peek())
		}
	}
	if err := p.cur.expect('E'); err != nil {
		return nil, err
	}
	return lit, nil
}

// parseType parses a <type>. Everything except builtins and bare
// substitution references is recorded once complete.
func (p *parser) parseType() (Node, error) {
	capture := p.captureArgs
	p.captureArgs = false
	defer func() { p.captureArgs = capture }()

	if p.cur.atEnd() {
		return nil, p.fail(ErrTruncated, "expected a type")
	}

	c := p.cur.peek()
	if kind, ok := builtinCodes[c]; ok {
		p.cur.offset++
		return &Builtin{Type: kind}, nil
	}

	var n Node
	var err error

	switch {
	case c == 'u':
		p.cur.offset++
		var name Node
		name, err = p.parseSourceName()
		if err == nil {
			n = &Builtin{Type: BuiltinVendor, Name: name.(*Identifier).Name}
		}
	case c == 'D':
		if kind, ok := extendedBuiltinCodes[p.cur.peekAt(1)]; ok {
			p.cur.offset += 2
			return &Builtin{Type: kind}, nil
		}
		return nil, p.fail(ErrUnknownCode, "unsupported type code %q", p.cur.peekN(2))
	case c == 'r' || c == 'V' || c == 'K':
		return p.parseQualifiedType()
	case c == 'P':
		p.cur.offset++
		var inner Node
		if inner, err = p.parseType(); err == nil {
			n = &Pointer{Inner: inner}
		}
	case c == 'R' || c == 'O':
		p.cur.offset++
		var inner Node
		if inner, err = p.parseType(); err == nil {
			n = &Reference{Inner: inner, RValue: c == 'O'}
		}
	case c == 'A':
		n, err = p.parseArrayType()
	case c == 'F':
		n, err = p.parseFunctionType()
	case c == 'M':
		n, err = p.parsePointerToMemberType()
	case c == 'T':
		switch p.cur.peekAt(1) {
		case 's', 'u', 'e':
			p.cur.offset += 2
			var name nameResult
			if name, err = p.parseName(); err == nil {
				n = name.node
			}
		default:
			if n, err = p.parseTemplateParam(); err == nil && p.cur.peek() == 'I' {
				p.subs.record(n)
				var args []Node
				if args, err = p.parseTemplateArgs(); err == nil {
					n = &Template{Base: n, Args: args}
				}
			}
		}
	case c == 'S' && p.cur.peekAt(1) != 't':
		if n, err = p.parseSubstitution(); err != nil {
			return nil, err
		}
		if p.cur.peek() != 'I' {
			return n, nil
		}
		var args []Node
		if args, err = p.parseTemplateArgs(); err == nil {
			n = &Template{Base: n, Args: args}
		}
	case c == 'N' || c == 'Z' || c == 'S' || isDigit(c):
		var name nameResult
		if name, err = p.parseName(); err == nil {
			n = name.node
		}
	case c >= 'A' && c <= 'Z' || isLower(c):
		return nil, p.fail(ErrUnknownCode, "unsupported type code %q", c)
	default:
		return nil, p.fail(ErrUnexpectedCharacter, "%q does not start a type", c)
	}

	if err != nil {
		return nil, err
	}
	p.subs.record(n)
	return n, nil
}

// parseQualifiedType parses <CV-qualifiers> <type>. Qualifiers in front of a
// function type belong to its implicit object parameter and are folded into
// the function type instead of wrapping it.
func (p *parser) parseQualifiedType() (Node, error) {
	q := p.parseCVQualifiers()

	if p.cur.peek() == 'F' {
		fn, err := p.parseFunctionType()
		if err != nil {
			return nil, err
		}
		fn.Quals = q
		p.subs.record(fn)
		return fn, nil
	}

	inner, err := p.parseType()
	if err != nil {
		return nil, err
	}
	n := &Qualified{Quals: q, Inner: inner}
	p.subs.record(n)
	return n, nil
}

// parseFunctionType parses F [Y] <return> <params> [<ref-qualifier>] E.
// The result is not recorded; callers do that.
func (p *parser) parseFunctionType() (*FunctionType, error) {
	if err := p.cur.expect('F'); err != nil {
		return nil, err
	}
	fn := &FunctionType{ExternC: p.cur.skip('Y')}

	ret, err := p.parseType()
	if err != nil {
		return nil, err
	}
	fn.Return = ret

	var params []Node
	for {
		if p.cur.atEnd() {
			return nil, p.fail(ErrTruncated, "unterminated function type")
		}
		if p.cur.skip('E') {
			break
		}
		if p.cur.hasPrefix("RE") || p.cur.hasPrefix("OE") {
			fn.RefQual = RefQualifierLValue
			if p.cur.peek() == 'O' {
				fn.RefQual = RefQualifierRValue
			}
			p.cur.offset += 2
			break
		}
		param, err := p.parseType()
		if err != nil {
			return nil, err
		}
		params = append(params, param)
	}

	if fn.Params, err = p.normalizeParams(params); err != nil {
		return nil, err
	}
	return fn, nil
}

// parseArrayType parses A [<number> | T_] _ <type>.
func (p *parser) parseArrayType() (Node, error) {
	if err := p.cur.expect('A'); err != nil {
		return nil, err
	}

	var bound Node
	switch c := p.cur.peek(); {
	case c == '_':
	case isDigit(c):
		start := p.cur.Offset()
		if _, err := p.cur.takeNumber(); err != nil {
			return nil, err
		}
		bound = &Literal{Text: p.cur.input[start:p.cur.offset]}
	case c == 'T':
		n, err := p.parseTemplateParam()
		if err != nil {
			return nil, err
		}
		bound = n
	case p.cur.atEnd():
		return nil, p.fail(ErrTruncated, "expected array bound")
	default:
		return nil, p.fail(ErrUnknownCode, "array bound expressions are not supported")
	}
	if err := p.cur.expect('_'); err != nil {
		return nil, err
	}

	elem, err := p.parseType()
	if err != nil {
		return nil, err
	}
	return &Array{Bound: bound, Elem: elem}, nil
}

// parsePointerToMemberType parses M <class type> <member type>.
func (p *parser) parsePointerToMemberType() (Node, error) {
	if err := p.cur.expect('M'); err != nil {
		return nil, err
	}
	cls, err := p.parseType()
	if err != nil {
		return nil, err
	}
	member, err := p.parseType()
	if err != nil {
		return nil, err
	}
	return &PointerToMember{Class: cls, Member: member}, nil
}

// hasExplicitReturn reports whether a function with this name mangles its
// return type: template functions other than constructors, destructors and
// conversion operators.
func hasExplicitReturn(name Node) bool {
	t, ok := lastComponent(name).(*Template)
	if !ok {
		return false
	}
	switch base := lastComponent(t.Base).(type) {
	case *CtorDtor:
		return false
	case *Operator:
		return base.Op != OpConversion
	}
	return true
}

// isFunctionName reports whether name can only denote a function, so a
// missing parameter list is an error rather than a data symbol.
func isFunctionName(name Node) bool {
	switch n := lastComponent(name).(type) {
	case *CtorDtor, *Operator:
		return true
	case *Template:
		_, ok := lastComponent(n.Base).(*CtorDtor)
		return ok
	}
	return false
}

func lastComponent(n Node) Node {
	switch n := n.(type) {
	case *Named:
		if len(n.Parts) > 0 {
			return lastComponent(n.Parts[len(n.Parts)-1])
		}
	case *LocalName:
		return lastComponent(n.Entity)
	case *ABITagged:
		return lastComponent(n.Name)
	}
	return n
}
