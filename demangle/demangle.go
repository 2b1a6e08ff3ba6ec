package demangle

import (
	"regexp"
	"strings"
)

// mangledPrefix marks an Itanium C++ ABI mangled name.
const mangledPrefix = "_Z"

// versionSeparator splits an ELF symbol name from its version tag.
const versionSeparator = "@@"

// Unmangle converts an Itanium mangled name to readable form.
// If the name is not mangled, it is returned unchanged.
func Unmangle(symbol string) (string, error) {
	n, err := UnmangleToNode(symbol)
	if err != nil {
		return "", err
	}
	return n.String(), nil
}

// UnmangleToNode parses a mangled name and returns the component tree.
// A name that is not mangled yields a single Identifier.
func UnmangleToNode(symbol string) (Node, error) {
	if !IsMangled(symbol) {
		return &Identifier{Name: symbol}, nil
	}
	p := newParser(symbol, len(mangledPrefix))
	return p.parseMangledName()
}

// UnmangleType decodes a mangled type reference such as _ZSt6string.
// If the name is not mangled, it is returned unchanged.
func UnmangleType(symbol string) (string, error) {
	n, err := UnmangleTypeToNode(symbol)
	if err != nil {
		return "", err
	}
	return n.String(), nil
}

// UnmangleTypeToNode parses a mangled type reference and returns the
// component tree.
func UnmangleTypeToNode(symbol string) (Node, error) {
	if !IsMangled(symbol) {
		return &Identifier{Name: symbol}, nil
	}
	p := newParser(symbol, len(mangledPrefix))
	return p.parseTypeSymbol()
}

// Undecorate strips an ELF symbol version tag ("@@VERSION") from symbol.
func Undecorate(symbol string) string {
	if i := strings.Index(symbol, versionSeparator); i >= 0 {
		return symbol[:i]
	}
	return symbol
}

// UnmangleSimple undecorates and unmangles symbol, returning the raw input,
// version tag included, if it is not mangled or cannot be decoded.
func UnmangleSimple(symbol string) string {
	plain := Undecorate(symbol)
	if !IsMangled(plain) {
		return symbol
	}
	result, err := Unmangle(plain)
	if err != nil {
		return symbol
	}
	return result
}

// IsMangled reports whether name uses the Itanium mangling scheme.
func IsMangled(name string) bool {
	return strings.HasPrefix(name, mangledPrefix)
}

var mangledToken = regexp.MustCompile(`_Z[A-Za-z0-9_$.]+(@@?[A-Za-z0-9_.]+)?`)

// Filter replaces every mangled name embedded in text with its readable
// form, the way c++filt rewrites a stack trace. Version tags are kept.
// Tokens that fail to decode are left as they are.
func Filter(text string) string {
	matches := mangledToken.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return text
	}

	var sb strings.Builder
	last := 0
	for _, m := range matches {
		start, end := m[0], m[1]
		if start > 0 && isSymbolByte(text[start-1]) {
			// _Z in the middle of an identifier
			continue
		}

		name, version := text[start:end], ""
		if m[2] >= 0 {
			name, version = text[start:m[2]], text[m[2]:end]
		}

		// a sentence-ending period is not part of the symbol
		trimmed := strings.TrimRight(name, ".")
		if version == "" {
			end = start + len(trimmed)
		}

		decoded, err := Unmangle(trimmed)
		if err != nil {
			continue
		}
		sb.WriteString(text[last:start])
		sb.WriteString(decoded)
		if version != "" {
			sb.WriteString(name[len(trimmed):])
			sb.WriteString(version)
		}
		last = end
	}
	sb.WriteString(text[last:])
	return sb.String()
}

func isSymbolByte(b byte) bool {
	return isDigit(b) || isLower(b) || (b >= 'A' && b <= 'Z') || b == '_' || b == '$'
}
