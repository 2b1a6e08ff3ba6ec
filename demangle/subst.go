package demangle

import "fmt"

// substitutionTable holds the components a mangled name may refer back to.
// Entries are only ever appended; S_ names entry 0, S0_ entry 1, and so on.
type substitutionTable struct {
	entries []Node
}

// record appends n and returns its index.
func (t *substitutionTable) record(n Node) int {
	t.entries = append(t.entries, n)
	return len(t.entries) - 1
}

// resolve returns the entry at index.
func (t *substitutionTable) resolve(index int) (Node, error) {
	if index < 0 || index >= len(t.entries) {
		return nil, &Error{
			Err:    ErrInvalidSubstitution,
			Detail: fmt.Sprintf("reference to entry %d, only %d recorded", index, len(t.entries)),
		}
	}
	return t.entries[index], nil
}

// Len returns the number of recorded entries.
func (t *substitutionTable) Len() int {
	return len(t.entries)
}

// resolveStd looks up a two-letter std abbreviation by its second letter.
func (t *substitutionTable) resolveStd(code byte) (Node, error) {
	n, ok := stdAbbreviations[code]
	if !ok {
		return nil, &Error{
			Err:    ErrUnknownCode,
			Detail: fmt.Sprintf("unknown std abbreviation S%c", code),
		}
	}
	return n, nil
}

// stdNamespace is the scope every std abbreviation lives in. It renders with
// a leading :: so std names are always fully qualified.
var stdNamespace = &Identifier{Name: "::std"}

func stdName(name string) *Named {
	return &Named{Parts: []Node{stdNamespace, &Identifier{Name: name}}}
}

func charTraitsOfChar() Node {
	return &Template{Base: stdName("char_traits"), Args: []Node{&Builtin{Type: BuiltinChar}}}
}

// stdAbbreviations are shared, read-only components. Parser code must never
// modify them in place.
var stdAbbreviations = map[byte]Node{
	't': stdNamespace,
	'a': stdName("allocator"),
	'b': stdName("basic_string"),
	's': &Template{
		Base: stdName("basic_string"),
		Args: []Node{
			&Builtin{Type: BuiltinChar},
			charTraitsOfChar(),
			&Template{Base: stdName("allocator"), Args: []Node{&Builtin{Type: BuiltinChar}}},
		},
	},
	'i': &Template{Base: stdName("basic_istream"), Args: []Node{&Builtin{Type: BuiltinChar}, charTraitsOfChar()}},
	'o': &Template{Base: stdName("basic_ostream"), Args: []Node{&Builtin{Type: BuiltinChar}, charTraitsOfChar()}},
	'd': &Template{Base: stdName("basic_iostream"), Args: []Node{&Builtin{Type: BuiltinChar}, charTraitsOfChar()}},
}
