package symtab

import (
	"debug/elf"
	"sort"

	"github.com/skdltmxn/unmangle-go/demangle"
)

// nameIndex maps raw and undecorated symbol names to symbol positions.
type nameIndex struct {
	names map[string][]int
}

func newNameIndex(syms []*ELFSymbol) *nameIndex {
	idx := &nameIndex{names: make(map[string][]int, len(syms))}
	for i, sym := range syms {
		if sym.name == "" {
			continue
		}
		idx.names[sym.name] = append(idx.names[sym.name], i)
		if plain := demangle.Undecorate(sym.name); plain != sym.name {
			idx.names[plain] = append(idx.names[plain], i)
		}
	}
	return idx
}

func (idx *nameIndex) find(name string) []int {
	return idx.names[name]
}

type symbolAddress struct {
	value uint64
	index int
}

// addressIndex holds defined function and object symbols sorted by value.
// maxEnd[i] is the largest end address among entries[:i+1].
type addressIndex struct {
	entries []symbolAddress
	maxEnd  []uint64
}

func newAddressIndex(syms []*ELFSymbol) *addressIndex {
	entries := make([]symbolAddress, 0, len(syms))
	for i, sym := range syms {
		if !sym.IsDefined() || sym.section == elf.SHN_ABS {
			continue
		}
		switch sym.Kind() {
		case SymbolKindFunction, SymbolKindObject, SymbolKindTLS:
			entries = append(entries, symbolAddress{value: sym.value, index: i})
		}
	}

	// Sort by value; for equal values keep table order so static symbols win
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].value < entries[j].value
	})

	maxEnd := make([]uint64, len(entries))
	var end uint64
	for i, e := range entries {
		end = max(end, e.value+syms[e.index].size)
		maxEnd[i] = end
	}

	return &addressIndex{entries: entries, maxEnd: maxEnd}
}

// find returns the symbol at or before addr and whether it starts exactly
// at addr.
func (idx *addressIndex) find(addr uint64) (index int, exact bool, found bool) {
	if len(idx.entries) == 0 {
		return 0, false, false
	}

	i := sort.Search(len(idx.entries), func(i int) bool {
		return idx.entries[i].value >= addr
	})

	if i < len(idx.entries) && idx.entries[i].value == addr {
		return idx.entries[i].index, true, true
	}

	// Return the symbol just before this address (containing symbol)
	if i > 0 {
		return idx.entries[i-1].index, false, true
	}

	return 0, false, false
}

// containing returns the nearest symbol at or before addr whose extent
// [value, value+size) covers it. A zero-sized symbol covers only its own
// address.
func (idx *addressIndex) containing(addr uint64, syms []*ELFSymbol) (int, bool) {
	if i, exact, found := idx.find(addr); found && exact {
		return i, true
	}

	i := sort.Search(len(idx.entries), func(i int) bool {
		return idx.entries[i].value > addr
	})
	for j := i - 1; j >= 0 && idx.maxEnd[j] > addr; j-- {
		e := idx.entries[j]
		if addr < e.value+syms[e.index].size {
			return e.index, true
		}
	}
	return 0, false
}
