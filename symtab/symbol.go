package symtab

import (
	"context"
	"debug/elf"
	"iter"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/skdltmxn/unmangle-go/demangle"
)

// SymbolKind identifies the type of symbol.
type SymbolKind uint8

const (
	SymbolKindUnknown SymbolKind = iota
	SymbolKindFunction
	SymbolKindObject
	SymbolKindSection
	SymbolKindFile
	SymbolKindTLS
	SymbolKindCommon
)

func (k SymbolKind) String() string {
	switch k {
	case SymbolKindFunction:
		return "function"
	case SymbolKindObject:
		return "object"
	case SymbolKindSection:
		return "section"
	case SymbolKindFile:
		return "file"
	case SymbolKindTLS:
		return "tls"
	case SymbolKindCommon:
		return "common"
	default:
		return "unknown"
	}
}

// ParseSymbolKind maps a kind name as printed by String back to its value.
func ParseSymbolKind(s string) (SymbolKind, bool) {
	switch strings.ToLower(s) {
	case "function", "func":
		return SymbolKindFunction, true
	case "object", "data":
		return SymbolKindObject, true
	case "section":
		return SymbolKindSection, true
	case "file":
		return SymbolKindFile, true
	case "tls":
		return SymbolKindTLS, true
	case "common":
		return SymbolKindCommon, true
	case "unknown", "notype":
		return SymbolKindUnknown, true
	}
	return SymbolKindUnknown, false
}

func kindOf(typ elf.SymType) SymbolKind {
	switch typ {
	case elf.STT_FUNC, elf.STT_GNU_IFUNC:
		return SymbolKindFunction
	case elf.STT_OBJECT:
		return SymbolKindObject
	case elf.STT_SECTION:
		return SymbolKindSection
	case elf.STT_FILE:
		return SymbolKindFile
	case elf.STT_TLS:
		return SymbolKindTLS
	case elf.STT_COMMON:
		return SymbolKindCommon
	default:
		return SymbolKindUnknown
	}
}

// Symbol is the interface implemented by all symbol types.
type Symbol interface {
	// Name returns the raw (possibly mangled) symbol name.
	Name() string

	// DemangledName returns the demangled name, or the raw name if it is
	// not mangled or cannot be decoded.
	DemangledName() string

	// Version returns the symbol version of a dynamic symbol, if any.
	Version() string

	// Kind returns the symbol kind.
	Kind() SymbolKind

	// Binding returns the ELF symbol binding.
	Binding() elf.SymBind

	// Section returns the index of the section the symbol is defined in.
	Section() elf.SectionIndex

	// Value returns the symbol value, usually its address.
	Value() uint64

	// Size returns the size of the object or function, 0 if unknown.
	Size() uint64

	// IsDynamic reports whether the symbol came from .dynsym.
	IsDynamic() bool
}

// baseSymbol provides common symbol functionality including lazy demangling.
type baseSymbol struct {
	name          string
	demangledName string
	demangledOnce sync.Once
}

func (s *baseSymbol) Name() string { return s.name }

func (s *baseSymbol) DemangledName() string {
	s.demangledOnce.Do(func() {
		s.demangledName = demangle.UnmangleSimple(s.name)
	})
	return s.demangledName
}

// ELFSymbol is an entry of .symtab or .dynsym.
type ELFSymbol struct {
	baseSymbol
	version string
	info    byte
	section elf.SectionIndex
	value   uint64
	size    uint64
	dynamic bool
}

func newELFSymbol(sym elf.Symbol, dynamic bool) *ELFSymbol {
	return &ELFSymbol{
		baseSymbol: baseSymbol{name: sym.Name},
		version:    sym.Version,
		info:       sym.Info,
		section:    sym.Section,
		value:      sym.Value,
		size:       sym.Size,
		dynamic:    dynamic,
	}
}

func (s *ELFSymbol) Version() string           { return s.version }
func (s *ELFSymbol) Kind() SymbolKind          { return kindOf(elf.ST_TYPE(s.info)) }
func (s *ELFSymbol) Binding() elf.SymBind      { return elf.ST_BIND(s.info) }
func (s *ELFSymbol) Section() elf.SectionIndex { return s.section }
func (s *ELFSymbol) Value() uint64             { return s.value }
func (s *ELFSymbol) Size() uint64              { return s.size }
func (s *ELFSymbol) IsDynamic() bool           { return s.dynamic }

// IsDefined reports whether the symbol is defined in this file.
func (s *ELFSymbol) IsDefined() bool { return s.section != elf.SHN_UNDEF }

// SymbolTable provides access to the symbols of an ELF file. Static
// symbols come first, followed by dynamic ones.
type SymbolTable struct {
	symbols []*ELFSymbol
	nstatic int

	// Fast lookup indices (lazy-built)
	nameIndex     *nameIndex
	nameIndexOnce sync.Once

	addrIndex     *addressIndex
	addrIndexOnce sync.Once
}

func newSymbolTable(static, dynamic []elf.Symbol) *SymbolTable {
	syms := make([]*ELFSymbol, 0, len(static)+len(dynamic))
	for _, sym := range static {
		syms = append(syms, newELFSymbol(sym, false))
	}
	for _, sym := range dynamic {
		syms = append(syms, newELFSymbol(sym, true))
	}
	return &SymbolTable{symbols: syms, nstatic: len(static)}
}

// All returns an iterator over all symbols.
func (st *SymbolTable) All() iter.Seq[Symbol] {
	return seqOf(st.symbols)
}

// Static returns an iterator over .symtab symbols.
func (st *SymbolTable) Static() iter.Seq[Symbol] {
	return seqOf(st.symbols[:st.nstatic])
}

// Dynamic returns an iterator over .dynsym symbols.
func (st *SymbolTable) Dynamic() iter.Seq[Symbol] {
	return seqOf(st.symbols[st.nstatic:])
}

func seqOf(syms []*ELFSymbol) iter.Seq[Symbol] {
	return func(yield func(Symbol) bool) {
		for _, sym := range syms {
			if !yield(sym) {
				return
			}
		}
	}
}

// ByName looks up symbols by their raw name. A query without a version tag
// also matches versioned names such as memcpy@@GLIBC_2.14.
func (st *SymbolTable) ByName(name string) iter.Seq[Symbol] {
	return func(yield func(Symbol) bool) {
		st.buildNameIndex()

		for _, i := range st.nameIndex.find(name) {
			if !yield(st.symbols[i]) {
				return
			}
		}
	}
}

// FindByName finds the first symbol with the given name.
// This is faster than ByName when you only need one result.
func (st *SymbolTable) FindByName(name string) (Symbol, bool) {
	st.buildNameIndex()

	indices := st.nameIndex.find(name)
	if len(indices) == 0 {
		return nil, false
	}
	return st.symbols[indices[0]], true
}

// ByDemangledName returns symbols whose demangled name contains substr.
func (st *SymbolTable) ByDemangledName(substr string) iter.Seq[Symbol] {
	return func(yield func(Symbol) bool) {
		for _, sym := range st.symbols {
			if strings.Contains(sym.DemangledName(), substr) {
				if !yield(sym) {
					return
				}
			}
		}
	}
}

func (st *SymbolTable) buildNameIndex() {
	st.nameIndexOnce.Do(func() {
		st.nameIndex = newNameIndex(st.symbols)
	})
}

// ByAddress looks up a function or object symbol starting exactly at addr.
func (st *SymbolTable) ByAddress(addr uint64) (Symbol, bool) {
	st.buildAddrIndex()

	i, exact, found := st.addrIndex.find(addr)
	if !found || !exact {
		return nil, false
	}
	return st.symbols[i], true
}

// FindSymbolContaining finds the nearest function or object at or before
// addr whose extent covers it, so a local object nested in a function does
// not hide the function past its own end.
func (st *SymbolTable) FindSymbolContaining(addr uint64) (Symbol, bool) {
	st.buildAddrIndex()

	i, ok := st.addrIndex.containing(addr, st.symbols)
	if !ok {
		return nil, false
	}
	return st.symbols[i], true
}

func (st *SymbolTable) buildAddrIndex() {
	st.addrIndexOnce.Do(func() {
		st.addrIndex = newAddressIndex(st.symbols)
	})
}

// Prefetch demangles every symbol name ahead of use, on up to workers
// goroutines (unlimited if workers <= 0).
func (st *SymbolTable) Prefetch(ctx context.Context, workers int) error {
	g, gctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}

	for _, sym := range st.symbols {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			sym.DemangledName()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

// Count returns the total number of symbols.
func (st *SymbolTable) Count() int {
	return len(st.symbols)
}

// StaticCount returns the number of .symtab symbols.
func (st *SymbolTable) StaticCount() int {
	return st.nstatic
}

// DynamicCount returns the number of .dynsym symbols.
func (st *SymbolTable) DynamicCount() int {
	return len(st.symbols) - st.nstatic
}
