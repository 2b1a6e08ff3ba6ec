package symtab

import (
	"debug/elf"

	"github.com/pkg/errors"
)

// SectionHeader describes one ELF section.
type SectionHeader struct {
	Index  int
	Name   string
	Type   elf.SectionType
	Flags  elf.SectionFlag
	Addr   uint64
	Offset uint64
	Size   uint64
}

// IsAlloc reports whether the section occupies memory at run time.
func (s *SectionHeader) IsAlloc() bool {
	return s.Flags&elf.SHF_ALLOC != 0
}

// SectionHeaders provides access to the section headers of an ELF file.
type SectionHeaders struct {
	sections []SectionHeader
}

// Count returns the number of sections.
func (sh *SectionHeaders) Count() int {
	return len(sh.sections)
}

// Get returns the section header at the given index.
func (sh *SectionHeaders) Get(index int) (*SectionHeader, error) {
	if index < 0 || index >= len(sh.sections) {
		return nil, errors.Errorf("symtab: section index out of range: %d", index)
	}
	return &sh.sections[index], nil
}

// All returns all section headers.
func (sh *SectionHeaders) All() []SectionHeader {
	return sh.sections
}

// ByName returns the first section with the given name.
func (sh *SectionHeaders) ByName(name string) (*SectionHeader, bool) {
	for i := range sh.sections {
		if sh.sections[i].Name == name {
			return &sh.sections[i], true
		}
	}
	return nil, false
}

// Contains finds the allocated section whose address range covers addr.
func (sh *SectionHeaders) Contains(addr uint64) (*SectionHeader, bool) {
	for i := range sh.sections {
		sec := &sh.sections[i]
		if !sec.IsAlloc() {
			continue
		}
		if addr >= sec.Addr && addr < sec.Addr+sec.Size {
			return sec, true
		}
	}
	return nil, false
}

func newSectionHeaders(sections []*elf.Section) *SectionHeaders {
	headers := make([]SectionHeader, len(sections))
	for i, s := range sections {
		headers[i] = SectionHeader{
			Index:  i,
			Name:   s.Name,
			Type:   s.Type,
			Flags:  s.Flags,
			Addr:   s.Addr,
			Offset: s.Offset,
			Size:   s.Size,
		}
	}
	return &SectionHeaders{sections: headers}
}

// Sections returns the ELF section headers.
func (f *File) Sections() (*SectionHeaders, error) {
	if err := f.checkOpen(); err != nil {
		return nil, err
	}

	f.sectionHeadersOnce.Do(func() {
		f.sectionHeaders = newSectionHeaders(f.elf.Sections)
	})
	return f.sectionHeaders, nil
}
