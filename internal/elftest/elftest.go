// Package elftest assembles small ELF64 images for tests.
package elftest

import (
	"bytes"
	"debug/elf"
	"encoding/binary"
	"strings"

	"github.com/pkg/errors"
)

// Symbol is one .symtab entry.
type Symbol struct {
	Name    string
	Type    elf.SymType
	Bind    elf.SymBind
	Section elf.SectionIndex
	Value   uint64
	Size    uint64
}

// Section is an extra PROGBITS section placed between .strtab and .shstrtab.
type Section struct {
	Name string
	Data []byte
}

const (
	ehsize    = 64
	shentsize = 64
	// StrtabIndex is the section index of .strtab.
	StrtabIndex = 4
)

// Build assembles a little-endian x86-64 executable with .text at 0x1000
// (0x100 bytes), .data at 0x2000 (0x10 bytes), .symtab, .strtab, the extra
// sections in order, and .shstrtab last.
func Build(syms []Symbol, extra ...Section) ([]byte, error) {
	names := []string{".text", ".data", ".symtab", ".strtab"}
	for _, s := range extra {
		names = append(names, s.Name)
	}
	names = append(names, ".shstrtab")
	shstrtab := []byte("\x00" + strings.Join(names, "\x00") + "\x00")
	shname := func(name string) uint32 {
		return uint32(bytes.Index(shstrtab, []byte("\x00"+name+"\x00")) + 1)
	}

	var werr error
	write := func(buf *bytes.Buffer, v any) {
		if werr == nil {
			werr = binary.Write(buf, binary.LittleEndian, v)
		}
	}

	strtab := []byte{0}
	symtab := &bytes.Buffer{}
	locals := uint32(1)
	write(symtab, elf.Sym64{})
	for i, s := range syms {
		write(symtab, elf.Sym64{
			Name:  uint32(len(strtab)),
			Info:  elf.ST_INFO(s.Bind, s.Type),
			Shndx: uint16(s.Section),
			Value: s.Value,
			Size:  s.Size,
		})
		strtab = append(strtab, s.Name...)
		strtab = append(strtab, 0)
		if s.Bind == elf.STB_LOCAL {
			locals = uint32(i) + 2
		}
	}

	shstrtabOff := uint64(ehsize)
	strtabOff := shstrtabOff + uint64(len(shstrtab))
	symtabOff := align8(strtabOff + uint64(len(strtab)))
	off := align8(symtabOff + uint64(symtab.Len()))
	extraOff := make([]uint64, len(extra))
	for i, s := range extra {
		extraOff[i] = off
		off = align8(off + uint64(len(s.Data)))
	}
	shoff := off

	sections := []elf.Section64{
		{},
		{
			Name: shname(".text"), Type: uint32(elf.SHT_NOBITS),
			Flags: uint64(elf.SHF_ALLOC | elf.SHF_EXECINSTR), Addr: 0x1000, Size: 0x100, Addralign: 16,
		},
		{
			Name: shname(".data"), Type: uint32(elf.SHT_NOBITS),
			Flags: uint64(elf.SHF_ALLOC | elf.SHF_WRITE), Addr: 0x2000, Size: 0x10, Addralign: 8,
		},
		{
			Name: shname(".symtab"), Type: uint32(elf.SHT_SYMTAB), Off: symtabOff,
			Size: uint64(symtab.Len()), Link: StrtabIndex, Info: locals, Addralign: 8, Entsize: elf.Sym64Size,
		},
		{
			Name: shname(".strtab"), Type: uint32(elf.SHT_STRTAB), Off: strtabOff,
			Size: uint64(len(strtab)), Addralign: 1,
		},
	}
	for i, s := range extra {
		sections = append(sections, elf.Section64{
			Name: shname(s.Name), Type: uint32(elf.SHT_PROGBITS), Off: extraOff[i],
			Size: uint64(len(s.Data)), Addralign: 1,
		})
	}
	sections = append(sections, elf.Section64{
		Name: shname(".shstrtab"), Type: uint32(elf.SHT_STRTAB), Off: shstrtabOff,
		Size: uint64(len(shstrtab)), Addralign: 1,
	})

	hdr := elf.Header64{
		Type:      uint16(elf.ET_EXEC),
		Machine:   uint16(elf.EM_X86_64),
		Version:   uint32(elf.EV_CURRENT),
		Entry:     0x1000,
		Shoff:     shoff,
		Ehsize:    ehsize,
		Phentsize: 56,
		Shentsize: shentsize,
		Shnum:     uint16(len(sections)),
		Shstrndx:  uint16(len(sections) - 1),
	}
	copy(hdr.Ident[:], elf.ELFMAG)
	hdr.Ident[elf.EI_CLASS] = byte(elf.ELFCLASS64)
	hdr.Ident[elf.EI_DATA] = byte(elf.ELFDATA2LSB)
	hdr.Ident[elf.EI_VERSION] = byte(elf.EV_CURRENT)

	out := &bytes.Buffer{}
	pad := func(to uint64) {
		out.Write(make([]byte, to-uint64(out.Len())))
	}
	write(out, hdr)
	out.Write(shstrtab)
	out.Write(strtab)
	pad(symtabOff)
	out.Write(symtab.Bytes())
	for i, s := range extra {
		pad(extraOff[i])
		out.Write(s.Data)
	}
	pad(shoff)
	for _, sec := range sections {
		write(out, sec)
	}
	if werr != nil {
		return nil, errors.Wrap(werr, "elftest: failed to encode image")
	}
	return out.Bytes(), nil
}

func align8(n uint64) uint64 {
	return (n + 7) &^ 7
}
