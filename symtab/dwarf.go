package symtab

import (
	"github.com/blacktop/go-dwarf"
	"github.com/pkg/errors"

	"github.com/skdltmxn/unmangle-go/demangle"
)

// attrMIPSLinkageName is DW_AT_MIPS_linkage_name, emitted by older GCC
// releases in place of DW_AT_linkage_name.
const attrMIPSLinkageName dwarf.Attr = 0x2007

// LinkageName is a mangled name recorded for a debugging information entry.
type LinkageName struct {
	Name   string
	Tag    dwarf.Tag
	Offset dwarf.Offset
}

// DemangledName returns the decoded form of the linkage name.
func (n LinkageName) DemangledName() string {
	return demangle.UnmangleSimple(n.Name)
}

// DWARF returns the DWARF debugging data of the file.
func (f *File) DWARF() (*dwarf.Data, error) {
	if err := f.checkOpen(); err != nil {
		return nil, err
	}

	f.dwarfDataOnce.Do(func() {
		f.dwarfData, f.dwarfDataErr = f.loadDWARF()
	})

	if f.dwarfDataErr != nil {
		return nil, f.dwarfDataErr
	}
	return f.dwarfData, nil
}

func (f *File) loadDWARF() (*dwarf.Data, error) {
	// There are many other DWARF sections, but these
	// are the ones the dwarf package uses.
	var dat = map[string][]byte{"abbrev": nil, "info": nil, "str": nil, "line": nil, "ranges": nil}
	for suffix := range dat {
		s := f.elf.Section(".debug_" + suffix)
		if s == nil {
			continue
		}
		// Data decompresses SHF_COMPRESSED sections.
		b, err := s.Data()
		if err != nil {
			return nil, &ParseError{Section: s.Name, Message: "failed to read section", Err: err}
		}
		dat[suffix] = b
	}

	if dat["info"] == nil {
		return nil, ErrNoDWARF
	}

	d, err := dwarf.New(dat["abbrev"], nil, nil, dat["info"], dat["line"], nil, dat["ranges"], dat["str"])
	if err != nil {
		return nil, errors.Wrap(err, "symtab: failed to load DWARF")
	}
	return d, nil
}

// LinkageNames returns every DW_AT_linkage_name (or its MIPS predecessor)
// in .debug_info, in DIE order.
func (f *File) LinkageNames() ([]LinkageName, error) {
	d, err := f.DWARF()
	if err != nil {
		return nil, err
	}

	var names []LinkageName
	r := d.Reader()
	for {
		entry, err := r.Next()
		if err != nil {
			return names, &ParseError{Section: ".debug_info", Message: "failed to read entry", Err: err}
		}
		if entry == nil {
			break
		}

		name, ok := entry.Val(dwarf.AttrLinkageName).(string)
		if !ok {
			name, ok = entry.Val(attrMIPSLinkageName).(string)
		}
		if ok {
			names = append(names, LinkageName{Name: name, Tag: entry.Tag, Offset: entry.Offset})
		}
	}
	return names, nil
}
