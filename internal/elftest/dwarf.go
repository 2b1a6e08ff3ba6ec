package elftest

import (
	"bytes"
	"encoding/binary"
)

// DWARF tags, attributes and forms written by DebugInfo.
const (
	tagCompileUnit = 0x11
	tagSubprogram  = 0x2e
	tagVariable    = 0x34

	attrName            = 0x03
	attrLinkageName     = 0x6e
	attrMIPSLinkageName = 0x2007

	formString = 0x08
)

// DIE is a child of the compile unit. MIPS selects DW_AT_MIPS_linkage_name
// over DW_AT_linkage_name; an empty Linkage omits the attribute.
type DIE struct {
	Variable bool
	Name     string
	Linkage  string
	MIPS     bool
}

// abbreviation codes, one per attribute shape; variables use the subprogram
// code plus variableShift
const (
	abbrevUnit = 1 + iota
	abbrevPlain
	abbrevLinkage
	abbrevMIPS

	variableShift = 3
)

// DebugInfo returns .debug_abbrev and .debug_info sections holding one DWARF 4
// compile unit named unit whose children are dies. Strings are inlined, so no
// .debug_str is needed.
func DebugInfo(unit string, dies ...DIE) []Section {
	abbrev := &bytes.Buffer{}
	declare := func(code int, tag uint64, children bool, attrs ...uint64) {
		uleb128(abbrev, uint64(code))
		uleb128(abbrev, tag)
		if children {
			abbrev.WriteByte(1)
		} else {
			abbrev.WriteByte(0)
		}
		for _, a := range attrs {
			uleb128(abbrev, a)
			uleb128(abbrev, formString)
		}
		abbrev.Write([]byte{0, 0})
	}
	declare(abbrevUnit, tagCompileUnit, true, attrName)
	for i, tag := range []uint64{tagSubprogram, tagVariable} {
		declare(abbrevPlain+i*variableShift, tag, false, attrName)
		declare(abbrevLinkage+i*variableShift, tag, false, attrName, attrLinkageName)
		declare(abbrevMIPS+i*variableShift, tag, false, attrName, attrMIPSLinkageName)
	}
	abbrev.WriteByte(0)

	body := &bytes.Buffer{}
	uleb128(body, abbrevUnit)
	cstring(body, unit)
	for _, d := range dies {
		code := abbrevPlain
		switch {
		case d.Linkage == "":
		case d.MIPS:
			code = abbrevMIPS
		default:
			code = abbrevLinkage
		}
		if d.Variable {
			code += variableShift
		}
		uleb128(body, uint64(code))
		cstring(body, d.Name)
		if d.Linkage != "" {
			cstring(body, d.Linkage)
		}
	}
	body.WriteByte(0)

	info := &bytes.Buffer{}
	// unit_length, version, debug_abbrev_offset, address_size
	binary.Write(info, binary.LittleEndian, uint32(2+4+1+body.Len()))
	binary.Write(info, binary.LittleEndian, uint16(4))
	binary.Write(info, binary.LittleEndian, uint32(0))
	info.WriteByte(8)
	info.Write(body.Bytes())

	return []Section{
		{Name: ".debug_abbrev", Data: abbrev.Bytes()},
		{Name: ".debug_info", Data: info.Bytes()},
	}
}

func uleb128(buf *bytes.Buffer, v uint64) {
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v != 0 {
			buf.WriteByte(b | 0x80)
			continue
		}
		buf.WriteByte(b)
		return
	}
}

func cstring(buf *bytes.Buffer, s string) {
	buf.WriteString(s)
	buf.WriteByte(0)
}
