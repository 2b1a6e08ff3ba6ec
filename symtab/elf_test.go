package symtab

import (
	"debug/elf"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/skdltmxn/unmangle-go/internal/elftest"
)

var testSymbols = []elftest.Symbol{
	{Name: "main.cc", Type: elf.STT_FILE, Bind: elf.STB_LOCAL, Section: elf.SHN_ABS},
	{Name: "_ZN3foo3barEv", Type: elf.STT_FUNC, Bind: elf.STB_GLOBAL, Section: 1, Value: 0x1000, Size: 0x20},
	{Name: "_Z6myfuncv", Type: elf.STT_FUNC, Bind: elf.STB_GLOBAL, Section: 1, Value: 0x1020, Size: 0x10},
	{Name: "_Z16myfuncv", Type: elf.STT_FUNC, Bind: elf.STB_WEAK, Section: 1, Value: 0x1030, Size: 0x10},
	{Name: "counter", Type: elf.STT_OBJECT, Bind: elf.STB_GLOBAL, Section: 2, Value: 0x2000, Size: 8},
	{Name: "memcpy@@GLIBC_2.14", Type: elf.STT_FUNC, Bind: elf.STB_GLOBAL, Section: elf.SHN_UNDEF},
}

var testDIEs = []elftest.DIE{
	{Name: "bar", Linkage: "_ZN3foo3barEv"},
	{Name: "main"},
	{Name: "counter", Linkage: "_ZN3foo7counterE", Variable: true},
	{Name: "old", Linkage: "_Z3oldi", MIPS: true},
	{Name: "broken", Linkage: "_Z16myfuncv"},
}

// buildELF assembles a little-endian ELF64 executable with .text, .data,
// .symtab, .strtab, any extra sections and .shstrtab.
func buildELF(t *testing.T, syms []elftest.Symbol, extra ...elftest.Section) []byte {
	t.Helper()

	image, err := elftest.Build(syms, extra...)
	require.NoError(t, err)
	return image
}
