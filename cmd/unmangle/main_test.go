package main

import (
	"bytes"
	"debug/elf"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skdltmxn/unmangle-go/demangle"
	"github.com/skdltmxn/unmangle-go/internal/elftest"
	"github.com/skdltmxn/unmangle-go/symtab"
)

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	outputFile = ""
	logLevel = "error"
	demangleType = false
	demangleNoUndecorate = false
	demangleStripUnderscore = false
	demangleStrict = false
	demangleTree = false
	symbolsKind = ""
	symbolsDynamic = false
	symbolsDemangled = false
	symbolsLimit = 0
	symbolsJobs = 0
	linkageLimit = 0
	dumpFormat = "text"

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestDemangleArgs(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"function", []string{"demangle", "_Z6myfuncv"}, "myfunc()\n"},
		{"not mangled", []string{"demangle", "global"}, "global\n"},
		{"invalid echoed", []string{"demangle", "_Z16myfuncv"}, "_Z16myfuncv\n"},
		{"version kept", []string{"demangle", "_ZdaPv@@GLIBCXX_3.4"}, "operator delete[](void*)@@GLIBCXX_3.4\n"},
		{"no undecorate", []string{"demangle", "--no-undecorate", "_ZdaPv@@GLIBCXX_3.4"}, "_ZdaPv@@GLIBCXX_3.4\n"},
		{"strip underscore", []string{"demangle", "-_", "__Z3foodf"}, "foo(double,float)\n"},
		{"type", []string{"demangle", "-t", "_ZSt6string"}, "::std::string\n"},
		{"several", []string{"demangle", "_ZN1S1xE", "_Z5firstI3DuoEvS0_"}, "S::x\nvoid first<Duo>(Duo)\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := execute(t, "", tt.args...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
		})
	}
}

func TestDemangleStrict(t *testing.T) {
	_, err := execute(t, "", "demangle", "--strict", "_Z6myfuncv", "_Z16myfuncv")
	require.Error(t, err)
	assert.True(t, errors.Is(err, demangle.ErrTruncated), "got %v", err)
}

func TestDemangleFilter(t *testing.T) {
	in := "#0 0x401136 in _ZN3foo3barEv+0x10\n" +
		"#1 0x401200 in main\n" +
		"U __Z6myfuncv\n"

	out, err := execute(t, in, "demangle")
	require.NoError(t, err)
	assert.Equal(t, "#0 0x401136 in foo::bar()+0x10\n#1 0x401200 in main\nU __Z6myfuncv\n", out)

	out, err = execute(t, in, "demangle", "--strip-underscore")
	require.NoError(t, err)
	assert.Equal(t, "#0 0x401136 in foo::bar()+0x10\n#1 0x401200 in main\nU myfunc()\n", out)
}

func TestDemangleLines(t *testing.T) {
	out, err := execute(t, "_ZSt6string\n\n_Z1fM1AKFvvE\n", "demangle", "--type")
	require.NoError(t, err)
	assert.Equal(t, "::std::string\n", strings.SplitAfter(out, "\n")[0])

	out, err = execute(t, "_Z6myfuncv\n_ZTS5Derv1\n", "demangle", "--strict")
	require.NoError(t, err)
	assert.Equal(t, "myfunc()\n<typeinfo name for Derv1>\n", out)
}

func TestDemangleTree(t *testing.T) {
	out, err := execute(t, "", "demangle", "--tree", "_ZN1S1xE")
	require.NoError(t, err)

	var tree treeNode
	require.NoError(t, json.Unmarshal([]byte(out), &tree))
	assert.Equal(t, "encoding", tree.Kind)
	assert.Equal(t, "S::x", tree.Text)
	require.Len(t, tree.Children, 1)
	assert.Equal(t, "named", tree.Children[0].Kind)
	require.Len(t, tree.Children[0].Children, 2)
	assert.Equal(t, "identifier", tree.Children[0].Children[1].Kind)
	assert.Equal(t, "x", tree.Children[0].Children[1].Text)
}

func TestOutputFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.txt")
	_, err := execute(t, "", "demangle", "-o", path, "_Z6myfuncv")
	require.NoError(t, err)

	got, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "myfunc()\n", string(got))
}

func TestNotELF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("this is not an object file\n"), 0o644))

	for _, cmd := range []string{"info", "symbols", "linkage", "dump"} {
		t.Run(cmd, func(t *testing.T) {
			_, err := execute(t, "", cmd, path)
			require.Error(t, err)
			assert.True(t, errors.Is(err, symtab.ErrNotELF), "got %v", err)
		})
	}

	_, err := execute(t, "", "lookup", path, "0x401000")
	require.Error(t, err)
	assert.True(t, errors.Is(err, symtab.ErrNotELF), "got %v", err)
}

// writeELF stores a small executable with two functions, one object and a
// compile unit carrying linkage names, and returns its path.
func writeELF(t *testing.T) string {
	t.Helper()

	syms := []elftest.Symbol{
		{Name: "_ZN3foo3barEv", Type: elf.STT_FUNC, Bind: elf.STB_GLOBAL, Section: 1, Value: 0x1000, Size: 0x20},
		{Name: "_Z6myfuncv", Type: elf.STT_FUNC, Bind: elf.STB_GLOBAL, Section: 1, Value: 0x1020, Size: 0x10},
		{Name: "counter", Type: elf.STT_OBJECT, Bind: elf.STB_GLOBAL, Section: 2, Value: 0x2000, Size: 8},
	}
	debug := elftest.DebugInfo("main.cc",
		elftest.DIE{Name: "bar", Linkage: "_ZN3foo3barEv"},
		elftest.DIE{Name: "myfunc", Linkage: "_Z6myfuncv"},
	)
	image, err := elftest.Build(syms, debug...)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "a.out")
	require.NoError(t, os.WriteFile(path, image, 0o644))
	return path
}

func TestInfo(t *testing.T) {
	out, err := execute(t, "", "info", writeELF(t))
	require.NoError(t, err)
	assert.Contains(t, out, "Class: ELFCLASS64\n")
	assert.Contains(t, out, "Machine: EM_X86_64\n")
	assert.Contains(t, out, "Entry: 0x1000\n")
	assert.Contains(t, out, "Static Symbols: 3\n")
	assert.Contains(t, out, "DWARF Linkage Names: 2\n")
}

func TestSymbols(t *testing.T) {
	path := writeELF(t)

	tests := []struct {
		name     string
		args     []string
		contains []string
		excludes []string
	}{
		{
			"raw names",
			[]string{"symbols", path},
			[]string{"_ZN3foo3barEv\n", "_Z6myfuncv\n", "counter\n", "Total: 3 symbols\n"},
			[]string{"foo::bar()"},
		},
		{
			"demangled",
			[]string{"symbols", "-d", "-j", "2", path},
			[]string{"foo::bar()\n", "myfunc()\n", "counter\n", "0x0000000000001000", "Total: 3 symbols\n"},
			[]string{"_ZN3foo3barEv"},
		},
		{
			"kind filter",
			[]string{"symbols", "--kind", "object", path},
			[]string{"counter\n", "Total: 1 symbols\n"},
			[]string{"_Z6myfuncv"},
		},
		{
			"limit",
			[]string{"symbols", "-d", "-n", "1", path},
			[]string{"foo::bar()\n", "Total: 1 symbols\n"},
			[]string{"myfunc()"},
		},
		{
			"no dynamic symbols",
			[]string{"symbols", "-D", path},
			[]string{"Total: 0 symbols\n"},
			nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := execute(t, "", tt.args...)
			require.NoError(t, err)
			for _, want := range tt.contains {
				assert.Contains(t, out, want)
			}
			for _, unwanted := range tt.excludes {
				assert.NotContains(t, out, unwanted)
			}
		})
	}

	_, err := execute(t, "", "symbols", "--kind", "udt", path)
	assert.Error(t, err)
}

func TestLookup(t *testing.T) {
	path := writeELF(t)

	out, err := execute(t, "", "lookup", path, "0x1010")
	require.NoError(t, err)
	assert.Contains(t, out, "  Name: _ZN3foo3barEv\n")
	assert.Contains(t, out, "  Demangled: foo::bar()\n")
	assert.Contains(t, out, "  Section: 1 (.text)\n")
	assert.Contains(t, out, "foo::bar()+0x10\n")

	out, err = execute(t, "", "lookup", path, "0x1020")
	require.NoError(t, err)
	assert.Contains(t, out, "  Demangled: myfunc()\n")
	assert.NotContains(t, out, "+0x")

	out, err = execute(t, "", "lookup", path, "0x2004")
	require.NoError(t, err)
	assert.Contains(t, out, "  Section: 2 (.data)\n")
	assert.Contains(t, out, "counter+0x4\n")

	out, err = execute(t, "", "lookup", path, "foo::bar")
	require.NoError(t, err)
	assert.Contains(t, out, "  Name: _ZN3foo3barEv\n")
	assert.Contains(t, out, "Found 1 symbol(s)\n")

	out, err = execute(t, "", "lookup", path, "_Z6myfuncv")
	require.NoError(t, err)
	assert.Contains(t, out, "  Demangled: myfunc()\n")

	for _, query := range []string{"0x5000", "nothing"} {
		_, err = execute(t, "", "lookup", path, query)
		require.Error(t, err)
		assert.True(t, errors.Is(err, symtab.ErrSymbolNotFound), "got %v", err)
	}

	_, err = execute(t, "", "lookup", path, "0xzz")
	assert.Error(t, err)
}

func TestLinkage(t *testing.T) {
	path := writeELF(t)

	out, err := execute(t, "", "linkage", path)
	require.NoError(t, err)
	assert.Contains(t, out, "foo::bar()\n")
	assert.Contains(t, out, "myfunc()\n")
	assert.Contains(t, out, "Total: 2 names\n")

	out, err = execute(t, "", "linkage", "-n", "1", path)
	require.NoError(t, err)
	assert.NotContains(t, out, "myfunc()")
	assert.Contains(t, out, "Total: 1 names\n")
}

func TestDump(t *testing.T) {
	path := writeELF(t)

	out, err := execute(t, "", "dump", "--format", "json", path)
	require.NoError(t, err)

	var dump ELFDump
	require.NoError(t, json.Unmarshal([]byte(out), &dump))
	assert.Equal(t, path, dump.File)
	require.NotNil(t, dump.Info)
	assert.Equal(t, uint64(0x1000), dump.Info.Entry)
	require.Len(t, dump.Symbols, 3)
	assert.Equal(t, "foo::bar()", dump.Symbols[0].Demangled)
	assert.Equal(t, "object", dump.Symbols[2].Kind)
	require.Len(t, dump.Linkage, 2)
	assert.Equal(t, "_Z6myfuncv", dump.Linkage[1].Name)
	assert.Equal(t, "myfunc()", dump.Linkage[1].Demangled)

	out, err = execute(t, "", "dump", path)
	require.NoError(t, err)
	assert.Contains(t, out, "=== Static Symbols ===\n")
	assert.Contains(t, out, "foo::bar()\n")
	assert.Contains(t, out, "=== DWARF Linkage Names ===\n")
	assert.Contains(t, out, "Total: 2 names\n")

	_, err = execute(t, "", "dump", "--format", "yaml", path)
	assert.Error(t, err)
}

func TestUnknownLogLevel(t *testing.T) {
	_, err := newLogger("chatty", io.Discard)
	assert.Error(t, err)
}

func TestLoggerVerbosity(t *testing.T) {
	var buf bytes.Buffer
	logger, err := newLogger("debug", &buf)
	require.NoError(t, err)
	logger.V(1).Info("cannot decode symbol", "symbol", "_Z16myfuncv")
	assert.Contains(t, buf.String(), "cannot decode symbol")
	assert.Contains(t, buf.String(), "_Z16myfuncv")

	buf.Reset()
	logger, err = newLogger("info", &buf)
	require.NoError(t, err)
	logger.V(1).Info("hidden")
	logger.Info("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}
