package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/skdltmxn/unmangle-go/symtab"
)

var lookupCmd = &cobra.Command{
	Use:   "lookup <elf-file> <query>",
	Short: "Look up symbols by name or address",
	Long: `Look up symbols in an ELF file.

Query can be:
  - Symbol name: lookup a.out _ZN3foo3barEv (raw or @@-versioned name)
  - Demangled name: lookup a.out foo::bar (substring of the decoded name)
  - Address: lookup a.out 0x401000 (the function or object containing it)`,
	Args: cobra.ExactArgs(2),
	RunE: runLookup,
}

func runLookup(cmd *cobra.Command, args []string) error {
	path := args[0]
	query := args[1]

	f, err := openFile(path)
	if err != nil {
		return err
	}
	defer f.Close()

	symbols, err := f.Symbols()
	if err != nil {
		return errors.Wrap(err, "failed to get symbols")
	}

	if strings.HasPrefix(query, "0x") || strings.HasPrefix(query, "0X") {
		return lookupAddress(f, symbols, query)
	}
	return lookupName(symbols, query)
}

func lookupName(symbols *symtab.SymbolTable, name string) error {
	found := 0
	for sym := range symbols.ByName(name) {
		printSymbolDetail(sym, nil)
		found++
	}

	// Also search by demangled name if no exact match
	if found == 0 {
		for sym := range symbols.ByDemangledName(name) {
			printSymbolDetail(sym, nil)
			found++
		}
	}

	if found == 0 {
		return errors.Wrapf(symtab.ErrSymbolNotFound, "no symbols matching '%s'", name)
	}
	fmt.Fprintf(output, "Found %d symbol(s)\n", found)
	return nil
}

func lookupAddress(f *symtab.File, symbols *symtab.SymbolTable, addrStr string) error {
	addr, err := strconv.ParseUint(addrStr[2:], 16, 64)
	if err != nil {
		return errors.Errorf("invalid address: %s", addrStr)
	}

	sym, ok := symbols.FindSymbolContaining(addr)
	if !ok {
		return errors.Wrapf(symtab.ErrSymbolNotFound, "no symbol at address 0x%X", addr)
	}

	var sections *symtab.SectionHeaders
	if s, err := f.Sections(); err == nil {
		sections = s
	}

	printSymbolDetail(sym, sections)
	if addr != sym.Value() {
		fmt.Fprintf(output, "%s+0x%X\n", sym.DemangledName(), addr-sym.Value())
	}
	return nil
}

func printSymbolDetail(sym symtab.Symbol, sections *symtab.SectionHeaders) {
	fmt.Fprintf(output, "Symbol:\n")
	fmt.Fprintf(output, "  Name: %s\n", sym.Name())
	fmt.Fprintf(output, "  Demangled: %s\n", sym.DemangledName())
	if v := sym.Version(); v != "" {
		fmt.Fprintf(output, "  Version: %s\n", v)
	}
	fmt.Fprintf(output, "  Kind: %s\n", sym.Kind().String())
	fmt.Fprintf(output, "  Binding: %s\n", bindingName(sym))
	fmt.Fprintf(output, "  Section: %s", sectionName(sym))
	if sections != nil {
		if sec, err := sections.Get(int(sym.Section())); err == nil && sec.Name != "" {
			fmt.Fprintf(output, " (%s)", sec.Name)
		}
	}
	fmt.Fprintln(output)
	fmt.Fprintf(output, "  Value: 0x%X\n", sym.Value())
	fmt.Fprintf(output, "  Size: %d\n", sym.Size())
	fmt.Fprintf(output, "  Dynamic: %v\n", sym.IsDynamic())
	fmt.Fprintln(output)
}
