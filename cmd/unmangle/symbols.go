package main

import (
	"debug/elf"
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/skdltmxn/unmangle-go/symtab"
)

var (
	symbolsKind      string
	symbolsDynamic   bool
	symbolsDemangled bool
	symbolsLimit     int
	symbolsJobs      int
)

var symbolsCmd = &cobra.Command{
	Use:   "symbols <elf-file>",
	Short: "List symbols in the ELF file",
	Long: `List symbols from an ELF file.

By default, .symtab symbols are shown. Use --dynamic for .dynsym symbols.
Use --kind to filter by symbol kind (function, object, section, file, tls, common).`,
	Args: cobra.ExactArgs(1),
	RunE: runSymbols,
}

func init() {
	symbolsCmd.Flags().StringVarP(&symbolsKind, "kind", "k", "", "filter by symbol kind (function, object, section, file, tls, common)")
	symbolsCmd.Flags().BoolVarP(&symbolsDynamic, "dynamic", "D", false, "show dynamic symbols instead of static ones")
	symbolsCmd.Flags().BoolVarP(&symbolsDemangled, "demangle", "d", false, "show demangled names")
	symbolsCmd.Flags().IntVarP(&symbolsLimit, "limit", "n", 0, "limit number of symbols shown (0 = unlimited)")
	symbolsCmd.Flags().IntVarP(&symbolsJobs, "jobs", "j", 0, "number of goroutines used to demangle names (0 = unlimited)")
}

func runSymbols(cmd *cobra.Command, args []string) error {
	path := args[0]

	f, err := openFile(path)
	if err != nil {
		return err
	}
	defer f.Close()

	symbols, err := f.Symbols()
	if err != nil {
		return errors.Wrap(err, "failed to get symbols")
	}

	var kindFilter symtab.SymbolKind
	hasKindFilter := false
	if symbolsKind != "" {
		kind, ok := symtab.ParseSymbolKind(symbolsKind)
		if !ok {
			return errors.Errorf("unknown symbol kind: %s", symbolsKind)
		}
		kindFilter = kind
		hasKindFilter = true
	}

	if symbolsDemangled {
		ctx := cmd.Context()
		if err := symbols.Prefetch(ctx, symbolsJobs); err != nil {
			return errors.Wrap(err, "failed to demangle symbols")
		}
	}

	fmt.Fprintf(output, "%-10s %-7s %-8s %-18s %-8s %s\n", "KIND", "BIND", "SECTION", "VALUE", "SIZE", "NAME")
	fmt.Fprintf(output, "%s\n", strings.Repeat("-", 90))

	seq := symbols.Static()
	if symbolsDynamic {
		seq = symbols.Dynamic()
	}

	count := 0
	for sym := range seq {
		if hasKindFilter && sym.Kind() != kindFilter {
			continue
		}
		printSymbol(sym)
		count++
		if symbolsLimit > 0 && count >= symbolsLimit {
			break
		}
	}

	fmt.Fprintf(output, "\nTotal: %d symbols\n", count)
	return nil
}

func printSymbol(sym symtab.Symbol) {
	name := sym.Name()
	if symbolsDemangled {
		name = sym.DemangledName()
	}
	if v := sym.Version(); v != "" {
		name += "@" + v
	}

	fmt.Fprintf(output, "%-10s %-7s %-8s 0x%016X %-8d %s\n",
		sym.Kind().String(),
		bindingName(sym),
		sectionName(sym),
		sym.Value(),
		sym.Size(),
		name)
}

func bindingName(sym symtab.Symbol) string {
	return strings.ToLower(strings.TrimPrefix(sym.Binding().String(), "STB_"))
}

func sectionName(sym symtab.Symbol) string {
	switch idx := sym.Section(); idx {
	case elf.SHN_UNDEF:
		return "UND"
	case elf.SHN_ABS:
		return "ABS"
	case elf.SHN_COMMON:
		return "COM"
	default:
		return fmt.Sprintf("%d", idx)
	}
}
