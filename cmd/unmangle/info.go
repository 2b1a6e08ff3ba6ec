package main

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/skdltmxn/unmangle-go/symtab"
)

var infoCmd = &cobra.Command{
	Use:   "info <elf-file>",
	Short: "Display ELF file information",
	Long:  `Display general information about an ELF file including class, machine, entry point and symbol counts.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runInfo,
}

func runInfo(cmd *cobra.Command, args []string) error {
	path := args[0]

	f, err := openFile(path)
	if err != nil {
		return err
	}
	defer f.Close()

	info, err := f.Info()
	if err != nil {
		return errors.Wrap(err, "failed to read ELF info")
	}

	fmt.Fprintf(output, "ELF File: %s\n", path)
	fmt.Fprintf(output, "Class: %s\n", info.Class)
	fmt.Fprintf(output, "Data: %s\n", info.ByteOrder)
	fmt.Fprintf(output, "OS/ABI: %s\n", info.OSABI)
	fmt.Fprintf(output, "Type: %s\n", info.Type)
	fmt.Fprintf(output, "Machine: %s\n", info.Machine)
	fmt.Fprintf(output, "Entry: 0x%X\n", info.Entry)
	fmt.Fprintf(output, "Number of Sections: %d\n", info.SectionCount)

	symbols, err := f.Symbols()
	if err == nil {
		fmt.Fprintf(output, "Static Symbols: %d\n", symbols.StaticCount())
		fmt.Fprintf(output, "Dynamic Symbols: %d\n", symbols.DynamicCount())
	} else {
		log.V(1).Info("no symbols", "file", path, "error", err.Error())
	}

	names, err := f.LinkageNames()
	if err == nil {
		fmt.Fprintf(output, "DWARF Linkage Names: %d\n", len(names))
	}

	return nil
}

// openFile opens an ELF file and logs the result.
func openFile(path string) (*symtab.File, error) {
	f, err := symtab.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open ELF file")
	}
	log.Info("opened file", "path", path)
	return f, nil
}
