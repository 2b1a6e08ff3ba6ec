package main

import (
	"encoding/json"
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/skdltmxn/unmangle-go/symtab"
)

var (
	dumpFormat string
)

var dumpCmd = &cobra.Command{
	Use:   "dump <elf-file>",
	Short: "Dump all symbol information",
	Long: `Dump the header, symbols and DWARF linkage names of an ELF file in
structured format.

Supported formats:
  - text: Human-readable text (default)
  - json: JSON format`,
	Args: cobra.ExactArgs(1),
	RunE: runDump,
}

func init() {
	dumpCmd.Flags().StringVarP(&dumpFormat, "format", "f", "text", "output format (text, json)")
}

func runDump(cmd *cobra.Command, args []string) error {
	path := args[0]

	switch dumpFormat {
	case "json":
		f, err := openFile(path)
		if err != nil {
			return err
		}
		defer f.Close()
		return dumpJSON(f, path)
	case "text":
		return dumpText(cmd, path)
	default:
		return errors.Errorf("unknown format: %s", dumpFormat)
	}
}

type ELFDump struct {
	File    string        `json:"file"`
	Info    *InfoDump     `json:"info"`
	Symbols []SymbolDump  `json:"symbols"`
	Linkage []LinkageDump `json:"linkage_names,omitempty"`
}

type InfoDump struct {
	Class        string `json:"class"`
	ByteOrder    string `json:"byte_order"`
	OSABI        string `json:"os_abi"`
	Type         string `json:"type"`
	Machine      string `json:"machine"`
	Entry        uint64 `json:"entry"`
	SectionCount int    `json:"section_count"`
}

type SymbolDump struct {
	Name      string `json:"name"`
	Demangled string `json:"demangled"`
	Version   string `json:"version,omitempty"`
	Kind      string `json:"kind"`
	Binding   string `json:"binding"`
	Section   string `json:"section"`
	Value     uint64 `json:"value,omitempty"`
	Size      uint64 `json:"size,omitempty"`
	Dynamic   bool   `json:"dynamic,omitempty"`
}

type LinkageDump struct {
	Offset    uint32 `json:"offset"`
	Tag       string `json:"tag"`
	Name      string `json:"name"`
	Demangled string `json:"demangled"`
}

func dumpJSON(f *symtab.File, path string) error {
	dump := &ELFDump{File: path}

	info, err := f.Info()
	if err == nil {
		dump.Info = &InfoDump{
			Class:        info.Class.String(),
			ByteOrder:    info.ByteOrder.String(),
			OSABI:        info.OSABI.String(),
			Type:         info.Type.String(),
			Machine:      info.Machine.String(),
			Entry:        info.Entry,
			SectionCount: info.SectionCount,
		}
	}

	symbols, err := f.Symbols()
	if err == nil {
		for sym := range symbols.All() {
			dump.Symbols = append(dump.Symbols, SymbolDump{
				Name:      sym.Name(),
				Demangled: sym.DemangledName(),
				Version:   sym.Version(),
				Kind:      sym.Kind().String(),
				Binding:   bindingName(sym),
				Section:   sectionName(sym),
				Value:     sym.Value(),
				Size:      sym.Size(),
				Dynamic:   sym.IsDynamic(),
			})
		}
	}

	names, err := f.LinkageNames()
	if err == nil {
		for _, n := range names {
			dump.Linkage = append(dump.Linkage, LinkageDump{
				Offset:    uint32(n.Offset),
				Tag:       n.Tag.String(),
				Name:      n.Name,
				Demangled: n.DemangledName(),
			})
		}
	} else if !errors.Is(err, symtab.ErrNoDWARF) {
		log.Error(err, "failed to read linkage names", "file", path)
	}

	encoder := json.NewEncoder(output)
	encoder.SetIndent("", "  ")
	return encoder.Encode(dump)
}

func dumpText(cmd *cobra.Command, path string) error {
	// Reuse the info command
	fmt.Fprintln(output, "=== ELF Information ===")
	if err := runInfo(cmd, []string{path}); err != nil {
		return err
	}

	fmt.Fprintln(output)
	fmt.Fprintln(output, "=== Static Symbols ===")
	symbolsDynamic = false
	symbolsDemangled = true
	symbolsLimit = 0
	if err := runSymbols(cmd, []string{path}); err != nil {
		return err
	}

	fmt.Fprintln(output)
	fmt.Fprintln(output, "=== Dynamic Symbols ===")
	symbolsDynamic = true
	if err := runSymbols(cmd, []string{path}); err != nil {
		return err
	}

	fmt.Fprintln(output)
	fmt.Fprintln(output, "=== DWARF Linkage Names ===")
	linkageLimit = 0
	if err := runLinkage(cmd, []string{path}); err != nil {
		if errors.Is(err, symtab.ErrNoDWARF) {
			fmt.Fprintln(output, "(none)")
			return nil
		}
		return err
	}

	return nil
}
