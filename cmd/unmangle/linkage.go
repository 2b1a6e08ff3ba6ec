package main

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var linkageLimit int

var linkageCmd = &cobra.Command{
	Use:   "linkage <elf-file>",
	Short: "List DWARF linkage names",
	Long: `List the mangled linkage names recorded in the DWARF debugging
information of an ELF file, together with their decoded forms.`,
	Args: cobra.ExactArgs(1),
	RunE: runLinkage,
}

func init() {
	linkageCmd.Flags().IntVarP(&linkageLimit, "limit", "n", 0, "limit number of names shown (0 = unlimited)")
}

func runLinkage(cmd *cobra.Command, args []string) error {
	path := args[0]

	f, err := openFile(path)
	if err != nil {
		return err
	}
	defer f.Close()

	names, err := f.LinkageNames()
	if err != nil {
		return errors.Wrap(err, "failed to read linkage names")
	}

	fmt.Fprintf(output, "%-10s %-24s %s\n", "OFFSET", "TAG", "NAME")
	fmt.Fprintf(output, "%s\n", strings.Repeat("-", 90))

	count := 0
	for _, n := range names {
		fmt.Fprintf(output, "0x%08X %-24s %s\n", uint32(n.Offset), n.Tag.String(), n.DemangledName())
		count++
		if linkageLimit > 0 && count >= linkageLimit {
			break
		}
	}

	fmt.Fprintf(output, "\nTotal: %d names\n", count)
	return nil
}
