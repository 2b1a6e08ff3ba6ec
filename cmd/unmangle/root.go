package main

import (
	"io"
	"os"

	"github.com/go-logr/logr"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var (
	outputFile string
	logLevel   string
	output     io.Writer
	log        = logr.Discard()
)

var rootCmd = &cobra.Command{
	Use:   "unmangle",
	Short: "Itanium C++ symbol demangler",
	Long: `unmangle decodes Itanium C++ ABI mangled names (the scheme used by
GCC and Clang) into readable C++ declarations.

It can decode names given on the command line or on standard input, and
list the symbols and DWARF linkage names of ELF files with their C++ names.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logger, err := newLogger(logLevel, os.Stderr)
		if err != nil {
			return err
		}
		log = logger

		if outputFile != "" {
			f, err := os.Create(outputFile)
			if err != nil {
				return errors.Wrap(err, "failed to create output file")
			}
			output = f
		} else {
			output = cmd.OutOrStdout()
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if f, ok := output.(*os.File); ok && f != os.Stdout {
			f.Close()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&outputFile, "output", "o", "", "write output to file instead of stdout")
	addLogFlags(rootCmd.PersistentFlags())

	rootCmd.AddCommand(demangleCmd)
	rootCmd.AddCommand(infoCmd)
	rootCmd.AddCommand(symbolsCmd)
	rootCmd.AddCommand(lookupCmd)
	rootCmd.AddCommand(linkageCmd)
	rootCmd.AddCommand(dumpCmd)
}

func addLogFlags(fs *pflag.FlagSet) {
	fs.StringVar(&logLevel, "log-level", "info", "log verbosity (debug, info, error)")
}
