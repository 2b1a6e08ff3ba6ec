package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/skdltmxn/unmangle-go/demangle"
)

var (
	demangleType            bool
	demangleNoUndecorate    bool
	demangleStripUnderscore bool
	demangleStrict          bool
	demangleTree            bool
)

var demangleCmd = &cobra.Command{
	Use:   "demangle [symbol...]",
	Short: "Decode mangled names",
	Long: `Decode Itanium C++ mangled names.

Names are taken from the arguments. Without arguments, standard input is
read line by line and every mangled name found in it is replaced by its
readable form, so the command can be used as a filter:

  nm -g libfoo.so | unmangle demangle

Names that cannot be decoded are printed unchanged unless --strict is set.`,
	RunE: runDemangle,
}

func init() {
	demangleCmd.Flags().BoolVarP(&demangleType, "type", "t", false, "decode each name as a type (_Z<type>)")
	demangleCmd.Flags().BoolVar(&demangleNoUndecorate, "no-undecorate", false, "do not strip @@version suffixes before decoding")
	demangleCmd.Flags().BoolVarP(&demangleStripUnderscore, "strip-underscore", "_", false, "strip one leading underscore (__Z...) before decoding")
	demangleCmd.Flags().BoolVar(&demangleStrict, "strict", false, "fail on the first name that cannot be decoded")
	demangleCmd.Flags().BoolVar(&demangleTree, "tree", false, "print the component tree as JSON")
}

func runDemangle(cmd *cobra.Command, args []string) error {
	if len(args) > 0 {
		for _, arg := range args {
			if err := demangleOne(arg); err != nil {
				return err
			}
		}
		return nil
	}

	scanner := bufio.NewScanner(cmd.InOrStdin())
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		// Whole-line mode when each line is a single symbol
		if demangleType || demangleStrict || demangleTree {
			if sym := strings.TrimSpace(line); sym != "" {
				if err := demangleOne(sym); err != nil {
					return err
				}
			}
			continue
		}
		if demangleStripUnderscore {
			line = stripUnderscores(line)
		}
		fmt.Fprintln(output, demangle.Filter(line))
	}
	return errors.Wrap(scanner.Err(), "failed to read input")
}

// demangleOne decodes a single name and prints the result.
func demangleOne(sym string) error {
	name := sym
	if demangleStripUnderscore && strings.HasPrefix(name, "__Z") {
		name = name[1:]
	}

	version := ""
	if !demangleNoUndecorate {
		plain := demangle.Undecorate(name)
		version = name[len(plain):]
		name = plain
	}

	var (
		node demangle.Node
		err  error
	)
	switch {
	case demangleType:
		node, err = demangle.UnmangleTypeToNode(name)
	case demangle.IsMangled(name):
		node, err = demangle.UnmangleToNode(name)
	default:
		fmt.Fprintln(output, sym)
		return nil
	}

	if err != nil {
		log.V(1).Info("cannot decode symbol", "symbol", sym, "reason", demangle.Reason(err))
		if demangleStrict {
			return errors.Wrapf(err, "failed to decode %s", sym)
		}
		fmt.Fprintln(output, sym)
		return nil
	}

	if demangleTree {
		enc := json.NewEncoder(output)
		enc.SetIndent("", "  ")
		return enc.Encode(newTreeNode(node))
	}

	fmt.Fprintln(output, node.String()+version)
	return nil
}

var underscoredToken = regexp.MustCompile(`(^|[^A-Za-z0-9_$.])_(_Z)`)

func stripUnderscores(line string) string {
	return underscoredToken.ReplaceAllString(line, "${1}${2}")
}
