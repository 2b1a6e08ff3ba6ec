// Package symtab reads symbol tables and DWARF linkage names from ELF files
// and presents them with their C++ names decoded.
package symtab

import (
	"fmt"

	"github.com/pkg/errors"
)

// Sentinel errors for common conditions.
var (
	// ErrNotELF indicates the file is not a valid ELF object.
	ErrNotELF = errors.New("symtab: not a valid ELF file")

	// ErrNoSymbols indicates the file has neither .symtab nor .dynsym.
	ErrNoSymbols = errors.New("symtab: no symbol table")

	// ErrSymbolNotFound indicates a symbol was not found.
	ErrSymbolNotFound = errors.New("symtab: symbol not found")

	// ErrNoDWARF indicates the file carries no .debug_info section.
	ErrNoDWARF = errors.New("symtab: no DWARF data")

	// ErrFileClosed indicates the file has been closed.
	ErrFileClosed = errors.New("symtab: file is closed")
)

// ParseError provides detailed information about parsing failures.
type ParseError struct {
	Section string // Section name where error occurred
	Offset  int64  // Byte offset within section
	Message string // Description of the error
	Err     error  // Underlying error, if any
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("symtab: parse error in %s at offset 0x%x: %s: %v",
			e.Section, e.Offset, e.Message, e.Err)
	}
	return fmt.Sprintf("symtab: parse error in %s at offset 0x%x: %s",
		e.Section, e.Offset, e.Message)
}

func (e *ParseError) Unwrap() error { return e.Err }
