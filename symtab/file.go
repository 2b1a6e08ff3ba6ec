package symtab

import (
	"debug/elf"
	"io"
	"sync"

	"github.com/blacktop/go-dwarf"
	"github.com/pkg/errors"
)

// File represents an opened ELF file.
// It is safe for concurrent read access after opening.
type File struct {
	elf    *elf.File
	closer io.Closer
	closed bool
	mu     sync.RWMutex

	// Cached data
	symbolTable     *SymbolTable
	symbolTableOnce sync.Once
	symbolTableErr  error

	sectionHeaders     *SectionHeaders
	sectionHeadersOnce sync.Once

	dwarfData     *dwarf.Data
	dwarfDataOnce sync.Once
	dwarfDataErr  error
}

// FileInfo contains metadata about the ELF file.
type FileInfo struct {
	Class        elf.Class
	ByteOrder    elf.Data
	OSABI        elf.OSABI
	Type         elf.Type
	Machine      elf.Machine
	Entry        uint64
	SectionCount int
}

// Open opens an ELF file from the given path.
func Open(path string) (*File, error) {
	ef, err := elf.Open(path)
	if err != nil {
		return nil, wrapOpenError(err)
	}
	return &File{elf: ef, closer: ef}, nil
}

// NewFile opens an ELF image from an io.ReaderAt.
// The caller keeps ownership of r; Close does not close it.
func NewFile(r io.ReaderAt) (*File, error) {
	ef, err := elf.NewFile(r)
	if err != nil {
		return nil, wrapOpenError(err)
	}
	return &File{elf: ef}, nil
}

func wrapOpenError(err error) error {
	var fe *elf.FormatError
	if errors.As(err, &fe) {
		return errors.Wrap(ErrNotELF, fe.Error())
	}
	return errors.Wrap(err, "symtab: failed to open file")
}

// Close releases resources associated with the file.
func (f *File) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return nil
	}

	f.closed = true
	if f.closer != nil {
		return f.closer.Close()
	}
	return nil
}

func (f *File) checkOpen() error {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if f.closed {
		return ErrFileClosed
	}
	return nil
}

// Info returns metadata about the ELF file.
func (f *File) Info() (*FileInfo, error) {
	if err := f.checkOpen(); err != nil {
		return nil, err
	}

	return &FileInfo{
		Class:        f.elf.Class,
		ByteOrder:    f.elf.Data,
		OSABI:        f.elf.OSABI,
		Type:         f.elf.Type,
		Machine:      f.elf.Machine,
		Entry:        f.elf.Entry,
		SectionCount: len(f.elf.Sections),
	}, nil
}

// Symbols returns a symbol table over .symtab and .dynsym.
func (f *File) Symbols() (*SymbolTable, error) {
	if err := f.checkOpen(); err != nil {
		return nil, err
	}

	f.symbolTableOnce.Do(func() {
		f.symbolTable, f.symbolTableErr = f.loadSymbolTable()
	})

	if f.symbolTableErr != nil {
		return nil, f.symbolTableErr
	}
	return f.symbolTable, nil
}

func (f *File) loadSymbolTable() (*SymbolTable, error) {
	static, err := f.elf.Symbols()
	if err != nil && !errors.Is(err, elf.ErrNoSymbols) {
		return nil, &ParseError{Section: ".symtab", Message: "failed to read symbols", Err: err}
	}

	dynamic, err := f.elf.DynamicSymbols()
	if err != nil && !errors.Is(err, elf.ErrNoSymbols) {
		return nil, &ParseError{Section: ".dynsym", Message: "failed to read symbols", Err: err}
	}

	if len(static) == 0 && len(dynamic) == 0 {
		return nil, ErrNoSymbols
	}
	return newSymbolTable(static, dynamic), nil
}
