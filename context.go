// Package macho implements a bounds-checked Mach-O 64-bit parsing and
// symbol-analysis core for a firmware/bootloader kext patcher. Every range
// is checked against the caller-supplied file buffer before it is read.
// Headers, segments and sections are decoded into values on each call; the
// symbol and relocation tables are decoded once into slices owned by the
// Context; names are returned as Go strings copied out of the string table.
// The package therefore allocates, and the records it returns do not alias
// the file buffer. The cxxname helpers return Go strings and use their cap
// argument only to check that a result plus its trailing NUL would fit; they
// write into no caller-supplied buffer. See SPEC_FULL.md for the full module
// map this package implements.
package macho

import (
	"fmt"

	"github.com/chinnason/OpenCorePkg/bounds"
	"github.com/chinnason/OpenCorePkg/types"
)

// FormatError is returned when the underlying file violates one of this
// core's invariants: a bad magic number, an out-of-bounds offset, an
// oversized count, or similar. Offset is the byte offset in the file where
// the violation was detected, or -1 when not meaningful.
type FormatError struct {
	Offset  int64
	Message string
	Value   any
}

func (e *FormatError) Error() string {
	if e.Value != nil {
		return fmt.Sprintf("macho: %s (value %#v) at offset %#x", e.Message, e.Value, e.Offset)
	}
	return fmt.Sprintf("macho: %s at offset %#x", e.Message, e.Offset)
}

// Context is an opaque handle over one validated Mach-O 64 image. buf and
// stringTable alias the caller's buffer; header and the symbol, indirect
// symbol and relocation tables are decoded copies. The lazily-resolved
// tables are the only thing ever written after NewContext returns; every
// other field is fixed at construction.
type Context struct {
	buf []byte

	header  types.FileHeader
	lcBase  int // offset of the first load command
	lcTotal int // sizeofcmds

	symtabResolved bool
	symtabCmd      *types.SymtabCmd
	symbolTable    []types.Nlist64
	stringTable    []byte

	dysymtabResolved    bool
	dysymtabCmd         *types.DysymtabCmd
	indirectSymbolTable []uint32 // indices into symbolTable, one per indirect symbol slot
	localRelocations    []types.RelocationInfo
	externRelocations   []types.RelocationInfo
}

// NewContext validates buf as a Mach-O 64 image and returns a Context
// borrowing it:
// it reads and sanity-checks the header and the load-command region but
// does not walk load commands yet — SYMTAB/DYSYMTAB/UUID are discovered
// lazily on first use, mirroring the source OC_MACHO_CONTEXT's behavior.
func NewContext(buf []byte) (*Context, error) {
	fileSize := uint64(len(buf))
	if !bounds.InRange(fileSize, 0, types.FileHeaderSize64) {
		return nil, &FormatError{0, "file too small for a mach_header_64", len(buf)}
	}

	hdr := readFileHeader(buf)
	if hdr.Magic != types.Magic64 {
		return nil, &FormatError{0, "invalid magic number", uint32(hdr.Magic)}
	}
	if !hdr.CPU.Is64() {
		return nil, &FormatError{0, "cputype is not 64-bit", uint32(hdr.CPU)}
	}
	if hdr.SizeCommands%8 != 0 {
		return nil, &FormatError{types.FileHeaderSize64, "sizeofcmds is not a multiple of 8", hdr.SizeCommands}
	}
	lcBase := types.FileHeaderSize64
	if !bounds.InRange(fileSize, uint64(lcBase), uint64(hdr.SizeCommands)) {
		return nil, &FormatError{types.FileHeaderSize64, "sizeofcmds overflows the file", hdr.SizeCommands}
	}

	return &Context{
		buf:     buf,
		header:  hdr,
		lcBase:  lcBase,
		lcTotal: int(hdr.SizeCommands),
	}, nil
}

// MachHeader returns the validated file header.
func (c *Context) MachHeader() *types.FileHeader { return &c.header }

// FileSize returns the length of the underlying buffer.
func (c *Context) FileSize() int { return len(c.buf) }

// LastAddress returns the maximum of vmaddr+vmsize across all segments, 0 if
// there are none, saturating at math.MaxUint64 rather than overflowing.
func (c *Context) LastAddress() uint64 {
	var last uint64
	for seg := c.NextSegment(nil); seg != nil; seg = c.NextSegment(seg) {
		end, overflowed := addSaturating(seg.VMAddr, seg.VMSize)
		if overflowed || end > last {
			last = end
		}
	}
	return last
}

// UUID returns the payload of the first LC_UUID command, or nil if absent or
// malformed.
func (c *Context) UUID() *types.UUID {
	for lc, off := c.firstLoadCommand(); lc != nil; lc, off = c.nextLoadCommand(lc, off) {
		if lc.Cmd != types.LC_UUID {
			continue
		}
		if lc.CmdSize < types.UUIDCmdSize {
			return nil
		}
		raw, ok := c.bytesAt(uint64(off), types.UUIDCmdSize)
		if !ok {
			return nil
		}
		cmd := readUUIDCmd(raw)
		return &cmd.UUID
	}
	return nil
}

func addSaturating(a, b uint64) (sum uint64, overflowed bool) {
	sum = a + b
	if sum < a {
		return ^uint64(0), true
	}
	return sum, false
}
