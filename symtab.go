package macho

import (
	"encoding/binary"

	"github.com/chinnason/OpenCorePkg/types"
)

// resolveSymtab implements first-use resolution of the symbol table: find and
// validate LC_SYMTAB, then decode symbolTable into a new slice and slice out
// stringTable aliasing c.buf. It is idempotent and memoized; repeated calls
// after a failed
// resolution keep returning the same failure without re-walking load
// commands.
func (c *Context) resolveSymtab() bool {
	if c.symtabResolved {
		return c.symtabCmd != nil
	}
	c.symtabResolved = true

	for lc, off := c.firstLoadCommand(); lc != nil; lc, off = c.nextLoadCommand(lc, off) {
		if lc.Cmd != types.LC_SYMTAB {
			continue
		}
		if lc.CmdSize < types.SymtabCmdSize {
			return false
		}
		raw, ok := c.bytesAt(uint64(off), types.SymtabCmdSize)
		if !ok {
			return false
		}
		cmd := readSymtabCmd(raw)

		symBytes, ok := c.bytesAtN(uint64(cmd.SymOff), cmd.NSyms, types.Nlist64Size)
		if !ok {
			return false
		}
		strBytes, ok := c.bytesAt(uint64(cmd.StrOff), uint64(cmd.StrSize))
		if !ok {
			return false
		}

		symbols := make([]types.Nlist64, cmd.NSyms)
		for i := range symbols {
			symbols[i] = readNlist64(symBytes[i*types.Nlist64Size:])
		}

		c.symtabCmd = &cmd
		c.symbolTable = symbols
		c.stringTable = strBytes
		return true
	}
	return false
}

// resolveDysymtab implements the DYSYMTAB half of first-use
// resolution, caching indirectSymbolTable and the local/extern relocation
// arrays consumed by RelocationIndex.
func (c *Context) resolveDysymtab() bool {
	if c.dysymtabResolved {
		return c.dysymtabCmd != nil
	}
	c.dysymtabResolved = true

	for lc, off := c.firstLoadCommand(); lc != nil; lc, off = c.nextLoadCommand(lc, off) {
		if lc.Cmd != types.LC_DYSYMTAB {
			continue
		}
		if lc.CmdSize < types.DysymtabCmdSize {
			return false
		}
		raw, ok := c.bytesAt(uint64(off), types.DysymtabCmdSize)
		if !ok {
			return false
		}
		cmd := readDysymtabCmd(raw)

		indirectBytes, ok := c.bytesAtN(uint64(cmd.IndirectSymOff), cmd.NIndirectSyms, 4)
		if !ok {
			return false
		}
		indirect := make([]uint32, cmd.NIndirectSyms)
		for i := range indirect {
			indirect[i] = binary.LittleEndian.Uint32(indirectBytes[i*4:])
		}

		localRelBytes, ok := c.bytesAtN(uint64(cmd.LocRelOff), cmd.NLocRel, types.RelocationInfoSize)
		if !ok {
			return false
		}
		externRelBytes, ok := c.bytesAtN(uint64(cmd.ExtRelOff), cmd.NExtRel, types.RelocationInfoSize)
		if !ok {
			return false
		}

		c.dysymtabCmd = &cmd
		c.indirectSymbolTable = indirect
		c.localRelocations = decodeRelocations(localRelBytes, cmd.NLocRel)
		c.externRelocations = decodeRelocations(externRelBytes, cmd.NExtRel)
		return true
	}
	return false
}

func decodeRelocations(b []byte, n uint32) []types.RelocationInfo {
	out := make([]types.RelocationInfo, n)
	for i := range out {
		out[i] = readRelocationInfo(b[i*types.RelocationInfoSize:])
	}
	return out
}

// bytesAtN is bytesAt generalized to an element count, guarding the
// count*elemSize multiplication the way bounds.InRangeN does.
func (c *Context) bytesAtN(offset uint64, count uint32, elemSize uint64) ([]byte, bool) {
	n := uint64(count)
	if elemSize != 0 && n > (^uint64(0))/elemSize {
		return nil, false
	}
	return c.bytesAt(offset, n*elemSize)
}

// SymbolByIndex returns &symbol_table[i], or nil iff i >= nsyms.
func (c *Context) SymbolByIndex(i uint32) *types.Nlist64 {
	if !c.resolveSymtab() {
		return nil
	}
	if i >= uint32(len(c.symbolTable)) {
		return nil
	}
	return &c.symbolTable[i]
}

// SymbolName resolves sym.Name against the string table, failing iff n_strx
// is out of range or the string is not NUL-terminated within bounds.
func (c *Context) SymbolName(sym *types.Nlist64) (string, bool) {
	if !c.resolveSymtab() {
		return "", false
	}
	return c.cString(sym.Name)
}

// IndirectSymbolName resolves indirectSymbolTable[i] to a symbol-table
// index, then to a name, applying the same rules as SymbolName.
func (c *Context) IndirectSymbolName(i uint32) (string, bool) {
	if !c.resolveDysymtab() {
		return "", false
	}
	if i >= uint32(len(c.indirectSymbolTable)) {
		return "", false
	}
	symIdx := c.indirectSymbolTable[i]
	sym := c.SymbolByIndex(symIdx)
	if sym == nil {
		return "", false
	}
	return c.SymbolName(sym)
}

func (c *Context) cString(strx uint32) (string, bool) {
	if uint64(strx) >= uint64(len(c.stringTable)) {
		return "", false
	}
	rest := c.stringTable[strx:]
	for i, b := range rest {
		if b == 0 {
			return string(rest[:i]), true
		}
	}
	return "", false
}

// SymbolIsSection reports whether sym is defined in a numbered section.
func SymbolIsSection(sym *types.Nlist64) bool {
	return sym.Type&types.N_TYPE == types.N_SECT
}

// SymbolIsDefined reports whether sym is defined: (n_type & N_TYPE) !=
// N_UNDF. A common symbol also carries N_UNDF (with a nonzero n_value), so
// excluding N_UNDF excludes common symbols too without a separate check.
func SymbolIsDefined(sym *types.Nlist64) bool {
	return sym.Type&types.N_TYPE != types.N_UNDF
}

// SymbolIsLocalDefined combines SymbolIsDefined with a dysymtab range check
// that sym is within the local or extdef ranges (not the undef range). With
// no DYSYMTAB present, per the pinned Open Question this falls back to
// "defined and n_sect is a valid 1-based section index".
func (c *Context) SymbolIsLocalDefined(sym *types.Nlist64) bool {
	if !SymbolIsDefined(sym) {
		return false
	}
	if !c.resolveDysymtab() {
		return sym.Sect != types.NoSect && c.SectionByIndex(sym.Sect) != nil
	}
	idx := c.symbolIndex(sym)
	if idx < 0 {
		return false
	}
	i := uint32(idx)
	inLocal := i >= c.dysymtabCmd.ILocalSym && i < c.dysymtabCmd.ILocalSym+c.dysymtabCmd.NLocalSym
	inExtDef := i >= c.dysymtabCmd.IExtDefSym && i < c.dysymtabCmd.IExtDefSym+c.dysymtabCmd.NExtDefSym
	return inLocal || inExtDef
}

// symbolIndex finds sym's position in symbolTable by pointer identity. Every
// *Nlist64 this package hands out (SymbolByIndex, LocalDefinedSymbolByName,
// the relocation lookups) aliases a slot in symbolTable, so this never falls
// back to a by-value scan.
func (c *Context) symbolIndex(sym *types.Nlist64) int {
	for i := range c.symbolTable {
		if &c.symbolTable[i] == sym {
			return i
		}
	}
	return -1
}

// LocalDefinedSymbolByName linear-scans symbol-table order for the first
// symbol whose name equals name and is locally defined.
func (c *Context) LocalDefinedSymbolByName(name string) *types.Nlist64 {
	if !c.resolveSymtab() {
		return nil
	}
	for i := range c.symbolTable {
		sym := &c.symbolTable[i]
		n, ok := c.SymbolName(sym)
		if !ok || n != name {
			continue
		}
		if c.SymbolIsLocalDefined(sym) {
			return sym
		}
	}
	return nil
}

// IsSymbolValueSane reports whether sym is absolute, or its n_value lies
// within [vmaddr, vmaddr+vmsize) of some segment in the image.
func (c *Context) IsSymbolValueSane(sym *types.Nlist64) bool {
	if sym.Type&types.N_TYPE == types.N_ABS {
		return true
	}
	for seg := c.NextSegment(nil); seg != nil; seg = c.NextSegment(seg) {
		if sym.Value >= seg.VMAddr && sym.Value-seg.VMAddr < seg.VMSize {
			return true
		}
	}
	return false
}
