package macho

import (
	"encoding/binary"

	"github.com/chinnason/OpenCorePkg/cxxname"
	"github.com/chinnason/OpenCorePkg/types"
)

// SymbolIsSMCP and SymbolIsMCP resolve sym's name and apply cxxname's
// pattern matching, requiring the symbol to be defined first.
func (c *Context) SymbolIsSMCP(sym *types.Nlist64) bool {
	if !SymbolIsDefined(sym) {
		return false
	}
	name, ok := c.SymbolName(sym)
	if !ok {
		return false
	}
	_, ok = cxxname.ClassNameFromSMCP(name, len(name)+1)
	return ok
}

func (c *Context) SymbolIsMCP(sym *types.Nlist64) bool {
	if !SymbolIsDefined(sym) {
		return false
	}
	name, ok := c.SymbolName(sym)
	if !ok {
		return false
	}
	_, ok = cxxname.ClassNameFromMCP(name, len(name)+1)
	return ok
}

// SymbolIsVTable reports whether sym is defined and its name starts with
// "__ZTV" and is not a Meta VTable.
func (c *Context) SymbolIsVTable(sym *types.Nlist64) bool {
	if !SymbolIsDefined(sym) {
		return false
	}
	name, ok := c.SymbolName(sym)
	if !ok {
		return false
	}
	return cxxname.IsVTableName(name)
}

// MetaclassSymbolFromSMCP derives the class name from smcp's SMCP name,
// synthesizes the MCP name, and looks it up via LocalDefinedSymbolByName.
func (c *Context) MetaclassSymbolFromSMCP(smcp *types.Nlist64) *types.Nlist64 {
	name, ok := c.SymbolName(smcp)
	if !ok {
		return nil
	}
	class, ok := cxxname.ClassNameFromSMCP(name, len(name)+1)
	if !ok {
		return nil
	}
	mcpName, ok := cxxname.MCPNameFromClassName(class, len(class)+32)
	if !ok {
		return nil
	}
	return c.LocalDefinedSymbolByName(mcpName)
}

// VTableSymbolsFromSMCP derives class name C from smcp, then looks up
// VTableName(C) and MetaVTableName(C); both must resolve.
func (c *Context) VTableSymbolsFromSMCP(smcp *types.Nlist64) (vtable, metaVTable *types.Nlist64, ok bool) {
	name, ok := c.SymbolName(smcp)
	if !ok {
		return nil, nil, false
	}
	class, ok := cxxname.ClassNameFromSMCP(name, len(name)+1)
	if !ok {
		return nil, nil, false
	}
	vtName, ok := cxxname.VTableNameFromClassName(class, len(class)+32)
	if !ok {
		return nil, nil, false
	}
	metaName, ok := cxxname.MetaVTableNameFromClassName(class, len(class)+32)
	if !ok {
		return nil, nil, false
	}
	vtable = c.LocalDefinedSymbolByName(vtName)
	metaVTable = c.LocalDefinedSymbolByName(metaName)
	if vtable == nil || metaVTable == nil {
		return nil, nil, false
	}
	return vtable, metaVTable, true
}

// VTableEntries is the supplemental companion to cxxname.VTableNumberOfEntries:
// a kext patcher's actual next step after counting a vtable's entries is
// walking them, so this decodes the same entries it counts.
func (c *Context) VTableEntries(vtableSectionData []byte) ([]uint64, bool) {
	n := cxxname.VTableNumberOfEntries(vtableSectionData)
	const wordSize = 8
	const reservedWords = 2
	need := (reservedWords + n) * wordSize
	if len(vtableSectionData) < need {
		return nil, false
	}
	entries := make([]uint64, n)
	body := vtableSectionData[reservedWords*wordSize:]
	for i := range entries {
		entries[i] = binary.LittleEndian.Uint64(body[i*wordSize:])
	}
	return entries, true
}
