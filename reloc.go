package macho

import "github.com/chinnason/OpenCorePkg/types"

// SymbolByExternRelocationOffset scans
// externRelocations for an entry with r_extern=1 and r_address==address. On
// a match it reports exists=true and hands back &symbolTable[r_symbolnum],
// or nil when r_symbolnum is itself out of range — the entry was found, the
// symbol it names was not, which the pinned Open-Question decision treats as
// (true, nil) rather than a resolution failure.
func (c *Context) SymbolByExternRelocationOffset(address uint32) (exists bool, symbol *types.Nlist64) {
	if !c.resolveDysymtab() || !c.resolveSymtab() {
		return false, nil
	}
	for i := range c.externRelocations {
		r := c.externRelocations[i]
		if !r.Extern() || r.Address != address {
			continue
		}
		if r.Symbolnum() >= uint32(len(c.symbolTable)) {
			return true, nil
		}
		return true, &c.symbolTable[r.Symbolnum()]
	}
	return false, nil
}

// RelocationIsPair reports whether t is the first half of a relocation pair
// (X86_64_RELOC_SUBTRACTOR, which must be followed by an UNSIGNED).
func RelocationIsPair(t uint8) bool {
	return t == types.X86_64_RELOC_SUBTRACTOR
}

// IsRelocationPairType reports whether t is the second half of a
// relocation pair (X86_64_RELOC_UNSIGNED).
func IsRelocationPairType(t uint8) bool {
	return t == types.X86_64_RELOC_UNSIGNED
}

// PreserveRelocation reports whether a relocation of type t has a
// displacement that survives prelinking to an arbitrary load address.
func PreserveRelocation(t uint8) bool {
	return t == types.X86_64_RELOC_UNSIGNED || t == types.X86_64_RELOC_BRANCH
}
