package macho

import (
	"math/bits"

	"github.com/chinnason/OpenCorePkg/types"
)

// RelocateSymbol rebases symbol in place by adding linkAddress: absolute symbols pass through
// unchanged; everything else gets n_value += linkAddress, reported as a
// failure (symbol left untouched) on 64-bit overflow. The Context itself is
// never mutated — only the caller-owned symbol record.
func (c *Context) RelocateSymbol(linkAddress uint64, symbol *types.Nlist64) bool {
	if symbol.Type&types.N_TYPE == types.N_ABS {
		return true
	}
	sum, carry := bits.Add64(symbol.Value, linkAddress, 0)
	if carry != 0 {
		return false
	}
	symbol.Value = sum
	return true
}
