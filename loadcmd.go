package macho

import (
	"github.com/chinnason/OpenCorePkg/bounds"
	"github.com/chinnason/OpenCorePkg/types"
)

// firstLoadCommand and nextLoadCommand implement the
// LoadCommandIterator: they walk the [lcBase, lcBase+lcTotal) region one
// load_command at a time, validating at each step that cmdsize is at least
// the 8-byte load_command header and that the command does not run past the
// end of the region. Unknown cmd values are returned to the caller like any
// other command; it is up to the caller (UUID, NextSegment, ...) to skip the
// ones it does not care about.
func (c *Context) firstLoadCommand() (*types.LoadCommand, int) {
	return c.loadCommandAt(c.lcBase)
}

func (c *Context) nextLoadCommand(prev *types.LoadCommand, prevOff int) (*types.LoadCommand, int) {
	if prev == nil {
		return nil, 0
	}
	return c.loadCommandAt(prevOff + int(prev.CmdSize))
}

func (c *Context) loadCommandAt(off int) (*types.LoadCommand, int) {
	end := c.lcBase + c.lcTotal
	if off < c.lcBase || off+types.LoadCommandSize > end {
		return nil, 0
	}
	raw, ok := c.bytesAt(uint64(off), types.LoadCommandSize)
	if !ok {
		return nil, 0
	}
	lc := readLoadCommand(raw)
	if lc.CmdSize < types.LoadCommandSize {
		return nil, 0
	}
	if off+int(lc.CmdSize) > end {
		return nil, 0
	}
	return &lc, off
}

// bytesAt returns the length-byte slice of c.buf starting at offset, or
// ok=false if that range does not lie entirely within the buffer. The
// returned slice aliases c.buf; callers must not retain it past c.buf's
// lifetime.
func (c *Context) bytesAt(offset, length uint64) (raw []byte, ok bool) {
	if !bounds.InRange(uint64(len(c.buf)), offset, length) {
		return nil, false
	}
	return c.buf[offset : offset+length], true
}
