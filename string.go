package macho

import (
	"fmt"
	"strings"

	"github.com/chinnason/OpenCorePkg/types"
)

// String renders a short diagnostic dump of the header and load commands.
// It builds a formatted string and runs only on explicit request (test
// failure messages, the CLI's -dump flag), never on the lookup path.
func (c *Context) String() string {
	var b strings.Builder
	hdr := c.MachHeader()
	fmt.Fprintf(&b, "magic=%s cpu=%s type=%s ncmds=%d sizeofcmds=%d flags=%s\n",
		hdr.Magic, hdr.CPU, hdr.Type, hdr.NCommands, hdr.SizeCommands, hdr.Flags)

	if u := c.UUID(); u != nil {
		fmt.Fprintf(&b, "uuid=%s\n", u)
	}

	for lc, off := c.firstLoadCommand(); lc != nil; lc, off = c.nextLoadCommand(lc, off) {
		fmt.Fprintf(&b, "  %-14s cmdsize=%-4d", lc.Cmd, lc.CmdSize)
		if lc.Cmd == types.LC_SEGMENT_64 {
			if raw, ok := c.bytesAt(uint64(off), types.Segment64Size); ok {
				seg := readSegment64(raw)
				fmt.Fprintf(&b, " %-16s vmaddr=%#x vmsize=%#x prot=%s",
					types.Name16String(seg.SegName), seg.VMAddr, seg.VMSize, seg.InitProt)
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}
