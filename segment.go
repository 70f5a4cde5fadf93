package macho

import "github.com/chinnason/OpenCorePkg/types"

// NextSegment walks load commands, segment by segment: given the
// previously-returned segment (or nil to start over), it continues until
// until it finds the next LC_SEGMENT_64 whose declared section array
// (numsects * sizeof(section_64), immediately following the command) lies
// inside the load-command region. A segment whose trailing section array
// does not fit is skipped rather than surfaced, since the caller has no
// bounds-safe way to act on it.
func (c *Context) NextSegment(prev *types.Segment64) *types.Segment64 {
	lc, off := c.loadCommandAfter(prev)
	for ; lc != nil; lc, off = c.nextLoadCommand(lc, off) {
		if lc.Cmd != types.LC_SEGMENT_64 {
			continue
		}
		if lc.CmdSize < types.Segment64Size {
			continue
		}
		raw, ok := c.bytesAt(uint64(off), types.Segment64Size)
		if !ok {
			continue
		}
		seg := readSegment64(raw)
		if !c.segmentSectionsFit(&seg, off) {
			continue
		}
		return &seg
	}
	return nil
}

// loadCommandAfter resolves prev (a Segment64 previously handed out by
// NextSegment) back to its load_command offset so iteration can resume from
// there, or starts from the top when prev is nil. Segment64 does not carry
// its own file offset, so this walks the load commands from the start and
// matches by identity of the decoded fields; a Context is small
// enough per image that this is a non-issue in practice, and it keeps
// Segment64 itself a plain value type with no back-reference.
func (c *Context) loadCommandAfter(prev *types.Segment64) (*types.LoadCommand, int) {
	lc, off := c.firstLoadCommand()
	if prev == nil {
		return lc, off
	}
	for ; lc != nil; lc, off = c.nextLoadCommand(lc, off) {
		if lc.Cmd != types.LC_SEGMENT_64 || lc.CmdSize < types.Segment64Size {
			continue
		}
		raw, ok := c.bytesAt(uint64(off), types.Segment64Size)
		if !ok {
			continue
		}
		if sameSegment(readSegment64(raw), *prev) {
			return c.nextLoadCommand(lc, off)
		}
	}
	return nil, 0
}

func sameSegment(a, b types.Segment64) bool {
	return a.SegName == b.SegName && a.VMAddr == b.VMAddr && a.FileOff == b.FileOff
}

func (c *Context) segmentSectionsFit(seg *types.Segment64, segOff int) bool {
	need := uint64(seg.NumSects) * types.Section64Size
	sectOff := uint64(segOff) + types.Segment64Size
	end := uint64(c.lcBase + c.lcTotal)
	if sectOff+need < sectOff {
		return false
	}
	return sectOff+need <= end
}

// SegmentByName returns the first segment whose segname matches name, or nil.
func (c *Context) SegmentByName(name string) *types.Segment64 {
	for seg := c.NextSegment(nil); seg != nil; seg = c.NextSegment(seg) {
		if types.Name16Equal(seg.SegName, name) {
			return seg
		}
	}
	return nil
}

// NextSection returns the section immediately after prev within seg, or the
// first section of seg when prev is nil. index is 0-based within seg.
func (c *Context) NextSection(seg *types.Segment64, prev *types.Section64) *types.Section64 {
	segOff, ok := c.segmentOffset(seg)
	if !ok {
		return nil
	}
	start := 0
	if prev != nil {
		idx, found := c.sectionIndexWithin(seg, segOff, prev)
		if !found {
			return nil
		}
		start = idx + 1
	}
	if start >= int(seg.NumSects) {
		return nil
	}
	raw, ok := c.bytesAt(uint64(segOff)+types.Segment64Size+uint64(start)*types.Section64Size, types.Section64Size)
	if !ok {
		return nil
	}
	sect := readSection64(raw)
	return &sect
}

func (c *Context) segmentOffset(seg *types.Segment64) (int, bool) {
	lc, off := c.firstLoadCommand()
	for ; lc != nil; lc, off = c.nextLoadCommand(lc, off) {
		if lc.Cmd != types.LC_SEGMENT_64 || lc.CmdSize < types.Segment64Size {
			continue
		}
		raw, ok := c.bytesAt(uint64(off), types.Segment64Size)
		if !ok {
			continue
		}
		if sameSegment(readSegment64(raw), *seg) {
			return off, true
		}
	}
	return 0, false
}

func (c *Context) sectionIndexWithin(seg *types.Segment64, segOff int, prev *types.Section64) (int, bool) {
	for i := 0; i < int(seg.NumSects); i++ {
		raw, ok := c.bytesAt(uint64(segOff)+types.Segment64Size+uint64(i)*types.Section64Size, types.Section64Size)
		if !ok {
			return 0, false
		}
		s := readSection64(raw)
		if s.SectName == prev.SectName && s.SegName == prev.SegName && s.Addr == prev.Addr {
			return i, true
		}
	}
	return 0, false
}

// SectionByName returns the named section within the named segment, or nil.
func (c *Context) SectionByName(segName, sectName string) *types.Section64 {
	seg := c.SegmentByName(segName)
	if seg == nil {
		return nil
	}
	return c.SegmentSectionByName(seg, sectName)
}

// SegmentSectionByName returns the named section within an already-resolved
// segment, or nil.
func (c *Context) SegmentSectionByName(seg *types.Segment64, sectName string) *types.Section64 {
	for s := c.NextSection(seg, nil); s != nil; s = c.NextSection(seg, s) {
		if types.Name16Equal(s.SectName, sectName) {
			return s
		}
	}
	return nil
}

// SectionByIndex returns the section at the given 1-based global index, the
// numbering load commands and symbol n_sect fields use, or nil if idx is out
// of range.
func (c *Context) SectionByIndex(idx uint8) *types.Section64 {
	if idx == 0 {
		return nil
	}
	target := int(idx)
	n := 0
	for seg := c.NextSegment(nil); seg != nil; seg = c.NextSegment(seg) {
		for s := c.NextSection(seg, nil); s != nil; s = c.NextSection(seg, s) {
			n++
			if n == target {
				return s
			}
		}
	}
	return nil
}

// SectionByAddress returns the section containing addr, or nil.
func (c *Context) SectionByAddress(addr uint64) *types.Section64 {
	for seg := c.NextSegment(nil); seg != nil; seg = c.NextSegment(seg) {
		if addr < seg.VMAddr || addr-seg.VMAddr >= seg.VMSize {
			continue
		}
		for s := c.NextSection(seg, nil); s != nil; s = c.NextSection(seg, s) {
			if addr >= s.Addr && addr-s.Addr < s.Size {
				return s
			}
		}
	}
	return nil
}

// SegmentsByProtection iterates segments whose initprot matches want, e.g.
// executable text or writable data, per SPEC_FULL.md's supplemental
// accessor for kext-patcher callers that need to enumerate patchable ranges
// without re-deriving a protection filter at every call site.
func (c *Context) SegmentsByProtection(prev *types.Segment64, want types.VmProtection) *types.Segment64 {
	for seg := c.NextSegment(prev); seg != nil; seg = c.NextSegment(seg) {
		if seg.InitProt&want == want {
			return seg
		}
	}
	return nil
}
