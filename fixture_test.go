package macho_test

import (
	"encoding/binary"

	"github.com/chinnason/OpenCorePkg/types"
)

// machoBuilder assembles a minimal, byte-exact Mach-O 64 image for tests.
// Real kext fixtures are neither reproducible nor small enough to check in,
// so every scenario in this package builds its own buffer field by field —
// the same records decode.go itself decodes.
type machoBuilder struct {
	buf []byte
}

func newMachoBuilder() *machoBuilder {
	b := &machoBuilder{buf: make([]byte, types.FileHeaderSize64)}
	return b
}

func (b *machoBuilder) putU16(off int, v uint16) { binary.LittleEndian.PutUint16(b.buf[off:], v) }
func (b *machoBuilder) putU32(off int, v uint32) { binary.LittleEndian.PutUint32(b.buf[off:], v) }
func (b *machoBuilder) putU64(off int, v uint64) { binary.LittleEndian.PutUint64(b.buf[off:], v) }

func (b *machoBuilder) grow(n int) int {
	off := len(b.buf)
	b.buf = append(b.buf, make([]byte, n)...)
	return off
}

func (b *machoBuilder) header(ncmds, sizeofcmds uint32) {
	b.putU32(0, uint32(types.Magic64))
	b.putU32(4, uint32(types.CPUAmd64))
	b.putU32(8, uint32(types.CPUSubtypeX8664All))
	b.putU32(12, uint32(types.MH_KEXT_BUNDLE))
	b.putU32(16, ncmds)
	b.putU32(20, sizeofcmds)
	b.putU32(24, 0)
	b.putU32(28, 0)
}

// addSegment appends one LC_SEGMENT_64 with a single trailing section and
// returns the load command's offset.
func (b *machoBuilder) addSegment(segName string, vmaddr, vmsize, fileoff, filesize uint64, sectName string, sectAddr, sectSize uint64) int {
	const cmdSize = types.Segment64Size + types.Section64Size
	off := b.grow(cmdSize)
	b.putU32(off+0, uint32(types.LC_SEGMENT_64))
	b.putU32(off+4, cmdSize)
	putName16(b.buf[off+8:off+24], segName)
	b.putU64(off+24, vmaddr)
	b.putU64(off+32, vmsize)
	b.putU64(off+40, fileoff)
	b.putU64(off+48, filesize)
	b.putU32(off+56, uint32(7)) // maxprot rwx
	b.putU32(off+60, uint32(7)) // initprot rwx
	b.putU32(off+64, 1)         // nsects
	b.putU32(off+68, 0)         // flags

	sOff := off + types.Segment64Size
	putName16(b.buf[sOff+0:sOff+16], sectName)
	putName16(b.buf[sOff+16:sOff+32], segName)
	b.putU64(sOff+32, sectAddr)
	b.putU64(sOff+40, sectSize)
	b.putU32(sOff+48, uint32(fileoff))
	b.putU32(sOff+52, 0)
	b.putU32(sOff+56, 0)
	b.putU32(sOff+60, 0)
	b.putU32(sOff+64, 0)
	return off
}

// addSymtab appends one LC_SYMTAB command and returns its offset. It does not
// append the symbol or string table bodies: callers append those after the
// load-command region and then patch symoff/nsyms/stroff/strsize in place.
func (b *machoBuilder) addSymtab(symOff, nsyms, strOff, strSize uint32) int {
	off := b.grow(types.SymtabCmdSize)
	b.putU32(off+0, uint32(types.LC_SYMTAB))
	b.putU32(off+4, types.SymtabCmdSize)
	b.putU32(off+8, symOff)
	b.putU32(off+12, nsyms)
	b.putU32(off+16, strOff)
	b.putU32(off+20, strSize)
	return off
}

// addDysymtab appends one LC_DYSYMTAB command. Only the fields a given test
// exercises need be nonzero; callers pass zero for the rest.
func (b *machoBuilder) addDysymtab(d types.DysymtabCmd) int {
	off := b.grow(types.DysymtabCmdSize)
	b.putU32(off+0, uint32(types.LC_DYSYMTAB))
	b.putU32(off+4, types.DysymtabCmdSize)
	b.putU32(off+8, d.ILocalSym)
	b.putU32(off+12, d.NLocalSym)
	b.putU32(off+16, d.IExtDefSym)
	b.putU32(off+20, d.NExtDefSym)
	b.putU32(off+24, d.IUndefSym)
	b.putU32(off+28, d.NUndefSym)
	b.putU32(off+32, d.TOCOff)
	b.putU32(off+36, d.NTOC)
	b.putU32(off+40, d.ModTabOff)
	b.putU32(off+44, d.NModTab)
	b.putU32(off+48, d.ExtRefSymOff)
	b.putU32(off+52, d.NExtRefSyms)
	b.putU32(off+56, d.IndirectSymOff)
	b.putU32(off+60, d.NIndirectSyms)
	b.putU32(off+64, d.ExtRelOff)
	b.putU32(off+68, d.NExtRel)
	b.putU32(off+72, d.LocRelOff)
	b.putU32(off+76, d.NLocRel)
	return off
}

// appendRelocation appends one raw relocation_info record and returns its
// offset. info packs r_symbolnum:24 | r_pcrel:1 | r_length:2 | r_extern:1 |
// r_type:4, matching RelocationInfo.Info's bit layout.
func (b *machoBuilder) appendRelocation(address uint32, symbolnum uint32, pcrel bool, length uint8, extern bool, relocType uint8) int {
	off := b.grow(types.RelocationInfoSize)
	info := symbolnum & 0x00ffffff
	if pcrel {
		info |= 1 << 24
	}
	info |= uint32(length&0x3) << 25
	if extern {
		info |= 1 << 27
	}
	info |= uint32(relocType&0xf) << 28
	b.putU32(off+0, address)
	b.putU32(off+4, info)
	return off
}

func (b *machoBuilder) addUUID(uuid [16]byte) int {
	off := b.grow(types.UUIDCmdSize)
	b.putU32(off+0, uint32(types.LC_UUID))
	b.putU32(off+4, types.UUIDCmdSize)
	copy(b.buf[off+8:off+24], uuid[:])
	return off
}

// appendSymbol appends one raw nlist_64 record and returns its offset.
func (b *machoBuilder) appendSymbol(nameIdx uint32, ntype types.NType, sect uint8, value uint64) int {
	off := b.grow(types.Nlist64Size)
	b.putU32(off+0, nameIdx)
	b.buf[off+4] = byte(ntype)
	b.buf[off+5] = sect
	b.putU16(off+6, 0)
	b.putU64(off+8, value)
	return off
}

// appendStrings writes a Mach-O-style string table: a leading NUL, then each
// name NUL-terminated in order. It returns the offset of the table and a map
// from name to its n_strx index.
func (b *machoBuilder) appendStrings(names ...string) (off int, index map[string]uint32) {
	off = b.grow(1) // reserve index 0
	index = make(map[string]uint32, len(names))
	for _, n := range names {
		idx := uint32(len(b.buf) - off)
		index[n] = idx
		b.buf = append(b.buf, []byte(n)...)
		b.buf = append(b.buf, 0)
	}
	return off, index
}

func putName16(dst []byte, name string) {
	for i := range dst {
		dst[i] = 0
	}
	copy(dst, name)
}
