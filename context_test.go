package macho_test

import (
	"encoding/binary"
	"testing"

	"github.com/chinnason/OpenCorePkg"
	"github.com/chinnason/OpenCorePkg/types"
)

// buildS1 assembles a happy-path fixture: one __TEXT segment
// (vmaddr=0x1000, vmsize=0x1000) with one __text section at 0x1100, one
// SYMTAB with a single defined symbol "_hello" at n_value=0x1100, and an
// LC_UUID command. It returns the finished buffer and the expected UUID.
func buildS1(t *testing.T) ([]byte, [16]byte) {
	t.Helper()
	b := newMachoBuilder()

	b.addSegment("__TEXT", 0x1000, 0x1000, 0, 0x20, "__text", 0x1100, 0x10)
	symtabOff := b.addSymtab(0, 0, 0, 0)
	uuid := [16]byte{0xAA, 0xBB, 0xCC, 0xDD, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12}
	b.addUUID(uuid)

	lcTotal := len(b.buf) - types.FileHeaderSize64
	b.header(3, uint32(lcTotal))

	symOff := len(b.buf)
	b.appendSymbol(0, types.N_SECT|types.N_EXT, 1, 0x1100) // name patched below
	strOff, index := b.appendStrings("_hello")
	b.putU32(symOff+0, index["_hello"])

	strSize := len(b.buf) - strOff
	b.putU32(symtabOff+8, uint32(symOff))
	b.putU32(symtabOff+12, 1)
	b.putU32(symtabOff+16, uint32(strOff))
	b.putU32(symtabOff+20, uint32(strSize))

	return b.buf, uuid
}

func TestHappyPathFullWalk(t *testing.T) {
	buf, uuid := buildS1(t)

	ctx, err := macho.NewContext(buf)
	if err != nil {
		t.Fatalf("NewContext failed on a well-formed image: %v", err)
	}

	seg := ctx.SegmentByName("__TEXT")
	if seg == nil {
		t.Fatal("SegmentByName(__TEXT) = nil")
	}
	if seg.VMAddr != 0x1000 || seg.VMSize != 0x1000 {
		t.Errorf("segment = {vmaddr:%#x vmsize:%#x}, want {0x1000, 0x1000}", seg.VMAddr, seg.VMSize)
	}

	sect := ctx.SectionByAddress(0x1100)
	if sect == nil || types.Name16String(sect.SectName) != "__text" {
		t.Fatalf("SectionByAddress(0x1100) = %v, want __text", sect)
	}

	sym := ctx.LocalDefinedSymbolByName("_hello")
	if sym == nil {
		t.Fatal("LocalDefinedSymbolByName(_hello) = nil")
	}
	if sym.Value != 0x1100 {
		t.Errorf("symbol value = %#x, want 0x1100", sym.Value)
	}
	if !ctx.IsSymbolValueSane(sym) {
		t.Error("IsSymbolValueSane(_hello) = false, want true")
	}

	if got := ctx.LastAddress(); got != 0x2000 {
		t.Errorf("LastAddress() = %#x, want 0x2000", got)
	}

	if got := ctx.UUID(); got == nil || *got != types.UUID(uuid) {
		t.Errorf("UUID() = %v, want %v", got, uuid)
	}
}

func TestInvariantShortBufferRejected(t *testing.T) {
	buf, _ := buildS1(t)
	for n := 0; n < types.FileHeaderSize64; n++ {
		if _, err := macho.NewContext(buf[:n]); err == nil {
			t.Fatalf("NewContext(%d bytes) succeeded, want error for any length < %d", n, types.FileHeaderSize64)
		}
	}
}

func TestInvariantBadMagicRejected(t *testing.T) {
	buf, _ := buildS1(t)
	buf[0] ^= 0xff
	if _, err := macho.NewContext(buf); err == nil {
		t.Fatal("NewContext accepted a corrupted magic number")
	}
}

func TestInvariantSectionByAddressOutsideAnySegment(t *testing.T) {
	buf, _ := buildS1(t)
	ctx, err := macho.NewContext(buf)
	if err != nil {
		t.Fatal(err)
	}
	if got := ctx.SectionByAddress(0xdeadbeef); got != nil {
		t.Errorf("SectionByAddress(0xdeadbeef) = %v, want nil", got)
	}
}

func TestInvariantSectionByIndex(t *testing.T) {
	buf, _ := buildS1(t)
	ctx, err := macho.NewContext(buf)
	if err != nil {
		t.Fatal(err)
	}
	if got := ctx.SectionByIndex(0); got != nil {
		t.Errorf("SectionByIndex(0) = %v, want nil", got)
	}
	first := ctx.SectionByIndex(1)
	if first == nil {
		t.Fatal("SectionByIndex(1) = nil, want the only section")
	}
	seg := ctx.SegmentByName("__TEXT")
	onlySection := ctx.NextSection(seg, nil)
	if onlySection == nil || *onlySection != *first {
		t.Errorf("SectionByIndex(1) and NextSection(seg, nil) disagree: %v vs %v", first, onlySection)
	}
}

func TestUUIDAbsent(t *testing.T) {
	b := newMachoBuilder()
	b.addSegment("__TEXT", 0x1000, 0x1000, 0, 0, "__text", 0x1100, 0x10)
	b.header(1, uint32(len(b.buf)-types.FileHeaderSize64))

	ctx, err := macho.NewContext(b.buf)
	if err != nil {
		t.Fatal(err)
	}
	if got := ctx.UUID(); got != nil {
		t.Errorf("UUID() = %v, want nil when no LC_UUID is present", got)
	}
}

func TestSymbolNameOutOfRangeStrx(t *testing.T) {
	buf, _ := buildS1(t)
	ctx, err := macho.NewContext(buf)
	if err != nil {
		t.Fatal(err)
	}
	bad := &types.Nlist64{Name: 1 << 20, Type: types.N_SECT | types.N_EXT, Sect: 1, Value: 0x1100}
	if _, ok := ctx.SymbolName(bad); ok {
		t.Error("SymbolName should fail when n_strx >= strsize")
	}
}

func TestSymtabExtentBeyondFileIsRejected(t *testing.T) {
	buf, _ := buildS1(t)
	ctx, err := macho.NewContext(buf)
	if err != nil {
		t.Fatal(err)
	}

	// Header accessors still work even though we're about to corrupt SYMTAB.
	if ctx.MachHeader().CPU != types.CPUAmd64 {
		t.Fatal("sanity check on the fixture itself failed")
	}

	// Find the LC_SYMTAB command and inflate nsyms until symoff+nsyms*16
	// overflows the file.
	corrupt := append([]byte(nil), buf...)
	patchNSyms(t, corrupt, 1<<20)

	badCtx, err := macho.NewContext(corrupt)
	if err != nil {
		t.Fatal(err)
	}
	if sym := badCtx.SymbolByIndex(0); sym != nil {
		t.Error("SymbolByIndex should fail once SYMTAB's declared extent exceeds the file")
	}
	if _, ok := badCtx.SymbolName(&types.Nlist64{}); ok {
		t.Error("SymbolName should fail once SYMTAB fails to resolve")
	}
	if got := badCtx.MachHeader().CPU; got != types.CPUAmd64 {
		t.Error("header accessors must still work after a SYMTAB resolution failure")
	}
}

// patchNSyms locates the LC_SYMTAB command in buf and overwrites its nsyms
// field. It relies on buildS1's fixed layout (one LC_SEGMENT_64, one
// LC_SYMTAB, one LC_UUID, in that order) rather than re-walking generically,
// since this test is exercising the walker under corruption.
func patchNSyms(t *testing.T, buf []byte, nsyms uint32) {
	t.Helper()
	segCmdSize := types.Segment64Size + types.Section64Size
	symtabOff := types.FileHeaderSize64 + segCmdSize
	if types.LoadCmd(binary.LittleEndian.Uint32(buf[symtabOff:])) != types.LC_SYMTAB {
		t.Fatalf("fixture layout changed: expected LC_SYMTAB at %#x", symtabOff)
	}
	binary.LittleEndian.PutUint32(buf[symtabOff+12:], nsyms)
}
