package types

import "unsafe"

// RelocationInfo is relocation_info, 8 bytes, little-endian, non-scattered
// form only (scattered relocations are a 32-bit-only concept, out of scope
// per spec Non-goals).
type RelocationInfo struct {
	Address uint32 // offset from the start of the section to the fixup site
	Info    uint32 // r_symbolnum:24 | r_pcrel:1 | r_length:2 | r_extern:1 | r_type:4
}

// RelocationInfoSize is sizeof(relocation_info).
const RelocationInfoSize = 8

func init() {
	if unsafe.Sizeof(RelocationInfo{}) != RelocationInfoSize {
		panic("types: RelocationInfo does not match the relocation_info ABI layout")
	}
}

// Symbolnum returns r_symbolnum: the symbol table index (if Extern) or the
// 1-based section index (if !Extern) this relocation targets.
func (r RelocationInfo) Symbolnum() uint32 { return uint32(ExtractBits(uint64(r.Info), 0, 24)) }

// Pcrel returns r_pcrel.
func (r RelocationInfo) Pcrel() bool { return ExtractBits(uint64(r.Info), 24, 1) != 0 }

// Length returns r_length: the log2 size of the fixup (0=byte .. 3=quad).
func (r RelocationInfo) Length() uint8 { return uint8(ExtractBits(uint64(r.Info), 25, 2)) }

// Extern returns r_extern.
func (r RelocationInfo) Extern() bool { return ExtractBits(uint64(r.Info), 27, 1) != 0 }

// Type returns r_type, an architecture-specific 4-bit tag.
func (r RelocationInfo) Type() uint8 { return uint8(ExtractBits(uint64(r.Info), 28, 4)) }

// X86_64 relocation types (enum reloc_type_x86_64 in <mach-o/x86_64/reloc.h>).
const (
	X86_64_RELOC_UNSIGNED   uint8 = 0 // absolute address
	X86_64_RELOC_SIGNED     uint8 = 1 // signed 32-bit displacement
	X86_64_RELOC_BRANCH     uint8 = 2 // a CALL/JMP instruction with 32-bit displacement
	X86_64_RELOC_GOT_LOAD   uint8 = 3 // a MOVQ load of a GOT entry
	X86_64_RELOC_GOT        uint8 = 4 // other GOT references
	X86_64_RELOC_SUBTRACTOR uint8 = 5 // must be followed by a X86_64_RELOC_UNSIGNED
	X86_64_RELOC_SIGNED_1   uint8 = 6 // signed 32-bit displacement with a -1 addend
	X86_64_RELOC_SIGNED_2   uint8 = 7 // signed 32-bit displacement with a -2 addend
	X86_64_RELOC_SIGNED_4   uint8 = 8 // signed 32-bit displacement with a -4 addend
	X86_64_RELOC_TLV        uint8 = 9 // thread local variable
)

var x86RelocTypeStrings = []IntName{
	{uint32(X86_64_RELOC_UNSIGNED), "X86_64_RELOC_UNSIGNED"},
	{uint32(X86_64_RELOC_SIGNED), "X86_64_RELOC_SIGNED"},
	{uint32(X86_64_RELOC_BRANCH), "X86_64_RELOC_BRANCH"},
	{uint32(X86_64_RELOC_GOT_LOAD), "X86_64_RELOC_GOT_LOAD"},
	{uint32(X86_64_RELOC_GOT), "X86_64_RELOC_GOT"},
	{uint32(X86_64_RELOC_SUBTRACTOR), "X86_64_RELOC_SUBTRACTOR"},
	{uint32(X86_64_RELOC_SIGNED_1), "X86_64_RELOC_SIGNED_1"},
	{uint32(X86_64_RELOC_SIGNED_2), "X86_64_RELOC_SIGNED_2"},
	{uint32(X86_64_RELOC_SIGNED_4), "X86_64_RELOC_SIGNED_4"},
	{uint32(X86_64_RELOC_TLV), "X86_64_RELOC_TLV"},
}

// X86RelocTypeString renders a raw r_type nibble using the X86_64 naming
// table, falling back to its hex value for anything unrecognized.
func X86RelocTypeString(t uint8) string { return StringName(uint32(t), x86RelocTypeStrings, false) }
