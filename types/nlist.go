package types

import "unsafe"

// NType holds the bitfields packed into nlist_64.n_type.
type NType uint8

const (
	N_STAB NType = 0xe0 // if any of these bits set, a symbolic debugging entry
	N_PEXT NType = 0x10 // private external symbol bit
	N_TYPE NType = 0x0e // mask for the type bits
	N_EXT  NType = 0x01 // external symbol bit

	N_UNDF NType = 0x0 // undefined, n_sect == NO_SECT
	N_ABS  NType = 0x2 // absolute, n_sect == NO_SECT
	N_SECT NType = 0xe // defined in section number n_sect
	N_PBUD NType = 0xc // prebound undefined (defined in a dylib)
	N_INDR NType = 0xa // indirect
)

// NoSect is the n_sect value meaning "not in any section".
const NoSect = 0

// Nlist64 is nlist_64, 16 bytes.
type Nlist64 struct {
	Name  uint32 // index into the string table
	Type  NType  // N_TYPE / N_EXT / N_PEXT / N_STAB bits
	Sect  uint8  // 1-based section index, or NoSect
	Desc  uint16 // see <mach-o/loader.h> n_desc bits; opaque to this core
	Value uint64 // address or, for N_INDR, string table index of the target
}

// Nlist64Size is sizeof(nlist_64).
const Nlist64Size = 16

func init() {
	if unsafe.Sizeof(Nlist64{}) != Nlist64Size {
		panic("types: Nlist64 does not match the nlist_64 ABI layout")
	}
}
