package types

import (
	"strings"
	"unsafe"
)

// FileHeader is the Mach-O 64-bit file header (mach_header_64). Byte-exact,
// little-endian, 32 bytes.
type FileHeader struct {
	Magic        Magic
	CPU          CPU
	SubCPU       CPUSubtype
	Type         HeaderFileType
	NCommands    uint32
	SizeCommands uint32
	Flags        HeaderFlag
	Reserved     uint32
}

// FileHeaderSize64 is sizeof(mach_header_64).
const FileHeaderSize64 = 8 * 4

func init() {
	if unsafe.Sizeof(FileHeader{}) != FileHeaderSize64 {
		panic("types: FileHeader does not match the mach_header_64 ABI layout")
	}
}

type Magic uint32

const (
	Magic32  Magic = 0xfeedface
	Magic64  Magic = 0xfeedfacf
	MagicFat Magic = 0xcafebabe
)

var magicStrings = []IntName{
	{uint32(Magic32), "32-bit MachO"},
	{uint32(Magic64), "64-bit MachO"},
	{uint32(MagicFat), "Fat MachO"},
}

func (i Magic) String() string { return StringName(uint32(i), magicStrings, false) }

// HeaderFileType is the Mach-O file type, e.g. an object file, executable, or
// kext bundle.
type HeaderFileType uint32

const (
	MH_OBJECT      HeaderFileType = 0x1 /* relocatable object file */
	MH_EXECUTE     HeaderFileType = 0x2 /* demand paged executable file */
	MH_CORE        HeaderFileType = 0x4 /* core file */
	MH_DYLIB       HeaderFileType = 0x6 /* dynamically bound shared library */
	MH_BUNDLE      HeaderFileType = 0x8 /* dynamically bound bundle file */
	MH_KEXT_BUNDLE HeaderFileType = 0xb /* x86_64 kexts */
	MH_FILESET     HeaderFileType = 0xc /* a file composed of other Mach-Os sharing one linkedit */
)

var fileTypeStrings = []IntName{
	{uint32(MH_OBJECT), "OBJECT"},
	{uint32(MH_EXECUTE), "EXECUTE"},
	{uint32(MH_CORE), "CORE"},
	{uint32(MH_DYLIB), "DYLIB"},
	{uint32(MH_BUNDLE), "BUNDLE"},
	{uint32(MH_KEXT_BUNDLE), "KEXT_BUNDLE"},
	{uint32(MH_FILESET), "FILESET"},
}

func (t HeaderFileType) String() string { return StringName(uint32(t), fileTypeStrings, false) }

// HeaderFlag holds mach_header_64.flags. Only the bits this core inspects or
// surfaces in diagnostics are named; the rest pass through unrecognized.
type HeaderFlag uint32

const (
	NoUndefs              HeaderFlag = 0x1
	DyldLink              HeaderFlag = 0x4
	TwoLevel              HeaderFlag = 0x80
	SubsectionsViaSymbols HeaderFlag = 0x2000
	WeakDefines           HeaderFlag = 0x8000
	PIE                   HeaderFlag = 0x200000
)

var headerFlagNames = []struct {
	bit  HeaderFlag
	name string
}{
	{NoUndefs, "NOUNDEFS"},
	{DyldLink, "DYLDLINK"},
	{TwoLevel, "TWOLEVEL"},
	{SubsectionsViaSymbols, "SUBSECTIONS_VIA_SYMBOLS"},
	{WeakDefines, "WEAK_DEFINES"},
	{PIE, "PIE"},
}

// Has reports whether bit is set in f.
func (f HeaderFlag) Has(bit HeaderFlag) bool { return f&bit != 0 }

func (f HeaderFlag) String() string {
	var names []string
	for _, n := range headerFlagNames {
		if f.Has(n.bit) {
			names = append(names, n.name)
		}
	}
	if len(names) == 0 {
		return "0x0"
	}
	return strings.Join(names, "|")
}
