package types

import "unsafe"

// LoadCmd is a Mach-O load command type (the cmd field of load_command).
type LoadCmd uint32

const (
	LC_SEGMENT_64 LoadCmd = 0x19 // 64-bit segment of this file to be mapped
	LC_SYMTAB     LoadCmd = 0x2  // link-edit stab symbol table info
	LC_DYSYMTAB   LoadCmd = 0xb  // dynamic link-edit symbol table info
	LC_UUID       LoadCmd = 0x1b // the uuid
)

var loadCmdStrings = []IntName{
	{uint32(LC_SEGMENT_64), "LC_SEGMENT_64"},
	{uint32(LC_SYMTAB), "LC_SYMTAB"},
	{uint32(LC_DYSYMTAB), "LC_DYSYMTAB"},
	{uint32(LC_UUID), "LC_UUID"},
}

func (c LoadCmd) String() string { return StringName(uint32(c), loadCmdStrings, false) }

// LoadCommand is the common load_command header every command starts with:
// an 8-byte (cmd, cmdsize) pair.
type LoadCommand struct {
	Cmd     LoadCmd
	CmdSize uint32
}

// LoadCommandSize is sizeof(load_command).
const LoadCommandSize = 8

func init() {
	if unsafe.Sizeof(LoadCommand{}) != LoadCommandSize {
		panic("types: LoadCommand does not match the load_command ABI layout")
	}
}

// SegFlag holds segment_command_64.flags.
type SegFlag uint32

const (
	SegHighVM  SegFlag = 0x1
	SegNoReloc SegFlag = 0x4
)

// Segment64 is segment_command_64, 72 bytes.
type Segment64 struct {
	Cmd      LoadCmd  // LC_SEGMENT_64
	CmdSize  uint32   // includes the trailing section_64 array
	SegName  [16]byte // segment name, NUL-padded
	VMAddr   uint64   // memory address of this segment
	VMSize   uint64   // memory size of this segment
	FileOff  uint64   // file offset of this segment
	FileSize uint64   // amount to map from the file
	MaxProt  VmProtection
	InitProt VmProtection
	NumSects uint32
	Flags    SegFlag
}

// Segment64Size is sizeof(segment_command_64).
const Segment64Size = 72

func init() {
	if unsafe.Sizeof(Segment64{}) != Segment64Size {
		panic("types: Segment64 does not match the segment_command_64 ABI layout")
	}
}

// Section64 is section_64, 80 bytes, stored immediately after its owning
// segment command in the load-command region.
type Section64 struct {
	SectName  [16]byte
	SegName   [16]byte
	Addr      uint64
	Size      uint64
	Offset    uint32
	Align     uint32
	RelOff    uint32
	NumReloc  uint32
	Flags     uint32
	Reserved1 uint32
	Reserved2 uint32
	Reserved3 uint32
}

// Section64Size is sizeof(section_64).
const Section64Size = 80

func init() {
	if unsafe.Sizeof(Section64{}) != Section64Size {
		panic("types: Section64 does not match the section_64 ABI layout")
	}
}

const sectionTypeMask = 0xff

// IsZerofill reports whether the section occupies no file space (S_ZEROFILL
// or S_GB_ZEROFILL), the one case where a section's file range legitimately
// lies outside its segment's file range.
func (s *Section64) IsZerofill() bool {
	const sZerofill, sGBZerofill = 0x1, 0xc
	t := s.Flags & sectionTypeMask
	return t == sZerofill || t == sGBZerofill
}

// SymtabCmd is symtab_command, 24 bytes.
type SymtabCmd struct {
	Cmd     LoadCmd // LC_SYMTAB
	CmdSize uint32
	SymOff  uint32
	NSyms   uint32
	StrOff  uint32
	StrSize uint32
}

// SymtabCmdSize is sizeof(symtab_command).
const SymtabCmdSize = 24

func init() {
	if unsafe.Sizeof(SymtabCmd{}) != SymtabCmdSize {
		panic("types: SymtabCmd does not match the symtab_command ABI layout")
	}
}

// DysymtabCmd is dysymtab_command, 80 bytes.
type DysymtabCmd struct {
	Cmd            LoadCmd // LC_DYSYMTAB
	CmdSize        uint32
	ILocalSym      uint32
	NLocalSym      uint32
	IExtDefSym     uint32
	NExtDefSym     uint32
	IUndefSym      uint32
	NUndefSym      uint32
	TOCOff         uint32
	NTOC           uint32
	ModTabOff      uint32
	NModTab        uint32
	ExtRefSymOff   uint32
	NExtRefSyms    uint32
	IndirectSymOff uint32
	NIndirectSyms  uint32
	ExtRelOff      uint32
	NExtRel        uint32
	LocRelOff      uint32
	NLocRel        uint32
}

// DysymtabCmdSize is sizeof(dysymtab_command).
const DysymtabCmdSize = 80

func init() {
	if unsafe.Sizeof(DysymtabCmd{}) != DysymtabCmdSize {
		panic("types: DysymtabCmd does not match the dysymtab_command ABI layout")
	}
}

// UUIDCmd is uuid_command, 24 bytes.
type UUIDCmd struct {
	Cmd     LoadCmd // LC_UUID
	CmdSize uint32
	UUID    UUID
}

// UUIDCmdSize is sizeof(uuid_command).
const UUIDCmdSize = 24

func init() {
	if unsafe.Sizeof(UUIDCmd{}) != UUIDCmdSize {
		panic("types: UUIDCmd does not match the uuid_command ABI layout")
	}
}
