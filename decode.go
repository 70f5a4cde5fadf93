package macho

import (
	"encoding/binary"

	"github.com/chinnason/OpenCorePkg/types"
)

// This core decodes every fixed-shape record field-by-field with
// encoding/binary rather than reinterpret-casting the buffer, so the
// little-endian, byte-exact ABI contract holds regardless of
// host endianness. Individual fixed headers are decoded by value on each
// call; the symbol and relocation arrays are decoded once into newly
// allocated slices that the Context keeps.

func readFileHeader(b []byte) types.FileHeader {
	return types.FileHeader{
		Magic:        types.Magic(binary.LittleEndian.Uint32(b[0:])),
		CPU:          types.CPU(binary.LittleEndian.Uint32(b[4:])),
		SubCPU:       types.CPUSubtype(binary.LittleEndian.Uint32(b[8:])),
		Type:         types.HeaderFileType(binary.LittleEndian.Uint32(b[12:])),
		NCommands:    binary.LittleEndian.Uint32(b[16:]),
		SizeCommands: binary.LittleEndian.Uint32(b[20:]),
		Flags:        types.HeaderFlag(binary.LittleEndian.Uint32(b[24:])),
		Reserved:     binary.LittleEndian.Uint32(b[28:]),
	}
}

func readLoadCommand(b []byte) types.LoadCommand {
	return types.LoadCommand{
		Cmd:     types.LoadCmd(binary.LittleEndian.Uint32(b[0:])),
		CmdSize: binary.LittleEndian.Uint32(b[4:]),
	}
}

func readSegment64(b []byte) types.Segment64 {
	var s types.Segment64
	s.Cmd = types.LoadCmd(binary.LittleEndian.Uint32(b[0:]))
	s.CmdSize = binary.LittleEndian.Uint32(b[4:])
	copy(s.SegName[:], b[8:24])
	s.VMAddr = binary.LittleEndian.Uint64(b[24:])
	s.VMSize = binary.LittleEndian.Uint64(b[32:])
	s.FileOff = binary.LittleEndian.Uint64(b[40:])
	s.FileSize = binary.LittleEndian.Uint64(b[48:])
	s.MaxProt = types.VmProtection(binary.LittleEndian.Uint32(b[56:]))
	s.InitProt = types.VmProtection(binary.LittleEndian.Uint32(b[60:]))
	s.NumSects = binary.LittleEndian.Uint32(b[64:])
	s.Flags = types.SegFlag(binary.LittleEndian.Uint32(b[68:]))
	return s
}

func readSection64(b []byte) types.Section64 {
	var s types.Section64
	copy(s.SectName[:], b[0:16])
	copy(s.SegName[:], b[16:32])
	s.Addr = binary.LittleEndian.Uint64(b[32:])
	s.Size = binary.LittleEndian.Uint64(b[40:])
	s.Offset = binary.LittleEndian.Uint32(b[48:])
	s.Align = binary.LittleEndian.Uint32(b[52:])
	s.RelOff = binary.LittleEndian.Uint32(b[56:])
	s.NumReloc = binary.LittleEndian.Uint32(b[60:])
	s.Flags = binary.LittleEndian.Uint32(b[64:])
	s.Reserved1 = binary.LittleEndian.Uint32(b[68:])
	s.Reserved2 = binary.LittleEndian.Uint32(b[72:])
	s.Reserved3 = binary.LittleEndian.Uint32(b[76:])
	return s
}

func readSymtabCmd(b []byte) types.SymtabCmd {
	return types.SymtabCmd{
		Cmd:     types.LoadCmd(binary.LittleEndian.Uint32(b[0:])),
		CmdSize: binary.LittleEndian.Uint32(b[4:]),
		SymOff:  binary.LittleEndian.Uint32(b[8:]),
		NSyms:   binary.LittleEndian.Uint32(b[12:]),
		StrOff:  binary.LittleEndian.Uint32(b[16:]),
		StrSize: binary.LittleEndian.Uint32(b[20:]),
	}
}

func readDysymtabCmd(b []byte) types.DysymtabCmd {
	u32 := binary.LittleEndian.Uint32
	return types.DysymtabCmd{
		Cmd:            types.LoadCmd(u32(b[0:])),
		CmdSize:        u32(b[4:]),
		ILocalSym:      u32(b[8:]),
		NLocalSym:      u32(b[12:]),
		IExtDefSym:     u32(b[16:]),
		NExtDefSym:     u32(b[20:]),
		IUndefSym:      u32(b[24:]),
		NUndefSym:      u32(b[28:]),
		TOCOff:         u32(b[32:]),
		NTOC:           u32(b[36:]),
		ModTabOff:      u32(b[40:]),
		NModTab:        u32(b[44:]),
		ExtRefSymOff:   u32(b[48:]),
		NExtRefSyms:    u32(b[52:]),
		IndirectSymOff: u32(b[56:]),
		NIndirectSyms:  u32(b[60:]),
		ExtRelOff:      u32(b[64:]),
		NExtRel:        u32(b[68:]),
		LocRelOff:      u32(b[72:]),
		NLocRel:        u32(b[76:]),
	}
}

func readUUIDCmd(b []byte) types.UUIDCmd {
	var cmd types.UUIDCmd
	cmd.Cmd = types.LoadCmd(binary.LittleEndian.Uint32(b[0:]))
	cmd.CmdSize = binary.LittleEndian.Uint32(b[4:])
	copy(cmd.UUID[:], b[8:24])
	return cmd
}

func readNlist64(b []byte) types.Nlist64 {
	return types.Nlist64{
		Name:  binary.LittleEndian.Uint32(b[0:]),
		Type:  types.NType(b[4]),
		Sect:  b[5],
		Desc:  binary.LittleEndian.Uint16(b[6:]),
		Value: binary.LittleEndian.Uint64(b[8:]),
	}
}

func readRelocationInfo(b []byte) types.RelocationInfo {
	return types.RelocationInfo{
		Address: binary.LittleEndian.Uint32(b[0:]),
		Info:    binary.LittleEndian.Uint32(b[4:]),
	}
}
