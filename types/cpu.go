package types

// CPU is a Mach-O cpu_type_t.
type CPU uint32

const (
	cpuArch64 = 0x01000000 // CPU_ARCH_ABI64: 64 bit ABI

	CPUAmd64 CPU = 7 | cpuArch64
	CPUArm64 CPU = 12 | cpuArch64
	CPUPpc64 CPU = 18 | cpuArch64
)

// Is64 reports whether the CPU_ARCH_ABI64 bit is set, i.e. the header
// describes a 64-bit Mach-O.
func (c CPU) Is64() bool { return c&cpuArch64 != 0 }

var cpuStrings = []IntName{
	{uint32(CPUAmd64), "X86_64"},
	{uint32(CPUArm64), "ARM64"},
	{uint32(CPUPpc64), "PPC64"},
}

func (c CPU) String() string { return StringName(uint32(c), cpuStrings, false) }

// CPUSubtype is a Mach-O cpu_subtype_t. The core does not interpret it beyond
// carrying it through the header.
type CPUSubtype uint32

const (
	CPUSubtypeX8664All CPUSubtype = 3
	CPUSubtypeArm64All CPUSubtype = 0
	CPUSubtypeArm64E   CPUSubtype = 2
)
