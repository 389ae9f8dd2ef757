package emulator

// Memory sizes of the backing buffers
const (
	RAM_SIZE       = 32 * 1024 * 1024 // Main RAM: 32MB
	IOP_RAM_SIZE   = 2 * 1024 * 1024  // IOP RAM: 2MB
	BIOS_SIZE      = 4 * 1024 * 1024  // BIOS ROM: 4MB
	SPRAM_SIZE     = 16 * 1024        // EE scratchpad: 16KB
	IOP_SPRAM_SIZE = 1024             // IOP scratchpad: 1KB
)

var (
	// EE side
	RAM_RANGE      = NewRange(0x00000000, RAM_SIZE)
	EELOAD_RANGE   = NewRange(0x00082000, 0x20000) // Subregion of RAM holding EELOAD
	TIMER_RANGE    = NewRange(0x10000000, 0x1840)
	IPU_RANGE      = NewRange(0x10002000, 0x40)
	GIF_RANGE      = NewRange(0x10003000, 0x100)
	VIF0_RANGE     = NewRange(0x10003800, 0x180)
	VIF1_RANGE     = NewRange(0x10003C00, 0x180)
	DMAC_RANGE     = NewRange(0x10008000, 0x7000)
	SIF_RANGE      = NewRange(0x1000F200, 0x70)
	RDRAM_RANGE    = NewRange(0x1000F430, 0x20)
	VU0_CODE_RANGE = NewRange(0x11000000, 0x1000)
	VU0_DATA_RANGE = NewRange(0x11004000, 0x1000)
	VU1_CODE_RANGE = NewRange(0x11008000, 0x4000)
	VU1_DATA_RANGE = NewRange(0x1100C000, 0x4000)
	GS_RANGE       = NewRange(0x12000000, 0x2000)
	IOP_RAM_RANGE  = NewRange(0x1C000000, IOP_RAM_SIZE)
	IOP_IO_RANGE   = NewRange(0x1F800000, 0x400000)
	BIOS_RANGE     = NewRange(0x1FC00000, BIOS_SIZE)

	// IOP side
	IOP_SIF_RANGE    = NewRange(0x1D000000, 0x80)
	CDVD_RANGE       = NewRange(0x1F402004, 0x15)
	IOP_DMA0_RANGE   = NewRange(0x1F801080, 0x80)
	IOP_DMA1_RANGE   = NewRange(0x1F801500, 0x80)
	IOP_TIMER0_RANGE = NewRange(0x1F801100, 0x30)
	IOP_TIMER1_RANGE = NewRange(0x1F801480, 0x30)
	SIO2_RANGE       = NewRange(0x1F808200, 0x84)
	SPU2_RANGE       = NewRange(0x1F900000, 0x2800)
)

type Range struct {
	Start  uint32 // Start address
	Length uint32 // Length of the mapping
}

func NewRange(start uint32, length uint32) Range {
	return Range{Start: start, Length: length}
}

// Returns whether `addr` is located inside this range
func (r *Range) Contains(addr uint32) bool {
	return addr >= r.Start && addr < r.Start+r.Length
}

// Returns the offset between `addr` and the `Start` of the range.
// Does not check if the range contains the address, so if `addr`
// is smaller than `Start`, there will be an overflow
func (r *Range) Offset(addr uint32) uint32 {
	return addr - r.Start
}
