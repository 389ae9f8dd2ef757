package emulator

import "log"

// GIFtag formats
type GIFFormat int

const (
	GIF_FMT_PACKED GIFFormat = iota
	GIF_FMT_REGLIST
	GIF_FMT_IMAGE
)

var gifFmtNames = []string{"PACKED", "REGLIST", "IMAGE", "IMAGE"}

// GIF registers
const (
	GIF_REG_CTRL = 0x10003000
	GIF_REG_MODE = 0x10003010
	GIF_REG_STAT = 0x10003020
)

// PACKED format register descriptors
const (
	GIF_DESC_PRIM  = 0x00
	GIF_DESC_RGBAQ = 0x01
	GIF_DESC_ST    = 0x02
	GIF_DESC_UV    = 0x03
	GIF_DESC_XYZF2 = 0x04
	GIF_DESC_XYZ2  = 0x05
	GIF_DESC_FOG   = 0x0A
	GIF_DESC_AD    = 0x0E
	GIF_DESC_NOP   = 0x0F
)

// A decoded GIFtag
type GIFtag struct {
	NLOOP uint16 // Number of loop iterations
	EOP   bool   // End of packet
	Prim  bool   // PRIM write
	PData uint16 // PRIM data
	NRegs uint8  // Number of registers (0 encodes 16)
	Regs  uint64 // Register descriptor list

	Fmt GIFFormat

	HasTag bool
}

// The Graphics Interface: parses GIFtags arriving over PATH3 and
// forwards register writes to the GS
type GIF struct {
	emu *Emulator

	Tag GIFtag

	NLOOP uint16 // Loop iterations left
	NRegs uint16 // Register descriptors consumed in this loop
}

// Returns a new GIF instance
func NewGIF(emu *Emulator) *GIF {
	return &GIF{emu: emu}
}

// Decodes a GIFtag
func (gif *GIF) decodeTag(data U128) {
	tag := &gif.Tag

	tag.NLOOP = data.U16(0) & 0x7FFF
	tag.EOP = data.U16(0)&(1<<15) != 0
	tag.Prim = data.Lo&(1<<46) != 0
	tag.PData = uint16((data.Lo >> 47) & 0x7FF)
	tag.NRegs = uint8(data.Lo >> 60)
	tag.Regs = data.Hi

	if tag.NLOOP == 0 {
		panicFmt("gif: GIFtag with NLOOP = 0")
	}

	// NREGS = 0 means 16
	if tag.NRegs == 0 {
		tag.NRegs = 16
	}

	switch (data.Lo >> 58) & 3 {
	case 0:
		tag.Fmt = GIF_FMT_PACKED
	case 1:
		tag.Fmt = GIF_FMT_REGLIST
	default:
		tag.Fmt = GIF_FMT_IMAGE
	}

	tag.HasTag = true

	if tag.Prim {
		gif.emu.GS.WriteInternal(GS_REG_PRIM, uint64(tag.PData))
	}

	gif.emu.GS.InitQ()
}

// Handles a PACKED format quadword: one register descriptor per
// quadword, routed by the nibble stream in REGS
func (gif *GIF) doPACKED(data U128) {
	reg := uint8((gif.Tag.Regs >> (4 * gif.NRegs)) & 0xF)

	gs := gif.emu.GS

	switch reg {
	case GIF_DESC_PRIM:
		gs.WriteInternal(GS_REG_PRIM, data.Lo&0x7FF)
	case GIF_DESC_RGBAQ:
		var rgbaq uint64
		rgbaq |= uint64(data.U8(0))
		rgbaq |= uint64(data.U8(4)) << 8
		rgbaq |= uint64(data.U8(8)) << 16
		rgbaq |= uint64(data.U8(12)) << 24
		rgbaq |= uint64(gs.Q) << 32
		gs.WriteInternal(GS_REG_RGBAQ, rgbaq)
	case GIF_DESC_ST:
		gs.Q = data.U32(2)
		gs.WriteInternal(GS_REG_ST, data.Lo)
	case GIF_DESC_UV:
		uv := uint64(data.U16(0)&0x3FFF) | uint64(data.U16(2)&0x3FFF)<<16
		gs.WriteInternal(GS_REG_UV, uv)
	case GIF_DESC_XYZF2:
		var xyzf uint64
		xyzf |= uint64(data.U16(0))
		xyzf |= uint64(data.U16(2)) << 16
		xyzf |= uint64((data.U32(2)>>4)&0xFFFFFF) << 32
		xyzf |= uint64((data.U32(3)>>4)&0xFF) << 56
		// Bit 111 selects XYZF3 (no vertex kick)
		if data.Hi&(1<<47) != 0 {
			gs.WriteInternal(GS_REG_XYZF3, xyzf)
		} else {
			gs.WriteInternal(GS_REG_XYZF2, xyzf)
		}
	case GIF_DESC_XYZ2:
		var xyz uint64
		xyz |= uint64(data.U16(0))
		xyz |= uint64(data.U16(2)) << 16
		xyz |= uint64(data.U32(2)) << 32
		if data.Hi&(1<<47) != 0 {
			gs.WriteInternal(GS_REG_XYZ3, xyz)
		} else {
			gs.WriteInternal(GS_REG_XYZ2, xyz)
		}
	case GIF_DESC_AD:
		gs.WriteInternal(data.U8(8), data.Lo)
	case GIF_DESC_NOP:
	default:
		panicFmt("gif: unhandled PACKED descriptor 0x%02x", reg)
	}

	gif.NRegs++

	if gif.NRegs == uint16(gif.Tag.NRegs) {
		gif.NRegs = 0
		gif.NLOOP--

		if gif.NLOOP == 0 {
			gif.Tag.HasTag = false
		}
	}
}

// Handles a REGLIST format quadword: two register writes per quadword
func (gif *GIF) doREGLIST(data U128) {
	for i := 0; i < 2; i++ {
		reg := uint8((gif.Tag.Regs >> (4 * gif.NRegs)) & 0xF)

		if reg != GIF_DESC_NOP {
			gif.emu.GS.WriteInternal(reg, data.U64(i))
		}

		gif.NRegs++

		if gif.NRegs == uint16(gif.Tag.NRegs) {
			gif.NRegs = 0
			gif.NLOOP--

			if gif.NLOOP == 0 {
				gif.Tag.HasTag = false

				// The second half of the last quadword is dropped
				return
			}
		}
	}
}

// Handles an IMAGE format quadword: raw data for the HWREG transfer
// path
func (gif *GIF) doIMAGE(data U128) {
	gif.emu.GS.WriteHWREG(data.Lo)
	gif.emu.GS.WriteHWREG(data.Hi)

	gif.NLOOP--

	if gif.NLOOP == 0 {
		gif.Tag.HasTag = false
	}
}

// Handles a GIF packet quadword
func (gif *GIF) doCmd(data U128) {
	if !gif.Tag.HasTag {
		gif.decodeTag(data)

		gif.NLOOP = gif.Tag.NLOOP
		gif.NRegs = 0

		return
	}

	switch gif.Tag.Fmt {
	case GIF_FMT_PACKED:
		gif.doPACKED(data)
	case GIF_FMT_REGLIST:
		gif.doREGLIST(data)
	case GIF_FMT_IMAGE:
		gif.doIMAGE(data)
	default:
		panicFmt("gif: unhandled %s format", gifFmtNames[gif.Tag.Fmt])
	}
}

// Returns a GIF register
func (gif *GIF) Read(addr uint32) uint32 {
	switch addr {
	case GIF_REG_STAT:
		return 0
	default:
		panicFmt("gif: unhandled read @ 0x%08x", addr)
	}
	return 0
}

// Writes a GIF register
func (gif *GIF) Write(addr, data uint32) {
	switch addr {
	case GIF_REG_CTRL:
		if data&1 != 0 {
			log.Printf("[gif] GIF reset")

			gif.Tag.HasTag = false
			gif.NLOOP = 0
			gif.NRegs = 0
		}
	case GIF_REG_MODE:
		// PATH3 mask and intermittent mode are not modeled
	default:
		panicFmt("gif: unhandled write @ 0x%08x = 0x%08x", addr, data)
	}
}

// PATH3 entry point: receives quadwords from the EE DMAC
func (gif *GIF) WritePATH3(data U128) {
	gif.doCmd(data)
}
