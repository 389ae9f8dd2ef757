package emulator

import "log"

// KPUTCHAR debug output port
const KPUTCHAR_ADDR = 0x1000F180

// Reads a byte from the EE bus
func (emu *Emulator) Read8(addr uint32) uint8 {
	switch {
	case RAM_RANGE.Contains(addr):
		return emu.RAM[addr]
	case IOP_IO_RANGE.Contains(addr):
		log.Printf("[bus:ee] unhandled 8-bit read @ 0x%08x (IOP I/O)", addr)
		return 0
	case BIOS_RANGE.Contains(addr):
		return emu.BIOS[BIOS_RANGE.Offset(addr)]
	}

	panicFmt("bus:ee: unhandled 8-bit read @ 0x%08x", addr)
	return 0
}

// Reads a halfword from the EE bus
func (emu *Emulator) Read16(addr uint32) uint16 {
	switch {
	case RAM_RANGE.Contains(addr):
		return uint16(loadBuf(emu.RAM, addr, 2))
	case BIOS_RANGE.Contains(addr):
		return uint16(loadBuf(emu.BIOS, BIOS_RANGE.Offset(addr), 2))
	}

	switch addr {
	case 0x1A000006:
		return 1
	case 0x1000F480, 0x1A000010:
		return 0
	}

	panicFmt("bus:ee: unhandled 16-bit read @ 0x%08x", addr)
	return 0
}

// Reads a word from the EE bus
func (emu *Emulator) Read32(addr uint32) uint32 {
	switch {
	case RAM_RANGE.Contains(addr):
		return uint32(loadBuf(emu.RAM, addr, 4))
	case TIMER_RANGE.Contains(addr):
		return emu.EETimers.Read32(addr)
	case GIF_RANGE.Contains(addr):
		return emu.GIF.Read(addr)
	case VIF0_RANGE.Contains(addr):
		return emu.VIF[0].Read(addr)
	case VIF1_RANGE.Contains(addr):
		return emu.VIF[1].Read(addr)
	case DMAC_RANGE.Contains(addr):
		return emu.EEDmac.Read(addr)
	case RDRAM_RANGE.Contains(addr):
		return emu.RDRAM.Read(addr)
	case IOP_RAM_RANGE.Contains(addr):
		return uint32(loadBuf(emu.IOPRAM, IOP_RAM_RANGE.Offset(addr), 4))
	case BIOS_RANGE.Contains(addr):
		return uint32(loadBuf(emu.BIOS, BIOS_RANGE.Offset(addr), 4))
	case SIF_RANGE.Contains(addr):
		return emu.SIF.Read(addr)
	}

	switch addr {
	case 0x1000F000:
		return uint32(emu.Intc.ReadStat())
	case 0x1000F010:
		return uint32(emu.Intc.ReadMask())
	case 0x1000F520:
		return emu.EEDmac.ReadEnable()
	case 0x1000F130, 0x1000F400, 0x1000F410:
		return 0
	}

	panicFmt("bus:ee: unhandled 32-bit read @ 0x%08x", addr)
	return 0
}

// Reads a doubleword from the EE bus
func (emu *Emulator) Read64(addr uint32) uint64 {
	switch {
	case RAM_RANGE.Contains(addr):
		return loadBuf(emu.RAM, addr, 8)
	case GS_RANGE.Contains(addr):
		return emu.GS.ReadPriv(addr)
	case BIOS_RANGE.Contains(addr):
		return loadBuf(emu.BIOS, BIOS_RANGE.Offset(addr), 8)
	}

	panicFmt("bus:ee: unhandled 64-bit read @ 0x%08x", addr)
	return 0
}

// Reads a quadword from the EE bus
func (emu *Emulator) Read128(addr uint32) U128 {
	switch {
	case RAM_RANGE.Contains(addr):
		return loadBuf128(emu.RAM, addr)
	case BIOS_RANGE.Contains(addr):
		return loadBuf128(emu.BIOS, BIOS_RANGE.Offset(addr))
	}

	panicFmt("bus:ee: unhandled 128-bit read @ 0x%08x", addr)
	return U128{}
}

// Writes a byte to the EE bus
func (emu *Emulator) Write8(addr uint32, data uint8) {
	switch {
	case RAM_RANGE.Contains(addr):
		emu.RAM[addr] = data
		return
	}

	switch addr {
	case KPUTCHAR_ADDR:
		emu.kputchar(data)
		return
	}

	panicFmt("bus:ee: unhandled 8-bit write @ 0x%08x = 0x%02x", addr, data)
}

// Writes a halfword to the EE bus
func (emu *Emulator) Write16(addr uint32, data uint16) {
	switch {
	case RAM_RANGE.Contains(addr):
		storeBuf(emu.RAM, addr, 2, uint64(data))
		return
	case IOP_IO_RANGE.Contains(addr):
		log.Printf("[bus:ee] unhandled 16-bit write @ 0x%08x (IOP I/O) = 0x%04x", addr, data)
		return
	}

	switch addr {
	case 0x1A000000, 0x1A000002, 0x1A000004, 0x1A000006, 0x1A000008, 0x1A000010:
		// DEV9 configuration, silently acknowledged
		return
	}

	panicFmt("bus:ee: unhandled 16-bit write @ 0x%08x = 0x%04x", addr, data)
}

// Writes a word to the EE bus
func (emu *Emulator) Write32(addr uint32, data uint32) {
	switch {
	case RAM_RANGE.Contains(addr):
		storeBuf(emu.RAM, addr, 4, uint64(data))
		return
	case TIMER_RANGE.Contains(addr):
		emu.EETimers.Write32(addr, data)
		return
	case IPU_RANGE.Contains(addr):
		log.Printf("[bus:ee] unhandled 32-bit write @ 0x%08x (IPU) = 0x%08x", addr, data)
		return
	case GIF_RANGE.Contains(addr):
		emu.GIF.Write(addr, data)
		return
	case VIF0_RANGE.Contains(addr):
		emu.VIF[0].Write(addr, data)
		return
	case VIF1_RANGE.Contains(addr):
		emu.VIF[1].Write(addr, data)
		return
	case DMAC_RANGE.Contains(addr):
		emu.EEDmac.Write(addr, data)
		return
	case SIF_RANGE.Contains(addr):
		emu.SIF.Write(addr, data)
		return
	case RDRAM_RANGE.Contains(addr):
		emu.RDRAM.Write(addr, data)
		return
	case VU0_CODE_RANGE.Contains(addr):
		storeBuf(emu.EE.VUs[0].Code[:], VU0_CODE_RANGE.Offset(addr), 4, uint64(data))
		return
	case VU0_DATA_RANGE.Contains(addr):
		storeBuf(emu.EE.VUs[0].Data[:], VU0_DATA_RANGE.Offset(addr), 4, uint64(data))
		return
	case VU1_CODE_RANGE.Contains(addr):
		storeBuf(emu.EE.VUs[1].Code[:], VU1_CODE_RANGE.Offset(addr), 4, uint64(data))
		return
	case VU1_DATA_RANGE.Contains(addr):
		storeBuf(emu.EE.VUs[1].Data[:], VU1_DATA_RANGE.Offset(addr), 4, uint64(data))
		return
	}

	switch addr {
	case 0x1000F000:
		emu.Intc.WriteStat(uint16(data))
		return
	case 0x1000F010:
		emu.Intc.WriteMask(uint16(data))
		return
	case 0x1000F590:
		emu.EEDmac.WriteEnable(data)
		return
	case 0x1000F100, 0x1000F120, 0x1000F140, 0x1000F150,
		0x1000F400, 0x1000F410, 0x1000F420, 0x1000F450, 0x1000F460,
		0x1000F480, 0x1000F490, 0x1000F500, 0x1000F510:
		// Undocumented scratch registers, silently acknowledged
		return
	}

	panicFmt("bus:ee: unhandled 32-bit write @ 0x%08x = 0x%08x", addr, data)
}

// Writes a doubleword to the EE bus
func (emu *Emulator) Write64(addr uint32, data uint64) {
	switch {
	case RAM_RANGE.Contains(addr):
		storeBuf(emu.RAM, addr, 8, data)
		return
	case GS_RANGE.Contains(addr):
		emu.GS.WritePriv(addr, data)
		return
	}

	panicFmt("bus:ee: unhandled 64-bit write @ 0x%08x = 0x%016x", addr, data)
}

// Writes a quadword to the EE bus
func (emu *Emulator) Write128(addr uint32, data U128) {
	switch {
	case RAM_RANGE.Contains(addr):
		storeBuf128(emu.RAM, addr, data)
		return
	}

	switch addr {
	case 0x10004000:
		// VIF0 FIFO
		emu.VIF[0].WriteFIFO(data)
		return
	case 0x10005000:
		// VIF1 FIFO
		emu.VIF[1].WriteFIFO(data)
		return
	case 0x10006000:
		// GIF FIFO
		emu.GIF.WritePATH3(data)
		return
	}

	panicFmt("bus:ee: unhandled 128-bit write @ 0x%08x = 0x%016x%016x", addr, data.Hi, data.Lo)
}
