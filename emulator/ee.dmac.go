package emulator

import "log"

// EE DMA channels
type EEChannel int

const (
	EE_CH_VIF0 EEChannel = iota
	EE_CH_VIF1
	EE_CH_PATH3
	EE_CH_IPU_FROM
	EE_CH_IPU_TO
	EE_CH_SIF0
	EE_CH_SIF1
	EE_CH_SIF2
	EE_CH_SPR_FROM
	EE_CH_SPR_TO
)

var eeChnNames = []string{
	"VIF0", "VIF1", "PATH3", "IPU_FROM", "IPU_TO", "SIF0", "SIF1", "SIF2", "SPR_FROM", "SPR_TO",
}

// EE DMA channel registers (low byte of the address)
const (
	EE_DMA_REG_CHCR = 0x00 // Channel control
	EE_DMA_REG_MADR = 0x10 // Memory address
	EE_DMA_REG_QWC  = 0x20 // Quadword count
	EE_DMA_REG_TADR = 0x30 // Tag address
	EE_DMA_REG_ASR0 = 0x40 // Address stack 0
	EE_DMA_REG_ASR1 = 0x50 // Address stack 1
	EE_DMA_REG_SADR = 0x80 // Scratchpad address
)

// EE DMA control registers
const (
	D_CTRL_ADDR  = 0x1000E000
	D_STAT_ADDR  = 0x1000E010
	D_PCR_ADDR   = 0x1000E020
	D_SQWC_ADDR  = 0x1000E030
	D_RBSR_ADDR  = 0x1000E040
	D_RBOR_ADDR  = 0x1000E050
	D_STADR_ADDR = 0x1000E060
)

// Source chain tag IDs
const (
	EE_TAG_REFE = 0
	EE_TAG_CNT  = 1
	EE_TAG_NEXT = 2
	EE_TAG_REF  = 3
	EE_TAG_REFS = 4
	EE_TAG_CALL = 5
	EE_TAG_RET  = 6
	EE_TAG_END  = 7
)

// D_CHCR fields
type EEChannelControl struct {
	Dir bool   // Direction (from memory)
	Mod uint8  // Mode (normal/chain/interleave)
	Asp uint8  // Address stack pointer
	Tte bool   // Tag transfer enable
	Tie bool   // Tag interrupt enable
	Str bool   // Start
	Tag uint16 // Bits 16-31 of the most recent DMAtag
}

// An EE DMA channel
type EEDMAChannel struct {
	Chcr EEChannelControl

	MADR uint32 // Memory address (16-byte aligned)
	QWC  uint32 // Quadword count
	TADR uint32 // Tag address
	ASR  [2]uint32
	SADR uint32 // Scratchpad address (SPR channels)

	DRQ      bool
	IsTagEnd bool
	HasTag   bool
}

// D_STAT fields
type EEDmacStat struct {
	Cis  uint16 // Channel interrupt status
	Sis  bool   // Stall interrupt status
	Meis bool   // MFIFO empty interrupt status
	Beis bool   // Bus error interrupt status
	Cim  uint16 // Channel interrupt mask
	Sim  bool   // Stall interrupt mask
	Meim bool   // MFIFO empty interrupt mask
}

// The EE DMA controller: ten channels. The SIF channels bridge into
// the SIF FIFOs, PATH3 feeds the GIF, the SPR pair moves data in and
// out of the scratchpad
type EEDmac struct {
	emu *Emulator

	Channels [10]EEDMAChannel

	Ctrl uint32 // D_CTRL
	Stat EEDmacStat
	Pcr  uint32 // D_PCR
	Sqwc uint32
	Rbsr uint32
	Rbor uint32

	Enable uint32 // D_ENABLE
}

// Returns a new EE DMAC with the boot-time DRQ set
func NewEEDmac(emu *Emulator) *EEDmac {
	dmac := &EEDmac{emu: emu, Enable: 0x1201}

	// Set initial DRQs
	dmac.Channels[EE_CH_VIF0].DRQ = true
	dmac.Channels[EE_CH_VIF1].DRQ = true
	dmac.Channels[EE_CH_PATH3].DRQ = true
	dmac.Channels[EE_CH_IPU_TO].DRQ = true
	dmac.Channels[EE_CH_SIF1].DRQ = true
	dmac.Channels[EE_CH_SIF2].DRQ = true
	dmac.Channels[EE_CH_SPR_FROM].DRQ = true
	dmac.Channels[EE_CH_SPR_TO].DRQ = true

	return dmac
}

// Returns the DMA channel selected by a register address
func eeGetChannel(addr uint32) EEChannel {
	switch (addr >> 8) & 0xFF {
	case 0x80:
		return EE_CH_VIF0
	case 0x90:
		return EE_CH_VIF1
	case 0xA0:
		return EE_CH_PATH3
	case 0xB0:
		return EE_CH_IPU_FROM
	case 0xB4:
		return EE_CH_IPU_TO
	case 0xC0:
		return EE_CH_SIF0
	case 0xC4:
		return EE_CH_SIF1
	case 0xC8:
		return EE_CH_SIF2
	case 0xD0:
		return EE_CH_SPR_FROM
	case 0xD4:
		return EE_CH_SPR_TO
	default:
		panicFmt("dmac:ee: unknown channel @ 0x%08x", addr)
	}
	return 0
}

// Reads a quadword from main RAM on behalf of the DMAC
func (dmac *EEDmac) readRAM128(addr uint32) U128 {
	return loadBuf128(dmac.emu.RAM, addr&(RAM_SIZE-1))
}

// Writes a quadword to main RAM on behalf of the DMAC
func (dmac *EEDmac) writeRAM128(addr uint32, data U128) {
	storeBuf128(dmac.emu.RAM, addr&(RAM_SIZE-1), data)
}

// Finishes a transfer: clears the start bit, latches the channel
// interrupt status and routes a pending interrupt to COP0
func (dmac *EEDmac) transferEnd(chnID EEChannel) {
	chn := &dmac.Channels[chnID]

	log.Printf("[dmac:ee] %s transfer end", eeChnNames[chnID])

	chn.Chcr.Str = false
	chn.HasTag = false
	chn.IsTagEnd = false

	dmac.Stat.Cis |= 1 << uint(chnID)

	dmac.checkInterrupt()
}

// Routes the DMAC interrupt state to EE COP0 Cause.IP3
func (dmac *EEDmac) checkInterrupt() {
	pending := dmac.Stat.Cis&dmac.Stat.Cim != 0 ||
		(dmac.Stat.Sis && dmac.Stat.Sim) ||
		(dmac.Stat.Meis && dmac.Stat.Meim)

	dmac.emu.EE.Cop0.SetInterruptPendingDMAC(pending)
}

// Returns true if the DMAC itself allows transfers
func (dmac *EEDmac) dmacEnabled() bool {
	return dmac.Enable&(1<<16) == 0 && dmac.Ctrl&1 != 0
}

// Runs a channel if it is eligible
func (dmac *EEDmac) checkRunning(chnID EEChannel) {
	chn := &dmac.Channels[chnID]

	if dmac.dmacEnabled() && chn.DRQ && chn.Chcr.Str {
		dmac.startDMA(chnID)
	}
}

// Runs every eligible channel
func (dmac *EEDmac) checkRunningAll() {
	if !dmac.dmacEnabled() {
		return
	}

	for i := range dmac.Channels {
		chn := &dmac.Channels[i]

		if chn.DRQ && chn.Chcr.Str {
			dmac.startDMA(EEChannel(i))
		}
	}
}

// Starts a DMA transfer on a channel
func (dmac *EEDmac) startDMA(chnID EEChannel) {
	switch chnID {
	case EE_CH_VIF0, EE_CH_VIF1:
		dmac.doVIF(chnID)
	case EE_CH_PATH3:
		dmac.doPATH3()
	case EE_CH_SIF0:
		dmac.doSIF0()
	case EE_CH_SIF1:
		dmac.doSIF1()
	case EE_CH_SPR_FROM, EE_CH_SPR_TO:
		dmac.doSPR(chnID)
	default:
		panicFmt("dmac:ee: unhandled channel %d (%s) transfer", chnID, eeChnNames[chnID])
	}
}

// Decodes a source chain DMAtag, updating QWC/MADR/TADR/ASR. Tags that
// end the chain set IsTagEnd
func (dmac *EEDmac) decodeSourceTag(chn *EEDMAChannel, tag uint64) {
	chn.QWC = uint32(tag) & 0xFFFF
	chn.Chcr.Tag = uint16(tag >> 16)

	id := (tag >> 28) & 7
	irq := tag&(1<<31) != 0
	addr := uint32(tag>>32) & 0x7FFFFFF0

	switch id {
	case EE_TAG_REFE:
		chn.MADR = addr
		chn.TADR += 16
		chn.IsTagEnd = true
	case EE_TAG_CNT:
		chn.MADR = chn.TADR + 16
		chn.TADR = chn.MADR + 16*chn.QWC
	case EE_TAG_NEXT:
		chn.MADR = chn.TADR + 16
		chn.TADR = addr
	case EE_TAG_REF, EE_TAG_REFS:
		chn.MADR = addr
		chn.TADR += 16
	case EE_TAG_CALL:
		chn.MADR = chn.TADR + 16
		if chn.Chcr.Asp >= 2 {
			panicFmt("dmac:ee: DMAtag call with full address stack")
		}
		chn.ASR[chn.Chcr.Asp] = chn.MADR + 16*chn.QWC
		chn.Chcr.Asp++
		chn.TADR = addr
	case EE_TAG_RET:
		chn.MADR = chn.TADR + 16
		if chn.Chcr.Asp == 0 {
			chn.IsTagEnd = true
		} else {
			chn.Chcr.Asp--
			chn.TADR = chn.ASR[chn.Chcr.Asp]
		}
	case EE_TAG_END:
		chn.MADR = chn.TADR + 16
		chn.IsTagEnd = true
	}

	if irq && chn.Chcr.Tie {
		chn.IsTagEnd = true
	}

	chn.HasTag = true
}

// Performs SIF0 DMA (IOP -> EE): pops destination chain tags and data
// quadwords from the SIF0 FIFO into main RAM
func (dmac *EEDmac) doSIF0() {
	chn := &dmac.Channels[EE_CH_SIF0]
	sif := dmac.emu.SIF

	for {
		if chn.QWC == 0 {
			if chn.HasTag && chn.IsTagEnd {
				dmac.transferEnd(EE_CH_SIF0)
				return
			}

			if sif.SIF0Size() < 2 {
				// Wait for the IOP to push the next tag
				chn.DRQ = false
				dmac.emu.IOPDmac.SetDRQ(IOP_CH_SIF0, true)
				return
			}

			tag := uint64(sif.ReadSIF0()) | (uint64(sif.ReadSIF0()) << 32)

			log.Printf("[dmac:ee] SIF0 new DMAtag = 0x%016x", tag)

			chn.QWC = uint32(tag) & 0xFFFF
			chn.MADR = uint32(tag>>32) & 0x7FFFFFF0
			chn.Chcr.Tag = uint16(tag >> 16)

			id := (tag >> 28) & 7
			irq := tag&(1<<31) != 0

			chn.IsTagEnd = id == EE_TAG_END || (irq && chn.Chcr.Tie)
			chn.HasTag = true
		}

		count := minUint32(uint32(sif.SIF0Size()/4), chn.QWC)
		if count == 0 {
			chn.DRQ = false
			dmac.emu.IOPDmac.SetDRQ(IOP_CH_SIF0, true)
			return
		}

		for i := uint32(0); i < count; i++ {
			var data U128
			data.SetU32(0, sif.ReadSIF0())
			data.SetU32(1, sif.ReadSIF0())
			data.SetU32(2, sif.ReadSIF0())
			data.SetU32(3, sif.ReadSIF0())

			dmac.writeRAM128(chn.MADR, data)

			chn.MADR += 16
		}

		chn.QWC -= count
	}
}

// Performs SIF1 DMA (EE -> IOP): walks the source chain in main RAM
// and pushes quadwords into the SIF1 FIFO
func (dmac *EEDmac) doSIF1() {
	chn := &dmac.Channels[EE_CH_SIF1]
	sif := dmac.emu.SIF

	for {
		if chn.QWC == 0 {
			if chn.HasTag && chn.IsTagEnd {
				dmac.transferEnd(EE_CH_SIF1)
				return
			}

			tagData := dmac.readRAM128(chn.TADR)

			log.Printf("[dmac:ee] SIF1 new DMAtag = 0x%016x", tagData.Lo)

			dmac.decodeSourceTag(chn, tagData.Lo)

			if chn.Chcr.Tte {
				// The upper tag half carries the IOP-side tag; pad
				// it to a whole quadword
				if sif.SIF1Size() > FIFO_CAPACITY-4 {
					panicFmt("dmac:ee: SIF1 tag push with full FIFO")
				}
				sif.WriteSIF1(tagData.U32(2))
				sif.WriteSIF1(tagData.U32(3))
				sif.WriteSIF1(0)
				sif.WriteSIF1(0)
			}
		}

		count := minUint32(uint32((FIFO_CAPACITY-sif.SIF1Size())/4), chn.QWC)
		if count == 0 {
			// Wait for the IOP to drain the FIFO
			chn.DRQ = false
			dmac.emu.IOPDmac.SetDRQ(IOP_CH_SIF1, true)
			return
		}

		for i := uint32(0); i < count; i++ {
			data := dmac.readRAM128(chn.MADR)

			sif.WriteSIF1(data.U32(0))
			sif.WriteSIF1(data.U32(1))
			sif.WriteSIF1(data.U32(2))
			sif.WriteSIF1(data.U32(3))

			chn.MADR += 16
		}

		chn.QWC -= count

		dmac.emu.IOPDmac.SetDRQ(IOP_CH_SIF1, true)
	}
}

// Performs PATH3 DMA: bursts quadwords from main RAM into the GIF
func (dmac *EEDmac) doPATH3() {
	chn := &dmac.Channels[EE_CH_PATH3]

	if chn.Chcr.Mod == 1 {
		// Source chain
		for {
			if chn.QWC == 0 {
				if chn.HasTag && chn.IsTagEnd {
					dmac.transferEnd(EE_CH_PATH3)
					return
				}

				dmac.decodeSourceTag(chn, dmac.readRAM128(chn.TADR).Lo)
			}

			for chn.QWC > 0 {
				dmac.emu.GIF.WritePATH3(dmac.readRAM128(chn.MADR))

				chn.MADR += 16
				chn.QWC--
			}
		}
	}

	// Burst
	for chn.QWC > 0 {
		dmac.emu.GIF.WritePATH3(dmac.readRAM128(chn.MADR))

		chn.MADR += 16
		chn.QWC--
	}

	dmac.transferEnd(EE_CH_PATH3)
}

// Performs VIF0/VIF1 DMA: bursts quadwords into the VIF FIFO
func (dmac *EEDmac) doVIF(chnID EEChannel) {
	chn := &dmac.Channels[chnID]
	vif := dmac.emu.VIF[chnID]

	for chn.QWC > 0 {
		vif.WriteFIFO(dmac.readRAM128(chn.MADR))

		chn.MADR += 16
		chn.QWC--
	}

	dmac.transferEnd(chnID)
}

// Performs scratchpad DMA in either direction
func (dmac *EEDmac) doSPR(chnID EEChannel) {
	chn := &dmac.Channels[chnID]
	spram := dmac.emu.EE.SPRAM[:]

	for chn.QWC > 0 {
		if chnID == EE_CH_SPR_FROM {
			dmac.writeRAM128(chn.MADR, loadBuf128(spram, chn.SADR&0x3FF0))
		} else {
			storeBuf128(spram, chn.SADR&0x3FF0, dmac.readRAM128(chn.MADR))
		}

		chn.MADR += 16
		chn.SADR += 16
		chn.QWC--
	}

	dmac.transferEnd(chnID)
}

// Reads a DMAC register
func (dmac *EEDmac) Read(addr uint32) uint32 {
	if addr < D_CTRL_ADDR {
		chnID := eeGetChannel(addr)
		chn := &dmac.Channels[chnID]

		switch addr & 0xFF {
		case EE_DMA_REG_CHCR:
			chcr := &chn.Chcr
			var data uint32
			data |= oneIfTrue(chcr.Dir)
			data |= uint32(chcr.Mod) << 2
			data |= uint32(chcr.Asp) << 4
			data |= oneIfTrue(chcr.Tte) << 6
			data |= oneIfTrue(chcr.Tie) << 7
			data |= oneIfTrue(chcr.Str) << 8
			data |= uint32(chcr.Tag) << 16
			return data
		case EE_DMA_REG_MADR:
			return chn.MADR
		case EE_DMA_REG_QWC:
			return chn.QWC
		case EE_DMA_REG_TADR:
			return chn.TADR
		case EE_DMA_REG_ASR0:
			return chn.ASR[0]
		case EE_DMA_REG_ASR1:
			return chn.ASR[1]
		case EE_DMA_REG_SADR:
			return chn.SADR
		default:
			panicFmt("dmac:ee: unhandled 32-bit channel read @ 0x%08x", addr)
		}
	}

	switch addr {
	case D_CTRL_ADDR:
		return dmac.Ctrl
	case D_STAT_ADDR:
		stat := &dmac.Stat
		var data uint32
		data |= uint32(stat.Cis)
		data |= oneIfTrue(stat.Sis) << 13
		data |= oneIfTrue(stat.Meis) << 14
		data |= oneIfTrue(stat.Beis) << 15
		data |= uint32(stat.Cim) << 16
		data |= oneIfTrue(stat.Sim) << 29
		data |= oneIfTrue(stat.Meim) << 30
		return data
	case D_PCR_ADDR:
		return dmac.Pcr
	case D_SQWC_ADDR:
		return dmac.Sqwc
	case D_RBSR_ADDR:
		return dmac.Rbsr
	case D_RBOR_ADDR:
		return dmac.Rbor
	default:
		panicFmt("dmac:ee: unhandled 32-bit control read @ 0x%08x", addr)
	}
	return 0
}

// Returns D_ENABLER
func (dmac *EEDmac) ReadEnable() uint32 {
	return dmac.Enable
}

// Writes D_ENABLEW. Setting the suspend bit is unhandled
func (dmac *EEDmac) WriteEnable(data uint32) {
	if data&(1<<16) != 0 {
		panicFmt("dmac:ee: unhandled DMA suspension (D_ENABLEW = 0x%08x)", data)
	}

	dmac.Enable = data

	dmac.checkRunningAll()
}

// Writes a DMAC register
func (dmac *EEDmac) Write(addr, data uint32) {
	if addr < D_CTRL_ADDR {
		chnID := eeGetChannel(addr)
		chn := &dmac.Channels[chnID]

		switch addr & 0xFF {
		case EE_DMA_REG_CHCR:
			chcr := &chn.Chcr
			chcr.Dir = data&(1<<0) != 0
			chcr.Mod = uint8((data >> 2) & 3)
			chcr.Asp = uint8((data >> 4) & 3)
			chcr.Tte = data&(1<<6) != 0
			chcr.Tie = data&(1<<7) != 0
			chcr.Str = data&(1<<8) != 0

			dmac.checkRunning(chnID)
		case EE_DMA_REG_MADR:
			chn.MADR = data & 0x7FFFFFF0
		case EE_DMA_REG_QWC:
			chn.QWC = data & 0xFFFF
		case EE_DMA_REG_TADR:
			chn.TADR = data & 0x7FFFFFF0
		case EE_DMA_REG_ASR0:
			chn.ASR[0] = data & 0x7FFFFFF0
		case EE_DMA_REG_ASR1:
			chn.ASR[1] = data & 0x7FFFFFF0
		case EE_DMA_REG_SADR:
			chn.SADR = data & 0x3FF0
		default:
			panicFmt("dmac:ee: unhandled 32-bit channel write @ 0x%08x = 0x%08x", addr, data)
		}
		return
	}

	switch addr {
	case D_CTRL_ADDR:
		dmac.Ctrl = data

		dmac.checkRunningAll()
	case D_STAT_ADDR:
		stat := &dmac.Stat

		// The status bits are write-1-to-clear, the mask bits toggle
		stat.Cis &= ^uint16(data)
		if data&(1<<13) != 0 {
			stat.Sis = false
		}
		if data&(1<<14) != 0 {
			stat.Meis = false
		}
		if data&(1<<15) != 0 {
			stat.Beis = false
		}

		stat.Cim ^= uint16(data>>16) & 0x3FF
		if data&(1<<29) != 0 {
			stat.Sim = !stat.Sim
		}
		if data&(1<<30) != 0 {
			stat.Meim = !stat.Meim
		}

		dmac.checkInterrupt()
	case D_PCR_ADDR:
		dmac.Pcr = data
	case D_SQWC_ADDR:
		dmac.Sqwc = data
	case D_RBSR_ADDR:
		dmac.Rbsr = data
	case D_RBOR_ADDR:
		dmac.Rbor = data
	case D_STADR_ADDR:
		// Stall address, unused by the modeled channels
	default:
		panicFmt("dmac:ee: unhandled 32-bit control write @ 0x%08x = 0x%08x", addr, data)
	}
}

// Sets DRQ, runs the channel if it became eligible
func (dmac *EEDmac) SetDRQ(chnID EEChannel, drq bool) {
	dmac.Channels[chnID].DRQ = drq

	if drq {
		dmac.checkRunning(chnID)
	}
}
