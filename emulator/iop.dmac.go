package emulator

import "log"

// IOP DMA channels
type IOPChannel int

const (
	IOP_CH_MDEC_IN IOPChannel = iota
	IOP_CH_MDEC_OUT
	IOP_CH_SIF2
	IOP_CH_CDVD
	IOP_CH_SPU1
	IOP_CH_PIO
	IOP_CH_OTC
	IOP_CH_SPU2
	IOP_CH_DEV9
	IOP_CH_SIF0
	IOP_CH_SIF1
	IOP_CH_SIO2_IN
	IOP_CH_SIO2_OUT
	IOP_CH_USB
)

var iopChnNames = []string{
	"MDEC_IN", "MDEC_OUT", "SIF2", "CDVD", "SPU1", "PIO", "OTC",
	"SPU2", "DEV9", "SIF0", "SIF1", "SIO2_IN", "SIO2_OUT", "USB",
}

// IOP DMA channel registers (per-channel block of 16 bytes)
const (
	IOP_DMA_REG_MADR = 0x0
	IOP_DMA_REG_BCR  = 0x4
	IOP_DMA_REG_CHCR = 0x8
	IOP_DMA_REG_TADR = 0xC
)

// IOP DMA control registers
const (
	DPCR_ADDR      = 0x1F8010F0
	DICR_ADDR      = 0x1F8010F4
	DPCR2_ADDR     = 0x1F801570
	DICR2_ADDR     = 0x1F801574
	DMACEN_ADDR    = 0x1F801578
	DMACINTEN_ADDR = 0x1F80157C
)

// D_CHCR fields
type IOPChannelControl struct {
	Dir bool  // Direction (from RAM)
	Dec bool  // Decrementing address
	Tte bool  // Tag transfer enable
	Mod uint8 // Mode
	Cpd uint8 // Chopping window (DMA)
	Cpc uint8 // Chopping window (CPU)
	Str bool  // Start
	Fst bool  // Forced start (don't wait for DRQ)
	Spf bool  // IOP cache spoofing
}

// An IOP DMA channel
type IOPDMAChannel struct {
	Chcr IOPChannelControl

	Size, Count uint16 // Block count halves
	MADR, TADR  uint32 // Memory/tag address

	Len uint32 // Words left in the current block

	DRQ      bool
	IsTagEnd bool
}

// DMA Interrupt Control
type DICR struct {
	Sie uint8 // Slice interrupt enable (CH0-6)
	Bef bool  // Bus error flag
	Im  uint8 // Interrupt mask (CH0-6)
	Mie bool  // Master interrupt enable
	Ip  uint8 // Interrupt pending (CH0-6)
	Mif bool  // Master interrupt flag
}

// DMA Interrupt Control 2
type DICR2 struct {
	Tie uint16 // Tag interrupt enable
	Im  uint8  // Interrupt mask (CH7-12)
	Ip  uint8  // Interrupt pending (CH7-12)
}

// The IOP DMA controller: 14 channels. The SIF0/SIF1 chain engines
// move words between IOP RAM and the SIF FIFOs; the CDVD engine
// drains the drive's read buffer
type IOPDmac struct {
	emu *Emulator

	Channels [14]IOPDMAChannel

	Dicr  DICR
	Dicr2 DICR2

	DPCR, DPCR2 uint32 // Priority control

	DMACEN bool // DMAC enable

	// DMACINTEN
	Cie bool // Channel interrupt enable
	Mid bool // Master interrupt disable

	// Scheduler event IDs
	idTransferEnd uint64
	idSIF0Start   uint64
	idSIF1Start   uint64
}

// Returns a new IOP DMAC with the boot-time DRQ set
func NewIOPDmac(emu *Emulator) *IOPDmac {
	dmac := &IOPDmac{emu: emu, Cie: true}

	// Set initial DRQs
	dmac.Channels[IOP_CH_MDEC_IN].DRQ = true
	dmac.Channels[IOP_CH_SIF2].DRQ = true
	dmac.Channels[IOP_CH_SIF0].DRQ = true
	dmac.Channels[IOP_CH_SIO2_IN].DRQ = true

	dmac.idTransferEnd = emu.Sched.RegisterEvent(func(param int, _ int64) {
		dmac.transferEndEvent(IOPChannel(param))
	})
	dmac.idSIF0Start = emu.Sched.RegisterEvent(func(_ int, _ int64) {
		emu.EEDmac.SetDRQ(EE_CH_SIF0, true)
	})
	dmac.idSIF1Start = emu.Sched.RegisterEvent(func(_ int, _ int64) {
		emu.EEDmac.SetDRQ(EE_CH_SIF1, true)
	})

	return dmac
}

// Finishes a transfer: clears the start bit, latches the interrupt
// pending flag and raises the DMA interrupt if enabled
func (dmac *IOPDmac) transferEndEvent(chnID IOPChannel) {
	chn := &dmac.Channels[chnID]

	log.Printf("[dmac:iop] %s transfer end", iopChnNames[chnID])

	chn.IsTagEnd = false
	chn.Chcr.Str = false

	if chnID < 7 {
		if dmac.Dicr.Im&(1<<uint(chnID)) != 0 {
			dmac.Dicr.Ip |= 1 << uint(chnID)
		}
	} else {
		if dmac.Dicr2.Im&(1<<uint(chnID-7)) != 0 {
			dmac.Dicr2.Ip |= 1 << uint(chnID-7)
		}
	}

	dmac.checkInterrupt()
}

// Returns the DMA channel selected by a register address
func iopGetChannel(addr uint32) IOPChannel {
	switch (addr >> 4) & 0xFF {
	case 0x08:
		return IOP_CH_MDEC_IN
	case 0x09:
		return IOP_CH_MDEC_OUT
	case 0x0A:
		return IOP_CH_SIF2
	case 0x0B:
		return IOP_CH_CDVD
	case 0x0C:
		return IOP_CH_SPU1
	case 0x0D:
		return IOP_CH_PIO
	case 0x0E:
		return IOP_CH_OTC
	case 0x50:
		return IOP_CH_SPU2
	case 0x51:
		return IOP_CH_DEV9
	case 0x52:
		return IOP_CH_SIF0
	case 0x53:
		return IOP_CH_SIF1
	case 0x54:
		return IOP_CH_SIO2_IN
	case 0x55:
		return IOP_CH_SIO2_OUT
	default:
		panicFmt("dmac:iop: unknown channel @ 0x%08x", addr)
	}
	return 0
}

// Reads a word from IOP RAM on behalf of the DMAC
func (dmac *IOPDmac) readRAM32(addr uint32) uint32 {
	return uint32(loadBuf(dmac.emu.IOPRAM, addr&(IOP_RAM_SIZE-1), 4))
}

// Writes a word to IOP RAM on behalf of the DMAC
func (dmac *IOPDmac) writeRAM32(addr, data uint32) {
	storeBuf(dmac.emu.IOPRAM, addr&(IOP_RAM_SIZE-1), 4, uint64(data))
}

// Performs SIF0 DMA (IOP -> EE). Walks the IOP-side tag chain,
// pushing words into the SIF0 FIFO
func (dmac *IOPDmac) doSIF0() {
	chn := &dmac.Channels[IOP_CH_SIF0]
	sif := dmac.emu.SIF

	if chn.Chcr.Dec {
		panicFmt("dmac:iop: SIF0 decrementing transfer")
	}
	if !chn.Chcr.Tte {
		panicFmt("dmac:iop: SIF0 transfer without tag transfer enable")
	}

	if chn.Len == 0 && chn.IsTagEnd {
		// The chain is exhausted, the transfer-end event is pending
		return
	}

	if chn.Len == 0 {
		dmaTag := uint64(dmac.readRAM32(chn.TADR)) | (uint64(dmac.readRAM32(chn.TADR+4)) << 32)

		log.Printf("[dmac:iop] SIF0 new DMAtag = 0x%016x", dmaTag)

		// Transfer the EEtag
		sif.WriteSIF0(dmac.readRAM32(chn.TADR + 8))
		sif.WriteSIF0(dmac.readRAM32(chn.TADR + 12))

		chn.TADR += 16

		// Decode tag
		chn.MADR = uint32(dmaTag) & 0xFFFFFC
		chn.Len = uint32(dmaTag>>32) & 0xFFFFF

		if chn.Len&3 != 0 {
			// Round up to a whole quadword
			chn.Len = (chn.Len | 3) + 1
		}

		chn.IsTagEnd = dmaTag&(3<<30) != 0
	}

	// Transfer up to 32 words at a time
	len := minUint32(uint32(FIFO_CAPACITY-sif.SIF0Size()), minUint32(chn.Len, 32))

	if len == 0 {
		panicFmt("dmac:iop: SIF0 transfer with full FIFO")
	}

	for i := uint32(0); i < len; i++ {
		sif.WriteSIF0(dmac.readRAM32(chn.MADR + 4*i))
	}

	chn.Len -= len
	chn.MADR += 4 * len

	chn.DRQ = false

	dmac.emu.Sched.AddEvent(dmac.idSIF0Start, 0, 16*int64(len), true)

	if chn.Len == 0 && chn.IsTagEnd {
		// No reschedule needed, the SIF0 start event fires at the
		// same time
		dmac.emu.Sched.AddEvent(dmac.idTransferEnd, int(IOP_CH_SIF0), 16*int64(len), false)
	}
}

// Performs SIF1 DMA (EE -> IOP). Pops the DMAtag and data words from
// the SIF1 FIFO into IOP RAM
func (dmac *IOPDmac) doSIF1() {
	chn := &dmac.Channels[IOP_CH_SIF1]
	sif := dmac.emu.SIF

	if chn.Chcr.Dec {
		panicFmt("dmac:iop: SIF1 decrementing transfer")
	}
	if !chn.Chcr.Tte {
		panicFmt("dmac:iop: SIF1 transfer without tag transfer enable")
	}

	if chn.Len == 0 && chn.IsTagEnd {
		return
	}

	if chn.Len == 0 {
		dmaTag := uint64(sif.ReadSIF1()) | (uint64(sif.ReadSIF1()) << 32)

		// Remove the excess EE tag words
		sif.ReadSIF1()
		sif.ReadSIF1()

		log.Printf("[dmac:iop] SIF1 new DMAtag = 0x%016x", dmaTag)

		// Decode tag
		chn.MADR = uint32(dmaTag) & 0xFFFFFC
		chn.Len = uint32(dmaTag>>32) & 0xFFFFF

		chn.IsTagEnd = dmaTag&(3<<30) != 0
	}

	// Transfer up to 32 words at a time
	len := minUint32(uint32(sif.SIF1Size()), minUint32(chn.Len, 32))

	if len == 0 {
		panicFmt("dmac:iop: SIF1 transfer with empty FIFO")
	}

	for i := uint32(0); i < len; i++ {
		dmac.writeRAM32(chn.MADR+4*i, sif.ReadSIF1())
	}

	chn.Len -= len
	chn.MADR += 4 * len

	chn.DRQ = false

	dmac.emu.Sched.AddEvent(dmac.idSIF1Start, 0, 16*int64(len), true)

	if chn.Len == 0 && chn.IsTagEnd {
		dmac.emu.Sched.AddEvent(dmac.idTransferEnd, int(IOP_CH_SIF1), 16*int64(len), false)
	}
}

// Performs CDVD DMA: drains the drive's read buffer into IOP RAM
func (dmac *IOPDmac) doCDVD() {
	chn := &dmac.Channels[IOP_CH_CDVD]

	len := chn.Len
	if len == 0 {
		panicFmt("dmac:iop: CDVD transfer with BCR = 0")
	}

	for i := uint32(0); i < len; i++ {
		dmac.writeRAM32(chn.MADR+4*i, dmac.emu.CDVD.ReadDMAC())
	}

	chn.Len = 0
	chn.MADR += 4 * len

	chn.DRQ = false

	dmac.emu.Sched.AddEvent(dmac.idTransferEnd, int(IOP_CH_CDVD), 24*int64(len), true)
}

// Starts a DMA transfer on a channel
func (dmac *IOPDmac) startDMA(chn IOPChannel) {
	switch chn {
	case IOP_CH_CDVD:
		dmac.doCDVD()
	case IOP_CH_SIF0:
		dmac.doSIF0()
	case IOP_CH_SIF1:
		dmac.doSIF1()
	default:
		panicFmt("dmac:iop: unhandled channel %d (%s) transfer", chn, iopChnNames[chn])
	}
}

// Sets the master interrupt flag, sends the DMA interrupt on a rising
// edge
func (dmac *IOPDmac) checkInterrupt() {
	oldMif := dmac.Dicr.Mif

	dmac.Dicr.Mif = dmac.Cie && (dmac.Dicr.Bef || (dmac.Dicr.Mie && (dmac.Dicr.Ip != 0 || dmac.Dicr2.Ip != 0)))

	if !oldMif && dmac.Dicr.Mif && !dmac.Mid {
		dmac.emu.Intc.SendInterruptIOP(IOP_INT_DMA)
	}
}

// Returns true if the channel's enable bit is set in DPCR/DPCR2
func (dmac *IOPDmac) channelEnabled(chnID int) bool {
	if chnID < 7 {
		return dmac.DPCR&(1<<uint(4*chnID+3)) != 0
	}
	return dmac.DPCR2&(1<<uint(4*(chnID-7)+3)) != 0
}

// Runs a channel if it is eligible: DMAC enabled, DRQ raised (or
// forced), priority bit set and the start bit latched
func (dmac *IOPDmac) checkRunning(chn IOPChannel) {
	if !dmac.DMACEN {
		return
	}

	chnID := int(chn)
	c := &dmac.Channels[chnID]

	if (c.DRQ || c.Chcr.Fst) && dmac.channelEnabled(chnID) && c.Chcr.Str {
		dmac.startDMA(chn)
	}
}

// Runs the first eligible channel
func (dmac *IOPDmac) checkRunningAll() {
	if !dmac.DMACEN {
		return
	}

	for i := 0; i < 13; i++ {
		c := &dmac.Channels[i]

		if (c.DRQ || c.Chcr.Fst) && dmac.channelEnabled(i) && c.Chcr.Str {
			dmac.startDMA(IOPChannel(i))
			return
		}
	}
}

// Reads a 32-bit DMAC register
func (dmac *IOPDmac) Read32(addr uint32) uint32 {
	if addr < DPCR_ADDR || (addr > DICR_ADDR && addr < DPCR2_ADDR) {
		chnID := iopGetChannel(addr)
		chn := &dmac.Channels[chnID]

		switch addr & 0xF {
		case IOP_DMA_REG_MADR:
			return chn.MADR
		case IOP_DMA_REG_CHCR:
			chcr := &chn.Chcr
			var data uint32
			data |= oneIfTrue(chcr.Dir)
			data |= oneIfTrue(chcr.Dec) << 1
			data |= oneIfTrue(chcr.Tte) << 8
			data |= uint32(chcr.Mod) << 9
			data |= uint32(chcr.Cpd) << 16
			data |= uint32(chcr.Cpc) << 20
			data |= oneIfTrue(chcr.Str) << 24
			data |= oneIfTrue(chcr.Fst) << 28
			data |= oneIfTrue(chcr.Spf) << 30
			return data
		default:
			panicFmt("dmac:iop: unhandled 32-bit channel read @ 0x%08x", addr)
		}
	}

	switch addr {
	case DPCR_ADDR:
		return dmac.DPCR
	case DICR_ADDR:
		var data uint32
		data |= uint32(dmac.Dicr.Sie)
		data |= oneIfTrue(dmac.Dicr.Bef) << 15
		data |= uint32(dmac.Dicr.Im) << 16
		data |= oneIfTrue(dmac.Dicr.Mie) << 23
		data |= uint32(dmac.Dicr.Ip) << 24
		data |= oneIfTrue(dmac.Dicr.Mif) << 31
		return data
	case DPCR2_ADDR:
		return dmac.DPCR2
	case DICR2_ADDR:
		var data uint32
		data |= uint32(dmac.Dicr2.Tie)
		data |= uint32(dmac.Dicr2.Im) << 16
		data |= uint32(dmac.Dicr2.Ip) << 24
		return data
	case DMACEN_ADDR:
		return oneIfTrue(dmac.DMACEN)
	default:
		panicFmt("dmac:iop: unhandled 32-bit control read @ 0x%08x", addr)
	}
	return 0
}

// Writes a 16-bit DMAC register (BCR halves)
func (dmac *IOPDmac) Write16(addr uint32, data uint16) {
	if addr < DPCR_ADDR || (addr > DICR_ADDR && addr < DPCR2_ADDR) {
		chnID := iopGetChannel(addr)
		chn := &dmac.Channels[chnID]

		switch addr & 0xF {
		case IOP_DMA_REG_BCR:
			chn.Size = data
			chn.Len = uint32(chn.Count) * uint32(chn.Size)
		case IOP_DMA_REG_BCR + 2:
			chn.Count = data
			chn.Len = uint32(chn.Count) * uint32(chn.Size)
		default:
			panicFmt("dmac:iop: unhandled 16-bit channel write @ 0x%08x = 0x%04x", addr, data)
		}
		return
	}

	panicFmt("dmac:iop: unhandled 16-bit control write @ 0x%08x = 0x%04x", addr, data)
}

// Writes a 32-bit DMAC register
func (dmac *IOPDmac) Write32(addr, data uint32) {
	if addr < DPCR_ADDR || (addr > DICR_ADDR && addr < DPCR2_ADDR) {
		chnID := iopGetChannel(addr)
		chn := &dmac.Channels[chnID]

		switch addr & 0xF {
		case IOP_DMA_REG_MADR:
			chn.MADR = data & 0xFFFFFC
		case IOP_DMA_REG_BCR:
			chn.Size = uint16(data)
			chn.Count = uint16(data >> 16)
			chn.Len = uint32(chn.Count) * uint32(chn.Size)
		case IOP_DMA_REG_CHCR:
			chcr := &chn.Chcr

			if data&(1<<29) != 0 {
				panicFmt("dmac:iop: unhandled unique bit in D%d_CHCR = 0x%08x", chnID, data)
			}

			chcr.Dir = data&(1<<0) != 0
			chcr.Dec = data&(1<<1) != 0
			chcr.Tte = data&(1<<8) != 0
			chcr.Mod = uint8((data >> 9) & 3)
			chcr.Cpd = uint8((data >> 16) & 7)
			chcr.Cpc = uint8((data >> 20) & 7)
			chcr.Str = data&(1<<24) != 0
			chcr.Fst = data&(1<<28) != 0
			chcr.Spf = data&(1<<30) != 0

			dmac.checkRunning(chnID)
		case IOP_DMA_REG_TADR:
			chn.TADR = data & 0xFFFFFC
		default:
			panicFmt("dmac:iop: unhandled 32-bit channel write @ 0x%08x = 0x%08x", addr, data)
		}
		return
	}

	switch addr {
	case DPCR_ADDR:
		dmac.DPCR = data

		dmac.checkRunningAll()
	case DICR_ADDR:
		dmac.Dicr.Sie = uint8(data & 0x7F)
		dmac.Dicr.Bef = data&(1<<15) != 0
		dmac.Dicr.Im = uint8((data >> 16) & 0x7F)
		dmac.Dicr.Mie = data&(1<<23) != 0
		dmac.Dicr.Ip = (dmac.Dicr.Ip & ^uint8(data>>24)) & 0x7F

		dmac.checkInterrupt()
	case DPCR2_ADDR:
		dmac.DPCR2 = data

		dmac.checkRunningAll()
	case DICR2_ADDR:
		// Only bits 4, 9 and 10 of TIE can be set
		dmac.Dicr2.Tie = uint16(data) & 0x610
		dmac.Dicr2.Im = uint8((data >> 16) & 0x3F)
		dmac.Dicr2.Ip = (dmac.Dicr2.Ip & ^uint8(data>>24)) & 0x3F

		dmac.checkInterrupt()
	case DMACEN_ADDR:
		dmac.DMACEN = data&1 != 0

		dmac.checkRunningAll()
	case DMACINTEN_ADDR:
		dmac.Cie = data&(1<<0) != 0
		dmac.Mid = data&(1<<1) != 0

		dmac.checkInterrupt()
	default:
		panicFmt("dmac:iop: unhandled 32-bit control write @ 0x%08x = 0x%08x", addr, data)
	}
}

// Sets DRQ, runs the channel if it became eligible
func (dmac *IOPDmac) SetDRQ(chn IOPChannel, drq bool) {
	dmac.Channels[chn].DRQ = drq

	if drq {
		dmac.checkRunning(chn)
	}
}
