package emulator

import (
	"encoding/binary"
	"testing"
)

func TestSIFMailboxSemantics(t *testing.T) {
	assert := func(v bool) {
		if !v {
			t.Error("assert failed")
		}
	}

	emu := newTestEmulator(t)
	sif := emu.SIF

	// MSFLG: EE sets bits, IOP clears them
	sif.Write(SIF_RANGE.Start+SIF_REG_MSFLG, 0x30)
	assert(sif.ReadIOP(0x1D000000+SIF_REG_MSFLG) == 0x30)

	sif.WriteIOP(0x1D000000+SIF_REG_MSFLG, 0x10)
	assert(sif.Read(SIF_RANGE.Start+SIF_REG_MSFLG) == 0x20)

	// SMFLG: IOP sets bits, EE clears them
	sif.WriteIOP(0x1D000000+SIF_REG_SMFLG, 0x10000)
	sif.Write(SIF_RANGE.Start+SIF_REG_SMFLG, 0x10000)
	assert(sif.ReadIOP(0x1D000000+SIF_REG_SMFLG) == 0)
}

// Runs the IOP-side SIF0 chain walk and checks the FIFO contents and
// the transfer-end interrupt
func TestSIF0DMA(t *testing.T) {
	assert := func(v bool) {
		if !v {
			t.Error("assert failed")
		}
	}

	emu := newTestEmulator(t)

	// DMAtag at 0x100000: MADR = 0x200000, tag end; len = 4 words
	binary.LittleEndian.PutUint32(emu.IOPRAM[0x100000:], 0x200000|3<<30)
	binary.LittleEndian.PutUint32(emu.IOPRAM[0x100004:], 4)

	// EEtag words transferred ahead of the data
	binary.LittleEndian.PutUint32(emu.IOPRAM[0x100008:], 0x7000_0004)
	binary.LittleEndian.PutUint32(emu.IOPRAM[0x10000C:], 0x0000_1000)

	// Payload
	for i := uint32(0); i < 4; i++ {
		binary.LittleEndian.PutUint32(emu.IOPRAM[0x200000+4*i:], 0xCAFE0001+i)
	}

	dmac := emu.IOPDmac

	// Enable the DMAC, the SIF0 interrupt and the channel priority
	// bit, then kick the channel
	dmac.Write32(DMACEN_ADDR, 1)
	dmac.Write32(DICR_ADDR, 1<<23) // Master interrupt enable
	dmac.Write32(DICR2_ADDR, 1<<(16+int(IOP_CH_SIF0)-7))
	dmac.Write32(DPCR2_ADDR, 1<<(4*(int(IOP_CH_SIF0)-7)+3))

	dmac.Write32(0x1F801520+IOP_DMA_REG_TADR, 0x100000)
	dmac.Write32(0x1F801520+IOP_DMA_REG_CHCR, (1<<24)|(1<<8)|(3<<9)|1)

	// The FIFO now holds the two EEtag words followed by the data
	sif := emu.SIF
	assert(sif.SIF0Size() == 6)
	assert(sif.ReadSIF0() == 0x7000_0004)
	assert(sif.ReadSIF0() == 0x0000_1000)
	for i := uint32(0); i < 4; i++ {
		assert(sif.ReadSIF0() == 0xCAFE0001+i)
	}

	// Drain the transfer-end event: the interrupt pending bit rises
	// and the DMA interrupt reaches the IOP INTC
	runScheduler(emu, 16*4+1)

	assert(dmac.Dicr2.Ip&(1<<(int(IOP_CH_SIF0)-7)) != 0)
	assert(emu.Intc.IopStat&(1<<IOP_INT_DMA) != 0)
	assert(!dmac.Channels[IOP_CH_SIF0].Chcr.Str)
}

// Runs the full EE -> IOP SIF1 path: source chain walk on the EE,
// FIFO hand-off, IOP-side writeback
func TestSIF1DMA(t *testing.T) {
	assert := func(v bool) {
		if !v {
			t.Error("assert failed")
		}
	}

	emu := newTestEmulator(t)

	// EE source chain at 0x10000: one REFE tag pointing at 0x20000,
	// 2 quadwords. The upper tag half carries the IOP-side tag:
	// MADR = 0x30000, tag end, len = 8 words
	tagLo := uint64(2) | uint64(EE_TAG_REFE)<<28 | uint64(0x20000)<<32
	binary.LittleEndian.PutUint64(emu.RAM[0x10000:], tagLo)
	binary.LittleEndian.PutUint32(emu.RAM[0x10008:], 0x30000|3<<30)
	binary.LittleEndian.PutUint32(emu.RAM[0x1000C:], 8)

	for i := 0; i < 8; i++ {
		binary.LittleEndian.PutUint32(emu.RAM[0x20000+4*i:], 0xBEEF0000+uint32(i))
	}

	// IOP side: DMAC enabled, SIF1 channel started in chain mode
	iopDmac := emu.IOPDmac
	iopDmac.Write32(DMACEN_ADDR, 1)
	iopDmac.Write32(DPCR2_ADDR, 1<<(4*(int(IOP_CH_SIF1)-7)+3))
	iopDmac.Write32(0x1F801530+IOP_DMA_REG_CHCR, (1<<24)|(1<<8)|(3<<9))

	// EE side: enable the DMAC and start the SIF1 source chain
	eeDmac := emu.EEDmac
	eeDmac.Write(D_CTRL_ADDR, 1)
	eeDmac.Write(0x1000C430, 0x10000)                // TADR
	eeDmac.Write(0x1000C400, (1<<8)|(1<<6)|(1<<2)|1) // CHCR: str, tte, chain, from memory

	// The IOP consumed the tag quadword and wrote the payload
	for i := 0; i < 8; i++ {
		got := binary.LittleEndian.Uint32(emu.IOPRAM[0x30000+4*i:])
		assert(got == 0xBEEF0000+uint32(i))
	}

	assert(!eeDmac.Channels[EE_CH_SIF1].Chcr.Str)
}
