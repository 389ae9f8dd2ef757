package emulator

import "testing"

func TestSPRDMARoundTrip(t *testing.T) {
	assert := func(v bool) {
		if !v {
			t.Error("assert failed")
		}
	}

	emu := newTestEmulator(t)
	dmac := emu.EEDmac

	for i := 0; i < 32; i++ {
		emu.RAM[0x8000+i] = byte(i)
	}

	dmac.Write(D_CTRL_ADDR, 1)

	// SPR_TO: RAM 0x8000 -> scratchpad 0x100, 2 quadwords
	dmac.Write(0x1000D400+EE_DMA_REG_MADR, 0x8000)
	dmac.Write(0x1000D400+EE_DMA_REG_SADR, 0x100)
	dmac.Write(0x1000D400+EE_DMA_REG_QWC, 2)
	dmac.Write(0x1000D400+EE_DMA_REG_CHCR, 1<<8)

	for i := 0; i < 32; i++ {
		assert(emu.EE.SPRAM[0x100+i] == byte(i))
	}

	// SPR_FROM: scratchpad 0x100 -> RAM 0xA000
	dmac.Write(0x1000D000+EE_DMA_REG_MADR, 0xA000)
	dmac.Write(0x1000D000+EE_DMA_REG_SADR, 0x100)
	dmac.Write(0x1000D000+EE_DMA_REG_QWC, 2)
	dmac.Write(0x1000D000+EE_DMA_REG_CHCR, 1<<8)

	for i := 0; i < 32; i++ {
		assert(emu.RAM[0xA000+i] == byte(i))
	}

	// Both transfers latched their interrupt status
	assert(dmac.Stat.Cis&(1<<EE_CH_SPR_TO) != 0)
	assert(dmac.Stat.Cis&(1<<EE_CH_SPR_FROM) != 0)
}

func TestPATH3FeedsGIF(t *testing.T) {
	assert := func(v bool) {
		if !v {
			t.Error("assert failed")
		}
	}

	emu := newTestEmulator(t)
	dmac := emu.EEDmac

	// A one-loop A+D PACKED packet that sets FINISH
	var tag U128
	tag.SetU16(0, 1)  // NLOOP = 1
	tag.Lo |= 1 << 60 // NREGS = 1
	tag.Hi = GIF_DESC_AD
	storeBuf128(emu.RAM, 0x9000, tag)

	var finish U128
	finish.SetU8(8, GS_REG_FINISH)
	storeBuf128(emu.RAM, 0x9010, finish)

	dmac.Write(D_CTRL_ADDR, 1)

	dmac.Write(0x1000A000+EE_DMA_REG_MADR, 0x9000)
	dmac.Write(0x1000A000+EE_DMA_REG_QWC, 2)
	dmac.Write(0x1000A000+EE_DMA_REG_CHCR, 1<<8)

	assert(emu.GS.CSR&CSR_FINISH != 0)
	assert(dmac.Channels[EE_CH_PATH3].QWC == 0)
	assert(!dmac.Channels[EE_CH_PATH3].Chcr.Str)
}

func TestDMAEnableGatesTransfers(t *testing.T) {
	assert := func(v bool) {
		if !v {
			t.Error("assert failed")
		}
	}

	emu := newTestEmulator(t)
	dmac := emu.EEDmac

	// D_CTRL.DMAE is clear: kicking a channel must do nothing
	dmac.Write(0x1000D400+EE_DMA_REG_QWC, 1)
	dmac.Write(0x1000D400+EE_DMA_REG_CHCR, 1<<8)

	assert(dmac.Channels[EE_CH_SPR_TO].QWC == 1)
	assert(dmac.Channels[EE_CH_SPR_TO].Chcr.Str)

	// Enabling the DMAC runs the pending channel
	dmac.Write(D_CTRL_ADDR, 1)

	assert(dmac.Channels[EE_CH_SPR_TO].QWC == 0)
	assert(!dmac.Channels[EE_CH_SPR_TO].Chcr.Str)
}

func TestDSTATWriteSemantics(t *testing.T) {
	assert := func(v bool) {
		if !v {
			t.Error("assert failed")
		}
	}

	emu := newTestEmulator(t)
	dmac := emu.EEDmac

	dmac.Stat.Cis = 1 << EE_CH_SIF0

	// Status bits are write-1-to-clear, mask bits toggle
	dmac.Write(D_STAT_ADDR, uint32(1<<EE_CH_SIF0)|uint32(1<<EE_CH_SIF0)<<16)

	assert(dmac.Stat.Cis == 0)
	assert(dmac.Stat.Cim == 1<<EE_CH_SIF0)

	dmac.Write(D_STAT_ADDR, uint32(1<<EE_CH_SIF0)<<16)
	assert(dmac.Stat.Cim == 0)
}

func TestEETimerCompareInterrupt(t *testing.T) {
	assert := func(v bool) {
		if !v {
			t.Error("assert failed")
		}
	}

	emu := newTestEmulator(t)
	timers := emu.EETimers

	// Timer 0: bus clock, compare at 4, zero return
	timers.Write32(TIMER_RANGE.Start+EE_TIMER_REG_COMP, 4)
	timers.Write32(TIMER_RANGE.Start+EE_TIMER_REG_MODE, (1<<8)|(1<<7)|(1<<6))

	timers.Step(4)

	assert(emu.Intc.Stat&(1<<INT_TIMER0) != 0)
	assert(timers.Timers[0].Count == 0)
	assert(timers.Timers[0].Mode.Equf)

	// The edge does not re-trigger while EQUF is set
	emu.Intc.WriteStat(1 << INT_TIMER0)
	timers.Step(4)
	assert(emu.Intc.Stat&(1<<INT_TIMER0) == 0)
}
