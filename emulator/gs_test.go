package emulator

import "testing"

func TestHBLANKToVBLANKScheduling(t *testing.T) {
	assert := func(v bool) {
		if !v {
			t.Error("assert failed")
		}
	}

	emu := newTestEmulator(t)

	runScheduler(emu, 240*CYCLES_PER_SCANLINE+1)

	assert(emu.Intc.Stat&(1<<INT_VBLANK_START) != 0)
	assert(emu.Intc.IopStat&(1<<IOP_INT_VBLANK_START) != 0)
	assert(emu.GS.CSR&CSR_VSINT != 0)
	assert(emu.GS.LineCounter == 240)
}

func TestVBLANKEndWrapsLineCounter(t *testing.T) {
	assert := func(v bool) {
		if !v {
			t.Error("assert failed")
		}
	}

	emu := newTestEmulator(t)

	runScheduler(emu, 262*CYCLES_PER_SCANLINE+1)

	assert(emu.Intc.Stat&(1<<INT_VBLANK_END) != 0)
	assert(emu.Intc.IopStat&(1<<IOP_INT_VBLANK_END) != 0)
	assert(emu.GS.LineCounter == 0)
}

func TestCSRWriteClearsEventBits(t *testing.T) {
	assert := func(v bool) {
		if !v {
			t.Error("assert failed")
		}
	}

	emu := newTestEmulator(t)
	gs := emu.GS

	gs.CSR |= CSR_HSINT | CSR_VSINT

	gs.WritePriv(GS_PRIV_CSR, CSR_VSINT)

	assert(gs.CSR&CSR_VSINT == 0)
	assert(gs.CSR&CSR_HSINT != 0)
}

func TestFinishSetsCSRFlag(t *testing.T) {
	emu := newTestEmulator(t)

	emu.GS.WriteInternal(GS_REG_FINISH, 0)

	if emu.GS.CSR&CSR_FINISH == 0 {
		t.Error("FINISH flag not set")
	}
}

func TestHBLANKTicksTimers(t *testing.T) {
	assert := func(v bool) {
		if !v {
			t.Error("assert failed")
		}
	}

	emu := newTestEmulator(t)

	// EE timer 0 on the HBLANK clock source, counting up
	emu.EETimers.Write32(TIMER_RANGE.Start+EE_TIMER_REG_MODE, (1<<7)|3)

	// IOP timer 1 on the external clock
	emu.IOPTimers.Write16(IOP_TIMER0_RANGE.Start+0x10+IOP_TIMER_REG_MODE, 1<<8)

	runScheduler(emu, 10*CYCLES_PER_SCANLINE)

	assert(emu.EETimers.Timers[0].Count == 10)
	assert(emu.IOPTimers.Timers[1].Count == 10)
}

func TestGIFPackedSpriteDraw(t *testing.T) {
	assert := func(v bool) {
		if !v {
			t.Error("assert failed")
		}
	}

	emu := newTestEmulator(t)
	gs := emu.GS

	// Frame at VRAM origin, 64 pixels wide, open scissor
	gs.WriteInternal(GS_REG_FRAME_1, 1<<16)
	gs.WriteInternal(GS_REG_SCISSOR_1, uint64(0x3F)<<16|uint64(0x3F)<<48)
	gs.WriteInternal(GS_REG_XYOFFSET_1, 0)
	gs.WriteInternal(GS_REG_PRMODECONT, 1)

	// One PACKED GIFtag: PRIM = sprite, 3 A+D loops
	var tag U128
	tag.SetU16(0, 3)            // NLOOP = 3, EOP clear
	tag.Lo |= 1 << 46           // PRIM write
	tag.Lo |= PRIM_SPRITE << 47 // PRIM data
	tag.Lo |= 1 << 60           // NREGS = 1
	tag.Hi = GIF_DESC_AD        // A+D descriptor
	emu.GIF.WritePATH3(tag)

	// RGBAQ = opaque red
	var rgbaq U128
	rgbaq.Lo = 0x000000FF
	rgbaq.SetU8(8, GS_REG_RGBAQ)
	emu.GIF.WritePATH3(rgbaq)

	// Two XYZ2 vertices spanning a 2x2 pixel square
	var v0 U128
	v0.Lo = 0
	v0.SetU8(8, GS_REG_XYZ2)
	emu.GIF.WritePATH3(v0)

	var v1 U128
	v1.Lo = uint64(2<<4) | uint64(2<<4)<<16
	v1.SetU8(8, GS_REG_XYZ2)
	emu.GIF.WritePATH3(v1)

	assert(gs.VRAM[0] == 0xFF)
	assert(gs.VRAM[1] == 0xFF)
	assert(gs.VRAM[64] == 0xFF)
	assert(gs.VRAM[65] == 0xFF)
	assert(gs.VRAM[2] == 0)
}
