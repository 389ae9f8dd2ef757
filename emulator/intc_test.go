package emulator

import "testing"

func TestEEIntcWriteSemantics(t *testing.T) {
	assert := func(v bool) {
		if !v {
			t.Error("assert failed")
		}
	}

	emu := newTestEmulator(t)
	intc := emu.Intc

	intc.SendInterrupt(INT_VBLANK_START)
	intc.SendInterrupt(INT_TIMER0)
	assert(intc.ReadStat() == (1<<INT_VBLANK_START)|(1<<INT_TIMER0))

	// Writing STAT clears the written bits
	intc.WriteStat(1 << INT_VBLANK_START)
	assert(intc.ReadStat() == 1<<INT_TIMER0)

	// Writing MASK toggles
	intc.WriteMask(1 << INT_TIMER0)
	assert(intc.ReadMask() == 1<<INT_TIMER0)
	intc.WriteMask(1 << INT_TIMER0)
	assert(intc.ReadMask() == 0)
}

func TestIOPIntcCtrlReadClears(t *testing.T) {
	assert := func(v bool) {
		if !v {
			t.Error("assert failed")
		}
	}

	emu := newTestEmulator(t)
	intc := emu.Intc

	intc.WriteCtrlIOP(1)
	assert(intc.ReadCtrlIOP() == 1)

	// Reading I_CTRL turned interrupts off
	assert(intc.ReadCtrlIOP() == 0)
}

func TestIOPIntcPendingRequiresCtrl(t *testing.T) {
	assert := func(v bool) {
		if !v {
			t.Error("assert failed")
		}
	}

	emu := newTestEmulator(t)
	intc := emu.Intc

	intc.WriteMaskIOP(1 << IOP_INT_DMA)
	intc.SendInterruptIOP(IOP_INT_DMA)

	// Masked and pending, but the master enable is off
	assert(emu.IOP.Cop0.Cause&(1<<10) == 0)

	intc.WriteCtrlIOP(1)
	assert(emu.IOP.Cop0.Cause&(1<<10) != 0)

	// Acknowledging I_STAT drops the line
	intc.WriteStatIOP(1 << IOP_INT_DMA)
	assert(emu.IOP.Cop0.Cause&(1<<10) == 0)
}
