package emulator

import "testing"

// EE register indices used by the tests
const (
	testRegT0 = 8
	testRegT1 = 9
	testRegT2 = 10
)

func TestBootInstructionFetch(t *testing.T) {
	assert := func(v bool) {
		if !v {
			t.Error("assert failed")
		}
	}

	// lui t0, 0xBFC0
	emu := newTestEmulator(t, 0x3C08BFC0)

	emu.EE.Step(1)

	assert(emu.EE.Regs[testRegT0].Lo == 0xFFFFFFFFBFC00000)
	assert(emu.EE.PC == 0xBFC00004)
	assert(emu.EE.NPC == 0xBFC00008)
}

func TestDelayedBranch(t *testing.T) {
	assert := func(v bool) {
		if !v {
			t.Error("assert failed")
		}
	}

	// beq r0, r0, +8 ; ori t1, t1, 0x1234
	emu := newTestEmulator(t, 0x10000002, 0x35291234)

	emu.EE.Step(2)

	// The ORI ran in the delay slot, then the branch target became
	// the new PC
	assert(emu.EE.Regs[testRegT1].Lo&0xFFFF == 0x1234)
	assert(emu.EE.PC == 0xBFC0000C)
}

func TestLikelyBranchNullifiesDelaySlot(t *testing.T) {
	assert := func(v bool) {
		if !v {
			t.Error("assert failed")
		}
	}

	// bnel r0, r0, +8 (never taken) ; ori t1, t1, 0x1234 ; sll r0,r0,0
	emu := newTestEmulator(t, 0x54000002, 0x35291234, 0x00000000)

	emu.EE.Step(2)

	// The delay slot was skipped
	assert(emu.EE.Regs[testRegT1].Lo&0xFFFF == 0)
	assert(emu.EE.PC == 0xBFC0000C)
}

func TestGPRZeroHardwired(t *testing.T) {
	emu := newTestEmulator(t)

	emu.EE.set32(0, 0xDEADBEEF)
	emu.EE.set64(0, 0xDEADBEEF)
	emu.EE.set128(0, U128{Lo: 1, Hi: 2})

	if emu.EE.Regs[0] != (U128{}) {
		t.Error("EE GPR 0 is writable")
	}
}

func TestBranchInDelaySlotIsFatal(t *testing.T) {
	// beq r0, r0, +8 ; beq r0, r0, +8
	emu := newTestEmulator(t, 0x10000002, 0x10000002)

	defer func() {
		if recover() == nil {
			t.Error("branch in delay slot did not panic")
		}
	}()

	emu.EE.Step(2)
}

func TestSet32SignExtends(t *testing.T) {
	assert := func(v bool) {
		if !v {
			t.Error("assert failed")
		}
	}

	emu := newTestEmulator(t)

	emu.EE.set32(testRegT0, 0x80000000)
	assert(emu.EE.Regs[testRegT0].Lo == 0xFFFFFFFF80000000)

	emu.EE.set32(testRegT0, 0x7FFFFFFF)
	assert(emu.EE.Regs[testRegT0].Lo == 0x7FFFFFFF)

	// 64-bit writes leave the upper lane undisturbed
	emu.EE.Regs[testRegT0].Hi = 0x1122334455667788
	emu.EE.set64(testRegT0, 1)
	assert(emu.EE.Regs[testRegT0].Hi == 0x1122334455667788)
}

func TestScratchpadMirror(t *testing.T) {
	assert := func(v bool) {
		if !v {
			t.Error("assert failed")
		}
	}

	emu := newTestEmulator(t)

	emu.EE.write32(0x70000040, 0xCAFEBABE)

	// Addresses differing only in bits above 14 alias the same cell
	assert(emu.EE.read32(0x70004040) == 0xCAFEBABE)
	assert(emu.EE.read32(0x7000C040) == 0xCAFEBABE)
}

func TestDivByZero(t *testing.T) {
	assert := func(v bool) {
		if !v {
			t.Error("assert failed")
		}
	}

	emu := newTestEmulator(t)

	// div t0, t1 with t1 = 0
	emu.EE.set32(testRegT0, 25)
	emu.EE.set32(testRegT1, 0)
	emu.EE.DecodeAndExecute(Instruction(0x0109001A)) // div r0, t0, t1

	assert(emu.EE.Regs[REG_LO].Lo == 0xFFFFFFFFFFFFFFFF)
	assert(emu.EE.Regs[REG_HI].Lo == 25)

	// INT32_MIN / -1 saturates
	emu.EE.set32(testRegT0, 0x80000000)
	emu.EE.set32(testRegT1, 0xFFFFFFFF)
	emu.EE.DecodeAndExecute(Instruction(0x0109001A))

	assert(emu.EE.Regs[REG_LO].Lo == 0xFFFFFFFF80000000)
	assert(emu.EE.Regs[REG_HI].Lo == 0)
}

func TestMultPipelines(t *testing.T) {
	assert := func(v bool) {
		if !v {
			t.Error("assert failed")
		}
	}

	emu := newTestEmulator(t)

	emu.EE.set32(testRegT0, 3)
	emu.EE.set32(testRegT1, 5)

	// mult t2, t0, t1
	emu.EE.DecodeAndExecute(Instruction(0x01095018))
	// mult1 r0, t0, t1 with different operands
	emu.EE.set32(testRegT1, 7)
	emu.EE.DecodeAndExecute(Instruction(0x71090018))

	assert(emu.EE.Regs[REG_LO].Lo == 15)
	assert(emu.EE.Regs[REG_LO].Hi == 21)
	assert(emu.EE.Regs[testRegT2].Lo == 15)
}

func TestQuadwordLoadStore(t *testing.T) {
	assert := func(v bool) {
		if !v {
			t.Error("assert failed")
		}
	}

	emu := newTestEmulator(t)

	emu.EE.Regs[testRegT0] = U128{Lo: 0x1111111122222222, Hi: 0x3333333344444444}
	emu.EE.set32(testRegT1, 0x5000)

	// sq t0, 0(t1) ; lq t2, 0(t1)
	emu.EE.DecodeAndExecute(Instruction(0x7D280000))
	emu.EE.DecodeAndExecute(Instruction(0x792A0000))

	assert(emu.EE.Regs[testRegT2] == (U128{Lo: 0x1111111122222222, Hi: 0x3333333344444444}))
}

func TestEEInterruptDelivery(t *testing.T) {
	assert := func(v bool) {
		if !v {
			t.Error("assert failed")
		}
	}

	// sll r0, r0, 0 (nop)
	emu := newTestEmulator(t, 0x00000000, 0x00000000)

	// Unmask VBLANKStart and open the COP0 interrupt gates
	emu.Intc.WriteMask(1 << INT_VBLANK_START)

	cop := emu.EE.Cop0
	cop.Status.IE = true
	cop.Status.EIE = true
	cop.Status.ERL = false
	cop.Status.IM = 1 // INTC line

	emu.Intc.SendInterrupt(INT_VBLANK_START)

	emu.EE.Step(1)

	// BEV is set, so the interrupt vector is in the BIOS mirror
	assert(emu.EE.PC == 0xBFC00400)
	assert(cop.Status.EXL)
	assert(cop.Cause.Excode == uint8(EXCEPTION_EE_INTERRUPT))
	assert(cop.EPC == 0xBFC00000)
}
