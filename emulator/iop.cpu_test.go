package emulator

import "testing"

func TestIOPCacheIsolatedStore(t *testing.T) {
	assert := func(v bool) {
		if !v {
			t.Error("assert failed")
		}
	}

	emu := newTestEmulator(t)
	iop := emu.IOP

	emu.IOPRAM[0x10000] = 0x42

	// Isolate the cache, then sb a0, 0(a1)
	iop.Cop0.Set(12, 0x10000)
	iop.set(4, 0xAB)    // a0
	iop.set(5, 0x10000) // a1
	iop.DecodeAndExecute(Instruction(0xA0A40000))

	// The store must be discarded
	assert(emu.IOPRAM[0x10000] == 0x42)

	// With isolation off it goes through
	iop.Cop0.Set(12, 0)
	iop.DecodeAndExecute(Instruction(0xA0A40000))
	assert(emu.IOPRAM[0x10000] == 0xAB)
}

func TestIOPSyscallVectoring(t *testing.T) {
	assert := func(v bool) {
		if !v {
			t.Error("assert failed")
		}
	}

	// syscall
	emu := newTestEmulator(t, 0x0000000C)
	iop := emu.IOP

	iop.Step(1)

	// BEV is set out of reset
	assert(iop.PC == 0xBFC00180)
	assert(iop.Cop0.Cause&0x7C == uint32(EXCEPTION_IOP_SYSCALL)<<2)
	assert(iop.Cop0.EPC == 0xBFC00000)
}

func TestIOPSyscallInDelaySlot(t *testing.T) {
	assert := func(v bool) {
		if !v {
			t.Error("assert failed")
		}
	}

	// beq r0, r0, +8 ; syscall
	emu := newTestEmulator(t, 0x10000002, 0x0000000C)
	iop := emu.IOP

	iop.Step(2)

	// EPC points at the branch, Cause.BD is set
	assert(iop.Cop0.EPC == 0xBFC00000)
	assert(iop.Cop0.Cause&(1<<31) != 0)
}

func TestIOPStatusStack(t *testing.T) {
	assert := func(v bool) {
		if !v {
			t.Error("assert failed")
		}
	}

	emu := newTestEmulator(t)
	cop := emu.IOP.Cop0

	// Interrupts enabled, user mode
	cop.SR = 0x3
	cop.EnterException(EXCEPTION_IOP_SYSCALL, 0x80001000, false)

	// The pair was pushed, interrupts are now disabled
	assert(cop.SR&0x3F == 0xC)

	cop.ReturnFromException()
	assert(cop.SR&0x3F == 0x3)
}

func TestIOPGPRZeroHardwired(t *testing.T) {
	emu := newTestEmulator(t)

	emu.IOP.set(0, 0xDEADBEEF)

	if emu.IOP.Regs[0] != 0 {
		t.Error("IOP GPR 0 is writable")
	}
}

func TestIOPDelayedBranch(t *testing.T) {
	assert := func(v bool) {
		if !v {
			t.Error("assert failed")
		}
	}

	// beq r0, r0, +8 ; ori t1, t1, 0x1234
	emu := newTestEmulator(t, 0x10000002, 0x35291234)
	iop := emu.IOP

	iop.Step(2)

	assert(iop.Regs[testRegT1]&0xFFFF == 0x1234)
	assert(iop.PC == 0xBFC0000C)
}

func TestIOPInterruptDelivery(t *testing.T) {
	assert := func(v bool) {
		if !v {
			t.Error("assert failed")
		}
	}

	emu := newTestEmulator(t, 0x00000000, 0x00000000)
	iop := emu.IOP

	// Enable the external interrupt line and the master switch
	iop.Cop0.SR |= 0x401 // IM bit 10 + IEc
	emu.Intc.WriteCtrlIOP(1)
	emu.Intc.WriteMaskIOP(1 << IOP_INT_CDVD)

	emu.Intc.SendInterruptIOP(IOP_INT_CDVD)

	iop.Step(1)

	assert(iop.PC == 0xBFC00184)
	assert(iop.Cop0.Cause&0x7C == 0)
	assert(iop.Cop0.EPC == 0xBFC00000)
}
