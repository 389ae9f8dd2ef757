package emulator

// MMI opcodes (funct field)
const (
	MMI_PLZCW  = 0x04
	MMI_MMI0   = 0x08
	MMI_MMI2   = 0x09
	MMI_MFHI1  = 0x10
	MMI_MTHI1  = 0x11
	MMI_MFLO1  = 0x12
	MMI_MTLO1  = 0x13
	MMI_MULT1  = 0x18
	MMI_MULTU1 = 0x19
	MMI_DIV1   = 0x1A
	MMI_DIVU1  = 0x1B
	MMI_MMI1   = 0x28
	MMI_MMI3   = 0x29
)

// MMI0 opcodes (shamt field)
const (
	MMI0_PSUBB  = 0x09
	MMI0_PEXTLW = 0x12
)

// MMI1 opcodes
const (
	MMI1_PADDUW = 0x10
)

// MMI2 opcodes
const (
	MMI2_PMFHI  = 0x08
	MMI2_PMFLO  = 0x09
	MMI2_PCPYLD = 0x0E
	MMI2_PAND   = 0x12
)

// MMI3 opcodes
const (
	MMI3_PMTHI  = 0x08
	MMI3_PMTLO  = 0x09
	MMI3_PCPYUD = 0x0E
	MMI3_POR    = 0x12
	MMI3_PNOR   = 0x13
	MMI3_PCPYH  = 0x1B
)

// Decodes the multimedia instruction family
func (cpu *EECore) decodeMMI(instr Instruction) {
	switch instr.Subfunction() {
	case MMI_PLZCW:
		cpu.OpPLZCW(instr)
	case MMI_MMI0:
		switch instr.Shift() {
		case MMI0_PSUBB:
			cpu.OpPSUBB(instr)
		case MMI0_PEXTLW:
			cpu.OpPEXTLW(instr)
		default:
			panicFmt("ee: unhandled MMI0 instruction 0x%02x (0x%08x) @ 0x%08x",
				instr.Shift(), uint32(instr), cpu.CPC)
		}
	case MMI_MMI1:
		switch instr.Shift() {
		case MMI1_PADDUW:
			cpu.OpPADDUW(instr)
		default:
			panicFmt("ee: unhandled MMI1 instruction 0x%02x (0x%08x) @ 0x%08x",
				instr.Shift(), uint32(instr), cpu.CPC)
		}
	case MMI_MMI2:
		switch instr.Shift() {
		case MMI2_PMFHI:
			cpu.set128(instr.D(), cpu.Regs[REG_HI])
		case MMI2_PMFLO:
			cpu.set128(instr.D(), cpu.Regs[REG_LO])
		case MMI2_PCPYLD:
			cpu.OpPCPYLD(instr)
		case MMI2_PAND:
			cpu.OpPAND(instr)
		default:
			panicFmt("ee: unhandled MMI2 instruction 0x%02x (0x%08x) @ 0x%08x",
				instr.Shift(), uint32(instr), cpu.CPC)
		}
	case MMI_MMI3:
		switch instr.Shift() {
		case MMI3_PMTHI:
			cpu.Regs[REG_HI] = cpu.Regs[instr.S()]
		case MMI3_PMTLO:
			cpu.Regs[REG_LO] = cpu.Regs[instr.S()]
		case MMI3_PCPYUD:
			cpu.OpPCPYUD(instr)
		case MMI3_POR:
			cpu.OpPOR(instr)
		case MMI3_PNOR:
			cpu.OpPNOR(instr)
		case MMI3_PCPYH:
			cpu.OpPCPYH(instr)
		default:
			panicFmt("ee: unhandled MMI3 instruction 0x%02x (0x%08x) @ 0x%08x",
				instr.Shift(), uint32(instr), cpu.CPC)
		}
	case MMI_MFHI1:
		cpu.set64(instr.D(), cpu.Regs[REG_HI].Hi)
	case MMI_MTHI1:
		cpu.Regs[REG_HI].Hi = cpu.reg(instr.S())
	case MMI_MFLO1:
		cpu.set64(instr.D(), cpu.Regs[REG_LO].Hi)
	case MMI_MTLO1:
		cpu.Regs[REG_LO].Hi = cpu.reg(instr.S())
	case MMI_MULT1:
		cpu.OpMULT(instr, 1)
	case MMI_MULTU1:
		cpu.OpMULTU(instr, 1)
	case MMI_DIV1:
		cpu.OpDIV(instr, 1)
	case MMI_DIVU1:
		cpu.OpDIVU(instr, 1)
	default:
		panicFmt("ee: unhandled MMI instruction 0x%02x (0x%08x) @ 0x%08x",
			instr.Subfunction(), uint32(instr), cpu.CPC)
	}
}

// Parallel Leading Zeroes or ones Count Word. Counts leading bits
// equal to the sign bit, minus the sign bit itself, in both words of
// the low lane
func (cpu *EECore) OpPLZCW(instr Instruction) {
	rs := cpu.Regs[instr.S()]

	res := uint64(countLeadingBits(rs.U32(0)) - 1)
	res |= uint64(countLeadingBits(rs.U32(1))-1) << 32

	cpu.set64(instr.D(), res)
}

// Parallel SUBtract Byte
func (cpu *EECore) OpPSUBB(instr Instruction) {
	rs := cpu.Regs[instr.S()]
	rt := cpu.Regs[instr.T()]

	var res U128
	for i := 0; i < 16; i++ {
		res.SetU8(i, rs.U8(i)-rt.U8(i))
	}

	cpu.set128(instr.D(), res)
}

// Parallel EXTend Lower Word. Interleaves the low words of rs and rt
func (cpu *EECore) OpPEXTLW(instr Instruction) {
	rs := cpu.Regs[instr.S()]
	rt := cpu.Regs[instr.T()]

	var res U128
	res.SetU32(0, rt.U32(0))
	res.SetU32(1, rs.U32(0))
	res.SetU32(2, rt.U32(1))
	res.SetU32(3, rs.U32(1))

	cpu.set128(instr.D(), res)
}

// Parallel ADD Unsigned saturating Word
func (cpu *EECore) OpPADDUW(instr Instruction) {
	rs := cpu.Regs[instr.S()]
	rt := cpu.Regs[instr.T()]

	var res U128
	for i := 0; i < 4; i++ {
		sum := uint64(rs.U32(i)) + uint64(rt.U32(i))
		if sum > 0xFFFFFFFF {
			sum = 0xFFFFFFFF
		}
		res.SetU32(i, uint32(sum))
	}

	cpu.set128(instr.D(), res)
}

// Parallel CoPY Lower Doubleword. rs goes to the high lane, rt to the
// low lane
func (cpu *EECore) OpPCPYLD(instr Instruction) {
	cpu.set128(instr.D(), U128{
		Lo: cpu.Regs[instr.T()].Lo,
		Hi: cpu.Regs[instr.S()].Lo,
	})
}

// Parallel CoPY Upper Doubleword
func (cpu *EECore) OpPCPYUD(instr Instruction) {
	cpu.set128(instr.D(), U128{
		Lo: cpu.Regs[instr.S()].Hi,
		Hi: cpu.Regs[instr.T()].Hi,
	})
}

// Parallel CoPY Halfword. Broadcasts the lowest halfword of each lane
func (cpu *EECore) OpPCPYH(instr Instruction) {
	rt := cpu.Regs[instr.T()]

	var res U128
	for i := 0; i < 4; i++ {
		res.SetU16(i, rt.U16(0))
		res.SetU16(i+4, rt.U16(4))
	}

	cpu.set128(instr.D(), res)
}

// Parallel AND
func (cpu *EECore) OpPAND(instr Instruction) {
	rs := cpu.Regs[instr.S()]
	rt := cpu.Regs[instr.T()]

	cpu.set128(instr.D(), U128{Lo: rs.Lo & rt.Lo, Hi: rs.Hi & rt.Hi})
}

// Parallel OR
func (cpu *EECore) OpPOR(instr Instruction) {
	rs := cpu.Regs[instr.S()]
	rt := cpu.Regs[instr.T()]

	cpu.set128(instr.D(), U128{Lo: rs.Lo | rt.Lo, Hi: rs.Hi | rt.Hi})
}

// Parallel NOR
func (cpu *EECore) OpPNOR(instr Instruction) {
	rs := cpu.Regs[instr.S()]
	rt := cpu.Regs[instr.T()]

	cpu.set128(instr.D(), U128{Lo: ^(rs.Lo | rt.Lo), Hi: ^(rs.Hi | rt.Hi)})
}
