package emulator

import "log"

// EE Core constants
const (
	EELOAD_START    = 0x82000
	BIFCO_START     = 0x81FC0
	BIFCO_END       = 0x81FDC
	EE_RESET_VECTOR = 0xBFC00000
)

// Register indices of the LO/HI pair, stored after the 32 GPRs
const (
	REG_LO = 32
	REG_HI = 33
)

// EE primary opcodes
const (
	EE_OP_SPECIAL = 0x00
	EE_OP_REGIMM  = 0x01
	EE_OP_J       = 0x02
	EE_OP_JAL     = 0x03
	EE_OP_BEQ     = 0x04
	EE_OP_BNE     = 0x05
	EE_OP_BLEZ    = 0x06
	EE_OP_BGTZ    = 0x07
	EE_OP_ADDIU   = 0x09
	EE_OP_SLTI    = 0x0A
	EE_OP_SLTIU   = 0x0B
	EE_OP_ANDI    = 0x0C
	EE_OP_ORI     = 0x0D
	EE_OP_XORI    = 0x0E
	EE_OP_LUI     = 0x0F
	EE_OP_COP0    = 0x10
	EE_OP_COP1    = 0x11
	EE_OP_COP2    = 0x12
	EE_OP_BEQL    = 0x14
	EE_OP_BNEL    = 0x15
	EE_OP_BLEZL   = 0x16
	EE_OP_BGTZL   = 0x17
	EE_OP_DADDIU  = 0x19
	EE_OP_LDL     = 0x1A
	EE_OP_LDR     = 0x1B
	EE_OP_MMI     = 0x1C
	EE_OP_LQ      = 0x1E
	EE_OP_SQ      = 0x1F
	EE_OP_LB      = 0x20
	EE_OP_LH      = 0x21
	EE_OP_LWL     = 0x22
	EE_OP_LW      = 0x23
	EE_OP_LBU     = 0x24
	EE_OP_LHU     = 0x25
	EE_OP_LWR     = 0x26
	EE_OP_LWU     = 0x27
	EE_OP_SB      = 0x28
	EE_OP_SH      = 0x29
	EE_OP_SWL     = 0x2A
	EE_OP_SW      = 0x2B
	EE_OP_SDL     = 0x2C
	EE_OP_SDR     = 0x2D
	EE_OP_SWR     = 0x2E
	EE_OP_CACHE   = 0x2F
	EE_OP_LWC1    = 0x31
	EE_OP_LD      = 0x37
	EE_OP_SWC1    = 0x39
	EE_OP_SD      = 0x3F
)

// SPECIAL opcodes
const (
	EE_SPECIAL_SLL     = 0x00
	EE_SPECIAL_SRL     = 0x02
	EE_SPECIAL_SRA     = 0x03
	EE_SPECIAL_SLLV    = 0x04
	EE_SPECIAL_SRLV    = 0x06
	EE_SPECIAL_SRAV    = 0x07
	EE_SPECIAL_JR      = 0x08
	EE_SPECIAL_JALR    = 0x09
	EE_SPECIAL_MOVZ    = 0x0A
	EE_SPECIAL_MOVN    = 0x0B
	EE_SPECIAL_SYSCALL = 0x0C
	EE_SPECIAL_SYNC    = 0x0F
	EE_SPECIAL_MFHI    = 0x10
	EE_SPECIAL_MTHI    = 0x11
	EE_SPECIAL_MFLO    = 0x12
	EE_SPECIAL_MTLO    = 0x13
	EE_SPECIAL_DSLLV   = 0x14
	EE_SPECIAL_DSRLV   = 0x16
	EE_SPECIAL_DSRAV   = 0x17
	EE_SPECIAL_MULT    = 0x18
	EE_SPECIAL_MULTU   = 0x19
	EE_SPECIAL_DIV     = 0x1A
	EE_SPECIAL_DIVU    = 0x1B
	EE_SPECIAL_ADD     = 0x20
	EE_SPECIAL_ADDU    = 0x21
	EE_SPECIAL_SUB     = 0x22
	EE_SPECIAL_SUBU    = 0x23
	EE_SPECIAL_AND     = 0x24
	EE_SPECIAL_OR      = 0x25
	EE_SPECIAL_XOR     = 0x26
	EE_SPECIAL_NOR     = 0x27
	EE_SPECIAL_MFSA    = 0x28
	EE_SPECIAL_MTSA    = 0x29
	EE_SPECIAL_SLT     = 0x2A
	EE_SPECIAL_SLTU    = 0x2B
	EE_SPECIAL_DADDU   = 0x2D
	EE_SPECIAL_DSUBU   = 0x2F
	EE_SPECIAL_DSLL    = 0x38
	EE_SPECIAL_DSRL    = 0x3A
	EE_SPECIAL_DSRA    = 0x3B
	EE_SPECIAL_DSLL32  = 0x3C
	EE_SPECIAL_DSRL32  = 0x3E
	EE_SPECIAL_DSRA32  = 0x3F
)

// REGIMM opcodes
const (
	EE_REGIMM_BLTZ  = 0x00
	EE_REGIMM_BGEZ  = 0x01
	EE_REGIMM_BLTZL = 0x02
	EE_REGIMM_BGEZL = 0x03
	EE_REGIMM_MTSAH = 0x19
)

// Coprocessor opcodes (rs field)
const (
	COP_MF  = 0x00
	COP_QMF = 0x01
	COP_CF  = 0x02
	COP_MT  = 0x04
	COP_QMT = 0x05
	COP_CT  = 0x06
	COP_CO  = 0x10
)

// COP0 control opcodes
const (
	COP0_TLBWI = 0x02
	COP0_ERET  = 0x18
	COP0_EI    = 0x38
	COP0_DI    = 0x39
)

// The Emotion Engine CPU core: a MIPS-III interpreter with 128-bit
// GPRs, a single-precision FPU and the multimedia instruction set
type EECore struct {
	emu *Emulator

	Regs [34]U128 // GPRs, LO, HI

	PC, CPC, NPC uint32 // Program counters

	SA uint8 // Shift amount register

	InDelaySlot [2]bool // Branch delay helper

	Cop0 *EECop0
	FPU  *FPU
	VUs  [2]*VectorUnit

	SPRAM [SPRAM_SIZE]byte // Scratchpad RAM

	InBIFCO        bool
	IsFastBootDone bool
}

// Returns a new EE core with PC at the reset vector
func NewEECore(emu *Emulator) *EECore {
	cpu := &EECore{
		emu:  emu,
		Cop0: NewEECop0(),
		FPU:  NewFPU(),
	}

	cpu.VUs[0] = NewVectorUnit(0)
	cpu.VUs[1] = NewVectorUnit(1)
	cpu.VUs[0].OtherVU = cpu.VUs[1]
	cpu.VUs[1].OtherVU = cpu.VUs[0]

	cpu.setPC(EE_RESET_VECTOR)

	return cpu
}

// Sets a CPU register (32-bit). The value is sign-extended into the
// low 64-bit lane
func (cpu *EECore) set32(idx, data uint32) {
	cpu.Regs[idx].Lo = uint64(int64(int32(data)))

	cpu.Regs[0] = U128{}
}

// Sets a CPU register (64-bit). The high lane is left undisturbed
func (cpu *EECore) set64(idx uint32, data uint64) {
	cpu.Regs[idx].Lo = data

	cpu.Regs[0] = U128{}
}

// Sets a CPU register (128-bit)
func (cpu *EECore) set128(idx uint32, data U128) {
	cpu.Regs[idx] = data

	cpu.Regs[0] = U128{}
}

// Returns the low 64 bits of a CPU register
func (cpu *EECore) reg(idx uint32) uint64 {
	return cpu.Regs[idx].Lo
}

// Returns the low 32 bits of a CPU register
func (cpu *EECore) reg32(idx uint32) uint32 {
	return uint32(cpu.Regs[idx].Lo)
}

// Sets PC, and NPC to the instruction after it
func (cpu *EECore) setPC(addr uint32) {
	if addr == 0 {
		panicFmt("ee: jump to 0 @ 0x%08x", cpu.CPC)
	}
	if addr&3 != 0 {
		panicFmt("ee: misaligned PC 0x%08x @ 0x%08x", addr, cpu.CPC)
	}

	if cpu.InBIFCO && !(addr >= BIFCO_START && addr < BIFCO_END) {
		log.Printf("[ee] leaving BIFCO loop")
		cpu.InBIFCO = false
	}

	cpu.PC = addr
	cpu.NPC = addr + 4
}

// Sets branch PC (NPC)
func (cpu *EECore) setBranchPC(addr uint32) {
	if addr == 0 {
		panicFmt("ee: jump to 0 @ 0x%08x", cpu.CPC)
	}
	if addr&3 != 0 {
		panicFmt("ee: misaligned PC 0x%08x @ 0x%08x", addr, cpu.CPC)
	}

	cpu.NPC = addr
}

// Advances PC
func (cpu *EECore) stepPC() {
	cpu.PC = cpu.NPC
	cpu.NPC += 4
}

// Translates a virtual address to a physical address. No TLB: the
// segments are unmirrored by masking
func translateAddr(addr uint32) uint32 {
	if addr >= 0xFFFF8000 {
		// DECI2Call TLB mapped region
		return addr & 0x7FFFF
	}
	return addr & 0x1FFFFFFF
}

// Returns true if the address targets the scratchpad
func isSPRAM(addr uint32) bool {
	return addr>>28 == 7
}

// Reads a byte from memory
func (cpu *EECore) read8(addr uint32) uint8 {
	if isSPRAM(addr) {
		return cpu.SPRAM[addr&0x3FFF]
	}
	return cpu.emu.Read8(translateAddr(addr))
}

// Reads a halfword from memory
func (cpu *EECore) read16(addr uint32) uint16 {
	if isSPRAM(addr) {
		return uint16(loadBuf(cpu.SPRAM[:], addr&0x3FFE, 2))
	}
	return cpu.emu.Read16(translateAddr(addr))
}

// Reads a word from memory
func (cpu *EECore) read32(addr uint32) uint32 {
	if isSPRAM(addr) {
		return uint32(loadBuf(cpu.SPRAM[:], addr&0x3FFC, 4))
	}
	return cpu.emu.Read32(translateAddr(addr))
}

// Reads a doubleword from memory
func (cpu *EECore) read64(addr uint32) uint64 {
	if isSPRAM(addr) {
		return loadBuf(cpu.SPRAM[:], addr&0x3FF8, 8)
	}
	return cpu.emu.Read64(translateAddr(addr))
}

// Reads a quadword from memory
func (cpu *EECore) read128(addr uint32) U128 {
	if isSPRAM(addr) {
		return loadBuf128(cpu.SPRAM[:], addr&0x3FF0)
	}
	return cpu.emu.Read128(translateAddr(addr))
}

// Writes a byte to memory
func (cpu *EECore) write8(addr uint32, data uint8) {
	if isSPRAM(addr) {
		cpu.SPRAM[addr&0x3FFF] = data
		return
	}
	cpu.emu.Write8(translateAddr(addr), data)
}

// Writes a halfword to memory
func (cpu *EECore) write16(addr uint32, data uint16) {
	if isSPRAM(addr) {
		storeBuf(cpu.SPRAM[:], addr&0x3FFE, 2, uint64(data))
		return
	}
	cpu.emu.Write16(translateAddr(addr), data)
}

// Writes a word to memory
func (cpu *EECore) write32(addr uint32, data uint32) {
	if isSPRAM(addr) {
		storeBuf(cpu.SPRAM[:], addr&0x3FFC, 4, uint64(data))
		return
	}
	cpu.emu.Write32(translateAddr(addr), data)
}

// Writes a doubleword to memory
func (cpu *EECore) write64(addr uint32, data uint64) {
	if isSPRAM(addr) {
		storeBuf(cpu.SPRAM[:], addr&0x3FF8, 8, data)
		return
	}
	cpu.emu.Write64(translateAddr(addr), data)
}

// Writes a quadword to memory
func (cpu *EECore) write128(addr uint32, data U128) {
	if isSPRAM(addr) {
		storeBuf128(cpu.SPRAM[:], addr&0x3FF0, data)
		return
	}
	cpu.emu.Write128(translateAddr(addr), data)
}

// Fetches an instruction word, advances PC
func (cpu *EECore) fetchInstr() Instruction {
	instr := cpu.read32(cpu.CPC)
	cpu.stepPC()
	return Instruction(instr)
}

// Executes branches. Branching from a delay slot is a fatal decode
// error; likely branches nullify the delay slot when not taken
func (cpu *EECore) doBranch(target uint32, cond bool, linkReg uint32, likely bool) {
	if cpu.InDelaySlot[0] {
		panicFmt("ee: branch instruction in delay slot @ 0x%08x", cpu.CPC)
	}

	cpu.set32(linkReg, cpu.NPC)

	cpu.InDelaySlot[1] = true

	if cond {
		cpu.setBranchPC(target)
	} else if likely {
		// Skip the delay slot
		cpu.setPC(cpu.NPC)
		cpu.InDelaySlot[1] = false
	}
}

// Raises a level 1 exception
func (cpu *EECore) raiseLevel1Exception(e EEException) {
	cop := cpu.Cop0

	cop.SetExcode(e)

	var vector uint32
	if cop.Status.BEV {
		vector = 0xBFC00200
	} else {
		vector = 0x80000000
	}

	if e == EXCEPTION_EE_INTERRUPT {
		vector += 0x200
	} else {
		vector += 0x180
	}

	if !cop.Status.EXL {
		cop.Cause.BD = cpu.InDelaySlot[0]

		if cpu.InDelaySlot[0] {
			cop.EPC = cpu.CPC - 4
		} else {
			cop.EPC = cpu.CPC
		}
	}

	cpu.InDelaySlot[0] = false
	cpu.InDelaySlot[1] = false

	cop.Status.EXL = true

	cpu.setPC(vector)
}

// Takes a pending interrupt
func (cpu *EECore) doInterrupt() {
	cpu.CPC = cpu.PC

	cpu.InDelaySlot[0] = cpu.InDelaySlot[1]
	cpu.InDelaySlot[1] = false

	cpu.raiseLevel1Exception(EXCEPTION_EE_INTERRUPT)
}

// Runs the core for `c` cycles (one instruction per cycle). COP0
// Count is advanced once per batch
func (cpu *EECore) Step(c int64) {
	for i := int64(0); i < c; i++ {
		if cpu.Cop0.InterruptPending() {
			cpu.doInterrupt()
		}

		cpu.CPC = cpu.PC

		if cpu.CPC == BIFCO_START && !cpu.InBIFCO {
			log.Printf("[ee] entering BIFCO loop")
			cpu.InBIFCO = true
		}

		// Advance delay slot helper
		cpu.InDelaySlot[0] = cpu.InDelaySlot[1]
		cpu.InDelaySlot[1] = false

		instr := cpu.fetchInstr()

		if cpu.emu.Config.Trace {
			log.Printf("[ee] 0x%08x: %s", cpu.CPC, disasm(instr, cpu.CPC))
		}

		cpu.DecodeAndExecute(instr)
	}

	cpu.Cop0.IncrementCount(c)
}

// Decodes and executes an instruction. Unknown opcodes are fatal
func (cpu *EECore) DecodeAndExecute(instr Instruction) {
	switch instr.Function() {
	case EE_OP_SPECIAL:
		cpu.decodeSpecial(instr)
	case EE_OP_REGIMM:
		cpu.decodeRegimm(instr)
	case EE_OP_J:
		cpu.OpJ(instr)
	case EE_OP_JAL:
		cpu.OpJAL(instr)
	case EE_OP_BEQ:
		cpu.OpBEQ(instr, false)
	case EE_OP_BNE:
		cpu.OpBNE(instr, false)
	case EE_OP_BLEZ:
		cpu.OpBLEZ(instr, false)
	case EE_OP_BGTZ:
		cpu.OpBGTZ(instr, false)
	case EE_OP_ADDIU:
		cpu.OpADDIU(instr)
	case EE_OP_SLTI:
		cpu.OpSLTI(instr)
	case EE_OP_SLTIU:
		cpu.OpSLTIU(instr)
	case EE_OP_ANDI:
		cpu.OpANDI(instr)
	case EE_OP_ORI:
		cpu.OpORI(instr)
	case EE_OP_XORI:
		cpu.OpXORI(instr)
	case EE_OP_LUI:
		cpu.OpLUI(instr)
	case EE_OP_COP0:
		cpu.decodeCop0(instr)
	case EE_OP_COP1:
		cpu.decodeCop1(instr)
	case EE_OP_COP2:
		cpu.decodeCop2(instr)
	case EE_OP_BEQL:
		cpu.OpBEQ(instr, true)
	case EE_OP_BNEL:
		cpu.OpBNE(instr, true)
	case EE_OP_BLEZL:
		cpu.OpBLEZ(instr, true)
	case EE_OP_BGTZL:
		cpu.OpBGTZ(instr, true)
	case EE_OP_DADDIU:
		cpu.OpDADDIU(instr)
	case EE_OP_LDL:
		cpu.OpLDL(instr)
	case EE_OP_LDR:
		cpu.OpLDR(instr)
	case EE_OP_MMI:
		cpu.decodeMMI(instr)
	case EE_OP_LQ:
		cpu.OpLQ(instr)
	case EE_OP_SQ:
		cpu.OpSQ(instr)
	case EE_OP_LB:
		cpu.OpLB(instr)
	case EE_OP_LH:
		cpu.OpLH(instr)
	case EE_OP_LWL:
		cpu.OpLWL(instr)
	case EE_OP_LW:
		cpu.OpLW(instr)
	case EE_OP_LBU:
		cpu.OpLBU(instr)
	case EE_OP_LHU:
		cpu.OpLHU(instr)
	case EE_OP_LWR:
		cpu.OpLWR(instr)
	case EE_OP_LWU:
		cpu.OpLWU(instr)
	case EE_OP_SB:
		cpu.OpSB(instr)
	case EE_OP_SH:
		cpu.OpSH(instr)
	case EE_OP_SWL:
		cpu.OpSWL(instr)
	case EE_OP_SW:
		cpu.OpSW(instr)
	case EE_OP_SDL:
		cpu.OpSDL(instr)
	case EE_OP_SDR:
		cpu.OpSDR(instr)
	case EE_OP_SWR:
		cpu.OpSWR(instr)
	case EE_OP_CACHE:
		// Cache operations are not modeled
	case EE_OP_LWC1:
		cpu.OpLWC1(instr)
	case EE_OP_LD:
		cpu.OpLD(instr)
	case EE_OP_SWC1:
		cpu.OpSWC1(instr)
	case EE_OP_SD:
		cpu.OpSD(instr)
	default:
		panicFmt("ee: unhandled instruction 0x%02x (0x%08x) @ 0x%08x",
			instr.Function(), uint32(instr), cpu.CPC)
	}
}

func (cpu *EECore) decodeSpecial(instr Instruction) {
	switch instr.Subfunction() {
	case EE_SPECIAL_SLL:
		cpu.OpSLL(instr)
	case EE_SPECIAL_SRL:
		cpu.OpSRL(instr)
	case EE_SPECIAL_SRA:
		cpu.OpSRA(instr)
	case EE_SPECIAL_SLLV:
		cpu.OpSLLV(instr)
	case EE_SPECIAL_SRLV:
		cpu.OpSRLV(instr)
	case EE_SPECIAL_SRAV:
		cpu.OpSRAV(instr)
	case EE_SPECIAL_JR:
		cpu.OpJR(instr)
	case EE_SPECIAL_JALR:
		cpu.OpJALR(instr)
	case EE_SPECIAL_MOVZ:
		cpu.OpMOVZ(instr)
	case EE_SPECIAL_MOVN:
		cpu.OpMOVN(instr)
	case EE_SPECIAL_SYSCALL:
		cpu.OpSYSCALL(instr)
	case EE_SPECIAL_SYNC:
		// Memory barriers are no-ops in the interpreter
	case EE_SPECIAL_MFHI:
		cpu.OpMFHI(instr)
	case EE_SPECIAL_MTHI:
		cpu.OpMTHI(instr)
	case EE_SPECIAL_MFLO:
		cpu.OpMFLO(instr)
	case EE_SPECIAL_MTLO:
		cpu.OpMTLO(instr)
	case EE_SPECIAL_DSLLV:
		cpu.OpDSLLV(instr)
	case EE_SPECIAL_DSRLV:
		cpu.OpDSRLV(instr)
	case EE_SPECIAL_DSRAV:
		cpu.OpDSRAV(instr)
	case EE_SPECIAL_MULT:
		cpu.OpMULT(instr, 0)
	case EE_SPECIAL_MULTU:
		cpu.OpMULTU(instr, 0)
	case EE_SPECIAL_DIV:
		cpu.OpDIV(instr, 0)
	case EE_SPECIAL_DIVU:
		cpu.OpDIVU(instr, 0)
	case EE_SPECIAL_ADD, EE_SPECIAL_ADDU:
		cpu.OpADDU(instr)
	case EE_SPECIAL_SUB, EE_SPECIAL_SUBU:
		cpu.OpSUBU(instr)
	case EE_SPECIAL_AND:
		cpu.OpAND(instr)
	case EE_SPECIAL_OR:
		cpu.OpOR(instr)
	case EE_SPECIAL_XOR:
		cpu.OpXOR(instr)
	case EE_SPECIAL_NOR:
		cpu.OpNOR(instr)
	case EE_SPECIAL_MFSA:
		cpu.OpMFSA(instr)
	case EE_SPECIAL_MTSA:
		cpu.OpMTSA(instr)
	case EE_SPECIAL_SLT:
		cpu.OpSLT(instr)
	case EE_SPECIAL_SLTU:
		cpu.OpSLTU(instr)
	case EE_SPECIAL_DADDU:
		cpu.OpDADDU(instr)
	case EE_SPECIAL_DSUBU:
		cpu.OpDSUBU(instr)
	case EE_SPECIAL_DSLL:
		cpu.OpDSLL(instr)
	case EE_SPECIAL_DSRL:
		cpu.OpDSRL(instr)
	case EE_SPECIAL_DSRA:
		cpu.OpDSRA(instr)
	case EE_SPECIAL_DSLL32:
		cpu.OpDSLL32(instr)
	case EE_SPECIAL_DSRL32:
		cpu.OpDSRL32(instr)
	case EE_SPECIAL_DSRA32:
		cpu.OpDSRA32(instr)
	default:
		panicFmt("ee: unhandled SPECIAL instruction 0x%02x (0x%08x) @ 0x%08x",
			instr.Subfunction(), uint32(instr), cpu.CPC)
	}
}

func (cpu *EECore) decodeRegimm(instr Instruction) {
	switch instr.T() {
	case EE_REGIMM_BLTZ:
		cpu.OpBLTZ(instr, false)
	case EE_REGIMM_BGEZ:
		cpu.OpBGEZ(instr, false)
	case EE_REGIMM_BLTZL:
		cpu.OpBLTZ(instr, true)
	case EE_REGIMM_BGEZL:
		cpu.OpBGEZ(instr, true)
	case EE_REGIMM_MTSAH:
		cpu.OpMTSAH(instr)
	default:
		panicFmt("ee: unhandled REGIMM instruction 0x%02x (0x%08x) @ 0x%08x",
			instr.T(), uint32(instr), cpu.CPC)
	}
}

func (cpu *EECore) decodeCop0(instr Instruction) {
	switch instr.S() {
	case COP_MF:
		cpu.set32(instr.T(), cpu.Cop0.Get32(instr.D()))
	case COP_MT:
		cpu.Cop0.Set32(instr.D(), cpu.reg32(instr.T()))
	case COP_CO:
		switch instr.Subfunction() {
		case COP0_TLBWI:
			// The TLB is not modeled
		case COP0_ERET:
			cpu.OpERET()
		case COP0_EI:
			if cpu.Cop0.Status.EDI {
				cpu.Cop0.Status.EIE = true
			}
		case COP0_DI:
			if cpu.Cop0.Status.EDI {
				cpu.Cop0.Status.EIE = false
			}
		default:
			panicFmt("ee: unhandled COP0 control instruction 0x%02x (0x%08x) @ 0x%08x",
				instr.Subfunction(), uint32(instr), cpu.CPC)
		}
	default:
		panicFmt("ee: unhandled COP0 instruction 0x%02x (0x%08x) @ 0x%08x",
			instr.S(), uint32(instr), cpu.CPC)
	}
}

func (cpu *EECore) decodeCop1(instr Instruction) {
	switch instr.S() {
	case COP_MF:
		cpu.set32(instr.T(), cpu.FPU.GetRaw(instr.D()))
	case COP_CF:
		cpu.set32(instr.T(), cpu.FPU.GetControl(instr.D()))
	case COP_MT:
		cpu.FPU.SetRaw(instr.D(), cpu.reg32(instr.T()))
	case COP_CT:
		cpu.FPU.SetControl(instr.D(), cpu.reg32(instr.T()))
	case FPU_FMT_S:
		cpu.FPU.ExecuteSingle(instr)
	default:
		panicFmt("ee: unhandled COP1 instruction 0x%02x (0x%08x) @ 0x%08x",
			instr.S(), uint32(instr), cpu.CPC)
	}
}

func (cpu *EECore) decodeCop2(instr Instruction) {
	rs := instr.S()

	if rs&(1<<4) != 0 {
		cpu.VUs[0].ExecuteMacro(instr)
		return
	}

	switch rs {
	case COP_QMF:
		cpu.OpQMFC2(instr)
	case COP_CF:
		cpu.set32(instr.T(), cpu.VUs[0].GetControl(instr.D()))
	case COP_QMT:
		cpu.OpQMTC2(instr)
	case COP_CT:
		cpu.VUs[0].SetControl(instr.D(), cpu.reg32(instr.T()))
	default:
		panicFmt("ee: unhandled COP2 instruction 0x%02x (0x%08x) @ 0x%08x",
			rs, uint32(instr), cpu.CPC)
	}
}

// ADD Immediate Unsigned
func (cpu *EECore) OpADDIU(instr Instruction) {
	cpu.set32(instr.T(), cpu.reg32(instr.S())+instr.ImmSE())
}

// ADD Unsigned
func (cpu *EECore) OpADDU(instr Instruction) {
	cpu.set32(instr.D(), cpu.reg32(instr.S())+cpu.reg32(instr.T()))
}

// SUBtract Unsigned
func (cpu *EECore) OpSUBU(instr Instruction) {
	cpu.set32(instr.D(), cpu.reg32(instr.S())-cpu.reg32(instr.T()))
}

// AND
func (cpu *EECore) OpAND(instr Instruction) {
	cpu.set64(instr.D(), cpu.reg(instr.S())&cpu.reg(instr.T()))
}

// AND Immediate
func (cpu *EECore) OpANDI(instr Instruction) {
	cpu.set64(instr.T(), cpu.reg(instr.S())&uint64(instr.Imm()))
}

// OR
func (cpu *EECore) OpOR(instr Instruction) {
	cpu.set64(instr.D(), cpu.reg(instr.S())|cpu.reg(instr.T()))
}

// OR Immediate
func (cpu *EECore) OpORI(instr Instruction) {
	cpu.set64(instr.T(), cpu.reg(instr.S())|uint64(instr.Imm()))
}

// XOR
func (cpu *EECore) OpXOR(instr Instruction) {
	cpu.set64(instr.D(), cpu.reg(instr.S())^cpu.reg(instr.T()))
}

// XOR Immediate
func (cpu *EECore) OpXORI(instr Instruction) {
	cpu.set64(instr.T(), cpu.reg(instr.S())^uint64(instr.Imm()))
}

// NOR
func (cpu *EECore) OpNOR(instr Instruction) {
	cpu.set64(instr.D(), ^(cpu.reg(instr.S()) | cpu.reg(instr.T())))
}

// Load Upper Immediate
func (cpu *EECore) OpLUI(instr Instruction) {
	cpu.set64(instr.T(), uint64(int64(int16(instr.Imm()))<<16))
}

// Doubleword ADD Immediate Unsigned
func (cpu *EECore) OpDADDIU(instr Instruction) {
	cpu.set64(instr.T(), cpu.reg(instr.S())+instr.ImmSE64())
}

// Doubleword ADD Unsigned
func (cpu *EECore) OpDADDU(instr Instruction) {
	cpu.set64(instr.D(), cpu.reg(instr.S())+cpu.reg(instr.T()))
}

// Doubleword SUBtract Unsigned
func (cpu *EECore) OpDSUBU(instr Instruction) {
	cpu.set64(instr.D(), cpu.reg(instr.S())-cpu.reg(instr.T()))
}

// Set on Less Than
func (cpu *EECore) OpSLT(instr Instruction) {
	cpu.set64(instr.D(), uint64(oneIfTrue(int64(cpu.reg(instr.S())) < int64(cpu.reg(instr.T())))))
}

// Set on Less Than Unsigned
func (cpu *EECore) OpSLTU(instr Instruction) {
	cpu.set64(instr.D(), uint64(oneIfTrue(cpu.reg(instr.S()) < cpu.reg(instr.T()))))
}

// Set on Less Than Immediate
func (cpu *EECore) OpSLTI(instr Instruction) {
	cpu.set64(instr.T(), uint64(oneIfTrue(int64(cpu.reg(instr.S())) < int64(int16(instr.Imm())))))
}

// Set on Less Than Immediate Unsigned
func (cpu *EECore) OpSLTIU(instr Instruction) {
	cpu.set64(instr.T(), uint64(oneIfTrue(cpu.reg(instr.S()) < instr.ImmSE64())))
}

// Shift Left Logical
func (cpu *EECore) OpSLL(instr Instruction) {
	cpu.set32(instr.D(), cpu.reg32(instr.T())<<instr.Shift())
}

// Shift Left Logical Variable
func (cpu *EECore) OpSLLV(instr Instruction) {
	cpu.set32(instr.D(), cpu.reg32(instr.T())<<(cpu.reg(instr.S())&0x1F))
}

// Shift Right Logical
func (cpu *EECore) OpSRL(instr Instruction) {
	cpu.set32(instr.D(), cpu.reg32(instr.T())>>instr.Shift())
}

// Shift Right Logical Variable
func (cpu *EECore) OpSRLV(instr Instruction) {
	cpu.set32(instr.D(), cpu.reg32(instr.T())>>(cpu.reg(instr.S())&0x1F))
}

// Shift Right Arithmetic
func (cpu *EECore) OpSRA(instr Instruction) {
	cpu.set32(instr.D(), uint32(int32(cpu.reg32(instr.T()))>>instr.Shift()))
}

// Shift Right Arithmetic Variable
func (cpu *EECore) OpSRAV(instr Instruction) {
	cpu.set32(instr.D(), uint32(int32(cpu.reg32(instr.T()))>>(cpu.reg(instr.S())&0x1F)))
}

// Doubleword Shift Left Logical
func (cpu *EECore) OpDSLL(instr Instruction) {
	cpu.set64(instr.D(), cpu.reg(instr.T())<<instr.Shift())
}

// Doubleword Shift Left Logical Variable
func (cpu *EECore) OpDSLLV(instr Instruction) {
	cpu.set64(instr.D(), cpu.reg(instr.T())<<(cpu.reg(instr.S())&0x3F))
}

// Doubleword Shift Left Logical plus 32
func (cpu *EECore) OpDSLL32(instr Instruction) {
	cpu.set64(instr.D(), cpu.reg(instr.T())<<(instr.Shift()+32))
}

// Doubleword Shift Right Logical
func (cpu *EECore) OpDSRL(instr Instruction) {
	cpu.set64(instr.D(), cpu.reg(instr.T())>>instr.Shift())
}

// Doubleword Shift Right Logical Variable
func (cpu *EECore) OpDSRLV(instr Instruction) {
	cpu.set64(instr.D(), cpu.reg(instr.T())>>(cpu.reg(instr.S())&0x3F))
}

// Doubleword Shift Right Logical plus 32
func (cpu *EECore) OpDSRL32(instr Instruction) {
	cpu.set64(instr.D(), cpu.reg(instr.T())>>(instr.Shift()+32))
}

// Doubleword Shift Right Arithmetic
func (cpu *EECore) OpDSRA(instr Instruction) {
	cpu.set64(instr.D(), uint64(int64(cpu.reg(instr.T()))>>instr.Shift()))
}

// Doubleword Shift Right Arithmetic Variable
func (cpu *EECore) OpDSRAV(instr Instruction) {
	cpu.set64(instr.D(), uint64(int64(cpu.reg(instr.T()))>>(cpu.reg(instr.S())&0x3F)))
}

// Doubleword Shift Right Arithmetic plus 32
func (cpu *EECore) OpDSRA32(instr Instruction) {
	cpu.set64(instr.D(), uint64(int64(cpu.reg(instr.T()))>>(instr.Shift()+32)))
}

// MOVe on Zero
func (cpu *EECore) OpMOVZ(instr Instruction) {
	if cpu.reg(instr.T()) == 0 {
		cpu.set64(instr.D(), cpu.reg(instr.S()))
	}
}

// MOVe on Not equal
func (cpu *EECore) OpMOVN(instr Instruction) {
	if cpu.reg(instr.T()) != 0 {
		cpu.set64(instr.D(), cpu.reg(instr.S()))
	}
}

// Move From HI
func (cpu *EECore) OpMFHI(instr Instruction) {
	cpu.set64(instr.D(), cpu.Regs[REG_HI].Lo)
}

// Move To HI
func (cpu *EECore) OpMTHI(instr Instruction) {
	cpu.Regs[REG_HI].Lo = cpu.reg(instr.S())
}

// Move From LO
func (cpu *EECore) OpMFLO(instr Instruction) {
	cpu.set64(instr.D(), cpu.Regs[REG_LO].Lo)
}

// Move To LO
func (cpu *EECore) OpMTLO(instr Instruction) {
	cpu.Regs[REG_LO].Lo = cpu.reg(instr.S())
}

// Move From Shift Amount
func (cpu *EECore) OpMFSA(instr Instruction) {
	cpu.set64(instr.D(), uint64(cpu.SA))
}

// Move To Shift Amount
func (cpu *EECore) OpMTSA(instr Instruction) {
	cpu.SA = uint8(cpu.reg(instr.S()))
}

// Move To Shift Amount Halfword
func (cpu *EECore) OpMTSAH(instr Instruction) {
	cpu.SA = uint8((cpu.reg(instr.S()) ^ uint64(instr.Imm())) & 7 * 2)
}

// MULTiply. `pipeline` selects the LO/HI half (MULT1 writes the high
// lanes)
func (cpu *EECore) OpMULT(instr Instruction, pipeline int) {
	res := int64(int32(cpu.reg32(instr.S()))) * int64(int32(cpu.reg32(instr.T())))

	cpu.Regs[REG_LO].SetU64(pipeline, uint64(int64(int32(res))))
	cpu.Regs[REG_HI].SetU64(pipeline, uint64(int64(int32(res>>32))))

	cpu.set64(instr.D(), cpu.Regs[REG_LO].U64(pipeline))
}

// MULTiply Unsigned
func (cpu *EECore) OpMULTU(instr Instruction, pipeline int) {
	res := uint64(cpu.reg32(instr.S())) * uint64(cpu.reg32(instr.T()))

	cpu.Regs[REG_LO].SetU64(pipeline, uint64(int64(int32(res))))
	cpu.Regs[REG_HI].SetU64(pipeline, uint64(int64(int32(res>>32))))

	cpu.set64(instr.D(), cpu.Regs[REG_LO].U64(pipeline))
}

// DIVide. Division by zero and INT32_MIN/-1 produce the MIPS-defined
// results instead of trapping
func (cpu *EECore) OpDIV(instr Instruction, pipeline int) {
	n := int32(cpu.reg32(instr.S()))
	d := int32(cpu.reg32(instr.T()))

	var lo, hi int32
	switch {
	case d == 0:
		if n >= 0 {
			lo = -1
		} else {
			lo = 1
		}
		hi = n
	case n == -0x80000000 && d == -1:
		lo = -0x80000000
		hi = 0
	default:
		lo = n / d
		hi = n % d
	}

	cpu.Regs[REG_LO].SetU64(pipeline, uint64(int64(lo)))
	cpu.Regs[REG_HI].SetU64(pipeline, uint64(int64(hi)))
}

// DIVide Unsigned
func (cpu *EECore) OpDIVU(instr Instruction, pipeline int) {
	n := cpu.reg32(instr.S())
	d := cpu.reg32(instr.T())

	var lo, hi uint32
	if d == 0 {
		lo = 0xFFFFFFFF
		hi = n
	} else {
		lo = n / d
		hi = n % d
	}

	cpu.Regs[REG_LO].SetU64(pipeline, uint64(int64(int32(lo))))
	cpu.Regs[REG_HI].SetU64(pipeline, uint64(int64(int32(hi))))
}

// Jump
func (cpu *EECore) OpJ(instr Instruction) {
	target := (cpu.PC & 0xF0000000) | (instr.ImmJump() << 2)

	cpu.doBranch(target, true, 0, false)
}

// Jump And Link
func (cpu *EECore) OpJAL(instr Instruction) {
	target := (cpu.PC & 0xF0000000) | (instr.ImmJump() << 2)

	cpu.doBranch(target, true, 31, false)
}

// Jump Register
func (cpu *EECore) OpJR(instr Instruction) {
	cpu.doBranch(cpu.reg32(instr.S()), true, 0, false)
}

// Jump And Link Register
func (cpu *EECore) OpJALR(instr Instruction) {
	cpu.doBranch(cpu.reg32(instr.S()), true, instr.D(), false)
}

// Branch if EQual
func (cpu *EECore) OpBEQ(instr Instruction, likely bool) {
	target := cpu.PC + uint32(int32(int16(instr.Imm()))<<2)

	cpu.doBranch(target, cpu.reg(instr.S()) == cpu.reg(instr.T()), 0, likely)
}

// Branch if Not Equal
func (cpu *EECore) OpBNE(instr Instruction, likely bool) {
	target := cpu.PC + uint32(int32(int16(instr.Imm()))<<2)

	cpu.doBranch(target, cpu.reg(instr.S()) != cpu.reg(instr.T()), 0, likely)
}

// Branch if Less than or Equal Zero
func (cpu *EECore) OpBLEZ(instr Instruction, likely bool) {
	target := cpu.PC + uint32(int32(int16(instr.Imm()))<<2)

	cpu.doBranch(target, int64(cpu.reg(instr.S())) <= 0, 0, likely)
}

// Branch if Greater Than Zero
func (cpu *EECore) OpBGTZ(instr Instruction, likely bool) {
	target := cpu.PC + uint32(int32(int16(instr.Imm()))<<2)

	cpu.doBranch(target, int64(cpu.reg(instr.S())) > 0, 0, likely)
}

// Branch if Less Than Zero
func (cpu *EECore) OpBLTZ(instr Instruction, likely bool) {
	target := cpu.PC + uint32(int32(int16(instr.Imm()))<<2)

	cpu.doBranch(target, int64(cpu.reg(instr.S())) < 0, 0, likely)
}

// Branch if Greater than or Equal Zero
func (cpu *EECore) OpBGEZ(instr Instruction, likely bool) {
	target := cpu.PC + uint32(int32(int16(instr.Imm()))<<2)

	cpu.doBranch(target, int64(cpu.reg(instr.S())) >= 0, 0, likely)
}

// SYSCALL
func (cpu *EECore) OpSYSCALL(instr Instruction) {
	cpu.raiseLevel1Exception(EXCEPTION_EE_SYSCALL)
}

// Exception RETurn
func (cpu *EECore) OpERET() {
	cop := cpu.Cop0

	if cop.Status.ERL {
		cpu.setPC(cop.ErrorEPC)

		cop.Status.ERL = false
	} else {
		cpu.setPC(cop.EPC)

		cop.Status.EXL = false
	}

	if !cpu.IsFastBootDone && cpu.PC == EELOAD_START {
		cpu.emu.fastBoot()

		cpu.IsFastBootDone = true
	}
}

// Load Byte
func (cpu *EECore) OpLB(instr Instruction) {
	addr := cpu.reg32(instr.S()) + instr.ImmSE()

	cpu.set64(instr.T(), uint64(int64(int8(cpu.read8(addr)))))
}

// Load Byte Unsigned
func (cpu *EECore) OpLBU(instr Instruction) {
	addr := cpu.reg32(instr.S()) + instr.ImmSE()

	cpu.set64(instr.T(), uint64(cpu.read8(addr)))
}

// Load Halfword
func (cpu *EECore) OpLH(instr Instruction) {
	addr := cpu.reg32(instr.S()) + instr.ImmSE()

	if addr&1 != 0 {
		panicFmt("ee: LH: misaligned address 0x%08x @ 0x%08x", addr, cpu.CPC)
	}

	cpu.set32(instr.T(), uint32(int32(int16(cpu.read16(addr)))))
}

// Load Halfword Unsigned
func (cpu *EECore) OpLHU(instr Instruction) {
	addr := cpu.reg32(instr.S()) + instr.ImmSE()

	if addr&1 != 0 {
		panicFmt("ee: LHU: misaligned address 0x%08x @ 0x%08x", addr, cpu.CPC)
	}

	cpu.set64(instr.T(), uint64(cpu.read16(addr)))
}

// Load Word
func (cpu *EECore) OpLW(instr Instruction) {
	addr := cpu.reg32(instr.S()) + instr.ImmSE()

	if addr&3 != 0 {
		panicFmt("ee: LW: misaligned address 0x%08x @ 0x%08x", addr, cpu.CPC)
	}

	cpu.set32(instr.T(), cpu.read32(addr))
}

// Load Word Unsigned
func (cpu *EECore) OpLWU(instr Instruction) {
	addr := cpu.reg32(instr.S()) + instr.ImmSE()

	if addr&3 != 0 {
		panicFmt("ee: LWU: misaligned address 0x%08x @ 0x%08x", addr, cpu.CPC)
	}

	cpu.set64(instr.T(), uint64(cpu.read32(addr)))
}

// Load Doubleword
func (cpu *EECore) OpLD(instr Instruction) {
	addr := cpu.reg32(instr.S()) + instr.ImmSE()

	if addr&7 != 0 {
		panicFmt("ee: LD: misaligned address 0x%08x @ 0x%08x", addr, cpu.CPC)
	}

	cpu.set64(instr.T(), cpu.read64(addr))
}

// Load Quadword
func (cpu *EECore) OpLQ(instr Instruction) {
	addr := cpu.reg32(instr.S()) + instr.ImmSE()

	if addr&15 != 0 {
		panicFmt("ee: LQ: misaligned address 0x%08x @ 0x%08x", addr, cpu.CPC)
	}

	cpu.set128(instr.T(), cpu.read128(addr))
}

// Load Word Left
func (cpu *EECore) OpLWL(instr Instruction) {
	addr := cpu.reg32(instr.S()) + instr.ImmSE()

	shift := 24 - 8*(addr&3)
	mask := ^(^uint32(0) << shift)

	cpu.set32(instr.T(), (cpu.reg32(instr.T())&mask)|(cpu.read32(addr & ^uint32(3))<<shift))
}

// Load Word Right
func (cpu *EECore) OpLWR(instr Instruction) {
	addr := cpu.reg32(instr.S()) + instr.ImmSE()

	shift := 8 * (addr & 3)
	mask := ^(^uint32(0) >> shift)

	cpu.set32(instr.T(), (cpu.reg32(instr.T())&mask)|(cpu.read32(addr & ^uint32(3))>>shift))
}

// Load Doubleword Left
func (cpu *EECore) OpLDL(instr Instruction) {
	addr := cpu.reg32(instr.S()) + instr.ImmSE()

	shift := 56 - 8*(addr&7)
	mask := ^(^uint64(0) << shift)

	cpu.set64(instr.T(), (cpu.reg(instr.T())&mask)|(cpu.read64(addr & ^uint32(7))<<shift))
}

// Load Doubleword Right
func (cpu *EECore) OpLDR(instr Instruction) {
	addr := cpu.reg32(instr.S()) + instr.ImmSE()

	shift := 8 * (addr & 7)
	mask := ^(^uint64(0) >> shift)

	cpu.set64(instr.T(), (cpu.reg(instr.T())&mask)|(cpu.read64(addr & ^uint32(7))>>shift))
}

// Store Byte
func (cpu *EECore) OpSB(instr Instruction) {
	addr := cpu.reg32(instr.S()) + instr.ImmSE()

	cpu.write8(addr, uint8(cpu.reg(instr.T())))
}

// Store Halfword
func (cpu *EECore) OpSH(instr Instruction) {
	addr := cpu.reg32(instr.S()) + instr.ImmSE()

	if addr&1 != 0 {
		panicFmt("ee: SH: misaligned address 0x%08x @ 0x%08x", addr, cpu.CPC)
	}

	cpu.write16(addr, uint16(cpu.reg(instr.T())))
}

// Store Word
func (cpu *EECore) OpSW(instr Instruction) {
	addr := cpu.reg32(instr.S()) + instr.ImmSE()

	if addr&3 != 0 {
		panicFmt("ee: SW: misaligned address 0x%08x @ 0x%08x", addr, cpu.CPC)
	}

	cpu.write32(addr, cpu.reg32(instr.T()))
}

// Store Doubleword
func (cpu *EECore) OpSD(instr Instruction) {
	addr := cpu.reg32(instr.S()) + instr.ImmSE()

	if addr&7 != 0 {
		panicFmt("ee: SD: misaligned address 0x%08x @ 0x%08x", addr, cpu.CPC)
	}

	cpu.write64(addr, cpu.reg(instr.T()))
}

// Store Quadword
func (cpu *EECore) OpSQ(instr Instruction) {
	addr := cpu.reg32(instr.S()) + instr.ImmSE()

	if addr&15 != 0 {
		panicFmt("ee: SQ: misaligned address 0x%08x @ 0x%08x", addr, cpu.CPC)
	}

	cpu.write128(addr, cpu.Regs[instr.T()])
}

// Store Word Left
func (cpu *EECore) OpSWL(instr Instruction) {
	addr := cpu.reg32(instr.S()) + instr.ImmSE()

	shift := 24 - 8*(addr&3)
	mask := ^(^uint32(0) >> shift)

	data := (cpu.read32(addr & ^uint32(3)) & mask) | (cpu.reg32(instr.T()) >> shift)

	cpu.write32(addr & ^uint32(3), data)
}

// Store Word Right
func (cpu *EECore) OpSWR(instr Instruction) {
	addr := cpu.reg32(instr.S()) + instr.ImmSE()

	shift := 8 * (addr & 3)
	mask := ^(^uint32(0) << shift)

	data := (cpu.read32(addr & ^uint32(3)) & mask) | (cpu.reg32(instr.T()) << shift)

	cpu.write32(addr & ^uint32(3), data)
}

// Store Doubleword Left
func (cpu *EECore) OpSDL(instr Instruction) {
	addr := cpu.reg32(instr.S()) + instr.ImmSE()

	shift := 56 - 8*(addr&7)
	mask := ^(^uint64(0) >> shift)

	data := (cpu.read64(addr & ^uint32(7)) & mask) | (cpu.reg(instr.T()) >> shift)

	cpu.write64(addr & ^uint32(7), data)
}

// Store Doubleword Right
func (cpu *EECore) OpSDR(instr Instruction) {
	addr := cpu.reg32(instr.S()) + instr.ImmSE()

	shift := 8 * (addr & 7)
	mask := ^(^uint64(0) << shift)

	data := (cpu.read64(addr & ^uint32(7)) & mask) | (cpu.reg(instr.T()) << shift)

	cpu.write64(addr & ^uint32(7), data)
}

// Load Word Coprocessor 1
func (cpu *EECore) OpLWC1(instr Instruction) {
	addr := cpu.reg32(instr.S()) + instr.ImmSE()

	if addr&3 != 0 {
		panicFmt("ee: LWC1: misaligned address 0x%08x @ 0x%08x", addr, cpu.CPC)
	}

	cpu.FPU.SetRaw(instr.T(), cpu.read32(addr))
}

// Store Word Coprocessor 1
func (cpu *EECore) OpSWC1(instr Instruction) {
	addr := cpu.reg32(instr.S()) + instr.ImmSE()

	if addr&3 != 0 {
		panicFmt("ee: SWC1: misaligned address 0x%08x @ 0x%08x", addr, cpu.CPC)
	}

	cpu.write32(addr, cpu.FPU.GetRaw(instr.T()))
}

// Quadword Move From Coprocessor 2
func (cpu *EECore) OpQMFC2(instr Instruction) {
	vu := cpu.VUs[0]
	rd := instr.D()

	var data U128
	for e := 0; e < 4; e++ {
		data.SetU32(e, vu.GetVFRaw(rd, uint32(e)))
	}

	cpu.set128(instr.T(), data)
}

// Quadword Move To Coprocessor 2
func (cpu *EECore) OpQMTC2(instr Instruction) {
	vu := cpu.VUs[0]
	rd := instr.D()

	data := cpu.Regs[instr.T()]
	for e := 0; e < 4; e++ {
		vu.SetVFRaw(rd, uint32(e), data.U32(e))
	}
}
