package emulator

import "fmt"

// Disassembles one EE instruction for the trace log. Only the opcodes
// the interpreter implements are named; everything else prints raw
func disasm(instr Instruction, pc uint32) string {
	rs := RegisterNames[instr.S()]
	rt := RegisterNames[instr.T()]
	rd := RegisterNames[instr.D()]

	imm := instr.Imm()
	simm := int32(int16(imm))
	shamt := instr.Shift()

	branchTarget := pc + 4 + uint32(simm<<2)
	jumpTarget := ((pc + 4) & 0xF0000000) | (instr.ImmJump() << 2)

	switch instr.Function() {
	case EE_OP_SPECIAL:
		switch instr.Subfunction() {
		case EE_SPECIAL_SLL:
			if uint32(instr) == 0 {
				return "nop"
			}
			return fmt.Sprintf("sll %s, %s, %d", rd, rt, shamt)
		case EE_SPECIAL_SRL:
			return fmt.Sprintf("srl %s, %s, %d", rd, rt, shamt)
		case EE_SPECIAL_SRA:
			return fmt.Sprintf("sra %s, %s, %d", rd, rt, shamt)
		case EE_SPECIAL_SLLV:
			return fmt.Sprintf("sllv %s, %s, %s", rd, rt, rs)
		case EE_SPECIAL_SRLV:
			return fmt.Sprintf("srlv %s, %s, %s", rd, rt, rs)
		case EE_SPECIAL_SRAV:
			return fmt.Sprintf("srav %s, %s, %s", rd, rt, rs)
		case EE_SPECIAL_JR:
			return fmt.Sprintf("jr %s", rs)
		case EE_SPECIAL_JALR:
			return fmt.Sprintf("jalr %s, %s", rd, rs)
		case EE_SPECIAL_MOVZ:
			return fmt.Sprintf("movz %s, %s, %s", rd, rs, rt)
		case EE_SPECIAL_MOVN:
			return fmt.Sprintf("movn %s, %s, %s", rd, rs, rt)
		case EE_SPECIAL_SYSCALL:
			return "syscall"
		case EE_SPECIAL_SYNC:
			return "sync"
		case EE_SPECIAL_MFHI:
			return fmt.Sprintf("mfhi %s", rd)
		case EE_SPECIAL_MTHI:
			return fmt.Sprintf("mthi %s", rs)
		case EE_SPECIAL_MFLO:
			return fmt.Sprintf("mflo %s", rd)
		case EE_SPECIAL_MTLO:
			return fmt.Sprintf("mtlo %s", rs)
		case EE_SPECIAL_DSLLV:
			return fmt.Sprintf("dsllv %s, %s, %s", rd, rt, rs)
		case EE_SPECIAL_DSRLV:
			return fmt.Sprintf("dsrlv %s, %s, %s", rd, rt, rs)
		case EE_SPECIAL_DSRAV:
			return fmt.Sprintf("dsrav %s, %s, %s", rd, rt, rs)
		case EE_SPECIAL_MULT:
			return fmt.Sprintf("mult %s, %s, %s", rd, rs, rt)
		case EE_SPECIAL_MULTU:
			return fmt.Sprintf("multu %s, %s, %s", rd, rs, rt)
		case EE_SPECIAL_DIV:
			return fmt.Sprintf("div %s, %s", rs, rt)
		case EE_SPECIAL_DIVU:
			return fmt.Sprintf("divu %s, %s", rs, rt)
		case EE_SPECIAL_ADD, EE_SPECIAL_ADDU:
			return fmt.Sprintf("addu %s, %s, %s", rd, rs, rt)
		case EE_SPECIAL_SUB, EE_SPECIAL_SUBU:
			return fmt.Sprintf("subu %s, %s, %s", rd, rs, rt)
		case EE_SPECIAL_AND:
			return fmt.Sprintf("and %s, %s, %s", rd, rs, rt)
		case EE_SPECIAL_OR:
			return fmt.Sprintf("or %s, %s, %s", rd, rs, rt)
		case EE_SPECIAL_XOR:
			return fmt.Sprintf("xor %s, %s, %s", rd, rs, rt)
		case EE_SPECIAL_NOR:
			return fmt.Sprintf("nor %s, %s, %s", rd, rs, rt)
		case EE_SPECIAL_MFSA:
			return fmt.Sprintf("mfsa %s", rd)
		case EE_SPECIAL_MTSA:
			return fmt.Sprintf("mtsa %s", rs)
		case EE_SPECIAL_SLT:
			return fmt.Sprintf("slt %s, %s, %s", rd, rs, rt)
		case EE_SPECIAL_SLTU:
			return fmt.Sprintf("sltu %s, %s, %s", rd, rs, rt)
		case EE_SPECIAL_DADDU:
			return fmt.Sprintf("daddu %s, %s, %s", rd, rs, rt)
		case EE_SPECIAL_DSUBU:
			return fmt.Sprintf("dsubu %s, %s, %s", rd, rs, rt)
		case EE_SPECIAL_DSLL:
			return fmt.Sprintf("dsll %s, %s, %d", rd, rt, shamt)
		case EE_SPECIAL_DSRL:
			return fmt.Sprintf("dsrl %s, %s, %d", rd, rt, shamt)
		case EE_SPECIAL_DSRA:
			return fmt.Sprintf("dsra %s, %s, %d", rd, rt, shamt)
		case EE_SPECIAL_DSLL32:
			return fmt.Sprintf("dsll32 %s, %s, %d", rd, rt, shamt)
		case EE_SPECIAL_DSRL32:
			return fmt.Sprintf("dsrl32 %s, %s, %d", rd, rt, shamt)
		case EE_SPECIAL_DSRA32:
			return fmt.Sprintf("dsra32 %s, %s, %d", rd, rt, shamt)
		}
	case EE_OP_REGIMM:
		switch instr.T() {
		case EE_REGIMM_BLTZ:
			return fmt.Sprintf("bltz %s, 0x%08x", rs, branchTarget)
		case EE_REGIMM_BGEZ:
			return fmt.Sprintf("bgez %s, 0x%08x", rs, branchTarget)
		case EE_REGIMM_BLTZL:
			return fmt.Sprintf("bltzl %s, 0x%08x", rs, branchTarget)
		case EE_REGIMM_BGEZL:
			return fmt.Sprintf("bgezl %s, 0x%08x", rs, branchTarget)
		case EE_REGIMM_MTSAH:
			return fmt.Sprintf("mtsah %s, 0x%x", rs, imm)
		}
	case EE_OP_J:
		return fmt.Sprintf("j 0x%08x", jumpTarget)
	case EE_OP_JAL:
		return fmt.Sprintf("jal 0x%08x", jumpTarget)
	case EE_OP_BEQ:
		return fmt.Sprintf("beq %s, %s, 0x%08x", rs, rt, branchTarget)
	case EE_OP_BNE:
		return fmt.Sprintf("bne %s, %s, 0x%08x", rs, rt, branchTarget)
	case EE_OP_BLEZ:
		return fmt.Sprintf("blez %s, 0x%08x", rs, branchTarget)
	case EE_OP_BGTZ:
		return fmt.Sprintf("bgtz %s, 0x%08x", rs, branchTarget)
	case EE_OP_ADDIU:
		return fmt.Sprintf("addiu %s, %s, %d", rt, rs, simm)
	case EE_OP_SLTI:
		return fmt.Sprintf("slti %s, %s, %d", rt, rs, simm)
	case EE_OP_SLTIU:
		return fmt.Sprintf("sltiu %s, %s, %d", rt, rs, simm)
	case EE_OP_ANDI:
		return fmt.Sprintf("andi %s, %s, 0x%x", rt, rs, imm)
	case EE_OP_ORI:
		return fmt.Sprintf("ori %s, %s, 0x%x", rt, rs, imm)
	case EE_OP_XORI:
		return fmt.Sprintf("xori %s, %s, 0x%x", rt, rs, imm)
	case EE_OP_LUI:
		return fmt.Sprintf("lui %s, 0x%x", rt, imm)
	case EE_OP_COP0:
		switch instr.S() {
		case COP_MF:
			return fmt.Sprintf("mfc0 %s, %d", rt, instr.D())
		case COP_MT:
			return fmt.Sprintf("mtc0 %s, %d", rt, instr.D())
		case COP_CO:
			switch instr.Subfunction() {
			case COP0_TLBWI:
				return "tlbwi"
			case COP0_ERET:
				return "eret"
			case COP0_EI:
				return "ei"
			case COP0_DI:
				return "di"
			}
		}
	case EE_OP_COP1:
		return fmt.Sprintf("cop1 0x%08x", uint32(instr))
	case EE_OP_COP2:
		return fmt.Sprintf("cop2 0x%08x", uint32(instr))
	case EE_OP_BEQL:
		return fmt.Sprintf("beql %s, %s, 0x%08x", rs, rt, branchTarget)
	case EE_OP_BNEL:
		return fmt.Sprintf("bnel %s, %s, 0x%08x", rs, rt, branchTarget)
	case EE_OP_BLEZL:
		return fmt.Sprintf("blezl %s, 0x%08x", rs, branchTarget)
	case EE_OP_BGTZL:
		return fmt.Sprintf("bgtzl %s, 0x%08x", rs, branchTarget)
	case EE_OP_DADDIU:
		return fmt.Sprintf("daddiu %s, %s, %d", rt, rs, simm)
	case EE_OP_LDL:
		return fmt.Sprintf("ldl %s, %d(%s)", rt, simm, rs)
	case EE_OP_LDR:
		return fmt.Sprintf("ldr %s, %d(%s)", rt, simm, rs)
	case EE_OP_MMI:
		return fmt.Sprintf("mmi 0x%08x", uint32(instr))
	case EE_OP_LQ:
		return fmt.Sprintf("lq %s, %d(%s)", rt, simm, rs)
	case EE_OP_SQ:
		return fmt.Sprintf("sq %s, %d(%s)", rt, simm, rs)
	case EE_OP_LB:
		return fmt.Sprintf("lb %s, %d(%s)", rt, simm, rs)
	case EE_OP_LH:
		return fmt.Sprintf("lh %s, %d(%s)", rt, simm, rs)
	case EE_OP_LWL:
		return fmt.Sprintf("lwl %s, %d(%s)", rt, simm, rs)
	case EE_OP_LW:
		return fmt.Sprintf("lw %s, %d(%s)", rt, simm, rs)
	case EE_OP_LBU:
		return fmt.Sprintf("lbu %s, %d(%s)", rt, simm, rs)
	case EE_OP_LHU:
		return fmt.Sprintf("lhu %s, %d(%s)", rt, simm, rs)
	case EE_OP_LWR:
		return fmt.Sprintf("lwr %s, %d(%s)", rt, simm, rs)
	case EE_OP_LWU:
		return fmt.Sprintf("lwu %s, %d(%s)", rt, simm, rs)
	case EE_OP_SB:
		return fmt.Sprintf("sb %s, %d(%s)", rt, simm, rs)
	case EE_OP_SH:
		return fmt.Sprintf("sh %s, %d(%s)", rt, simm, rs)
	case EE_OP_SWL:
		return fmt.Sprintf("swl %s, %d(%s)", rt, simm, rs)
	case EE_OP_SW:
		return fmt.Sprintf("sw %s, %d(%s)", rt, simm, rs)
	case EE_OP_SDL:
		return fmt.Sprintf("sdl %s, %d(%s)", rt, simm, rs)
	case EE_OP_SDR:
		return fmt.Sprintf("sdr %s, %d(%s)", rt, simm, rs)
	case EE_OP_SWR:
		return fmt.Sprintf("swr %s, %d(%s)", rt, simm, rs)
	case EE_OP_CACHE:
		return fmt.Sprintf("cache 0x%x, %d(%s)", instr.T(), simm, rs)
	case EE_OP_LWC1:
		return fmt.Sprintf("lwc1 $f%d, %d(%s)", instr.T(), simm, rs)
	case EE_OP_LD:
		return fmt.Sprintf("ld %s, %d(%s)", rt, simm, rs)
	case EE_OP_SWC1:
		return fmt.Sprintf("swc1 $f%d, %d(%s)", instr.T(), simm, rs)
	case EE_OP_SD:
		return fmt.Sprintf("sd %s, %d(%s)", rt, simm, rs)
	}

	return fmt.Sprintf(".word 0x%08x", uint32(instr))
}
