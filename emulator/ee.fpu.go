package emulator

import "math"

// COP1 format field for single precision operations
const FPU_FMT_S = 0x10

// FPU opcodes (Single format)
const (
	FPU_OP_ADD  = 0x00
	FPU_OP_SUB  = 0x01
	FPU_OP_MUL  = 0x02
	FPU_OP_DIV  = 0x03
	FPU_OP_MOV  = 0x06
	FPU_OP_NEG  = 0x07
	FPU_OP_ADDA = 0x18
	FPU_OP_MADD = 0x1C
)

// The EE floating point unit (COP1). Only single precision is
// implemented; the PS2 FPU is not IEEE-conformant but the edge cases
// are not modeled
type FPU struct {
	FPRs [32]float32
	Acc  float32
}

// Returns a new FPU instance
func NewFPU() *FPU {
	return &FPU{}
}

// Get Fd field
func getFd(instr Instruction) uint32 {
	return (uint32(instr) >> 6) & 0x1F
}

// Get Fs field
func getFs(instr Instruction) uint32 {
	return (uint32(instr) >> 11) & 0x1F
}

// Get Ft field
func getFt(instr Instruction) uint32 {
	return (uint32(instr) >> 16) & 0x1F
}

// Returns an FPR
func (fpu *FPU) Get(idx uint32) float32 {
	return fpu.FPRs[idx]
}

// Sets an FPR
func (fpu *FPU) Set(idx uint32, data float32) {
	fpu.FPRs[idx] = data
}

// Returns the raw bits of an FPR
func (fpu *FPU) GetRaw(idx uint32) uint32 {
	return math.Float32bits(fpu.FPRs[idx])
}

// Sets an FPR from raw bits
func (fpu *FPU) SetRaw(idx uint32, data uint32) {
	fpu.FPRs[idx] = math.Float32frombits(data)
}

// Returns an FPU control register
func (fpu *FPU) GetControl(idx uint32) uint32 {
	switch idx {
	case 0:
		// FCR0: implementation/revision
		return 0x2E00
	case 31:
		return 0
	default:
		panicFmt("ee: fpu: unhandled control read @ %d", idx)
	}
	return 0
}

// Sets an FPU control register
func (fpu *FPU) SetControl(idx, data uint32) {
	switch idx {
	case 31:
		// Condition and flag bits are not modeled
	default:
		panicFmt("ee: fpu: unhandled control write @ %d = 0x%08x", idx, data)
	}
}

// Executes a Single format instruction
func (fpu *FPU) ExecuteSingle(instr Instruction) {
	switch instr.Subfunction() {
	case FPU_OP_ADD:
		fpu.Set(getFd(instr), fpu.Get(getFs(instr))+fpu.Get(getFt(instr)))
	case FPU_OP_SUB:
		fpu.Set(getFd(instr), fpu.Get(getFs(instr))-fpu.Get(getFt(instr)))
	case FPU_OP_MUL:
		fpu.Set(getFd(instr), fpu.Get(getFs(instr))*fpu.Get(getFt(instr)))
	case FPU_OP_DIV:
		fpu.Set(getFd(instr), fpu.Get(getFs(instr))/fpu.Get(getFt(instr)))
	case FPU_OP_MOV:
		fpu.Set(getFd(instr), fpu.Get(getFs(instr)))
	case FPU_OP_NEG:
		fpu.Set(getFd(instr), -fpu.Get(getFs(instr)))
	case FPU_OP_ADDA:
		fpu.Acc = fpu.Get(getFs(instr)) + fpu.Get(getFt(instr))
	case FPU_OP_MADD:
		fpu.Set(getFd(instr), fpu.Get(getFs(instr))*fpu.Get(getFt(instr))+fpu.Acc)
	default:
		panicFmt("ee: fpu: unhandled Single instruction 0x%02x (0x%08x)",
			instr.Subfunction(), uint32(instr))
	}
}
