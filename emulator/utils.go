package emulator

import (
	"encoding/binary"
	"fmt"
	"math/bits"
)

// Names of the MIPS registers, shared by both CPU cores
var RegisterNames = []string{
	"r0", "at", "v0", "v1", "a0", "a1", "a2", "a3", // 00
	"t0", "t1", "t2", "t3", "t4", "t5", "t6", "t7", // 08
	"s0", "s1", "s2", "s3", "s4", "s5", "s6", "s7", // 10
	"t8", "t9", "k0", "k1", "gp", "sp", "fp", "ra", // 18
}

// Returns the name of the register index
func GetRegisterName(index uint32) string {
	return RegisterNames[index]
}

// Formatted panic()
func panicFmt(format string, a ...interface{}) {
	panic(fmt.Sprintf(format, a...))
}

func oneIfTrue(val bool) uint32 {
	if val {
		return 1
	}
	return 0
}

func minInt64(x, y int64) int64 {
	if x < y {
		return x
	}
	return y
}

func minUint32(x, y uint32) uint32 {
	if x < y {
		return x
	}
	return y
}

func absInt64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}

// Counts leading zeroes if bit 31 is clear, leading ones otherwise.
// Used by PLZCW
func countLeadingBits(val uint32) uint32 {
	if val&(1<<31) != 0 {
		val = ^val
	}
	return uint32(bits.LeadingZeros32(val))
}

// Loads a little endian value of `size` bytes at `buf[offset:]`
func loadBuf(buf []byte, offset uint32, size uint32) uint64 {
	switch size {
	case 1:
		return uint64(buf[offset])
	case 2:
		return uint64(binary.LittleEndian.Uint16(buf[offset:]))
	case 4:
		return uint64(binary.LittleEndian.Uint32(buf[offset:]))
	default:
		return binary.LittleEndian.Uint64(buf[offset:])
	}
}

// Stores a little endian value of `size` bytes into `buf[offset:]`
func storeBuf(buf []byte, offset uint32, size uint32, val uint64) {
	switch size {
	case 1:
		buf[offset] = byte(val)
	case 2:
		binary.LittleEndian.PutUint16(buf[offset:], uint16(val))
	case 4:
		binary.LittleEndian.PutUint32(buf[offset:], uint32(val))
	default:
		binary.LittleEndian.PutUint64(buf[offset:], val)
	}
}

// Loads a quadword at `buf[offset:]`
func loadBuf128(buf []byte, offset uint32) U128 {
	return U128{
		Lo: binary.LittleEndian.Uint64(buf[offset:]),
		Hi: binary.LittleEndian.Uint64(buf[offset+8:]),
	}
}

// Stores a quadword into `buf[offset:]`
func storeBuf128(buf []byte, offset uint32, val U128) {
	binary.LittleEndian.PutUint64(buf[offset:], val.Lo)
	binary.LittleEndian.PutUint64(buf[offset+8:], val.Hi)
}
