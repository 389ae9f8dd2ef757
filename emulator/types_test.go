package emulator

import "testing"

func TestU128Lanes(t *testing.T) {
	assert := func(v bool) {
		if !v {
			t.Error("assert failed")
		}
	}

	v := U128{Lo: 0x0123456789ABCDEF, Hi: 0xFEDCBA9876543210}

	assert(v.U64(0) == 0x0123456789ABCDEF)
	assert(v.U64(1) == 0xFEDCBA9876543210)

	assert(v.U32(0) == 0x89ABCDEF)
	assert(v.U32(1) == 0x01234567)
	assert(v.U32(2) == 0x76543210)
	assert(v.U32(3) == 0xFEDCBA98)

	assert(v.U16(0) == 0xCDEF)
	assert(v.U16(7) == 0xFEDC)

	assert(v.U8(0) == 0xEF)
	assert(v.U8(15) == 0xFE)

	v.SetU32(1, 0xAAAAAAAA)
	assert(v.Lo == 0xAAAAAAAA89ABCDEF)

	v.SetU16(4, 0xBBBB)
	assert(v.Hi == 0xFEDCBA987654BBBB)

	v.SetU8(7, 0xCC)
	assert(v.U8(7) == 0xCC)

	assert(U128From64(5) == U128{Lo: 5})
	assert(U128From32(5) == U128{Lo: 5})
}

func TestWordFIFO(t *testing.T) {
	assert := func(v bool) {
		if !v {
			t.Error("assert failed")
		}
	}

	fifo := NewWordFIFO()

	assert(fifo.IsEmpty())

	for i := uint32(0); i < FIFO_CAPACITY; i++ {
		fifo.Push(i)
	}

	assert(fifo.IsFull())
	assert(fifo.Length() == FIFO_CAPACITY)

	for i := uint32(0); i < FIFO_CAPACITY; i++ {
		assert(fifo.Pop() == i)
	}

	assert(fifo.IsEmpty())

	// Wrap-around keeps ordering
	for i := uint32(0); i < 48; i++ {
		fifo.Push(i)
		assert(fifo.Pop() == i)
	}
}

func TestCountLeadingBits(t *testing.T) {
	assert := func(v bool) {
		if !v {
			t.Error("assert failed")
		}
	}

	assert(countLeadingBits(0x00000000) == 32)
	assert(countLeadingBits(0xFFFFFFFF) == 32)
	assert(countLeadingBits(0x00000001) == 31)
	assert(countLeadingBits(0x80000000) == 1)
	assert(countLeadingBits(0x7FFFFFFF) == 1)
	assert(countLeadingBits(0x000C0FFE) == 12)
}
