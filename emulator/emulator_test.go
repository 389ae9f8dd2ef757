package emulator

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"
)

// Builds a machine around a BIOS image whose reset vector holds the
// given instruction words and an empty disc image
func newTestEmulator(t *testing.T, instrs ...uint32) *Emulator {
	t.Helper()

	dir := t.TempDir()

	bios := make([]byte, 0x1000)
	for i, instr := range instrs {
		binary.LittleEndian.PutUint32(bios[4*i:], instr)
	}

	biosPath := filepath.Join(dir, "bios.bin")
	if err := os.WriteFile(biosPath, bios, 0644); err != nil {
		t.Fatal(err)
	}

	discPath := filepath.Join(dir, "disc.iso")
	if err := os.WriteFile(discPath, make([]byte, 2048), 0644); err != nil {
		t.Fatal(err)
	}

	cfg := DefaultConfig()
	cfg.FastBoot = false

	emu, err := New(biosPath, discPath, cfg)
	if err != nil {
		t.Fatal(err)
	}

	return emu
}

// Drives the scheduler forward by `cycles`, one scanline at a time
func runScheduler(emu *Emulator, cycles int64) {
	for cycles > 0 {
		c := minInt64(cycles, CYCLES_PER_SCANLINE)

		emu.Sched.ProcessEvents(c)

		cycles -= c
	}
}

func TestKputchar(t *testing.T) {
	emu := newTestEmulator(t)

	for _, b := range []byte("hello\n") {
		emu.Write8(KPUTCHAR_ADDR, b)
	}

	if emu.kputBuf.Len() != 0 {
		t.Error("kputchar buffer not flushed on newline")
	}
}

func TestRAMRoundTrip(t *testing.T) {
	assert := func(v bool) {
		if !v {
			t.Error("assert failed")
		}
	}

	emu := newTestEmulator(t)

	emu.Write64(0x1000, 0x0123456789ABCDEF)

	assert(emu.Read64(0x1000) == 0x0123456789ABCDEF)
	assert(emu.Read32(0x1000) == 0x89ABCDEF)
	assert(emu.Read32(0x1004) == 0x01234567)
	assert(emu.Read16(0x1000) == 0xCDEF)
	assert(emu.Read8(0x1001) == 0xCD)

	emu.Write128(0x2000, U128{Lo: 1, Hi: 2})
	q := emu.Read128(0x2000)
	assert(q.Lo == 1 && q.Hi == 2)
}

func TestFastBootPatchesOSDSYS(t *testing.T) {
	emu := newTestEmulator(t)

	// Put a BOOT2 line at the start of the disc and an OSDSYS
	// reference into EELOAD
	copy(emu.RAM[EELOAD_RANGE.Start+0x100:], "rom0:OSDSYS\x00")

	boot2 := make([]byte, 2048)
	copy(boot2, "BOOT2 = cdrom0:\\SLUS_123.45;1\n")
	if err := os.WriteFile(emu.Disc.File.Name(), boot2, 0644); err != nil {
		t.Fatal(err)
	}

	emu.fastBoot()

	patched := string(emu.RAM[EELOAD_RANGE.Start+0x100 : EELOAD_RANGE.Start+0x100+21])
	if patched != "cdrom0:\\SLUS_123.45;1" {
		t.Errorf("OSDSYS not patched, got %q", patched)
	}
}
