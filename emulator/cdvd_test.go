package emulator

import (
	"encoding/binary"
	"os"
	"testing"
)

func TestCDVDReadCD(t *testing.T) {
	assert := func(v bool) {
		if !v {
			t.Error("assert failed")
		}
	}

	emu := newTestEmulator(t)

	// Pattern at sector 100 of the disc image
	image := make([]byte, 2048*101)
	for i := 0; i < 512; i++ {
		binary.LittleEndian.PutUint32(image[2048*100+4*i:], 0xD15C0000+uint32(i))
	}
	if err := os.WriteFile(emu.Disc.File.Name(), image, 0644); err != nil {
		t.Fatal(err)
	}

	cdvd := emu.CDVD

	// ReadCD: pos = 100, num = 1, size enum 0 (2048)
	cdvd.Write(CDVD_REG_NCMD, NCMD_READ_CD)
	params := []uint8{100, 0, 0, 0, 1, 0, 0, 0, 0, 0, 0}
	for _, p := range params {
		cdvd.Write(CDVD_REG_NCMDSTAT, p)
	}

	assert(cdvd.Read(CDVD_REG_NCMDSTAT) == CMDSTAT_BUSY)
	assert(cdvd.Read(CDVD_REG_DRIVESTAT) == DRIVE_SEEKING)

	// Fast seek (delta = 100) plus one block time, with slack for the
	// scanline-sized drain granularity
	runScheduler(emu, 8*(IOP_CLOCK/33)+8*20480+4*CYCLES_PER_SCANLINE)

	assert(cdvd.Read(CDVD_REG_DRIVESTAT) == DRIVE_READING)
	assert(emu.IOPDmac.Channels[IOP_CH_CDVD].DRQ)

	// 512 reads of the data port yield the sector
	for i := 0; i < 512; i++ {
		assert(cdvd.ReadDMAC() == 0xD15C0000+uint32(i))
	}

	// The read is finished: drive paused, command ready, interrupt
	// raised
	assert(cdvd.Read(CDVD_REG_DRIVESTAT) == DRIVE_PAUSED)
	assert(cdvd.Read(CDVD_REG_NCMDSTAT) == CMDSTAT_READY)
	assert(cdvd.IStat&1 != 0)
	assert(emu.Intc.IopStat&(1<<IOP_INT_CDVD) != 0)
}

func TestCDVDSCommands(t *testing.T) {
	assert := func(v bool) {
		if !v {
			t.Error("assert failed")
		}
	}

	emu := newTestEmulator(t)
	cdvd := emu.CDVD

	assert(cdvd.Read(CDVD_REG_SCMDSTAT)&CMDSTAT_NODATA != 0)

	// MechaconVersion takes one parameter byte
	cdvd.Write(CDVD_REG_SCMD, SCMD_MECHACON_VERSION)
	cdvd.Write(CDVD_REG_SCMDSTAT, 0x00)

	assert(cdvd.Read(CDVD_REG_SCMDSTAT)&CMDSTAT_NODATA == 0)

	want := []uint8{0x03, 0x06, 0x02, 0x00}
	for _, b := range want {
		assert(cdvd.Read(CDVD_REG_SCMDDATA) == b)
	}

	// Queue drained
	assert(cdvd.Read(CDVD_REG_SCMDSTAT)&CMDSTAT_NODATA != 0)
}

func TestCDVDStickyFlags(t *testing.T) {
	assert := func(v bool) {
		if !v {
			t.Error("assert failed")
		}
	}

	emu := newTestEmulator(t)
	cdvd := emu.CDVD

	cdvd.DriveStat = DRIVE_READING

	cdvd.Write(CDVD_REG_SCMD, SCMD_UPDATE_STICKY_FLAGS)

	assert(cdvd.Read(CDVD_REG_STICKYSTAT) == DRIVE_READING)
	assert(cdvd.Read(CDVD_REG_SCMDDATA) == 0)
}

func TestCDVDReadRTC(t *testing.T) {
	emu := newTestEmulator(t)
	cdvd := emu.CDVD

	cdvd.Write(CDVD_REG_SCMD, SCMD_READ_RTC)

	if len(cdvd.SCmdData) != 8 {
		t.Errorf("ReadRTC returned %d bytes", len(cdvd.SCmdData))
	}
}

func TestCDVDDMADrain(t *testing.T) {
	assert := func(v bool) {
		if !v {
			t.Error("assert failed")
		}
	}

	emu := newTestEmulator(t)

	image := make([]byte, 2048)
	for i := 0; i < 512; i++ {
		binary.LittleEndian.PutUint32(image[4*i:], 0xABCD0000+uint32(i))
	}
	if err := os.WriteFile(emu.Disc.File.Name(), image, 0644); err != nil {
		t.Fatal(err)
	}

	dmac := emu.IOPDmac
	dmac.Write32(DMACEN_ADDR, 1)
	dmac.Write32(DPCR_ADDR, 1<<(4*int(IOP_CH_CDVD)+3))

	// BCR: 512 words, one block; MADR; CHCR started, to RAM
	dmac.Write32(0x1F8010B0+IOP_DMA_REG_MADR, 0x40000)
	dmac.Write32(0x1F8010B0+IOP_DMA_REG_BCR, (1<<16)|512)
	dmac.Write32(0x1F8010B0+IOP_DMA_REG_CHCR, 1<<24)

	// ReadCD from sector 0
	cdvd := emu.CDVD
	cdvd.Write(CDVD_REG_NCMD, NCMD_READ_CD)
	for _, p := range []uint8{0, 0, 0, 0, 1, 0, 0, 0, 0, 0, 0} {
		cdvd.Write(CDVD_REG_NCMDSTAT, p)
	}

	// Contiguous seek (delta = 0): one block to seek, one to read
	runScheduler(emu, 8*2*20480+4*CYCLES_PER_SCANLINE)

	for i := 0; i < 512; i++ {
		got := binary.LittleEndian.Uint32(emu.IOPRAM[0x40000+4*i:])
		assert(got == 0xABCD0000+uint32(i))
	}
}
