package emulator

import "log"

// CDVD registers
const (
	CDVD_REG_NCMD       = 0x1F402004 // N command / current N command
	CDVD_REG_NCMDSTAT   = 0x1F402005 // N command status / N parameter
	CDVD_REG_NCMDPAR    = 0x1F402006
	CDVD_REG_BREAK      = 0x1F402007
	CDVD_REG_ISTAT      = 0x1F402008 // Interrupt status
	CDVD_REG_DRIVESTAT  = 0x1F40200A
	CDVD_REG_STICKYSTAT = 0x1F40200B
	CDVD_REG_DISCTYPE   = 0x1F40200F
	CDVD_REG_SCMD       = 0x1F402016 // S command / current S command
	CDVD_REG_SCMDSTAT   = 0x1F402017 // S command status / S parameter
	CDVD_REG_SCMDDATA   = 0x1F402018 // S command response
)

// N commands
const (
	NCMD_NOP      = 0x00
	NCMD_READ_CD  = 0x06
	NCMD_READ_DVD = 0x08
)

// S commands
const (
	SCMD_MECHACON_VERSION    = 0x03
	SCMD_UPDATE_STICKY_FLAGS = 0x05
	SCMD_READ_RTC            = 0x08
)

// Command status bits
const (
	CMDSTAT_ERROR  = 1 << 0
	CMDSTAT_NODATA = 1 << 6
	CMDSTAT_READY  = 1 << 6
	CMDSTAT_BUSY   = 1 << 7
)

// Drive status
const (
	DRIVE_STOPPED  = 0x00
	DRIVE_SPINNING = 0x02
	DRIVE_READING  = 0x06
	DRIVE_PAUSED   = 0x0A
	DRIVE_SEEKING  = 0x12
)

// Disc types
const (
	DISC_PS2_CD  = 0x12
	DISC_PS2_DVD = 0x14
)

// Seek timing constants
const (
	IOP_CLOCK = 36864000

	READ_SPEED_CD  = 24 * 153600 // 24x CD
	READ_SPEED_DVD = 4 * 1382400 // 4x DVD
)

// Current seek/read parameters
type SeekParam struct {
	Pos  int64 // First sector
	Num  int64 // Sector count
	Size int64 // Sector size

	SectorNum    int64 // Sectors read so far
	OldSectorNum int64 // Head position before the seek
}

// The CD/DVD drive: an N-command seek/read state machine feeding the
// IOP DMAC, plus a synchronous S-command query queue
type CDVD struct {
	emu *Emulator

	Disc *Disc

	Seek SeekParam

	ReadBuf [2064]byte // One sector (DVD sectors are 2064 bytes)
	ReadIdx int64

	NCmd       uint8
	NCmdParams []uint8
	NCmdStat   uint8

	SCmd       uint8
	SCmdParams []uint8
	SCmdData   []uint8
	SCmdStat   uint8

	DriveStat  uint8
	StickyStat uint8

	IStat uint8

	idFinishSeek uint64
	idRequestDMA uint64
}

// Returns a new CDVD drive and registers its scheduler events
func NewCDVD(emu *Emulator, disc *Disc) *CDVD {
	cdvd := &CDVD{
		emu:      emu,
		Disc:     disc,
		NCmdStat: CMDSTAT_READY,
		SCmdStat: CMDSTAT_NODATA,
	}

	cdvd.DriveStat = DRIVE_PAUSED
	cdvd.StickyStat = cdvd.DriveStat

	cdvd.idFinishSeek = emu.Sched.RegisterEvent(func(_ int, _ int64) {
		cdvd.finishSeek()
	})
	cdvd.idRequestDMA = emu.Sched.RegisterEvent(func(_ int, _ int64) {
		cdvd.emu.IOPDmac.SetDRQ(IOP_CH_CDVD, true)
	})

	return cdvd
}

// Returns the cycle cost of reading one sector at the current speed
func (cdvd *CDVD) blockCycles() int64 {
	if cdvd.Seek.Size == 2064 {
		return IOP_CLOCK * cdvd.Seek.Size / READ_SPEED_DVD
	}
	return IOP_CLOCK * cdvd.Seek.Size / READ_SPEED_CD
}

// Computes the seek time and schedules the seek completion. Three
// regimes: contiguous reads cost one block per sector of distance,
// short seeks take ~30ms, full seeks ~100ms
func (cdvd *CDVD) doSeek() {
	isDVD := cdvd.Seek.Size == 2064

	delta := absInt64(cdvd.Seek.Pos - cdvd.Seek.OldSectorNum)

	var contiguous, fast int64
	if isDVD {
		contiguous, fast = 16, 14764
	} else {
		contiguous, fast = 8, 4371
	}

	var seekCycles int64
	switch {
	case delta < contiguous:
		seekCycles = cdvd.blockCycles() * delta
	case delta < fast:
		seekCycles = IOP_CLOCK / 33
	default:
		seekCycles = IOP_CLOCK / 10
	}

	if delta > 0 {
		cdvd.DriveStat = DRIVE_SEEKING
	} else {
		cdvd.DriveStat = DRIVE_READING

		seekCycles = cdvd.blockCycles()
	}

	cdvd.Seek.OldSectorNum = cdvd.Seek.Pos

	// The scheduler runs on the EE clock, 8 EE cycles per IOP cycle
	cdvd.emu.Sched.AddEvent(cdvd.idFinishSeek, 0, 8*seekCycles, true)
}

// Seek completion: reads one sector into the read buffer and
// schedules the DMA request one block later
func (cdvd *CDVD) finishSeek() {
	log.Printf("[cdvd] seek finished, sector %d", cdvd.Seek.Pos+cdvd.Seek.SectorNum)

	cdvd.Disc.ReadSector(cdvd.Seek.Size, cdvd.Seek.Pos+cdvd.Seek.SectorNum, cdvd.ReadBuf[:cdvd.Seek.Size])

	cdvd.ReadIdx = 0

	cdvd.DriveStat = DRIVE_READING

	cdvd.emu.Sched.AddEvent(cdvd.idRequestDMA, 0, 8*cdvd.blockCycles(), true)
}

// Consumes four bytes of the read buffer through the DMA data port.
// Exhausting the last requested sector finishes the read and raises
// the CDVD interrupt
func (cdvd *CDVD) ReadDMAC() uint32 {
	data := uint32(loadBuf(cdvd.ReadBuf[:], uint32(cdvd.ReadIdx), 4))

	cdvd.ReadIdx += 4

	if cdvd.ReadIdx == cdvd.Seek.Size {
		cdvd.Seek.SectorNum++

		if cdvd.Seek.SectorNum == cdvd.Seek.Num {
			cdvd.Seek.SectorNum = 0

			cdvd.DriveStat = DRIVE_PAUSED
			cdvd.NCmdStat = CMDSTAT_READY

			cdvd.IStat |= 1 << 0

			cdvd.emu.Intc.SendInterruptIOP(IOP_INT_CDVD)
		} else {
			cdvd.finishSeek()
		}
	}

	return data
}

// Dispatches an N command once all parameters have arrived
func (cdvd *CDVD) runNCmd() {
	switch cdvd.NCmd {
	case NCMD_NOP:
		cdvd.IStat |= 1 << 0

		cdvd.emu.Intc.SendInterruptIOP(IOP_INT_CDVD)
	case NCMD_READ_CD, NCMD_READ_DVD:
		cdvd.cmdRead()
	default:
		panicFmt("cdvd: unhandled N command 0x%02x", cdvd.NCmd)
	}

	cdvd.NCmdParams = cdvd.NCmdParams[:0]
}

// Returns the parameter count of an N command
func nCmdParamCount(cmd uint8) int {
	switch cmd {
	case NCMD_NOP:
		return 0
	case NCMD_READ_CD, NCMD_READ_DVD:
		return 11
	default:
		panicFmt("cdvd: unhandled N command 0x%02x", cmd)
	}
	return 0
}

// ReadCD/ReadDVD: parses POS, NUM and the sector size, then starts
// the seek
func (cdvd *CDVD) cmdRead() {
	p := cdvd.NCmdParams

	pos := int64(int32(uint32(p[0]) | uint32(p[1])<<8 | uint32(p[2])<<16 | uint32(p[3])<<24))
	num := int64(uint32(p[4]) | uint32(p[5])<<8 | uint32(p[6])<<16 | uint32(p[7])<<24)

	if pos < 0 {
		panicFmt("cdvd: negative read position %d", pos)
	}

	var size int64
	if cdvd.NCmd == NCMD_READ_DVD {
		size = 2064
	} else {
		switch p[10] {
		case 0:
			size = 2048
		case 1:
			size = 2328
		case 2:
			size = 2340
		default:
			panicFmt("cdvd: invalid sector size %d", p[10])
		}
	}

	log.Printf("[cdvd] read: pos = %d, num = %d, size = %d", pos, num, size)

	cdvd.Seek.Pos = pos
	cdvd.Seek.Num = num
	cdvd.Seek.Size = size
	cdvd.Seek.SectorNum = 0

	cdvd.NCmdStat = CMDSTAT_BUSY

	cdvd.doSeek()
}

// Queues S command response bytes
func (cdvd *CDVD) scmdRespond(data ...uint8) {
	cdvd.SCmdData = append(cdvd.SCmdData, data...)

	cdvd.SCmdStat &= ^uint8(CMDSTAT_NODATA)
}

// Dispatches an S command once all parameters have arrived
func (cdvd *CDVD) runSCmd() {
	switch cdvd.SCmd {
	case SCMD_MECHACON_VERSION:
		cdvd.scmdRespond(0x03, 0x06, 0x02, 0x00)
	case SCMD_UPDATE_STICKY_FLAGS:
		cdvd.StickyStat = cdvd.DriveStat

		cdvd.scmdRespond(0x00)
	case SCMD_READ_RTC:
		// Status, second, minute, hour, pad, day, month, year
		cdvd.scmdRespond(0x00, 0x00, 0x00, 0x00, 0x00, 0x01, 0x01, 0x00)
	default:
		panicFmt("cdvd: unhandled S command 0x%02x", cdvd.SCmd)
	}

	cdvd.SCmdParams = cdvd.SCmdParams[:0]
}

// Returns the parameter count of an S command
func sCmdParamCount(cmd uint8) int {
	switch cmd {
	case SCMD_MECHACON_VERSION:
		return 1
	case SCMD_UPDATE_STICKY_FLAGS, SCMD_READ_RTC:
		return 0
	default:
		panicFmt("cdvd: unhandled S command 0x%02x", cmd)
	}
	return 0
}

// Reads a CDVD register
func (cdvd *CDVD) Read(addr uint32) uint8 {
	switch addr {
	case CDVD_REG_NCMD:
		return cdvd.NCmd
	case CDVD_REG_NCMDSTAT:
		return cdvd.NCmdStat
	case CDVD_REG_NCMDPAR:
		return 0
	case CDVD_REG_ISTAT:
		return cdvd.IStat
	case CDVD_REG_DRIVESTAT:
		return cdvd.DriveStat
	case CDVD_REG_STICKYSTAT:
		return cdvd.StickyStat
	case CDVD_REG_DISCTYPE:
		if cdvd.Disc.SectorSize == 2064 {
			return DISC_PS2_DVD
		}
		return DISC_PS2_CD
	case CDVD_REG_SCMD:
		return cdvd.SCmd
	case CDVD_REG_SCMDSTAT:
		return cdvd.SCmdStat
	case CDVD_REG_SCMDDATA:
		if len(cdvd.SCmdData) == 0 {
			return 0
		}

		data := cdvd.SCmdData[0]
		cdvd.SCmdData = cdvd.SCmdData[1:]

		if len(cdvd.SCmdData) == 0 {
			cdvd.SCmdStat |= CMDSTAT_NODATA
		}

		return data
	default:
		panicFmt("cdvd: unhandled 8-bit read @ 0x%08x", addr)
	}
	return 0
}

// Writes a CDVD register
func (cdvd *CDVD) Write(addr uint32, data uint8) {
	switch addr {
	case CDVD_REG_NCMD:
		cdvd.NCmd = data
		cdvd.NCmdParams = cdvd.NCmdParams[:0]

		if nCmdParamCount(data) == 0 {
			cdvd.runNCmd()
		}
	case CDVD_REG_NCMDSTAT:
		cdvd.NCmdParams = append(cdvd.NCmdParams, data)

		if len(cdvd.NCmdParams) == nCmdParamCount(cdvd.NCmd) {
			cdvd.runNCmd()
		}
	case CDVD_REG_BREAK:
		log.Printf("[cdvd] BREAK")
	case CDVD_REG_ISTAT:
		// Writing 1 to a bit clears it
		cdvd.IStat &= ^data
	case CDVD_REG_SCMD:
		cdvd.SCmd = data
		cdvd.SCmdParams = cdvd.SCmdParams[:0]
		cdvd.SCmdData = cdvd.SCmdData[:0]

		if sCmdParamCount(data) == 0 {
			cdvd.runSCmd()
		}
	case CDVD_REG_SCMDSTAT:
		cdvd.SCmdParams = append(cdvd.SCmdParams, data)

		if len(cdvd.SCmdParams) == sCmdParamCount(cdvd.SCmd) {
			cdvd.runSCmd()
		}
	default:
		panicFmt("cdvd: unhandled 8-bit write @ 0x%08x = 0x%02x", addr, data)
	}
}
