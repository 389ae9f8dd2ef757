package emulator

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"
)

// Minimum number of cycles the EE runs per iteration, used when the
// next event is closer than that
const EE_CYCLES = 16

// The whole machine. Devices keep a back-pointer here for cross-device
// calls; the bus methods live on this struct as well
type Emulator struct {
	Sched *Scheduler

	RAM    []byte
	IOPRAM []byte
	BIOS   []byte

	IOPSPRAM [IOP_SPRAM_SIZE]byte
	// IOP scratchpad window, relocatable
	SPRAMStart, SPRAMEnd uint32

	EE  *EECore
	IOP *IOPCore

	Intc *Intc

	EEDmac  *EEDmac
	IOPDmac *IOPDmac

	EETimers  *EETimers
	IOPTimers *IOPTimers

	SIF  *SIF
	GIF  *GIF
	GS   *GS
	VIF  [2]*VIF
	CDVD *CDVD
	SIO2 *SIO2
	SPU2 *SPU2

	RDRAM *RDRAM

	Disc     *Disc
	Renderer Renderer
	Config   *Config

	// Console output line buffer for KPUTCHAR
	kputBuf strings.Builder

	frameDone bool
}

// Builds the machine: loads the BIOS, opens the disc image and wires
// every device together
func New(biosPath, discPath string, cfg *Config) (*Emulator, error) {
	emu := &Emulator{
		Sched:  NewScheduler(),
		RAM:    make([]byte, RAM_SIZE),
		IOPRAM: make([]byte, IOP_RAM_SIZE),
		Config: cfg,
	}

	emu.SPRAMStart = 0x1F800000
	emu.SPRAMEnd = emu.SPRAMStart + IOP_SPRAM_SIZE

	if err := emu.loadBIOS(biosPath); err != nil {
		return nil, err
	}

	disc, err := NewDisc(discPath)
	if err != nil {
		return nil, err
	}
	emu.Disc = disc

	emu.EE = NewEECore(emu)
	emu.IOP = NewIOPCore(emu)

	emu.Intc = NewIntc(emu)

	emu.EEDmac = NewEEDmac(emu)
	emu.IOPDmac = NewIOPDmac(emu)

	emu.EETimers = NewEETimers(emu)
	emu.IOPTimers = NewIOPTimers(emu)

	emu.SIF = NewSIF()
	emu.GIF = NewGIF(emu)
	emu.GS = NewGS(emu)

	emu.VIF[0] = NewVIF(0, emu.EE.VUs[0])
	emu.VIF[1] = NewVIF(1, emu.EE.VUs[1])

	emu.CDVD = NewCDVD(emu, disc)
	emu.SIO2 = NewSIO2(emu)
	emu.SPU2 = NewSPU2()
	emu.RDRAM = NewRDRAM()

	emu.Renderer = NewNullRenderer()

	if !cfg.FastBoot {
		emu.EE.IsFastBootDone = true
	}

	log.Printf("[gops2] init OK")

	return emu, nil
}

// Loads the BIOS image into its 4MB buffer
func (emu *Emulator) loadBIOS(path string) error {
	log.Printf("[gops2] loading bios %q", path)
	start := time.Now()

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("bios: %w", err)
	}

	if len(data) > BIOS_SIZE {
		return fmt.Errorf("bios: image too large (%d bytes)", len(data))
	}

	emu.BIOS = make([]byte, BIOS_SIZE)
	copy(emu.BIOS, data)

	log.Printf("[gops2] loaded bios in %s", time.Since(start))

	return nil
}

// Runs one machine iteration: the EE for the cycles left until the
// next event, the IOP at one eighth of that, then the event drain
func (emu *Emulator) step() {
	cycles := emu.Sched.CyclesUntilNextEvent - emu.Sched.CycleCount
	if cycles < EE_CYCLES {
		cycles = EE_CYCLES
	}

	emu.EE.Step(cycles)
	emu.IOP.Step(cycles >> 3)

	emu.EETimers.Step(cycles >> 1)
	emu.IOPTimers.Step(cycles >> 3)

	emu.Sched.ProcessEvents(cycles)
}

// Runs the machine until the next vertical blank hands a frame to the
// renderer
func (emu *Emulator) RunFrame() error {
	emu.frameDone = false

	for !emu.frameDone {
		if emu.Renderer.Closed() {
			return fmt.Errorf("window closed")
		}

		emu.step()
	}

	return nil
}

// Runs the machine until the front-end closes
func (emu *Emulator) Run() error {
	for {
		if err := emu.RunFrame(); err != nil {
			return err
		}
	}
}

// Called by the GS on every VBLANKStart: hands the visible
// framebuffer to the renderer
func (emu *Emulator) updateScreen() {
	fb, width, height := emu.GS.Framebuffer()

	emu.Renderer.Update(fb, width, height)

	emu.frameDone = true
}

// KPUTCHAR debug output: buffered per line
func (emu *Emulator) kputchar(data uint8) {
	if data == '\n' {
		log.Printf("[kputchar] %s", emu.kputBuf.String())
		emu.kputBuf.Reset()
		return
	}

	emu.kputBuf.WriteByte(data)
}

// Patches the BIOS's OSDSYS boot path in main RAM so EELOAD jumps
// straight to the disc's main executable. Called on the first ERET
// that lands in EELOAD
func (emu *Emulator) fastBoot() {
	execPath, err := emu.Disc.ExecPath()
	if err != nil {
		log.Printf("[gops2] fast boot failed: %v", err)
		return
	}

	const osdsys = "rom0:OSDSYS"

	patch := append([]byte(execPath), 0)

	count := 0
	for addr := EELOAD_RANGE.Start; addr < EELOAD_RANGE.Start+EELOAD_RANGE.Length; addr++ {
		if string(emu.RAM[addr:addr+uint32(len(osdsys))]) != osdsys {
			continue
		}

		copy(emu.RAM[addr:], patch)

		count++
	}

	log.Printf("[gops2] fast boot: patched %d OSDSYS reference(s) to %q", count, execPath)
}
