package emulator

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	diskfs "github.com/diskfs/go-diskfs"
)

// A raw disc image (.iso/.bin). Sectors are read at absolute byte
// offsets; 2048-byte sectors for CD mode 1 data, 2064 for DVD
type Disc struct {
	File *os.File

	SectorSize int64
}

// Opens a disc image. The sector size is set to 2048; the image is
// not probed for its sector layout
func NewDisc(path string) (*Disc, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("disc: %w", err)
	}

	disc := &Disc{File: file, SectorSize: 2048}

	return disc, nil
}

// Reads the sector at `lba` into `buf`. Short images yield zero-fill
func (disc *Disc) ReadSector(sectorSize, lba int64, buf []byte) {
	for i := range buf {
		buf[i] = 0
	}

	_, err := disc.File.ReadAt(buf, sectorSize*lba)
	if err != nil && err != io.EOF {
		panicFmt("disc: sector read failed: %v", err)
	}
}

// Resolves the boot executable path ("cdrom0:\XXXX_000.00;1"). The
// ISO9660 filesystem is probed for SYSTEM.CNF first; images diskfs
// cannot open fall back to a raw scan of the first 512 sectors for
// the BOOT2 string
func (disc *Disc) ExecPath() (string, error) {
	if path, err := disc.execPathFromSystemCnf(); err == nil {
		return path, nil
	}

	return disc.execPathFromRawScan()
}

// Reads BOOT2 out of SYSTEM.CNF through the ISO9660 filesystem
func (disc *Disc) execPathFromSystemCnf() (string, error) {
	d, err := diskfs.Open(disc.File.Name(), diskfs.WithOpenMode(diskfs.ReadOnly))
	if err != nil {
		return "", fmt.Errorf("disc: %w", err)
	}

	fs, err := d.GetFilesystem(0)
	if err != nil {
		return "", fmt.Errorf("disc: %w", err)
	}

	f, err := fs.OpenFile("/SYSTEM.CNF;1", os.O_RDONLY)
	if err != nil {
		f, err = fs.OpenFile("/SYSTEM.CNF", os.O_RDONLY)
		if err != nil {
			return "", fmt.Errorf("disc: %w", err)
		}
	}

	data, err := io.ReadAll(f)
	if err != nil {
		return "", fmt.Errorf("disc: %w", err)
	}

	for _, line := range strings.Split(string(data), "\n") {
		if !strings.Contains(line, "BOOT2") {
			continue
		}

		_, value, found := strings.Cut(line, "=")
		if !found {
			continue
		}

		path := strings.TrimSpace(value)

		log.Printf("[disc] executable path from SYSTEM.CNF: %q", path)

		return path, nil
	}

	return "", fmt.Errorf("disc: no BOOT2 line in SYSTEM.CNF")
}

// Scans the beginning of the first 512 sectors for the BOOT2 string
func (disc *Disc) execPathFromRawScan() (string, error) {
	const boot2Str = "BOOT2 = cdrom0:\\"

	buf := make([]byte, 64)

	for i := int64(0); i < 512; i++ {
		disc.ReadSector(2048, i, buf)

		if string(buf[:16]) != boot2Str {
			continue
		}

		path := "cdrom0:\\" + string(buf[16:27]) + ";1"

		log.Printf("[disc] executable path: %q", path)

		return path, nil
	}

	return "", fmt.Errorf("disc: unable to find executable path")
}
