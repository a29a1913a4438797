package famicore

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"famicore/mapper"
)

// Load-time failures. Anything wrong with a cartridge image is reported
// before a session exists; the core never guesses a mapper or pads a
// truncated image.
var (
	ErrInvalidImage      = errors.New("not an iNES image")
	ErrTruncatedImage    = errors.New("truncated iNES image")
	ErrUnsupportedMapper = errors.New("unsupported mapper")
)

type MIRROR uint8

const (
	HORIZONTAL   = MIRROR(0)
	VERTICAL     = MIRROR(1)
	ONESCREEN_LO = MIRROR(2)
	ONESCREEN_HI = MIRROR(3)
	FOURSCREEN   = MIRROR(4)
)

// Cartridge owns the PRG and CHR storage banks, the 8KiB PRG RAM window
// at $6000-$7FFF, the solder-pad mirroring wiring and the mapper chip.
// PRG data is immutable after load; only bank-select state and RAM
// change during a session.
type Cartridge struct {
	prgBanks  uint8
	chrBanks  uint8
	prgMemory []uint8
	chrMemory []uint8
	prgRAM    []uint8
	mapperID  uint8
	mapper    mapper.Mapper
	mirror    MIRROR
	battery   bool
}

// Header is the 16-byte iNES file header.
type Header struct {
	Name         [4]byte
	PrgRomChunks uint8
	ChrRomChunks uint8
	Mapper1      uint8
	Mapper2      uint8
	PrgRamSize   uint8
	TvSystem1    uint8
	TvSystem2    uint8
	Unused       [5]byte
}

var inesMagic = [4]byte{'N', 'E', 'S', 0x1A}

// LoadCartridge parses an iNES image. Malformed headers, unknown mapper
// ids and short PRG/CHR data all fail here with a descriptive error; no
// partial cartridge is ever returned.
func LoadCartridge(r io.Reader) (*Cartridge, error) {
	header := Header{}
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTruncatedImage, err)
	}
	if header.Name != inesMagic {
		return nil, fmt.Errorf("%w: bad magic %q", ErrInvalidImage, header.Name)
	}
	if header.PrgRomChunks == 0 {
		return nil, fmt.Errorf("%w: zero PRG banks", ErrInvalidImage)
	}

	if header.Mapper1&0x04 != 0 {
		// 512-byte trainer precedes PRG data
		if _, err := io.CopyN(io.Discard, r, 512); err != nil {
			return nil, fmt.Errorf("%w: trainer: %v", ErrTruncatedImage, err)
		}
	}

	cart := &Cartridge{
		prgBanks: header.PrgRomChunks,
		chrBanks: header.ChrRomChunks,
		prgRAM:   make([]uint8, 8192),
		mapperID: ((header.Mapper2 >> 4) << 4) | (header.Mapper1 >> 4),
		battery:  header.Mapper1&0x02 != 0,
	}

	switch {
	case header.Mapper1&0x08 != 0:
		cart.mirror = FOURSCREEN
	case header.Mapper1&0x01 != 0:
		cart.mirror = VERTICAL
	default:
		cart.mirror = HORIZONTAL
	}

	cart.prgMemory = make([]uint8, uint32(cart.prgBanks)*16384)
	if _, err := io.ReadFull(r, cart.prgMemory); err != nil {
		return nil, fmt.Errorf("%w: PRG data: %v", ErrTruncatedImage, err)
	}
	if cart.chrBanks == 0 {
		// no CHR ROM means the board carries 8KiB of CHR RAM
		cart.chrMemory = make([]uint8, 8192)
	} else {
		cart.chrMemory = make([]uint8, uint32(cart.chrBanks)*8192)
		if _, err := io.ReadFull(r, cart.chrMemory); err != nil {
			return nil, fmt.Errorf("%w: CHR data: %v", ErrTruncatedImage, err)
		}
	}

	m, ok := mapper.New(cart.mapperID, cart.prgBanks, cart.chrBanks)
	if !ok {
		return nil, fmt.Errorf("%w: mapper %03d", ErrUnsupportedMapper, cart.mapperID)
	}
	cart.mapper = m

	return cart, nil
}

// LoadCartridgeFile opens and parses an iNES file from disk.
func LoadCartridgeFile(filename string) (*Cartridge, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	cart, err := LoadCartridge(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return cart, nil
}

// cpuRead claims reads the cartridge decodes: PRG RAM at $6000-$7FFF
// and mapped PRG ROM above.
func (c *Cartridge) cpuRead(addr uint16, data *uint8) bool {
	if addr >= 0x6000 && addr <= 0x7FFF {
		*data = c.prgRAM[addr&0x1FFF]
		return true
	}
	mappedAddr := uint32(0)
	if c.mapper.CpuMapRead(addr, &mappedAddr) {
		*data = c.prgMemory[mappedAddr]
		return true
	}
	return false
}

func (c *Cartridge) cpuWrite(addr uint16, data uint8) bool {
	if addr >= 0x6000 && addr <= 0x7FFF {
		c.prgRAM[addr&0x1FFF] = data
		return true
	}
	mappedAddr := uint32(0)
	if c.mapper.CpuMapWrite(addr, &mappedAddr, data) {
		c.prgMemory[mappedAddr] = data
		return true
	}
	return false
}

func (c *Cartridge) ppuRead(addr uint16, data *uint8) bool {
	mappedAddr := uint32(0)
	if c.mapper.PpuMapRead(addr, &mappedAddr) {
		*data = c.chrMemory[mappedAddr]
		return true
	}
	return false
}

func (c *Cartridge) ppuWrite(addr uint16, data uint8) bool {
	mappedAddr := uint32(0)
	if c.mapper.PpuMapWrite(addr, &mappedAddr, data) {
		c.chrMemory[mappedAddr] = data
		return true
	}
	return false
}

// Mirror reports the effective nametable arrangement: the mapper's
// runtime choice when it makes one, otherwise the header wiring.
func (c *Cartridge) Mirror() MIRROR {
	switch c.mapper.Mirror() {
	case mapper.HORIZONTAL:
		return HORIZONTAL
	case mapper.VERTICAL:
		return VERTICAL
	case mapper.ONESCREEN_LO:
		return ONESCREEN_LO
	case mapper.ONESCREEN_HI:
		return ONESCREEN_HI
	case mapper.FOURSCREEN:
		return FOURSCREEN
	}
	return c.mirror
}

// MapperID reports the iNES mapper number the image declared.
func (c *Cartridge) MapperID() uint8 {
	return c.mapperID
}

func (c *Cartridge) reset() {
	if c.mapper != nil {
		c.mapper.Reset()
	}
}
