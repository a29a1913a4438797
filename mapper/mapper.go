package mapper

// MIRROR is the nametable arrangement a mapper asks the PPU to use.
// HARDWARE means the cartridge's solder-pad wiring applies; the other
// values override it (MMC3 switches mirroring at runtime).
type MIRROR uint8

const (
	HARDWARE     = MIRROR(0)
	HORIZONTAL   = MIRROR(1)
	VERTICAL     = MIRROR(2)
	ONESCREEN_LO = MIRROR(3)
	ONESCREEN_HI = MIRROR(4)
	FOURSCREEN   = MIRROR(5)
)

// Mapper translates CPU and PPU addresses into offsets inside the
// cartridge's PRG and CHR storage. A true return claims the access;
// false passes it on to the next device on the bus. A map-write call
// may instead consume the value as a bank-select register write, in
// which case it returns false so the bus does not also store it.
//
// Mappers with a scanline counter (MMC3) expose it through Scanline
// and raise the IRQ line through IRQState/IRQClear.
type Mapper interface {
	CpuMapRead(addr uint16, mappedAddr *uint32) bool
	CpuMapWrite(addr uint16, mappedAddr *uint32, data uint8) bool
	PpuMapRead(addr uint16, mappedAddr *uint32) bool
	PpuMapWrite(addr uint16, mappedAddr *uint32, data uint8) bool
	Reset()
	Mirror() MIRROR
	IRQState() bool
	IRQClear()
	Scanline()
}

// New returns the implementation for an iNES mapper id, or false when
// the id is not one of the supported chips.
func New(id uint8, prgBanks uint8, chrBanks uint8) (Mapper, bool) {
	var m Mapper
	switch id {
	case 0:
		m = &Mapper0000{PrgBanks: prgBanks, ChrBanks: chrBanks}
	case 2:
		m = &Mapper0002{PrgBanks: prgBanks, ChrBanks: chrBanks}
	case 3:
		m = &Mapper0003{PrgBanks: prgBanks, ChrBanks: chrBanks}
	case 4:
		m = &Mapper0004{PrgBanks: prgBanks, ChrBanks: chrBanks}
	default:
		return nil, false
	}
	m.Reset()
	return m, true
}
