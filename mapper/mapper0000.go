package mapper

// Mapper0000 is NROM: fixed wiring, no bank switching. 16KiB PRG images
// appear twice in the $8000-$FFFF window, 32KiB images once.
type Mapper0000 struct {
	PrgBanks uint8
	ChrBanks uint8
}

func (m *Mapper0000) CpuMapRead(addr uint16, mappedAddr *uint32) bool {
	if addr >= 0x8000 {
		base := uint16(0x3FFF)
		if m.PrgBanks > 1 {
			base = 0x7FFF
		}
		*mappedAddr = uint32(addr & base)
		return true
	}
	return false
}

func (m *Mapper0000) CpuMapWrite(addr uint16, mappedAddr *uint32, data uint8) bool {
	// PRG is ROM; the board ignores stores into it.
	return false
}

func (m *Mapper0000) PpuMapRead(addr uint16, mappedAddr *uint32) bool {
	if addr <= 0x1FFF {
		*mappedAddr = uint32(addr)
		return true
	}
	return false
}

func (m *Mapper0000) PpuMapWrite(addr uint16, mappedAddr *uint32, data uint8) bool {
	if addr <= 0x1FFF && m.ChrBanks == 0 {
		// CHR RAM
		*mappedAddr = uint32(addr)
		return true
	}
	return false
}

func (m *Mapper0000) Reset() {}

func (m *Mapper0000) Mirror() MIRROR {
	return HARDWARE
}

func (m *Mapper0000) IRQState() bool {
	return false
}

func (m *Mapper0000) IRQClear() {}

func (m *Mapper0000) Scanline() {}
