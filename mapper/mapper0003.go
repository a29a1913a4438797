package mapper

// Mapper0003 is CNROM: fixed PRG like NROM plus an 8KiB switchable CHR
// bank selected by writes into PRG space.
type Mapper0003 struct {
	PrgBanks uint8
	ChrBanks uint8

	chrBankSelect uint8
}

func (m *Mapper0003) CpuMapRead(addr uint16, mappedAddr *uint32) bool {
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

func (m *Mapper0003) CpuMapWrite(addr uint16, mappedAddr *uint32, data uint8) bool {
	if addr >= 0x8000 {
		m.chrBankSelect = data & 0x03
	}
	return false
}

func (m *Mapper0003) PpuMapRead(addr uint16, mappedAddr *uint32) bool {
	if addr <= 0x1FFF {
		*mappedAddr = uint32(m.chrBankSelect)*0x2000 + uint32(addr)
		return true
	}
	return false
}

func (m *Mapper0003) PpuMapWrite(addr uint16, mappedAddr *uint32, data uint8) bool {
	return false
}

func (m *Mapper0003) Reset() {
	m.chrBankSelect = 0
}

func (m *Mapper0003) Mirror() MIRROR {
	return HARDWARE
}

func (m *Mapper0003) IRQState() bool {
	return false
}

func (m *Mapper0003) IRQClear() {}

func (m *Mapper0003) Scanline() {}
