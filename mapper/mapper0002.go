package mapper

// Mapper0002 is UxROM: a 16KiB switchable PRG bank at $8000-$BFFF and
// the last bank fixed at $C000-$FFFF. Any write into PRG space selects
// the low bank.
type Mapper0002 struct {
	PrgBanks uint8
	ChrBanks uint8

	prgBankSelectLo uint8
	prgBankSelectHi uint8
}

func (m *Mapper0002) CpuMapRead(addr uint16, mappedAddr *uint32) bool {
	if addr >= 0x8000 && addr <= 0xBFFF {
		*mappedAddr = uint32(m.prgBankSelectLo)*0x4000 + uint32(addr&0x3FFF)
		return true
	}
	if addr >= 0xC000 {
		*mappedAddr = uint32(m.prgBankSelectHi)*0x4000 + uint32(addr&0x3FFF)
		return true
	}
	return false
}

func (m *Mapper0002) CpuMapWrite(addr uint16, mappedAddr *uint32, data uint8) bool {
	if addr >= 0x8000 {
		m.prgBankSelectLo = data & 0x0F
	}
	return false
}

func (m *Mapper0002) PpuMapRead(addr uint16, mappedAddr *uint32) bool {
	if addr <= 0x1FFF {
		*mappedAddr = uint32(addr)
		return true
	}
	return false
}

func (m *Mapper0002) PpuMapWrite(addr uint16, mappedAddr *uint32, data uint8) bool {
	if addr <= 0x1FFF && m.ChrBanks == 0 {
		*mappedAddr = uint32(addr)
		return true
	}
	return false
}

func (m *Mapper0002) Reset() {
	m.prgBankSelectLo = 0
	m.prgBankSelectHi = m.PrgBanks - 1
}

func (m *Mapper0002) Mirror() MIRROR {
	return HARDWARE
}

func (m *Mapper0002) IRQState() bool {
	return false
}

func (m *Mapper0002) IRQClear() {}

func (m *Mapper0002) Scanline() {}
