package mapper

// Mapper0004 is MMC3: eight 1KiB CHR windows and four 8KiB PRG windows
// driven by a target-register/bank-data pair, runtime mirroring control,
// and a scanline counter wired to the IRQ line. The counter is clocked
// by the PPU once per rendered scanline.
type Mapper0004 struct {
	PrgBanks uint8
	ChrBanks uint8

	targetRegister uint8
	prgBankMode    bool
	chrInversion   bool
	mirrorMode     MIRROR
	register       [8]uint32
	chrBank        [8]uint32
	prgBank        [4]uint32

	irqActive  bool
	irqEnable  bool
	irqCounter uint16
	irqReload  uint16
}

func (m *Mapper0004) CpuMapRead(addr uint16, mappedAddr *uint32) bool {
	if addr >= 0x8000 {
		window := (addr - 0x8000) / 0x2000
		*mappedAddr = m.prgBank[window] + uint32(addr&0x1FFF)
		return true
	}
	return false
}

func (m *Mapper0004) CpuMapWrite(addr uint16, mappedAddr *uint32, data uint8) bool {
	if addr < 0x8000 {
		return false
	}

	switch {
	case addr <= 0x9FFF && addr&1 == 0:
		m.targetRegister = data & 0x07
		m.prgBankMode = data&0x40 != 0
		m.chrInversion = data&0x80 != 0
		m.updateBanks()
	case addr <= 0x9FFF:
		m.register[m.targetRegister] = uint32(data)
		m.updateBanks()
	case addr <= 0xBFFF && addr&1 == 0:
		if data&0x01 != 0 {
			m.mirrorMode = HORIZONTAL
		} else {
			m.mirrorMode = VERTICAL
		}
	case addr <= 0xBFFF:
		// PRG RAM protect, not modelled
	case addr <= 0xDFFF && addr&1 == 0:
		m.irqReload = uint16(data)
	case addr <= 0xDFFF:
		m.irqCounter = 0
	case addr&1 == 0:
		m.irqEnable = false
		m.irqActive = false
	default:
		m.irqEnable = true
	}
	return false
}

func (m *Mapper0004) PpuMapRead(addr uint16, mappedAddr *uint32) bool {
	if addr <= 0x1FFF {
		*mappedAddr = m.chrBank[addr/0x0400] + uint32(addr&0x03FF)
		return true
	}
	return false
}

func (m *Mapper0004) PpuMapWrite(addr uint16, mappedAddr *uint32, data uint8) bool {
	return false
}

// updateBanks recomputes the window offsets from the bank registers.
// Offsets are byte offsets into PRG/CHR storage. The second-to-last and
// last PRG banks are fixed, swapping position with R6 per the PRG mode.
func (m *Mapper0004) updateBanks() {
	prg8k := uint32(m.PrgBanks) * 2

	if m.prgBankMode {
		m.prgBank[0] = (prg8k - 2) * 0x2000
		m.prgBank[2] = (m.register[6] % prg8k) * 0x2000
	} else {
		m.prgBank[0] = (m.register[6] % prg8k) * 0x2000
		m.prgBank[2] = (prg8k - 2) * 0x2000
	}
	m.prgBank[1] = (m.register[7] % prg8k) * 0x2000
	m.prgBank[3] = (prg8k - 1) * 0x2000

	if m.chrInversion {
		m.chrBank[0] = m.register[2] * 0x0400
		m.chrBank[1] = m.register[3] * 0x0400
		m.chrBank[2] = m.register[4] * 0x0400
		m.chrBank[3] = m.register[5] * 0x0400
		m.chrBank[4] = (m.register[0] &^ 1) * 0x0400
		m.chrBank[5] = (m.register[0] | 1) * 0x0400
		m.chrBank[6] = (m.register[1] &^ 1) * 0x0400
		m.chrBank[7] = (m.register[1] | 1) * 0x0400
	} else {
		m.chrBank[0] = (m.register[0] &^ 1) * 0x0400
		m.chrBank[1] = (m.register[0] | 1) * 0x0400
		m.chrBank[2] = (m.register[1] &^ 1) * 0x0400
		m.chrBank[3] = (m.register[1] | 1) * 0x0400
		m.chrBank[4] = m.register[2] * 0x0400
		m.chrBank[5] = m.register[3] * 0x0400
		m.chrBank[6] = m.register[4] * 0x0400
		m.chrBank[7] = m.register[5] * 0x0400
	}
}

func (m *Mapper0004) Reset() {
	m.targetRegister = 0
	m.prgBankMode = false
	m.chrInversion = false
	m.mirrorMode = HARDWARE
	m.irqActive = false
	m.irqEnable = false
	m.irqCounter = 0
	m.irqReload = 0
	m.register = [8]uint32{}
	m.updateBanks()
}

func (m *Mapper0004) Mirror() MIRROR {
	return m.mirrorMode
}

func (m *Mapper0004) IRQState() bool {
	return m.irqActive
}

func (m *Mapper0004) IRQClear() {
	m.irqActive = false
}

func (m *Mapper0004) Scanline() {
	if m.irqCounter == 0 {
		m.irqCounter = m.irqReload
	} else {
		m.irqCounter--
	}
	if m.irqCounter == 0 && m.irqEnable {
		m.irqActive = true
	}
}
