package famicore

// Bus wires the CPU to system RAM, the PPU registers, the cartridge and
// the input ports. It also models the data bus latch: reads from
// unmapped or write-only locations return the last value that crossed
// the bus instead of zero.
type Bus struct {
	cpu       *CPU
	ppu       *PPU
	cartridge *Cartridge
	apu       APUSink

	cpuRAM      [2048]uint8
	controllers [2]*Controller

	// openBus holds the last byte driven onto the data bus.
	openBus uint8

	// dmaStall accumulates CPU cycles consumed by an OAM DMA transfer,
	// collected by the console after each instruction step.
	dmaStall uint64
}

func NewBus() *Bus {
	b := &Bus{}
	b.controllers[0] = NewController()
	b.controllers[1] = NewController()
	return b
}

func (b *Bus) connectCartridge(cartridge *Cartridge) {
	b.cartridge = cartridge
}

func (b *Bus) cpuRead(addr uint16) uint8 {
	var data uint8

	if b.cartridge.cpuRead(addr, &data) {
		// Cartridge drove the bus.
	} else if addr <= 0x1FFF {
		data = b.cpuRAM[addr&0x07FF]
	} else if addr <= 0x3FFF {
		data = b.ppu.cpuRead(addr&0x0007, b.openBus)
	} else if addr == 0x4016 || addr == 0x4017 {
		// Only the low shift bit is driven; the rest floats.
		data = (b.openBus & 0xE0) | b.controllers[addr&0x0001].Read()
	} else {
		// Unmapped and write-only ($4000-$4015) locations.
		data = b.openBus
	}

	b.openBus = data
	return data
}

func (b *Bus) cpuWrite(addr uint16, data uint8) {
	b.openBus = data

	if b.cartridge.cpuWrite(addr, data) {
		return
	}
	if addr <= 0x1FFF {
		b.cpuRAM[addr&0x07FF] = data
	} else if addr <= 0x3FFF {
		b.ppu.cpuWrite(addr&0x0007, data)
	} else if addr == 0x4014 {
		b.oamDMA(data)
	} else if addr == 0x4016 {
		b.controllers[0].Write(data)
		b.controllers[1].Write(data)
	} else if addr <= 0x4017 {
		if b.apu != nil {
			b.apu.PushRegisterWrite(RegisterWrite{
				Cycle: b.cpu.TotalCycles(),
				Addr:  addr,
				Data:  data,
			})
		}
	}
}

// oamDMA copies a 256 byte page into PPU object memory through the
// current OAM address. The CPU is suspended for 513 cycles, or 514 when
// the write lands on an odd cycle.
func (b *Bus) oamDMA(page uint8) {
	base := uint16(page) << 8
	for i := uint16(0); i < 256; i++ {
		b.ppu.writeOAM(b.cpuRead(base + i))
	}

	if b.cpu.TotalCycles()%2 == 0 {
		b.dmaStall += 513
	} else {
		b.dmaStall += 514
	}
}

// takeDMAStall returns and clears the pending DMA suspension cycles.
func (b *Bus) takeDMAStall() uint64 {
	stall := b.dmaStall
	b.dmaStall = 0
	return stall
}
