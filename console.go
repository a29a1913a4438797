package famicore

// Console owns one machine: CPU, PPU, bus, cartridge and input ports,
// clocked together at the hardware ratio of three PPU dots per CPU
// cycle.
type Console struct {
	cpu       *CPU
	ppu       *PPU
	bus       *Bus
	cartridge *Cartridge
}

func NewConsole(cartridge *Cartridge) *Console {
	c := &Console{
		cpu:       NewCPU(),
		ppu:       NewPPU(),
		bus:       NewBus(),
		cartridge: cartridge,
	}
	c.bus.cpu = c.cpu
	c.bus.ppu = c.ppu
	c.bus.connectCartridge(cartridge)
	c.ppu.connectCartridge(cartridge)
	c.cpu.connectBus(c.bus)
	c.Reset()
	return c
}

// SetAPU installs the sink that receives sound register writes.
func (c *Console) SetAPU(sink APUSink) {
	c.bus.apu = sink
}

// SetButtons latches the pad state for one of the two ports.
func (c *Console) SetButtons(port int, buttons [8]bool) {
	if port < 0 || port > 1 {
		return
	}
	c.bus.controllers[port].SetButtons(buttons)
}

// Step executes one CPU instruction and the PPU dots it spans,
// returning the CPU cycles consumed. An OAM DMA triggered by the
// instruction is charged here in full.
func (c *Console) Step() uint64 {
	cycles := uint64(c.cpu.Step())
	cycles += c.bus.takeDMAStall()

	for i := uint64(0); i < cycles*3; i++ {
		c.ppu.clock()

		// The scanline counter on MMC3 boards watches the PPU address
		// lines; dot 260 approximates the A12 rise it keys on.
		if c.ppu.cycle == 260 &&
			(c.ppu.scanline < 240 || c.ppu.scanline == ScanlinePrerender) &&
			c.ppu.renderingEnabled() {
			c.cartridge.mapper.Scanline()
		}
	}

	if c.ppu.nmi {
		c.ppu.nmi = false
		c.cpu.TriggerNMI()
	}
	c.cpu.SetIRQLine(c.cartridge.mapper.IRQState())

	return cycles
}

// StepFrame runs until the PPU finishes the current frame and returns
// a snapshot of the completed palette index framebuffer. The snapshot
// is the caller's; later emulation does not write through it.
func (c *Console) StepFrame() *[240][256]uint8 {
	for !c.ppu.frameComplete {
		c.Step()
	}
	c.ppu.frameComplete = false
	frame := c.ppu.screen
	return &frame
}

// Reset asserts the reset line: CPU restarts from the vector at $FFFC,
// PPU and mapper state return to power-on defaults. RAM is untouched,
// as on hardware.
func (c *Console) Reset() {
	c.cartridge.reset()
	c.ppu.reset()
	c.cpu.Reset()
	c.bus.dmaStall = 0
	c.bus.controllers[0].reset()
	c.bus.controllers[1].reset()
}
