package famicore

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResetLoadsVector(t *testing.T) {
	c := testConsole(t, func(prg []byte) {
		prg[0x3FFC] = 0x34
		prg[0x3FFD] = 0x92
	})

	assert.Equal(t, uint16(0x9234), c.cpu.pc)
	assert.Equal(t, uint8(0xFD), c.cpu.stkp)
	assert.Equal(t, uint8(1), c.cpu.getFlag(I))
}

func TestResetPreservesRAM(t *testing.T) {
	c := testConsole(t, nil)

	c.bus.cpuWrite(0x0100, 0x42)
	c.Reset()

	assert.Equal(t, uint8(0x42), c.bus.cpuRead(0x0100))
}

func TestStepRunsThreePPUDotsPerCPUCycle(t *testing.T) {
	c := testConsole(t, func(prg []byte) {
		copy(prg, []byte{0xEA, 0xEA}) // NOP, NOP
	})

	cycles := c.Step() // NOP: 2 cycles, 6 dots

	assert.Equal(t, uint64(2), cycles)
	assert.Equal(t, int16(6), c.ppu.cycle)
	assert.Equal(t, int16(0), c.ppu.scanline)
}

func TestStepChargesDMASuspension(t *testing.T) {
	c := testConsole(t, func(prg []byte) {
		copy(prg, []byte{0x8D, 0x14, 0x40}) // STA $4014
	})

	cycles := c.Step()

	// 4 for the store plus the transfer stall.
	assert.GreaterOrEqual(t, cycles, uint64(4+513))
}

func TestStepFrameCompletesAndRewinds(t *testing.T) {
	c := testConsole(t, func(prg []byte) {
		copy(prg, []byte{0x4C, 0x00, 0x80}) // JMP $8000
	})

	frame := c.StepFrame()

	require.NotNil(t, frame)
	assert.False(t, c.ppu.frameComplete)
	// The PPU sits just past the frame boundary.
	assert.Less(t, c.ppu.scanline, int16(2))
}

func TestStepFrameReturnsStableSnapshot(t *testing.T) {
	c := testConsole(t, func(prg []byte) {
		copy(prg, []byte{0x4C, 0x00, 0x80}) // JMP $8000
	})

	frame := c.StepFrame()
	want := frame[120][128]

	// Emulation continuing must not write through the handed-out frame.
	c.ppu.screen[120][128] = want + 1
	c.StepFrame()

	assert.Equal(t, want, frame[120][128])
}

func TestNMIHandlerRunsEachFrame(t *testing.T) {
	c := testConsole(t, func(prg []byte) {
		copy(prg, []byte{
			0xA9, 0x80, // LDA #$80
			0x8D, 0x00, 0x20, // STA $2000 (NMI on)
			0x4C, 0x05, 0x80, // JMP $8005
		})
		// Handler at $9000: INC $10, RTI
		prg[0x1000] = 0xE6
		prg[0x1001] = 0x10
		prg[0x1002] = 0x40
		prg[0x3FFA] = 0x00
		prg[0x3FFB] = 0x90
	})

	c.StepFrame()
	c.StepFrame()

	assert.GreaterOrEqual(t, c.bus.cpuRead(0x0010), uint8(1))
}

func TestMapperIRQReachesCPU(t *testing.T) {
	prg := make([]byte, 32*16384)
	copy(prg, []byte{0x4C, 0x00, 0x80}) // JMP $8000 in the first bank
	prg[len(prg)-4] = 0x00              // reset vector $8000
	prg[len(prg)-3] = 0x80
	prg[len(prg)-2] = 0x00 // IRQ vector $A000
	prg[len(prg)-1] = 0xA0

	rom := buildROM(romConfig{prgBanks: 32, chrBanks: 4, mapperID: 4}, prg)

	cart, err := LoadCartridge(bytes.NewReader(rom))
	require.NoError(t, err)
	c := NewConsole(cart)

	// Program the scanline counter for an immediate assert.
	c.bus.cpuWrite(0xC000, 0x00)
	c.bus.cpuWrite(0xC001, 0x00)
	c.bus.cpuWrite(0xE001, 0x00)
	c.cpu.setFlag(I, false)

	c.ppu.mask.SetField("render_background", 1)
	for i := 0; i < 200000 && c.cpu.pc != 0xA000; i++ {
		c.Step()
	}

	assert.Equal(t, uint16(0xA000), c.cpu.pc)
}

func TestProgramRoundTripsVideoMemory(t *testing.T) {
	c := testConsole(t, func(prg []byte) {
		copy(prg, []byte{
			0xA9, 0x21, // LDA #$21
			0x8D, 0x06, 0x20, // STA $2006
			0xA9, 0x08, // LDA #$08
			0x8D, 0x06, 0x20, // STA $2006
			0xA9, 0x5A, // LDA #$5A
			0x8D, 0x07, 0x20, // STA $2007
			0xA9, 0x21, // LDA #$21
			0x8D, 0x06, 0x20, // STA $2006
			0xA9, 0x08, // LDA #$08
			0x8D, 0x06, 0x20, // STA $2006
			0xAD, 0x07, 0x20, // LDA $2007 (primes the buffer)
			0xAD, 0x07, 0x20, // LDA $2007
			0x85, 0x30, // STA $30
			0x4C, 0x21, 0x80, // JMP $8021
		})
	})

	for i := 0; i < 200 && c.cpu.pc != 0x8021; i++ {
		c.Step()
	}

	assert.Equal(t, uint8(0x5A), c.bus.cpuRead(0x0030))
}

func TestIncrementLoopWrapsModulo256(t *testing.T) {
	c := testConsole(t, func(prg []byte) {
		copy(prg, []byte{
			0xE6, 0x00, // INC $00   <- loop
			0x4C, 0x00, 0x80, // JMP loop
		})
	})

	const iterations = 300
	for i := 0; i < iterations*2; i++ {
		c.cpu.Step()
	}

	assert.Equal(t, uint8(iterations%256), c.bus.cpuRead(0x0000))
}

func TestControllerInputVisibleToProgram(t *testing.T) {
	c := testConsole(t, func(prg []byte) {
		copy(prg, []byte{
			0xA9, 0x01, // LDA #$01
			0x8D, 0x16, 0x40, // STA $4016
			0xA9, 0x00, // LDA #$00
			0x8D, 0x16, 0x40, // STA $4016
			0xAD, 0x16, 0x40, // LDA $4016 (A button)
			0x29, 0x01, // AND #$01
			0x85, 0x20, // STA $20
			0x4C, 0x11, 0x80, // JMP $8011
		})
	})

	var buttons [8]bool
	buttons[ButtonA] = true
	c.SetButtons(0, buttons)

	for i := 0; i < 100 && c.cpu.pc != 0x8011; i++ {
		c.Step()
	}

	assert.Equal(t, uint8(0x01), c.bus.cpuRead(0x0020))
}
