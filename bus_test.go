package famicore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSystemRAMMirroredEvery2KiB(t *testing.T) {
	c := testConsole(t, nil)

	c.bus.cpuWrite(0x0002, 0xAB)

	assert.Equal(t, uint8(0xAB), c.bus.cpuRead(0x0002))
	assert.Equal(t, uint8(0xAB), c.bus.cpuRead(0x0802))
	assert.Equal(t, uint8(0xAB), c.bus.cpuRead(0x1002))
	assert.Equal(t, uint8(0xAB), c.bus.cpuRead(0x1802))

	c.bus.cpuWrite(0x1FFF, 0xCD)
	assert.Equal(t, uint8(0xCD), c.bus.cpuRead(0x07FF))
}

func TestUnmappedReadsReturnOpenBus(t *testing.T) {
	c := testConsole(t, nil)

	c.bus.cpuWrite(0x0000, 0x42)

	// $5000 is unmapped, $4015 is write-only.
	assert.Equal(t, uint8(0x42), c.bus.cpuRead(0x5000))
	assert.Equal(t, uint8(0x42), c.bus.cpuRead(0x4015))

	// A later read refreshes the latch.
	c.bus.cpuWrite(0x0010, 0x99)
	c.bus.cpuRead(0x0010)
	assert.Equal(t, uint8(0x99), c.bus.cpuRead(0x5000))
}

func TestOAMDMACopiesFullPage(t *testing.T) {
	c := testConsole(t, nil)

	for i := 0; i < 256; i++ {
		c.bus.cpuWrite(uint16(0x0200+i), uint8(i))
	}
	c.bus.cpuWrite(0x2003, 0x00) // OAMADDR = 0
	c.bus.cpuWrite(0x4014, 0x02)

	for i := 0; i < 256; i++ {
		require.Equal(t, uint8(i), c.ppu.oamRead(uint8(i)))
	}
	assert.Equal(t, uint8(0xFF), c.ppu.oam[63].x)
}

func TestOAMDMAStallParity(t *testing.T) {
	c := testConsole(t, nil)

	// Even cycle count when the write lands.
	c.cpu.totalCycles = 100
	c.bus.cpuWrite(0x4014, 0x02)
	assert.Equal(t, uint64(513), c.bus.takeDMAStall())

	c.cpu.totalCycles = 101
	c.bus.cpuWrite(0x4014, 0x02)
	assert.Equal(t, uint64(514), c.bus.takeDMAStall())

	// Drained stall does not linger.
	assert.Equal(t, uint64(0), c.bus.takeDMAStall())
}

func TestOAMDMARespectsOAMAddr(t *testing.T) {
	c := testConsole(t, nil)

	c.bus.cpuWrite(0x0200, 0x11)
	c.bus.cpuWrite(0x2003, 0x10) // transfer starts mid-table and wraps
	c.bus.cpuWrite(0x4014, 0x02)

	assert.Equal(t, uint8(0x11), c.ppu.oamRead(0x10))
}

func TestControllerStrobeAndShift(t *testing.T) {
	c := testConsole(t, nil)

	var buttons [8]bool
	buttons[ButtonA] = true
	buttons[ButtonStart] = true
	c.SetButtons(0, buttons)

	c.bus.cpuWrite(0x4016, 0x01)
	// While strobe is high every read reports A.
	assert.Equal(t, uint8(0x01), c.bus.cpuRead(0x4016)&0x01)
	assert.Equal(t, uint8(0x01), c.bus.cpuRead(0x4016)&0x01)

	c.bus.cpuWrite(0x4016, 0x00)
	want := []uint8{1, 0, 0, 1, 0, 0, 0, 0} // A, B, Select, Start, U, D, L, R
	for i, bit := range want {
		require.Equal(t, bit, c.bus.cpuRead(0x4016)&0x01, "read %d", i)
	}
	// Reads past the eighth report pressed.
	assert.Equal(t, uint8(0x01), c.bus.cpuRead(0x4016)&0x01)
}

func TestSecondControllerPortIsIndependent(t *testing.T) {
	c := testConsole(t, nil)

	var buttons [8]bool
	buttons[ButtonB] = true
	c.SetButtons(1, buttons)

	c.bus.cpuWrite(0x4016, 0x01)
	c.bus.cpuWrite(0x4016, 0x00)

	assert.Equal(t, uint8(0x00), c.bus.cpuRead(0x4017)&0x01) // A
	assert.Equal(t, uint8(0x01), c.bus.cpuRead(0x4017)&0x01) // B
	assert.Equal(t, uint8(0x00), c.bus.cpuRead(0x4016)&0x01) // port 0 A
}

func TestAPURegisterWritesAreForwardedWithCycleTags(t *testing.T) {
	c := testConsole(t, nil)
	logSink := NewRegisterLog()
	c.SetAPU(logSink)

	c.cpu.totalCycles = 1234
	c.bus.cpuWrite(0x4000, 0x3F)
	c.bus.cpuWrite(0x4017, 0x40)
	c.bus.cpuWrite(0x4016, 0x01) // controller strobe, not APU
	c.bus.cpuWrite(0x4014, 0x02) // DMA, not APU

	writes := logSink.Drain()
	require.Len(t, writes, 2)
	assert.Equal(t, RegisterWrite{Cycle: 1234, Addr: 0x4000, Data: 0x3F}, writes[0])
	assert.Equal(t, RegisterWrite{Cycle: 1234, Addr: 0x4017, Data: 0x40}, writes[1])

	assert.Empty(t, logSink.Drain())
}

func TestAPUSinkAbsentDropsWrites(t *testing.T) {
	c := testConsole(t, nil)

	// No sink installed; must not panic.
	c.bus.cpuWrite(0x4000, 0x3F)
	assert.Equal(t, uint8(0x3F), c.bus.cpuRead(0x5000))
}
