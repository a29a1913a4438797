package famicore

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type romConfig struct {
	prgBanks uint8
	chrBanks uint8
	mapperID uint8
	flags6   uint8
	trainer  bool
}

// buildROM assembles an iNES image in memory. prg, when non-nil, is
// copied into the start of PRG data.
func buildROM(cfg romConfig, prg []byte) []byte {
	header := make([]byte, 16)
	copy(header, "NES\x1a")
	header[4] = cfg.prgBanks
	header[5] = cfg.chrBanks
	header[6] = cfg.flags6 | (cfg.mapperID&0x0F)<<4
	header[7] = cfg.mapperID & 0xF0

	rom := header
	if cfg.trainer {
		header[6] |= 0x04
		rom = append(rom, make([]byte, 512)...)
	}

	prgData := make([]byte, int(cfg.prgBanks)*16384)
	copy(prgData, prg)
	rom = append(rom, prgData...)
	rom = append(rom, make([]byte, int(cfg.chrBanks)*8192)...)
	return rom
}

// testCartridge loads a one-bank NROM image whose PRG data is produced
// by build. The reset vector is pre-wired to $8000.
func testCartridge(t *testing.T, build func(prg []byte)) *Cartridge {
	t.Helper()
	prg := make([]byte, 16384)
	prg[0x3FFC] = 0x00
	prg[0x3FFD] = 0x80
	if build != nil {
		build(prg)
	}
	cart, err := LoadCartridge(bytes.NewReader(buildROM(romConfig{prgBanks: 1}, prg)))
	require.NoError(t, err)
	return cart
}

// testConsole builds a running machine around a 16KiB program image.
func testConsole(t *testing.T, build func(prg []byte)) *Console {
	t.Helper()
	return NewConsole(testCartridge(t, build))
}

func TestLoadCartridgeRejectsBadMagic(t *testing.T) {
	rom := buildROM(romConfig{prgBanks: 1}, nil)
	copy(rom, "NOPE")

	_, err := LoadCartridge(bytes.NewReader(rom))
	assert.ErrorIs(t, err, ErrInvalidImage)
}

func TestLoadCartridgeRejectsZeroPrgBanks(t *testing.T) {
	rom := buildROM(romConfig{prgBanks: 0, chrBanks: 1}, nil)

	_, err := LoadCartridge(bytes.NewReader(rom))
	assert.ErrorIs(t, err, ErrInvalidImage)
}

func TestLoadCartridgeRejectsTruncatedImage(t *testing.T) {
	rom := buildROM(romConfig{prgBanks: 2, chrBanks: 1}, nil)

	_, err := LoadCartridge(bytes.NewReader(rom[:16+1000]))
	assert.ErrorIs(t, err, ErrTruncatedImage)

	_, err = LoadCartridge(bytes.NewReader(rom[:8]))
	assert.ErrorIs(t, err, ErrTruncatedImage)
}

func TestLoadCartridgeRejectsUnknownMapper(t *testing.T) {
	rom := buildROM(romConfig{prgBanks: 1, mapperID: 111}, nil)

	_, err := LoadCartridge(bytes.NewReader(rom))
	assert.ErrorIs(t, err, ErrUnsupportedMapper)
}

func TestLoadCartridgeSkipsTrainer(t *testing.T) {
	prg := make([]byte, 16384)
	prg[0] = 0xEA
	rom := buildROM(romConfig{prgBanks: 1, trainer: true}, prg)

	cart, err := LoadCartridge(bytes.NewReader(rom))
	require.NoError(t, err)

	var data uint8
	require.True(t, cart.cpuRead(0x8000, &data))
	assert.Equal(t, uint8(0xEA), data)
}

func TestLoadCartridgeMirrorWiring(t *testing.T) {
	vertical, err := LoadCartridge(bytes.NewReader(buildROM(romConfig{prgBanks: 1, flags6: 0x01}, nil)))
	require.NoError(t, err)
	assert.Equal(t, VERTICAL, vertical.Mirror())

	horizontal, err := LoadCartridge(bytes.NewReader(buildROM(romConfig{prgBanks: 1}, nil)))
	require.NoError(t, err)
	assert.Equal(t, HORIZONTAL, horizontal.Mirror())

	fourScreen, err := LoadCartridge(bytes.NewReader(buildROM(romConfig{prgBanks: 1, flags6: 0x08}, nil)))
	require.NoError(t, err)
	assert.Equal(t, FOURSCREEN, fourScreen.Mirror())
}

func TestSingleBankPrgMirrorsAcrossWindow(t *testing.T) {
	cart := testCartridge(t, func(prg []byte) {
		prg[0x0123] = 0x42
	})

	var lo, hi uint8
	require.True(t, cart.cpuRead(0x8123, &lo))
	require.True(t, cart.cpuRead(0xC123, &hi))
	assert.Equal(t, uint8(0x42), lo)
	assert.Equal(t, uint8(0x42), hi)
}

func TestPrgRomIgnoresWrites(t *testing.T) {
	cart := testCartridge(t, func(prg []byte) {
		prg[0x0000] = 0xEA
	})

	// Bus-conflict boards store into ROM addresses on purpose; the
	// write must be dropped, not land in program storage.
	assert.False(t, cart.cpuWrite(0x8000, 0x00))

	var data uint8
	require.True(t, cart.cpuRead(0x8000, &data))
	assert.Equal(t, uint8(0xEA), data)
}

func TestPrgRAMReadsBackWrites(t *testing.T) {
	cart := testCartridge(t, nil)

	require.True(t, cart.cpuWrite(0x6000, 0x5A))
	require.True(t, cart.cpuWrite(0x7FFF, 0xA5))

	var data uint8
	require.True(t, cart.cpuRead(0x6000, &data))
	assert.Equal(t, uint8(0x5A), data)
	require.True(t, cart.cpuRead(0x7FFF, &data))
	assert.Equal(t, uint8(0xA5), data)
}

func TestChrRAMIsWritableWhenNoChrBanks(t *testing.T) {
	cart := testCartridge(t, nil)

	require.True(t, cart.ppuWrite(0x1000, 0x77))
	var data uint8
	require.True(t, cart.ppuRead(0x1000, &data))
	assert.Equal(t, uint8(0x77), data)
}
