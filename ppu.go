package famicore

import (
	"famicore/ppu"
)

func CreateStatusRegister() ppu.Register {
	return ppu.CreateRegister(map[string]ppu.Field{
		"unused":          {Index: 0, Size: 5},
		"sprite_overflow": {Index: 5, Size: 1},
		"sprite_zero_hit": {Index: 6, Size: 1},
		"vertical_blank":  {Index: 7, Size: 1},
	})
}

func CreateMaskRegister() ppu.Register {
	return ppu.CreateRegister(map[string]ppu.Field{
		"grayscale":              {Index: 0, Size: 1},
		"render_background_left": {Index: 1, Size: 1},
		"render_sprites_left":    {Index: 2, Size: 1},
		"render_background":      {Index: 3, Size: 1},
		"render_sprites":         {Index: 4, Size: 1},
		"enhance_red":            {Index: 5, Size: 1},
		"enhance_green":          {Index: 6, Size: 1},
		"enhance_blue":           {Index: 7, Size: 1},
	})
}

func CreateControlRegister() ppu.Register {
	return ppu.CreateRegister(map[string]ppu.Field{
		"nametable_x":        {Index: 0, Size: 1},
		"nametable_y":        {Index: 1, Size: 1},
		"increment_mode":     {Index: 2, Size: 1},
		"pattern_sprite":     {Index: 3, Size: 1},
		"pattern_background": {Index: 4, Size: 1},
		"sprite_size":        {Index: 5, Size: 1},
		"slave_mode":         {Index: 6, Size: 1},
		"enable_nmi":         {Index: 7, Size: 1},
	})
}

func CreateLoopyRegister() ppu.Register {
	return ppu.CreateRegister(map[string]ppu.Field{
		"coarse_x":    {Index: 0, Size: 5},
		"coarse_y":    {Index: 5, Size: 5},
		"nametable_x": {Index: 10, Size: 1},
		"nametable_y": {Index: 11, Size: 1},
		"fine_y":      {Index: 12, Size: 3},
		"unused":      {Index: 15, Size: 1},
	})
}

type ObjectAttributeEntry struct {
	y         uint8
	id        uint8
	attribute uint8
	x         uint8
}

// ScanlinePrerender is the last scanline of the frame, where vblank is
// cleared and the vertical scroll bits are reloaded.
const ScanlinePrerender = 261

// PPU is the picture unit. It produces one palette index per dot into
// screen; translating indices to RGB is left to the front end.
type PPU struct {
	screen [240][256]uint8

	tableName    [4][1024]uint8
	tablePattern [2][4096]uint8
	tablePalette [32]uint8

	status  ppu.Register
	mask    ppu.Register
	control ppu.Register

	vramAddr ppu.Register
	tramAddr ppu.Register
	fineX    uint8

	addressLatch  uint8
	ppuDataBuffer uint8

	scanline      int16
	cycle         int16
	oddFrame      bool
	frameComplete bool

	bgNextTileId       uint8
	bgNextTileAttrib   uint8
	bgNextTileLsb      uint8
	bgNextTileMsb      uint8
	bgShifterPatternLo uint16
	bgShifterPatternHi uint16
	bgShifterAttribLo  uint16
	bgShifterAttribHi  uint16

	cartridge *Cartridge
	nmi       bool
	oam       [64]ObjectAttributeEntry
	oamAddr   uint8

	spriteScanline         [8]ObjectAttributeEntry
	spriteCount            uint8
	spriteShifterPatternLo [8]uint8
	spriteShifterPatternHi [8]uint8

	spriteZeroHitPossible   bool
	spriteZeroBeingRendered bool
}

func NewPPU() *PPU {
	return &PPU{
		control:  CreateControlRegister(),
		mask:     CreateMaskRegister(),
		status:   CreateStatusRegister(),
		vramAddr: CreateLoopyRegister(),
		tramAddr: CreateLoopyRegister(),
	}
}

func (p *PPU) connectCartridge(cartridge *Cartridge) {
	p.cartridge = cartridge
}

func (p *PPU) renderingEnabled() bool {
	return p.mask.GetField("render_background") != 0 || p.mask.GetField("render_sprites") != 0
}

// oamRead treats object memory as the flat 256 byte array the OAMADDR
// port addresses.
func (p *PPU) oamRead(index uint8) uint8 {
	entry := &p.oam[index>>2]
	switch index & 0x03 {
	case 0:
		return entry.y
	case 1:
		return entry.id
	case 2:
		return entry.attribute
	}
	return entry.x
}

func (p *PPU) oamWrite(index uint8, data uint8) {
	entry := &p.oam[index>>2]
	switch index & 0x03 {
	case 0:
		entry.y = data
	case 1:
		entry.id = data
	case 2:
		entry.attribute = data
	case 3:
		entry.x = data
	}
}

// writeOAM stores through the current OAM address and advances it. DMA
// uses this for all 256 bytes of a transfer.
func (p *PPU) writeOAM(data uint8) {
	p.oamWrite(p.oamAddr, data)
	p.oamAddr++
}

// cpuRead services the register window at $2000-$2007. Write-only
// registers return openBus, the byte currently floating on the CPU bus.
func (p *PPU) cpuRead(addr uint16, openBus uint8) uint8 {
	data := openBus

	switch addr {
	case 0x0002:
		data = (uint8(p.status.Reg) & 0xE0) | (p.ppuDataBuffer & 0x1F)
		p.status.SetField("vertical_blank", 0)
		p.addressLatch = 0
	case 0x0004:
		data = p.oamRead(p.oamAddr)
	case 0x0007:
		data = p.ppuDataBuffer
		p.ppuDataBuffer = p.ppuRead(p.vramAddr.Reg)

		// Palette reads bypass the buffer.
		if p.vramAddr.Reg >= 0x3F00 {
			data = p.ppuDataBuffer
		}

		if p.control.GetField("increment_mode") != 0 {
			p.vramAddr.Reg += 32
		} else {
			p.vramAddr.Reg += 1
		}
	}
	return data
}

func (p *PPU) cpuWrite(addr uint16, data uint8) {
	switch addr {
	case 0x0000:
		p.control.Reg = uint16(data)
		p.tramAddr.SetField("nametable_x", p.control.GetField("nametable_x"))
		p.tramAddr.SetField("nametable_y", p.control.GetField("nametable_y"))
	case 0x0001:
		p.mask.Reg = uint16(data)
	case 0x0003:
		p.oamAddr = data
	case 0x0004:
		p.writeOAM(data)
	case 0x0005:
		if p.addressLatch == 0 {
			p.fineX = data & 0x07
			p.tramAddr.SetField("coarse_x", uint16(data)>>3)
			p.addressLatch = 1
		} else {
			p.tramAddr.SetField("fine_y", uint16(data)&0x07)
			p.tramAddr.SetField("coarse_y", uint16(data)>>3)
			p.addressLatch = 0
		}
	case 0x0006:
		if p.addressLatch == 0 {
			p.tramAddr.Reg = ((uint16(data) & 0x3F) << 8) | (p.tramAddr.Reg & 0x00FF)
			p.addressLatch = 1
		} else {
			p.tramAddr.Reg = (p.tramAddr.Reg & 0xFF00) | uint16(data)
			p.vramAddr.Reg = p.tramAddr.Reg
			p.addressLatch = 0
		}
	case 0x0007:
		p.ppuWrite(p.vramAddr.Reg, data)
		increment := uint16(1)
		if p.control.GetField("increment_mode") != 0 {
			increment = 32
		}
		p.vramAddr.Reg += increment
	}
}

// nameTableIndex resolves a $2000-$2FFF address to one of the four
// logical nametables under the cartridge's mirroring wiring.
func (p *PPU) nameTableIndex(addr uint16) uint16 {
	switch p.cartridge.Mirror() {
	case VERTICAL:
		return (addr >> 10) & 0x01
	case HORIZONTAL:
		return (addr >> 11) & 0x01
	case ONESCREEN_LO:
		return 0
	case ONESCREEN_HI:
		return 1
	case FOURSCREEN:
		return (addr >> 10) & 0x03
	}
	return (addr >> 10) & 0x01
}

func paletteIndex(addr uint16) uint16 {
	addr &= 0x001F
	switch addr {
	case 0x0010:
		return 0x0000
	case 0x0014:
		return 0x0004
	case 0x0018:
		return 0x0008
	case 0x001C:
		return 0x000C
	}
	return addr
}

func (p *PPU) ppuRead(addr uint16) uint8 {
	var data uint8
	addr &= 0x3FFF
	if p.cartridge.ppuRead(addr, &data) {
		return data
	}

	if addr <= 0x1FFF {
		return p.tablePattern[(addr&0x1000)>>12][addr&0x0FFF]
	}

	if addr <= 0x3EFF {
		return p.tableName[p.nameTableIndex(addr&0x0FFF)][addr&0x03FF]
	}

	mask := uint8(0x3F)
	if p.mask.GetField("grayscale") != 0 {
		mask = 0x30
	}
	return p.tablePalette[paletteIndex(addr)] & mask
}

func (p *PPU) ppuWrite(addr uint16, data uint8) {
	addr &= 0x3FFF
	if p.cartridge.ppuWrite(addr, data) {
		return
	}

	if addr <= 0x1FFF {
		p.tablePattern[(addr&0x1000)>>12][addr&0x0FFF] = data
		return
	}

	if addr <= 0x3EFF {
		p.tableName[p.nameTableIndex(addr&0x0FFF)][addr&0x03FF] = data
		return
	}

	p.tablePalette[paletteIndex(addr)] = data
}

// paletteColour resolves a palette/pixel pair to a six bit colour index.
func (p *PPU) paletteColour(palette uint8, pixel uint8) uint8 {
	return p.ppuRead(0x3F00+(uint16(palette)<<2)+uint16(pixel)) & 0x3F
}

func (p *PPU) IncrementScrollX() {
	if p.renderingEnabled() {
		if p.vramAddr.GetField("coarse_x") == 31 {
			p.vramAddr.SetField("coarse_x", 0)
			invertedNameTableX := ^(p.vramAddr.GetField("nametable_x"))
			p.vramAddr.SetField("nametable_x", invertedNameTableX)
			return
		}
		p.vramAddr.SetField("coarse_x", p.vramAddr.GetField("coarse_x")+1)
	}
}

func (p *PPU) IncrementScrollY() {
	if p.renderingEnabled() {
		if p.vramAddr.GetField("fine_y") < 7 {
			p.vramAddr.SetField("fine_y", p.vramAddr.GetField("fine_y")+1)
		} else {
			p.vramAddr.SetField("fine_y", 0)

			if p.vramAddr.GetField("coarse_y") == 29 {
				p.vramAddr.SetField("coarse_y", 0)
				invertedNameTableY := ^(p.vramAddr.GetField("nametable_y"))
				p.vramAddr.SetField("nametable_y", invertedNameTableY)
			} else if p.vramAddr.GetField("coarse_y") == 31 {
				// Pointer was in attribute memory, wrap inside the
				// current nametable.
				p.vramAddr.SetField("coarse_y", 0)
			} else {
				p.vramAddr.SetField("coarse_y", p.vramAddr.GetField("coarse_y")+1)
			}
		}
	}
}

func (p *PPU) TransferAddressX() {
	if p.renderingEnabled() {
		p.vramAddr.SetField("nametable_x", p.tramAddr.GetField("nametable_x"))
		p.vramAddr.SetField("coarse_x", p.tramAddr.GetField("coarse_x"))
	}
}

func (p *PPU) TransferAddressY() {
	if p.renderingEnabled() {
		p.vramAddr.SetField("fine_y", p.tramAddr.GetField("fine_y"))
		p.vramAddr.SetField("nametable_y", p.tramAddr.GetField("nametable_y"))
		p.vramAddr.SetField("coarse_y", p.tramAddr.GetField("coarse_y"))
	}
}

func (p *PPU) LoadBackgroundShifters() {
	p.bgShifterPatternLo = (p.bgShifterPatternLo & 0xFF00) | uint16(p.bgNextTileLsb)
	p.bgShifterPatternHi = (p.bgShifterPatternHi & 0xFF00) | uint16(p.bgNextTileMsb)

	acc := uint16(0x00)
	if p.bgNextTileAttrib&0b01 != 0 {
		acc = 0xFF
	}
	p.bgShifterAttribLo = (p.bgShifterAttribLo & 0xFF00) | acc
	acc = 0x00
	if p.bgNextTileAttrib&0b10 != 0 {
		acc = 0xFF
	}
	p.bgShifterAttribHi = (p.bgShifterAttribHi & 0xFF00) | acc
}

func (p *PPU) UpdateShifters() {
	if p.mask.GetField("render_background") != 0 {
		p.bgShifterPatternLo <<= 1
		p.bgShifterPatternHi <<= 1
		p.bgShifterAttribLo <<= 1
		p.bgShifterAttribHi <<= 1
	}

	if p.mask.GetField("render_sprites") != 0 && p.cycle >= 1 && p.cycle < 258 {
		for i := uint8(0); i < p.spriteCount; i++ {
			if p.spriteScanline[i].x > 0 {
				p.spriteScanline[i].x--
			} else {
				p.spriteShifterPatternLo[i] <<= 1
				p.spriteShifterPatternHi[i] <<= 1
			}
		}
	}
}

// evaluateSprites scans object memory for sprites intersecting the next
// scanline, keeping the first eight. Once the secondary buffer fills,
// the remaining scan misaligns its byte offset each step, so the
// overflow flag compares arbitrary attribute bytes against the
// scanline. Software relying on the flag relies on exactly this.
func (p *PPU) evaluateSprites() {
	for i := range p.spriteScanline {
		p.spriteScanline[i] = ObjectAttributeEntry{0xFF, 0xFF, 0xFF, 0xFF}
	}
	p.spriteCount = 0
	for i := 0; i < 8; i++ {
		p.spriteShifterPatternLo[i] = 0
		p.spriteShifterPatternHi[i] = 0
	}

	spriteSize := int16(8)
	if p.control.GetField("sprite_size") != 0 {
		spriteSize = 16
	}

	p.spriteZeroHitPossible = false
	oamEntry := uint8(0)
	for oamEntry < 64 && p.spriteCount < 8 {
		diff := p.scanline - int16(p.oam[oamEntry].y)
		if diff >= 0 && diff < spriteSize {
			if oamEntry == 0 {
				p.spriteZeroHitPossible = true
			}
			p.spriteScanline[p.spriteCount] = p.oam[oamEntry]
			p.spriteCount++
		}
		oamEntry++
	}

	// The flag is sticky: once set it stays up until the prerender
	// line clears it, regardless of later sparse scanlines.
	if p.spriteCount < 8 {
		return
	}

	// Buggy continuation: the byte offset advances with the entry.
	m := uint8(0)
	for oamEntry < 64 {
		value := p.oamRead(oamEntry*4 + m)
		diff := p.scanline - int16(value)
		if diff >= 0 && diff < spriteSize {
			p.status.SetField("sprite_overflow", 1)
			return
		}
		oamEntry++
		m = (m + 1) & 0x03
	}
}

// fetchSprites loads the pattern shifters for the sprites selected by
// evaluateSprites, applying vertical and horizontal flips.
func (p *PPU) fetchSprites() {
	for i := uint8(0); i < p.spriteCount; i++ {
		var spritePatternAddressLo uint16
		row := uint16(p.scanline) - uint16(p.spriteScanline[i].y)
		flippedV := p.spriteScanline[i].attribute&0x80 != 0

		if p.control.GetField("sprite_size") == 0 {
			// 8x8, pattern table from the control register.
			if flippedV {
				row = 7 - row
			}
			spritePatternAddressLo =
				(p.control.GetField("pattern_sprite") << 12) |
					(uint16(p.spriteScanline[i].id) << 4) |
					row
		} else {
			// 8x16, pattern table from bit 0 of the tile id.
			tile := uint16(p.spriteScanline[i].id & 0xFE)
			if flippedV {
				row = 15 - row
			}
			if row >= 8 {
				tile++
			}
			spritePatternAddressLo =
				(uint16(p.spriteScanline[i].id&0x01) << 12) |
					(tile << 4) |
					(row & 0x07)
		}

		spritePatternBitsLo := p.ppuRead(spritePatternAddressLo)
		spritePatternBitsHi := p.ppuRead(spritePatternAddressLo + 8)

		if p.spriteScanline[i].attribute&0x40 != 0 {
			spritePatternBitsLo = flipByte(spritePatternBitsLo)
			spritePatternBitsHi = flipByte(spritePatternBitsHi)
		}
		p.spriteShifterPatternLo[i] = spritePatternBitsLo
		p.spriteShifterPatternHi[i] = spritePatternBitsHi
	}
}

func flipByte(b uint8) uint8 {
	b = ((b & 0xF0) >> 4) | ((b & 0x0F) << 4)
	b = ((b & 0xCC) >> 2) | ((b & 0x33) << 2)
	b = ((b & 0xAA) >> 1) | ((b & 0x55) << 1)
	return b
}

func (p *PPU) clock() {
	if p.scanline < 240 || p.scanline == ScanlinePrerender {
		// Odd frames skip the idle dot at the top left corner when
		// rendering is on.
		if p.scanline == 0 && p.cycle == 0 && p.oddFrame && p.renderingEnabled() {
			p.cycle = 1
		}

		if p.scanline == ScanlinePrerender && p.cycle == 1 {
			p.status.SetField("vertical_blank", 0)
			p.status.SetField("sprite_zero_hit", 0)
			p.status.SetField("sprite_overflow", 0)
			for i := 0; i < 8; i++ {
				p.spriteShifterPatternLo[i] = 0
				p.spriteShifterPatternHi[i] = 0
			}
		}

		if (p.cycle >= 2 && p.cycle < 258) || (p.cycle >= 321 && p.cycle < 338) {
			p.UpdateShifters()
			switch (p.cycle - 1) % 8 {
			case 0:
				p.LoadBackgroundShifters()
				p.bgNextTileId = p.ppuRead(0x2000 | (p.vramAddr.Reg & 0x0FFF))
			case 2:
				p.bgNextTileAttrib = p.ppuRead(0x23C0 | (p.vramAddr.GetField("nametable_y") << 11) | (p.vramAddr.GetField("nametable_x") << 10) | ((p.vramAddr.GetField("coarse_y") >> 2) << 3) | (p.vramAddr.GetField("coarse_x") >> 2))
				if p.vramAddr.GetField("coarse_y")&0x02 != 0 {
					p.bgNextTileAttrib >>= 4
				}
				if p.vramAddr.GetField("coarse_x")&0x02 != 0 {
					p.bgNextTileAttrib >>= 2
				}
				p.bgNextTileAttrib &= 0x03
			case 4:
				p.bgNextTileLsb = p.ppuRead((p.control.GetField("pattern_background") << 12) + (uint16(p.bgNextTileId) << 4) + p.vramAddr.GetField("fine_y"))
			case 6:
				p.bgNextTileMsb = p.ppuRead((p.control.GetField("pattern_background") << 12) + (uint16(p.bgNextTileId) << 4) + p.vramAddr.GetField("fine_y") + 8)
			case 7:
				p.IncrementScrollX()
			}
		}
		if p.cycle == 256 {
			p.IncrementScrollY()
		}
		if p.cycle == 257 {
			p.LoadBackgroundShifters()
			p.TransferAddressX()
		}
		if p.cycle == 338 || p.cycle == 340 {
			p.bgNextTileId = p.ppuRead(0x2000 | (p.vramAddr.Reg & 0x0FFF))
		}
		if p.scanline == ScanlinePrerender && p.cycle >= 280 && p.cycle < 305 {
			p.TransferAddressY()
		}

		if p.cycle == 257 && p.scanline < 240 {
			p.evaluateSprites()
		}
		if p.cycle == 340 {
			p.fetchSprites()
		}
	}

	if p.scanline == 241 && p.cycle == 1 {
		p.status.SetField("vertical_blank", 1)
		if p.control.GetField("enable_nmi") != 0 {
			p.nmi = true
		}
	}

	bgPixel := uint8(0)
	bgPalette := uint8(0)
	if p.mask.GetField("render_background") != 0 {
		bitMux := uint16(0x8000 >> p.fineX)
		p0Pixel := uint8(0)
		if p.bgShifterPatternLo&bitMux > 0 {
			p0Pixel = 1
		}
		p1Pixel := uint8(0)
		if p.bgShifterPatternHi&bitMux > 0 {
			p1Pixel = 1
		}
		bgPixel = (p1Pixel << 1) | p0Pixel

		bgPal0 := uint8(0)
		if p.bgShifterAttribLo&bitMux > 0 {
			bgPal0 = 1
		}
		bgPal1 := uint8(0)
		if p.bgShifterAttribHi&bitMux > 0 {
			bgPal1 = 1
		}
		bgPalette = (bgPal1 << 1) | bgPal0
	}

	fgPixel := uint8(0)
	fgPalette := uint8(0)
	fgPriority := uint8(0)
	if p.mask.GetField("render_sprites") != 0 {
		p.spriteZeroBeingRendered = false
		for i := uint8(0); i < p.spriteCount; i++ {
			if p.spriteScanline[i].x == 0 {
				fgPixelLo := uint8(0)
				if p.spriteShifterPatternLo[i]&0x80 > 0 {
					fgPixelLo = 1
				}
				fgPixelHi := uint8(0)
				if p.spriteShifterPatternHi[i]&0x80 > 0 {
					fgPixelHi = 1
				}
				fgPixel = (fgPixelHi << 1) | fgPixelLo

				fgPalette = (p.spriteScanline[i].attribute & 0x03) + 0x04
				fgPriority = 0
				if (p.spriteScanline[i].attribute & 0x20) == 0 {
					fgPriority = 1
				}

				// First opaque sprite pixel wins.
				if fgPixel != 0 {
					if i == 0 {
						p.spriteZeroBeingRendered = true
					}
					break
				}
			}
		}
	}

	pixel := uint8(0)
	palette := uint8(0)
	if bgPixel == 0 && fgPixel > 0 {
		pixel = fgPixel
		palette = fgPalette
	} else if bgPixel > 0 && fgPixel == 0 {
		pixel = bgPixel
		palette = bgPalette
	} else if bgPixel > 0 && fgPixel > 0 {
		if fgPriority != 0 {
			pixel = fgPixel
			palette = fgPalette
		} else {
			pixel = bgPixel
			palette = bgPalette
		}

		if p.spriteZeroHitPossible && p.spriteZeroBeingRendered {
			if p.mask.GetField("render_background") != 0 && p.mask.GetField("render_sprites") != 0 {
				if p.mask.GetField("render_background_left") == 0 || p.mask.GetField("render_sprites_left") == 0 {
					if p.cycle >= 9 && p.cycle < 258 {
						p.status.SetField("sprite_zero_hit", 1)
					}
				} else {
					if p.cycle >= 1 && p.cycle < 258 {
						p.status.SetField("sprite_zero_hit", 1)
					}
				}
			}
		}
	}

	if p.scanline >= 0 && p.scanline < 240 && p.cycle >= 1 && p.cycle <= 256 {
		p.screen[p.scanline][p.cycle-1] = p.paletteColour(palette, pixel)
	}

	p.cycle++
	if p.cycle >= 341 {
		p.cycle = 0
		p.scanline++
		if p.scanline > ScanlinePrerender {
			p.scanline = 0
			p.frameComplete = true
			p.oddFrame = !p.oddFrame
		}
	}
}

func (p *PPU) reset() {
	p.fineX = 0
	p.addressLatch = 0
	p.ppuDataBuffer = 0
	p.scanline = 0
	p.cycle = 0
	p.oddFrame = false
	p.bgNextTileId = 0
	p.bgNextTileAttrib = 0
	p.bgNextTileLsb = 0
	p.bgNextTileMsb = 0
	p.bgShifterPatternLo = 0x0000
	p.bgShifterPatternHi = 0x0000
	p.bgShifterAttribLo = 0x0000
	p.bgShifterAttribHi = 0x0000
	p.status.Reg = 0x00
	p.mask.Reg = 0x00
	p.control.Reg = 0x00
	p.vramAddr.Reg = 0x0000
	p.tramAddr.Reg = 0x0000
}
