package ppu

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test8BitsRegister(t *testing.T) {
	r := CreateRegister(map[string]Field{
		"sprite_overflow": {0, 1},
		"unused":          {1, 5},
		"sprite_zero_hit": {6, 1},
		"vertical_blank":  {7, 1},
	})

	assert.Equal(t, uint16(0), r.Reg)
	r.SetField("vertical_blank", 1)
	assert.Equal(t, map[string]uint16{
		"sprite_overflow": 0,
		"unused":          0,
		"sprite_zero_hit": 0,
		"vertical_blank":  1,
	}, r.allAttributes())
	assert.Equal(t, uint16(0b10000000), r.Reg)

	r.SetField("unused", 31)
	assert.Equal(t, uint16(0b10111110), r.Reg)

	r.SetField("sprite_overflow", 1)
	assert.Equal(t, uint16(0b10111111), r.Reg)

	r.SetField("unused", 2)
	assert.Equal(t, map[string]uint16{
		"sprite_overflow": 1,
		"unused":          2,
		"sprite_zero_hit": 0,
		"vertical_blank":  1,
	}, r.allAttributes())
	assert.Equal(t, uint16(0b10000101), r.Reg)
}

func Test16BitsRegister(t *testing.T) {
	r := CreateRegister(map[string]Field{
		"coarse_x":    {0, 5},
		"coarse_y":    {5, 5},
		"nametable_x": {10, 1},
		"nametable_y": {11, 1},
		"fine_y":      {12, 3},
		"unused":      {15, 1},
	})

	r.SetField("coarse_x", 31)
	assert.Equal(t, uint16(0b0000000000011111), r.Reg)

	r.SetField("coarse_y", 31)
	assert.Equal(t, uint16(0b0000001111111111), r.Reg)

	r.SetField("fine_y", 5)
	assert.Equal(t, uint16(0b0101001111111111), r.Reg)

	r.SetField("coarse_y", 9)
	assert.Equal(t, uint16(0b0101000100111111), r.Reg)

	// Width overflow is discarded, not carried into neighbouring fields.
	r.SetField("coarse_y", 32)
	assert.Equal(t, uint16(0b0101000000011111), r.Reg)
	assert.Equal(t, uint16(0), r.GetField("coarse_y"))
}

func TestSetRegRoundTrip(t *testing.T) {
	r := CreateRegister(map[string]Field{
		"lo": {0, 8},
		"hi": {8, 8},
	})
	r.SetReg(0xBEEF)
	assert.Equal(t, uint16(0xEF), r.GetField("lo"))
	assert.Equal(t, uint16(0xBE), r.GetField("hi"))
}

func TestUnknownFieldPanics(t *testing.T) {
	r := CreateRegister(map[string]Field{"only": {0, 1}})
	assert.Panics(t, func() { r.GetField("missing") })
	assert.Panics(t, func() { r.SetField("missing", 1) })
}
