package ppu

// Field names a bit range inside a hardware register: Index is the bit
// position of the least significant bit, Size the width in bits.
type Field struct {
	Index uint16
	Size  uint16
}

// Register is a hardware register with named bit fields, sized for both
// the PPU's 8-bit control registers and the 15-bit loopy address pair.
// Reg is the raw value; field access masks and shifts on demand.
type Register struct {
	fields map[string]Field
	Reg    uint16
}

func CreateRegister(fields map[string]Field) Register {
	return Register{fields: fields}
}

func (r *Register) mask(f Field) uint16 {
	return ((^(0xFFFF << f.Size)) & 0xFFFF) << f.Index
}

// GetField returns the current value of a named field, shifted down to
// bit 0. Unknown names are a programming defect and panic.
func (r *Register) GetField(key string) uint16 {
	field, ok := r.fields[key]
	if !ok {
		panic("ppu: register has no field " + key)
	}
	return (r.Reg & r.mask(field)) >> field.Index
}

// SetField stores value into a named field. Bits of value beyond the
// field width are discarded, matching what the silicon would latch.
func (r *Register) SetField(key string, value uint16) {
	field, ok := r.fields[key]
	if !ok {
		panic("ppu: register has no field " + key)
	}
	m := r.mask(field)
	r.Reg = (r.Reg &^ m) | ((value << field.Index) & m)
}

// SetReg replaces the whole raw register value.
func (r *Register) SetReg(value uint16) {
	r.Reg = value
}

func (r *Register) allAttributes() map[string]uint16 {
	out := make(map[string]uint16, len(r.fields))
	for k := range r.fields {
		out[k] = r.GetField(k)
	}
	return out
}
