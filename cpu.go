package famicore

import (
	_ "embed"
	"encoding/json"
)

// Instruction is one row of the decode table: operation name, addressing
// mode name and base cycle cost. Page-crossing and branch penalties are
// added at execution time.
type Instruction struct {
	Name     string `json:"name"`
	AddrMode string `json:"addr_mode"`
	Cycles   uint8  `json:"cycles"`
}

//go:embed lookup.json
var lookupJSON []byte

// CPU is the 2A03's 6502 core. The decimal flag exists but arithmetic
// is always binary on this part. A KIL opcode sets halted and only an
// external reset clears it.
type CPU struct {
	accumulator uint8
	xRegister   uint8
	yRegister   uint8
	stkp        uint8
	pc          uint16
	status      uint8

	fetched uint8
	addrAbs uint16
	addrRel uint16
	opcode  uint8
	cycles  uint8
	halted  bool

	nmiPending bool
	irqLine    bool

	totalCycles uint64

	bus    *Bus
	lookup []Instruction
}

type CPUFlag uint8

const (
	C = CPUFlag(1 << 0)
	Z = CPUFlag(1 << 1)
	I = CPUFlag(1 << 2)
	D = CPUFlag(1 << 3)
	B = CPUFlag(1 << 4)
	U = CPUFlag(1 << 5)
	V = CPUFlag(1 << 6)
	N = CPUFlag(1 << 7)
)

var AddressModes = map[string]func(*CPU) uint8{
	"IMP": IMP,
	"IMM": IMM,
	"ZP0": ZP0,
	"ZPX": ZPX,
	"ZPY": ZPY,
	"REL": REL,
	"ABS": ABS,
	"ABX": ABX,
	"ABY": ABY,
	"IND": IND,
	"IZX": IZX,
	"IZY": IZY,
}

func IMP(c *CPU) uint8 {
	c.fetched = c.accumulator
	return 0
}

func IMM(c *CPU) uint8 {
	c.addrAbs = c.pc
	c.pc++
	return 0
}

func ZP0(c *CPU) uint8 {
	c.addrAbs = uint16(c.read(c.pc))
	c.pc++
	c.addrAbs &= 0x00FF
	return 0
}

func ZPX(c *CPU) uint8 {
	c.addrAbs = uint16(c.read(c.pc)) + uint16(c.xRegister)
	c.pc++
	c.addrAbs &= 0x00FF
	return 0
}

func ZPY(c *CPU) uint8 {
	c.addrAbs = uint16(c.read(c.pc)) + uint16(c.yRegister)
	c.pc++
	c.addrAbs &= 0x00FF
	return 0
}

func REL(c *CPU) uint8 {
	c.addrRel = uint16(c.read(c.pc))
	c.pc++
	if c.addrRel&0x80 != 0 {
		c.addrRel |= 0xFF00
	}
	return 0
}

func ABS(c *CPU) uint8 {
	lo := c.read(c.pc)
	c.pc++
	hi := c.read(c.pc)
	c.pc++
	c.addrAbs = (uint16(hi) << 8) | uint16(lo)
	return 0
}

func ABX(c *CPU) uint8 {
	lo := c.read(c.pc)
	c.pc++
	hi := c.read(c.pc)
	c.pc++

	c.addrAbs = (uint16(hi) << 8) | uint16(lo)
	c.addrAbs += uint16(c.xRegister)

	if (c.addrAbs & 0xFF00) != (uint16(hi) << 8) {
		return 1
	}
	return 0
}

func ABY(c *CPU) uint8 {
	lo := c.read(c.pc)
	c.pc++
	hi := c.read(c.pc)
	c.pc++

	c.addrAbs = (uint16(hi) << 8) | uint16(lo)
	c.addrAbs += uint16(c.yRegister)

	if (c.addrAbs & 0xFF00) != (uint16(hi) << 8) {
		return 1
	}
	return 0
}

// IND reproduces the 6502's page-wrap defect: an indirect vector at
// $xxFF fetches its high byte from $xx00, not the next page.
func IND(c *CPU) uint8 {
	ptrLo := c.read(c.pc)
	c.pc++
	ptrHi := c.read(c.pc)
	c.pc++

	ptr := (uint16(ptrHi) << 8) | uint16(ptrLo)
	if ptrLo == 0xFF {
		c.addrAbs = (uint16(c.read(ptr&0xFF00)) << 8) | uint16(c.read(ptr))
		return 0
	}

	c.addrAbs = (uint16(c.read(ptr+1)) << 8) | uint16(c.read(ptr))
	return 0
}

func IZX(c *CPU) uint8 {
	t := uint16(c.read(c.pc))
	c.pc++

	lo := uint16(c.read((t + uint16(c.xRegister)) & 0x00FF))
	hi := uint16(c.read((t + uint16(c.xRegister) + 1) & 0x00FF))
	c.addrAbs = (hi << 8) | lo
	return 0
}

func IZY(c *CPU) uint8 {
	t := uint16(c.read(c.pc))
	c.pc++

	lo := uint16(c.read(t & 0x00FF))
	hi := uint16(c.read((t + 1) & 0x00FF))

	c.addrAbs = (hi << 8) | lo
	c.addrAbs += uint16(c.yRegister)

	if (c.addrAbs & 0xFF00) != (hi << 8) {
		return 1
	}
	return 0
}

func (c *CPU) getFlag(flag CPUFlag) uint8 {
	if c.status&uint8(flag) != 0 {
		return 1
	}
	return 0
}

func (c *CPU) setFlag(flag CPUFlag, v bool) {
	if v {
		c.status |= uint8(flag)
	} else {
		c.status &= ^uint8(flag)
	}
}

func (c *CPU) fetch() uint8 {
	if c.lookup[c.opcode].AddrMode != "IMP" {
		c.fetched = c.read(c.addrAbs)
	}
	return c.fetched
}

func (c *CPU) read(addr uint16) uint8 {
	return c.bus.cpuRead(addr)
}

func (c *CPU) write(addr uint16, data uint8) {
	c.bus.cpuWrite(addr, data)
}

func (c *CPU) connectBus(bus *Bus) {
	c.bus = bus
}

// TriggerNMI latches the edge-triggered non-maskable interrupt. It is
// serviced once, before the next opcode fetch, regardless of the I flag.
func (c *CPU) TriggerNMI() {
	c.nmiPending = true
}

// SetIRQLine drives the level-triggered IRQ input. The interrupt is
// serviced before each opcode fetch while the line is high and the I
// flag is clear.
func (c *CPU) SetIRQLine(asserted bool) {
	c.irqLine = asserted
}

// Halted reports whether a KIL opcode jammed the core.
func (c *CPU) Halted() bool {
	return c.halted
}

func (c *CPU) interrupt(vector uint16) {
	c.write(0x0100+uint16(c.stkp), uint8((c.pc>>8)&0x00FF))
	c.stkp--
	c.write(0x0100+uint16(c.stkp), uint8(c.pc&0x00FF))
	c.stkp--

	c.setFlag(B, false)
	c.setFlag(U, true)
	c.write(0x0100+uint16(c.stkp), c.status)
	c.stkp--
	c.setFlag(I, true)

	lo := uint16(c.read(vector))
	hi := uint16(c.read(vector + 1))
	c.pc = (hi << 8) | lo
}

// Step executes one instruction and returns its cycle cost: the base
// cost from the decode table plus addressing-mode page-crossing and
// branch penalties. Pending interrupts are sampled first; servicing one
// costs a fixed 7 cycles and replaces the opcode that would have run.
// A jammed core burns one cycle per call and does nothing else.
func (c *CPU) Step() uint8 {
	if c.halted {
		c.totalCycles++
		return 1
	}

	if c.nmiPending {
		c.nmiPending = false
		c.interrupt(0xFFFA)
		c.totalCycles += 7
		return 7
	}
	if c.irqLine && c.getFlag(I) == 0 {
		c.interrupt(0xFFFE)
		c.totalCycles += 7
		return 7
	}

	c.opcode = c.read(c.pc)
	c.setFlag(U, true)
	c.pc++

	inst := c.lookup[c.opcode]
	c.cycles = inst.Cycles

	additionalCycle1 := AddressModes[inst.AddrMode](c)
	additionalCycle2 := Operations[inst.Name](c)
	c.cycles += additionalCycle1 & additionalCycle2
	c.setFlag(U, true)

	c.totalCycles += uint64(c.cycles)
	return c.cycles
}

// TotalCycles reports the cycles consumed since power-on. OAM DMA uses
// its parity to decide between the 513- and 514-cycle stall.
func (c *CPU) TotalCycles() uint64 {
	return c.totalCycles
}

func loadInstructions() []Instruction {
	var result []Instruction
	if err := json.Unmarshal(lookupJSON, &result); err != nil {
		panic(err)
	}
	if len(result) != 256 {
		panic("cpu: decode table must have 256 entries")
	}
	return result
}

func NewCPU() *CPU {
	cpu := &CPU{}
	cpu.lookup = loadInstructions()
	return cpu
}

// Reset puts the core into its documented power-on state and reloads
// the program counter from the reset vector. It also clears a jam.
func (c *CPU) Reset() {
	lo := uint16(c.read(0xFFFC))
	hi := uint16(c.read(0xFFFD))
	c.pc = (hi << 8) | lo

	c.accumulator = 0
	c.xRegister = 0
	c.yRegister = 0
	c.stkp = 0xFD
	c.status = 0x00 | uint8(U) | uint8(I)

	c.addrRel = 0x0000
	c.addrAbs = 0x0000
	c.fetched = 0x00
	c.halted = false
	c.nmiPending = false
	c.irqLine = false
}
