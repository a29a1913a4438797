package famicore

// Operations maps decode-table names to their implementations. The
// undocumented entries (SLO through KIL) carry the behavior observed on
// real parts, which shipped software and test programs depend on.
var Operations = map[string]func(*CPU) uint8{
	"ADC": ADC,
	"SBC": SBC,
	"AND": AND,
	"ASL": ASL,
	"BCC": BCC,
	"BCS": BCS,
	"BEQ": BEQ,
	"BIT": BIT,
	"BMI": BMI,
	"BNE": BNE,
	"BPL": BPL,
	"BRK": BRK,
	"BVC": BVC,
	"BVS": BVS,
	"CLC": CLC,
	"CLD": CLD,
	"CLI": CLI,
	"CLV": CLV,
	"CMP": CMP,
	"CPX": CPX,
	"CPY": CPY,
	"DEC": DEC,
	"DEX": DEX,
	"DEY": DEY,
	"EOR": EOR,
	"INC": INC,
	"INX": INX,
	"INY": INY,
	"JMP": JMP,
	"JSR": JSR,
	"LDA": LDA,
	"LDX": LDX,
	"LDY": LDY,
	"LSR": LSR,
	"NOP": NOP,
	"ORA": ORA,
	"PHA": PHA,
	"PHP": PHP,
	"PLA": PLA,
	"PLP": PLP,
	"ROL": ROL,
	"ROR": ROR,
	"RTI": RTI,
	"RTS": RTS,
	"SEC": SEC,
	"SED": SED,
	"SEI": SEI,
	"STA": STA,
	"STX": STX,
	"STY": STY,
	"TAX": TAX,
	"TAY": TAY,
	"TSX": TSX,
	"TXA": TXA,
	"TXS": TXS,
	"TYA": TYA,
	"SLO": SLO,
	"RLA": RLA,
	"SRE": SRE,
	"RRA": RRA,
	"SAX": SAX,
	"LAX": LAX,
	"DCP": DCP,
	"ISC": ISC,
	"ANC": ANC,
	"ALR": ALR,
	"ARR": ARR,
	"XAA": XAA,
	"AXS": AXS,
	"AHX": AHX,
	"SHX": SHX,
	"SHY": SHY,
	"TAS": TAS,
	"LAS": LAS,
	"KIL": KIL,
}

// ADC adds with carry. Always binary arithmetic: the 2A03 part wires
// decimal mode out, so the D flag is latched but never consulted.
func ADC(c *CPU) uint8 {
	c.fetch()
	temp := uint16(c.accumulator) + uint16(c.fetched) + uint16(c.getFlag(C))
	c.setFlag(C, temp > 255)
	c.setFlag(Z, (temp&0x00FF) == 0)
	overflow := ((^(uint16(c.accumulator) ^ uint16(c.fetched))) & (uint16(c.accumulator) ^ temp)) & 0x0080
	c.setFlag(V, overflow != 0)
	c.setFlag(N, (temp&0x80) != 0)
	c.accumulator = uint8(temp & 0x00FF)
	return 1
}

func SBC(c *CPU) uint8 {
	c.fetch()
	value := uint16(c.fetched) ^ 0x00FF
	temp := uint16(c.accumulator) + value + uint16(c.getFlag(C))
	c.setFlag(C, (temp&0xFF00) != 0)
	c.setFlag(Z, (temp&0x00FF) == 0)
	c.setFlag(V, ((temp^uint16(c.accumulator))&(temp^value)&0x0080) != 0)
	c.setFlag(N, temp&0x0080 != 0)
	c.accumulator = uint8(temp & 0x00FF)
	return 1
}

func AND(c *CPU) uint8 {
	c.fetch()
	c.accumulator = c.accumulator & c.fetched
	c.setFlag(Z, c.accumulator == 0x00)
	c.setFlag(N, c.accumulator&0x80 != 0)
	return 1
}

func ASL(c *CPU) uint8 {
	c.fetch()
	temp := uint16(c.fetched) << 1
	c.setFlag(C, (temp&0xFF00) > 0)
	c.setFlag(Z, (temp&0x00FF) == 0x00)
	c.setFlag(N, temp&0x80 != 0)
	if c.lookup[c.opcode].AddrMode == "IMP" {
		c.accumulator = uint8(temp & 0x00FF)
		return 0
	}
	c.write(c.addrAbs, uint8(temp&0x00FF))
	return 0
}

// branch adds the taken-branch cycle and a second one when the target
// lands on a different page.
func (c *CPU) branch() {
	c.cycles++
	c.addrAbs = c.pc + c.addrRel
	if (c.addrAbs & 0xFF00) != (c.pc & 0xFF00) {
		c.cycles++
	}
	c.pc = c.addrAbs
}

func BCC(c *CPU) uint8 {
	if c.getFlag(C) == 0 {
		c.branch()
	}
	return 0
}

func BCS(c *CPU) uint8 {
	if c.getFlag(C) == 1 {
		c.branch()
	}
	return 0
}

func BEQ(c *CPU) uint8 {
	if c.getFlag(Z) == 1 {
		c.branch()
	}
	return 0
}

func BIT(c *CPU) uint8 {
	c.fetch()
	temp := c.accumulator & c.fetched
	c.setFlag(Z, (temp&0x00FF) == 0x00)
	c.setFlag(N, (c.fetched&(1<<7)) != 0)
	c.setFlag(V, (c.fetched&(1<<6)) != 0)
	return 0
}

func BMI(c *CPU) uint8 {
	if c.getFlag(N) == 1 {
		c.branch()
	}
	return 0
}

func BNE(c *CPU) uint8 {
	if c.getFlag(Z) == 0 {
		c.branch()
	}
	return 0
}

func BPL(c *CPU) uint8 {
	if c.getFlag(N) == 0 {
		c.branch()
	}
	return 0
}

func BRK(c *CPU) uint8 {
	c.pc++
	c.write(0x0100+uint16(c.stkp), uint8((c.pc>>8)&0x00FF))
	c.stkp--
	c.write(0x0100+uint16(c.stkp), uint8(c.pc&0x00FF))
	c.stkp--

	// The pushed status predates the interrupt disable.
	c.setFlag(B, true)
	c.write(0x0100+uint16(c.stkp), c.status)
	c.stkp--
	c.setFlag(B, false)
	c.setFlag(I, true)

	c.pc = uint16(c.read(0xFFFE)) | (uint16(c.read(0xFFFF)) << 8)
	return 0
}

func BVC(c *CPU) uint8 {
	if c.getFlag(V) == 0 {
		c.branch()
	}
	return 0
}

func BVS(c *CPU) uint8 {
	if c.getFlag(V) == 1 {
		c.branch()
	}
	return 0
}

func CLC(c *CPU) uint8 {
	c.setFlag(C, false)
	return 0
}

func CLD(c *CPU) uint8 {
	c.setFlag(D, false)
	return 0
}

func CLI(c *CPU) uint8 {
	c.setFlag(I, false)
	return 0
}

func CLV(c *CPU) uint8 {
	c.setFlag(V, false)
	return 0
}

func CMP(c *CPU) uint8 {
	c.fetch()
	temp := uint16(c.accumulator) - uint16(c.fetched)
	c.setFlag(C, c.accumulator >= c.fetched)
	c.setFlag(Z, (temp&0x00FF) == 0x0000)
	c.setFlag(N, (temp&0x0080) != 0)
	return 1
}

func CPX(c *CPU) uint8 {
	c.fetch()
	temp := uint16(c.xRegister) - uint16(c.fetched)
	c.setFlag(C, c.xRegister >= c.fetched)
	c.setFlag(Z, (temp&0x00FF) == 0x0000)
	c.setFlag(N, (temp&0x0080) != 0)
	return 0
}

func CPY(c *CPU) uint8 {
	c.fetch()
	temp := uint16(c.yRegister) - uint16(c.fetched)
	c.setFlag(C, c.yRegister >= c.fetched)
	c.setFlag(Z, (temp&0x00FF) == 0x0000)
	c.setFlag(N, (temp&0x0080) != 0)
	return 0
}

func DEC(c *CPU) uint8 {
	c.fetch()
	temp := c.fetched - 1
	c.write(c.addrAbs, temp)
	c.setFlag(Z, temp == 0x00)
	c.setFlag(N, (temp&0x80) != 0)
	return 0
}

func DEX(c *CPU) uint8 {
	c.xRegister--
	c.setFlag(Z, c.xRegister == 0x00)
	c.setFlag(N, (c.xRegister&0x80) != 0)
	return 0
}

func DEY(c *CPU) uint8 {
	c.yRegister--
	c.setFlag(Z, c.yRegister == 0x00)
	c.setFlag(N, (c.yRegister&0x80) != 0)
	return 0
}

func EOR(c *CPU) uint8 {
	c.fetch()
	c.accumulator = c.accumulator ^ c.fetched
	c.setFlag(Z, c.accumulator == 0x00)
	c.setFlag(N, (c.accumulator&0x80) != 0)
	return 1
}

func INC(c *CPU) uint8 {
	c.fetch()
	temp := c.fetched + 1
	c.write(c.addrAbs, temp)
	c.setFlag(Z, temp == 0x00)
	c.setFlag(N, (temp&0x80) != 0)
	return 0
}

func INX(c *CPU) uint8 {
	c.xRegister++
	c.setFlag(Z, c.xRegister == 0x00)
	c.setFlag(N, (c.xRegister&0x80) != 0)
	return 0
}

func INY(c *CPU) uint8 {
	c.yRegister++
	c.setFlag(Z, c.yRegister == 0x00)
	c.setFlag(N, (c.yRegister&0x80) != 0)
	return 0
}

func JMP(c *CPU) uint8 {
	c.pc = c.addrAbs
	return 0
}

func JSR(c *CPU) uint8 {
	c.pc--
	c.write(0x0100+uint16(c.stkp), uint8((c.pc>>8)&0x00FF))
	c.stkp--
	c.write(0x0100+uint16(c.stkp), uint8(c.pc&0x00FF))
	c.stkp--

	c.pc = c.addrAbs
	return 0
}

func LDA(c *CPU) uint8 {
	c.fetch()
	c.accumulator = c.fetched
	c.setFlag(Z, c.accumulator == 0x00)
	c.setFlag(N, (c.accumulator&0x80) != 0)
	return 1
}

func LDX(c *CPU) uint8 {
	c.fetch()
	c.xRegister = c.fetched
	c.setFlag(Z, c.xRegister == 0x00)
	c.setFlag(N, (c.xRegister&0x80) != 0)
	return 1
}

func LDY(c *CPU) uint8 {
	c.fetch()
	c.yRegister = c.fetched
	c.setFlag(Z, c.yRegister == 0x00)
	c.setFlag(N, (c.yRegister&0x80) != 0)
	return 1
}

func LSR(c *CPU) uint8 {
	c.fetch()
	c.setFlag(C, c.fetched&0x01 != 0)
	temp := c.fetched >> 1
	c.setFlag(Z, temp == 0x00)
	c.setFlag(N, false)
	if c.lookup[c.opcode].AddrMode == "IMP" {
		c.accumulator = temp
		return 0
	}
	c.write(c.addrAbs, temp)
	return 0
}

// NOP covers the documented $EA and the undocumented multi-byte forms.
// The absolute,X variants pay the page-crossing penalty.
func NOP(c *CPU) uint8 {
	switch c.opcode {
	case 0x1C, 0x3C, 0x5C, 0x7C, 0xDC, 0xFC:
		return 1
	}
	return 0
}

func ORA(c *CPU) uint8 {
	c.fetch()
	c.accumulator |= c.fetched
	c.setFlag(Z, c.accumulator == 0x00)
	c.setFlag(N, (c.accumulator&0x80) != 0)
	return 1
}

func PHA(c *CPU) uint8 {
	c.write(0x0100+uint16(c.stkp), c.accumulator)
	c.stkp--
	return 0
}

func PHP(c *CPU) uint8 {
	c.write(0x0100+uint16(c.stkp), c.status|uint8(B)|uint8(U))
	c.setFlag(B, false)
	c.stkp--
	return 0
}

func PLA(c *CPU) uint8 {
	c.stkp++
	c.accumulator = c.read(0x0100 + uint16(c.stkp))
	c.setFlag(Z, c.accumulator == 0x00)
	c.setFlag(N, (c.accumulator&0x80) != 0)
	return 0
}

func PLP(c *CPU) uint8 {
	c.stkp++
	c.status = c.read(0x0100 + uint16(c.stkp))
	c.setFlag(B, false)
	c.setFlag(U, true)
	return 0
}

func ROL(c *CPU) uint8 {
	c.fetch()
	temp := (uint16(c.fetched) << 1) | uint16(c.getFlag(C))
	c.setFlag(C, (temp&0xFF00) != 0)
	c.setFlag(Z, (temp&0x00FF) == 0x0000)
	c.setFlag(N, (temp&0x0080) != 0)
	if c.lookup[c.opcode].AddrMode == "IMP" {
		c.accumulator = uint8(temp & 0x00FF)
		return 0
	}
	c.write(c.addrAbs, uint8(temp&0x00FF))
	return 0
}

func ROR(c *CPU) uint8 {
	c.fetch()
	temp := (uint16(c.getFlag(C)) << 7) | (uint16(c.fetched) >> 1)
	c.setFlag(C, c.fetched&0x01 != 0)
	c.setFlag(Z, (temp&0x00FF) == 0x00)
	c.setFlag(N, temp&0x0080 != 0)
	if c.lookup[c.opcode].AddrMode == "IMP" {
		c.accumulator = uint8(temp & 0x00FF)
	} else {
		c.write(c.addrAbs, uint8(temp&0x00FF))
	}
	return 0
}

func RTI(c *CPU) uint8 {
	c.stkp++
	c.status = c.read(0x0100 + uint16(c.stkp))
	c.status &= ^uint8(B)
	c.status |= uint8(U)

	c.stkp++
	c.pc = uint16(c.read(0x0100 + uint16(c.stkp)))
	c.stkp++
	c.pc |= uint16(c.read(0x0100+uint16(c.stkp))) << 8
	return 0
}

func RTS(c *CPU) uint8 {
	c.stkp++
	c.pc = uint16(c.read(0x0100 + uint16(c.stkp)))
	c.stkp++
	c.pc |= uint16(c.read(0x0100+uint16(c.stkp))) << 8
	c.pc++
	return 0
}

func SEC(c *CPU) uint8 {
	c.setFlag(C, true)
	return 0
}

func SED(c *CPU) uint8 {
	c.setFlag(D, true)
	return 0
}

func SEI(c *CPU) uint8 {
	c.setFlag(I, true)
	return 0
}

func STA(c *CPU) uint8 {
	c.write(c.addrAbs, c.accumulator)
	return 0
}

func STX(c *CPU) uint8 {
	c.write(c.addrAbs, c.xRegister)
	return 0
}

func STY(c *CPU) uint8 {
	c.write(c.addrAbs, c.yRegister)
	return 0
}

func TAX(c *CPU) uint8 {
	c.xRegister = c.accumulator
	c.setFlag(Z, c.xRegister == 0x00)
	c.setFlag(N, (c.xRegister&0x80) != 0)
	return 0
}

func TAY(c *CPU) uint8 {
	c.yRegister = c.accumulator
	c.setFlag(Z, c.yRegister == 0x00)
	c.setFlag(N, (c.yRegister&0x80) != 0)
	return 0
}

func TSX(c *CPU) uint8 {
	c.xRegister = c.stkp
	c.setFlag(Z, c.xRegister == 0x00)
	c.setFlag(N, (c.xRegister&0x80) != 0)
	return 0
}

func TXA(c *CPU) uint8 {
	c.accumulator = c.xRegister
	c.setFlag(Z, c.accumulator == 0x00)
	c.setFlag(N, (c.accumulator&0x80) != 0)
	return 0
}

func TXS(c *CPU) uint8 {
	c.stkp = c.xRegister
	return 0
}

func TYA(c *CPU) uint8 {
	c.accumulator = c.yRegister
	c.setFlag(Z, c.accumulator == 0x00)
	c.setFlag(N, (c.accumulator&0x80) != 0)
	return 0
}

// SLO shifts memory left then ORs the result into A.
func SLO(c *CPU) uint8 {
	c.fetch()
	c.setFlag(C, c.fetched&0x80 != 0)
	temp := c.fetched << 1
	c.write(c.addrAbs, temp)
	c.accumulator |= temp
	c.setFlag(Z, c.accumulator == 0x00)
	c.setFlag(N, (c.accumulator&0x80) != 0)
	return 0
}

// RLA rotates memory left through carry then ANDs the result into A.
func RLA(c *CPU) uint8 {
	c.fetch()
	temp := (c.fetched << 1) | c.getFlag(C)
	c.setFlag(C, c.fetched&0x80 != 0)
	c.write(c.addrAbs, temp)
	c.accumulator &= temp
	c.setFlag(Z, c.accumulator == 0x00)
	c.setFlag(N, (c.accumulator&0x80) != 0)
	return 0
}

// SRE shifts memory right then XORs the result into A.
func SRE(c *CPU) uint8 {
	c.fetch()
	c.setFlag(C, c.fetched&0x01 != 0)
	temp := c.fetched >> 1
	c.write(c.addrAbs, temp)
	c.accumulator ^= temp
	c.setFlag(Z, c.accumulator == 0x00)
	c.setFlag(N, (c.accumulator&0x80) != 0)
	return 0
}

// RRA rotates memory right through carry then adds it to A with carry.
func RRA(c *CPU) uint8 {
	c.fetch()
	rotated := (c.getFlag(C) << 7) | (c.fetched >> 1)
	c.setFlag(C, c.fetched&0x01 != 0)
	c.write(c.addrAbs, rotated)

	temp := uint16(c.accumulator) + uint16(rotated) + uint16(c.getFlag(C))
	c.setFlag(C, temp > 255)
	c.setFlag(Z, (temp&0x00FF) == 0)
	overflow := ((^(uint16(c.accumulator) ^ uint16(rotated))) & (uint16(c.accumulator) ^ temp)) & 0x0080
	c.setFlag(V, overflow != 0)
	c.setFlag(N, (temp&0x80) != 0)
	c.accumulator = uint8(temp & 0x00FF)
	return 0
}

// SAX stores A AND X without touching any flags.
func SAX(c *CPU) uint8 {
	c.write(c.addrAbs, c.accumulator&c.xRegister)
	return 0
}

// LAX loads A and X with the same value.
func LAX(c *CPU) uint8 {
	c.fetch()
	c.accumulator = c.fetched
	c.xRegister = c.fetched
	c.setFlag(Z, c.fetched == 0x00)
	c.setFlag(N, (c.fetched&0x80) != 0)
	return 1
}

// DCP decrements memory then compares A against the result.
func DCP(c *CPU) uint8 {
	c.fetch()
	temp := c.fetched - 1
	c.write(c.addrAbs, temp)
	c.setFlag(C, c.accumulator >= temp)
	c.setFlag(Z, c.accumulator == temp)
	c.setFlag(N, ((c.accumulator-temp)&0x80) != 0)
	return 0
}

// ISC increments memory then subtracts it from A with borrow.
func ISC(c *CPU) uint8 {
	c.fetch()
	incremented := c.fetched + 1
	c.write(c.addrAbs, incremented)

	value := uint16(incremented) ^ 0x00FF
	temp := uint16(c.accumulator) + value + uint16(c.getFlag(C))
	c.setFlag(C, (temp&0xFF00) != 0)
	c.setFlag(Z, (temp&0x00FF) == 0)
	c.setFlag(V, ((temp^uint16(c.accumulator))&(temp^value)&0x0080) != 0)
	c.setFlag(N, temp&0x0080 != 0)
	c.accumulator = uint8(temp & 0x00FF)
	return 0
}

// ANC ANDs the immediate into A and copies the negative flag to carry.
func ANC(c *CPU) uint8 {
	c.fetch()
	c.accumulator &= c.fetched
	c.setFlag(Z, c.accumulator == 0x00)
	c.setFlag(N, (c.accumulator&0x80) != 0)
	c.setFlag(C, (c.accumulator&0x80) != 0)
	return 0
}

// ALR ANDs the immediate into A then shifts A right.
func ALR(c *CPU) uint8 {
	c.fetch()
	c.accumulator &= c.fetched
	c.setFlag(C, c.accumulator&0x01 != 0)
	c.accumulator >>= 1
	c.setFlag(Z, c.accumulator == 0x00)
	c.setFlag(N, false)
	return 0
}

// ARR ANDs the immediate into A then rotates A right; carry comes from
// bit 6 of the result and overflow from bit 6 XOR bit 5, as observed.
func ARR(c *CPU) uint8 {
	c.fetch()
	c.accumulator &= c.fetched
	c.accumulator = (c.getFlag(C) << 7) | (c.accumulator >> 1)
	c.setFlag(C, c.accumulator&0x40 != 0)
	c.setFlag(V, ((c.accumulator>>6)^(c.accumulator>>5))&0x01 != 0)
	c.setFlag(Z, c.accumulator == 0x00)
	c.setFlag(N, (c.accumulator&0x80) != 0)
	return 0
}

// XAA is unstable on hardware; the commonly observed form transfers X
// to A and ANDs the immediate.
func XAA(c *CPU) uint8 {
	c.fetch()
	c.accumulator = c.xRegister & c.fetched
	c.setFlag(Z, c.accumulator == 0x00)
	c.setFlag(N, (c.accumulator&0x80) != 0)
	return 0
}

// AXS sets X to (A AND X) minus the immediate, without borrow.
func AXS(c *CPU) uint8 {
	c.fetch()
	temp := c.accumulator & c.xRegister
	c.setFlag(C, temp >= c.fetched)
	c.xRegister = temp - c.fetched
	c.setFlag(Z, c.xRegister == 0x00)
	c.setFlag(N, (c.xRegister&0x80) != 0)
	return 0
}

// AHX stores A AND X AND (high byte of the target address plus one).
func AHX(c *CPU) uint8 {
	value := c.accumulator & c.xRegister & (uint8(c.addrAbs>>8) + 1)
	c.write(c.addrAbs, value)
	return 0
}

// SHX stores X AND (high byte of the target address plus one).
func SHX(c *CPU) uint8 {
	c.write(c.addrAbs, c.xRegister&(uint8(c.addrAbs>>8)+1))
	return 0
}

// SHY stores Y AND (high byte of the target address plus one).
func SHY(c *CPU) uint8 {
	c.write(c.addrAbs, c.yRegister&(uint8(c.addrAbs>>8)+1))
	return 0
}

// TAS sets the stack pointer to A AND X, then stores like AHX.
func TAS(c *CPU) uint8 {
	c.stkp = c.accumulator & c.xRegister
	c.write(c.addrAbs, c.stkp&(uint8(c.addrAbs>>8)+1))
	return 0
}

// LAS loads A, X and the stack pointer with memory AND stack pointer.
func LAS(c *CPU) uint8 {
	c.fetch()
	temp := c.fetched & c.stkp
	c.accumulator = temp
	c.xRegister = temp
	c.stkp = temp
	c.setFlag(Z, temp == 0x00)
	c.setFlag(N, (temp&0x80) != 0)
	return 1
}

// KIL jams the core. Nothing executes again until reset.
func KIL(c *CPU) uint8 {
	c.halted = true
	return 0
}
