package cpu

import "github.com/valerio/go-jeebie/jeebie/bit"

func (c *CPU) pushStack(r uint16) {
	c.sp--
	c.bus.Write(c.sp, bit.High(r))
	c.bus.Tick(4)
	c.sp--
	c.bus.Write(c.sp, bit.Low(r))
	c.bus.Tick(4)
}

func (c *CPU) popStack() uint16 {
	low := c.bus.Read(c.sp)
	c.bus.Tick(4)
	c.sp++
	high := c.bus.Read(c.sp)
	c.bus.Tick(4)
	c.sp++

	return bit.Combine(high, low)
}

func (c *CPU) inc(r *uint8) {
	*r++
	value := *r

	c.setFlagToCondition(zeroFlag, value == 0)
	c.setFlagToCondition(halfCarryFlag, (value&0xF) == 0x0)
	c.resetFlag(subFlag)
}

func (c *CPU) dec(r *uint8) {
	*r--
	value := *r

	c.setFlagToCondition(zeroFlag, value == 0)
	c.setFlagToCondition(halfCarryFlag, (value&0xF) == 0xF)
	c.setFlag(subFlag)
}

// rlca/rla/rrca/rra implement the accumulator-only forms (0x07/0x17/0x0F/0x1F),
// which always clear the zero flag regardless of the result.
func (c *CPU) rlca() {
	value := c.a
	carry := value >> 7
	c.a = (value << 1) | carry

	c.resetFlag(zeroFlag)
	c.resetFlag(subFlag)
	c.resetFlag(halfCarryFlag)
	c.setFlagToCondition(carryFlag, carry == 1)
}

func (c *CPU) rla() {
	value := c.a
	oldCarry := c.flagToBit(carryFlag)
	newCarry := value >> 7
	c.a = (value << 1) | oldCarry

	c.resetFlag(zeroFlag)
	c.resetFlag(subFlag)
	c.resetFlag(halfCarryFlag)
	c.setFlagToCondition(carryFlag, newCarry == 1)
}

func (c *CPU) rrca() {
	value := c.a
	carry := value & 1
	c.a = (value >> 1) | (carry << 7)

	c.resetFlag(zeroFlag)
	c.resetFlag(subFlag)
	c.resetFlag(halfCarryFlag)
	c.setFlagToCondition(carryFlag, carry == 1)
}

func (c *CPU) rra() {
	value := c.a
	oldCarry := c.flagToBit(carryFlag)
	newCarry := value & 1
	c.a = (value >> 1) | (oldCarry << 7)

	c.resetFlag(zeroFlag)
	c.resetFlag(subFlag)
	c.resetFlag(halfCarryFlag)
	c.setFlagToCondition(carryFlag, newCarry == 1)
}

// rlc/rl/rrc/rr implement the CB-prefixed register/memory forms, which set
// the zero flag from the result (unlike their accumulator-only cousins).
func (c *CPU) rlc(r *uint8) {
	value := *r
	carry := value >> 7
	*r = (value << 1) | carry

	c.setFlagToCondition(zeroFlag, *r == 0)
	c.resetFlag(subFlag)
	c.resetFlag(halfCarryFlag)
	c.setFlagToCondition(carryFlag, carry == 1)
}

func (c *CPU) rl(r *uint8) {
	value := *r
	oldCarry := c.flagToBit(carryFlag)
	newCarry := value >> 7
	*r = (value << 1) | oldCarry

	c.setFlagToCondition(zeroFlag, *r == 0)
	c.resetFlag(subFlag)
	c.resetFlag(halfCarryFlag)
	c.setFlagToCondition(carryFlag, newCarry == 1)
}

func (c *CPU) rrc(r *uint8) {
	value := *r
	carry := value & 1
	*r = (value >> 1) | (carry << 7)

	c.setFlagToCondition(zeroFlag, *r == 0)
	c.resetFlag(subFlag)
	c.resetFlag(halfCarryFlag)
	c.setFlagToCondition(carryFlag, carry == 1)
}

func (c *CPU) rr(r *uint8) {
	value := *r
	oldCarry := c.flagToBit(carryFlag)
	newCarry := value & 1
	*r = (value >> 1) | (oldCarry << 7)

	c.setFlagToCondition(zeroFlag, *r == 0)
	c.resetFlag(subFlag)
	c.resetFlag(halfCarryFlag)
	c.setFlagToCondition(carryFlag, newCarry == 1)
}

func (c *CPU) sla(r *uint8) {
	value := *r
	carry := value >> 7
	*r = value << 1

	c.setFlagToCondition(zeroFlag, *r == 0)
	c.resetFlag(subFlag)
	c.resetFlag(halfCarryFlag)
	c.setFlagToCondition(carryFlag, carry == 1)
}

func (c *CPU) sra(r *uint8) {
	value := *r
	carry := value & 1
	*r = (value >> 1) | (value & 0x80)

	c.setFlagToCondition(zeroFlag, *r == 0)
	c.resetFlag(subFlag)
	c.resetFlag(halfCarryFlag)
	c.setFlagToCondition(carryFlag, carry == 1)
}

func (c *CPU) srl(r *uint8) {
	value := *r
	carry := value & 1
	*r = value >> 1

	c.setFlagToCondition(zeroFlag, *r == 0)
	c.resetFlag(subFlag)
	c.resetFlag(halfCarryFlag)
	c.setFlagToCondition(carryFlag, carry == 1)
}

func (c *CPU) swap(r *uint8) {
	value := *r
	*r = (value << 4) | (value >> 4)

	c.setFlagToCondition(zeroFlag, *r == 0)
	c.resetFlag(subFlag)
	c.resetFlag(halfCarryFlag)
	c.resetFlag(carryFlag)
}

// bit tests bit `index` of value, setting Z accordingly. N is cleared, H is
// set, C is untouched.
func (c *CPU) bit(index uint8, value uint8) {
	c.setFlagToCondition(zeroFlag, !bit.IsSet(index, value))
	c.resetFlag(subFlag)
	c.setFlag(halfCarryFlag)
}

func (c *CPU) res(index uint8, r *uint8) {
	*r = bit.Reset(index, *r)
}

func (c *CPU) set(index uint8, r *uint8) {
	*r = bit.Set(index, *r)
}

// addToA adds value to A, setting all relevant flags.
func (c *CPU) addToA(value uint8) {
	a := c.a
	result := a + value

	carry := (uint16(a) + uint16(value)) > 0xFF
	halfCarry := (a&0xF)+(value&0xF) > 0xF

	c.setFlagToCondition(zeroFlag, result == 0)
	c.resetFlag(subFlag)
	c.setFlagToCondition(carryFlag, carry)
	c.setFlagToCondition(halfCarryFlag, halfCarry)

	c.a = result
}

// adcToA adds value plus the carry flag to A.
func (c *CPU) adcToA(value uint8) {
	a := c.a
	carryIn := c.flagToBit(carryFlag)
	result16 := uint16(a) + uint16(value) + uint16(carryIn)
	result := uint8(result16)

	c.setFlagToCondition(zeroFlag, result == 0)
	c.resetFlag(subFlag)
	c.setFlagToCondition(carryFlag, result16 > 0xFF)
	c.setFlagToCondition(halfCarryFlag, (a&0xF)+(value&0xF)+carryIn > 0xF)

	c.a = result
}

// addToHL adds a 16 bit register to HL, setting relevant flags.
func (c *CPU) addToHL(reg uint16) {
	hl := c.getHL()
	result := hl + reg

	carry := (uint32(hl) + uint32(reg)) > 0xFFFF
	halfCarry := (hl&0xFFF)+(reg&0xFFF) > 0xFFF

	c.resetFlag(subFlag)
	c.setFlagToCondition(carryFlag, carry)
	c.setFlagToCondition(halfCarryFlag, halfCarry)

	c.setHL(result)
}

// addToSP implements the ADD SP,r8 / LDHL SP,r8 displacement arithmetic,
// which (unusually) sets H/C from the low byte regardless of sign.
func (c *CPU) addToSP(displacement int8) uint16 {
	sp := c.sp
	value := uint16(int32(sp) + int32(displacement))

	c.resetFlag(zeroFlag)
	c.resetFlag(subFlag)
	c.setFlagToCondition(halfCarryFlag, (sp&0xF)+(uint16(uint8(displacement))&0xF) > 0xF)
	c.setFlagToCondition(carryFlag, (sp&0xFF)+(uint16(uint8(displacement))&0xFF) > 0xFF)

	return value
}

// sub subtracts value from register A, setting all relevant flags.
func (c *CPU) sub(value uint8) {
	a := c.a
	c.a = a - value

	c.setFlagToCondition(zeroFlag, c.a == 0)
	c.setFlag(subFlag)
	c.setFlagToCondition(carryFlag, a < value)
	c.setFlagToCondition(halfCarryFlag, (int(a)&0xF)-(int(value)&0xF) < 0)
}

// sbc subtracts value and the carry flag (0 or 1) from register A.
func (c *CPU) sbc(value uint8) {
	a := c.a
	carry := 0
	if c.isSetFlag(carryFlag) {
		carry = 1
	}

	result := int(c.a) - int(value) - carry
	c.a = uint8(result)

	c.setFlagToCondition(zeroFlag, c.a == 0)
	c.setFlag(subFlag)
	c.setFlagToCondition(carryFlag, result < 0)
	c.setFlagToCondition(halfCarryFlag, (int(a)&0xF)-(int(value)&0xF)-carry < 0)
}

// cp compares A against value without storing the result (SUB without write-back).
func (c *CPU) cp(value uint8) {
	a := c.a
	c.sub(value)
	c.a = a
}

func (c *CPU) and(value uint8) {
	c.a &= value
	c.setFlagToCondition(zeroFlag, c.a == 0)
	c.resetFlag(subFlag)
	c.setFlag(halfCarryFlag)
	c.resetFlag(carryFlag)
}

func (c *CPU) or(value uint8) {
	c.a |= value
	c.setFlagToCondition(zeroFlag, c.a == 0)
	c.resetFlag(subFlag)
	c.resetFlag(carryFlag)
	c.resetFlag(halfCarryFlag)
}

func (c *CPU) xor(value uint8) {
	c.a ^= value
	c.setFlagToCondition(zeroFlag, c.a == 0)
	c.resetFlag(subFlag)
	c.resetFlag(carryFlag)
	c.resetFlag(halfCarryFlag)
}

// daa adjusts A after a BCD addition/subtraction to keep it in packed-BCD
// form, consulting N/H/C per the standard Sharp LR35902 table.
func (c *CPU) daa() {
	a := c.a
	adjust := uint8(0)
	carry := false

	if c.isSetFlag(subFlag) {
		if c.isSetFlag(halfCarryFlag) {
			adjust |= 0x06
		}
		if c.isSetFlag(carryFlag) {
			adjust |= 0x60
		}
		a -= adjust
	} else {
		if c.isSetFlag(halfCarryFlag) || (a&0xF) > 0x09 {
			adjust |= 0x06
		}
		if c.isSetFlag(carryFlag) || a > 0x99 {
			adjust |= 0x60
			carry = true
		}
		a += adjust
	}

	c.a = a
	c.setFlagToCondition(zeroFlag, a == 0)
	c.resetFlag(halfCarryFlag)
	if carry {
		c.setFlag(carryFlag)
	}
}

func (c *CPU) cplA() {
	c.a = ^c.a
	c.setFlag(subFlag)
	c.setFlag(halfCarryFlag)
}

func (c *CPU) scf() {
	c.resetFlag(subFlag)
	c.resetFlag(halfCarryFlag)
	c.setFlag(carryFlag)
}

func (c *CPU) ccf() {
	c.resetFlag(subFlag)
	c.resetFlag(halfCarryFlag)
	c.setFlagToCondition(carryFlag, !c.isSetFlag(carryFlag))
}

// jr performs a relative jump using the immediate signed displacement.
func (c *CPU) jr() {
	displacement := c.readSignedImmediate()
	c.bus.Tick(4)
	c.pc = uint16(int32(c.pc) + int32(displacement))
}

// jp performs an absolute jump using the immediate 16-bit address.
func (c *CPU) jp() {
	address := c.readImmediateWord()
	c.bus.Tick(4)
	c.pc = address
}

func (c *CPU) call() {
	address := c.readImmediateWord()
	c.bus.Tick(4)
	c.pushStack(c.pc)
	c.pc = address
}

func (c *CPU) ret() {
	c.pc = c.popStack()
	c.bus.Tick(4)
}

func (c *CPU) rst(address uint16) {
	c.bus.Tick(4)
	c.pushStack(c.pc)
	c.pc = address
}
