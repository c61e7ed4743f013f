package bit

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCombine(t *testing.T) {
	assert.Equal(t, uint16(0xABCD), Combine(0xAB, 0xCD))
	assert.Equal(t, uint16(0x0000), Combine(0x00, 0x00))
	assert.Equal(t, uint16(0xFFFF), Combine(0xFF, 0xFF))
}

func TestLowAndHigh(t *testing.T) {
	assert.Equal(t, uint8(0xCD), Low(0xABCD))
	assert.Equal(t, uint8(0xAB), High(0xABCD))
	assert.Equal(t, uint8(0x00), Low(0xFF00))
	assert.Equal(t, uint8(0xFF), High(0xFF00))
}

func TestCheckedAdd(t *testing.T) {
	result, overflow := CheckedAdd(0xFF, 0x01)
	assert.Equal(t, uint8(0x00), result)
	assert.True(t, overflow)

	result, overflow = CheckedAdd(0x01, 0x01)
	assert.Equal(t, uint8(0x02), result)
	assert.False(t, overflow)

	result, overflow = CheckedAdd(0x80, 0x00)
	assert.Equal(t, uint8(0x80), result)
	assert.False(t, overflow)
}

func TestCheckedSub(t *testing.T) {
	result, borrow := CheckedSub(0x00, 0x01)
	assert.Equal(t, uint8(0xFF), result)
	assert.True(t, borrow)

	result, borrow = CheckedSub(0x01, 0x01)
	assert.Equal(t, uint8(0x00), result)
	assert.False(t, borrow)

	result, borrow = CheckedSub(0xFF, 0xFF)
	assert.Equal(t, uint8(0x00), result)
	assert.False(t, borrow)
}

func TestIsSet(t *testing.T) {
	assert.False(t, IsSet(0, 0b10101010))
	assert.True(t, IsSet(1, 0b10101010))
	assert.True(t, IsSet(7, 0b10101010))
	assert.False(t, IsSet(8, 0b10101010), "index beyond width of byte shifts to 0")
}

func TestIsSet16(t *testing.T) {
	assert.False(t, IsSet16(0, 0xAAAA))
	assert.True(t, IsSet16(1, 0xAAAA))
	assert.True(t, IsSet16(15, 0xAAAA))
}

func TestGetBitValue(t *testing.T) {
	assert.Equal(t, uint8(0), GetBitValue(0, 0b10101010))
	assert.Equal(t, uint8(1), GetBitValue(1, 0b10101010))
	assert.Equal(t, uint8(1), GetBitValue(7, 0b10101010))
}

func TestSetAndClear(t *testing.T) {
	assert.Equal(t, uint8(0b10101011), Set(0, 0b10101010))
	assert.Equal(t, uint8(0b10101010), Set(1, 0b10101010), "setting an already-set bit is a no-op")

	assert.Equal(t, uint8(0b10101000), Clear(1, 0b10101010))
	assert.Equal(t, uint8(0b00101010), Clear(7, 0b10101010))
	assert.Equal(t, uint8(0b10101010), Clear(0, 0b10101010), "clearing an already-clear bit is a no-op")
}

func TestReset(t *testing.T) {
	assert.Equal(t, Clear(3, 0b11110000), Reset(3, 0b11110000))
}

func TestExtractBits(t *testing.T) {
	assert.Equal(t, uint8(0b101), ExtractBits(0b11010110, 6, 4))
	assert.Equal(t, uint8(0b10110), ExtractBits(0b11010110, 4, 0))
	assert.Equal(t, uint8(0b1101), ExtractBits(0b11010110, 7, 4))
}
