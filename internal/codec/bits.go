package codec

import (
	"fmt"
	"strings"
)

// Bitstream is an ordered sequence of bits, one 0/1 value per element
type Bitstream []uint8

// Bit masks for MSB-first packing
var BIT_MASK_TABLE = [8]uint8{0x80, 0x40, 0x20, 0x10, 0x08, 0x04, 0x02, 0x01}

// ParseBitstring converts an ASCII "0"/"1" string into a Bitstream
func ParseBitstring(s string) (Bitstream, error) {
	bits := make(Bitstream, len(s))
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '0':
			bits[i] = 0
		case '1':
			bits[i] = 1
		default:
			return nil, fmt.Errorf("%w: character %q at position %d", ErrInvalidBitstring, s[i], i)
		}
	}
	return bits, nil
}

// String returns the ASCII "0"/"1" form
func (b Bitstream) String() string {
	var sb strings.Builder
	sb.Grow(len(b))
	for _, bit := range b {
		if bit != 0 {
			sb.WriteByte('1')
		} else {
			sb.WriteByte('0')
		}
	}
	return sb.String()
}

// Validate checks that every element is 0 or 1
func (b Bitstream) Validate() error {
	for i, bit := range b {
		if bit > 1 {
			return fmt.Errorf("%w: value %d at position %d", ErrInvalidBitstring, bit, i)
		}
	}
	return nil
}

// Clone returns an independent copy
func (b Bitstream) Clone() Bitstream {
	out := make(Bitstream, len(b))
	copy(out, b)
	return out
}

// Probabilities maps each bit to a certain probability (0.0 or 1.0)
func (b Bitstream) Probabilities() []float64 {
	p := make([]float64, len(b))
	for i, bit := range b {
		p[i] = float64(bit)
	}
	return p
}

// BytesToBits unpacks bytes MSB first
func BytesToBits(data []uint8) Bitstream {
	bits := make(Bitstream, len(data)*8)
	for i := range bits {
		if readBit(data, uint32(i)) {
			bits[i] = 1
		}
	}
	return bits
}

// BitsToBytes packs bits MSB first; a trailing partial byte is zero padded
func BitsToBytes(bits Bitstream) []uint8 {
	out := make([]uint8, (len(bits)+7)/8)
	for i, bit := range bits {
		writeBit(out, uint32(i), bit != 0)
	}
	return out
}

// HammingDistance counts positions where a and b differ over their common length
func HammingDistance(a, b Bitstream) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	dist := 0
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			dist++
		}
	}
	return dist
}

// HardDecision slices probabilities at 0.5
func HardDecision(probs []float64) Bitstream {
	bits := make(Bitstream, len(probs))
	for i, p := range probs {
		if p >= 0.5 {
			bits[i] = 1
		}
	}
	return bits
}

// writeBit writes a bit to a byte array at the specified bit position
func writeBit(data []uint8, pos uint32, bit bool) {
	bytePos := pos >> 3
	bitPos := pos & 7

	if bytePos < uint32(len(data)) {
		if bit {
			data[bytePos] |= BIT_MASK_TABLE[bitPos]
		} else {
			data[bytePos] &= ^BIT_MASK_TABLE[bitPos]
		}
	}
}

// readBit reads a bit from a byte array at the specified bit position
func readBit(data []uint8, pos uint32) bool {
	bytePos := pos >> 3
	bitPos := pos & 7

	if bytePos < uint32(len(data)) {
		return (data[bytePos] & BIT_MASK_TABLE[bitPos]) != 0
	}
	return false
}
