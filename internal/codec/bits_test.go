package codec

import (
	"bytes"
	"errors"
	"testing"
)

// TestParseBitstring tests ASCII parsing and formatting
func TestParseBitstring(t *testing.T) {
	tests := []struct {
		input string
		valid bool
	}{
		{"", true},
		{"0", true},
		{"1011", true},
		{"0000111100001111", true},
		{"10a1", false},
		{"1 0", false},
		{"2", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			bits, err := ParseBitstring(tt.input)
			if !tt.valid {
				if !errors.Is(err, ErrInvalidBitstring) {
					t.Errorf("ParseBitstring(%q) error = %v, want ErrInvalidBitstring", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseBitstring(%q) error = %v", tt.input, err)
			}
			if bits.String() != tt.input {
				t.Errorf("String() = %q, want %q", bits.String(), tt.input)
			}
		})
	}
}

// TestBitstreamValidate rejects values other than 0 and 1
func TestBitstreamValidate(t *testing.T) {
	if err := (Bitstream{0, 1, 1}).Validate(); err != nil {
		t.Errorf("valid bitstream error = %v", err)
	}
	if err := (Bitstream{0, 2}).Validate(); !errors.Is(err, ErrInvalidBitstring) {
		t.Errorf("Validate error = %v, want ErrInvalidBitstring", err)
	}
}

// TestBytesBitsConversion tests MSB-first packing
func TestBytesBitsConversion(t *testing.T) {
	data := []uint8{0xA5, 0x01, 0x80}
	bits := BytesToBits(data)
	if bits.String() != "101001010000000110000000" {
		t.Errorf("BytesToBits = %s", bits)
	}
	if !bytes.Equal(BitsToBytes(bits), data) {
		t.Errorf("BitsToBytes round trip = %X", BitsToBytes(bits))
	}

	// Partial byte is zero padded on the right
	partial, _ := ParseBitstring("1011")
	if got := BitsToBytes(partial); !bytes.Equal(got, []uint8{0xB0}) {
		t.Errorf("BitsToBytes(1011) = %X, want B0", got)
	}
}

// TestHammingDistance counts differing positions over the common length
func TestHammingDistance(t *testing.T) {
	a, _ := ParseBitstring("110010")
	b, _ := ParseBitstring("100011")
	if d := HammingDistance(a, b); d != 2 {
		t.Errorf("HammingDistance = %d, want 2", d)
	}
	if d := HammingDistance(a, b[:3]); d != 1 {
		t.Errorf("HammingDistance over prefix = %d, want 1", d)
	}
}

// TestHardDecision slices at 0.5
func TestHardDecision(t *testing.T) {
	got := HardDecision([]float64{0, 0.49, 0.5, 0.51, 1})
	if got.String() != "00111" {
		t.Errorf("HardDecision = %s, want 00111", got)
	}

	bits, _ := ParseBitstring("0110")
	if HardDecision(bits.Probabilities()).String() != "0110" {
		t.Error("Probabilities should slice back to the same bits")
	}
}
