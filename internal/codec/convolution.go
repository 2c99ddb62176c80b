package codec

import (
	"fmt"
	"math/bits"
)

// Convolutional coding for the inner FEC layer
//
// Code parameters:
// - Rate 1/2 convolutional code (1 input bit → 2 output bits)
// - Constraint length K=2 (2 states) or K=5 (16 states)
// - K=2 generators: G1=(1+X), G2=(1)
// - K=5 generators: G1=(1+X³+X⁴), G2=(1+X+X²+X⁴), the YSF/NXDN voice code
// - No tail bits: the register starts at zero and is not flushed
//
// Tap masks below have the current input in the most significant bit and the
// oldest register bit in bit 0.
const (
	CONV_RATE_INVERSE = 2
	CONV_K2           = 2
	CONV_K5           = 5
)

var convGenerators = map[int][2]uint32{
	CONV_K2: {0b11, 0b10},
	CONV_K5: {0b10011, 0b11101},
}

// Trellis is the state machine of a convolutional code. A state holds the
// previous K-1 input bits with the most recent bit in the high position.
// Tables are indexed by state*2 + input bit.
type Trellis struct {
	k          int
	numStates  int
	generators [2]uint32
	next       []uint16
	output     []uint8 // G1 output in bit 1, G2 output in bit 0
}

// trellises are built once and shared read-only by every encoder and decoder
var trellises = buildTrellises()

func buildTrellises() map[int]*Trellis {
	out := make(map[int]*Trellis, len(convGenerators))
	for k, g := range convGenerators {
		out[k] = newTrellis(k, g)
	}
	return out
}

func newTrellis(k int, g [2]uint32) *Trellis {
	numStates := 1 << (k - 1)
	t := &Trellis{
		k:          k,
		numStates:  numStates,
		generators: g,
		next:       make([]uint16, numStates*2),
		output:     make([]uint8, numStates*2),
	}

	for state := 0; state < numStates; state++ {
		for input := 0; input < 2; input++ {
			register := uint32(input<<(k-1) | state)
			o1 := bits.OnesCount32(register&g[0]) & 1
			o2 := bits.OnesCount32(register&g[1]) & 1

			t.next[state*2+input] = uint16(input<<(k-2) | state>>1)
			t.output[state*2+input] = uint8(o1<<1 | o2)
		}
	}

	return t
}

// LookupTrellis returns the shared trellis for a constraint length
func LookupTrellis(k int) (*Trellis, error) {
	t, ok := trellises[k]
	if !ok {
		return nil, fmt.Errorf("%w: %d (supported: %d, %d)", ErrUnsupportedConstraintLength, k, CONV_K2, CONV_K5)
	}
	return t, nil
}

// ConstraintLength returns K
func (t *Trellis) ConstraintLength() int { return t.k }

// NumStates returns 2^(K-1)
func (t *Trellis) NumStates() int { return t.numStates }

// Generators returns the two tap masks
func (t *Trellis) Generators() [2]uint32 { return t.generators }

// Next returns the state reached from state on input bit
func (t *Trellis) Next(state int, input uint8) int {
	return int(t.next[state*2+int(input&1)])
}

// Output returns the expected output pair for a transition
func (t *Trellis) Output(state int, input uint8) (uint8, uint8) {
	o := t.output[state*2+int(input&1)]
	return o >> 1, o & 1
}

// predecessors returns the two states that lead to state, lower index first
func (t *Trellis) predecessors(state int) (int, int) {
	p0 := (state << 1) & (t.numStates - 1)
	return p0, p0 | 1
}

// inputBit returns the input bit carried by every transition into state
func (t *Trellis) inputBit(state int) uint8 {
	return uint8(state >> (t.k - 2))
}

// encode runs the shift register over bits starting from the all-zero state
func (t *Trellis) encode(in Bitstream) Bitstream {
	out := make(Bitstream, len(in)*CONV_RATE_INVERSE)
	state := 0
	for i, bit := range in {
		idx := state*2 + int(bit&1)
		o := t.output[idx]
		out[2*i] = o >> 1
		out[2*i+1] = o & 1
		state = int(t.next[idx])
	}
	return out
}

// ConvolutionalEncoder is a rate 1/2 shift register encoder
type ConvolutionalEncoder struct {
	trellis *Trellis
}

// NewConvolutionalEncoder creates an encoder for constraint length 2 or 5
func NewConvolutionalEncoder(constraintLength int) (*ConvolutionalEncoder, error) {
	t, err := LookupTrellis(constraintLength)
	if err != nil {
		return nil, err
	}
	return &ConvolutionalEncoder{trellis: t}, nil
}

// ConstraintLength returns K
func (e *ConvolutionalEncoder) ConstraintLength() int { return e.trellis.k }

// Encode convolves the input; the output has two bits per input bit
func (e *ConvolutionalEncoder) Encode(in Bitstream) (Bitstream, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	return e.trellis.encode(in), nil
}
