package codec

import (
	"fmt"
	"math"
)

// ViterbiDecoder recovers the most likely input of a ConvolutionalEncoder
//
// Decoder parameters:
//   - Hard decision: branch metric is the Hamming distance of the bit pair
//   - Soft decision: branch metric is the squared error sum((p - e)^2) between
//     the received bit probabilities p and the expected bits e
//   - Add-compare-select keeps the smaller metric, ties go to the lower
//     numbered predecessor state
//   - Start state 0, traceback from the smallest terminal metric
type ViterbiDecoder struct {
	trellis *Trellis
	soft    bool
}

// NewViterbiDecoder creates a decoder for constraint length 2 or 5
func NewViterbiDecoder(constraintLength int, soft bool) (*ViterbiDecoder, error) {
	t, err := LookupTrellis(constraintLength)
	if err != nil {
		return nil, err
	}
	return &ViterbiDecoder{trellis: t, soft: soft}, nil
}

// ConstraintLength returns K
func (d *ViterbiDecoder) ConstraintLength() int { return d.trellis.k }

// Soft reports whether Decode uses the soft metric
func (d *ViterbiDecoder) Soft() bool { return d.soft }

// Decode decodes a hard bitstream with the metric chosen at construction.
// A soft decoder treats every bit as a certain probability.
func (d *ViterbiDecoder) Decode(received Bitstream) (Bitstream, error) {
	if d.soft {
		if err := received.Validate(); err != nil {
			return nil, err
		}
		return d.DecodeSoft(received.Probabilities())
	}
	return d.DecodeHard(received)
}

// DecodeHard decodes with the Hamming distance metric
func (d *ViterbiDecoder) DecodeHard(received Bitstream) (Bitstream, error) {
	if len(received)%CONV_RATE_INVERSE != 0 {
		return nil, fmt.Errorf("%w: %d bits is not a whole number of pairs", ErrInvalidLength, len(received))
	}
	if err := received.Validate(); err != nil {
		return nil, err
	}

	steps := len(received) / CONV_RATE_INVERSE
	branch := make([]float64, steps*4)
	for step := 0; step < steps; step++ {
		r1, r2 := received[2*step], received[2*step+1]
		for pair := uint8(0); pair < 4; pair++ {
			var dist float64
			if pair>>1 != r1 {
				dist++
			}
			if pair&1 != r2 {
				dist++
			}
			branch[step*4+int(pair)] = dist
		}
	}

	decoded, _ := d.trellis.viterbi(branch, steps)
	return decoded, nil
}

// DecodeSoft decodes bit probabilities in [0,1] with the squared error metric
func (d *ViterbiDecoder) DecodeSoft(received []float64) (Bitstream, error) {
	if len(received)%CONV_RATE_INVERSE != 0 {
		return nil, fmt.Errorf("%w: %d values is not a whole number of pairs", ErrInvalidLength, len(received))
	}
	for i, p := range received {
		if math.IsNaN(p) || p < 0 || p > 1 {
			return nil, fmt.Errorf("%w: %v at position %d", ErrInvalidSoftValue, p, i)
		}
	}

	steps := len(received) / CONV_RATE_INVERSE
	branch := make([]float64, steps*4)
	for step := 0; step < steps; step++ {
		p1, p2 := received[2*step], received[2*step+1]
		for pair := uint8(0); pair < 4; pair++ {
			e1 := float64(pair >> 1)
			e2 := float64(pair & 1)
			branch[step*4+int(pair)] = (p1-e1)*(p1-e1) + (p2-e2)*(p2-e2)
		}
	}

	decoded, _ := d.trellis.viterbi(branch, steps)
	return decoded, nil
}

// viterbi runs add-compare-select over steps trellis sections and traces back
// the survivor path. branch[step*4+pair] is the cost of expecting output pair
// at that step. Path metrics and survivors are flat arenas indexed by
// step*numStates+state. Returns the decoded bits and the final path metric.
func (t *Trellis) viterbi(branch []float64, steps int) (Bitstream, float64) {
	numStates := t.numStates
	metrics := make([]float64, (steps+1)*numStates)
	survivors := make([]uint16, steps*numStates)

	inf := math.Inf(1)
	for state := 1; state < numStates; state++ {
		metrics[state] = inf
	}

	for step := 0; step < steps; step++ {
		cur := metrics[step*numStates : (step+1)*numStates]
		nxt := metrics[(step+1)*numStates : (step+2)*numStates]
		bm := branch[step*4 : step*4+4]
		surv := survivors[step*numStates : (step+1)*numStates]

		for state := 0; state < numStates; state++ {
			input := int(t.inputBit(state))
			p0, p1 := t.predecessors(state)

			m0 := cur[p0] + bm[t.output[p0*2+input]]
			m1 := cur[p1] + bm[t.output[p1*2+input]]

			if m1 < m0 {
				nxt[state] = m1
				surv[state] = uint16(p1)
			} else {
				nxt[state] = m0
				surv[state] = uint16(p0)
			}
		}
	}

	final := metrics[steps*numStates:]
	best := 0
	for state := 1; state < numStates; state++ {
		if final[state] < final[best] {
			best = state
		}
	}

	decoded := make(Bitstream, steps)
	state := best
	for step := steps - 1; step >= 0; step-- {
		decoded[step] = t.inputBit(state)
		state = int(survivors[step*numStates+state])
	}

	return decoded, final[best]
}
