package codec

import "fmt"

// ConcatenatedCodec is an outer Reed-Solomon block code protected by an
// inner convolutional code. Encode is conv(RS(m)); decode is RS(Viterbi(r)).
type ConcatenatedCodec struct {
	outer *BlockCodec
	inner *ViterbiCodec
}

// NewConcatenatedCodec creates RS(n,k) over a K=vitK convolutional code
func NewConcatenatedCodec(n, k, constraintLength int, soft bool) (*ConcatenatedCodec, error) {
	outer, err := NewBlockCodec(n, k)
	if err != nil {
		return nil, err
	}
	inner, err := NewViterbiCodec(constraintLength, soft)
	if err != nil {
		return nil, err
	}
	return &ConcatenatedCodec{outer: outer, inner: inner}, nil
}

// Name returns the display name
func (c *ConcatenatedCodec) Name() string {
	return fmt.Sprintf("Concatenated(%s, %s)", c.outer.Name(), c.inner.Name())
}

// Soft reports whether the inner decoder uses soft decisions
func (c *ConcatenatedCodec) Soft() bool { return c.inner.Soft() }

// Outer returns the Reed-Solomon stage
func (c *ConcatenatedCodec) Outer() *BlockCodec { return c.outer }

// Inner returns the convolutional stage
func (c *ConcatenatedCodec) Inner() *ViterbiCodec { return c.inner }

// EncodedLength returns the encoded size in bits
func (c *ConcatenatedCodec) EncodedLength(msgBits int) int {
	return c.inner.EncodedLength(c.outer.EncodedLength(msgBits))
}

// EncodeOuter returns the RS encoded bits the inner stage is expected to recover
func (c *ConcatenatedCodec) EncodeOuter(in Bitstream) (Bitstream, error) {
	return c.outer.Encode(in)
}

// Encode RS encodes then convolves
func (c *ConcatenatedCodec) Encode(in Bitstream) (Bitstream, error) {
	outer, err := c.outer.Encode(in)
	if err != nil {
		return nil, err
	}
	return c.inner.Encode(outer)
}

// DecodeHard runs Viterbi then RS over hard bits
func (c *ConcatenatedCodec) DecodeHard(received Bitstream) (*Result, error) {
	inner, err := c.inner.DecodeHard(received)
	if err != nil {
		return nil, err
	}
	return c.decodeOuter(inner)
}

// DecodeSoft runs soft Viterbi then RS
func (c *ConcatenatedCodec) DecodeSoft(received []float64) (*Result, error) {
	inner, err := c.inner.DecodeSoft(received)
	if err != nil {
		return nil, err
	}
	return c.decodeOuter(inner)
}

func (c *ConcatenatedCodec) decodeOuter(inner *Result) (*Result, error) {
	outer, err := c.outer.DecodeHard(inner.Bits)
	if err != nil {
		return nil, err
	}
	outer.CorrectedBits = inner.CorrectedBits
	outer.Inner = inner
	return outer, nil
}
