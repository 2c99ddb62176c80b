package codec

import "fmt"

// ViterbiCodec pairs a convolutional encoder with its Viterbi decoder
type ViterbiCodec struct {
	encoder *ConvolutionalEncoder
	decoder *ViterbiDecoder
}

// NewViterbiCodec creates a codec for constraint length 2 or 5
func NewViterbiCodec(constraintLength int, soft bool) (*ViterbiCodec, error) {
	encoder, err := NewConvolutionalEncoder(constraintLength)
	if err != nil {
		return nil, err
	}
	decoder, err := NewViterbiDecoder(constraintLength, soft)
	if err != nil {
		return nil, err
	}
	return &ViterbiCodec{encoder: encoder, decoder: decoder}, nil
}

// Name returns the display name
func (c *ViterbiCodec) Name() string {
	return fmt.Sprintf("Viterbi(constraint length k=%d, soft decoding=%t)", c.encoder.ConstraintLength(), c.decoder.Soft())
}

// Soft reports whether the decoder was configured for soft decisions
func (c *ViterbiCodec) Soft() bool { return c.decoder.Soft() }

// ConstraintLength returns K
func (c *ViterbiCodec) ConstraintLength() int { return c.encoder.ConstraintLength() }

// EncodedLength returns the encoded size in bits
func (c *ViterbiCodec) EncodedLength(msgBits int) int { return msgBits * CONV_RATE_INVERSE }

// Encode convolves the input
func (c *ViterbiCodec) Encode(in Bitstream) (Bitstream, error) {
	return c.encoder.Encode(in)
}

// DecodeHard decodes hard bits with the configured metric
func (c *ViterbiCodec) DecodeHard(received Bitstream) (*Result, error) {
	decoded, err := c.decoder.Decode(received)
	if err != nil {
		return nil, err
	}
	return c.result(received, decoded), nil
}

// DecodeSoft decodes bit probabilities with the squared error metric
func (c *ViterbiCodec) DecodeSoft(received []float64) (*Result, error) {
	decoded, err := c.decoder.DecodeSoft(received)
	if err != nil {
		return nil, err
	}
	return c.result(HardDecision(received), decoded), nil
}

// result counts the channel bits the decoder overrode by re-encoding its
// decision and comparing against the hard-sliced input
func (c *ViterbiCodec) result(received, decoded Bitstream) *Result {
	reencoded := c.encoder.trellis.encode(decoded)
	return &Result{
		Bits:          decoded,
		CorrectedBits: HammingDistance(received, reencoded),
		Reliable:      true,
	}
}
