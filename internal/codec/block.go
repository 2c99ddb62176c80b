package codec

import (
	"errors"
	"fmt"

	"github.com/dbehnke/fecsim/internal/correction"
)

// BlockCodec applies RS(n,k) to a bitstream
//
// Encoding:
// - Bits are packed MSB first, the last byte zero padded
// - Bytes are split into k-byte blocks, the last block zero padded
// - Every block is encoded and the codewords are unpacked back to bits
//
// The encoded length is therefore ceil(ceil(bits/8)/k) * n * 8 bits and the
// decoded output keeps the padding.
type BlockCodec struct {
	rs *correction.ReedSolomon
}

// NewBlockCodec creates a block codec for RS(n,k)
func NewBlockCodec(n, k int) (*BlockCodec, error) {
	rs, err := correction.NewReedSolomon(n, k)
	if err != nil {
		return nil, err
	}
	return &BlockCodec{rs: rs}, nil
}

// Name returns the display name, e.g. ReedSolomon(n=15, k=11)
func (c *BlockCodec) Name() string { return c.rs.String() }

// Soft is always false, Reed-Solomon only consumes hard bits
func (c *BlockCodec) Soft() bool { return false }

// ReedSolomon returns the underlying byte codec
func (c *BlockCodec) ReedSolomon() *correction.ReedSolomon { return c.rs }

// EncodedLength returns the encoded size in bits of a message of msgBits bits
func (c *BlockCodec) EncodedLength(msgBits int) int {
	nBytes := (msgBits + 7) / 8
	blocks := (nBytes + c.rs.K() - 1) / c.rs.K()
	return blocks * c.rs.N() * 8
}

// Encode RS encodes the bitstream block by block
func (c *BlockCodec) Encode(in Bitstream) (Bitstream, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	n, k := c.rs.N(), c.rs.K()
	data := BitsToBytes(in)
	blocks := (len(data) + k - 1) / k

	out := make([]uint8, 0, blocks*n)
	block := make([]uint8, k)
	for b := 0; b < blocks; b++ {
		clear(block)
		copy(block, data[b*k:])

		codeword, err := c.rs.Encode(block)
		if err != nil {
			return nil, err
		}
		out = append(out, codeword...)
	}

	return BytesToBits(out), nil
}

// DecodeHard RS decodes every block. Blocks that fail keep their uncorrected
// data bytes, are counted in FailedBlocks and clear Reliable.
func (c *BlockCodec) DecodeHard(received Bitstream) (*Result, error) {
	n, k := c.rs.N(), c.rs.K()
	if len(received)%(8*n) != 0 {
		return nil, fmt.Errorf("%w: %d bits is not a whole number of %d-byte codewords", ErrInvalidLength, len(received), n)
	}
	if err := received.Validate(); err != nil {
		return nil, err
	}

	data := BitsToBytes(received)
	blocks := len(data) / n
	out := make([]uint8, 0, blocks*k)
	result := &Result{Reliable: true}

	for b := 0; b < blocks; b++ {
		decoded, corrected, err := c.rs.Decode(data[b*n : (b+1)*n])
		switch {
		case errors.Is(err, correction.ErrUncorrectable):
			result.FailedBlocks++
			result.Reliable = false
		case err != nil:
			return nil, err
		}
		result.CorrectedSymbols += corrected
		out = append(out, decoded...)
	}

	result.Bits = BytesToBits(out)
	return result, nil
}
