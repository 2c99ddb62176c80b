package channel

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/dbehnke/fecsim/internal/codec"
)

var (
	// ErrInvalidProbability is returned for a flip probability outside [0,1]
	ErrInvalidProbability = errors.New("channel: bit flip probability must be in [0,1]")

	// ErrInvalidParameter is returned for a negative or non-finite noise sigma
	ErrInvalidParameter = errors.New("channel: noise sigma must be finite and >= 0")
)

// BitFlipChannel is a binary symmetric channel
//
// Every bit is flipped independently with probability p.
type BitFlipChannel struct {
	p    float64
	dist distuv.Bernoulli
}

// NewBitFlipChannel creates a binary symmetric channel drawing from src
func NewBitFlipChannel(p float64, src rand.Source) (*BitFlipChannel, error) {
	if math.IsNaN(p) || p < 0 || p > 1 {
		return nil, fmt.Errorf("%w: %v", ErrInvalidProbability, p)
	}
	return &BitFlipChannel{
		p:    p,
		dist: distuv.Bernoulli{P: p, Src: src},
	}, nil
}

// Probability returns p
func (c *BitFlipChannel) Probability() float64 { return c.p }

// Transmit returns a corrupted copy of bits and the number of flipped bits
func (c *BitFlipChannel) Transmit(bits codec.Bitstream) (codec.Bitstream, int) {
	out := bits.Clone()
	if c.p == 0 {
		return out, 0
	}

	flips := 0
	for i := range out {
		if c.dist.Rand() == 1 {
			out[i] ^= 1
			flips++
		}
	}
	return out, flips
}

// GaussianChannel turns bits into noisy probabilities
//
// Bit b is sent as b + N(0, sigma) and clipped to [0,1], so 1 stays the
// confident "1" end of the scale.
type GaussianChannel struct {
	sigma float64
	dist  distuv.Normal
}

// NewGaussianChannel creates an additive Gaussian noise channel drawing from src
func NewGaussianChannel(sigma float64, src rand.Source) (*GaussianChannel, error) {
	if math.IsNaN(sigma) || math.IsInf(sigma, 0) || sigma < 0 {
		return nil, fmt.Errorf("%w: %v", ErrInvalidParameter, sigma)
	}
	return &GaussianChannel{
		sigma: sigma,
		dist:  distuv.Normal{Mu: 0, Sigma: sigma, Src: src},
	}, nil
}

// Sigma returns the noise standard deviation
func (c *GaussianChannel) Sigma() float64 { return c.sigma }

// Transmit returns one clipped probability per input bit
func (c *GaussianChannel) Transmit(bits codec.Bitstream) []float64 {
	out := make([]float64, len(bits))
	for i, bit := range bits {
		v := float64(bit)
		if c.sigma > 0 {
			v += c.dist.Rand()
		}
		out[i] = math.Min(1, math.Max(0, v))
	}
	return out
}
