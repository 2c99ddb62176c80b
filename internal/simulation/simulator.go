package simulation

import (
	"errors"
	"fmt"
	"log"
	"math/rand/v2"
	"time"

	"github.com/dbehnke/fecsim/internal/channel"
	"github.com/dbehnke/fecsim/internal/codec"
	"github.com/dbehnke/fecsim/internal/database"
	"github.com/dbehnke/fecsim/internal/metrics"
)

// ErrDecodingMode is returned when a codec's soft flag does not match the simulator
var ErrDecodingMode = errors.New("simulation: codec decoding mode does not match simulator")

// Codec is the part of every codec the simulators use
type Codec interface {
	Name() string
	Soft() bool
	Encode(codec.Bitstream) (codec.Bitstream, error)
}

// HardCodec decodes hard bits
type HardCodec interface {
	Codec
	DecodeHard(codec.Bitstream) (*codec.Result, error)
}

// SoftCodec decodes bit probabilities
type SoftCodec interface {
	Codec
	DecodeSoft([]float64) (*codec.Result, error)
}

// staged codecs expose the bits their inner stage should recover
type staged interface {
	EncodeOuter(codec.Bitstream) (codec.Bitstream, error)
}

// Config holds simulator options
type Config struct {
	Seed    uint64             // Seed of the simulator's own random source
	Logger  *log.Logger        // Optional, nil disables logging
	Metrics *metrics.Collector // Optional, nil disables metrics
	Debug   bool               // Log every bitstream of every trial
}

// newSource builds the PCG source owned by one simulator
func newSource(seed uint64) rand.Source {
	return rand.NewPCG(seed, seed^0x9E3779B97F4A7C15)
}

// HardDecodingNoisyChannelSimulator sends codewords through a bit flip channel
type HardDecodingNoisyChannelSimulator struct {
	codec   HardCodec
	src     rand.Source
	logger  *log.Logger
	metrics *metrics.Collector
	debug   bool
}

// NewHardDecodingNoisyChannelSimulator creates a simulator seeded with 0
func NewHardDecodingNoisyChannelSimulator(c HardCodec) (*HardDecodingNoisyChannelSimulator, error) {
	return NewHardDecodingNoisyChannelSimulatorWithConfig(c, Config{})
}

// NewHardDecodingNoisyChannelSimulatorWithConfig creates a simulator with options
func NewHardDecodingNoisyChannelSimulatorWithConfig(c HardCodec, config Config) (*HardDecodingNoisyChannelSimulator, error) {
	if c.Soft() {
		return nil, fmt.Errorf("%w: %s is configured for soft decoding", ErrDecodingMode, c.Name())
	}
	return &HardDecodingNoisyChannelSimulator{
		codec:   c,
		src:     newSource(config.Seed),
		logger:  config.Logger,
		metrics: config.Metrics,
		debug:   config.Debug,
	}, nil
}

// Simulate encodes bitstring, flips every transmitted bit with probability p,
// decodes and compares
func (s *HardDecodingNoisyChannelSimulator) Simulate(bitstring string, p float64) (*Stats, error) {
	msg, err := codec.ParseBitstring(bitstring)
	if err != nil {
		return nil, err
	}
	ch, err := channel.NewBitFlipChannel(p, s.src)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	encoded, err := s.codec.Encode(msg)
	if err != nil {
		return nil, err
	}
	received, flips := ch.Transmit(encoded)
	result, err := s.codec.DecodeHard(received)
	if err != nil {
		return nil, err
	}

	stats, err := evaluate(s.codec, msg, encoded, flips, result)
	if err != nil {
		return nil, err
	}
	stats.Duration = time.Since(start)

	s.metrics.ObserveTrial(stats.Codec, database.ModeHard, stats.ChannelBitErrors, stats.ResidualBitErrors, stats.Uncorrectable, stats.Duration)
	if s.logger != nil && s.debug {
		s.logger.Printf("%s p=%.4f", stats.Codec, p)
		s.logger.Printf("Input bitstring:   %s", msg)
		s.logger.Printf("Encoded bitstring: %s", encoded)
		s.logger.Printf("Noised bitstring:  %s", received)
		s.logger.Printf("Decoded bitstring: %s", stats.Decoded)
		s.logger.Printf("%d bits flipped, %d residual errors", flips, stats.ResidualBitErrors)
	}

	return stats, nil
}

// SoftDecodingNoisyChannelSimulator sends codewords through a Gaussian channel
type SoftDecodingNoisyChannelSimulator struct {
	codec   SoftCodec
	src     rand.Source
	logger  *log.Logger
	metrics *metrics.Collector
	debug   bool
}

// NewSoftDecodingNoisyChannelSimulator creates a simulator seeded with 0
func NewSoftDecodingNoisyChannelSimulator(c SoftCodec) (*SoftDecodingNoisyChannelSimulator, error) {
	return NewSoftDecodingNoisyChannelSimulatorWithConfig(c, Config{})
}

// NewSoftDecodingNoisyChannelSimulatorWithConfig creates a simulator with options
func NewSoftDecodingNoisyChannelSimulatorWithConfig(c SoftCodec, config Config) (*SoftDecodingNoisyChannelSimulator, error) {
	if !c.Soft() {
		return nil, fmt.Errorf("%w: %s is configured for hard decoding", ErrDecodingMode, c.Name())
	}
	return &SoftDecodingNoisyChannelSimulator{
		codec:   c,
		src:     newSource(config.Seed),
		logger:  config.Logger,
		metrics: config.Metrics,
		debug:   config.Debug,
	}, nil
}

// Simulate encodes bitstring, adds N(0, sigma) to every transmitted bit,
// clips to [0,1], soft decodes and compares
func (s *SoftDecodingNoisyChannelSimulator) Simulate(bitstring string, sigma float64) (*Stats, error) {
	msg, err := codec.ParseBitstring(bitstring)
	if err != nil {
		return nil, err
	}
	ch, err := channel.NewGaussianChannel(sigma, s.src)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	encoded, err := s.codec.Encode(msg)
	if err != nil {
		return nil, err
	}
	received := ch.Transmit(encoded)
	flips := codec.HammingDistance(codec.HardDecision(received), encoded)
	result, err := s.codec.DecodeSoft(received)
	if err != nil {
		return nil, err
	}

	stats, err := evaluate(s.codec, msg, encoded, flips, result)
	if err != nil {
		return nil, err
	}
	stats.Duration = time.Since(start)

	s.metrics.ObserveTrial(stats.Codec, database.ModeSoft, stats.ChannelBitErrors, stats.ResidualBitErrors, stats.Uncorrectable, stats.Duration)
	if s.logger != nil && s.debug {
		s.logger.Printf("%s sigma=%.4f", stats.Codec, sigma)
		s.logger.Printf("Input bitstring:   %s", msg)
		s.logger.Printf("Encoded bitstring: %s", encoded)
		s.logger.Printf("Noised bit probabilities: %.3f", received)
		s.logger.Printf("Decoded bitstring: %s", stats.Decoded)
		s.logger.Printf("%d bits wrong after slicing, %d residual errors", flips, stats.ResidualBitErrors)
	}

	return stats, nil
}
