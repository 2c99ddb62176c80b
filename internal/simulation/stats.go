package simulation

import (
	"fmt"
	"strings"
	"time"

	"github.com/dbehnke/fecsim/internal/codec"
)

// Stats compares the original and recovered message of one trial
type Stats struct {
	Codec             string  `yaml:"codec"`
	MessageBits       int     `yaml:"message_bits"`
	TransmittedBits   int     `yaml:"transmitted_bits"`
	ChannelBitErrors  int     `yaml:"channel_bit_errors"`
	BERBefore         float64 `yaml:"ber_before"`
	ResidualBitErrors int     `yaml:"residual_bit_errors"`
	BERAfter          float64 `yaml:"ber_after"`
	CorrectedBits     int     `yaml:"corrected_bits"`
	CorrectedSymbols  int     `yaml:"corrected_symbols"`
	Uncorrectable     bool    `yaml:"uncorrectable"`

	// InnerResidualBitErrors counts inner stage errors handed to the outer
	// decoder of a concatenated codec, -1 for single stage codecs
	InnerResidualBitErrors int `yaml:"inner_residual_bit_errors"`

	Decoded  string        `yaml:"decoded"`
	Duration time.Duration `yaml:"-"`
}

// evaluate builds the statistics of one decode
func evaluate(c Codec, msg, encoded codec.Bitstream, channelErrors int, result *codec.Result) (*Stats, error) {
	decoded := result.Bits
	if len(decoded) > len(msg) {
		decoded = decoded[:len(msg)]
	}
	residual := codec.HammingDistance(msg, decoded) + len(msg) - len(decoded)

	stats := &Stats{
		Codec:                  c.Name(),
		MessageBits:            len(msg),
		TransmittedBits:        len(encoded),
		ChannelBitErrors:       channelErrors,
		BERBefore:              ratio(channelErrors, len(encoded)),
		ResidualBitErrors:      residual,
		BERAfter:               ratio(residual, len(msg)),
		CorrectedBits:          result.CorrectedBits,
		CorrectedSymbols:       result.CorrectedSymbols,
		Uncorrectable:          !result.Reliable,
		InnerResidualBitErrors: -1,
		Decoded:                decoded.String(),
	}

	if s, ok := c.(staged); ok && result.Inner != nil {
		outer, err := s.EncodeOuter(msg)
		if err != nil {
			return nil, err
		}
		stats.InnerResidualBitErrors = codec.HammingDistance(outer, result.Inner.Bits)
	}

	return stats, nil
}

func ratio(errors, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(errors) / float64(total)
}

// String returns a multi-line report
func (s *Stats) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s\n", s.Codec)
	fmt.Fprintf(&sb, "  message bits:      %d\n", s.MessageBits)
	fmt.Fprintf(&sb, "  transmitted bits:  %d\n", s.TransmittedBits)
	fmt.Fprintf(&sb, "  channel errors:    %d (BER %.4f)\n", s.ChannelBitErrors, s.BERBefore)
	fmt.Fprintf(&sb, "  residual errors:   %d (BER %.4f)\n", s.ResidualBitErrors, s.BERAfter)
	fmt.Fprintf(&sb, "  corrected bits:    %d\n", s.CorrectedBits)
	fmt.Fprintf(&sb, "  corrected symbols: %d\n", s.CorrectedSymbols)
	if s.InnerResidualBitErrors >= 0 {
		fmt.Fprintf(&sb, "  inner residual:    %d\n", s.InnerResidualBitErrors)
	}
	fmt.Fprintf(&sb, "  uncorrectable:     %t\n", s.Uncorrectable)
	fmt.Fprintf(&sb, "  decoded:           %s", s.Decoded)
	return sb.String()
}
