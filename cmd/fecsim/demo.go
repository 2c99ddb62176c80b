package main

import (
	"fmt"
	"io"
	"log"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dbehnke/fecsim/internal/codec"
	"github.com/dbehnke/fecsim/internal/simulation"
)

const demoBitstring = "1101001010110100101010101010101010101010101011"

// demoResult is one scenario of the demonstration
type demoResult struct {
	Simulator string            `yaml:"simulator"`
	Noise     float64           `yaml:"noise"`
	Stats     *simulation.Stats `yaml:"stats"`
}

// runDemo sends one fixed bitstring through every codec family: hard
// decoders over a p=0.25 bit flip channel and soft decoders over sigma=0.5
// Gaussian noise
func runDemo(w io.Writer, format string, seed uint64, logger *log.Logger, debug bool) error {
	simConfig := simulation.Config{Seed: seed, Logger: logger, Debug: debug}

	rs, err := codec.NewBlockCodec(5, 3)
	if err != nil {
		return err
	}
	hardViterbi, err := codec.NewViterbiCodec(5, false)
	if err != nil {
		return err
	}
	softViterbi, err := codec.NewViterbiCodec(5, true)
	if err != nil {
		return err
	}
	hardConcatenated, err := codec.NewConcatenatedCodec(5, 3, 5, false)
	if err != nil {
		return err
	}
	softConcatenated, err := codec.NewConcatenatedCodec(5, 3, 5, true)
	if err != nil {
		return err
	}

	var results []demoResult

	for _, c := range []simulation.HardCodec{rs, hardViterbi, hardConcatenated} {
		sim, err := simulation.NewHardDecodingNoisyChannelSimulatorWithConfig(c, simConfig)
		if err != nil {
			return err
		}
		stats, err := sim.Simulate(demoBitstring, 0.25)
		if err != nil {
			return err
		}
		results = append(results, demoResult{Simulator: "hard", Noise: 0.25, Stats: stats})
	}

	for _, c := range []simulation.SoftCodec{softViterbi, softConcatenated} {
		sim, err := simulation.NewSoftDecodingNoisyChannelSimulatorWithConfig(c, simConfig)
		if err != nil {
			return err
		}
		stats, err := sim.Simulate(demoBitstring, 0.5)
		if err != nil {
			return err
		}
		results = append(results, demoResult{Simulator: "soft", Noise: 0.5, Stats: stats})
	}

	if format == FORMAT_YAML {
		return yaml.NewEncoder(w).Encode(results)
	}

	for _, r := range results {
		fmt.Fprintf(w, "----- %s DECODING NOISY CHANNEL SIMULATOR (noise %.2f) -----\n", strings.ToUpper(r.Simulator), r.Noise)
		fmt.Fprintf(w, "input:             %s\n", demoBitstring)
		fmt.Fprintf(w, "%s\n\n", r.Stats)
	}
	return nil
}
