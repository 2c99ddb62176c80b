package main

import (
	"context"
	"fmt"
	"io"
	"log"

	"gopkg.in/yaml.v3"

	"github.com/dbehnke/fecsim/internal/codec"
	"github.com/dbehnke/fecsim/internal/config"
	"github.com/dbehnke/fecsim/internal/database"
	"github.com/dbehnke/fecsim/internal/metrics"
	"github.com/dbehnke/fecsim/internal/simulation"
)

// sweepReport is the yaml document written by -format yaml
type sweepReport struct {
	Codec       string                  `yaml:"codec"`
	Mode        string                  `yaml:"mode"`
	Trials      uint32                  `yaml:"trials"`
	MessageBits uint32                  `yaml:"message_bits"`
	Seed        uint64                  `yaml:"seed"`
	Points      []simulation.SweepPoint `yaml:"points"`
}

// buildCodec creates the codec described by the [Codec] section
func buildCodec(cfg *config.Config) (simulation.Codec, error) {
	n := int(cfg.GetCodecN())
	k := int(cfg.GetCodecK())
	vitK := int(cfg.GetConstraintLength())

	var (
		c   simulation.Codec
		err error
	)
	switch cfg.GetCodecType() {
	case config.CodecReedSolomon:
		c, err = codec.NewBlockCodec(n, k)
	case config.CodecViterbi:
		c, err = codec.NewViterbiCodec(vitK, cfg.GetSoft())
	case config.CodecConcatenated:
		c, err = codec.NewConcatenatedCodec(n, k, vitK, cfg.GetSoft())
	default:
		err = fmt.Errorf("unknown codec type %q", cfg.GetCodecType())
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

func runSweep(ctx context.Context, w io.Writer, format string, cfg *config.Config, logger *log.Logger, collector *metrics.Collector, db *database.DB) error {
	c, err := buildCodec(cfg)
	if err != nil {
		return err
	}

	var recorder simulation.RunRecorder
	if db != nil {
		recorder = db.Runs()
	}

	sweeper, err := simulation.NewSweeper(c, simulation.SweepConfig{
		Points:      cfg.GetChannelPoints(),
		Trials:      int(cfg.GetTrials()),
		MessageBits: int(cfg.GetMessageBits()),
		Workers:     int(cfg.GetWorkers()),
		Seed:        cfg.GetSeed(),
	}, simulation.Config{Logger: logger, Metrics: collector}, recorder)
	if err != nil {
		return err
	}

	logger.Printf("Sweeping %s (%s) over %d points, %d trials each",
		c.Name(), sweeper.Mode(), len(cfg.GetChannelPoints()), cfg.GetTrials())

	points, err := sweeper.Run(ctx)
	if err != nil {
		return err
	}

	report := sweepReport{
		Codec:       c.Name(),
		Mode:        sweeper.Mode(),
		Trials:      cfg.GetTrials(),
		MessageBits: cfg.GetMessageBits(),
		Seed:        cfg.GetSeed(),
		Points:      points,
	}
	if format == FORMAT_YAML {
		return yaml.NewEncoder(w).Encode(report)
	}
	return writeSweepText(w, report)
}

func writeSweepText(w io.Writer, report sweepReport) error {
	parameter := "p"
	if report.Mode == database.ModeSoft {
		parameter = "sigma"
	}

	fmt.Fprintf(w, "%s, %s decoding, %d trials of %d bits\n", report.Codec, report.Mode, report.Trials, report.MessageBits)
	fmt.Fprintf(w, "%10s %14s %14s %14s %14s\n", parameter, "BER before", "BER after", "std dev", "uncorrectable")
	for _, p := range report.Points {
		_, err := fmt.Fprintf(w, "%10.4f %14.4e %14.4e %14.4e %14d\n",
			p.Parameter, p.MeanBERBefore, p.MeanBERAfter, p.StdDevBERAfter, p.UncorrectableTrials)
		if err != nil {
			return err
		}
	}
	return nil
}
