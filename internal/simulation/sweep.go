package simulation

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math/rand/v2"
	"runtime"
	"strconv"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"

	"github.com/dbehnke/fecsim/internal/codec"
	"github.com/dbehnke/fecsim/internal/database"
	"github.com/dbehnke/fecsim/internal/metrics"
)

// ErrInvalidSweep is returned for a sweep without points, trials or message bits
var ErrInvalidSweep = errors.New("simulation: invalid sweep configuration")

// RunRecorder persists the aggregated points of a sweep
type RunRecorder interface {
	CreateBatch(runs []database.SimulationRun) error
}

// SweepConfig describes a BER curve measurement
type SweepConfig struct {
	Points      []float64 // Flip probabilities (hard codecs) or noise sigmas (soft codecs)
	Trials      int       // Independent trials per point
	MessageBits int       // Random message length per trial
	Workers     int       // Concurrent trials, <= 0 uses GOMAXPROCS
	Seed        uint64    // Base seed, every trial derives its own
}

// SweepPoint is the aggregate of all trials at one channel parameter
type SweepPoint struct {
	Parameter           float64 `yaml:"parameter"`
	Trials              int     `yaml:"trials"`
	MeanBERBefore       float64 `yaml:"mean_ber_before"`
	MeanBERAfter        float64 `yaml:"mean_ber_after"`
	StdDevBERAfter      float64 `yaml:"stddev_ber_after"`
	UncorrectableTrials int     `yaml:"uncorrectable_trials"`
}

// Sweeper runs independent trials over a list of channel parameters
type Sweeper struct {
	codec    Codec
	mode     string
	config   SweepConfig
	logger   *log.Logger
	metrics  *metrics.Collector
	recorder RunRecorder
}

// NewSweeper creates a sweep over c. Soft codecs are swept over Gaussian noise
// sigmas, hard codecs over bit flip probabilities. recorder may be nil.
func NewSweeper(c Codec, config SweepConfig, options Config, recorder RunRecorder) (*Sweeper, error) {
	if len(config.Points) == 0 || config.Trials < 1 || config.MessageBits < 1 {
		return nil, fmt.Errorf("%w: points=%d trials=%d message_bits=%d",
			ErrInvalidSweep, len(config.Points), config.Trials, config.MessageBits)
	}
	if config.Workers <= 0 {
		config.Workers = runtime.GOMAXPROCS(0)
	}

	mode := database.ModeHard
	if c.Soft() {
		if _, ok := c.(SoftCodec); !ok {
			return nil, fmt.Errorf("%w: %s cannot decode soft values", ErrDecodingMode, c.Name())
		}
		mode = database.ModeSoft
	} else if _, ok := c.(HardCodec); !ok {
		return nil, fmt.Errorf("%w: %s cannot decode hard bits", ErrDecodingMode, c.Name())
	}

	return &Sweeper{
		codec:    c,
		mode:     mode,
		config:   config,
		logger:   options.Logger,
		metrics:  options.Metrics,
		recorder: recorder,
	}, nil
}

// Mode returns "hard" or "soft"
func (s *Sweeper) Mode() string { return s.mode }

// Run executes every trial and returns one aggregate per point in input order.
// Cancelling ctx stops scheduling new trials and returns ctx.Err().
func (s *Sweeper) Run(ctx context.Context) ([]SweepPoint, error) {
	points := s.config.Points
	trials := s.config.Trials
	results := make([][]*Stats, len(points))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.config.Workers)

schedule:
	for pi, param := range points {
		results[pi] = make([]*Stats, trials)
		for trial := 0; trial < trials; trial++ {
			if gctx.Err() != nil {
				break schedule
			}
			seed := deriveSeed(s.config.Seed, uint64(pi*trials+trial))
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				stats, err := s.trial(seed, param)
				if err != nil {
					return fmt.Errorf("trial %d at %v: %w", trial, param, err)
				}
				results[pi][trial] = stats
				return nil
			})
		}
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sweepID := uuid.NewString()
	out := make([]SweepPoint, len(points))
	runs := make([]database.SimulationRun, len(points))
	for pi, param := range points {
		out[pi] = aggregate(param, results[pi])
		runs[pi] = database.SimulationRun{
			SweepID:             sweepID,
			Codec:               s.codec.Name(),
			Mode:                s.mode,
			Parameter:           param,
			Trials:              out[pi].Trials,
			MessageBits:         s.config.MessageBits,
			Seed:                strconv.FormatUint(s.config.Seed, 10),
			MeanBERBefore:       out[pi].MeanBERBefore,
			MeanBERAfter:        out[pi].MeanBERAfter,
			StdDevBERAfter:      out[pi].StdDevBERAfter,
			UncorrectableTrials: out[pi].UncorrectableTrials,
		}

		s.metrics.SetSweepPoint(s.codec.Name(), s.mode, strconv.FormatFloat(param, 'g', -1, 64), out[pi].MeanBERAfter)
		if s.logger != nil {
			s.logger.Printf("%s %s %.4f: BER %.3e -> %.3e (%d/%d uncorrectable)",
				s.codec.Name(), s.mode, param, out[pi].MeanBERBefore, out[pi].MeanBERAfter,
				out[pi].UncorrectableTrials, out[pi].Trials)
		}
	}

	if s.recorder != nil {
		if err := s.recorder.CreateBatch(runs); err != nil {
			return nil, fmt.Errorf("saving sweep %s: %w", sweepID, err)
		}
		if s.logger != nil {
			s.logger.Printf("Saved sweep %s (%d points)", sweepID, len(runs))
		}
	}

	return out, nil
}

// trial simulates one random message with its own random sources
func (s *Sweeper) trial(seed uint64, param float64) (*Stats, error) {
	rng := rand.New(newSource(seed))
	msg := make(codec.Bitstream, s.config.MessageBits)
	for i := range msg {
		msg[i] = uint8(rng.IntN(2))
	}

	config := Config{Seed: rng.Uint64(), Metrics: s.metrics}
	if s.mode == database.ModeSoft {
		sim, err := NewSoftDecodingNoisyChannelSimulatorWithConfig(s.codec.(SoftCodec), config)
		if err != nil {
			return nil, err
		}
		return sim.Simulate(msg.String(), param)
	}

	sim, err := NewHardDecodingNoisyChannelSimulatorWithConfig(s.codec.(HardCodec), config)
	if err != nil {
		return nil, err
	}
	return sim.Simulate(msg.String(), param)
}

func aggregate(param float64, trials []*Stats) SweepPoint {
	before := make([]float64, len(trials))
	after := make([]float64, len(trials))
	point := SweepPoint{Parameter: param, Trials: len(trials)}

	for i, st := range trials {
		before[i] = st.BERBefore
		after[i] = st.BERAfter
		if st.Uncorrectable {
			point.UncorrectableTrials++
		}
	}

	point.MeanBERBefore = stat.Mean(before, nil)
	point.MeanBERAfter = stat.Mean(after, nil)
	if len(after) > 1 {
		point.StdDevBERAfter = stat.StdDev(after, nil)
	}
	return point
}

// deriveSeed mixes the trial index into the base seed (splitmix64 finalizer)
func deriveSeed(base, index uint64) uint64 {
	z := base + (index+1)*0x9E3779B97F4A7C15
	z = (z ^ (z >> 30)) * 0xBF58476D1CE4E5B9
	z = (z ^ (z >> 27)) * 0x94D049BB133CE111
	return z ^ (z >> 31)
}
