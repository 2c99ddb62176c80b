package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collector holds the Prometheus collectors for simulation trials.
// A nil *Collector is valid and records nothing.
type Collector struct {
	trialsTotal            *prometheus.CounterVec   // Trials run (by codec, mode)
	channelBitErrorsTotal  *prometheus.CounterVec   // Bits corrupted by the channel (by codec, mode)
	residualBitErrorsTotal *prometheus.CounterVec   // Message bits still wrong after decoding (by codec, mode)
	uncorrectableTotal     *prometheus.CounterVec   // Trials with at least one uncorrectable RS block
	decodeDuration         *prometheus.HistogramVec // Encode + channel + decode time per trial
	sweepBERAfter          *prometheus.GaugeVec     // Mean BER after correction of the last sweep point
}

// NewCollector creates and registers all collectors on reg
func NewCollector(reg prometheus.Registerer) *Collector {
	factory := promauto.With(reg)
	labels := []string{"codec", "mode"}

	return &Collector{
		trialsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fecsim_trials_total",
				Help: "Total number of simulated channel trials",
			},
			labels,
		),
		channelBitErrorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fecsim_channel_bit_errors_total",
				Help: "Transmitted bits corrupted by the channel",
			},
			labels,
		),
		residualBitErrorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fecsim_residual_bit_errors_total",
				Help: "Message bits still wrong after error correction",
			},
			labels,
		),
		uncorrectableTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fecsim_uncorrectable_trials_total",
				Help: "Trials where the decoder reported an uncorrectable block",
			},
			labels,
		),
		decodeDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "fecsim_trial_duration_seconds",
				Help:    "Encode, channel and decode time of a single trial",
				Buckets: []float64{0.00001, 0.0001, 0.001, 0.01, 0.1, 1.0}, // 10us to 1s
			},
			labels,
		),
		sweepBERAfter: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "fecsim_sweep_ber_after",
				Help: "Mean post-correction bit error rate per sweep point",
			},
			[]string{"codec", "mode", "parameter"},
		),
	}
}

// ObserveTrial records the outcome of one simulated trial
func (c *Collector) ObserveTrial(codec, mode string, channelErrors, residualErrors int, uncorrectable bool, d time.Duration) {
	if c == nil {
		return
	}
	c.trialsTotal.WithLabelValues(codec, mode).Inc()
	c.channelBitErrorsTotal.WithLabelValues(codec, mode).Add(float64(channelErrors))
	c.residualBitErrorsTotal.WithLabelValues(codec, mode).Add(float64(residualErrors))
	if uncorrectable {
		c.uncorrectableTotal.WithLabelValues(codec, mode).Inc()
	}
	c.decodeDuration.WithLabelValues(codec, mode).Observe(d.Seconds())
}

// SetSweepPoint publishes the aggregated BER of a sweep point
func (c *Collector) SetSweepPoint(codec, mode, parameter string, berAfter float64) {
	if c == nil {
		return
	}
	c.sweepBERAfter.WithLabelValues(codec, mode, parameter).Set(berAfter)
}
