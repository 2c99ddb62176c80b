package database

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Channel modes recorded on a run
const (
	ModeHard = "hard"
	ModeSoft = "soft"
)

// SimulationRun is the aggregate of all trials at one channel parameter
type SimulationRun struct {
	ID                  string    `gorm:"primarykey;size:36" json:"id" yaml:"id"`
	SweepID             string    `gorm:"index;size:36" json:"sweep_id" yaml:"sweep_id"`
	Codec               string    `gorm:"index;size:128" json:"codec" yaml:"codec"`
	Mode                string    `gorm:"size:8" json:"mode" yaml:"mode"`
	Parameter           float64   `json:"parameter" yaml:"parameter"`
	Trials              int       `json:"trials" yaml:"trials"`
	MessageBits         int       `json:"message_bits" yaml:"message_bits"`
	Seed                string    `gorm:"size:20" json:"seed" yaml:"seed"` // Decimal uint64, sqlite integers are signed
	MeanBERBefore       float64   `json:"mean_ber_before" yaml:"mean_ber_before"`
	MeanBERAfter        float64   `json:"mean_ber_after" yaml:"mean_ber_after"`
	StdDevBERAfter      float64   `json:"stddev_ber_after" yaml:"stddev_ber_after"`
	UncorrectableTrials int       `json:"uncorrectable_trials" yaml:"uncorrectable_trials"`
	CreatedAt           time.Time `json:"created_at" yaml:"created_at"`
}

// TableName specifies the table name for GORM
func (SimulationRun) TableName() string {
	return "simulation_runs"
}

// BeforeCreate assigns a random ID to new rows
func (r *SimulationRun) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}

// IsValid checks if the run has the required fields
func (r SimulationRun) IsValid() bool {
	return r.Codec != "" && (r.Mode == ModeHard || r.Mode == ModeSoft) && r.Trials > 0
}

// SanitizeFields cleans up free text fields
func (r *SimulationRun) SanitizeFields() {
	r.Codec = strings.TrimSpace(r.Codec)
	r.Mode = strings.ToLower(strings.TrimSpace(r.Mode))
}

// String returns a formatted string representation
func (r SimulationRun) String() string {
	return fmt.Sprintf("%s [%s %.4f] %d trials: BER %.3e -> %.3e (%d uncorrectable)",
		r.Codec, r.Mode, r.Parameter, r.Trials, r.MeanBERBefore, r.MeanBERAfter, r.UncorrectableTrials)
}
