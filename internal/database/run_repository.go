package database

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// CodecStatistics totals the stored runs of one codec
type CodecStatistics struct {
	Codec  string `json:"codec" yaml:"codec"`
	Runs   int    `json:"runs" yaml:"runs"`
	Trials int    `json:"trials" yaml:"trials"`
}

// RunRepository provides database operations for simulation runs
type RunRepository struct {
	db *gorm.DB
}

// NewRunRepository creates a new repository instance
func NewRunRepository(db *gorm.DB) *RunRepository {
	return &RunRepository{db: db}
}

// Create validates and inserts a run, assigning its ID
func (r *RunRepository) Create(run *SimulationRun) error {
	if run == nil {
		return fmt.Errorf("run cannot be nil")
	}

	run.SanitizeFields()
	if !run.IsValid() {
		return fmt.Errorf("run is not valid: codec=%q, mode=%q, trials=%d", run.Codec, run.Mode, run.Trials)
	}

	return r.db.Create(run).Error
}

// CreateBatch inserts every run of a sweep in one transaction
func (r *RunRepository) CreateBatch(runs []SimulationRun) error {
	if len(runs) == 0 {
		return nil
	}

	return r.db.Transaction(func(tx *gorm.DB) error {
		repo := NewRunRepository(tx)
		for i := range runs {
			if err := repo.Create(&runs[i]); err != nil {
				return fmt.Errorf("batch insert failed at index %d: %w", i, err)
			}
		}
		return nil
	})
}

// GetByID finds a run by its ID
func (r *RunRepository) GetByID(id string) (*SimulationRun, error) {
	var run SimulationRun
	err := r.db.Where("id = ?", id).First(&run).Error
	if err != nil {
		return nil, err
	}
	return &run, nil
}

// ListByCodec returns the runs of a codec ordered by channel parameter
func (r *RunRepository) ListByCodec(codec string, limit int) ([]SimulationRun, error) {
	var runs []SimulationRun
	err := r.db.Where("codec = ?", codec).
		Order("parameter ASC").
		Order("created_at DESC").
		Limit(limit).
		Find(&runs).Error
	return runs, err
}

// ListBySweep returns every point of one sweep ordered by channel parameter
func (r *RunRepository) ListBySweep(sweepID string) ([]SimulationRun, error) {
	var runs []SimulationRun
	err := r.db.Where("sweep_id = ?", sweepID).
		Order("parameter ASC").
		Find(&runs).Error
	return runs, err
}

// Count returns the total number of runs in the database
func (r *RunRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&SimulationRun{}).Count(&count).Error
	return count, err
}

// DeleteAll removes all runs from the database
func (r *RunRepository) DeleteAll() error {
	return r.db.Where("1 = 1").Delete(&SimulationRun{}).Error
}

// GetStatistics returns basic database statistics
func (r *RunRepository) GetStatistics() (map[string]interface{}, error) {
	stats := make(map[string]interface{})

	count, err := r.Count()
	if err != nil {
		return nil, err
	}
	stats["total_runs"] = count

	// Most recent run
	var latest SimulationRun
	err = r.db.Order("created_at DESC").First(&latest).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if err == nil {
		stats["last_run"] = latest.CreatedAt
	}

	// Per codec totals
	var codecStats []CodecStatistics
	err = r.db.Model(&SimulationRun{}).
		Select("codec, COUNT(*) as runs, SUM(trials) as trials").
		Group("codec").
		Order("runs DESC").
		Find(&codecStats).Error
	if err != nil {
		return nil, err
	}
	stats["codecs"] = codecStats

	return stats, nil
}

// HealthCheck verifies the repository is working correctly
func (r *RunRepository) HealthCheck() error {
	var count int64
	return r.db.Model(&SimulationRun{}).Count(&count).Error
}
