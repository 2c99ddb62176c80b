package main

import (
	"errors"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"

	"github.com/dbehnke/fecsim/internal/database"
)

// historyReport is the yaml document written by -history
type historyReport struct {
	Query     string                     `yaml:"query"`
	Runs      []database.SimulationRun   `yaml:"runs"`
	TotalRuns int64                      `yaml:"total_runs"`
	LastRun   *time.Time                 `yaml:"last_run,omitempty"`
	Codecs    []database.CodecStatistics `yaml:"codecs"`
}

// findRuns resolves a query to stored runs. A UUID is looked up as a run ID
// first and as a sweep ID otherwise; anything else is a codec name.
func findRuns(repo *database.RunRepository, query string, limit int) ([]database.SimulationRun, error) {
	if _, err := uuid.Parse(query); err == nil {
		run, err := repo.GetByID(query)
		if err == nil {
			return []database.SimulationRun{*run}, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		return repo.ListBySweep(query)
	}
	return repo.ListByCodec(query, limit)
}

func runHistory(w io.Writer, format string, repo *database.RunRepository, query string, limit int) error {
	runs, err := findRuns(repo, query, limit)
	if err != nil {
		return fmt.Errorf("querying %q: %w", query, err)
	}

	stats, err := repo.GetStatistics()
	if err != nil {
		return fmt.Errorf("reading statistics: %w", err)
	}

	report := historyReport{Query: query, Runs: runs}
	report.TotalRuns, _ = stats["total_runs"].(int64)
	if last, ok := stats["last_run"].(time.Time); ok {
		report.LastRun = &last
	}
	report.Codecs, _ = stats["codecs"].([]database.CodecStatistics)

	if format == FORMAT_YAML {
		return yaml.NewEncoder(w).Encode(report)
	}

	fmt.Fprintf(w, "%d stored runs match %q\n", len(report.Runs), query)
	for _, run := range report.Runs {
		fmt.Fprintf(w, "  %s  %s  %s\n", run.CreatedAt.Format(time.DateTime), run.SweepID, run)
	}
	fmt.Fprintf(w, "\n%d runs in store", report.TotalRuns)
	if report.LastRun != nil {
		fmt.Fprintf(w, ", last at %s", report.LastRun.Format(time.DateTime))
	}
	fmt.Fprintln(w)
	for _, c := range report.Codecs {
		if _, err := fmt.Fprintf(w, "  %-80s %6d runs %8d trials\n", c.Codec, c.Runs, c.Trials); err != nil {
			return err
		}
	}
	return nil
}

// runPurge deletes every stored run
func runPurge(repo *database.RunRepository, logger *log.Logger) error {
	count, err := repo.Count()
	if err != nil {
		return err
	}
	if err := repo.DeleteAll(); err != nil {
		return err
	}
	logger.Printf("Deleted %d stored runs", count)
	return nil
}
