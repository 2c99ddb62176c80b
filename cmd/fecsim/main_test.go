package main

import (
	"bytes"
	"context"
	"io"
	"log"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/dbehnke/fecsim/internal/config"
	"github.com/dbehnke/fecsim/internal/simulation"
)

func TestBuildCodec(t *testing.T) {
	tests := []struct {
		ini  string
		name string
	}{
		{"[Codec]\nType=reedsolomon\nN=5\nK=3", "ReedSolomon(n=5, k=3)"},
		{"[Codec]\nType=viterbi\nConstraintLength=2\nSoft=1", "Viterbi(constraint length k=2, soft decoding=true)"},
		{"[Codec]\nType=concatenated", "Concatenated(ReedSolomon(n=15, k=11), Viterbi(constraint length k=5, soft decoding=false))"},
	}

	for _, tt := range tests {
		cfg := config.NewConfig("")
		if err := cfg.LoadFromString(tt.ini); err != nil {
			t.Fatal(err)
		}
		c, err := buildCodec(cfg)
		if err != nil {
			t.Fatalf("buildCodec error = %v", err)
		}
		if c.Name() != tt.name {
			t.Errorf("Name = %q, want %q", c.Name(), tt.name)
		}
	}

	cfg := config.NewConfig("")
	cfg.LoadFromString("[Codec]\nType=viterbi\nConstraintLength=7")
	if _, err := buildCodec(cfg); err == nil {
		t.Error("K=7 should fail")
	}
}

func TestRunDemo(t *testing.T) {
	logger := log.New(io.Discard, "[SIM] ", log.LstdFlags)

	var text bytes.Buffer
	if err := runDemo(&text, FORMAT_TEXT, 1, logger, true); err != nil {
		t.Fatalf("runDemo error = %v", err)
	}
	if strings.Count(text.String(), "NOISY CHANNEL SIMULATOR") != 5 {
		t.Errorf("expected five scenarios:\n%s", text.String())
	}

	var out bytes.Buffer
	if err := runDemo(&out, FORMAT_YAML, 1, logger, false); err != nil {
		t.Fatalf("runDemo error = %v", err)
	}
	var results []demoResult
	if err := yaml.Unmarshal(out.Bytes(), &results); err != nil {
		t.Fatalf("yaml output does not parse: %v", err)
	}
	if len(results) != 5 || results[0].Stats.Codec != "ReedSolomon(n=5, k=3)" {
		t.Errorf("unexpected yaml results: %+v", results)
	}
}

func TestRunSweep(t *testing.T) {
	cfg := config.NewConfig("")
	err := cfg.LoadFromString(`[Codec]
Type=viterbi
ConstraintLength=2

[Channel]
Points=0,0.1

[Simulation]
Trials=3
MessageBits=32
Workers=2`)
	if err != nil {
		t.Fatal(err)
	}

	logger := log.New(io.Discard, "", 0)
	var out bytes.Buffer
	if err := runSweep(context.Background(), &out, FORMAT_YAML, cfg, logger, nil, nil); err != nil {
		t.Fatalf("runSweep error = %v", err)
	}

	var report sweepReport
	if err := yaml.Unmarshal(out.Bytes(), &report); err != nil {
		t.Fatal(err)
	}
	if report.Mode != "hard" || len(report.Points) != 2 {
		t.Errorf("report = %+v", report)
	}
	if report.Points[0].MeanBERAfter != 0 {
		t.Errorf("p=0 point BER after = %v", report.Points[0].MeanBERAfter)
	}

	var text bytes.Buffer
	writeSweepText(&text, sweepReport{Mode: "soft", Points: []simulation.SweepPoint{{Parameter: 0.5}}})
	if !strings.Contains(text.String(), "sigma") {
		t.Errorf("soft sweep header should name sigma:\n%s", text.String())
	}
}
