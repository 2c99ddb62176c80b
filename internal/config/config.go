package config

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Codec types accepted in the [Codec] section
const (
	CodecReedSolomon  = "reedsolomon"
	CodecViterbi      = "viterbi"
	CodecConcatenated = "concatenated"
)

// Config represents the fecsim configuration
type Config struct {
	filename string

	// Codec section
	codecType        string
	codecN           uint32
	codecK           uint32
	constraintLength uint32
	soft             bool

	// Channel section
	channelPoints []float64

	// Simulation section
	trials      uint32
	messageBits uint32
	workers     uint32
	seed        uint64
	debug       bool

	// Database section (sweep result store)
	databaseEnabled bool
	databasePath    string
	databaseDebug   bool

	// Metrics section
	metricsEnabled bool
	metricsAddress string

	// Log section
	logDisplayLevel uint32
	logFilePath     string
}

// NewConfig creates a new configuration instance
func NewConfig(filename string) *Config {
	return &Config{
		filename: filename,
		// Set reasonable defaults
		codecType:        CodecConcatenated,
		codecN:           15,
		codecK:           11,
		constraintLength: 5,
		channelPoints:    []float64{0.01, 0.02, 0.05, 0.1},
		trials:           100,
		messageBits:      88,
		seed:             1,

		databasePath: "data/fecsim.db",

		metricsAddress: ":9100",

		logDisplayLevel: 1,
	}
}

// Load loads configuration from the specified file
func (c *Config) Load() error {
	file, err := os.Open(c.filename)
	if err != nil {
		return fmt.Errorf("failed to open config file %s: %w", c.filename, err)
	}
	defer file.Close()

	return c.parseINI(file)
}

// LoadFromString loads configuration from a string (useful for testing)
func (c *Config) LoadFromString(data string) error {
	return c.parseINIString(data)
}

func (c *Config) parseINI(file *os.File) error {
	scanner := bufio.NewScanner(file)
	return c.parseINIScanner(scanner)
}

func (c *Config) parseINIString(data string) error {
	scanner := bufio.NewScanner(strings.NewReader(data))
	return c.parseINIScanner(scanner)
}

func (c *Config) parseINIScanner(scanner *bufio.Scanner) error {
	var currentSection string

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if len(line) == 0 || line[0] == '#' || line[0] == ';' {
			continue
		}

		// Check for section header
		if line[0] == '[' && line[len(line)-1] == ']' {
			currentSection = strings.TrimSpace(line[1 : len(line)-1])
			continue
		}

		// Parse key=value pairs
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		// Parse based on current section
		switch currentSection {
		case "Codec":
			c.parseCodecSection(key, value)
		case "Channel":
			c.parseChannelSection(key, value)
		case "Simulation":
			c.parseSimulationSection(key, value)
		case "Database":
			c.parseDatabaseSection(key, value)
		case "Metrics":
			c.parseMetricsSection(key, value)
		case "Log":
			c.parseLogSection(key, value)
		}
	}

	if err := scanner.Err(); err != nil {
		return err
	}
	return c.Validate()
}

func (c *Config) parseCodecSection(key, value string) {
	switch key {
	case "Type":
		c.codecType = strings.ToLower(value)
	case "N":
		if v, err := strconv.ParseUint(value, 10, 32); err == nil {
			c.codecN = uint32(v)
		}
	case "K":
		if v, err := strconv.ParseUint(value, 10, 32); err == nil {
			c.codecK = uint32(v)
		}
	case "ConstraintLength":
		if v, err := strconv.ParseUint(value, 10, 32); err == nil {
			c.constraintLength = uint32(v)
		}
	case "Soft":
		c.soft = c.parseBool(value)
	}
}

func (c *Config) parseChannelSection(key, value string) {
	switch key {
	case "Points":
		c.channelPoints = c.parseFloatArray(value)
	}
}

func (c *Config) parseSimulationSection(key, value string) {
	switch key {
	case "Trials":
		if v, err := strconv.ParseUint(value, 10, 32); err == nil {
			c.trials = uint32(v)
		}
	case "MessageBits":
		if v, err := strconv.ParseUint(value, 10, 32); err == nil {
			c.messageBits = uint32(v)
		}
	case "Workers":
		if v, err := strconv.ParseUint(value, 10, 32); err == nil {
			c.workers = uint32(v)
		}
	case "Seed":
		if v, err := strconv.ParseUint(value, 10, 64); err == nil {
			c.seed = v
		}
	case "Debug":
		c.debug = c.parseBool(value)
	}
}

func (c *Config) parseDatabaseSection(key, value string) {
	switch key {
	case "Enabled":
		c.databaseEnabled = c.parseBool(value)
	case "Path":
		c.databasePath = value
	case "Debug":
		c.databaseDebug = c.parseBool(value)
	}
}

func (c *Config) parseMetricsSection(key, value string) {
	switch key {
	case "Enabled":
		c.metricsEnabled = c.parseBool(value)
	case "Address":
		c.metricsAddress = value
	}
}

func (c *Config) parseLogSection(key, value string) {
	switch key {
	case "DisplayLevel":
		if v, err := strconv.ParseUint(value, 10, 32); err == nil {
			c.logDisplayLevel = uint32(v)
		}
	case "FilePath":
		c.logFilePath = value
	}
}

func (c *Config) parseBool(value string) bool {
	return value == "1" || strings.ToLower(value) == "true" || strings.ToLower(value) == "yes"
}

func (c *Config) parseFloatArray(value string) []float64 {
	parts := strings.Split(value, ",")
	result := make([]float64, 0, len(parts))

	for _, part := range parts {
		if v, err := strconv.ParseFloat(strings.TrimSpace(part), 64); err == nil {
			result = append(result, v)
		}
	}

	return result
}

// Validate checks values the codecs would otherwise reject later
func (c *Config) Validate() error {
	switch c.codecType {
	case CodecReedSolomon, CodecViterbi, CodecConcatenated:
	default:
		return fmt.Errorf("unknown codec type %q", c.codecType)
	}
	if c.codecType != CodecViterbi && (c.codecK == 0 || c.codecK >= c.codecN || c.codecN > 255) {
		return fmt.Errorf("invalid Reed-Solomon parameters n=%d k=%d", c.codecN, c.codecK)
	}
	if c.codecType == CodecReedSolomon && c.soft {
		return fmt.Errorf("reed-solomon codec has no soft decoding")
	}
	if len(c.channelPoints) == 0 {
		return fmt.Errorf("no channel points configured")
	}
	if c.trials == 0 || c.messageBits == 0 {
		return fmt.Errorf("trials and message bits must be positive")
	}
	return nil
}

// Getter methods for Codec section
func (c *Config) GetCodecType() string        { return c.codecType }
func (c *Config) GetCodecN() uint32           { return c.codecN }
func (c *Config) GetCodecK() uint32           { return c.codecK }
func (c *Config) GetConstraintLength() uint32 { return c.constraintLength }
func (c *Config) GetSoft() bool               { return c.soft }

// Getter methods for Channel section
func (c *Config) GetChannelPoints() []float64 { return c.channelPoints }

// Getter methods for Simulation section
func (c *Config) GetTrials() uint32      { return c.trials }
func (c *Config) GetMessageBits() uint32 { return c.messageBits }
func (c *Config) GetWorkers() uint32     { return c.workers }
func (c *Config) GetSeed() uint64        { return c.seed }
func (c *Config) GetDebug() bool         { return c.debug }

// Getter methods for Database section
func (c *Config) GetDatabaseEnabled() bool { return c.databaseEnabled }
func (c *Config) GetDatabasePath() string  { return c.databasePath }
func (c *Config) GetDatabaseDebug() bool   { return c.databaseDebug }

// Getter methods for Metrics section
func (c *Config) GetMetricsEnabled() bool   { return c.metricsEnabled }
func (c *Config) GetMetricsAddress() string { return c.metricsAddress }

// Getter methods for Log section
func (c *Config) GetLogDisplayLevel() uint32 { return c.logDisplayLevel }
func (c *Config) GetLogFilePath() string     { return c.logFilePath }
