package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"phaseshift/domain/experiment"
	"phaseshift/domain/lfsr"
	"phaseshift/internal/errors"
)

const (
	MinDegree = 10
	MaxDegree = 64
	// MaxChannels bounds nc, which sizes the phase-shifter matrix
	MaxChannels = 4096
)

// KnownRenderers lists the renderer names accepted in Output.Renderers
var KnownRenderers = []string{"png", "html", "xlsx", "md"}

// Config represents the complete application configuration
type Config struct {
	Run      RunConfig
	Paths    PathConfig
	Server   ServerConfig
	Output   OutputConfig
	LogLevel string
}

// RunConfig holds the parameters of one batch. A zero CS or NC means 2*Degree.
type RunConfig struct {
	Degree      int    `json:"degree"`
	Entry       int    `json:"entry"`
	CS          int    `json:"cs"`
	NC          int    `json:"nc"`
	Method      string `json:"method"`
	NumIntegers int    `json:"num_integers"`
	BitWidth    int    `json:"bit_width"`
	Cycles      int    `json:"cycles"`
	Experiments int    `json:"experiments"`
	Seed        int64  `json:"seed"`
}

// PathConfig holds file system paths
type PathConfig struct {
	PolynomialsDir string
	OutputDir      string
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Addr    string
	Workers int
}

// OutputConfig selects what gets written after a run
type OutputConfig struct {
	Renderers []string
}

// Load reads configuration from PHASESHIFT_* environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Run:      loadRunConfig(),
		Paths:    loadPathConfig(),
		Server:   loadServerConfig(),
		Output:   loadOutputConfig(),
		LogLevel: getEnvOrDefault("LOG_LEVEL", "INFO"),
	}

	if err := config.Validate(); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	return config, nil
}

// DefaultRunConfig returns the run parameters used when nothing overrides them
func DefaultRunConfig() RunConfig {
	return RunConfig{
		Degree:      MinDegree,
		Entry:       1,
		Method:      lfsr.Consecutive.String(),
		NumIntegers: 8,
		BitWidth:    8,
		Cycles:      100,
		Experiments: 10,
	}
}

func loadRunConfig() RunConfig {
	d := DefaultRunConfig()
	return RunConfig{
		Degree:      getEnvIntOrDefault("PHASESHIFT_DEGREE", d.Degree),
		Entry:       getEnvIntOrDefault("PHASESHIFT_ENTRY", d.Entry),
		CS:          getEnvIntOrDefault("PHASESHIFT_CS", d.CS),
		NC:          getEnvIntOrDefault("PHASESHIFT_NC", d.NC),
		Method:      getEnvOrDefault("PHASESHIFT_METHOD", d.Method),
		NumIntegers: getEnvIntOrDefault("PHASESHIFT_NUM_INTEGERS", d.NumIntegers),
		BitWidth:    getEnvIntOrDefault("PHASESHIFT_BIT_WIDTH", d.BitWidth),
		Cycles:      getEnvIntOrDefault("PHASESHIFT_CYCLES", d.Cycles),
		Experiments: getEnvIntOrDefault("PHASESHIFT_EXPERIMENTS", d.Experiments),
		Seed:        getEnvInt64OrDefault("PHASESHIFT_SEED", d.Seed),
	}
}

func loadPathConfig() PathConfig {
	return PathConfig{
		PolynomialsDir: getEnvOrDefault("PHASESHIFT_POLYNOMIALS_DIR", "./polynomials"),
		OutputDir:      getEnvOrDefault("PHASESHIFT_OUTPUT_DIR", "."),
	}
}

func loadServerConfig() ServerConfig {
	return ServerConfig{
		Addr:    getEnvOrDefault("PHASESHIFT_ADDR", ":8080"),
		Workers: getEnvIntOrDefault("PHASESHIFT_WORKERS", 0),
	}
}

func loadOutputConfig() OutputConfig {
	return OutputConfig{
		Renderers: getEnvListOrDefault("PHASESHIFT_RENDERERS", []string{"png"}),
	}
}

// Validate checks everything that does not depend on how run parameters
// combine; those are checked by RunConfig.Validate once overrides are applied
func (c *Config) Validate() error {
	if err := c.Run.validateLimits(); err != nil {
		return err
	}
	if c.Paths.PolynomialsDir == "" {
		return errors.ConfigInvalid("polynomials directory is required")
	}
	if c.Server.Workers < 0 {
		return errors.ConfigInvalid(fmt.Sprintf("workers must be >= 0, got %d", c.Server.Workers))
	}
	for _, name := range c.Output.Renderers {
		if !isKnownRenderer(name) {
			return errors.ConfigInvalid(fmt.Sprintf("unknown renderer %q (known: %s)", name, strings.Join(KnownRenderers, ", ")))
		}
	}
	return nil
}

// WithDefaults fills CS and NC from the degree when unset
func (r RunConfig) WithDefaults() RunConfig {
	if r.CS == 0 {
		r.CS = 2 * r.Degree
	}
	if r.NC == 0 {
		r.NC = 2 * r.Degree
	}
	return r
}

// Validate applies the command-line limits on top of the checks Settings performs
func (r RunConfig) Validate() error {
	if err := r.validateLimits(); err != nil {
		return err
	}
	_, err := r.Settings()
	return err
}

func (r RunConfig) validateLimits() error {
	if r.Degree < MinDegree || r.Degree > MaxDegree {
		return errors.ConfigInvalid(fmt.Sprintf("degree must be in [%d, %d], got %d", MinDegree, MaxDegree, r.Degree))
	}
	if r.BitWidth < 2 {
		return errors.ConfigInvalid(fmt.Sprintf("bit_width must be >= 2, got %d", r.BitWidth))
	}
	if r.NumIntegers < 1 {
		return errors.ConfigInvalid(fmt.Sprintf("num_integers must be >= 1, got %d", r.NumIntegers))
	}
	if nc := r.WithDefaults().NC; nc > MaxChannels {
		return errors.ConfigInvalid(fmt.Sprintf("nc must be <= %d, got %d", MaxChannels, nc))
	}
	return nil
}

// Settings converts the run parameters into experiment settings and validates them
func (r RunConfig) Settings() (experiment.Settings, error) {
	r = r.WithDefaults()
	method, err := lfsr.ParseChannelMethod(r.Method)
	if err != nil {
		return experiment.Settings{}, errors.WithCode(errors.CodeConfigInvalid, err)
	}
	s := experiment.Settings{
		Degree:      r.Degree,
		Entry:       r.Entry,
		CS:          r.CS,
		NC:          r.NC,
		Method:      method,
		Layout:      lfsr.Layout{NumIntegers: r.NumIntegers, BitWidth: r.BitWidth},
		Cycles:      r.Cycles,
		Experiments: r.Experiments,
		Seed:        r.Seed,
	}
	if err := s.Validate(); err != nil {
		return experiment.Settings{}, err
	}
	return s, nil
}

func isKnownRenderer(name string) bool {
	for _, known := range KnownRenderers {
		if name == known {
			return true
		}
	}
	return false
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvInt64OrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvListOrDefault(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
