package trainer

import (
	"fmt"
	"os"
	"strconv"

	"github.com/JaimeStill/propensity/pkg/model"
)

// Config holds classifier hyperparameters and the minimum acceptable score.
// ExpectedScore of 0 disables the minimum.
type Config struct {
	LearningRate   float64 `toml:"learning_rate"`
	MaxIterations  int     `toml:"max_iterations"`
	L2             float64 `toml:"l2"`
	Tolerance      float64 `toml:"tolerance"`
	Threshold      float64 `toml:"threshold"`
	BalanceClasses *bool   `toml:"balance_classes"`
	ExpectedScore  float64 `toml:"expected_score"`
}

// Env maps config fields to environment variable names.
type Env struct {
	LearningRate  string
	MaxIterations string
	ExpectedScore string
}

// Params converts the configuration into classifier hyperparameters.
func (c *Config) Params() model.Params {
	p := model.Params{
		LearningRate:  c.LearningRate,
		MaxIterations: c.MaxIterations,
		L2:            c.L2,
		Tolerance:     c.Tolerance,
		Threshold:     c.Threshold,
	}
	if c.BalanceClasses != nil {
		p.BalanceClasses = *c.BalanceClasses
	}
	return p
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay.LearningRate != 0 {
		c.LearningRate = overlay.LearningRate
	}
	if overlay.MaxIterations != 0 {
		c.MaxIterations = overlay.MaxIterations
	}
	if overlay.L2 != 0 {
		c.L2 = overlay.L2
	}
	if overlay.Tolerance != 0 {
		c.Tolerance = overlay.Tolerance
	}
	if overlay.Threshold != 0 {
		c.Threshold = overlay.Threshold
	}
	if overlay.BalanceClasses != nil {
		c.BalanceClasses = overlay.BalanceClasses
	}
	if overlay.ExpectedScore != 0 {
		c.ExpectedScore = overlay.ExpectedScore
	}
}

func (c *Config) loadDefaults() {
	d := model.DefaultParams()
	if c.LearningRate == 0 {
		c.LearningRate = d.LearningRate
	}
	if c.MaxIterations == 0 {
		c.MaxIterations = d.MaxIterations
	}
	if c.L2 == 0 {
		c.L2 = d.L2
	}
	if c.Tolerance == 0 {
		c.Tolerance = d.Tolerance
	}
	if c.Threshold == 0 {
		c.Threshold = d.Threshold
	}
	if c.BalanceClasses == nil {
		c.BalanceClasses = &d.BalanceClasses
	}
}

func (c *Config) loadEnv(env *Env) {
	if v := os.Getenv(env.LearningRate); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.LearningRate = f
		}
	}
	if v := os.Getenv(env.MaxIterations); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.MaxIterations = n
		}
	}
	if v := os.Getenv(env.ExpectedScore); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.ExpectedScore = f
		}
	}
}

func (c *Config) validate() error {
	if c.LearningRate <= 0 {
		return fmt.Errorf("learning_rate must be positive")
	}
	if c.MaxIterations < 1 {
		return fmt.Errorf("max_iterations must be positive")
	}
	if c.L2 < 0 {
		return fmt.Errorf("l2 cannot be negative")
	}
	if c.Threshold <= 0 || c.Threshold >= 1 {
		return fmt.Errorf("threshold must be in (0,1)")
	}
	if c.ExpectedScore < 0 || c.ExpectedScore > 1 {
		return fmt.Errorf("expected_score must be in [0,1]")
	}
	return nil
}
