// pkg/config/env.go
package config

import (
	"fmt"
	"os"
	"strconv"
)

// Environment variables read by ApplyEnvOverrides
const (
	EnvTimeStep = "PHYSICS2D_TIME_STEP"
	EnvSteps    = "PHYSICS2D_STEPS"
)

// ApplyEnvOverrides replaces TimeStep and Steps with the values of
// PHYSICS2D_TIME_STEP and PHYSICS2D_STEPS when those are set.
func (c *SimulationConfig) ApplyEnvOverrides() error {
	if v, ok := os.LookupEnv(EnvTimeStep); ok && v != "" {
		dt, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvTimeStep, v, err)
		}
		c.TimeStep = dt
	}

	if v, ok := os.LookupEnv(EnvSteps); ok && v != "" {
		steps, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvSteps, v, err)
		}
		c.Steps = steps
	}

	return nil
}
