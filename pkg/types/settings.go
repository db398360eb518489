package types

import (
	"fmt"
	"strings"
)

// Settings is the per-instance configuration supplied by the host: which DSO
// tariff plan to bill against and which sensors feed the engine.
type Settings struct {
	Name         string `json:"name"`
	DSO          string `json:"dso"`
	FuseSize     string `json:"fuse_size"`
	EnergySensor string `json:"energy_sensor"`
	PowerSensor  string `json:"power_sensor"`
}

// Validate ensures all fields required for an evaluation are present.
func (s Settings) Validate() error {
	var missing []string
	if s.DSO == "" {
		missing = append(missing, "dso")
	}
	if s.FuseSize == "" {
		missing = append(missing, "fuse_size")
	}
	if s.EnergySensor == "" {
		missing = append(missing, "energy_sensor")
	}
	if s.PowerSensor == "" {
		missing = append(missing, "power_sensor")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required settings: %s", strings.Join(missing, ", "))
	}
	return nil
}
