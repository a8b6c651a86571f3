// kb/scenario_loader.go
package kb

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/signalsfoundry/skymap-correlator/model"
)

// DetectorScenario is a small summary of what was loaded from JSON.
// It's mainly useful for logging from main().
type DetectorScenario struct {
	DetectorCodes []string
	NetworkLabels []string
}

// internal JSON shapes – kept unexported so we're free to evolve them.
type detectorScenarioJSON struct {
	Detectors []detectorSiteJSON `json:"detectors"`
	Networks  []networkJSON      `json:"networks"`
}

type detectorSiteJSON struct {
	Code         string  `json:"code"`
	Name         string  `json:"name"`
	LatitudeDeg  float64 `json:"latitude_deg"`
	LongitudeDeg float64 `json:"longitude_deg"`
	XArmAzDeg    float64 `json:"x_arm_azimuth_deg"`
	YArmAzDeg    float64 `json:"y_arm_azimuth_deg"`
}

type networkJSON struct {
	Label     string   `json:"label"`
	Detectors []string `json:"detectors"`
}

// LoadDetectorScenario reads a JSON scenario from r, populates the
// Registry with detector sites and named network configurations, and
// returns a summary of what was loaded.
//
// Sites load before networks so a scenario can define both a new site and
// a configuration using it in one file.
func LoadDetectorScenario(reg *Registry, r io.Reader) (*DetectorScenario, error) {
	if reg == nil {
		return nil, fmt.Errorf("LoadDetectorScenario: registry is nil")
	}

	var payload detectorScenarioJSON
	dec := json.NewDecoder(r)
	if err := dec.Decode(&payload); err != nil {
		return nil, fmt.Errorf("LoadDetectorScenario: decode failed: %w", err)
	}

	result := &DetectorScenario{
		DetectorCodes: make([]string, 0, len(payload.Detectors)),
		NetworkLabels: make([]string, 0, len(payload.Networks)),
	}

	for _, js := range payload.Detectors {
		site := &model.DetectorSite{
			Code:           js.Code,
			Name:           js.Name,
			LatitudeDeg:    js.LatitudeDeg,
			LongitudeDeg:   js.LongitudeDeg,
			XArmAzimuthDeg: js.XArmAzDeg,
			YArmAzimuthDeg: js.YArmAzDeg,
		}
		if err := reg.AddDetector(site); err != nil {
			return nil, fmt.Errorf("LoadDetectorScenario: %w", err)
		}
		result.DetectorCodes = append(result.DetectorCodes, js.Code)
	}

	for _, js := range payload.Networks {
		cfg := &model.NetworkConfiguration{
			Label:     js.Label,
			Detectors: js.Detectors,
		}
		if err := reg.AddNetwork(cfg); err != nil {
			return nil, fmt.Errorf("LoadDetectorScenario: %w", err)
		}
		result.NetworkLabels = append(result.NetworkLabels, js.Label)
	}

	return result, nil
}
