package kb

import (
	"fmt"
	"sort"
	"sync"

	"github.com/signalsfoundry/skymap-correlator/model"
)

// Registry is an in-memory, thread-safe store for detector sites and
// named network configurations. A single run populates it once (builtin
// table plus optional scenario file) and reads from it afterwards.
type Registry struct {
	mu sync.RWMutex

	detectors map[string]*model.DetectorSite
	networks  map[string]*model.NetworkConfiguration
}

// NewRegistry constructs an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		detectors: make(map[string]*model.DetectorSite),
		networks:  make(map[string]*model.NetworkConfiguration),
	}
}

// AddDetector adds a new detector site. It returns an error if the code
// already exists.
func (r *Registry) AddDetector(d *model.DetectorSite) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if d.Code == "" {
		return fmt.Errorf("detector with empty code")
	}
	if _, exists := r.detectors[d.Code]; exists {
		return fmt.Errorf("detector with code %q already exists", d.Code)
	}
	r.detectors[d.Code] = d
	return nil
}

// GetDetector returns the site for a code, or nil when unknown.
func (r *Registry) GetDetector(code string) *model.DetectorSite {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.detectors[code]
}

// AllDetectors returns every registered site, sorted by code.
func (r *Registry) AllDetectors() []model.DetectorSite {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]model.DetectorSite, 0, len(r.detectors))
	for _, d := range r.detectors {
		out = append(out, *d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

// AddNetwork adds a named network configuration after checking that every
// referenced detector is registered.
func (r *Registry) AddNetwork(n *model.NetworkConfiguration) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if n.Label == "" {
		return fmt.Errorf("network configuration with empty label")
	}
	if _, exists := r.networks[n.Label]; exists {
		return fmt.Errorf("network configuration %q already exists", n.Label)
	}
	if len(n.Detectors) == 0 {
		return fmt.Errorf("network configuration %q has no detectors", n.Label)
	}
	for _, code := range n.Detectors {
		if _, ok := r.detectors[code]; !ok {
			return fmt.Errorf("network configuration %q references unknown detector %q", n.Label, code)
		}
	}
	r.networks[n.Label] = n
	return nil
}

// GetNetwork returns the configuration for a label, or nil when unknown.
func (r *Registry) GetNetwork(label string) *model.NetworkConfiguration {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.networks[label]
}
