package model

// Event pairs one sky-map file with its injection record. It lives for a
// single pass through the processor and is discarded once its aggregate
// record has been emitted.
type Event struct {
	// Index is parsed from the map filename (last run of digits).
	Index int

	// MapPath is the source sky-map file.
	MapPath string

	// GeocentEndTime is the injected geocentric end time in GPS seconds.
	GeocentEndTime float64

	// SiderealHours is GeocentEndTime reduced to hours mod 24, the
	// rotation offset between the Earth-fixed map frame and the frame of
	// the observation instant.
	SiderealHours float64

	// Injected sky location (degrees). Ground truth; carried for
	// reference but not used by the credible-region math.
	InjectedRADeg  float64
	InjectedDecDeg float64

	// NetworkSNR is the recovered network signal-to-noise ratio from the
	// per-event sidecar file.
	NetworkSNR float64
}

// AggregateRecord is the per-event triple appended to its configuration's
// record list: localization size, recovered SNR, and the network antenna
// response at the most probable sky location.
type AggregateRecord struct {
	EventIndex      int
	CredibleArea68  float64
	NetworkSNR      float64
	AntennaResponse float64

	// Converged is false when the 68% region exceeded the sanity bound.
	// Such records stay in the aggregation; consumers may filter on it.
	Converged bool
}
